// Package protocol defines the FTAM command language: parsing incoming
// command lines into a closed set of command kinds, formatting replies, and
// dispatching commands against a session.
package protocol

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/DuarteR-dev/Projet-FTAM/wire"
)

// BlockSize is the fixed transfer block size in bytes, shared by both ends.
// The protocol has no negotiation message for it.
const BlockSize = 512

// Kind identifies a protocol command. The set is closed: anything the
// parser does not recognize is KindUnknown, never a fallthrough.
type Kind int

const (
	KindUnknown Kind = iota
	KindList
	KindOpen
	KindCreate
	KindRename
	KindDelete
	KindRead
	KindWrite
	KindClose
	KindUpload
	KindUploadData
	KindUploadEnd
	KindDownload
	KindLeave
)

// Command is a parsed command line.
type Command struct {
	Kind    Kind
	Name    string // OPEN, CREATE, DELETE, UPLOAD, DOWNLOAD target
	OldName string // RENAME source
	NewName string // RENAME destination
	Data    string // WRITE text or UPLOAD_DATA hex token
	Offset  int64  // DOWNLOAD start position
}

// keyword returns the wire keyword for a command kind.
func (k Kind) keyword() string {
	switch k {
	case KindList:
		return "LIST"
	case KindOpen:
		return "OPEN"
	case KindCreate:
		return "CREATE"
	case KindRename:
		return "RENAME"
	case KindDelete:
		return "DELETE"
	case KindRead:
		return "READ"
	case KindWrite:
		return "WRITE"
	case KindClose:
		return "CLOSE"
	case KindUpload, KindUploadData, KindUploadEnd:
		return "UPLOAD"
	case KindDownload:
		return "DOWNLOAD"
	case KindLeave:
		return "LEAVE"
	}
	return ""
}

// ErrorKeyword returns the reply keyword used when a command of this kind
// fails. The whole upload family reports through UPLOAD_ERROR.
func (k Kind) ErrorKeyword() string {
	if k == KindUnknown {
		return "ERROR"
	}
	return k.keyword() + "_ERROR"
}

// Parse decodes a command line into a Command. A recognized keyword with bad
// arguments still yields the command kind alongside the error, so the caller
// can shape the error reply.
func Parse(line string) (Command, error) {
	fields := wire.DecodeLine(line)
	if len(fields) == 0 {
		return Command{}, ErrUnknownCommand
	}

	keyword := strings.ToUpper(fields[0])
	args := fields[1:]

	switch keyword {
	case "LIST":
		return Command{Kind: KindList}, nil
	case "OPEN":
		return parseNameCommand(KindOpen, args)
	case "CREATE":
		return parseNameCommand(KindCreate, args)
	case "RENAME":
		cmd := Command{Kind: KindRename}
		if len(args) < 2 {
			return cmd, fmt.Errorf("RENAME needs an old and a new name: %w", ErrMissingArgument)
		}
		cmd.OldName, cmd.NewName = args[0], args[1]
		return cmd, nil
	case "DELETE":
		return parseNameCommand(KindDelete, args)
	case "READ":
		return Command{Kind: KindRead}, nil
	case "WRITE":
		cmd := Command{Kind: KindWrite}
		if len(args) == 0 {
			return cmd, fmt.Errorf("WRITE needs data: %w", ErrMissingArgument)
		}
		cmd.Data = strings.Join(args, " ")
		return cmd, nil
	case "CLOSE":
		return Command{Kind: KindClose}, nil
	case "UPLOAD":
		return parseNameCommand(KindUpload, args)
	case "UPLOAD_DATA":
		cmd := Command{Kind: KindUploadData}
		if len(args) == 0 {
			return cmd, fmt.Errorf("UPLOAD_DATA needs a payload: %w", ErrMissingArgument)
		}
		cmd.Data = args[0]
		return cmd, nil
	case "UPLOAD_END":
		return Command{Kind: KindUploadEnd}, nil
	case "DOWNLOAD":
		cmd := Command{Kind: KindDownload}
		if len(args) == 0 {
			return cmd, fmt.Errorf("DOWNLOAD needs a file name: %w", ErrMissingArgument)
		}
		cmd.Name = args[0]
		if len(args) > 1 {
			offset, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil || offset < 0 {
				return cmd, fmt.Errorf("bad offset %q: %w", args[1], ErrInvalidOffset)
			}
			cmd.Offset = offset
		}
		return cmd, nil
	case "LEAVE", "QUIT":
		return Command{Kind: KindLeave}, nil
	}
	return Command{Kind: KindUnknown}, fmt.Errorf("keyword %q: %w", keyword, ErrUnknownCommand)
}

func parseNameCommand(kind Kind, args []string) (Command, error) {
	cmd := Command{Kind: kind}
	if len(args) == 0 {
		return cmd, fmt.Errorf("%s needs a file name: %w", kind.keyword(), ErrMissingArgument)
	}
	cmd.Name = args[0]
	return cmd, nil
}
