package protocol

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseCommands(t *testing.T) {
	req := require.New(t)

	tests := []struct {
		line string
		want Command
	}{
		{"LIST", Command{Kind: KindList}},
		{"OPEN notes.txt", Command{Kind: KindOpen, Name: "notes.txt"}},
		{"CREATE new.bin", Command{Kind: KindCreate, Name: "new.bin"}},
		{"RENAME old.txt new.txt", Command{Kind: KindRename, OldName: "old.txt", NewName: "new.txt"}},
		{"DELETE junk", Command{Kind: KindDelete, Name: "junk"}},
		{"READ", Command{Kind: KindRead}},
		{"WRITE hello world", Command{Kind: KindWrite, Data: "hello world"}},
		{"CLOSE", Command{Kind: KindClose}},
		{"UPLOAD big.iso", Command{Kind: KindUpload, Name: "big.iso"}},
		{"UPLOAD_DATA deadbeef", Command{Kind: KindUploadData, Data: "deadbeef"}},
		{"UPLOAD_END", Command{Kind: KindUploadEnd}},
		{"DOWNLOAD big.iso 4096", Command{Kind: KindDownload, Name: "big.iso", Offset: 4096}},
		{"DOWNLOAD big.iso", Command{Kind: KindDownload, Name: "big.iso"}},
		{"LEAVE", Command{Kind: KindLeave}},
		{"QUIT", Command{Kind: KindLeave}},
		{"open notes.txt", Command{Kind: KindOpen, Name: "notes.txt"}},
	}
	for _, tt := range tests {
		cmd, err := Parse(tt.line)
		req.NoError(err, "line %q", tt.line)
		req.Equal(tt.want, cmd, "line %q", tt.line)
	}
}

func TestParseUnknownKeyword(t *testing.T) {
	cmd, err := Parse("FROBNICATE now")
	require.ErrorIs(t, err, ErrUnknownCommand)
	require.Equal(t, KindUnknown, cmd.Kind)
}

func TestParseEmptyLine(t *testing.T) {
	_, err := Parse("   ")
	require.ErrorIs(t, err, ErrUnknownCommand)
}

func TestParseMissingArguments(t *testing.T) {
	req := require.New(t)

	for _, line := range []string{"OPEN", "CREATE", "DELETE", "RENAME only-one", "WRITE", "UPLOAD", "UPLOAD_DATA", "DOWNLOAD"} {
		cmd, err := Parse(line)
		req.ErrorIs(err, ErrMissingArgument, "line %q", line)
		req.NotEqual(KindUnknown, cmd.Kind, "line %q keeps its kind for error replies", line)
	}
}

func TestParseDownloadOffsetValidation(t *testing.T) {
	req := require.New(t)

	for _, line := range []string{"DOWNLOAD f.bin -1", "DOWNLOAD f.bin ten"} {
		cmd, err := Parse(line)
		req.ErrorIs(err, ErrInvalidOffset, "line %q", line)
		req.Equal(KindDownload, cmd.Kind)
	}
}

func TestParseOffsetField(t *testing.T) {
	req := require.New(t)

	offset, err := ParseOffsetField([]string{"UPLOAD_RESUME", "f.bin", "offset=512"})
	req.NoError(err)
	req.Equal(int64(512), offset)

	_, err = ParseOffsetField([]string{"UPLOAD_READY", "f.bin"})
	req.ErrorIs(err, ErrInvalidOffset)

	_, err = ParseOffsetField([]string{"UPLOAD_READY", "offset=xyz"})
	req.ErrorIs(err, ErrInvalidOffset)
}

func TestReasonRoundTrip(t *testing.T) {
	req := require.New(t)

	for _, kind := range []error{
		ErrNotFound, ErrAlreadyExists, ErrNoFileOpen, ErrFileOpen,
		ErrInvalidPath, ErrInvalidOffset, ErrUnknownCommand,
		ErrMissingArgument, ErrUploadNotActive, ErrMalformedPayload,
	} {
		req.ErrorIs(FromReason(Reason(kind)), kind)
	}
	req.ErrorIs(FromReason("something_else"), ErrIOFailure)
}
