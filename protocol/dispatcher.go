package protocol

import "fmt"

// HandleLine parses and executes one command line. The returned quit flag is
// true after LEAVE; the returned error is reserved for connection-level I/O
// failures. Every protocol error becomes a *_ERROR reply instead.
func (h *CommandHandler) HandleLine(line string) (quit bool, err error) {
	cmd, parseErr := Parse(line)
	if parseErr != nil {
		return false, h.replyError(cmd.Kind, parseErr)
	}
	return h.Handle(cmd)
}

// Handle dispatches a parsed command. The switch is exhaustive over the
// closed command set.
func (h *CommandHandler) Handle(cmd Command) (quit bool, err error) {
	switch cmd.Kind {
	case KindList:
		return false, h.handleList()
	case KindOpen:
		return false, h.handleOpen(cmd.Name)
	case KindCreate:
		return false, h.handleCreate(cmd.Name)
	case KindRename:
		return false, h.handleRename(cmd.OldName, cmd.NewName)
	case KindDelete:
		return false, h.handleDelete(cmd.Name)
	case KindRead:
		return false, h.handleRead()
	case KindWrite:
		return false, h.handleWrite(cmd.Data)
	case KindClose:
		return false, h.handleClose()
	case KindUpload:
		return false, h.handleUpload(cmd.Name)
	case KindUploadData:
		return false, h.handleUploadData(cmd.Data)
	case KindUploadEnd:
		return false, h.handleUploadEnd()
	case KindDownload:
		return false, h.handleDownload(cmd.Name, cmd.Offset)
	case KindLeave:
		return h.handleLeave()
	case KindUnknown:
		return false, h.replyError(KindUnknown, ErrUnknownCommand)
	}
	return false, fmt.Errorf("unhandled command kind %d", cmd.Kind)
}

// replyError converts a protocol error into the error reply for the given
// command kind. Upload-family errors carry the last known-good offset so the
// client can retry the same block without re-deriving it.
func (h *CommandHandler) replyError(kind Kind, cause error) error {
	reason := Reason(cause)
	h.log.Debug("command failed", "command", kind.keyword(), "reason", reason)
	switch kind {
	case KindUpload, KindUploadData, KindUploadEnd:
		return h.w.WriteLine(ReplyUploadError, reason, FormatOffset(h.session.UploadOffset()))
	default:
		return h.w.WriteLine(kind.ErrorKeyword(), reason)
	}
}
