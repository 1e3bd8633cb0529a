package protocol

import "github.com/DuarteR-dev/Projet-FTAM/wire"

// Single-shot file management commands. Each maps one command to one session
// operation and one reply line.

func (h *CommandHandler) handleList() error {
	names, err := h.session.List()
	if err != nil {
		return h.replyError(KindList, err)
	}
	fields := append([]string{ReplyListOK}, names...)
	return h.w.WriteLine(fields...)
}

func (h *CommandHandler) handleOpen(name string) error {
	if err := h.session.Open(name); err != nil {
		return h.replyError(KindOpen, err)
	}
	return h.w.WriteLine(ReplyOpenOK, name)
}

func (h *CommandHandler) handleCreate(name string) error {
	if err := h.session.Create(name); err != nil {
		return h.replyError(KindCreate, err)
	}
	return h.w.WriteLine(ReplyCreateOK, name)
}

func (h *CommandHandler) handleRename(oldName, newName string) error {
	if err := h.session.Rename(oldName, newName); err != nil {
		return h.replyError(KindRename, err)
	}
	return h.w.WriteLine(ReplyRenameOK, oldName, newName)
}

func (h *CommandHandler) handleDelete(name string) error {
	if err := h.session.Delete(name); err != nil {
		return h.replyError(KindDelete, err)
	}
	return h.w.WriteLine(ReplyDeleteOK, name)
}

func (h *CommandHandler) handleRead() error {
	content, err := h.session.Read()
	if err != nil {
		return h.replyError(KindRead, err)
	}
	// Hex keeps the reply on one line whatever the file contains.
	return h.w.WriteLine(ReplyReadOK, wire.EncodeBinary(content))
}

func (h *CommandHandler) handleWrite(data string) error {
	if err := h.session.Write([]byte(data)); err != nil {
		return h.replyError(KindWrite, err)
	}
	return h.w.WriteLine(ReplyWriteOK)
}

func (h *CommandHandler) handleClose() error {
	name, err := h.session.CloseFile()
	if err != nil {
		return h.replyError(KindClose, err)
	}
	return h.w.WriteLine(ReplyCloseOK, name)
}
