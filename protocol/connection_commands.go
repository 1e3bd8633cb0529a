package protocol

// handleLeave acknowledges the quit request; the connection driver closes
// the connection once the reply is flushed.
func (h *CommandHandler) handleLeave() (bool, error) {
	if err := h.w.WriteLine(ReplyLeaveOK); err != nil {
		return true, err
	}
	return true, nil
}
