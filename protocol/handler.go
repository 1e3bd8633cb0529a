package protocol

import (
	"log/slog"

	"github.com/DuarteR-dev/Projet-FTAM/wire"
)

// CommandHandler executes parsed commands against a session and writes the
// reply lines. One handler serves one connection.
type CommandHandler struct {
	session SessionInterface
	w       *wire.Writer
	log     *slog.Logger
}

// NewCommandHandler creates a command handler bound to a session and the
// connection's line writer.
func NewCommandHandler(session SessionInterface, w *wire.Writer, log *slog.Logger) *CommandHandler {
	return &CommandHandler{session: session, w: w, log: log}
}
