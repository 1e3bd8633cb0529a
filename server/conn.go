package server

import (
	"errors"
	"io"
	"net"
	"time"

	"github.com/google/uuid"

	"github.com/DuarteR-dev/Projet-FTAM/protocol"
	"github.com/DuarteR-dev/Projet-FTAM/session"
	"github.com/DuarteR-dev/Projet-FTAM/wire"
)

// handleConn drives one association: banner, then a strict one-command
// one-reply loop until LEAVE, EOF or an unrecoverable socket failure.
func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	log := s.log.With(
		"association", uuid.NewString(),
		"remote", conn.RemoteAddr().String(),
	)
	log.Info("association established")

	sess := session.New(s.baseDir)
	defer sess.Cleanup()

	r := wire.NewReader(conn)
	w := wire.NewWriter(conn)
	handler := protocol.NewCommandHandler(sess, w, log)

	if err := w.WriteRawLine(protocol.Banner); err != nil {
		log.Warn("banner write failed", "error", err)
		return
	}

	for {
		if err := conn.SetReadDeadline(time.Now().Add(s.idleTimeout)); err != nil {
			log.Warn("set read deadline failed", "error", err)
			return
		}
		line, err := r.ReadLine()
		if err != nil {
			switch {
			case errors.Is(err, io.EOF):
				log.Info("association closed by peer")
			case errors.Is(err, wire.ErrLineTooLong):
				log.Warn("oversized line, dropping association")
			default:
				log.Warn("read failed", "error", err)
			}
			return
		}
		if line == "" {
			continue
		}

		quit, err := handler.HandleLine(line)
		if err != nil {
			// Only socket-level failures reach here; protocol errors were
			// already converted to *_ERROR replies.
			log.Warn("write failed", "error", err)
			return
		}
		if quit {
			log.Info("association left")
			return
		}
	}
}
