// Package server owns the TCP listener and the per-connection command loop.
// Each accepted connection is served by its own goroutine with its own
// session; connections share nothing but the base directory itself.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"
)

// DefaultIdleTimeout reclaims connections that stopped sending commands.
const DefaultIdleTimeout = 5 * time.Minute

// Server accepts FTAM associations and serves them until the context ends.
type Server struct {
	addr        string
	baseDir     string
	idleTimeout time.Duration
	log         *slog.Logger

	listener net.Listener
	wg       sync.WaitGroup
}

// New configures a server for addr, exposing baseDir. A zero idleTimeout
// falls back to DefaultIdleTimeout.
func New(addr, baseDir string, idleTimeout time.Duration, log *slog.Logger) *Server {
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleTimeout
	}
	if log == nil {
		log = slog.Default()
	}
	return &Server{addr: addr, baseDir: baseDir, idleTimeout: idleTimeout, log: log}
}

// Listen creates the base directory if absent and binds the listener. It is
// separate from Serve so callers (and tests) can learn the bound address
// before serving.
func (s *Server) Listen() error {
	if err := os.MkdirAll(s.baseDir, 0o755); err != nil {
		return fmt.Errorf("bootstrap base directory %q: %w", s.baseDir, err)
	}
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	}
	s.listener = ln
	return nil
}

// Addr returns the bound listener address. Valid after Listen.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Serve accepts connections until ctx is canceled, then closes the listener
// and waits for in-flight connections to finish.
func (s *Server) Serve(ctx context.Context) error {
	if s.listener == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}
	s.log.Info("server started", "addr", s.Addr().String(), "base_dir", s.baseDir)

	go func() {
		<-ctx.Done()
		s.listener.Close()
	}()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				break
			}
			s.log.Warn("accept failed", "error", err)
			continue
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(conn)
		}()
	}

	s.wg.Wait()
	s.log.Info("server stopped")
	return nil
}
