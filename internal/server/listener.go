package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync"

	"storekv/internal/engine"
)

// Server owns the TCP listener and the goroutine-per-connection accept
// loop. It holds no store state of its own — every request is routed
// through its Dispatcher to the shared Engine.
type Server struct {
	addr       string
	dispatcher *Dispatcher
	listener   net.Listener

	wg sync.WaitGroup
}

// New builds a Server bound to addr, dispatching onto e.
func New(addr string, e *engine.Engine) *Server {
	return &Server{
		addr:       addr,
		dispatcher: NewDispatcher(e),
	}
}

// ListenAndServe opens the listener and accepts connections until the
// listener is closed (by Shutdown) or accept fails unrecoverably. Each
// accepted connection is served on its own goroutine.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.listener = ln
	slog.Info("listening", "addr", s.addr)

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			slog.Error("accept failed", "error", err)
			return err
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.dispatcher.HandleConnection(conn)
		}()
	}
}

// Shutdown closes the listener, stopping new connections from being
// accepted, and waits (up to ctx's deadline) for in-flight connections to
// finish their current command loop.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.listener != nil {
		if err := s.listener.Close(); err != nil {
			return err
		}
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
