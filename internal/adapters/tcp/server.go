// Package tcp serves record streams over plain TCP connections. Each
// connection is one stream; once the client half-closes its side the server
// replies with the ledger snapshot as CSV.
package tcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/SscSPs/payments_engine/internal/adapters/csvio"
	portssvc "github.com/SscSPs/payments_engine/internal/core/ports/services"
	"github.com/SscSPs/payments_engine/internal/middleware"
)

// Server accepts connections and feeds each one to the engine.
type Server struct {
	engine portssvc.EngineSvcFacade
	logger *slog.Logger

	mu       sync.Mutex
	listener net.Listener
	conns    sync.WaitGroup
}

// NewServer creates a Server. Call Listen and then Serve.
func NewServer(engine portssvc.EngineSvcFacade, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{engine: engine, logger: logger}
}

// Listen binds addr. Use ":0" to pick a free port.
func (s *Server) Listen(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	return nil
}

// Addr returns the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve accepts connections until ctx is done, then closes the listener and
// waits for open connections to finish. Cancelling ctx also aborts in-flight
// streams; operations already being applied complete.
func (s *Server) Serve(ctx context.Context) error {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()
	if ln == nil {
		return errors.New("tcp server: Serve called before Listen")
	}

	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()

	s.logger.Info("TCP server listening", slog.String("addr", ln.Addr().String()))
	for {
		conn, err := ln.Accept()
		if err != nil {
			s.conns.Wait()
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}
		s.conns.Add(1)
		go func() {
			defer s.conns.Done()
			s.handle(ctx, conn)
		}()
	}
}

func (s *Server) handle(ctx context.Context, conn net.Conn) {
	remote := conn.RemoteAddr().String()
	logger := s.logger.With(slog.String("remote", remote))
	ctx = middleware.WithLogger(ctx, logger)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	// unblock a pending read when the server shuts down
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()
	defer conn.Close()

	report, err := s.engine.ProcessStream(ctx, csvio.NewReader(conn, remote, "tcp"))
	if err != nil {
		logger.Warn("Connection stream ended early", slog.String("error", err.Error()))
		return
	}

	accounts, err := s.engine.Snapshot(ctx)
	if err != nil {
		logger.Error("Failed to build snapshot", slog.String("error", err.Error()))
		return
	}
	if err := csvio.NewWriter(conn).WriteAccounts(accounts); err != nil {
		logger.Warn("Failed to write snapshot", slog.String("error", err.Error()))
		return
	}
	logger.Info("Connection served",
		slog.String("stream_id", report.StreamID),
		slog.Int("records", report.Records),
		slog.Int("rejected", report.TotalRejected()))
}
