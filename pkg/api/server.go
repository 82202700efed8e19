package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/internal/logger"
)

// Server is the API HTTP server.
type Server struct {
	http *http.Server
	cfg  Config

	stopOnce sync.Once
	stopErr  error
}

// NewServer creates a stopped server. A zero Config gets the defaults.
func NewServer(cfg Config, deps RouterDeps) *Server {
	cfg.ApplyDefaults()
	s := &Server{cfg: cfg}
	s.http = &http.Server{
		Addr:         s.Addr(),
		Handler:      NewRouter(deps),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

// Addr is the configured listen address.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
}

// Start listens on Addr and serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.Addr(), err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully.
// It returns nil after a clean shutdown.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	logger.Info("API server listening", "address", ln.Addr().String())

	done := make(chan error, 1)
	go func() { done <- s.http.Serve(ln) }()

	select {
	case <-ctx.Done():
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Stop(stopCtx)
	case err := <-done:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("API server: %w", err)
	}
}

// Stop shuts the server down, waiting for active requests until ctx ends.
// Later calls return the first result.
func (s *Server) Stop(ctx context.Context) error {
	s.stopOnce.Do(func() {
		if err := s.http.Shutdown(ctx); err != nil {
			s.stopErr = fmt.Errorf("API server shutdown: %w", err)
			return
		}
		logger.Info("API server stopped")
	})
	return s.stopErr
}
