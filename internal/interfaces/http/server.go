package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/herbwise/fangmatch/internal/config"
	"github.com/herbwise/fangmatch/internal/infrastructure/monitoring/logging"
)

// defaultShutdownGrace bounds Stop when no timeout is configured.
const defaultShutdownGrace = 30 * time.Second

// Server wraps http.Server with the project's lifecycle conventions.
type Server struct {
	srv      *http.Server
	logger   logging.Logger
	drainFor time.Duration
}

// NewServer builds the server around an assembled router.
func NewServer(cfg config.ServerConfig, handler http.Handler, log logging.Logger) *Server {
	grace := cfg.ShutdownTimeout
	if grace <= 0 {
		grace = defaultShutdownGrace
	}
	return &Server{
		logger:   log.Named("http"),
		drainFor: grace,
		srv: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
	}
}

// Start blocks serving requests until Stop or a listener error.
func (s *Server) Start() error {
	s.logger.Info("http server listening", logging.String("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop drains in-flight requests and shuts the listener down.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("http server shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, s.drainFor)
	defer cancel()
	return s.srv.Shutdown(shutdownCtx)
}

// Handler exposes the underlying handler for in-process tests.
func (s *Server) Handler() http.Handler { return s.srv.Handler }
