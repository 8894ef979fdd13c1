package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/wonny/backtester/pkg/config"
	"github.com/wonny/backtester/pkg/logger"
)

// Server represents the HTTP API server
// ⭐ SSOT: API 서버 설정은 이 파일에서만
type Server struct {
	httpServer *http.Server
	logger     *logger.Logger
	config     *config.Config
}

// New creates a new API server. WriteTimeout leaves room for the
// longest external computation.
func New(cfg *config.Config, log *logger.Logger, router http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      router,
			ReadTimeout:  60 * time.Second,
			WriteTimeout: writeTimeout(cfg.Compute.Timeout),
			IdleTimeout:  60 * time.Second,
		},
		logger: log,
		config: cfg,
	}
}

func writeTimeout(compute time.Duration) time.Duration {
	const floor = 15 * time.Second
	if t := compute + 30*time.Second; t > floor {
		return t
	}
	return floor
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.WithFields(map[string]interface{}{
		"port": s.config.Port,
		"env":  s.config.Env,
	}).Info("Starting API server")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	return nil
}
