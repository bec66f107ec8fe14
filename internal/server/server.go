package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docsmart/internal/common"
	"github.com/ternarybob/docsmart/internal/handlers"
)

// Handlers bundles the HTTP handlers the server routes to.
type Handlers struct {
	Process  *handlers.ProcessHandler
	Download *handlers.DownloadHandler
	API      *handlers.APIHandler

	// ArtifactRoot enables static artifact serving under /artifacts/
	// for the filesystem backend; empty disables it.
	ArtifactRoot string
}

// Server manages the HTTP server and routes
type Server struct {
	config   *common.Config
	handlers Handlers
	logger   arbor.ILogger
	router   *http.ServeMux
	server   *http.Server
}

// New creates a new HTTP server with the given handlers
func New(cfg *common.Config, h Handlers, logger arbor.ILogger) *Server {
	s := &Server{
		config:   cfg,
		handlers: h,
		logger:   logger,
	}

	// Setup routes
	s.router = s.setupRoutes()

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.withMiddleware(s.router),
		// Long read/write timeouts: uploads and proxied downloads move
		// whole documents.
		ReadTimeout:  5 * time.Minute,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start starts the HTTP server
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)

	s.logger.Info().
		Str("address", addr).
		Msg("HTTP server starting")

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Shutting down HTTP server...")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info().Msg("HTTP server stopped")
	return nil
}
