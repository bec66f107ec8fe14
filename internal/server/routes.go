package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Job submission (POST) and status polling (GET)
	mux.HandleFunc("/process-pdf", s.handlers.Process.Handle)

	// Processed artifact lifecycle
	mux.HandleFunc("/download-proxied-file", s.handlers.Download.Download)
	mux.HandleFunc("/file-size", s.handlers.Download.FileSize)
	mux.HandleFunc("/delete-processed-file", s.handlers.Download.Delete)

	// Static artifact serving (filesystem backend only)
	if s.handlers.ArtifactRoot != "" {
		fileServer := http.FileServer(http.Dir(s.handlers.ArtifactRoot))
		mux.Handle("/artifacts/", http.StripPrefix("/artifacts/", fileServer))
	}

	// API routes - System
	mux.HandleFunc("/api/version", s.handlers.API.VersionHandler)
	mux.HandleFunc("/api/health", s.handlers.API.HealthHandler)

	return mux
}
