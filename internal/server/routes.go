package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// API routes - Summarization (bearer-token protected)
	mux.HandleFunc("/api/summarize", s.requireBearerToken(s.app.SummarizeHandler.SummarizeHandler))
	mux.HandleFunc("/api/summarize/file", s.requireBearerToken(s.app.SummarizeHandler.SummarizeFileHandler))

	// API routes - System
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	// Catch-all for unknown API routes
	mux.HandleFunc("/api/", s.app.APIHandler.NotFoundHandler)

	return mux
}
