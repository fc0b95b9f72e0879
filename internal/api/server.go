// Package api exposes the read-only HTTP surface: health, metrics and
// lookups of projected entities by their unique ids.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"projector/internal/storage"
)

// Server is the HTTP API server. It serves Prometheus metrics, health checks
// and read-only entity endpoints backed by the repository.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	repository storage.Repository
	port       int
}

// NewServer creates a new API server instance.
// The repository is made available to all handlers for database access.
func NewServer(port int, repository storage.Repository) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", port),
			Handler:      mux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		mux:        mux,
		repository: repository,
		port:       port,
	}

	s.registerRoutes()

	return s
}

// registerRoutes sets up all HTTP routes
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.Handle("/metrics", s.handleMetrics())

	s.mux.HandleFunc("GET /auctions", s.handleListAuctions)
	s.mux.HandleFunc("GET /auctions/{id}", s.handleGetAuction)
	s.mux.HandleFunc("GET /proposals/{id}", s.handleGetProposal)
	s.mux.HandleFunc("GET /submissions/{id}", s.handleGetSubmission)
}

// Start starts the HTTP server in a goroutine.
// Returns immediately after starting the server.
func (s *Server) Start() error {
	go func() {
		slog.Info("API server starting",
			"port", s.port,
			"endpoints", []string{"/", "/health", "/metrics"},
		)

		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("API server error", "error", err)
		}
	}()

	// Give the server a moment to start
	time.Sleep(100 * time.Millisecond)

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
// Waits for active connections to close or context to timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("API server shutting down...")
	return s.httpServer.Shutdown(ctx)
}
