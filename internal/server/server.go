// Package server exposes the picks API over HTTP and WebSocket.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/epinal/sharpline/internal/server/handler"
	"github.com/epinal/sharpline/internal/server/middleware"
	"github.com/epinal/sharpline/internal/server/ws"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port        int
	CORSOrigins []string
}

// Handlers aggregates all HTTP handlers that the server needs to register.
type Handlers struct {
	Health   *handler.HealthHandler
	Picks    *handler.PickHandler
	Pipeline *handler.PipelineHandler
	Archive  *handler.ArchiveHandler
}

// Server is the headless HTTP + WebSocket API for the picks service.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	logger     *slog.Logger
}

// NewServer creates a new Server with all routes registered on the ServeMux
// and middleware (logging, CORS) applied. A nil wsHub skips the /ws route.
func NewServer(cfg Config, handlers Handlers, wsHub *ws.Hub, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	// Health check.
	mux.HandleFunc("GET /api/health", handlers.Health.HealthCheck)

	// Pick endpoints.
	mux.HandleFunc("GET /api/picks", handlers.Picks.ListPicks)
	mux.HandleFunc("GET /api/picks/{id}", handlers.Picks.GetPick)
	mux.HandleFunc("GET /api/games/{gameID}/picks", handlers.Picks.ListPicksByGame)

	// Manual pipeline trigger.
	if handlers.Pipeline != nil {
		mux.HandleFunc("POST /api/pipeline/trigger", handlers.Pipeline.TriggerPipeline)
	}

	// Archive browsing, only when object storage is configured.
	if handlers.Archive != nil {
		mux.HandleFunc("GET /api/archive/picks/{date}", handlers.Archive.GetArchivedPicks)
		mux.HandleFunc("GET /api/archive/snapshots", handlers.Archive.ListSnapshots)
	}

	// Prometheus metrics.
	mux.Handle("GET /metrics", promhttp.Handler())

	// WebSocket endpoint.
	if wsHub != nil {
		mux.HandleFunc("GET /ws", wsHub.HandleWS)
	}

	var h http.Handler = mux
	h = middleware.Logging(logger)(h)
	h = middleware.CORS(cfg.CORSOrigins)(h)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: srv,
		mux:        mux,
		logger:     logger,
	}
}

// Start begins listening for HTTP requests. It blocks until the server
// encounters an error or is shut down.
func (s *Server) Start() error {
	s.logger.Info("server: starting",
		slog.String("addr", s.httpServer.Addr),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server, waiting for in-flight requests
// to complete within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server: shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
