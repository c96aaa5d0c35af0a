// Package api is the HTTP surface of the ground-track service: request
// routing, middleware, and the mapping from the internal error taxonomy onto
// HTTP statuses.
package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/satrack/satrack/internal/auth"
	"github.com/satrack/satrack/internal/health"
	"github.com/satrack/satrack/internal/metrics"
	"github.com/satrack/satrack/internal/track"
)

// Config bundles the transport-level settings.
type Config struct {
	Addr      string
	Auth      auth.Config
	RateLimit RateLimitConfig
}

// Server holds the HTTP server and its dependencies.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger

	resolver   Resolver
	searcher   Searcher
	tleFetcher TLEFetcher
	engine     *track.Engine
}

// NewServer creates a configured HTTP server over the resolution and
// computation dependencies.
func NewServer(cfg Config, resolver Resolver, searcher Searcher, fetcher TLEFetcher, engine *track.Engine, logger *slog.Logger) *Server {
	s := &Server{
		logger:     logger,
		resolver:   resolver,
		searcher:   searcher,
		tleFetcher: fetcher,
		engine:     engine,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/groundtrack", s.handleGroundTrack)
	mux.HandleFunc("GET /api/v1/satellites/search", s.handleSearch)
	mux.HandleFunc("GET /api/v1/satellites/{id}", s.handleSatelliteInfo)
	mux.HandleFunc("GET /healthz", health.Healthz)
	mux.HandleFunc("GET /readyz", health.Readyz(nil))
	mux.Handle("GET /metrics", metrics.Handler())

	// Middleware chain: metrics -> logging -> rate limit -> auth -> mux.
	var handler http.Handler = mux
	handler = auth.Middleware(cfg.Auth)(handler)
	handler = rateLimitMiddleware(cfg.RateLimit)(handler)
	handler = loggingMiddleware(logger)(handler)
	handler = metrics.Middleware(handler)

	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// HTTPServer returns the underlying *http.Server for external control (e.g. shutdown).
func (s *Server) HTTPServer() *http.Server {
	return s.httpServer
}

// Handler returns the fully wired handler chain.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// probePath returns true for health/readiness probe paths that should not log at INFO.
func probePath(path string) bool {
	return path == "/healthz" || path == "/readyz"
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.statusCode = code
	sr.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sr := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(sr, r)

			duration := time.Since(start)
			level := slog.LevelInfo
			if probePath(r.URL.Path) {
				level = slog.LevelDebug
			}

			logger.Log(r.Context(), level, "request",
				"component", "api",
				"method", r.Method,
				"path", r.URL.Path,
				"status", strconv.Itoa(sr.statusCode),
				"duration_ms", duration.Milliseconds(),
				"remote_ip", r.RemoteAddr,
			)
		})
	}
}
