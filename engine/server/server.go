package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/Carmen-Shannon/oxy-viewer/engine/panel"
	"github.com/Carmen-Shannon/oxy-viewer/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// shutdownTimeout bounds how long in-flight requests may take once the server stops.
const shutdownTimeout = 5 * time.Second

// CatalogEntry is one model of the catalog response.
type CatalogEntry struct {
	Asset string `json:"asset"`
	Label string `json:"label"`
}

// Catalog is the body of GET /catalog.
type Catalog struct {
	Default string         `json:"default"`
	Models  []CatalogEntry `json:"models"`
}

// server is the implementation of the Server interface.
type server struct {
	models  fs.FS
	catalog Catalog
	metrics http.Handler
	logger  *slog.Logger
	router  chi.Router
}

// Server serves a models directory to viewers started with a base URL.
//
// Routes:
//
//	GET /models/*  the asset files
//	GET /catalog   the catalog as JSON
//	GET /healthz   liveness
//	GET /metrics   Prometheus metrics, when a metrics handler is set
type Server interface {
	// Handler returns the HTTP handler with every route mounted.
	//
	// Returns:
	//   - http.Handler: the router
	Handler() http.Handler

	// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
	//
	// Parameters:
	//   - ctx: stops the server when cancelled
	//   - addr: the listen address, e.g. ":8080"
	//
	// Returns:
	//   - error: an error if the listener fails; nil after a clean shutdown
	Serve(ctx context.Context, addr string) error
}

var _ Server = &server{}

// NewServer creates a Server for the models file system.
//
// Parameters:
//   - models: the models directory, or nil to serve only the catalog, health and metrics routes
//   - catalog: the catalog asset names
//   - defaultAsset: the default asset name
//   - options: functional options
//
// Returns:
//   - Server: the server
func NewServer(models fs.FS, catalog []string, defaultAsset string, options ...ServerBuilderOption) Server {
	s := &server{
		models:  models,
		catalog: Catalog{Default: defaultAsset, Models: make([]CatalogEntry, 0, len(catalog))},
		logger:  logging.NewNop(),
	}
	for _, asset := range catalog {
		s.catalog.Models = append(s.catalog.Models, CatalogEntry{Asset: asset, Label: panel.Label(asset)})
	}
	for _, opt := range options {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	r.Get("/catalog", s.handleCatalog)
	if s.models != nil {
		r.Handle("/models/*", http.StripPrefix("/models/", http.FileServer(http.FS(s.models))))
	}
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}
	return r
}

func (s *server) handleCatalog(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.catalog); err != nil {
		s.logger.Error("catalog response encode failed", "error", err)
	}
}

// requestLogger logs one line per request at debug level, and failures at warn.
func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		level := slog.LevelDebug
		if ww.Status() >= http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		s.logger.Log(r.Context(), level, "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *server) Handler() http.Handler {
	return s.router
}

func (s *server) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.serve(ctx, ln)
}

func (s *server) serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("asset server listening", "addr", ln.Addr().String())
		serverErrors <- srv.Serve(ln)
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("asset server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "error", err)
		_ = srv.Close()
	}
	s.logger.Info("asset server stopped")
	return nil
}
