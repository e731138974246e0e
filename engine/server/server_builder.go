package server

import (
	"log/slog"
	"net/http"
)

// ServerBuilderOption is a functional option for configuring a Server via NewServer.
type ServerBuilderOption func(*server)

// WithMetricsHandler mounts h at /metrics.
//
// Parameters:
//   - h: the metrics handler
//
// Returns:
//   - ServerBuilderOption: a function that sets the metrics handler
func WithMetricsHandler(h http.Handler) ServerBuilderOption {
	return func(s *server) {
		s.metrics = h
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ServerBuilderOption {
	return func(s *server) {
		if logger != nil {
			s.logger = logger
		}
	}
}
