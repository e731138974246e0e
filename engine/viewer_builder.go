package engine

import (
	"log/slog"
	"time"

	"github.com/Carmen-Shannon/oxy-viewer/engine/loader"
	"github.com/Carmen-Shannon/oxy-viewer/engine/metrics"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
)

// ViewerBuilderOption is a functional option for configuring a Viewer.
type ViewerBuilderOption func(*viewer)

// WithRenderer sets the renderer instead of creating a GPU renderer for the window.
//
// Parameters:
//   - r: the renderer
//
// Returns:
//   - ViewerBuilderOption: option function to apply
func WithRenderer(r renderer.Renderer) ViewerBuilderOption {
	return func(v *viewer) {
		v.renderer = r
	}
}

// WithStorage sets where assets are fetched from, overriding models_dir and base_url.
//
// Parameters:
//   - s: the asset storage
//
// Returns:
//   - ViewerBuilderOption: option function to apply
func WithStorage(s loader.Storage) ViewerBuilderOption {
	return func(v *viewer) {
		v.storage = s
	}
}

// WithMetrics sets the metrics the viewer records into.
//
// Parameters:
//   - m: the metrics
//
// Returns:
//   - ViewerBuilderOption: option function to apply
func WithMetrics(m metrics.Metrics) ViewerBuilderOption {
	return func(v *viewer) {
		v.metrics = m
	}
}

// WithClock replaces the time source of the render loop.
func WithClock(now func() time.Time) ViewerBuilderOption {
	return func(v *viewer) {
		if now != nil {
			v.now = now
		}
	}
}

// WithLogger sets the logger shared by every viewer component.
func WithLogger(logger *slog.Logger) ViewerBuilderOption {
	return func(v *viewer) {
		if logger != nil {
			v.logger = logger
		}
	}
}
