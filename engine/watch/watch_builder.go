package watch

import (
	"log/slog"
	"time"
)

// WatcherBuilderOption is a functional option for configuring a Watcher via NewWatcher.
type WatcherBuilderOption func(*watcher)

// WithDebounce sets how long a file must stay quiet before it is reloaded.
//
// Parameters:
//   - d: the debounce interval; ignored when negative
//
// Returns:
//   - WatcherBuilderOption: a function that sets the interval
func WithDebounce(d time.Duration) WatcherBuilderOption {
	return func(w *watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) WatcherBuilderOption {
	return func(w *watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}
