package loader

import (
	"log/slog"
	"time"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithStorage is an option builder that sets where asset bytes are fetched from.
//
// Parameters:
//   - s: the storage backend
//
// Returns:
//   - LoaderBuilderOption: a function that applies the storage option to a loader
func WithStorage(s Storage) LoaderBuilderOption {
	return func(l *loader) {
		l.storage = s
	}
}

// WithTimeout is an option builder that bounds each load. A non-positive value disables the bound.
//
// Parameters:
//   - d: the timeout
//
// Returns:
//   - LoaderBuilderOption: a function that applies the timeout option to a loader
func WithTimeout(d time.Duration) LoaderBuilderOption {
	return func(l *loader) {
		l.timeout = d
	}
}

// WithLogger is an option builder that sets the logger.
//
// Parameters:
//   - logger: the logger; ignored when nil
//
// Returns:
//   - LoaderBuilderOption: a function that applies the logger option to a loader
func WithLogger(logger *slog.Logger) LoaderBuilderOption {
	return func(l *loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}
