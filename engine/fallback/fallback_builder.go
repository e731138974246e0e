package fallback

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-viewer/engine/placeholder"
)

// PolicyBuilderOption is a functional option for configuring a Policy via NewPolicy.
type PolicyBuilderOption func(*policy)

// WithDefaultAsset is an option builder that sets the asset tried after the requested one fails.
//
// Parameters:
//   - name: the default asset name; ignored when empty
//
// Returns:
//   - PolicyBuilderOption: a function that applies the default asset option to a policy
func WithDefaultAsset(name string) PolicyBuilderOption {
	return func(p *policy) {
		if name != "" {
			p.defaultAsset = name
		}
	}
}

// WithGenerator is an option builder that replaces the placeholder generator.
//
// Parameters:
//   - g: the generator
//
// Returns:
//   - PolicyBuilderOption: a function that applies the generator option to a policy
func WithGenerator(g placeholder.Generator) PolicyBuilderOption {
	return func(p *policy) {
		if g != nil {
			p.generator = g
		}
	}
}

// WithDispatcher is an option builder that sets how results are delivered to the event loop.
// Without it, results are installed on the worker goroutine.
//
// Parameters:
//   - d: the dispatcher
//
// Returns:
//   - PolicyBuilderOption: a function that applies the dispatcher option to a policy
func WithDispatcher(d Dispatcher) PolicyBuilderOption {
	return func(p *policy) {
		p.dispatch = d
	}
}

// WithWorkers is an option builder that sets how many chains may load concurrently.
//
// Parameters:
//   - n: the worker count
//
// Returns:
//   - PolicyBuilderOption: a function that applies the worker count option to a policy
func WithWorkers(n int) PolicyBuilderOption {
	return func(p *policy) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithObserver is an option builder that registers a transition observer.
//
// Parameters:
//   - o: the observer
//
// Returns:
//   - PolicyBuilderOption: a function that applies the observer option to a policy
func WithObserver(o Observer) PolicyBuilderOption {
	return func(p *policy) {
		if o != nil {
			p.observers = append(p.observers, o)
		}
	}
}

// WithLogger is an option builder that sets the logger.
//
// Parameters:
//   - logger: the logger; ignored when nil
//
// Returns:
//   - PolicyBuilderOption: a function that applies the logger option to a policy
func WithLogger(logger *slog.Logger) PolicyBuilderOption {
	return func(p *policy) {
		if logger != nil {
			p.logger = logger
		}
	}
}
