package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// MetricsBuilderOption is a functional option for configuring Metrics via NewMetrics.
type MetricsBuilderOption func(*metrics)

// WithRuntimeCollectors also registers the Go runtime and process collectors.
//
// Returns:
//   - MetricsBuilderOption: a function that registers the runtime collectors
func WithRuntimeCollectors() MetricsBuilderOption {
	return func(m *metrics) {
		m.runtime = true
	}
}

// WithRegistry replaces the registry the collectors are registered on.
//
// Parameters:
//   - reg: the registry; ignored when nil
//
// Returns:
//   - MetricsBuilderOption: a function that sets the registry
func WithRegistry(reg *prometheus.Registry) MetricsBuilderOption {
	return func(m *metrics) {
		if reg != nil {
			m.registry = reg
		}
	}
}
