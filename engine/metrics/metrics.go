package metrics

import (
	"net/http"

	"github.com/Carmen-Shannon/oxy-viewer/engine/fallback"
	"github.com/Carmen-Shannon/oxy-viewer/engine/loader"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "oxy_viewer"

// metrics is the implementation of the Metrics interface.
type metrics struct {
	registry *prometheus.Registry

	fetches      *prometheus.CounterVec
	fetchSeconds *prometheus.HistogramVec
	installs     *prometheus.CounterVec
	stale        prometheus.Counter
	frames       prometheus.Counter
	runtime      bool
}

// Metrics holds the viewer's Prometheus collectors.
type Metrics interface {
	// ObserveTransition records a fallback chain transition. It is a fallback.Observer.
	//
	// Parameters:
	//   - t: the transition
	ObserveTransition(t fallback.Transition)

	// FrameRendered counts one presented frame.
	FrameRendered()

	// Registry returns the registry holding every collector.
	//
	// Returns:
	//   - *prometheus.Registry: the registry
	Registry() *prometheus.Registry

	// Handler returns the scrape handler for the registry.
	//
	// Returns:
	//   - http.Handler: the /metrics handler
	Handler() http.Handler
}

var _ Metrics = &metrics{}

// NewMetrics creates and registers the viewer collectors on a fresh registry.
//
// Parameters:
//   - options: functional options
//
// Returns:
//   - Metrics: the metrics
func NewMetrics(options ...MetricsBuilderOption) Metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "asset_fetch_total",
			Help:      "Asset fetches by fallback tier and result.",
		}, []string{"tier", "result"}),
		fetchSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "asset_fetch_seconds",
			Help:      "Duration of asset fetches by fallback tier.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 15},
		}, []string{"tier"}),
		installs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "installs_total",
			Help:      "Objects installed into the scene by kind.",
		}, []string{"kind"}),
		stale: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_results_total",
			Help:      "Chain results discarded because a newer request was issued.",
		}),
		frames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_total",
			Help:      "Frames presented.",
		}),
	}
	for _, opt := range options {
		opt(m)
	}
	m.registry.MustRegister(m.fetches, m.fetchSeconds, m.installs, m.stale, m.frames)
	if m.runtime {
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return m
}

func (m *metrics) ObserveTransition(t fallback.Transition) {
	switch t.From {
	case fallback.RequestingPrimary, fallback.RequestingDefault:
		// a fetch step finished, or was cut short by a newer request
		tier := string(t.Tier)
		m.fetches.WithLabelValues(tier, loader.Classify(t.Err)).Inc()
		m.fetchSeconds.WithLabelValues(tier).Observe(t.Elapsed.Seconds())
		if t.To == fallback.Idle && t.Stale {
			m.stale.Inc()
		}
	case fallback.Installed, fallback.Placeholder:
		if t.Stale {
			m.stale.Inc()
			return
		}
		m.installs.WithLabelValues(string(t.Tier)).Inc()
	}
}

func (m *metrics) FrameRendered() {
	m.frames.Inc()
}

func (m *metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
