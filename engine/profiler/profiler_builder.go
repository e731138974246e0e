package profiler

import (
	"log/slog"
	"time"
)

// ProfilerBuilderOption is a functional option for configuring a Profiler via NewProfiler.
type ProfilerBuilderOption func(*profiler)

// WithInterval sets how often a report is produced.
//
// Parameters:
//   - d: the interval; ignored when not positive
//
// Returns:
//   - ProfilerBuilderOption: a function that sets the interval
func WithInterval(d time.Duration) ProfilerBuilderOption {
	return func(p *profiler) {
		if d > 0 {
			p.updateInterval = d
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) ProfilerBuilderOption {
	return func(p *profiler) {
		if now != nil {
			p.now = now
		}
	}
}

// WithReportCallback registers a function receiving every report.
//
// Parameters:
//   - fn: the callback
//
// Returns:
//   - ProfilerBuilderOption: a function that sets the callback
func WithReportCallback(fn func(Report)) ProfilerBuilderOption {
	return func(p *profiler) {
		p.onReport = fn
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ProfilerBuilderOption {
	return func(p *profiler) {
		if logger != nil {
			p.logger = logger
		}
	}
}
