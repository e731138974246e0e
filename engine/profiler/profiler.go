package profiler

import (
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-viewer/internal/logging"
)

// profiler is the implementation of the Profiler interface.
type profiler struct {
	mu     *sync.Mutex
	logger *slog.Logger
	now    func() time.Time

	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	fps            float64
	onReport       func(Report)
}

// Report is one interval of frame statistics.
type Report struct {
	// FPS is the frame rate over the interval.
	FPS float64
	// HeapMB is the live heap size.
	HeapMB float64
	// AllocRateMB is the allocation rate in MB per second over the interval.
	AllocRateMB float64
	// GCCount is the total number of completed collections.
	GCCount uint32
	// MaxPause is the longest collection pause during the interval.
	MaxPause time.Duration
}

// Profiler tracks frame rate and memory statistics and logs them once per interval.
type Profiler interface {
	// Tick must be called once per presented frame.
	//
	// Returns:
	//   - bool: true if a report was produced this tick
	Tick() bool

	// FPS returns the frame rate of the last completed interval.
	//
	// Returns:
	//   - float64: frames per second, 0 before the first report
	FPS() float64
}

var _ Profiler = &profiler{}

// NewProfiler creates a Profiler reporting once per second.
//
// Parameters:
//   - options: functional options
//
// Returns:
//   - Profiler: the profiler
func NewProfiler(options ...ProfilerBuilderOption) Profiler {
	p := &profiler{
		mu:             &sync.Mutex{},
		logger:         logging.NewNop(),
		now:            time.Now,
		updateInterval: time.Second,
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

func (p *profiler) Tick() bool {
	p.mu.Lock()
	p.frameCount++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		p.mu.Unlock()
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	report := Report{
		FPS:         float64(p.frameCount) / elapsed.Seconds(),
		HeapMB:      float64(p.memStats.Alloc) / 1024 / 1024,
		AllocRateMB: float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds(),
		GCCount:     p.memStats.NumGC,
		MaxPause:    p.maxPause(),
	}

	p.fps = report.FPS
	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = p.memStats.NumGC
	p.lastTotalAlloc = p.memStats.TotalAlloc
	onReport := p.onReport
	p.mu.Unlock()

	p.logger.Debug("frame stats",
		"fps", report.FPS,
		"heap_mb", report.HeapMB,
		"alloc_rate_mb", report.AllocRateMB,
		"gc", report.GCCount,
		"max_pause", report.MaxPause,
	)
	if onReport != nil {
		onReport(report)
	}
	return true
}

// maxPause returns the longest GC pause since the last report. PauseNs is a ring of the last
// 256 pauses. Caller must hold the mutex.
func (p *profiler) maxPause() time.Duration {
	gcCount := p.memStats.NumGC
	start := p.lastGCCount
	if gcCount-start > 256 {
		start = gcCount - 256
	}
	var maxNs uint64
	for i := start; i < gcCount; i++ {
		if pause := p.memStats.PauseNs[i%256]; pause > maxNs {
			maxNs = pause
		}
	}
	return time.Duration(maxNs)
}

func (p *profiler) FPS() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fps
}
