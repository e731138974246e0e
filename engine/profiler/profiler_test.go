package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestTickReportsOncePerInterval(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	var reports []Report
	p := NewProfiler(WithClock(clock.now), WithReportCallback(func(r Report) { reports = append(reports, r) }))

	for range 59 {
		clock.advance(time.Second / 60)
		assert.False(t, p.Tick())
	}
	assert.Zero(t, p.FPS())

	clock.advance(20 * time.Millisecond)
	require.True(t, p.Tick())
	require.Len(t, reports, 1)
	assert.InDelta(t, 60, reports[0].FPS, 0.5)
	assert.InDelta(t, 60, p.FPS(), 0.5)
	assert.Positive(t, reports[0].HeapMB)
}

func TestWithInterval(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	p := NewProfiler(WithClock(clock.now), WithInterval(100*time.Millisecond), WithInterval(0))

	clock.advance(50 * time.Millisecond)
	assert.False(t, p.Tick())
	clock.advance(50 * time.Millisecond)
	assert.True(t, p.Tick())
	assert.InDelta(t, 20, p.FPS(), 1e-6)
}
