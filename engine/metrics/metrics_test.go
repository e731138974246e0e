package metrics

import (
	"context"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-viewer/engine/fallback"
	"github.com/Carmen-Shannon/oxy-viewer/engine/loader"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveFallbackChain(t *testing.T) {
	m := NewMetrics().(*metrics)
	notFound := fmt.Errorf("%w: missing.glb", loader.ErrAssetNotFound)

	// missing.glb fails, the default fails to decode, the placeholder is installed
	for _, tr := range []fallback.Transition{
		{Seq: 1, From: fallback.Idle, To: fallback.RequestingPrimary},
		{Seq: 1, From: fallback.RequestingPrimary, To: fallback.RequestingDefault, Tier: fallback.TierRequested, Err: notFound, Elapsed: 10 * time.Millisecond},
		{Seq: 1, From: fallback.RequestingDefault, To: fallback.Placeholder, Tier: fallback.TierDefault, Err: loader.ErrDecodeFailure, Elapsed: 20 * time.Millisecond},
		{Seq: 1, From: fallback.Placeholder, To: fallback.Idle, Tier: fallback.TierPlaceholder},
	} {
		m.ObserveTransition(tr)
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(m.fetches.WithLabelValues("requested", "not_found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fetches.WithLabelValues("default", "decode")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.installs.WithLabelValues("placeholder")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.stale))
	assert.Equal(t, 2, testutil.CollectAndCount(m.fetchSeconds))
}

func TestObserveInstallAndStale(t *testing.T) {
	m := NewMetrics().(*metrics)

	m.ObserveTransition(fallback.Transition{Seq: 1, From: fallback.RequestingPrimary, To: fallback.Installed, Tier: fallback.TierRequested})
	m.ObserveTransition(fallback.Transition{Seq: 1, From: fallback.Installed, To: fallback.Idle, Tier: fallback.TierRequested, Stale: true})
	m.ObserveTransition(fallback.Transition{Seq: 2, From: fallback.RequestingPrimary, To: fallback.Idle, Tier: fallback.TierRequested, Err: context.Canceled, Stale: true})
	m.ObserveTransition(fallback.Transition{Seq: 3, From: fallback.Installed, To: fallback.Idle, Tier: fallback.TierDefault})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.fetches.WithLabelValues("requested", "ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.stale))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fetches.WithLabelValues("requested", "canceled")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.installs.WithLabelValues("default")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.installs.WithLabelValues("requested")))
}

func TestFramesAndHandler(t *testing.T) {
	m := NewMetrics(WithRuntimeCollectors())
	for range 3 {
		m.FrameRendered()
	}

	expected := `
# HELP oxy_viewer_frames_total Frames presented.
# TYPE oxy_viewer_frames_total counter
oxy_viewer_frames_total 3
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "oxy_viewer_frames_total"))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "oxy_viewer_frames_total 3")
	assert.Contains(t, string(body), "go_goroutines")
}
