package fallback

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/loader"
	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
	"github.com/Carmen-Shannon/oxy-viewer/engine/placeholder"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLoader succeeds for names in assets and reports not-found otherwise.
// Names with a gate block until the gate is closed.
type fakeLoader struct {
	mu       sync.Mutex
	calls    []string
	assets   map[string]bool
	gates    map[string]chan struct{}
	loaded   map[string]model.Model
	honorCtx bool
}

func newFakeLoader(assets ...string) *fakeLoader {
	f := &fakeLoader{assets: map[string]bool{}, gates: map[string]chan struct{}{}, loaded: map[string]model.Model{}}
	for _, a := range assets {
		f.assets[a] = true
	}
	return f
}

func (f *fakeLoader) gate(name string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	g := make(chan struct{})
	f.gates[name] = g
	return g
}

func (f *fakeLoader) Load(ctx context.Context, name string) loader.Outcome {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	gate := f.gates[name]
	f.mu.Unlock()

	if gate != nil {
		if f.honorCtx {
			select {
			case <-gate:
			case <-ctx.Done():
				return loader.Failed(name, ctx.Err())
			}
		} else {
			<-gate
		}
	}

	if f.assets[name] {
		root := model.NewNode(name, model.NewBox(name, mgl32.Vec3{1, 1, 1}, common.DefaultMaterial()))
		m := model.NewModel(model.WithName(name), model.WithSource(name), model.WithRoot(root))
		f.mu.Lock()
		f.loaded[name] = m
		f.mu.Unlock()
		return loader.Loaded(m, name)
	}
	return loader.Failed(name, fmt.Errorf("%w: %s", loader.ErrAssetNotFound, name))
}

// Loaded returns the last fragment produced for name.
func (f *fakeLoader) Loaded(name string) model.Model {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loaded[name]
}

func (f *fakeLoader) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// recorder collects installs and transitions.
type recorder struct {
	mu          sync.Mutex
	installs    []model.Model
	transitions []Transition
}

func (r *recorder) Install(fragment model.Model) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.installs = append(r.installs, fragment)
}

func (r *recorder) observe(t Transition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transitions = append(r.transitions, t)
}

func (r *recorder) Installs() []model.Model {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Model(nil), r.installs...)
}

func (r *recorder) Transitions() []Transition {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Transition(nil), r.transitions...)
}

// loop is a test event loop fed by the policy dispatcher.
type loop chan func()

func (l loop) dispatch(fn func()) { l <- fn }

func (l loop) runOne(t *testing.T) {
	t.Helper()
	select {
	case fn := <-l:
		fn()
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a dispatched result")
	}
}

func newTestPolicy(t *testing.T, l loader.Loader, rec *recorder, ev loop) Policy {
	p := NewPolicy(l, rec,
		WithDefaultAsset("default.glb"),
		WithDispatcher(ev.dispatch),
		WithObserver(rec.observe),
		WithWorkers(2),
	)
	t.Cleanup(p.Close)
	return p
}

func TestResolveChain(t *testing.T) {
	tests := []struct {
		name       string
		assets     []string
		request    string
		wantFinal  State
		wantSource string
		wantTier   Tier
		wantCalls  []string
	}{
		{
			name:       "requested asset loads",
			assets:     []string{"chair.glb", "default.glb"},
			request:    "chair.glb",
			wantFinal:  Installed,
			wantSource: "chair.glb",
			wantTier:   TierRequested,
			wantCalls:  []string{"chair.glb"},
		},
		{
			name:       "failed request falls back to default once",
			assets:     []string{"default.glb"},
			request:    "Missing.glb",
			wantFinal:  Installed,
			wantSource: "default.glb",
			wantTier:   TierDefault,
			wantCalls:  []string{"Missing.glb", "default.glb"},
		},
		{
			name:      "failed default request goes straight to placeholder",
			request:   "default.glb",
			wantFinal: Placeholder,
			wantTier:  TierPlaceholder,
			wantCalls: []string{"default.glb"},
		},
		{
			name:      "both tiers fail",
			request:   "Missing.glb",
			wantFinal: Placeholder,
			wantTier:  TierPlaceholder,
			wantCalls: []string{"Missing.glb", "default.glb"},
		},
		{
			name:       "empty name means default",
			assets:     []string{"default.glb"},
			request:    "",
			wantFinal:  Installed,
			wantSource: "default.glb",
			wantTier:   TierRequested,
			wantCalls:  []string{"default.glb"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fl := newFakeLoader(tt.assets...)
			rec := &recorder{}
			p := newTestPolicy(t, fl, rec, make(loop, 4))

			res := p.Resolve(context.Background(), tt.request)

			assert.Equal(t, tt.wantFinal, res.Final)
			assert.Equal(t, tt.wantSource, res.Source)
			assert.Equal(t, tt.wantTier, res.Tier())
			assert.Equal(t, tt.wantCalls, fl.Calls())
			require.NotNil(t, res.Fragment)
			assert.Empty(t, rec.Installs(), "Resolve does not install")
			for _, f := range res.Failures {
				assert.ErrorIs(t, f.Err(), loader.ErrAssetNotFound)
			}
		})
	}
}

func TestRequestInstallsExactlyOnce(t *testing.T) {
	fl := newFakeLoader("chair.glb")
	rec := &recorder{}
	ev := make(loop, 4)
	p := newTestPolicy(t, fl, rec, ev)

	seq := p.Request("chair.glb")
	ev.runOne(t)

	installs := rec.Installs()
	require.Len(t, installs, 1)
	assert.Equal(t, "chair.glb", installs[0].Source())
	assert.Equal(t, seq, p.Latest())
	assert.Empty(t, ev)
}

func TestRequestMissingWithoutDefaultInstallsPlaceholder(t *testing.T) {
	fl := newFakeLoader()
	rec := &recorder{}
	ev := make(loop, 4)
	p := newTestPolicy(t, fl, rec, ev)

	seq := p.Request("Missing.glb")
	ev.runOne(t)

	assert.Equal(t, []string{"Missing.glb", "default.glb"}, fl.Calls())
	installs := rec.Installs()
	require.Len(t, installs, 1)
	assert.Equal(t, placeholder.Name, installs[0].Name())

	var path []State
	for _, tr := range rec.Transitions() {
		assert.Equal(t, seq, tr.Seq)
		path = append(path, tr.To)
	}
	assert.Equal(t, []State{RequestingPrimary, RequestingDefault, Placeholder, Idle}, path)
}

func TestStaleResultIsDisposed(t *testing.T) {
	fl := newFakeLoader("chair.glb", "sofa.glb")
	slow := fl.gate("chair.glb")
	rec := &recorder{}
	ev := make(loop, 4)
	p := newTestPolicy(t, fl, rec, ev)

	first := p.Request("chair.glb")
	require.Eventually(t, func() bool { return len(fl.Calls()) == 1 }, 5*time.Second, time.Millisecond)
	second := p.Request("sofa.glb")
	assert.Greater(t, second, first)

	ev.runOne(t) // sofa
	close(slow)
	ev.runOne(t) // chair, now stale

	installs := rec.Installs()
	require.Len(t, installs, 1)
	assert.Equal(t, "sofa.glb", installs[0].Source())
	assert.False(t, installs[0].Disposed())

	staleFragment := fl.Loaded("chair.glb")
	require.NotNil(t, staleFragment)
	assert.True(t, staleFragment.Disposed(), "a discarded result must be disposed")

	var stale []Transition
	for _, tr := range rec.Transitions() {
		if tr.Stale {
			stale = append(stale, tr)
		}
	}
	require.Len(t, stale, 1)
	assert.Equal(t, first, stale[0].Seq)
}

func TestNewerRequestCancelsPreviousChain(t *testing.T) {
	fl := newFakeLoader("chair.glb", "sofa.glb", "default.glb")
	fl.honorCtx = true
	fl.gate("chair.glb")
	rec := &recorder{}
	ev := make(loop, 4)
	p := newTestPolicy(t, fl, rec, ev)

	first := p.Request("chair.glb")
	require.Eventually(t, func() bool { return len(fl.Calls()) == 1 }, 5*time.Second, time.Millisecond)
	p.Request("sofa.glb")

	// The cancelled chain stops without trying the default and dispatches nothing worth installing.
	ev.runOne(t)
	ev.runOne(t)

	installs := rec.Installs()
	require.Len(t, installs, 1)
	assert.Equal(t, "sofa.glb", installs[0].Source())
	assert.NotContains(t, fl.Calls(), "default.glb")

	var abandoned bool
	for _, tr := range rec.Transitions() {
		if tr.Seq == first && tr.Stale && tr.From == RequestingPrimary {
			abandoned = true
			assert.ErrorIs(t, tr.Err, context.Canceled)
		}
	}
	assert.True(t, abandoned)
}

func TestResolveCancelsPendingRequest(t *testing.T) {
	fl := newFakeLoader("chair.glb", "sofa.glb", "default.glb")
	fl.honorCtx = true
	fl.gate("chair.glb")
	rec := &recorder{}
	ev := make(loop, 4)
	p := newTestPolicy(t, fl, rec, ev)

	first := p.Request("chair.glb")
	require.Eventually(t, func() bool { return len(fl.Calls()) == 1 }, 5*time.Second, time.Millisecond)

	res := p.Resolve(context.Background(), "sofa.glb")
	require.NotNil(t, res.Fragment)
	assert.Greater(t, res.Seq, first)

	// The gate is never opened, so the pending chain only ends through cancellation.
	ev.runOne(t)
	assert.Empty(t, rec.Installs())
	assert.NotContains(t, fl.Calls(), "default.glb")

	var abandoned bool
	for _, tr := range rec.Transitions() {
		if tr.Seq == first && tr.Stale && tr.From == RequestingPrimary {
			abandoned = true
			assert.ErrorIs(t, tr.Err, context.Canceled)
		}
	}
	assert.True(t, abandoned)
}

func TestRequestAfterClose(t *testing.T) {
	fl := newFakeLoader("chair.glb")
	rec := &recorder{}
	p := newTestPolicy(t, fl, rec, make(loop, 1))

	p.Close()
	p.Close()

	assert.Zero(t, p.Request("chair.glb"))
	assert.Empty(t, fl.Calls())
}
