package engine

import (
	"context"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewer/engine/config"
	"github.com/Carmen-Shannon/oxy-viewer/engine/loader"
	"github.com/Carmen-Shannon/oxy-viewer/engine/metrics"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/Carmen-Shannon/oxy-viewer/internal/testassets"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeWindow runs the update callback in a loop until RequestClose, the until predicate
// or the deadline stops it.
type fakeWindow struct {
	width, height int

	update     func()
	resize     func(width, height int)
	scroll     func(delta float32)
	keyDown    func(keyCode uint32)
	leftDown   func(x, y int32)
	leftUp     func(x, y int32)
	middleDown func(x, y int32)
	middleUp   func(x, y int32)
	mouseMove  func(x, y int32)

	until          func() bool
	ticks          int
	closeRequested bool
	closed         bool
	title          string
}

var _ Window = &fakeWindow{}

func newFakeWindow() *fakeWindow {
	return &fakeWindow{width: 800, height: 600}
}

func (w *fakeWindow) SetUpdateCallback(cb func())                    { w.update = cb }
func (w *fakeWindow) SetResizeCallback(cb func(width, height int))   { w.resize = cb }
func (w *fakeWindow) SetScrollCallback(cb func(delta float32))       { w.scroll = cb }
func (w *fakeWindow) SetKeyDownCallback(cb func(keyCode uint32))     { w.keyDown = cb }
func (w *fakeWindow) SetLeftMouseDownCallback(cb func(x, y int32))   { w.leftDown = cb }
func (w *fakeWindow) SetLeftMouseUpCallback(cb func(x, y int32))     { w.leftUp = cb }
func (w *fakeWindow) SetMiddleMouseDownCallback(cb func(x, y int32)) { w.middleDown = cb }
func (w *fakeWindow) SetMiddleMouseUpCallback(cb func(x, y int32))   { w.middleUp = cb }
func (w *fakeWindow) SetMouseMoveCallback(cb func(x, y int32))       { w.mouseMove = cb }
func (w *fakeWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor     { return nil }
func (w *fakeWindow) SetTitle(title string)                          { w.title = title }
func (w *fakeWindow) RequestClose()                                  { w.closeRequested = true }
func (w *fakeWindow) Close() error                                   { w.closed = true; return nil }
func (w *fakeWindow) Width() int                                     { return w.width }
func (w *fakeWindow) Height() int                                    { return w.height }

func (w *fakeWindow) ProcessMessages() {
	deadline := time.Now().Add(5 * time.Second)
	for !w.closeRequested && time.Now().Before(deadline) {
		if w.update != nil {
			w.update()
			w.ticks++
		}
		if w.until != nil && w.until() {
			return
		}
		time.Sleep(time.Millisecond)
	}
}

// fakeRenderer counts frames and records resizes.
type fakeRenderer struct {
	mu       sync.Mutex
	resizes  [][2]int
	frames   uint64
	released bool
}

var _ renderer.Renderer = &fakeRenderer{}

func (r *fakeRenderer) Resize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resizes = append(r.resizes, [2]int{width, height})
}

func (r *fakeRenderer) Size() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.resizes) == 0 {
		return 0, 0
	}
	last := r.resizes[len(r.resizes)-1]
	return last[0], last[1]
}

func (r *fakeRenderer) Render(frame renderer.FrameSource, _ camera.Camera) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return renderer.ErrRendererReleased
	}
	_ = frame.Models()
	r.frames++
	return nil
}

func (r *fakeRenderer) Frames() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

func (r *fakeRenderer) ResidentMeshes() int { return 0 }

func (r *fakeRenderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.released = true
}

// blockingStorage never answers until the fetch is cancelled.
type blockingStorage struct{}

func (blockingStorage) Fetch(ctx context.Context, _ string) ([]byte, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

type testViewer struct {
	*viewer
	window   *fakeWindow
	renderer *fakeRenderer
	registry *prometheus.Registry
}

func newTestViewer(t *testing.T, query string, storage loader.Storage, options ...ViewerBuilderOption) *testViewer {
	t.Helper()
	settings := config.DefaultSettings()
	settings.Catalog = []string{"chair.glb", "table.glb"}
	win := newFakeWindow()
	r := &fakeRenderer{}
	m := metrics.NewMetrics()

	options = append([]ViewerBuilderOption{WithRenderer(r), WithStorage(storage), WithMetrics(m)}, options...)
	v, err := NewViewer(settings, config.ResolveQuery(query, settings.DefaultAsset), win, options...)
	require.NoError(t, err)
	t.Cleanup(v.Close)
	return &testViewer{viewer: v.(*viewer), window: win, renderer: r, registry: m.Registry()}
}

// run drives the loop until cond holds.
func (tv *testViewer) run(t *testing.T, cond func() bool) {
	t.Helper()
	tv.window.until = cond
	require.NoError(t, tv.Run(context.Background()))
	require.True(t, cond(), "loop stopped before the condition held; status %q", tv.Status())
}

func storageOf(names ...string) loader.Storage {
	fsys := fstest.MapFS{}
	for _, n := range names {
		fsys[n] = &fstest.MapFile{Data: testassets.TriangleGLB([3]float32{0, 0, 0})}
	}
	return loader.NewFSStorage(fsys)
}

// counterValue sums the series of a counter family whose labels include want.
func counterValue(t *testing.T, reg *prometheus.Registry, name string, want map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	total := 0.0
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
	series:
		for _, m := range f.GetMetric() {
			labels := map[string]string{}
			for _, l := range m.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			for k, v := range want {
				if labels[k] != v {
					continue series
				}
			}
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func TestRunInstallsRequestedAsset(t *testing.T) {
	tv := newTestViewer(t, "model=chair.glb", storageOf("chair.glb", "default.glb"))

	tv.run(t, func() bool { return tv.Status() == "Showing chair.glb" })

	assert.Equal(t, uint64(1), tv.Scene().Installs())
	require.NotNil(t, tv.Scene().Displayed())
	assert.Equal(t, "chair.glb", tv.Scene().Displayed().Source())
	assert.Equal(t, 1.0, counterValue(t, tv.registry, "oxy_viewer_asset_fetch_total", map[string]string{"tier": "requested", "result": "ok"}))
	assert.Equal(t, 0.0, counterValue(t, tv.registry, "oxy_viewer_asset_fetch_total", map[string]string{"tier": "default"}))
	assert.Equal(t, 1.0, counterValue(t, tv.registry, "oxy_viewer_installs_total", map[string]string{"kind": "requested"}))
	assert.Contains(t, tv.window.title, "Showing chair.glb")
}

func TestRunWithoutQueryLoadsDefault(t *testing.T) {
	tv := newTestViewer(t, "", storageOf("default.glb"))

	tv.run(t, func() bool { return tv.Status() == "Showing default.glb" })
	assert.Equal(t, "default.glb", tv.Scene().Displayed().Source())
}

func TestMissingAssetFallsBackToDefault(t *testing.T) {
	tv := newTestViewer(t, "model=chair.glb", storageOf("default.glb"))

	tv.run(t, func() bool { return tv.Status() == "Showing default (chair.glb unavailable)" })

	assert.Equal(t, uint64(1), tv.Scene().Installs())
	assert.Equal(t, "default.glb", tv.Scene().Displayed().Source())
	assert.Equal(t, 1.0, counterValue(t, tv.registry, "oxy_viewer_asset_fetch_total", map[string]string{"tier": "requested", "result": "not_found"}))
	assert.Equal(t, 1.0, counterValue(t, tv.registry, "oxy_viewer_asset_fetch_total", map[string]string{"tier": "default", "result": "ok"}))
}

func TestMissingAssetWithoutDefaultShowsPlaceholder(t *testing.T) {
	tv := newTestViewer(t, "model=Missing.glb", storageOf())

	tv.run(t, func() bool { return tv.Status() == "Showing placeholder" })

	assert.Equal(t, 2.0, counterValue(t, tv.registry, "oxy_viewer_asset_fetch_total", map[string]string{"result": "not_found"}))
	assert.Equal(t, uint64(1), tv.Scene().Installs())
	require.NotNil(t, tv.Scene().Displayed())
	assert.Len(t, tv.Scene().Displayed().Meshes(), 5)
	assert.Equal(t, 1.0, counterValue(t, tv.registry, "oxy_viewer_installs_total", map[string]string{"kind": "placeholder"}))
}

func TestSupersededLoadIsDiscarded(t *testing.T) {
	tv := newTestViewer(t, "model=table.glb", storageOf("chair.glb", "table.glb", "default.glb"))
	tv.LoadModel("chair.glb")

	tv.run(t, func() bool {
		return tv.Status() == "Showing table.glb" &&
			counterValue(t, tv.registry, "oxy_viewer_stale_results_total", nil) == 1
	})

	assert.Equal(t, uint64(1), tv.Scene().Installs())
	assert.Equal(t, "table.glb", tv.Scene().Displayed().Source())
}

func TestLoadNeverBlocksTicks(t *testing.T) {
	tick := time.Unix(0, 0)
	clock := func() time.Time {
		tick = tick.Add(time.Second / 60)
		return tick
	}
	tv := newTestViewer(t, "model=chair.glb", blockingStorage{}, WithClock(clock))
	before := tv.controller.Azimuth()

	tv.run(t, func() bool { return tv.renderer.Frames() >= 10 })

	assert.Equal(t, "Loading chair.glb…", tv.Status())
	assert.Equal(t, uint64(tv.window.ticks), tv.renderer.Frames(), "one frame per tick")
	assert.NotEqual(t, before, tv.controller.Azimuth(), "auto-rotation advances while loading")
	assert.Nil(t, tv.Scene().Displayed())
}

func TestRunStopsOnContextCancel(t *testing.T) {
	tv := newTestViewer(t, "", storageOf("default.glb"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := tv.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, tv.window.closeRequested)
	assert.Equal(t, uint64(0), tv.renderer.Frames())
}

func TestResizeUpdatesCameraAndSurface(t *testing.T) {
	tv := newTestViewer(t, "", storageOf())
	require.Equal(t, [][2]int{{800, 600}}, tv.renderer.resizes)

	tv.window.resize(1000, 500)
	tv.window.resize(1000, 500)
	tv.window.resize(0, 0)

	assert.Equal(t, [][2]int{{800, 600}, {1000, 500}}, tv.renderer.resizes)
	assert.InDelta(t, 2.0, tv.cam.Aspect(), 1e-6)
}

func TestKeysDrivePanel(t *testing.T) {
	tv := newTestViewer(t, "", storageOf())
	require.True(t, tv.Panel().Visible())

	tv.window.keyDown('2')
	assert.Equal(t, "Loading table.glb…", tv.Status())

	tv.window.keyDown('H')
	assert.False(t, tv.Panel().Visible())
	tv.window.keyDown('1')
	assert.Equal(t, "Loading table.glb…", tv.Status(), "presses are ignored while hidden")

	tv.window.keyDown('9')
	tv.window.keyDown('H')
	assert.True(t, tv.Panel().Visible())
}

func TestKeysToggleRotationAndClose(t *testing.T) {
	tv := newTestViewer(t, "", storageOf())
	require.True(t, tv.controller.AutoRotate())

	tv.window.keyDown('R')
	assert.False(t, tv.controller.AutoRotate())
	tv.window.keyDown('R')
	assert.True(t, tv.controller.AutoRotate())

	tv.window.keyDown(256)
	assert.True(t, tv.window.closeRequested)
}

func TestHideUIStartsHidden(t *testing.T) {
	tv := newTestViewer(t, "hideUI", storageOf())

	assert.False(t, tv.Panel().Visible())
	tv.window.keyDown('1')
	assert.Empty(t, tv.Status())
}

func TestHideUICannotBeToggledIntoView(t *testing.T) {
	tv := newTestViewer(t, "model=chair.glb&hideUI", storageOf())
	require.True(t, tv.Panel().Locked())

	tv.window.keyDown('H')
	tv.window.keyDown('2')

	assert.False(t, tv.Panel().Visible())
	assert.Empty(t, tv.Status())
}

func TestMouseDragOrbitsAndPans(t *testing.T) {
	tv := newTestViewer(t, "", storageOf())
	azimuth := tv.controller.Azimuth()

	tv.window.leftDown(100, 100)
	tv.window.mouseMove(140, 100)
	assert.NotEqual(t, azimuth, tv.controller.Azimuth())

	tv.window.leftUp(140, 100)
	azimuth = tv.controller.Azimuth()
	tv.window.mouseMove(200, 100)
	assert.Equal(t, azimuth, tv.controller.Azimuth(), "moves without a button do nothing")

	target := tv.controller.Target()
	tv.window.middleDown(0, 0)
	tv.window.mouseMove(20, 10)
	tv.window.middleUp(20, 10)
	assert.NotEqual(t, target, tv.controller.Target())

	radius := tv.controller.Radius()
	tv.window.scroll(1)
	assert.Less(t, tv.controller.Radius(), radius)
}

func TestCloseReleasesEverything(t *testing.T) {
	tv := newTestViewer(t, "", storageOf("default.glb"))
	tv.run(t, func() bool { return tv.Scene().Displayed() != nil })
	displayed := tv.Scene().Displayed()

	tv.Close()
	tv.Close()

	assert.True(t, displayed.Disposed())
	assert.Nil(t, tv.Scene().Displayed())
	assert.True(t, tv.renderer.released)
	assert.True(t, tv.window.closed)

	ran := false
	tv.Post(func() { ran = true })
	assert.True(t, ran, "continuations run inline after close")

	tv.LoadModel("chair.glb")
	assert.Equal(t, "Showing default.glb", tv.Status())
}
