// Package engine ties the viewer together: one ViewerContext owning the scene, the camera, the
// renderer and the fallback policy, driven by a single event loop.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewer/engine/config"
	"github.com/Carmen-Shannon/oxy-viewer/engine/fallback"
	"github.com/Carmen-Shannon/oxy-viewer/engine/loader"
	"github.com/Carmen-Shannon/oxy-viewer/engine/metrics"
	"github.com/Carmen-Shannon/oxy-viewer/engine/panel"
	"github.com/Carmen-Shannon/oxy-viewer/engine/profiler"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/Carmen-Shannon/oxy-viewer/engine/scene"
	"github.com/Carmen-Shannon/oxy-viewer/engine/viewport"
	"github.com/Carmen-Shannon/oxy-viewer/engine/watch"
	"github.com/Carmen-Shannon/oxy-viewer/internal/logging"
	"github.com/cogentcore/webgpu/wgpu"
)

// Window is the part of window.Window the viewer drives.
type Window interface {
	SetUpdateCallback(callback func())
	SetResizeCallback(callback func(width, height int))
	SetScrollCallback(callback func(delta float32))
	SetKeyDownCallback(callback func(keyCode uint32))
	SetLeftMouseDownCallback(callback func(x, y int32))
	SetLeftMouseUpCallback(callback func(x, y int32))
	SetMiddleMouseDownCallback(callback func(x, y int32))
	SetMiddleMouseUpCallback(callback func(x, y int32))
	SetMouseMoveCallback(callback func(x, y int32))
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
	SetTitle(title string)
	RequestClose()
	ProcessMessages()
	Close() error
	Width() int
	Height() int
}

// dragMode is the mouse button currently dragging the camera.
type dragMode int

const (
	dragNone dragMode = iota
	dragOrbit
	dragPan
)

// viewer is the implementation of the Viewer interface.
type viewer struct {
	mu     *sync.Mutex
	logger *slog.Logger

	settings config.Settings
	cfg      config.ViewerConfig

	window     Window
	renderer   renderer.Renderer
	scene      scene.Scene
	cam        camera.Camera
	controller camera.CameraController
	viewport   viewport.Viewport
	storage    loader.Storage
	loader     loader.Loader
	policy     fallback.Policy
	panel      panel.Panel
	profiler   profiler.Profiler
	metrics    metrics.Metrics
	watcher    watch.Watcher
	now        func() time.Time
	closeOnce  sync.Once

	// guarded by mu
	requested   string
	loadingSeq  uint64
	displayed   string
	status      string
	posted      []func()
	closed      bool
	drag        dragMode
	dragX       int32
	dragY       int32
	lastTick    time.Time
	lastTitle   string
	renderFails uint64
}

// Viewer is the ViewerContext: it owns every component of a running viewer and drives them from
// one event loop.
//
// The loop runs on the goroutine that calls Run, which must be the goroutine that created the
// window. Load completions reach the loop through Post, so the scene is only ever mutated
// between frames.
type Viewer interface {
	// Run requests the configured asset and runs the render loop until the window closes or ctx
	// is cancelled. Every tick advances the camera controller and renders exactly one frame;
	// an in-flight load never delays a tick.
	//
	// Parameters:
	//   - ctx: stops the loop when cancelled
	//
	// Returns:
	//   - error: ctx.Err() when the loop was stopped by ctx, otherwise nil
	Run(ctx context.Context) error

	// LoadModel requests an asset through the fallback chain. It returns immediately; the outcome
	// shows only in the scene and the status text. A newer call supersedes an older one.
	//
	// Parameters:
	//   - name: the asset name; empty means the default asset
	LoadModel(name string)

	// Post queues fn to run on the loop goroutine before the next frame. After Close, fn runs
	// immediately on the caller's goroutine.
	//
	// Parameters:
	//   - fn: the continuation
	Post(fn func())

	// Status returns the status text, e.g. "Loading chair.glb…" or "Showing placeholder".
	//
	// Returns:
	//   - string: the status text
	Status() string

	// Scene returns the scene.
	//
	// Returns:
	//   - scene.Scene: the scene
	Scene() scene.Scene

	// Panel returns the catalog panel.
	//
	// Returns:
	//   - panel.Panel: the panel
	Panel() panel.Panel

	// Metrics returns the viewer's metrics.
	//
	// Returns:
	//   - metrics.Metrics: the metrics
	Metrics() metrics.Metrics

	// Close stops loading, disposes the scene and releases the renderer and the window.
	// Calling Close again has no effect.
	Close()
}

var _ Viewer = &viewer{}

// NewViewer creates a Viewer for win.
//
// Parameters:
//   - settings: the validated deployment settings
//   - cfg: the embedding parameters
//   - win: the window to render into
//   - options: functional options
//
// Returns:
//   - Viewer: the viewer
//   - error: an error if the renderer or the file watcher could not be created
func NewViewer(settings config.Settings, cfg config.ViewerConfig, win Window, options ...ViewerBuilderOption) (Viewer, error) {
	v := &viewer{
		mu:       &sync.Mutex{},
		logger:   logging.NewNop(),
		settings: settings,
		cfg:      cfg,
		window:   win,
		now:      time.Now,
	}
	for _, opt := range options {
		opt(v)
	}

	if v.storage == nil {
		if settings.BaseURL != "" {
			v.storage = loader.NewHTTPStorage(settings.BaseURL, &http.Client{})
		} else {
			v.storage = loader.NewFSStorage(os.DirFS(settings.ModelsDir))
		}
	}
	v.loader = loader.NewLoader(loader.BackendTypeGLTF,
		loader.WithStorage(v.storage),
		loader.WithTimeout(settings.LoadTimeout),
		loader.WithLogger(v.logger),
	)

	width, height := win.Width(), win.Height()
	v.controller = camera.NewCameraController(
		camera.WithAutoRotate(settings.AutoRotate, settings.AutoRotateSpeed),
		camera.WithZoom(true),
	)
	v.cam = camera.NewCamera(
		camera.WithFovDegrees(45),
		camera.WithAspect(aspect(width, height)),
		camera.WithClipPlanes(0.1, 1000),
		camera.WithController(v.controller),
	)
	v.scene = scene.NewScene("viewer", v.cam,
		scene.WithCentering(settings.CenterModels),
		scene.WithBackground(settings.BackgroundRGBA()),
		scene.WithLogger(v.logger),
	)

	if v.renderer == nil {
		mode := renderer.PresentModeUncapped
		if settings.Window.VSync {
			mode = renderer.PresentModeVSync
		}
		r, err := renderer.NewRenderer(renderer.BackendTypeWGPU, win,
			renderer.WithPresentMode(mode),
			renderer.WithLogger(v.logger),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create renderer: %w", err)
		}
		v.renderer = r
	}
	v.viewport = viewport.NewViewport(v.cam, v.renderer, width, height, viewport.WithLogger(v.logger))

	if v.metrics == nil {
		v.metrics = metrics.NewMetrics(metrics.WithRuntimeCollectors())
	}
	v.profiler = profiler.NewProfiler(profiler.WithLogger(v.logger))

	v.policy = fallback.NewPolicy(v.loader, fallback.InstallerFunc(v.scene.Install),
		fallback.WithDefaultAsset(settings.DefaultAsset),
		fallback.WithWorkers(settings.LoadWorkers),
		fallback.WithDispatcher(v.Post),
		fallback.WithObserver(v.metrics.ObserveTransition),
		fallback.WithObserver(v.observe),
		fallback.WithLogger(v.logger),
	)

	v.panel = panel.NewPanel(settings.Catalog, panel.WithLocked(cfg.UIHidden()), panel.WithLogger(v.logger))
	for _, c := range v.panel.Controls() {
		if err := v.panel.Bind(c.Asset, v.LoadModel); err != nil {
			v.policy.Close()
			return nil, err
		}
	}

	if settings.Watch && settings.BaseURL == "" {
		w, err := watch.NewWatcher(settings.ModelsDir, v.watched, v.reload, watch.WithLogger(v.logger))
		if err != nil {
			v.policy.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", settings.ModelsDir, err)
		}
		v.watcher = w
	}

	v.bindInput()
	return v, nil
}

func aspect(width, height int) float32 {
	if width <= 0 || height <= 0 {
		return 1
	}
	return float32(width) / float32(height)
}

// bindInput routes window events to the viewport, the controller and the panel. Window
// callbacks fire on the loop goroutine while it polls, so they act directly.
func (v *viewer) bindInput() {
	v.window.SetResizeCallback(func(width, height int) {
		v.viewport.Resize(width, height)
	})
	v.window.SetScrollCallback(func(delta float32) {
		v.controller.Zoom(delta)
	})
	v.window.SetKeyDownCallback(v.handleKey)
	v.window.SetLeftMouseDownCallback(func(x, y int32) { v.startDrag(dragOrbit, x, y) })
	v.window.SetLeftMouseUpCallback(func(_, _ int32) { v.endDrag(dragOrbit) })
	v.window.SetMiddleMouseDownCallback(func(x, y int32) { v.startDrag(dragPan, x, y) })
	v.window.SetMiddleMouseUpCallback(func(_, _ int32) { v.endDrag(dragPan) })
	v.window.SetMouseMoveCallback(v.handleMouseMove)
}

func (v *viewer) handleKey(keyCode uint32) {
	switch {
	case keyCode == common.KeyH:
		visible := v.panel.Toggle()
		v.logger.Debug("panel toggled", "visible", visible)
	case keyCode == common.KeyR:
		v.controller.SetAutoRotate(!v.controller.AutoRotate())
	case keyCode == common.KeyEsc:
		v.window.RequestClose()
	case keyCode >= common.Key1 && keyCode <= common.Key9:
		v.panel.Press(int(keyCode - common.Key1))
	}
}

func (v *viewer) startDrag(mode dragMode, x, y int32) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.drag = mode
	v.dragX, v.dragY = x, y
}

func (v *viewer) endDrag(mode dragMode) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.drag == mode {
		v.drag = dragNone
	}
}

func (v *viewer) handleMouseMove(x, y int32) {
	v.mu.Lock()
	mode := v.drag
	dx, dy := float32(x-v.dragX), float32(y-v.dragY)
	v.dragX, v.dragY = x, y
	v.mu.Unlock()

	switch mode {
	case dragOrbit:
		v.controller.Drag(dx, dy)
	case dragPan:
		v.controller.Pan(dx, dy)
	}
}

func (v *viewer) Run(ctx context.Context) error {
	v.LoadModel(v.cfg.RequestedAsset())

	v.mu.Lock()
	v.lastTick = v.now()
	v.mu.Unlock()

	v.window.SetUpdateCallback(func() { v.tick(ctx) })
	v.window.ProcessMessages()
	v.window.SetUpdateCallback(nil)
	return ctx.Err()
}

// tick is one iteration of the render loop.
func (v *viewer) tick(ctx context.Context) {
	if ctx.Err() != nil {
		v.window.RequestClose()
		return
	}
	v.drain()

	v.mu.Lock()
	now := v.now()
	dt := float32(now.Sub(v.lastTick).Seconds())
	v.lastTick = now
	v.mu.Unlock()

	v.controller.Update(dt)
	v.cam.Update()

	if err := v.renderer.Render(v.scene, v.cam); err != nil {
		v.mu.Lock()
		v.renderFails++
		fails := v.renderFails
		v.mu.Unlock()
		if errors.Is(err, renderer.ErrRendererReleased) {
			v.window.RequestClose()
			return
		}
		// a lost surface recovers on the next frame, so only the first failures are worth a line
		if fails <= 3 {
			v.logger.Warn("frame failed", "error", err)
		}
	} else {
		v.metrics.FrameRendered()
	}
	v.profiler.Tick()
	v.updateTitle()
}

// drain runs the continuations posted since the last tick.
func (v *viewer) drain() {
	v.mu.Lock()
	posted := v.posted
	v.posted = nil
	v.mu.Unlock()

	for _, fn := range posted {
		fn()
	}
}

func (v *viewer) updateTitle() {
	title := v.settings.Window.Title
	if status := v.Status(); status != "" {
		title += " - " + status
	}
	if text := v.panel.Text(); text != "" {
		title += "    " + text
	}

	v.mu.Lock()
	changed := title != v.lastTitle
	v.lastTitle = title
	v.mu.Unlock()
	if changed {
		v.window.SetTitle(title)
	}
}

func (v *viewer) LoadModel(name string) {
	if strings.TrimSpace(name) == "" {
		name = v.policy.DefaultAsset()
	}

	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	// the status and the sequence number change together so a completion racing this call
	// cannot overwrite the loading status
	v.requested = name
	v.loadingSeq = v.policy.Request(name)
	v.status = "Loading " + name + "…"
	v.logger.Info("loading asset", "asset", name, "seq", v.loadingSeq)
	v.mu.Unlock()

	// Refresh reads the watched names back through v.mu
	if v.watcher != nil {
		v.watcher.Refresh()
	}
}

// observe turns fallback transitions into log lines and the status text.
func (v *viewer) observe(t fallback.Transition) {
	switch t.To {
	case fallback.RequestingDefault, fallback.Placeholder:
		v.logger.Warn("asset unavailable", "asset", t.Asset, "tier", t.Tier,
			"cause", loader.Classify(t.Err), "error", t.Err, "seq", t.Seq)
		return
	case fallback.Idle:
	default:
		return
	}
	if t.Stale || (t.From != fallback.Installed && t.From != fallback.Placeholder) {
		return
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if t.Seq != v.loadingSeq {
		return
	}
	v.displayed = t.Asset
	switch t.Tier {
	case fallback.TierRequested:
		v.status = "Showing " + t.Asset
	case fallback.TierDefault:
		v.status = "Showing default (" + t.Requested + " unavailable)"
	default:
		v.status = "Showing placeholder"
	}
	v.logger.Info("asset displayed", "asset", t.Asset, "requested", t.Requested, "tier", t.Tier, "seq", t.Seq)
}

// watched lists the files whose change reloads the current request.
func (v *viewer) watched() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	names := []string{v.policy.DefaultAsset()}
	if v.displayed != "" && v.displayed != names[0] {
		names = append(names, v.displayed)
	}
	if v.requested != "" && v.requested != v.displayed && v.requested != names[0] {
		names = append(names, v.requested)
	}
	return names
}

func (v *viewer) reload(name string) {
	v.mu.Lock()
	requested := v.requested
	v.mu.Unlock()
	v.logger.Info("asset changed on disk", "file", name, "reloading", requested)
	v.LoadModel(requested)
}

func (v *viewer) Post(fn func()) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		fn()
		return
	}
	v.posted = append(v.posted, fn)
	v.mu.Unlock()
}

func (v *viewer) Status() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.status
}

func (v *viewer) Scene() scene.Scene {
	return v.scene
}

func (v *viewer) Panel() panel.Panel {
	return v.panel
}

func (v *viewer) Metrics() metrics.Metrics {
	return v.metrics
}

func (v *viewer) Close() {
	v.closeOnce.Do(func() {
		v.policy.Close()

		v.mu.Lock()
		v.closed = true
		v.mu.Unlock()
		// completions queued before close find the policy closed and dispose their fragments
		v.drain()

		if v.watcher != nil {
			if err := v.watcher.Close(); err != nil {
				v.logger.Warn("watcher close failed", "error", err)
			}
		}
		v.scene.Release()
		v.renderer.Release()
		if err := v.window.Close(); err != nil {
			v.logger.Warn("window close failed", "error", err)
		}
	})
}
