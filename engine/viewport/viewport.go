package viewport

import (
	"log/slog"
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewer/internal/logging"
)

// Surface is the render target resized alongside the camera.
type Surface interface {
	Resize(width, height int)
}

// viewport is the implementation of the Viewport interface.
type viewport struct {
	mu      *sync.Mutex
	cam     camera.Camera
	surface Surface
	logger  *slog.Logger

	width, height int
}

// Viewport keeps the camera aspect and the render surface in step with the window size.
// It is the only writer of the viewport size.
type Viewport interface {
	// Resize sets the camera aspect to width/height and resizes the surface to width x height.
	// Repeating the current size does nothing. Non-positive sizes, reported while the window is
	// minimized, are ignored.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	//
	// Returns:
	//   - bool: true when the size changed
	Resize(width, height int) bool

	// Size returns the current viewport size.
	//
	// Returns:
	//   - int: the width in pixels
	//   - int: the height in pixels
	Size() (int, int)
}

var _ Viewport = &viewport{}

// NewViewport creates a Viewport. The initial size is applied immediately.
//
// Parameters:
//   - cam: the camera whose aspect follows the viewport
//   - surface: the render surface, may be nil
//   - width: the initial width in pixels
//   - height: the initial height in pixels
//   - options: functional options
//
// Returns:
//   - Viewport: the viewport
func NewViewport(cam camera.Camera, surface Surface, width, height int, options ...ViewportBuilderOption) Viewport {
	v := &viewport{
		mu:      &sync.Mutex{},
		cam:     cam,
		surface: surface,
		logger:  logging.NewNop(),
	}
	for _, opt := range options {
		opt(v)
	}
	v.Resize(width, height)
	return v
}

func (v *viewport) Resize(width, height int) bool {
	if width <= 0 || height <= 0 {
		return false
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if width == v.width && height == v.height {
		return false
	}
	v.width, v.height = width, height

	if v.cam != nil {
		v.cam.SetAspect(float32(width) / float32(height))
	}
	if v.surface != nil {
		v.surface.Resize(width, height)
	}
	v.logger.Debug("viewport resized", "width", width, "height", height)
	return true
}

func (v *viewport) Size() (int, int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.width, v.height
}
