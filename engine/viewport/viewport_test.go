package viewport

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSurface struct {
	sizes [][2]int
}

func (f *fakeSurface) Resize(width, height int) {
	f.sizes = append(f.sizes, [2]int{width, height})
}

func TestNewViewportAppliesInitialSize(t *testing.T) {
	cam := camera.NewCamera()
	surface := &fakeSurface{}
	v := NewViewport(cam, surface, 1280, 720)

	w, h := v.Size()
	assert.Equal(t, 1280, w)
	assert.Equal(t, 720, h)
	assert.InDelta(t, 1280.0/720.0, cam.Aspect(), 1e-6)
	assert.Equal(t, [][2]int{{1280, 720}}, surface.sizes)
}

func TestResizeSetsAspectAndSurface(t *testing.T) {
	tests := []struct {
		name   string
		width  int
		height int
	}{
		{"landscape", 1920, 1080},
		{"portrait", 600, 900},
		{"square", 512, 512},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := camera.NewCamera()
			surface := &fakeSurface{}
			v := NewViewport(cam, surface, 100, 100)

			assert.True(t, v.Resize(tt.width, tt.height))
			assert.InDelta(t, float32(tt.width)/float32(tt.height), cam.Aspect(), 1e-6)
			require.Len(t, surface.sizes, 2)
			assert.Equal(t, [2]int{tt.width, tt.height}, surface.sizes[1])
		})
	}
}

func TestResizeIsIdempotent(t *testing.T) {
	cam := camera.NewCamera()
	surface := &fakeSurface{}
	v := NewViewport(cam, surface, 800, 600)
	aspect := cam.Aspect()

	assert.False(t, v.Resize(800, 600))
	assert.False(t, v.Resize(800, 600))
	assert.Len(t, surface.sizes, 1)
	assert.Equal(t, aspect, cam.Aspect())
}

func TestResizeIgnoresMinimizedWindow(t *testing.T) {
	cam := camera.NewCamera()
	surface := &fakeSurface{}
	v := NewViewport(cam, surface, 800, 600)

	assert.False(t, v.Resize(0, 0))
	assert.False(t, v.Resize(800, -1))
	w, h := v.Size()
	assert.Equal(t, 800, w)
	assert.Equal(t, 600, h)
	assert.InDelta(t, 800.0/600.0, cam.Aspect(), 1e-6)
	assert.Len(t, surface.sizes, 1)
}

func TestNilSurface(t *testing.T) {
	cam := camera.NewCamera()
	v := NewViewport(cam, nil, 400, 200)
	assert.InDelta(t, 2.0, cam.Aspect(), 1e-6)
	assert.True(t, v.Resize(200, 400))
	assert.InDelta(t, 0.5, cam.Aspect(), 1e-6)
}
