package camera

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestControllerDefaults(t *testing.T) {
	cc := NewCameraController()

	assert.True(t, cc.Position().ApproxEqualThreshold(mgl32.Vec3{0, 2, 5}, 1e-4))
	assert.Equal(t, mgl32.Vec3{}, cc.Target())
	assert.True(t, cc.AutoRotate())
	assert.InDelta(t, math32.Sqrt(29), cc.Radius(), 1e-4)
}

func TestControllerAutoRotate(t *testing.T) {
	cc := NewCameraController(WithAutoRotate(true, 1))
	before := cc.Radius()

	// Fifteen seconds at speed 1 is a quarter turn.
	for range 15 * 60 {
		cc.Update(1.0 / 60)
	}

	assert.InDelta(t, math32.Pi/2, cc.Azimuth(), 1e-2)
	assert.InDelta(t, before, cc.Radius(), 1e-4)
	assert.InDelta(t, 2, cc.Position().Y(), 1e-4, "turntable keeps height")

	cc.SetAutoRotate(false)
	az := cc.Azimuth()
	cc.Update(1)
	assert.Equal(t, az, cc.Azimuth())
}

func TestControllerZoomIsClamped(t *testing.T) {
	cc := NewCameraController(WithRadiusLimits(1, 10))

	cc.Zoom(1000)
	assert.Equal(t, float32(1), cc.Radius())
	cc.Zoom(-1000)
	assert.Equal(t, float32(10), cc.Radius())

	off := NewCameraController(WithZoom(false))
	r := off.Radius()
	off.Zoom(3)
	assert.Equal(t, r, off.Radius())
}

func TestControllerDragClampsElevation(t *testing.T) {
	cc := NewCameraController(WithAutoRotate(false, 0))

	cc.Drag(0, 1e6)
	assert.Less(t, cc.Elevation(), math32.Pi/2)
	assert.Greater(t, cc.Position().Y(), float32(0))

	cc.Drag(0, -1e6)
	assert.Greater(t, cc.Elevation(), -math32.Pi/2)
}

func TestControllerPanMovesTarget(t *testing.T) {
	cc := NewCameraController()
	offset := cc.Position().Sub(cc.Target())

	cc.Pan(100, 0)

	assert.NotEqual(t, mgl32.Vec3{}, cc.Target())
	assert.True(t, cc.Position().Sub(cc.Target()).ApproxEqualThreshold(offset, 1e-4))
}

func TestCameraSetAspect(t *testing.T) {
	c := NewCamera(WithController(NewCameraController()))

	c.SetAspect(16.0 / 9.0)
	assert.InDelta(t, 16.0/9.0, c.Aspect(), 1e-6)
	want := mgl32.Perspective(c.Fov(), 16.0/9.0, DefaultNear, DefaultFar)
	assert.True(t, c.Projection().ApproxEqual(want))

	c.SetAspect(0)
	assert.InDelta(t, 16.0/9.0, c.Aspect(), 1e-6, "invalid aspect is ignored")
}

func TestCameraViewLooksAtTarget(t *testing.T) {
	c := NewCamera(WithController(NewCameraController()))
	c.Update()

	origin := c.View().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, 0, origin.X(), 1e-4)
	assert.InDelta(t, 0, origin.Y(), 1e-4)
	assert.InDelta(t, -math32.Sqrt(29), origin.Z(), 1e-4)
	assert.InDelta(t, 45*math32.Pi/180, c.Fov(), 1e-6)
}
