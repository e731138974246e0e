package camera

import (
	"sync"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// autoRotateRate is the azimuth change per second per unit of auto-rotate speed:
// one full turn per minute at speed 1.
const autoRotateRate = 2 * math32.Pi / 60

// cameraControllerImpl is the implementation of CameraController.
// Orbit methods modify spherical coordinates around the target and recompute position;
// pan methods translate both position and target, preserving the orbit relationship.
type cameraControllerImpl struct {
	mu *sync.Mutex

	position mgl32.Vec3
	target   mgl32.Vec3

	// Spherical coordinates (offset from target)
	radius    float32
	azimuth   float32 // around Y, 0 = +Z
	elevation float32 // from the horizontal plane

	minRadius    float32
	maxRadius    float32
	minElevation float32
	maxElevation float32

	mouseSensitivity float32
	zoomSpeed        float32
	panSpeed         float32

	zoomEnabled     bool
	autoRotate      bool
	autoRotateSpeed float32
}

// CameraController owns the eye position and target of a turntable camera.
type CameraController interface {
	// Position returns the camera's world-space position.
	//
	// Returns:
	//   - mgl32.Vec3: world-space camera position
	Position() mgl32.Vec3

	// Target returns the look-at point.
	//
	// Returns:
	//   - mgl32.Vec3: world-space target position
	Target() mgl32.Vec3

	// SetTarget sets the orbit pivot and recomputes position from spherical coordinates.
	//
	// Parameters:
	//   - target: world-space pivot
	SetTarget(target mgl32.Vec3)

	// Orbit rotates around the target. Elevation is clamped.
	//
	// Parameters:
	//   - dAzimuth: horizontal change in radians
	//   - dElevation: vertical change in radians
	Orbit(dAzimuth, dElevation float32)

	// Drag orbits by a mouse movement in pixels, scaled by the mouse sensitivity.
	//
	// Parameters:
	//   - dx, dy: cursor movement in pixels
	Drag(dx, dy float32)

	// Pan translates position and target along the camera's right and up axes.
	//
	// Parameters:
	//   - dx, dy: cursor movement in pixels
	Pan(dx, dy float32)

	// Zoom moves the camera along its view direction. Positive delta moves closer.
	// The radius is clamped, and nothing happens when zoom is disabled.
	//
	// Parameters:
	//   - delta: zoom amount scaled by the zoom speed
	Zoom(delta float32)

	// Radius returns the current distance from the target.
	//
	// Returns:
	//   - float32: orbit radius
	Radius() float32

	// SetRadius sets the orbit radius, clamped to the allowed range.
	//
	// Parameters:
	//   - radius: new distance from target
	SetRadius(radius float32)

	// Azimuth returns the current horizontal angle around the Y axis.
	//
	// Returns:
	//   - float32: azimuth in radians
	Azimuth() float32

	// Elevation returns the current vertical angle from the horizontal plane.
	//
	// Returns:
	//   - float32: elevation in radians
	Elevation() float32

	// AutoRotate reports whether the turntable rotation is on.
	//
	// Returns:
	//   - bool: true when auto-rotating
	AutoRotate() bool

	// SetAutoRotate turns the turntable rotation on or off.
	//
	// Parameters:
	//   - enabled: the new state
	SetAutoRotate(enabled bool)

	// Update advances time-based motion. It is called once per frame.
	//
	// Parameters:
	//   - dt: elapsed time since the previous frame
	Update(dt float32)
}

var _ CameraController = &cameraControllerImpl{}

// NewCameraController creates a turntable controller. Without options the eye sits at (0, 2, 5)
// looking at the origin, auto-rotating at speed 1 with zoom enabled.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewCameraController(options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		mu: &sync.Mutex{},

		minRadius:    0.5,
		maxRadius:    100,
		minElevation: -math32.Pi/2 + 0.01,
		maxElevation: math32.Pi/2 - 0.01,

		mouseSensitivity: 0.005,
		zoomSpeed:        0.5,
		panSpeed:         0.005,

		zoomEnabled:     true,
		autoRotate:      true,
		autoRotateSpeed: 1,
	}
	cc.setEye(mgl32.Vec3{0, 2, 5})

	for _, option := range options {
		option(cc)
	}

	cc.clamp()
	cc.updatePosition()
	return cc
}

// setEye derives the spherical coordinates that place the eye at p.
func (cc *cameraControllerImpl) setEye(p mgl32.Vec3) {
	offset := p.Sub(cc.target)
	cc.radius = offset.Len()
	if cc.radius < 1e-6 {
		cc.radius = cc.minRadius
		cc.azimuth, cc.elevation = 0, 0
		return
	}
	cc.elevation = math32.Asin(offset.Y() / cc.radius)
	cc.azimuth = math32.Atan2(offset.X(), offset.Z())
}

// updatePosition recomputes the camera position from spherical coordinates.
// Caller must hold the mutex.
func (cc *cameraControllerImpl) updatePosition() {
	sinElev, cosElev := math32.Sincos(cc.elevation)
	sinAzim, cosAzim := math32.Sincos(cc.azimuth)
	cc.position = cc.target.Add(mgl32.Vec3{
		cc.radius * cosElev * sinAzim,
		cc.radius * sinElev,
		cc.radius * cosElev * cosAzim,
	})
}

// clamp keeps radius and elevation inside their limits. Caller must hold the mutex.
func (cc *cameraControllerImpl) clamp() {
	cc.radius = mgl32.Clamp(cc.radius, cc.minRadius, cc.maxRadius)
	cc.elevation = mgl32.Clamp(cc.elevation, cc.minElevation, cc.maxElevation)
}

func (cc *cameraControllerImpl) Position() mgl32.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.position
}

func (cc *cameraControllerImpl) Target() mgl32.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.target
}

func (cc *cameraControllerImpl) SetTarget(target mgl32.Vec3) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.target = target
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Orbit(dAzimuth, dElevation float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.azimuth = wrapAngle(cc.azimuth + dAzimuth)
	cc.elevation += dElevation
	cc.clamp()
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Drag(dx, dy float32) {
	cc.mu.Lock()
	s := cc.mouseSensitivity
	cc.mu.Unlock()
	// Dragging right spins the object right, so the eye moves left.
	cc.Orbit(-dx*s, dy*s)
}

func (cc *cameraControllerImpl) Pan(dx, dy float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	forward := cc.target.Sub(cc.position)
	if forward.Len() < 1e-8 {
		return
	}
	forward = forward.Normalize()
	right := forward.Cross(mgl32.Vec3{0, 1, 0})
	if right.Len() < 1e-8 {
		return
	}
	right = right.Normalize()
	up := right.Cross(forward)

	scale := cc.panSpeed * cc.radius
	offset := right.Mul(-dx * scale).Add(up.Mul(dy * scale))
	cc.target = cc.target.Add(offset)
	cc.position = cc.position.Add(offset)
}

func (cc *cameraControllerImpl) Zoom(delta float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	if !cc.zoomEnabled {
		return
	}
	cc.radius -= delta * cc.zoomSpeed
	cc.clamp()
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Radius() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.radius
}

func (cc *cameraControllerImpl) SetRadius(radius float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.radius = radius
	cc.clamp()
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Azimuth() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.azimuth
}

func (cc *cameraControllerImpl) Elevation() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.elevation
}

func (cc *cameraControllerImpl) AutoRotate() bool {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.autoRotate
}

func (cc *cameraControllerImpl) SetAutoRotate(enabled bool) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.autoRotate = enabled
}

func (cc *cameraControllerImpl) Update(dt float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	if !cc.autoRotate || dt <= 0 {
		return
	}
	cc.azimuth = wrapAngle(cc.azimuth + autoRotateRate*cc.autoRotateSpeed*dt)
	cc.updatePosition()
}

// wrapAngle keeps an angle in [-π, π).
func wrapAngle(a float32) float32 {
	a = math32.Mod(a+math32.Pi, 2*math32.Pi)
	if a < 0 {
		a += 2 * math32.Pi
	}
	return a - math32.Pi
}
