package camera

import (
	"sync"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// cameraImpl is the implementation of the Camera interface.
type cameraImpl struct {
	mu *sync.Mutex

	up mgl32.Vec3

	fov    float32
	aspect float32
	near   float32
	far    float32

	view           mgl32.Mat4
	projection     mgl32.Mat4
	viewProjection mgl32.Mat4

	controller CameraController
}

// Camera holds perspective settings and computes view/projection matrices
// from an attached CameraController each frame via Update().
type Camera interface {
	// Fov returns the vertical field of view in radians.
	//
	// Returns:
	//   - float32: field of view in radians
	Fov() float32

	// Aspect returns the aspect ratio (width / height).
	//
	// Returns:
	//   - float32: the aspect ratio
	Aspect() float32

	// Near returns the near clipping plane distance.
	//
	// Returns:
	//   - float32: near plane distance
	Near() float32

	// Far returns the far clipping plane distance.
	//
	// Returns:
	//   - float32: far plane distance
	Far() float32

	// Position returns the eye position read from the controller at the last update.
	//
	// Returns:
	//   - mgl32.Vec3: the eye position
	Position() mgl32.Vec3

	// View returns the current view matrix.
	//
	// Returns:
	//   - mgl32.Mat4: the view matrix
	View() mgl32.Mat4

	// Projection returns the current projection matrix.
	//
	// Returns:
	//   - mgl32.Mat4: the projection matrix
	Projection() mgl32.Mat4

	// ViewProjection returns the current combined view-projection matrix.
	//
	// Returns:
	//   - mgl32.Mat4: projection * view
	ViewProjection() mgl32.Mat4

	// SetAspect sets the aspect ratio (width / height) and recomputes matrices.
	// Non-positive values are ignored.
	//
	// Parameters:
	//   - aspect: the aspect ratio
	SetAspect(aspect float32)

	// Controller returns the attached CameraController, or nil.
	//
	// Returns:
	//   - CameraController: the attached controller or nil
	Controller() CameraController

	// SetController attaches a CameraController to the camera.
	//
	// Parameters:
	//   - ctrl: the controller to attach
	SetController(ctrl CameraController)

	// Update reads position/target from the controller and recomputes matrices.
	// If no controller is attached, this method does nothing.
	Update()
}

var _ Camera = &cameraImpl{}

// Default perspective settings.
const (
	DefaultFovDegrees float32 = 45
	DefaultNear       float32 = 0.1
	DefaultFar        float32 = 1000
)

// NewCamera creates a new Camera with default perspective settings: 45° vertical fov,
// near 0.1, far 1000 and a square aspect.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:             &sync.Mutex{},
		up:             mgl32.Vec3{0, 1, 0},
		fov:            DefaultFovDegrees * (math32.Pi / 180),
		aspect:         1,
		near:           DefaultNear,
		far:            DefaultFar,
		view:           mgl32.Ident4(),
		viewProjection: mgl32.Ident4(),
	}
	for _, option := range options {
		option(c)
	}
	c.updateMatrices()
	return c
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) Position() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.controller == nil {
		return mgl32.Vec3{}
	}
	return c.controller.Position()
}

func (c *cameraImpl) View() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

func (c *cameraImpl) Projection() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projection
}

func (c *cameraImpl) ViewProjection() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjection
}

func (c *cameraImpl) SetAspect(aspect float32) {
	if aspect <= 0 || math32.IsInf(aspect, 0) || math32.IsNaN(aspect) {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
	c.updateMatrices()
}

func (c *cameraImpl) Controller() CameraController {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controller
}

func (c *cameraImpl) SetController(ctrl CameraController) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controller = ctrl
	c.updateMatrices()
}

func (c *cameraImpl) Update() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.controller == nil {
		return
	}
	c.updateMatrices()
}

// updateMatrices recalculates the view, projection and view-projection matrices.
// The view matrix is left untouched when no controller is attached.
// Caller must hold the mutex.
func (c *cameraImpl) updateMatrices() {
	c.projection = mgl32.Perspective(c.fov, c.aspect, c.near, c.far)
	if c.controller != nil {
		c.view = mgl32.LookAtV(c.controller.Position(), c.controller.Target(), c.up)
	}
	c.viewProjection = c.projection.Mul4(c.view)
}
