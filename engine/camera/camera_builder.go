package camera

import "github.com/chewxy/math32"

// CameraBuilderOption is a functional option for configuring a Camera via NewCamera.
type CameraBuilderOption func(*cameraImpl)

// WithFovDegrees sets the camera's vertical field of view in degrees.
//
// Parameters:
//   - degrees: field of view in degrees
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's field of view
func WithFovDegrees(degrees float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.fov = degrees * (math32.Pi / 180)
	}
}

// WithAspect sets the camera's aspect ratio (width / height).
//
// Parameters:
//   - aspect: the aspect ratio to set
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's aspect ratio
func WithAspect(aspect float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		if aspect > 0 {
			c.aspect = aspect
		}
	}
}

// WithClipPlanes sets the near and far clipping distances.
//
// Parameters:
//   - near: near plane distance
//   - far: far plane distance
//
// Returns:
//   - CameraBuilderOption: a function that sets the clip planes
func WithClipPlanes(near, far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.near = near
		c.far = far
	}
}

// WithController attaches a controller at construction.
//
// Parameters:
//   - ctrl: the controller
//
// Returns:
//   - CameraBuilderOption: a function that attaches the controller
func WithController(ctrl CameraController) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.controller = ctrl
	}
}
