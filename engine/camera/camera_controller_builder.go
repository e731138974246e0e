package camera

import "github.com/go-gl/mathgl/mgl32"

// CameraControllerOption is a functional option for configuring a CameraController.
type CameraControllerOption func(*cameraControllerImpl)

// WithTarget sets the orbit pivot. Apply it before WithEye when both are given.
//
// Parameters:
//   - target: world-space pivot
//
// Returns:
//   - CameraControllerOption: functional option to set the target
func WithTarget(target mgl32.Vec3) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.target = target
	}
}

// WithEye places the camera at p relative to the current target.
//
// Parameters:
//   - p: world-space eye position
//
// Returns:
//   - CameraControllerOption: functional option to set the eye position
func WithEye(p mgl32.Vec3) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.setEye(p)
	}
}

// WithRadiusLimits sets the zoom range.
//
// Parameters:
//   - min: closest allowed distance
//   - max: farthest allowed distance
//
// Returns:
//   - CameraControllerOption: functional option to set the limits
func WithRadiusLimits(min, max float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.minRadius = min
		cc.maxRadius = max
	}
}

// WithAutoRotate sets the turntable state and speed. A speed of 1 is one turn per minute.
//
// Parameters:
//   - enabled: whether auto-rotation starts on
//   - speed: the rotation speed
//
// Returns:
//   - CameraControllerOption: functional option to configure auto-rotation
func WithAutoRotate(enabled bool, speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.autoRotate = enabled
		cc.autoRotateSpeed = speed
	}
}

// WithZoom enables or disables zooming.
//
// Parameters:
//   - enabled: whether Zoom has any effect
//
// Returns:
//   - CameraControllerOption: functional option to toggle zoom
func WithZoom(enabled bool) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.zoomEnabled = enabled
	}
}

// WithMouseSensitivity sets the radians per pixel used by Drag.
//
// Parameters:
//   - sensitivity: the multiplier
//
// Returns:
//   - CameraControllerOption: functional option to set the sensitivity
func WithMouseSensitivity(sensitivity float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.mouseSensitivity = sensitivity
	}
}

// WithZoomSpeed sets the distance moved per unit of zoom input.
//
// Parameters:
//   - speed: the multiplier
//
// Returns:
//   - CameraControllerOption: functional option to set the zoom speed
func WithZoomSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.zoomSpeed = speed
	}
}
