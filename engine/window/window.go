package window

import (
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
)

// Window provides platform windowing and input event handling.
// Wraps platform-specific window implementations with a common interface.
//
// Key codes are GLFW key codes; printable keys use their upper-case ASCII value, so 'H' and
// '1'..'9' compare directly. Every method must be called from the goroutine that created the
// window.
type Window interface {
	// SetUpdateCallback sets the function called each message loop iteration.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetUpdateCallback(callback func())

	// SetResizeCallback sets the function called when the window is resized.
	//
	// Parameters:
	//   - callback: function receiving new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetScrollCallback sets the callback for mouse scroll wheel events.
	//
	// Parameters:
	//   - callback: function receiving scroll delta (positive = up/zoom in, negative = down/zoom out)
	SetScrollCallback(callback func(delta float32))

	// SetKeyDownCallback sets the callback for key press events.
	//
	// Parameters:
	//   - callback: function receiving the virtual key code
	SetKeyDownCallback(callback func(keyCode uint32))

	// SetLeftMouseDownCallback sets the callback for left mouse button press.
	//
	// Parameters:
	//   - callback: function receiving mouse x, y position
	SetLeftMouseDownCallback(callback func(x, y int32))

	// SetLeftMouseUpCallback sets the callback for left mouse button release.
	//
	// Parameters:
	//   - callback: function receiving mouse x, y position
	SetLeftMouseUpCallback(callback func(x, y int32))

	// SetMiddleMouseDownCallback sets the callback for middle mouse button press.
	//
	// Parameters:
	//   - callback: function receiving mouse x, y position
	SetMiddleMouseDownCallback(callback func(x, y int32))

	// SetMiddleMouseUpCallback sets the callback for middle mouse button release.
	//
	// Parameters:
	//   - callback: function receiving mouse x, y position
	SetMiddleMouseUpCallback(callback func(x, y int32))

	// SetMouseMoveCallback sets the callback for mouse movement.
	//
	// Parameters:
	//   - callback: function receiving mouse x, y position
	SetMouseMoveCallback(callback func(x, y int32))

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating a WebGPU surface.
	// The descriptor is platform-appropriate (Windows HWND, X11 Xlib, Wayland, macOS Metal, etc.)
	// and is created by the wgpuglfw bridge from the underlying GLFW window.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor, or nil if window is not initialized
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// SetTitle replaces the title bar text.
	//
	// Parameters:
	//   - title: the new title
	SetTitle(title string)

	// IsRunning returns true if the window is still active.
	//
	// Returns:
	//   - bool: true if window is running, false if closed
	IsRunning() bool

	// RequestClose asks the message loop to stop after the current iteration without
	// destroying the window.
	RequestClose()

	// Close closes the window and releases platform resources.
	//
	// Returns:
	//   - error: error if close operation fails
	Close() error

	// ProcessMessages runs the window message loop.
	// Blocks until the window is closed or RequestClose is called. Calls the update callback
	// each iteration.
	ProcessMessages()

	// Width returns the current window client area width in pixels.
	//
	// Returns:
	//   - int: width in pixels
	Width() int

	// Height returns the current window client area height in pixels.
	//
	// Returns:
	//   - int: height in pixels
	Height() int
}

// engineWindow is the implementation of the Window interface.
type engineWindow struct {
	title               string
	width, height       int
	minWidth, minHeight int

	// internalWindow holds the platform window (*glfwWindow).
	internalWindow any

	onUpdate          func()
	onResize          func(width, height int)
	onScroll          func(delta float32)
	onKeyDown         func(keyCode uint32)
	onLeftMouseDown   func(x, y int32)
	onLeftMouseUp     func(x, y int32)
	onMiddleMouseDown func(x, y int32)
	onMiddleMouseUp   func(x, y int32)
	onMouseMove       func(x, y int32)
}

var _ Window = &engineWindow{}

// NewWindow creates a new Window with the specified options.
// Applies default values first, then each option in order.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the spawned window
//   - error: an error if GLFW or the platform window could not be created
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := &engineWindow{
		title:  "oxy-viewer",
		width:  1280,
		height: 720,
	}
	for _, opt := range options {
		opt(w)
	}
	if err := newPlatformWindow(w); err != nil {
		return nil, fmt.Errorf("failed to create platform window: %w", err)
	}
	return w, nil
}

func (w *engineWindow) SetUpdateCallback(callback func()) {
	w.onUpdate = callback
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) SetScrollCallback(callback func(delta float32)) {
	w.onScroll = callback
}

func (w *engineWindow) SetKeyDownCallback(callback func(keyCode uint32)) {
	w.onKeyDown = callback
}

func (w *engineWindow) SetLeftMouseDownCallback(callback func(x, y int32)) {
	w.onLeftMouseDown = callback
}

func (w *engineWindow) SetLeftMouseUpCallback(callback func(x, y int32)) {
	w.onLeftMouseUp = callback
}

func (w *engineWindow) SetMiddleMouseDownCallback(callback func(x, y int32)) {
	w.onMiddleMouseDown = callback
}

func (w *engineWindow) SetMiddleMouseUpCallback(callback func(x, y int32)) {
	w.onMiddleMouseUp = callback
}

func (w *engineWindow) SetMouseMoveCallback(callback func(x, y int32)) {
	w.onMouseMove = callback
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) SetTitle(title string) {
	if title == w.title {
		return
	}
	w.title = title
	platformSetTitle(w, title)
}

func (w *engineWindow) RequestClose() {
	platformRequestClose(w)
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		if succ := platformProcessMessages(w); !succ {
			break
		}

		if w.onUpdate != nil {
			w.onUpdate()
		}

		runtime.Gosched()
	}
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}
