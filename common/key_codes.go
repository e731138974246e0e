package common

// Key codes delivered by the window. Printable keys use their upper-case ASCII value, which is
// also the GLFW key code.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyH   uint32 = 72  // toggles the catalog panel
	KeyR   uint32 = 82  // toggles auto-rotation
	KeyEsc uint32 = 256 // closes the viewer (GLFW)

	Key1 uint32 = 49 // first catalog control
	Key9 uint32 = 57 // ninth catalog control
)
