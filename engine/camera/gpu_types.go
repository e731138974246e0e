package camera

import (
	_ "embed"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-viewer/common"
)

// GPUCameraUniformSource is the canonical WGSL definition of the CameraUniform struct.
// Matches GPUCameraUniform layout exactly (80 bytes).
//
//go:embed assets/camera_uniform.wgsl
var GPUCameraUniformSource string

// GPUCameraUniform is the GPU-aligned representation of the per-frame camera data.
// Size: 80 bytes.
type GPUCameraUniform struct {
	ViewProj [16]float32 // offset  0: column-major view-projection matrix
	Eye      [3]float32  // offset 64: world-space eye position
	_pad0    float32     // offset 76
}

// NewGPUCameraUniform snapshots the camera matrices for upload.
//
// Parameters:
//   - c: the camera to snapshot
//
// Returns:
//   - GPUCameraUniform: the uniform contents
func NewGPUCameraUniform(c Camera) GPUCameraUniform {
	return GPUCameraUniform{
		ViewProj: c.ViewProjection(),
		Eye:      c.Position(),
	}
}

// Size returns the size of the GPUCameraUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (80)
func (g *GPUCameraUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal returns the raw bytes of the uniform for GPU upload.
//
// Returns:
//   - []byte: 80-byte view of the struct
func (g *GPUCameraUniform) Marshal() []byte {
	return common.StructToBytes(g)
}
