package model

import (
	_ "embed"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/go-gl/mathgl/mgl32"
)

// GPUVertexSource is the WGSL definition of the vertex input matching GPUVertex.
//
//go:embed assets/vertex.wgsl
var GPUVertexSource string

// GPUModelDataSource is the WGSL definition of the per-draw ModelData uniform.
//
//go:embed assets/model_data.wgsl
var GPUModelDataSource string

// GPUVertex is the GPU-aligned representation of a single mesh vertex.
// Matches the WGSL VertexInput struct layout exactly (see GPUVertexSource).
// Size: 48 bytes.
type GPUVertex struct {
	Position [3]float32 // offset  0
	Normal   [3]float32 // offset 12
	TexCoord [2]float32 // offset 24
	Color    [4]float32 // offset 32
}

// GPUVertexSize is the stride of GPUVertex in bytes.
const GPUVertexSize = int(unsafe.Sizeof(GPUVertex{}))

// GPUModelData is the per-draw transform uniform.
// Size: 128 bytes.
type GPUModelData struct {
	Model  [16]float32 // offset  0: world transform
	Normal [16]float32 // offset 64: inverse transpose of the world transform
}

// NewGPUModelData builds the uniform for a world transform. A singular transform falls back to
// using the transform itself for normals.
//
// Parameters:
//   - world: the world transform of the draw
//
// Returns:
//   - GPUModelData: the uniform contents
func NewGPUModelData(world mgl32.Mat4) GPUModelData {
	normal := world
	if det := world.Det(); det > 1e-12 || det < -1e-12 {
		normal = world.Inv().Transpose()
	}
	return GPUModelData{Model: world, Normal: normal}
}

// Size returns the size of the GPUModelData struct in bytes.
func (g *GPUModelData) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal returns the raw bytes of the uniform for GPU upload.
func (g *GPUModelData) Marshal() []byte {
	return common.StructToBytes(g)
}
