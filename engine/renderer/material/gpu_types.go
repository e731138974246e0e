package material

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUMaterialSource is the canonical WGSL definition of the MaterialParams struct.
// Matches GPUMaterial layout exactly (32 bytes).
//
//go:embed assets/material_params.wgsl
var GPUMaterialSource string

// GPUMaterial is the GPU-aligned uniform for the surface parameters of one draw.
// Matches the WGSL MaterialParams struct layout exactly (see GPUMaterialSource).
// Size: 32 bytes.
type GPUMaterial struct {
	BaseColor  [4]float32 // offset  0: RGBA albedo factor
	Metallic   float32    // offset 16
	Roughness  float32    // offset 20
	HasTexture float32    // offset 24: 1 when the base color texture is sampled
	Unlit      float32    // offset 28: 1 to skip lighting and output the base color
}

// Size returns the size of the GPUMaterial struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUMaterial) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUMaterial struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 32-byte buffer ready for GPU upload.
func (g *GPUMaterial) Marshal() []byte {
	buf := make([]byte, 32)
	for i, v := range g.BaseColor {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(g.Metallic))
	binary.LittleEndian.PutUint32(buf[20:24], math.Float32bits(g.Roughness))
	binary.LittleEndian.PutUint32(buf[24:28], math.Float32bits(g.HasTexture))
	binary.LittleEndian.PutUint32(buf[28:32], math.Float32bits(g.Unlit))
	return buf
}
