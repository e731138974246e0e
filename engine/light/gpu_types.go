package light

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPULightingSource is the canonical WGSL definition of the Lighting struct.
// Matches GPULighting layout exactly (64 bytes, std140 aligned).
//
//go:embed assets/lighting.wgsl
var GPULightingSource string

// GPULighting is the GPU-aligned representation of the scene lighting uniform.
// Matches the WGSL Lighting struct layout exactly (see GPULightingSource).
// Size: 64 bytes.
type GPULighting struct {
	SkyColor       [3]float32 // offset  0: hemisphere sky color
	HemiIntensity  float32    // offset 12
	GroundColor    [3]float32 // offset 16: hemisphere ground color
	_pad0          float32    // offset 28
	ToLight        [3]float32 // offset 32: normalized direction toward the directional light
	DirIntensity   float32    // offset 44
	DirectionColor [3]float32 // offset 48: directional light color
	_pad1          float32    // offset 60
}

// NewGPULighting folds the enabled lights into a lighting uniform. When several lights of one
// type are enabled, the last one wins.
//
// Parameters:
//   - lights: the scene lights
//
// Returns:
//   - GPULighting: the uniform contents
func NewGPULighting(lights []Light) GPULighting {
	var g GPULighting
	for _, l := range lights {
		if l == nil || !l.Enabled() {
			continue
		}
		switch l.Type() {
		case LightTypeHemisphere:
			g.SkyColor = l.Color()
			g.GroundColor = l.GroundColor()
			g.HemiIntensity = l.Intensity()
		case LightTypeDirectional:
			g.ToLight = l.Direction().Mul(-1)
			g.DirectionColor = l.Color()
			g.DirIntensity = l.Intensity()
		}
	}
	return g
}

// Size returns the size of the GPULighting struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (64)
func (g *GPULighting) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPULighting struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 64-byte buffer ready for GPU upload
func (g *GPULighting) Marshal() []byte {
	buf := make([]byte, 64)
	putVec3 := func(off int, v [3]float32, w float32) {
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(v[0]))
		binary.LittleEndian.PutUint32(buf[off+4:], math.Float32bits(v[1]))
		binary.LittleEndian.PutUint32(buf[off+8:], math.Float32bits(v[2]))
		binary.LittleEndian.PutUint32(buf[off+12:], math.Float32bits(w))
	}
	putVec3(0, g.SkyColor, g.HemiIntensity)
	putVec3(16, g.GroundColor, 0)
	putVec3(32, g.ToLight, g.DirIntensity)
	putVec3(48, g.DirectionColor, 0)
	return buf
}
