package material

import (
	"github.com/Carmen-Shannon/oxy-viewer/common"
)

// material is the implementation of the Material interface.
type material struct {
	name        string
	baseColor   [4]float32
	metallic    float32
	roughness   float32
	doubleSided bool
	unlit       bool

	texture    *common.TextureStagingData
	textureErr error
}

// Material is the render-side view of a mesh surface. It carries the decoded base color
// texture so the renderer never decodes image data during a frame.
type Material interface {
	// Name returns the material identifier.
	//
	// Returns:
	//   - string: the material name
	Name() string

	// BaseColor returns the RGBA albedo factor.
	//
	// Returns:
	//   - [4]float32: the base color
	BaseColor() [4]float32

	// Metallic returns the metallic factor.
	//
	// Returns:
	//   - float32: the metallic factor in [0, 1]
	Metallic() float32

	// Roughness returns the roughness factor.
	//
	// Returns:
	//   - float32: the roughness factor in [0, 1]
	Roughness() float32

	// DoubleSided reports whether back faces are drawn.
	//
	// Returns:
	//   - bool: true when back-face culling is disabled
	DoubleSided() bool

	// Unlit reports whether lighting is skipped for this material.
	//
	// Returns:
	//   - bool: true for unlit materials
	Unlit() bool

	// Texture returns the decoded base color texture, or nil when the surface is untextured
	// or its texture could not be decoded.
	//
	// Returns:
	//   - *common.TextureStagingData: the RGBA pixels or nil
	Texture() *common.TextureStagingData

	// TextureErr returns the decode error of the base color texture, if any.
	//
	// Returns:
	//   - error: the decode error or nil
	TextureErr() error

	// GPUParams builds the uniform contents for this material.
	//
	// Returns:
	//   - GPUMaterial: the uniform contents
	GPUParams() GPUMaterial
}

var _ Material = &material{}

// NewMaterial creates a white, fully rough, lit material configured by the provided options.
//
// Parameters:
//   - options: variadic list of MaterialBuilderOption functions
//
// Returns:
//   - Material: the new material
func NewMaterial(options ...MaterialBuilderOption) Material {
	m := &material{
		baseColor: [4]float32{1, 1, 1, 1},
		roughness: 1,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// FromCommon converts an asset material, decoding its base color texture.
// A texture that fails to decode is dropped and reported through TextureErr.
//
// Parameters:
//   - src: the asset material
//
// Returns:
//   - Material: the render material
func FromCommon(src common.Material) Material {
	return NewMaterial(
		WithName(src.Name),
		WithBaseColor(src.BaseColor),
		WithMetallic(src.Metallic),
		WithRoughness(src.Roughness),
		WithDoubleSided(src.DoubleSided),
		WithTexture(src.BaseColorTexture),
	)
}

func (m *material) Name() string {
	return m.name
}

func (m *material) BaseColor() [4]float32 {
	return m.baseColor
}

func (m *material) Metallic() float32 {
	return m.metallic
}

func (m *material) Roughness() float32 {
	return m.roughness
}

func (m *material) DoubleSided() bool {
	return m.doubleSided
}

func (m *material) Unlit() bool {
	return m.unlit
}

func (m *material) Texture() *common.TextureStagingData {
	return m.texture
}

func (m *material) TextureErr() error {
	return m.textureErr
}

func (m *material) GPUParams() GPUMaterial {
	g := GPUMaterial{
		BaseColor: m.baseColor,
		Metallic:  m.metallic,
		Roughness: m.roughness,
	}
	if m.texture != nil {
		g.HasTexture = 1
	}
	if m.unlit {
		g.Unlit = 1
	}
	return g
}
