package material

import "github.com/Carmen-Shannon/oxy-viewer/common"

// MaterialBuilderOption is a functional option used to configure a Material during construction.
type MaterialBuilderOption func(*material)

// WithName sets the material identifier.
func WithName(name string) MaterialBuilderOption {
	return func(m *material) {
		m.name = name
	}
}

// WithBaseColor sets the RGBA albedo factor.
//
// Parameters:
//   - c: the base color
//
// Returns:
//   - MaterialBuilderOption: a function that sets the base color
func WithBaseColor(c [4]float32) MaterialBuilderOption {
	return func(m *material) {
		m.baseColor = c
	}
}

// WithMetallic sets the metallic factor.
func WithMetallic(v float32) MaterialBuilderOption {
	return func(m *material) {
		m.metallic = v
	}
}

// WithRoughness sets the roughness factor.
func WithRoughness(v float32) MaterialBuilderOption {
	return func(m *material) {
		m.roughness = v
	}
}

// WithDoubleSided disables back-face culling for the material.
func WithDoubleSided(doubleSided bool) MaterialBuilderOption {
	return func(m *material) {
		m.doubleSided = doubleSided
	}
}

// WithUnlit makes the material output its base color without lighting.
func WithUnlit(unlit bool) MaterialBuilderOption {
	return func(m *material) {
		m.unlit = unlit
	}
}

// WithTexture decodes an encoded base color texture. A nil texture leaves the material untextured.
//
// Parameters:
//   - t: the encoded texture
//
// Returns:
//   - MaterialBuilderOption: a function that decodes and stores the texture
func WithTexture(t *common.Texture) MaterialBuilderOption {
	return func(m *material) {
		m.texture, m.textureErr = nil, nil
		if t == nil {
			return
		}
		staging, err := t.Decode()
		if err != nil {
			m.textureErr = err
			return
		}
		m.texture = &staging
	}
}
