package light

import "github.com/go-gl/mathgl/mgl32"

// LightBuilderOption is a function that configures a Light instance during construction.
type LightBuilderOption func(*lightImpl)

// WithPosition is an option builder that sets the world-space position of the light.
//
// Parameters:
//   - p: the position
//
// Returns:
//   - LightBuilderOption: a function that applies the position option to a lightImpl
func WithPosition(p mgl32.Vec3) LightBuilderOption {
	return func(l *lightImpl) {
		l.position = p
	}
}

// WithColor is an option builder that sets the RGB color of the light from a 0xRRGGBB value.
//
// Parameters:
//   - hex: the color
//
// Returns:
//   - LightBuilderOption: a function that applies the color option to a lightImpl
func WithColor(hex uint32) LightBuilderOption {
	return func(l *lightImpl) {
		l.color = hexToVec3(hex)
	}
}

// WithGroundColor is an option builder that sets the ground color of a hemisphere light
// from a 0xRRGGBB value.
//
// Parameters:
//   - hex: the color
//
// Returns:
//   - LightBuilderOption: a function that applies the ground color option to a lightImpl
func WithGroundColor(hex uint32) LightBuilderOption {
	return func(l *lightImpl) {
		l.groundColor = hexToVec3(hex)
	}
}

// WithIntensity is an option builder that sets the scalar intensity multiplier.
//
// Parameters:
//   - intensity: the intensity value
//
// Returns:
//   - LightBuilderOption: a function that applies the intensity option to a lightImpl
func WithIntensity(intensity float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.intensity = intensity
	}
}

// WithCastsShadows is an option builder that sets whether the light projects shadows.
//
// Parameters:
//   - castsShadows: true to enable shadow casting
//
// Returns:
//   - LightBuilderOption: a function that applies the shadow casting option to a lightImpl
func WithCastsShadows(castsShadows bool) LightBuilderOption {
	return func(l *lightImpl) {
		l.castsShadows = castsShadows
	}
}

func hexToVec3(hex uint32) mgl32.Vec3 {
	return mgl32.Vec3{
		float32((hex>>16)&0xff) / 255,
		float32((hex>>8)&0xff) / 255,
		float32(hex&0xff) / 255,
	}
}
