package light

import "github.com/go-gl/mathgl/mgl32"

// LightType identifies the kind of light source.
type LightType int

const (
	// LightTypeDirectional represents a distant light shining from its position toward the origin.
	// It is the only light that casts shadows.
	LightTypeDirectional LightType = iota

	// LightTypeHemisphere represents a sky/ground gradient. Surfaces facing up receive the
	// sky color and surfaces facing down the ground color.
	LightTypeHemisphere
)

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	lightType    LightType
	position     mgl32.Vec3
	color        mgl32.Vec3
	groundColor  mgl32.Vec3
	intensity    float32
	enabled      bool
	castsShadows bool
}

// Light defines the interface for a light source in the scene.
//
// Lights are created once with the scene and never replaced. Type-specific properties
// return zero values when not applicable.
type Light interface {
	// Type returns the kind of light source.
	//
	// Returns:
	//   - LightType: the light type
	Type() LightType

	// Position returns the world-space position of the light.
	//
	// Returns:
	//   - mgl32.Vec3: the position
	Position() mgl32.Vec3

	// Direction returns the normalized direction the light travels, from its position toward the
	// origin for directional lights and straight down for hemisphere lights.
	//
	// Returns:
	//   - mgl32.Vec3: the direction
	Direction() mgl32.Vec3

	// Color returns the RGB color of the light, the sky color for hemisphere lights.
	//
	// Returns:
	//   - mgl32.Vec3: color as (r, g, b)
	Color() mgl32.Vec3

	// GroundColor returns the ground color of a hemisphere light.
	//
	// Returns:
	//   - mgl32.Vec3: color as (r, g, b)
	GroundColor() mgl32.Vec3

	// Intensity returns the scalar intensity multiplier for the light.
	//
	// Returns:
	//   - float32: the intensity value
	Intensity() float32

	// Enabled returns whether this light contributes to rendering.
	//
	// Returns:
	//   - bool: true if the light is enabled
	Enabled() bool

	// CastsShadows returns whether this light projects shadows onto the ground.
	//
	// Returns:
	//   - bool: true if the light casts shadows
	CastsShadows() bool

	// SetPosition sets the world-space position of the light.
	//
	// Parameters:
	//   - p: the position
	SetPosition(p mgl32.Vec3)

	// SetIntensity sets the scalar intensity multiplier.
	//
	// Parameters:
	//   - intensity: the intensity value
	SetIntensity(intensity float32)

	// SetEnabled enables or disables the light for rendering.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)
}

var _ Light = &lightImpl{}

// NewLight creates a new Light of the specified type with white color, unit intensity and any
// provided options applied.
//
// Parameters:
//   - lightType: the kind of light to create
//   - opts: variadic list of LightBuilderOption functions to configure the light
//
// Returns:
//   - Light: a new Light instance
func NewLight(lightType LightType, opts ...LightBuilderOption) Light {
	l := &lightImpl{
		lightType: lightType,
		position:  mgl32.Vec3{0, 1, 0},
		color:     mgl32.Vec3{1, 1, 1},
		intensity: 1.0,
		enabled:   true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *lightImpl) Type() LightType {
	return l.lightType
}

func (l *lightImpl) Position() mgl32.Vec3 {
	return l.position
}

func (l *lightImpl) Direction() mgl32.Vec3 {
	if l.lightType == LightTypeHemisphere || l.position.Len() == 0 {
		return mgl32.Vec3{0, -1, 0}
	}
	return l.position.Mul(-1).Normalize()
}

func (l *lightImpl) Color() mgl32.Vec3 {
	return l.color
}

func (l *lightImpl) GroundColor() mgl32.Vec3 {
	return l.groundColor
}

func (l *lightImpl) Intensity() float32 {
	return l.intensity
}

func (l *lightImpl) Enabled() bool {
	return l.enabled
}

func (l *lightImpl) CastsShadows() bool {
	return l.castsShadows && l.lightType == LightTypeDirectional
}

func (l *lightImpl) SetPosition(p mgl32.Vec3) {
	l.position = p
}

func (l *lightImpl) SetIntensity(intensity float32) {
	l.intensity = intensity
}

func (l *lightImpl) SetEnabled(enabled bool) {
	l.enabled = enabled
}
