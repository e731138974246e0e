package light

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// DefaultShadowOpacity is how dark projected shadows are drawn on the ground.
const DefaultShadowOpacity float32 = 0.4

// ShadowLift raises projected shadows above the ground plane to avoid depth fighting.
const ShadowLift float32 = 0.002

// PlanarShadowMatrix builds the matrix that flattens world-space geometry onto the horizontal
// plane y = planeY along the direction a light travels.
//
// Parameters:
//   - dir: the direction the light travels, pointing downward
//   - planeY: the height of the receiving plane
//
// Returns:
//   - mgl32.Mat4: the projection matrix
//   - bool: false when the light is at or above the horizon and casts no ground shadow
func PlanarShadowMatrix(dir mgl32.Vec3, planeY float32) (mgl32.Mat4, bool) {
	if dir.Y() > -1e-4 || math32.IsNaN(dir.Y()) {
		return mgl32.Ident4(), false
	}
	sx := dir.X() / dir.Y()
	sz := dir.Z() / dir.Y()
	h := planeY + ShadowLift
	return mgl32.Mat4FromRows(
		mgl32.Vec4{1, -sx, 0, sx * h},
		mgl32.Vec4{0, 0, 0, h},
		mgl32.Vec4{0, -sz, 1, sz * h},
		mgl32.Vec4{0, 0, 0, 1},
	), true
}
