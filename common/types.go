// package common contains plain data types shared across the viewer. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// BoundingBox is an axis-aligned bounding box. The zero value is empty and grows with Extend.
type BoundingBox struct {
	Min, Max mgl32.Vec3
	valid    bool
}

// NewBoundingBox returns a bounding box spanning min and max.
func NewBoundingBox(min, max mgl32.Vec3) BoundingBox {
	return BoundingBox{Min: min, Max: max, valid: true}
}

// Valid reports whether at least one point has been added to the box.
func (b BoundingBox) Valid() bool {
	return b.valid
}

// Extend grows the box to include p.
func (b *BoundingBox) Extend(p mgl32.Vec3) {
	if !b.valid {
		b.Min, b.Max, b.valid = p, p, true
		return
	}
	for i := range 3 {
		b.Min[i] = float32(math.Min(float64(b.Min[i]), float64(p[i])))
		b.Max[i] = float32(math.Max(float64(b.Max[i]), float64(p[i])))
	}
}

// Union grows the box to include other. Empty boxes are ignored.
func (b *BoundingBox) Union(other BoundingBox) {
	if !other.valid {
		return
	}
	b.Extend(other.Min)
	b.Extend(other.Max)
}

// Transform returns the box enclosing all eight corners of b transformed by m.
func (b BoundingBox) Transform(m mgl32.Mat4) BoundingBox {
	if !b.valid {
		return b
	}
	var out BoundingBox
	for i := range 8 {
		corner := mgl32.Vec3{b.Min[0], b.Min[1], b.Min[2]}
		if i&1 != 0 {
			corner[0] = b.Max[0]
		}
		if i&2 != 0 {
			corner[1] = b.Max[1]
		}
		if i&4 != 0 {
			corner[2] = b.Max[2]
		}
		out.Extend(mgl32.TransformCoordinate(corner, m))
	}
	return out
}

// Center returns the midpoint of the box.
func (b BoundingBox) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Size returns the extent of the box along each axis.
func (b BoundingBox) Size() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

// Material describes the surface of a mesh.
type Material struct {
	// Name is the material identifier.
	Name string

	// BaseColor is the albedo color (RGBA).
	BaseColor [4]float32

	// Metallic factor (0.0 = dielectric, 1.0 = metal).
	Metallic float32

	// Roughness factor (0.0 = smooth, 1.0 = rough).
	Roughness float32

	// DoubleSided disables back-face culling for the mesh.
	DoubleSided bool

	// BaseColorTexture holds embedded albedo image data, if any.
	BaseColorTexture *Texture
}

// DefaultMaterial returns the white, fully rough material used when a mesh names none.
func DefaultMaterial() Material {
	return Material{Name: "default", BaseColor: [4]float32{1, 1, 1, 1}, Roughness: 1}
}

// Texture holds encoded image bytes extracted from an asset.
type Texture struct {
	// Name is an identifier for this texture.
	Name string

	// Data contains raw encoded image bytes (PNG, JPEG, WebP or BMP).
	Data []byte

	// MimeType indicates the image format (e.g., "image/png", "image/webp").
	MimeType string
}

// TextureStagingData holds RGBA pixel data pending GPU upload.
type TextureStagingData struct {
	// Pixels is RGBA data, 4 bytes per pixel, row-major.
	Pixels []byte
	Width  uint32
	Height uint32
}

// Decode decodes the texture to raw RGBA pixel data.
// Supports PNG, JPEG, WebP and BMP.
//
// Returns:
//   - TextureStagingData: the decoded pixels and dimensions
//   - error: error if decoding fails
func (t *Texture) Decode() (TextureStagingData, error) {
	if t == nil || len(t.Data) == 0 {
		return TextureStagingData{}, fmt.Errorf("texture has no data")
	}

	img, _, err := image.Decode(bytes.NewReader(t.Data))
	if err != nil {
		return TextureStagingData{}, fmt.Errorf("failed to decode texture %q: %w", t.Name, err)
	}

	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	return TextureStagingData{
		Pixels: rgba.Pix,
		Width:  uint32(bounds.Dx()),
		Height: uint32(bounds.Dy()),
	}, nil
}
