package placeholder

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateIsDeterministic(t *testing.T) {
	g := NewGenerator()
	a, b := g.Generate(), g.Generate()

	ma, mb := a.Meshes(), b.Meshes()
	require.Len(t, ma, 5)
	require.Len(t, mb, 5)
	for i := range ma {
		assert.Equal(t, ma[i].Name, mb[i].Name)
		assert.Equal(t, ma[i].Vertices, mb[i].Vertices)
		assert.Equal(t, ma[i].Indices, mb[i].Indices)
		assert.Equal(t, ma[i].Material, mb[i].Material)
	}

	ba, _ := a.Bounds()
	bb, _ := b.Bounds()
	assert.Equal(t, ba, bb)

	// Fresh fragments every call.
	assert.NotSame(t, ma[0], mb[0])
	assert.Empty(t, a.Source())
}

func TestGenerateShape(t *testing.T) {
	frag := NewGenerator().Generate()

	box, ok := frag.Bounds()
	require.True(t, ok)
	assert.InDelta(t, 0, box.Min.Y(), 1e-5, "legs stand on the ground")
	assert.InDelta(t, TopHeight+TopThickness/2, box.Max.Y(), 1e-5)
	assert.InDelta(t, TopWidth, box.Size().X(), 1e-5)
	assert.InDelta(t, TopDepth, box.Size().Z(), 1e-5)
	assert.InDelta(t, 0, box.Center().X(), 1e-5)
	assert.InDelta(t, 0, box.Center().Z(), 1e-5)

	var legs, tops int
	frag.Walk(func(node *model.Node, world mgl32.Mat4) {
		for _, m := range node.Meshes {
			size := m.Bounds.Size()
			if size.Y() > size.X() {
				legs++
				assert.InDelta(t, LegHeight, size.Y(), 1e-5)
			} else {
				tops++
			}
		}
	})
	assert.Equal(t, 4, legs)
	assert.Equal(t, 1, tops)
}

func TestGenerateMaterial(t *testing.T) {
	for _, m := range NewGenerator().Generate().Meshes() {
		assert.Equal(t, [4]float32{0.8, 0.8, 0.8, 1}, m.Material.BaseColor)
		assert.Zero(t, m.Material.Metallic)
		assert.Equal(t, float32(1), m.Material.Roughness)
		assert.Nil(t, m.Material.BaseColorTexture)
	}
}
