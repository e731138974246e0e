// Package placeholder builds the procedural object shown when no asset can be loaded.
package placeholder

import (
	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// Name is the name given to every generated placeholder fragment.
const Name = "placeholder"

// Table dimensions in world units.
const (
	TopWidth     float32 = 1.2
	TopThickness float32 = 0.08
	TopDepth     float32 = 0.8
	TopHeight    float32 = 0.74 // centre of the slab

	LegSize    float32 = 0.08
	LegHeight  float32 = 0.7
	LegOffsetX float32 = 0.5
	LegOffsetZ float32 = 0.3
)

// generator is the implementation of the Generator interface.
type generator struct {
	material common.Material
}

// Generator produces the placeholder fragment: a table made of one slab on four legs.
// Generation performs no I/O and no randomness, so every call yields an identical fragment.
type Generator interface {
	// Generate builds a new, unattached placeholder fragment. The caller owns the result.
	//
	// Returns:
	//   - model.Model: the placeholder
	Generate() model.Model
}

var _ Generator = &generator{}

// NewGenerator creates a placeholder generator using a light gray, fully rough, non-metallic material.
//
// Returns:
//   - Generator: the generator
func NewGenerator() Generator {
	return &generator{
		material: common.Material{
			Name:      "placeholder",
			BaseColor: [4]float32{0.8, 0.8, 0.8, 1},
			Metallic:  0,
			Roughness: 1,
		},
	}
}

func (g *generator) Generate() model.Model {
	root := model.NewNode(Name)

	top := model.NewNode("top", model.NewBox("top", mgl32.Vec3{TopWidth, TopThickness, TopDepth}, g.material))
	top.Local = mgl32.Translate3D(0, TopHeight, 0)
	root.AddChild(top)

	legs := [4][2]float32{
		{-LegOffsetX, -LegOffsetZ},
		{LegOffsetX, -LegOffsetZ},
		{-LegOffsetX, LegOffsetZ},
		{LegOffsetX, LegOffsetZ},
	}
	for i, xz := range legs {
		name := legName(i)
		leg := model.NewNode(name, model.NewBox(name, mgl32.Vec3{LegSize, LegHeight, LegSize}, g.material))
		leg.Local = mgl32.Translate3D(xz[0], LegHeight/2, xz[1])
		root.AddChild(leg)
	}

	return model.NewModel(model.WithName(Name), model.WithRoot(root))
}

func legName(i int) string {
	return [...]string{"leg_back_left", "leg_back_right", "leg_front_left", "leg_front_right"}[i]
}
