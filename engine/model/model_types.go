package model

import (
	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Mesh is a single renderable part of a fragment.
type Mesh struct {
	// Name is the mesh identifier, unique only within its fragment.
	Name string

	// Vertices and Indices describe a triangle list.
	Vertices []GPUVertex
	Indices  []uint32

	// Material is the surface description used when drawing the mesh.
	Material common.Material

	// CastShadow marks the mesh as a shadow caster.
	CastShadow bool

	// ReceiveShadow marks the mesh as a shadow receiver.
	ReceiveShadow bool

	// ShadowOnly meshes are invisible except for the shadows they receive.
	ShadowOnly bool

	// Bounds is the bounding box of Vertices in mesh space.
	Bounds common.BoundingBox
}

// NewMesh builds a mesh and computes its bounding box from the vertex positions.
//
// Parameters:
//   - name: the mesh identifier
//   - vertices: the vertex data
//   - indices: the triangle index list
//   - material: the surface description
//
// Returns:
//   - *Mesh: the new mesh
func NewMesh(name string, vertices []GPUVertex, indices []uint32, material common.Material) *Mesh {
	m := &Mesh{
		Name:     name,
		Vertices: vertices,
		Indices:  indices,
		Material: material,
	}
	for _, v := range vertices {
		m.Bounds.Extend(mgl32.Vec3(v.Position))
	}
	return m
}

// Node is one level of a fragment's hierarchy.
type Node struct {
	// Name is the node identifier.
	Name string

	// Local is the node transform relative to its parent.
	Local mgl32.Mat4

	// Meshes are drawn with this node's world transform.
	Meshes []*Mesh

	// Children are nested nodes.
	Children []*Node
}

// NewNode creates a node with an identity transform.
func NewNode(name string, meshes ...*Mesh) *Node {
	return &Node{Name: name, Local: mgl32.Ident4(), Meshes: meshes}
}

// AddChild appends child to the node and returns the node for chaining.
func (n *Node) AddChild(child *Node) *Node {
	n.Children = append(n.Children, child)
	return n
}

// walk visits n and its descendants depth-first with their accumulated transforms.
func (n *Node) walk(parent mgl32.Mat4, fn func(node *Node, world mgl32.Mat4)) {
	world := parent.Mul4(n.Local)
	fn(n, world)
	for _, c := range n.Children {
		c.walk(world, fn)
	}
}
