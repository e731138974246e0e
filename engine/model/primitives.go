package model

import (
	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/go-gl/mathgl/mgl32"
)

// boxFaces lists the four corners and outward normal of each face of a unit cube, wound counter-clockwise.
var boxFaces = [6]struct {
	corners [4][3]float32
	normal  [3]float32
}{
	{[4][3]float32{{0.5, -0.5, -0.5}, {0.5, 0.5, -0.5}, {0.5, 0.5, 0.5}, {0.5, -0.5, 0.5}}, [3]float32{1, 0, 0}},
	{[4][3]float32{{-0.5, -0.5, 0.5}, {-0.5, 0.5, 0.5}, {-0.5, 0.5, -0.5}, {-0.5, -0.5, -0.5}}, [3]float32{-1, 0, 0}},
	{[4][3]float32{{-0.5, 0.5, -0.5}, {-0.5, 0.5, 0.5}, {0.5, 0.5, 0.5}, {0.5, 0.5, -0.5}}, [3]float32{0, 1, 0}},
	{[4][3]float32{{-0.5, -0.5, 0.5}, {-0.5, -0.5, -0.5}, {0.5, -0.5, -0.5}, {0.5, -0.5, 0.5}}, [3]float32{0, -1, 0}},
	{[4][3]float32{{-0.5, -0.5, 0.5}, {0.5, -0.5, 0.5}, {0.5, 0.5, 0.5}, {-0.5, 0.5, 0.5}}, [3]float32{0, 0, 1}},
	{[4][3]float32{{0.5, -0.5, -0.5}, {-0.5, -0.5, -0.5}, {-0.5, 0.5, -0.5}, {0.5, 0.5, -0.5}}, [3]float32{0, 0, -1}},
}

var quadUVs = [4][2]float32{{0, 1}, {0, 0}, {1, 0}, {1, 1}}

// NewBox builds a cuboid mesh centered on the origin with the given edge lengths.
// The mesh has 24 vertices (4 per face, so normals stay flat) and 36 indices.
//
// Parameters:
//   - name: the mesh identifier
//   - size: edge lengths along x, y and z
//   - material: the surface description
//
// Returns:
//   - *Mesh: the box mesh
func NewBox(name string, size mgl32.Vec3, material common.Material) *Mesh {
	vertices := make([]GPUVertex, 0, 24)
	indices := make([]uint32, 0, 36)
	for fi, face := range boxFaces {
		for ci, c := range face.corners {
			vertices = append(vertices, GPUVertex{
				Position: [3]float32{c[0] * size[0], c[1] * size[1], c[2] * size[2]},
				Normal:   face.normal,
				TexCoord: quadUVs[ci],
				Color:    [4]float32{1, 1, 1, 1},
			})
		}
		base := uint32(fi * 4)
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}
	return NewMesh(name, vertices, indices, material)
}

// NewPlane builds a horizontal quad at y=0 facing +Y, centered on the origin.
//
// Parameters:
//   - name: the mesh identifier
//   - width: extent along x
//   - depth: extent along z
//   - material: the surface description
//
// Returns:
//   - *Mesh: the plane mesh
func NewPlane(name string, width, depth float32, material common.Material) *Mesh {
	hw, hd := width/2, depth/2
	up := [3]float32{0, 1, 0}
	white := [4]float32{1, 1, 1, 1}
	vertices := []GPUVertex{
		{Position: [3]float32{-hw, 0, -hd}, Normal: up, TexCoord: [2]float32{0, 0}, Color: white},
		{Position: [3]float32{-hw, 0, hd}, Normal: up, TexCoord: [2]float32{0, 1}, Color: white},
		{Position: [3]float32{hw, 0, hd}, Normal: up, TexCoord: [2]float32{1, 1}, Color: white},
		{Position: [3]float32{hw, 0, -hd}, Normal: up, TexCoord: [2]float32{1, 0}, Color: white},
	}
	return NewMesh(name, vertices, []uint32{0, 1, 2, 0, 2, 3}, material)
}
