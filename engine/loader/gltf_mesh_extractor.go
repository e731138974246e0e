package loader

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
)

// gltfMeshExtractorImpl is the implementation of the gltfMeshExtractor interface.
type gltfMeshExtractorImpl struct {
	parser    gltfParser
	materials []common.Material
}

// gltfMeshExtractor converts glTF mesh primitives into model meshes.
type gltfMeshExtractor interface {
	// ExtractMesh extracts a single mesh by index.
	// Returns one model.Mesh per primitive (glTF meshes can have multiple primitives).
	//
	// Parameters:
	//   - meshIndex: the index of the mesh to extract
	//
	// Returns:
	//   - []*model.Mesh: one mesh per primitive
	//   - error: error if extraction fails
	ExtractMesh(meshIndex int) ([]*model.Mesh, error)
}

var _ gltfMeshExtractor = &gltfMeshExtractorImpl{}

// newGLTFMeshExtractor creates a new mesh extractor for a parsed document.
//
// Parameters:
//   - parser: the parser containing a loaded document
//   - materials: the already extracted materials, indexed like the document's materials
//
// Returns:
//   - gltfMeshExtractor: the mesh extractor
func newGLTFMeshExtractor(parser gltfParser, materials []common.Material) gltfMeshExtractor {
	return &gltfMeshExtractorImpl{parser: parser, materials: materials}
}

func (e *gltfMeshExtractorImpl) ExtractMesh(meshIndex int) ([]*model.Mesh, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document loaded")
	}
	if meshIndex < 0 || meshIndex >= len(doc.Meshes) {
		return nil, fmt.Errorf("mesh index %d out of range", meshIndex)
	}

	mesh := &doc.Meshes[meshIndex]
	result := make([]*model.Mesh, 0, len(mesh.Primitives))

	for primIdx := range mesh.Primitives {
		extracted, err := e.extractPrimitive(&mesh.Primitives[primIdx], mesh.Name, primIdx)
		if err != nil {
			return nil, fmt.Errorf("mesh %d primitive %d: %w", meshIndex, primIdx, err)
		}
		result = append(result, extracted)
	}

	return result, nil
}

// extractPrimitive extracts a single triangle-list primitive.
func (e *gltfMeshExtractorImpl) extractPrimitive(prim *gltfPrimitive, meshName string, primIndex int) (*model.Mesh, error) {
	if prim.Mode != nil && *prim.Mode != gltfPrimitiveModeTriangles {
		return nil, fmt.Errorf("unsupported primitive mode: %d (only triangles supported)", *prim.Mode)
	}

	posAccessor, ok := prim.Attributes["POSITION"]
	if !ok {
		return nil, fmt.Errorf("primitive has no POSITION attribute")
	}

	positions, err := e.parser.ReadVec3Accessor(posAccessor)
	if err != nil {
		return nil, fmt.Errorf("failed to read positions: %w", err)
	}

	vertexCount := len(positions)
	vertices := make([]model.GPUVertex, vertexCount)
	for i, pos := range positions {
		vertices[i].Position = pos
		vertices[i].Color = [4]float32{1, 1, 1, 1}
	}

	hasNormals := false
	if normalAccessor, ok := prim.Attributes["NORMAL"]; ok {
		normals, err := e.parser.ReadVec3Accessor(normalAccessor)
		if err != nil {
			return nil, fmt.Errorf("failed to read normals: %w", err)
		}
		for i := range min(len(normals), vertexCount) {
			vertices[i].Normal = normals[i]
		}
		hasNormals = true
	}

	if texCoordAccessor, ok := prim.Attributes["TEXCOORD_0"]; ok {
		texCoords, err := e.parser.ReadVec2Accessor(texCoordAccessor)
		if err != nil {
			return nil, fmt.Errorf("failed to read texcoords: %w", err)
		}
		for i := range min(len(texCoords), vertexCount) {
			vertices[i].TexCoord = texCoords[i]
		}
	}

	if colorAccessor, ok := prim.Attributes["COLOR_0"]; ok {
		colors, err := e.readColorAccessor(colorAccessor)
		if err != nil {
			return nil, fmt.Errorf("failed to read colors: %w", err)
		}
		for i := range min(len(colors), vertexCount) {
			vertices[i].Color = colors[i]
		}
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = e.parser.ReadIndicesAccessor(*prim.Indices)
		if err != nil {
			return nil, fmt.Errorf("failed to read indices: %w", err)
		}
		for _, idx := range indices {
			if int(idx) >= vertexCount {
				return nil, fmt.Errorf("index %d out of range for %d vertices", idx, vertexCount)
			}
		}
	} else {
		indices = make([]uint32, vertexCount)
		for i := range indices {
			indices[i] = uint32(i)
		}
	}

	if !hasNormals && len(indices) >= 3 {
		generateNormals(vertices, indices)
	}

	material := common.DefaultMaterial()
	if prim.Material != nil {
		if *prim.Material < 0 || *prim.Material >= len(e.materials) {
			return nil, fmt.Errorf("material index %d out of range", *prim.Material)
		}
		material = e.materials[*prim.Material]
	}

	name := meshName
	if name == "" {
		name = fmt.Sprintf("mesh_%d", primIndex)
	}
	if primIndex > 0 {
		name = fmt.Sprintf("%s_prim%d", name, primIndex)
	}

	return model.NewMesh(name, vertices, indices, material), nil
}

// readColorAccessor reads a color accessor, handling various formats.
// glTF colors can be VEC3 or VEC4, and can be float or normalized int.
func (e *gltfMeshExtractorImpl) readColorAccessor(accessorIndex int) ([][4]float32, error) {
	doc := e.parser.Document()
	if accessorIndex < 0 || accessorIndex >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor index %d out of range", accessorIndex)
	}
	acc := &doc.Accessors[accessorIndex]

	if acc.ComponentType == gltfComponentTypeFloat {
		switch acc.Type {
		case gltfAccessorTypeVec4:
			return e.parser.ReadVec4Accessor(accessorIndex)
		case gltfAccessorTypeVec3:
			vec3s, err := e.parser.ReadVec3Accessor(accessorIndex)
			if err != nil {
				return nil, err
			}
			result := make([][4]float32, len(vec3s))
			for i, v := range vec3s {
				result[i] = [4]float32{v[0], v[1], v[2], 1.0}
			}
			return result, nil
		}
	}

	var size int
	var scale float32
	switch acc.ComponentType {
	case gltfComponentTypeUnsignedByte:
		size, scale = 1, 255
	case gltfComponentTypeUnsignedShort:
		size, scale = 2, 65535
	default:
		return nil, fmt.Errorf("unsupported color format: type=%s, componentType=%d", acc.Type, acc.ComponentType)
	}

	components := gltfAccessorTypeComponentCount(acc.Type)
	if components != 3 && components != 4 {
		return nil, fmt.Errorf("unsupported color type: %s", acc.Type)
	}

	data, err := e.parser.ReadAccessorData(accessorIndex)
	if err != nil {
		return nil, err
	}

	result := make([][4]float32, acc.Count)
	for i := range result {
		result[i][3] = 1
		for c := range components {
			offset := (i*components + c) * size
			var raw uint32
			if size == 1 {
				raw = uint32(data[offset])
			} else {
				raw = uint32(binary.LittleEndian.Uint16(data[offset:]))
			}
			result[i][c] = float32(raw) / scale
		}
	}
	return result, nil
}

// generateNormals computes smooth vertex normals from the triangle geometry when the
// glTF file does not provide a NORMAL attribute. Face normals are accumulated
// (area-weighted) onto each vertex of the triangle and normalized at the end.
//
// Parameters:
//   - vertices: the vertex slice to write normal data into
//   - indices: the triangle index buffer (must be a multiple of 3)
func generateNormals(vertices []model.GPUVertex, indices []uint32) {
	n := len(vertices)
	accum := make([][3]float32, n)

	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		if int(i0) >= n || int(i1) >= n || int(i2) >= n {
			continue
		}

		p0, p1, p2 := vertices[i0].Position, vertices[i1].Position, vertices[i2].Position

		edge1 := [3]float32{p1[0] - p0[0], p1[1] - p0[1], p1[2] - p0[2]}
		edge2 := [3]float32{p2[0] - p0[0], p2[1] - p0[1], p2[2] - p0[2]}

		faceNormal := [3]float32{
			edge1[1]*edge2[2] - edge1[2]*edge2[1],
			edge1[2]*edge2[0] - edge1[0]*edge2[2],
			edge1[0]*edge2[1] - edge1[1]*edge2[0],
		}

		for _, idx := range []uint32{i0, i1, i2} {
			accum[idx][0] += faceNormal[0]
			accum[idx][1] += faceNormal[1]
			accum[idx][2] += faceNormal[2]
		}
	}

	for i := range n {
		length := float32(math.Sqrt(float64(accum[i][0]*accum[i][0] + accum[i][1]*accum[i][1] + accum[i][2]*accum[i][2])))
		if length < 1e-6 {
			vertices[i].Normal = [3]float32{0, 1, 0}
			continue
		}
		invLen := 1.0 / length
		vertices[i].Normal = [3]float32{accum[i][0] * invLen, accum[i][1] * invLen, accum[i][2] * invLen}
	}
}
