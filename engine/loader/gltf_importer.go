package loader

import (
	"encoding/binary"
	"fmt"
	"path"
	"strings"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// gltfImporterImpl is the implementation of the gltfImporter interface.
type gltfImporterImpl struct{}

// gltfImporter orchestrates a full glTF/GLB import: parse, extract materials and meshes,
// and rebuild the node hierarchy as a model fragment.
type gltfImporter interface {
	// Import decodes a glTF/GLB document into a model fragment.
	//
	// Parameters:
	//   - name: the asset name, used for naming
	//   - data: the encoded document
	//   - resolve: the resolver for external buffers and images
	//
	// Returns:
	//   - model.Model: the decoded fragment
	//   - error: error if import fails
	Import(name string, data []byte, resolve uriResolver) (model.Model, error)
}

var _ gltfImporter = &gltfImporterImpl{}

// newGLTFImporter creates a new glTF importer.
//
// Returns:
//   - gltfImporter: the importer
func newGLTFImporter() gltfImporter {
	return &gltfImporterImpl{}
}

func (imp *gltfImporterImpl) Import(name string, data []byte, resolve uriResolver) (model.Model, error) {
	parser := newGLTFParser(resolve)
	if err := parser.Parse(data, isGLBData(data)); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}

	doc := parser.Document()

	materials, err := newGLTFMaterialExtractor(parser).ExtractAllMaterials()
	if err != nil {
		return nil, fmt.Errorf("material extraction failed: %w", err)
	}

	meshExtractor := newGLTFMeshExtractor(parser, materials)
	meshes := make([][]*model.Mesh, len(doc.Meshes))
	for i := range doc.Meshes {
		if meshes[i], err = meshExtractor.ExtractMesh(i); err != nil {
			return nil, fmt.Errorf("mesh extraction failed: %w", err)
		}
	}

	root := model.NewNode(gltfModelName(name))
	if len(doc.Nodes) == 0 {
		// Node-less documents still render every mesh at the origin.
		for _, m := range meshes {
			root.Meshes = append(root.Meshes, m...)
		}
	} else {
		builder := &gltfNodeBuilder{doc: doc, meshes: meshes, visiting: make(map[int]bool)}
		for _, idx := range gltfRootNodes(doc) {
			child, err := builder.build(idx)
			if err != nil {
				return nil, err
			}
			root.AddChild(child)
		}
	}

	fragment := model.NewModel(
		model.WithName(gltfModelName(name)),
		model.WithSource(name),
		model.WithRoot(root),
	)
	if len(fragment.Meshes()) == 0 {
		return nil, fmt.Errorf("%s contains no renderable meshes", name)
	}
	return fragment, nil
}

// gltfNodeBuilder converts glTF nodes to model nodes, rejecting cyclic hierarchies.
type gltfNodeBuilder struct {
	doc      *gltfDocument
	meshes   [][]*model.Mesh
	visiting map[int]bool
}

func (b *gltfNodeBuilder) build(index int) (*model.Node, error) {
	if index < 0 || index >= len(b.doc.Nodes) {
		return nil, fmt.Errorf("node index %d out of range", index)
	}
	if b.visiting[index] {
		return nil, fmt.Errorf("node %d is part of a cycle", index)
	}
	b.visiting[index] = true
	defer delete(b.visiting, index)

	src := &b.doc.Nodes[index]
	node := model.NewNode(common.Coalesce(src.Name, fmt.Sprintf("node_%d", index)))
	node.Local = gltfNodeTransform(src)

	if src.Mesh != nil {
		if *src.Mesh < 0 || *src.Mesh >= len(b.meshes) {
			return nil, fmt.Errorf("node %d references missing mesh %d", index, *src.Mesh)
		}
		// glTF allows several nodes to instance one mesh; each gets its own copy so flags stay per-node.
		for _, m := range b.meshes[*src.Mesh] {
			clone := *m
			node.Meshes = append(node.Meshes, &clone)
		}
	}

	for _, childIdx := range src.Children {
		child, err := b.build(childIdx)
		if err != nil {
			return nil, err
		}
		node.AddChild(child)
	}
	return node, nil
}

// gltfNodeTransform returns the local matrix of a node from either its matrix or its TRS properties.
func gltfNodeTransform(n *gltfNode) mgl32.Mat4 {
	if n.Matrix != nil {
		return mgl32.Mat4(*n.Matrix)
	}

	t := mgl32.Ident4()
	if n.Translation != nil {
		t = mgl32.Translate3D(n.Translation[0], n.Translation[1], n.Translation[2])
	}
	r := mgl32.Ident4()
	if n.Rotation != nil {
		q := mgl32.Quat{W: n.Rotation[3], V: mgl32.Vec3{n.Rotation[0], n.Rotation[1], n.Rotation[2]}}
		r = q.Normalize().Mat4()
	}
	s := mgl32.Ident4()
	if n.Scale != nil {
		s = mgl32.Scale3D(n.Scale[0], n.Scale[1], n.Scale[2])
	}
	return t.Mul4(r).Mul4(s)
}

// gltfRootNodes returns the root nodes of the default scene, or every parentless node when the
// document declares no scenes.
func gltfRootNodes(doc *gltfDocument) []int {
	if len(doc.Scenes) > 0 {
		scene := 0
		if doc.Scene != nil && *doc.Scene >= 0 && *doc.Scene < len(doc.Scenes) {
			scene = *doc.Scene
		}
		return doc.Scenes[scene].Nodes
	}

	isChild := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			if c >= 0 && c < len(isChild) {
				isChild[c] = true
			}
		}
	}
	var roots []int
	for i, child := range isChild {
		if !child {
			roots = append(roots, i)
		}
	}
	return roots
}

// gltfModelName derives a display name from the asset name by dropping directories and the extension.
func gltfModelName(name string) string {
	base := path.Base(name)
	return strings.TrimSuffix(base, path.Ext(base))
}

// isGLBData reports whether data starts with the binary glTF magic. Anything else is parsed as
// the JSON container.
func isGLBData(data []byte) bool {
	return len(data) >= 4 && binary.LittleEndian.Uint32(data[:4]) == gltfGLBMagic
}
