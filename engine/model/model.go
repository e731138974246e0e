package model

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/go-gl/mathgl/mgl32"
)

// model is the implementation of the Model interface.
type model struct {
	mu *sync.Mutex

	name     string
	source   string
	root     *Node
	position mgl32.Vec3

	releasers []func()
	disposed  bool
}

// Model defines the interface for a scene-graph fragment.
// A Model is produced by the asset loader or by procedural generation, is not attached to any scene
// when created, and is owned by whoever installs it until Dispose is called.
type Model interface {
	// Name retrieves the model identifier.
	//
	// Returns:
	//   - string: the model name
	Name() string

	// Source retrieves the asset name the model was produced from.
	// Procedurally generated models report an empty source.
	//
	// Returns:
	//   - string: the source asset name
	Source() string

	// Root retrieves the root node of the model hierarchy.
	//
	// Returns:
	//   - *Node: the root node
	Root() *Node

	// Walk visits every node with its world transform, which includes the model position.
	//
	// Parameters:
	//   - fn: the visitor invoked for each node
	Walk(fn func(node *Node, world mgl32.Mat4))

	// Meshes returns every mesh in the hierarchy in depth-first order.
	//
	// Returns:
	//   - []*Mesh: the meshes
	Meshes() []*Mesh

	// Bounds computes the bounding box of the model in model space, ignoring the model position.
	//
	// Returns:
	//   - common.BoundingBox: the bounding box
	//   - bool: false if the model has no vertices
	Bounds() (common.BoundingBox, bool)

	// Position retrieves the model offset in world space.
	//
	// Returns:
	//   - mgl32.Vec3: the position
	Position() mgl32.Vec3

	// SetPosition sets the model offset in world space.
	//
	// Parameters:
	//   - p: the new position
	SetPosition(p mgl32.Vec3)

	// OnDispose registers a function that releases a resource tied to the model, such as GPU buffers.
	// Registration fails once the model has been disposed.
	//
	// Parameters:
	//   - release: the release function
	//
	// Returns:
	//   - bool: true if the function was registered
	OnDispose(release func()) bool

	// Dispose runs every registered release function once and drops the geometry.
	// Calling Dispose again has no effect.
	Dispose()

	// Disposed reports whether Dispose has been called.
	//
	// Returns:
	//   - bool: true once disposed
	Disposed() bool
}

var _ Model = &model{}

// NewModel creates a new Model instance with the provided options.
//
// Parameters:
//   - options: variadic list of ModelBuilderOption functions to configure the Model
//
// Returns:
//   - Model: a new instance of Model configured with the provided options
func NewModel(options ...ModelBuilderOption) Model {
	m := &model{
		mu: &sync.Mutex{},
	}
	for _, opt := range options {
		opt(m)
	}
	if m.root == nil {
		m.root = NewNode(m.name)
	}
	return m
}

func (m *model) Name() string {
	return m.name
}

func (m *model) Source() string {
	return m.source
}

func (m *model) Root() *Node {
	return m.root
}

func (m *model) Walk(fn func(node *Node, world mgl32.Mat4)) {
	m.root.walk(mgl32.Translate3D(m.Position().Elem()), fn)
}

func (m *model) Meshes() []*Mesh {
	var out []*Mesh
	m.root.walk(mgl32.Ident4(), func(n *Node, _ mgl32.Mat4) {
		out = append(out, n.Meshes...)
	})
	return out
}

func (m *model) Bounds() (common.BoundingBox, bool) {
	var box common.BoundingBox
	m.root.walk(mgl32.Ident4(), func(n *Node, world mgl32.Mat4) {
		for _, mesh := range n.Meshes {
			box.Union(mesh.Bounds.Transform(world))
		}
	})
	return box, box.Valid()
}

func (m *model) Position() mgl32.Vec3 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position
}

func (m *model) SetPosition(p mgl32.Vec3) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.position = p
}

func (m *model) OnDispose(release func()) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.disposed {
		return false
	}
	m.releasers = append(m.releasers, release)
	return true
}

func (m *model) Dispose() {
	m.mu.Lock()
	if m.disposed {
		m.mu.Unlock()
		return
	}
	m.disposed = true
	releasers := m.releasers
	m.releasers = nil
	m.mu.Unlock()

	for _, release := range releasers {
		release()
	}
	m.root.walk(mgl32.Ident4(), func(n *Node, _ mgl32.Mat4) {
		for _, mesh := range n.Meshes {
			mesh.Vertices = nil
			mesh.Indices = nil
			mesh.Material.BaseColorTexture = nil
		}
	})
}

func (m *model) Disposed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.disposed
}
