package model

import "github.com/go-gl/mathgl/mgl32"

// ModelBuilderOption is a functional option for configuring a Model via NewModel.
type ModelBuilderOption func(*model)

// WithName is an option builder that sets the name of the Model.
//
// Parameters:
//   - name: the model identifier
//
// Returns:
//   - ModelBuilderOption: a function that applies the name option to a model
func WithName(name string) ModelBuilderOption {
	return func(m *model) {
		m.name = name
	}
}

// WithSource is an option builder that records the asset name the Model was decoded from.
//
// Parameters:
//   - source: the asset name
//
// Returns:
//   - ModelBuilderOption: a function that applies the source option to a model
func WithSource(source string) ModelBuilderOption {
	return func(m *model) {
		m.source = source
	}
}

// WithRoot is an option builder that sets the root node of the Model hierarchy.
//
// Parameters:
//   - root: the root node
//
// Returns:
//   - ModelBuilderOption: a function that applies the root option to a model
func WithRoot(root *Node) ModelBuilderOption {
	return func(m *model) {
		m.root = root
	}
}

// WithPosition is an option builder that sets the initial world offset of the Model.
//
// Parameters:
//   - p: the position
//
// Returns:
//   - ModelBuilderOption: a function that applies the position option to a model
func WithPosition(p mgl32.Vec3) ModelBuilderOption {
	return func(m *model) {
		m.position = p
	}
}
