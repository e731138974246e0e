package shader

// ShaderBuilderOption is a functional option used to configure a Shader during construction.
type ShaderBuilderOption func(*shader)

// WithPreProcessor replaces the default pre-processor.
//
// Parameters:
//   - pp: the pre-processor used to expand include directives
//
// Returns:
//   - ShaderBuilderOption: a function that sets the pre-processor
func WithPreProcessor(pp PreProcessor) ShaderBuilderOption {
	return func(s *shader) {
		s.preProcessor = pp
	}
}

// WithoutVertexInput allows modules whose vertex stage reads no vertex buffer.
func WithoutVertexInput() ShaderBuilderOption {
	return func(s *shader) {
		s.requireVertexData = false
	}
}
