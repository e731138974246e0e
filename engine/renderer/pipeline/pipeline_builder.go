package pipeline

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// PipelineBuilderOption is a functional option used to configure a Pipeline during construction.
type PipelineBuilderOption func(*pipeline)

// WithFragmentEntryPoint selects the @fragment function used by the pipeline.
//
// Parameters:
//   - name: the entry point name
//
// Returns:
//   - PipelineBuilderOption: a function that sets the fragment entry point
func WithFragmentEntryPoint(name string) PipelineBuilderOption {
	return func(p *pipeline) {
		p.fragmentEntry = name
	}
}

// WithBindGroupLayouts sets the layout descriptors, indexed by group number.
//
// Parameters:
//   - layouts: the group layouts
//
// Returns:
//   - PipelineBuilderOption: a function that sets the group layouts
func WithBindGroupLayouts(layouts ...wgpu.BindGroupLayoutDescriptor) PipelineBuilderOption {
	return func(p *pipeline) {
		p.bindGroupLayouts = layouts
	}
}

// WithDepthTestEnabled sets whether depth testing is enabled for this pipeline.
func WithDepthTestEnabled(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthTestEnabled = enabled
	}
}

// WithDepthWriteEnabled sets whether the pipeline writes depth.
func WithDepthWriteEnabled(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthWriteEnabled = enabled
	}
}

// WithDepthBias sets the constant and slope-scaled depth bias.
//
// Parameters:
//   - bias: the constant depth bias
//   - slopeScale: the slope-scaled depth bias
//
// Returns:
//   - PipelineBuilderOption: a function that sets the depth bias
func WithDepthBias(bias int32, slopeScale float32) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthBias = bias
		p.depthBiasSlopeScale = slopeScale
	}
}

// WithBlendEnabled sets whether alpha blending is enabled for this pipeline.
func WithBlendEnabled(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.blendEnabled = enabled
	}
}

// WithCullMode sets the face culling mode.
func WithCullMode(mode wgpu.CullMode) PipelineBuilderOption {
	return func(p *pipeline) {
		p.cullMode = mode
	}
}

// WithBlendState replaces the default source-over blend state.
func WithBlendState(blendState *wgpu.BlendState) PipelineBuilderOption {
	return func(p *pipeline) {
		p.blendState = blendState
	}
}
