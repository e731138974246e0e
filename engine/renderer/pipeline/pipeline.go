package pipeline

import (
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// pipeline is the implementation of the Pipeline interface.
type pipeline struct {
	pipelineKey string

	shader        shader.Shader
	fragmentEntry string

	bindGroupLayouts []wgpu.BindGroupLayoutDescriptor

	renderPipeline *wgpu.RenderPipeline

	depthTestEnabled    bool
	depthWriteEnabled   bool
	depthBias           int32
	depthBiasSlopeScale float32
	blendEnabled        bool
	cullMode            wgpu.CullMode
	topology            wgpu.PrimitiveTopology
	frontFace           wgpu.FrontFace
	writeMask           wgpu.ColorWriteMask
	blendState          *wgpu.BlendState
}

// Pipeline describes the fixed-function state and shader stages of one render pipeline.
// The renderer backend turns the description into a GPU pipeline and stores it back with
// SetRenderPipeline.
type Pipeline interface {
	// PipelineKey returns the unique identifier used to cache the pipeline.
	//
	// Returns:
	//   - string: the pipeline key
	PipelineKey() string

	// Shader returns the module holding both shader stages.
	//
	// Returns:
	//   - shader.Shader: the shader module
	Shader() shader.Shader

	// FragmentEntryPoint returns the @fragment function used by this pipeline.
	//
	// Returns:
	//   - string: the entry point name
	FragmentEntryPoint() string

	// BindGroupLayouts returns the layout descriptors indexed by group number.
	//
	// Returns:
	//   - []wgpu.BindGroupLayoutDescriptor: the group layouts
	BindGroupLayouts() []wgpu.BindGroupLayoutDescriptor

	// Pipeline returns the GPU render pipeline, or nil before registration.
	//
	// Returns:
	//   - *wgpu.RenderPipeline: the GPU pipeline or nil
	Pipeline() *wgpu.RenderPipeline

	DepthTestEnabled() bool
	DepthWriteEnabled() bool
	DepthBias() int32
	DepthBiasSlopeScale() float32
	BlendEnabled() bool
	CullMode() wgpu.CullMode
	Topology() wgpu.PrimitiveTopology
	FrontFace() wgpu.FrontFace
	WriteMask() wgpu.ColorWriteMask
	BlendState() *wgpu.BlendState

	// SetRenderPipeline stores the GPU pipeline created by the backend.
	//
	// Parameters:
	//   - p: the render pipeline
	SetRenderPipeline(p *wgpu.RenderPipeline)

	// Release releases the GPU pipeline, if any.
	Release()
}

var _ Pipeline = &pipeline{}

// NewPipeline creates an opaque, depth-tested triangle-list pipeline description for the
// given shader. The first fragment entry point is used unless overridden.
//
// Parameters:
//   - pipelineKey: the unique identifier
//   - s: the shader module
//   - opts: functional options
//
// Returns:
//   - Pipeline: the description
func NewPipeline(pipelineKey string, s shader.Shader, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		pipelineKey:       pipelineKey,
		shader:            s,
		depthTestEnabled:  true,
		depthWriteEnabled: true,
		cullMode:          wgpu.CullModeNone,
		topology:          wgpu.PrimitiveTopologyTriangleList,
		frontFace:         wgpu.FrontFaceCCW,
		writeMask:         wgpu.ColorWriteMaskAll,
		blendState: &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
		},
	}
	if s != nil && len(s.FragmentEntryPoints()) > 0 {
		p.fragmentEntry = s.FragmentEntryPoints()[0]
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) Shader() shader.Shader {
	return p.shader
}

func (p *pipeline) FragmentEntryPoint() string {
	return p.fragmentEntry
}

func (p *pipeline) BindGroupLayouts() []wgpu.BindGroupLayoutDescriptor {
	return p.bindGroupLayouts
}

func (p *pipeline) Pipeline() *wgpu.RenderPipeline {
	return p.renderPipeline
}

func (p *pipeline) DepthTestEnabled() bool {
	return p.depthTestEnabled
}

func (p *pipeline) DepthWriteEnabled() bool {
	return p.depthWriteEnabled
}

func (p *pipeline) DepthBias() int32 {
	return p.depthBias
}

func (p *pipeline) DepthBiasSlopeScale() float32 {
	return p.depthBiasSlopeScale
}

func (p *pipeline) BlendEnabled() bool {
	return p.blendEnabled
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pipeline) Topology() wgpu.PrimitiveTopology {
	return p.topology
}

func (p *pipeline) FrontFace() wgpu.FrontFace {
	return p.frontFace
}

func (p *pipeline) WriteMask() wgpu.ColorWriteMask {
	return p.writeMask
}

func (p *pipeline) BlendState() *wgpu.BlendState {
	return p.blendState
}

func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline) {
	p.renderPipeline = rp
}

func (p *pipeline) Release() {
	if p.renderPipeline != nil {
		p.renderPipeline.Release()
		p.renderPipeline = nil
	}
}
