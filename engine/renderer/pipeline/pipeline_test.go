package pipeline

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSource = `//@oxy:include vertex
@vertex
fn vs_main(in: VertexInput) -> @builtin(position) vec4<f32> {
    return vec4<f32>(in.position, 1.0);
}
@fragment
fn fs_main() -> @location(0) vec4<f32> { return vec4<f32>(1.0); }
@fragment
fn fs_shadow() -> @location(0) vec4<f32> { return vec4<f32>(0.0); }
`

func newTestShader(t *testing.T) shader.Shader {
	t.Helper()
	s, err := shader.NewShader("test", testSource)
	require.NoError(t, err)
	return s
}

func TestNewPipelineDefaults(t *testing.T) {
	s := newTestShader(t)
	p := NewPipeline("forward", s)

	assert.Equal(t, "forward", p.PipelineKey())
	assert.Same(t, s, p.Shader())
	assert.Equal(t, "fs_main", p.FragmentEntryPoint())
	assert.True(t, p.DepthTestEnabled())
	assert.True(t, p.DepthWriteEnabled())
	assert.False(t, p.BlendEnabled())
	assert.Equal(t, wgpu.CullModeNone, p.CullMode())
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleList, p.Topology())
	assert.Equal(t, wgpu.FrontFaceCCW, p.FrontFace())
	assert.Equal(t, wgpu.ColorWriteMaskAll, p.WriteMask())
	require.NotNil(t, p.BlendState())
	assert.Equal(t, wgpu.BlendFactorSrcAlpha, p.BlendState().Color.SrcFactor)
	assert.Nil(t, p.Pipeline())
	assert.Empty(t, p.BindGroupLayouts())
}

func TestPipelineOptions(t *testing.T) {
	layout := wgpu.BindGroupLayoutDescriptor{Label: "Frame"}
	p := NewPipeline("planar_shadow", newTestShader(t),
		WithFragmentEntryPoint("fs_shadow"),
		WithBindGroupLayouts(layout, layout),
		WithBlendEnabled(true),
		WithDepthWriteEnabled(false),
		WithDepthBias(-2, -1),
		WithCullMode(wgpu.CullModeBack),
	)

	assert.Equal(t, "fs_shadow", p.FragmentEntryPoint())
	assert.Len(t, p.BindGroupLayouts(), 2)
	assert.True(t, p.BlendEnabled())
	assert.False(t, p.DepthWriteEnabled())
	assert.Equal(t, int32(-2), p.DepthBias())
	assert.Equal(t, float32(-1), p.DepthBiasSlopeScale())
	assert.Equal(t, wgpu.CullModeBack, p.CullMode())

	// releasing a pipeline that was never created is a no-op
	p.Release()
	assert.Nil(t, p.Pipeline())
}
