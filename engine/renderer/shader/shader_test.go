package shader

import (
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSource = `//@oxy:include vertex
//@oxy:include camera
//@oxy:include camera

@group(0) @binding(0) var<uniform> camera: CameraUniform;

@vertex
fn vs_main(in: VertexInput) -> @builtin(position) vec4<f32> {
    return camera.view_proj * vec4<f32>(in.position, 1.0);
}

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0);
}

// @fragment fn fs_disabled() is commented out
@fragment
fn fs_shadow() -> @location(0) vec4<f32> {
    return vec4<f32>(0.0, 0.0, 0.0, 0.4);
}
`

func TestNewShaderParsesEntryPointsAndLayout(t *testing.T) {
	s, err := NewShader("test", testSource)
	require.NoError(t, err)

	assert.Equal(t, "test", s.Key())
	assert.Equal(t, "vs_main", s.VertexEntryPoint())
	assert.Equal(t, []string{"fs_main", "fs_shadow"}, s.FragmentEntryPoints())
	assert.True(t, s.HasFragmentEntryPoint("fs_shadow"))
	assert.False(t, s.HasFragmentEntryPoint("fs_disabled"))

	layout := s.VertexLayout()
	assert.Equal(t, uint64(model.GPUVertexSize), layout.ArrayStride)
	assert.Equal(t, wgpu.VertexStepModeVertex, layout.StepMode)
	require.Len(t, layout.Attributes, 4)
	offsets := []uint64{0, 12, 24, 32}
	formats := []wgpu.VertexFormat{
		wgpu.VertexFormatFloat32x3,
		wgpu.VertexFormatFloat32x3,
		wgpu.VertexFormatFloat32x2,
		wgpu.VertexFormatFloat32x4,
	}
	for i, attr := range layout.Attributes {
		assert.Equal(t, uint32(i), attr.ShaderLocation)
		assert.Equal(t, offsets[i], attr.Offset)
		assert.Equal(t, formats[i], attr.Format)
	}
}

func TestPreProcessorExpandsEachIncludeOnce(t *testing.T) {
	s, err := NewShader("test", testSource)
	require.NoError(t, err)

	assert.Equal(t, []string{"vertex", "camera"}, s.Included())
	assert.Equal(t, 1, strings.Count(s.Source(), "struct CameraUniform"))
	assert.NotContains(t, s.Source(), includePrefix)
}

func TestPreProcessorRejectsBadDirectives(t *testing.T) {
	pp := NewPreProcessor()

	_, err := pp.Process("//@oxy:include textures\n")
	assert.ErrorContains(t, err, "unknown include")

	_, err = pp.Process("//@oxy:include\n")
	assert.ErrorContains(t, err, "exactly one argument")

	_, err = pp.Process("//@oxy:include camera model\n")
	assert.Error(t, err)

	out, err := pp.Process("// a plain comment\nlet x = 1;")
	require.NoError(t, err)
	assert.Equal(t, "// a plain comment\nlet x = 1;", out)
	assert.Empty(t, pp.Included())
}

func TestNewShaderRequiresVertexEntryAndInput(t *testing.T) {
	_, err := NewShader("frag_only", "@fragment fn fs_main() -> @location(0) vec4<f32> { return vec4<f32>(1.0); }")
	assert.ErrorContains(t, err, "no @vertex entry point")

	noInput := "@vertex fn vs_main(@builtin(vertex_index) i: u32) -> @builtin(position) vec4<f32> { return vec4<f32>(0.0); }"
	_, err = NewShader("fullscreen", noInput)
	assert.ErrorContains(t, err, "no VertexInput attributes")

	s, err := NewShader("fullscreen", noInput, WithoutVertexInput())
	require.NoError(t, err)
	assert.Empty(t, s.VertexLayout().Attributes)
	assert.Empty(t, s.FragmentEntryPoints())
}

func TestNewShaderRejectsUnsupportedAttributeType(t *testing.T) {
	src := `struct VertexInput {
    @location(0) position: vec3<f16>,
}
@vertex fn vs_main(in: VertexInput) -> @builtin(position) vec4<f32> { return vec4<f32>(0.0); }`
	_, err := NewShader("half", src)
	assert.ErrorContains(t, err, "unsupported vertex attribute type")
}
