package renderer

import (
	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// MSAASampleCount controls the number of samples used for multisample anti-aliasing (MSAA).
// WebGPU guarantees support for 1 (off) and 4.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1).
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4× multisample anti-aliasing. This is the default.
	MSAA4x MSAASampleCount = 4
)

// RendererBackend is the GPU-facing half of the Renderer. The renderer decides what to draw;
// the backend owns the device, the surface and every GPU call.
type RendererBackend interface {
	// ConfigureSurface is a wrapper for boilerplate logic required when calling ConfigureSurface on a surface.
	// This is required when the surface size changes, such as when the window is resized.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	ConfigureSurface(width, height int)

	// SetPresentMode sets the surface present mode which controls how frames are delivered to the display.
	// It takes effect at the next ConfigureSurface.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// SetClearColor sets the color the main pass clears to.
	//
	// Parameters:
	//   - c: the RGBA clear color
	SetClearColor(c [4]float32)

	// RegisterRenderPipeline creates the GPU pipeline for the description and stores it on p.
	//
	// Parameters:
	//   - p: the pipeline description
	//
	// Returns:
	//   - error: an error if the pipeline could not be created
	RegisterRenderPipeline(p pipeline.Pipeline) error

	// InitMeshBuffers uploads vertex and index data and stores the buffers on the provider.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created buffers on
	//   - vertexData: the raw vertex data bytes
	//   - indexData: the raw uint32 index data bytes
	//   - indexCount: the number of indices in indexData
	//
	// Returns:
	//   - error: an error if the buffers could not be created
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error

	// InitTextureView uploads RGBA pixels into a new texture and stores its view on the provider.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the texture on
	//   - bindingKey: the binding the texture view is bound at
	//   - stagingData: the decoded pixels
	//
	// Returns:
	//   - error: an error if the texture could not be created
	InitTextureView(provider bind_group_provider.BindGroupProvider, bindingKey int, stagingData common.TextureStagingData) error

	// InitBindGroup creates the uniform buffers and the bind group described by descriptor.
	// Texture and sampler bindings the provider does not hold fall back to a 1×1 white texture
	// and a linear repeat sampler owned by the backend.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to populate
	//   - descriptor: the bind group layout
	//
	// Returns:
	//   - error: an error if the bind group could not be created
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor) error

	// WriteBuffers queues uniform writes. They are visible to the next submitted frame.
	//
	// Parameters:
	//   - writes: the buffer writes
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// BeginFrame acquires the next surface texture and opens the main render pass.
	//
	// Returns:
	//   - error: an error if the surface texture could not be acquired
	BeginFrame() error

	// DrawCall encodes one indexed draw in the main render pass.
	//
	// Parameters:
	//   - p: the registered pipeline
	//   - meshProvider: the provider holding vertex and index buffers
	//   - bindGroups: the providers bound at groups 0..n in order
	DrawCall(p pipeline.Pipeline, meshProvider bind_group_provider.BindGroupProvider, bindGroups []bind_group_provider.BindGroupProvider)

	// EndFrame ends the render pass and submits the frame's commands.
	EndFrame()

	// Present presents the surface texture acquired by BeginFrame.
	Present()

	// Release releases the device, the surface and every backend-owned resource.
	Release()
}
