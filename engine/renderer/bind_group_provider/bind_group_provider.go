package bind_group_provider

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// bindGroupProvider is the unexported implementation of BindGroupProvider.
type bindGroupProvider struct {
	// label is a debug label added for convenience.
	label string

	// The following fields are GPU allocated resources populated by the renderer backend.

	bindGroup       *wgpu.BindGroup
	bindGroupLayout *wgpu.BindGroupLayout
	buffers         map[int]*wgpu.Buffer
	textures        map[int]*wgpu.Texture
	textureViews    map[int]*wgpu.TextureView
	samplers        map[int]*wgpu.Sampler

	vertexBuffer *wgpu.Buffer
	indexBuffer  *wgpu.Buffer
	indexCount   int

	released bool
}

// BindGroupProvider holds the GPU resources backing one draw input: a mesh's vertex and index
// buffers, a bind group with its uniform buffers, or both. The renderer backend populates the
// provider; the owner releases it exactly once.
//
// Usage pattern:
//  1. The renderer creates a provider for a mesh or for the per-frame uniforms
//  2. The backend fills it through InitMeshBuffers, InitTextureView and InitBindGroup
//  3. Uniform contents are updated every frame through BufferWrite values
//  4. The provider is released when the mesh's model is disposed
type BindGroupProvider interface {
	// Release releases every GPU resource held by this provider. Later calls have no effect.
	Release()

	// Released reports whether Release has been called.
	//
	// Returns:
	//   - bool: true once released
	Released() bool

	// Label returns the debug label for this provider.
	//
	// Returns:
	//   - string: the debug label
	Label() string

	// BindGroup returns the created bind group, or nil before initialization.
	//
	// Returns:
	//   - *wgpu.BindGroup: the bind group or nil
	BindGroup() *wgpu.BindGroup

	// BindGroupLayout returns the layout the bind group was created with.
	//
	// Returns:
	//   - *wgpu.BindGroupLayout: the layout or nil
	BindGroupLayout() *wgpu.BindGroupLayout

	// Buffer returns the uniform buffer bound at binding.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.Buffer: the buffer or nil
	Buffer(binding int) *wgpu.Buffer

	// TextureView returns the texture view bound at binding.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.TextureView: the view or nil
	TextureView(binding int) *wgpu.TextureView

	// Sampler returns the sampler bound at binding.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.Sampler: the sampler or nil
	Sampler(binding int) *wgpu.Sampler

	// VertexBuffer returns the mesh vertex buffer.
	VertexBuffer() *wgpu.Buffer

	// IndexBuffer returns the mesh index buffer.
	IndexBuffer() *wgpu.Buffer

	// IndexCount returns the number of indices to draw.
	IndexCount() int

	SetBindGroup(bg *wgpu.BindGroup)
	SetBindGroupLayout(bgl *wgpu.BindGroupLayout)
	SetBuffer(binding int, buf *wgpu.Buffer)

	// SetTexture stores a texture and its view at binding. Both are released with the provider.
	//
	// Parameters:
	//   - binding: the binding index
	//   - tex: the texture
	//   - view: the view of tex
	SetTexture(binding int, tex *wgpu.Texture, view *wgpu.TextureView)

	SetSampler(binding int, s *wgpu.Sampler)
	SetVertexBuffer(buf *wgpu.Buffer)
	SetIndexBuffer(buf *wgpu.Buffer)
	SetIndexCount(count int)
}

var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates an empty provider with the given debug label.
//
// Parameters:
//   - label: the debug label used for GPU resource names
//   - options: functional options applied after construction
//
// Returns:
//   - BindGroupProvider: the new provider
func NewBindGroupProvider(label string, options ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{
		label:        label,
		buffers:      make(map[int]*wgpu.Buffer),
		textures:     make(map[int]*wgpu.Texture),
		textureViews: make(map[int]*wgpu.TextureView),
		samplers:     make(map[int]*wgpu.Sampler),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *bindGroupProvider) Label() string {
	return p.label
}

func (p *bindGroupProvider) Released() bool {
	return p.released
}

func (p *bindGroupProvider) BindGroup() *wgpu.BindGroup {
	return p.bindGroup
}

func (p *bindGroupProvider) BindGroupLayout() *wgpu.BindGroupLayout {
	return p.bindGroupLayout
}

func (p *bindGroupProvider) Buffer(binding int) *wgpu.Buffer {
	return p.buffers[binding]
}

func (p *bindGroupProvider) TextureView(binding int) *wgpu.TextureView {
	return p.textureViews[binding]
}

func (p *bindGroupProvider) Sampler(binding int) *wgpu.Sampler {
	return p.samplers[binding]
}

func (p *bindGroupProvider) VertexBuffer() *wgpu.Buffer {
	return p.vertexBuffer
}

func (p *bindGroupProvider) IndexBuffer() *wgpu.Buffer {
	return p.indexBuffer
}

func (p *bindGroupProvider) IndexCount() int {
	return p.indexCount
}

func (p *bindGroupProvider) SetBindGroup(bg *wgpu.BindGroup) {
	p.bindGroup = bg
}

func (p *bindGroupProvider) SetBindGroupLayout(bgl *wgpu.BindGroupLayout) {
	p.bindGroupLayout = bgl
}

func (p *bindGroupProvider) SetBuffer(binding int, buf *wgpu.Buffer) {
	p.buffers[binding] = buf
}

func (p *bindGroupProvider) SetTexture(binding int, tex *wgpu.Texture, view *wgpu.TextureView) {
	p.textures[binding] = tex
	p.textureViews[binding] = view
}

func (p *bindGroupProvider) SetSampler(binding int, s *wgpu.Sampler) {
	p.samplers[binding] = s
}

func (p *bindGroupProvider) SetVertexBuffer(buf *wgpu.Buffer) {
	p.vertexBuffer = buf
}

func (p *bindGroupProvider) SetIndexBuffer(buf *wgpu.Buffer) {
	p.indexBuffer = buf
}

func (p *bindGroupProvider) SetIndexCount(count int) {
	p.indexCount = count
}

func (p *bindGroupProvider) Release() {
	if p.released {
		return
	}
	p.released = true

	// bind group first, it references everything below
	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
	if p.bindGroupLayout != nil {
		p.bindGroupLayout.Release()
		p.bindGroupLayout = nil
	}
	for i, tv := range p.textureViews {
		if tv != nil {
			tv.Release()
		}
		delete(p.textureViews, i)
	}
	for i, tex := range p.textures {
		if tex != nil {
			tex.Release()
		}
		delete(p.textures, i)
	}
	for i, s := range p.samplers {
		if s != nil {
			s.Release()
		}
		delete(p.samplers, i)
	}
	for i, buf := range p.buffers {
		if buf != nil {
			buf.Release()
		}
		delete(p.buffers, i)
	}
	if p.vertexBuffer != nil {
		p.vertexBuffer.Release()
		p.vertexBuffer = nil
	}
	if p.indexBuffer != nil {
		p.indexBuffer.Release()
		p.indexBuffer = nil
	}
	p.indexCount = 0
}
