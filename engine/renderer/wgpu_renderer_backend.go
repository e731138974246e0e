package renderer

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat        *wgpu.TextureFormat
	msaaTexture          *wgpu.Texture
	msaaTextureView      *wgpu.TextureView
	depthTexture         *wgpu.Texture
	depthTextureView     *wgpu.TextureView
	renderPassDescriptor *wgpu.RenderPassDescriptor
	clearColor           wgpu.Color

	presentMode wgpu.PresentMode // defaults to PresentModeFifo (VSync)
	sampleCount MSAASampleCount  // MSAA sample count for the main render pass

	// fallbacks bound when a bind group has no texture or sampler of its own
	whiteTexture     *wgpu.Texture
	whiteTextureView *wgpu.TextureView
	defaultSampler   *wgpu.Sampler

	// Frame state for batched rendering across multiple draw calls
	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool, sampleCount MSAASampleCount) (RendererBackend, error) {
	if surfaceDescriptor == nil {
		return nil, errors.New("window did not provide a surface descriptor")
	}
	runtime.LockOSThread()
	w := &wgpuRendererBackendImpl{
		mu:          &sync.Mutex{},
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeFifo,
		sampleCount: sampleCount,
		clearColor:  wgpu.Color{R: 1, G: 1, B: 1, A: 1},
	}
	w.surface = w.instance.CreateSurface(surfaceDescriptor)

	a, err := w.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    w.surface,
	})
	if err != nil {
		w.Release()
		return nil, fmt.Errorf("failed to request adapter: %w", err)
	}
	w.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		w.Release()
		return nil, fmt.Errorf("failed to request device: %w", err)
	}
	w.device = d
	w.queue = d.GetQueue()

	if err := w.initFallbacks(); err != nil {
		w.Release()
		return nil, err
	}
	return w, nil
}

// initFallbacks creates the 1×1 white texture and the sampler used by untextured materials.
func (b *wgpuRendererBackendImpl) initFallbacks() error {
	tex, view, err := b.uploadTexture("White Texture", common.TextureStagingData{
		Pixels: []byte{0xff, 0xff, 0xff, 0xff},
		Width:  1,
		Height: 1,
	})
	if err != nil {
		return fmt.Errorf("failed to create fallback texture: %w", err)
	}
	b.whiteTexture, b.whiteTextureView = tex, view

	samp, err := b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "Default Sampler",
		AddressModeU:  wgpu.AddressModeRepeat,
		AddressModeV:  wgpu.AddressModeRepeat,
		AddressModeW:  wgpu.AddressModeRepeat,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeLinear,
		LodMinClamp:   0,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return fmt.Errorf("failed to create default sampler: %w", err)
	}
	b.defaultSampler = samp
	return nil
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if width <= 0 || height <= 0 {
		return
	}

	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surfaceFormat = &capabilities.Formats[0]

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      *b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	b.releaseTargets()

	count := uint32(b.sampleCount)
	msaaEnabled := count > 1

	if msaaEnabled {
		// The render pass draws into the MSAA texture; the resolved result is written to the
		// swapchain view as the ResolveTarget.
		msaaTexture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
			Label: "MSAA Texture",
			Size: wgpu.Extent3D{
				Width:              uint32(width),
				Height:             uint32(height),
				DepthOrArrayLayers: 1,
			},
			MipLevelCount: 1,
			SampleCount:   count,
			Dimension:     wgpu.TextureDimension2D,
			Format:        *b.surfaceFormat,
			Usage:         wgpu.TextureUsageRenderAttachment,
		})
		if err != nil {
			panic(err)
		}
		b.msaaTexture = msaaTexture
		b.msaaTextureView, err = msaaTexture.CreateView(nil)
		if err != nil {
			panic(err)
		}
	}

	// Depth texture sample count must match the color attachment.
	depthTexture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Depth Texture",
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   count,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth24Plus,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		panic(err)
	}
	b.depthTexture = depthTexture
	b.depthTextureView, err = depthTexture.CreateView(nil)
	if err != nil {
		panic(err)
	}

	// With MSAA, View is the MSAA texture and ResolveTarget is set per frame to the swapchain
	// view. Without it, View is set per frame and ResolveTarget stays nil.
	storeOp := wgpu.StoreOpStore
	if msaaEnabled {
		storeOp = wgpu.StoreOpDiscard
	}
	b.renderPassDescriptor = &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:          b.msaaTextureView,
				ResolveTarget: nil,
				LoadOp:        wgpu.LoadOpClear,
				StoreOp:       storeOp,
				ClearValue:    b.clearColor,
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depthTextureView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	}
}

// releaseTargets releases the MSAA and depth targets of the previous configuration.
func (b *wgpuRendererBackendImpl) releaseTargets() {
	if b.msaaTextureView != nil {
		b.msaaTextureView.Release()
		b.msaaTextureView = nil
	}
	if b.msaaTexture != nil {
		b.msaaTexture.Release()
		b.msaaTexture = nil
	}
	if b.depthTextureView != nil {
		b.depthTextureView.Release()
		b.depthTextureView = nil
	}
	if b.depthTexture != nil {
		b.depthTexture.Release()
		b.depthTexture = nil
	}
}

func (b *wgpuRendererBackendImpl) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch mode {
	case PresentModeUncapped:
		b.presentMode = wgpu.PresentModeImmediate
	case PresentModeVSync:
		fallthrough
	default:
		b.presentMode = wgpu.PresentModeFifo
	}
}

func (b *wgpuRendererBackendImpl) SetClearColor(c [4]float32) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.clearColor = wgpu.Color{R: float64(c[0]), G: float64(c[1]), B: float64(c[2]), A: float64(c[3])}
	if b.renderPassDescriptor != nil {
		b.renderPassDescriptor.ColorAttachments[0].ClearValue = b.clearColor
	}
}

func (b *wgpuRendererBackendImpl) RegisterRenderPipeline(p pipeline.Pipeline) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := p.Shader()
	if s == nil || p.FragmentEntryPoint() == "" {
		return errors.New("a shader with a fragment entry point must be set to create a render pipeline")
	}
	if !s.HasFragmentEntryPoint(p.FragmentEntryPoint()) {
		return fmt.Errorf("shader %q has no fragment entry point %q", s.Key(), p.FragmentEntryPoint())
	}
	if b.surfaceFormat == nil {
		return errors.New("surface must be configured before registering pipelines")
	}

	module, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: s.Key(),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: s.Source(),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create shader module %q: %w", s.Key(), err)
	}
	defer module.Release()

	descriptors := p.BindGroupLayouts()
	bindGroupLayouts := make([]*wgpu.BindGroupLayout, len(descriptors))
	for g := range descriptors {
		layout, layoutErr := b.device.CreateBindGroupLayout(&descriptors[g])
		if layoutErr != nil {
			return fmt.Errorf("failed to create bind group layout for group %d: %w", g, layoutErr)
		}
		defer layout.Release()
		bindGroupLayouts[g] = layout
	}

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.PipelineKey(),
		BindGroupLayouts: bindGroupLayouts,
	})
	if err != nil {
		return err
	}
	defer pipelineLayout.Release()

	target := wgpu.ColorTargetState{
		Format:    *b.surfaceFormat,
		WriteMask: p.WriteMask(),
	}
	if p.BlendEnabled() {
		target.Blend = p.BlendState()
	}

	depthCompare := wgpu.CompareFunctionLess
	if !p.DepthTestEnabled() {
		depthCompare = wgpu.CompareFunctionAlways
	}

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.PipelineKey() + " Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: s.VertexEntryPoint(),
			Buffers:    []wgpu.VertexBufferLayout{s.VertexLayout()},
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: p.FragmentEntryPoint(),
			Targets:    []wgpu.ColorTargetState{target},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  p.Topology(),
			FrontFace: p.FrontFace(),
			CullMode:  p.CullMode(),
		},
		Multisample: wgpu.MultisampleState{
			Count: uint32(b.sampleCount),
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:              wgpu.TextureFormatDepth24Plus,
			DepthWriteEnabled:   p.DepthWriteEnabled(),
			DepthCompare:        depthCompare,
			DepthBias:           p.DepthBias(),
			DepthBiasSlopeScale: p.DepthBiasSlopeScale(),
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
	})
	if err != nil {
		return err
	}

	p.SetRenderPipeline(created)
	return nil
}

func (b *wgpuRendererBackendImpl) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(vertexData) == 0 || len(indexData) == 0 {
		return errors.New("mesh has no vertex or index data")
	}

	vbuf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            provider.Label() + " Vertex Buffer",
		Size:             uint64(len(vertexData)),
		Usage:            wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return err
	}
	b.queue.WriteBuffer(vbuf, 0, vertexData)
	provider.SetVertexBuffer(vbuf)

	ibuf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            provider.Label() + " Index Buffer",
		Size:             uint64(len(indexData)),
		Usage:            wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return err
	}
	b.queue.WriteBuffer(ibuf, 0, indexData)
	provider.SetIndexBuffer(ibuf)
	provider.SetIndexCount(indexCount)

	return nil
}

func (b *wgpuRendererBackendImpl) InitTextureView(provider bind_group_provider.BindGroupProvider, bindingKey int, stagingData common.TextureStagingData) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	tex, view, err := b.uploadTexture(provider.Label()+" Texture", stagingData)
	if err != nil {
		return err
	}
	provider.SetTexture(bindingKey, tex, view)
	return nil
}

// uploadTexture creates an sRGB texture and writes the staged pixels into it.
func (b *wgpuRendererBackendImpl) uploadTexture(label string, stagingData common.TextureStagingData) (*wgpu.Texture, *wgpu.TextureView, error) {
	if stagingData.Width == 0 || stagingData.Height == 0 ||
		len(stagingData.Pixels) < int(stagingData.Width*stagingData.Height*4) {
		return nil, nil, fmt.Errorf("texture %q has invalid staging data", label)
	}

	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     label,
		Usage:     wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              stagingData.Width,
			Height:             stagingData.Height,
			DepthOrArrayLayers: 1,
		},
		Format:        wgpu.TextureFormatRGBA8UnormSrgb,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return nil, nil, err
	}

	b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		stagingData.Pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  stagingData.Width * 4,
			RowsPerImage: stagingData.Height,
		},
		&wgpu.Extent3D{
			Width:              stagingData.Width,
			Height:             stagingData.Height,
			DepthOrArrayLayers: 1,
		},
	)

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, nil, err
	}
	return tex, view, nil
}

func (b *wgpuRendererBackendImpl) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(descriptor.Entries) == 0 {
		return nil
	}

	layout, err := b.device.CreateBindGroupLayout(&descriptor)
	if err != nil {
		return err
	}
	provider.SetBindGroupLayout(layout)

	entries := make([]wgpu.BindGroupEntry, len(descriptor.Entries))
	for i, entry := range descriptor.Entries {
		binding := int(entry.Binding)

		switch {
		case entry.Texture.SampleType != wgpu.TextureSampleTypeUndefined:
			tv := provider.TextureView(binding)
			if tv == nil {
				tv = b.whiteTextureView
			}
			entries[i] = wgpu.BindGroupEntry{Binding: entry.Binding, TextureView: tv}
		case entry.Sampler.Type != wgpu.SamplerBindingTypeUndefined:
			samp := provider.Sampler(binding)
			if samp == nil {
				samp = b.defaultSampler
			}
			entries[i] = wgpu.BindGroupEntry{Binding: entry.Binding, Sampler: samp}
		default:
			buf := provider.Buffer(binding)
			if buf == nil {
				buf, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
					Label: fmt.Sprintf("%s Buffer %d", provider.Label(), binding),
					Size:  entry.Buffer.MinBindingSize,
					Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
				})
				if err != nil {
					return err
				}
				provider.SetBuffer(binding, buf)
			}
			entries[i] = wgpu.BindGroupEntry{
				Binding: entry.Binding,
				Buffer:  buf,
				Offset:  0,
				Size:    wgpu.WholeSize,
			}
		}
	}

	bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   provider.Label() + " Bind Group",
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		return err
	}
	provider.SetBindGroup(bindGroup)

	return nil
}

func (b *wgpuRendererBackendImpl) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, w := range writes {
		buf := w.Provider.Buffer(w.Binding)
		if buf == nil {
			continue
		}
		b.queue.WriteBuffer(buf, w.Offset, w.Data)
	}
}

func (b *wgpuRendererBackendImpl) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.renderPassDescriptor == nil {
		return errors.New("surface is not configured")
	}
	// A held surface texture means the previous frame was never presented; acquiring another
	// one fails with "Surface image is already acquired".
	if b.frameSurface != nil {
		return errors.New("previous frame surface not yet presented")
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}

	if b.sampleCount > 1 {
		b.renderPassDescriptor.ColorAttachments[0].ResolveTarget = view
	} else {
		b.renderPassDescriptor.ColorAttachments[0].View = view
	}
	pass := encoder.BeginRenderPass(b.renderPassDescriptor)

	b.frameEncoder = encoder
	b.framePass = pass
	b.frameSurface = surfaceTexture
	b.frameView = view

	return nil
}

func (b *wgpuRendererBackendImpl) DrawCall(
	p pipeline.Pipeline,
	meshProvider bind_group_provider.BindGroupProvider,
	bindGroups []bind_group_provider.BindGroupProvider,
) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil || p.Pipeline() == nil || meshProvider.VertexBuffer() == nil {
		return
	}

	b.framePass.SetPipeline(p.Pipeline())

	for i, bg := range bindGroups {
		b.framePass.SetBindGroup(uint32(i), bg.BindGroup(), nil)
	}

	b.framePass.SetVertexBuffer(0, meshProvider.VertexBuffer(), 0, wgpu.WholeSize)
	b.framePass.SetIndexBuffer(meshProvider.IndexBuffer(), wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	b.framePass.DrawIndexed(uint32(meshProvider.IndexCount()), 1, 0, 0, 0)
}

func (b *wgpuRendererBackendImpl) EndFrame() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return
	}
	b.framePass.End()
	b.framePass.Release()
	b.framePass = nil

	commandBuffer, err := b.frameEncoder.Finish(nil)
	if err != nil {
		b.frameEncoder.Release()
		b.frameView.Release()
		b.frameSurface.Release()
		b.frameEncoder = nil
		b.frameSurface = nil
		b.frameView = nil
		return
	}

	b.queue.Submit(commandBuffer)

	commandBuffer.Release()
	b.frameEncoder.Release()
	b.frameEncoder = nil
}

func (b *wgpuRendererBackendImpl) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface == nil {
		return
	}

	b.surface.Present()

	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	b.frameSurface.Release()
	b.frameSurface = nil
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.releaseTargets()
	if b.defaultSampler != nil {
		b.defaultSampler.Release()
		b.defaultSampler = nil
	}
	if b.whiteTextureView != nil {
		b.whiteTextureView.Release()
		b.whiteTextureView = nil
	}
	if b.whiteTexture != nil {
		b.whiteTexture.Release()
		b.whiteTexture = nil
	}
	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}
