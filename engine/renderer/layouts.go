package renderer

import (
	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewer/engine/light"
	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/material"
	"github.com/cogentcore/webgpu/wgpu"
)

// Bindings of the per-frame group (group 0).
const (
	frameBindingCamera   = 0
	frameBindingLighting = 1
)

// Bindings of the per-draw group (group 1).
const (
	objectBindingModel    = 0
	objectBindingMaterial = 1
	objectBindingTexture  = 2
	objectBindingSampler  = 3
)

func frameLayout() wgpu.BindGroupLayoutDescriptor {
	cam := camera.GPUCameraUniform{}
	lighting := light.GPULighting{}
	return wgpu.BindGroupLayoutDescriptor{
		Label: "Frame Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    frameBindingCamera,
				Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: uint64(cam.Size()),
				},
			},
			{
				Binding:    frameBindingLighting,
				Visibility: wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: uint64(lighting.Size()),
				},
			},
		},
	}
}

func objectLayout() wgpu.BindGroupLayoutDescriptor {
	md := model.GPUModelData{}
	mat := material.GPUMaterial{}
	return wgpu.BindGroupLayoutDescriptor{
		Label: "Object Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    objectBindingModel,
				Visibility: wgpu.ShaderStageVertex,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: uint64(md.Size()),
				},
			},
			{
				Binding:    objectBindingMaterial,
				Visibility: wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: uint64(mat.Size()),
				},
			},
			{
				Binding:    objectBindingTexture,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			},
			{
				Binding:    objectBindingSampler,
				Visibility: wgpu.ShaderStageFragment,
				Sampler: wgpu.SamplerBindingLayout{
					Type: wgpu.SamplerBindingTypeFiltering,
				},
			},
		},
	}
}
