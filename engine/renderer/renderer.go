package renderer

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewer/engine/light"
	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-viewer/internal/logging"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

//go:embed assets/forward.wgsl
var forwardShaderSource string

// Pipeline keys registered by every renderer.
const (
	PipelineKeyForward = "forward"
	PipelineKeyShadow  = "planar_shadow"
)

// ErrRendererReleased is returned by Render after Release.
var ErrRendererReleased = errors.New("renderer released")

// Surface is the window-side input of a renderer: where frames go and how big they are.
type Surface interface {
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
	Width() int
	Height() int
}

// FrameSource is what a frame draws: the clear color, the lights and the models in draw order.
type FrameSource interface {
	Background() [4]float32
	Lights() []light.Light
	Models() []model.Model
}

// meshResources are the GPU resources of one mesh instance.
type meshResources struct {
	// lit holds the vertex and index buffers and the bind group of the color pass.
	lit bind_group_provider.BindGroupProvider
	// shadow holds the bind group of the projected shadow draw; it reuses lit's buffers.
	shadow   bind_group_provider.BindGroupProvider
	material material.Material
}

func (r *meshResources) release() {
	r.lit.Release()
	if r.shadow != nil {
		r.shadow.Release()
	}
}

// drawItem is one queued draw.
type drawItem struct {
	res   *meshResources
	world mgl32.Mat4
}

type renderer struct {
	mu     *sync.Mutex
	logger *slog.Logger

	backendType RendererBackendType
	backend     RendererBackend

	pipelineCache map[string]pipeline.Pipeline
	frame         bind_group_provider.BindGroupProvider

	meshes       map[*model.Mesh]*meshResources
	failed       map[*model.Mesh]struct{}
	modelMeshes  map[model.Model][]*model.Mesh
	shadowOpaque float32

	width, height int
	frames        uint64
	released      bool

	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	pendingMSAA          *MSAASampleCount
}

// Renderer draws a FrameSource through a camera onto the window surface.
//
// Mesh GPU buffers are created the first time a mesh is drawn and are released when the
// owning model is disposed, so a replaced model never leaks GPU memory.
type Renderer interface {
	// Resize reconfigures the surface. Non-positive sizes (a minimized window) and repeated
	// sizes are ignored.
	//
	// Parameters:
	//   - width: the new surface width in pixels
	//   - height: the new surface height in pixels
	Resize(width, height int)

	// Size returns the current surface size.
	//
	// Returns:
	//   - int: the width in pixels
	//   - int: the height in pixels
	Size() (int, int)

	// Render draws one frame: lit geometry first, then the projected ground shadows.
	// Shadow-only meshes are never drawn directly; they only mark the plane shadows land on.
	//
	// Parameters:
	//   - frame: what to draw
	//   - cam: the camera to draw through
	//
	// Returns:
	//   - error: an error if the surface could not be acquired or the renderer is released
	Render(frame FrameSource, cam camera.Camera) error

	// Frames returns the number of frames presented.
	//
	// Returns:
	//   - uint64: the frame count
	Frames() uint64

	// ResidentMeshes returns the number of meshes with live GPU buffers.
	//
	// Returns:
	//   - int: the mesh count
	ResidentMeshes() int

	// Release releases every GPU resource including the device. The renderer cannot be used
	// afterward.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a renderer for the window surface.
//
// Parameters:
//   - backendType: the GPU backend to use
//   - surface: the window providing the surface descriptor and its initial size
//   - options: functional options
//
// Returns:
//   - Renderer: the renderer
//   - error: an error if the GPU device or the pipelines could not be created
func NewRenderer(backendType RendererBackendType, surface Surface, options ...RendererBuilderOption) (Renderer, error) {
	r := newRendererConfig(backendType, options...)

	msaa := MSAA4x
	if r.pendingMSAA != nil {
		msaa = *r.pendingMSAA
	}

	var backend RendererBackend
	var err error
	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		backend, err = newWGPURendererBackend(surface.SurfaceDescriptor(), r.forceFallbackAdapter, msaa)
	}
	if err != nil {
		return nil, err
	}
	if err := r.init(backend, surface.Width(), surface.Height()); err != nil {
		backend.Release()
		return nil, err
	}
	return r, nil
}

func newRendererConfig(backendType RendererBackendType, options ...RendererBuilderOption) *renderer {
	r := &renderer{
		mu:            &sync.Mutex{},
		logger:        logging.NewNop(),
		backendType:   backendType,
		pipelineCache: make(map[string]pipeline.Pipeline),
		meshes:        make(map[*model.Mesh]*meshResources),
		failed:        make(map[*model.Mesh]struct{}),
		modelMeshes:   make(map[model.Model][]*model.Mesh),
		shadowOpaque:  light.DefaultShadowOpacity,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// init configures the surface, registers the pipelines and creates the per-frame bind group.
func (r *renderer) init(backend RendererBackend, width, height int) error {
	r.backend = backend
	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}
	r.width, r.height = width, height
	r.backend.ConfigureSurface(width, height)

	s, err := shader.NewShader("forward", forwardShaderSource)
	if err != nil {
		return err
	}
	layouts := []wgpu.BindGroupLayoutDescriptor{frameLayout(), objectLayout()}
	forward := pipeline.NewPipeline(PipelineKeyForward, s,
		pipeline.WithFragmentEntryPoint("fs_main"),
		pipeline.WithBindGroupLayouts(layouts...),
		pipeline.WithBlendEnabled(true),
	)
	// Overlapping shadow triangles are coplanar, so the depth test keeps a second layer from
	// darkening the first.
	shadow := pipeline.NewPipeline(PipelineKeyShadow, s,
		pipeline.WithFragmentEntryPoint("fs_shadow"),
		pipeline.WithBindGroupLayouts(layouts...),
		pipeline.WithBlendEnabled(true),
		pipeline.WithDepthBias(-2, -1),
	)
	for _, p := range []pipeline.Pipeline{forward, shadow} {
		if err := r.backend.RegisterRenderPipeline(p); err != nil {
			return fmt.Errorf("failed to register pipeline %q: %w", p.PipelineKey(), err)
		}
		r.pipelineCache[p.PipelineKey()] = p
	}

	r.frame = bind_group_provider.NewBindGroupProvider("Frame")
	if err := r.backend.InitBindGroup(r.frame, frameLayout()); err != nil {
		return fmt.Errorf("failed to create frame bind group: %w", err)
	}
	return nil
}

func (r *renderer) Resize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.released || width <= 0 || height <= 0 {
		return
	}
	if width == r.width && height == r.height {
		return
	}
	r.width, r.height = width, height
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) Size() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

func (r *renderer) Frames() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

func (r *renderer) ResidentMeshes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.meshes)
}

func (r *renderer) Render(frame FrameSource, cam camera.Camera) error {
	// snapshot before locking; disposing a model takes r.mu from the frame source's side
	lights := frame.Lights()
	models := frame.Models()
	background := frame.Background()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.released {
		return ErrRendererReleased
	}
	if r.width <= 0 || r.height <= 0 {
		return nil
	}

	var lit, casters []drawItem
	planeY, hasReceiver := float32(0), false
	for _, m := range models {
		if m == nil || m.Disposed() {
			continue
		}
		m.Walk(func(node *model.Node, world mgl32.Mat4) {
			for _, mesh := range node.Meshes {
				if mesh.ShadowOnly {
					if mesh.ReceiveShadow && mesh.Bounds.Valid() {
						top := mesh.Bounds.Transform(world).Max.Y()
						if !hasReceiver || top > planeY {
							planeY = top
						}
						hasReceiver = true
					}
					continue
				}
				res := r.resources(m, mesh)
				if res == nil {
					continue
				}
				lit = append(lit, drawItem{res: res, world: world})
				if mesh.CastShadow {
					casters = append(casters, drawItem{res: res, world: world})
				}
			}
		})
	}

	var shadowMatrix mgl32.Mat4
	drawShadows := false
	if hasReceiver && len(casters) > 0 {
		if dir, ok := shadowLight(lights); ok {
			shadowMatrix, drawShadows = light.PlanarShadowMatrix(dir, planeY)
		}
	}

	camData := camera.NewGPUCameraUniform(cam)
	lightData := light.NewGPULighting(lights)
	writes := []bind_group_provider.BufferWrite{
		{Provider: r.frame, Binding: frameBindingCamera, Data: camData.Marshal()},
		{Provider: r.frame, Binding: frameBindingLighting, Data: lightData.Marshal()},
	}
	for _, d := range lit {
		md := model.NewGPUModelData(d.world)
		params := d.res.material.GPUParams()
		writes = append(writes,
			bind_group_provider.BufferWrite{Provider: d.res.lit, Binding: objectBindingModel, Data: md.Marshal()},
			bind_group_provider.BufferWrite{Provider: d.res.lit, Binding: objectBindingMaterial, Data: params.Marshal()},
		)
	}
	if drawShadows {
		shadowParams := material.NewMaterial(
			material.WithBaseColor([4]float32{0, 0, 0, r.shadowOpaque}),
			material.WithUnlit(true),
		).GPUParams()
		shadowBytes := shadowParams.Marshal()
		for _, d := range casters {
			md := model.NewGPUModelData(shadowMatrix.Mul4(d.world))
			writes = append(writes,
				bind_group_provider.BufferWrite{Provider: d.res.shadow, Binding: objectBindingModel, Data: md.Marshal()},
				bind_group_provider.BufferWrite{Provider: d.res.shadow, Binding: objectBindingMaterial, Data: shadowBytes},
			)
		}
	}

	r.backend.SetClearColor(background)
	r.backend.WriteBuffers(writes)
	if err := r.backend.BeginFrame(); err != nil {
		// an outdated or lost surface recovers after reconfiguration
		r.backend.ConfigureSurface(r.width, r.height)
		return fmt.Errorf("failed to begin frame: %w", err)
	}

	forward := r.pipelineCache[PipelineKeyForward]
	for _, d := range lit {
		r.backend.DrawCall(forward, d.res.lit, []bind_group_provider.BindGroupProvider{r.frame, d.res.lit})
	}
	if drawShadows {
		shadow := r.pipelineCache[PipelineKeyShadow]
		for _, d := range casters {
			r.backend.DrawCall(shadow, d.res.lit, []bind_group_provider.BindGroupProvider{r.frame, d.res.shadow})
		}
	}

	r.backend.EndFrame()
	r.backend.Present()
	r.frames++
	return nil
}

// shadowLight returns the travel direction of the first enabled shadow-casting light.
func shadowLight(lights []light.Light) (mgl32.Vec3, bool) {
	for _, l := range lights {
		if l != nil && l.Enabled() && l.CastsShadows() {
			return l.Direction(), true
		}
	}
	return mgl32.Vec3{}, false
}

// resources returns the GPU resources of mesh, uploading them on first use. The first upload
// for a model registers a dispose hook that releases all of the model's meshes.
// Must be called with r.mu held.
func (r *renderer) resources(m model.Model, mesh *model.Mesh) *meshResources {
	if res, ok := r.meshes[mesh]; ok {
		return res
	}
	if _, ok := r.failed[mesh]; ok {
		return nil
	}

	if _, hooked := r.modelMeshes[m]; !hooked {
		if !m.OnDispose(func() { r.releaseModel(m) }) {
			return nil
		}
		r.modelMeshes[m] = nil
	}

	res, err := r.upload(m, mesh)
	if err != nil {
		r.logger.Warn("mesh upload failed", "model", m.Name(), "mesh", mesh.Name, "error", err)
		r.failed[mesh] = struct{}{}
		r.modelMeshes[m] = append(r.modelMeshes[m], mesh)
		return nil
	}
	r.meshes[mesh] = res
	r.modelMeshes[m] = append(r.modelMeshes[m], mesh)
	return res
}

func (r *renderer) upload(m model.Model, mesh *model.Mesh) (*meshResources, error) {
	if len(mesh.Vertices) == 0 || len(mesh.Indices) == 0 {
		return nil, errors.New("mesh has no geometry")
	}

	mat := material.FromCommon(mesh.Material)
	if err := mat.TextureErr(); err != nil {
		r.logger.Warn("base color texture dropped", "model", m.Name(), "mesh", mesh.Name, "error", err)
	}

	label := m.Name() + "/" + mesh.Name
	res := &meshResources{
		lit:      bind_group_provider.NewBindGroupProvider(label),
		material: mat,
	}
	if err := r.backend.InitMeshBuffers(res.lit, common.SliceToBytes(mesh.Vertices), common.SliceToBytes(mesh.Indices), len(mesh.Indices)); err != nil {
		res.release()
		return nil, err
	}
	if tex := mat.Texture(); tex != nil {
		if err := r.backend.InitTextureView(res.lit, objectBindingTexture, *tex); err != nil {
			r.logger.Warn("texture upload failed", "model", m.Name(), "mesh", mesh.Name, "error", err)
			res.material = material.NewMaterial(
				material.WithName(mat.Name()),
				material.WithBaseColor(mat.BaseColor()),
				material.WithMetallic(mat.Metallic()),
				material.WithRoughness(mat.Roughness()),
			)
		}
	}
	if err := r.backend.InitBindGroup(res.lit, objectLayout()); err != nil {
		res.release()
		return nil, err
	}
	if mesh.CastShadow {
		res.shadow = bind_group_provider.NewBindGroupProvider(label + " Shadow")
		if err := r.backend.InitBindGroup(res.shadow, objectLayout()); err != nil {
			res.release()
			return nil, err
		}
	}
	return res, nil
}

// releaseModel releases the GPU resources of every mesh uploaded for m.
func (r *renderer) releaseModel(m model.Model) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, mesh := range r.modelMeshes[m] {
		if res, ok := r.meshes[mesh]; ok {
			res.release()
			delete(r.meshes, mesh)
		}
		delete(r.failed, mesh)
	}
	delete(r.modelMeshes, m)
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.released {
		return
	}
	r.released = true

	for mesh, res := range r.meshes {
		res.release()
		delete(r.meshes, mesh)
	}
	clear(r.failed)
	clear(r.modelMeshes)
	if r.frame != nil {
		r.frame.Release()
	}
	for _, p := range r.pipelineCache {
		p.Release()
	}
	r.backend.Release()
}
