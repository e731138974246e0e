package scene

import (
	"log/slog"
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewer/engine/light"
	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
	"github.com/Carmen-Shannon/oxy-viewer/internal/logging"
	"github.com/go-gl/mathgl/mgl32"
)

// Ground plane settings.
const (
	GroundSize    float32 = 50
	GroundOpacity float32 = 0.4
)

// scene is the implementation of the Scene interface.
type scene struct {
	mu *sync.RWMutex

	name       string
	cam        camera.Camera
	background [4]float32
	lights     []light.Light
	ground     model.Model
	center     bool
	logger     *slog.Logger

	displayed model.Model
	installs  uint64
	released  bool
}

// Scene owns the scene graph: the peer objects created once with the scene (lights, ground, camera,
// background) and the single displayed object slot.
//
// Scene is not a general-purpose container. The displayed object is only ever replaced through
// Install, which the event loop calls between frames.
type Scene interface {
	// Name returns the scene name.
	//
	// Returns:
	//   - string: the name
	Name() string

	// Camera returns the scene camera.
	//
	// Returns:
	//   - camera.Camera: the camera
	Camera() camera.Camera

	// Background returns the clear color as sRGB encoded RGBA, as given by the settings.
	//
	// Returns:
	//   - [4]float32: the background color
	Background() [4]float32

	// Lights returns the scene lights.
	//
	// Returns:
	//   - []light.Light: the lights
	Lights() []light.Light

	// Ground returns the shadow-catching ground plane.
	//
	// Returns:
	//   - model.Model: the ground
	Ground() model.Model

	// Models returns everything to draw this frame: the ground followed by the displayed object.
	//
	// Returns:
	//   - []model.Model: the models
	Models() []model.Model

	// Displayed returns the displayed object, or nil when the slot is empty.
	//
	// Returns:
	//   - model.Model: the displayed object
	Displayed() model.Model

	// Install replaces the displayed object with fragment.
	// The previous object is detached and disposed before fragment is attached, so the two are
	// never part of the scene together. Every mesh of fragment is marked to cast and receive
	// shadows. With centering enabled the fragment is moved so its bounding box is centred on
	// the vertical axis and rests on the ground; otherwise its position is reset to the origin.
	// Install takes ownership of fragment. A nil fragment just empties the slot.
	//
	// Parameters:
	//   - fragment: the new displayed object
	Install(fragment model.Model)

	// Installs returns how many times Install attached a fragment.
	//
	// Returns:
	//   - uint64: the install count
	Installs() uint64

	// Release disposes the displayed object and the ground. Install does nothing afterwards.
	Release()
}

var _ Scene = &scene{}

// NewScene creates a new Scene with its peer objects: a hemisphere light, a shadow-casting
// directional light and the 50x50 shadow-only ground plane.
//
// Parameters:
//   - name: the name of the scene
//   - cam: the camera to attach (must not be nil)
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, cam camera.Camera, options ...SceneBuilderOption) Scene {
	if cam == nil {
		panic("scene: NewScene requires a non-nil Camera")
	}

	s := &scene{
		mu:         &sync.RWMutex{},
		name:       name,
		cam:        cam,
		background: [4]float32{0xf8 / 255.0, 0xf8 / 255.0, 0xf8 / 255.0, 1},
		logger:     logging.NewNop(),
		lights: []light.Light{
			light.NewLight(light.LightTypeHemisphere,
				light.WithColor(0xffffff),
				light.WithGroundColor(0x444444),
				light.WithIntensity(1.5),
				light.WithPosition(mgl32.Vec3{0, 20, 0}),
			),
			light.NewLight(light.LightTypeDirectional,
				light.WithColor(0xffffff),
				light.WithIntensity(1),
				light.WithPosition(mgl32.Vec3{5, 10, 5}),
				light.WithCastsShadows(true),
			),
		},
		ground: newGround(),
	}

	for _, option := range options {
		option(s)
	}
	return s
}

// newGround builds the ground plane. It only shows shadows cast onto it.
func newGround() model.Model {
	mat := common.DefaultMaterial()
	mat.Name = "shadow"
	mat.BaseColor = [4]float32{0, 0, 0, GroundOpacity}
	plane := model.NewPlane("ground", GroundSize, GroundSize, mat)
	plane.ReceiveShadow = true
	plane.ShadowOnly = true
	return model.NewModel(model.WithName("ground"), model.WithRoot(model.NewNode("ground", plane)))
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) Camera() camera.Camera {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cam
}

func (s *scene) Background() [4]float32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.background
}

func (s *scene) Lights() []light.Light {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]light.Light(nil), s.lights...)
}

func (s *scene) Ground() model.Model {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ground
}

func (s *scene) Models() []model.Model {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.released {
		return nil
	}
	if s.displayed == nil {
		return []model.Model{s.ground}
	}
	return []model.Model{s.ground, s.displayed}
}

func (s *scene) Displayed() model.Model {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.displayed
}

func (s *scene) Installs() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.installs
}

func (s *scene) Install(fragment model.Model) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.released {
		if fragment != nil {
			fragment.Dispose()
		}
		return
	}

	previous := s.displayed
	s.displayed = nil
	if previous != nil && previous != fragment {
		previous.Dispose()
		s.logger.Debug("disposed displayed object", "name", previous.Name())
	}

	if fragment == nil {
		return
	}

	for _, m := range fragment.Meshes() {
		m.CastShadow = true
		m.ReceiveShadow = true
	}
	fragment.SetPosition(s.placement(fragment))

	s.displayed = fragment
	s.installs++
	s.logger.Debug("installed displayed object", "name", fragment.Name(), "source", fragment.Source(), "position", fragment.Position())
}

// placement returns the position for a newly installed fragment. Caller must hold the mutex.
func (s *scene) placement(fragment model.Model) mgl32.Vec3 {
	if !s.center {
		return mgl32.Vec3{}
	}
	box, ok := fragment.Bounds()
	if !ok {
		return mgl32.Vec3{}
	}
	c := box.Center()
	return mgl32.Vec3{-c.X(), -box.Min.Y(), -c.Z()}
}

func (s *scene) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return
	}
	s.released = true
	if s.displayed != nil {
		s.displayed.Dispose()
		s.displayed = nil
	}
	s.ground.Dispose()
}
