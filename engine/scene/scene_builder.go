package scene

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-viewer/engine/light"
)

// SceneBuilderOption is a functional option for configuring a Scene via NewScene.
type SceneBuilderOption func(*scene)

// WithCentering is an option builder that enables re-centering installed fragments on the origin.
//
// Parameters:
//   - center: true to center installed fragments
//
// Returns:
//   - SceneBuilderOption: a function that applies the centering option to a scene
func WithCentering(center bool) SceneBuilderOption {
	return func(s *scene) {
		s.center = center
	}
}

// WithBackground is an option builder that sets the clear color.
//
// Parameters:
//   - rgba: the color
//
// Returns:
//   - SceneBuilderOption: a function that applies the background option to a scene
func WithBackground(rgba [4]float32) SceneBuilderOption {
	return func(s *scene) {
		s.background = rgba
	}
}

// WithLights is an option builder that replaces the default lights.
//
// Parameters:
//   - lights: the lights
//
// Returns:
//   - SceneBuilderOption: a function that applies the lights option to a scene
func WithLights(lights ...light.Light) SceneBuilderOption {
	return func(s *scene) {
		s.lights = lights
	}
}

// WithLogger is an option builder that sets the logger.
//
// Parameters:
//   - logger: the logger; ignored when nil
//
// Returns:
//   - SceneBuilderOption: a function that applies the logger option to a scene
func WithLogger(logger *slog.Logger) SceneBuilderOption {
	return func(s *scene) {
		if logger != nil {
			s.logger = logger
		}
	}
}
