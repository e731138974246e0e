package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// WindowSettings configures the viewer window.
type WindowSettings struct {
	Width  int    `mapstructure:"width" yaml:"width"`
	Height int    `mapstructure:"height" yaml:"height"`
	Title  string `mapstructure:"title" yaml:"title"`
	VSync  bool   `mapstructure:"vsync" yaml:"vsync"`
}

// Settings are the deployment settings of a viewer. They come from an optional YAML file layered
// over DefaultSettings, then from command line flags.
type Settings struct {
	ModelsDir       string         `mapstructure:"models_dir" yaml:"models_dir"`
	BaseURL         string         `mapstructure:"base_url" yaml:"base_url"`
	DefaultAsset    string         `mapstructure:"default_asset" yaml:"default_asset"`
	Catalog         []string       `mapstructure:"catalog" yaml:"catalog"`
	CenterModels    bool           `mapstructure:"center_models" yaml:"center_models"`
	LoadTimeout     time.Duration  `mapstructure:"load_timeout" yaml:"load_timeout"`
	AutoRotate      bool           `mapstructure:"auto_rotate" yaml:"auto_rotate"`
	AutoRotateSpeed float32        `mapstructure:"auto_rotate_speed" yaml:"auto_rotate_speed"`
	Background      string         `mapstructure:"background" yaml:"background"`
	Window          WindowSettings `mapstructure:"window" yaml:"window"`
	LoadWorkers     int            `mapstructure:"load_workers" yaml:"load_workers"`
	MetricsAddr     string         `mapstructure:"metrics_addr" yaml:"metrics_addr"`
	Watch           bool           `mapstructure:"watch" yaml:"watch"`
}

// DefaultSettings returns the settings used when no file overrides them.
//
// Returns:
//   - Settings: the defaults
func DefaultSettings() Settings {
	return Settings{
		ModelsDir:       "models",
		DefaultAsset:    "default.glb",
		Catalog:         []string{"chair.glb", "table.glb", "sofa.glb", "bed.glb"},
		LoadTimeout:     15 * time.Second,
		AutoRotate:      true,
		AutoRotateSpeed: 1,
		Background:      "#f8f8f8",
		Window: WindowSettings{
			Width:  1280,
			Height: 720,
			Title:  "oxy-viewer",
			VSync:  true,
		},
		LoadWorkers: 2,
	}
}

// LoadSettings reads a YAML settings file over DefaultSettings. An empty path returns the
// defaults. Unknown keys are rejected so a typo does not silently fall back to a default.
//
// Parameters:
//   - path: the settings file, or empty
//
// Returns:
//   - Settings: the validated settings
//   - error: an error if the file cannot be read, decoded or validated
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()
	if path == "" {
		return s, s.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("failed to read settings: %w", err)
	}
	if err := s.Decode(data); err != nil {
		return s, fmt.Errorf("failed to decode settings %s: %w", path, err)
	}
	return s, s.Validate()
}

// Decode layers YAML data over s.
//
// Parameters:
//   - data: the YAML document
//
// Returns:
//   - error: an error if the document is malformed or holds unknown keys or bad values
func (s *Settings) Decode(data []byte) error {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) == 0 {
		return nil
	}
	// mapstructure decodes into an existing slice element by element, so a shorter list would
	// keep the tail of the default catalog
	if _, ok := raw["catalog"]; ok {
		s.Catalog = nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           s,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return err
	}
	return decoder.Decode(raw)
}

// Validate reports every invalid setting.
//
// Returns:
//   - error: nil when every setting is usable
func (s Settings) Validate() error {
	var errs []error
	if s.ModelsDir == "" && s.BaseURL == "" {
		errs = append(errs, errors.New("models_dir or base_url is required"))
	}
	if s.DefaultAsset == "" {
		errs = append(errs, errors.New("default_asset must not be empty"))
	}
	for i, name := range s.Catalog {
		if strings.TrimSpace(name) == "" {
			errs = append(errs, fmt.Errorf("catalog entry %d is empty", i))
		}
	}
	if s.LoadTimeout <= 0 {
		errs = append(errs, fmt.Errorf("load_timeout must be positive, got %s", s.LoadTimeout))
	}
	if s.Window.Width <= 0 || s.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size must be positive, got %dx%d", s.Window.Width, s.Window.Height))
	}
	if s.LoadWorkers <= 0 {
		errs = append(errs, fmt.Errorf("load_workers must be positive, got %d", s.LoadWorkers))
	}
	if _, err := ParseColor(s.Background); err != nil {
		errs = append(errs, fmt.Errorf("background: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid settings: %w", errors.Join(errs...))
	}
	return nil
}

// BackgroundRGBA returns the background as sRGB encoded RGBA with components in [0, 1], or the
// default when it does not parse. No linear conversion is applied.
//
// Returns:
//   - [4]float32: the background color
func (s Settings) BackgroundRGBA() [4]float32 {
	c, err := ParseColor(s.Background)
	if err != nil {
		c, _ = ParseColor(DefaultSettings().Background)
	}
	return c
}

// ParseColor parses "#rrggbb", "rrggbb" or "0xrrggbb" into an opaque RGBA color.
//
// Parameters:
//   - s: the color text
//
// Returns:
//   - [4]float32: the color with components in [0, 1]
//   - error: an error if s is not a six digit hex color
func ParseColor(s string) ([4]float32, error) {
	hex := strings.TrimPrefix(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "#"), "0x")
	if len(hex) != 6 {
		return [4]float32{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return [4]float32{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return [4]float32{
		float32((v>>16)&0xff) / 255,
		float32((v>>8)&0xff) / 255,
		float32(v&0xff) / 255,
		1,
	}, nil
}
