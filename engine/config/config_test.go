package config

import (
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveQuery(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantAsset string
		wantHide  bool
	}{
		{"named model", "model=Chair.glb", "Chair.glb", false},
		{"leading question mark", "?model=sofa.glb", "sofa.glb", false},
		{"no model", "", "default.glb", false},
		{"empty model", "model=", "default.glb", false},
		{"hideUI with value", "hideUI=1", "default.glb", true},
		{"hideUI empty value", "hideUI=", "default.glb", true},
		{"hideUI bare key", "model=bed.glb&hideUI", "bed.glb", true},
		{"hideUI false still hides", "hideUI=false", "default.glb", true},
		{"escaped name", "model=my%20chair.glb", "my chair.glb", false},
		{"malformed pair is skipped", "model=%zz&hideUI", "default.glb", true},
		{"malformed hideUI still hides", "model=table.glb&hideUI=%zz", "table.glb", true},
		{"hideUI with bare percent", "model=table.glb&hideUI=100%", "table.glb", true},
		{"hideUI with semicolon", "hideUI=a;b", "default.glb", true},
		{"escaped hideUI key", "hide%55I", "default.glb", true},
		{"first model wins", "model=a.glb&model=b.glb", "a.glb", false},
		{"keys are case sensitive", "Model=a.glb&hideui", "default.glb", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := ResolveQuery(tt.query, "default.glb")
			assert.Equal(t, tt.wantAsset, cfg.RequestedAsset())
			assert.Equal(t, tt.wantHide, cfg.UIHidden())
		})
	}
}

func TestResolveIsPure(t *testing.T) {
	values := url.Values{QueryKeyModel: {"chair.glb"}}
	first := Resolve(values, "default.glb")
	second := Resolve(values, "default.glb")
	assert.Equal(t, first, second)
	assert.Equal(t, "default.glb", Resolve(nil, "default.glb").RequestedAsset())
}

func TestLoadSettingsDefaults(t *testing.T) {
	s, err := LoadSettings("")
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)
	assert.Equal(t, "models", s.ModelsDir)
	assert.Equal(t, 15*time.Second, s.LoadTimeout)
	assert.Equal(t, []string{"chair.glb", "table.glb", "sofa.glb", "bed.glb"}, s.Catalog)
	assert.InDelta(t, 0xf8/255.0, s.BackgroundRGBA()[0], 1e-6)
}

func TestLoadSettingsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viewer.yaml")
	doc := `
models_dir: ./assets
default_asset: fallback.glb
catalog: lamp.glb,desk.glb
center_models: true
load_timeout: 2s
auto_rotate_speed: "0.5"
window:
  width: 800
  title: showroom
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, "./assets", s.ModelsDir)
	assert.Equal(t, "fallback.glb", s.DefaultAsset)
	assert.Equal(t, []string{"lamp.glb", "desk.glb"}, s.Catalog)
	assert.True(t, s.CenterModels)
	assert.Equal(t, 2*time.Second, s.LoadTimeout)
	assert.Equal(t, float32(0.5), s.AutoRotateSpeed)
	assert.Equal(t, 800, s.Window.Width)
	assert.Equal(t, 720, s.Window.Height, "unset nested keys keep their defaults")
	assert.Equal(t, "showroom", s.Window.Title)
	assert.True(t, s.AutoRotate)
}

func TestLoadSettingsErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"unknown key", "modles_dir: x\n", "modles_dir"},
		{"bad duration", "load_timeout: soon\n", "load_timeout"},
		{"empty default", "default_asset: \"\"\n", "default_asset"},
		{"zero width", "window:\n  width: 0\n", "window size"},
		{"bad background", "background: blue\n", "background"},
		{"negative workers", "load_workers: -1\n", "load_workers"},
		{"malformed yaml", "catalog: [a.glb\n", "failed to decode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "viewer.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.doc), 0o644))
			_, err := LoadSettings(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, err := LoadSettings(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read settings")
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#ff8000")
	require.NoError(t, err)
	assert.Equal(t, [4]float32{1, 128.0 / 255, 0, 1}, c)

	c, err = ParseColor("0x444444")
	require.NoError(t, err)
	assert.InDelta(t, 0x44/255.0, c[1], 1e-6)

	for _, bad := range []string{"", "#fff", "#gggggg", "red"} {
		_, err := ParseColor(bad)
		assert.Error(t, err, bad)
	}
}

func TestDecodeReplacesCatalog(t *testing.T) {
	s := DefaultSettings()
	require.NoError(t, s.Decode([]byte("catalog:\n  - lamp.glb\n")))
	assert.Equal(t, []string{"lamp.glb"}, s.Catalog)
}
