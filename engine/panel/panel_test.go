package panel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var catalog = []string{"chair.glb", "table.glb", "sofa.glb", "bed.glb"}

func TestLabelStripsExtension(t *testing.T) {
	tests := map[string]string{
		"chair.glb":       "chair",
		"Chair.GLB":       "Chair",
		"scene.gltf":      "scene",
		"nested/sofa.glb": "sofa",
		"noext":           "noext",
		"archive.tar.glb": "archive.tar",
	}
	for in, want := range tests {
		assert.Equal(t, want, Label(in), in)
	}
}

func TestControlsFollowCatalog(t *testing.T) {
	p := NewPanel(catalog)
	controls := p.Controls()
	require.Len(t, controls, 4)
	assert.Equal(t, Control{Label: "chair", Asset: "chair.glb"}, controls[0])
	assert.Equal(t, Control{Label: "bed", Asset: "bed.glb"}, controls[3])
	assert.True(t, p.Visible())
	assert.Equal(t, "[1] chair  [2] table  [3] sofa  [4] bed", p.Text())
}

func TestPressCallsBoundHandler(t *testing.T) {
	p := NewPanel(catalog)
	var pressed []string
	require.NoError(t, p.Bind("sofa.glb", func(asset string) { pressed = append(pressed, asset) }))

	assert.False(t, p.Press(0), "unbound control")
	assert.True(t, p.Press(2))
	assert.False(t, p.Press(4))
	assert.False(t, p.Press(-1))
	assert.Equal(t, []string{"sofa.glb"}, pressed)

	assert.Error(t, p.Bind("lamp.glb", func(string) {}))
}

func TestBindAll(t *testing.T) {
	p := NewPanel(catalog)
	var pressed []string
	p.BindAll(func(asset string) { pressed = append(pressed, asset) })
	for i := range catalog {
		assert.True(t, p.Press(i))
	}
	assert.Equal(t, catalog, pressed)
}

func TestHiddenPanel(t *testing.T) {
	p := NewPanel(catalog, WithHidden(true))
	calls := 0
	p.BindAll(func(string) { calls++ })

	assert.False(t, p.Visible())
	assert.Empty(t, p.Text())
	assert.False(t, p.Press(0))

	assert.True(t, p.Toggle())
	assert.True(t, p.Press(0))
	assert.False(t, p.Toggle())
	assert.Equal(t, 1, calls)

	p.SetVisible(true)
	assert.True(t, p.Visible())
}

func TestLockedPanel(t *testing.T) {
	p := NewPanel(catalog, WithLocked(true))
	calls := 0
	p.BindAll(func(string) { calls++ })

	assert.True(t, p.Locked())
	assert.False(t, p.Visible())
	assert.False(t, p.Toggle())
	p.SetVisible(true)
	assert.False(t, p.Visible())
	assert.False(t, p.Press(0))
	assert.Empty(t, p.Text())
	assert.Zero(t, calls)

	assert.False(t, NewPanel(catalog, WithLocked(false)).Locked())
}
