package common

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/internal/testassets"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoundingBox(t *testing.T) {
	var box BoundingBox
	assert.False(t, box.Valid())

	box.Extend(mgl32.Vec3{1, 0, -1})
	box.Extend(mgl32.Vec3{-1, 2, 1})
	require.True(t, box.Valid())
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, box.Center())
	assert.Equal(t, mgl32.Vec3{2, 2, 2}, box.Size())

	moved := box.Transform(mgl32.Translate3D(0, 3, 0))
	assert.True(t, moved.Min.ApproxEqual(mgl32.Vec3{-1, 3, -1}))
	assert.True(t, moved.Max.ApproxEqual(mgl32.Vec3{1, 5, 1}))
}

func TestTextureDecode(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"png", testassets.SolidPNG(4, 2)},
		{"bmp", testassets.SolidBMP(4, 2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			staged, err := (&Texture{Name: tt.name, Data: tt.data}).Decode()
			require.NoError(t, err)
			assert.Equal(t, uint32(4), staged.Width)
			assert.Equal(t, uint32(2), staged.Height)
			assert.Len(t, staged.Pixels, 4*2*4)
			assert.Equal(t, []byte{0x80, 0x80, 0x80, 0xff}, staged.Pixels[:4])
		})
	}
}

func TestTextureDecodeRejectsGarbage(t *testing.T) {
	_, err := (&Texture{Name: "broken", Data: []byte("not an image")}).Decode()
	assert.Error(t, err)

	var missing *Texture
	_, err = missing.Decode()
	assert.Error(t, err)
}
