package bind_group_provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewBindGroupProvider(t *testing.T) {
	p := NewBindGroupProvider("mesh", WithIndexCount(36))

	assert.Equal(t, "mesh", p.Label())
	assert.Equal(t, 36, p.IndexCount())
	assert.Nil(t, p.BindGroup())
	assert.Nil(t, p.Buffer(0))
	assert.Nil(t, p.TextureView(2))
	assert.False(t, p.Released())
}

func TestReleaseIsIdempotent(t *testing.T) {
	p := NewBindGroupProvider("empty", WithIndexCount(3))

	p.Release()
	p.Release()

	assert.True(t, p.Released())
	assert.Zero(t, p.IndexCount())
}
