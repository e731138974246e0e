package loader

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"

	"github.com/Carmen-Shannon/oxy-viewer/internal/testassets"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingStorage counts fetches per name before delegating.
type countingStorage struct {
	inner Storage
	calls map[string]*atomic.Int32
}

func newCountingStorage(inner Storage) *countingStorage {
	return &countingStorage{inner: inner, calls: map[string]*atomic.Int32{}}
}

func (s *countingStorage) Fetch(ctx context.Context, name string) ([]byte, error) {
	c, ok := s.calls[name]
	if !ok {
		c = &atomic.Int32{}
		s.calls[name] = c
	}
	c.Add(1)
	return s.inner.Fetch(ctx, name)
}

// stallingStorage ignores ctx and returns only after a fixed delay.
type stallingStorage struct{ delay time.Duration }

func (s stallingStorage) Fetch(_ context.Context, name string) ([]byte, error) {
	time.Sleep(s.delay)
	return nil, errors.New("stalled mount")
}

// blockingStorage never returns until the context ends.
type blockingStorage struct{}

func (blockingStorage) Fetch(ctx context.Context, name string) ([]byte, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestLoadGLB(t *testing.T) {
	fsys := fstest.MapFS{"chair.glb": {Data: testassets.TriangleGLB([3]float32{1, 0, 0})}}
	l := NewLoader(BackendTypeGLTF, WithStorage(NewFSStorage(fsys)))

	out := l.Load(context.Background(), "chair.glb")
	require.True(t, out.Ok(), "load failed: %v", out.Err())
	assert.Equal(t, "chair.glb", out.Source())
	assert.True(t, out.HasBounds())

	frag := out.Fragment()
	assert.Equal(t, "chair", frag.Name())
	assert.Equal(t, "chair.glb", frag.Source())

	meshes := frag.Meshes()
	require.Len(t, meshes, 1)
	assert.Equal(t, [4]float32{1, 0, 0, 1}, meshes[0].Material.BaseColor)
	assert.Equal(t, []uint32{0, 1, 2}, meshes[0].Indices)

	box, ok := frag.Bounds()
	require.True(t, ok)
	assert.True(t, box.Min.ApproxEqual(mgl32.Vec3{1, 0, 0}))
	assert.True(t, box.Max.ApproxEqual(mgl32.Vec3{2, 2, 0}))
}

func TestLoadGLTFWithRelativeBuffer(t *testing.T) {
	fsys := fstest.MapFS{
		"sets/sofa.gltf":         {Data: testassets.TriangleGLTF([3]float32{}, "bin/sofa%20data.bin")},
		"sets/bin/sofa data.bin": {Data: testassets.TriangleBin()},
	}
	storage := newCountingStorage(NewFSStorage(fsys))
	l := NewLoader(BackendTypeGLTF, WithStorage(storage))

	out := l.Load(context.Background(), "sets/sofa.gltf")
	require.True(t, out.Ok(), "load failed: %v", out.Err())
	assert.EqualValues(t, 1, storage.calls["sets/bin/sofa data.bin"].Load())
}

func TestLoadEmbeddedGLTF(t *testing.T) {
	fsys := fstest.MapFS{"bed.gltf": {Data: testassets.TriangleEmbeddedGLTF([3]float32{})}}
	l := NewLoader(BackendTypeGLTF, WithStorage(NewFSStorage(fsys)))

	out := l.Load(context.Background(), "bed.gltf")
	require.True(t, out.Ok(), "load failed: %v", out.Err())
	assert.Len(t, out.Fragment().Meshes(), 1)
}

func TestLoadPrefersWebPTextureSource(t *testing.T) {
	webp := []byte("RIFF....WEBPVP8 ")
	fsys := fstest.MapFS{"lamp.gltf": {Data: testassets.TexturedGLTF(testassets.SolidPNG(2, 2), webp)}}
	l := NewLoader(BackendTypeGLTF, WithStorage(NewFSStorage(fsys)))

	out := l.Load(context.Background(), "lamp.gltf")
	require.True(t, out.Ok(), "load failed: %v", out.Err())
	meshes := out.Fragment().Meshes()
	require.Len(t, meshes, 1)
	tex := meshes[0].Material.BaseColorTexture
	require.NotNil(t, tex)
	assert.Equal(t, "image/webp", tex.MimeType)
	assert.Equal(t, webp, tex.Data)
}

func TestLoadFailures(t *testing.T) {
	fsys := fstest.MapFS{
		"broken.glb":    {Data: []byte("definitely not a model")},
		"truncated.glb": {Data: testassets.TriangleGLB([3]float32{})[:40]},
		"notes.txt":     {Data: []byte("hello")},
		"lonely.gltf":   {Data: testassets.TriangleGLTF([3]float32{}, "missing.bin")},
	}

	tests := []struct {
		name  string
		asset string
		want  error
		class string
	}{
		{"missing file", "Missing.glb", ErrAssetNotFound, "not_found"},
		{"empty name", "", ErrAssetNotFound, "not_found"},
		{"escaping path", "../secret.glb", ErrAssetNotFound, "not_found"},
		{"garbage bytes", "broken.glb", ErrDecodeFailure, "decode"},
		{"truncated glb", "truncated.glb", ErrDecodeFailure, "decode"},
		{"not a model", "notes.txt", ErrDecodeFailure, "decode"},
		{"missing external buffer", "lonely.gltf", ErrDecodeFailure, "decode"},
	}

	l := NewLoader(BackendTypeGLTF, WithStorage(NewFSStorage(fsys)))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := l.Load(context.Background(), tt.asset)
			assert.False(t, out.Ok())
			assert.Nil(t, out.Fragment())
			assert.False(t, out.HasBounds())
			assert.Equal(t, tt.asset, out.Source())
			assert.ErrorIs(t, out.Err(), tt.want)
			assert.Equal(t, tt.class, Classify(out.Err()))
		})
	}
}

func TestLoadTimeout(t *testing.T) {
	l := NewLoader(BackendTypeGLTF, WithStorage(blockingStorage{}), WithTimeout(20*time.Millisecond))

	start := time.Now()
	out := l.Load(context.Background(), "slow.glb")

	assert.False(t, out.Ok())
	assert.ErrorIs(t, out.Err(), ErrLoadTimeout)
	assert.Equal(t, "timeout", Classify(out.Err()))
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestLoadTimeoutIgnoringStorage(t *testing.T) {
	l := NewLoader(BackendTypeGLTF, WithStorage(stallingStorage{delay: 2 * time.Second}), WithTimeout(50*time.Millisecond))

	start := time.Now()
	out := l.Load(context.Background(), "slow.glb")

	assert.False(t, out.Ok())
	assert.ErrorIs(t, out.Err(), ErrLoadTimeout)
	assert.Less(t, time.Since(start), time.Second)
}

func TestLoadNamesAreOpaque(t *testing.T) {
	fsys := fstest.MapFS{
		"chair":           {Data: testassets.TriangleGLB([3]float32{1, 0, 0})},
		"bed.model":       {Data: testassets.TriangleEmbeddedGLTF([3]float32{})},
		"mislabeled.gltf": {Data: testassets.TriangleGLB([3]float32{})},
	}
	storage := newCountingStorage(NewFSStorage(fsys))
	l := NewLoader(BackendTypeGLTF, WithStorage(storage))

	for _, name := range []string{"chair", "bed.model", "mislabeled.gltf"} {
		out := l.Load(context.Background(), name)
		require.True(t, out.Ok(), "%s: %v", name, out.Err())
		assert.NotEmpty(t, out.Fragment().Meshes())
		assert.Equal(t, int32(1), storage.calls[name].Load())
	}
}

func TestLoadCanceled(t *testing.T) {
	l := NewLoader(BackendTypeGLTF, WithStorage(blockingStorage{}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := l.Load(ctx, "chair.glb")
	assert.False(t, out.Ok())
	assert.ErrorIs(t, out.Err(), context.Canceled)
	assert.NotErrorIs(t, out.Err(), ErrLoadTimeout)
}

func TestLoadDoesNotCache(t *testing.T) {
	fsys := fstest.MapFS{"chair.glb": {Data: testassets.TriangleGLB([3]float32{})}}
	storage := newCountingStorage(NewFSStorage(fsys))
	l := NewLoader(BackendTypeGLTF, WithStorage(storage))

	first := l.Load(context.Background(), "chair.glb")
	second := l.Load(context.Background(), "chair.glb")

	require.True(t, first.Ok())
	require.True(t, second.Ok())
	assert.EqualValues(t, 2, storage.calls["chair.glb"].Load())
	assert.NotSame(t, first.Fragment(), second.Fragment())
}

func TestHTTPStorage(t *testing.T) {
	glb := testassets.TriangleGLB([3]float32{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/models/chair.glb":
			_, _ = w.Write(glb)
		case "/models/boom.glb":
			http.Error(w, "boom", http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	storage := NewHTTPStorage(srv.URL+"/models", srv.Client())

	data, err := storage.Fetch(context.Background(), "chair.glb")
	require.NoError(t, err)
	assert.Equal(t, glb, data)

	_, err = storage.Fetch(context.Background(), "Missing.glb")
	assert.ErrorIs(t, err, ErrAssetNotFound)

	_, err = storage.Fetch(context.Background(), "boom.glb")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAssetNotFound)
	assert.Equal(t, "fetch", Classify(err))

	out := NewLoader(BackendTypeGLTF, WithStorage(storage)).Load(context.Background(), "chair.glb")
	assert.True(t, out.Ok(), "load failed: %v", out.Err())
}

func TestClassify(t *testing.T) {
	assert.Equal(t, "ok", Classify(nil))
	assert.Equal(t, "timeout", Classify(context.DeadlineExceeded))
	assert.Equal(t, "canceled", Classify(context.Canceled))
	assert.Equal(t, "fetch", Classify(errors.New("connection refused")))
}
