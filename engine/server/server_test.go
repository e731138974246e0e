package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"
	"time"

	"github.com/Carmen-Shannon/oxy-viewer/engine/loader"
	"github.com/Carmen-Shannon/oxy-viewer/internal/testassets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFS() fstest.MapFS {
	return fstest.MapFS{
		"chair.glb":         {Data: testassets.TriangleGLB([3]float32{0, 0, 0})},
		"scene.gltf":        {Data: testassets.TriangleGLTF([3]float32{0, 0, 0}, "buffers/scene.bin")},
		"buffers/scene.bin": {Data: testassets.TriangleBin()},
	}
}

func TestRoutes(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("oxy_viewer_frames_total 0\n"))
	})
	srv := httptest.NewServer(NewServer(newTestFS(), []string{"chair.glb", "sofa.glb"}, "default.glb",
		WithMetricsHandler(metrics)).Handler())
	defer srv.Close()

	tests := []struct {
		path       string
		wantStatus int
		wantBody   string
	}{
		{"/healthz", http.StatusOK, "ok\n"},
		{"/models/missing.glb", http.StatusNotFound, ""},
		{"/metrics", http.StatusOK, "oxy_viewer_frames_total 0\n"},
		{"/nothing", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := http.Get(srv.URL + tt.path)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantBody != "" {
				body, err := io.ReadAll(resp.Body)
				require.NoError(t, err)
				assert.Equal(t, tt.wantBody, string(body))
			}
		})
	}
}

func TestCatalog(t *testing.T) {
	srv := httptest.NewServer(NewServer(newTestFS(), []string{"chair.glb", "sofa.glb"}, "default.glb").Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/catalog")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var got Catalog
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, Catalog{
		Default: "default.glb",
		Models:  []CatalogEntry{{Asset: "chair.glb", Label: "chair"}, {Asset: "sofa.glb", Label: "sofa"}},
	}, got)
}

func TestMetricsRouteIsOptional(t *testing.T) {
	srv := httptest.NewServer(NewServer(newTestFS(), nil, "default.glb").Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestModelsRouteNeedsFileSystem(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {})
	srv := httptest.NewServer(NewServer(nil, nil, "default.glb", WithMetricsHandler(metrics)).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/models/chair.glb")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHTTPStorageLoadsFromServer(t *testing.T) {
	srv := httptest.NewServer(NewServer(newTestFS(), nil, "default.glb").Handler())
	defer srv.Close()

	l := loader.NewLoader(loader.BackendTypeGLTF,
		loader.WithStorage(loader.NewHTTPStorage(srv.URL+"/models", srv.Client())))

	out := l.Load(context.Background(), "chair.glb")
	require.True(t, out.Ok(), "%v", out.Err())
	assert.True(t, out.HasBounds())

	out = l.Load(context.Background(), "scene.gltf")
	require.True(t, out.Ok(), "external buffers resolve through the server: %v", out.Err())

	out = l.Load(context.Background(), "missing.glb")
	require.False(t, out.Ok())
	assert.ErrorIs(t, out.Err(), loader.ErrAssetNotFound)
}

func TestServeShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := NewServer(newTestFS(), nil, "default.glb").(*server)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(shutdownTimeout + time.Second):
		t.Fatal("server did not stop")
	}
}
