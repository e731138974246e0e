package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
)

// gltfLoaderBackendImpl is the implementation of gltfLoaderBackend.
type gltfLoaderBackendImpl struct {
	importer gltfImporter
}

// gltfLoaderBackend is a loaderBackend implementation for glTF/GLB files.
// It delegates to the gltfImporter for parsing and extraction.
type gltfLoaderBackend interface {
	loaderBackend
}

var _ gltfLoaderBackend = &gltfLoaderBackendImpl{}

// newGLTFLoaderBackend creates a new glTF loader backend.
//
// Returns:
//   - gltfLoaderBackend: the loader backend for glTF/GLB files
func newGLTFLoaderBackend() gltfLoaderBackend {
	return &gltfLoaderBackendImpl{
		importer: newGLTFImporter(),
	}
}

func (b *gltfLoaderBackendImpl) Decode(name string, data []byte, resolve uriResolver) (m model.Model, err error) {
	// Malformed documents can index past slices deep in extraction.
	defer func() {
		if r := recover(); r != nil {
			m = nil
			err = fmt.Errorf("panic while decoding %s: %v", name, r)
		}
	}()
	return b.importer.Import(name, data, resolve)
}
