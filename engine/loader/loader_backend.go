package loader

import "github.com/Carmen-Shannon/oxy-viewer/engine/model"

// loaderBackend decodes encoded asset bytes into a model fragment.
// Concrete implementations (e.g., gltfLoaderBackend) handle format-specific details.
type loaderBackend interface {
	// Decode converts encoded bytes into a fragment.
	//
	// Parameters:
	//   - name: the asset name, used for format detection and naming
	//   - data: the encoded bytes
	//   - resolve: fetches resources referenced by the asset, relative to it
	//
	// Returns:
	//   - model.Model: the decoded fragment
	//   - error: error if decoding fails
	Decode(name string, data []byte, resolve uriResolver) (model.Model, error)
}
