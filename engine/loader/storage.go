package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"strings"
)

// Storage retrieves raw asset bytes by name.
// Names are slash-separated paths relative to the models directory.
type Storage interface {
	// Fetch retrieves the bytes of the named asset.
	//
	// Parameters:
	//   - ctx: cancels the retrieval
	//   - name: the asset name, e.g. "chair.glb" or "textures/wood.png"
	//
	// Returns:
	//   - []byte: the asset bytes
	//   - error: ErrAssetNotFound when the asset does not exist, or another retrieval error
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// fsStorage reads assets from a file system, typically os.DirFS(modelsDir).
type fsStorage struct {
	fsys fs.FS
}

var _ Storage = &fsStorage{}

// NewFSStorage creates a Storage backed by fsys.
//
// Parameters:
//   - fsys: the file system rooted at the models directory
//
// Returns:
//   - Storage: the storage
func NewFSStorage(fsys fs.FS) Storage {
	return &fsStorage{fsys: fsys}
}

func (s *fsStorage) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	clean := path.Clean(strings.TrimPrefix(name, "/"))
	if !fs.ValidPath(clean) || clean == "." {
		return nil, fmt.Errorf("%w: invalid asset name %q", ErrAssetNotFound, name)
	}

	data, err := fs.ReadFile(s.fsys, clean)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrAssetNotFound, name)
		}
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}

// httpStorage fetches assets relative to a base URL.
type httpStorage struct {
	base   string
	client *http.Client
}

var _ Storage = &httpStorage{}

// NewHTTPStorage creates a Storage that issues GET requests under baseURL.
//
// Parameters:
//   - baseURL: the URL of the models directory, e.g. "http://host:8080/models"
//   - client: the HTTP client to use; http.DefaultClient when nil
//
// Returns:
//   - Storage: the storage
func NewHTTPStorage(baseURL string, client *http.Client) Storage {
	if client == nil {
		client = http.DefaultClient
	}
	return &httpStorage{base: baseURL, client: client}
}

func (s *httpStorage) Fetch(ctx context.Context, name string) ([]byte, error) {
	target, err := url.JoinPath(s.base, strings.Split(strings.TrimPrefix(name, "/"), "/")...)
	if err != nil {
		return nil, fmt.Errorf("failed to build url for %s: %w", name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", name, err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", name, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrAssetNotFound, name)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("failed to fetch %s: unexpected status %s", name, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read body of %s: %w", name, err)
	}
	return data, nil
}
