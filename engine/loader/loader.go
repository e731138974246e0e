package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
	"github.com/Carmen-Shannon/oxy-viewer/internal/logging"
)

// LoaderBackendType identifies the model file format backend to use.
type LoaderBackendType int

const (
	// BackendTypeGLTF selects the glTF/GLB loader backend.
	BackendTypeGLTF LoaderBackendType = iota
)

// DefaultTimeout bounds a load when no timeout option is given.
const DefaultTimeout = 15 * time.Second

// loader is the implementation of the Loader interface.
type loader struct {
	storage Storage
	timeout time.Duration
	logger  *slog.Logger

	backend loaderBackend
}

// Loader retrieves named assets from storage and decodes them into model fragments.
// Every call fetches and decodes again; nothing is cached between requests.
type Loader interface {
	// Load fetches and decodes an asset. It blocks only the calling goroutine and never
	// touches a scene. Every failure, including the timeout, is reported as a Failed outcome.
	//
	// Parameters:
	//   - ctx: cancels the load; the configured timeout is applied on top of it
	//   - name: the asset name relative to the models directory
	//
	// Returns:
	//   - Outcome: Loaded with the fragment, or Failed with a cause matching ErrAssetNotFound,
	//     ErrDecodeFailure or ErrLoadTimeout
	Load(ctx context.Context, name string) Outcome
}

var _ Loader = &loader{}

// NewLoader creates a new Loader instance with the specified backend type and options applied.
//
// Parameters:
//   - backendType: the type of loader backend to use (e.g., BackendTypeGLTF)
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader configured with the provided backend and options
func NewLoader(backendType LoaderBackendType, options ...LoaderBuilderOption) Loader {
	l := &loader{
		timeout: DefaultTimeout,
		logger:  logging.NewNop(),
	}

	switch backendType {
	case BackendTypeGLTF:
		l.backend = newGLTFLoaderBackend()
	}

	for _, option := range options {
		option(l)
	}
	return l
}

func (l *loader) Load(ctx context.Context, name string) Outcome {
	if name == "" {
		return Failed(name, fmt.Errorf("%w: empty asset name", ErrAssetNotFound))
	}
	if l.storage == nil {
		return Failed(name, fmt.Errorf("%w: no storage configured", ErrAssetNotFound))
	}

	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	start := time.Now()
	data, err := l.fetch(ctx, name)
	if err != nil {
		l.logger.Debug("asset fetch failed", "asset", name, "error", err)
		return Failed(name, err)
	}

	backend, err := l.resolveBackend(name)
	if err != nil {
		return Failed(name, err)
	}

	fragment, err := l.decode(ctx, backend, name, data)
	if err != nil {
		l.logger.Debug("asset decode failed", "asset", name, "error", err)
		return Failed(name, err)
	}

	l.logger.Debug("asset loaded", "asset", name, "bytes", len(data), "meshes", len(fragment.Meshes()), "elapsed", time.Since(start))
	return Loaded(fragment, name)
}

// fetch reads the asset off the calling goroutine so a storage that ignores ctx still cannot hold
// the load past its deadline.
func (l *loader) fetch(ctx context.Context, name string) ([]byte, error) {
	type result struct {
		data []byte
		err  error
	}
	done := make(chan result, 1)
	go func() {
		data, err := l.storage.Fetch(ctx, name)
		done <- result{data, err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return nil, l.deadlineCause(ctx, r.err)
		}
		if ctx.Err() != nil {
			return nil, l.deadlineCause(ctx, ctx.Err())
		}
		return r.data, nil
	case <-ctx.Done():
		return nil, l.deadlineCause(ctx, ctx.Err())
	}
}

// decode runs the backend off the calling goroutine so the deadline is honoured even while a
// large document is being extracted. A fragment finished after the deadline is disposed.
func (l *loader) decode(ctx context.Context, backend loaderBackend, name string, data []byte) (model.Model, error) {
	type result struct {
		fragment model.Model
		err      error
	}
	done := make(chan result, 1)
	go func() {
		m, err := backend.Decode(name, data, l.resolver(ctx, name))
		done <- result{m, err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			if ctx.Err() != nil {
				return nil, l.deadlineCause(ctx, r.err)
			}
			return nil, fmt.Errorf("%w: %w", ErrDecodeFailure, r.err)
		}
		return r.fragment, nil
	case <-ctx.Done():
		go func() {
			if r := <-done; r.fragment != nil {
				r.fragment.Dispose()
			}
		}()
		return nil, l.deadlineCause(ctx, ctx.Err())
	}
}

// resolver fetches resources referenced by the asset (external buffers and images) from the same
// storage, relative to the asset's directory.
func (l *loader) resolver(ctx context.Context, name string) uriResolver {
	dir := path.Dir(strings.TrimPrefix(name, "/"))
	return func(uri string) ([]byte, error) {
		if strings.Contains(uri, "://") {
			return nil, fmt.Errorf("absolute resource uri %q is not supported", uri)
		}
		decoded, err := url.PathUnescape(uri)
		if err != nil {
			return nil, fmt.Errorf("invalid resource uri %q: %w", uri, err)
		}
		return l.storage.Fetch(ctx, path.Join(dir, decoded))
	}
}

// deadlineCause rewrites err as ErrLoadTimeout when the load deadline expired.
func (l *loader) deadlineCause(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s: %w", ErrLoadTimeout, l.timeout, err)
	}
	return err
}

// resolveBackend selects the backend for fetched data. Asset names are opaque, so the extension is
// not consulted; the glTF backend tells the binary and JSON containers apart by content.
func (l *loader) resolveBackend(name string) (loaderBackend, error) {
	if l.backend == nil {
		return nil, fmt.Errorf("%w: no backend for %s", ErrDecodeFailure, name)
	}
	return l.backend, nil
}
