package watch

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-viewer/internal/logging"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses the burst of events an editor or a copy produces for one save.
const DefaultDebounce = 200 * time.Millisecond

// watcher is the implementation of the Watcher interface.
type watcher struct {
	mu       *sync.Mutex
	fsw      *fsnotify.Watcher
	dir      string
	watched  func() []string
	reload   func(name string)
	debounce time.Duration
	logger   *slog.Logger

	pending map[string]*time.Timer
	dirs    map[string]bool
	done    chan struct{}
	wg      sync.WaitGroup
	closed  bool
}

// Watcher reloads assets when their files in the models directory change.
type Watcher interface {
	// Close stops watching. Pending reloads are dropped.
	//
	// Returns:
	//   - error: an error if the underlying watcher fails to close
	Close() error

	// Refresh starts watching the directories of names returned by watched that are not
	// watched yet, so nested assets such as "sub/chair.glb" reload too. Call it when the set
	// of watched names changes.
	Refresh()
}

var _ Watcher = &watcher{}

// NewWatcher starts watching dir. When a file is written or created and its path relative to
// dir is one of the names returned by watched, reload is called with that name once the
// debounce interval has passed without further events for it. reload runs on a timer
// goroutine. Subdirectories of dir are watched when a watched name lives in one; see Refresh.
//
// Parameters:
//   - dir: the models directory
//   - watched: returns the asset names whose changes trigger a reload, queried per event
//   - reload: called with the changed asset name
//   - options: functional options
//
// Returns:
//   - Watcher: the running watcher
//   - error: an error if dir cannot be watched
func NewWatcher(dir string, watched func() []string, reload func(name string), options ...WatcherBuilderOption) (Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	w := &watcher{
		mu:       &sync.Mutex{},
		fsw:      fsw,
		dir:      dir,
		watched:  watched,
		reload:   reload,
		debounce: DefaultDebounce,
		logger:   logging.NewNop(),
		pending:  make(map[string]*time.Timer),
		dirs:     map[string]bool{filepath.Clean(dir): true},
		done:     make(chan struct{}),
	}
	for _, opt := range options {
		opt(w)
	}
	w.Refresh()

	w.wg.Add(1)
	go w.loop()
	return w, nil
}

func (w *watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error", "dir", w.dir, "error", err)
		}
	}
}

func (w *watcher) handle(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	rel, err := filepath.Rel(w.dir, event.Name)
	if err != nil {
		return
	}
	name := filepath.ToSlash(rel)
	if !slices.Contains(w.watched(), name) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if t, ok := w.pending[name]; ok {
		t.Reset(w.debounce)
		return
	}
	w.pending[name] = time.AfterFunc(w.debounce, func() { w.fire(name) })
}

func (w *watcher) fire(name string) {
	w.mu.Lock()
	delete(w.pending, name)
	closed := w.closed
	w.mu.Unlock()
	if closed {
		return
	}
	w.logger.Info("asset changed on disk, reloading", "asset", name)
	w.reload(name)
}

func (w *watcher) Refresh() {
	names := w.watched()

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	for _, name := range names {
		dir := filepath.Dir(filepath.Join(w.dir, filepath.FromSlash(name)))
		if w.dirs[dir] {
			continue
		}
		rel, err := filepath.Rel(w.dir, dir)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		// a directory that does not exist yet is retried on the next refresh
		if err := w.fsw.Add(dir); err != nil {
			w.logger.Debug("cannot watch asset directory", "dir", dir, "error", err)
			continue
		}
		w.dirs[dir] = true
	}
}

func (w *watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	for name, t := range w.pending {
		t.Stop()
		delete(w.pending, name)
	}
	w.mu.Unlock()

	close(w.done)
	err := w.fsw.Close()
	w.wg.Wait()
	return err
}
