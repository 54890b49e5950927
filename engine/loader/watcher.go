package loader

import (
	"errors"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/marrow-engine/marrow/engine/core"
	"github.com/marrow-engine/marrow/engine/model"
)

// ReloadFunc is invoked after a watched file has been re-imported. Packed
// archives invoke it once per contained model.
type ReloadFunc func(m model.SkinnedModel)

// watcher is the implementation of the Watcher interface.
type watcher struct {
	mu sync.Mutex

	loader   Loader
	fsnotify *fsnotify.Watcher
	done     chan struct{}
	closed   bool

	reloadFuncs []ReloadFunc
}

// Watcher hot-reloads model files. It watches paths with fsnotify and, when
// a watched file is written or created, evicts the stale cache entry,
// re-imports the file through the loader, and invokes the reload callbacks
// with the fresh model. Callers typically rebind players from the callback.
type Watcher interface {
	// Watch starts watching a model file or packed archive.
	//
	// Parameters:
	//   - path: the file path to watch
	//
	// Returns:
	//   - error: error if the path cannot be watched
	Watch(path string) error

	// OnReload registers a callback invoked for every reloaded model.
	// Callbacks run on the watcher goroutine in registration order.
	//
	// Parameters:
	//   - fn: the callback
	OnReload(fn ReloadFunc)

	// Close stops the watcher and releases its resources.
	//
	// Returns:
	//   - error: error if the underlying watcher fails to close
	Close() error
}

var _ Watcher = &watcher{}

// NewWatcher creates a file watcher bound to a loader and starts its event
// loop.
//
// Parameters:
//   - l: the loader used to re-import changed files
//
// Returns:
//   - Watcher: the running watcher
//   - error: error if the filesystem watcher cannot be created
func NewWatcher(l Loader) (Watcher, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &watcher{
		loader:   l,
		fsnotify: fsWatch,
		done:     make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *watcher) Watch(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return errors.New("watcher already closed")
	}
	return w.fsnotify.Add(path)
}

func (w *watcher) OnReload(fn ReloadFunc) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.reloadFuncs = append(w.reloadFuncs, fn)
}

func (w *watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	close(w.done)
	return w.fsnotify.Close()
}

// run is the watcher event loop.
func (w *watcher) run() {
	for {
		select {
		case event, ok := <-w.fsnotify.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				w.reload(event.Name)
			}

		case err, ok := <-w.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("watcher error", "error", err)

		case <-w.done:
			return
		}
	}
}

// reload re-imports a changed file and fans the fresh models out to the
// reload callbacks.
func (w *watcher) reload(path string) {
	w.mu.Lock()
	reloadFuncs := append([]ReloadFunc(nil), w.reloadFuncs...)
	w.mu.Unlock()

	var reloaded []model.SkinnedModel

	if strings.ToLower(filepath.Ext(path)) == PackExtension {
		pack, err := ReadManifest(path)
		if err != nil {
			core.LogWarn("failed to read changed pack", "path", path, "error", err)
			return
		}
		for _, entry := range pack.Entries {
			w.loader.Evict(entry.Name)
		}
		models, err := w.loader.LoadPack(path)
		if err != nil {
			core.LogWarn("failed to reload pack", "path", path, "error", err)
			return
		}
		reloaded = models
	} else {
		w.loader.Evict(path)
		m, err := w.loader.Load(path)
		if err != nil {
			core.LogWarn("failed to reload model", "path", path, "error", err)
			return
		}
		reloaded = []model.SkinnedModel{m}
	}

	core.LogInfo("model file reloaded", "path", path, "models", len(reloaded))
	for _, m := range reloaded {
		for _, fn := range reloadFuncs {
			fn(m)
		}
	}
}
