// Package loader imports skinned models and animation clips from glTF/GLB
// files and packed archives, caching the results and exposing ordered
// post-import hooks for clip tagging and validation.
package loader

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/marrow-engine/marrow/engine/core"
	"github.com/marrow-engine/marrow/engine/model"
)

// DefaultTickRate is the tick rate animations are quantized to on import,
// giving millisecond keyframe precision.
const DefaultTickRate = 1000

// LoaderBackendType identifies the model file format backend to use.
type LoaderBackendType int

const (
	// BackendTypeGLTF selects the glTF/GLB loader backend.
	BackendTypeGLTF LoaderBackendType = iota
)

// PostImportHook runs against every freshly imported model before it enters
// the cache. Hooks run in registration order; a hook error aborts the load.
// Typical uses are marking clips for blending and validating rigs.
type PostImportHook func(m model.SkinnedModel) error

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	tickRate int

	modelCache map[string]model.SkinnedModel

	backend loaderBackend

	hooks []PostImportHook
}

// Loader defines the public-facing interface for loading and caching skinned
// models. It abstracts the file format (glTF, GLB, packed archives) behind a
// generic backend and manages a cache of previously loaded models.
type Loader interface {
	// Load imports a model file and caches the result by file path. A cached
	// path returns the cached model without touching the disk. The backend
	// is selected by file extension (.gltf/.glb → glTF backend).
	//
	// Parameters:
	//   - path: the file path to the model file
	//
	// Returns:
	//   - model.SkinnedModel: the loaded and cached model
	//   - error: error if loading fails
	Load(path string) (model.SkinnedModel, error)

	// LoadReader imports a model from a reader stream and caches it by the
	// given name.
	//
	// Parameters:
	//   - name: the cache key for the loaded model
	//   - r: the reader providing model data
	//   - isGLB: true if the reader provides GLB binary data
	//
	// Returns:
	//   - model.SkinnedModel: the loaded model
	//   - error: error if loading fails
	LoadReader(name string, r io.Reader, isGLB bool) (model.SkinnedModel, error)

	// LoadPack opens a packed archive and loads every model it contains,
	// caching each by its manifest name.
	//
	// Parameters:
	//   - path: the file path to the packed archive
	//
	// Returns:
	//   - []model.SkinnedModel: the loaded models in manifest order
	//   - error: error if loading fails
	LoadPack(path string) ([]model.SkinnedModel, error)

	// Get retrieves a cached model by name. Returns nil if not found.
	//
	// Parameters:
	//   - name: the cache key to look up
	//
	// Returns:
	//   - model.SkinnedModel: the cached model or nil
	Get(name string) model.SkinnedModel

	// Models returns a copy of the full model cache.
	//
	// Returns:
	//   - map[string]model.SkinnedModel: all cached models keyed by name
	Models() map[string]model.SkinnedModel

	// Evict removes a model from the cache so the next Load re-imports it.
	// Used by the file watcher to force hot reloads.
	//
	// Parameters:
	//   - name: the cache key to evict
	Evict(name string)

	// AddPostImportHook appends a hook to the post-import chain. Hooks run
	// in registration order against every subsequently imported model.
	//
	// Parameters:
	//   - fn: the hook to append
	AddPostImportHook(fn PostImportHook)
}

var _ Loader = &loader{}

// NewLoader creates a new Loader instance with the specified backend type and
// options applied.
//
// Parameters:
//   - backendType: the type of loader backend to use (e.g., BackendTypeGLTF)
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader configured with the provided backend and options
func NewLoader(backendType LoaderBackendType, options ...LoaderBuilderOption) Loader {
	l := &loader{
		tickRate:   DefaultTickRate,
		modelCache: make(map[string]model.SkinnedModel),
	}

	for _, option := range options {
		option(l)
	}

	switch backendType {
	case BackendTypeGLTF:
		l.backend = newGLTFLoaderBackend(l.tickRate)
	}

	return l
}

func (l *loader) Load(path string) (model.SkinnedModel, error) {
	l.mu.RLock()
	if cached, ok := l.modelCache[path]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	backend, err := l.resolveBackend(path)
	if err != nil {
		return nil, err
	}

	imported, err := backend.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	m, err := l.importedToModel(imported)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.modelCache[path] = m
	l.mu.Unlock()

	core.LogInfo("model loaded", "path", path, "bones", m.BoneCount(), "animations", m.AnimationCount())
	return m, nil
}

func (l *loader) LoadReader(name string, r io.Reader, isGLB bool) (model.SkinnedModel, error) {
	l.mu.RLock()
	if cached, ok := l.modelCache[name]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	imported, err := l.backend.LoadReader(r, isGLB)
	if err != nil {
		return nil, fmt.Errorf("failed to load from reader %q: %w", name, err)
	}

	m, err := l.importedToModel(imported)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.modelCache[name] = m
	l.mu.Unlock()

	return m, nil
}

func (l *loader) LoadPack(path string) ([]model.SkinnedModel, error) {
	imported, err := ReadPack(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pack %s: %w", path, err)
	}

	models := make([]model.SkinnedModel, 0, len(imported))
	for _, im := range imported {
		m, err := l.importedToModel(im)
		if err != nil {
			return nil, fmt.Errorf("pack %s model %q: %w", path, im.Name, err)
		}
		models = append(models, m)
	}

	l.mu.Lock()
	for _, m := range models {
		l.modelCache[m.Name()] = m
	}
	l.mu.Unlock()

	core.LogInfo("pack loaded", "path", path, "models", len(models))
	return models, nil
}

func (l *loader) Get(name string) model.SkinnedModel {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.modelCache[name]
}

func (l *loader) Models() map[string]model.SkinnedModel {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make(map[string]model.SkinnedModel, len(l.modelCache))
	for k, v := range l.modelCache {
		result[k] = v
	}
	return result
}

func (l *loader) Evict(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.modelCache, name)
}

func (l *loader) AddPostImportHook(fn PostImportHook) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.hooks = append(l.hooks, fn)
}

// resolveBackend selects an appropriate loader backend based on the file
// extension. Packed archives go through LoadPack instead.
func (l *loader) resolveBackend(path string) (loaderBackend, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".gltf", ".glb":
		return l.backend, nil
	default:
		return nil, fmt.Errorf("unsupported model format: %s", ext)
	}
}

// importedToModel converts an ImportedModel into an engine SkinnedModel and
// runs the post-import hook chain against it.
func (l *loader) importedToModel(imported *ImportedModel) (model.SkinnedModel, error) {
	m, err := model.NewSkinnedModel(
		model.WithName(imported.Name),
		model.WithSkeleton(imported.Skeleton),
		model.WithAnimations(imported.Animations),
	)
	if err != nil {
		return nil, fmt.Errorf("model %q: %w", imported.Name, err)
	}

	l.mu.RLock()
	hooks := append([]PostImportHook(nil), l.hooks...)
	l.mu.RUnlock()

	for i, hook := range hooks {
		if err := hook(m); err != nil {
			return nil, fmt.Errorf("post-import hook %d failed for %q: %w", i, imported.Name, err)
		}
	}

	return m, nil
}
