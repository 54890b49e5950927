package loader

import (
	"io"

	"github.com/marrow-engine/marrow/engine/model"
)

// ImportedModel is the format-neutral result of an import: a rig and its
// clips, before conversion into an engine SkinnedModel.
type ImportedModel struct {
	// Name identifies the model, from the source asset or the file path.
	Name string

	// Skeleton is the imported bone hierarchy, nil when the source has no rig.
	Skeleton *model.Skeleton

	// Animations are the imported clips.
	Animations []*model.Animation
}

// loaderBackend defines the interface for format-specific import backends.
// Each backend parses one file format and produces an ImportedModel.
type loaderBackend interface {
	// Load imports a model file from disk.
	//
	// Parameters:
	//   - path: the file path to load
	//
	// Returns:
	//   - *ImportedModel: the imported rig and clips
	//   - error: error if import fails
	Load(path string) (*ImportedModel, error)

	// LoadReader imports a model from a reader stream.
	//
	// Parameters:
	//   - r: the reader providing model data
	//   - isGLB: true if the reader provides GLB binary data
	//
	// Returns:
	//   - *ImportedModel: the imported rig and clips
	//   - error: error if import fails
	LoadReader(r io.Reader, isGLB bool) (*ImportedModel, error)
}
