package loader

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/marrow-engine/marrow/common"
	"github.com/marrow-engine/marrow/engine/model"
)

// gltfImporterImpl is the implementation of the gltfImporter interface.
type gltfImporterImpl struct {
	tickRate int
}

// gltfImporter defines the interface for orchestrating a full glTF/GLB
// import. It combines the parser and the skeleton and animation extractors
// to produce a complete ImportedModel.
type gltfImporter interface {
	// Import loads a glTF/GLB file and extracts its rig and clips.
	//
	// Parameters:
	//   - path: the file path to the glTF or GLB file
	//
	// Returns:
	//   - *ImportedModel: the imported rig and clips
	//   - error: error if import fails
	Import(path string) (*ImportedModel, error)

	// ImportReader loads a glTF document from a reader and extracts its rig
	// and clips. The reader should provide a complete glTF JSON or GLB
	// binary stream.
	//
	// Parameters:
	//   - r: the reader providing glTF/GLB data
	//   - isGLB: true if the reader provides GLB binary data, false for glTF JSON
	//
	// Returns:
	//   - *ImportedModel: the imported rig and clips
	//   - error: error if import fails
	ImportReader(r io.Reader, isGLB bool) (*ImportedModel, error)
}

var _ gltfImporter = &gltfImporterImpl{}

// newGLTFImporter creates a new glTF importer.
//
// Parameters:
//   - tickRate: the tick rate used to quantize keyframe timestamps
//
// Returns:
//   - gltfImporter: the importer
func newGLTFImporter(tickRate int) gltfImporter {
	return &gltfImporterImpl{tickRate: tickRate}
}

func (imp *gltfImporterImpl) Import(path string) (*ImportedModel, error) {
	parser := newGLTFParser()
	if err := parser.Parse(path); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return imp.importFromParser(parser, path)
}

func (imp *gltfImporterImpl) ImportReader(r io.Reader, isGLB bool) (*ImportedModel, error) {
	parser := newGLTFParser()
	if err := parser.ParseReader(r, isGLB); err != nil {
		return nil, fmt.Errorf("failed to parse from reader: %w", err)
	}

	return imp.importFromParser(parser, "")
}

// importFromParser performs a full import from a parser that has already
// loaded a document. Most glTF rigs carry a single skin; the skin bound to a
// node wins, falling back to skin 0.
func (imp *gltfImporterImpl) importFromParser(parser gltfParser, fallbackPath string) (*ImportedModel, error) {
	doc := parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document after parsing")
	}

	skeletonExtractor := newGLTFSkeletonExtractor(parser)
	animationExtractor := newGLTFAnimationExtractor(parser, imp.tickRate)

	var skeleton *model.Skeleton
	nodeToName := make(map[int]string)

	if len(doc.Skins) > 0 {
		skinIndex := 0
		if si := skeletonExtractor.SkinForNode(); si >= 0 {
			skinIndex = si
		}

		var err error
		skeleton, nodeToName, err = skeletonExtractor.ExtractSkeleton(skinIndex)
		if err != nil {
			return nil, fmt.Errorf("skeleton extraction failed: %w", err)
		}
	}

	var animations []*model.Animation
	if len(doc.Animations) > 0 {
		var err error
		animations, err = animationExtractor.ExtractAllAnimations(nodeToName)
		if err != nil {
			return nil, fmt.Errorf("animation extraction failed: %w", err)
		}
	}

	return &ImportedModel{
		Name:       gltfExtractModelName(doc, fallbackPath),
		Skeleton:   skeleton,
		Animations: animations,
	}, nil
}

// gltfExtractModelName derives a model name from the document's default
// scene or the file path.
func gltfExtractModelName(doc *gltfDocument, fallbackPath string) string {
	var sceneName string
	if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
		sceneName = doc.Scenes[*doc.Scene].Name
	}

	var baseName string
	if fallbackPath != "" {
		base := filepath.Base(fallbackPath)
		baseName = strings.TrimSuffix(base, filepath.Ext(base))
	}

	return common.Coalesce(sceneName, baseName, "unnamed_model")
}
