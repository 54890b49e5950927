package loader

import "io"

// gltfLoaderBackend adapts the glTF importer to the generic loaderBackend
// interface.
type gltfLoaderBackend struct {
	importer gltfImporter
}

var _ loaderBackend = &gltfLoaderBackend{}

// newGLTFLoaderBackend creates a new glTF loader backend.
//
// Parameters:
//   - tickRate: the tick rate used to quantize keyframe timestamps
//
// Returns:
//   - loaderBackend: the backend
func newGLTFLoaderBackend(tickRate int) loaderBackend {
	return &gltfLoaderBackend{importer: newGLTFImporter(tickRate)}
}

func (b *gltfLoaderBackend) Load(path string) (*ImportedModel, error) {
	return b.importer.Import(path)
}

func (b *gltfLoaderBackend) LoadReader(r io.Reader, isGLB bool) (*ImportedModel, error) {
	return b.importer.ImportReader(r, isGLB)
}
