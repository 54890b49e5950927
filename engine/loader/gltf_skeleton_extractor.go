package loader

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/marrow-engine/marrow/common"
	"github.com/marrow-engine/marrow/engine/model"
)

// gltfSkeletonExtractorImpl is the implementation of the gltfSkeletonExtractor interface.
type gltfSkeletonExtractorImpl struct {
	parser gltfParser
}

// gltfSkeletonExtractor defines the interface for extracting skeleton/bone
// data from a parsed glTF document. It converts glTF skin definitions into
// engine-ready Skeleton values with topologically sorted bones.
type gltfSkeletonExtractor interface {
	// ExtractSkeleton extracts a skeleton from a skin by index, along with
	// the glTF-node-index to bone-name mapping the animation extractor needs
	// to resolve channel targets after sorting.
	//
	// Parameters:
	//   - skinIndex: the index of the skin to extract
	//
	// Returns:
	//   - *model.Skeleton: the extracted skeleton with parents before children
	//   - map[int]string: glTF node index to bone name
	//   - error: error if extraction fails
	ExtractSkeleton(skinIndex int) (*model.Skeleton, map[int]string, error)

	// SkinForNode finds the skin bound to any node in the document, or -1
	// when the document has no skinned node.
	//
	// Returns:
	//   - int: the skin index, or -1 if none
	SkinForNode() int
}

var _ gltfSkeletonExtractor = &gltfSkeletonExtractorImpl{}

// newGLTFSkeletonExtractor creates a new skeleton extractor for a parsed document.
//
// Parameters:
//   - parser: the parser containing a loaded document
//
// Returns:
//   - gltfSkeletonExtractor: the skeleton extractor
func newGLTFSkeletonExtractor(parser gltfParser) gltfSkeletonExtractor {
	return &gltfSkeletonExtractorImpl{parser: parser}
}

func (e *gltfSkeletonExtractorImpl) SkinForNode() int {
	doc := e.parser.Document()
	if doc == nil {
		return -1
	}
	for _, node := range doc.Nodes {
		if node.Skin != nil {
			return *node.Skin
		}
	}
	return -1
}

// rawBone carries bone data before topological sorting.
type rawBone struct {
	name      string
	nodeIndex int
	parent    int // index into the raw slice, -1 for roots
	offset    mgl32.Mat4
	localBind mgl32.Mat4
}

func (e *gltfSkeletonExtractorImpl) ExtractSkeleton(skinIndex int) (*model.Skeleton, map[int]string, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, nil, fmt.Errorf("no document loaded")
	}
	if skinIndex < 0 || skinIndex >= len(doc.Skins) {
		return nil, nil, fmt.Errorf("skin index %d out of range", skinIndex)
	}

	skin := &doc.Skins[skinIndex]

	// Read inverse bind matrices (optional but usually present)
	var inverseBindMatrices [][16]float32
	if skin.InverseBindMatrices != nil {
		var err error
		inverseBindMatrices, err = e.parser.ReadMat4Accessor(*skin.InverseBindMatrices)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read inverse bind matrices: %w", err)
		}
	}

	// First pass: create raw bones with offsets and local bind transforms
	raw := make([]rawBone, len(skin.Joints))
	for i, jointIndex := range skin.Joints {
		if jointIndex < 0 || jointIndex >= len(doc.Nodes) {
			return nil, nil, fmt.Errorf("joint %d: invalid node index %d", i, jointIndex)
		}

		node := &doc.Nodes[jointIndex]
		bone := &raw[i]
		bone.nodeIndex = jointIndex

		bone.name = node.Name
		if bone.name == "" {
			bone.name = fmt.Sprintf("bone_%d", i)
		}

		if i < len(inverseBindMatrices) {
			bone.offset = mgl32.Mat4(inverseBindMatrices[i])
		} else {
			bone.offset = mgl32.Ident4()
		}

		bone.localBind = gltfNodeLocalBind(node)
	}

	// Second pass: establish parent relationships via the node hierarchy
	nodeToRaw := make(map[int]int, len(skin.Joints))
	for rawIdx, jointNodeIdx := range skin.Joints {
		nodeToRaw[jointNodeIdx] = rawIdx
	}

	var roots []int
	for rawIdx, jointNodeIdx := range skin.Joints {
		parentFound := false

		for nodeIdx, node := range doc.Nodes {
			for _, childIdx := range node.Children {
				if childIdx == jointNodeIdx {
					if parentRawIdx, ok := nodeToRaw[nodeIdx]; ok {
						raw[rawIdx].parent = parentRawIdx
						parentFound = true
					}
					break
				}
			}
			if parentFound {
				break
			}
		}

		if !parentFound {
			raw[rawIdx].parent = -1
			roots = append(roots, rawIdx)
		}
	}

	bones, nodeToName := gltfTopologicalSortBones(raw, roots)

	skeleton, err := model.NewSkeleton(bones)
	if err != nil {
		return nil, nil, fmt.Errorf("skin %d produced an invalid skeleton: %w", skinIndex, err)
	}
	return skeleton, nodeToName, nil
}

// gltfTopologicalSortBones reorders bones so parents always precede children,
// which the skeleton constructor requires and which lets transform composition
// run as a single ascending pass. Disconnected bones are appended as roots.
//
// Parameters:
//   - raw: the unsorted bones
//   - roots: indices into raw of bones with no parent
//
// Returns:
//   - []model.Bone: sorted bones with reassigned indices
//   - map[int]string: glTF node index to bone name
func gltfTopologicalSortBones(raw []rawBone, roots []int) ([]model.Bone, map[int]string) {
	children := make(map[int][]int)
	for i, bone := range raw {
		if bone.parent >= 0 {
			children[bone.parent] = append(children[bone.parent], i)
		}
	}

	// BFS from roots
	sorted := make([]int, 0, len(raw))
	queue := append([]int(nil), roots...)
	for len(queue) > 0 {
		idx := queue[0]
		queue = queue[1:]
		sorted = append(sorted, idx)
		queue = append(queue, children[idx]...)
	}

	// Append any disconnected bones as roots
	if len(sorted) < len(raw) {
		visited := make(map[int]bool, len(sorted))
		for _, idx := range sorted {
			visited[idx] = true
		}
		for i := range raw {
			if !visited[i] {
				raw[i].parent = -1
				sorted = append(sorted, i)
			}
		}
	}

	oldToNew := make(map[int]int, len(sorted))
	for newIdx, oldIdx := range sorted {
		oldToNew[oldIdx] = newIdx
	}

	bones := make([]model.Bone, len(sorted))
	nodeToName := make(map[int]string, len(sorted))
	for newIdx, oldIdx := range sorted {
		src := raw[oldIdx]

		parent := model.NoParent
		if src.parent >= 0 {
			parent = oldToNew[src.parent]
		}

		bones[newIdx] = model.Bone{
			Name:        src.name,
			Index:       newIdx,
			ParentIndex: parent,
			Offset:      src.offset,
			LocalBind:   src.localBind,
		}
		nodeToName[src.nodeIndex] = src.name
	}

	return bones, nodeToName
}

// gltfNodeLocalBind composes a node's rest transform from its TRS properties,
// or decomposes its matrix when the node uses matrix form.
func gltfNodeLocalBind(node *gltfNode) mgl32.Mat4 {
	scale := mgl32.Vec3{1, 1, 1}
	rotation := mgl32.QuatIdent()
	translation := mgl32.Vec3{0, 0, 0}

	if node.Matrix != nil {
		return gltfDecomposeMatrix(*node.Matrix)
	}

	if node.Scale != nil {
		scale = mgl32.Vec3(*node.Scale)
	}
	if node.Rotation != nil {
		r := *node.Rotation
		rotation = mgl32.Quat{W: r[3], V: mgl32.Vec3{r[0], r[1], r[2]}}
	}
	if node.Translation != nil {
		translation = mgl32.Vec3(*node.Translation)
	}

	return common.ComposeSRT(scale, rotation, translation)
}

// gltfDecomposeMatrix decomposes a 4x4 column-major matrix into scale,
// rotation, and translation and recomposes them in the engine's transform
// order. Assumes no shear.
func gltfDecomposeMatrix(m [16]float32) mgl32.Mat4 {
	translation := mgl32.Vec3{m[12], m[13], m[14]}

	sx := gltfVectorLength(m[0], m[1], m[2])
	sy := gltfVectorLength(m[4], m[5], m[6])
	sz := gltfVectorLength(m[8], m[9], m[10])
	scale := mgl32.Vec3{sx, sy, sz}

	if sx < 0.0001 {
		sx = 1
	}
	if sy < 0.0001 {
		sy = 1
	}
	if sz < 0.0001 {
		sz = 1
	}

	r := [9]float32{
		m[0] / sx, m[1] / sx, m[2] / sx,
		m[4] / sy, m[5] / sy, m[6] / sy,
		m[8] / sz, m[9] / sz, m[10] / sz,
	}
	rotation := gltfMatrixToQuaternion(r)

	return common.ComposeSRT(scale, rotation, translation)
}

// gltfVectorLength computes the length of a 3D vector.
func gltfVectorLength(x, y, z float32) float32 {
	return float32(math.Sqrt(float64(x*x + y*y + z*z)))
}

// gltfMatrixToQuaternion converts a 3x3 rotation matrix to a quaternion.
// Matrix is laid out [r00, r01, r02, r10, r11, r12, r20, r21, r22].
func gltfMatrixToQuaternion(m [9]float32) mgl32.Quat {
	r00, r01, r02 := m[0], m[1], m[2]
	r10, r11, r12 := m[3], m[4], m[5]
	r20, r21, r22 := m[6], m[7], m[8]

	trace := r00 + r11 + r22

	var x, y, z, w float32

	if trace > 0 {
		s := float32(math.Sqrt(float64(trace+1.0))) * 2
		w = 0.25 * s
		x = (r21 - r12) / s
		y = (r02 - r20) / s
		z = (r10 - r01) / s
	} else if r00 > r11 && r00 > r22 {
		s := float32(math.Sqrt(float64(1.0+r00-r11-r22))) * 2
		w = (r21 - r12) / s
		x = 0.25 * s
		y = (r01 + r10) / s
		z = (r02 + r20) / s
	} else if r11 > r22 {
		s := float32(math.Sqrt(float64(1.0+r11-r00-r22))) * 2
		w = (r02 - r20) / s
		x = (r01 + r10) / s
		y = 0.25 * s
		z = (r12 + r21) / s
	} else {
		s := float32(math.Sqrt(float64(1.0+r22-r00-r11))) * 2
		w = (r10 - r01) / s
		x = (r02 + r20) / s
		y = (r12 + r21) / s
		z = 0.25 * s
	}

	length := float32(math.Sqrt(float64(x*x + y*y + z*z + w*w)))
	if length > 0.0001 {
		x /= length
		y /= length
		z /= length
		w /= length
	}

	return mgl32.Quat{W: w, V: mgl32.Vec3{x, y, z}}
}
