// Package model contains the immutable animation data types consumed by the
// playback engine: skeletons, bones, keyframe channels and animations. They
// are produced by the loader and shared read-only between any number of
// animation players.
package model

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	// ErrBoneIndexOutOfRange signals a bone whose declared index or parent
	// index does not fit the skeleton it belongs to.
	ErrBoneIndexOutOfRange = errors.New("bone index out of range")

	// ErrBoneOrder signals a bone array that is not in topological order
	// (every parent must appear before its children).
	ErrBoneOrder = errors.New("bone parent must precede child")

	// ErrNilSkeleton signals a missing skeleton where one is required.
	ErrNilSkeleton = errors.New("skeleton is nil")

	// ErrNilAnimation signals a missing animation where one is required.
	ErrNilAnimation = errors.New("animation is nil")
)

// NoParent is the sentinel parent index carried by root bones.
const NoParent = -1

// Bone is a single node in a skeleton hierarchy. Bones are created once per
// skeleton and never mutated afterwards; the parent link is an index into the
// same skeleton's bone array rather than a pointer, so traversal is plain
// array indexing.
type Bone struct {
	// Name is the bone's identifier, used to match animation channels.
	Name string

	// Index is the bone's dense position in the skeleton, 0..N-1. It is the
	// sole addressing key for every per-bone array in the engine.
	Index int

	// ParentIndex is the index of the parent bone, or NoParent for roots.
	// Always strictly less than Index for non-root bones.
	ParentIndex int

	// Offset is the bind-pose inverse matrix, mapping model space to
	// bone-local space for skinning.
	Offset mgl32.Mat4

	// LocalBind is the bone's bind-pose transform relative to its parent,
	// applied when the active animation carries no channel for this bone.
	LocalBind mgl32.Mat4
}

// HasParent reports whether this bone has a parent in the skeleton.
//
// Returns:
//   - bool: true unless the bone is a root
func (b *Bone) HasParent() bool {
	return b.ParentIndex != NoParent
}

// Skeleton is the full ordered bone hierarchy for one model. The bone array
// is read-only after construction and may be shared by many animation
// players simultaneously.
type Skeleton struct {
	bones       []Bone
	nameToIndex map[string]int
}

// NewSkeleton builds a skeleton from a bone array and validates the
// hierarchy invariants up front so that mis-authored assets fail at load
// time rather than mid-playback:
//   - every bone's Index equals its array position (dense, unique)
//   - every parent index is either NoParent or points at an earlier bone,
//     which guarantees the parent graph is an acyclic forest and that a
//     single ascending-index sweep visits parents before children
//
// Parameters:
//   - bones: the bone array in topological order
//
// Returns:
//   - *Skeleton: the validated skeleton
//   - error: a configuration error if any invariant is violated
func NewSkeleton(bones []Bone) (*Skeleton, error) {
	nameToIndex := make(map[string]int, len(bones))

	for i := range bones {
		b := &bones[i]
		if b.Index != i {
			return nil, fmt.Errorf("bone %q declared index %d at position %d: %w", b.Name, b.Index, i, ErrBoneIndexOutOfRange)
		}
		if b.ParentIndex != NoParent {
			if b.ParentIndex < 0 || b.ParentIndex >= len(bones) {
				return nil, fmt.Errorf("bone %q parent index %d: %w", b.Name, b.ParentIndex, ErrBoneIndexOutOfRange)
			}
			if b.ParentIndex >= i {
				return nil, fmt.Errorf("bone %q at index %d has parent %d: %w", b.Name, i, b.ParentIndex, ErrBoneOrder)
			}
		}
		nameToIndex[b.Name] = i
	}

	return &Skeleton{
		bones:       bones,
		nameToIndex: nameToIndex,
	}, nil
}

// BoneCount returns the number of bones in the skeleton.
//
// Returns:
//   - int: the bone count
func (s *Skeleton) BoneCount() int {
	return len(s.bones)
}

// Bone returns a pointer to the bone at the given index. The returned bone
// must be treated as read-only.
//
// Parameters:
//   - index: the dense bone index
//
// Returns:
//   - *Bone: the bone, or nil if the index is out of range
func (s *Skeleton) Bone(index int) *Bone {
	if index < 0 || index >= len(s.bones) {
		return nil
	}
	return &s.bones[index]
}

// Bones returns the full bone array in hierarchy order. The slice must be
// treated as read-only.
//
// Returns:
//   - []Bone: the bone array
func (s *Skeleton) Bones() []Bone {
	return s.bones
}

// BoneIndex looks up a bone index by name.
//
// Parameters:
//   - name: the bone name
//
// Returns:
//   - int: the bone index
//   - bool: false if no bone carries the name
func (s *Skeleton) BoneIndex(name string) (int, bool) {
	i, ok := s.nameToIndex[name]
	return i, ok
}
