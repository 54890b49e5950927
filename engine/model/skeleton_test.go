package model

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func testBone(name string, index, parent int) Bone {
	return Bone{
		Name:        name,
		Index:       index,
		ParentIndex: parent,
		Offset:      mgl32.Ident4(),
		LocalBind:   mgl32.Ident4(),
	}
}

func TestNewSkeletonValidation(t *testing.T) {
	tests := []struct {
		name    string
		bones   []Bone
		wantErr error
	}{
		{
			name:  "empty skeleton",
			bones: nil,
		},
		{
			name: "valid chain",
			bones: []Bone{
				testBone("root", 0, NoParent),
				testBone("spine", 1, 0),
				testBone("head", 2, 1),
			},
		},
		{
			name: "valid forest",
			bones: []Bone{
				testBone("rootA", 0, NoParent),
				testBone("rootB", 1, NoParent),
				testBone("childA", 2, 0),
			},
		},
		{
			name: "sparse index",
			bones: []Bone{
				testBone("root", 0, NoParent),
				testBone("spine", 2, 0),
			},
			wantErr: ErrBoneIndexOutOfRange,
		},
		{
			name: "parent after child",
			bones: []Bone{
				testBone("head", 0, 1),
				testBone("root", 1, NoParent),
			},
			wantErr: ErrBoneOrder,
		},
		{
			name: "self parent",
			bones: []Bone{
				testBone("root", 0, 0),
			},
			wantErr: ErrBoneOrder,
		},
		{
			name: "parent out of range",
			bones: []Bone{
				testBone("root", 0, NoParent),
				testBone("spine", 1, 9),
			},
			wantErr: ErrBoneIndexOutOfRange,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSkeleton(tt.bones)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("NewSkeleton error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewSkeleton: %v", err)
			}
			if s.BoneCount() != len(tt.bones) {
				t.Errorf("BoneCount = %d, want %d", s.BoneCount(), len(tt.bones))
			}
		})
	}
}

func TestSkeletonLookups(t *testing.T) {
	s, err := NewSkeleton([]Bone{
		testBone("root", 0, NoParent),
		testBone("spine", 1, 0),
	})
	if err != nil {
		t.Fatal(err)
	}

	if i, ok := s.BoneIndex("spine"); !ok || i != 1 {
		t.Errorf("BoneIndex(spine) = %d, %v; want 1, true", i, ok)
	}
	if _, ok := s.BoneIndex("tail"); ok {
		t.Error("BoneIndex(tail) found, want missing")
	}
	if b := s.Bone(1); b == nil || b.Name != "spine" {
		t.Errorf("Bone(1) = %+v, want spine", b)
	}
	if b := s.Bone(5); b != nil {
		t.Errorf("Bone(5) = %+v, want nil", b)
	}
	if !s.Bone(1).HasParent() || s.Bone(0).HasParent() {
		t.Error("HasParent mismatch for root/child")
	}
}
