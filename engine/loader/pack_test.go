package loader

import (
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/marrow-engine/marrow/engine/model"
)

func packFixture(t *testing.T) *ImportedModel {
	t.Helper()

	skeleton, err := model.NewSkeleton([]model.Bone{
		{Name: "root", Index: 0, ParentIndex: model.NoParent, Offset: mgl32.Ident4(), LocalBind: mgl32.Translate3D(0, 1, 0)},
		{Name: "tail", Index: 1, ParentIndex: 0, Offset: mgl32.Translate3D(0, -1, 0), LocalBind: mgl32.Translate3D(0, 0, 2)},
	})
	if err != nil {
		t.Fatalf("build skeleton: %v", err)
	}

	swish := &model.Animation{
		Name:            "swish",
		TicksPerSecond:  24,
		DurationInTicks: 48,
		Blending:        true,
		Channels: map[string]*model.BoneChannel{
			"tail": {
				BoneName: "tail",
				Position: model.NewChannelComponent([]model.Keyframe[mgl32.Vec3]{
					{TickTime: 0, Value: mgl32.Vec3{0, 0, 2}},
					{TickTime: 48, Value: mgl32.Vec3{0, 0, -2}},
				}),
				Rotation: model.NewChannelComponent([]model.Keyframe[mgl32.Quat]{
					{TickTime: 0, Value: mgl32.QuatIdent()},
					{TickTime: 48, Value: mgl32.QuatRotate(mgl32.DegToRad(45), mgl32.Vec3{0, 1, 0})},
				}),
			},
		},
	}

	return &ImportedModel{
		Name:       "cat",
		Skeleton:   skeleton,
		Animations: []*model.Animation{swish},
	}
}

func TestPackRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models"+PackExtension)

	if err := WritePack(path, []*ImportedModel{packFixture(t)}); err != nil {
		t.Fatalf("write pack: %v", err)
	}

	manifest, err := ReadManifest(path)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	if manifest.Version != PackVersion {
		t.Errorf("expected pack version %d, got %d", PackVersion, manifest.Version)
	}
	if len(manifest.Entries) != 1 || manifest.Entries[0].Name != "cat" {
		t.Fatalf("unexpected manifest entries: %+v", manifest.Entries)
	}
	if manifest.Entries[0].ID == "" {
		t.Error("expected a generated entry id")
	}

	l := NewLoader(BackendTypeGLTF)
	models, err := l.LoadPack(path)
	if err != nil {
		t.Fatalf("load pack: %v", err)
	}
	if len(models) != 1 {
		t.Fatalf("expected 1 model, got %d", len(models))
	}

	m := models[0]
	if m.Name() != "cat" {
		t.Errorf("expected model name cat, got %q", m.Name())
	}
	if m.BoneCount() != 2 {
		t.Fatalf("expected 2 bones, got %d", m.BoneCount())
	}
	tail := m.Skeleton().Bone(1)
	if tail.Name != "tail" || tail.ParentIndex != 0 {
		t.Errorf("expected tail parented to root, got %q parent %d", tail.Name, tail.ParentIndex)
	}
	if !tail.Offset.ApproxEqualThreshold(mgl32.Translate3D(0, -1, 0), 1e-5) {
		t.Errorf("tail offset did not survive the round trip: %v", tail.Offset)
	}

	anim := m.GetAnimation("swish")
	if anim == nil {
		t.Fatal("expected the swish animation")
	}
	if !anim.Blending {
		t.Error("expected the blending flag to survive the round trip")
	}
	if anim.TicksPerSecond != 24 || anim.DurationInTicks != 48 {
		t.Errorf("unexpected timing: %d tps, %d ticks", anim.TicksPerSecond, anim.DurationInTicks)
	}

	channel := anim.Channel("tail")
	if channel == nil || channel.Position == nil || channel.Rotation == nil {
		t.Fatal("expected position and rotation components on the tail channel")
	}
	if got := channel.Position.Frames[1].Value; !got.ApproxEqualThreshold(mgl32.Vec3{0, 0, -2}, 1e-5) {
		t.Errorf("position keyframe did not survive the round trip: %v", got)
	}
	want := mgl32.QuatRotate(mgl32.DegToRad(45), mgl32.Vec3{0, 1, 0})
	if got := channel.Rotation.Frames[1].Value; !got.ApproxEqualThreshold(want, 1e-5) {
		t.Errorf("rotation keyframe did not survive the round trip: %v", got)
	}

	// Pack contents are cached under their manifest names.
	if l.Get("cat") != m {
		t.Error("expected the packed model cached by name")
	}
}

func TestReadPackMissingBuckets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty"+PackExtension)
	// An empty pack written with no models still carries valid buckets.
	if err := WritePack(path, nil); err != nil {
		t.Fatalf("write pack: %v", err)
	}

	models, err := ReadPack(path)
	if err != nil {
		t.Fatalf("read pack: %v", err)
	}
	if len(models) != 0 {
		t.Errorf("expected an empty pack, got %d models", len(models))
	}
}
