package stage

import (
	"bytes"
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/marrow-engine/marrow/common"
	"github.com/marrow-engine/marrow/engine/animator"
	"github.com/marrow-engine/marrow/engine/model"
)

const epsilon = 1e-4

// rigActor builds a two-bone model with a single sliding clip, binds a
// player to it, and wraps both in an actor.
func rigActor(t *testing.T, name string) Actor {
	t.Helper()
	skeleton, err := model.NewSkeleton([]model.Bone{
		{Name: "root", Index: 0, ParentIndex: model.NoParent, Offset: mgl32.Ident4(), LocalBind: mgl32.Ident4()},
		{Name: "tip", Index: 1, ParentIndex: 0, Offset: mgl32.Translate3D(0, -1, 0), LocalBind: mgl32.Translate3D(0, 1, 0)},
	})
	if err != nil {
		t.Fatalf("build skeleton: %v", err)
	}
	slide := &model.Animation{
		Name:            "slide",
		TicksPerSecond:  10,
		DurationInTicks: 10,
		Channels: map[string]*model.BoneChannel{
			"root": {
				BoneName: "root",
				Position: model.NewChannelComponent([]model.Keyframe[mgl32.Vec3]{
					{TickTime: 0, Value: mgl32.Vec3{0, 0, 0}},
					{TickTime: 10, Value: mgl32.Vec3{10, 0, 0}},
				}),
			},
		},
	}
	m, err := model.NewSkinnedModel(
		model.WithName(name),
		model.WithSkeleton(skeleton),
		model.WithAnimations([]*model.Animation{slide}),
	)
	if err != nil {
		t.Fatalf("build model: %v", err)
	}
	player, err := animator.NewAnimationPlayer(m)
	if err != nil {
		t.Fatalf("create player: %v", err)
	}
	return NewActor(WithActorName(name), WithPlayer(player))
}

func TestStageRegistry(t *testing.T) {
	s := NewStage("test", WithWorkers(2))

	a := rigActor(t, "a")
	b := rigActor(t, "b")

	idA := s.Add(a)
	idB := s.Add(b)
	if idA == idB {
		t.Fatalf("expected distinct IDs, both %d", idA)
	}
	if s.Count() != 2 {
		t.Fatalf("expected 2 actors, got %d", s.Count())
	}
	if got := s.Get(idA); got != a {
		t.Errorf("Get(%d) returned wrong actor", idA)
	}
	if got := s.Get(9999); got != nil {
		t.Errorf("Get on unknown ID should return nil, got %v", got)
	}

	actors := s.Actors()
	if len(actors) != 2 || actors[0].ID() > actors[1].ID() {
		t.Errorf("Actors() not in ascending ID order: %v", actors)
	}

	s.Remove(idA)
	s.Remove(12345) // unknown, ignored
	if s.Count() != 1 {
		t.Fatalf("expected 1 actor after removal, got %d", s.Count())
	}
	if s.Get(idA) != nil {
		t.Errorf("removed actor still retrievable")
	}
}

func TestStageAddNilActor(t *testing.T) {
	s := NewStage("test")
	if id := s.Add(nil); id != 0 {
		t.Fatalf("expected 0 for nil actor, got %d", id)
	}
	if s.Count() != 0 {
		t.Fatalf("nil actor must not be registered")
	}
}

func TestActorPlay(t *testing.T) {
	a := rigActor(t, "hero")
	if err := a.Play("missing"); !errors.Is(err, ErrUnknownAnimation) {
		t.Fatalf("expected ErrUnknownAnimation, got %v", err)
	}
	if err := a.Play("slide"); err != nil {
		t.Fatalf("play slide: %v", err)
	}
	if !a.Player().IsPlaying() {
		t.Errorf("actor should be playing after Play")
	}

	bare := NewActor(WithActorName("empty"))
	if err := bare.Play("slide"); !errors.Is(err, ErrNilPlayer) {
		t.Fatalf("expected ErrNilPlayer, got %v", err)
	}
}

func TestStageUpdateAdvancesEnabledActors(t *testing.T) {
	s := NewStage("test", WithWorkers(4), WithQueueSize(16))

	running := rigActor(t, "running")
	paused := rigActor(t, "paused")
	disabled := rigActor(t, "disabled")
	for _, a := range []Actor{running, paused, disabled} {
		if err := a.Play("slide"); err != nil {
			t.Fatalf("play: %v", err)
		}
		s.Add(a)
	}
	paused.Player().SetIsPlaying(false)
	disabled.SetEnabled(false)

	s.Update(0.5)

	if got := running.Player().CurrentTime(); mgl32.Abs(got-0.5) > epsilon {
		t.Errorf("running actor clock = %v, want 0.5", got)
	}
	if got := paused.Player().CurrentTime(); got != 0 {
		t.Errorf("paused actor clock advanced to %v", got)
	}
	// Disabled actors are skipped entirely, not just paused.
	if got := disabled.Player().CurrentTime(); got != 0 {
		t.Errorf("disabled actor clock advanced to %v", got)
	}

	// Halfway through the 1-second clip the root sits at x=5.
	root := running.Player().ModelSpaceTransforms()[0]
	if got := root.At(0, 3); mgl32.Abs(got-5) > epsilon {
		t.Errorf("root x = %v, want 5", got)
	}
}

func TestStagePoseWriters(t *testing.T) {
	s := NewStage("test", WithWorkers(2))

	a := rigActor(t, "a")
	b := rigActor(t, "b")
	disabled := rigActor(t, "disabled")
	if err := a.Play("slide"); err != nil {
		t.Fatalf("play: %v", err)
	}
	if err := b.Play("slide"); err != nil {
		t.Fatalf("play: %v", err)
	}
	idA := s.Add(a)
	idB := s.Add(b)
	disabled.SetEnabled(false)
	s.Add(disabled)

	type write struct {
		id   uint64
		pose []byte
	}
	var writes []write
	s.OnPoseWrite(func(actorID uint64, pose []byte) {
		writes = append(writes, write{id: actorID, pose: pose})
	})

	s.Update(0.25)

	if len(writes) != 2 {
		t.Fatalf("expected 2 pose writes, got %d", len(writes))
	}
	if writes[0].id != idA || writes[1].id != idB {
		t.Errorf("pose writes out of ID order: %d then %d", writes[0].id, writes[1].id)
	}

	boneCount := a.Model().BoneCount()
	for _, w := range writes {
		if len(w.pose) != boneCount*64 {
			t.Errorf("actor %d pose is %d bytes, want %d", w.id, len(w.pose), boneCount*64)
		}
	}

	// The drained bytes are an exact snapshot of the player's skinning
	// transforms at drain time.
	want := common.SliceToBytes(a.Player().SkinningTransforms())
	if !bytes.Equal(writes[0].pose, want) {
		t.Errorf("pose bytes do not match the player's skinning transforms")
	}
}

func TestActorPoseBytesWithoutPlayer(t *testing.T) {
	a := NewActor(WithActorName("empty"))
	if got := a.PoseBytes(); got != nil {
		t.Errorf("expected nil pose for playerless actor, got %d bytes", len(got))
	}
}

func TestActorAdoptsPlayerModel(t *testing.T) {
	src := rigActor(t, "src")
	a := NewActor(WithPlayer(src.Player()))
	if a.Model() == nil || a.Model().Name() != "src" {
		t.Errorf("actor did not adopt the player's model")
	}
}
