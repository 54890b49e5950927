package model

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func vecFrames(ticks ...int) []Keyframe[mgl32.Vec3] {
	frames := make([]Keyframe[mgl32.Vec3], len(ticks))
	for i, tick := range ticks {
		frames[i] = Keyframe[mgl32.Vec3]{
			TickTime: tick,
			Value:    mgl32.Vec3{float32(tick), 0, 0},
		}
	}
	return frames
}

func TestNewChannelComponentSortsAndReindexes(t *testing.T) {
	c := NewChannelComponent(vecFrames(20, 0, 10))
	wantTicks := []int{0, 10, 20}
	for i, want := range wantTicks {
		if c.Frames[i].TickTime != want {
			t.Errorf("frame %d tick = %d, want %d", i, c.Frames[i].TickTime, want)
		}
		if c.Frames[i].Index != i {
			t.Errorf("frame %d index = %d, want %d", i, c.Frames[i].Index, i)
		}
	}
}

func TestAdvanceForward(t *testing.T) {
	c := NewChannelComponent(vecFrames(0, 10, 20, 30))
	tests := []struct {
		name   string
		cursor int
		tick   float32
		want   int
	}{
		{"hold before next", 0, 5, 0},
		{"step one", 0, 10, 1},
		{"step many", 0, 25, 2},
		{"clamp at end", 2, 99, 3},
		{"already at end", 3, 999, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Advance(tt.cursor, tt.tick, 1); got != tt.want {
				t.Errorf("Advance(%d, %v, +1) = %d, want %d", tt.cursor, tt.tick, got, tt.want)
			}
		})
	}
}

func TestAdvanceReverse(t *testing.T) {
	c := NewChannelComponent(vecFrames(0, 10, 20, 30))
	tests := []struct {
		name   string
		cursor int
		tick   float32
		want   int
	}{
		{"hold inside frame", 2, 25, 2},
		{"step back one", 2, 15, 1},
		{"step back many", 3, 5, 0},
		{"clamp at start", 1, -50, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Advance(tt.cursor, tt.tick, -1); got != tt.want {
				t.Errorf("Advance(%d, %v, -1) = %d, want %d", tt.cursor, tt.tick, got, tt.want)
			}
		})
	}
}

func TestAdvanceZeroDirectionHolds(t *testing.T) {
	c := NewChannelComponent(vecFrames(0, 10, 20))
	if got := c.Advance(1, 999, 0); got != 1 {
		t.Errorf("Advance with direction 0 = %d, want 1", got)
	}
}

func TestSampleSingleKeyframe(t *testing.T) {
	c := NewChannelComponent(vecFrames(7))
	for _, tick := range []float32{-100, 0, 7, 10000} {
		current, next, tween := c.Sample(0, tick)
		if current.TickTime != 7 || next.TickTime != 7 || tween != 0 {
			t.Errorf("Sample at tick %v = (%d, %d, %v), want (7, 7, 0)", tick, current.TickTime, next.TickTime, tween)
		}
	}
}

func TestSampleTween(t *testing.T) {
	c := NewChannelComponent(vecFrames(0, 10, 20))
	tests := []struct {
		name      string
		cursor    int
		tick      float32
		wantTween float32
	}{
		{"at frame", 0, 0, 0},
		{"quarter", 0, 2.5, 0.25},
		{"midway", 1, 15, 0.5},
		{"clamped past end", 2, 99, 0},
		{"clamped below", 0, -5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, tween := c.Sample(tt.cursor, tt.tick)
			if !mgl32.FloatEqualThreshold(tween, tt.wantTween, 1e-6) {
				t.Errorf("Sample tween = %v, want %v", tween, tt.wantTween)
			}
		})
	}
}

func TestSampleSharedTickTime(t *testing.T) {
	// Two frames on the same tick must not divide by zero.
	c := NewChannelComponent(vecFrames(10, 10))
	_, _, tween := c.Sample(0, 10)
	if tween != 0 {
		t.Errorf("Sample tween for shared tick = %v, want 0", tween)
	}
}

func TestBoneChannelClone(t *testing.T) {
	ch := &BoneChannel{
		BoneName: "arm",
		Scale:    NewChannelComponent(vecFrames(0, 10)),
		Rotation: NewChannelComponent([]Keyframe[mgl32.Quat]{{TickTime: 0, Value: mgl32.QuatIdent()}}),
		Position: NewChannelComponent(vecFrames(0, 10, 20)),
	}
	clone := ch.Clone()

	if clone.BoneName != "arm" {
		t.Errorf("clone BoneName = %q", clone.BoneName)
	}
	clone.Position.Frames[0].Value = mgl32.Vec3{99, 99, 99}
	if ch.Position.Frames[0].Value == clone.Position.Frames[0].Value {
		t.Error("clone shares frame storage with source")
	}
}

func TestAnimationDurationAndChannels(t *testing.T) {
	a := &Animation{
		Name:            "walk",
		TicksPerSecond:  30,
		DurationInTicks: 30,
		Channels: map[string]*BoneChannel{
			"root": {BoneName: "root"},
		},
	}
	if got := a.DurationInSeconds(); !mgl32.FloatEqualThreshold(got, 1.0, 1e-6) {
		t.Errorf("DurationInSeconds = %v, want 1.0", got)
	}
	if a.Channel("root") == nil {
		t.Error("Channel(root) = nil, want channel")
	}
	if a.Channel("tail") != nil {
		t.Error("Channel(tail) != nil, want nil")
	}

	zero := &Animation{}
	if zero.DurationInSeconds() != 0 {
		t.Error("zero animation duration should be 0")
	}
}

func TestSkinnedModelBuilder(t *testing.T) {
	s, err := NewSkeleton([]Bone{testBone("root", 0, NoParent)})
	if err != nil {
		t.Fatal(err)
	}
	walk := &Animation{Name: "walk"}
	run := &Animation{Name: "run"}

	m, err := NewSkinnedModel(
		WithName("soldier"),
		WithSkeleton(s),
		WithAnimations([]*Animation{walk}),
		WithAnimation(run),
	)
	if err != nil {
		t.Fatalf("NewSkinnedModel: %v", err)
	}
	if m.Name() != "soldier" || m.BoneCount() != 1 || m.AnimationCount() != 2 {
		t.Errorf("model = %q bones=%d anims=%d", m.Name(), m.BoneCount(), m.AnimationCount())
	}
	if m.GetAnimation("run") != run {
		t.Error("GetAnimation(run) mismatch")
	}
	if m.GetAnimationIndex("walk") != 0 || m.GetAnimationIndex("swim") != -1 {
		t.Error("GetAnimationIndex mismatch")
	}

	if _, err := NewSkinnedModel(WithName("boneless")); err != ErrNilSkeleton {
		t.Errorf("NewSkinnedModel without skeleton error = %v, want ErrNilSkeleton", err)
	}
}
