package animator

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/marrow-engine/marrow/engine/model"
)

const epsilon = 1e-4

func positionComponent(frames ...[2]float32) *model.ChannelComponent[mgl32.Vec3] {
	kfs := make([]model.Keyframe[mgl32.Vec3], len(frames))
	for i, f := range frames {
		kfs[i] = model.Keyframe[mgl32.Vec3]{
			TickTime: int(f[0]),
			Value:    mgl32.Vec3{f[1], 0, 0},
		}
	}
	return model.NewChannelComponent(kfs)
}

func TestBoneChannelPlayerBind(t *testing.T) {
	channel := &model.BoneChannel{
		BoneName: "arm",
		Position: positionComponent([2]float32{0, 3}, [2]float32{10, 7}),
	}

	player := NewBoneChannelPlayer()
	player.Bind(channel)

	if !player.HasChannel() {
		t.Fatal("expected channel bound")
	}
	_, _, position := player.Pose()
	if !position.ApproxEqualThreshold(mgl32.Vec3{3, 0, 0}, epsilon) {
		t.Errorf("expected frame-0 position {3 0 0}, got %v", position)
	}

	player.Bind(nil)
	if player.HasChannel() {
		t.Fatal("expected channel unbound")
	}
	scale, rotation, position := player.Pose()
	if !scale.ApproxEqualThreshold(mgl32.Vec3{1, 1, 1}, epsilon) {
		t.Errorf("expected unit scale after unbind, got %v", scale)
	}
	if !rotation.ApproxEqualThreshold(mgl32.QuatIdent(), epsilon) {
		t.Errorf("expected identity rotation after unbind, got %v", rotation)
	}
	if !position.ApproxEqualThreshold(mgl32.Vec3{0, 0, 0}, epsilon) {
		t.Errorf("expected zero position after unbind, got %v", position)
	}
}

func TestBoneChannelPlayerResample(t *testing.T) {
	channel := &model.BoneChannel{
		BoneName: "arm",
		Position: positionComponent([2]float32{0, 0}, [2]float32{10, 10}),
	}

	tests := []struct {
		name      string
		tick      float32
		direction float32
		wantX     float32
	}{
		{name: "at first keyframe", tick: 0, direction: 1, wantX: 0},
		{name: "midway uses smoothstep", tick: 5, direction: 1, wantX: 5},
		{name: "quarter lags linear", tick: 2.5, direction: 1, wantX: 10 * 0.15625},
		{name: "at last keyframe", tick: 10, direction: 1, wantX: 10},
		{name: "past the end clamps", tick: 15, direction: 1, wantX: 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			player := NewBoneChannelPlayer()
			player.Bind(channel)
			player.Resample(tt.tick, tt.direction)
			_, _, position := player.Pose()
			if !mgl32.FloatEqualThreshold(position.X(), tt.wantX, epsilon) {
				t.Errorf("expected x %v at tick %v, got %v", tt.wantX, tt.tick, position.X())
			}
		})
	}
}

func TestBoneChannelPlayerResampleZeroDirection(t *testing.T) {
	channel := &model.BoneChannel{
		BoneName: "arm",
		Position: positionComponent([2]float32{0, 0}, [2]float32{10, 10}),
	}
	player := NewBoneChannelPlayer()
	player.Bind(channel)

	player.Resample(7, 0)

	_, _, position := player.Pose()
	if !mgl32.FloatEqualThreshold(position.X(), 0, epsilon) {
		t.Errorf("expected paused resample to leave frame-0 pose, got x %v", position.X())
	}
}

func TestBoneChannelPlayerSingleKeyframeConstant(t *testing.T) {
	channel := &model.BoneChannel{
		BoneName: "arm",
		Position: positionComponent([2]float32{0, 4}),
	}
	player := NewBoneChannelPlayer()
	player.Bind(channel)

	for _, tick := range []float32{0, 1, 50, 1000} {
		player.Resample(tick, 1)
		_, _, position := player.Pose()
		if !mgl32.FloatEqualThreshold(position.X(), 4, epsilon) {
			t.Errorf("expected constant x 4 at tick %v, got %v", tick, position.X())
		}
	}
}

func TestBoneChannelPlayerAdvanceToNextKeyframe(t *testing.T) {
	channel := &model.BoneChannel{
		BoneName: "arm",
		Position: positionComponent([2]float32{0, 0}, [2]float32{5, 5}, [2]float32{10, 10}),
	}
	player := NewBoneChannelPlayer()
	player.Bind(channel)

	if wrapped := player.AdvanceToNextKeyframe(); wrapped {
		t.Fatal("expected no wrap on first step")
	}
	_, _, position := player.Pose()
	if !mgl32.FloatEqualThreshold(position.X(), 5, epsilon) {
		t.Errorf("expected keyframe 1 value 5, got %v", position.X())
	}

	if wrapped := player.AdvanceToNextKeyframe(); wrapped {
		t.Fatal("expected no wrap on second step")
	}

	if wrapped := player.AdvanceToNextKeyframe(); !wrapped {
		t.Fatal("expected wrap once every cursor is at its last keyframe")
	}
	_, _, position = player.Pose()
	if !mgl32.FloatEqualThreshold(position.X(), 0, epsilon) {
		t.Errorf("expected wrap back to keyframe 0 value, got %v", position.X())
	}
}

func TestBoneChannelPlayerSetFrameIndex(t *testing.T) {
	channel := &model.BoneChannel{
		BoneName: "arm",
		Position: positionComponent(
			[2]float32{0, 0}, [2]float32{1, 1}, [2]float32{2, 2}, [2]float32{3, 3}, [2]float32{4, 4},
		),
	}

	tests := []struct {
		name  string
		index int
		wantX float32
	}{
		{name: "jump within range", index: 3, wantX: 3},
		{name: "last frame", index: 4, wantX: 4},
		{name: "out of range is a no-op", index: 10, wantX: 0},
		{name: "negative is a no-op", index: -1, wantX: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			player := NewBoneChannelPlayer()
			player.Bind(channel)
			player.SetFrameIndex(tt.index)
			_, _, position := player.Pose()
			if !mgl32.FloatEqualThreshold(position.X(), tt.wantX, epsilon) {
				t.Errorf("expected x %v after SetFrameIndex(%d), got %v", tt.wantX, tt.index, position.X())
			}
			if tt.wantX == 0 && tt.index != 0 {
				scaleCursor, rotationCursor, positionCursor := player.Cursors()
				if scaleCursor != 0 || rotationCursor != 0 || positionCursor != 0 {
					t.Errorf("expected cursors untouched, got %d %d %d", scaleCursor, rotationCursor, positionCursor)
				}
			}
		})
	}
}

func TestBoneChannelPlayerFreezeFrom(t *testing.T) {
	channel := &model.BoneChannel{
		BoneName: "arm",
		Position: positionComponent([2]float32{0, 0}, [2]float32{10, 10}),
	}
	source := NewBoneChannelPlayer()
	source.Bind(channel)
	source.Resample(5, 1)

	shadow := NewBoneChannelPlayer()
	shadow.FreezeFrom(source)

	// Rebinding the source must not disturb the frozen snapshot.
	source.Bind(nil)

	_, _, position := shadow.Pose()
	if !mgl32.FloatEqualThreshold(position.X(), 5, epsilon) {
		t.Errorf("expected frozen x 5 to survive source rebind, got %v", position.X())
	}
	if shadow.Channel() == channel {
		t.Error("expected frozen channel to be a deep clone, not the original")
	}
}

func TestBoneChannelPlayerOverrides(t *testing.T) {
	player := NewBoneChannelPlayer()
	if player.Overridden() {
		t.Fatal("expected fresh player not overridden")
	}

	player.SetPosition(mgl32.Vec3{0, 9, 0})
	if !player.Overridden() {
		t.Fatal("expected override flag after SetPosition")
	}
	_, _, position := player.Pose()
	if !position.ApproxEqualThreshold(mgl32.Vec3{0, 9, 0}, epsilon) {
		t.Errorf("expected overridden position, got %v", position)
	}

	player.Bind(nil)
	if player.Overridden() {
		t.Error("expected Bind to clear the override flag")
	}
}
