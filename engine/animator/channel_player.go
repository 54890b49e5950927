// Package animator implements keyframe animation playback: per-bone channel
// cursors, hierarchical transform composition, and the player state machine
// that crossfades between animations.
package animator

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/marrow-engine/marrow/common"
	"github.com/marrow-engine/marrow/engine/model"
)

// boneChannelPlayer is the implementation of the BoneChannelPlayer interface.
type boneChannelPlayer struct {
	mu sync.Mutex

	channel *model.BoneChannel

	scaleCursor, rotationCursor, positionCursor int

	scale    mgl32.Vec3
	rotation mgl32.Quat
	position mgl32.Vec3

	// overridden marks a pose written through the SRT setters so the owner
	// composes it even when no channel is bound.
	overridden bool

	local mgl32.Mat4
}

// BoneChannelPlayer is the mutable per-bone playback cursor bound to one
// BoneChannel. It advances and interpolates its three property cursors as
// time passes and keeps the composed local transform current.
//
// Every operation is serialized behind a per-instance lock, so an external
// caller may drive a bone directly (SetFrameIndex, the SRT overrides) while
// the owning AnimationPlayer resamples from its own tick — without tearing
// the composed transform and without a global player lock.
type BoneChannelPlayer interface {
	// Bind replaces the bound channel and resets every property cursor to
	// frame 0. A nil channel resets the pose to identity (unit scale,
	// identity rotation, zero translation); a bound channel supplies its own
	// frame-0 values. The composed local transform is recomputed immediately
	// so the bone is never left in a stale pose.
	//
	// Parameters:
	//   - channel: the channel to bind, or nil to unbind
	Bind(channel *model.BoneChannel)

	// Resample re-derives each property's bracketing frames at the given
	// tick and recomposes the interpolated local transform. Scale and
	// position interpolate with smoothstep easing; rotation interpolates
	// spherically. A zero direction (paused playback) is a no-op.
	//
	// Parameters:
	//   - currentTick: the playback position in ticks
	//   - direction: the playback direction sign (+1 forward, -1 reverse)
	Resample(currentTick, direction float32)

	// AdvanceToNextKeyframe force-steps every property cursor to its next
	// discrete keyframe without interpolating, for frame-stepped playback.
	// When every cursor is already at its last keyframe the cursors wrap
	// back to frame 0 instead.
	//
	// Returns:
	//   - bool: true if the cursors wrapped to frame 0
	AdvanceToNextKeyframe() bool

	// SetFrameIndex jumps directly to keyframe index for every property
	// whose channel has at least index+1 frames. When the index is out of
	// range for every property the call is a no-op, never an error.
	//
	// Parameters:
	//   - index: the keyframe index to jump to
	SetFrameIndex(index int)

	// HasChannel reports whether a channel is currently bound.
	//
	// Returns:
	//   - bool: true if a channel is bound
	HasChannel() bool

	// Overridden reports whether the pose was last written through the SRT
	// setters rather than sampled from a channel.
	//
	// Returns:
	//   - bool: true if the pose is procedurally overridden
	Overridden() bool

	// Channel returns the currently bound channel, or nil.
	//
	// Returns:
	//   - *model.BoneChannel: the bound channel or nil
	Channel() *model.BoneChannel

	// Pose returns the current interpolated scale, rotation and position in
	// a single lock acquisition.
	//
	// Returns:
	//   - scale: the interpolated scale
	//   - rotation: the interpolated rotation
	//   - position: the interpolated position
	Pose() (scale mgl32.Vec3, rotation mgl32.Quat, position mgl32.Vec3)

	// Cursors returns the current keyframe cursor for each property.
	//
	// Returns:
	//   - scale: the scale cursor
	//   - rotation: the rotation cursor
	//   - position: the position cursor
	Cursors() (scale, rotation, position int)

	// LocalTransform returns the composed local transform, scale first, then
	// rotation, then translation.
	//
	// Returns:
	//   - mgl32.Mat4: the composed local transform
	LocalTransform() mgl32.Mat4

	// SetScale overrides the current scale and recomposes the local
	// transform, for procedurally driven bones.
	//
	// Parameters:
	//   - scale: the scale to apply
	SetScale(scale mgl32.Vec3)

	// SetRotation overrides the current rotation and recomposes the local
	// transform, for procedurally driven bones.
	//
	// Parameters:
	//   - rotation: the rotation to apply
	SetRotation(rotation mgl32.Quat)

	// SetPosition overrides the current position and recomposes the local
	// transform, for procedurally driven bones.
	//
	// Parameters:
	//   - position: the position to apply
	SetPosition(position mgl32.Vec3)

	// FreezeFrom snapshots another player into this one: the source channel
	// is deep-cloned and the source's cursors and sampled pose are copied,
	// so the frozen pose survives the source being rebound. Used for the
	// shadow array that feeds blending.
	//
	// Parameters:
	//   - src: the player to snapshot
	FreezeFrom(src BoneChannelPlayer)
}

var _ BoneChannelPlayer = &boneChannelPlayer{}

// NewBoneChannelPlayer creates an unbound channel player holding the
// identity pose.
//
// Returns:
//   - BoneChannelPlayer: the new player
func NewBoneChannelPlayer() BoneChannelPlayer {
	p := &boneChannelPlayer{}
	p.resetPose()
	p.local = common.ComposeSRT(p.scale, p.rotation, p.position)
	return p
}

// resetPose restores the identity pose. Caller holds the lock (or owns the
// instance exclusively during construction).
func (p *boneChannelPlayer) resetPose() {
	p.scale = mgl32.Vec3{1, 1, 1}
	p.rotation = mgl32.QuatIdent()
	p.position = mgl32.Vec3{0, 0, 0}
}

func (p *boneChannelPlayer) Bind(channel *model.BoneChannel) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.channel = channel
	p.scaleCursor = 0
	p.rotationCursor = 0
	p.positionCursor = 0
	p.overridden = false

	p.resetPose()
	if channel != nil {
		if channel.Scale != nil && channel.Scale.Len() > 0 {
			p.scale = channel.Scale.Frames[0].Value
		}
		if channel.Rotation != nil && channel.Rotation.Len() > 0 {
			p.rotation = channel.Rotation.Frames[0].Value
		}
		if channel.Position != nil && channel.Position.Len() > 0 {
			p.position = channel.Position.Frames[0].Value
		}
	}
	p.local = common.ComposeSRT(p.scale, p.rotation, p.position)
}

func (p *boneChannelPlayer) Resample(currentTick, direction float32) {
	if direction == 0 {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel == nil {
		return
	}

	if c := p.channel.Scale; c != nil && c.Len() > 0 {
		p.scaleCursor = c.Advance(p.scaleCursor, currentTick, direction)
		current, next, tween := c.Sample(p.scaleCursor, currentTick)
		p.scale = common.SmoothLerp3(current.Value, next.Value, tween)
	}
	if c := p.channel.Rotation; c != nil && c.Len() > 0 {
		p.rotationCursor = c.Advance(p.rotationCursor, currentTick, direction)
		current, next, tween := c.Sample(p.rotationCursor, currentTick)
		p.rotation = common.Slerp(current.Value, next.Value, tween)
	}
	if c := p.channel.Position; c != nil && c.Len() > 0 {
		p.positionCursor = c.Advance(p.positionCursor, currentTick, direction)
		current, next, tween := c.Sample(p.positionCursor, currentTick)
		p.position = common.SmoothLerp3(current.Value, next.Value, tween)
	}

	p.local = common.ComposeSRT(p.scale, p.rotation, p.position)
}

func (p *boneChannelPlayer) AdvanceToNextKeyframe() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel == nil {
		return false
	}

	atEnd := func(cursor, length int) bool { return length == 0 || cursor >= length-1 }

	scaleLen, rotationLen, positionLen := 0, 0, 0
	if p.channel.Scale != nil {
		scaleLen = p.channel.Scale.Len()
	}
	if p.channel.Rotation != nil {
		rotationLen = p.channel.Rotation.Len()
	}
	if p.channel.Position != nil {
		positionLen = p.channel.Position.Len()
	}

	wrapped := atEnd(p.scaleCursor, scaleLen) && atEnd(p.rotationCursor, rotationLen) && atEnd(p.positionCursor, positionLen)
	if wrapped {
		p.scaleCursor, p.rotationCursor, p.positionCursor = 0, 0, 0
	} else {
		if !atEnd(p.scaleCursor, scaleLen) {
			p.scaleCursor++
		}
		if !atEnd(p.rotationCursor, rotationLen) {
			p.rotationCursor++
		}
		if !atEnd(p.positionCursor, positionLen) {
			p.positionCursor++
		}
	}

	p.applyCursorValues()
	return wrapped
}

func (p *boneChannelPlayer) SetFrameIndex(index int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel == nil || index < 0 {
		return
	}

	changed := false
	if c := p.channel.Scale; c != nil && index < c.Len() {
		p.scaleCursor = index
		changed = true
	}
	if c := p.channel.Rotation; c != nil && index < c.Len() {
		p.rotationCursor = index
		changed = true
	}
	if c := p.channel.Position; c != nil && index < c.Len() {
		p.positionCursor = index
		changed = true
	}
	if !changed {
		return
	}

	p.applyCursorValues()
}

// applyCursorValues copies each property's keyframe value at its cursor into
// the pose without interpolating and recomposes the local transform. Caller
// holds the lock.
func (p *boneChannelPlayer) applyCursorValues() {
	if c := p.channel.Scale; c != nil && c.Len() > 0 {
		p.scale = c.Frames[min(p.scaleCursor, c.Len()-1)].Value
	}
	if c := p.channel.Rotation; c != nil && c.Len() > 0 {
		p.rotation = c.Frames[min(p.rotationCursor, c.Len()-1)].Value
	}
	if c := p.channel.Position; c != nil && c.Len() > 0 {
		p.position = c.Frames[min(p.positionCursor, c.Len()-1)].Value
	}
	p.local = common.ComposeSRT(p.scale, p.rotation, p.position)
}

func (p *boneChannelPlayer) HasChannel() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.channel != nil
}

func (p *boneChannelPlayer) Overridden() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.overridden
}

func (p *boneChannelPlayer) Channel() *model.BoneChannel {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.channel
}

func (p *boneChannelPlayer) Pose() (scale mgl32.Vec3, rotation mgl32.Quat, position mgl32.Vec3) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.scale, p.rotation, p.position
}

func (p *boneChannelPlayer) Cursors() (scale, rotation, position int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.scaleCursor, p.rotationCursor, p.positionCursor
}

func (p *boneChannelPlayer) LocalTransform() mgl32.Mat4 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.local
}

func (p *boneChannelPlayer) SetScale(scale mgl32.Vec3) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scale = scale
	p.overridden = true
	p.local = common.ComposeSRT(p.scale, p.rotation, p.position)
}

func (p *boneChannelPlayer) SetRotation(rotation mgl32.Quat) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rotation = rotation
	p.overridden = true
	p.local = common.ComposeSRT(p.scale, p.rotation, p.position)
}

func (p *boneChannelPlayer) SetPosition(position mgl32.Vec3) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.position = position
	p.overridden = true
	p.local = common.ComposeSRT(p.scale, p.rotation, p.position)
}

func (p *boneChannelPlayer) FreezeFrom(src BoneChannelPlayer) {
	// Read the source through its own lock before taking ours; the owning
	// player is the only caller and never holds both in the reverse order.
	channel := src.Channel()
	if channel != nil {
		channel = channel.Clone()
	}
	scale, rotation, position := src.Pose()
	scaleCursor, rotationCursor, positionCursor := src.Cursors()
	overridden := src.Overridden()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.channel = channel
	p.overridden = overridden
	p.scale, p.rotation, p.position = scale, rotation, position
	p.scaleCursor, p.rotationCursor, p.positionCursor = scaleCursor, rotationCursor, positionCursor
	p.local = common.ComposeSRT(p.scale, p.rotation, p.position)
}
