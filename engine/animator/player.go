package animator

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/marrow-engine/marrow/common"
	"github.com/marrow-engine/marrow/engine/core"
	"github.com/marrow-engine/marrow/engine/model"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

var (
	// ErrNilModel is returned when a player is created or rebound without a
	// skinned model.
	ErrNilModel = errors.New("nil skinned model")
	// ErrBoneCountMismatch is returned when a model swap would change the
	// number of bones the player is sized for.
	ErrBoneCountMismatch = errors.New("bone count mismatch")
)

// animationPlayer is the implementation of the AnimationPlayer interface.
type animationPlayer struct {
	model     model.SkinnedModel
	animation *model.Animation

	channelPlayers    []BoneChannelPlayer
	oldChannelPlayers []BoneChannelPlayer

	modelSpaceTransforms []mgl32.Mat4
	boneSpaceTransforms  []mgl32.Mat4

	// scratch locals for blend composition, sized to the bone count
	blendLocals []mgl32.Mat4

	currentTime float32
	currentTick float32
	speed       float32
	looping     bool
	playing     bool

	blending    bool
	blendSpeed  float32
	blendAmount float32
	blendTween  *gween.Tween

	// hasBound is set once the first animation binds; the very first
	// SetAnimation always binds directly even for blending clips, since
	// there is no previous pose to fade from.
	hasBound bool

	completionListeners []func(*model.Animation)
	blendListeners      []func(*model.Animation)
}

// AnimationPlayer drives one skinned model through its animations. It owns a
// channel player per bone, advances the playback clock, composes the
// model-space and skinning transform arrays each update, and crossfades
// between clips flagged for blending.
//
// A player is not safe for concurrent use; drive it from a single update
// goroutine. The per-bone channel players are individually locked, so
// procedural bone overrides may come from elsewhere between updates.
type AnimationPlayer interface {
	// SetAnimation binds an animation to the player. Binding the animation
	// already bound is a silent no-op. Clips flagged for blending crossfade
	// from the current pose instead of snapping, except on the very first
	// bind, which always binds directly.
	//
	// A direct bind resets the clock to zero, stops playback, and composes
	// the frame-0 pose immediately; the caller resumes with SetIsPlaying. A
	// blending bind freezes the current pose into the shadow players,
	// rebinds the live players to the new clip, resets the clock, and
	// enters the Blending state.
	//
	// Parameters:
	//   - animation: the animation to bind
	//
	// Returns:
	//   - error: model.ErrNilAnimation if animation is nil
	SetAnimation(animation *model.Animation) error

	// Update advances the player by elapsedSeconds of wall time. While
	// blending it advances the crossfade; while playing it resamples every
	// bone at the current tick, recomposes the transform arrays, then
	// advances the clock, looping or stopping at the clip boundary. A
	// paused player, a zero speed, or no bound animation makes Update a
	// no-op.
	//
	// Parameters:
	//   - elapsedSeconds: the wall-clock time step in seconds
	Update(elapsedSeconds float32)

	// SetModel swaps the skinned model the player drives. The new model
	// must have the same bone count as the current one; on mismatch the
	// previous binding is preserved and an error is returned.
	//
	// Parameters:
	//   - m: the replacement model
	//
	// Returns:
	//   - error: ErrNilModel or ErrBoneCountMismatch
	SetModel(m model.SkinnedModel) error

	// Model returns the skinned model the player drives.
	//
	// Returns:
	//   - model.SkinnedModel: the bound model
	Model() model.SkinnedModel

	// Animation returns the currently bound animation, or nil when idle.
	//
	// Returns:
	//   - *model.Animation: the bound animation or nil
	Animation() *model.Animation

	// SetIsPlaying starts or pauses playback. Resuming a player whose clock
	// sits at the clip boundary restarts from the start of the clip for the
	// current direction.
	//
	// Parameters:
	//   - playing: true to play, false to pause
	SetIsPlaying(playing bool)

	// IsPlaying reports whether the clock is advancing.
	//
	// Returns:
	//   - bool: true if playing
	IsPlaying() bool

	// IsBlending reports whether a crossfade is in progress.
	//
	// Returns:
	//   - bool: true if blending
	IsBlending() bool

	// BlendProgress returns the current crossfade scalar in [0, 1], or 0
	// when not blending.
	//
	// Returns:
	//   - float32: the blend scalar
	BlendProgress() float32

	// SetSpeed sets the playback speed multiplier. Negative values play in
	// reverse; zero freezes the clock without pausing.
	//
	// Parameters:
	//   - speed: the speed multiplier
	SetSpeed(speed float32)

	// Speed returns the playback speed multiplier.
	//
	// Returns:
	//   - float32: the speed multiplier
	Speed() float32

	// SetBlendSpeed sets the crossfade speed multiplier.
	//
	// Parameters:
	//   - blendSpeed: the blend speed multiplier
	SetBlendSpeed(blendSpeed float32)

	// BlendSpeed returns the crossfade speed multiplier.
	//
	// Returns:
	//   - float32: the blend speed multiplier
	BlendSpeed() float32

	// SetLooping controls whether the clock wraps at the clip boundary or
	// playback stops there.
	//
	// Parameters:
	//   - looping: true to loop
	SetLooping(looping bool)

	// Looping reports whether the player loops at the clip boundary.
	//
	// Returns:
	//   - bool: true if looping
	Looping() bool

	// SetTime moves the playback clock to the given position in seconds.
	// The pose updates on the next Update.
	//
	// Parameters:
	//   - seconds: the clock position in seconds
	SetTime(seconds float32)

	// CurrentTime returns the playback clock position in seconds.
	//
	// Returns:
	//   - float32: the clock position in seconds
	CurrentTime() float32

	// CurrentTick returns the playback position in animation ticks.
	//
	// Returns:
	//   - float32: the position in ticks
	CurrentTick() float32

	// SetFrameIndex jumps every bone to the given keyframe index and
	// recomposes the transform arrays. Bones whose channels are shorter
	// ignore the jump.
	//
	// Parameters:
	//   - index: the keyframe index
	SetFrameIndex(index int)

	// AdvanceToNextKeyframe steps every bone to its next discrete keyframe,
	// wrapping bones that have exhausted their frames, and recomposes the
	// transform arrays.
	AdvanceToNextKeyframe()

	// ChannelPlayer returns the channel player for a bone, for procedural
	// control, or nil when the index is out of range.
	//
	// Parameters:
	//   - boneIndex: the bone index
	//
	// Returns:
	//   - BoneChannelPlayer: the bone's channel player or nil
	ChannelPlayer(boneIndex int) BoneChannelPlayer

	// SetBoneScale overrides one bone's scale and recomposes the transform
	// arrays. Out-of-range indices are ignored.
	//
	// Parameters:
	//   - boneIndex: the bone index
	//   - scale: the scale to apply
	SetBoneScale(boneIndex int, scale mgl32.Vec3)

	// SetBoneRotation overrides one bone's rotation and recomposes the
	// transform arrays. Out-of-range indices are ignored.
	//
	// Parameters:
	//   - boneIndex: the bone index
	//   - rotation: the rotation to apply
	SetBoneRotation(boneIndex int, rotation mgl32.Quat)

	// SetBonePosition overrides one bone's position and recomposes the
	// transform arrays. Out-of-range indices are ignored.
	//
	// Parameters:
	//   - boneIndex: the bone index
	//   - position: the position to apply
	SetBonePosition(boneIndex int, position mgl32.Vec3)

	// ModelSpaceTransforms returns the per-bone model-space transforms,
	// parent transforms folded in. The slice is owned by the player; treat
	// it as read-only.
	//
	// Returns:
	//   - []mgl32.Mat4: one model-space transform per bone
	ModelSpaceTransforms() []mgl32.Mat4

	// SkinningTransforms returns the per-bone skinning transforms, each the
	// bone's inverse bind offset folded into its model-space transform. The
	// slice is owned by the player; treat it as read-only.
	//
	// Returns:
	//   - []mgl32.Mat4: one skinning transform per bone
	SkinningTransforms() []mgl32.Mat4

	// OnAnimationComplete registers a callback invoked each time playback
	// reaches the clip boundary, once per loop iteration when looping.
	//
	// Parameters:
	//   - fn: the callback, receiving the completed animation
	OnAnimationComplete(fn func(*model.Animation))

	// OnBlendComplete registers a callback invoked exactly once when a
	// crossfade finishes.
	//
	// Parameters:
	//   - fn: the callback, receiving the animation blended into
	OnBlendComplete(fn func(*model.Animation))
}

var _ AnimationPlayer = &animationPlayer{}

// NewAnimationPlayer creates a player for the given skinned model, sized to
// its bone count, with every bone posed at its bind transform.
//
// Parameters:
//   - m: the skinned model to drive
//   - options: optional configuration
//
// Returns:
//   - AnimationPlayer: the new player
//   - error: ErrNilModel when m is nil
func NewAnimationPlayer(m model.SkinnedModel, options ...AnimationPlayerBuilderOption) (AnimationPlayer, error) {
	if m == nil {
		return nil, fmt.Errorf("create animation player: %w", ErrNilModel)
	}

	boneCount := m.BoneCount()
	p := &animationPlayer{
		model:                m,
		channelPlayers:       make([]BoneChannelPlayer, boneCount),
		oldChannelPlayers:    make([]BoneChannelPlayer, boneCount),
		modelSpaceTransforms: make([]mgl32.Mat4, boneCount),
		boneSpaceTransforms:  make([]mgl32.Mat4, boneCount),
		blendLocals:          make([]mgl32.Mat4, boneCount),
		speed:                1,
		blendSpeed:           1,
		looping:              true,
	}
	for i := range p.channelPlayers {
		p.channelPlayers[i] = NewBoneChannelPlayer()
		p.oldChannelPlayers[i] = NewBoneChannelPlayer()
	}

	for _, opt := range options {
		opt(p)
	}

	p.recomposeTransforms()
	return p, nil
}

func (p *animationPlayer) SetAnimation(animation *model.Animation) error {
	if animation == nil {
		return fmt.Errorf("set animation: %w", model.ErrNilAnimation)
	}
	if animation == p.animation {
		return nil
	}

	if animation.Blending && p.hasBound {
		p.bindBlending(animation)
		return nil
	}
	p.bindDirect(animation)
	return nil
}

// bindDirect snaps the player onto an animation: every bone rebinds to the
// clip's channel for it (or unbinds), the clock resets, playback stops, and
// the frame-0 pose is composed immediately.
func (p *animationPlayer) bindDirect(animation *model.Animation) {
	for i, cp := range p.channelPlayers {
		cp.Bind(p.channelForBone(animation, i))
	}
	p.animation = animation
	p.currentTime = 0
	p.currentTick = 0
	p.playing = false
	p.blending = false
	p.blendTween = nil
	p.blendAmount = 0
	p.hasBound = true
	p.recomposeTransforms()
	core.LogDebug("animation bound", "animation", animation.Name)
}

// bindBlending freezes the current pose into the shadow players, rebinds the
// live players to the new clip's frame 0, and starts the crossfade.
func (p *animationPlayer) bindBlending(animation *model.Animation) {
	for i, cp := range p.channelPlayers {
		p.oldChannelPlayers[i].FreezeFrom(cp)
		cp.Bind(p.channelForBone(animation, i))
	}
	previous := p.animation
	p.animation = animation
	p.currentTime = 0
	p.currentTick = 0
	p.blending = true
	p.blendAmount = 0
	p.blendTween = gween.New(0, 1, 1, ease.Linear)
	core.LogDebug("blend started", "from", previous.Name, "to", animation.Name)
}

// channelForBone resolves the clip channel for a bone by name, or nil when
// the clip does not animate that bone.
func (p *animationPlayer) channelForBone(animation *model.Animation, boneIndex int) *model.BoneChannel {
	bone := p.model.Skeleton().Bone(boneIndex)
	if bone == nil {
		return nil
	}
	return animation.Channel(bone.Name)
}

func (p *animationPlayer) Update(elapsedSeconds float32) {
	if p.animation == nil {
		return
	}
	if p.blending {
		p.updateBlending(elapsedSeconds)
		return
	}
	if !p.playing || p.speed == 0 {
		return
	}

	direction := float32(1)
	if p.speed < 0 {
		direction = -1
	}

	p.currentTick = p.currentTime * float32(p.animation.TicksPerSecond)
	for _, cp := range p.channelPlayers {
		cp.Resample(p.currentTick, direction)
	}
	p.recomposeTransforms()

	p.currentTime += elapsedSeconds * p.speed
	p.handleBoundary()
	p.currentTick = p.currentTime * float32(p.animation.TicksPerSecond)
}

// handleBoundary fires completion and loops or stops when the clock crosses
// the clip boundary for the current direction.
func (p *animationPlayer) handleBoundary() {
	duration := p.animation.DurationInSeconds()
	if duration <= 0 {
		return
	}

	switch {
	case p.speed > 0 && p.currentTime >= duration:
		p.fireCompletion()
		if p.looping {
			p.currentTime -= duration
		} else {
			p.currentTime = duration
			p.playing = false
		}
	case p.speed < 0 && p.currentTime <= 0:
		p.fireCompletion()
		if p.looping {
			p.currentTime += duration
		} else {
			p.currentTime = 0
			p.playing = false
		}
	}
}

// updateBlending advances the crossfade scalar and composes every bone's
// local transform as the interpolation of the frozen old pose toward the new
// clip's frame-0 pose. When the scalar reaches 1 the player leaves the
// Blending state, fires the blend completion callbacks once, and resumes
// normal playback.
func (p *animationPlayer) updateBlending(elapsedSeconds float32) {
	blend, finished := p.blendTween.Update(elapsedSeconds * p.speed * p.blendSpeed)
	p.blendAmount = blend

	for i, cp := range p.channelPlayers {
		old := p.oldChannelPlayers[i]
		if !cp.HasChannel() && !old.HasChannel() && !old.Overridden() {
			if bone := p.model.Skeleton().Bone(i); bone != nil {
				p.blendLocals[i] = bone.LocalBind
			} else {
				p.blendLocals[i] = mgl32.Ident4()
			}
			continue
		}
		oldScale, oldRotation, oldPosition := old.Pose()
		newScale, newRotation, newPosition := cp.Pose()
		p.blendLocals[i] = common.ComposeSRT(
			common.Lerp3(oldScale, newScale, blend),
			common.Slerp(oldRotation, newRotation, blend),
			common.Lerp3(oldPosition, newPosition, blend),
		)
	}
	p.composeHierarchy(func(i int) (mgl32.Mat4, bool) {
		return p.blendLocals[i], true
	})

	if finished {
		p.blending = false
		p.blendTween = nil
		p.playing = true
		core.LogDebug("blend finished", "animation", p.animation.Name)
		for _, fn := range p.blendListeners {
			fn(p.animation)
		}
	}
}

// fireCompletion invokes the completion listeners in registration order.
func (p *animationPlayer) fireCompletion() {
	for _, fn := range p.completionListeners {
		fn(p.animation)
	}
}

// recomposeTransforms rebuilds the model-space and skinning arrays from the
// channel players' current local transforms. Bones without a channel hold
// their bind-pose local transform.
func (p *animationPlayer) recomposeTransforms() {
	p.composeHierarchy(func(i int) (mgl32.Mat4, bool) {
		cp := p.channelPlayers[i]
		if cp.HasChannel() || cp.Overridden() {
			return cp.LocalTransform(), true
		}
		return mgl32.Mat4{}, false
	})
}

// composeHierarchy walks the skeleton in index order, folding each bone's
// local transform into its parent's model-space transform and deriving the
// skinning transform from the bone's inverse bind offset. Skeleton ordering
// guarantees parents precede children, so a single ascending pass suffices.
// local yields the bone's local transform; a false second return means the
// bone has no animated transform and its bind pose is used.
func (p *animationPlayer) composeHierarchy(local func(i int) (mgl32.Mat4, bool)) {
	skeleton := p.model.Skeleton()
	for i := 0; i < skeleton.BoneCount(); i++ {
		bone := skeleton.Bone(i)

		localTransform, ok := local(i)
		if !ok {
			localTransform = bone.LocalBind
		}

		if bone.HasParent() {
			p.modelSpaceTransforms[i] = localTransform.Mul4(p.modelSpaceTransforms[bone.ParentIndex])
		} else {
			p.modelSpaceTransforms[i] = localTransform
		}
		p.boneSpaceTransforms[i] = bone.Offset.Mul4(p.modelSpaceTransforms[i])
	}
}

func (p *animationPlayer) SetModel(m model.SkinnedModel) error {
	if m == nil {
		return fmt.Errorf("set model: %w", ErrNilModel)
	}
	if m == p.model {
		return nil
	}
	if m.BoneCount() != p.model.BoneCount() {
		return fmt.Errorf("set model %q: have %d bones, player sized for %d: %w",
			m.Name(), m.BoneCount(), p.model.BoneCount(), ErrBoneCountMismatch)
	}
	p.model = m
	return nil
}

func (p *animationPlayer) Model() model.SkinnedModel { return p.model }

func (p *animationPlayer) Animation() *model.Animation { return p.animation }

func (p *animationPlayer) SetIsPlaying(playing bool) {
	if playing && p.animation != nil {
		duration := p.animation.DurationInSeconds()
		if p.speed > 0 && p.currentTime >= duration {
			p.currentTime = 0
		}
		if p.speed < 0 && p.currentTime <= 0 {
			p.currentTime = duration
		}
	}
	p.playing = playing
}

func (p *animationPlayer) IsPlaying() bool { return p.playing }

func (p *animationPlayer) IsBlending() bool { return p.blending }

func (p *animationPlayer) BlendProgress() float32 {
	if !p.blending {
		return 0
	}
	return p.blendAmount
}

func (p *animationPlayer) SetSpeed(speed float32) { p.speed = speed }

func (p *animationPlayer) Speed() float32 { return p.speed }

func (p *animationPlayer) SetBlendSpeed(blendSpeed float32) { p.blendSpeed = blendSpeed }

func (p *animationPlayer) BlendSpeed() float32 { return p.blendSpeed }

func (p *animationPlayer) SetLooping(looping bool) { p.looping = looping }

func (p *animationPlayer) Looping() bool { return p.looping }

func (p *animationPlayer) SetTime(seconds float32) {
	p.currentTime = seconds
	if p.animation != nil {
		p.currentTick = seconds * float32(p.animation.TicksPerSecond)
	}
}

func (p *animationPlayer) CurrentTime() float32 { return p.currentTime }

func (p *animationPlayer) CurrentTick() float32 { return p.currentTick }

func (p *animationPlayer) SetFrameIndex(index int) {
	for _, cp := range p.channelPlayers {
		cp.SetFrameIndex(index)
	}
	p.recomposeTransforms()
}

func (p *animationPlayer) AdvanceToNextKeyframe() {
	for _, cp := range p.channelPlayers {
		cp.AdvanceToNextKeyframe()
	}
	p.recomposeTransforms()
}

func (p *animationPlayer) ChannelPlayer(boneIndex int) BoneChannelPlayer {
	if boneIndex < 0 || boneIndex >= len(p.channelPlayers) {
		return nil
	}
	return p.channelPlayers[boneIndex]
}

func (p *animationPlayer) SetBoneScale(boneIndex int, scale mgl32.Vec3) {
	if cp := p.ChannelPlayer(boneIndex); cp != nil {
		cp.SetScale(scale)
		p.recomposeTransforms()
	}
}

func (p *animationPlayer) SetBoneRotation(boneIndex int, rotation mgl32.Quat) {
	if cp := p.ChannelPlayer(boneIndex); cp != nil {
		cp.SetRotation(rotation)
		p.recomposeTransforms()
	}
}

func (p *animationPlayer) SetBonePosition(boneIndex int, position mgl32.Vec3) {
	if cp := p.ChannelPlayer(boneIndex); cp != nil {
		cp.SetPosition(position)
		p.recomposeTransforms()
	}
}

func (p *animationPlayer) ModelSpaceTransforms() []mgl32.Mat4 { return p.modelSpaceTransforms }

func (p *animationPlayer) SkinningTransforms() []mgl32.Mat4 { return p.boneSpaceTransforms }

func (p *animationPlayer) OnAnimationComplete(fn func(*model.Animation)) {
	p.completionListeners = append(p.completionListeners, fn)
}

func (p *animationPlayer) OnBlendComplete(fn func(*model.Animation)) {
	p.blendListeners = append(p.blendListeners, fn)
}
