package stage

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/marrow-engine/marrow/common"
	"github.com/marrow-engine/marrow/engine/animator"
	"github.com/marrow-engine/marrow/engine/model"
)

var (
	// ErrNilPlayer is returned when an actor operation requires an animation player and none is set.
	ErrNilPlayer = errors.New("actor has no animation player")
	// ErrUnknownAnimation is returned when an animation name does not resolve on the actor's model.
	ErrUnknownAnimation = errors.New("unknown animation")
)

type actor struct {
	id      uint64
	name    string
	enabled atomic.Bool
	mdl     model.SkinnedModel
	player  animator.AnimationPlayer
}

// Actor defines the interface for a stage entity binding a skinned model to
// an animation player. The stage drives every enabled actor's player each
// update and drains its skinning pose afterwards.
type Actor interface {
	// ID returns the actor's unique identifier, assigned when the actor is
	// added to a stage.
	//
	// Returns:
	//   - uint64: the actor ID
	ID() uint64

	// SetID sets the actor's unique identifier.
	//
	// Parameters:
	//   - id: the ID to assign
	SetID(id uint64)

	// Name returns the actor's display name.
	//
	// Returns:
	//   - string: the actor name
	Name() string

	// Enabled returns whether this actor participates in stage updates.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// SetEnabled sets whether the actor participates in stage updates.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)

	// Model returns the skinned model associated with this actor, or nil.
	//
	// Returns:
	//   - model.SkinnedModel: the associated model or nil
	Model() model.SkinnedModel

	// Player returns the animation player driving this actor, or nil.
	//
	// Returns:
	//   - animator.AnimationPlayer: the player or nil
	Player() animator.AnimationPlayer

	// SetPlayer assigns an animation player to this actor.
	//
	// Parameters:
	//   - p: the player to assign
	SetPlayer(p animator.AnimationPlayer)

	// Play resolves an animation by name on the actor's model and binds it
	// to the player, then starts playback.
	//
	// Parameters:
	//   - animationName: the name of the animation to play
	//
	// Returns:
	//   - error: ErrNilPlayer, ErrUnknownAnimation, or a bind error
	Play(animationName string) error

	// Update advances the actor's animation player by elapsedSeconds.
	// Actors without a player ignore the call.
	//
	// Parameters:
	//   - elapsedSeconds: the wall-clock time step in seconds
	Update(elapsedSeconds float32)

	// PoseBytes exposes the actor's current skinning transforms as raw
	// bytes, 64 bytes per bone, ready for upload to an external GPU sink.
	// The slice aliases the player's transform storage and is invalidated
	// by the next update. Returns nil when no player is set.
	//
	// Returns:
	//   - []byte: the skinning matrices as column-major float32 bytes
	PoseBytes() []byte
}

var _ Actor = &actor{}

// NewActor creates a new Actor configured with the given options.
//
// Parameters:
//   - options: functional options to configure the actor
//
// Returns:
//   - Actor: the newly created actor
func NewActor(options ...ActorBuilderOption) Actor {
	a := &actor{}
	a.enabled.Store(true)
	for _, option := range options {
		option(a)
	}
	if a.mdl == nil && a.player != nil {
		a.mdl = a.player.Model()
	}
	return a
}

func (a *actor) ID() uint64 {
	return a.id
}

func (a *actor) SetID(id uint64) {
	a.id = id
}

func (a *actor) Name() string {
	return a.name
}

func (a *actor) Enabled() bool {
	return a.enabled.Load()
}

func (a *actor) SetEnabled(enabled bool) {
	a.enabled.Store(enabled)
}

func (a *actor) Model() model.SkinnedModel {
	return a.mdl
}

func (a *actor) Player() animator.AnimationPlayer {
	return a.player
}

func (a *actor) SetPlayer(p animator.AnimationPlayer) {
	a.player = p
	if p != nil && a.mdl == nil {
		a.mdl = p.Model()
	}
}

func (a *actor) Play(animationName string) error {
	if a.player == nil {
		return fmt.Errorf("play %q: %w", animationName, ErrNilPlayer)
	}
	anim := a.mdl.GetAnimation(animationName)
	if anim == nil {
		return fmt.Errorf("play %q: %w", animationName, ErrUnknownAnimation)
	}
	if err := a.player.SetAnimation(anim); err != nil {
		return fmt.Errorf("play %q: %w", animationName, err)
	}
	a.player.SetIsPlaying(true)
	return nil
}

func (a *actor) Update(elapsedSeconds float32) {
	if a.player == nil {
		return
	}
	a.player.Update(elapsedSeconds)
}

func (a *actor) PoseBytes() []byte {
	if a.player == nil {
		return nil
	}
	return common.SliceToBytes(a.player.SkinningTransforms())
}
