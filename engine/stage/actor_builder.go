package stage

import (
	"github.com/marrow-engine/marrow/engine/animator"
	"github.com/marrow-engine/marrow/engine/model"
)

// ActorBuilderOption is a functional option for configuring an Actor during construction.
type ActorBuilderOption func(*actor)

// WithActorName sets the display name of the Actor.
//
// Parameters:
//   - name: the display name
//
// Returns:
//   - ActorBuilderOption: functional option to set the name
func WithActorName(name string) ActorBuilderOption {
	return func(a *actor) {
		a.name = name
	}
}

// WithEnabled sets whether the Actor participates in stage updates.
// Actors are enabled by default.
//
// Parameters:
//   - enabled: true to include the actor in updates, false to skip it
//
// Returns:
//   - ActorBuilderOption: functional option to set the Enabled state
func WithEnabled(enabled bool) ActorBuilderOption {
	return func(a *actor) {
		a.enabled.Store(enabled)
	}
}

// WithModel sets the skinned model for this Actor.
//
// Parameters:
//   - m: the model to associate
//
// Returns:
//   - ActorBuilderOption: functional option to set the model
func WithModel(m model.SkinnedModel) ActorBuilderOption {
	return func(a *actor) {
		a.mdl = m
	}
}

// WithPlayer sets the animation player driving this Actor. When no model
// option is supplied the actor adopts the player's bound model.
//
// Parameters:
//   - p: the player to associate
//
// Returns:
//   - ActorBuilderOption: functional option to set the player
func WithPlayer(p animator.AnimationPlayer) ActorBuilderOption {
	return func(a *actor) {
		a.player = p
	}
}
