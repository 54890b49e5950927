package animator

import "github.com/marrow-engine/marrow/engine/core"

// AnimationPlayerBuilderOption is a function that modifies the properties of
// an animation player during creation.
type AnimationPlayerBuilderOption func(*animationPlayer)

// WithSpeed sets the playback speed multiplier for the animation player.
//
// Parameters:
//   - speed: the speed multiplier, negative for reverse playback
//
// Returns:
//   - AnimationPlayerBuilderOption: the option
func WithSpeed(speed float32) AnimationPlayerBuilderOption {
	return func(p *animationPlayer) {
		p.speed = speed
	}
}

// WithBlendSpeed sets the crossfade speed multiplier for the animation
// player.
//
// Parameters:
//   - blendSpeed: the blend speed multiplier
//
// Returns:
//   - AnimationPlayerBuilderOption: the option
func WithBlendSpeed(blendSpeed float32) AnimationPlayerBuilderOption {
	return func(p *animationPlayer) {
		p.blendSpeed = blendSpeed
	}
}

// WithLooping controls whether the animation player wraps at the clip
// boundary.
//
// Parameters:
//   - looping: true to loop
//
// Returns:
//   - AnimationPlayerBuilderOption: the option
func WithLooping(looping bool) AnimationPlayerBuilderOption {
	return func(p *animationPlayer) {
		p.looping = looping
	}
}

// WithPlaybackConfig applies a playback configuration section to the
// animation player.
//
// Parameters:
//   - cfg: the playback configuration
//
// Returns:
//   - AnimationPlayerBuilderOption: the option
func WithPlaybackConfig(cfg core.PlaybackConfig) AnimationPlayerBuilderOption {
	return func(p *animationPlayer) {
		p.speed = cfg.Speed
		p.blendSpeed = cfg.BlendSpeed
		p.looping = cfg.Looping
	}
}
