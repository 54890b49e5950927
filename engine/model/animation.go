package model

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

// Keyframe is a single timestamped sample in a channel component. T is
// mgl32.Vec3 for scale/position channels and mgl32.Quat for rotation.
type Keyframe[T any] struct {
	// Index is the keyframe's position within its channel component.
	Index int

	// TickTime is the sample timestamp in animation ticks.
	TickTime int

	// Value is the sampled value at this keyframe.
	Value T
}

// ChannelComponent is the ordered keyframe sequence for one animatable
// property of one bone. The frame array is read-only after construction; the
// playback cursor that walks it belongs to the channel player, so a single
// component can back any number of players.
type ChannelComponent[T any] struct {
	// Frames is the keyframe sequence, sorted by TickTime ascending.
	// Treat as read-only.
	Frames []Keyframe[T]
}

// NewChannelComponent builds a component from a keyframe slice. Frames are
// sorted by tick time and reindexed, so callers may supply them in any order.
//
// Parameters:
//   - frames: the keyframes for this property
//
// Returns:
//   - *ChannelComponent[T]: the ordered component
func NewChannelComponent[T any](frames []Keyframe[T]) *ChannelComponent[T] {
	sorted := make([]Keyframe[T], len(frames))
	copy(sorted, frames)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TickTime < sorted[j].TickTime
	})
	for i := range sorted {
		sorted[i].Index = i
	}
	return &ChannelComponent[T]{Frames: sorted}
}

// Len returns the number of keyframes in the component.
//
// Returns:
//   - int: the keyframe count
func (c *ChannelComponent[T]) Len() int {
	return len(c.Frames)
}

// Clone returns a deep copy of the component. Used to freeze blend snapshots
// that must survive the source animation being rebound.
//
// Returns:
//   - *ChannelComponent[T]: an independent copy
func (c *ChannelComponent[T]) Clone() *ChannelComponent[T] {
	frames := make([]Keyframe[T], len(c.Frames))
	copy(frames, c.Frames)
	return &ChannelComponent[T]{Frames: frames}
}

// Advance moves a playback cursor toward the target tick in the given
// direction, clamped to the channel bounds at both ends. The cursor never
// advances past the channel; looping wraparound is the caller's
// responsibility.
//
// Parameters:
//   - cursor: the current keyframe index
//   - currentTick: the playback position in ticks
//   - direction: the playback direction sign (+1 forward, -1 reverse, 0 hold)
//
// Returns:
//   - int: the advanced cursor
func (c *ChannelComponent[T]) Advance(cursor int, currentTick, direction float32) int {
	n := len(c.Frames)
	if n <= 1 {
		return 0
	}
	if cursor < 0 {
		cursor = 0
	} else if cursor > n-1 {
		cursor = n - 1
	}

	if direction > 0 {
		for cursor < n-1 && currentTick >= float32(c.Frames[cursor+1].TickTime) {
			cursor++
		}
	} else if direction < 0 {
		for cursor > 0 && currentTick < float32(c.Frames[cursor].TickTime) {
			cursor--
		}
	}
	return cursor
}

// Sample returns the bracketing current and next keyframes for a cursor plus
// the tween scalar in [0, 1] describing the fractional position between
// them. A single-keyframe component always yields that frame with tween 0,
// and frames sharing a tick time yield tween 0 rather than dividing by zero.
//
// Parameters:
//   - cursor: the current keyframe index
//   - currentTick: the playback position in ticks
//
// Returns:
//   - current: the keyframe at or before the playback position
//   - next: the following keyframe (equal to current at the channel end)
//   - tween: the fractional position between the two frames
func (c *ChannelComponent[T]) Sample(cursor int, currentTick float32) (current, next Keyframe[T], tween float32) {
	n := len(c.Frames)
	if n == 0 {
		return
	}
	if n == 1 {
		return c.Frames[0], c.Frames[0], 0
	}

	if cursor < 0 {
		cursor = 0
	} else if cursor > n-1 {
		cursor = n - 1
	}
	current = c.Frames[cursor]

	nextIdx := cursor + 1
	if nextIdx > n-1 {
		nextIdx = n - 1
	}
	next = c.Frames[nextIdx]

	span := next.TickTime - current.TickTime
	if span == 0 {
		return current, next, 0
	}

	tween = (currentTick - float32(current.TickTime)) / float32(span)
	if tween < 0 {
		tween = 0
	} else if tween > 1 {
		tween = 1
	}
	return current, next, tween
}

// BoneChannel bundles the three channel components (scale, rotation,
// position) for one named bone within one animation. Read-only after
// construction.
type BoneChannel struct {
	// BoneName is the skeleton bone this channel animates.
	BoneName string

	// Scale holds the vec3 scale keyframes.
	Scale *ChannelComponent[mgl32.Vec3]

	// Rotation holds the quaternion rotation keyframes.
	Rotation *ChannelComponent[mgl32.Quat]

	// Position holds the vec3 translation keyframes.
	Position *ChannelComponent[mgl32.Vec3]
}

// Clone returns a deep copy of the channel and all three components.
//
// Returns:
//   - *BoneChannel: an independent copy
func (bc *BoneChannel) Clone() *BoneChannel {
	clone := &BoneChannel{BoneName: bc.BoneName}
	if bc.Scale != nil {
		clone.Scale = bc.Scale.Clone()
	}
	if bc.Rotation != nil {
		clone.Rotation = bc.Rotation.Clone()
	}
	if bc.Position != nil {
		clone.Position = bc.Position.Clone()
	}
	return clone
}

// Animation is an immutable named collection of bone channels plus timing
// metadata. An animation may omit channels for bones it does not move; those
// bones hold their bind pose during playback. Treat as read-only after the
// loading pipeline has run.
type Animation struct {
	// Name is the animation identifier.
	Name string

	// TicksPerSecond converts between ticks and seconds.
	TicksPerSecond int

	// DurationInTicks is the total animation length in ticks.
	DurationInTicks int

	// Channels maps bone names to their channels. Keys are unique.
	Channels map[string]*BoneChannel

	// Blending selects whether binding this animation to a player triggers a
	// crossfade from the previous pose instead of an instantaneous cut.
	Blending bool
}

// DurationInSeconds derives the animation length in seconds.
//
// Returns:
//   - float32: duration in seconds, 0 when TicksPerSecond is unset
func (a *Animation) DurationInSeconds() float32 {
	if a.TicksPerSecond == 0 {
		return 0
	}
	return float32(a.DurationInTicks) / float32(a.TicksPerSecond)
}

// Channel looks up the channel for a bone name.
//
// Parameters:
//   - boneName: the bone to look up
//
// Returns:
//   - *BoneChannel: the channel, or nil when the animation does not move the bone
func (a *Animation) Channel(boneName string) *BoneChannel {
	return a.Channels[boneName]
}
