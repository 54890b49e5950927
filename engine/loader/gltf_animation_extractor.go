package loader

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/marrow-engine/marrow/engine/model"
)

// gltfAnimationExtractorImpl is the implementation of the gltfAnimationExtractor interface.
type gltfAnimationExtractorImpl struct {
	parser   gltfParser
	tickRate int
}

// gltfAnimationExtractor defines the interface for extracting animation data
// from a parsed glTF document. glTF keyframes carry float timestamps in
// seconds; the extractor quantizes them onto the engine's integer tick
// timeline at the configured tick rate.
//
// The nodeToName parameter maps glTF node indices to bone names in the
// extracted skeleton, produced by the skeleton extractor. Channels targeting
// nodes outside the skeleton are skipped.
type gltfAnimationExtractor interface {
	// ExtractAnimation extracts a single animation by index.
	//
	// Parameters:
	//   - animIndex: the index of the animation in the document
	//   - nodeToName: maps glTF node index to skeleton bone name
	//
	// Returns:
	//   - *model.Animation: the extracted animation
	//   - error: error if extraction fails
	ExtractAnimation(animIndex int, nodeToName map[int]string) (*model.Animation, error)

	// ExtractAllAnimations extracts every animation from the document.
	//
	// Parameters:
	//   - nodeToName: maps glTF node index to skeleton bone name
	//
	// Returns:
	//   - []*model.Animation: all extracted animations
	//   - error: error if extraction fails
	ExtractAllAnimations(nodeToName map[int]string) ([]*model.Animation, error)
}

var _ gltfAnimationExtractor = &gltfAnimationExtractorImpl{}

// newGLTFAnimationExtractor creates a new animation extractor for a parsed document.
//
// Parameters:
//   - parser: the parser containing a loaded document
//   - tickRate: the engine tick rate used to quantize keyframe timestamps
//
// Returns:
//   - gltfAnimationExtractor: the animation extractor
func newGLTFAnimationExtractor(parser gltfParser, tickRate int) gltfAnimationExtractor {
	return &gltfAnimationExtractorImpl{parser: parser, tickRate: tickRate}
}

func (e *gltfAnimationExtractorImpl) ExtractAnimation(animIndex int, nodeToName map[int]string) (*model.Animation, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document loaded")
	}
	if animIndex < 0 || animIndex >= len(doc.Animations) {
		return nil, fmt.Errorf("animation index %d out of range", animIndex)
	}

	anim := &doc.Animations[animIndex]

	channels := make(map[string]*model.BoneChannel)
	var maxTick int

	for i := range anim.Channels {
		ch := &anim.Channels[i]

		// Skip channels with no target node (e.g. morph targets)
		if ch.Target.Node == nil {
			continue
		}
		boneName, ok := nodeToName[*ch.Target.Node]
		if !ok {
			// This channel targets a node that isn't in the skeleton; skip it
			continue
		}

		if ch.Sampler < 0 || ch.Sampler >= len(anim.Samplers) {
			return nil, fmt.Errorf("animation %q channel %d: invalid sampler index %d", anim.Name, i, ch.Sampler)
		}
		sampler := &anim.Samplers[ch.Sampler]

		timestamps, err := e.parser.ReadScalarAccessor(sampler.Input)
		if err != nil {
			return nil, fmt.Errorf("animation %q channel %d: failed to read timestamps: %w", anim.Name, i, err)
		}

		ticks := make([]int, len(timestamps))
		for j, t := range timestamps {
			ticks[j] = e.quantize(t)
			if ticks[j] > maxTick {
				maxTick = ticks[j]
			}
		}

		boneChannel, exists := channels[boneName]
		if !exists {
			boneChannel = &model.BoneChannel{BoneName: boneName}
			channels[boneName] = boneChannel
		}

		switch ch.Target.Path {
		case gltfAnimPathTranslation:
			frames, err := e.readVec3Frames(sampler.Output, ticks)
			if err != nil {
				return nil, fmt.Errorf("animation %q channel %d: failed to read translation values: %w", anim.Name, i, err)
			}
			boneChannel.Position = model.NewChannelComponent(frames)

		case gltfAnimPathRotation:
			values, err := e.parser.ReadVec4Accessor(sampler.Output)
			if err != nil {
				return nil, fmt.Errorf("animation %q channel %d: failed to read rotation values: %w", anim.Name, i, err)
			}
			frames := make([]model.Keyframe[mgl32.Quat], min(len(ticks), len(values)))
			for j := range frames {
				v := values[j]
				frames[j] = model.Keyframe[mgl32.Quat]{
					TickTime: ticks[j],
					Value:    mgl32.Quat{W: v[3], V: mgl32.Vec3{v[0], v[1], v[2]}},
				}
			}
			boneChannel.Rotation = model.NewChannelComponent(frames)

		case gltfAnimPathScale:
			frames, err := e.readVec3Frames(sampler.Output, ticks)
			if err != nil {
				return nil, fmt.Errorf("animation %q channel %d: failed to read scale values: %w", anim.Name, i, err)
			}
			boneChannel.Scale = model.NewChannelComponent(frames)

		case gltfAnimPathWeights:
			// Morph target weights are not supported; skip
			continue
		}
	}

	name := anim.Name
	if name == "" {
		name = fmt.Sprintf("animation_%d", animIndex)
	}

	return &model.Animation{
		Name:            name,
		TicksPerSecond:  e.tickRate,
		DurationInTicks: maxTick,
		Channels:        channels,
	}, nil
}

func (e *gltfAnimationExtractorImpl) ExtractAllAnimations(nodeToName map[int]string) ([]*model.Animation, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document loaded")
	}

	animations := make([]*model.Animation, len(doc.Animations))
	for i := range doc.Animations {
		animation, err := e.ExtractAnimation(i, nodeToName)
		if err != nil {
			return nil, fmt.Errorf("animation %d: %w", i, err)
		}
		animations[i] = animation
	}

	return animations, nil
}

// quantize converts a float timestamp in seconds onto the integer tick
// timeline.
func (e *gltfAnimationExtractorImpl) quantize(seconds float32) int {
	return int(math.Round(float64(seconds) * float64(e.tickRate)))
}

// readVec3Frames reads a vec3 output accessor and pairs it with the
// quantized ticks of its sampler input.
func (e *gltfAnimationExtractorImpl) readVec3Frames(accessorIndex int, ticks []int) ([]model.Keyframe[mgl32.Vec3], error) {
	values, err := e.parser.ReadVec3Accessor(accessorIndex)
	if err != nil {
		return nil, err
	}

	frames := make([]model.Keyframe[mgl32.Vec3], min(len(ticks), len(values)))
	for j := range frames {
		frames[j] = model.Keyframe[mgl32.Vec3]{TickTime: ticks[j], Value: mgl32.Vec3(values[j])}
	}
	return frames, nil
}
