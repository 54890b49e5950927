package model

// SkinnedModelBuilderOption is a functional option for configuring a SkinnedModel via NewSkinnedModel.
type SkinnedModelBuilderOption func(*skinnedModel)

// WithName is an option builder that sets the name of the SkinnedModel.
//
// Parameters:
//   - name: the model identifier
//
// Returns:
//   - SkinnedModelBuilderOption: a function that applies the name option to a model
func WithName(name string) SkinnedModelBuilderOption {
	return func(m *skinnedModel) {
		m.name = name
	}
}

// WithSkeleton is an option builder that sets the bone hierarchy of the SkinnedModel.
//
// Parameters:
//   - skeleton: the skeleton to set
//
// Returns:
//   - SkinnedModelBuilderOption: a function that applies the skeleton option to a model
func WithSkeleton(skeleton *Skeleton) SkinnedModelBuilderOption {
	return func(m *skinnedModel) {
		m.skeleton = skeleton
	}
}

// WithAnimations is an option builder that sets the animations of the SkinnedModel.
//
// Parameters:
//   - animations: the animations to set
//
// Returns:
//   - SkinnedModelBuilderOption: a function that applies the animations option to a model
func WithAnimations(animations []*Animation) SkinnedModelBuilderOption {
	return func(m *skinnedModel) {
		m.animations = animations
	}
}

// WithAnimation is an option builder that appends a single animation to the SkinnedModel.
//
// Parameters:
//   - animation: the animation to append
//
// Returns:
//   - SkinnedModelBuilderOption: a function that applies the animation option to a model
func WithAnimation(animation *Animation) SkinnedModelBuilderOption {
	return func(m *skinnedModel) {
		m.animations = append(m.animations, animation)
	}
}
