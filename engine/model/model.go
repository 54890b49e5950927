package model

// skinnedModel is the implementation of the SkinnedModel interface.
type skinnedModel struct {
	name       string
	skeleton   *Skeleton
	animations []*Animation
	nameToAnim map[string]int
}

// SkinnedModel defines the interface for a loaded, animation-ready model:
// one skeleton plus the animations authored against it. It is produced by
// the Loader and is read-only thereafter, so a single instance may back any
// number of animation players.
type SkinnedModel interface {
	// Name retrieves the model identifier.
	//
	// Returns:
	//   - string: the model name
	Name() string

	// Skeleton retrieves the bone hierarchy for this model.
	//
	// Returns:
	//   - *Skeleton: the skeleton
	Skeleton() *Skeleton

	// BoneCount returns the number of bones in the model's skeleton.
	//
	// Returns:
	//   - int: the bone count
	BoneCount() int

	// Animations retrieves all animations bundled with this model.
	//
	// Returns:
	//   - []*Animation: the animations
	Animations() []*Animation

	// AnimationCount returns the number of available animations.
	//
	// Returns:
	//   - int: the animation count
	AnimationCount() int

	// AnimationNames returns the names of all animations in bundle order.
	//
	// Returns:
	//   - []string: the animation names
	AnimationNames() []string

	// GetAnimation returns an animation by name, or nil if not found.
	//
	// Parameters:
	//   - name: the animation name to search for
	//
	// Returns:
	//   - *Animation: the animation, or nil
	GetAnimation(name string) *Animation

	// GetAnimationIndex returns the index of an animation by name, or -1 if not found.
	//
	// Parameters:
	//   - name: the animation name to search for
	//
	// Returns:
	//   - int: the animation index, or -1 if not found
	GetAnimationIndex(name string) int
}

var _ SkinnedModel = &skinnedModel{}

// NewSkinnedModel creates a new SkinnedModel with the specified options applied.
// A skeleton is mandatory; every other option has a usable zero value.
//
// Parameters:
//   - options: a variadic list of SkinnedModelBuilderOption functions to configure the model
//
// Returns:
//   - SkinnedModel: the configured model
//   - error: ErrNilSkeleton if no skeleton option was supplied
func NewSkinnedModel(options ...SkinnedModelBuilderOption) (SkinnedModel, error) {
	m := &skinnedModel{
		nameToAnim: make(map[string]int),
	}
	for _, opt := range options {
		opt(m)
	}
	if m.skeleton == nil {
		return nil, ErrNilSkeleton
	}
	for i, a := range m.animations {
		m.nameToAnim[a.Name] = i
	}
	return m, nil
}

func (m *skinnedModel) Name() string {
	return m.name
}

func (m *skinnedModel) Skeleton() *Skeleton {
	return m.skeleton
}

func (m *skinnedModel) BoneCount() int {
	return m.skeleton.BoneCount()
}

func (m *skinnedModel) Animations() []*Animation {
	return m.animations
}

func (m *skinnedModel) AnimationCount() int {
	return len(m.animations)
}

func (m *skinnedModel) AnimationNames() []string {
	names := make([]string, len(m.animations))
	for i, a := range m.animations {
		names[i] = a.Name
	}
	return names
}

func (m *skinnedModel) GetAnimation(name string) *Animation {
	i, ok := m.nameToAnim[name]
	if !ok {
		return nil
	}
	return m.animations[i]
}

func (m *skinnedModel) GetAnimationIndex(name string) int {
	i, ok := m.nameToAnim[name]
	if !ok {
		return -1
	}
	return i
}
