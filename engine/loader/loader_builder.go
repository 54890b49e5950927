package loader

// LoaderBuilderOption is a function that modifies the properties of a Loader
// during creation.
type LoaderBuilderOption func(*loader)

// WithTickRate sets the tick rate animations are quantized to on import.
// Nonpositive rates fall back to DefaultTickRate.
//
// Parameters:
//   - tickRate: ticks per second for imported clips
//
// Returns:
//   - LoaderBuilderOption: the option
func WithTickRate(tickRate int) LoaderBuilderOption {
	return func(l *loader) {
		if tickRate > 0 {
			l.tickRate = tickRate
		}
	}
}

// WithPostImportHook appends a hook to the post-import chain at construction
// time. Hooks run in registration order.
//
// Parameters:
//   - fn: the hook to append
//
// Returns:
//   - LoaderBuilderOption: the option
func WithPostImportHook(fn PostImportHook) LoaderBuilderOption {
	return func(l *loader) {
		l.hooks = append(l.hooks, fn)
	}
}
