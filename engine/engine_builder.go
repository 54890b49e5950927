package engine

import (
	"time"

	"github.com/marrow-engine/marrow/engine/stage"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithTickRate sets the engine tick rate in updates per second.
// Registered stages are updated at this rate.
// Values <= 0 will be treated as the default (60Hz).
//
// Parameters:
//   - ups: target updates per second (default 60)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(ups float64) EngineBuilderOption {
	return func(e *engine) {
		if ups <= 0 {
			ups = 60.0
		}
		e.engineTickRate = time.Second / time.Duration(ups)
	}
}

// WithStage registers a stage at the given priority key during engine
// construction. Stages are updated in ascending key order each tick.
//
// Parameters:
//   - key: the priority determining update order (lower updates first)
//   - s: the Stage to register
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithStage(key int, s stage.Stage) EngineBuilderOption {
	return func(e *engine) {
		e.stages[key] = s
	}
}
