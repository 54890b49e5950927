package stage

import (
	"github.com/marrow-engine/marrow/engine/core"
	"github.com/marrow-engine/marrow/engine/profiler"
)

// StageBuilderOption is a functional option for configuring a Stage during construction.
type StageBuilderOption func(*stage)

// WithWorkers sets the number of worker goroutines used during the parallel
// actor update phase. Nonpositive values are ignored and the default
// (NumCPU-1, minimum 1) is kept.
//
// Parameters:
//   - n: the worker count
//
// Returns:
//   - StageBuilderOption: functional option to set the worker count
func WithWorkers(n int) StageBuilderOption {
	return func(s *stage) {
		if n <= 0 {
			return
		}
		s.updateWorkers = n
	}
}

// WithQueueSize sets the update pool's task queue capacity. Nonpositive
// values are ignored.
//
// Parameters:
//   - n: the queue capacity
//
// Returns:
//   - StageBuilderOption: functional option to set the queue size
func WithQueueSize(n int) StageBuilderOption {
	return func(s *stage) {
		if n <= 0 {
			return
		}
		s.queueSize = n
	}
}

// WithStageConfig applies a loaded stage configuration section, setting the
// worker count and queue size together.
//
// Parameters:
//   - cfg: the stage configuration section
//
// Returns:
//   - StageBuilderOption: functional option to apply the configuration
func WithStageConfig(cfg core.StageConfig) StageBuilderOption {
	return func(s *stage) {
		if cfg.Workers > 0 {
			s.updateWorkers = cfg.Workers
		}
		if cfg.QueueSize > 0 {
			s.queueSize = cfg.QueueSize
		}
	}
}

// WithProfiler attaches a profiler ticked once per stage update.
//
// Parameters:
//   - p: the profiler to attach
//
// Returns:
//   - StageBuilderOption: functional option to attach the profiler
func WithProfiler(p *profiler.Profiler) StageBuilderOption {
	return func(s *stage) {
		s.prof = p
	}
}
