package stage

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/marrow-engine/marrow/engine/core"
	"github.com/marrow-engine/marrow/engine/profiler"
)

// PoseWriteFunc receives one actor's skinning pose after a stage update.
// The pose slice is 64 bytes per bone and aliases the player's transform
// storage; it is valid only until the next Update, so consume or copy it
// inside the callback.
type PoseWriteFunc func(actorID uint64, pose []byte)

type stage struct {
	mu       *sync.RWMutex
	name     string
	registry map[uint64]Actor // actors by ID
	nextID   uint64

	// updatePool manages a bounded set of reusable goroutines for the
	// parallel per-actor update phase.
	updatePool    worker.DynamicWorkerPool
	updateWorkers int // stored so we can log/inspect the configured count
	queueSize     int

	prof        *profiler.Profiler
	poseWriters []PoseWriteFunc
}

// Stage defines the interface for an update-loop host owning a registry of
// Actors. Each Update fans the actors' animation players out across a worker
// pool, waits on a per-tick barrier, then serially drains every actor's
// skinning pose to the registered pose writers.
type Stage interface {
	// Name returns the stage's display name.
	//
	// Returns:
	//   - string: the stage name
	Name() string

	// Count returns the number of actors in the stage's registry.
	//
	// Returns:
	//   - int: the actor count
	Count() int

	// Add registers an actor with the stage, assigning it a unique ID.
	//
	// Parameters:
	//   - a: the actor to add
	//
	// Returns:
	//   - uint64: the assigned actor ID
	Add(a Actor) uint64

	// Get returns a registered actor by ID, or nil if not found.
	//
	// Parameters:
	//   - id: the actor ID
	//
	// Returns:
	//   - Actor: the actor or nil
	Get(id uint64) Actor

	// Remove removes an actor from the registry by ID. Unknown IDs are
	// ignored.
	//
	// Parameters:
	//   - id: the actor ID
	Remove(id uint64)

	// Actors returns a snapshot of the registered actors ordered by ID.
	//
	// Returns:
	//   - []Actor: the actors in ascending ID order
	Actors() []Actor

	// Update advances every enabled actor by elapsedSeconds. Phase 1 fans
	// the player updates across the worker pool with a per-tick barrier;
	// phase 2 serially snapshots each updated actor's skinning pose and
	// hands it to the registered pose writers in actor ID order.
	//
	// Parameters:
	//   - elapsedSeconds: the wall-clock time step in seconds
	Update(elapsedSeconds float32)

	// OnPoseWrite registers a callback receiving each actor's skinning pose
	// after every update. Callbacks run serially on the updating goroutine.
	//
	// Parameters:
	//   - fn: the pose writer callback
	OnPoseWrite(fn PoseWriteFunc)
}

var _ Stage = &stage{}

// NewStage creates a new Stage configured with the given options. The worker
// pool is sized from core.DefaultConfig unless overridden.
//
// Parameters:
//   - name: the stage's display name
//   - options: functional options to configure the stage
//
// Returns:
//   - Stage: the newly created stage
func NewStage(name string, options ...StageBuilderOption) Stage {
	defaults := core.DefaultConfig().Stage
	s := &stage{
		mu:            &sync.RWMutex{},
		name:          name,
		registry:      make(map[uint64]Actor),
		nextID:        1,
		updateWorkers: defaults.Workers,
		queueSize:     defaults.QueueSize,
	}
	for _, option := range options {
		option(s)
	}

	// Initialize the update pool after options so WithWorkers can override
	// the default. Idle workers exit after a second and respawn on demand.
	s.updatePool = worker.NewDynamicWorkerPool(s.updateWorkers, s.queueSize, 1*time.Second)

	core.LogDebug("stage created", "name", name, "workers", s.updateWorkers, "queue", s.queueSize)
	return s
}

func (s *stage) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *stage) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.registry)
}

func (s *stage) Add(a Actor) uint64 {
	if a == nil {
		return 0
	}
	a.SetID(atomic.AddUint64(&s.nextID, 1) - 1)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.registry[a.ID()] = a
	return a.ID()
}

func (s *stage) Get(id uint64) Actor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry[id]
}

func (s *stage) Remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.registry, id)
}

func (s *stage) Actors() []Actor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// snapshotLocked returns the registered actors in ascending ID order.
// Caller must hold at least a read lock.
func (s *stage) snapshotLocked() []Actor {
	actors := make([]Actor, 0, len(s.registry))
	for _, a := range s.registry {
		actors = append(actors, a)
	}
	sort.Slice(actors, func(i, j int) bool { return actors[i].ID() < actors[j].ID() })
	return actors
}

func (s *stage) Update(elapsedSeconds float32) {
	s.mu.RLock()
	actors := s.snapshotLocked()
	writers := make([]PoseWriteFunc, len(s.poseWriters))
	copy(writers, s.poseWriters)
	s.mu.RUnlock()

	// Phase 1: parallel player updates — submit each enabled actor's update
	// to the pool. Workers are reused across ticks (no goroutine spawn
	// overhead). A WaitGroup provides per-tick barrier sync since pool.Wait()
	// blocks until workers idle-exit which is unsuitable for frame-rate
	// workloads.
	var wg sync.WaitGroup
	taskID := 0
	for _, a := range actors {
		if !a.Enabled() || a.Player() == nil {
			continue
		}

		wg.Add(1)
		aCap := a // capture for closure
		id := taskID
		taskID++
		s.updatePool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				aCap.Update(elapsedSeconds)
				return nil, nil
			},
		})
	}
	wg.Wait()

	// Phase 2: serial pose drain — snapshot each actor's skinning matrices
	// and hand them to the writers in ID order so external sinks see a
	// stable sequence every tick.
	if len(writers) > 0 {
		for _, a := range actors {
			if !a.Enabled() || a.Player() == nil {
				continue
			}
			pose := a.PoseBytes()
			for _, fn := range writers {
				fn(a.ID(), pose)
			}
		}
	}

	if s.prof != nil {
		s.prof.Tick()
	}
}

func (s *stage) OnPoseWrite(fn PoseWriteFunc) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.poseWriters = append(s.poseWriters, fn)
}
