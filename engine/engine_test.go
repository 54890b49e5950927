package engine

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/marrow-engine/marrow/engine/stage"
)

// countingStage is a Stage stub that records how many updates it receives.
type countingStage struct {
	stage.Stage
	updates atomic.Int64
}

func (c *countingStage) Update(elapsedSeconds float32) {
	c.updates.Add(1)
}

func TestEngineStageRegistry(t *testing.T) {
	a := &countingStage{}
	b := &countingStage{}
	e := NewEngine(WithStage(0, a))
	e.AddStage(5, b)

	if e.Stage(0) != a || e.Stage(5) != b {
		t.Fatalf("stage lookup mismatch")
	}
	if e.Stage(3) != nil {
		t.Errorf("unknown key should return nil")
	}

	stages := e.Stages()
	if len(stages) != 2 {
		t.Fatalf("expected 2 stages, got %d", len(stages))
	}
	// The returned map is a copy; mutating it must not affect the engine.
	delete(stages, 0)
	if e.Stage(0) == nil {
		t.Errorf("Stages() copy mutation leaked into the engine")
	}

	e.RemoveStage(5)
	if e.Stage(5) != nil {
		t.Errorf("removed stage still retrievable")
	}
}

func TestEngineDrivesStages(t *testing.T) {
	s := &countingStage{}
	e := NewEngine(WithStage(0, s), WithTickRate(200))

	e.Start()
	defer e.Quit()

	deadline := time.Now().Add(2 * time.Second)
	for s.updates.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if s.updates.Load() == 0 {
		t.Fatalf("stage received no updates")
	}
}

func TestEngineQuitUnblocksRun(t *testing.T) {
	e := NewEngine(WithTickRate(200))

	done := make(chan struct{})
	go func() {
		e.Run()
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	e.Quit()
	e.Quit() // idempotent

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not return after Quit")
	}
}
