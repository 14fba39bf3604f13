package buildpipeline

import (
	"time"

	"corec/internal/driver"
)

// Stage reuses internal/driver's own stage vocabulary (Parse/Expand/
// SemanticCheck/Lower/Typecheck/Optimise/Codegen) rather than keeping a
// second, divergent one — surge/internal/buildpipeline.Stage named its own
// parse/diagnose/lower/build/link/run set because its pipeline (lexer →
// parser → sema → HIR → MIR → LLVM/VM) had stages internal/driver didn't
// know about; here the two packages drive the same pipeline, so one
// vocabulary is enough.
type Stage = driver.Stage

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the source is waiting to start.
	StatusQueued Status = "queued"
	// StatusWorking indicates the source is currently being driven.
	StatusWorking Status = "working"
	// StatusDone indicates the source finished with no diagnostics errors.
	StatusDone Status = "done"
	// StatusError indicates the source finished with diagnostics errors,
	// or that Run itself failed before reaching a result.
	StatusError Status = "error"
)

// Event reports progress for one source (or for the overall run when
// Source is empty).
type Event struct {
	Source  string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. A nil sink is always safe to pass
// to Run — every emit call checks for it first.
type ProgressSink interface {
	OnEvent(Event)
}

// Timings holds per-stage durations, aggregated from one or more
// observ.Report values by recordTimings (run.go).
type Timings struct {
	stages map[Stage]time.Duration
}

func (t *Timings) ensure() {
	if t.stages == nil {
		t.stages = make(map[Stage]time.Duration)
	}
}

// Set stores a duration for the given stage.
func (t *Timings) Set(stage Stage, dur time.Duration) {
	if t == nil {
		return
	}
	t.ensure()
	t.stages[stage] = dur
}

// Has reports whether a duration for stage is recorded.
func (t Timings) Has(stage Stage) bool {
	if t.stages == nil {
		return false
	}
	_, ok := t.stages[stage]
	return ok
}

// Duration returns the recorded duration for stage.
func (t Timings) Duration(stage Stage) time.Duration {
	if t.stages == nil {
		return 0
	}
	return t.stages[stage]
}

// Sum returns the sum of durations across the provided stages.
func (t Timings) Sum(stages ...Stage) time.Duration {
	if t.stages == nil {
		return 0
	}
	var total time.Duration
	for _, stage := range stages {
		total += t.stages[stage]
	}
	return total
}
