// Package buildpipeline orchestrates a multi-source internal/driver run,
// reporting per-source progress the way surge/internal/buildpipeline
// reported per-file build progress. The pipeline it wraps differs: the
// teacher package drove its own lexer → parser → sema → HIR → MIR →
// LLVM/VM build, emitting parse/diagnose/lower/build/link/run stage
// events off that concrete backend. This package has no lexer/parser
// (internal/ast's doc comment: that collaborator is out of scope) and no
// concrete backend of its own, so it drives internal/driver.Diagnose /
// ParallelDiagnose directly over caller-supplied ast.Builder sources and
// reports internal/driver's own Expand/SemanticCheck/Lower/Typecheck/
// Optimise/Codegen stage set instead of inventing a parallel one.
package buildpipeline

import (
	"context"
	"fmt"
	"time"

	"corec/internal/ast"
	"corec/internal/driver"
	"corec/internal/tir"
)

// Request configures one Run call.
type Request struct {
	// Env is shared across every source the way a single compilation unit
	// shares one tir.Env (see driver.ParallelDiagnose's doc comment on why
	// this is safe to share across goroutines).
	Env *tir.Env
	// Builder holds every ast.FileID named by Sources.
	Builder *ast.Builder
	// Sources names the files to diagnose. Empty is an error.
	Sources []driver.Source
	// Options configures every source's Diagnose/ParallelDiagnose call
	// identically — Run has no notion of per-source stage overrides.
	Options driver.DiagnoseOptions
	// Jobs bounds concurrency; <= 0 resolves to GOMAXPROCS (see
	// driver.ParallelDiagnose).
	Jobs int
	// Progress, if non-nil, receives queued/working/done/error events per
	// source plus one overall working/done event.
	Progress ProgressSink
}

// Result is everything one Run call produced.
type Result struct {
	Results []driver.ParallelResult
	Timings Timings
}

// Run drives every req.Sources entry through internal/driver, reporting
// progress to req.Progress as it goes. It always returns whatever partial
// Results ParallelDiagnose produced, even on error, the way
// surge/internal/buildpipeline.Compile returned partial CompileResult on
// failure so callers could still report what ran.
func Run(ctx context.Context, req *Request) (Result, error) {
	var result Result
	if req == nil {
		return result, fmt.Errorf("buildpipeline: missing request")
	}
	if len(req.Sources) == 0 {
		return result, fmt.Errorf("buildpipeline: no sources to run")
	}

	emitQueued(req.Progress, req.Sources)
	emitOverall(req.Progress, req.Options.Stage, StatusWorking, nil)

	results, err := driver.ParallelDiagnose(ctx, req.Env, req.Builder, req.Sources, req.Options, req.Jobs)
	result.Results = results
	if err != nil {
		emitOverall(req.Progress, req.Options.Stage, StatusError, err)
		return result, err
	}

	var failed int
	for _, r := range results {
		recordTimings(&result.Timings, r)
		if r.Result != nil && r.Result.Bag != nil && r.Result.Bag.HasErrors() {
			failed++
			emitSource(req.Progress, r.Name, req.Options.Stage, StatusError, fmt.Errorf("%s: diagnostics reported errors", r.Name))
			continue
		}
		emitSource(req.Progress, r.Name, req.Options.Stage, StatusDone, nil)
	}

	if failed > 0 {
		err = fmt.Errorf("buildpipeline: %d of %d sources reported diagnostics errors", failed, len(results))
		emitOverall(req.Progress, req.Options.Stage, StatusError, err)
		return result, err
	}

	emitOverall(req.Progress, req.Options.Stage, StatusDone, nil)
	return result, nil
}

// recordTimings folds one source's observ.Report into agg, keyed by stage
// name — driver.Diagnose's stageTimer phase names ("expand",
// "semantic_check", "lower", "typecheck", "optimise", "codegen") are
// exactly driver.Stage's string values, so no translation table is
// needed.
func recordTimings(agg *Timings, r driver.ParallelResult) {
	if r.Result == nil || r.Result.Timing == nil {
		return
	}
	for _, phase := range r.Result.Timing.Phases {
		existing := agg.Duration(Stage(phase.Name))
		agg.Set(Stage(phase.Name), existing+durationFromMillis(phase.DurationMS))
	}
}

func durationFromMillis(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}

func emitQueued(sink ProgressSink, sources []driver.Source) {
	if sink == nil {
		return
	}
	for _, src := range sources {
		sink.OnEvent(Event{Source: src.Name, Status: StatusQueued})
	}
}

func emitSource(sink ProgressSink, name string, stage Stage, status Status, err error) {
	if sink == nil {
		return
	}
	sink.OnEvent(Event{Source: name, Stage: stage, Status: status, Err: err})
}

func emitOverall(sink ProgressSink, stage Stage, status Status, err error) {
	if sink == nil {
		return
	}
	sink.OnEvent(Event{Stage: stage, Status: status, Err: err})
}
