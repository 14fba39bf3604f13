package driver

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"corec/internal/ast"
	"corec/internal/observ"
	"corec/internal/tir"
)

// Source names one ast.FileID to diagnose within a shared *ast.Builder —
// the multi-file analogue of Diagnose's single (builder, file) pair.
type Source struct {
	Name string
	File ast.FileID
}

// ParallelResult pairs one Source's name back onto its DiagnoseResult,
// since errgroup's goroutines complete in arbitrary order.
type ParallelResult struct {
	Name   string
	Result *DiagnoseResult
}

// ParallelDiagnose runs Diagnose over every source concurrently, bounded
// to jobs simultaneous goroutines (jobs <= 0 resolves to GOMAXPROCS), the
// same errgroup.WithContext + SetLimit shape
// surge/internal/driver/parallel.go's DiagnoseDirWithOptions used for its
// own directory-of-files batch, generalised here from a `.sg`-file
// listing (this package has no lexer/parser to produce one, spec.md §1's
// boundary) to a caller-supplied slice of already-built sources.
//
// Every goroutine shares env and builder. env is safe for this: every
// internal/tir.Store is its own mutex-guarded structure, so concurrent
// Diagnose calls allocate into disjoint regions of the same stores without
// racing. builder is safe too, but only because Diagnose's pipeline
// (ExpandFile/CheckFile/LowerFile) exclusively reads from it — nothing
// downstream of parsing ever mutates an ast.Builder — so a builder fully
// constructed before ParallelDiagnose starts needs no lock across readers.
//
// Unlike the teacher's batch driver, this function wires no ModuleCache or
// DiskCache: both are keyed by project.ModuleMeta.Path, and nothing in
// this pipeline constructs a ModuleMeta for a bare ast.FileID — there is
// no module-path/import-graph layer sitting in front of Diagnose yet. They
// remain available, unmodified, in modulecache.go/dcache.go for a future
// project-aware batch entry point that does build that metadata.
func ParallelDiagnose(ctx context.Context, env *tir.Env, builder *ast.Builder, sources []Source, opts DiagnoseOptions, jobs int) ([]ParallelResult, error) {
	if len(sources) == 0 {
		return nil, nil
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	results := make([]ParallelResult, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(sources)))

	for i, src := range sources {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			res := Diagnose(env, builder, src.File, opts)
			results[i] = ParallelResult{Name: src.Name, Result: res}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// MergeTimings collects the per-stage Timing of every result that has one
// into a single slice, one report per such result, in result order, for a
// caller that prints the --timings output of a whole parallel run together.
func MergeTimings(results []ParallelResult) []observ.Report {
	reports := make([]observ.Report, 0, len(results))
	for _, r := range results {
		if r.Result != nil && r.Result.Timing != nil {
			reports = append(reports, *r.Result.Timing)
		}
	}
	return reports
}
