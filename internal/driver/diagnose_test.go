package driver_test

import (
	"testing"

	"corec/internal/ast"
	"corec/internal/backend/interp"
	"corec/internal/cfg"
	"corec/internal/driver"
	"corec/internal/layout"
	"corec/internal/source"
	"corec/internal/tir"
)

// buildReturnAddFile mirrors internal/cfg/cfg_test.go's fixture helpers:
// one function `return 1 + 2` with no explicit return-type annotation.
func buildReturnAddFile(t *testing.T) (*ast.Builder, ast.FileID) {
	t.Helper()
	b := ast.NewBuilder(ast.Hints{}, source.NewInterner())
	file := b.NewFile(source.Span{})

	one := b.Exprs.NewLiteral(source.Span{}, ast.ExprLitInt, b.StringsInterner.Intern("1"))
	two := b.Exprs.NewLiteral(source.Span{}, ast.ExprLitInt, b.StringsInterner.Intern("2"))
	add := b.Exprs.NewBinary(source.Span{}, ast.ExprBinaryAdd, one, two)
	ret := b.Stmts.NewReturn(source.Span{}, add)
	body := b.Stmts.NewBlock(source.Span{}, []ast.StmtID{ret})
	item := b.NewFn(b.StringsInterner.Intern("two"), nil, ast.NoTypeID, body, 0, nil, source.Span{})
	b.PushItem(file, item)

	return b, file
}

// Diagnose run to StageOptimise (the stage just before Codegen) over a single
// trivial function must produce no diagnostics and discover exactly one
// function body.
func TestDiagnose_ReturnAddLiteral_NoDiagnostics(t *testing.T) {
	env := tir.NewEnv()
	b, file := buildReturnAddFile(t)

	result := driver.Diagnose(env, b, file, driver.DiagnoseOptions{Stage: driver.StageOptimise})

	if result.Bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", result.Bag.Items())
	}
	if len(result.Fns) != 1 {
		t.Fatalf("expected exactly one discovered function, got %d", len(result.Fns))
	}
}

// Stopping at StageLower must run neither Typecheck nor Optimise: no CFG
// bodies are produced, only the ModDefId from lowering.
func TestDiagnose_StageLower_StopsBeforeOptimise(t *testing.T) {
	env := tir.NewEnv()
	b, file := buildReturnAddFile(t)

	result := driver.Diagnose(env, b, file, driver.DiagnoseOptions{Stage: driver.StageLower})

	if result.Bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", result.Bag.Items())
	}
	if result.Mod == 0 {
		t.Fatalf("expected a lowered ModDefId")
	}
	if len(result.Fns) != 0 {
		t.Fatalf("expected no Optimise-stage results when stopping at Lower, got %d", len(result.Fns))
	}
}

// Running through StageCodegen with a Backend wired in must actually
// interpret the function: `return 1 + 2` should evaluate to 3 through the
// reference interpreter, end to end from a bare ast.Builder.
func TestDiagnose_Codegen_DrivesInterpBackend(t *testing.T) {
	env := tir.NewEnv()
	b, file := buildReturnAddFile(t)

	store := cfg.NewIrTyStore()
	eng := layout.New(layout.X86_64LinuxGNU(), store, env, nil)
	bk := interp.New(env, eng)

	result := driver.Diagnose(env, b, file, driver.DiagnoseOptions{
		Stage:   driver.StageCodegen,
		Backend: bk,
	})
	if result.Bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", result.Bag.Items())
	}
	if len(result.Fns) != 1 {
		t.Fatalf("expected exactly one discovered function, got %d", len(result.Fns))
	}

	fnID := result.Fns[0].Fn
	funcHandle := bk.FuncIdOf(fnID)
	out, err := bk.Call(funcHandle, nil)
	if err != nil {
		t.Fatalf("unexpected interpretation error: %v", err)
	}
	if out.Kind != cfg.ConstInt || out.Int != 3 {
		t.Fatalf("expected Const(3), got %+v", out)
	}
}

// EnableTimings must record a per-stage report rather than leaving it nil.
func TestDiagnose_EnableTimings_RecordsReport(t *testing.T) {
	env := tir.NewEnv()
	b, file := buildReturnAddFile(t)

	result := driver.Diagnose(env, b, file, driver.DiagnoseOptions{
		Stage:         driver.StageOptimise,
		EnableTimings: true,
	})
	if result.Timing == nil {
		t.Fatalf("expected a timing report when EnableTimings is set")
	}
}
