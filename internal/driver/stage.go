package driver

// Stage names one phase of the corec pipeline. It mirrors
// hash-pipeline/src/settings.rs's CompilerStageKind enum (Parse, Expand,
// SemanticCheck, Typecheck, Lower, Optimise, Codegen) and is kept as a
// named string rather than an int, following
// surge/internal/buildpipeline.Stage's convention instead of the teacher's
// own int-based driver.DiagnoseStage — string stages read directly in
// --timings output without a lookup table.
//
// Execution order in this package differs from the name order above:
// Typecheck here runs check.Checker over already-lowered TIR terms
// (typecheckFn in diagnose.go creates one Checker per lowered function),
// so it must follow Lower, not precede it as in the
// original AST-typechecks-then-lowers-to-HIR pipeline. stageOrder below
// reflects the order Diagnose actually runs stages in.
type Stage string

const (
	StageParse         Stage = "parse"
	StageExpand        Stage = "expand"
	StageSemanticCheck Stage = "semantic_check"
	StageLower         Stage = "lower"
	StageTypecheck     Stage = "typecheck"
	StageOptimise      Stage = "optimise"
	StageCodegen       Stage = "codegen"
)

func (s Stage) String() string { return string(s) }

// stageOrder is the sequence Diagnose executes stages in. StageParse is
// listed for completeness (it names the external collaborator that
// produces the ast.Builder/ast.FileID Diagnose is handed) but Diagnose
// itself never runs it.
var stageOrder = []Stage{
	StageParse,
	StageExpand,
	StageSemanticCheck,
	StageLower,
	StageTypecheck,
	StageOptimise,
	StageCodegen,
}

func stageIndex(s Stage) int {
	for i, st := range stageOrder {
		if st == s {
			return i
		}
	}
	return len(stageOrder) - 1
}

// reaches reports whether running up to target would execute s.
func (s Stage) reaches(target Stage) bool {
	return stageIndex(s) <= stageIndex(target)
}
