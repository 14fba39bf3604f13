// Package driver implements spec.md §5's stage orchestration: it drives a
// source through Expand, SemanticCheck, Lower, Typecheck, Optimise and
// Codegen, collecting diagnostics into one diag.Bag per source the way
// surge/internal/driver.DiagnoseDirWithOptions drives its own lexer/parser/
// sema/hir/mono/llvm pipeline. The pipeline this package drives differs —
// there is no lexer/parser stage (ast.Builder/ast.FileID arrive pre-built,
// spec.md §1's explicit boundary) and Codegen targets the TIR->CFG->ABI->
// backend.Backend pipeline instead of HIR->MIR->LLVM — but the
// orchestration shape (one Bag per source, a Stage cutoff, optional
// per-phase timings) is carried over unchanged.
package driver

import (
	"fmt"

	"corec/internal/abi"
	"corec/internal/ast"
	"corec/internal/attrs"
	"corec/internal/backend"
	"corec/internal/cfg"
	"corec/internal/check"
	"corec/internal/diag"
	"corec/internal/layout"
	"corec/internal/lower"
	"corec/internal/observ"
	"corec/internal/scope"
	"corec/internal/semcheck"
	"corec/internal/tir"
)

// DiagnoseOptions configures a single-source Diagnose run.
type DiagnoseOptions struct {
	// Stage bounds how far the pipeline runs; zero value means "run every
	// stage" (StageCodegen).
	Stage Stage

	// MaxDiagnostics caps the Bag's capacity; zero means this package's
	// own default ceiling.
	MaxDiagnostics int

	// EnableTimings records a per-stage observ.Timer report on the
	// result, the same opt-in surge/internal/driver.DiagnoseOptions
	// exposes.
	EnableTimings bool

	// CallingConvention is used to classify every function's FnAbi at the
	// Codegen stage.
	CallingConvention abi.CallingConvention

	// Backend, if non-nil, receives every discovered function's emitted
	// blocks at the Codegen stage (spec.md §4.9). Left nil, Codegen still
	// runs layout/ABI classification but performs no emission.
	Backend backend.Backend

	// Target selects the layout engine's ABI target. Zero value resolves
	// to layout.X86_64LinuxGNU(), the only target this engine currently
	// implements.
	Target layout.Target

	// PhaseObserver, if non-nil, receives a PhaseStart/PhaseEnd pair
	// around every stage Diagnose actually runs, letting a caller (e.g.
	// internal/buildpipeline) drive its own per-file progress reporting
	// off the same boundaries EnableTimings measures.
	PhaseObserver PhaseObserver
}

// FnResult is one discovered function's Optimise/Codegen-stage output.
type FnResult struct {
	Fn   tir.FnDefId
	Body cfg.Body
	Abi  abi.FnAbi
}

// DiagnoseResult is everything one Diagnose call produced.
type DiagnoseResult struct {
	Bag *diag.Bag
	Env *tir.Env
	Mod tir.ModDefId

	Fns []FnResult

	Timing *observ.Report
}

// stageTimer is the Enable/disable-agnostic timing surface diagnose.go and
// parallel.go share, following surge/internal/driver/parallel.go's own
// begin/end/reportTimings closures-over-a-nil-Timer idiom so call sites
// never branch on EnableTimings themselves.
type stageTimer struct {
	timer *observ.Timer
}

func newStageTimer(enabled bool) *stageTimer {
	if !enabled {
		return &stageTimer{}
	}
	return &stageTimer{timer: observ.NewTimer()}
}

func (t *stageTimer) begin(name string) int {
	if t.timer == nil {
		return -1
	}
	return t.timer.Begin(name)
}

func (t *stageTimer) end(idx int, note string) {
	if t.timer == nil || idx < 0 {
		return
	}
	t.timer.End(idx, note)
}

func (t *stageTimer) report() *observ.Report {
	if t.timer == nil {
		return nil
	}
	r := t.timer.Report()
	return &r
}

// Diagnose drives file through the pipeline up to opts.Stage, sharing env
// across every stage (spec.md §3's stores are process-wide: Diagnose never
// creates a second Env for the same source).
func Diagnose(env *tir.Env, builder *ast.Builder, file ast.FileID, opts DiagnoseOptions) *DiagnoseResult {
	if opts.Stage == "" {
		opts.Stage = StageCodegen
	}
	maxDiag := opts.MaxDiagnostics
	if maxDiag <= 0 {
		maxDiag = 256
	}

	bag := diag.NewBag(maxDiag)
	result := &DiagnoseResult{Bag: bag, Env: env}
	timer := newStageTimer(opts.EnableTimings)
	defer func() { result.Timing = timer.report() }()

	notifyPhase(opts.PhaseObserver, "expand", PhaseStart)
	expandIdx := timer.begin("expand")
	expander := attrs.NewExpander(builder, bag)
	expander.ExpandFile(file)
	attrStore := expander.Store()
	timer.end(expandIdx, fmt.Sprintf("attrs=%d", attrStore.Len()))
	notifyPhase(opts.PhaseObserver, "expand", PhaseEnd)
	if !StageExpand.reaches(opts.Stage) {
		return result
	}

	notifyPhase(opts.PhaseObserver, "semantic_check", PhaseStart)
	semIdx := timer.begin("semantic_check")
	semcheck.New(builder, bag).CheckFile(file)
	timer.end(semIdx, "")
	notifyPhase(opts.PhaseObserver, "semantic_check", PhaseEnd)
	if bag.HasErrors() || !StageSemanticCheck.reaches(opts.Stage) {
		return result
	}

	notifyPhase(opts.PhaseObserver, "lower", PhaseStart)
	lowerIdx := timer.begin("lower")
	l := lower.New(env, builder, attrStore, bag)
	mod := l.LowerFile(file)
	result.Mod = mod
	timer.end(lowerIdx, "")
	notifyPhase(opts.PhaseObserver, "lower", PhaseEnd)
	if bag.HasErrors() || !StageLower.reaches(opts.Stage) {
		return result
	}

	isForeign := func(fn tir.FnDefId) bool {
		node, ok := env.AstInfo.FnDefOf(fn)
		return ok && attrStore.IsForeign(node)
	}
	discoverer := cfg.NewDiscoverer(env, isForeign)
	discoverer.Run()
	fns := discoverer.Fns()

	notifyPhase(opts.PhaseObserver, "typecheck", PhaseStart)
	typeIdx := timer.begin("typecheck")
	exprTypes := make(map[tir.TermId]tir.TyId)
	defaults := fnDefaults(l)
	for _, fn := range fns {
		typecheckFn(env, fn, defaults, exprTypes, bag)
	}
	timer.end(typeIdx, fmt.Sprintf("fns=%d", len(fns)))
	notifyPhase(opts.PhaseObserver, "typecheck", PhaseEnd)
	if !StageTypecheck.reaches(opts.Stage) {
		return result
	}

	notifyPhase(opts.PhaseObserver, "optimise", PhaseStart)
	optIdx := timer.begin("optimise")
	store := cfg.NewIrTyStore()
	resolver := cfg.NewTyResolver(env, store)
	cfgLowering := cfg.NewLowering(env, store, resolver, exprTypes, bag, nil)
	bodies := make(map[tir.FnDefId]cfg.Body, len(fns))
	for _, fn := range fns {
		body := cfgLowering.LowerFn(fn)
		cfg.FoldConstants(env, &body)
		bodies[fn] = body
	}
	timer.end(optIdx, "")
	notifyPhase(opts.PhaseObserver, "optimise", PhaseEnd)
	if !StageOptimise.reaches(opts.Stage) {
		for _, fn := range fns {
			result.Fns = append(result.Fns, FnResult{Fn: fn, Body: bodies[fn]})
		}
		return result
	}

	notifyPhase(opts.PhaseObserver, "codegen", PhaseStart)
	codegenIdx := timer.begin("codegen")
	target := opts.Target
	if target.PtrSize == 0 {
		target = layout.X86_64LinuxGNU()
	}
	eng := layout.New(target, store, env, attrStore)
	classifier := abi.NewClassifier(env, resolver, eng)
	for _, fn := range fns {
		def := env.FnDefs.Get(fn).Data
		fnAbi := classifier.ClassifyFn(def.Ty, opts.CallingConvention)
		body := bodies[fn]
		if opts.Backend != nil && def.BodyKind == tir.FnBodyDefined {
			emitToBackend(opts.Backend, fn, fnAbi, body)
		}
		result.Fns = append(result.Fns, FnResult{Fn: fn, Body: body, Abi: fnAbi})
	}
	timer.end(codegenIdx, fmt.Sprintf("fns=%d", len(fns)))
	notifyPhase(opts.PhaseObserver, "codegen", PhaseEnd)

	return result
}

// notifyPhase is a nil-safe PhaseObserver.Call, avoiding a nil check at
// every one of Diagnose's stage boundaries.
func notifyPhase(obs PhaseObserver, name string, status PhaseStatus) {
	if obs == nil {
		return
	}
	obs(PhaseEvent{Name: name, Status: status})
}

// emitToBackend drives bk through the push-style Backend emission sequence
// spec.md §4.9 defines, the same order backend/interp's own tests use.
func emitToBackend(bk backend.Backend, fn tir.FnDefId, sig abi.FnAbi, body cfg.Body) backend.FuncId {
	f := bk.StartFunction(fn, sig)
	bk.EmitAllocas(f, &body)
	bk.EmitParamStores(f, sig)
	for _, id := range bk.BlockOrder(&body) {
		bk.EmitBlock(f, id)
		blk := body.Blocks[id]
		for _, stmt := range blk.Statements {
			_ = bk.EmitStatement(f, stmt)
		}
		_ = bk.EmitTerminator(f, blk.Terminator)
	}
	bk.EndFunction(f)
	return f
}

// fnDefaults builds check.Defaults from l's own prelude DataDefIds (spec.md
// §4.3.2's "i32 for integers, f64 for floats" unsuffixed-literal rule),
// reusing internal/lower.Lowerer.PrimitiveDataDef rather than keeping a
// second, divergent primitive-name table in this package.
func fnDefaults(l *lower.Lowerer) check.Defaults {
	get := func(name string) tir.DataDefId {
		id, _ := l.PrimitiveDataDef(name)
		return id
	}
	return check.Defaults{
		Int:   get("i32"),
		Float: get("f64"),
		Char:  get("char"),
		Str:   get("str"),
		Bool:  get("bool"),
		// No dedicated `unit` primitive name exists; Checker only consults
		// Unit when defaulting an unsuffixed Lit, which never produces a
		// unit literal, so this slot is unused in practice.
		Unit: get("i32"),
	}
}

// fnScope adapts one function's parameters into check.ScopeLookupDecl.
// internal/scope.Context's Binding carries no type/value payload (only
// Name/Kind/Origin — see internal/scope/context.go), so this package keeps
// the decl-type/bound-value maps itself and uses Context only for its
// push/pop scope-stack bookkeeping (FnScope). Only the top-level
// function-parameter scope is modelled; nested block scopes (shadowing a
// parameter with a `let`) are not — internal/check exposes no caller hook
// for re-entering scope mid-body today (see DESIGN.md).
type fnScope struct {
	decls  map[tir.SymbolId]tir.TyId
	values map[tir.SymbolId]tir.TermId
}

func (s *fnScope) DeclTypeOf(sym tir.SymbolId) (tir.TyId, bool) {
	ty, ok := s.decls[sym]
	return ty, ok
}

func (s *fnScope) ValueOf(sym tir.SymbolId) (tir.TermId, bool) {
	v, ok := s.values[sym]
	return v, ok
}

// typecheckFn runs check.Checker over fn's body, merging its resolved
// per-term types into exprTypes (internal/cfg.NewLowering's input) and
// translating any check.Error into a diag.Diagnostic — the separation
// internal/check/errors.go's doc comment names explicitly as this
// package's job.
func typecheckFn(env *tir.Env, fn tir.FnDefId, defaults check.Defaults, exprTypes map[tir.TermId]tir.TyId, bag *diag.Bag) {
	def := env.FnDefs.Get(fn).Data
	if def.BodyKind != tir.FnBodyDefined {
		return
	}

	ctx := scope.NewContext()
	sc := &fnScope{decls: make(map[tir.SymbolId]tir.TyId), values: make(map[tir.SymbolId]tir.TermId)}
	for _, p := range env.Params.All(def.Ty.Params) {
		sc.decls[p.Name] = p.Ty
	}

	_, _ = scope.EnterScope(ctx, scope.FnScope(fn), func() (struct{}, error) {
		for name := range sc.decls {
			ctx.AddBinding(scope.Binding{Name: name, Kind: scope.BindingStackMember})
		}
		checker := check.NewChecker(env, sc, defaults)
		_, err := checker.Infer(def.Body)
		for term, ty := range checker.ExprTypes {
			exprTypes[term] = ty
		}
		if err != nil {
			bag.Add(&diag.Diagnostic{
				Severity: diag.SevError,
				Code:     diag.SemaTypeMismatch,
				Message:  err.Error(),
			})
		}
		return struct{}{}, nil
	})
}
