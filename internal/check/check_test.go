package check

import (
	"testing"

	"corec/internal/tir"
)

// fakeScope is a minimal ScopeLookupDecl for tests: a flat map of symbol to
// either a declared type or a bound value, standing in for
// internal/scope.Context without pulling it into this package's tests.
type fakeScope struct {
	decls  map[tir.SymbolId]tir.TyId
	values map[tir.SymbolId]tir.TermId
}

func newFakeScope() *fakeScope {
	return &fakeScope{decls: map[tir.SymbolId]tir.TyId{}, values: map[tir.SymbolId]tir.TermId{}}
}

func (s *fakeScope) DeclTypeOf(sym tir.SymbolId) (tir.TyId, bool) {
	ty, ok := s.decls[sym]
	return ty, ok
}

func (s *fakeScope) ValueOf(sym tir.SymbolId) (tir.TermId, bool) {
	v, ok := s.values[sym]
	return v, ok
}

// testFixture wires an Env, a primitive prelude (Int/Float/Char/Str/Bool/
// Unit DataDefs, as a real lower pass would register), and a Checker.
type testFixture struct {
	env     *tir.Env
	scope   *fakeScope
	checker *Checker
}

func newFixture() *testFixture {
	env := tir.NewEnv()
	prim := func(name string, kind tir.PrimKind) tir.DataDefId {
		sym := env.Symbols.FromName(env.Idents.InternIdent(name), tir.Generated())
		return env.DataDefs.Create(tir.DataDef{
			Name:      sym,
			CtorsKind: tir.CtorsPrimitive,
			Primitive: tir.PrimCtorInfo{Kind: kind},
		}, tir.Generated())
	}
	defaults := Defaults{
		Int:   prim("i32", tir.PrimNumeric),
		Float: prim("f64", tir.PrimNumeric),
		Char:  prim("char", tir.PrimChar),
		Str:   prim("str", tir.PrimStr),
		Bool:  prim("bool", tir.PrimNumeric),
		Unit:  prim("unit", tir.PrimNumeric),
	}
	scope := newFakeScope()
	return &testFixture{env: env, scope: scope, checker: NewChecker(env, scope, defaults)}
}

func (f *testFixture) intLit(v uint64) tir.TermId {
	return f.env.Terms.Create(tir.Term{Kind: tir.TermLit, Lit: tir.Lit{Kind: tir.LitInt, Int: tir.IntLit{Value: v}}}, tir.Generated())
}

func (f *testFixture) floatLit(v float64) tir.TermId {
	return f.env.Terms.Create(tir.Term{Kind: tir.TermLit, Lit: tir.Lit{Kind: tir.LitFloat, Float: tir.FloatLit{Value: v}}}, tir.Generated())
}

func (f *testFixture) dataTy(def tir.DataDefId) tir.TyId {
	return f.env.Tys.Create(tir.Ty{Kind: tir.TyData, Data: tir.DataTy{Def: def}}, tir.Generated())
}

func TestUnsuffixedIntLiteralDefaultsToI32(t *testing.T) {
	f := newFixture()
	lit := f.intLit(3)

	ty, err := f.checker.Infer(lit)
	if err != nil {
		t.Fatalf("Infer: %v", err)
	}
	// Infer allocates a fresh Ty node each time it defaults, so compare
	// structurally rather than by id.
	got := f.env.Tys.Get(ty).Data
	if got.Kind != tir.TyData || got.Data.Def != f.checker.Defaults.Int {
		t.Fatalf("Infer(unsuffixed int) = %+v, want Data{Int}", got)
	}
}

func TestUnsuffixedIntLiteralAdoptsAnnotation(t *testing.T) {
	f := newFixture()
	lit := f.intLit(3)
	floatTy := f.dataTy(f.checker.Defaults.Float)

	if err := f.checker.Check(lit, floatTy); err != nil {
		t.Fatalf("Check: %v", err)
	}
	if f.checker.ExprTypes[lit] != floatTy {
		t.Fatalf("literal did not adopt numeric annotation: got %d, want %d", f.checker.ExprTypes[lit], floatTy)
	}
}

func TestCharStringBoolLiteralsHaveFixedTypes(t *testing.T) {
	f := newFixture()

	charLit := f.env.Terms.Create(tir.Term{Kind: tir.TermLit, Lit: tir.Lit{Kind: tir.LitChar, Char: 'x'}}, tir.Generated())
	ty, err := f.checker.Infer(charLit)
	if err != nil {
		t.Fatalf("Infer(char): %v", err)
	}
	got := f.env.Tys.Get(ty).Data
	if got.Kind != tir.TyData || got.Data.Def != f.checker.Defaults.Char {
		t.Fatalf("char literal type = %+v, want Defaults.Char", got)
	}

	boolLit := f.env.Terms.Create(tir.Term{Kind: tir.TermLit, Lit: tir.Lit{Kind: tir.LitBool, Bool: true}}, tir.Generated())
	ty, err = f.checker.Infer(boolLit)
	if err != nil {
		t.Fatalf("Infer(bool): %v", err)
	}
	got = f.env.Tys.Get(ty).Data
	if got.Kind != tir.TyData || got.Data.Def != f.checker.Defaults.Bool {
		t.Fatalf("bool literal type = %+v, want Defaults.Bool", got)
	}
}

func TestVariableWithDeclaredTypeUnifiesAgainstAnnotation(t *testing.T) {
	f := newFixture()
	sym := f.env.Symbols.FromName(f.env.Idents.InternIdent("x"), tir.Generated())
	intTy := f.dataTy(f.checker.Defaults.Int)
	f.scope.decls[sym] = intTy

	varTerm := f.env.Terms.Create(tir.Term{Kind: tir.TermVar, Var: sym}, tir.Generated())
	if err := f.checker.Check(varTerm, intTy); err != nil {
		t.Fatalf("Check(var, matching annotation): %v", err)
	}

	floatTy := f.dataTy(f.checker.Defaults.Float)
	varTerm2 := f.env.Terms.Create(tir.Term{Kind: tir.TermVar, Var: sym}, tir.Generated())
	if err := f.checker.Check(varTerm2, floatTy); err == nil {
		t.Fatal("Check(var, mismatching annotation) should fail")
	}
}

func TestVariableWithOnlyValueInfersFromValue(t *testing.T) {
	f := newFixture()
	sym := f.env.Symbols.FromName(f.env.Idents.InternIdent("y"), tir.Generated())
	lit := f.intLit(10)
	f.scope.values[sym] = lit

	varTerm := f.env.Terms.Create(tir.Term{Kind: tir.TermVar, Var: sym}, tir.Generated())
	ty, err := f.checker.Infer(varTerm)
	if err != nil {
		t.Fatalf("Infer(var from value): %v", err)
	}
	got := f.env.Tys.Get(ty).Data
	if got.Kind != tir.TyData || got.Data.Def != f.checker.Defaults.Int {
		t.Fatalf("var-from-value type = %+v, want Defaults.Int (the literal's own defaulted type)", got)
	}
}

func TestUnboundVariableFails(t *testing.T) {
	f := newFixture()
	sym := f.env.Symbols.FromName(f.env.Idents.InternIdent("nope"), tir.Generated())
	varTerm := f.env.Terms.Create(tir.Term{Kind: tir.TermVar, Var: sym}, tir.Generated())

	if _, err := f.checker.Infer(varTerm); err == nil {
		t.Fatal("Infer of an unbound variable should fail")
	}
}

func TestFnCallInfersReturnTypeAndChecksArgs(t *testing.T) {
	f := newFixture()
	intTy := f.dataTy(f.checker.Defaults.Int)
	paramSym := f.env.Symbols.FromName(f.env.Idents.InternIdent("p"), tir.Generated())
	params := f.env.Params.CreateFromIter([]tir.Param{{Name: paramSym, Ty: intTy}})
	fnTy := tir.FnTy{Params: params, Return: intTy}

	fnSym := f.env.Symbols.FromName(f.env.Idents.InternIdent("f"), tir.Generated())
	fnDef := f.env.FnDefs.Create(tir.FnDef{Name: fnSym, Ty: fnTy, BodyKind: tir.FnBodyAxiom}, tir.Generated())

	subject := f.env.Terms.Create(tir.Term{Kind: tir.TermFnRef, FnRef: tir.FnRefTerm{Fn: fnDef}}, tir.Generated())
	arg := f.intLit(5)
	args := f.env.Args.CreateFromIter([]tir.Arg{{Target: tir.ArgTarget{Name: paramSym}, Value: arg}})
	call := f.env.Terms.Create(tir.Term{Kind: tir.TermFnCall, FnCall: tir.FnCallTerm{Subject: subject, Args: args}}, tir.Generated())

	ty, err := f.checker.Infer(call)
	if err != nil {
		t.Fatalf("Infer(call): %v", err)
	}
	got := f.env.Tys.Get(ty).Data
	if got.Kind != tir.TyData || got.Data.Def != f.checker.Defaults.Int {
		t.Fatalf("call return type = %+v, want Defaults.Int", got)
	}
	if f.checker.ExprTypes[arg] == tir.NoTyId {
		t.Fatal("fn call should have checked its argument and recorded a type for it")
	}
}

func TestCallingANonFunctionFails(t *testing.T) {
	f := newFixture()
	notAFn := f.intLit(1)
	noArgs := f.env.Args.CreateFromIter(nil)
	call := f.env.Terms.Create(tir.Term{Kind: tir.TermFnCall, FnCall: tir.FnCallTerm{Subject: notAFn, Args: noArgs}}, tir.Generated())

	if _, err := f.checker.Infer(call); err == nil {
		t.Fatal("calling a non-function subject should fail with NotAFunction")
	}
}

func TestFnCallThroughOneReferenceLayer(t *testing.T) {
	f := newFixture()
	intTy := f.dataTy(f.checker.Defaults.Int)
	noParams := f.env.Params.CreateFromIter(nil)
	fnTy := tir.FnTy{Params: noParams, Return: intTy}
	fnSym := f.env.Symbols.FromName(f.env.Idents.InternIdent("g"), tir.Generated())
	fnDef := f.env.FnDefs.Create(tir.FnDef{Name: fnSym, Ty: fnTy, BodyKind: tir.FnBodyAxiom}, tir.Generated())
	fnRef := f.env.Terms.Create(tir.Term{Kind: tir.TermFnRef, FnRef: tir.FnRefTerm{Fn: fnDef}}, tir.Generated())

	refTerm := f.env.Terms.Create(tir.Term{Kind: tir.TermRef, Ref: tir.RefTerm{Kind: tir.RefSmart, Inner: fnRef}}, tir.Generated())
	noArgs := f.env.Args.CreateFromIter(nil)
	call := f.env.Terms.Create(tir.Term{Kind: tir.TermFnCall, FnCall: tir.FnCallTerm{Subject: refTerm, Args: noArgs}}, tir.Generated())

	ty, err := f.checker.Infer(call)
	if err != nil {
		t.Fatalf("Infer(call through ref): %v", err)
	}
	got := f.env.Tys.Get(ty).Data
	if got.Kind != tir.TyData || got.Data.Def != f.checker.Defaults.Int {
		t.Fatalf("call-through-ref return type = %+v, want Defaults.Int", got)
	}
}
