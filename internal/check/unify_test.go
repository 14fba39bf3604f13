package check

import (
	"testing"

	"corec/internal/tir"
)

func TestUnifyIdenticalVariablesSucceeds(t *testing.T) {
	env := tir.NewEnv()
	u := NewUnifier(env, nil)
	sym := env.Symbols.FromName(env.Idents.InternIdent("a"), tir.Generated())

	src := env.Terms.Create(tir.Term{Kind: tir.TermVar, Var: sym}, tir.Generated())
	target := env.Terms.Create(tir.Term{Kind: tir.TermVar, Var: sym}, tir.Generated())

	if err := u.UnifyTerms(UnifyOptions{}, NewSub(), src, target); err != nil {
		t.Fatalf("unify identical variables: %v", err)
	}
}

func TestUnifyDistinctVariablesFails(t *testing.T) {
	env := tir.NewEnv()
	u := NewUnifier(env, nil)
	a := env.Symbols.FromName(env.Idents.InternIdent("a"), tir.Generated())
	b := env.Symbols.FromName(env.Idents.InternIdent("b"), tir.Generated())

	src := env.Terms.Create(tir.Term{Kind: tir.TermVar, Var: a}, tir.Generated())
	target := env.Terms.Create(tir.Term{Kind: tir.TermVar, Var: b}, tir.Generated())

	if err := u.UnifyTerms(UnifyOptions{}, NewSub(), src, target); err == nil {
		t.Fatal("unify of distinct variables should fail")
	}
}

// TestUnifyHoleSymmetry is spec.md §8's "Unification symmetry of holes":
// unify(Hole(h), x) and unify(x, Hole(h)) both succeed and record h -> x.
func TestUnifyHoleSymmetry(t *testing.T) {
	env := tir.NewEnv()
	u := NewUnifier(env, nil)
	hole := env.Symbols.FromName(env.Idents.InternIdent("h"), tir.Generated())
	x := env.Symbols.FromName(env.Idents.InternIdent("x"), tir.Generated())
	xTerm := env.Terms.Create(tir.Term{Kind: tir.TermVar, Var: x}, tir.Generated())

	holeTerm1 := env.Terms.Create(tir.Term{Kind: tir.TermHole, Hole: hole}, tir.Generated())
	sub1 := NewSub()
	if err := u.UnifyTerms(UnifyOptions{}, sub1, holeTerm1, xTerm); err != nil {
		t.Fatalf("unify(Hole, x): %v", err)
	}
	got1, ok := sub1.Lookup(hole)
	if !ok || got1 != xTerm {
		t.Fatalf("unify(Hole, x) did not record h -> x: got %d, %v", got1, ok)
	}

	holeTerm2 := env.Terms.Create(tir.Term{Kind: tir.TermHole, Hole: hole}, tir.Generated())
	sub2 := NewSub()
	if err := u.UnifyTerms(UnifyOptions{}, sub2, xTerm, holeTerm2); err != nil {
		t.Fatalf("unify(x, Hole): %v", err)
	}
	got2, ok := sub2.Lookup(hole)
	if !ok || got2 != xTerm {
		t.Fatalf("unify(x, Hole) did not record h -> x: got %d, %v", got2, ok)
	}
}

func TestUnifyHoleModifiesInPlaceWhenRequested(t *testing.T) {
	env := tir.NewEnv()
	u := NewUnifier(env, nil)
	hole := env.Symbols.FromName(env.Idents.InternIdent("h"), tir.Generated())
	x := env.Symbols.FromName(env.Idents.InternIdent("x"), tir.Generated())

	holeTerm := env.Terms.Create(tir.Term{Kind: tir.TermHole, Hole: hole}, tir.Generated())
	xTerm := env.Terms.Create(tir.Term{Kind: tir.TermVar, Var: x}, tir.Generated())

	if err := u.UnifyTerms(UnifyOptions{ModifyTerms: true}, NewSub(), holeTerm, xTerm); err != nil {
		t.Fatalf("unify: %v", err)
	}
	got := env.Terms.Get(holeTerm).Data
	if got.Kind != tir.TermVar || got.Var != x {
		t.Fatalf("ModifyTerms should have overwritten the hole's contents in place: got %+v", got)
	}
}

func TestUnifyRefRequiresMatchingKindAndMutability(t *testing.T) {
	env := tir.NewEnv()
	u := NewUnifier(env, nil)
	sym := env.Symbols.FromName(env.Idents.InternIdent("a"), tir.Generated())
	inner := env.Terms.Create(tir.Term{Kind: tir.TermVar, Var: sym}, tir.Generated())

	mut := env.Terms.Create(tir.Term{Kind: tir.TermRef, Ref: tir.RefTerm{Kind: tir.RefSmart, Mutable: true, Inner: inner}}, tir.Generated())
	notMut := env.Terms.Create(tir.Term{Kind: tir.TermRef, Ref: tir.RefTerm{Kind: tir.RefSmart, Mutable: false, Inner: inner}}, tir.Generated())

	if err := u.UnifyTerms(UnifyOptions{}, NewSub(), mut, notMut); err == nil {
		t.Fatal("unify of refs with mismatched mutability should fail")
	}

	mut2 := env.Terms.Create(tir.Term{Kind: tir.TermRef, Ref: tir.RefTerm{Kind: tir.RefSmart, Mutable: true, Inner: inner}}, tir.Generated())
	if err := u.UnifyTerms(UnifyOptions{}, NewSub(), mut, mut2); err != nil {
		t.Fatalf("unify of matching refs should succeed: %v", err)
	}
}

func TestUnifyTysNumericPrimitivesAreExact(t *testing.T) {
	env := tir.NewEnv()
	u := NewUnifier(env, nil)

	i32 := env.DataDefs.Create(tir.DataDef{CtorsKind: tir.CtorsPrimitive, Primitive: tir.PrimCtorInfo{Kind: tir.PrimNumeric, Numeric: tir.NumericPrimInfo{Bits: 32, Signed: true}}}, tir.Generated())
	i64 := env.DataDefs.Create(tir.DataDef{CtorsKind: tir.CtorsPrimitive, Primitive: tir.PrimCtorInfo{Kind: tir.PrimNumeric, Numeric: tir.NumericPrimInfo{Bits: 64, Signed: true}}}, tir.Generated())

	ty32 := env.Tys.Create(tir.Ty{Kind: tir.TyData, Data: tir.DataTy{Def: i32}}, tir.Generated())
	ty64 := env.Tys.Create(tir.Ty{Kind: tir.TyData, Data: tir.DataTy{Def: i64}}, tir.Generated())

	if err := u.UnifyTys(UnifyOptions{}, NewSub(), ty32, ty64); err == nil {
		t.Fatal("unify of distinct numeric primitives should fail: no implicit widening")
	}
}

func TestUnifyArgCountMismatchFails(t *testing.T) {
	env := tir.NewEnv()
	u := NewUnifier(env, nil)
	sym := env.Symbols.FromName(env.Idents.InternIdent("a"), tir.Generated())
	val := env.Terms.Create(tir.Term{Kind: tir.TermVar, Var: sym}, tir.Generated())

	ctor := env.CtorDefs.Create(tir.CtorDef{}, tir.Generated())
	oneArg := env.Args.CreateFromIter([]tir.Arg{{Value: val}})
	twoArgs := env.Args.CreateFromIter([]tir.Arg{{Value: val}, {Value: val}})

	src := env.Terms.Create(tir.Term{Kind: tir.TermCtor, Ctor: tir.CtorTerm{Ctor: ctor, Args: oneArg}}, tir.Generated())
	target := env.Terms.Create(tir.Term{Kind: tir.TermCtor, Ctor: tir.CtorTerm{Ctor: ctor, Args: twoArgs}}, tir.Generated())

	if err := u.UnifyTerms(UnifyOptions{}, NewSub(), src, target); err == nil {
		t.Fatal("unify of ctors with mismatched arg counts should fail")
	}
}
