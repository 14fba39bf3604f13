package check

import (
	"testing"

	"corec/internal/tir"
)

type valueScope map[tir.SymbolId]tir.TermId

func (s valueScope) ValueOf(sym tir.SymbolId) (tir.TermId, bool) {
	v, ok := s[sym]
	return v, ok
}

func TestNormaliseNoneIsIdentity(t *testing.T) {
	env := tir.NewEnv()
	n := NewNormaliser(env, nil)
	sym := env.Symbols.FromName(env.Idents.InternIdent("x"), tir.Generated())
	term := env.Terms.Create(tir.Term{Kind: tir.TermVar, Var: sym}, tir.Generated())

	got := n.Normalise(Options{Mode: ModeNone}, term)
	if got != term {
		t.Fatalf("ModeNone must return the term unchanged: got %d, want %d", got, term)
	}
}

func TestNormaliseVariableLookup(t *testing.T) {
	env := tir.NewEnv()
	sym := env.Symbols.FromName(env.Idents.InternIdent("x"), tir.Generated())
	value := env.Terms.Create(tir.Term{Kind: tir.TermLit, Lit: tir.Lit{Kind: tir.LitInt, Int: tir.IntLit{Value: 7}}}, tir.Generated())
	scope := valueScope{sym: value}
	n := NewNormaliser(env, scope)

	varTerm := env.Terms.Create(tir.Term{Kind: tir.TermVar, Var: sym}, tir.Generated())
	got := n.Normalise(Options{Mode: ModeWeak}, varTerm)
	if got != value {
		t.Fatalf("normalising a bound variable should yield its value: got %d, want %d", got, value)
	}
}

func TestNormaliseFunctionApplication(t *testing.T) {
	env := tir.NewEnv()
	n := NewNormaliser(env, nil)

	paramSym := env.Symbols.FromName(env.Idents.InternIdent("p"), tir.Generated())
	params := env.Params.CreateFromIter([]tir.Param{{Name: paramSym}})
	body := env.Terms.Create(tir.Term{Kind: tir.TermVar, Var: paramSym}, tir.Generated())
	fnSym := env.Symbols.FromName(env.Idents.InternIdent("id"), tir.Generated())
	fnDef := env.FnDefs.Create(tir.FnDef{Name: fnSym, Ty: tir.FnTy{Params: params}, BodyKind: tir.FnBodyDefined, Body: body}, tir.Generated())

	fnRef := env.Terms.Create(tir.Term{Kind: tir.TermFnRef, FnRef: tir.FnRefTerm{Fn: fnDef}}, tir.Generated())
	arg := env.Terms.Create(tir.Term{Kind: tir.TermLit, Lit: tir.Lit{Kind: tir.LitInt, Int: tir.IntLit{Value: 99}}}, tir.Generated())
	args := env.Args.CreateFromIter([]tir.Arg{{Target: tir.ArgTarget{Name: paramSym}, Value: arg}})
	call := env.Terms.Create(tir.Term{Kind: tir.TermFnCall, FnCall: tir.FnCallTerm{Subject: fnRef, Args: args}}, tir.Generated())

	got := n.Normalise(Options{Mode: ModeFull}, call)
	if got != arg {
		t.Fatalf("calling the identity function should normalise to its argument: got %d, want %d", got, arg)
	}
}

func TestNormaliseIntrinsicFnIsNotReduced(t *testing.T) {
	env := tir.NewEnv()
	n := NewNormaliser(env, nil)
	fnSym := env.Symbols.FromName(env.Idents.InternIdent("extern_fn"), tir.Generated())
	fnDef := env.FnDefs.Create(tir.FnDef{Name: fnSym, BodyKind: tir.FnBodyIntrinsic}, tir.Generated())
	fnRef := env.Terms.Create(tir.Term{Kind: tir.TermFnRef, FnRef: tir.FnRefTerm{Fn: fnDef}}, tir.Generated())
	call := env.Terms.Create(tir.Term{Kind: tir.TermFnCall, FnCall: tir.FnCallTerm{Subject: fnRef}}, tir.Generated())

	got := n.Normalise(Options{Mode: ModeFull}, call)
	if got != call {
		t.Fatalf("an intrinsic-bodied function call must not reduce: got %d, want %d", got, call)
	}
}

// TestNormaliseFullIsIdempotent is spec.md §8's normalisation idempotence
// property: normalise(Full, normalise(Full, t)) == normalise(Full, t).
func TestNormaliseFullIsIdempotent(t *testing.T) {
	env := tir.NewEnv()
	sym := env.Symbols.FromName(env.Idents.InternIdent("x"), tir.Generated())
	value := env.Terms.Create(tir.Term{Kind: tir.TermLit, Lit: tir.Lit{Kind: tir.LitInt, Int: tir.IntLit{Value: 1}}}, tir.Generated())
	scope := valueScope{sym: value}
	n := NewNormaliser(env, scope)

	varTerm := env.Terms.Create(tir.Term{Kind: tir.TermVar, Var: sym}, tir.Generated())
	blockTerm := env.Terms.Create(tir.Term{Kind: tir.TermBlock, Block: tir.BlockTerm{Result: varTerm}}, tir.Generated())

	once := n.Normalise(Options{Mode: ModeFull}, blockTerm)
	twice := n.Normalise(Options{Mode: ModeFull}, once)
	if once != twice {
		t.Fatalf("full normalisation is not idempotent: once=%d twice=%d", once, twice)
	}
}

func TestApplySubstitutesVarAndHole(t *testing.T) {
	env := tir.NewEnv()
	sym := env.Symbols.FromName(env.Idents.InternIdent("x"), tir.Generated())
	replacement := env.Terms.Create(tir.Term{Kind: tir.TermLit, Lit: tir.Lit{Kind: tir.LitInt, Int: tir.IntLit{Value: 3}}}, tir.Generated())

	sub := NewSub()
	sub.Extend(sym, replacement)

	varTerm := env.Terms.Create(tir.Term{Kind: tir.TermVar, Var: sym}, tir.Generated())
	if got := ApplyTerm(env, sub, varTerm); got != replacement {
		t.Fatalf("ApplyTerm(Var) = %d, want %d", got, replacement)
	}

	holeTerm := env.Terms.Create(tir.Term{Kind: tir.TermHole, Hole: sym}, tir.Generated())
	if got := ApplyTerm(env, sub, holeTerm); got != replacement {
		t.Fatalf("ApplyTerm(Hole) = %d, want %d", got, replacement)
	}
}

func TestApplyRebuildsCompositeOnlyWhenChildChanged(t *testing.T) {
	env := tir.NewEnv()
	sym := env.Symbols.FromName(env.Idents.InternIdent("x"), tir.Generated())
	replacement := env.Terms.Create(tir.Term{Kind: tir.TermLit, Lit: tir.Lit{Kind: tir.LitInt, Int: tir.IntLit{Value: 3}}}, tir.Generated())
	other := env.Symbols.FromName(env.Idents.InternIdent("y"), tir.Generated())

	sub := NewSub()
	sub.Extend(sym, replacement)

	unrelated := env.Terms.Create(tir.Term{Kind: tir.TermVar, Var: other}, tir.Generated())
	deref := env.Terms.Create(tir.Term{Kind: tir.TermDeref, Deref: tir.DerefTerm{Inner: unrelated}}, tir.Generated())

	if got := ApplyTerm(env, sub, deref); got != deref {
		t.Fatalf("ApplyTerm should return the same id when no child changed: got %d, want %d", got, deref)
	}

	varX := env.Terms.Create(tir.Term{Kind: tir.TermVar, Var: sym}, tir.Generated())
	derefX := env.Terms.Create(tir.Term{Kind: tir.TermDeref, Deref: tir.DerefTerm{Inner: varX}}, tir.Generated())
	got := ApplyTerm(env, sub, derefX)
	if got == derefX {
		t.Fatal("ApplyTerm should rebuild when a child changed")
	}
	if env.Terms.Get(got).Data.Deref.Inner != replacement {
		t.Fatalf("rebuilt deref's inner = %d, want %d", env.Terms.Get(got).Data.Deref.Inner, replacement)
	}
}
