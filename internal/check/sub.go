package check

import "corec/internal/tir"

// Sub is spec.md §4.3.6's substitution: SymbolId -> TermId. Capture is never
// an issue because every binder introduces a fresh SymbolId (spec.md §3.1),
// so Apply never needs to rename bound variables.
type Sub struct {
	m map[tir.SymbolId]tir.TermId
}

// NewSub creates an empty substitution.
func NewSub() *Sub {
	return &Sub{m: make(map[tir.SymbolId]tir.TermId)}
}

// Extend records sym ↦ value, overwriting any prior mapping for sym.
func (s *Sub) Extend(sym tir.SymbolId, value tir.TermId) {
	s.m[sym] = value
}

// Lookup returns the substitution's value for sym, if bound.
func (s *Sub) Lookup(sym tir.SymbolId) (tir.TermId, bool) {
	v, ok := s.m[sym]
	return v, ok
}

// Len reports how many symbols this substitution rebinds.
func (s *Sub) Len() int { return len(s.m) }

// originFor derives the new node's origin from the node being replaced: if
// it was an AST-given term, the substituted replacement is InferredFrom the
// same AST node; otherwise it is freshly Generated (spec.md §3.1's
// NodeOrigin discipline).
func originFor(env *tir.Env, id tir.TermId) tir.NodeOrigin {
	if ast, ok := env.AstInfo.TermOf(id); ok {
		return tir.InferredFrom(ast)
	}
	return tir.Generated()
}

func originForTy(env *tir.Env, id tir.TyId) tir.NodeOrigin {
	if ast, ok := env.AstInfo.TyOf(id); ok {
		return tir.InferredFrom(ast)
	}
	return tir.Generated()
}

// ApplyTerm walks term and replaces every Var(s)/Hole(s) for s ∈ dom(sub)
// (spec.md §4.3.6). Composite terms are rebuilt only when a child actually
// changed, to avoid needlessly growing the store.
func ApplyTerm(env *tir.Env, sub *Sub, id tir.TermId) tir.TermId {
	if sub.Len() == 0 || !id.IsValid() {
		return id
	}
	node := env.Terms.Get(id)
	t := node.Data

	switch t.Kind {
	case tir.TermVar:
		if v, ok := sub.Lookup(t.Var); ok {
			return v
		}
		return id
	case tir.TermHole:
		if v, ok := sub.Lookup(t.Hole); ok {
			return v
		}
		return id
	case tir.TermTuple:
		args := applyArgs(env, sub, t.Tuple.Args)
		if args == t.Tuple.Args {
			return id
		}
		t.Tuple.Args = args
		return env.Terms.Create(t, originFor(env, id))
	case tir.TermCtor:
		args := applyArgs(env, sub, t.Ctor.Args)
		if args == t.Ctor.Args {
			return id
		}
		t.Ctor.Args = args
		return env.Terms.Create(t, originFor(env, id))
	case tir.TermFnCall:
		subj := ApplyTerm(env, sub, t.FnCall.Subject)
		args := applyArgs(env, sub, t.FnCall.Args)
		if subj == t.FnCall.Subject && args == t.FnCall.Args {
			return id
		}
		t.FnCall.Subject, t.FnCall.Args = subj, args
		return env.Terms.Create(t, originFor(env, id))
	case tir.TermBlock:
		changed := false
		stmts := make([]tir.TermId, len(t.Block.Statements))
		for i, s := range t.Block.Statements {
			stmts[i] = ApplyTerm(env, sub, s)
			if stmts[i] != s {
				changed = true
			}
		}
		result := ApplyTerm(env, sub, t.Block.Result)
		if result != t.Block.Result {
			changed = true
		}
		if !changed {
			return id
		}
		t.Block.Statements, t.Block.Result = stmts, result
		return env.Terms.Create(t, originFor(env, id))
	case tir.TermLoop:
		body := ApplyTerm(env, sub, t.Loop.Body)
		if body == t.Loop.Body {
			return id
		}
		t.Loop.Body = body
		return env.Terms.Create(t, originFor(env, id))
	case tir.TermMatch:
		changed := false
		subject := ApplyTerm(env, sub, t.Match.Subject)
		if subject != t.Match.Subject {
			changed = true
		}
		cases := make([]tir.MatchCase, len(t.Match.Cases))
		for i, c := range t.Match.Cases {
			cases[i] = tir.MatchCase{Pat: c.Pat, Body: ApplyTerm(env, sub, c.Body)}
			if cases[i].Body != c.Body {
				changed = true
			}
		}
		if !changed {
			return id
		}
		t.Match.Subject, t.Match.Cases = subject, cases
		return env.Terms.Create(t, originFor(env, id))
	case tir.TermReturn:
		v := ApplyTerm(env, sub, t.Return.Value)
		if v == t.Return.Value {
			return id
		}
		t.Return.Value = v
		return env.Terms.Create(t, originFor(env, id))
	case tir.TermAssign:
		place := ApplyTerm(env, sub, t.Assign.Place)
		value := ApplyTerm(env, sub, t.Assign.Value)
		if place == t.Assign.Place && value == t.Assign.Value {
			return id
		}
		t.Assign.Place, t.Assign.Value = place, value
		return env.Terms.Create(t, originFor(env, id))
	case tir.TermDeref:
		inner := ApplyTerm(env, sub, t.Deref.Inner)
		if inner == t.Deref.Inner {
			return id
		}
		t.Deref.Inner = inner
		return env.Terms.Create(t, originFor(env, id))
	case tir.TermRef:
		inner := ApplyTerm(env, sub, t.Ref.Inner)
		if inner == t.Ref.Inner {
			return id
		}
		t.Ref.Inner = inner
		return env.Terms.Create(t, originFor(env, id))
	case tir.TermCast:
		value := ApplyTerm(env, sub, t.Cast.Value)
		to := ApplyTy(env, sub, t.Cast.To)
		if value == t.Cast.Value && to == t.Cast.To {
			return id
		}
		t.Cast.Value, t.Cast.To = value, to
		return env.Terms.Create(t, originFor(env, id))
	case tir.TermTypeOf:
		of := ApplyTerm(env, sub, t.TypeOf.Of)
		if of == t.TypeOf.Of {
			return id
		}
		t.TypeOf.Of = of
		return env.Terms.Create(t, originFor(env, id))
	case tir.TermTy:
		ty := ApplyTy(env, sub, t.Ty)
		if ty == t.Ty {
			return id
		}
		t.Ty = ty
		return env.Terms.Create(t, originFor(env, id))
	default:
		// TermLit, TermFnRef, TermLoopControl: no child terms to substitute.
		return id
	}
}

// ApplyTy is ApplyTerm's counterpart over Ty nodes.
func ApplyTy(env *tir.Env, sub *Sub, id tir.TyId) tir.TyId {
	if sub.Len() == 0 || !id.IsValid() {
		return id
	}
	node := env.Tys.Get(id)
	t := node.Data

	switch t.Kind {
	case tir.TyVar:
		if v, ok := sub.Lookup(t.Var); ok {
			// A symbol may only map to a term; a type position reaching a
			// substituted symbol must have that term's Ty(Eval) shape.
			return env.Tys.Create(tir.Ty{Kind: tir.TyEval, Eval: v}, originForTy(env, id))
		}
		return id
	case tir.TyHole:
		if v, ok := sub.Lookup(t.Hole); ok {
			return env.Tys.Create(tir.Ty{Kind: tir.TyEval, Eval: v}, originForTy(env, id))
		}
		return id
	case tir.TyData:
		args := applyArgs(env, sub, t.Data.Args)
		if args == t.Data.Args {
			return id
		}
		t.Data.Args = args
		return env.Tys.Create(t, originForTy(env, id))
	case tir.TyFn:
		ret := ApplyTy(env, sub, t.Fn.Return)
		if ret == t.Fn.Return {
			return id
		}
		t.Fn.Return = ret
		return env.Tys.Create(t, originForTy(env, id))
	case tir.TyRef:
		inner := ApplyTy(env, sub, t.Ref.Inner)
		if inner == t.Ref.Inner {
			return id
		}
		t.Ref.Inner = inner
		return env.Tys.Create(t, originForTy(env, id))
	case tir.TyEval:
		term := ApplyTerm(env, sub, t.Eval)
		if term == t.Eval {
			return id
		}
		t.Eval = term
		return env.Tys.Create(t, originForTy(env, id))
	default:
		// TyUniverse, TyTuple: TyTuple's Params are bound positions, not
		// free references, so they are not substitution targets here.
		return id
	}
}

// applyArgs rebuilds an Args sequence with substitution applied to each
// argument's value, allocating a new ArgsId only if something changed.
func applyArgs(env *tir.Env, sub *Sub, id tir.ArgsId) tir.ArgsId {
	all := env.Args.All(id)
	changed := false
	out := make([]tir.Arg, len(all))
	for i, a := range all {
		out[i] = tir.Arg{Target: a.Target, Value: ApplyTerm(env, sub, a.Value)}
		if out[i].Value != a.Value {
			changed = true
		}
	}
	if !changed {
		return id
	}
	return env.Args.CreateFromIter(out)
}
