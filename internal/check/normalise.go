package check

import "corec/internal/tir"

// Mode is spec.md §4.3.4's NormalisationMode.
type Mode uint8

const (
	ModeNone Mode = iota
	ModeWeak
	ModeFull
)

// Options configures a normalisation pass.
type Options struct {
	Mode Mode
}

// ScopeLookup is the minimal view of internal/scope.Context the normaliser
// needs: resolving a variable's bound value, if any. Declared as an
// interface here, rather than importing internal/scope directly, so
// internal/check does not need to depend on the scope package's full
// surface — the teacher's sema package takes the same approach with small
// consumer-defined interfaces instead of direct package coupling.
type ScopeLookup interface {
	ValueOf(sym tir.SymbolId) (tir.TermId, bool)
}

// Normaliser evaluates terms under env: variable lookup when bound to a
// value, function application when the subject is a defined FnDef (direct
// calls only — no speculative monomorphisation of generic callees), and
// TypeOf(e) -> Ty(type_of(e)) (spec.md §4.3.4).
type Normaliser struct {
	env *tir.Env
	ctx ScopeLookup
}

// NewNormaliser creates a Normaliser over env. ctx may be nil, in which
// case variable lookup never succeeds and TermVar is left unreduced.
func NewNormaliser(env *tir.Env, ctx ScopeLookup) *Normaliser {
	return &Normaliser{env: env, ctx: ctx}
}

// Normalise reduces id under opts.Mode (spec.md §4.3.4). ModeNone returns
// id unchanged. ModeWeak reduces only the outermost redex, once. ModeFull
// recurses, including into children, until no further reduction applies.
func (n *Normaliser) Normalise(opts Options, id tir.TermId) tir.TermId {
	if opts.Mode == ModeNone || !id.IsValid() {
		return id
	}

	reduced, did := n.step(opts, id)
	if !did {
		return id
	}
	if opts.Mode == ModeWeak {
		return reduced
	}
	return n.Normalise(opts, reduced)
}

// step performs one reduction of id, reporting whether anything changed.
func (n *Normaliser) step(opts Options, id tir.TermId) (tir.TermId, bool) {
	t := n.env.Terms.Get(id).Data

	switch t.Kind {
	case tir.TermVar:
		if n.ctx != nil {
			if v, ok := n.ctx.ValueOf(t.Var); ok && v != id {
				return v, true
			}
		}
		return id, false
	case tir.TermTypeOf:
		ty := n.typeOf(t.TypeOf.Of)
		if !ty.IsValid() {
			return id, false
		}
		return n.env.Terms.Create(tir.Term{Kind: tir.TermTy, Ty: ty}, originFor(n.env, id)), true
	case tir.TermFnCall:
		return n.stepFnCall(id, t)
	default:
		if opts.Mode == ModeFull {
			return n.stepChildren(opts, id, t)
		}
		return id, false
	}
}

// typeOf returns the statically-known type of a term shape, when one can be
// read off without a full check pass. Currently handles FnRef only (its
// type is exactly its FnDef's declared signature); every other shape
// returns NoTyId and is left to the checker's own ExprTypes table once a
// term has already been checked.
func (n *Normaliser) typeOf(id tir.TermId) tir.TyId {
	t := n.env.Terms.Get(id).Data
	if t.Kind != tir.TermFnRef {
		return tir.NoTyId
	}
	fn := n.env.FnDefs.Get(t.FnRef.Fn).Data
	return n.env.Tys.Create(tir.Ty{Kind: tir.TyFn, Fn: fn.Ty}, tir.Generated())
}

// stepFnCall reduces a call whose subject is a concrete FnRef to a defined,
// non-intrinsic body by substituting arguments for parameters in the body
// (spec.md §4.3.4: "function application ... if subject is a defined FnDef
// and caller policy permits monomorphisation" — direct, non-generic calls
// always permit it here).
func (n *Normaliser) stepFnCall(id tir.TermId, t tir.Term) (tir.TermId, bool) {
	subject := n.env.Terms.Get(t.FnCall.Subject).Data
	if subject.Kind != tir.TermFnRef {
		return id, false
	}
	fn := n.env.FnDefs.Get(subject.FnRef.Fn).Data
	if fn.BodyKind != tir.FnBodyDefined || !fn.Body.IsValid() {
		return id, false
	}

	sub := NewSub()
	for _, a := range n.env.Args.All(t.FnCall.Args) {
		p, _, ok := n.env.ResolveArg(fn.Ty.Params, a)
		if !ok {
			continue
		}
		sub.Extend(p.Name, a.Value)
	}
	return ApplyTerm(n.env, sub, fn.Body), true
}

// stepChildren recurses ModeFull reduction into every child term, rebuilding
// the node only if something changed.
func (n *Normaliser) stepChildren(opts Options, id tir.TermId, t tir.Term) (tir.TermId, bool) {
	changed := false
	reduce := func(c tir.TermId) tir.TermId {
		if !c.IsValid() {
			return c
		}
		r := n.Normalise(opts, c)
		if r != c {
			changed = true
		}
		return r
	}

	switch t.Kind {
	case tir.TermBlock:
		stmts := make([]tir.TermId, len(t.Block.Statements))
		for i, s := range t.Block.Statements {
			stmts[i] = reduce(s)
		}
		t.Block.Statements = stmts
		t.Block.Result = reduce(t.Block.Result)
	case tir.TermReturn:
		t.Return.Value = reduce(t.Return.Value)
	case tir.TermAssign:
		t.Assign.Place = reduce(t.Assign.Place)
		t.Assign.Value = reduce(t.Assign.Value)
	case tir.TermDeref:
		t.Deref.Inner = reduce(t.Deref.Inner)
	case tir.TermRef:
		t.Ref.Inner = reduce(t.Ref.Inner)
	case tir.TermCast:
		t.Cast.Value = reduce(t.Cast.Value)
	case tir.TermTuple:
		all := n.env.Args.All(t.Tuple.Args)
		out := make([]tir.Arg, len(all))
		for i, a := range all {
			out[i] = tir.Arg{Target: a.Target, Value: reduce(a.Value)}
		}
		if changed {
			t.Tuple.Args = n.env.Args.CreateFromIter(out)
		}
	}

	if !changed {
		return id, false
	}
	return n.env.Terms.Create(t, originFor(n.env, id)), true
}
