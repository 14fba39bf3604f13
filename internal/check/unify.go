package check

import "corec/internal/tir"

// UnifyOptions configures a unification pass (spec.md §4.3.1/.5).
type UnifyOptions struct {
	// ModifyTerms, when set, overwrites a hole's TermId contents in place
	// with the unified-to target, in addition to recording the mapping in
	// the returned substitution (spec.md §4.3.3).
	ModifyTerms bool
}

// Unifier performs structural unification of terms-as-types (spec.md
// §4.3.5): identical variants recursively unify their fields, holes take
// the other side, Ty::Eval(t) normalises t first, and a Ref only unifies
// with a Ref of matching kind and mutability. Numeric primitive
// unification is exact; no implicit widening.
type Unifier struct {
	env  *tir.Env
	norm *Normaliser
}

// NewUnifier creates a Unifier over env, normalising TyEval nodes via norm.
func NewUnifier(env *tir.Env, norm *Normaliser) *Unifier {
	return &Unifier{env: env, norm: norm}
}

// UnifyTerms unifies src against target, recording any hole fillings (plus,
// with opts.ModifyTerms, performing them in place) into sub, which may be
// a fresh accumulator or one threaded through several unifications.
func (u *Unifier) UnifyTerms(opts UnifyOptions, sub *Sub, src, target tir.TermId) error {
	if src == target {
		return nil
	}
	s := u.env.Terms.Get(src).Data
	t := u.env.Terms.Get(target).Data

	if s.Kind == tir.TermHole {
		return u.unifyHoleWith(opts, sub, s.Hole, src, target)
	}
	if t.Kind == tir.TermHole {
		return u.unifyHoleWith(opts, sub, t.Hole, target, src)
	}
	if s.Kind != t.Kind {
		return mismatchingAtoms("term kind")
	}

	switch s.Kind {
	case tir.TermVar:
		if s.Var != t.Var {
			return mismatchingAtoms("variable symbol")
		}
		return nil
	case tir.TermLit:
		if s.Lit.Kind != t.Lit.Kind {
			return mismatchingAtoms("literal kind")
		}
		return nil
	case tir.TermTuple:
		return u.unifyArgs(opts, sub, s.Tuple.Args, t.Tuple.Args)
	case tir.TermCtor:
		if s.Ctor.Ctor != t.Ctor.Ctor {
			return mismatchingAtoms("constructor")
		}
		return u.unifyArgs(opts, sub, s.Ctor.Args, t.Ctor.Args)
	case tir.TermFnRef:
		if s.FnRef.Fn != t.FnRef.Fn {
			return mismatchingAtoms("function reference")
		}
		return nil
	case tir.TermRef:
		if s.Ref.Kind != t.Ref.Kind || s.Ref.Mutable != t.Ref.Mutable {
			return refKindMismatch()
		}
		return u.UnifyTerms(opts, sub, s.Ref.Inner, t.Ref.Inner)
	case tir.TermDeref:
		return u.UnifyTerms(opts, sub, s.Deref.Inner, t.Deref.Inner)
	case tir.TermTy:
		return u.UnifyTys(opts, sub, s.Ty, t.Ty)
	default:
		return mismatchingAtoms("unsupported term shape for structural unification")
	}
}

// UnifyTys is UnifyTerms' counterpart over Ty nodes.
func (u *Unifier) UnifyTys(opts UnifyOptions, sub *Sub, src, target tir.TyId) error {
	if src == target {
		return nil
	}
	s := u.env.Tys.Get(src).Data
	t := u.env.Tys.Get(target).Data

	if s.Kind == tir.TyEval {
		if reduced, ok := u.normaliseTyEval(s); ok {
			return u.UnifyTys(opts, sub, reduced, target)
		}
	}
	if t.Kind == tir.TyEval {
		if reduced, ok := u.normaliseTyEval(t); ok {
			return u.UnifyTys(opts, sub, src, reduced)
		}
	}

	if s.Kind == tir.TyHole {
		return u.unifyTyHoleWith(sub, s.Hole, target)
	}
	if t.Kind == tir.TyHole {
		return u.unifyTyHoleWith(sub, t.Hole, src)
	}
	if s.Kind != t.Kind {
		return mismatchingAtoms("type kind")
	}

	switch s.Kind {
	case tir.TyUniverse:
		if s.Universe != t.Universe {
			return mismatchingAtoms("universe level")
		}
		return nil
	case tir.TyVar:
		if s.Var != t.Var {
			return mismatchingAtoms("type variable")
		}
		return nil
	case tir.TyData:
		if s.Data.Def != t.Data.Def {
			return mismatchingAtoms("data definition")
		}
		return u.unifyArgs(opts, sub, s.Data.Args, t.Data.Args)
	case tir.TyFn:
		if s.Fn.Pure != t.Fn.Pure || s.Fn.Implicit != t.Fn.Implicit || s.Fn.Unsafe != t.Fn.Unsafe {
			return mismatchingAtoms("function type modifiers")
		}
		if err := u.UnifyTys(opts, sub, s.Fn.Return, t.Fn.Return); err != nil {
			return err
		}
		return u.unifyParams(opts, sub, s.Fn.Params, t.Fn.Params)
	case tir.TyTuple:
		return u.unifyParams(opts, sub, s.Tuple.Params, t.Tuple.Params)
	case tir.TyRef:
		if s.Ref.Kind != t.Ref.Kind || s.Ref.Mutable != t.Ref.Mutable {
			return refKindMismatch()
		}
		return u.UnifyTys(opts, sub, s.Ref.Inner, t.Ref.Inner)
	default:
		return mismatchingAtoms("unsupported type shape for structural unification")
	}
}

// normaliseTyEval reduces a Ty::Eval(t) node's underlying term and, if it
// collapses to a TermTy, returns the type it denotes. Without a Normaliser
// available it reports ok=false and the caller falls back to treating the
// two TyEval nodes as opaque (structural id equality only).
func (u *Unifier) normaliseTyEval(t tir.Ty) (tir.TyId, bool) {
	if u.norm == nil {
		return tir.NoTyId, false
	}
	reduced := u.norm.Normalise(Options{Mode: ModeFull}, t.Eval)
	r := u.env.Terms.Get(reduced).Data
	if r.Kind == tir.TermTy {
		return r.Ty, true
	}
	return u.env.Tys.Create(tir.Ty{Kind: tir.TyEval, Eval: reduced}, tir.Generated()), true
}

// unifyHoleWith unifies a hole, represented by holeSrc (the TermId whose
// Kind is TermHole) and its symbol, against subDest (spec.md §4.3.3): it
// modifies holeSrc in place when opts.ModifyTerms is set, and always
// extends sub with hole ↦ subDest.
func (u *Unifier) unifyHoleWith(opts UnifyOptions, sub *Sub, hole tir.SymbolId, holeSrc, subDest tir.TermId) error {
	if opts.ModifyTerms {
		u.env.Terms.Modify(holeSrc, func(t *tir.Term) {
			*t = u.env.Terms.Get(subDest).Data
		})
	}
	sub.Extend(hole, subDest)
	return nil
}

func (u *Unifier) unifyTyHoleWith(sub *Sub, hole tir.SymbolId, target tir.TyId) error {
	wrapped := u.env.Terms.Create(tir.Term{Kind: tir.TermTy, Ty: target}, tir.Generated())
	sub.Extend(hole, wrapped)
	return nil
}

func (u *Unifier) unifyArgs(opts UnifyOptions, sub *Sub, src, target tir.ArgsId) error {
	s, t := u.env.Args.All(src), u.env.Args.All(target)
	if len(s) != len(t) {
		return mismatchingAtoms("argument count")
	}
	for i := range s {
		if err := u.UnifyTerms(opts, sub, s[i].Value, t[i].Value); err != nil {
			return err
		}
	}
	return nil
}

func (u *Unifier) unifyParams(opts UnifyOptions, sub *Sub, src, target tir.ParamsId) error {
	s, t := u.env.Params.All(src), u.env.Params.All(target)
	if len(s) != len(t) {
		return mismatchingAtoms("parameter count")
	}
	for i := range s {
		if err := u.UnifyTys(opts, sub, s[i].Ty, t[i].Ty); err != nil {
			return err
		}
	}
	return nil
}
