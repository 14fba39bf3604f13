// Package check implements spec.md §4.3: bidirectional type checking with
// metavariables ("holes"), normalisation under a configurable evaluation
// mode, term substitution, and unification of terms as types. Grounded on
// surge/internal/sema/check.go's typeChecker-driving-a-run()-pass shape and
// on original_source/compiler/hash-typecheck/src/new/ops/infer.rs and
// hash-typecheck/src/nodes/holes.rs for hole-filling semantics.
package check

import "corec/internal/tir"

// Defaults names the primitive DataDefIds unsuffixed
// numeric literals default to when no annotation pins them down (spec.md
// §4.3.2: "i32 for integers, f64 for floats"). The checker's caller
// supplies the concrete DataDefIds once the prelude's primitive data defs
// are registered; Checker itself has no hardcoded knowledge of which
// DataDefId means "i32".
type Defaults struct {
	Int   tir.DataDefId
	Float tir.DataDefId
	Char  tir.DataDefId
	Str   tir.DataDefId
	Bool  tir.DataDefId
	Unit  tir.DataDefId
}

// Checker is spec.md §4.3's engine. internal/driver (typecheckFn) creates
// one Checker per lowered function and drives it through a sequence of
// Check/Infer calls over that function's TIR terms, mirroring the teacher's typeChecker{...}; checker.run() shape (the
// "run a pass over one file, accumulate a Result" idiom).
type Checker struct {
	Env       *tir.Env
	Ctx       ScopeLookupDecl
	Defaults  Defaults
	Norm      *Normaliser
	Unifier   *Unifier

	// ExprTypes records the resolved type of every term this checker has
	// processed, keyed by TermId — the domain-stack analogue of the
	// teacher's Result.ExprTypes (keyed by ast.ExprID there, by TermId here
	// since checking operates on TIR, not AST).
	ExprTypes map[tir.TermId]tir.TyId
}

// ScopeLookupDecl is the view of internal/scope.Context the checker needs:
// resolving a variable to its declared type (if statically known) or to its
// value (whose type must then be inferred), per spec.md §4.3.2's "Variables
// resolve via context" rule.
type ScopeLookupDecl interface {
	ScopeLookup
	DeclTypeOf(sym tir.SymbolId) (tir.TyId, bool)
}

// NewChecker creates a Checker over env and ctx, wiring a Normaliser and
// Unifier that share env.
func NewChecker(env *tir.Env, ctx ScopeLookupDecl, defaults Defaults) *Checker {
	norm := NewNormaliser(env, ctx)
	return &Checker{
		Env:       env,
		Ctx:       ctx,
		Defaults:  defaults,
		Norm:      norm,
		Unifier:   NewUnifier(env, norm),
		ExprTypes: make(map[tir.TermId]tir.TyId),
	}
}

// Check is spec.md §4.3.1's bidirectional check(item, annotation_ty,
// node_id): given an expected type, confirm term has it, or synthesise a
// type and unify (spec.md §4.3.2).
func (c *Checker) Check(term tir.TermId, expected tir.TyId) error {
	t := c.Env.Terms.Get(term).Data

	switch t.Kind {
	case tir.TermLit:
		return c.checkLit(term, t.Lit, expected)
	case tir.TermVar:
		return c.checkVar(term, t.Var, expected)
	case tir.TermFnCall:
		return c.checkFnCall(term, t.FnCall, expected)
	default:
		inferred, err := c.Infer(term)
		if err != nil {
			return err
		}
		return c.Unifier.UnifyTys(UnifyOptions{ModifyTerms: true}, NewSub(), inferred, expected)
	}
}

// Infer synthesises term's type without a prior expectation, recording it
// in ExprTypes.
func (c *Checker) Infer(term tir.TermId) (tir.TyId, error) {
	if ty, ok := c.ExprTypes[term]; ok {
		return ty, nil
	}
	t := c.Env.Terms.Get(term).Data

	var ty tir.TyId
	var err error
	switch t.Kind {
	case tir.TermLit:
		ty = c.defaultLitTy(t.Lit)
	case tir.TermVar:
		ty, err = c.inferVar(t.Var)
	case tir.TermFnRef:
		fn := c.Env.FnDefs.Get(t.FnRef.Fn).Data
		ty = c.Env.Tys.Create(tir.Ty{Kind: tir.TyFn, Fn: fn.Ty}, originFor(c.Env, term))
	case tir.TermFnCall:
		ty, err = c.inferFnCall(term, t.FnCall)
	case tir.TermHole:
		ty = c.Env.Tys.Create(tir.Ty{Kind: tir.TyHole, Hole: t.Hole}, originFor(c.Env, term))
	case tir.TermTy:
		ty = c.Env.Tys.Create(tir.Ty{Kind: tir.TyUniverse, Universe: 0}, originFor(c.Env, term))
	case tir.TermBlock:
		ty, err = c.inferBlock(t.Block)
	case tir.TermDeref:
		ty, err = c.inferDeref(t.Deref)
	case tir.TermRef:
		ty, err = c.inferRef(t.Ref)
	case tir.TermCast:
		ty = t.Cast.To
	default:
		ty = tir.NoTyId
	}
	if err != nil {
		return tir.NoTyId, err
	}
	c.ExprTypes[term] = ty
	return ty, nil
}

// checkLit implements spec.md §4.3.2's literal defaulting: an unsuffixed
// numeric literal adopts the annotation if it names a numeric primitive,
// otherwise it defaults; chars/strings/bools always check against their
// one fixed type.
func (c *Checker) checkLit(term tir.TermId, lit tir.Lit, expected tir.TyId) error {
	switch lit.Kind {
	case tir.LitInt:
		ty := expected
		if !ty.IsValid() || !c.isNumericPrimitive(ty) {
			ty = c.defaultIntTy()
		}
		c.ExprTypes[term] = ty
		return nil
	case tir.LitFloat:
		ty := expected
		if !ty.IsValid() || !c.isNumericPrimitive(ty) {
			ty = c.defaultFloatTy()
		}
		c.ExprTypes[term] = ty
		return nil
	case tir.LitChar:
		c.ExprTypes[term] = c.dataTy(c.Defaults.Char)
		return c.unifyIfExpected(term, expected)
	case tir.LitStr:
		c.ExprTypes[term] = c.dataTy(c.Defaults.Str)
		return c.unifyIfExpected(term, expected)
	case tir.LitBool:
		c.ExprTypes[term] = c.dataTy(c.Defaults.Bool)
		return c.unifyIfExpected(term, expected)
	}
	return nil
}

func (c *Checker) unifyIfExpected(term tir.TermId, expected tir.TyId) error {
	if !expected.IsValid() {
		return nil
	}
	return c.Unifier.UnifyTys(UnifyOptions{ModifyTerms: true}, NewSub(), c.ExprTypes[term], expected)
}

// checkVar implements "if the binding has a declared type, a fresh copy of
// that type is unified with the annotation; if only a value is known, its
// type is inferred. No binding -> fatal internal error" (spec.md §4.3.2).
func (c *Checker) checkVar(term tir.TermId, sym tir.SymbolId, expected tir.TyId) error {
	ty, err := c.inferVar(sym)
	if err != nil {
		return err
	}
	c.ExprTypes[term] = ty
	if !expected.IsValid() {
		return nil
	}
	return c.Unifier.UnifyTys(UnifyOptions{ModifyTerms: true}, NewSub(), ty, expected)
}

func (c *Checker) inferVar(sym tir.SymbolId) (tir.TyId, error) {
	if c.Ctx == nil {
		return tir.NoTyId, unboundVariable()
	}
	if declTy, ok := c.Ctx.DeclTypeOf(sym); ok {
		return declTy, nil
	}
	if value, ok := c.Ctx.ValueOf(sym); ok {
		return c.Infer(value)
	}
	return tir.NoTyId, unboundVariable()
}

// checkFnCall and inferFnCall implement spec.md §4.3.2's function-call
// rule: infer the subject's type; if Fn{params,return}, unify the arg list
// with params (matching by name where named, else by position via
// Env.ResolveArg), build a substitution from param symbols to arg values,
// and apply it to return. A reference subject gets one implicit deref.
// Anything else reports NotAFunction.
func (c *Checker) checkFnCall(term tir.TermId, call tir.FnCallTerm, expected tir.TyId) error {
	ty, err := c.inferFnCall(term, call)
	if err != nil {
		return err
	}
	c.ExprTypes[term] = ty
	if !expected.IsValid() {
		return nil
	}
	return c.Unifier.UnifyTys(UnifyOptions{ModifyTerms: true}, NewSub(), ty, expected)
}

func (c *Checker) inferFnCall(term tir.TermId, call tir.FnCallTerm) (tir.TyId, error) {
	subjectTy, err := c.Infer(call.Subject)
	if err != nil {
		return tir.NoTyId, err
	}

	fnTy, ok := c.resolveFnTy(subjectTy)
	if !ok {
		return tir.NoTyId, notAFunction()
	}

	sub := NewSub()
	for _, a := range c.Env.Args.All(call.Args) {
		p, _, ok := c.Env.ResolveArg(fnTy.Params, a)
		if !ok {
			return tir.NoTyId, argNotFound("call argument targets no parameter")
		}
		if err := c.Check(a.Value, p.Ty); err != nil {
			return tir.NoTyId, err
		}
		sub.Extend(p.Name, a.Value)
	}

	return ApplyTy(c.Env, sub, fnTy.Return), nil
}

// resolveFnTy unwraps at most one layer of reference around a Fn type, per
// spec.md §4.3.2's "if the subject has a reference type, try an implicit
// deref once".
func (c *Checker) resolveFnTy(ty tir.TyId) (tir.FnTy, bool) {
	t := c.Env.Tys.Get(ty).Data
	if t.Kind == tir.TyFn {
		return t.Fn, true
	}
	if t.Kind == tir.TyRef {
		inner := c.Env.Tys.Get(t.Ref.Inner).Data
		if inner.Kind == tir.TyFn {
			return inner.Fn, true
		}
	}
	return tir.FnTy{}, false
}

func (c *Checker) inferBlock(b tir.BlockTerm) (tir.TyId, error) {
	for _, s := range b.Statements {
		if _, err := c.Infer(s); err != nil {
			return tir.NoTyId, err
		}
	}
	if !b.Result.IsValid() {
		// A block with no terminal expression has unit type. The concrete
		// DataDefId for unit is registered by the prelude the same way
		// Int/Float/Char/Str/Bool are; internal/lower supplies it alongside
		// the other Defaults once that prelude exists.
		return c.dataTy(c.Defaults.Unit), nil
	}
	return c.Infer(b.Result)
}

func (c *Checker) inferDeref(d tir.DerefTerm) (tir.TyId, error) {
	innerTy, err := c.Infer(d.Inner)
	if err != nil {
		return tir.NoTyId, err
	}
	t := c.Env.Tys.Get(innerTy).Data
	if t.Kind != tir.TyRef {
		return tir.NoTyId, mismatchingAtoms("deref of a non-reference type")
	}
	return t.Ref.Inner, nil
}

func (c *Checker) inferRef(r tir.RefTerm) (tir.TyId, error) {
	innerTy, err := c.Infer(r.Inner)
	if err != nil {
		return tir.NoTyId, err
	}
	return c.Env.Tys.Create(tir.Ty{
		Kind: tir.TyRef,
		Ref:  tir.RefTy{Kind: r.Kind, Mutable: r.Mutable, Inner: innerTy},
	}, tir.Generated()), nil
}

func (c *Checker) dataTy(def tir.DataDefId) tir.TyId {
	return c.Env.Tys.Create(tir.Ty{Kind: tir.TyData, Data: tir.DataTy{Def: def}}, tir.Generated())
}

func (c *Checker) defaultIntTy() tir.TyId   { return c.dataTy(c.Defaults.Int) }
func (c *Checker) defaultFloatTy() tir.TyId { return c.dataTy(c.Defaults.Float) }

func (c *Checker) defaultLitTy(lit tir.Lit) tir.TyId {
	switch lit.Kind {
	case tir.LitInt:
		return c.defaultIntTy()
	case tir.LitFloat:
		return c.defaultFloatTy()
	case tir.LitChar:
		return c.dataTy(c.Defaults.Char)
	case tir.LitStr:
		return c.dataTy(c.Defaults.Str)
	case tir.LitBool:
		return c.dataTy(c.Defaults.Bool)
	}
	return tir.NoTyId
}

// isNumericPrimitive reports whether ty names a DataDef whose Ctors are
// CtorsPrimitive with PrimNumeric — i.e. whether an unsuffixed numeric
// literal may adopt it directly (spec.md §4.3.2).
func (c *Checker) isNumericPrimitive(ty tir.TyId) bool {
	t := c.Env.Tys.Get(ty).Data
	if t.Kind != tir.TyData || !t.Data.Def.IsValid() {
		return false
	}
	def := c.Env.DataDefs.Get(t.Data.Def).Data
	return def.CtorsKind == tir.CtorsPrimitive && def.Primitive.Kind == tir.PrimNumeric
}
