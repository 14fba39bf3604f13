package lower

import "corec/internal/tir"

// optionCtors, resultCtors and rangeCtor cache the synthetic DataDefs
// lowering fabricates for surface constructs that have no directly
// corresponding TIR type (spec.md §3.3 names no TyOptional/TyErrorable/
// TyRange variant): `T?`, `T!E` and `a..b` respectively. Each is built once
// per Lowerer and reused for every occurrence in the file, the same
// memoisation style as primitiveDataDef/arrayDataDef.
type optionCtors struct {
	data tir.DataDefId
	t    tir.SymbolId // the Option's own generic parameter symbol
	some tir.CtorDefId
	none tir.CtorDefId
}

type resultCtors struct {
	data tir.DataDefId
	ok   tir.CtorDefId
	err  tir.CtorDefId
}

type rangeCtor struct {
	data tir.DataDefId
	ctor tir.CtorDefId
}

// universeType returns the type of a type: spec.md §3.3's TyUniverse, used
// as the Ty of a DataDef's own generic Params (a type parameter's "type" is
// a universe, not a data type).
func (l *Lowerer) universeType() tir.TyId {
	return l.Env.Tys.Create(tir.Ty{Kind: tir.TyUniverse}, tir.Generated())
}

func (l *Lowerer) typeVar(sym tir.SymbolId) tir.TyId {
	return l.Env.Tys.Create(tir.Ty{Kind: tir.TyVar, Var: sym}, tir.Generated())
}

// optionDataDef lazily builds Option<T> = Some(T) | None, the target of
// lowering a `T?` optional type.
func (l *Lowerer) optionDataDef() tir.DataDefId {
	if l.option != nil {
		return l.option.data
	}
	name := l.newSymbolFromText("Option", tir.Generated())
	tParam := l.Env.Symbols.Fresh(tir.Generated())
	params := l.Env.Params.CreateFromIter([]tir.Param{{Name: tParam, Ty: l.universeType(), Default: tir.NoTermId}})
	dataDef := l.Env.DataDefs.Create(tir.DataDef{Name: name, Params: params}, tir.Generated())

	someParams := l.Env.Params.CreateFromIter([]tir.Param{{Name: tir.NoSymbolId, Ty: l.typeVar(tParam), Default: tir.NoTermId}})
	some := l.Env.CtorDefs.Create(tir.CtorDef{
		Name: l.newSymbolFromText("Some", tir.Generated()), DataDef: dataDef, DataDefCtorIndex: 0, Params: someParams,
	}, tir.Generated())
	none := l.Env.CtorDefs.Create(tir.CtorDef{
		Name: l.newSymbolFromText("None", tir.Generated()), DataDef: dataDef, DataDefCtorIndex: 1, Params: tir.NoParamsId,
	}, tir.Generated())
	ctors := l.Env.CtorDefsSeq.CreateFromIter([]tir.CtorDefId{some, none})
	l.Env.DataDefs.Modify(dataDef, func(d *tir.DataDef) { d.CtorsKind = tir.CtorsDefined; d.Ctors = ctors })

	l.option = &optionCtors{data: dataDef, t: tParam, some: some, none: none}
	return dataDef
}

// resultDataDef lazily builds Result<T, E> = Ok(T) | Err(E), the target of
// lowering a `T!E` errorable type.
func (l *Lowerer) resultDataDef() tir.DataDefId {
	if l.result != nil {
		return l.result.data
	}
	name := l.newSymbolFromText("Result", tir.Generated())
	tParam := l.Env.Symbols.Fresh(tir.Generated())
	eParam := l.Env.Symbols.Fresh(tir.Generated())
	params := l.Env.Params.CreateFromIter([]tir.Param{
		{Name: tParam, Ty: l.universeType(), Default: tir.NoTermId},
		{Name: eParam, Ty: l.universeType(), Default: tir.NoTermId},
	})
	dataDef := l.Env.DataDefs.Create(tir.DataDef{Name: name, Params: params}, tir.Generated())

	okParams := l.Env.Params.CreateFromIter([]tir.Param{{Name: tir.NoSymbolId, Ty: l.typeVar(tParam), Default: tir.NoTermId}})
	errParams := l.Env.Params.CreateFromIter([]tir.Param{{Name: tir.NoSymbolId, Ty: l.typeVar(eParam), Default: tir.NoTermId}})
	ok := l.Env.CtorDefs.Create(tir.CtorDef{
		Name: l.newSymbolFromText("Ok", tir.Generated()), DataDef: dataDef, DataDefCtorIndex: 0, Params: okParams,
	}, tir.Generated())
	err := l.Env.CtorDefs.Create(tir.CtorDef{
		Name: l.newSymbolFromText("Err", tir.Generated()), DataDef: dataDef, DataDefCtorIndex: 1, Params: errParams,
	}, tir.Generated())
	ctors := l.Env.CtorDefsSeq.CreateFromIter([]tir.CtorDefId{ok, err})
	l.Env.DataDefs.Modify(dataDef, func(d *tir.DataDef) { d.CtorsKind = tir.CtorsDefined; d.Ctors = ctors })

	l.result = &resultCtors{data: dataDef, ok: ok, err: err}
	return dataDef
}

// rangeDataDef lazily builds the carrier type for `lo..hi` / `lo..=hi`
// range expressions: a single constructor holding the two endpoints plus
// whether the upper one is inclusive. Endpoints are left untyped (TyHole)
// at the DataDef level since Range is non-generic here — bidirectional
// checking unifies lo/hi's element type at each use site.
func (l *Lowerer) rangeDataDef() tir.DataDefId {
	if l.rangeT != nil {
		return l.rangeT.data
	}
	name := l.newSymbolFromText("Range", tir.Generated())
	dataDef := l.Env.DataDefs.Create(tir.DataDef{Name: name}, tir.Generated())

	hole := l.freshTyHole()
	boolDef, _ := l.primitiveDataDef("bool")
	boolTy := l.Env.Tys.Create(tir.Ty{Kind: tir.TyData, Data: tir.DataTy{Def: boolDef}}, tir.Generated())
	params := l.Env.Params.CreateFromIter([]tir.Param{
		{Name: l.newSymbolFromText("lo", tir.Generated()), Ty: hole, Default: tir.NoTermId},
		{Name: l.newSymbolFromText("hi", tir.Generated()), Ty: hole, Default: tir.NoTermId},
		{Name: l.newSymbolFromText("inclusive", tir.Generated()), Ty: boolTy, Default: tir.NoTermId},
	})
	ctor := l.Env.CtorDefs.Create(tir.CtorDef{
		Name: l.newSymbolFromText("range", tir.Generated()), DataDef: dataDef, DataDefCtorIndex: 0, Params: params,
	}, tir.Generated())
	ctors := l.Env.CtorDefsSeq.CreateFromIter([]tir.CtorDefId{ctor})
	l.Env.DataDefs.Modify(dataDef, func(d *tir.DataDef) { d.CtorsKind = tir.CtorsDefined; d.Ctors = ctors })

	l.rangeT = &rangeCtor{data: dataDef, ctor: ctor}
	return dataDef
}

// rangeTerm builds a `tir.TermCtor` instantiating the Range carrier for
// `lo..hi` (inclusive=false) or `lo..=hi` (inclusive=true).
func (l *Lowerer) rangeTerm(lo, hi tir.TermId, inclusive bool, origin tir.NodeOrigin) tir.TermId {
	l.rangeDataDef()
	boolLit := l.Env.Terms.Create(tir.Term{Kind: tir.TermLit, Lit: tir.Lit{Kind: tir.LitBool, Bool: inclusive}}, tir.Generated())
	args := l.Env.Args.CreateFromIter([]tir.Arg{
		{Target: tir.ArgTarget{Position: 0}, Value: lo},
		{Target: tir.ArgTarget{Position: 1}, Value: hi},
		{Target: tir.ArgTarget{Position: 2}, Value: boolLit},
	})
	return l.Env.Terms.Create(tir.Term{Kind: tir.TermCtor, Ctor: tir.CtorTerm{Ctor: l.rangeT.ctor, Args: args}}, origin)
}

// someTerm/noneTerm build Option constructor terms (Some(value) and None);
// no lowering in this package calls them.
func (l *Lowerer) someTerm(value tir.TermId, origin tir.NodeOrigin) tir.TermId {
	l.optionDataDef()
	args := l.Env.Args.CreateFromIter([]tir.Arg{{Target: tir.ArgTarget{Position: 0}, Value: value}})
	return l.Env.Terms.Create(tir.Term{Kind: tir.TermCtor, Ctor: tir.CtorTerm{Ctor: l.option.some, Args: args}}, origin)
}

func (l *Lowerer) noneTerm(origin tir.NodeOrigin) tir.TermId {
	l.optionDataDef()
	return l.Env.Terms.Create(tir.Term{Kind: tir.TermCtor, Ctor: tir.CtorTerm{Ctor: l.option.none}}, origin)
}

// bindBuiltinCtors makes Some/None/Ok/Err resolvable as bare identifiers in
// every file, the same prelude-like treatment this Lowerer gives `i32`,
// `str` and friends: Option/Result have no surface declaration anywhere in
// the source being lowered, so without this, user match arms or calls
// naming them would never resolve.
func (l *Lowerer) bindBuiltinCtors() {
	l.optionDataDef()
	l.resultDataDef()
	for _, pair := range [...]struct {
		text string
		ctor tir.CtorDefId
	}{
		{"Some", l.option.some}, {"None", l.option.none},
		{"Ok", l.result.ok}, {"Err", l.result.err},
	} {
		name := l.Builder.StringsInterner.Intern(pair.text)
		ctorSym := l.Env.CtorDefs.Get(pair.ctor).Data.Name
		l.bind(name, ctorSym)
		l.ctorSymbols[ctorSym] = pair.ctor
	}
}
