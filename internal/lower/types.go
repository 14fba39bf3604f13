package lower

import (
	"corec/internal/ast"
	"corec/internal/diag"
	"corec/internal/tir"
)

// numericPrimitives lists every built-in scalar name this AST's type-path
// syntax can name, and the NumericPrimInfo lowering gives it. `bool` is
// modelled as an unsigned 1-bit numeric rather than a dedicated PrimKind,
// matching spec.md §4.7's "Bool -> Scalar(0..=1)" layout rule: a range, not
// a distinct representation.
var numericPrimitives = map[string]tir.NumericPrimInfo{
	"i8":    {Signed: true, Bits: 8},
	"i16":   {Signed: true, Bits: 16},
	"i32":   {Signed: true, Bits: 32},
	"i64":   {Signed: true, Bits: 64},
	"isize": {Signed: true, Bits: 64},
	"u8":    {Signed: false, Bits: 8},
	"u16":   {Signed: false, Bits: 16},
	"u32":   {Signed: false, Bits: 32},
	"u64":   {Signed: false, Bits: 64},
	"usize": {Signed: false, Bits: 64},
	"f32":   {Signed: true, Bits: 32, Float: true},
	"f64":   {Signed: true, Bits: 64, Float: true},
	"bool":  {Signed: false, Bits: 1},
}

// unitType returns the empty tuple: this AST's sugar-free encoding of "no
// return type annotation" (a procedure with no explicit `-> T`).
func (l *Lowerer) unitType() tir.TyId {
	params := l.Env.Params.CreateFromIter(nil)
	return l.Env.Tys.Create(tir.Ty{Kind: tir.TyTuple, Tuple: tir.TupleTy{Params: params}}, tir.Generated())
}

// freshTyHole allocates a type hole for a declaration that omitted its
// annotation (spec.md §4.3.2 defers such decisions to bidirectional
// checking; lowering's job is only to leave a slot for it).
func (l *Lowerer) freshTyHole() tir.TyId {
	sym := l.Env.Symbols.Fresh(tir.Generated())
	return l.Env.Tys.Create(tir.Ty{Kind: tir.TyHole, Hole: sym}, tir.Generated())
}

// PrimitiveDataDef exposes primitiveDataDef to callers outside this
// package — internal/driver's Typecheck stage needs the same prelude
// DataDefIds this Lowerer already registered (or would register on first
// reference) to build a check.Defaults, and must not keep a second,
// divergent copy of the primitive-name table to get them.
func (l *Lowerer) PrimitiveDataDef(name string) (tir.DataDefId, bool) {
	return l.primitiveDataDef(name)
}

// primitiveDataDef returns (creating on first use) the DataDef backing a
// built-in scalar/str/char name.
func (l *Lowerer) primitiveDataDef(name string) (tir.DataDefId, bool) {
	if id, ok := l.primitives[name]; ok {
		return id, true
	}
	var prim tir.PrimCtorInfo
	switch {
	case name == "str":
		prim = tir.PrimCtorInfo{Kind: tir.PrimStr}
	case name == "char":
		prim = tir.PrimCtorInfo{Kind: tir.PrimChar}
	default:
		info, ok := numericPrimitives[name]
		if !ok {
			return tir.NoDataDefId, false
		}
		prim = tir.PrimCtorInfo{Kind: tir.PrimNumeric, Numeric: info}
	}
	sym := l.newSymbolFromText(name, tir.Generated())
	id := l.Env.DataDefs.Create(tir.DataDef{Name: sym, CtorsKind: tir.CtorsPrimitive, Primitive: prim}, tir.Generated())
	l.primitives[name] = id
	return id, true
}

// arrayDataDef returns (creating on first use) the DataDef for a [T] slice
// or [T; N] sized array of elem, memoised by (elem, length) so repeated
// occurrences of the same array type share one DataDef.
func (l *Lowerer) arrayDataDef(elem tir.TyId, hasLength bool, length uint64) tir.DataDefId {
	key := arrayKey{Elem: elem, HasLength: hasLength, Length: length}
	if id, ok := l.arrays[key]; ok {
		return id
	}
	sym := l.newSymbolFromText("array", tir.Generated())
	prim := tir.PrimCtorInfo{Kind: tir.PrimArray, Array: tir.ArrayPrimInfo{Element: elem, HasLength: hasLength, Length: length}}
	id := l.Env.DataDefs.Create(tir.DataDef{Name: sym, CtorsKind: tir.CtorsPrimitive, Primitive: prim}, tir.Generated())
	l.arrays[key] = id
	return id
}

// tyArg wraps a Ty as the Arg a DataTy/generic instantiation needs: spec.md
// §3.3's TermTy variant lets a term denote a type, which is how a type
// argument is threaded through an ArgsId sequence built from Terms.
func (l *Lowerer) tyArg(position uint32, ty tir.TyId) tir.Arg {
	term := l.Env.Terms.Create(tir.Term{Kind: tir.TermTy, Ty: ty}, tir.Generated())
	return tir.Arg{Target: tir.ArgTarget{Position: position}, Value: term}
}

// lowerType lowers a single AST type expression to a TyId (spec.md §4.5).
func (l *Lowerer) lowerType(id ast.TypeID) tir.TyId {
	if !id.IsValid() {
		return l.unitType()
	}
	texpr := l.Builder.Types.Get(id)
	if texpr == nil {
		return l.freshTyHole()
	}

	switch texpr.Kind {
	case ast.TypeExprPath:
		return l.lowerPathType(id, texpr)

	case ast.TypeExprUnary:
		u, ok := l.Builder.Types.UnaryType(id)
		if !ok {
			return l.freshTyHole()
		}
		inner := l.lowerType(u.Inner)
		switch u.Op {
		case ast.TypeUnaryPointer:
			return l.Env.Tys.Create(tir.Ty{Kind: tir.TyRef, Ref: tir.RefTy{Kind: tir.RefRaw, Inner: inner}}, tir.Given(l.nodeOf(ast.NodeKindType, uint32(id))))
		case ast.TypeUnaryRefMut:
			return l.Env.Tys.Create(tir.Ty{Kind: tir.TyRef, Ref: tir.RefTy{Kind: tir.RefSmart, Mutable: true, Inner: inner}}, tir.Given(l.nodeOf(ast.NodeKindType, uint32(id))))
		default: // TypeUnaryRef, TypeUnaryOwn
			return l.Env.Tys.Create(tir.Ty{Kind: tir.TyRef, Ref: tir.RefTy{Kind: tir.RefSmart, Inner: inner}}, tir.Given(l.nodeOf(ast.NodeKindType, uint32(id))))
		}

	case ast.TypeExprArray:
		arr, ok := l.Builder.Types.Array(id)
		if !ok {
			return l.freshTyHole()
		}
		elem := l.lowerType(arr.Elem)
		hasLen := arr.Kind == ast.ArraySized && arr.HasConstLen
		def := l.arrayDataDef(elem, hasLen, arr.ConstLength)
		return l.Env.Tys.Create(tir.Ty{Kind: tir.TyData, Data: tir.DataTy{Def: def}}, tir.Given(l.nodeOf(ast.NodeKindType, uint32(id))))

	case ast.TypeExprTuple:
		tup, ok := l.Builder.Types.Tuple(id)
		if !ok {
			return l.freshTyHole()
		}
		params := make([]tir.Param, len(tup.Elems))
		for i, el := range tup.Elems {
			params[i] = tir.Param{Ty: l.lowerType(el)}
		}
		return l.Env.Tys.Create(tir.Ty{Kind: tir.TyTuple, Tuple: tir.TupleTy{Params: l.Env.Params.CreateFromIter(params)}}, tir.Given(l.nodeOf(ast.NodeKindType, uint32(id))))

	case ast.TypeExprFn:
		fnt, ok := l.Builder.Types.Fn(id)
		if !ok {
			return l.freshTyHole()
		}
		params := make([]tir.Param, len(fnt.Params))
		for i, p := range fnt.Params {
			params[i] = tir.Param{Name: l.newSymbol(p.Name, tir.Generated()), Ty: l.lowerType(p.Type)}
		}
		return l.Env.Tys.Create(tir.Ty{Kind: tir.TyFn, Fn: tir.FnTy{
			Params: l.Env.Params.CreateFromIter(params),
			Return: l.lowerType(fnt.Return),
		}}, tir.Given(l.nodeOf(ast.NodeKindType, uint32(id))))

	case ast.TypeExprOptional:
		opt, ok := l.Builder.Types.Optional(id)
		if !ok {
			return l.freshTyHole()
		}
		inner := l.lowerType(opt.Inner)
		def := l.optionDataDef()
		args := l.Env.Args.CreateFromIter([]tir.Arg{l.tyArg(0, inner)})
		return l.Env.Tys.Create(tir.Ty{Kind: tir.TyData, Data: tir.DataTy{Def: def, Args: args}}, tir.Given(l.nodeOf(ast.NodeKindType, uint32(id))))

	case ast.TypeExprErrorable:
		errt, ok := l.Builder.Types.Errorable(id)
		if !ok {
			return l.freshTyHole()
		}
		okTy := l.lowerType(errt.Inner)
		errTy := l.lowerType(errt.Error)
		if !errt.Error.IsValid() {
			errTy = l.primitiveType("str")
		}
		def := l.resultDataDef()
		args := l.Env.Args.CreateFromIter([]tir.Arg{l.tyArg(0, okTy), l.tyArg(1, errTy)})
		return l.Env.Tys.Create(tir.Ty{Kind: tir.TyData, Data: tir.DataTy{Def: def, Args: args}}, tir.Given(l.nodeOf(ast.NodeKindType, uint32(id))))

	case ast.TypeExprConst:
		// A string-literal type (used for tag/const-generic payloads) has no
		// direct TyKind counterpart; surfaced as a hole with a diagnostic
		// rather than silently miscompiling.
		l.report(diag.SevError, diag.SemLowerUnsupportedType, texpr.Span, "const type expressions are not supported by lowering")
		return l.freshTyHole()

	default:
		return l.freshTyHole()
	}
}

func (l *Lowerer) primitiveType(name string) tir.TyId {
	def, _ := l.primitiveDataDef(name)
	return l.Env.Tys.Create(tir.Ty{Kind: tir.TyData, Data: tir.DataTy{Def: def}}, tir.Generated())
}

// lowerPathType resolves a (possibly generic) type path: either a built-in
// scalar name, or a user-declared type's symbol bound during LowerFile's
// first pass (spec.md §4.5's forward-reference support).
func (l *Lowerer) lowerPathType(id ast.TypeID, texpr *ast.TypeExpr) tir.TyId {
	path, ok := l.Builder.Types.Path(id)
	if !ok || len(path.Segments) == 0 {
		return l.freshTyHole()
	}
	seg := path.Segments[len(path.Segments)-1]
	origin := tir.Given(l.nodeOf(ast.NodeKindType, uint32(id)))

	if text, ok := l.Builder.StringsInterner.Lookup(seg.Name); ok {
		if def, ok := l.primitiveDataDef(text); ok {
			return l.Env.Tys.Create(tir.Ty{Kind: tir.TyData, Data: tir.DataTy{Def: def}}, origin)
		}
	}

	sym, ok := l.resolve(seg.Name)
	if !ok {
		l.report(diag.SevError, diag.SemLowerUnresolvedType, texpr.Span, "unresolved type name")
		return l.freshTyHole()
	}
	def, ok := l.dataSymbols[sym]
	if !ok {
		l.report(diag.SevError, diag.SemLowerNotATypeName, texpr.Span, "name does not refer to a type")
		return l.freshTyHole()
	}

	var args tir.ArgsId
	if len(seg.Generics) > 0 {
		argVals := make([]tir.Arg, len(seg.Generics))
		for i, g := range seg.Generics {
			argVals[i] = l.tyArg(uint32(i), l.lowerType(g))
		}
		args = l.Env.Args.CreateFromIter(argVals)
	}
	return l.Env.Tys.Create(tir.Ty{Kind: tir.TyData, Data: tir.DataTy{Def: def, Args: args}}, origin)
}
