package lower

import (
	"fmt"

	"corec/internal/ast"
	"corec/internal/tir"
)

func (l *Lowerer) newSymbolFromText(text string, origin tir.NodeOrigin) tir.SymbolId {
	return l.Env.Symbols.FromName(l.Env.Idents.InternIdent(text), origin)
}

// lowerFnBody fills in fnDef's signature and body, now that every sibling
// declaration in the file has a symbol bound (spec.md §4.5).
func (l *Lowerer) lowerFnBody(item ast.ItemID, fnDef tir.FnDefId) {
	fn, ok := l.Builder.Items.Fn(item)
	if !ok {
		return
	}
	origin := tir.Given(l.nodeOf(ast.NodeKindItem, uint32(item)))

	l.pushScope()
	defer l.popScope()

	ids := l.Builder.Items.GetFnParamIDs(fn)
	params := make([]tir.Param, 0, len(ids))
	for _, pid := range ids {
		p := l.Builder.Items.FnParam(pid)
		if p == nil {
			continue
		}
		sym := l.newSymbol(p.Name, origin)
		l.bind(p.Name, sym)
		def := tir.NoTermId
		if p.Default.IsValid() {
			def = l.lowerExpr(p.Default)
		}
		params = append(params, tir.Param{Name: sym, Ty: l.lowerType(p.Type), Default: def})
	}
	paramsId := l.Env.Params.CreateFromIter(params)

	retTy := l.unitType()
	if fn.ReturnType.IsValid() {
		retTy = l.lowerType(fn.ReturnType)
	}

	bodyKind := tir.FnBodyAxiom
	body := tir.NoTermId
	if fn.Body.IsValid() {
		bodyKind = tir.FnBodyDefined
		body = l.lowerStmtAsTerm(fn.Body)
	}

	l.Env.FnDefs.Modify(fnDef, func(d *tir.FnDef) {
		d.Ty = tir.FnTy{
			Params: paramsId,
			Return: retTy,
			Pure:   fn.Attr&ast.FnAttrPure != 0,
			Unsafe: fn.Attr&ast.FnAttrUnsafe != 0,
		}
		d.BodyKind = bodyKind
		d.Body = body
	})
}

// lowerConstBody lowers a module-level const into the zero-parameter FnDef
// stub LowerFile already allocated for it.
func (l *Lowerer) lowerConstBody(item ast.ItemID, fnDef tir.FnDefId) {
	c, ok := l.Builder.Items.Const(item)
	if !ok {
		return
	}
	retTy := l.freshTyHole()
	if c.Type.IsValid() {
		retTy = l.lowerType(c.Type)
	}
	value := tir.NoTermId
	if c.Value.IsValid() {
		value = l.lowerExpr(c.Value)
	}
	l.Env.FnDefs.Modify(fnDef, func(d *tir.FnDef) {
		d.Ty = tir.FnTy{Return: retTy, Pure: true}
		d.BodyKind = tir.FnBodyDefined
		d.Body = value
	})
}

// lowerDataBody fills in dataDef's constructors (spec.md §4.5; §3.4's
// DataDef/CtorDef). Every TypeDeclKind produces CtorsDefined data: aliases
// as a single transparent-wrapper constructor, structs as a single
// field-carrying constructor, unions and enums as one constructor per
// member/variant.
func (l *Lowerer) lowerDataBody(item ast.ItemID, dataDef tir.DataDefId) {
	ti, ok := l.Builder.Items.Type(item)
	if !ok {
		return
	}
	origin := tir.Given(l.nodeOf(ast.NodeKindItem, uint32(item)))
	name := l.Env.DataDefs.Get(dataDef).Data.Name

	var ctors []tir.CtorDef
	switch ti.Kind {
	case ast.TypeDeclAlias:
		alias := l.Builder.Items.TypeAlias(ti)
		if alias == nil {
			return
		}
		params := l.Env.Params.CreateFromIter([]tir.Param{
			{Name: tir.NoSymbolId, Ty: l.lowerType(alias.Target), Default: tir.NoTermId},
		})
		ctors = []tir.CtorDef{{Name: name, DataDef: dataDef, DataDefCtorIndex: 0, Params: params}}

	case ast.TypeDeclStruct:
		st := l.Builder.Items.TypeStruct(ti)
		if st == nil {
			return
		}
		var fields []tir.Param
		if st.Base.IsValid() {
			fields = append(fields, tir.Param{Name: l.newSymbolFromText("base", origin), Ty: l.lowerType(st.Base)})
		}
		base := uint32(st.FieldsStart)
		for off := range st.FieldsCount {
			field := l.Builder.Items.StructField(ast.TypeFieldID(base + off))
			if field == nil {
				continue
			}
			def := tir.NoTermId
			if field.Default.IsValid() {
				def = l.lowerExpr(field.Default)
			}
			fields = append(fields, tir.Param{Name: l.newSymbol(field.Name, origin), Ty: l.lowerType(field.Type), Default: def})
		}
		params := l.Env.Params.CreateFromIter(fields)
		ctors = []tir.CtorDef{{Name: name, DataDef: dataDef, DataDefCtorIndex: 0, Params: params}}

	case ast.TypeDeclUnion:
		un := l.Builder.Items.TypeUnion(ti)
		if un == nil {
			return
		}
		base := uint32(un.MembersStart)
		for off := range un.MembersCount {
			member := l.Builder.Items.UnionMember(ast.TypeUnionMemberID(base + off))
			if member == nil {
				continue
			}
			ctors = append(ctors, l.lowerUnionMember(dataDef, uint32(len(ctors)), *member, origin))
		}

	case ast.TypeDeclEnum:
		en := l.Builder.Items.TypeEnum(ti)
		if en == nil {
			return
		}
		base := uint32(en.VariantsStart)
		for off := range en.VariantsCount {
			variant := l.Builder.Items.EnumVariant(ast.EnumVariantID(base + off))
			if variant == nil {
				continue
			}
			sym := l.newSymbol(variant.Name, origin)
			l.bind(variant.Name, sym)
			ctors = append(ctors, tir.CtorDef{
				Name:             sym,
				DataDef:          dataDef,
				DataDefCtorIndex: uint32(len(ctors)),
				Params:           tir.NoParamsId,
			})
			// Explicit discriminant values (`Variant = N`) are not carried
			// onto CtorDef (spec.md §3.4 gives it no discriminant field);
			// internal/cfg's match lowering switches on each constructor's
			// DataDefCtorIndex, i.e. its declaration order.
		}
	}

	ctorIds := make([]tir.CtorDefId, len(ctors))
	for i, c := range ctors {
		ctorIds[i] = l.Env.CtorDefs.Create(c, origin)
		// Union/enum constructors are visible unqualified in the same scope
		// as the type itself, the same "variant names flatten into scope"
		// treatment applied to the synthetic Option/Result ctors
		// (bindBuiltinCtors).
		l.ctorSymbols[c.Name] = ctorIds[i]
	}
	ctorsSeq := l.Env.CtorDefsSeq.CreateFromIter(ctorIds)

	l.Env.DataDefs.Modify(dataDef, func(d *tir.DataDef) {
		d.CtorsKind = tir.CtorsDefined
		d.Ctors = ctorsSeq
	})
}

func (l *Lowerer) lowerUnionMember(dataDef tir.DataDefId, index uint32, member ast.TypeUnionMember, origin tir.NodeOrigin) tir.CtorDef {
	switch member.Kind {
	case ast.TypeUnionMemberTag:
		params := make([]tir.Param, len(member.TagArgs))
		for i, arg := range member.TagArgs {
			params[i] = tir.Param{Name: tir.NoSymbolId, Ty: l.lowerType(arg)}
		}
		sym := l.newSymbol(member.TagName, origin)
		l.bind(member.TagName, sym)
		return tir.CtorDef{
			Name:             sym,
			DataDef:          dataDef,
			DataDefCtorIndex: index,
			Params:           l.Env.Params.CreateFromIter(params),
		}
	case ast.TypeUnionMemberNothing:
		return tir.CtorDef{
			Name:             l.newSymbolFromText("nothing", origin),
			DataDef:          dataDef,
			DataDefCtorIndex: index,
			Params:           tir.NoParamsId,
		}
	default: // TypeUnionMemberType
		params := l.Env.Params.CreateFromIter([]tir.Param{
			{Name: tir.NoSymbolId, Ty: l.lowerType(member.Type)},
		})
		return tir.CtorDef{
			Name:             l.newSymbolFromText(fmt.Sprintf("case%d", index), origin),
			DataDef:          dataDef,
			DataDefCtorIndex: index,
			Params:           params,
		}
	}
}
