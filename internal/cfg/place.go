package cfg

import (
	"strconv"
	"strings"

	"corec/internal/tir"
)

// asPlace is spec.md §4.6.4's as_place: it recognises a TermId that denotes
// a memory location rather than a computed value. A plain Variable resolves
// through the Builder's locals_by_symbol; a Deref unwraps one level; field
// access and indexing are not separate TermKinds in this TIR (internal/lower
// desugars both into a TermFnCall against a synthetic, Pure intrinsic
// FnDef — internal/lower/expr.go's fieldAccessFn/indexIntrinsicFn) so they
// are recognised here by inspecting the callee's name text.
func (fl *fnLowerer) asPlace(term tir.TermId) (Place, bool) {
	if !term.IsValid() {
		return Place{}, false
	}
	t := fl.Env.Terms.Get(term).Data
	switch t.Kind {
	case tir.TermVar:
		local, ok := fl.b.LookupLocal(t.Var)
		if !ok {
			return Place{}, false
		}
		return Place{Local: local}, true

	case tir.TermDeref:
		inner := fl.placeOf(t.Deref.Inner)
		return inner.Deref(), true

	case tir.TermFnCall:
		return fl.asPlaceFromCall(t.FnCall)
	}
	return Place{}, false
}

// placeOf returns term's place, materialising it into a fresh temp first
// when term is not itself place-like (e.g. the subject of a field access on
// a freshly-constructed, never-bound struct value).
func (fl *fnLowerer) placeOf(term tir.TermId) Place {
	if place, ok := fl.asPlace(term); ok {
		return place
	}
	tmp := fl.b.NewTemp(fl.resolveTermTy(term))
	dest := Place{Local: tmp}
	fl.exprIntoDest(dest, term)
	return dest
}

// asPlaceFromCall recognises the synthetic "__index" and "__field_NAME"
// intrinsic calls internal/lower emits for indexing and member access
// (internal/lower/expr.go's indexIntrinsicFn/fieldAccessFn), and lowers
// them directly to a Place rather than as an ordinary function call.
func (fl *fnLowerer) asPlaceFromCall(call tir.FnCallTerm) (Place, bool) {
	subj := fl.Env.Terms.Get(call.Subject).Data
	if subj.Kind != tir.TermFnRef {
		return Place{}, false
	}
	fn := fl.Env.FnDefs.Get(subj.FnRef.Fn).Data
	if fn.BodyKind != tir.FnBodyIntrinsic {
		return Place{}, false
	}
	name := fl.fnName(subj.FnRef.Fn)
	args := fl.Env.Args.All(call.Args)
	if len(args) == 0 {
		return Place{}, false
	}
	subject := fl.placeOf(args[0].Value)

	switch {
	case name == "__index":
		if len(args) < 2 {
			return Place{}, false
		}
		idxPlace := fl.placeOf(args[1].Value)
		idxLocal := idxPlace.Local
		if len(idxPlace.Projections) != 0 {
			// The index intrinsic's Place.Index projection needs a bare
			// local; copy a projected place into a fresh temp first.
			idxLocal = fl.b.NewTemp(fl.resolveTermTy(args[1].Value))
			fl.b.Emit(Statement{Kind: StmtAssign, Place: Place{Local: idxLocal}, RValue: RValue{Kind: RValueUse, Use: idxPlace}})
		}
		return subject.Index(idxLocal), true

	case strings.HasPrefix(name, "__field_"):
		field := strings.TrimPrefix(name, "__field_")
		idx, variant, hasVariant, ok := fl.fieldIndex(args[0].Value, field)
		if !ok {
			return Place{}, false
		}
		if hasVariant {
			subject = subject.Downcast(variant)
		}
		return subject.Field(idx), true
	}
	return Place{}, false
}

// fieldIndex resolves field (a numeric index or a surface field name) to a
// position within subjectTerm's data definition, and — for a multi-ctor
// (union) data def — the variant that must be downcast to first (spec.md
// §4.6.4: "enums require explicit downcast projection before field
// access").
//
// Named lookup cannot go through tir.Env.LookupFieldIndex's SymbolId
// comparison here: the intrinsic fieldAccessFn's "__field_"+name Name is a
// freshly-minted SymbolId (tir.Symbols.FromName never dedupes by text,
// spec.md §3.1), so it can never equal the original ctor field's SymbolId.
// Instead the field name's *text* is recovered from the intrinsic (the
// "__field_" prefix was stripped by the caller) and compared by identifier
// against each ctor param's own Name — the one piece of this pair that
// internal/ident does intern canonically.
func (fl *fnLowerer) fieldIndex(subjectTerm tir.TermId, field string) (idx int, variant uint32, hasVariant, ok bool) {
	ty, hasTy := fl.ExprTypes[subjectTerm]
	if !hasTy {
		return 0, 0, false, false
	}
	dataDef, ok := fl.underlyingDataDef(ty)
	if !ok {
		return 0, 0, false, false
	}
	def := fl.Env.DataDefs.Get(dataDef).Data
	if def.CtorsKind != tir.CtorsDefined {
		return 0, 0, false, false
	}
	n := fl.Env.CtorDefsSeq.Len(def.Ctors)
	if n == 0 {
		return 0, 0, false, false
	}
	if n == 1 {
		ctor := fl.Env.CtorDefs.Get(fl.Env.CtorDefsSeq.At(def.Ctors, 0)).Data
		fieldIdx, ok := fl.resolveFieldInParams(ctor.Params, field)
		return fieldIdx, 0, false, ok
	}
	// Multi-ctor data def: a bare field access is only legal once a single
	// ctor's shape is already established (e.g. within a match arm that has
	// downcast the subject). Scan every ctor for one owning this field; if
	// exactly one does, accessing it implies that downcast.
	found := -1
	var foundIdx int
	for i := 0; i < n; i++ {
		ctor := fl.Env.CtorDefs.Get(fl.Env.CtorDefsSeq.At(def.Ctors, i)).Data
		if fieldIdx, ok := fl.resolveFieldInParams(ctor.Params, field); ok {
			if found != -1 {
				return 0, 0, false, false // ambiguous across variants
			}
			found = i
			foundIdx = fieldIdx
		}
	}
	if found == -1 {
		return 0, 0, false, false
	}
	return foundIdx, uint32(found), true, true
}

func (fl *fnLowerer) resolveFieldInParams(params tir.ParamsId, field string) (int, bool) {
	if n, err := strconv.Atoi(field); err == nil {
		if n >= 0 && n < fl.Env.Params.Len(params) {
			return n, true
		}
		return 0, false
	}
	want := fl.Env.Idents.InternIdent(field)
	all := fl.Env.Params.All(params)
	for i, p := range all {
		if p.Name.IsValid() && fl.Env.Symbols.Name(p.Name) == want {
			return i, true
		}
	}
	return 0, false
}

// paramIndexByIdent is resolveFieldInParams's counterpart for pattern-arg
// binding targets, which name a ctor parameter via a SymbolId rather than
// surface text: since that SymbolId is the pattern's own fresh binder (not
// the ctor parameter's), comparison again has to go through the underlying
// identifier rather than SymbolId equality.
func (fl *fnLowerer) paramIndexByIdent(params tir.ParamsId, sym tir.SymbolId) (int, bool) {
	want := fl.Env.Symbols.Name(sym)
	if !want.IsValid() {
		return 0, false
	}
	all := fl.Env.Params.All(params)
	for i, p := range all {
		if p.Name.IsValid() && fl.Env.Symbols.Name(p.Name) == want {
			return i, true
		}
	}
	return 0, false
}

// underlyingDataDef unwraps a chain of TyRef indirections to the DataTy
// they ultimately point at.
func (fl *fnLowerer) underlyingDataDef(ty tir.TyId) (tir.DataDefId, bool) {
	for i := 0; i < 8 && ty.IsValid(); i++ {
		t := fl.Env.Tys.Get(ty).Data
		switch t.Kind {
		case tir.TyData:
			return t.Data.Def, true
		case tir.TyRef:
			ty = t.Ref.Inner
		default:
			return 0, false
		}
	}
	return 0, false
}

// fnName recovers the surface text of fn's Name symbol, used to recognise
// internal/lower's synthetic intrinsic FnDefs by their "__"-prefixed names.
func (fl *fnLowerer) fnName(fn tir.FnDefId) string {
	def := fl.Env.FnDefs.Get(fn).Data
	ident := fl.Env.Symbols.Name(def.Name)
	text, _ := fl.Env.Idents.LookupIdent(ident)
	return text
}

// fieldTy and variantFieldTy read a field's IrTyId directly out of an
// already-resolved IrTy, used by match lowering to type fresh locals for
// tuple/struct/ctor sub-pattern bindings without re-walking tir.Ty.
func (fl *fnLowerer) fieldTy(base tir.IrTyId, idx int) tir.IrTyId {
	t := fl.Store.Get(base)
	if idx < 0 || idx >= len(t.Fields) {
		return tir.NoIrTyId
	}
	return t.Fields[idx]
}

func (fl *fnLowerer) variantFieldTy(base tir.IrTyId, variant, idx int) tir.IrTyId {
	t := fl.Store.Get(base)
	if variant < 0 || variant >= len(t.Variants) {
		return tir.NoIrTyId
	}
	fields := t.Variants[variant].Fields
	if idx < 0 || idx >= len(fields) {
		return tir.NoIrTyId
	}
	return fields[idx]
}

func (fl *fnLowerer) dataDefOfIrTy(ty tir.IrTyId) (tir.DataDefId, bool) {
	t := fl.Store.Get(ty)
	return t.DataDef, t.DataDef.IsValid()
}
