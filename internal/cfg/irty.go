package cfg

import "corec/internal/tir"

// IrTyKind discriminates IrTy's variants. Unlike tir.Ty (spec.md §3.3),
// IrTy has no Hole/Var/Eval forms: by the time a function is queued for
// CFG lowering (§4.6.1) its body has already been fully typechecked, so
// every TyId reaching ResolveTy is concrete.
type IrTyKind uint8

const (
	// IrTyNumeric also covers bool (internal/lower/types.go registers
	// "bool" as a 1-bit unsigned NumericPrimInfo, spec.md §4.7's
	// "Bool -> Scalar(0..=1)" rule reached by checking Bits==1 at layout
	// time rather than by a dedicated IrTy variant).
	IrTyNumeric IrTyKind = iota
	IrTyChar
	IrTyStr
	IrTyArray
	IrTyStruct
	IrTyUnion
	IrTyTuple
	IrTyFn
	IrTyRef
	IrTyUninhabited
)

type IrTyArrayInfo struct {
	Elem      tir.IrTyId
	HasLength bool
	Length    uint64
}

type IrTyFnInfo struct {
	Params []tir.IrTyId
	Return tir.IrTyId
}

type IrTyRefInfo struct {
	Kind    tir.RefKind
	Mutable bool
	Inner   tir.IrTyId
}

// IrTyVariant is one variant of an IrTyUnion: the fields of the
// corresponding CtorDef, already resolved to IrTyIds (spec.md §4.7: "enum:
// ... variants' payloads laid out as structs").
type IrTyVariant struct {
	Ctor   tir.CtorDefId
	Fields []tir.IrTyId
}

// IrTy is the lowered-type representation spec.md §3.6/§4.7 compute
// layouts over: a monomorphic, hole-free flattening of tir.Ty produced
// during CFG lowering (internal/cfg), consumed by internal/layout and
// internal/abi. Grounded on tir.Ty's own flat Kind-plus-one-field-per-
// variant shape (internal/tir/ty.go), generalised with explicit
// Struct/Union forms in place of tir.Ty's single polymorphic TyData, since
// layout computation needs to already know a data def's shape (single
// ctor vs many) rather than re-deriving it from DataDef at every layout
// query.
type IrTy struct {
	Kind IrTyKind

	Numeric tir.NumericPrimInfo
	Array   IrTyArrayInfo
	Fields  []tir.IrTyId // IrTyStruct, IrTyTuple: one per field/element in order
	Variants []IrTyVariant // IrTyUnion
	Fn      IrTyFnInfo
	Ref     IrTyRefInfo

	// DataDef names the originating data definition (NoDataDefId for
	// Tuple/Fn/Ref/primitive forms), letting internal/layout and
	// internal/abi consult its attrs (e.g. #[repr(...)], #[packed]) via
	// internal/attrs.
	DataDef tir.DataDefId
}

// IrTyStore interns IrTy values the same way tir.Store interns TIR nodes
// (spec.md §4.1): equal TyIds always resolve to the same IrTyId, so two
// uses of the same concrete type across a module share one layout/ABI
// computation downstream.
type IrTyStore struct {
	store   *tir.Store[tir.IrTyId, IrTy]
	byTyId  map[tir.TyId]tir.IrTyId
}

func NewIrTyStore() *IrTyStore {
	return &IrTyStore{
		store:  tir.NewStore[tir.IrTyId, IrTy](128),
		byTyId: make(map[tir.TyId]tir.IrTyId),
	}
}

func (s *IrTyStore) Get(id tir.IrTyId) IrTy { return s.store.Get(id).Data }

// TyResolver turns a tir.Ty (as produced by inference) into the flattened
// IrTy form CFG lowering's Locals/RValues/layout queries consume.
type TyResolver struct {
	Env   *tir.Env
	store *IrTyStore
}

func NewTyResolver(env *tir.Env, store *IrTyStore) *TyResolver {
	return &TyResolver{Env: env, store: store}
}

// Resolve returns the IrTyId for ty, memoised in the shared IrTyStore.
func (r *TyResolver) Resolve(ty tir.TyId) tir.IrTyId {
	if !ty.IsValid() {
		return tir.NoIrTyId
	}
	if id, ok := r.store.byTyId[ty]; ok {
		return id
	}
	// Reserve the slot before recursing so a self-referential type (a
	// struct field typed as a Ref to its own struct) terminates: the Ref
	// arm only needs the *id*, not the fully resolved IrTy, of its inner
	// type before it can itself be created.
	placeholder := r.store.store.Create(IrTy{}, tir.Generated())
	r.store.byTyId[ty] = placeholder
	irTy := r.resolveKind(ty)
	r.store.store.Modify(placeholder, func(t *IrTy) { *t = irTy })
	return placeholder
}

func (r *TyResolver) resolveKind(ty tir.TyId) IrTy {
	node := r.Env.Tys.Get(ty)
	t := node.Data
	switch t.Kind {
	case tir.TyEval:
		// A TyEval defers to normalising a term (spec.md §4.3.4); by CFG
		// lowering time normalisation has already run, so TyEval reaching
		// here means the underlying term was itself a Ty term — unwrap it.
		inner := r.Env.Terms.Get(t.Eval)
		if inner.Data.Kind == tir.TermTy {
			return r.resolveKind(inner.Data.Ty)
		}
		return IrTy{Kind: IrTyUninhabited}

	case tir.TyData:
		return r.resolveData(t.Data)

	case tir.TyFn:
		params := r.Env.Params.All(t.Fn.Params)
		paramTys := make([]tir.IrTyId, len(params))
		for i, p := range params {
			paramTys[i] = r.Resolve(p.Ty)
		}
		return IrTy{Kind: IrTyFn, Fn: IrTyFnInfo{Params: paramTys, Return: r.Resolve(t.Fn.Return)}}

	case tir.TyTuple:
		params := r.Env.Params.All(t.Tuple.Params)
		fields := make([]tir.IrTyId, len(params))
		for i, p := range params {
			fields[i] = r.Resolve(p.Ty)
		}
		return IrTy{Kind: IrTyTuple, Fields: fields}

	case tir.TyRef:
		return IrTy{Kind: IrTyRef, Ref: IrTyRefInfo{Kind: t.Ref.Kind, Mutable: t.Ref.Mutable, Inner: r.Resolve(t.Ref.Inner)}}

	default:
		// TyUniverse/TyVar/TyHole have no runtime representation; a
		// well-typed, fully-checked body queued for CFG lowering (§4.6.1)
		// never actually stores a value of one, so this is a defensive
		// ZST rather than a reachable case.
		return IrTy{Kind: IrTyUninhabited}
	}
}

func (r *TyResolver) resolveData(dt tir.DataTy) IrTy {
	def := r.Env.DataDefs.Get(dt.Def).Data
	switch def.CtorsKind {
	case tir.CtorsPrimitive:
		switch def.Primitive.Kind {
		case tir.PrimNumeric:
			return IrTy{Kind: IrTyNumeric, Numeric: def.Primitive.Numeric, DataDef: dt.Def}
		case tir.PrimStr:
			return IrTy{Kind: IrTyStr, DataDef: dt.Def}
		case tir.PrimChar:
			return IrTy{Kind: IrTyChar, DataDef: dt.Def}
		case tir.PrimArray:
			return IrTy{
				Kind: IrTyArray,
				Array: IrTyArrayInfo{
					Elem:      r.Resolve(def.Primitive.Array.Element),
					HasLength: def.Primitive.Array.HasLength,
					Length:    def.Primitive.Array.Length,
				},
				DataDef: dt.Def,
			}
		}
		return IrTy{Kind: IrTyUninhabited, DataDef: dt.Def}

	case tir.CtorsDefined:
		n := r.Env.CtorDefsSeq.Len(def.Ctors)
		if n == 0 {
			return IrTy{Kind: IrTyUninhabited, DataDef: dt.Def}
		}
		if n == 1 {
			ctor := r.Env.CtorDefs.Get(r.Env.CtorDefsSeq.At(def.Ctors, 0)).Data
			return IrTy{Kind: IrTyStruct, Fields: r.resolveParams(ctor.Params), DataDef: dt.Def}
		}
		variants := make([]IrTyVariant, n)
		for i := 0; i < n; i++ {
			ctorId := r.Env.CtorDefsSeq.At(def.Ctors, i)
			ctor := r.Env.CtorDefs.Get(ctorId).Data
			variants[i] = IrTyVariant{Ctor: ctorId, Fields: r.resolveParams(ctor.Params)}
		}
		return IrTy{Kind: IrTyUnion, Variants: variants, DataDef: dt.Def}
	}
	return IrTy{Kind: IrTyUninhabited, DataDef: dt.Def}
}

func (r *TyResolver) resolveParams(params tir.ParamsId) []tir.IrTyId {
	all := r.Env.Params.All(params)
	out := make([]tir.IrTyId, len(all))
	for i, p := range all {
		out[i] = r.Resolve(p.Ty)
	}
	return out
}
