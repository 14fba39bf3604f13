package tir

// TyKind enumerates Ty variants (spec.md §3.3).
type TyKind uint8

const (
	TyUniverse TyKind = iota
	TyData
	TyFn
	TyTuple
	TyRef
	TyVar
	TyHole
	TyEval
)

type DataTy struct {
	Def  DataDefId
	Args ArgsId
}

// FnTy describes a function type: spec.md §3.3 and §3.4's FnDef.ty.
type FnTy struct {
	Params   ParamsId
	Return   TyId
	Pure     bool
	Implicit bool
	Unsafe   bool
}

type TupleTy struct{ Params ParamsId }

type RefTy struct {
	Kind    RefKind
	Mutable bool
	Inner   TyId
}

// Ty is a tagged union over spec.md §3.3's Ty variants.
type Ty struct {
	Kind TyKind

	Universe uint32 // TyKind == TyUniverse
	Data     DataTy
	Fn       FnTy
	Tuple    TupleTy
	Ref      RefTy
	Var      SymbolId // TyKind == TyVar
	Hole     SymbolId // TyKind == TyHole
	Eval     TermId   // TyKind == TyEval: defer to normalising a term
}
