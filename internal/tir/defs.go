package tir

// Param is one entry of a ParamsId sequence (spec.md §3.4). Parameter
// target lookup supports both positional and name index; ParamsId's
// SequenceStore.At gives positional lookup, ParamIndexByName (see env.go)
// gives name lookup.
type Param struct {
	Name    SymbolId
	Ty      TyId
	Default TermId // NoTermId if the parameter has no default
}

// ArgTarget discriminates how an Arg names the parameter it fills.
type ArgTarget struct {
	// ByName is valid iff Name.IsValid(); otherwise the argument is
	// positional and Position is its index.
	Name     SymbolId
	Position uint32
}

// Arg is one entry of an ArgsId sequence.
type Arg struct {
	Target ArgTarget
	Value  TermId
}

// PatArg is one entry of a PatArgsId sequence — the pattern-matching
// counterpart of Arg, binding sub-patterns by name or position.
type PatArg struct {
	Target ArgTarget
	Value  PatId
}

// PrimKind enumerates DataDef.Ctors's Primitive variant's own kinds
// (spec.md §3.4).
type PrimKind uint8

const (
	PrimNumeric PrimKind = iota
	PrimStr
	PrimChar
	PrimArray
)

type NumericPrimInfo struct {
	Signed bool
	Bits   uint8
	Float  bool
}

type ArrayPrimInfo struct {
	Element TyId
	// HasLength distinguishes a fixed-length array ([T; N]) from a
	// dynamically-sized slice-like array ([T]).
	HasLength bool
	Length    uint64
}

// PrimCtorInfo is DataDef's primitive-constructor payload.
type PrimCtorInfo struct {
	Kind    PrimKind
	Numeric NumericPrimInfo
	Array   ArrayPrimInfo
}

// CtorsKind discriminates DataDef.Ctors's two forms.
type CtorsKind uint8

const (
	CtorsDefined CtorsKind = iota
	CtorsPrimitive
)

// DataDef is spec.md §3.4's DataDef: `{ name, params, ctors: Defined(...) |
// Primitive(...) }`.
type DataDef struct {
	Name       SymbolId
	Params     ParamsId
	CtorsKind  CtorsKind
	Ctors      CtorDefsId   // CtorsKind == CtorsDefined
	Primitive  PrimCtorInfo // CtorsKind == CtorsPrimitive
}

// CtorDef is spec.md §3.4's CtorDef. ResultArgs lets a parameterised data
// def constrain the result type of this constructor (GADT-style indexed
// enums): e.g. `Ok(T): Result<T, E>` vs `Err(E): Result<T, E>` both
// referencing the same DataDef but with different ResultArgs.
type CtorDef struct {
	Name             SymbolId
	DataDef          DataDefId
	DataDefCtorIndex uint32
	Params           ParamsId
	ResultArgs       ArgsId
}

// FnBodyKind discriminates FnDef.Body's three forms.
type FnBodyKind uint8

const (
	FnBodyDefined FnBodyKind = iota
	FnBodyIntrinsic
	FnBodyAxiom
)

// FnDef is spec.md §3.4's FnDef.
type FnDef struct {
	Name      SymbolId
	Ty        FnTy
	BodyKind  FnBodyKind
	Body      TermId      // FnBodyKind == FnBodyDefined
	Intrinsic IntrinsicId // FnBodyKind == FnBodyIntrinsic
}

// ModDefKind discriminates ModDef.Kind's three forms.
type ModDefKind uint8

const (
	ModSource ModDefKind = iota
	ModTransparent
	ModOrphan
)

// ModMemberKind discriminates a ModDef member's kind.
type ModMemberKind uint8

const (
	ModMemberFn ModMemberKind = iota
	ModMemberData
	ModMemberMod
)

// ModMember is one entry of a ModMembersId sequence.
type ModMember struct {
	Kind ModMemberKind
	Fn   FnDefId
	Data DataDefId
	Mod  ModDefId
}

// SourceId identifies the source.File a ModSource module was lowered from.
// Declared locally rather than importing internal/source, to keep tir free
// of a dependency on source file identity beyond this one opaque handle
// (lowering is responsible for the conversion).
type SourceId uint32

// ModDef is spec.md §3.4's ModDef.
type ModDef struct {
	Name    SymbolId
	Kind    ModDefKind
	Source  SourceId // ModKind == ModSource
	Members ModMembersId
}

// Stack is spec.md §3.4's scoped member list for code blocks.
type Stack struct {
	Members []StackMember
}

// StackMemberKind discriminates what a Stack holds: local declarations
// introduced by `let`, or nested item-like definitions hoisted from a
// block (a nested `fn`/`struct`/`enum`).
type StackMemberKind uint8

const (
	StackMemberDecl StackMemberKind = iota
	StackMemberFn
	StackMemberData
)

type StackMember struct {
	Kind StackMemberKind
	Decl SymbolId
	Fn   FnDefId
	Data DataDefId
}
