// Package cfg implements TIR → CFG lowering (spec.md §4.6): selected
// function definitions are lowered to Bodies built from Locals, Places,
// RValues, Statements and Terminators. Grounded on the shape of
// surge/internal/mir's flat Kind-plus-one-field-per-variant idiom
// (types.go, instr.go, terminator.go, block.go, func.go) and on
// original_source/compiler/hash-lower/src/build/*.rs's own Body/Place/
// RValue model, adapted to TIR's Term/Ty/Pat inputs (internal/tir) instead
// of the teacher's HIR/mono inputs.
package cfg

import "corec/internal/tir"

// LocalId identifies one LocalDecl within a Body. 0 is reserved: Body's
// synthetic return place is always local 0, following
// original_source/compiler/hash-lower's own "_0 is the return place"
// convention (hash-lower/src/build/*.rs place-construction comments).
type LocalId uint32

const ReturnLocal LocalId = 0

// BasicBlockId identifies one basic block within a Body's block list.
type BasicBlockId int32

const NoBasicBlockId BasicBlockId = -1

// LocalDecl is spec.md §3.5's Local: `{ ty: IrTyId, mutability, source? }`.
type LocalDecl struct {
	Ty         tir.IrTyId
	Mutable    bool
	Source     tir.SymbolId // NoSymbolId for a compiler-introduced temp
	SourceName string       // empty for a temp; kept for diagnostics/dumps
}

// ProjKind discriminates Place's projection kinds (spec.md §3.5).
type ProjKind uint8

const (
	ProjDeref ProjKind = iota
	ProjField
	ProjIndex
	ProjDowncast
)

// Projection is one entry of a Place's projection chain.
type Projection struct {
	Kind     ProjKind
	Field    int     // ProjField: field index within the base's single ctor
	Index    LocalId // ProjIndex: local holding the index value
	Variant  uint32  // ProjDowncast: variant index within an enum DataDef
}

// Place is spec.md §3.5's Place: a local plus a chain of projections
// applied left to right (so `p.field(0).deref()` is
// `Place{Local: p, Projections: [Field(0), Deref]}`).
type Place struct {
	Local       LocalId
	Projections []Projection
}

// Field returns a copy of p with a field projection appended.
func (p Place) Field(idx int) Place {
	return Place{Local: p.Local, Projections: append(append([]Projection(nil), p.Projections...), Projection{Kind: ProjField, Field: idx})}
}

// Deref returns a copy of p with a deref projection appended.
func (p Place) Deref() Place {
	return Place{Local: p.Local, Projections: append(append([]Projection(nil), p.Projections...), Projection{Kind: ProjDeref})}
}

// Index returns a copy of p with an index projection appended.
func (p Place) Index(idxLocal LocalId) Place {
	return Place{Local: p.Local, Projections: append(append([]Projection(nil), p.Projections...), Projection{Kind: ProjIndex, Index: idxLocal})}
}

// Downcast returns a copy of p with a variant-downcast projection appended
// (spec.md §4.6.4: enum field access must downcast first).
func (p Place) Downcast(variant uint32) Place {
	return Place{Local: p.Local, Projections: append(append([]Projection(nil), p.Projections...), Projection{Kind: ProjDowncast, Variant: variant})}
}

// ConstKind discriminates Const's payload kinds, mirroring tir.LitKind but
// scoped to what a CFG RValue can hold as an immediate.
type ConstKind uint8

const (
	ConstInt ConstKind = iota
	ConstFloat
	ConstBool
	ConstChar
	ConstStr
	ConstUnit
)

// Const is an RValue-embeddable constant (spec.md §3.5).
type Const struct {
	Kind  ConstKind
	Int   uint64 // two's-complement bit pattern, ConstInt
	Float float64
	Bool  bool
	Char  rune
	Str   []byte
	Ty    tir.IrTyId
}

// Operand is the value an RValue's operator (or a Call terminator's callee)
// reads: a Place (copied or moved out of), an immediate Const, or — Callee
// position only — a direct reference to the function being called: spec.md
// §3.5's Call{op, ...} names its callee by function identity rather than
// through an intermediate value, so Operand needs a third form alongside
// Place/Const rather than forcing callees through a synthetic FnDef-valued
// Const.
type Operand struct {
	IsConst bool
	IsFn    bool
	Place   Place
	Const   Const
	Fn      tir.FnDefId
}

// AddressMode distinguishes a smart (language-managed) reference from a
// raw one, mirrored from tir.RefKind for RValue's Ref variant.
type AddressMode uint8

const (
	AddressSmart AddressMode = iota
	AddressRaw
)

// RValueKind discriminates RValue's variants (spec.md §3.5).
type RValueKind uint8

const (
	RValueUse RValueKind = iota
	RValueConst
	RValueBinaryOp
	RValueCheckedBinaryOp
	RValueUnaryOp
	RValueDiscriminant
	RValueRef
	RValueAggregate
)

// AggregateKind discriminates what RValue's Aggregate variant builds.
type AggregateKind uint8

const (
	AggregateTuple AggregateKind = iota
	AggregateCtor
)

type AggregateRValue struct {
	Kind AggregateKind
	Ctor tir.CtorDefId // AggregateCtor only
	Ty   tir.IrTyId
	Args []Operand
}

type BinaryOpRValue struct {
	Op    tir.FnDefId // the intrinsic FnDef identifying the operator (internal/lower's synthetic intrinsics)
	Left  Operand
	Right Operand
}

type UnaryOpRValue struct {
	Op      tir.FnDefId
	Operand Operand
}

type RefRValue struct {
	Mutable bool
	Mode    AddressMode
	Place   Place
}

// RValue is spec.md §3.5's RValue.
type RValue struct {
	Kind RValueKind

	Use         Place
	Const       Const
	BinaryOp    BinaryOpRValue
	UnaryOp     UnaryOpRValue
	Discriminant Place
	Ref         RefRValue
	Aggregate   AggregateRValue
}

// StmtKind discriminates Statement's variants (spec.md §3.5).
type StmtKind uint8

const (
	StmtAssign StmtKind = iota
	StmtAlloc
	StmtAllocRaw
	StmtNop
)

// Statement is spec.md §3.5's Statement.
type Statement struct {
	Kind   StmtKind
	Place  Place  // StmtAssign, StmtAlloc, StmtAllocRaw
	RValue RValue // StmtAssign
}

// TermKind discriminates Terminator's variants (spec.md §3.5).
type TermKind uint8

const (
	TermNone TermKind = iota
	TermGoto
	TermReturn
	TermCall
	TermSwitch
	TermAssert
	TermUnreachable
)

type GotoTerm struct{ Target BasicBlockId }

// CallTerm is spec.md §3.5's Call terminator: `Call{op, args, destination,
// target?}`. Target is NoBasicBlockId for a call that diverges (its callee
// is known never to return).
type CallTerm struct {
	Callee      Operand
	Args        []Operand
	Destination Place
	Target      BasicBlockId
}

// SwitchCase is one `(value, target)` pair of a Switch terminator.
type SwitchCase struct {
	Value  Uint128
	Target BasicBlockId
}

// Uint128 holds a switch discriminant value wide enough for any integer or
// char literal pattern (spec.md §3.5: `table: [(u128,BB)]`). Go has no
// native 128-bit integer, so it is split hi/lo following the same
// two-word idiom the teacher uses for checked 64-bit arithmetic overflow
// results (surge/internal/mir/lower_expr_ops.go).
type Uint128 struct{ Hi, Lo uint64 }

func u128FromU64(v uint64) Uint128 { return Uint128{Lo: v} }

type SwitchTerm struct {
	Value     Operand
	Table     []SwitchCase
	Otherwise BasicBlockId
}

type AssertTerm struct {
	Cond     Operand
	Expected bool
	Kind     string // diagnostic message kind, e.g. "divide by zero", "index out of bounds"
	Target   BasicBlockId
}

// Terminator is spec.md §3.5's Terminator.
type Terminator struct {
	Kind TermKind

	Goto        GotoTerm
	Call        CallTerm
	Switch      SwitchTerm
	Assert      AssertTerm
}

// Terminated reports whether b already ends in a real terminator.
func (t Terminator) Terminated() bool { return t.Kind != TermNone }

// BasicBlock is one block of a Body's control-flow graph.
type BasicBlock struct {
	Statements []Statement
	Terminator Terminator
}

// Body is spec.md §3.5's Body: `{ locals, blocks, params_count, arg_count,
// source }`. Local 0 is always the return place (ReturnLocal); locals
// [1, ParamCount] are the function's parameters in order; the rest are
// user bindings and compiler temporaries.
type Body struct {
	Fn         tir.FnDefId
	Locals     []LocalDecl
	Blocks     []BasicBlock
	ParamCount int
	ArgCount   int // same as ParamCount for this spec's non-variadic functions
	Entry      BasicBlockId
}
