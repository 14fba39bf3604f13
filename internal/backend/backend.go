// Package backend defines the capability surface spec.md §4.9 asks a code
// generator to implement, without committing to any concrete target.
// Grounded on original_source/compiler/hash-codegen/src/traits/{intrinsics.rs,
// ../lower/abi.rs}'s small-trait-bundle design (BackendTypes, LayoutMethods,
// BuilderMethods, BuildIntrinsicCallMethods) and on the concrete operations
// the teacher's now-removed LLVM emitter performed
// (surge/internal/backend/llvm/emit_func.go's emitAllocas/emitParamStores/
// blockOrder, emit_instr.go's emitInstr, emit_term.go's emitTerminator) —
// generalised from that emitter's concrete string-builder/LLVM-IR shape to
// small ID-handle-returning interfaces any backend (LLVM, a bytecode VM, or
// the in-process reference interpreter in backend/interp) can implement.
package backend

import (
	"corec/internal/abi"
	"corec/internal/cfg"
	"corec/internal/layout"
	"corec/internal/tir"
)

// ValueId, BlockId and FuncId are opaque handles a Backend hands back to its
// caller and later accepts as arguments — the Go analogue of Rust's
// associated types (Go interfaces have none), and of the teacher's own
// mir.LocalID/mir.FuncID handle convention.
type ValueId uint32
type BlockId uint32
type FuncId uint32

// NoValue is returned by operations with no result (e.g. a store).
const NoValue ValueId = 0

// BackendTypes is hash-codegen's BackendTypes trait: the common supertype
// every other trait in this package is bounded by. Since Go interfaces
// carry no associated types, it only contributes a backend's self-
// identification for diagnostics.
type BackendTypes interface {
	// Name identifies the backend implementation, e.g. "interp".
	Name() string
}

// LayoutMethods is hash-codegen's LayoutMethods trait: a backend consults
// type layout and ABI classification through this interface rather than
// owning its own copy of that logic (spec.md §4.7/§4.8).
type LayoutMethods interface {
	BackendTypes

	// LayoutOf returns t's size/alignment/field-offset layout.
	LayoutOf(t tir.IrTyId) (layout.TypeLayout, error)

	// FnAbiOf returns fn's call-boundary contract.
	FnAbiOf(fn tir.FnDefId) abi.FnAbi
}

// BuilderMethods is hash-codegen's BuilderMethods trait, narrowed to the
// concrete operations the teacher's LLVM emitter performed per function:
// reserve storage for locals (emitAllocas), materialise incoming arguments
// (emitParamStores), decide emission order (blockOrder), then emit each
// block's statements (emitInstr) and terminator (emitTerminator) in turn.
type BuilderMethods interface {
	BackendTypes

	// StartFunction begins emitting fn under the given ABI, returning a
	// handle subsequent calls key on until EndFunction.
	StartFunction(fn tir.FnDefId, sig abi.FnAbi) FuncId

	// BlockOrder returns body's blocks in emission order: entry first,
	// the rest by ascending BasicBlockId (surge/internal/backend/llvm/
	// emit_func.go's blockOrder).
	BlockOrder(body *cfg.Body) []cfg.BasicBlockId

	// EmitAllocas reserves storage for every Place body addresses, ahead
	// of emitting any instruction.
	EmitAllocas(f FuncId, body *cfg.Body)

	// EmitParamStores materialises fn's incoming arguments into their
	// corresponding Places per sig's PassMode: a Direct parameter is
	// stored into its local, an Indirect one is already a pointer and
	// needs no store.
	EmitParamStores(f FuncId, sig abi.FnAbi)

	// EmitBlock begins emitting block within f.
	EmitBlock(f FuncId, block cfg.BasicBlockId) BlockId

	// EmitStatement emits one cfg.Statement.
	EmitStatement(f FuncId, stmt cfg.Statement) error

	// EmitTerminator emits block's terminator.
	EmitTerminator(f FuncId, term cfg.Terminator) error

	// EndFunction finalises f once every block has been emitted.
	EndFunction(f FuncId)
}

// BuildIntrinsicCallMethods is hash-codegen/src/traits/intrinsics.rs's
// BuildIntrinsicCallMethods trait, translated directly: a backend's
// intrinsic surface (spec.md §4.6.9's numeric/array/string built-ins, plus
// abort/expect) is kept separate from ordinary instruction emission
// because no generic Statement dispatch can express it.
type BuildIntrinsicCallMethods interface {
	BackendTypes

	// CodegenIntrinsicCall generates a call to intrinsic id of type ty
	// over already-emitted argument values, producing result.
	CodegenIntrinsicCall(f FuncId, id tir.IntrinsicId, ty tir.IrTyId, args []ValueId, result ValueId) ValueId

	// CodegenAbortIntrinsic generates a call to the `abort` intrinsic:
	// unconditional, unrecoverable program termination.
	CodegenAbortIntrinsic(f FuncId)

	// CodegenExpectIntrinsic generates a call to the `expect` intrinsic:
	// a branch hint that additionally panics if value != expected
	// (ref: LLVM's llvm.expect intrinsic).
	CodegenExpectIntrinsic(f FuncId, value ValueId, expected bool) ValueId
}

// Backend is the full capability surface internal/driver needs from a code
// generator (spec.md §4.9): the union of the four trait-equivalent
// interfaces above. No concrete LLVM or VM backend implements it in this
// module — only backend/interp, a minimal in-process reference
// implementation sufficient to exercise and test the surface.
type Backend interface {
	LayoutMethods
	BuilderMethods
	BuildIntrinsicCallMethods
}
