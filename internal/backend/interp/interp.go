// Package interp is the minimal in-process reference implementation of
// internal/backend.Backend spec.md §4.9 asks for: it records each
// function's blocks as internal/driver "emits" them and interprets them
// directly, standing in for the VM collaborator spec.md §1 mentions
// informally (a real LLVM/VM backend stays explicitly out of scope). Only
// scalar (int/float/bool/char) locals are modelled — struct/union/array
// aggregates are represented but only via field 0, sufficient to drive and
// test the rest of the pipeline without committing to a full memory model
// (see DESIGN.md).
//
// Operator identity recovery (reading a synthetic intrinsic FnDef's "__add"
// -family name) mirrors internal/cfg/fold.go's opName convention — the same
// BinaryOpRValue/UnaryOpRValue shape means both components face the same
// "carries only a bare FnDefId" problem and solve it the same way.
package interp

import (
	"fmt"

	"corec/internal/abi"
	"corec/internal/backend"
	"corec/internal/cfg"
	"corec/internal/layout"
	"corec/internal/tir"
)

// maxSteps bounds how many basic-block transitions Call will execute
// before concluding a function has diverged (spec.md §4.3.4's "the same
// per-call divergence cap named in the type-inference recursion budget"
// idea, reused here so a runaway while-loop under interpretation fails
// loudly instead of hanging a test run).
const maxSteps = 1_000_000

type builtBlock struct {
	stmts []cfg.Statement
	term  cfg.Terminator
}

type builtFn struct {
	fn      tir.FnDefId
	sig     abi.FnAbi
	body    *cfg.Body
	blocks  map[cfg.BasicBlockId]*builtBlock
	order   []cfg.BasicBlockId
	current cfg.BasicBlockId
}

// Backend is the reference interpreter. It satisfies backend.Backend.
type Backend struct {
	Env    *tir.Env
	Layout *layout.LayoutEngine

	fns      map[backend.FuncId]*builtFn
	current  backend.FuncId
	nextFunc backend.FuncId
	abortHit bool
	values   valueTable
}

// New creates an interpreter backend over env and its layout engine (the
// same pair a Classifier in internal/abi is built over).
func New(env *tir.Env, eng *layout.LayoutEngine) *Backend {
	return &Backend{
		Env:      env,
		Layout:   eng,
		fns:      make(map[backend.FuncId]*builtFn),
		nextFunc: 1,
	}
}

var _ backend.Backend = (*Backend)(nil)

func (b *Backend) Name() string { return "interp" }

func (b *Backend) LayoutOf(t tir.IrTyId) (layout.TypeLayout, error) {
	return b.Layout.LayoutOf(t)
}

func (b *Backend) FnAbiOf(fn tir.FnDefId) abi.FnAbi {
	bf, ok := b.fns[b.funcIdOf(fn)]
	if !ok {
		return abi.FnAbi{}
	}
	return bf.sig
}

// FuncIdOf looks up the FuncId StartFunction assigned fn, for callers
// (internal/driver) that only keep the tir.FnDefId around after emission.
func (b *Backend) FuncIdOf(fn tir.FnDefId) backend.FuncId {
	return b.funcIdOf(fn)
}

func (b *Backend) funcIdOf(fn tir.FnDefId) backend.FuncId {
	for id, bf := range b.fns {
		if bf.fn == fn {
			return id
		}
	}
	return 0
}

// StartFunction registers fn for emission, returning a fresh FuncId.
func (b *Backend) StartFunction(fn tir.FnDefId, sig abi.FnAbi) backend.FuncId {
	id := b.nextFunc
	b.nextFunc++
	b.fns[id] = &builtFn{fn: fn, sig: sig, blocks: make(map[cfg.BasicBlockId]*builtBlock)}
	b.current = id
	return id
}

// BlockOrder returns body's blocks entry-first, then by ascending id —
// surge/internal/backend/llvm/emit_func.go's blockOrder, generalised from
// mir.BlockID to cfg.BasicBlockId.
func (b *Backend) BlockOrder(body *cfg.Body) []cfg.BasicBlockId {
	order := make([]cfg.BasicBlockId, 0, len(body.Blocks))
	order = append(order, body.Entry)
	for i := range body.Blocks {
		id := cfg.BasicBlockId(i)
		if id != body.Entry {
			order = append(order, id)
		}
	}
	return order
}

// EmitAllocas records body against f; this reference backend needs no
// separate stack-slot reservation step since Call allocates its locals
// slice fresh per invocation.
func (b *Backend) EmitAllocas(f backend.FuncId, body *cfg.Body) {
	if bf, ok := b.fns[f]; ok {
		bf.body = body
		bf.order = b.BlockOrder(body)
	}
}

// EmitParamStores is a no-op here: Call copies its argument slice directly
// into locals [1, ParamCount] before interpretation begins.
func (b *Backend) EmitParamStores(f backend.FuncId, sig abi.FnAbi) {}

// EmitBlock begins recording block's statements/terminator.
func (b *Backend) EmitBlock(f backend.FuncId, block cfg.BasicBlockId) backend.BlockId {
	bf, ok := b.fns[f]
	if !ok {
		return 0
	}
	if bf.blocks[block] == nil {
		bf.blocks[block] = &builtBlock{}
	}
	bf.current = block
	return backend.BlockId(block + 1)
}

// EmitStatement appends stmt to f's current block, as named by the most
// recent EmitBlock call.
func (b *Backend) EmitStatement(f backend.FuncId, stmt cfg.Statement) error {
	bf, ok := b.fns[f]
	if !ok {
		return fmt.Errorf("interp: unknown function %d", f)
	}
	blk := bf.blocks[bf.current]
	if blk == nil {
		return fmt.Errorf("interp: EmitStatement without a preceding EmitBlock for function %d", f)
	}
	blk.stmts = append(blk.stmts, stmt)
	return nil
}

// EmitTerminator records block's terminator against the block most
// recently opened by EmitBlock.
func (b *Backend) EmitTerminator(f backend.FuncId, term cfg.Terminator) error {
	bf, ok := b.fns[f]
	if !ok {
		return fmt.Errorf("interp: unknown function %d", f)
	}
	blk := bf.blocks[bf.current]
	if blk == nil {
		return fmt.Errorf("interp: EmitTerminator without a preceding EmitBlock for function %d", f)
	}
	blk.term = term
	return nil
}

// EndFunction is a no-op: builtFn already carries everything Call needs.
func (b *Backend) EndFunction(f backend.FuncId) {}
