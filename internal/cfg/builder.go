package cfg

import "corec/internal/tir"

// loopFrame is Builder's loop_block_info (spec.md §4.6.2): the two blocks a
// break/continue inside the innermost loop target.
type loopFrame struct {
	loopBody   BasicBlockId
	nextBlock  BasicBlockId
}

// Builder is spec.md §4.6.2's Builder: the per-function mutable state CFG
// lowering threads through expr_into_dest. Grounded on
// surge/internal/mir/lower.go's funcLowerer (symToLocal, cur, loopStack,
// nextTemp, ...), generalised from HIR/mono inputs to TIR Term/Ty/Pat
// inputs and to this spec's Place/RValue/Statement/Terminator shapes.
type Builder struct {
	env      *tir.Env
	resolver *TyResolver

	body Body

	// localsBySymbol is Builder's locals_by_symbol: a TIR SymbolId bound by a
	// `let`/parameter maps to the LocalId holding it.
	localsBySymbol map[tir.SymbolId]LocalId

	cur BasicBlockId

	loopStack []loopFrame

	// reachedTerminator mirrors spec.md §4.6.2's reached_terminator: once a
	// block ends (Return/Break/Continue/Unreachable), further statements in
	// the same source block are unreachable and must not be emitted into it.
	reachedTerminator bool

	// deadEnds is spec.md §4.6.2's dead_ends: PatIds identified during match
	// lowering whose block turned out to be provably unreachable (e.g. an
	// arm fully shadowed by an earlier one), so §4.6.5's overlap pass can
	// report each exactly once instead of re-deriving it from the CFG.
	deadEnds map[tir.PatId]bool

	tempCount int
}

// NewBuilder creates a Builder for lowering fn's body into a fresh Body.
// resolver supplies IrTyIds for every Local this function introduces.
func NewBuilder(env *tir.Env, resolver *TyResolver, fn tir.FnDefId) *Builder {
	b := &Builder{
		env:            env,
		resolver:       resolver,
		localsBySymbol: make(map[tir.SymbolId]LocalId),
		deadEnds:       make(map[tir.PatId]bool),
	}
	b.body.Fn = fn
	fnDef := env.FnDefs.Get(fn).Data
	// Local 0 is always the return place (ReturnLocal).
	b.body.Locals = append(b.body.Locals, LocalDecl{Ty: resolver.Resolve(fnDef.Ty.Return)})
	params := env.Params.All(fnDef.Ty.Params)
	b.body.ParamCount = len(params)
	b.body.ArgCount = len(params)
	for _, p := range params {
		local := b.newLocal(resolver.Resolve(p.Ty), p.Name, false)
		if p.Name.IsValid() {
			b.localsBySymbol[p.Name] = local
		}
	}
	b.body.Entry = b.newBlock()
	b.cur = b.body.Entry
	return b
}

// Body returns the Body built so far; call once lowering of the function's
// top-level expression has completed.
func (b *Builder) Body() Body { return b.body }

// Current returns the block statements/terminators are currently appended
// to.
func (b *Builder) Current() BasicBlockId { return b.cur }

// SetCurrent switches the block subsequent emission targets, e.g. after
// starting a fresh block for one arm of a branch.
func (b *Builder) SetCurrent(id BasicBlockId) {
	b.cur = id
	b.reachedTerminator = b.block(id).Terminator.Terminated()
}

// NewBlock allocates a fresh, empty block and returns its id (spec.md
// §4.6.2's "BB" handles).
func (b *Builder) NewBlock() BasicBlockId { return b.newBlock() }

func (b *Builder) newBlock() BasicBlockId {
	id := BasicBlockId(len(b.body.Blocks))
	b.body.Blocks = append(b.body.Blocks, BasicBlock{})
	return id
}

func (b *Builder) block(id BasicBlockId) *BasicBlock { return &b.body.Blocks[id] }

// NewLocal declares a fresh user-named or compiler-introduced local of type
// ty and returns its id.
func (b *Builder) NewLocal(ty tir.IrTyId, source tir.SymbolId, mutable bool) LocalId {
	return b.newLocal(ty, source, mutable)
}

func (b *Builder) newLocal(ty tir.IrTyId, source tir.SymbolId, mutable bool) LocalId {
	id := LocalId(len(b.body.Locals))
	b.body.Locals = append(b.body.Locals, LocalDecl{Ty: ty, Mutable: mutable, Source: source})
	return id
}

// NewTemp declares a fresh compiler temporary of type ty (no surface
// SymbolId), used for intermediate values that never have a user-visible
// name: index expressions, match subjects, guard results.
func (b *Builder) NewTemp(ty tir.IrTyId) LocalId {
	b.tempCount++
	return b.newLocal(ty, tir.NoSymbolId, true)
}

// BindLocal records sym as bound to local (a `let` pattern binding or
// match-arm binding), so a later Variable(sym) reference resolves through
// LookupLocal.
func (b *Builder) BindLocal(sym tir.SymbolId, local LocalId) {
	if sym.IsValid() {
		b.localsBySymbol[sym] = local
	}
}

// LookupLocal is Builder's locals_by_symbol read side.
func (b *Builder) LookupLocal(sym tir.SymbolId) (LocalId, bool) {
	id, ok := b.localsBySymbol[sym]
	return id, ok
}

// Emit appends stmt to the current block. It is a no-op once the current
// block has already reached a terminator (spec.md §4.6.2:
// reached_terminator), matching dead-code-after-return being silently
// dropped rather than corrupting the CFG.
func (b *Builder) Emit(stmt Statement) {
	if b.reachedTerminator {
		return
	}
	blk := b.block(b.cur)
	blk.Statements = append(blk.Statements, stmt)
}

// SetTerminator sets the current block's terminator and marks
// reachedTerminator, mirroring funcLowerer.setTerm.
func (b *Builder) SetTerminator(term Terminator) {
	if b.reachedTerminator {
		return
	}
	b.block(b.cur).Terminator = term
	b.reachedTerminator = true
}

// StartDeadBlock opens a fresh block and switches current emission to it,
// used after a terminating statement (Return/Break/Continue/Unreachable)
// per spec.md §4.6.3: "start a fresh dead block". Any further statements
// lowered from the same source block land here and are simply unreachable
// once the CFG is complete (no block jumps to it).
func (b *Builder) StartDeadBlock() {
	b.cur = b.newBlock()
	b.reachedTerminator = false
}

// PushLoop records the blocks break/continue inside a freshly entered loop
// should target.
func (b *Builder) PushLoop(body, next BasicBlockId) {
	b.loopStack = append(b.loopStack, loopFrame{loopBody: body, nextBlock: next})
}

// PopLoop leaves the innermost loop context.
func (b *Builder) PopLoop() {
	b.loopStack = b.loopStack[:len(b.loopStack)-1]
}

// CurrentLoop returns the innermost loop's break/continue targets, or ok
// false outside any loop (a Break/Continue term reaching ExprIntoDest
// there is a prior-stage bug: semcheck already rejects break/continue
// outside a loop, spec.md §4.4.2).
func (b *Builder) CurrentLoop() (loopFrame, bool) {
	if len(b.loopStack) == 0 {
		return loopFrame{}, false
	}
	return b.loopStack[len(b.loopStack)-1], true
}

// ReachedTerminator reports whether the current block already ends in a
// terminator, so a caller can tell whether to chain a Goto after lowering a
// sub-expression that may itself have terminated the block (a match arm
// ending in `return`, for instance).
func (b *Builder) ReachedTerminator() bool { return b.reachedTerminator }

// ReturnPlace is spec.md §4.6.3's Place::return_place(): always local 0.
func (b *Builder) ReturnPlace() Place { return Place{Local: ReturnLocal} }

// MarkDeadEnd records that pat's arm block turned out unreachable (§4.6.5's
// overlap pass).
func (b *Builder) MarkDeadEnd(pat tir.PatId) { b.deadEnds[pat] = true }

// IsDeadEnd reports whether pat was previously marked unreachable.
func (b *Builder) IsDeadEnd(pat tir.PatId) bool { return b.deadEnds[pat] }
