package cfg

import (
	"corec/internal/diag"
	"corec/internal/source"
	"corec/internal/tir"
)

// Lowering is the whole-compilation driver for §4.6: one instance is shared
// across every FnDefId a Discoverer found, so memoised state (IrTyStore,
// the synthetic comparison intrinsics) is reused rather than rebuilt per
// function. Grounded on surge/internal/mir/lower.go's top-level lowerer
// type, which plays the same role for that teacher's HIR->MIR pass.
type Lowering struct {
	Env       *tir.Env
	Store     *IrTyStore
	Resolver  *TyResolver
	ExprTypes map[tir.TermId]tir.TyId
	Bag       *diag.Bag
	SpanOf    func(tir.AstNodeId) source.Span

	cmp *cmpIntrinsics
}

// NewLowering builds a Lowering. exprTypes is internal/check.Checker's
// per-term inferred-type map; spanOf resolves a TIR node's originating
// ast.NodeId to a source.Span for diagnostics, kept as an injected callback
// (mirroring discover.go's isForeign predicate) so internal/cfg does not
// need to import internal/ast.
func NewLowering(env *tir.Env, store *IrTyStore, resolver *TyResolver, exprTypes map[tir.TermId]tir.TyId, bag *diag.Bag, spanOf func(tir.AstNodeId) source.Span) *Lowering {
	return &Lowering{
		Env: env, Store: store, Resolver: resolver,
		ExprTypes: exprTypes, Bag: bag, SpanOf: spanOf,
		cmp: newCmpIntrinsics(env),
	}
}

// fnLowerer is the per-function lowering pass: spec.md §4.6.2/§4.6.3's
// expr_into_dest machinery. It embeds *Lowering so its methods read
// Env/Store/Resolver/ExprTypes directly, and holds the Builder for the one
// function currently being lowered.
type fnLowerer struct {
	*Lowering
	b *Builder
}

// LowerFn lowers fn's body into a Body, then runs constant folding over the
// result (spec.md §4.6.6).
func (lw *Lowering) LowerFn(fn tir.FnDefId) Body {
	b := NewBuilder(lw.Env, lw.Resolver, fn)
	fl := &fnLowerer{Lowering: lw, b: b}

	def := lw.Env.FnDefs.Get(fn).Data
	fl.exprIntoDest(b.ReturnPlace(), def.Body)
	if !b.ReachedTerminator() {
		b.SetTerminator(Terminator{Kind: TermReturn})
	}

	body := b.Body()
	FoldConstants(lw.Env, &body)
	return body
}

func (fl *fnLowerer) resolveTermTy(term tir.TermId) tir.IrTyId {
	ty, ok := fl.ExprTypes[term]
	if !ok {
		return tir.NoIrTyId
	}
	return fl.Resolver.Resolve(ty)
}

func (fl *fnLowerer) report(sev diag.Severity, code diag.Code, origin tir.NodeOrigin, msg string) {
	if fl.Bag == nil {
		return
	}
	var span source.Span
	if fl.SpanOf != nil && origin.Kind != tir.OriginGenerated {
		span = fl.SpanOf(origin.AstRef)
	}
	d := diag.New(sev, code, span, msg)
	fl.Bag.Add(&d)
}

func (fl *fnLowerer) emitUse(dest Place, from Place) {
	fl.b.Emit(Statement{Kind: StmtAssign, Place: dest, RValue: RValue{Kind: RValueUse, Use: from}})
}

func (fl *fnLowerer) assignUnit(dest Place) {
	fl.b.Emit(Statement{Kind: StmtAssign, Place: dest, RValue: RValue{Kind: RValueAggregate, Aggregate: AggregateRValue{Kind: AggregateTuple}}})
}

func (fl *fnLowerer) emitConst(dest Place, c Const) {
	fl.b.Emit(Statement{Kind: StmtAssign, Place: dest, RValue: RValue{Kind: RValueConst, Const: c}})
}

// litToConst converts a tir.Lit term into this package's Const immediate.
func (fl *fnLowerer) litToConst(lit tir.Lit, term tir.TermId) Const {
	ty := fl.resolveTermTy(term)
	switch lit.Kind {
	case tir.LitInt:
		return Const{Kind: ConstInt, Int: lit.Int.Value, Ty: ty}
	case tir.LitFloat:
		return Const{Kind: ConstFloat, Float: lit.Float.Value, Ty: ty}
	case tir.LitStr:
		return Const{Kind: ConstStr, Str: lit.Str.Value, Ty: ty}
	case tir.LitChar:
		return Const{Kind: ConstChar, Char: lit.Char, Ty: ty}
	case tir.LitBool:
		return Const{Kind: ConstBool, Bool: lit.Bool, Ty: ty}
	}
	return Const{Kind: ConstUnit, Ty: ty}
}

// operandFor lowers term into the Operand an RValue's operator can read
// directly: a literal becomes an immediate Const, anything place-like is
// read in place, and anything else is materialised into a fresh temp first.
func (fl *fnLowerer) operandFor(term tir.TermId) Operand {
	if !term.IsValid() {
		return Operand{IsConst: true, Const: Const{Kind: ConstUnit}}
	}
	t := fl.Env.Terms.Get(term).Data
	if t.Kind == tir.TermLit {
		return Operand{IsConst: true, Const: fl.litToConst(t.Lit, term)}
	}
	if place, ok := fl.asPlace(term); ok {
		return Operand{Place: place}
	}
	tmp := fl.b.NewTemp(fl.resolveTermTy(term))
	dest := Place{Local: tmp}
	fl.exprIntoDest(dest, term)
	return Operand{Place: dest}
}

func (fl *fnLowerer) calleeOperand(term tir.TermId) Operand {
	t := fl.Env.Terms.Get(term).Data
	if t.Kind == tir.TermFnRef {
		return Operand{IsFn: true, Fn: t.FnRef.Fn}
	}
	return fl.operandFor(term)
}

// exprIntoDest is spec.md §4.6.3's expr_into_dest: it lowers term so that
// its value ends up in dest, dispatching on TermKind.
func (fl *fnLowerer) exprIntoDest(dest Place, term tir.TermId) {
	if fl.b.ReachedTerminator() {
		return
	}
	if !term.IsValid() {
		fl.assignUnit(dest)
		return
	}
	t := fl.Env.Terms.Get(term).Data
	switch t.Kind {
	case tir.TermVar, tir.TermDeref:
		if place, ok := fl.asPlace(term); ok {
			fl.emitUse(dest, place)
			return
		}
		fl.assignUnit(dest)

	case tir.TermFnCall:
		if place, ok := fl.asPlace(term); ok {
			fl.emitUse(dest, place)
			return
		}
		fl.lowerFnCall(dest, t.FnCall)

	case tir.TermLit:
		fl.emitConst(dest, fl.litToConst(t.Lit, term))

	case tir.TermTuple:
		fl.lowerAggregate(dest, AggregateTuple, tir.NoCtorDefId, term, t.Tuple.Args)

	case tir.TermCtor:
		fl.lowerAggregate(dest, AggregateCtor, t.Ctor.Ctor, term, t.Ctor.Args)

	case tir.TermFnRef:
		// A bare function reference used as an ordinary value: this RValue
		// model has no "address of function" form (spec.md §3.5 lists no
		// such RValue kind; the only legal use of TermFnRef is a Call
		// terminator's callee, handled in lowerFnCall/calleeOperand).
		fl.assignUnit(dest)

	case tir.TermBlock:
		fl.lowerBlock(dest, t.Block)

	case tir.TermLoop:
		fl.lowerLoop(dest, t.Loop)

	case tir.TermLoopControl:
		fl.lowerLoopControl(t.LoopControl)

	case tir.TermMatch:
		fl.lowerMatch(dest, t.Match, term)

	case tir.TermReturn:
		fl.lowerReturn(t.Return)

	case tir.TermAssign:
		fl.lowerAssign(dest, t.Assign)

	case tir.TermRef:
		fl.lowerRef(dest, t.Ref)

	case tir.TermCast:
		fl.exprIntoDest(dest, t.Cast.Value)

	case tir.TermTypeOf, tir.TermTy, tir.TermHole:
		fl.assignUnit(dest)
	}
}

func (fl *fnLowerer) lowerAggregate(dest Place, kind AggregateKind, ctor tir.CtorDefId, term tir.TermId, argsId tir.ArgsId) {
	all := fl.Env.Args.All(argsId)
	ops := make([]Operand, len(all))
	for i, a := range all {
		ops[i] = fl.operandFor(a.Value)
	}
	fl.b.Emit(Statement{Kind: StmtAssign, Place: dest, RValue: RValue{
		Kind:      RValueAggregate,
		Aggregate: AggregateRValue{Kind: kind, Ctor: ctor, Ty: fl.resolveTermTy(term), Args: ops},
	}})
}

// lowerFnCall handles every TermFnCall that asPlace did not already resolve
// to a place: internal/lower's synthetic binary/unary operator intrinsics,
// and genuine function calls.
func (fl *fnLowerer) lowerFnCall(dest Place, call tir.FnCallTerm) {
	subj := fl.Env.Terms.Get(call.Subject).Data
	if subj.Kind == tir.TermFnRef {
		fn := fl.Env.FnDefs.Get(subj.FnRef.Fn).Data
		if fn.BodyKind == tir.FnBodyIntrinsic {
			args := fl.Env.Args.All(call.Args)
			switch len(args) {
			case 1:
				fl.b.Emit(Statement{Kind: StmtAssign, Place: dest, RValue: RValue{
					Kind: RValueUnaryOp,
					UnaryOp: UnaryOpRValue{Op: subj.FnRef.Fn, Operand: fl.operandFor(args[0].Value)},
				}})
			case 2:
				fl.b.Emit(Statement{Kind: StmtAssign, Place: dest, RValue: RValue{
					Kind: RValueBinaryOp,
					BinaryOp: BinaryOpRValue{Op: subj.FnRef.Fn, Left: fl.operandFor(args[0].Value), Right: fl.operandFor(args[1].Value)},
				}})
			default:
				fl.assignUnit(dest)
			}
			return
		}
	}

	args := fl.Env.Args.All(call.Args)
	ops := make([]Operand, len(args))
	for i, a := range args {
		ops[i] = fl.operandFor(a.Value)
	}
	next := fl.b.NewBlock()
	fl.b.SetTerminator(Terminator{Kind: TermCall, Call: CallTerm{
		Callee: fl.calleeOperand(call.Subject), Args: ops, Destination: dest, Target: next,
	}})
	fl.b.SetCurrent(next)
}

func (fl *fnLowerer) lowerBlock(dest Place, blk tir.BlockTerm) {
	for _, s := range blk.Statements {
		tmp := fl.b.NewTemp(fl.resolveTermTy(s))
		fl.exprIntoDest(Place{Local: tmp}, s)
		if fl.b.ReachedTerminator() {
			return
		}
	}
	if blk.Result.IsValid() {
		fl.exprIntoDest(dest, blk.Result)
	} else {
		fl.assignUnit(dest)
	}
}

func (fl *fnLowerer) lowerLoop(dest Place, loop tir.LoopTerm) {
	header := fl.b.NewBlock()
	fl.b.SetTerminator(Terminator{Kind: TermGoto, Goto: GotoTerm{Target: header}})
	fl.b.SetCurrent(header)

	after := fl.b.NewBlock()
	fl.b.PushLoop(header, after)
	tmp := fl.b.NewTemp(fl.resolveTermTy(loop.Body))
	fl.exprIntoDest(Place{Local: tmp}, loop.Body)
	fl.b.PopLoop()

	if !fl.b.ReachedTerminator() {
		fl.b.SetTerminator(Terminator{Kind: TermGoto, Goto: GotoTerm{Target: header}})
	}
	fl.b.SetCurrent(after)
	fl.assignUnit(dest)
}

func (fl *fnLowerer) lowerLoopControl(lc tir.LoopControlTerm) {
	frame, ok := fl.b.CurrentLoop()
	if !ok {
		// semcheck already rejects break/continue outside a loop (spec.md
		// §4.4.2); reaching here means an earlier stage has a bug. Fail
		// safe rather than panic.
		fl.b.SetTerminator(Terminator{Kind: TermUnreachable})
		fl.b.StartDeadBlock()
		return
	}
	target := frame.nextBlock
	if lc.Kind == tir.LoopContinue {
		target = frame.loopBody
	}
	fl.b.SetTerminator(Terminator{Kind: TermGoto, Goto: GotoTerm{Target: target}})
	fl.b.StartDeadBlock()
}

func (fl *fnLowerer) lowerReturn(ret tir.ReturnTerm) {
	if ret.Value.IsValid() {
		fl.exprIntoDest(fl.b.ReturnPlace(), ret.Value)
	} else {
		fl.assignUnit(fl.b.ReturnPlace())
	}
	fl.b.SetTerminator(Terminator{Kind: TermReturn})
	fl.b.StartDeadBlock()
}

// lowerAssign handles both `let`/`const` bindings and plain assignment
// expressions: internal/lower desugars both to TermAssign (internal/lower/
// stmt.go's lowerStmtAsTerm/patAsPlace), so a fresh, not-yet-bound Variable
// on the left is a declaration (the local is created here, on first write)
// while an already-bound Variable is a reassignment to the existing local —
// matching spec.md §4.6.3's Declaration and Assign/AssignOp rules, which
// both reduce to "lower rhs into lhs's place".
func (fl *fnLowerer) lowerAssign(dest Place, a tir.AssignTerm) {
	lhs := fl.assignTargetPlace(a.Place)
	fl.exprIntoDest(lhs, a.Value)
	fl.assignUnit(dest)
}

func (fl *fnLowerer) assignTargetPlace(term tir.TermId) Place {
	t := fl.Env.Terms.Get(term).Data
	if t.Kind == tir.TermVar {
		if local, ok := fl.b.LookupLocal(t.Var); ok {
			return Place{Local: local}
		}
		local := fl.b.NewLocal(fl.resolveTermTy(term), t.Var, true)
		fl.b.BindLocal(t.Var, local)
		return Place{Local: local}
	}
	if place, ok := fl.asPlace(term); ok {
		return place
	}
	tmp := fl.b.NewTemp(fl.resolveTermTy(term))
	return Place{Local: tmp}
}

func (fl *fnLowerer) lowerRef(dest Place, r tir.RefTerm) {
	inner := fl.placeOf(r.Inner)
	mode := AddressSmart
	if r.Kind == tir.RefRaw {
		mode = AddressRaw
	}
	fl.b.Emit(Statement{Kind: StmtAssign, Place: dest, RValue: RValue{
		Kind: RValueRef,
		Ref:  RefRValue{Mutable: r.Mutable, Mode: mode, Place: inner},
	}})
}
