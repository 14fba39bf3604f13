package lower

import (
	"corec/internal/ast"
	"corec/internal/diag"
	"corec/internal/tir"
)

// lowerStmtAsTerm lowers one statement to a TermId. Every Stmt becomes a
// Term (spec.md §3.3 gives the language no statement/expression split at
// the TIR level — internal/semcheck's grounding note makes the same point
// about the AST retaining the split only at the surface), so a sequence of
// statements becomes a TermBlock whose Result is its last statement's term
// and whose other statements are dropped-value terms.
func (l *Lowerer) lowerStmtAsTerm(id ast.StmtID) tir.TermId {
	if !id.IsValid() {
		return l.Env.Terms.Create(tir.Term{Kind: tir.TermTuple}, tir.Generated())
	}
	stmt := l.Builder.Stmts.Get(id)
	if stmt == nil {
		return l.Env.Terms.Create(tir.Term{Kind: tir.TermTuple}, tir.Generated())
	}
	origin := tir.Given(l.nodeOf(ast.NodeKindStmt, uint32(id)))

	switch stmt.Kind {
	case ast.StmtBlock:
		return l.lowerBlock(id, origin)

	case ast.StmtLet:
		data := l.Builder.Stmts.Let(id)
		if data == nil {
			break
		}
		value := l.lowerExpr(data.Value)
		var pat tir.PatId
		if data.Pattern.IsValid() {
			pat = l.lowerPattern(data.Pattern)
		} else {
			sym := l.newSymbol(data.Name, origin)
			l.bind(data.Name, sym)
			pat = l.Env.Pats.Create(tir.Pat{Kind: tir.PatBinding, Binding: tir.BindingPat{Sym: sym, Mutable: data.IsMut}}, origin)
		}
		if l.Env.Pats.Get(pat).Data.Kind != tir.PatBinding {
			// A compound pattern (tuple/ctor destructuring) lowers to a
			// TermMatch of the value against that single case, so the
			// bindings it introduces are assigned by the match.
			unit := l.Env.Terms.Create(tir.Term{Kind: tir.TermTuple}, tir.Generated())
			return l.Env.Terms.Create(tir.Term{Kind: tir.TermMatch, Match: tir.MatchTerm{Subject: value, Cases: []tir.MatchCase{{Pat: pat, Body: unit}}}}, origin)
		}
		place := l.patAsPlace(pat, origin)
		return l.Env.Terms.Create(tir.Term{Kind: tir.TermAssign, Assign: tir.AssignTerm{Place: place, Value: value}}, origin)

	case ast.StmtConst:
		data := l.Builder.Stmts.Const(id)
		if data == nil {
			break
		}
		value := l.lowerExpr(data.Value)
		sym := l.newSymbol(data.Name, origin)
		l.bind(data.Name, sym)
		place := l.Env.Terms.Create(tir.Term{Kind: tir.TermVar, Var: sym}, origin)
		return l.Env.Terms.Create(tir.Term{Kind: tir.TermAssign, Assign: tir.AssignTerm{Place: place, Value: value}}, origin)

	case ast.StmtExpr:
		data := l.Builder.Stmts.Expr(id)
		if data == nil {
			break
		}
		return l.lowerExpr(data.Expr)

	case ast.StmtDrop:
		// drop has no dedicated TermKind; lowered as evaluating the operand
		// for its effect only, the value itself discarded by virtue of not
		// appearing as a block Result.
		data := l.Builder.Stmts.Drop(id)
		if data == nil {
			break
		}
		return l.lowerExpr(data.Expr)

	case ast.StmtSignal:
		// Surface doc comment marks SignalStmt deprecated/internal; not a
		// construct this lowering gives a Term shape of its own to. Its
		// value is still lowered (for side effects / diagnostics on the
		// expression) and returned so it isn't silently dropped.
		data := l.Builder.Stmts.Signal(id)
		if data == nil {
			break
		}
		return l.lowerExpr(data.Value)

	case ast.StmtReturn:
		data := l.Builder.Stmts.Return(id)
		if data == nil {
			break
		}
		value := tir.NoTermId
		if data.Expr.IsValid() {
			value = l.lowerExpr(data.Expr)
		}
		return l.Env.Terms.Create(tir.Term{Kind: tir.TermReturn, Return: tir.ReturnTerm{Value: value}}, origin)

	case ast.StmtBreak:
		return l.Env.Terms.Create(tir.Term{Kind: tir.TermLoopControl, LoopControl: tir.LoopControlTerm{Kind: tir.LoopBreak}}, origin)

	case ast.StmtContinue:
		return l.Env.Terms.Create(tir.Term{Kind: tir.TermLoopControl, LoopControl: tir.LoopControlTerm{Kind: tir.LoopContinue}}, origin)

	case ast.StmtIf:
		return l.lowerIf(id, origin)

	case ast.StmtWhile:
		return l.lowerWhile(id, origin)

	case ast.StmtForClassic:
		return l.lowerForClassic(id, origin)

	case ast.StmtForIn:
		return l.lowerForIn(id, origin)
	}

	l.report(diag.SevError, diag.SemLowerUnsupportedType, stmt.Span, "unsupported statement form")
	return l.Env.Terms.Create(tir.Term{Kind: tir.TermTuple}, origin)
}

// patAsPlace turns a just-created binding pattern back into the Var term an
// AssignTerm's Place expects. lowerStmtAsTerm calls it only for a
// PatBinding; a compound `let` pattern is lowered there as a TermMatch.
func (l *Lowerer) patAsPlace(pat tir.PatId, origin tir.NodeOrigin) tir.TermId {
	node := l.Env.Pats.Get(pat)
	if node.Data.Kind == tir.PatBinding {
		return l.Env.Terms.Create(tir.Term{Kind: tir.TermVar, Var: node.Data.Binding.Sym}, origin)
	}
	// Any other pattern has no place form: the result is a Var of a fresh
	// symbol.
	hole := l.Env.Symbols.Fresh(tir.Generated())
	return l.Env.Terms.Create(tir.Term{Kind: tir.TermVar, Var: hole}, origin)
}

// lowerBlock lowers a StmtBlock into a TermBlock, pushing a fresh lexical
// scope for its statements (spec.md §3.3's BlockTerm.Stack records the
// block's locally declared fn/struct members; this lowering never
// populates StackMember entries since nested item declarations have no
// dedicated StmtKind in this AST to discover them from).
func (l *Lowerer) lowerBlock(id ast.StmtID, origin tir.NodeOrigin) tir.TermId {
	data := l.Builder.Stmts.Block(id)
	if data == nil {
		return l.Env.Terms.Create(tir.Term{Kind: tir.TermTuple}, origin)
	}
	l.pushScope()
	defer l.popScope()

	stack := l.Env.Stacks.Create(tir.Stack{}, tir.Generated())

	if len(data.Stmts) == 0 {
		unit := l.Env.Terms.Create(tir.Term{Kind: tir.TermTuple}, tir.Generated())
		return l.Env.Terms.Create(tir.Term{Kind: tir.TermBlock, Block: tir.BlockTerm{Stack: stack, Result: unit}}, origin)
	}

	terms := make([]tir.TermId, len(data.Stmts))
	for i, s := range data.Stmts {
		terms[i] = l.lowerStmtAsTerm(s)
	}
	result := terms[len(terms)-1]
	statements := terms[:len(terms)-1]
	return l.Env.Terms.Create(tir.Term{Kind: tir.TermBlock, Block: tir.BlockTerm{Stack: stack, Statements: statements, Result: result}}, origin)
}

// lowerIf desugars `if cond { then } else { els }` to a TermMatch over the
// two boolean patterns (spec.md §3.3 gives Term no TermIf kind): the
// shape every other branching construct in this file also reduces to.
func (l *Lowerer) lowerIf(id ast.StmtID, origin tir.NodeOrigin) tir.TermId {
	data := l.Builder.Stmts.If(id)
	if data == nil {
		return l.Env.Terms.Create(tir.Term{Kind: tir.TermTuple}, origin)
	}
	subject := l.lowerExpr(data.Cond)
	thenTerm := l.lowerStmtAsTerm(data.Then)
	elseTerm := l.Env.Terms.Create(tir.Term{Kind: tir.TermTuple}, tir.Generated())
	if data.Else.IsValid() {
		elseTerm = l.lowerStmtAsTerm(data.Else)
	}
	cases := []tir.MatchCase{
		{Pat: boolLitPat(true, tir.Generated(), l.Env), Body: thenTerm},
		{Pat: boolLitPat(false, tir.Generated(), l.Env), Body: elseTerm},
	}
	return l.Env.Terms.Create(tir.Term{Kind: tir.TermMatch, Match: tir.MatchTerm{Subject: subject, Cases: cases}}, origin)
}

// lowerWhile desugars `while cond { body }` to a TermLoop wrapping a
// TermMatch that breaks once cond is false (spec.md §3.3's LoopTerm has no
// condition field of its own; it loops until a LoopControlTerm{Kind:
// LoopBreak} is reached inside its Body, the same Rust-`loop`-shaped
// primitive original_source/compiler/hash-lower's MIR builder reduces
// `while`/`for` to).
func (l *Lowerer) lowerWhile(id ast.StmtID, origin tir.NodeOrigin) tir.TermId {
	data := l.Builder.Stmts.While(id)
	if data == nil {
		return l.Env.Terms.Create(tir.Term{Kind: tir.TermTuple}, origin)
	}
	subject := l.lowerExpr(data.Cond)
	bodyTerm := l.lowerStmtAsTerm(data.Body)
	breakTerm := l.Env.Terms.Create(tir.Term{Kind: tir.TermLoopControl, LoopControl: tir.LoopControlTerm{Kind: tir.LoopBreak}}, tir.Generated())
	cases := []tir.MatchCase{
		{Pat: boolLitPat(true, tir.Generated(), l.Env), Body: bodyTerm},
		{Pat: boolLitPat(false, tir.Generated(), l.Env), Body: breakTerm},
	}
	match := l.Env.Terms.Create(tir.Term{Kind: tir.TermMatch, Match: tir.MatchTerm{Subject: subject, Cases: cases}}, tir.Generated())
	return l.Env.Terms.Create(tir.Term{Kind: tir.TermLoop, Loop: tir.LoopTerm{Body: match}}, origin)
}

// lowerForClassic desugars the C-style for-loop into an initializer
// followed by a while-shaped loop whose body re-evaluates the post
// expression after the user's body, wrapped together in a block so `Init`
// stays scoped to the loop.
func (l *Lowerer) lowerForClassic(id ast.StmtID, origin tir.NodeOrigin) tir.TermId {
	data := l.Builder.Stmts.ForClassic(id)
	if data == nil {
		return l.Env.Terms.Create(tir.Term{Kind: tir.TermTuple}, origin)
	}
	l.pushScope()
	defer l.popScope()

	var initTerm tir.TermId
	if data.Init.IsValid() {
		initTerm = l.lowerStmtAsTerm(data.Init)
	} else {
		initTerm = l.Env.Terms.Create(tir.Term{Kind: tir.TermTuple}, tir.Generated())
	}

	subject := l.Env.Terms.Create(tir.Term{Kind: tir.TermLit, Lit: tir.Lit{Kind: tir.LitBool, Bool: true}}, tir.Generated())
	if data.Cond.IsValid() {
		subject = l.lowerExpr(data.Cond)
	}
	bodyTerm := l.lowerStmtAsTerm(data.Body)
	var postTerm tir.TermId
	if data.Post.IsValid() {
		postTerm = l.lowerExpr(data.Post)
	} else {
		postTerm = l.Env.Terms.Create(tir.Term{Kind: tir.TermTuple}, tir.Generated())
	}
	innerStack := l.Env.Stacks.Create(tir.Stack{}, tir.Generated())
	innerBlock := l.Env.Terms.Create(tir.Term{Kind: tir.TermBlock, Block: tir.BlockTerm{
		Stack:      innerStack,
		Statements: []tir.TermId{bodyTerm},
		Result:     postTerm,
	}}, tir.Generated())

	breakTerm := l.Env.Terms.Create(tir.Term{Kind: tir.TermLoopControl, LoopControl: tir.LoopControlTerm{Kind: tir.LoopBreak}}, tir.Generated())
	cases := []tir.MatchCase{
		{Pat: boolLitPat(true, tir.Generated(), l.Env), Body: innerBlock},
		{Pat: boolLitPat(false, tir.Generated(), l.Env), Body: breakTerm},
	}
	match := l.Env.Terms.Create(tir.Term{Kind: tir.TermMatch, Match: tir.MatchTerm{Subject: subject, Cases: cases}}, tir.Generated())
	loop := l.Env.Terms.Create(tir.Term{Kind: tir.TermLoop, Loop: tir.LoopTerm{Body: match}}, tir.Generated())

	outerStack := l.Env.Stacks.Create(tir.Stack{}, tir.Generated())
	return l.Env.Terms.Create(tir.Term{Kind: tir.TermBlock, Block: tir.BlockTerm{
		Stack:      outerStack,
		Statements: []tir.TermId{initTerm},
		Result:     loop,
	}}, origin)
}

// lowerForIn desugars `for pat in iterable { body }` against a pair of
// synthesized `__iter_has_next`/`__iter_next` intrinsics rather than a real
// iterator-protocol method dispatch: an effort-bounded simplification
// (carried from this package's design notes) standing in for the full
// trait-style iteration spec.md's source language would otherwise need.
func (l *Lowerer) lowerForIn(id ast.StmtID, origin tir.NodeOrigin) tir.TermId {
	data := l.Builder.Stmts.ForIn(id)
	if data == nil {
		return l.Env.Terms.Create(tir.Term{Kind: tir.TermTuple}, origin)
	}
	l.pushScope()
	defer l.popScope()

	iterable := l.lowerExpr(data.Iterable)
	iterSym := l.newSymbolFromText("__iter", tir.Generated())
	iterInit := l.Env.Terms.Create(tir.Term{Kind: tir.TermVar, Var: iterSym}, tir.Generated())
	initAssign := l.Env.Terms.Create(tir.Term{Kind: tir.TermAssign, Assign: tir.AssignTerm{Place: iterInit, Value: iterable}}, tir.Generated())

	iterRead := l.Env.Terms.Create(tir.Term{Kind: tir.TermVar, Var: iterSym}, tir.Generated())
	hasNext := l.callIntrinsicNamed("__iter_has_next", []tir.TermId{iterRead}, tir.Generated())

	l.pushScope()
	var patSym tir.SymbolId
	if text, ok := l.Builder.StringsInterner.Lookup(data.Pattern); ok && text != "_" {
		patSym = l.newSymbolFromText(text, tir.Given(l.nodeOf(ast.NodeKindStmt, uint32(id))))
		l.bind(data.Pattern, patSym)
	} else {
		patSym = l.Env.Symbols.Fresh(tir.Generated())
	}
	iterReadAgain := l.Env.Terms.Create(tir.Term{Kind: tir.TermVar, Var: iterSym}, tir.Generated())
	nextVal := l.callIntrinsicNamed("__iter_next", []tir.TermId{iterReadAgain}, tir.Generated())
	bindVar := l.Env.Terms.Create(tir.Term{Kind: tir.TermVar, Var: patSym}, tir.Generated())
	bindAssign := l.Env.Terms.Create(tir.Term{Kind: tir.TermAssign, Assign: tir.AssignTerm{Place: bindVar, Value: nextVal}}, tir.Generated())
	bodyTerm := l.lowerStmtAsTerm(data.Body)
	l.popScope()

	innerStack := l.Env.Stacks.Create(tir.Stack{}, tir.Generated())
	thenBlock := l.Env.Terms.Create(tir.Term{Kind: tir.TermBlock, Block: tir.BlockTerm{
		Stack:      innerStack,
		Statements: []tir.TermId{bindAssign},
		Result:     bodyTerm,
	}}, tir.Generated())
	breakTerm := l.Env.Terms.Create(tir.Term{Kind: tir.TermLoopControl, LoopControl: tir.LoopControlTerm{Kind: tir.LoopBreak}}, tir.Generated())
	cases := []tir.MatchCase{
		{Pat: boolLitPat(true, tir.Generated(), l.Env), Body: thenBlock},
		{Pat: boolLitPat(false, tir.Generated(), l.Env), Body: breakTerm},
	}
	match := l.Env.Terms.Create(tir.Term{Kind: tir.TermMatch, Match: tir.MatchTerm{Subject: hasNext, Cases: cases}}, tir.Generated())
	loop := l.Env.Terms.Create(tir.Term{Kind: tir.TermLoop, Loop: tir.LoopTerm{Body: match}}, tir.Generated())

	outerStack := l.Env.Stacks.Create(tir.Stack{}, tir.Generated())
	return l.Env.Terms.Create(tir.Term{Kind: tir.TermBlock, Block: tir.BlockTerm{
		Stack:      outerStack,
		Statements: []tir.TermId{initAssign},
		Result:     loop,
	}}, origin)
}

// callIntrinsicNamed builds a call to a named, lazily-created n-ary
// intrinsic FnDef, the same memoisation callIntrinsic/intrinsicFn use for
// binary operators but keyed by name instead of ast.ExprBinaryOp (iterator
// protocol stand-ins have no surface operator to key on).
func (l *Lowerer) callIntrinsicNamed(name string, argVals []tir.TermId, origin tir.NodeOrigin) tir.TermId {
	if l.namedIntrinsics == nil {
		l.namedIntrinsics = make(map[string]tir.FnDefId)
	}
	fn, ok := l.namedIntrinsics[name]
	if !ok {
		sym := l.newSymbolFromText(name, tir.Generated())
		hole := l.freshTyHole()
		params := make([]tir.Param, len(argVals))
		for i := range params {
			params[i] = tir.Param{Ty: hole}
		}
		iid := tir.IntrinsicId(len(l.intrinsics) + len(l.namedIntrinsics) + 1)
		fn = l.Env.FnDefs.Create(tir.FnDef{
			Name: sym, Ty: tir.FnTy{Params: l.Env.Params.CreateFromIter(params), Return: hole, Pure: true},
			BodyKind: tir.FnBodyIntrinsic, Intrinsic: iid,
		}, tir.Generated())
		l.namedIntrinsics[name] = fn
	}
	ref := l.Env.Terms.Create(tir.Term{Kind: tir.TermFnRef, FnRef: tir.FnRefTerm{Fn: fn}}, tir.Generated())
	args := make([]tir.Arg, len(argVals))
	for i, v := range argVals {
		args[i] = tir.Arg{Target: tir.ArgTarget{Position: uint32(i)}, Value: v}
	}
	return l.Env.Terms.Create(tir.Term{Kind: tir.TermFnCall, FnCall: tir.FnCallTerm{Subject: ref, Args: l.Env.Args.CreateFromIter(args)}}, origin)
}
