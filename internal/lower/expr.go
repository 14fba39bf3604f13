package lower

import (
	"strconv"

	"corec/internal/ast"
	"corec/internal/diag"
	"corec/internal/source"
	"corec/internal/tir"
)

// assignBinaryOp maps a compound-assignment operator to the plain binary
// operator its intrinsic call desugars to (spec.md §4.6: `x += y` lowers to
// `x = x + y`, the same "assignment is never its own Term kind" treatment
// the rest of this package gives `if`/`while`/`for`).
var assignBinaryOp = map[ast.ExprBinaryOp]ast.ExprBinaryOp{
	ast.ExprBinaryAddAssign:      ast.ExprBinaryAdd,
	ast.ExprBinarySubAssign:      ast.ExprBinarySub,
	ast.ExprBinaryMulAssign:      ast.ExprBinaryMul,
	ast.ExprBinaryDivAssign:      ast.ExprBinaryDiv,
	ast.ExprBinaryModAssign:      ast.ExprBinaryMod,
	ast.ExprBinaryBitAndAssign:   ast.ExprBinaryBitAnd,
	ast.ExprBinaryBitOrAssign:    ast.ExprBinaryBitOr,
	ast.ExprBinaryBitXorAssign:   ast.ExprBinaryBitXor,
	ast.ExprBinaryShlAssign:      ast.ExprBinaryShiftLeft,
	ast.ExprBinaryShrAssign:      ast.ExprBinaryShiftRight,
}

var intrinsicNames = map[ast.ExprBinaryOp]string{
	ast.ExprBinaryAdd:           "__add",
	ast.ExprBinarySub:           "__sub",
	ast.ExprBinaryMul:           "__mul",
	ast.ExprBinaryDiv:           "__div",
	ast.ExprBinaryMod:           "__mod",
	ast.ExprBinaryBitAnd:        "__bitand",
	ast.ExprBinaryBitOr:         "__bitor",
	ast.ExprBinaryBitXor:        "__bitxor",
	ast.ExprBinaryShiftLeft:     "__shl",
	ast.ExprBinaryShiftRight:   "__shr",
	ast.ExprBinaryLogicalAnd:    "__and",
	ast.ExprBinaryLogicalOr:     "__or",
	ast.ExprBinaryEq:            "__eq",
	ast.ExprBinaryNotEq:         "__ne",
	ast.ExprBinaryLess:          "__lt",
	ast.ExprBinaryLessEq:        "__le",
	ast.ExprBinaryGreater:       "__gt",
	ast.ExprBinaryGreaterEq:     "__ge",
	ast.ExprBinaryNullCoalescing: "__null_coalesce",
}

var comparisonOps = map[ast.ExprBinaryOp]bool{
	ast.ExprBinaryLogicalAnd: true, ast.ExprBinaryLogicalOr: true,
	ast.ExprBinaryEq: true, ast.ExprBinaryNotEq: true,
	ast.ExprBinaryLess: true, ast.ExprBinaryLessEq: true,
	ast.ExprBinaryGreater: true, ast.ExprBinaryGreaterEq: true,
}

// intrinsicFn returns (creating on first use) the synthetic FnDef backing a
// binary operator: spec.md §3.3's TermKind has no binary-operator variant,
// so `a + b` lowers to a TermFnCall against a per-operator intrinsic
// FnDef{BodyKind: FnBodyIntrinsic}, the same representation
// original_source/compiler/hash-lower gives Rust's primitive-op "virtual
// functions".
func (l *Lowerer) intrinsicFn(op ast.ExprBinaryOp) tir.FnDefId {
	if id, ok := l.intrinsics[op]; ok {
		return id
	}
	textName, ok := intrinsicNames[op]
	if !ok {
		textName = "__op"
	}
	name := l.newSymbolFromText(textName, tir.Generated())
	hole := l.freshTyHole()
	retTy := hole
	if comparisonOps[op] {
		retTy = l.primitiveType("bool")
	}
	params := l.Env.Params.CreateFromIter([]tir.Param{
		{Name: tir.NoSymbolId, Ty: hole, Default: tir.NoTermId},
		{Name: tir.NoSymbolId, Ty: hole, Default: tir.NoTermId},
	})
	iid := tir.IntrinsicId(len(l.intrinsics) + 1)
	fn := l.Env.FnDefs.Create(tir.FnDef{
		Name:      name,
		Ty:        tir.FnTy{Params: params, Return: retTy, Pure: true},
		BodyKind:  tir.FnBodyIntrinsic,
		Intrinsic: iid,
	}, tir.Generated())
	l.intrinsics[op] = fn
	return fn
}

func (l *Lowerer) callIntrinsic(op ast.ExprBinaryOp, left, right tir.TermId, origin tir.NodeOrigin) tir.TermId {
	fn := l.intrinsicFn(op)
	ref := l.Env.Terms.Create(tir.Term{Kind: tir.TermFnRef, FnRef: tir.FnRefTerm{Fn: fn}}, tir.Generated())
	args := l.Env.Args.CreateFromIter([]tir.Arg{
		{Target: tir.ArgTarget{Position: 0}, Value: left},
		{Target: tir.ArgTarget{Position: 1}, Value: right},
	})
	return l.Env.Terms.Create(tir.Term{Kind: tir.TermFnCall, FnCall: tir.FnCallTerm{Subject: ref, Args: args}}, origin)
}

func (l *Lowerer) lowerLit(data *ast.ExprLiteralData) tir.Lit {
	text, _ := l.Builder.StringsInterner.Lookup(data.Value)
	switch data.Kind {
	case ast.ExprLitInt:
		v, _ := strconv.ParseInt(text, 0, 64)
		return tir.Lit{Kind: tir.LitInt, Int: tir.IntLit{Value: uint64(v)}}
	case ast.ExprLitUint:
		v, _ := strconv.ParseUint(text, 0, 64)
		return tir.Lit{Kind: tir.LitInt, Int: tir.IntLit{Value: v}}
	case ast.ExprLitFloat:
		v, _ := strconv.ParseFloat(text, 64)
		return tir.Lit{Kind: tir.LitFloat, Float: tir.FloatLit{Value: v}}
	case ast.ExprLitString:
		return tir.Lit{Kind: tir.LitStr, Str: tir.StrLit{Value: []byte(text)}}
	case ast.ExprLitTrue:
		return tir.Lit{Kind: tir.LitBool, Bool: true}
	case ast.ExprLitFalse:
		return tir.Lit{Kind: tir.LitBool, Bool: false}
	default: // ExprLitNothing
		return tir.Lit{Kind: tir.LitBool, Bool: false}
	}
}

func boolLitPat(value bool, origin tir.NodeOrigin, env *tir.Env) tir.PatId {
	return env.Pats.Create(tir.Pat{Kind: tir.PatLit, Lit: tir.LitPat{Lit: tir.Lit{Kind: tir.LitBool, Bool: value}}}, origin)
}

// lowerExpr lowers a single AST expression to a TermId (spec.md §4.5, §4.6).
func (l *Lowerer) lowerExpr(id ast.ExprID) tir.TermId {
	if !id.IsValid() {
		return tir.NoTermId
	}
	expr := l.Builder.Exprs.Get(id)
	if expr == nil {
		return tir.NoTermId
	}
	origin := tir.Given(l.nodeOf(ast.NodeKindExpr, uint32(id)))

	switch expr.Kind {
	case ast.ExprIdent:
		data, ok := l.Builder.Exprs.Ident(id)
		if !ok {
			break
		}
		sym, ok := l.resolve(data.Name)
		if !ok {
			l.report(diag.SevError, diag.SemaUnresolvedSymbol, expr.Span, "unresolved name")
			return l.Env.Terms.Create(tir.Term{Kind: tir.TermHole, Hole: l.Env.Symbols.Fresh(tir.Generated())}, origin)
		}
		if ctor, ok := l.ctorSymbols[sym]; ok {
			return l.Env.Terms.Create(tir.Term{Kind: tir.TermCtor, Ctor: tir.CtorTerm{Ctor: ctor}}, origin)
		}
		if fnDef, ok := l.fnSymbols[sym]; ok {
			return l.Env.Terms.Create(tir.Term{Kind: tir.TermFnRef, FnRef: tir.FnRefTerm{Fn: fnDef}}, origin)
		}
		return l.Env.Terms.Create(tir.Term{Kind: tir.TermVar, Var: sym}, origin)

	case ast.ExprLit:
		data, ok := l.Builder.Exprs.Literal(id)
		if !ok {
			break
		}
		return l.Env.Terms.Create(tir.Term{Kind: tir.TermLit, Lit: l.lowerLit(data)}, origin)

	case ast.ExprGroup:
		data, ok := l.Builder.Exprs.Group(id)
		if !ok {
			break
		}
		return l.lowerExpr(data.Inner)

	case ast.ExprBinary:
		return l.lowerBinary(id, expr, origin)

	case ast.ExprUnary:
		return l.lowerUnary(id, expr, origin)

	case ast.ExprCast:
		data, ok := l.Builder.Exprs.Cast(id)
		if !ok {
			break
		}
		value := l.lowerExpr(data.Value)
		return l.Env.Terms.Create(tir.Term{Kind: tir.TermCast, Cast: tir.CastTerm{Value: value, To: l.lowerType(data.Type)}}, origin)

	case ast.ExprTuple:
		data, ok := l.Builder.Exprs.Tuple(id)
		if !ok {
			break
		}
		args := make([]tir.Arg, len(data.Elements))
		for i, el := range data.Elements {
			args[i] = tir.Arg{Target: tir.ArgTarget{Position: uint32(i)}, Value: l.lowerExpr(el)}
		}
		return l.Env.Terms.Create(tir.Term{Kind: tir.TermTuple, Tuple: tir.TupleTerm{Args: l.Env.Args.CreateFromIter(args)}}, origin)

	case ast.ExprArray:
		// This AST has no dedicated array-literal term: spec.md §3.3 models
		// a fixed collection the same way as any other product, via
		// TermTuple, leaving the distinction of "this tuple denotes an
		// array value" to the array DataDef its type later resolves to.
		data, ok := l.Builder.Exprs.Array(id)
		if !ok {
			break
		}
		args := make([]tir.Arg, len(data.Elements))
		for i, el := range data.Elements {
			args[i] = tir.Arg{Target: tir.ArgTarget{Position: uint32(i)}, Value: l.lowerExpr(el)}
		}
		return l.Env.Terms.Create(tir.Term{Kind: tir.TermTuple, Tuple: tir.TupleTerm{Args: l.Env.Args.CreateFromIter(args)}}, origin)

	case ast.ExprSpread:
		data, ok := l.Builder.Exprs.Spread(id)
		if !ok {
			break
		}
		return l.lowerExpr(data.Value)

	case ast.ExprIndex:
		data, ok := l.Builder.Exprs.Index(id)
		if !ok {
			break
		}
		target := l.lowerExpr(data.Target)
		index := l.lowerExpr(data.Index)
		fn := l.indexIntrinsicFn()
		ref := l.Env.Terms.Create(tir.Term{Kind: tir.TermFnRef, FnRef: tir.FnRefTerm{Fn: fn}}, tir.Generated())
		args := l.Env.Args.CreateFromIter([]tir.Arg{
			{Target: tir.ArgTarget{Position: 0}, Value: target},
			{Target: tir.ArgTarget{Position: 1}, Value: index},
		})
		return l.Env.Terms.Create(tir.Term{Kind: tir.TermFnCall, FnCall: tir.FnCallTerm{Subject: ref, Args: args}}, origin)

	case ast.ExprMember:
		return l.lowerMember(id, expr, origin)

	case ast.ExprCall:
		return l.lowerCall(id, expr, origin)

	case ast.ExprStruct:
		return l.lowerStructLit(id, expr, origin)

	case ast.ExprCompare:
		return l.lowerCompare(id, origin)

	case ast.ExprAwait, ast.ExprSpawn, ast.ExprParallel, ast.ExprTernary:
		l.report(diag.SevWarning, diag.FutAsyncNotSupported, expr.Span, "construct has no lowering yet")
		return l.Env.Terms.Create(tir.Term{Kind: tir.TermHole, Hole: l.Env.Symbols.Fresh(tir.Generated())}, origin)
	}

	l.report(diag.SevError, diag.SemLowerUnsupportedType, expr.Span, "unsupported expression form")
	return l.Env.Terms.Create(tir.Term{Kind: tir.TermHole, Hole: l.Env.Symbols.Fresh(tir.Generated())}, origin)
}

// indexIntrinsicFn is the synthetic two-argument `(container, index) ->
// element` function backing `a[i]`, memoised in l.intrinsics under a
// reserved pseudo-operator key distinct from any real ExprBinaryOp.
const indexOpKey = ast.ExprBinaryOp(255)

func (l *Lowerer) indexIntrinsicFn() tir.FnDefId {
	if id, ok := l.intrinsics[indexOpKey]; ok {
		return id
	}
	name := l.newSymbolFromText("__index", tir.Generated())
	hole := l.freshTyHole()
	params := l.Env.Params.CreateFromIter([]tir.Param{{Ty: hole}, {Ty: hole}})
	iid := tir.IntrinsicId(len(l.intrinsics) + 1)
	fn := l.Env.FnDefs.Create(tir.FnDef{
		Name: name, Ty: tir.FnTy{Params: params, Return: hole, Pure: true},
		BodyKind: tir.FnBodyIntrinsic, Intrinsic: iid,
	}, tir.Generated())
	l.intrinsics[indexOpKey] = fn
	return fn
}

func (l *Lowerer) lowerBinary(id ast.ExprID, expr *ast.Expr, origin tir.NodeOrigin) tir.TermId {
	data, ok := l.Builder.Exprs.Binary(id)
	if !ok {
		return l.Env.Terms.Create(tir.Term{Kind: tir.TermHole, Hole: l.Env.Symbols.Fresh(tir.Generated())}, origin)
	}

	switch data.Op {
	case ast.ExprBinaryAssign:
		place := l.lowerExpr(data.Left)
		value := l.lowerExpr(data.Right)
		return l.Env.Terms.Create(tir.Term{Kind: tir.TermAssign, Assign: tir.AssignTerm{Place: place, Value: value}}, origin)

	case ast.ExprBinaryRange, ast.ExprBinaryRangeInclusive:
		lo := l.lowerExpr(data.Left)
		hi := l.lowerExpr(data.Right)
		return l.rangeTerm(lo, hi, data.Op == ast.ExprBinaryRangeInclusive, origin)

	case ast.ExprBinaryIs, ast.ExprBinaryHeir:
		// Type-test operators have no direct Term representation (spec.md
		// §3.3 names no "is" term); modelled as the same comparison
		// intrinsic family so downstream stages at least see a boolean
		// producer, with the real semantics deferred to sema.
		left := l.lowerExpr(data.Left)
		right := l.lowerExpr(data.Right)
		return l.callIntrinsic(ast.ExprBinaryEq, left, right, origin)
	}

	if base, ok := assignBinaryOp[data.Op]; ok {
		place := l.lowerExpr(data.Left)
		left := l.lowerExpr(data.Left)
		right := l.lowerExpr(data.Right)
		value := l.callIntrinsic(base, left, right, origin)
		return l.Env.Terms.Create(tir.Term{Kind: tir.TermAssign, Assign: tir.AssignTerm{Place: place, Value: value}}, origin)
	}

	left := l.lowerExpr(data.Left)
	right := l.lowerExpr(data.Right)
	return l.callIntrinsic(data.Op, left, right, origin)
}

func (l *Lowerer) unaryIntrinsicFn(op ast.ExprUnaryOp) tir.FnDefId {
	key := ast.ExprBinaryOp(200 + uint8(op))
	if id, ok := l.intrinsics[key]; ok {
		return id
	}
	var text string
	switch op {
	case ast.ExprUnaryPlus:
		text = "__pos"
	case ast.ExprUnaryMinus:
		text = "__neg"
	default:
		text = "__not"
	}
	name := l.newSymbolFromText(text, tir.Generated())
	hole := l.freshTyHole()
	params := l.Env.Params.CreateFromIter([]tir.Param{{Ty: hole}})
	iid := tir.IntrinsicId(len(l.intrinsics) + 1)
	fn := l.Env.FnDefs.Create(tir.FnDef{
		Name: name, Ty: tir.FnTy{Params: params, Return: hole, Pure: true},
		BodyKind: tir.FnBodyIntrinsic, Intrinsic: iid,
	}, tir.Generated())
	l.intrinsics[key] = fn
	return fn
}

func (l *Lowerer) lowerUnary(id ast.ExprID, expr *ast.Expr, origin tir.NodeOrigin) tir.TermId {
	data, ok := l.Builder.Exprs.Unary(id)
	if !ok {
		return l.Env.Terms.Create(tir.Term{Kind: tir.TermHole, Hole: l.Env.Symbols.Fresh(tir.Generated())}, origin)
	}
	operand := l.lowerExpr(data.Operand)

	switch data.Op {
	case ast.ExprUnaryDeref:
		return l.Env.Terms.Create(tir.Term{Kind: tir.TermDeref, Deref: tir.DerefTerm{Inner: operand}}, origin)
	case ast.ExprUnaryRef:
		return l.Env.Terms.Create(tir.Term{Kind: tir.TermRef, Ref: tir.RefTerm{Kind: tir.RefSmart, Inner: operand}}, origin)
	case ast.ExprUnaryRefMut:
		return l.Env.Terms.Create(tir.Term{Kind: tir.TermRef, Ref: tir.RefTerm{Kind: tir.RefSmart, Mutable: true, Inner: operand}}, origin)
	case ast.ExprUnaryOwn:
		return l.Env.Terms.Create(tir.Term{Kind: tir.TermRef, Ref: tir.RefTerm{Kind: tir.RefRaw, Inner: operand}}, origin)
	case ast.ExprUnaryAwait:
		l.report(diag.SevWarning, diag.FutAsyncNotSupported, expr.Span, "await has no lowering yet")
		return operand
	default: // Plus, Minus, Not
		fn := l.unaryIntrinsicFn(data.Op)
		ref := l.Env.Terms.Create(tir.Term{Kind: tir.TermFnRef, FnRef: tir.FnRefTerm{Fn: fn}}, tir.Generated())
		args := l.Env.Args.CreateFromIter([]tir.Arg{{Target: tir.ArgTarget{Position: 0}, Value: operand}})
		return l.Env.Terms.Create(tir.Term{Kind: tir.TermFnCall, FnCall: tir.FnCallTerm{Subject: ref, Args: args}}, origin)
	}
}

// fieldAccessFn is the synthetic `(struct) -> field` projection backing
// `.member` access, keyed by field name text so repeated accesses of the
// same field name share one intrinsic.
func (l *Lowerer) lowerMember(id ast.ExprID, expr *ast.Expr, origin tir.NodeOrigin) tir.TermId {
	data, ok := l.Builder.Exprs.Member(id)
	if !ok {
		return l.Env.Terms.Create(tir.Term{Kind: tir.TermHole, Hole: l.Env.Symbols.Fresh(tir.Generated())}, origin)
	}
	target := l.lowerExpr(data.Target)
	text, _ := l.Builder.StringsInterner.Lookup(data.Field)
	fn := l.fieldAccessFn(text)
	ref := l.Env.Terms.Create(tir.Term{Kind: tir.TermFnRef, FnRef: tir.FnRefTerm{Fn: fn}}, tir.Generated())
	args := l.Env.Args.CreateFromIter([]tir.Arg{{Target: tir.ArgTarget{Position: 0}, Value: target}})
	return l.Env.Terms.Create(tir.Term{Kind: tir.TermFnCall, FnCall: tir.FnCallTerm{Subject: ref, Args: args}}, origin)
}

func (l *Lowerer) fieldAccessFn(field string) tir.FnDefId {
	if l.fieldAccessors == nil {
		l.fieldAccessors = make(map[string]tir.FnDefId)
	}
	if id, ok := l.fieldAccessors[field]; ok {
		return id
	}
	name := l.newSymbolFromText("__field_"+field, tir.Generated())
	hole := l.freshTyHole()
	params := l.Env.Params.CreateFromIter([]tir.Param{{Ty: hole}})
	iid := tir.IntrinsicId(len(l.intrinsics) + 1)
	fn := l.Env.FnDefs.Create(tir.FnDef{
		Name: name, Ty: tir.FnTy{Params: params, Return: hole, Pure: true},
		BodyKind: tir.FnBodyIntrinsic, Intrinsic: iid,
	}, tir.Generated())
	l.fieldAccessors[field] = fn
	return fn
}

func (l *Lowerer) lowerCall(id ast.ExprID, expr *ast.Expr, origin tir.NodeOrigin) tir.TermId {
	data, ok := l.Builder.Exprs.Call(id)
	if !ok {
		return l.Env.Terms.Create(tir.Term{Kind: tir.TermHole, Hole: l.Env.Symbols.Fresh(tir.Generated())}, origin)
	}

	// A call whose target is a bare name bound to a constructor is a ctor
	// application, not a function call (spec.md §3.4: TermCtor is distinct
	// from TermFnCall).
	if targetIdent, ok := l.Builder.Exprs.Ident(data.Target); ok {
		if sym, ok := l.resolve(targetIdent.Name); ok {
			if ctor, ok := l.ctorSymbols[sym]; ok {
				args := make([]tir.Arg, len(data.Args))
				for i, a := range data.Args {
					args[i] = tir.Arg{Target: tir.ArgTarget{Position: uint32(i)}, Value: l.lowerExpr(a)}
				}
				return l.Env.Terms.Create(tir.Term{Kind: tir.TermCtor, Ctor: tir.CtorTerm{Ctor: ctor, Args: l.Env.Args.CreateFromIter(args)}}, origin)
			}
		}
	}

	subject := l.lowerExpr(data.Target)
	args := make([]tir.Arg, len(data.Args))
	for i, a := range data.Args {
		args[i] = tir.Arg{Target: tir.ArgTarget{Position: uint32(i)}, Value: l.lowerExpr(a)}
	}
	return l.Env.Terms.Create(tir.Term{Kind: tir.TermFnCall, FnCall: tir.FnCallTerm{Subject: subject, Args: l.Env.Args.CreateFromIter(args)}}, origin)
}

// lowerStructLit lowers `Type { field: value, ... }` to a TermCtor against
// the DataDef's sole constructor (every TypeDeclStruct lowers to exactly
// one CtorDef, per lowerDataBody).
func (l *Lowerer) lowerStructLit(id ast.ExprID, expr *ast.Expr, origin tir.NodeOrigin) tir.TermId {
	data, ok := l.Builder.Exprs.Struct(id)
	if !ok {
		return l.Env.Terms.Create(tir.Term{Kind: tir.TermHole, Hole: l.Env.Symbols.Fresh(tir.Generated())}, origin)
	}
	ty := l.lowerType(data.Type)
	tyNode := l.Env.Tys.Get(ty)
	if tyNode.Data.Kind != tir.TyData {
		l.report(diag.SevError, diag.SemLowerUnsupportedType, expr.Span, "struct literal target does not name a data type")
		return l.Env.Terms.Create(tir.Term{Kind: tir.TermHole, Hole: l.Env.Symbols.Fresh(tir.Generated())}, origin)
	}
	def := l.Env.DataDefs.Get(tyNode.Data.Data.Def)
	var ctor tir.CtorDefId
	var ctorParams []tir.Param
	if def.Data.Ctors.IsValid() {
		ctor = l.Env.CtorDefsSeq.At(def.Data.Ctors, 0)
		ctorDef := l.Env.CtorDefs.Get(ctor)
		if ctorDef.Data.Params.IsValid() {
			ctorParams = l.Env.Params.All(ctorDef.Data.Params)
		}
	}

	args := make([]tir.Arg, len(data.Fields))
	for i, f := range data.Fields {
		target := tir.ArgTarget{Position: uint32(i)}
		if !data.Positional {
			if pos, ok := l.fieldPosition(ctorParams, f.Name); ok {
				target = tir.ArgTarget{Position: uint32(pos)}
			}
		}
		args[i] = tir.Arg{Target: target, Value: l.lowerExpr(f.Value)}
	}
	return l.Env.Terms.Create(tir.Term{Kind: tir.TermCtor, Ctor: tir.CtorTerm{Ctor: ctor, Args: l.Env.Args.CreateFromIter(args)}}, origin)
}

// fieldPosition finds the index of the ctor parameter named fieldName
// among params, matching on re-interned identifier text (struct fields and
// ctor params both end up as tir.Identifier values from the same pool, per
// internIdent's doc comment).
func (l *Lowerer) fieldPosition(params []tir.Param, fieldName source.StringID) (int, bool) {
	want := l.internIdent(fieldName)
	if !want.IsValid() {
		return -1, false
	}
	for i, p := range params {
		if l.Env.Symbols.Name(p.Name) == want {
			return i, true
		}
	}
	return -1, false
}

// lowerCompare lowers the native match expression (`value compare { pat =>
// result, ... }`, ast.ExprCompareData) to a TermMatch: spec.md §4.6.5's
// general pattern-matching primitive, reused (via lowerIfAsMatch etc.) for
// every other desugared branching construct too.
func (l *Lowerer) lowerCompare(id ast.ExprID, origin tir.NodeOrigin) tir.TermId {
	data, ok := l.Builder.Exprs.Compare(id)
	if !ok {
		return l.Env.Terms.Create(tir.Term{Kind: tir.TermHole, Hole: l.Env.Symbols.Fresh(tir.Generated())}, origin)
	}
	subject := l.lowerExpr(data.Value)
	cases := make([]tir.MatchCase, len(data.Arms))
	for i, arm := range data.Arms {
		l.pushScope()
		var pat tir.PatId
		if arm.IsFinally {
			pat = l.Env.Pats.Create(tir.Pat{Kind: tir.PatWildcard}, tir.Generated())
		} else {
			pat = l.lowerPattern(arm.Pattern)
		}
		body := l.lowerExpr(arm.Result)
		if arm.Guard.IsValid() {
			pat = l.Env.Pats.Create(tir.Pat{Kind: tir.PatIf, If: tir.IfPat{Inner: pat, Guard: l.lowerExpr(arm.Guard)}}, tir.Given(l.nodeOf(ast.NodeKindExpr, uint32(arm.Guard))))
		}
		l.popScope()
		cases[i] = tir.MatchCase{Pat: pat, Body: body}
	}
	return l.Env.Terms.Create(tir.Term{Kind: tir.TermMatch, Match: tir.MatchTerm{Subject: subject, Cases: cases}}, origin)
}
