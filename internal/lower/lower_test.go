package lower

import (
	"testing"

	"corec/internal/ast"
	"corec/internal/attrs"
	"corec/internal/diag"
	"corec/internal/source"
	"corec/internal/tir"
)

func newFixture() (*ast.Builder, ast.FileID) {
	b := ast.NewBuilder(ast.Hints{}, source.NewInterner())
	file := b.NewFile(source.Span{})
	return b, file
}

func newLowerer(b *ast.Builder) (*Lowerer, *tir.Env, *diag.Bag) {
	env := tir.NewEnv()
	bag := diag.NewBag(16)
	return New(env, b, attrs.NewStore(), bag), env, bag
}

func intLit(b *ast.Builder, v string) ast.ExprID {
	return b.Exprs.NewLiteral(source.Span{}, ast.ExprLitInt, b.StringsInterner.Intern(v))
}

func boolLit(b *ast.Builder, v bool) ast.ExprID {
	kind := ast.ExprLitFalse
	if v {
		kind = ast.ExprLitTrue
	}
	return b.Exprs.NewLiteral(source.Span{}, kind, source.NoStringID)
}

func ident(b *ast.Builder, name string) ast.ExprID {
	return b.Exprs.NewIdent(source.Span{}, b.StringsInterner.Intern(name))
}

func addFn(b *ast.Builder, file ast.FileID, name string, body ast.StmtID) ast.ItemID {
	item := b.Items.NewFn(b.StringsInterner.Intern(name), nil, ast.NoTypeID, body, 0, nil, source.Span{})
	b.PushItem(file, item)
	return item
}

// A function whose body is just `return 1 + 2` should lower its body to a
// TermReturn wrapping a TermFnCall against a memoised `+` intrinsic
// (spec.md §3.3 gives Term no binary-operator variant of its own).
func TestLowerBinaryAddUsesIntrinsicCall(t *testing.T) {
	b, file := newFixture()
	add := b.Exprs.NewBinary(source.Span{}, ast.ExprBinaryAdd, intLit(b, "1"), intLit(b, "2"))
	ret := b.Stmts.NewReturn(source.Span{}, add)
	body := b.Stmts.NewBlock(source.Span{}, []ast.StmtID{ret})
	addFn(b, file, "two", body)

	l, env, bag := newLowerer(b)
	mod := l.LowerFile(file)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	if len(l.intrinsics) != 1 {
		t.Fatalf("expected exactly one memoised intrinsic for '+', got %d", len(l.intrinsics))
	}
	for _, fnID := range l.intrinsics {
		fn := env.FnDefs.Get(fnID)
		if fn.Data.BodyKind != tir.FnBodyIntrinsic {
			t.Fatalf("expected intrinsic FnDef, got BodyKind %v", fn.Data.BodyKind)
		}
	}

	modDef := env.ModDefs.Get(mod)
	if env.ModMembers.Len(modDef.Data.Members) != 1 {
		t.Fatalf("expected exactly one member, got %d", env.ModMembers.Len(modDef.Data.Members))
	}
	member := env.ModMembers.At(modDef.Data.Members, 0)
	fn := env.FnDefs.Get(member.Fn)
	bodyTerm := env.Terms.Get(fn.Data.Body)
	if bodyTerm.Data.Kind != tir.TermBlock {
		t.Fatalf("expected function body to lower to a TermBlock, got %v", bodyTerm.Data.Kind)
	}
}

// `while running { break }` should desugar to TermLoop{Body: TermMatch}
// with a true-case that runs the body and a false-case that breaks
// (spec.md §3.3: LoopTerm carries no condition field of its own).
func TestLowerWhileDesugarsToLoopAndMatch(t *testing.T) {
	b, file := newFixture()
	brk := b.Stmts.NewBreak(source.Span{})
	loopBody := b.Stmts.NewBlock(source.Span{}, []ast.StmtID{brk})
	cond := boolLit(b, true)
	while := b.Stmts.NewWhile(source.Span{}, cond, loopBody)
	fnBody := b.Stmts.NewBlock(source.Span{}, []ast.StmtID{while})
	addFn(b, file, "loop_once", fnBody)

	l, env, bag := newLowerer(b)
	mod := l.LowerFile(file)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}

	modDef := env.ModDefs.Get(mod)
	member := env.ModMembers.At(modDef.Data.Members, 0)
	fn := env.FnDefs.Get(member.Fn)
	block := env.Terms.Get(fn.Data.Body)
	if block.Data.Kind != tir.TermBlock {
		t.Fatalf("expected fn body to be a TermBlock, got %v", block.Data.Kind)
	}
	loopTermID := block.Data.Block.Result
	loopTerm := env.Terms.Get(loopTermID)
	if loopTerm.Data.Kind != tir.TermLoop {
		t.Fatalf("expected while to desugar to TermLoop, got %v", loopTerm.Data.Kind)
	}
	matchTerm := env.Terms.Get(loopTerm.Data.Loop.Body)
	if matchTerm.Data.Kind != tir.TermMatch {
		t.Fatalf("expected loop body to be a TermMatch, got %v", matchTerm.Data.Kind)
	}
	if len(matchTerm.Data.Match.Cases) != 2 {
		t.Fatalf("expected exactly 2 match cases (true/false), got %d", len(matchTerm.Data.Match.Cases))
	}
}

// A bare `None` identifier should resolve through bindBuiltinCtors without
// any surface declaration for Option ever appearing in the file.
func TestBindBuiltinCtorsResolvesNone(t *testing.T) {
	b, file := newFixture()
	noneExpr := ident(b, "None")
	ret := b.Stmts.NewReturn(source.Span{}, noneExpr)
	body := b.Stmts.NewBlock(source.Span{}, []ast.StmtID{ret})
	addFn(b, file, "nothing", body)

	l, env, bag := newLowerer(b)
	l.LowerFile(file)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors resolving None: %v", bag.Items())
	}
	if l.option == nil {
		t.Fatal("expected bindBuiltinCtors to have built the Option data def")
	}
	noneDef := env.CtorDefs.Get(l.option.none)
	if noneDef.Data.DataDef != l.option.data {
		t.Fatal("None constructor should belong to the Option data def")
	}
}

// An unresolved bare identifier should report SemaUnresolvedSymbol and
// still produce a usable (hole) term rather than panicking.
func TestLowerUnresolvedIdentReportsDiagnostic(t *testing.T) {
	b, file := newFixture()
	ret := b.Stmts.NewReturn(source.Span{}, ident(b, "nowhere"))
	body := b.Stmts.NewBlock(source.Span{}, []ast.StmtID{ret})
	addFn(b, file, "oops", body)

	l, _, bag := newLowerer(b)
	l.LowerFile(file)
	if !bag.HasErrors() {
		t.Fatal("expected an unresolved-symbol diagnostic")
	}
}

// `a..=b` should lower to a TermCtor against the synthetic Range data def
// with its `inclusive` field set true.
func TestLowerInclusiveRangeBuildsRangeCtor(t *testing.T) {
	b, file := newFixture()
	rangeExpr := b.Exprs.NewBinary(source.Span{}, ast.ExprBinaryRangeInclusive, intLit(b, "0"), intLit(b, "9"))
	ret := b.Stmts.NewReturn(source.Span{}, rangeExpr)
	body := b.Stmts.NewBlock(source.Span{}, []ast.StmtID{ret})
	addFn(b, file, "range", body)

	l, env, bag := newLowerer(b)
	mod := l.LowerFile(file)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	modDef := env.ModDefs.Get(mod)
	member := env.ModMembers.At(modDef.Data.Members, 0)
	fn := env.FnDefs.Get(member.Fn)
	block := env.Terms.Get(fn.Data.Body)
	retTerm := env.Terms.Get(block.Data.Block.Result)
	if retTerm.Data.Kind != tir.TermReturn {
		t.Fatalf("expected the block result to be the TermReturn, got %v", retTerm.Data.Kind)
	}
	ctorTerm := env.Terms.Get(retTerm.Data.Return.Value)
	if ctorTerm.Data.Kind != tir.TermCtor {
		t.Fatalf("expected range expression to lower to a TermCtor, got %v", ctorTerm.Data.Kind)
	}
	if l.rangeT == nil || ctorTerm.Data.Ctor.Ctor != l.rangeT.ctor {
		t.Fatal("expected the range term to use the memoised Range constructor")
	}
}
