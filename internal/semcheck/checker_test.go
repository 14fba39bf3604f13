package semcheck

import (
	"testing"

	"corec/internal/ast"
	"corec/internal/diag"
	"corec/internal/source"
)

func newBuilder() *ast.Builder {
	return ast.NewBuilder(ast.Hints{}, source.NewInterner())
}

func fnWithBody(b *ast.Builder, file ast.FileID, body ast.StmtID) ast.ItemID {
	item := b.Items.NewFn(b.StringsInterner.Intern("f"), nil, ast.NoTypeID, body, 0, nil, source.Span{})
	b.PushItem(file, item)
	return item
}

func TestBreakInsideWhileIsFine(t *testing.T) {
	b := newBuilder()
	file := b.NewFile(source.Span{})

	brk := b.Stmts.NewBreak(source.Span{})
	loopBody := b.Stmts.NewBlock(source.Span{}, []ast.StmtID{brk})
	while := b.Stmts.NewWhile(source.Span{}, ast.NoExprID, loopBody)
	fnBody := b.Stmts.NewBlock(source.Span{}, []ast.StmtID{while})
	fnWithBody(b, file, fnBody)

	bag := diag.NewBag(16)
	New(b, bag).CheckFile(file)

	if bag.HasErrors() {
		t.Fatalf("unexpected errors for 'break' inside a while loop")
	}
}

func TestBreakOutsideLoopIsAnError(t *testing.T) {
	b := newBuilder()
	file := b.NewFile(source.Span{})

	brk := b.Stmts.NewBreak(source.Span{})
	fnBody := b.Stmts.NewBlock(source.Span{}, []ast.StmtID{brk})
	fnWithBody(b, file, fnBody)

	bag := diag.NewBag(16)
	New(b, bag).CheckFile(file)

	if !bag.HasErrors() {
		t.Fatal("expected an error for 'break' outside of a loop")
	}
}

func TestContinueOutsideLoopIsAnError(t *testing.T) {
	b := newBuilder()
	file := b.NewFile(source.Span{})

	cont := b.Stmts.NewContinue(source.Span{})
	fnBody := b.Stmts.NewBlock(source.Span{}, []ast.StmtID{cont})
	fnWithBody(b, file, fnBody)

	bag := diag.NewBag(16)
	New(b, bag).CheckFile(file)

	if !bag.HasErrors() {
		t.Fatal("expected an error for 'continue' outside of a loop")
	}
}

func TestContinueInsideNestedForIsFine(t *testing.T) {
	b := newBuilder()
	file := b.NewFile(source.Span{})

	cont := b.Stmts.NewContinue(source.Span{})
	innerBody := b.Stmts.NewBlock(source.Span{}, []ast.StmtID{cont})
	forIn := b.Stmts.NewForIn(source.Span{}, b.StringsInterner.Intern("x"), source.Span{}, ast.NoTypeID, ast.NoExprID, innerBody)
	fnBody := b.Stmts.NewBlock(source.Span{}, []ast.StmtID{forIn})
	fnWithBody(b, file, fnBody)

	bag := diag.NewBag(16)
	New(b, bag).CheckFile(file)

	if bag.HasErrors() {
		t.Fatalf("unexpected errors for 'continue' inside a for-in loop")
	}
}

func TestCodeAfterReturnIsUnreachable(t *testing.T) {
	b := newBuilder()
	file := b.NewFile(source.Span{})

	ret := b.Stmts.NewReturn(source.Span{}, ast.NoExprID)
	after := b.Stmts.NewExpr(source.Span{}, ast.NoExprID, true)
	fnBody := b.Stmts.NewBlock(source.Span{}, []ast.StmtID{ret, after})
	fnWithBody(b, file, fnBody)

	bag := diag.NewBag(16)
	New(b, bag).CheckFile(file)

	if bag.HasErrors() {
		t.Fatal("unreachable code must be a warning, not an error")
	}
	if !bag.HasWarnings() {
		t.Fatal("expected an unreachable-code warning for the statement after 'return'")
	}
}

func TestDuplicateBindingInTuplePatternIsAnError(t *testing.T) {
	b := newBuilder()
	file := b.NewFile(source.Span{})

	x1 := b.Exprs.NewIdent(source.Span{}, b.StringsInterner.Intern("x"))
	x2 := b.Exprs.NewIdent(source.Span{}, b.StringsInterner.Intern("x"))
	pattern := b.Exprs.NewTuple(source.Span{}, []ast.ExprID{x1, x2}, nil, false)
	let := b.Stmts.NewLet(source.Span{}, source.NoStringID, pattern, ast.NoTypeID, ast.NoExprID, false)
	fnBody := b.Stmts.NewBlock(source.Span{}, []ast.StmtID{let})
	fnWithBody(b, file, fnBody)

	bag := diag.NewBag(16)
	New(b, bag).CheckFile(file)

	if !bag.HasErrors() {
		t.Fatal("expected an error for a pattern that binds 'x' twice")
	}
}

func TestDistinctBindingsInTuplePatternAreFine(t *testing.T) {
	b := newBuilder()
	file := b.NewFile(source.Span{})

	x := b.Exprs.NewIdent(source.Span{}, b.StringsInterner.Intern("x"))
	y := b.Exprs.NewIdent(source.Span{}, b.StringsInterner.Intern("y"))
	pattern := b.Exprs.NewTuple(source.Span{}, []ast.ExprID{x, y}, nil, false)
	let := b.Stmts.NewLet(source.Span{}, source.NoStringID, pattern, ast.NoTypeID, ast.NoExprID, false)
	fnBody := b.Stmts.NewBlock(source.Span{}, []ast.StmtID{let})
	fnWithBody(b, file, fnBody)

	bag := diag.NewBag(16)
	New(b, bag).CheckFile(file)

	if bag.HasErrors() {
		t.Fatalf("unexpected errors for a pattern with distinct bindings")
	}
}

func TestTwoSpreadsInOnePatternIsAnError(t *testing.T) {
	b := newBuilder()
	file := b.NewFile(source.Span{})

	a := b.Exprs.NewIdent(source.Span{}, b.StringsInterner.Intern("a"))
	rest1 := b.Exprs.NewSpread(source.Span{}, b.Exprs.NewIdent(source.Span{}, b.StringsInterner.Intern("rest1")))
	rest2 := b.Exprs.NewSpread(source.Span{}, b.Exprs.NewIdent(source.Span{}, b.StringsInterner.Intern("rest2")))
	pattern := b.Exprs.NewArray(source.Span{}, []ast.ExprID{a, rest1, rest2}, nil, false)
	let := b.Stmts.NewLet(source.Span{}, source.NoStringID, pattern, ast.NoTypeID, ast.NoExprID, false)
	fnBody := b.Stmts.NewBlock(source.Span{}, []ast.StmtID{let})
	fnWithBody(b, file, fnBody)

	bag := diag.NewBag(16)
	New(b, bag).CheckFile(file)

	if !bag.HasErrors() {
		t.Fatal("expected an error for a pattern with two spreads")
	}
}

func TestOneSpreadInPatternIsFine(t *testing.T) {
	b := newBuilder()
	file := b.NewFile(source.Span{})

	a := b.Exprs.NewIdent(source.Span{}, b.StringsInterner.Intern("a"))
	rest := b.Exprs.NewSpread(source.Span{}, b.Exprs.NewIdent(source.Span{}, b.StringsInterner.Intern("rest")))
	pattern := b.Exprs.NewArray(source.Span{}, []ast.ExprID{a, rest}, nil, false)
	let := b.Stmts.NewLet(source.Span{}, source.NoStringID, pattern, ast.NoTypeID, ast.NoExprID, false)
	fnBody := b.Stmts.NewBlock(source.Span{}, []ast.StmtID{let})
	fnWithBody(b, file, fnBody)

	bag := diag.NewBag(16)
	New(b, bag).CheckFile(file)

	if bag.HasErrors() {
		t.Fatalf("unexpected errors for a pattern with exactly one spread")
	}
}
