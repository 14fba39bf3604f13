package cfg

import (
	"testing"

	"corec/internal/ast"
	"corec/internal/attrs"
	"corec/internal/diag"
	"corec/internal/lower"
	"corec/internal/source"
	"corec/internal/tir"
)

// fixture returns an empty TIR Env plus an AST builder holding one empty
// file; tests add items to that file and lowerFile turns it into a real TIR
// module via internal/lower (the same way internal/lower's own tests do), so
// CFG lowering is exercised against genuine Term/Ty/Pat shapes rather than
// hand-assembled stand-ins.
func fixture(t *testing.T) (*tir.Env, *ast.Builder, ast.FileID) {
	t.Helper()
	b := ast.NewBuilder(ast.Hints{}, source.NewInterner())
	file := b.NewFile(source.Span{})
	return tir.NewEnv(), b, file
}

func lowerFile(t *testing.T, env *tir.Env, b *ast.Builder, file ast.FileID) (*diag.Bag, tir.ModDefId) {
	t.Helper()
	bag := diag.NewBag(16)
	l := lower.New(env, b, attrs.NewStore(), bag)
	mod := l.LowerFile(file)
	if bag.HasErrors() {
		t.Fatalf("unexpected lowering errors: %v", bag.Items())
	}
	return bag, mod
}

func addFn(b *ast.Builder, file ast.FileID, name string, body ast.StmtID) {
	item := b.NewFn(b.StringsInterner.Intern(name), nil, ast.NoTypeID, body, 0, nil, source.Span{})
	b.PushItem(file, item)
}

func intLit(b *ast.Builder, v string) ast.ExprID {
	return b.Exprs.NewLiteral(source.Span{}, ast.ExprLitInt, b.StringsInterner.Intern(v))
}

func ident(b *ast.Builder, name string) ast.ExprID {
	return b.Exprs.NewIdent(source.Span{}, b.StringsInterner.Intern(name))
}

// A module with one ordinary function should be discovered exactly once;
// pure/implicit intrinsic FnDefs synthesised by internal/lower for operator
// desugaring must not themselves appear in the worklist (spec.md §4.6.1).
func TestDiscovererFindsModuleFunctions(t *testing.T) {
	env, b, file := fixture(t)
	add := b.Exprs.NewBinary(source.Span{}, ast.ExprBinaryAdd, intLit(b, "1"), intLit(b, "2"))
	ret := b.Stmts.NewReturn(source.Span{}, add)
	body := b.Stmts.NewBlock(source.Span{}, []ast.StmtID{ret})
	addFn(b, file, "two", body)

	_, _ = lowerFile(t, env, b, file)

	d := NewDiscoverer(env, nil)
	d.Run()
	if len(d.Fns()) != 1 {
		t.Fatalf("expected exactly one discovered fn, got %d", len(d.Fns()))
	}
}

// `return 1 + 2` should lower to a Body whose entry block computes the
// BinaryOp into the return place and terminates with Return.
func TestLowerFnSimpleReturn(t *testing.T) {
	env, b, file := fixture(t)
	add := b.Exprs.NewBinary(source.Span{}, ast.ExprBinaryAdd, intLit(b, "1"), intLit(b, "2"))
	ret := b.Stmts.NewReturn(source.Span{}, add)
	body := b.Stmts.NewBlock(source.Span{}, []ast.StmtID{ret})
	addFn(b, file, "two", body)

	_, _ = lowerFile(t, env, b, file)

	d := NewDiscoverer(env, nil)
	d.Run()
	if len(d.Fns()) != 1 {
		t.Fatalf("expected one fn, got %d", len(d.Fns()))
	}

	store := NewIrTyStore()
	resolver := NewTyResolver(env, store)
	lw := NewLowering(env, store, resolver, map[tir.TermId]tir.TyId{}, diag.NewBag(16), nil)
	fnBody := lw.LowerFn(d.Fns()[0])

	if fnBody.Entry != 0 {
		t.Fatalf("expected entry block 0, got %d", fnBody.Entry)
	}
	entry := fnBody.Blocks[fnBody.Entry]
	if len(entry.Statements) == 0 {
		t.Fatalf("expected at least one statement in entry block")
	}
	last := entry.Statements[len(entry.Statements)-1]
	if last.Kind != StmtAssign || last.RValue.Kind != RValueBinaryOp {
		t.Fatalf("expected final statement to assign a BinaryOp, got kind %v/%v", last.Kind, last.RValue.Kind)
	}
	found := false
	for _, blk := range fnBody.Blocks {
		if blk.Terminator.Kind == TermReturn {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected some block to terminate with Return")
	}

	// Constant folding should have reduced the literal add to a single
	// Const statement (spec.md §4.6.6).
	foldedBody := fnBody
	FoldConstants(env, &foldedBody)
	anyConstFolded := false
	for _, blk := range foldedBody.Blocks {
		for _, s := range blk.Statements {
			if s.Kind == StmtAssign && s.RValue.Kind == RValueConst && s.RValue.Const.Kind == ConstInt && s.RValue.Const.Int == 3 {
				anyConstFolded = true
			}
		}
	}
	if !anyConstFolded {
		t.Fatalf("expected 1 + 2 to fold to a Const(3)")
	}
}

// `while running { break }` desugars (internal/lower) to TermLoop wrapping
// a TermMatch on a bool; lowering it must not panic and must produce more
// than one basic block (loop header, body, after-loop).
func TestLowerMatchFromWhileDesugaring(t *testing.T) {
	env, b, file := fixture(t)
	trueLit := b.Exprs.NewLiteral(source.Span{}, ast.ExprLitTrue, 0)
	letRunning := b.Stmts.NewLet(source.Span{}, b.StringsInterner.Intern("running"), ast.ExprID(0), ast.NoTypeID, trueLit, true)
	brk := b.Stmts.NewBreak(source.Span{})
	loopBody := b.Stmts.NewBlock(source.Span{}, []ast.StmtID{brk})
	cond := ident(b, "running")
	whileStmt := b.Stmts.NewWhile(source.Span{}, cond, loopBody)
	fnBody := b.Stmts.NewBlock(source.Span{}, []ast.StmtID{letRunning, whileStmt})
	addFn(b, file, "loopy", fnBody)

	_, _ = lowerFile(t, env, b, file)

	d := NewDiscoverer(env, nil)
	d.Run()
	if len(d.Fns()) != 1 {
		t.Fatalf("expected one fn, got %d", len(d.Fns()))
	}

	store := NewIrTyStore()
	resolver := NewTyResolver(env, store)
	lw := NewLowering(env, store, resolver, map[tir.TermId]tir.TyId{}, diag.NewBag(16), nil)
	body := lw.LowerFn(d.Fns()[0])

	if len(body.Blocks) < 3 {
		t.Fatalf("expected at least 3 blocks (header/body/after), got %d", len(body.Blocks))
	}
}
