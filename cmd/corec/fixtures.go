package main

import (
	"fmt"
	"sort"

	"corec/internal/ast"
	"corec/internal/source"
)

// fixture names one ast.Builder-constructed program a command can run. No
// lexer/parser exists in this tree (internal/ast's doc comment: that
// collaborator is explicitly out of scope), so diagnose/build take a
// fixture name instead of a source path, the same hand-built-AST
// convention internal/driver/diagnose_test.go and internal/cfg/cfg_test.go
// use for their own fixtures.
type fixture struct {
	name        string
	description string
	build       func(b *ast.Builder) ast.FileID
}

var fixtures = []fixture{
	{
		name:        "return-add",
		description: `fn two() { return 1 + 2; }`,
		build:       buildReturnAddFixture,
	},
	{
		name:        "return-bool",
		description: `fn truthy() { return true; }`,
		build:       buildReturnBoolFixture,
	},
}

func lookupFixture(name string) (fixture, error) {
	for _, f := range fixtures {
		if f.name == name {
			return f, nil
		}
	}
	names := make([]string, 0, len(fixtures))
	for _, f := range fixtures {
		names = append(names, f.name)
	}
	sort.Strings(names)
	return fixture{}, fmt.Errorf("unknown fixture %q (available: %v)", name, names)
}

// buildReturnAddFixture mirrors internal/driver/diagnose_test.go's
// buildReturnAddFile: one function `return 1 + 2` with no explicit
// return-type annotation, run through the default-int-literal path.
func buildReturnAddFixture(b *ast.Builder) ast.FileID {
	file := b.NewFile(source.Span{})

	one := b.Exprs.NewLiteral(source.Span{}, ast.ExprLitInt, b.StringsInterner.Intern("1"))
	two := b.Exprs.NewLiteral(source.Span{}, ast.ExprLitInt, b.StringsInterner.Intern("2"))
	add := b.Exprs.NewBinary(source.Span{}, ast.ExprBinaryAdd, one, two)
	ret := b.Stmts.NewReturn(source.Span{}, add)
	body := b.Stmts.NewBlock(source.Span{}, []ast.StmtID{ret})
	item := b.NewFn(b.StringsInterner.Intern("two"), nil, ast.NoTypeID, body, 0, nil, source.Span{})
	b.PushItem(file, item)

	return file
}

// buildReturnBoolFixture is the same shape as buildReturnAddFixture but
// returns a bool literal, exercising the classifier's scalar-bool path
// (abi.Classifier.ClassifyFn) rather than the integer one.
func buildReturnBoolFixture(b *ast.Builder) ast.FileID {
	file := b.NewFile(source.Span{})

	lit := b.Exprs.NewLiteral(source.Span{}, ast.ExprLitTrue, b.StringsInterner.Intern("true"))
	ret := b.Stmts.NewReturn(source.Span{}, lit)
	body := b.Stmts.NewBlock(source.Span{}, []ast.StmtID{ret})
	item := b.NewFn(b.StringsInterner.Intern("truthy"), nil, ast.NoTypeID, body, 0, nil, source.Span{})
	b.PushItem(file, item)

	return file
}
