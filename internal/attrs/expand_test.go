package attrs

import (
	"testing"

	"corec/internal/ast"
	"corec/internal/diag"
	"corec/internal/source"
)

func newBuilder() *ast.Builder {
	return ast.NewBuilder(ast.Hints{}, source.NewInterner())
}

func TestReprCOnStructIsRecorded(t *testing.T) {
	b := newBuilder()
	file := b.NewFile(source.Span{})

	cIdent := b.Exprs.NewIdent(source.Span{}, b.StringsInterner.Intern("c"))
	reprAttr := ast.Attr{Name: b.StringsInterner.Intern("repr"), Args: []ast.ExprID{cIdent}, Span: source.Span{}}

	item := b.Items.NewTypeStruct(
		b.StringsInterner.Intern("Point"),
		nil, nil, false, source.Span{},
		nil,
		source.Span{}, source.Span{}, source.Span{},
		[]ast.Attr{reprAttr},
		ast.VisPrivate,
		ast.NoTypeID,
		nil, nil, false, source.Span{}, source.Span{},
	)
	b.PushItem(file, item)

	bag := diag.NewBag(16)
	exp := NewExpander(b, bag)
	exp.ExpandFile(file)

	if bag.HasErrors() {
		t.Fatalf("unexpected errors expanding #[repr(c)] on a struct")
	}

	node := ast.ItemNodeId(file, item)
	repr, ok := exp.Store().Repr(node)
	if !ok {
		t.Fatal("expected a recorded repr attribute")
	}
	if repr != ReprC {
		t.Fatalf("repr = %v, want ReprC", repr)
	}
}

func TestReprUnknownArgumentIsAnError(t *testing.T) {
	b := newBuilder()
	file := b.NewFile(source.Span{})

	badIdent := b.Exprs.NewIdent(source.Span{}, b.StringsInterner.Intern("nope"))
	reprAttr := ast.Attr{Name: b.StringsInterner.Intern("repr"), Args: []ast.ExprID{badIdent}, Span: source.Span{}}

	item := b.Items.NewTypeStruct(
		b.StringsInterner.Intern("Bad"),
		nil, nil, false, source.Span{},
		nil,
		source.Span{}, source.Span{}, source.Span{},
		[]ast.Attr{reprAttr},
		ast.VisPrivate,
		ast.NoTypeID,
		nil, nil, false, source.Span{}, source.Span{},
	)
	b.PushItem(file, item)

	bag := diag.NewBag(16)
	exp := NewExpander(b, bag)
	exp.ExpandFile(file)

	if !bag.HasErrors() {
		t.Fatal("expected an error for an unrecognised @repr argument")
	}
	if _, ok := exp.Store().Repr(ast.ItemNodeId(file, item)); ok {
		t.Fatal("a malformed repr attribute must not be recorded")
	}
}

func TestForeignOnFunctionIsRecorded(t *testing.T) {
	b := newBuilder()
	file := b.NewFile(source.Span{})

	foreignAttr := ast.Attr{Name: b.StringsInterner.Intern("foreign"), Span: source.Span{}}
	item := b.Items.NewFn(b.StringsInterner.Intern("extern_fn"), nil, ast.NoTypeID, ast.NoStmtID, 0, []ast.Attr{foreignAttr}, source.Span{})
	b.PushItem(file, item)

	bag := diag.NewBag(16)
	exp := NewExpander(b, bag)
	exp.ExpandFile(file)

	if bag.HasErrors() {
		t.Fatalf("unexpected errors expanding #[foreign] on a function")
	}
	if !exp.Store().IsForeign(ast.ItemNodeId(file, item)) {
		t.Fatal("expected #[foreign] to be recorded on the function")
	}
}

func TestAttributeOnWrongTargetIsAnError(t *testing.T) {
	b := newBuilder()
	file := b.NewFile(source.Span{})

	// #[repr(c)] is only valid on data definitions, not functions.
	cIdent := b.Exprs.NewIdent(source.Span{}, b.StringsInterner.Intern("c"))
	reprAttr := ast.Attr{Name: b.StringsInterner.Intern("repr"), Args: []ast.ExprID{cIdent}, Span: source.Span{}}
	item := b.Items.NewFn(b.StringsInterner.Intern("f"), nil, ast.NoTypeID, ast.NoStmtID, 0, []ast.Attr{reprAttr}, source.Span{})
	b.PushItem(file, item)

	bag := diag.NewBag(16)
	exp := NewExpander(b, bag)
	exp.ExpandFile(file)

	if !bag.HasErrors() {
		t.Fatal("expected an error for @repr on a function")
	}
}

func TestUnknownAttributeIsOnlyAWarning(t *testing.T) {
	b := newBuilder()
	file := b.NewFile(source.Span{})

	mystery := ast.Attr{Name: b.StringsInterner.Intern("mystery"), Span: source.Span{}}
	item := b.Items.NewFn(b.StringsInterner.Intern("f"), nil, ast.NoTypeID, ast.NoStmtID, 0, []ast.Attr{mystery}, source.Span{})
	b.PushItem(file, item)

	bag := diag.NewBag(16)
	exp := NewExpander(b, bag)
	exp.ExpandFile(file)

	if bag.HasErrors() {
		t.Fatal("an unknown attribute must be a warning, not an error")
	}
	if !bag.HasWarnings() {
		t.Fatal("expected a warning for an unknown attribute")
	}
	if exp.Store().Has(ast.ItemNodeId(file, item), KindUnknown) {
		t.Fatal("an unknown attribute should not be recorded into the store")
	}
}

func TestDuplicateAttributeIsAWarning(t *testing.T) {
	b := newBuilder()
	file := b.NewFile(source.Span{})

	cold1 := ast.Attr{Name: b.StringsInterner.Intern("cold"), Span: source.Span{}}
	cold2 := ast.Attr{Name: b.StringsInterner.Intern("cold"), Span: source.Span{}}
	item := b.Items.NewFn(b.StringsInterner.Intern("f"), nil, ast.NoTypeID, ast.NoStmtID, 0, []ast.Attr{cold1, cold2}, source.Span{})
	b.PushItem(file, item)

	bag := diag.NewBag(16)
	exp := NewExpander(b, bag)
	exp.ExpandFile(file)

	if !bag.HasWarnings() {
		t.Fatal("expected a duplicate-attribute warning")
	}
	a, ok := exp.Store().Get(ast.ItemNodeId(file, item))
	if !ok || len(a) != 1 {
		t.Fatalf("expected exactly one recorded #[cold], got %+v", a)
	}
}

func TestMultipleDistinctAttributesOnOneFunctionAreAllRecorded(t *testing.T) {
	b := newBuilder()
	file := b.NewFile(source.Span{})

	cold := ast.Attr{Name: b.StringsInterner.Intern("cold"), Span: source.Span{}}
	noMangle := ast.Attr{Name: b.StringsInterner.Intern("no_mangle"), Span: source.Span{}}
	item := b.Items.NewFn(b.StringsInterner.Intern("f"), nil, ast.NoTypeID, ast.NoStmtID, 0, []ast.Attr{cold, noMangle}, source.Span{})
	b.PushItem(file, item)

	bag := diag.NewBag(16)
	exp := NewExpander(b, bag)
	exp.ExpandFile(file)

	node := ast.ItemNodeId(file, item)
	if !exp.Store().IsCold(node) || !exp.Store().IsNoMangle(node) {
		t.Fatal("expected both #[cold] and #[no_mangle] recorded")
	}
}
