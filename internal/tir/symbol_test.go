package tir

import (
	"corec/internal/ident"
	"testing"
)

func TestSymbolsFromNameVsFresh(t *testing.T) {
	syms := NewSymbols()
	pool := ident.NewPool()

	name := pool.InternIdent("x")
	named := syms.FromName(name, Generated())
	fresh := syms.Fresh(Generated())

	if named == fresh {
		t.Fatalf("FromName and Fresh must not collide: %d == %d", named, fresh)
	}
	if syms.Name(named) != name {
		t.Fatalf("Name(%d) = %v, want %v", named, syms.Name(named), name)
	}
	if !syms.IsGenerated(fresh) {
		t.Fatalf("IsGenerated(%d) = false, want true", fresh)
	}
	if syms.IsGenerated(named) {
		t.Fatalf("IsGenerated(%d) = true, want false", named)
	}
}

func TestSymbolsDistinctBindingsSameName(t *testing.T) {
	// spec.md §3.1: every distinct introduction of a name creates a new
	// SymbolId, even if two bindings share the same surface name.
	syms := NewSymbols()
	pool := ident.NewPool()
	name := pool.InternIdent("shadowed")

	a := syms.FromName(name, Generated())
	b := syms.FromName(name, Generated())

	if a == b {
		t.Fatalf("two distinct introductions of the same name must get distinct SymbolIds")
	}
	if syms.Name(a) != syms.Name(b) {
		t.Fatalf("both symbols should still report the same surface name")
	}
}

func TestSymbolsDuplicatePreservesNameNewOrigin(t *testing.T) {
	syms := NewSymbols()
	pool := ident.NewPool()
	name := pool.InternIdent("n")

	ast := AstNodeId{}
	original := syms.FromName(name, Given(ast))
	dup := syms.Duplicate(original, Generated())

	if dup == original {
		t.Fatalf("Duplicate must allocate a new SymbolId")
	}
	if syms.Name(dup) != name {
		t.Fatalf("Duplicate must preserve the name")
	}
	if syms.Origin(dup).Kind != OriginGenerated {
		t.Fatalf("Duplicate must use the supplied new origin, got %v", syms.Origin(dup).Kind)
	}
	if syms.Origin(original).Kind != OriginGiven {
		t.Fatalf("Duplicate must not mutate the original symbol's origin")
	}
}
