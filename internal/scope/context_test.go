package scope

import (
	"errors"
	"testing"

	"corec/internal/tir"
)

func TestEnterScopePushesAndPopsOnSuccess(t *testing.T) {
	c := NewContext()
	if c.Depth() != 0 {
		t.Fatalf("Depth() = %d, want 0", c.Depth())
	}

	_, err := EnterScope(c, StackScope(tir.StackId(1)), func() (int, error) {
		if c.Depth() != 1 {
			t.Fatalf("Depth() inside scope = %d, want 1", c.Depth())
		}
		return 42, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Depth() != 0 {
		t.Fatalf("Depth() after EnterScope = %d, want 0 (scope must be popped)", c.Depth())
	}
}

func TestEnterScopePopsOnError(t *testing.T) {
	c := NewContext()
	wantErr := errors.New("boom")

	_, err := EnterScope(c, StackScope(tir.StackId(1)), func() (int, error) {
		return 0, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("error = %v, want %v", err, wantErr)
	}
	if c.Depth() != 0 {
		t.Fatalf("Depth() after errored EnterScope = %d, want 0", c.Depth())
	}
}

func TestEnterScopePopsOnPanic(t *testing.T) {
	c := NewContext()

	func() {
		defer func() { recover() }()
		EnterScope(c, StackScope(tir.StackId(1)), func() (int, error) {
			panic("boom")
		})
	}()

	if c.Depth() != 0 {
		t.Fatalf("Depth() after panicking EnterScope = %d, want 0 (defer must still pop)", c.Depth())
	}
}

func TestNoTwoScopesShareALevel(t *testing.T) {
	c := NewContext()
	var levels []int

	_, _ = EnterScope(c, StackScope(tir.StackId(1)), func() (int, error) {
		levels = append(levels, c.Depth()-1)
		return EnterScope(c, StackScope(tir.StackId(2)), func() (int, error) {
			levels = append(levels, c.Depth()-1)
			return EnterScope(c, StackScope(tir.StackId(3)), func() (int, error) {
				levels = append(levels, c.Depth()-1)
				return 0, nil
			})
		})
	})

	seen := map[int]bool{}
	for _, l := range levels {
		if seen[l] {
			t.Fatalf("level %d was reused across nested scopes: %v", l, levels)
		}
		seen[l] = true
	}
}

func TestGetSearchesTopToRootAndReturnsClosest(t *testing.T) {
	c := NewContext()
	outer := tir.SymbolId(1)

	_, _ = EnterScope(c, StackScope(tir.StackId(1)), func() (int, error) {
		c.AddBinding(Binding{Name: outer, Kind: BindingBoundVar, Origin: tir.Generated()})

		return EnterScope(c, StackScope(tir.StackId(2)), func() (int, error) {
			c.AddBinding(Binding{Name: outer, Kind: BindingStackMember, Origin: tir.Generated()})

			b, ok := c.Get(outer)
			if !ok {
				t.Fatal("Get should find the shadowing inner binding")
			}
			if b.Kind != BindingStackMember {
				t.Fatalf("Get returned %v, want the closest (inner) binding BindingStackMember", b.Kind)
			}
			return 0, nil
		})
	})

	// After both scopes have been popped, a new scope binding the same name
	// as a BoundVar resolves to that new binding.
	_, _ = EnterScope(c, StackScope(tir.StackId(1)), func() (int, error) {
		c.AddBinding(Binding{Name: outer, Kind: BindingBoundVar, Origin: tir.Generated()})
		b, ok := c.Get(outer)
		if !ok || b.Kind != BindingBoundVar {
			t.Fatalf("Get after popping inner scope = %+v, %v; want BindingBoundVar binding", b, ok)
		}
		return 0, nil
	})
}

func TestGetMissingNameFails(t *testing.T) {
	c := NewContext()
	_, _ = EnterScope(c, StackScope(tir.StackId(1)), func() (int, error) {
		if _, ok := c.Get(tir.SymbolId(999)); ok {
			t.Fatal("Get should fail for a name that was never bound")
		}
		return 0, nil
	})
}

func TestAddBindingNeverReordersExisting(t *testing.T) {
	c := NewContext()
	a, b, d := tir.SymbolId(1), tir.SymbolId(2), tir.SymbolId(3)

	_, _ = EnterScope(c, StackScope(tir.StackId(1)), func() (int, error) {
		c.AddBinding(Binding{Name: a, Kind: BindingBoundVar})
		c.AddBinding(Binding{Name: b, Kind: BindingBoundVar})
		c.AddBinding(Binding{Name: d, Kind: BindingBoundVar})

		top := &c.frames[len(c.frames)-1]
		if len(top.bindings) != 3 {
			t.Fatalf("expected 3 bindings, got %d", len(top.bindings))
		}
		if top.bindings[0].Name != a || top.bindings[1].Name != b || top.bindings[2].Name != d {
			t.Fatalf("AddBinding reordered existing bindings: %+v", top.bindings)
		}
		return 0, nil
	})
}

func TestPoppingDiscardsExactlyWhatWasAddedSincePush(t *testing.T) {
	c := NewContext()
	name := tir.SymbolId(1)

	_, _ = EnterScope(c, StackScope(tir.StackId(1)), func() (int, error) {
		c.AddBinding(Binding{Name: name, Kind: BindingBoundVar})

		_, _ = EnterScope(c, StackScope(tir.StackId(2)), func() (int, error) {
			c.AddBinding(Binding{Name: tir.SymbolId(2), Kind: BindingBoundVar})
			return 0, nil
		})

		// The inner scope's binding must be gone, the outer one intact.
		if _, ok := c.Get(tir.SymbolId(2)); ok {
			t.Fatal("inner scope's binding survived its pop")
		}
		if _, ok := c.Get(name); !ok {
			t.Fatal("outer scope's own binding should survive the inner scope's pop")
		}
		return 0, nil
	})
}

func TestTryGetDeclVsTryGetDeclValue(t *testing.T) {
	c := NewContext()
	declName := tir.SymbolId(1)
	valueName := tir.SymbolId(2)

	_, _ = EnterScope(c, FnScope(tir.FnDefId(1)), func() (int, error) {
		c.AddBinding(Binding{Name: declName, Kind: BindingModMember})
		c.AddBinding(Binding{Name: valueName, Kind: BindingBoundVar})

		if _, ok := c.TryGetDecl(declName); !ok {
			t.Fatal("TryGetDecl should find a ModMember binding")
		}
		if _, ok := c.TryGetDecl(valueName); ok {
			t.Fatal("TryGetDecl should not find a BoundVar binding")
		}
		if _, ok := c.TryGetDeclValue(valueName); !ok {
			t.Fatal("TryGetDeclValue should find a BoundVar binding")
		}
		if _, ok := c.TryGetDeclValue(declName); ok {
			t.Fatal("TryGetDeclValue should not find a ModMember binding")
		}
		return 0, nil
	})
}

func TestCurrentKindReflectsTopOfStack(t *testing.T) {
	c := NewContext()
	_, _ = EnterScope(c, ModScope(tir.ModDefId(1)), func() (int, error) {
		if c.CurrentKind().Kind != KindMod {
			t.Fatalf("CurrentKind() = %v, want KindMod", c.CurrentKind().Kind)
		}
		return EnterScope(c, DataScope(tir.DataDefId(1)), func() (int, error) {
			if c.CurrentKind().Kind != KindData {
				t.Fatalf("CurrentKind() = %v, want KindData", c.CurrentKind().Kind)
			}
			return 0, nil
		})
	})
}

func TestCurrentKindPanicsOnEmptyStack(t *testing.T) {
	c := NewContext()
	defer func() {
		if recover() == nil {
			t.Fatal("expected CurrentKind to panic on an empty stack")
		}
	}()
	c.CurrentKind()
}
