package tir

import "testing"

func TestStoreCreateGetRoundtrip(t *testing.T) {
	s := NewStore[TermId, int](4)

	id := s.Create(42, Generated())
	node := s.Get(id)
	if node.Data != 42 {
		t.Fatalf("Get(%d).Data = %d, want 42", id, node.Data)
	}
	if node.Origin.Kind != OriginGenerated {
		t.Fatalf("Get(%d).Origin.Kind = %v, want OriginGenerated", id, node.Origin.Kind)
	}
}

func TestStoreCreateNeverReusesId(t *testing.T) {
	s := NewStore[TermId, int](4)

	a := s.Create(1, Generated())
	b := s.Create(2, Generated())
	if a == b {
		t.Fatalf("two distinct Create calls produced the same id: %d", a)
	}
	if !a.IsValid() || !b.IsValid() {
		t.Fatalf("ids returned by Create should be valid: %d, %d", a, b)
	}
}

func TestStoreModifyDoesNotTouchOrigin(t *testing.T) {
	s := NewStore[TermId, int](4)

	origin := Given(AstNodeId{})
	id := s.Create(1, origin)
	s.Modify(id, func(v *int) { *v = 99 })

	node := s.Get(id)
	if node.Data != 99 {
		t.Fatalf("Modify did not update payload: got %d", node.Data)
	}
	if node.Origin != origin {
		t.Fatalf("Modify must not touch origin: got %+v, want %+v", node.Origin, origin)
	}
}

func TestStoreGetInvalidIdPanics(t *testing.T) {
	s := NewStore[TermId, int](4)
	defer func() {
		if recover() == nil {
			t.Fatal("expected Get to panic for an unused id")
		}
	}()
	s.Get(NoTermId)
}

func TestStoreLenExcludesSentinel(t *testing.T) {
	s := NewStore[TermId, int](4)
	if s.Len() != 0 {
		t.Fatalf("Len() on empty store = %d, want 0", s.Len())
	}
	s.Create(1, Generated())
	s.Create(2, Generated())
	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
}

func TestSequenceStoreBasics(t *testing.T) {
	s := NewSequenceStore[ParamsId, int]()

	id := s.CreateFromIter([]int{10, 20, 30})
	if s.Len(id) != 3 {
		t.Fatalf("Len(%d) = %d, want 3", id, s.Len(id))
	}
	if got := s.At(id, 1); got != 20 {
		t.Fatalf("At(%d, 1) = %d, want 20", id, got)
	}

	all := s.All(id)
	if len(all) != 3 || all[0] != 10 || all[2] != 30 {
		t.Fatalf("All(%d) = %v, want [10 20 30]", id, all)
	}
}

func TestSequenceStoreCopiesInput(t *testing.T) {
	s := NewSequenceStore[ParamsId, int]()

	input := []int{1, 2, 3}
	id := s.CreateFromIter(input)
	input[0] = 999

	if got := s.At(id, 0); got != 1 {
		t.Fatalf("sequence store should copy its input; At(%d,0) = %d, want 1 (mutation of caller's slice leaked in)", id, got)
	}
}

func TestSequenceStoreAtOutOfRangePanics(t *testing.T) {
	s := NewSequenceStore[ParamsId, int]()
	id := s.CreateFromIter([]int{1})

	defer func() {
		if recover() == nil {
			t.Fatal("expected At to panic for an out-of-range index")
		}
	}()
	s.At(id, 5)
}
