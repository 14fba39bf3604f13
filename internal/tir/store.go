package tir

import (
	"fmt"
	"sync"

	"fortio.org/safecast"
)

// Store is a generic, concurrency-safe arena providing create/get/modify
// over Node[T] values, following surge/internal/symbols.Symbols's
// slice-arena-with-reserved-sentinel shape (spec.md §4.1's store contract),
// generalised with Go generics and a mutex so that concurrent `create`
// across the cross-source work-stealing pool (spec.md §5) is safe.
//
// ID is the caller's opaque id type (TermId, TyId, PatId, ...); toIndex/
// fromIndex convert between ID and the underlying slice index, keeping the
// zero value reserved as the "no value" sentinel in every store.
type Store[ID ~uint32, T any] struct {
	mu   sync.RWMutex
	data []Node[T]
}

// NewStore creates an empty store with capacity reserved up front; index 0
// is reserved for the sentinel ID.
func NewStore[ID ~uint32, T any](capacity uint32) *Store[ID, T] {
	if capacity == 0 {
		capacity = 16
	}
	return &Store[ID, T]{data: make([]Node[T], 1, capacity+1)}
}

// Create interns a new value and returns its fresh id. An id returned by
// Create is never reused for a different value (spec.md §4.1 invariant).
func (s *Store[ID, T]) Create(value T, origin NodeOrigin) ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := safecast.Conv[uint32](len(s.data))
	if err != nil {
		panic(fmt.Errorf("tir: store overflow: %w", err))
	}
	id := ID(n)
	s.data = append(s.data, Node[T]{Data: value, Origin: origin})
	return id
}

// Get returns a by-value snapshot of the node at id. Accessing an id that
// was never created is a fatal programmer error (spec.md §4.1), so Get
// panics rather than returning a boolean, matching the teacher's
// MustLookup idiom for identifiers that are supposed to always be valid by
// construction.
func (s *Store[ID, T]) Get(id ID) Node[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := int(id)
	if idx <= 0 || idx >= len(s.data) {
		panic(fmt.Errorf("tir: invalid store id %d", id))
	}
	return s.data[idx]
}

// Modify applies f to the payload stored at id atomically with respect to
// other Modify/Get calls on the same store. The origin is never touched:
// it is immutable after creation (spec.md §3.2).
func (s *Store[ID, T]) Modify(id ID, f func(*T)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := int(id)
	if idx <= 0 || idx >= len(s.data) {
		panic(fmt.Errorf("tir: invalid store id %d", id))
	}
	f(&s.data[idx].Data)
}

// Len reports the number of real (non-sentinel) entries.
func (s *Store[ID, T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data) - 1
}

// SequenceStore stores ordered sequences of T (Params, Args, PatArgs, ...),
// additionally exposing create_from_iter/at/len per spec.md §4.1.
type SequenceStore[ID ~uint32, T any] struct {
	mu   sync.RWMutex
	data [][]T
}

// NewSequenceStore creates an empty sequence store; index 0 is reserved.
func NewSequenceStore[ID ~uint32, T any]() *SequenceStore[ID, T] {
	return &SequenceStore[ID, T]{data: make([][]T, 1, 16)}
}

// CreateFromIter interns a new sequence and returns its id.
func (s *SequenceStore[ID, T]) CreateFromIter(items []T) ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := safecast.Conv[uint32](len(s.data))
	if err != nil {
		panic(fmt.Errorf("tir: sequence store overflow: %w", err))
	}
	id := ID(n)
	cpy := make([]T, len(items))
	copy(cpy, items)
	s.data = append(s.data, cpy)
	return id
}

// At returns the i'th element of the sequence named by id.
func (s *SequenceStore[ID, T]) At(id ID, i int) T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seq := s.sequence(id)
	if i < 0 || i >= len(seq) {
		panic(fmt.Errorf("tir: sequence index %d out of range (len %d)", i, len(seq)))
	}
	return seq[i]
}

// Len returns the length of the sequence named by id.
func (s *SequenceStore[ID, T]) Len(id ID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sequence(id))
}

// All returns a copy of the full sequence named by id, for callers that
// need to range over it (exhaustiveness checking, ABI computation, etc).
func (s *SequenceStore[ID, T]) All(id ID) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seq := s.sequence(id)
	out := make([]T, len(seq))
	copy(out, seq)
	return out
}

// sequence resolves id to its backing slice. Unlike Store.Get, the
// sentinel id 0 is not a programmer error here: a non-generic DataTy, a
// parameter-less FnTy, or a zero-argument call legitimately has no
// sequence at all, so id 0 resolves to an empty sequence rather than
// panicking. Any other out-of-range id is still a fatal programmer error.
func (s *SequenceStore[ID, T]) sequence(id ID) []T {
	idx := int(id)
	if idx == 0 {
		return nil
	}
	if idx < 0 || idx >= len(s.data) {
		panic(fmt.Errorf("tir: invalid sequence store id %d", id))
	}
	return s.data[idx]
}
