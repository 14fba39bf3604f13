package tir

import "corec/internal/ident"

// symbolInfo is the payload stored per SymbolId: spec.md §3.1 — every
// distinct introduction of a name creates a new SymbolId, even when two
// bindings share a surface name, so the payload here is intentionally thin
// (identifier + origin) rather than carrying a type or value; those live in
// the scope bindings (internal/scope) and TIR definitions that reference
// the symbol.
type symbolInfo struct {
	Name ident.Identifier // NoIdentifier for compiler-generated symbols
}

// Symbols is the store backing SymbolId creation: from_name/fresh/duplicate
// (spec.md §4.1).
type Symbols struct {
	store *Store[SymbolId, symbolInfo]
}

// NewSymbols creates an empty Symbols store.
func NewSymbols() *Symbols {
	return &Symbols{store: NewStore[SymbolId, symbolInfo](256)}
}

// FromName creates a SymbolId carrying a surface identifier.
func (s *Symbols) FromName(name ident.Identifier, origin NodeOrigin) SymbolId {
	return s.store.Create(symbolInfo{Name: name}, origin)
}

// Fresh creates a SymbolId with no surface name (compiler-generated).
func (s *Symbols) Fresh(origin NodeOrigin) SymbolId {
	return s.store.Create(symbolInfo{Name: ident.NoIdentifier}, origin)
}

// Duplicate creates a new SymbolId that copies an existing symbol's name
// under a new origin. Used when a binding must be re-introduced under a
// different scope (e.g. instantiating a generic function's parameters at a
// call site) without aliasing the original binding identity.
func (s *Symbols) Duplicate(sym SymbolId, origin NodeOrigin) SymbolId {
	info := s.store.Get(sym)
	return s.store.Create(info.Data, origin)
}

// Name returns the surface identifier for sym, or ident.NoIdentifier if sym
// is compiler-generated.
func (s *Symbols) Name(sym SymbolId) ident.Identifier {
	return s.store.Get(sym).Data.Name
}

// Origin returns the NodeOrigin recorded at sym's creation.
func (s *Symbols) Origin(sym SymbolId) NodeOrigin {
	return s.store.Get(sym).Origin
}

// IsGenerated reports whether sym has no surface name.
func (s *Symbols) IsGenerated(sym SymbolId) bool {
	return !s.Name(sym).IsValid()
}
