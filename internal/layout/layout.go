// Package layout implements spec.md §4.7: computing a type's in-memory
// size/alignment/field offsets from its lowered IrTy shape
// (internal/cfg.IrTy), once CFG lowering has already resolved every TyId
// reaching it to a concrete, hole-free form. Grounded on
// surge/internal/layout/{layout,compute,cache,target}.go's memoised
// LayoutEngine-over-a-cache shape, rekeyed from surge's own
// types.Interner/types.TypeID onto this spec's tir.IrTyId.
package layout

import (
	"corec/internal/attrs"
	"corec/internal/cfg"
	"corec/internal/tir"
)

// TypeLayout is the ABI layout of a type for a specific Target.
type TypeLayout struct {
	Size  int
	Align int

	// Struct/tuple-only:
	FieldOffsets []int
	FieldAligns  []int

	// Tag-union fields, for ABI queries only (spec.md §4.7's "enum: tag
	// followed by payload" rule).
	TagSize       int
	TagAlign      int
	PayloadOffset int
}

// LayoutEngine computes and memoises TypeLayouts for a single Target.
type LayoutEngine struct {
	Target Target
	Store  *cfg.IrTyStore
	Env    *tir.Env
	Attrs  *attrs.Store

	cache *cache
}

// New creates a LayoutEngine over store (the shared IrTyStore CFG lowering
// populated, spec.md §4.6), consulting env's DataDefs for each IrTy's
// originating declaration and attrStore for any #[repr(...)] attribute on
// it (spec.md §4.7's union tag-width rule). attrStore may be nil, in which
// case every union defaults to a 4-byte tag.
func New(target Target, store *cfg.IrTyStore, env *tir.Env, attrStore *attrs.Store) *LayoutEngine {
	return &LayoutEngine{
		Target: target,
		Store:  store,
		Env:    env,
		Attrs:  attrStore,
		cache:  newCache(),
	}
}

// LayoutOf computes t's layout, returning a *LayoutError when t is an
// unindirected recursive type (LayoutErrRecursiveUnsized) or carries an
// array length layout computation cannot convert safely
// (LayoutErrLengthConversion/LayoutErrNegativeLength).
func (e *LayoutEngine) LayoutOf(t tir.IrTyId) (TypeLayout, error) {
	if e == nil || !t.IsValid() {
		return TypeLayout{Size: 0, Align: 1}, nil
	}
	if e.cache == nil {
		e.cache = newCache()
	}
	if cached, ok := e.cache.get(t); ok {
		return cached, nil
	}
	layout, err := e.computeLayout(t, nil)
	if err != nil {
		return TypeLayout{}, err
	}
	e.cache.put(t, &layout)
	return layout, nil
}

// SizeOf and AlignOf are convenience wrappers over LayoutOf for the common
// case where a caller already knows t is well-formed and just wants the
// two scalar numbers; an error collapses to the ZST layout rather than
// panicking, matching surge/internal/layout/layout.go's defensive-zero
// behaviour for its own Size/AlignOf helpers.
func (e *LayoutEngine) SizeOf(t tir.IrTyId) int {
	l, err := e.LayoutOf(t)
	if err != nil {
		return 0
	}
	return l.Size
}

func (e *LayoutEngine) AlignOf(t tir.IrTyId) int {
	l, err := e.LayoutOf(t)
	if err != nil {
		return 1
	}
	return l.Align
}

func (e *LayoutEngine) FieldOffset(structT tir.IrTyId, fieldIdx int) int {
	l, err := e.LayoutOf(structT)
	if err != nil || fieldIdx < 0 || fieldIdx >= len(l.FieldOffsets) {
		return 0
	}
	return l.FieldOffsets[fieldIdx]
}
