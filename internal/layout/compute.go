package layout

import (
	"fortio.org/safecast"

	"corec/internal/attrs"
	"corec/internal/cfg"
	"corec/internal/tir"
)

// computeLayout is surge/internal/layout/compute.go's computeLayout,
// generalised to walk cfg.IrTy instead of types.Interner's Kind-tagged
// Type. path records the chain of IrTyIds currently being resolved, so a
// struct/union/tuple that (directly, with no intervening Ref indirection)
// contains itself is reported as LayoutErrRecursiveUnsized rather than
// recursing forever — spec.md §4.7's "a value type must not recurse
// without a reference/pointer indirection" rule.
func (e *LayoutEngine) computeLayout(id tir.IrTyId, path []tir.IrTyId) (TypeLayout, error) {
	if !id.IsValid() {
		return TypeLayout{Size: 0, Align: 1}, nil
	}
	for _, seen := range path {
		if seen == id {
			cycle := append(append([]tir.IrTyId(nil), path...), id)
			return TypeLayout{}, &LayoutError{Kind: LayoutErrRecursiveUnsized, Type: id, Cycle: cycle}
		}
	}
	path = append(path, id)

	t := e.Store.Get(id)
	switch t.Kind {
	case cfg.IrTyUninhabited:
		return TypeLayout{Size: 0, Align: 1}, nil

	case cfg.IrTyNumeric:
		if t.Numeric.Bits == 1 {
			// Bool stand-in (spec.md §4.7: "Bool -> Scalar(0..=1)").
			return TypeLayout{Size: 1, Align: 1}, nil
		}
		return scalarLayoutBytes(int(t.Numeric.Bits) / 8), nil

	case cfg.IrTyChar:
		return TypeLayout{Size: 4, Align: 4}, nil // Unicode scalar value, UTF-32-sized

	case cfg.IrTyStr:
		return e.ptrLayout(), nil

	case cfg.IrTyFn, cfg.IrTyRef:
		return e.ptrLayout(), nil

	case cfg.IrTyArray:
		if !t.Array.HasLength {
			return e.ptrLayout(), nil // dynamically-sized array is a handle
		}
		return e.arrayFixedLayout(t.Array.Elem, t.Array.Length, path)

	case cfg.IrTyStruct:
		return e.structLayout(t.Fields, path)

	case cfg.IrTyTuple:
		return e.tupleLayout(t.Fields, path)

	case cfg.IrTyUnion:
		return e.tagUnionLayout(t, path)

	default:
		return TypeLayout{Size: 0, Align: 1}, nil
	}
}

func (e *LayoutEngine) ptrLayout() TypeLayout {
	ptrSize := e.Target.PtrSize
	ptrAlign := e.Target.PtrAlign
	if ptrSize <= 0 {
		ptrSize = 8
	}
	if ptrAlign <= 0 {
		ptrAlign = ptrSize
	}
	return TypeLayout{Size: ptrSize, Align: ptrAlign}
}

func scalarLayoutBytes(size int) TypeLayout {
	if size <= 0 {
		return TypeLayout{Size: 0, Align: 1}
	}
	return TypeLayout{Size: size, Align: size}
}

func roundUp(n, align int) int {
	if align <= 1 {
		return n
	}
	r := n % align
	if r == 0 {
		return n
	}
	return n + (align - r)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func (e *LayoutEngine) arrayFixedLayout(elem tir.IrTyId, length uint64, path []tir.IrTyId) (TypeLayout, error) {
	elemLayout, err := e.computeLayout(elem, path)
	if err != nil {
		return TypeLayout{}, err
	}
	elemAlign := elemLayout.Align
	if elemAlign <= 0 {
		elemAlign = 1
	}
	stride := roundUp(elemLayout.Size, elemAlign)
	n, err := safecast.Conv[int](length)
	if err != nil {
		return TypeLayout{}, &LayoutError{Kind: LayoutErrLengthConversion, Err: err}
	}
	if n < 0 {
		return TypeLayout{}, &LayoutError{Kind: LayoutErrNegativeLength, Value: int64(n)}
	}
	return TypeLayout{Size: stride * n, Align: elemAlign}, nil
}

// structLayout is surge/internal/layout/compute.go's structLayoutWithAttrs,
// minus its Packed/AlignOverride handling: this spec's attrs model
// (internal/attrs) has no struct-level packing/alignment attribute, only
// #[repr(...)] on enums (spec.md §6.2), so every struct lays its fields out
// sequentially at their natural alignment.
func (e *LayoutEngine) structLayout(fields []tir.IrTyId, path []tir.IrTyId) (TypeLayout, error) {
	if len(fields) == 0 {
		return TypeLayout{Size: 0, Align: 1}, nil
	}
	offsets := make([]int, len(fields))
	aligns := make([]int, len(fields))

	size := 0
	align := 1
	for i, f := range fields {
		fl, err := e.computeLayout(f, path)
		if err != nil {
			return TypeLayout{}, err
		}
		fAlign := fl.Align
		if fAlign <= 0 {
			fAlign = 1
		}
		size = roundUp(size, fAlign)
		offsets[i] = size
		aligns[i] = fAlign
		size += fl.Size
		align = maxInt(align, fAlign)
	}
	size = roundUp(size, align)
	return TypeLayout{Size: size, Align: align, FieldOffsets: offsets, FieldAligns: aligns}, nil
}

func (e *LayoutEngine) tupleLayout(elems []tir.IrTyId, path []tir.IrTyId) (TypeLayout, error) {
	return e.structLayout(elems, path)
}

// reprTagWidth returns the byte width a #[repr(...)] attribute on def's
// originating declaration requests for a union's tag, or 0 if def carries
// no such attribute (or no attrs.Store was supplied).
func (e *LayoutEngine) reprTagWidth(def tir.DataDefId) int {
	if e.Attrs == nil || e.Env == nil || !def.IsValid() {
		return 0
	}
	origin := e.Env.DataDefs.Get(def).Origin
	if origin.Kind == tir.OriginGenerated {
		return 0
	}
	set, ok := e.Attrs.Get(origin.AstRef)
	if !ok {
		return 0
	}
	attr, ok := set.Has(attrs.KindRepr)
	if !ok {
		return 0
	}
	switch attr.Repr {
	case attrs.ReprU8:
		return 1
	case attrs.ReprU16:
		return 2
	case attrs.ReprU32:
		return 4
	case attrs.ReprU64:
		return 8
	case attrs.ReprU128:
		return 16
	default:
		return 0
	}
}

// tagUnionLayout is surge/internal/layout/compute.go's tagUnionLayout,
// generalised from types.UnionInfo's Nothing/Type/Tag member shapes to
// cfg.IrTyVariant's already-flattened per-variant field list, and from a
// fixed 4-byte tag to one sized by #[repr(...)] when present (spec.md
// §4.7/§6.2).
func (e *LayoutEngine) tagUnionLayout(t cfg.IrTy, path []tir.IrTyId) (TypeLayout, error) {
	if len(t.Variants) == 0 {
		return TypeLayout{Size: 0, Align: 1}, nil
	}

	maxPayloadSize := 0
	payloadAlign := 1
	for _, variant := range t.Variants {
		vl, err := e.structLayout(variant.Fields, path)
		if err != nil {
			return TypeLayout{}, err
		}
		maxPayloadSize = maxInt(maxPayloadSize, vl.Size)
		payloadAlign = maxInt(payloadAlign, maxInt(1, vl.Align))
	}

	tagSize := e.reprTagWidth(t.DataDef)
	if tagSize <= 0 {
		tagSize = 4 // default: uint32 discriminant
	}
	tagAlign := tagSize

	payloadOffset := roundUp(tagSize, payloadAlign)
	overallAlign := maxInt(tagAlign, payloadAlign)
	size := roundUp(payloadOffset+maxPayloadSize, overallAlign)
	return TypeLayout{
		Size:          size,
		Align:         overallAlign,
		TagSize:       tagSize,
		TagAlign:      tagAlign,
		PayloadOffset: payloadOffset,
	}, nil
}
