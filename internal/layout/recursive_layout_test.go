package layout_test

import (
	"errors"
	"testing"

	"corec/internal/cfg"
	"corec/internal/layout"
	"corec/internal/tir"
)

// numericTy interns a fresh primitive numeric DataDef/TyData pair of the
// given bit width, mirroring the shape internal/lower's own numeric
// primitive registration produces (internal/lower/types.go).
func numericTy(env *tir.Env, bits uint8) tir.TyId {
	def := env.DataDefs.Create(tir.DataDef{
		CtorsKind: tir.CtorsPrimitive,
		Primitive: tir.PrimCtorInfo{Kind: tir.PrimNumeric, Numeric: tir.NumericPrimInfo{Signed: true, Bits: bits}},
	}, tir.Generated())
	return env.Tys.Create(tir.Ty{Kind: tir.TyData, Data: tir.DataTy{Def: def}}, tir.Generated())
}

// declareStruct registers an empty single-ctor struct DataDef so a field
// type can reference it before its own fields are known (needed to build a
// direct self-reference for the recursive-layout test below).
func declareStruct(env *tir.Env) tir.DataDefId {
	return env.DataDefs.Create(tir.DataDef{CtorsKind: tir.CtorsDefined}, tir.Generated())
}

func finishStruct(env *tir.Env, def tir.DataDefId, fieldTys []tir.TyId) tir.TyId {
	params := make([]tir.Param, len(fieldTys))
	for i, ty := range fieldTys {
		params[i] = tir.Param{Ty: ty}
	}
	paramsID := env.Params.CreateFromIter(params)
	ctor := env.CtorDefs.Create(tir.CtorDef{DataDef: def, Params: paramsID}, tir.Generated())
	ctors := env.CtorDefsSeq.CreateFromIter([]tir.CtorDefId{ctor})
	env.DataDefs.Modify(def, func(d *tir.DataDef) { d.Ctors = ctors })
	return env.Tys.Create(tir.Ty{Kind: tir.TyData, Data: tir.DataTy{Def: def}}, tir.Generated())
}

func newEngine(env *tir.Env, store *cfg.IrTyStore) *layout.LayoutEngine {
	return layout.New(layout.X86_64LinuxGNU(), store, env, nil)
}

// A struct directly containing itself (no Ref indirection) has no finite
// size: LayoutOf must report LayoutErrRecursiveUnsized rather than
// recursing forever (spec.md §4.7).
func TestLayoutEngine_RecursiveStructReportsError(t *testing.T) {
	env := tir.NewEnv()
	def := declareStruct(env)
	// The field's own TyId is the struct's own TyData — built directly
	// rather than through a name-resolution pass, since this package only
	// needs the self-referential *shape*, not surface syntax for it.
	nodeTy := env.Tys.Create(tir.Ty{Kind: tir.TyData, Data: tir.DataTy{Def: def}}, tir.Generated())
	params := env.Params.CreateFromIter([]tir.Param{{Ty: nodeTy}})
	ctor := env.CtorDefs.Create(tir.CtorDef{DataDef: def, Params: params}, tir.Generated())
	ctors := env.CtorDefsSeq.CreateFromIter([]tir.CtorDefId{ctor})
	env.DataDefs.Modify(def, func(d *tir.DataDef) { d.Ctors = ctors })

	store := cfg.NewIrTyStore()
	resolver := cfg.NewTyResolver(env, store)
	irTy := resolver.Resolve(nodeTy)

	eng := newEngine(env, store)
	_, err := eng.LayoutOf(irTy)
	if err == nil {
		t.Fatal("expected recursive layout error, got nil")
	}
	var lerr *layout.LayoutError
	if !errors.As(err, &lerr) {
		t.Fatalf("expected *layout.LayoutError, got %T (%v)", err, err)
	}
	if lerr.Kind != layout.LayoutErrRecursiveUnsized {
		t.Fatalf("expected LayoutErrRecursiveUnsized, got kind=%d (%v)", lerr.Kind, lerr)
	}
	if len(lerr.Cycle) == 0 {
		t.Fatalf("expected non-empty cycle path, got %+v", lerr)
	}
}

// The same self-reference behind a Ref indirection is sized: the field is
// just a pointer, so LayoutOf must succeed with a pointer-sized field.
func TestLayoutEngine_RecursiveReferenceStructIsSized(t *testing.T) {
	env := tir.NewEnv()
	def := declareStruct(env)
	nodeTy := env.Tys.Create(tir.Ty{Kind: tir.TyData, Data: tir.DataTy{Def: def}}, tir.Generated())
	refTy := env.Tys.Create(tir.Ty{Kind: tir.TyRef, Ref: tir.RefTy{Kind: tir.RefSmart, Inner: nodeTy}}, tir.Generated())
	params := env.Params.CreateFromIter([]tir.Param{{Ty: refTy}})
	ctor := env.CtorDefs.Create(tir.CtorDef{DataDef: def, Params: params}, tir.Generated())
	ctors := env.CtorDefsSeq.CreateFromIter([]tir.CtorDefId{ctor})
	env.DataDefs.Modify(def, func(d *tir.DataDef) { d.Ctors = ctors })

	store := cfg.NewIrTyStore()
	resolver := cfg.NewTyResolver(env, store)
	irTy := resolver.Resolve(nodeTy)

	eng := newEngine(env, store)
	l, err := eng.LayoutOf(irTy)
	if err != nil {
		t.Fatalf("unexpected layout error: %v", err)
	}
	if l.Size != 8 || l.Align != 8 {
		t.Fatalf("expected Node layout size=8 align=8, got size=%d align=%d", l.Size, l.Align)
	}
}

// A plain two-field struct of int64/int8 lays out sequentially with no
// surprises — the baseline non-recursive case.
func TestLayoutEngine_PlainStructFieldOffsets(t *testing.T) {
	env := tir.NewEnv()
	i64 := numericTy(env, 64)
	i8 := numericTy(env, 8)
	def := declareStruct(env)
	structTy := finishStruct(env, def, []tir.TyId{i8, i64})

	store := cfg.NewIrTyStore()
	resolver := cfg.NewTyResolver(env, store)
	irTy := resolver.Resolve(structTy)

	eng := newEngine(env, store)
	l, err := eng.LayoutOf(irTy)
	if err != nil {
		t.Fatalf("unexpected layout error: %v", err)
	}
	// i8 at offset 0, i64 at offset 8 (rounded up to its own alignment),
	// total size rounded up to the max field alignment (8).
	if len(l.FieldOffsets) != 2 || l.FieldOffsets[0] != 0 || l.FieldOffsets[1] != 8 {
		t.Fatalf("expected field offsets [0 8], got %v", l.FieldOffsets)
	}
	if l.Size != 16 || l.Align != 8 {
		t.Fatalf("expected size=16 align=8, got size=%d align=%d", l.Size, l.Align)
	}
}
