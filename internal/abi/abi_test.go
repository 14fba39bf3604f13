package abi_test

import (
	"testing"

	"corec/internal/abi"
	"corec/internal/cfg"
	"corec/internal/layout"
	"corec/internal/tir"
)

func numericTy(env *tir.Env, bits uint8) tir.TyId {
	def := env.DataDefs.Create(tir.DataDef{
		CtorsKind: tir.CtorsPrimitive,
		Primitive: tir.PrimCtorInfo{Kind: tir.PrimNumeric, Numeric: tir.NumericPrimInfo{Signed: true, Bits: bits}},
	}, tir.Generated())
	return env.Tys.Create(tir.Ty{Kind: tir.TyData, Data: tir.DataTy{Def: def}}, tir.Generated())
}

func structTy(env *tir.Env, fieldTys []tir.TyId) tir.TyId {
	def := env.DataDefs.Create(tir.DataDef{CtorsKind: tir.CtorsDefined}, tir.Generated())
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

func newClassifier(env *tir.Env) *abi.Classifier {
	store := cfg.NewIrTyStore()
	resolver := cfg.NewTyResolver(env, store)
	eng := layout.New(layout.X86_64LinuxGNU(), store, env, nil)
	return abi.NewClassifier(env, resolver, eng)
}

// A fn(i64) -> i64 signature passes both the sole argument and the return
// value directly: an 8-byte scalar is well within directThreshold.
func TestClassifyFn_ScalarsPassDirect(t *testing.T) {
	env := tir.NewEnv()
	i64 := numericTy(env, 64)
	params := env.Params.CreateFromIter([]tir.Param{{Ty: i64}})

	c := newClassifier(env)
	fnAbi := c.ClassifyFn(tir.FnTy{Params: params, Return: i64}, abi.ConventionC)

	if len(fnAbi.Args) != 1 {
		t.Fatalf("expected 1 arg, got %d", len(fnAbi.Args))
	}
	if fnAbi.Args[0].IsIndirect() || fnAbi.Args[0].IsIgnored() {
		t.Fatalf("expected direct arg, got mode %+v", fnAbi.Args[0].Mode)
	}
	if fnAbi.Ret.IsIndirect() || fnAbi.Ret.IsIgnored() {
		t.Fatalf("expected direct return, got mode %+v", fnAbi.Ret.Mode)
	}
	if fnAbi.CallingConvention != abi.ConventionC {
		t.Fatalf("expected ConventionC, got %v", fnAbi.CallingConvention)
	}
}

// A large struct (three i64 fields, 24 bytes) exceeds directThreshold and
// must be passed indirectly.
func TestClassifyFn_LargeStructPassesIndirect(t *testing.T) {
	env := tir.NewEnv()
	i64 := numericTy(env, 64)
	big := structTy(env, []tir.TyId{i64, i64, i64})
	params := env.Params.CreateFromIter([]tir.Param{{Ty: big}})

	c := newClassifier(env)
	fnAbi := c.ClassifyFn(tir.FnTy{Params: params, Return: big}, abi.ConventionC)

	if !fnAbi.Args[0].IsIndirect() {
		t.Fatalf("expected indirect arg for a 24-byte struct, got mode %+v", fnAbi.Args[0].Mode)
	}
	if !fnAbi.Ret.IsIndirect() {
		t.Fatalf("expected indirect return for a 24-byte struct, got mode %+v", fnAbi.Ret.Mode)
	}
}

// An empty struct is a ZST: it must be Ignore'd rather than passed at all.
func TestClassifyFn_ZeroSizedIsIgnored(t *testing.T) {
	env := tir.NewEnv()
	unit := structTy(env, nil)
	params := env.Params.CreateFromIter([]tir.Param{{Ty: unit}})

	c := newClassifier(env)
	fnAbi := c.ClassifyFn(tir.FnTy{Params: params, Return: unit}, abi.ConventionC)

	if !fnAbi.Args[0].IsIgnored() {
		t.Fatalf("expected ignored arg for a ZST, got mode %+v", fnAbi.Args[0].Mode)
	}
	if !fnAbi.Ret.IsIgnored() {
		t.Fatalf("expected ignored return for a ZST, got mode %+v", fnAbi.Ret.Mode)
	}
}

func TestArgAttributeFlags_HasFlag(t *testing.T) {
	f := abi.FlagNoAlias | abi.FlagNoCapture
	if !f.HasFlag(abi.FlagNoAlias) {
		t.Fatal("expected FlagNoAlias set")
	}
	if f.HasFlag(abi.FlagInReg) {
		t.Fatal("did not expect FlagInReg set")
	}
}
