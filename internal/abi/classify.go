package abi

import (
	"corec/internal/cfg"
	"corec/internal/layout"
	"corec/internal/tir"
)

// directThreshold is the largest size (in bytes) a scalar/aggregate value
// may occupy and still cross the call boundary directly rather than
// through a pointer. hash-abi/src/lib.rs leaves this choice to its
// callers' target-specific lowering; two registers' worth (16 bytes on a
// 64-bit target) is the System V x86-64 ABI's own eightbyte-classification
// cutoff, so it is the natural default here too.
const directThreshold = 16

// Classifier computes FnAbis from tir.FnTy values, resolving each
// parameter/return TyId to a concrete layout.TypeLayout through the same
// cfg.TyResolver and layout.LayoutEngine internal/cfg and internal/layout
// already build for a module (spec.md §4.8).
type Classifier struct {
	Env      *tir.Env
	Resolver *cfg.TyResolver
	Layout   *layout.LayoutEngine
}

// NewClassifier builds a Classifier over an already-populated resolver and
// layout engine (both keyed by the same cfg.IrTyStore, spec.md §4.6/§4.7).
func NewClassifier(env *tir.Env, resolver *cfg.TyResolver, eng *layout.LayoutEngine) *Classifier {
	return &Classifier{Env: env, Resolver: resolver, Layout: eng}
}

// ClassifyFn computes the FnAbi for a function's type signature (spec.md
// §4.8). cc selects the calling convention to request; pass ConventionC
// unless the function carries a #[cold] attribute, in which case
// ConventionCold.
func (c *Classifier) ClassifyFn(fn tir.FnTy, cc CallingConvention) FnAbi {
	params := c.Env.Params.All(fn.Params)
	args := make([]ArgAbi, len(params))
	for i, p := range params {
		args[i] = c.classifyArg(p.Ty)
	}
	return FnAbi{
		Args:              args,
		Ret:               c.classifyArg(fn.Return),
		CallingConvention: cc,
	}
}

// classifyArg resolves ty through the Classifier's TyResolver/LayoutEngine
// and derives its PassMode from the resulting layout.TypeLayout: an
// uninhabited or zero-sized type is Ignore (spec.md §4.7's ZST rule), a
// value no larger than directThreshold is Direct, and anything larger is
// Indirect (hash-abi/src/lib.rs's Ignore/Direct/Indirect trichotomy).
func (c *Classifier) classifyArg(ty tir.TyId) ArgAbi {
	irTy := c.Resolver.Resolve(ty)
	tl, err := c.Layout.LayoutOf(irTy)
	if err != nil {
		// A type that cannot be sized at all (e.g. an unindirected
		// recursive value type) cannot cross a call boundary either;
		// treat it as indirect so a backend still has a concrete
		// (pointer) representation to emit, rather than panicking here.
		return ArgAbi{Layout: tl, Mode: PassMode{Kind: PassIndirect}}
	}
	if tl.Size == 0 {
		return ArgAbi{Layout: tl, Mode: PassMode{Kind: PassIgnore}}
	}
	if tl.Size <= directThreshold {
		return ArgAbi{Layout: tl, Mode: PassMode{Kind: PassDirect, Direct: ArgAttributes{}}}
	}
	mode := PassMode{Kind: PassIndirect}
	mode.Indirect.Attributes = ArgAttributes{Flags: FlagNoAlias | FlagNoCapture}
	return ArgAbi{Layout: tl, Mode: mode}
}
