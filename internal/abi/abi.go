// Package abi implements spec.md §4.8: deciding how each argument and
// return value of a function crosses its call boundary — passed directly
// in registers, passed indirectly through a pointer, or ignored entirely
// (a ZST/uninhabited value). Grounded directly, line-for-line in spirit,
// on original_source/compiler/hash-abi/src/lib.rs, since the teacher's own
// LLVM backend performs ad-hoc textual codegen without an abstracted ABI
// layer of its own. Bit-flag style follows
// surge/internal/hir/func.go's FuncFlags/HasFlag idiom.
package abi

import "corec/internal/layout"

// CallingConvention is hash-abi/src/lib.rs's CallingConvention: the two
// calling conventions a FnAbi may request of a backend.
type CallingConvention uint8

const (
	// ConventionC is the platform C calling convention (LLVM's "ccc").
	ConventionC CallingConvention = iota
	// ConventionCold marks a function unlikely to be called, hinting a
	// backend to optimise its caller's hot path over the callee itself
	// (LLVM's "coldcc").
	ConventionCold
)

func (c CallingConvention) String() string {
	switch c {
	case ConventionCold:
		return "cold"
	default:
		return "c"
	}
}

// ArgAttributeFlags is hash-abi/src/lib.rs's ArgAttributeFlags bitset.
type ArgAttributeFlags uint16

const (
	FlagNoAlias ArgAttributeFlags = 1 << (iota + 1)
	FlagNoCapture
	FlagNoUndef
	FlagNonNull
	FlagReadOnly
	FlagInReg
)

// HasFlag returns true if the given flag is set.
func (f ArgAttributeFlags) HasFlag(flag ArgAttributeFlags) bool {
	return f&flag != 0
}

func (f ArgAttributeFlags) String() string {
	s := ""
	if f.HasFlag(FlagNoAlias) {
		s += "noalias "
	}
	if f.HasFlag(FlagNoCapture) {
		s += "nocapture "
	}
	if f.HasFlag(FlagNoUndef) {
		s += "noundef "
	}
	if f.HasFlag(FlagNonNull) {
		s += "nonnull "
	}
	if f.HasFlag(FlagReadOnly) {
		s += "readonly "
	}
	if f.HasFlag(FlagInReg) {
		s += "inreg "
	}
	return s
}

// ArgExtension is hash-abi/src/lib.rs's ArgExtension: whether a
// sub-register-width scalar argument must be sign/zero-extended to fill a
// full (or partial) register.
type ArgExtension uint8

const (
	NoExtend ArgExtension = iota
	ZeroExtend
	SignExtend
)

// ArgAttributes is hash-abi/src/lib.rs's ArgAttributes.
type ArgAttributes struct {
	Flags     ArgAttributeFlags
	Extension ArgExtension
}

// PassModeKind discriminates PassMode's three forms (hash-abi/src/lib.rs's
// PassMode enum, flattened to this codebase's Kind-plus-fields idiom —
// internal/tir's Term/Ty/Pat already established the same shape for this
// spec's tagged unions).
type PassModeKind uint8

const (
	// PassIgnore is used for uninhabited values and ZSTs: nothing crosses
	// the call boundary for this argument/return at all.
	PassIgnore PassModeKind = iota
	// PassDirect passes the value itself (in a register, or — for a small
	// aggregate the ABI allows coercing to an integer — as one).
	PassDirect
	// PassIndirect passes a pointer to the value; used for structs/arrays
	// too large to pass directly. ClassifyFn classifies a return value by
	// the same size rules, so a return that is too large to pass directly
	// is PassIndirect as well.
	PassIndirect
)

// PassMode is hash-abi/src/lib.rs's PassMode.
type PassMode struct {
	Kind PassModeKind

	// Direct is valid iff Kind == PassDirect.
	Direct ArgAttributes

	// Indirect is valid iff Kind == PassIndirect.
	Indirect struct {
		Attributes ArgAttributes
		OnStack    bool
	}
}

// IsIndirect reports whether mode passes its value via a pointer.
func (m PassMode) IsIndirect() bool { return m.Kind == PassIndirect }

// IsIgnored reports whether mode carries no value across the boundary.
func (m PassMode) IsIgnored() bool { return m.Kind == PassIgnore }

// ArgAbi is hash-abi/src/lib.rs's ArgAbi: one argument's (or the return
// value's) layout plus how it crosses the call boundary.
type ArgAbi struct {
	Layout layout.TypeLayout
	Mode   PassMode
}

// IsIndirect and IsIgnored mirror hash-abi/src/lib.rs's ArgAbi helper
// methods of the same name.
func (a ArgAbi) IsIndirect() bool { return a.Mode.IsIndirect() }
func (a ArgAbi) IsIgnored() bool  { return a.Mode.IsIgnored() }

// FnAbi is hash-abi/src/lib.rs's FnAbi: a function's full call-boundary
// contract.
type FnAbi struct {
	Args              []ArgAbi
	Ret               ArgAbi
	CallingConvention CallingConvention
}
