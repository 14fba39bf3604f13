// Package ident provides the interning primitives that every other TIR
// package builds on: interned strings, interned numeric literal values, and
// short name handles derived from them.
package ident

import "corec/internal/source"

// InternedStr is a handle into the global string pool. Equal handles imply
// equal values.
type InternedStr source.StringID

// NoInternedStr is the sentinel for "no string" (the empty string's own ID,
// reused since source.Interner reserves index 0 for "").
const NoInternedStr InternedStr = InternedStr(source.NoStringID)

// Identifier is a short name handle, always derived from an InternedStr.
// Distinguished from InternedStr at the type level so that call sites that
// want "a surface name" cannot accidentally be handed an arbitrary interned
// string (e.g. literal text).
type Identifier InternedStr

// NoIdentifier is the sentinel identifier.
const NoIdentifier Identifier = Identifier(NoInternedStr)

// IsValid reports whether id was produced by a real Intern call.
func (id InternedStr) IsValid() bool { return id != NoInternedStr }

// IsValid reports whether id was produced by a real Intern call.
func (id Identifier) IsValid() bool { return id != NoIdentifier }

// FloatBits selects the width of an interned float literal.
type FloatBits uint8

const (
	Float32Bits FloatBits = 32
	Float64Bits FloatBits = 64
)

// IntKey and FloatKey identify distinct literal representations: literals
// with equal numeric value but different declared width or signedness must
// not collide in the pool (spec.md §3.1).
type (
	IntKey struct {
		Bits   uint8
		Signed bool
		Value  uint64 // two's-complement bit pattern
	}
	FloatKey struct {
		Bits  FloatBits
		Value uint64 // IEEE-754 bit pattern (math.Float64bits / zero-extended Float32bits)
	}
)

// InternedInt is a handle into the integer literal pool.
type InternedInt uint32

// InternedFloat is a handle into the float literal pool.
type InternedFloat uint32

const (
	NoInternedInt   InternedInt   = 0
	NoInternedFloat InternedFloat = 0
)

func (id InternedInt) IsValid() bool   { return id != NoInternedInt }
func (id InternedFloat) IsValid() bool { return id != NoInternedFloat }
