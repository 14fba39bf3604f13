// Package attrs implements the Expansion stage (spec.md §4.4.1): it walks
// the AST, registers attribute macro invocations in an attribute store, and
// validates each attribute's well-formedness and target kind. It does not
// rewrite the AST.
package attrs

import (
	"strings"

	"corec/internal/ast"
	"corec/internal/diag"
	"corec/internal/source"
)

// Kind enumerates the well-known attributes of spec.md §6.2. An attribute
// name outside this set is not rejected outright: expansion reports it as
// an unknown-attribute warning and skips it, so it is never recorded.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindRepr
	KindForeign
	KindCold
	KindNoMangle
	KindDumpIR
	KindDumpAST
	KindLayoutOf
)

func (k Kind) String() string {
	switch k {
	case KindRepr:
		return "repr"
	case KindForeign:
		return "foreign"
	case KindCold:
		return "cold"
	case KindNoMangle:
		return "no_mangle"
	case KindDumpIR:
		return "dump_ir"
	case KindDumpAST:
		return "dump_ast"
	case KindLayoutOf:
		return "layout_of"
	default:
		return "unknown"
	}
}

func kindOf(name string) Kind {
	switch strings.ToLower(name) {
	case "repr":
		return KindRepr
	case "foreign":
		return KindForeign
	case "cold":
		return KindCold
	case "no_mangle":
		return KindNoMangle
	case "dump_ir":
		return KindDumpIR
	case "dump_ast":
		return KindDumpAST
	case "layout_of":
		return KindLayoutOf
	default:
		return KindUnknown
	}
}

// ReprKind is the argument of a well-formed #[repr(...)] attribute (grounded
// on original_source/compiler/hash-attrs/src/attr.rs's ReprAttr).
type ReprKind uint8

const (
	ReprNone ReprKind = iota
	ReprC
	ReprU8
	ReprU16
	ReprU32
	ReprU64
	ReprU128
)

func (r ReprKind) String() string {
	switch r {
	case ReprC:
		return "c"
	case ReprU8:
		return "u8"
	case ReprU16:
		return "u16"
	case ReprU32:
		return "u32"
	case ReprU64:
		return "u64"
	case ReprU128:
		return "u128"
	default:
		return "none"
	}
}

func reprKindOf(arg string) (ReprKind, bool) {
	switch strings.ToLower(arg) {
	case "c":
		return ReprC, true
	case "u8":
		return ReprU8, true
	case "u16":
		return ReprU16, true
	case "u32":
		return ReprU32, true
	case "u64":
		return ReprU64, true
	case "u128":
		return ReprU128, true
	default:
		return ReprNone, false
	}
}

// Attr is one validated attribute invocation recorded against an AST node.
type Attr struct {
	Kind Kind
	Name string
	Span source.Span
	// Repr is populated only when Kind == KindRepr and the argument parsed
	// successfully.
	Repr ReprKind
}

// Attrs is the set of attributes recorded on a single AST node.
type Attrs []Attr

// Has reports whether the set carries an attribute of the given kind, and
// returns its first occurrence.
func (a Attrs) Has(kind Kind) (Attr, bool) {
	for _, attr := range a {
		if attr.Kind == kind {
			return attr, true
		}
	}
	return Attr{}, false
}
