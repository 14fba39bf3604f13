package tir

// PatKind enumerates Pat variants (spec.md §3.3).
type PatKind uint8

const (
	PatBinding PatKind = iota
	PatLit
	PatRange
	PatTuple
	PatCtor
	PatList
	PatOr
	PatIf
	PatWildcard
)

// RangeEnd distinguishes inclusive from exclusive range-pattern upper
// bounds (spec.md §4.6.5).
type RangeEnd uint8

const (
	RangeIncluded RangeEnd = iota
	RangeExcluded
)

type BindingPat struct {
	Sym     SymbolId
	Mutable bool
}

// LitPat holds the literal matched by a PatLit pattern. Reuses Lit's shape
// rather than duplicating it, since the set of literal kinds a pattern can
// match is the same as a literal term's.
type LitPat struct{ Lit Lit }

type RangePat struct {
	Lo, Hi TermId
	End    RangeEnd
}

type TuplePat struct{ Args PatArgsId }

// Spread marks an optional "..rest" collector within a compound pattern;
// IsSet distinguishes "no spread" from "spread binding to SymbolId 0", since
// SymbolId 0 (NoSymbolId) already means "no symbol" — an unnamed spread
// (just `..`) is legal and distinct from "no spread at all".
type Spread struct {
	IsSet bool
	Sym   SymbolId // may be NoSymbolId for an unnamed `..`
}

type CtorPat struct {
	Ctor   CtorDefId
	Args   PatArgsId
	Spread Spread
}

type ListPat struct {
	Args   PatArgsId
	Spread Spread
}

type IfPat struct {
	Inner PatId
	Guard TermId
}

// Pat is a tagged union over spec.md §3.3's Pat variants.
type Pat struct {
	Kind PatKind

	Binding  BindingPat
	Lit      LitPat
	Range    RangePat
	Tuple    TuplePat
	Ctor     CtorPat
	List     ListPat
	Or       []PatId
	If       IfPat
}
