package ast

import (
	"slices"
	"strings"

	"corec/internal/source"
)

// AttrTargetMask describes a set of item kinds an attribute may be applied to.
type AttrTargetMask uint16

const (
	AttrTargetNone AttrTargetMask = 0
	AttrTargetFn   AttrTargetMask = 1 << iota // top-level or extern functions
	AttrTargetType                            // data definitions (struct/union/alias)
	AttrTargetField                           // struct fields
	AttrTargetParam                           // formal parameters
	AttrTargetLet                             // let and const declarations
)

// AttrFlag captures special handling rules beyond the basic applicability matrix.
type AttrFlag uint8

const (
	AttrFlagNone AttrFlag = 0

	// AttrFlagExternOnly marks attributes that are only valid within extern blocks; no attribute in attrRegistry carries it.
	AttrFlagExternOnly AttrFlag = 1 << iota

	// AttrFlagFnDeclOnly marks attributes that are only valid on function declarations without a body.
	AttrFlagFnDeclOnly
)

// AttrSpec describes a language attribute, its supported targets and special rules.
type AttrSpec struct {
	Name    string
	Targets AttrTargetMask
	Flags   AttrFlag
}

// Allows reports whether the attribute can be applied to the provided target bit.
func (spec AttrSpec) Allows(target AttrTargetMask) bool {
	return spec.Targets&target != 0
}

// HasFlag reports whether the spec contains the given flag.
func (spec AttrSpec) HasFlag(flag AttrFlag) bool {
	return spec.Flags&flag != 0
}

// attrRegistry holds the well-known attribute set (spec.md §6.2): repr on
// data definitions, foreign/cold/no_mangle/dump_ir/dump_ast on functions,
// layout_of on either. An attribute name absent from this map is not
// malformed by itself — internal/attrs reports it as an unknown-attribute
// warning rather than rejecting the program outright.
var attrRegistry = map[string]AttrSpec{
	"repr":      {Name: "repr", Targets: AttrTargetType},
	"foreign":   {Name: "foreign", Targets: AttrTargetFn, Flags: AttrFlagFnDeclOnly},
	"cold":      {Name: "cold", Targets: AttrTargetFn},
	"no_mangle": {Name: "no_mangle", Targets: AttrTargetFn},
	"dump_ir":   {Name: "dump_ir", Targets: AttrTargetFn},
	"dump_ast":  {Name: "dump_ast", Targets: AttrTargetFn},
	"layout_of": {Name: "layout_of", Targets: AttrTargetFn | AttrTargetType},
}

// LookupAttr returns metadata for the given attribute name (case-insensitive).
func LookupAttr(name string) (AttrSpec, bool) {
	if name == "" {
		return AttrSpec{}, false
	}
	spec, ok := attrRegistry[strings.ToLower(name)]
	return spec, ok
}

// LookupAttrID resolves attribute metadata by string ID using the provided interner.
func LookupAttrID(interner *source.Interner, id source.StringID) (AttrSpec, bool) {
	if interner == nil || id == source.NoStringID {
		return AttrSpec{}, false
	}
	name, ok := interner.Lookup(id)
	if !ok {
		return AttrSpec{}, false
	}
	return LookupAttr(name)
}

// AttrSpecs returns a stable slice of all registered attribute specifications sorted by name.
func AttrSpecs() []AttrSpec {
	names := make([]string, 0, len(attrRegistry))
	for name := range attrRegistry {
		names = append(names, name)
	}
	slices.Sort(names)
	result := make([]AttrSpec, 0, len(names))
	for _, name := range names {
		result = append(result, attrRegistry[name])
	}
	return result
}
