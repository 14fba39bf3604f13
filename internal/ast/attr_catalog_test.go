package ast

import (
	"testing"
)

func TestLookupAttr_Basic(t *testing.T) {
	spec, ok := LookupAttr("REPR")
	if !ok {
		t.Fatalf("expected to find @repr spec")
	}
	if !spec.Allows(AttrTargetType) {
		t.Fatalf("@repr should allow type targets")
	}
	if spec.Allows(AttrTargetFn) {
		t.Fatalf("@repr should not allow function targets")
	}
}

func TestLookupAttr_SpecialFlags(t *testing.T) {
	foreign, ok := LookupAttr("foreign")
	if !ok {
		t.Fatalf("expected foreign spec")
	}
	if !foreign.HasFlag(AttrFlagFnDeclOnly) {
		t.Fatalf("@foreign should require a function declaration without a body")
	}
}

func TestLookupAttr_LayoutOfAllowsBothTargets(t *testing.T) {
	spec, ok := LookupAttr("layout_of")
	if !ok {
		t.Fatalf("expected layout_of spec")
	}
	if !spec.Allows(AttrTargetFn) || !spec.Allows(AttrTargetType) {
		t.Fatalf("@layout_of should allow both function and type targets")
	}
}

func TestAttrSpecsSortedUnique(t *testing.T) {
	specs := AttrSpecs()
	if len(specs) != len(attrRegistry) {
		t.Fatalf("expected %d specs, got %d", len(attrRegistry), len(specs))
	}
	for idx := 1; idx < len(specs); idx++ {
		if specs[idx-1].Name >= specs[idx].Name {
			t.Fatalf("specs not sorted: %q >= %q", specs[idx-1].Name, specs[idx].Name)
		}
	}
}
