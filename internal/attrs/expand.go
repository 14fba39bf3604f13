package attrs

import (
	"fmt"
	"strings"

	"corec/internal/ast"
	"corec/internal/diag"
	"corec/internal/source"
)

// Expander runs the Expansion stage over a parsed file set (spec.md
// §4.4.1): it walks every top-level item, collects its attribute macro
// invocations, validates them, and records the well-formed ones into a
// Store. Expansion never rewrites the AST — a well-formed #[foreign]
// or #[repr(C)] attribute is consumed downstream (internal/lower,
// internal/layout) by querying the Store, not by mutating the tree.
//
// Grounded on surge/internal/sema's validateAttrs/collectAttrs/hasAttr
// family, generalised from that package's per-target-kind validator split
// (attr_validation_fields.go, attr_validation_funcs.go,
// attr_validation_types.go) into one pass since spec.md §6.2's attribute
// set only targets functions and data definitions.
type Expander struct {
	builder *ast.Builder
	store   *Store
	bag     *diag.Bag
}

// NewExpander creates an Expander over builder, recording diagnostics into
// bag and well-formed attributes into a fresh Store.
func NewExpander(builder *ast.Builder, bag *diag.Bag) *Expander {
	return &Expander{builder: builder, store: NewStore(), bag: bag}
}

// Store returns the attribute store Expand has been populating. Callers
// (internal/lower, internal/layout) should treat it as read-only once
// ExpandFile has been called for every file in the compilation.
func (e *Expander) Store() *Store { return e.store }

// ExpandFile walks every top-level item of file and expands its attributes.
func (e *Expander) ExpandFile(file ast.FileID) {
	f := e.builder.Files.Arena.Get(uint32(file))
	if f == nil {
		return
	}
	for _, item := range f.Items {
		e.expandItem(file, item)
	}
}

func (e *Expander) expandItem(file ast.FileID, item ast.ItemID) {
	it := e.builder.Items.Get(item)
	if it == nil {
		return
	}
	node := ast.ItemNodeId(file, item)
	switch it.Kind {
	case ast.ItemFn:
		fn, ok := e.builder.Items.Fn(item)
		if !ok {
			return
		}
		e.expand(node, fn.AttrStart, fn.AttrCount, ast.AttrTargetFn)
	case ast.ItemType:
		ty, ok := e.builder.Items.Type(item)
		if !ok {
			return
		}
		e.expand(node, ty.AttrStart, ty.AttrCount, ast.AttrTargetType)
	}
}

// expand validates and records the attributes in [start, start+count) for a
// node that may receive attributes of the given target kind.
func (e *Expander) expand(node ast.NodeId, start ast.AttrID, count uint32, target ast.AttrTargetMask) {
	if count == 0 || !start.IsValid() {
		return
	}
	raw := e.builder.Items.CollectAttrs(start, count)
	seen := make(map[Kind]bool, len(raw))
	found := make(Attrs, 0, len(raw))

	for _, attr := range raw {
		name, ok := e.builder.StringsInterner.Lookup(attr.Name)
		if !ok || name == "" {
			continue
		}
		spec, known := ast.LookupAttr(name)
		if !known {
			e.report(diag.SevWarning, diag.ExpAttrUnknown, attr.Span, "unknown attribute '@%s'", name)
			continue
		}
		if !spec.Allows(target) {
			e.report(diag.SevError, diag.ExpAttrWrongTarget, attr.Span, "attribute '@%s' is not allowed here", name)
			continue
		}

		kind := kindOf(name)
		parsed := Attr{Kind: kind, Name: name, Span: attr.Span}
		if kind == KindRepr {
			repr, ok := e.parseRepr(attr)
			if !ok {
				continue
			}
			parsed.Repr = repr
		}

		if seen[kind] {
			e.report(diag.SevWarning, diag.ExpAttrDuplicate, attr.Span, "duplicate attribute '@%s'", name)
			continue
		}
		seen[kind] = true
		found = append(found, parsed)
	}

	e.store.record(node, found)
}

// parseRepr validates #[repr(arg)]'s single argument against the known
// repr kinds (spec.md §6.2: c|u8|u16|u32|u64|u128), grounded on
// original_source/compiler/hash-attrs/src/attr.rs's ReprAttr::parse.
func (e *Expander) parseRepr(attr ast.Attr) (ReprKind, bool) {
	if len(attr.Args) != 1 {
		e.report(diag.SevError, diag.ExpAttrMissingArgument, attr.Span,
			"@repr requires exactly one argument: c, u8, u16, u32, u64, or u128")
		return ReprNone, false
	}
	name, ok := e.argName(attr.Args[0])
	if !ok {
		e.report(diag.SevError, diag.ExpAttrInvalidArgument, attr.Span, "@repr argument must be an identifier or string")
		return ReprNone, false
	}
	kind, ok := reprKindOf(name)
	if !ok {
		e.report(diag.SevError, diag.ExpAttrInvalidArgument, attr.Span,
			"unknown @repr argument '%s'; expected c, u8, u16, u32, u64, or u128", name)
		return ReprNone, false
	}
	return kind, true
}

// argName resolves an attribute argument expression to its textual form,
// accepting either a bare identifier (`c`, `u8`, ...) or a quoted string.
func (e *Expander) argName(id ast.ExprID) (string, bool) {
	if ident, ok := e.builder.Exprs.Ident(id); ok {
		name, ok := e.builder.StringsInterner.Lookup(ident.Name)
		return name, ok
	}
	if lit, ok := e.builder.Exprs.Literal(id); ok && lit.Kind == ast.ExprLitString {
		raw, ok := e.builder.StringsInterner.Lookup(lit.Value)
		if !ok {
			return "", false
		}
		return strings.Trim(raw, "\""), true
	}
	return "", false
}

func (e *Expander) report(sev diag.Severity, code diag.Code, span source.Span, format string, args ...any) {
	if e.bag == nil {
		return
	}
	d := diag.New(sev, code, span, fmt.Sprintf(format, args...))
	e.bag.Add(&d)
}
