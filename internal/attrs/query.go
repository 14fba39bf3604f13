package attrs

import "corec/internal/ast"

// IsForeign reports whether node carries #[foreign] (spec.md §6.2): the
// lowering stage must skip its body and treat it as externally supplied.
func (s *Store) IsForeign(node ast.NodeId) bool { return s.Has(node, KindForeign) }

// IsCold reports whether node carries #[cold], a calling-convention hint.
func (s *Store) IsCold(node ast.NodeId) bool { return s.Has(node, KindCold) }

// IsNoMangle reports whether node carries #[no_mangle].
func (s *Store) IsNoMangle(node ast.NodeId) bool { return s.Has(node, KindNoMangle) }

// WantsDumpIR reports whether node carries #[dump_ir].
func (s *Store) WantsDumpIR(node ast.NodeId) bool { return s.Has(node, KindDumpIR) }

// WantsDumpAST reports whether node carries #[dump_ast].
func (s *Store) WantsDumpAST(node ast.NodeId) bool { return s.Has(node, KindDumpAST) }

// WantsLayoutOf reports whether node carries #[layout_of].
func (s *Store) WantsLayoutOf(node ast.NodeId) bool { return s.Has(node, KindLayoutOf) }

// Repr returns the parsed #[repr(...)] kind recorded for node, if any.
func (s *Store) Repr(node ast.NodeId) (ReprKind, bool) {
	a, ok := s.Get(node)
	if !ok {
		return ReprNone, false
	}
	attr, ok := a.Has(KindRepr)
	if !ok {
		return ReprNone, false
	}
	return attr.Repr, true
}
