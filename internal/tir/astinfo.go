package tir

import "sync"

// astNodeRef is the (at most one of each) set of TIR ids a single AST node
// may have produced, per spec.md §4.1's AstInfo cross-reference table.
type astNodeRef struct {
	Term  TermId
	Ty    TyId
	Pat   PatId
	FnDef FnDefId
}

// AstInfo maps AstNodeId <-> the TIR node(s) it produced, in both
// directions (spec.md §4.1). The forward map is written by lowering; the
// reverse map lets diagnostics and dump tooling resolve a TIR id back to
// the span of the surface syntax that produced (or inferred) it.
type AstInfo struct {
	mu sync.RWMutex

	forward map[AstNodeId]astNodeRef
	// reverse maps are keyed per TIR id space since each is a distinct type.
	reverseTerm map[TermId]AstNodeId
	reverseTy   map[TyId]AstNodeId
	reversePat  map[PatId]AstNodeId
	reverseFn   map[FnDefId]AstNodeId
}

// NewAstInfo creates an empty cross-reference table.
func NewAstInfo() *AstInfo {
	return &AstInfo{
		forward:     make(map[AstNodeId]astNodeRef),
		reverseTerm: make(map[TermId]AstNodeId),
		reverseTy:   make(map[TyId]AstNodeId),
		reversePat:  make(map[PatId]AstNodeId),
		reverseFn:   make(map[FnDefId]AstNodeId),
	}
}

// RecordTerm registers that ast produced term. Safe to call more than once
// for the same ast node (e.g. normalisation re-deriving a node preserves
// origin via InferredFrom, per spec.md §4.1).
func (a *AstInfo) RecordTerm(ast AstNodeId, term TermId) {
	a.mu.Lock()
	defer a.mu.Unlock()
	ref := a.forward[ast]
	ref.Term = term
	a.forward[ast] = ref
	a.reverseTerm[term] = ast
}

func (a *AstInfo) RecordTy(ast AstNodeId, ty TyId) {
	a.mu.Lock()
	defer a.mu.Unlock()
	ref := a.forward[ast]
	ref.Ty = ty
	a.forward[ast] = ref
	a.reverseTy[ty] = ast
}

func (a *AstInfo) RecordPat(ast AstNodeId, pat PatId) {
	a.mu.Lock()
	defer a.mu.Unlock()
	ref := a.forward[ast]
	ref.Pat = pat
	a.forward[ast] = ref
	a.reversePat[pat] = ast
}

func (a *AstInfo) RecordFnDef(ast AstNodeId, fn FnDefId) {
	a.mu.Lock()
	defer a.mu.Unlock()
	ref := a.forward[ast]
	ref.FnDef = fn
	a.forward[ast] = ref
	a.reverseFn[fn] = ast
}

// TermOf returns the AST node that produced term, if any.
func (a *AstInfo) TermOf(term TermId) (AstNodeId, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	ast, ok := a.reverseTerm[term]
	return ast, ok
}

// TyOf returns the AST node that produced ty, if any.
func (a *AstInfo) TyOf(ty TyId) (AstNodeId, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	ast, ok := a.reverseTy[ty]
	return ast, ok
}

// PatOf returns the AST node that produced pat, if any.
func (a *AstInfo) PatOf(pat PatId) (AstNodeId, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	ast, ok := a.reversePat[pat]
	return ast, ok
}

// FnDefOf returns the AST node that produced fn, if any.
func (a *AstInfo) FnDefOf(fn FnDefId) (AstNodeId, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	ast, ok := a.reverseFn[fn]
	return ast, ok
}
