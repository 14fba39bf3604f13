// Package lower implements AST → TIR lowering (spec.md §4.5): expressions
// become Terms, type expressions become Tys, patterns become Pats, and
// top-level declarations become members of a ModDef. Grounded on the shape
// of surge/internal/hir/lower.go's Lowerer (a builder type walking the
// parser's tree once, populating a shared owning store) and on
// original_source/compiler/hash-lower/src/build/*.rs's expression-to-term
// translation, adapted to this AST's split statement/expression trees (see
// internal/semcheck's grounding note on the same point) and to TIR's
// content-addressed Store/SequenceStore arenas (internal/tir) rather than
// the teacher's single mutable HIR tree.
package lower

import (
	"corec/internal/ast"
	"corec/internal/attrs"
	"corec/internal/diag"
	"corec/internal/ident"
	"corec/internal/source"
	"corec/internal/tir"
)

// Lowerer turns one parsed, expanded source file into TIR definitions. It is
// not safe for concurrent use — one Lowerer lowers one file at a time,
// following the per-worker-goroutine ownership internal/semcheck.Checker
// also uses — but many Lowerers may share the same *tir.Env concurrently,
// since every Env store is its own mutex-guarded arena.
type Lowerer struct {
	Env     *tir.Env
	Builder *ast.Builder
	Attrs   *attrs.Store
	Bag     *diag.Bag

	file   ast.FileID
	scopes []map[source.StringID]tir.SymbolId

	fnSymbols   map[tir.SymbolId]tir.FnDefId
	dataSymbols map[tir.SymbolId]tir.DataDefId
	ctorSymbols map[tir.SymbolId]tir.CtorDefId

	primitives      map[string]tir.DataDefId
	arrays          map[arrayKey]tir.DataDefId
	intrinsics      map[ast.ExprBinaryOp]tir.FnDefId
	fieldAccessors  map[string]tir.FnDefId
	namedIntrinsics map[string]tir.FnDefId

	option *optionCtors
	result *resultCtors
	rangeT *rangeCtor
}

// arrayKey identifies a memoised array/slice primitive DataDef by element
// type and (for sized arrays) length.
type arrayKey struct {
	Elem      tir.TyId
	HasLength bool
	Length    uint64
}

// New creates a Lowerer sharing env across however many files are lowered
// into it (spec.md §4.5: declarations lower into the shared TIR store, not
// a per-file one).
func New(env *tir.Env, builder *ast.Builder, attrStore *attrs.Store, bag *diag.Bag) *Lowerer {
	return &Lowerer{
		Env:         env,
		Builder:     builder,
		Attrs:       attrStore,
		Bag:         bag,
		fnSymbols:   make(map[tir.SymbolId]tir.FnDefId),
		dataSymbols: make(map[tir.SymbolId]tir.DataDefId),
		ctorSymbols: make(map[tir.SymbolId]tir.CtorDefId),
		primitives:     make(map[string]tir.DataDefId),
		arrays:         make(map[arrayKey]tir.DataDefId),
		intrinsics:     make(map[ast.ExprBinaryOp]tir.FnDefId),
		fieldAccessors: make(map[string]tir.FnDefId),
	}
}

func (l *Lowerer) pushScope() { l.scopes = append(l.scopes, make(map[source.StringID]tir.SymbolId)) }
func (l *Lowerer) popScope()  { l.scopes = l.scopes[:len(l.scopes)-1] }

func (l *Lowerer) bind(name source.StringID, sym tir.SymbolId) {
	if len(l.scopes) == 0 || !name.IsValid() {
		return
	}
	l.scopes[len(l.scopes)-1][name] = sym
}

func (l *Lowerer) resolve(name source.StringID) (tir.SymbolId, bool) {
	for i := len(l.scopes) - 1; i >= 0; i-- {
		if sym, ok := l.scopes[i][name]; ok {
			return sym, true
		}
	}
	return tir.NoSymbolId, false
}

// internIdent re-interns a surface name from the AST's string interner into
// the TIR environment's own identifier pool (spec.md §3.1): tir.Env and
// ast.Builder intentionally own distinct interners (internal/tir's env.go
// doc comment), so every name crossing the AST→TIR boundary is re-interned
// exactly once, here.
func (l *Lowerer) internIdent(name source.StringID) ident.Identifier {
	if !name.IsValid() {
		return ident.NoIdentifier
	}
	text, ok := l.Builder.StringsInterner.Lookup(name)
	if !ok {
		return ident.NoIdentifier
	}
	return l.Env.Idents.InternIdent(text)
}

func (l *Lowerer) newSymbol(name source.StringID, origin tir.NodeOrigin) tir.SymbolId {
	return l.Env.Symbols.FromName(l.internIdent(name), origin)
}

func (l *Lowerer) nodeOf(kind ast.NodeKind, index uint32) ast.NodeId {
	return ast.NodeId{File: l.file, Kind: kind, Index: index}
}

func (l *Lowerer) report(sev diag.Severity, code diag.Code, span source.Span, msg string) {
	if l.Bag == nil {
		return
	}
	d := diag.New(sev, code, span, msg)
	l.Bag.Add(&d)
}

type pendingMember struct {
	item ast.ItemID
	kind tir.ModMemberKind
	fn   tir.FnDefId
	data tir.DataDefId
}

// LowerFile lowers every item of file into a fresh ModDef (spec.md §4.5:
// "declarations become members of the enclosing mod... scope"), returning
// its id. Item registration runs in two passes so that forward references
// (a function calling one declared later in the same file, a struct
// embedding a type declared later) resolve regardless of source order: pass
// one allocates a SymbolId and an empty FnDef/DataDef stub per item and
// binds its name; pass two fills in each stub's real body now every name in
// the file is in scope.
func (l *Lowerer) LowerFile(file ast.FileID) tir.ModDefId {
	l.file = file
	f := l.Builder.Files.Get(file)
	if f == nil {
		return tir.NoModDefId
	}

	l.pushScope()
	defer l.popScope()

	l.bindBuiltinCtors()

	modSym := l.Env.Symbols.Fresh(tir.Generated())

	var members []pendingMember
	for _, item := range f.Items {
		it := l.Builder.Items.Get(item)
		if it == nil {
			continue
		}
		origin := tir.Given(l.nodeOf(ast.NodeKindItem, uint32(item)))

		switch it.Kind {
		case ast.ItemFn:
			fn, ok := l.Builder.Items.Fn(item)
			if !ok {
				continue
			}
			sym := l.newSymbol(fn.Name, origin)
			l.bind(fn.Name, sym)
			fnDef := l.Env.FnDefs.Create(tir.FnDef{Name: sym}, origin)
			l.fnSymbols[sym] = fnDef
			l.Env.AstInfo.RecordFnDef(l.nodeOf(ast.NodeKindItem, uint32(item)), fnDef)
			members = append(members, pendingMember{item: item, kind: tir.ModMemberFn, fn: fnDef})

		case ast.ItemType:
			ti, ok := l.Builder.Items.Type(item)
			if !ok {
				continue
			}
			sym := l.newSymbol(ti.Name, origin)
			l.bind(ti.Name, sym)
			dataDef := l.Env.DataDefs.Create(tir.DataDef{Name: sym}, origin)
			l.dataSymbols[sym] = dataDef
			members = append(members, pendingMember{item: item, kind: tir.ModMemberData, data: dataDef})

		case ast.ItemConst:
			c, ok := l.Builder.Items.Const(item)
			if !ok {
				continue
			}
			sym := l.newSymbol(c.Name, origin)
			l.bind(c.Name, sym)
			// A module-level const has no dedicated TIR definition kind
			// (spec.md §3.4 names only DataDef/FnDef/ModDef); it is modelled
			// as a zero-parameter pure function yielding its value, the same
			// treatment original_source/compiler/hash-lower gives top-level
			// consts (a thunked FnDef evaluated once at first use).
			fnDef := l.Env.FnDefs.Create(tir.FnDef{Name: sym, Ty: tir.FnTy{Pure: true}}, origin)
			l.fnSymbols[sym] = fnDef
			members = append(members, pendingMember{item: item, kind: tir.ModMemberFn, fn: fnDef})

		default:
			// Imports, pragmas, macros, externs, tags and contracts have no
			// TIR representation in this spec's scope (spec.md §3.4 defines
			// no member kind for them); they affect name resolution/FFI/
			// attribute validation only, all handled upstream of lowering.
		}
	}

	for _, m := range members {
		switch m.kind {
		case tir.ModMemberFn:
			if it := l.Builder.Items.Get(m.item); it != nil && it.Kind == ast.ItemConst {
				l.lowerConstBody(m.item, m.fn)
			} else {
				l.lowerFnBody(m.item, m.fn)
			}
		case tir.ModMemberData:
			l.lowerDataBody(m.item, m.data)
		}
	}

	memberVals := make([]tir.ModMember, len(members))
	for i, m := range members {
		memberVals[i] = tir.ModMember{Kind: m.kind, Fn: m.fn, Data: m.data}
	}
	membersId := l.Env.ModMembers.CreateFromIter(memberVals)

	return l.Env.ModDefs.Create(tir.ModDef{
		Name:    modSym,
		Kind:    tir.ModSource,
		Members: membersId,
	}, tir.Given(l.nodeOf(ast.NodeKindItem, 0)))
}
