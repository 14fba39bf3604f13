// Package scope implements the typing context and scope stack described in
// spec.md §4.2: tracking bindings in scope during inference and lowering.
// Grounded on surge/internal/symbols/scope.go's Scope/ScopeKind arena,
// generalised from an AST-owner-keyed scope to a TIR-definition-keyed one.
package scope

import "corec/internal/tir"

// Kind enumerates the scope categories spec.md §4.2 names.
type Kind uint8

const (
	KindMod Kind = iota
	KindData
	KindCtor
	KindFn
	KindFnTy
	KindTupleTy
	KindStack
)

func (k Kind) String() string {
	switch k {
	case KindMod:
		return "mod"
	case KindData:
		return "data"
	case KindCtor:
		return "ctor"
	case KindFn:
		return "fn"
	case KindFnTy:
		return "fn_ty"
	case KindTupleTy:
		return "tuple_ty"
	case KindStack:
		return "stack"
	default:
		return "invalid"
	}
}

// ScopeKind is the full {Kind, owning id} pair pushed onto the Context's
// scope stack. Exactly one of the id fields is meaningful, selected by Kind.
type ScopeKind struct {
	Kind    Kind
	Mod     tir.ModDefId
	Data    tir.DataDefId
	Ctor    tir.CtorDefId
	Fn      tir.FnDefId
	FnTy    tir.FnTy
	TupleTy tir.TupleTy
	Stack   tir.StackId
}

func ModScope(id tir.ModDefId) ScopeKind     { return ScopeKind{Kind: KindMod, Mod: id} }
func DataScope(id tir.DataDefId) ScopeKind   { return ScopeKind{Kind: KindData, Data: id} }
func CtorScope(id tir.CtorDefId) ScopeKind   { return ScopeKind{Kind: KindCtor, Ctor: id} }
func FnScope(id tir.FnDefId) ScopeKind       { return ScopeKind{Kind: KindFn, Fn: id} }
func FnTyScope(ty tir.FnTy) ScopeKind        { return ScopeKind{Kind: KindFnTy, FnTy: ty} }
func TupleTyScope(ty tir.TupleTy) ScopeKind  { return ScopeKind{Kind: KindTupleTy, TupleTy: ty} }
func StackScope(id tir.StackId) ScopeKind    { return ScopeKind{Kind: KindStack, Stack: id} }

// BindingKind enumerates the kinds of things a name can be bound to within
// a scope (spec.md §4.2).
type BindingKind uint8

const (
	BindingModMember BindingKind = iota
	BindingStackMember
	BindingCtor
	BindingBoundVar
)

// Binding is one entry attached to the topmost scope.
type Binding struct {
	Name   tir.SymbolId
	Kind   BindingKind
	Origin tir.NodeOrigin
}

// frame is one entry of the Context's internal scope stack.
type frame struct {
	kind     ScopeKind
	level    int
	bindings []Binding
	// byName speeds up Get: the topmost-binding-wins semantics fall out of
	// always appending to bindings and having Get scan from the end.
	byName map[tir.SymbolId][]int
}

// Context is a stack of scopes (spec.md §4.2).
type Context struct {
	frames []frame
}

// NewContext creates an empty context with no scopes pushed.
func NewContext() *Context {
	return &Context{}
}

// Depth returns the number of scopes currently pushed.
func (c *Context) Depth() int { return len(c.frames) }

// push adds a new scope frame. No two scopes share a level: level is simply
// stack depth at push time, which is unique for the lifetime of that frame
// (spec.md §4.2 invariant).
func (c *Context) push(kind ScopeKind) {
	c.frames = append(c.frames, frame{
		kind:   kind,
		level:  len(c.frames),
		byName: make(map[tir.SymbolId][]int),
	})
}

// pop removes the topmost scope, discarding exactly the bindings added
// since its push (spec.md §4.2 invariant): it's a full frame, so there is
// nothing else to discard.
func (c *Context) pop() {
	c.frames = c.frames[:len(c.frames)-1]
}

// EnterScope runs f with kind pushed as a new scope, guaranteeing the scope
// is popped on every exit path — success, panic, or early return — via
// defer, following the teacher's defer-based cleanup idiom
// (surge/internal/sema uses the same pattern for its own scope stack).
func EnterScope[T any](c *Context, kind ScopeKind, f func() (T, error)) (T, error) {
	c.push(kind)
	defer c.pop()
	return f()
}

// CurrentKind returns the topmost scope's kind. Panics if the stack is
// empty, since every caller of AddBinding/Get is expected to run inside at
// least the Mod-level scope established once per source.
func (c *Context) CurrentKind() ScopeKind {
	if len(c.frames) == 0 {
		panic("scope: Context has no scope pushed")
	}
	return c.frames[len(c.frames)-1].kind
}

// AddBinding attaches b to the topmost scope. Binding insertion never
// reorders existing bindings (spec.md §4.2 invariant): it only appends.
func (c *Context) AddBinding(b Binding) {
	top := &c.frames[len(c.frames)-1]
	top.bindings = append(top.bindings, b)
	top.byName[b.Name] = append(top.byName[b.Name], len(top.bindings)-1)
}

// Get searches scopes from top to root and returns the closest binding for
// name, if any (spec.md §4.2).
func (c *Context) Get(name tir.SymbolId) (Binding, bool) {
	for i := len(c.frames) - 1; i >= 0; i-- {
		f := &c.frames[i]
		if idxs, ok := f.byName[name]; ok && len(idxs) > 0 {
			return f.bindings[idxs[len(idxs)-1]], true
		}
	}
	return Binding{}, false
}

// TryGetDecl is Get specialised to declaration-shaped bindings (ModMember,
// StackMember, Ctor) — i.e. anything with a statically-known declared
// shape, as opposed to a plain bound variable whose type must be inferred
// from its value (spec.md §4.3.2).
func (c *Context) TryGetDecl(name tir.SymbolId) (Binding, bool) {
	b, ok := c.Get(name)
	if !ok || b.Kind == BindingBoundVar {
		return Binding{}, false
	}
	return b, true
}

// TryGetDeclValue is Get specialised to bound-variable bindings, whose type
// is not declared but must be inferred from an associated value.
func (c *Context) TryGetDeclValue(name tir.SymbolId) (Binding, bool) {
	b, ok := c.Get(name)
	if !ok || b.Kind != BindingBoundVar {
		return Binding{}, false
	}
	return b, true
}
