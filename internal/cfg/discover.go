package cfg

import "corec/internal/tir"

// Discoverer finds every function body CFG lowering must build (spec.md
// §4.6.1): a worklist walk over every ModSource module's Fn members, plus
// any FnDef hoisted into a nested Stack as a StackMemberFn, grounded on
// original_source/compiler/hash-lower/src/discover.rs's FnDiscoverer
// (queue_fn_and_body/discover_fns/add_all_child_fns).
type Discoverer struct {
	env     *tir.Env
	foreign func(tir.FnDefId) bool

	fns  []tir.FnDefId
	seen map[tir.FnDefId]bool
}

// NewDiscoverer builds a Discoverer. isForeign reports whether a FnDef
// carries #[foreign] (internal/attrs.Store.IsForeign, keyed by the FnDef's
// origin AST node) — kept as an injected predicate rather than an
// internal/attrs import, so internal/cfg's only compile-time dependency
// stays internal/tir.
func NewDiscoverer(env *tir.Env, isForeign func(tir.FnDefId) bool) *Discoverer {
	return &Discoverer{env: env, foreign: isForeign, seen: make(map[tir.FnDefId]bool)}
}

// Fns returns the discovered worklist in discovery order once Run has
// completed: every FnDef that CFG lowering must produce a Body for.
func (d *Discoverer) Fns() []tir.FnDefId { return d.fns }

// Run walks every ModSource module currently registered in the environment
// (spec.md §4.6.1's "discover_fns"). It may be called once after lowering
// has finished registering all of a compilation's modules.
func (d *Discoverer) Run() {
	n := d.env.ModDefs.Len()
	for i := 1; i <= n; i++ {
		id := tir.ModDefId(i)
		mod := d.env.ModDefs.Get(id).Data
		if mod.Kind != tir.ModSource {
			continue
		}
		d.discoverMod(mod)
	}
}

func (d *Discoverer) discoverMod(mod tir.ModDef) {
	members := d.env.ModMembers.All(mod.Members)
	for _, m := range members {
		if m.Kind != tir.ModMemberFn {
			continue
		}
		d.queueFnAndBody(m.Fn)
	}
}

// queueFnAndBody is queue_fn_and_body: only a fn with a real
// (non-intrinsic, non-axiom, non-foreign) Defined body is added to the
// worklist, and then any FnDefs nested within that body are recursively
// discovered; any other fn is not queued at all. Pure and implicit
// functions are skipped entirely: spec.md §4.6.1 excludes them from CFG
// lowering (a pure function is reasoned about by the type/effect system,
// never executed as a Body; an implicit function is only ever inlined at
// its call sites during checking).
func (d *Discoverer) queueFnAndBody(id tir.FnDefId) {
	if d.seen[id] {
		return
	}
	fn := d.env.FnDefs.Get(id).Data
	if fn.Ty.Pure || fn.Ty.Implicit {
		return
	}
	if fn.BodyKind != tir.FnBodyDefined {
		return
	}
	if d.foreign != nil && d.foreign(id) {
		return
	}
	d.seen[id] = true
	d.fns = append(d.fns, id)
	d.addAllChildFns(fn.Body)
}

// addAllChildFns walks term, queuing every FnDef hoisted into a
// StackMemberFn entry of a BlockTerm's Stack (a nested `fn` declared inside
// a function body), recursing into each newly-discovered fn's own body in
// turn.
func (d *Discoverer) addAllChildFns(term tir.TermId) {
	if !term.IsValid() {
		return
	}
	t := d.env.Terms.Get(term).Data
	switch t.Kind {
	case tir.TermTuple:
		d.walkArgs(t.Tuple.Args)
	case tir.TermCtor:
		d.walkArgs(t.Ctor.Args)
	case tir.TermFnCall:
		d.addAllChildFns(t.FnCall.Subject)
		d.walkArgs(t.FnCall.Args)
	case tir.TermBlock:
		d.walkStack(t.Block.Stack)
		for _, s := range t.Block.Statements {
			d.addAllChildFns(s)
		}
		d.addAllChildFns(t.Block.Result)
	case tir.TermLoop:
		d.addAllChildFns(t.Loop.Body)
	case tir.TermMatch:
		d.addAllChildFns(t.Match.Subject)
		for _, c := range t.Match.Cases {
			d.walkPat(c.Pat)
			d.addAllChildFns(c.Body)
		}
	case tir.TermReturn:
		d.addAllChildFns(t.Return.Value)
	case tir.TermAssign:
		d.addAllChildFns(t.Assign.Place)
		d.addAllChildFns(t.Assign.Value)
	case tir.TermDeref:
		d.addAllChildFns(t.Deref.Inner)
	case tir.TermRef:
		d.addAllChildFns(t.Ref.Inner)
	case tir.TermCast:
		d.addAllChildFns(t.Cast.Value)
	case tir.TermTypeOf:
		d.addAllChildFns(t.TypeOf.Of)
	case tir.TermVar, tir.TermLit, tir.TermFnRef, tir.TermLoopControl, tir.TermTy, tir.TermHole:
		// no subterms
	}
}

func (d *Discoverer) walkArgs(id tir.ArgsId) {
	for _, a := range d.env.Args.All(id) {
		d.addAllChildFns(a.Value)
	}
}

// walkPat descends into a pattern's guard term (spec.md §4.6.5's PatIf):
// the only place a Pat carries a Term that could itself declare a nested
// fn.
func (d *Discoverer) walkPat(id tir.PatId) {
	if !id.IsValid() {
		return
	}
	p := d.env.Pats.Get(id).Data
	switch p.Kind {
	case tir.PatIf:
		d.walkPat(p.If.Inner)
		d.addAllChildFns(p.If.Guard)
	case tir.PatOr:
		for _, sub := range p.Or {
			d.walkPat(sub)
		}
	}
}

// walkStack queues every StackMemberFn entry of stack and discovers its
// body, matching discover.rs's add_all_child_fns traversal of a scope's
// hoisted definitions.
func (d *Discoverer) walkStack(id tir.StackId) {
	if !id.IsValid() {
		return
	}
	stack := d.env.Stacks.Get(id).Data
	for _, m := range stack.Members {
		if m.Kind == tir.StackMemberFn {
			d.queueFnAndBody(m.Fn)
		}
	}
}
