package cfg

import "corec/internal/tir"

// cmpIntrinsics lazily creates the comparison/boolean-combinator FnDefs
// used only to compile range patterns (spec.md §4.6.5's double-comparison
// range test): these never appear in surface syntax, so they are
// synthesised here rather than reused from internal/lower's per-operator
// memo table (internal/lower/expr.go's intrinsicFn), which is private to
// that package's own Lowerer instance. The idiom — a private, name-keyed
// FnDef cache standing in for a primitive operator — is the same one
// internal/lower itself uses for "__add"/"__eq"/etc.
type cmpIntrinsics struct {
	env  *tir.Env
	byOp map[string]tir.FnDefId
}

func newCmpIntrinsics(env *tir.Env) *cmpIntrinsics {
	return &cmpIntrinsics{env: env, byOp: make(map[string]tir.FnDefId)}
}

func (c *cmpIntrinsics) get(op string) tir.FnDefId {
	if id, ok := c.byOp[op]; ok {
		return id
	}
	hole := c.env.Symbols.Fresh(tir.Generated())
	holeTy := c.env.Tys.Create(tir.Ty{Kind: tir.TyHole, Hole: hole}, tir.Generated())
	name := c.env.Symbols.FromName(c.env.Idents.InternIdent("__cfg_"+op), tir.Generated())
	params := c.env.Params.CreateFromIter([]tir.Param{{Ty: holeTy}, {Ty: holeTy}})
	fn := c.env.FnDefs.Create(tir.FnDef{
		Name:     name,
		Ty:       tir.FnTy{Params: params, Return: holeTy, Pure: true},
		BodyKind: tir.FnBodyIntrinsic,
	}, tir.Generated())
	c.byOp[op] = fn
	return fn
}
