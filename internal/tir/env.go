package tir

import "corec/internal/ident"

// Env is the process-wide TIR environment for one compilation session: the
// sum of every store named in spec.md §3-§4.1, created once and shared
// (read/modified concurrently) across every later stage. It is the Go
// analogue of the teacher's per-kind arenas
// (surge/internal/symbols.Symbols/Scopes) generalised to every TIR entity,
// and of original_source/compiler/hash-tir/src/environment/stores.rs's
// "one store per node kind" design.
type Env struct {
	Idents *ident.Pool

	Symbols *Symbols
	AstInfo *AstInfo

	Terms *Store[TermId, Term]
	Tys   *Store[TyId, Ty]
	Pats  *Store[PatId, Pat]

	Params   *SequenceStore[ParamsId, Param]
	Args     *SequenceStore[ArgsId, Arg]
	PatArgs  *SequenceStore[PatArgsId, PatArg]

	DataDefs  *Store[DataDefId, DataDef]
	CtorDefs  *Store[CtorDefId, CtorDef]
	CtorDefsSeq *SequenceStore[CtorDefsId, CtorDefId]
	FnDefs    *Store[FnDefId, FnDef]
	ModDefs   *Store[ModDefId, ModDef]
	ModMembers *SequenceStore[ModMembersId, ModMember]
	Stacks    *Store[StackId, Stack]
}

// NewEnv creates a fresh, empty TIR environment.
func NewEnv() *Env {
	return &Env{
		Idents:      ident.NewPool(),
		Symbols:     NewSymbols(),
		AstInfo:     NewAstInfo(),
		Terms:       NewStore[TermId, Term](1024),
		Tys:         NewStore[TyId, Ty](256),
		Pats:        NewStore[PatId, Pat](256),
		Params:      NewSequenceStore[ParamsId, Param](),
		Args:        NewSequenceStore[ArgsId, Arg](),
		PatArgs:     NewSequenceStore[PatArgsId, PatArg](),
		DataDefs:    NewStore[DataDefId, DataDef](64),
		CtorDefs:    NewStore[CtorDefId, CtorDef](64),
		CtorDefsSeq: NewSequenceStore[CtorDefsId, CtorDefId](),
		FnDefs:      NewStore[FnDefId, FnDef](128),
		ModDefs:     NewStore[ModDefId, ModDef](16),
		ModMembers:  NewSequenceStore[ModMembersId, ModMember](),
		Stacks:      NewStore[StackId, Stack](128),
	}
}

// ParamIndexByName returns the position of name within params, supporting
// spec.md §3.4's "parameter target lookup supports both positional and name
// index".
func (e *Env) ParamIndexByName(params ParamsId, name SymbolId) (int, bool) {
	all := e.Params.All(params)
	for i, p := range all {
		if p.Name == name {
			return i, true
		}
	}
	return 0, false
}

// ResolveArg returns the Param that arg targets within params: by name if
// arg.Target.Name is valid, otherwise by arg.Target.Position.
func (e *Env) ResolveArg(params ParamsId, arg Arg) (Param, int, bool) {
	if arg.Target.Name.IsValid() {
		idx, ok := e.ParamIndexByName(params, arg.Target.Name)
		if !ok {
			return Param{}, 0, false
		}
		return e.Params.At(params, idx), idx, true
	}
	idx := int(arg.Target.Position)
	if idx < 0 || idx >= e.Params.Len(params) {
		return Param{}, 0, false
	}
	return e.Params.At(params, idx), idx, true
}

// LookupFieldIndex implements spec.md §4.6.4's lookup_field_index for
// structs/tuples: a data def with exactly one constructor. NamedField
// lookup goes through ParamIndexByName over that constructor's params;
// NumericField is the identity. Enum field access must downcast first
// (handled by internal/cfg, not here).
func (e *Env) LookupFieldIndex(dataDef DataDefId, name SymbolId, numeric int, named bool) (int, bool) {
	def := e.DataDefs.Get(dataDef).Data
	if def.CtorsKind != CtorsDefined {
		return 0, false
	}
	if e.CtorDefsSeq.Len(def.Ctors) != 1 {
		return 0, false
	}
	ctor := e.CtorDefs.Get(e.CtorDefsSeq.At(def.Ctors, 0)).Data
	if named {
		return e.ParamIndexByName(ctor.Params, name)
	}
	if numeric < 0 || numeric >= e.Params.Len(ctor.Params) {
		return 0, false
	}
	return numeric, true
}
