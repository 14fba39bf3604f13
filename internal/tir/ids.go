// Package tir implements the Typed Intermediate Representation: a
// content-addressed, interned graph of terms, types, patterns, parameters,
// arguments and definitions shared across every later compiler stage
// (spec.md §3, §4.1).
package tir

import "corec/internal/ast"

// Every ID below is an opaque, copyable handle into the corresponding store
// in Env. Index 0 is reserved as the "no value" sentinel in every store, so
// these are the same validity idiom as surge/internal/hir.ids.go.
type (
	SymbolId     uint32
	TermId       uint32
	TyId         uint32
	PatId        uint32
	ParamsId     uint32
	ArgsId       uint32
	PatArgsId    uint32
	DataDefId    uint32
	CtorDefId    uint32
	CtorDefsId   uint32
	FnDefId      uint32
	ModDefId     uint32
	ModMembersId uint32
	StackId      uint32
	IntrinsicId  uint32
	IrTyId       uint32 // lowered-type handle, consumed by internal/layout and internal/abi
)

const (
	NoSymbolId     SymbolId     = 0
	NoTermId       TermId       = 0
	NoTyId         TyId         = 0
	NoPatId        PatId        = 0
	NoParamsId     ParamsId     = 0
	NoArgsId       ArgsId       = 0
	NoPatArgsId    PatArgsId    = 0
	NoDataDefId    DataDefId    = 0
	NoCtorDefId    CtorDefId    = 0
	NoCtorDefsId   CtorDefsId   = 0
	NoFnDefId      FnDefId      = 0
	NoModDefId     ModDefId     = 0
	NoModMembersId ModMembersId = 0
	NoStackId      StackId      = 0
	NoIntrinsicId  IntrinsicId  = 0
	NoIrTyId       IrTyId       = 0
)

func (id SymbolId) IsValid() bool     { return id != NoSymbolId }
func (id TermId) IsValid() bool       { return id != NoTermId }
func (id TyId) IsValid() bool         { return id != NoTyId }
func (id PatId) IsValid() bool        { return id != NoPatId }
func (id ParamsId) IsValid() bool     { return id != NoParamsId }
func (id ArgsId) IsValid() bool       { return id != NoArgsId }
func (id PatArgsId) IsValid() bool    { return id != NoPatArgsId }
func (id DataDefId) IsValid() bool    { return id != NoDataDefId }
func (id CtorDefId) IsValid() bool    { return id != NoCtorDefId }
func (id CtorDefsId) IsValid() bool   { return id != NoCtorDefsId }
func (id FnDefId) IsValid() bool      { return id != NoFnDefId }
func (id ModDefId) IsValid() bool     { return id != NoModDefId }
func (id ModMembersId) IsValid() bool { return id != NoModMembersId }
func (id StackId) IsValid() bool      { return id != NoStackId }
func (id IntrinsicId) IsValid() bool  { return id != NoIntrinsicId }
func (id IrTyId) IsValid() bool       { return id != NoIrTyId }

// AstNodeId is the stable identity of an AST node (spec.md §3.1). It is
// ast.NodeId directly: TIR names the type locally because every TIR node
// carries one as part of its NodeOrigin, but the identity itself is owned
// by the AST package.
type AstNodeId = ast.NodeId
