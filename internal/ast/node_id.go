package ast

// NodeKind discriminates which per-construct ID space a NodeId's raw index
// was drawn from.
type NodeKind uint8

const (
	NodeKindNone NodeKind = iota
	NodeKindItem
	NodeKindStmt
	NodeKindExpr
	NodeKindType
	NodeKindFnParam
	NodeKindTypeParam
	NodeKindContractDecl
	NodeKindContractItem
	NodeKindEnumVariant
)

// NodeId is a stable, file-scoped identity for any AST node, regardless of
// which typed ID space (ExprID, StmtID, ItemID, ...) produced it. It carries
// no span itself — spans live on the node payload and are resolved via the
// owning source.FileSet, consistent with spec.md §3.1's "AstNodeId carries
// source span" (indirectly, through the node it identifies).
type NodeId struct {
	File  FileID
	Kind  NodeKind
	Index uint32
}

// IsValid reports whether id names a real node.
func (id NodeId) IsValid() bool { return id.Kind != NodeKindNone }

func ItemNodeId(file FileID, id ItemID) NodeId { return NodeId{File: file, Kind: NodeKindItem, Index: uint32(id)} }
func StmtNodeId(file FileID, id StmtID) NodeId { return NodeId{File: file, Kind: NodeKindStmt, Index: uint32(id)} }
func ExprNodeId(file FileID, id ExprID) NodeId { return NodeId{File: file, Kind: NodeKindExpr, Index: uint32(id)} }
func TypeNodeId(file FileID, id TypeID) NodeId { return NodeId{File: file, Kind: NodeKindType, Index: uint32(id)} }
