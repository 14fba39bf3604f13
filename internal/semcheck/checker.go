// Package semcheck implements the Semantic analysis stage (spec.md §4.4.2):
// pre-typecheck structural checks that do not need types. It walks every
// function body after Expansion and reports:
//
//   - break/continue used outside of a loop
//   - duplicate bindings or more than one spread within a single pattern
//   - unreachable code following an unconditional jump
//
// Only function items are walked. Non-declarative statements outside a
// function body are not checked: SemNonDeclarativeInBlock is never reported,
// and the Checker's BlockOrigin state is recorded but not read.
//
// Grounded on the shape of surge/internal/sema's structural validators and
// on original_source/compiler/hash-ast-passes/src/analysis/mod.rs's
// SemanticAnalyser, whose is_in_loop/current_block tracking this package's
// Checker mirrors directly.
package semcheck

import (
	"fmt"

	"corec/internal/ast"
	"corec/internal/diag"
	"corec/internal/source"
)

// BlockOrigin records which kind of block the checker is currently walking,
// following hash-ast-passes's BlockOrigin: a non-declarative statement is
// only legal once the walk has entered a function body.
type BlockOrigin uint8

const (
	BlockRoot BlockOrigin = iota
	BlockBody
)

// Checker walks a parsed, expanded AST and reports pre-typecheck structural
// diagnostics into a diag.Bag. A Checker is not safe for concurrent use;
// callers checking multiple files concurrently should create one Checker
// per goroutine, as surge's own SemanticAnalyser does per source file.
type Checker struct {
	builder *ast.Builder
	bag     *diag.Bag

	loopDepth int
	block     BlockOrigin
}

// New creates a Checker over builder, reporting into bag.
func New(builder *ast.Builder, bag *diag.Bag) *Checker {
	return &Checker{builder: builder, bag: bag, block: BlockRoot}
}

// CheckFile walks every function item in file.
func (c *Checker) CheckFile(file ast.FileID) {
	f := c.builder.Files.Arena.Get(uint32(file))
	if f == nil {
		return
	}
	for _, item := range f.Items {
		c.checkItem(item)
	}
}

func (c *Checker) checkItem(item ast.ItemID) {
	it := c.builder.Items.Get(item)
	if it == nil || it.Kind != ast.ItemFn {
		return
	}
	fn, ok := c.builder.Items.Fn(item)
	if !ok || !fn.Body.IsValid() {
		return
	}

	savedLoop, savedBlock := c.loopDepth, c.block
	c.loopDepth, c.block = 0, BlockBody
	c.checkStmt(fn.Body)
	c.loopDepth, c.block = savedLoop, savedBlock
}

// checkStmt walks a single statement, dispatching on its kind.
func (c *Checker) checkStmt(id ast.StmtID) {
	if !id.IsValid() {
		return
	}
	stmt := c.builder.Stmts.Get(id)
	if stmt == nil {
		return
	}

	switch stmt.Kind {
	case ast.StmtBlock:
		c.checkBlock(id)
	case ast.StmtBreak:
		if c.loopDepth == 0 {
			c.report(diag.SevError, diag.SemBreakOutsideLoop, stmt.Span, "'break' used outside of a loop")
		}
	case ast.StmtContinue:
		if c.loopDepth == 0 {
			c.report(diag.SevError, diag.SemContinueOutsideLoop, stmt.Span, "'continue' used outside of a loop")
		}
	case ast.StmtLet:
		if let := c.builder.Stmts.Let(id); let != nil && let.Pattern.IsValid() {
			c.checkPattern(let.Pattern, make(map[source.StringID]bool))
		}
	case ast.StmtIf:
		ifs := c.builder.Stmts.If(id)
		if ifs == nil {
			return
		}
		c.checkStmt(ifs.Then)
		c.checkStmt(ifs.Else)
	case ast.StmtWhile:
		w := c.builder.Stmts.While(id)
		if w == nil {
			return
		}
		c.loopDepth++
		c.checkStmt(w.Body)
		c.loopDepth--
	case ast.StmtForClassic:
		f := c.builder.Stmts.ForClassic(id)
		if f == nil {
			return
		}
		c.checkStmt(f.Init)
		c.loopDepth++
		c.checkStmt(f.Body)
		c.loopDepth--
	case ast.StmtForIn:
		f := c.builder.Stmts.ForIn(id)
		if f == nil {
			return
		}
		c.loopDepth++
		c.checkStmt(f.Body)
		c.loopDepth--
	}
}

// checkBlock walks the statements of a block in order, flagging anything
// that follows an unconditional jump (return/break/continue) as unreachable
// (spec.md §4.4.2: "Produces warnings (e.g. unreachable code)").
func (c *Checker) checkBlock(id ast.StmtID) {
	block := c.builder.Stmts.Block(id)
	if block == nil {
		return
	}

	terminated := false
	for _, s := range block.Stmts {
		if terminated {
			if stmt := c.builder.Stmts.Get(s); stmt != nil {
				c.report(diag.SevWarning, diag.SemUnreachableCode, stmt.Span, "unreachable code")
			}
			continue
		}
		c.checkStmt(s)
		if jumps(c.builder, s) {
			terminated = true
		}
	}
}

func jumps(b *ast.Builder, id ast.StmtID) bool {
	stmt := b.Stmts.Get(id)
	if stmt == nil {
		return false
	}
	switch stmt.Kind {
	case ast.StmtReturn, ast.StmtBreak, ast.StmtContinue:
		return true
	default:
		return false
	}
}

func (c *Checker) report(sev diag.Severity, code diag.Code, span source.Span, format string, args ...any) {
	if c.bag == nil {
		return
	}
	d := diag.New(sev, code, span, fmt.Sprintf(format, args...))
	c.bag.Add(&d)
}
