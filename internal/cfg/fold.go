package cfg

import (
	"math"

	"corec/internal/tir"
)

// FoldConstants implements spec.md §4.6.6: every BinaryOp(op, Const, Const)
// statement is rewritten to Const(f(l,r)) in place wherever the result is
// safe to compute at compile time. Operator identity is recovered the same
// way place.go's field/index recognition does — by reading the synthetic
// intrinsic FnDef's name text (internal/lower/expr.go's "__add"-family
// naming) — since BinaryOpRValue carries only a bare FnDefId.
//
// Per-type bit-width overflow detection (spec.md §4.6.6: "integer ops
// respect operand type's bit width") is left to internal/layout's later,
// width-aware constant evaluation once a Const's IrTyId can be resolved to
// a concrete Layout; this pass only ever folds using Go's native int64/
// uint64 width and aborts on the two operations (signed overflow at 64
// bits, div/mod by zero or MIN/-1) it can detect without that information.
func FoldConstants(env *tir.Env, body *Body) {
	f := folder{env: env}
	for bi := range body.Blocks {
		blk := &body.Blocks[bi]
		for si := range blk.Statements {
			st := &blk.Statements[si]
			if st.Kind != StmtAssign || st.RValue.Kind != RValueBinaryOp {
				continue
			}
			if folded, ok := f.fold(st.RValue.BinaryOp); ok {
				st.RValue = RValue{Kind: RValueConst, Const: folded}
			}
		}
	}
}

type folder struct{ env *tir.Env }

func (f *folder) opName(fn tir.FnDefId) string {
	def := f.env.FnDefs.Get(fn).Data
	id := f.env.Symbols.Name(def.Name)
	text, _ := f.env.Idents.LookupIdent(id)
	return text
}

func (f *folder) fold(bo BinaryOpRValue) (Const, bool) {
	if !bo.Left.IsConst || !bo.Right.IsConst {
		return Const{}, false
	}
	name := f.opName(bo.Op)
	l, r := bo.Left.Const, bo.Right.Const
	switch {
	case l.Kind == ConstInt && r.Kind == ConstInt:
		return foldInt(name, l, r)
	case l.Kind == ConstFloat && r.Kind == ConstFloat:
		return foldFloat(name, l, r)
	case l.Kind == ConstBool && r.Kind == ConstBool:
		return foldBool(name, l, r)
	case l.Kind == ConstChar && r.Kind == ConstChar:
		return foldCharCmp(name, l, r)
	}
	return Const{}, false
}

func foldInt(name string, l, r Const) (Const, bool) {
	a, b := int64(l.Int), int64(r.Int)
	ua, ub := l.Int, r.Int
	switch name {
	case "__add":
		if s := a + b; (b > 0 && s < a) || (b < 0 && s > a) {
			return Const{}, false // signed 64-bit overflow aborts folding
		}
		return Const{Kind: ConstInt, Int: ua + ub, Ty: l.Ty}, true
	case "__sub":
		if d := a - b; (b > 0 && d > a) || (b < 0 && d < a) {
			return Const{}, false
		}
		return Const{Kind: ConstInt, Int: ua - ub, Ty: l.Ty}, true
	case "__mul":
		if a != 0 && b != 0 && ((a*b)/b != a || (a == math.MinInt64 && b == -1)) {
			return Const{}, false
		}
		return Const{Kind: ConstInt, Int: ua * ub, Ty: l.Ty}, true
	case "__div":
		if b == 0 {
			return Const{}, false // divide by zero aborts folding (spec.md §4.6.6)
		}
		if a == math.MinInt64 && b == -1 {
			return Const{}, false // signed MIN/-1 aborts folding
		}
		return Const{Kind: ConstInt, Int: uint64(a / b), Ty: l.Ty}, true
	case "__mod":
		if b == 0 {
			return Const{}, false
		}
		if a == math.MinInt64 && b == -1 {
			return Const{}, false
		}
		return Const{Kind: ConstInt, Int: uint64(a % b), Ty: l.Ty}, true
	case "__bitand":
		return Const{Kind: ConstInt, Int: ua & ub, Ty: l.Ty}, true
	case "__bitor":
		return Const{Kind: ConstInt, Int: ua | ub, Ty: l.Ty}, true
	case "__bitxor":
		return Const{Kind: ConstInt, Int: ua ^ ub, Ty: l.Ty}, true
	case "__shl":
		return Const{Kind: ConstInt, Int: ua << (ub & 63), Ty: l.Ty}, true
	case "__shr":
		return Const{Kind: ConstInt, Int: ua >> (ub & 63), Ty: l.Ty}, true
	case "__eq":
		return Const{Kind: ConstBool, Bool: ua == ub}, true
	case "__ne":
		return Const{Kind: ConstBool, Bool: ua != ub}, true
	case "__lt":
		return Const{Kind: ConstBool, Bool: a < b}, true
	case "__le":
		return Const{Kind: ConstBool, Bool: a <= b}, true
	case "__gt":
		return Const{Kind: ConstBool, Bool: a > b}, true
	case "__ge":
		return Const{Kind: ConstBool, Bool: a >= b}, true
	}
	return Const{}, false
}

func foldFloat(name string, l, r Const) (Const, bool) {
	a, b := l.Float, r.Float
	switch name {
	case "__add":
		return Const{Kind: ConstFloat, Float: a + b, Ty: l.Ty}, true
	case "__sub":
		return Const{Kind: ConstFloat, Float: a - b, Ty: l.Ty}, true
	case "__mul":
		return Const{Kind: ConstFloat, Float: a * b, Ty: l.Ty}, true
	case "__div":
		return Const{Kind: ConstFloat, Float: a / b, Ty: l.Ty}, true // IEEE-754: div by zero yields Inf/NaN, not an abort
	case "__eq":
		return Const{Kind: ConstBool, Bool: a == b}, true
	case "__ne":
		return Const{Kind: ConstBool, Bool: a != b}, true
	case "__lt":
		return Const{Kind: ConstBool, Bool: a < b}, true
	case "__le":
		return Const{Kind: ConstBool, Bool: a <= b}, true
	case "__gt":
		return Const{Kind: ConstBool, Bool: a > b}, true
	case "__ge":
		return Const{Kind: ConstBool, Bool: a >= b}, true
	}
	return Const{}, false
}

func foldBool(name string, l, r Const) (Const, bool) {
	switch name {
	case "__and", "and":
		return Const{Kind: ConstBool, Bool: l.Bool && r.Bool}, true
	case "__or", "or":
		return Const{Kind: ConstBool, Bool: l.Bool || r.Bool}, true
	case "__eq":
		return Const{Kind: ConstBool, Bool: l.Bool == r.Bool}, true
	case "__ne":
		return Const{Kind: ConstBool, Bool: l.Bool != r.Bool}, true
	}
	return Const{}, false
}

func foldCharCmp(name string, l, r Const) (Const, bool) {
	switch name {
	case "__eq":
		return Const{Kind: ConstBool, Bool: l.Char == r.Char}, true
	case "__ne":
		return Const{Kind: ConstBool, Bool: l.Char != r.Char}, true
	case "__lt":
		return Const{Kind: ConstBool, Bool: l.Char < r.Char}, true
	case "__le":
		return Const{Kind: ConstBool, Bool: l.Char <= r.Char}, true
	case "__gt":
		return Const{Kind: ConstBool, Bool: l.Char > r.Char}, true
	case "__ge":
		return Const{Kind: ConstBool, Bool: l.Char >= r.Char}, true
	}
	return Const{}, false
}
