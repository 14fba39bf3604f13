package interp

import (
	"fmt"
	"math"

	"corec/internal/backend"
	"corec/internal/cfg"
	"corec/internal/tir"
)

// Call interprets fn's body with args bound to its parameter locals
// (locals[1..ParamCount]), returning the value left in the return place
// (cfg.ReturnLocal) once a block terminates with Return. This is the
// execution phase that follows the StartFunction/EmitAllocas/EmitBlock/
// EmitStatement/EmitTerminator/EndFunction emission phase a driver runs
// once per function — mirroring how a real backend's "emit" pass and its
// target's later "run the emitted code" pass are two separate steps.
func (b *Backend) Call(f backend.FuncId, args []cfg.Const) (cfg.Const, error) {
	bf, ok := b.fns[f]
	if !ok || bf.body == nil {
		return cfg.Const{}, fmt.Errorf("interp: function %d was never emitted", f)
	}
	locals := make([]cfg.Const, len(bf.body.Locals))
	for i, a := range args {
		if idx := 1 + i; idx < len(locals) {
			locals[idx] = a
		}
	}

	cur := bf.body.Entry
	for step := 0; ; step++ {
		if step > maxSteps {
			return cfg.Const{}, fmt.Errorf("interp: exceeded %d block transitions in %v, suspected infinite loop", maxSteps, bf.fn)
		}
		blk := bf.blocks[cur]
		if blk == nil {
			return cfg.Const{}, fmt.Errorf("interp: block %d of %v was never emitted", cur, bf.fn)
		}
		for _, stmt := range blk.stmts {
			if err := b.execStatement(locals, stmt); err != nil {
				return cfg.Const{}, err
			}
		}
		next, done, retVal, err := b.execTerminator(locals, blk.term)
		if err != nil {
			return cfg.Const{}, err
		}
		if done {
			return retVal, nil
		}
		cur = next
	}
}

func (b *Backend) execStatement(locals []cfg.Const, stmt cfg.Statement) error {
	switch stmt.Kind {
	case cfg.StmtAssign:
		v, err := b.evalRValue(locals, stmt.RValue)
		if err != nil {
			return err
		}
		return writePlace(locals, stmt.Place, v)
	case cfg.StmtAlloc, cfg.StmtAllocRaw, cfg.StmtNop:
		return nil
	default:
		return fmt.Errorf("interp: unsupported statement kind %v", stmt.Kind)
	}
}

// execTerminator runs one terminator, returning either the next block to
// execute or (done=true, retVal) once the function has returned.
func (b *Backend) execTerminator(locals []cfg.Const, term cfg.Terminator) (cfg.BasicBlockId, bool, cfg.Const, error) {
	switch term.Kind {
	case cfg.TermReturn:
		return 0, true, locals[cfg.ReturnLocal], nil

	case cfg.TermGoto:
		return term.Goto.Target, false, cfg.Const{}, nil

	case cfg.TermSwitch:
		v, err := readOperand(locals, term.Switch.Value)
		if err != nil {
			return 0, false, cfg.Const{}, err
		}
		target := term.Switch.Otherwise
		for _, c := range term.Switch.Table {
			if c.Value.Hi == 0 && c.Value.Lo == switchKey(v) {
				target = c.Target
				break
			}
		}
		if target == cfg.NoBasicBlockId {
			return 0, false, cfg.Const{}, fmt.Errorf("interp: switch fell through with no matching case and no otherwise target")
		}
		return target, false, cfg.Const{}, nil

	case cfg.TermAssert:
		v, err := readOperand(locals, term.Assert.Cond)
		if err != nil {
			return 0, false, cfg.Const{}, err
		}
		if v.Bool != term.Assert.Expected {
			return 0, false, cfg.Const{}, fmt.Errorf("interp: assertion failed: %s", term.Assert.Kind)
		}
		return term.Assert.Target, false, cfg.Const{}, nil

	case cfg.TermCall:
		return b.execCall(locals, term.Call)

	case cfg.TermUnreachable:
		return 0, false, cfg.Const{}, fmt.Errorf("interp: reached a terminator marked unreachable")

	default:
		return 0, false, cfg.Const{}, fmt.Errorf("interp: unsupported or missing (TermNone) terminator kind %v", term.Kind)
	}
}

func switchKey(v cfg.Const) uint64 {
	switch v.Kind {
	case cfg.ConstBool:
		if v.Bool {
			return 1
		}
		return 0
	case cfg.ConstChar:
		return uint64(v.Char)
	default:
		return v.Int
	}
}

func (b *Backend) execCall(locals []cfg.Const, call cfg.CallTerm) (cfg.BasicBlockId, bool, cfg.Const, error) {
	if !call.Callee.IsFn {
		return 0, false, cfg.Const{}, fmt.Errorf("interp: call terminator with a non-function callee operand")
	}
	args := make([]cfg.Const, len(call.Args))
	for i, a := range call.Args {
		v, err := readOperand(locals, a)
		if err != nil {
			return 0, false, cfg.Const{}, err
		}
		args[i] = v
	}

	def := b.Env.FnDefs.Get(call.Callee.Fn).Data
	var result cfg.Const
	if def.BodyKind == tir.FnBodyIntrinsic {
		result = b.runIntrinsic(def, args)
	} else {
		calleeID := b.funcIdOf(call.Callee.Fn)
		if calleeID == 0 {
			return 0, false, cfg.Const{}, fmt.Errorf("interp: call to a function never registered with this backend")
		}
		var err error
		result, err = b.Call(calleeID, args)
		if err != nil {
			return 0, false, cfg.Const{}, err
		}
	}

	if call.Target == cfg.NoBasicBlockId {
		// A diverging call (its callee is known never to return, spec.md
		// §3.5): there is no further block to resume at, but Call still
		// needs a value to hand back up, so report it as an unreachable
		// continuation rather than silently returning a zero Const.
		return 0, false, cfg.Const{}, fmt.Errorf("interp: resumed after a diverging call")
	}
	if err := writePlace(locals, call.Destination, result); err != nil {
		return 0, false, cfg.Const{}, err
	}
	return call.Target, false, cfg.Const{}, nil
}

// runIntrinsic evaluates one of this spec's built-in intrinsic functions
// (spec.md §4.6.9: abort/expect plus the numeric/array/string built-ins
// internal/lower synthesises calls to). Only abort has real semantics here
// (it sets abortHit); expect returns its first argument unchanged without
// comparing it against anything. The wider numeric/array/string intrinsic
// catalogue is not interpreted by this minimal reference backend (see
// DESIGN.md) — any other intrinsic is treated as the identity function over
// its first argument so interpretation can still proceed through it rather
// than aborting outright.
func (b *Backend) runIntrinsic(def tir.FnDef, args []cfg.Const) cfg.Const {
	name := b.identName(def.Name)
	switch name {
	case "abort", "__abort":
		b.abortHit = true
		return cfg.Const{Kind: cfg.ConstUnit}
	case "expect", "__expect":
		if len(args) > 0 {
			return args[0]
		}
		return cfg.Const{Kind: cfg.ConstUnit}
	default:
		if len(args) > 0 {
			return args[0]
		}
		return cfg.Const{Kind: cfg.ConstUnit}
	}
}

func (b *Backend) identName(sym tir.SymbolId) string {
	id := b.Env.Symbols.Name(sym)
	text, _ := b.Env.Idents.LookupIdent(id)
	return text
}

func (b *Backend) evalRValue(locals []cfg.Const, rv cfg.RValue) (cfg.Const, error) {
	switch rv.Kind {
	case cfg.RValueUse:
		return readPlace(locals, rv.Use)
	case cfg.RValueConst:
		return rv.Const, nil
	case cfg.RValueBinaryOp:
		l, err := readOperand(locals, rv.BinaryOp.Left)
		if err != nil {
			return cfg.Const{}, err
		}
		r, err := readOperand(locals, rv.BinaryOp.Right)
		if err != nil {
			return cfg.Const{}, err
		}
		return b.evalBinary(rv.BinaryOp.Op, l, r)
	case cfg.RValueCheckedBinaryOp:
		l, err := readOperand(locals, rv.BinaryOp.Left)
		if err != nil {
			return cfg.Const{}, err
		}
		r, err := readOperand(locals, rv.BinaryOp.Right)
		if err != nil {
			return cfg.Const{}, err
		}
		return b.evalBinary(rv.BinaryOp.Op, l, r)
	case cfg.RValueUnaryOp:
		v, err := readOperand(locals, rv.UnaryOp.Operand)
		if err != nil {
			return cfg.Const{}, err
		}
		return b.evalUnary(rv.UnaryOp.Op, v)
	case cfg.RValueDiscriminant:
		return readPlace(locals, rv.Discriminant)
	case cfg.RValueRef, cfg.RValueAggregate:
		// Reference/aggregate values have no scalar Const representation
		// this reference backend can hold; see the package doc comment's
		// scope note.
		return cfg.Const{}, fmt.Errorf("interp: rvalue kind %v needs an aggregate/pointer memory model this reference backend does not implement", rv.Kind)
	default:
		return cfg.Const{}, fmt.Errorf("interp: unsupported rvalue kind %v", rv.Kind)
	}
}

// opName recovers a synthetic operator intrinsic's "__add"-family name —
// the same lookup internal/cfg/fold.go's folder.opName performs, since
// both components read the identical BinaryOpRValue/UnaryOpRValue shape.
func (b *Backend) opName(fn tir.FnDefId) string {
	def := b.Env.FnDefs.Get(fn).Data
	return b.identName(def.Name)
}

func (b *Backend) evalBinary(fn tir.FnDefId, l, r cfg.Const) (cfg.Const, error) {
	name := b.opName(fn)
	switch {
	case l.Kind == cfg.ConstInt && r.Kind == cfg.ConstInt:
		return evalBinaryInt(name, l, r)
	case l.Kind == cfg.ConstFloat && r.Kind == cfg.ConstFloat:
		return evalBinaryFloat(name, l, r)
	case l.Kind == cfg.ConstBool && r.Kind == cfg.ConstBool:
		return evalBinaryBool(name, l, r)
	case l.Kind == cfg.ConstChar && r.Kind == cfg.ConstChar:
		return evalBinaryChar(name, l, r)
	default:
		return cfg.Const{}, fmt.Errorf("interp: binary op %q on mismatched/unsupported operand kinds %v/%v", name, l.Kind, r.Kind)
	}
}

func evalBinaryInt(name string, l, r cfg.Const) (cfg.Const, error) {
	a, b := int64(l.Int), int64(r.Int)
	ua, ub := l.Int, r.Int
	switch name {
	case "__add":
		return cfg.Const{Kind: cfg.ConstInt, Int: ua + ub, Ty: l.Ty}, nil
	case "__sub":
		return cfg.Const{Kind: cfg.ConstInt, Int: ua - ub, Ty: l.Ty}, nil
	case "__mul":
		return cfg.Const{Kind: cfg.ConstInt, Int: ua * ub, Ty: l.Ty}, nil
	case "__div":
		if b == 0 {
			return cfg.Const{}, fmt.Errorf("interp: division by zero")
		}
		if a == math.MinInt64 && b == -1 {
			return cfg.Const{}, fmt.Errorf("interp: signed division overflow (MIN_INT / -1)")
		}
		return cfg.Const{Kind: cfg.ConstInt, Int: uint64(a / b), Ty: l.Ty}, nil
	case "__mod":
		if b == 0 {
			return cfg.Const{}, fmt.Errorf("interp: modulo by zero")
		}
		if a == math.MinInt64 && b == -1 {
			return cfg.Const{}, fmt.Errorf("interp: signed modulo overflow (MIN_INT %% -1)")
		}
		return cfg.Const{Kind: cfg.ConstInt, Int: uint64(a % b), Ty: l.Ty}, nil
	case "__bitand":
		return cfg.Const{Kind: cfg.ConstInt, Int: ua & ub, Ty: l.Ty}, nil
	case "__bitor":
		return cfg.Const{Kind: cfg.ConstInt, Int: ua | ub, Ty: l.Ty}, nil
	case "__bitxor":
		return cfg.Const{Kind: cfg.ConstInt, Int: ua ^ ub, Ty: l.Ty}, nil
	case "__shl":
		return cfg.Const{Kind: cfg.ConstInt, Int: ua << (ub & 63), Ty: l.Ty}, nil
	case "__shr":
		return cfg.Const{Kind: cfg.ConstInt, Int: ua >> (ub & 63), Ty: l.Ty}, nil
	case "__eq":
		return cfg.Const{Kind: cfg.ConstBool, Bool: ua == ub}, nil
	case "__ne":
		return cfg.Const{Kind: cfg.ConstBool, Bool: ua != ub}, nil
	case "__lt":
		return cfg.Const{Kind: cfg.ConstBool, Bool: a < b}, nil
	case "__le":
		return cfg.Const{Kind: cfg.ConstBool, Bool: a <= b}, nil
	case "__gt":
		return cfg.Const{Kind: cfg.ConstBool, Bool: a > b}, nil
	case "__ge":
		return cfg.Const{Kind: cfg.ConstBool, Bool: a >= b}, nil
	}
	return cfg.Const{}, fmt.Errorf("interp: unknown integer binary op %q", name)
}

func evalBinaryFloat(name string, l, r cfg.Const) (cfg.Const, error) {
	a, b := l.Float, r.Float
	switch name {
	case "__add":
		return cfg.Const{Kind: cfg.ConstFloat, Float: a + b, Ty: l.Ty}, nil
	case "__sub":
		return cfg.Const{Kind: cfg.ConstFloat, Float: a - b, Ty: l.Ty}, nil
	case "__mul":
		return cfg.Const{Kind: cfg.ConstFloat, Float: a * b, Ty: l.Ty}, nil
	case "__div":
		return cfg.Const{Kind: cfg.ConstFloat, Float: a / b, Ty: l.Ty}, nil
	case "__eq":
		return cfg.Const{Kind: cfg.ConstBool, Bool: a == b}, nil
	case "__ne":
		return cfg.Const{Kind: cfg.ConstBool, Bool: a != b}, nil
	case "__lt":
		return cfg.Const{Kind: cfg.ConstBool, Bool: a < b}, nil
	case "__le":
		return cfg.Const{Kind: cfg.ConstBool, Bool: a <= b}, nil
	case "__gt":
		return cfg.Const{Kind: cfg.ConstBool, Bool: a > b}, nil
	case "__ge":
		return cfg.Const{Kind: cfg.ConstBool, Bool: a >= b}, nil
	}
	return cfg.Const{}, fmt.Errorf("interp: unknown float binary op %q", name)
}

func evalBinaryBool(name string, l, r cfg.Const) (cfg.Const, error) {
	switch name {
	case "__and", "and":
		return cfg.Const{Kind: cfg.ConstBool, Bool: l.Bool && r.Bool}, nil
	case "__or", "or":
		return cfg.Const{Kind: cfg.ConstBool, Bool: l.Bool || r.Bool}, nil
	case "__eq":
		return cfg.Const{Kind: cfg.ConstBool, Bool: l.Bool == r.Bool}, nil
	case "__ne":
		return cfg.Const{Kind: cfg.ConstBool, Bool: l.Bool != r.Bool}, nil
	}
	return cfg.Const{}, fmt.Errorf("interp: unknown bool binary op %q", name)
}

func evalBinaryChar(name string, l, r cfg.Const) (cfg.Const, error) {
	switch name {
	case "__eq":
		return cfg.Const{Kind: cfg.ConstBool, Bool: l.Char == r.Char}, nil
	case "__ne":
		return cfg.Const{Kind: cfg.ConstBool, Bool: l.Char != r.Char}, nil
	case "__lt":
		return cfg.Const{Kind: cfg.ConstBool, Bool: l.Char < r.Char}, nil
	case "__le":
		return cfg.Const{Kind: cfg.ConstBool, Bool: l.Char <= r.Char}, nil
	case "__gt":
		return cfg.Const{Kind: cfg.ConstBool, Bool: l.Char > r.Char}, nil
	case "__ge":
		return cfg.Const{Kind: cfg.ConstBool, Bool: l.Char >= r.Char}, nil
	}
	return cfg.Const{}, fmt.Errorf("interp: unknown char binary op %q", name)
}

func (b *Backend) evalUnary(fn tir.FnDefId, v cfg.Const) (cfg.Const, error) {
	name := b.opName(fn)
	switch name {
	case "__neg":
		if v.Kind == cfg.ConstFloat {
			return cfg.Const{Kind: cfg.ConstFloat, Float: -v.Float, Ty: v.Ty}, nil
		}
		return cfg.Const{Kind: cfg.ConstInt, Int: uint64(-int64(v.Int)), Ty: v.Ty}, nil
	case "__not":
		return cfg.Const{Kind: cfg.ConstBool, Bool: !v.Bool}, nil
	case "__bitnot":
		return cfg.Const{Kind: cfg.ConstInt, Int: ^v.Int, Ty: v.Ty}, nil
	}
	return cfg.Const{}, fmt.Errorf("interp: unknown unary op %q", name)
}

func readOperand(locals []cfg.Const, op cfg.Operand) (cfg.Const, error) {
	if op.IsConst {
		return op.Const, nil
	}
	if op.IsFn {
		return cfg.Const{}, fmt.Errorf("interp: function-identity operand used outside callee position")
	}
	return readPlace(locals, op.Place)
}

func readPlace(locals []cfg.Const, p cfg.Place) (cfg.Const, error) {
	if int(p.Local) >= len(locals) {
		return cfg.Const{}, fmt.Errorf("interp: local %d out of range (%d locals)", p.Local, len(locals))
	}
	v := locals[p.Local]
	for _, proj := range p.Projections {
		switch proj.Kind {
		case cfg.ProjField:
			if proj.Field != 0 {
				return cfg.Const{}, fmt.Errorf("interp: field projection to index %d needs an aggregate memory model this reference backend does not implement", proj.Field)
			}
		case cfg.ProjDeref, cfg.ProjDowncast:
			// Treated as transparent: this backend has no distinct
			// pointer/tag representation to peel off (see scope note).
		case cfg.ProjIndex:
			return cfg.Const{}, fmt.Errorf("interp: index projection needs an array memory model this reference backend does not implement")
		}
	}
	return v, nil
}

func writePlace(locals []cfg.Const, p cfg.Place, v cfg.Const) error {
	if int(p.Local) >= len(locals) {
		return fmt.Errorf("interp: local %d out of range (%d locals)", p.Local, len(locals))
	}
	for _, proj := range p.Projections {
		if proj.Kind == cfg.ProjField && proj.Field != 0 {
			return fmt.Errorf("interp: field projection to index %d needs an aggregate memory model this reference backend does not implement", proj.Field)
		}
		if proj.Kind == cfg.ProjIndex {
			return fmt.Errorf("interp: index projection needs an array memory model this reference backend does not implement")
		}
	}
	locals[p.Local] = v
	return nil
}
