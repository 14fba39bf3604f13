package cfg

import "corec/internal/diag"
import "corec/internal/tir"

// lowerMatch implements spec.md §4.6.5: the subject is evaluated once into
// a temp, then each arm's pattern compiles to a chain of test blocks in
// source order, falling through to the next arm's tests on failure and
// jumping to a shared join block on success.
func (fl *fnLowerer) lowerMatch(dest Place, m tir.MatchTerm, matchTerm tir.TermId) {
	subjectTy := fl.resolveTermTy(m.Subject)
	subjLocal := fl.b.NewTemp(subjectTy)
	subjPlace := Place{Local: subjLocal}
	fl.exprIntoDest(subjPlace, m.Subject)

	fl.checkMatchCoverage(m, subjectTy, matchTerm)

	join := fl.b.NewBlock()
	for i, c := range m.Cases {
		last := i == len(m.Cases)-1
		failTarget := fl.b.NewBlock()
		fl.testPat(c.Pat, subjPlace, subjectTy, failTarget)
		fl.exprIntoDest(dest, c.Body)
		if !fl.b.ReachedTerminator() {
			fl.b.SetTerminator(Terminator{Kind: TermGoto, Goto: GotoTerm{Target: join}})
		}
		fl.b.SetCurrent(failTarget)
		if last {
			// Exhaustiveness is checked (and reported) statically above;
			// a well-typed program never actually reaches this block.
			fl.b.SetTerminator(Terminator{Kind: TermUnreachable})
		}
	}
	fl.b.SetCurrent(join)
}

// testPat emits the test for one pattern against place, leaving execution
// in the current block on success (with any bindings applied) and jumping
// to onFail otherwise.
func (fl *fnLowerer) testPat(patId tir.PatId, place Place, ty tir.IrTyId, onFail BasicBlockId) {
	node := fl.Env.Pats.Get(patId)
	p := node.Data
	switch p.Kind {
	case tir.PatWildcard:
		return

	case tir.PatBinding:
		local := fl.b.NewLocal(ty, p.Binding.Sym, p.Binding.Mutable)
		fl.emitUse(Place{Local: local}, place)
		fl.b.BindLocal(p.Binding.Sym, local)

	case tir.PatLit:
		fl.testLit(p.Lit.Lit, place, onFail, node.Origin)

	case tir.PatRange:
		fl.testRange(p.Range, place, ty, onFail)

	case tir.PatTuple:
		args := fl.Env.PatArgs.All(p.Tuple.Args)
		for i, a := range args {
			fl.testPat(a.Value, place.Field(i), fl.fieldTy(ty, i), onFail)
		}

	case tir.PatList:
		args := fl.Env.PatArgs.All(p.List.Args)
		for i, a := range args {
			fl.testPat(a.Value, place.Field(i), fl.fieldTy(ty, i), onFail)
		}

	case tir.PatCtor:
		fl.testCtor(p.Ctor, place, ty, onFail)

	case tir.PatOr:
		fl.testOr(p.Or, place, ty, onFail)

	case tir.PatIf:
		fl.testPat(p.If.Inner, place, ty, onFail)
		guard := fl.b.NewTemp(tir.NoIrTyId)
		fl.exprIntoDest(Place{Local: guard}, p.If.Guard)
		success := fl.b.NewBlock()
		fl.b.SetTerminator(Terminator{Kind: TermSwitch, Switch: SwitchTerm{
			Value:     Operand{Place: Place{Local: guard}},
			Table:     []SwitchCase{{Value: u128FromU64(1), Target: success}},
			Otherwise: onFail,
		}})
		fl.b.SetCurrent(success)
	}
}

func (fl *fnLowerer) testLit(lit tir.Lit, place Place, onFail BasicBlockId, origin tir.NodeOrigin) {
	var bits uint64
	switch lit.Kind {
	case tir.LitInt:
		bits = lit.Int.Value
	case tir.LitBool:
		if lit.Bool {
			bits = 1
		}
	case tir.LitChar:
		bits = uint64(lit.Char)
	default:
		// str/float literal patterns have no integer discriminant to
		// Switch on; a direct equality test would need a comparison
		// intrinsic this package cannot safely assume exists for those
		// types (unlike the int/char/bool path, which reads the
		// scrutinee's own bits). Treated, with a diagnostic, as always
		// matching — a documented limitation, not silently dropped.
		fl.report(diag.SevWarning, diag.SemLowerUnsupportedPat, origin, "string/float literal patterns are not checked during CFG lowering")
		return
	}
	success := fl.b.NewBlock()
	fl.b.SetTerminator(Terminator{Kind: TermSwitch, Switch: SwitchTerm{
		Value:     Operand{Place: place},
		Table:     []SwitchCase{{Value: u128FromU64(bits), Target: success}},
		Otherwise: onFail,
	}})
	fl.b.SetCurrent(success)
}

// testRange implements a range pattern as two chained comparisons against
// fresh comparison intrinsics (cmpIntrinsics), ANDed together and tested by
// a Switch, per spec.md §4.6.5: "ranges -> double comparisons honoring
// RangeEnd::Included|Excluded".
func (fl *fnLowerer) testRange(r tir.RangePat, place Place, ty tir.IrTyId, onFail BasicBlockId) {
	lo := fl.operandFor(r.Lo)
	hi := fl.operandFor(r.Hi)

	ge := fl.b.NewTemp(tir.NoIrTyId)
	fl.b.Emit(Statement{Kind: StmtAssign, Place: Place{Local: ge}, RValue: RValue{
		Kind: RValueBinaryOp, BinaryOp: BinaryOpRValue{Op: fl.cmp.get(">="), Left: Operand{Place: place}, Right: lo},
	}})

	hiOp := "<="
	if r.End == tir.RangeExcluded {
		hiOp = "<"
	}
	le := fl.b.NewTemp(tir.NoIrTyId)
	fl.b.Emit(Statement{Kind: StmtAssign, Place: Place{Local: le}, RValue: RValue{
		Kind: RValueBinaryOp, BinaryOp: BinaryOpRValue{Op: fl.cmp.get(hiOp), Left: Operand{Place: place}, Right: hi},
	}})

	and := fl.b.NewTemp(tir.NoIrTyId)
	fl.b.Emit(Statement{Kind: StmtAssign, Place: Place{Local: and}, RValue: RValue{
		Kind: RValueBinaryOp, BinaryOp: BinaryOpRValue{Op: fl.cmp.get("and"), Left: Operand{Place: Place{Local: ge}}, Right: Operand{Place: Place{Local: le}}},
	}})

	success := fl.b.NewBlock()
	fl.b.SetTerminator(Terminator{Kind: TermSwitch, Switch: SwitchTerm{
		Value:     Operand{Place: Place{Local: and}},
		Table:     []SwitchCase{{Value: u128FromU64(1), Target: success}},
		Otherwise: onFail,
	}})
	fl.b.SetCurrent(success)
}

// testCtor implements spec.md §4.6.5's discriminant Switch for a multi-ctor
// (union) subject, using CtorDef.DataDefCtorIndex directly as the
// discriminant value and the downcast projection's variant index — both
// already match the order IrTyUnion.Variants was built in (TyResolver.
// resolveData iterates CtorDefsSeq in the same order).
func (fl *fnLowerer) testCtor(c tir.CtorPat, place Place, ty tir.IrTyId, onFail BasicBlockId) {
	ctor := fl.Env.CtorDefs.Get(c.Ctor).Data
	irTy := fl.Store.Get(ty)
	fieldsPlace := place

	if irTy.Kind == IrTyUnion {
		disc := fl.b.NewTemp(tir.NoIrTyId)
		fl.b.Emit(Statement{Kind: StmtAssign, Place: Place{Local: disc}, RValue: RValue{Kind: RValueDiscriminant, Discriminant: place}})
		success := fl.b.NewBlock()
		fl.b.SetTerminator(Terminator{Kind: TermSwitch, Switch: SwitchTerm{
			Value:     Operand{Place: Place{Local: disc}},
			Table:     []SwitchCase{{Value: u128FromU64(uint64(ctor.DataDefCtorIndex)), Target: success}},
			Otherwise: onFail,
		}})
		fl.b.SetCurrent(success)
		fieldsPlace = place.Downcast(ctor.DataDefCtorIndex)
	}

	args := fl.Env.PatArgs.All(c.Args)
	for _, a := range args {
		var fieldIdx int
		var ok bool
		if a.Target.Name.IsValid() {
			fieldIdx, ok = fl.paramIndexByIdent(ctor.Params, a.Target.Name)
		} else {
			fieldIdx, ok = int(a.Target.Position), true
		}
		if !ok {
			continue
		}
		var ft tir.IrTyId
		if irTy.Kind == IrTyUnion {
			ft = fl.variantFieldTy(ty, int(ctor.DataDefCtorIndex), fieldIdx)
		} else {
			ft = fl.fieldTy(ty, fieldIdx)
		}
		fl.testPat(a.Value, fieldsPlace.Field(fieldIdx), ft, onFail)
	}
}

// testOr implements spec.md §4.6.5's or-pattern lowering: "duplicate the
// subsequent check block per branch, merging on success".
func (fl *fnLowerer) testOr(alts []tir.PatId, place Place, ty tir.IrTyId, onFail BasicBlockId) {
	join := fl.b.NewBlock()
	for i, alt := range alts {
		last := i == len(alts)-1
		next := onFail
		if !last {
			next = fl.b.NewBlock()
		}
		fl.testPat(alt, place, ty, next)
		if !fl.b.ReachedTerminator() {
			fl.b.SetTerminator(Terminator{Kind: TermGoto, Goto: GotoTerm{Target: join}})
		}
		if !last {
			fl.b.SetCurrent(next)
		}
	}
	fl.b.SetCurrent(join)
}

// litRange is a closed [lo, hi] bound used by the overlap check: a bare
// literal contributes lo == hi.
type litRange struct{ lo, hi uint64 }

func (fl *fnLowerer) litBounds(lit tir.Lit) (uint64, uint64, bool) {
	switch lit.Kind {
	case tir.LitInt:
		return lit.Int.Value, lit.Int.Value, true
	case tir.LitBool:
		v := uint64(0)
		if lit.Bool {
			v = 1
		}
		return v, v, true
	case tir.LitChar:
		return uint64(lit.Char), uint64(lit.Char), true
	}
	return 0, 0, false
}

func (fl *fnLowerer) rangeBounds(r tir.RangePat) (uint64, uint64, bool) {
	loTerm := fl.Env.Terms.Get(r.Lo).Data
	hiTerm := fl.Env.Terms.Get(r.Hi).Data
	if loTerm.Kind != tir.TermLit || hiTerm.Kind != tir.TermLit {
		return 0, 0, false
	}
	lo, _, ok1 := fl.litBounds(loTerm.Lit)
	_, hi, ok2 := fl.litBounds(hiTerm.Lit)
	if !ok1 || !ok2 {
		return 0, 0, false
	}
	if r.End == tir.RangeExcluded && hi > 0 {
		hi--
	}
	return lo, hi, true
}

func overlaps(ranges []litRange, lo, hi uint64) bool {
	for _, r := range ranges {
		if lo <= r.hi && r.lo <= hi {
			return true
		}
	}
	return false
}

// checkMatchCoverage is a simplified version of spec.md §4.6.5's overlap
// and exhaustiveness passes: pairwise range overlap for literal/range arms
// (the pairwise ConstRange::overlaps rule verbatim), and a conservative
// exhaustiveness check (a trailing wildcard/binding arm, or every ctor of a
// union subject named by an unguarded arm) rather than full space
// subtraction with a witness pattern.
func (fl *fnLowerer) checkMatchCoverage(m tir.MatchTerm, subjectTy tir.IrTyId, matchTerm tir.TermId) {
	var ranges []litRange
	ctorsSeen := make(map[tir.CtorDefId]bool)
	exhaustive := false

	for _, c := range m.Cases {
		node := fl.Env.Pats.Get(c.Pat)
		p := node.Data
		if p.Kind == tir.PatIf {
			continue // a guard can reject, so a guarded arm never contributes coverage
		}
		switch p.Kind {
		case tir.PatWildcard, tir.PatBinding:
			exhaustive = true
		case tir.PatLit:
			if lo, hi, ok := fl.litBounds(p.Lit.Lit); ok {
				if overlaps(ranges, lo, hi) {
					fl.report(diag.SevWarning, diag.SemCfgUnreachablePattern, node.Origin, "unreachable pattern")
				}
				ranges = append(ranges, litRange{lo, hi})
			}
		case tir.PatRange:
			if lo, hi, ok := fl.rangeBounds(p.Range); ok {
				if overlaps(ranges, lo, hi) {
					fl.report(diag.SevWarning, diag.SemCfgUnreachablePattern, node.Origin, "unreachable pattern")
				}
				ranges = append(ranges, litRange{lo, hi})
			}
		case tir.PatCtor:
			ctorsSeen[p.Ctor.Ctor] = true
		}
	}
	if exhaustive {
		return
	}
	if dd, ok := fl.dataDefOfIrTy(subjectTy); ok {
		def := fl.Env.DataDefs.Get(dd).Data
		if def.CtorsKind == tir.CtorsDefined {
			n := fl.Env.CtorDefsSeq.Len(def.Ctors)
			if n > 0 {
				allCovered := true
				for i := 0; i < n; i++ {
					if !ctorsSeen[fl.Env.CtorDefsSeq.At(def.Ctors, i)] {
						allCovered = false
						break
					}
				}
				if allCovered {
					return
				}
			}
		}
	}
	fl.report(diag.SevError, diag.SemaNonexhaustiveMatch, fl.Env.Terms.Get(matchTerm).Origin, "match is not exhaustive")
}
