package lower

import (
	"corec/internal/ast"
	"corec/internal/diag"
	"corec/internal/tir"
)

// lowerPattern lowers a pattern to a PatId (spec.md §4.6.5, §3.3's Pat).
// This AST has no dedicated pattern tree (internal/semcheck.checkPattern's
// grounding note): a pattern is an ExprID reusing ordinary expression
// shapes — ExprIdent for a binding or wildcard, ExprLit for a literal,
// ExprTuple/ExprArray for compound patterns (with ExprSpread marking a
// `..rest`), and ExprCall(ctorName, args) for a constructor pattern.
func (l *Lowerer) lowerPattern(id ast.ExprID) tir.PatId {
	origin := tir.Given(l.nodeOf(ast.NodeKindExpr, uint32(id)))
	if !id.IsValid() {
		return l.Env.Pats.Create(tir.Pat{Kind: tir.PatWildcard}, tir.Generated())
	}
	expr := l.Builder.Exprs.Get(id)
	if expr == nil {
		return l.Env.Pats.Create(tir.Pat{Kind: tir.PatWildcard}, tir.Generated())
	}

	switch expr.Kind {
	case ast.ExprIdent:
		data, ok := l.Builder.Exprs.Ident(id)
		if !ok {
			break
		}
		if text, ok := l.Builder.StringsInterner.Lookup(data.Name); ok && text == "_" {
			return l.Env.Pats.Create(tir.Pat{Kind: tir.PatWildcard}, origin)
		}
		// A bare identifier naming a known nullary constructor (e.g. `None`
		// in a match arm) is a ctor pattern, not a fresh binding.
		if sym, ok := l.resolve(data.Name); ok {
			if ctor, ok := l.ctorSymbols[sym]; ok {
				return l.Env.Pats.Create(tir.Pat{Kind: tir.PatCtor, Ctor: tir.CtorPat{Ctor: ctor}}, origin)
			}
		}
		sym := l.newSymbol(data.Name, origin)
		l.bind(data.Name, sym)
		return l.Env.Pats.Create(tir.Pat{Kind: tir.PatBinding, Binding: tir.BindingPat{Sym: sym}}, origin)

	case ast.ExprLit:
		data, ok := l.Builder.Exprs.Literal(id)
		if !ok {
			break
		}
		return l.Env.Pats.Create(tir.Pat{Kind: tir.PatLit, Lit: tir.LitPat{Lit: l.lowerLit(data)}}, origin)

	case ast.ExprTuple:
		data, ok := l.Builder.Exprs.Tuple(id)
		if !ok {
			break
		}
		args := make([]tir.PatArg, 0, len(data.Elements))
		for i, el := range data.Elements {
			if elExpr := l.Builder.Exprs.Get(el); elExpr != nil && elExpr.Kind == ast.ExprSpread {
				l.report(diag.SevError, diag.SemLowerUnsupportedPat, elExpr.Span, "spread is not allowed in a tuple pattern")
				continue
			}
			args = append(args, tir.PatArg{Target: tir.ArgTarget{Position: uint32(i)}, Value: l.lowerPattern(el)})
		}
		return l.Env.Pats.Create(tir.Pat{Kind: tir.PatTuple, Tuple: tir.TuplePat{Args: l.Env.PatArgs.CreateFromIter(args)}}, origin)

	case ast.ExprArray:
		data, ok := l.Builder.Exprs.Array(id)
		if !ok {
			break
		}
		return l.Env.Pats.Create(tir.Pat{Kind: tir.PatList, List: l.lowerListPatArgs(data.Elements)}, origin)

	case ast.ExprSpread:
		// A bare spread outside a compound pattern (shouldn't normally
		// parse this way); lower its inner as a best-effort fallback.
		data, ok := l.Builder.Exprs.Spread(id)
		if !ok {
			break
		}
		return l.lowerPattern(data.Value)

	case ast.ExprCall:
		return l.lowerCtorPattern(id, expr, origin)
	}

	l.report(diag.SevError, diag.SemLowerUnsupportedPat, expr.Span, "unsupported pattern form")
	return l.Env.Pats.Create(tir.Pat{Kind: tir.PatWildcard}, origin)
}

// lowerListPatArgs lowers an array pattern's elements into a ListPat,
// recognising at most one ExprSpread as the `..rest` collector.
func (l *Lowerer) lowerListPatArgs(elements []ast.ExprID) tir.ListPat {
	var args []tir.PatArg
	spread := tir.Spread{}
	for _, el := range elements {
		elExpr := l.Builder.Exprs.Get(el)
		if elExpr != nil && elExpr.Kind == ast.ExprSpread {
			data, ok := l.Builder.Exprs.Spread(el)
			if !ok {
				continue
			}
			spread.IsSet = true
			if data.Value.IsValid() {
				if identData, ok := l.Builder.Exprs.Ident(data.Value); ok {
					sym := l.newSymbol(identData.Name, tir.Given(l.nodeOf(ast.NodeKindExpr, uint32(data.Value))))
					l.bind(identData.Name, sym)
					spread.Sym = sym
				}
			}
			continue
		}
		args = append(args, tir.PatArg{Target: tir.ArgTarget{Position: uint32(len(args))}, Value: l.lowerPattern(el)})
	}
	return tir.ListPat{Args: l.Env.PatArgs.CreateFromIter(args), Spread: spread}
}

// lowerCtorPattern lowers `Name(arg, ...)` as a constructor pattern: Name
// must resolve to a symbol bound to a CtorDefId (a union tag, enum
// variant, or the built-in Some/Ok/Err/None).
func (l *Lowerer) lowerCtorPattern(id ast.ExprID, expr *ast.Expr, origin tir.NodeOrigin) tir.PatId {
	data, ok := l.Builder.Exprs.Call(id)
	if !ok {
		l.report(diag.SevError, diag.SemLowerUnsupportedPat, expr.Span, "unsupported pattern form")
		return l.Env.Pats.Create(tir.Pat{Kind: tir.PatWildcard}, origin)
	}
	targetIdent, ok := l.Builder.Exprs.Ident(data.Target)
	if !ok {
		l.report(diag.SevError, diag.SemLowerUnsupportedPat, expr.Span, "constructor pattern target must be a bare name")
		return l.Env.Pats.Create(tir.Pat{Kind: tir.PatWildcard}, origin)
	}
	sym, ok := l.resolve(targetIdent.Name)
	var ctor tir.CtorDefId
	if ok {
		ctor, ok = l.ctorSymbols[sym]
	}
	if !ok {
		l.report(diag.SevError, diag.SemLowerNotATypeName, expr.Span, "name does not refer to a constructor")
		return l.Env.Pats.Create(tir.Pat{Kind: tir.PatWildcard}, origin)
	}

	args := make([]tir.PatArg, len(data.Args))
	for i, a := range data.Args {
		args[i] = tir.PatArg{Target: tir.ArgTarget{Position: uint32(i)}, Value: l.lowerPattern(a)}
	}
	return l.Env.Pats.Create(tir.Pat{Kind: tir.PatCtor, Ctor: tir.CtorPat{
		Ctor: ctor,
		Args: l.Env.PatArgs.CreateFromIter(args),
	}}, origin)
}
