package tir

import "testing"

func TestParamIndexByName(t *testing.T) {
	env := NewEnv()

	xName := env.Idents.InternIdent("x")
	yName := env.Idents.InternIdent("y")
	xSym := env.Symbols.FromName(xName, Generated())
	ySym := env.Symbols.FromName(yName, Generated())

	params := env.Params.CreateFromIter([]Param{
		{Name: xSym, Ty: NoTyId, Default: NoTermId},
		{Name: ySym, Ty: NoTyId, Default: NoTermId},
	})

	idx, ok := env.ParamIndexByName(params, ySym)
	if !ok || idx != 1 {
		t.Fatalf("ParamIndexByName(y) = %d, %v; want 1, true", idx, ok)
	}

	zName := env.Idents.InternIdent("z")
	zSym := env.Symbols.FromName(zName, Generated())
	if _, ok := env.ParamIndexByName(params, zSym); ok {
		t.Fatalf("ParamIndexByName(z) should fail: z is not a parameter")
	}
}

func TestResolveArgByNameAndPosition(t *testing.T) {
	env := NewEnv()

	xSym := env.Symbols.FromName(env.Idents.InternIdent("x"), Generated())
	ySym := env.Symbols.FromName(env.Idents.InternIdent("y"), Generated())
	params := env.Params.CreateFromIter([]Param{
		{Name: xSym, Ty: NoTyId},
		{Name: ySym, Ty: NoTyId},
	})

	byName := Arg{Target: ArgTarget{Name: ySym}, Value: TermId(7)}
	p, idx, ok := env.ResolveArg(params, byName)
	if !ok || idx != 1 || p.Name != ySym {
		t.Fatalf("ResolveArg by name = %+v, %d, %v; want param y at index 1", p, idx, ok)
	}

	byPos := Arg{Target: ArgTarget{Position: 0}, Value: TermId(9)}
	p, idx, ok = env.ResolveArg(params, byPos)
	if !ok || idx != 0 || p.Name != xSym {
		t.Fatalf("ResolveArg by position = %+v, %d, %v; want param x at index 0", p, idx, ok)
	}
}

func TestLookupFieldIndexStruct(t *testing.T) {
	env := NewEnv()

	fieldA := env.Symbols.FromName(env.Idents.InternIdent("a"), Generated())
	fieldB := env.Symbols.FromName(env.Idents.InternIdent("b"), Generated())
	ctorParams := env.Params.CreateFromIter([]Param{
		{Name: fieldA, Ty: NoTyId},
		{Name: fieldB, Ty: NoTyId},
	})

	dataName := env.Symbols.FromName(env.Idents.InternIdent("Point"), Generated())
	ctor := env.CtorDefs.Create(CtorDef{
		Name:             env.Symbols.FromName(env.Idents.InternIdent("Point"), Generated()),
		DataDefCtorIndex: 0,
		Params:           ctorParams,
	}, Generated())
	ctorSeq := env.CtorDefsSeq.CreateFromIter([]CtorDefId{ctor})

	dataDef := env.DataDefs.Create(DataDef{
		Name:      dataName,
		CtorsKind: CtorsDefined,
		Ctors:     ctorSeq,
	}, Generated())
	env.CtorDefs.Modify(ctor, func(c *CtorDef) { c.DataDef = dataDef })

	idx, ok := env.LookupFieldIndex(dataDef, fieldB, 0, true)
	if !ok || idx != 1 {
		t.Fatalf("LookupFieldIndex(named b) = %d, %v; want 1, true", idx, ok)
	}

	idx, ok = env.LookupFieldIndex(dataDef, NoSymbolId, 0, false)
	if !ok || idx != 0 {
		t.Fatalf("LookupFieldIndex(numeric 0) = %d, %v; want 0, true", idx, ok)
	}
}

func TestAstInfoRoundtrip(t *testing.T) {
	info := NewAstInfo()
	ast := AstNodeId{Kind: 1, Index: 5}

	info.RecordTerm(ast, TermId(3))
	got, ok := info.TermOf(TermId(3))
	if !ok || got != ast {
		t.Fatalf("TermOf(3) = %+v, %v; want %+v, true", got, ok, ast)
	}

	if _, ok := info.TermOf(TermId(999)); ok {
		t.Fatalf("TermOf(999) should fail: no term was ever recorded under that id")
	}
}
