package catalog

import "testing"

func findingKinds(findings []Finding) map[FindingKind]int {
	kinds := map[FindingKind]int{}
	for _, f := range findings {
		kinds[f.Kind]++
	}
	return kinds
}

func TestValidateCleanCatalog(t *testing.T) {
	c := testCatalog(t)
	if findings := c.Validate(); len(findings) != 0 {
		t.Fatalf("clean catalog produced findings: %v", findings)
	}
}

func TestValidateUnknownSupertype(t *testing.T) {
	c, err := New([]*Declaration{
		{Name: "Lonely", Supertypes: []string{"Ghost"}},
	})
	if err != nil {
		t.Fatal(err)
	}

	findings := c.Validate()
	if len(findings) != 1 {
		t.Fatalf("findings = %v, want exactly one", findings)
	}
	f := findings[0]
	if f.Kind != FindingUnknownSupertype || f.Type != "Lonely" || f.Ref != "Ghost" {
		t.Errorf("finding = %+v", f)
	}
}

func TestValidateDanglingRefs(t *testing.T) {
	c, err := New([]*Declaration{
		{
			Name: "Holder",
			Attrs: map[string]Attribute{
				"thing":    {Type: Named("Missing")},
				"things":   {Type: CollectionOf(WrapList, Named("Missing"))},
				"lookup":   {Type: DictOf(Prim(PrimStr), Named("AlsoMissing"))},
				"either":   {Type: UnionOf(Named("Missing"), Prim(PrimInt))},
				"fine":     {Type: Prim(PrimInt)},
				"fineEnum": {Type: EnumOf("A", "B")},
			},
			Methods: []Method{
				{Name: "take", Kind: MethodInstance, Params: []Param{
					{Name: "value", Type: Named("Missing")},
				}, Return: Named("AlsoMissing")},
			},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	findings := c.Validate()
	kinds := findingKinds(findings)
	if kinds[FindingUnknownType] != 6 {
		t.Fatalf("unknown-type findings = %d (%v), want 6", kinds[FindingUnknownType], findings)
	}
}

func TestValidateNamedCollectionWrap(t *testing.T) {
	decls := []*Declaration{
		{Name: "Modifier"},
		{Name: "Object", Attrs: map[string]Attribute{
			"modifiers": {Type: CollectionOf("ObjectModifiers", Named("Modifier"))},
		}},
	}
	c, err := New(decls)
	if err != nil {
		t.Fatal(err)
	}

	// The named collection class itself is undeclared: one finding.
	findings := c.Validate()
	if len(findings) != 1 || findings[0].Kind != FindingUnknownType || findings[0].Ref != "ObjectModifiers" {
		t.Fatalf("findings = %v", findings)
	}

	// Declaring it clears the finding.
	decls = append(decls, &Declaration{Name: "ObjectModifiers", Supertypes: []string{"bpy_struct"}})
	decls = append(decls, &Declaration{Name: "bpy_struct"})
	c, err = New(decls)
	if err != nil {
		t.Fatal(err)
	}
	if findings := c.Validate(); len(findings) != 0 {
		t.Fatalf("findings after declaring wrap = %v", findings)
	}
}

func TestValidateSupertypeCycle(t *testing.T) {
	c, err := New([]*Declaration{
		{Name: "A", Supertypes: []string{"B"}},
		{Name: "B", Supertypes: []string{"C"}},
		{Name: "C", Supertypes: []string{"A"}},
		{Name: "Outside", Supertypes: []string{"A"}},
	})
	if err != nil {
		t.Fatal(err)
	}

	findings := c.Validate()
	kinds := findingKinds(findings)
	if kinds[FindingSupertypeCycle] != 3 {
		t.Fatalf("cycle findings = %d (%v), want the three cycle members", kinds[FindingSupertypeCycle], findings)
	}
	for _, f := range findings {
		if f.Kind == FindingSupertypeCycle && f.Type == "Outside" {
			t.Errorf("Outside only inherits from the cycle, it is not part of it: %v", f)
		}
	}
}

func TestValidateDuplicateMethods(t *testing.T) {
	c, err := New([]*Declaration{
		{Name: "T", Methods: []Method{
			{Name: "dup", Kind: MethodInstance, Return: None()},
			{Name: "dup", Kind: MethodInstance, Return: None()},
			{Name: "over", Kind: MethodInstance, Return: Prim(PrimInt), Overload: true},
			{Name: "over", Kind: MethodInstance, Return: Prim(PrimStr), Overload: true},
		}},
	})
	if err != nil {
		t.Fatal(err)
	}

	findings := c.Validate()
	kinds := findingKinds(findings)
	if kinds[FindingDuplicateMethod] != 1 {
		t.Fatalf("duplicate-method findings = %d (%v), want 1", kinds[FindingDuplicateMethod], findings)
	}
}

func TestValidateVectorElement(t *testing.T) {
	c, err := New([]*Declaration{
		{Name: "T", Attrs: map[string]Attribute{
			"ok":  {Type: VectorOf(Prim(PrimFloat), 3)},
			"bad": {Type: VectorOf(Prim(PrimStr), 2)},
		}},
	})
	if err != nil {
		t.Fatal(err)
	}

	findings := c.Validate()
	if len(findings) != 1 || findings[0].Kind != FindingInvalidVector || findings[0].Member != "bad" {
		t.Fatalf("findings = %v", findings)
	}
}
