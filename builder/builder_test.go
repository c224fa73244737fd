package builder

import "testing"

func TestBuildClassInternsByName(t *testing.T) {
	g := New()
	a := g.BuildClass(`Foo\Bar`)
	b := g.BuildClass(`Foo\Bar`)
	if a != b {
		t.Fatalf("expected BuildClass to return the same pointer for the same name")
	}
}

func TestBuildInterfaceMarksIsInterface(t *testing.T) {
	g := New()
	iface := g.BuildInterface("I")
	if !iface.IsInterface {
		t.Fatalf("expected IsInterface to be true")
	}
}

func TestReferenceResolvesToEarlierDeclaration(t *testing.T) {
	g := New()
	g.BuildClass("Foo")
	ref := g.BuildClassReference("Foo")
	if ref.Resolved == nil {
		t.Fatalf("expected reference to resolve immediately against an already-declared class")
	}
}

func TestReferenceCreatedBeforeDeclarationResolvesOnSweep(t *testing.T) {
	g := New()
	ref := g.BuildClassReference("Foo")
	if ref.Resolved != nil {
		t.Fatalf("expected unresolved reference before Foo is declared")
	}

	foo := g.BuildClass("Foo")
	g.ResolveReferences()

	if ref.Resolved != foo {
		t.Fatalf("expected ResolveReferences to unify the earlier reference with the later declaration")
	}
}

func TestBuildMethodReturnsFreshNodeEveryCall(t *testing.T) {
	g := New()
	a := g.BuildMethod("getName")
	b := g.BuildMethod("getName")
	if a == b {
		t.Fatalf("expected BuildMethod to return a fresh node per call, not intern by bare name")
	}
}

func TestBuildPropertyAndParameterAreFresh(t *testing.T) {
	g := New()
	if g.BuildProperty("x") == g.BuildProperty("x") {
		t.Fatalf("expected fresh Property nodes")
	}
	if g.BuildParameter("x") == g.BuildParameter("x") {
		t.Fatalf("expected fresh Parameter nodes")
	}
}

func TestBuildFunctionInterns(t *testing.T) {
	g := New()
	a := g.BuildFunction("f")
	b := g.BuildFunction("f")
	if a != b {
		t.Fatalf("expected BuildFunction to intern by name")
	}
}

func TestBuildPackageInterns(t *testing.T) {
	g := New()
	a := g.BuildPackage(`A\B`)
	b := g.BuildPackage(`A\B`)
	if a != b {
		t.Fatalf("expected BuildPackage to intern by name")
	}
	if len(g.AllPackages()) != 1 {
		t.Fatalf("expected exactly one registered package")
	}
}

func TestResolveReferencesWalksMethodsAndParameters(t *testing.T) {
	g := New()
	typ := g.BuildClass("C")
	method := g.BuildMethod("m")
	method.ReturnType = g.BuildClassReference("R")
	param := g.BuildParameter("p")
	param.TypeRef = g.BuildClassReference("P")
	method.Parameters = append(method.Parameters, param)
	typ.Methods = append(typ.Methods, method)

	g.BuildClass("R")
	g.BuildClass("P")
	g.ResolveReferences()

	if method.ReturnType.Resolved == nil {
		t.Errorf("expected method return type to resolve")
	}
	if param.TypeRef.Resolved == nil {
		t.Errorf("expected parameter type to resolve")
	}
}
