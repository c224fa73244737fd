package declparser

import (
	"testing"

	"github.com/dhamidi/declscan/builder"
	"github.com/dhamidi/declscan/lexer"
	"github.com/dhamidi/declscan/model"
)

func mustParse(t *testing.T, src string) *builder.Graph {
	t.Helper()
	g := builder.New()
	p := New(lexer.New([]byte(src), "test.php"), g)
	if err := p.Parse(); err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	return g
}

func findFunction(g *builder.Graph, pkgName, name string) *model.Callable {
	for _, pkg := range g.AllPackages() {
		if pkg.QualifiedName != pkgName {
			continue
		}
		for _, fn := range pkg.Functions {
			if fn.Name == name {
				return fn
			}
		}
	}
	return nil
}

// S1 — package fallback.
func TestScenarioPackageFallback(t *testing.T) {
	g := mustParse(t, "<?php /** @package Foo */ function f(){}")
	if fn := findFunction(g, "Foo", "f"); fn == nil {
		t.Fatalf("expected function f under package Foo")
	}
}

// S2 — namespace dominates @package.
func TestScenarioNamespaceDominates(t *testing.T) {
	g := mustParse(t, "<?php /** @package Foo */ namespace A\\B; function f(){}")
	if fn := findFunction(g, `A\B`, "f"); fn == nil {
		t.Fatalf(`expected function f under package A\B`)
	}
	if findFunction(g, "Foo", "f") != nil {
		t.Fatalf("function f should not be under package Foo once a namespace is active")
	}
}

// S3 — use-alias resolution.
func TestScenarioUseAlias(t *testing.T) {
	g := mustParse(t, `<?php namespace X; use Y\Z as Q; class C extends Q\W {}`)
	typ, ok := g.FindType(`X\C`)
	if !ok {
		t.Fatalf(`expected class X\C`)
	}
	if typ.Parent == nil || typ.Parent.QualifiedName != `Y\Z\W` {
		t.Fatalf(`expected parent reference Y\Z\W, got %+v`, typ.Parent)
	}
}

// S4 — implements list + interface extends.
func TestScenarioImplementsAndExtends(t *testing.T) {
	g := mustParse(t, `<?php interface I extends J, K {} class C implements I, L {}`)
	iface, ok := g.FindType(model.DefaultPackage + "::I")
	if !ok {
		t.Fatalf("expected interface I")
	}
	if len(iface.Interfaces) != 2 || iface.Interfaces[0].QualifiedName != "J" || iface.Interfaces[1].QualifiedName != "K" {
		t.Fatalf("expected I to extend J, K; got %+v", iface.Interfaces)
	}

	class, ok := g.FindType(model.DefaultPackage + "::C")
	if !ok {
		t.Fatalf("expected class C")
	}
	if len(class.Interfaces) != 2 || class.Interfaces[0].QualifiedName != "I" || class.Interfaces[1].QualifiedName != "L" {
		t.Fatalf("expected C to implement I, L; got %+v", class.Interfaces)
	}
}

// S5 — trailing optional parameters.
func TestScenarioTrailingOptional(t *testing.T) {
	g := mustParse(t, "<?php function f($a, $b = 1, $c){}")
	fn := findFunction(g, model.DefaultPackage, "f")
	if fn == nil {
		t.Fatalf("expected function f")
	}
	if len(fn.Parameters) != 3 {
		t.Fatalf("expected 3 parameters, got %d", len(fn.Parameters))
	}
	for i, p := range fn.Parameters {
		if p.Optional {
			t.Errorf("parameter %d (%s): expected optional=false, got true", i, p.Name)
		}
	}
}

// S6 — body reference extraction.
func TestScenarioBodyReferences(t *testing.T) {
	g := mustParse(t, `<?php function f(){ new A\B(); $x instanceof C; try{} catch(D $e){} E::X; "$y"; }`)
	fn := findFunction(g, model.DefaultPackage, "f")
	if fn == nil {
		t.Fatalf("expected function f")
	}
	got := map[string]bool{}
	for _, ref := range fn.Dependencies {
		got[ref.QualifiedName] = true
	}
	for _, ref := range fn.Exceptions {
		got[ref.QualifiedName] = true
	}
	want := []string{`A\B`, "C", "D", "E"}
	for _, name := range want {
		if !got[name] {
			t.Errorf("expected dependency %s, got %v", name, got)
		}
	}
	if len(got) != len(want) {
		t.Errorf("expected exactly %v, got %v", want, got)
	}
}

// S7 — inline @var.
func TestScenarioInlineVar(t *testing.T) {
	g := mustParse(t, `<?php function f(){ /* @var $o Foo\Bar */ $o->m(); }`)
	fn := findFunction(g, model.DefaultPackage, "f")
	if fn == nil {
		t.Fatalf("expected function f")
	}
	found := false
	for _, ref := range fn.Dependencies {
		if ref.QualifiedName == `Foo\Bar` {
			found = true
		}
	}
	if !found {
		t.Fatalf(`expected dependency Foo\Bar, got %+v`, fn.Dependencies)
	}
}

// Universal property 1: startLine <= endLine, both > 0.
func TestPropertyLineRange(t *testing.T) {
	g := mustParse(t, "<?php class C { function m(){ $x = 1; } }")
	typ, _ := g.FindType(model.DefaultPackage + "::C")
	if typ.StartLine <= 0 || typ.EndLine <= 0 || typ.StartLine > typ.EndLine {
		t.Fatalf("invalid type line range: %d..%d", typ.StartLine, typ.EndLine)
	}
	for _, m := range typ.Methods {
		if m.StartLine <= 0 || m.EndLine <= 0 || m.StartLine > m.EndLine {
			t.Fatalf("invalid method line range: %d..%d", m.StartLine, m.EndLine)
		}
	}
}

// Universal property 4: scalar @var/@return never produce a reference.
func TestPropertyScalarAnnotationsIgnored(t *testing.T) {
	g := mustParse(t, "<?php class C { /** @var int */ $x; }")
	typ, _ := g.FindType(model.DefaultPackage + "::C")
	if len(typ.Properties) != 1 {
		t.Fatalf("expected one property")
	}
	if typ.Properties[0].TypeRef != nil {
		t.Fatalf("expected no type reference for scalar @var, got %+v", typ.Properties[0].TypeRef)
	}
}

// Universal property 5: @throws extraction yields exactly the multiset
// of occurrences in the comment text.
func TestPropertyThrowsMultiset(t *testing.T) {
	g := mustParse(t, "<?php /** @throws IOException\n * @throws IOException\n * @throws RuntimeException\n */\nfunction f(){}")
	fn := findFunction(g, model.DefaultPackage, "f")
	counts := map[string]int{}
	for _, ref := range fn.Exceptions {
		counts[ref.QualifiedName]++
	}
	if counts["IOException"] != 2 || counts["RuntimeException"] != 1 {
		t.Fatalf("unexpected @throws multiset: %v", counts)
	}
}

// Universal property 7: two independent parsers over the same token
// stream produce structurally-equal declaration graphs.
func TestPropertyDeterministic(t *testing.T) {
	src := `<?php namespace A; class C extends B implements I { function m($x, $y = 1){ return $x; } }`
	g1 := mustParse(t, src)
	g2 := mustParse(t, src)

	t1, ok1 := g1.FindType(`A\C`)
	t2, ok2 := g2.FindType(`A\C`)
	if !ok1 || !ok2 {
		t.Fatalf("expected class A\\C in both graphs")
	}
	if len(t1.Methods) != len(t2.Methods) {
		t.Fatalf("method count differs: %d vs %d", len(t1.Methods), len(t2.Methods))
	}
	if t1.Parent.QualifiedName != t2.Parent.QualifiedName {
		t.Fatalf("parent reference differs: %s vs %s", t1.Parent.QualifiedName, t2.Parent.QualifiedName)
	}
}

func TestIgnoreAnnotations(t *testing.T) {
	g := builder.New()
	p := New(lexer.New([]byte("<?php /** @throws E */ function f(){}"), "test.php"), g, WithIgnoreAnnotations())
	if err := p.Parse(); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	fn := findFunction(g, model.DefaultPackage, "f")
	if fn == nil {
		t.Fatalf("expected function f")
	}
	if len(fn.Exceptions) != 0 {
		t.Fatalf("expected no exceptions with ignore_annotations, got %+v", fn.Exceptions)
	}
}

func TestMissingValueError(t *testing.T) {
	g := builder.New()
	p := New(lexer.New([]byte("<?php class C { const X = ; }"), "test.php"), g)
	err := p.Parse()
	if err == nil {
		t.Fatalf("expected an error")
	}
	if _, ok := err.(*MissingValueError); !ok {
		t.Fatalf("expected *MissingValueError, got %T: %v", err, err)
	}
}

func TestUnexpectedTokenError(t *testing.T) {
	g := builder.New()
	p := New(lexer.New([]byte("<?php class 123 {}"), "test.php"), g)
	err := p.Parse()
	if err == nil {
		t.Fatalf("expected an error")
	}
	if _, ok := err.(*UnexpectedTokenError); !ok {
		t.Fatalf("expected *UnexpectedTokenError, got %T: %v", err, err)
	}
}

func TestTokenStreamEndError(t *testing.T) {
	g := builder.New()
	p := New(lexer.New([]byte("<?php class C { function f() {"), "test.php"), g)
	err := p.Parse()
	if err == nil {
		t.Fatalf("expected an error")
	}
	if _, ok := err.(*TokenStreamEndError); !ok {
		t.Fatalf("expected *TokenStreamEndError, got %T: %v", err, err)
	}
}
