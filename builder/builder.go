// Package builder provides Graph, a concrete, in-memory implementation
// of declparser.Builder. It interns classes, interfaces, top-level
// functions and packages by their qualified/given name, and records
// every reference it creates so ResolveReferences can unify a reference
// made while parsing one file with the declaration of the same name
// parsed in another file later — the
// forward-reference tolerance declparser.Parser depends on but never
// implements itself.
//
// Grounded on the teacher's java/codebase/codebase.go aggregation and
// java/resolve.go's post-hoc inner-class fixup, generalized here from a
// single-pass-then-fixup strategy to live map-based interning.
package builder

import (
	"sync"

	"github.com/dhamidi/declscan/model"
)

// Graph is a thread-safe, append-only registry of every declaration a
// set of parser runs has produced.
type Graph struct {
	mu sync.Mutex

	types     map[string]*model.Type
	functions map[string]*model.Callable
	packages  map[string]*model.Package
	refs      []*model.TypeReference
}

// New returns an empty Graph.
func New() *Graph {
	return &Graph{
		types:     make(map[string]*model.Type),
		functions: make(map[string]*model.Callable),
		packages:  make(map[string]*model.Package),
	}
}

func (g *Graph) typeFor(fqn string, isInterface bool) *model.Type {
	g.mu.Lock()
	defer g.mu.Unlock()
	if t, ok := g.types[fqn]; ok {
		return t
	}
	t := &model.Type{QualifiedName: fqn, IsInterface: isInterface}
	g.types[fqn] = t
	return t
}

// BuildClass returns the Type for fqn, creating it on first reference.
func (g *Graph) BuildClass(fqn string) *model.Type {
	return g.typeFor(fqn, false)
}

// BuildInterface returns the Type for fqn, creating it on first
// reference and marking it an interface if newly created.
func (g *Graph) BuildInterface(fqn string) *model.Type {
	t := g.typeFor(fqn, true)
	return t
}

func (g *Graph) referenceFor(fqn string, interfaceOnly bool) *model.TypeReference {
	g.mu.Lock()
	defer g.mu.Unlock()
	ref := &model.TypeReference{QualifiedName: fqn, IsInterfaceOnly: interfaceOnly}
	if t, ok := g.types[fqn]; ok {
		ref.Resolved = t
	}
	g.refs = append(g.refs, ref)
	return ref
}

// BuildClassReference returns a reference to the class named fqn. If a
// Type with that name already exists (declared in an earlier file), the
// reference's Resolved field is set immediately; otherwise it is set by
// a later ResolveReferences call once a matching Type has been built.
func (g *Graph) BuildClassReference(fqn string) *model.TypeReference {
	return g.referenceFor(fqn, false)
}

// BuildInterfaceReference is BuildClassReference restricted to
// interfaces by convention; the underlying Type is shared regardless of
// which reference kind observed it first.
func (g *Graph) BuildInterfaceReference(fqn string) *model.TypeReference {
	return g.referenceFor(fqn, true)
}

// BuildClassOrInterfaceReference returns a reference that accepts either
// a class or an interface declaration as its resolution.
func (g *Graph) BuildClassOrInterfaceReference(fqn string) *model.TypeReference {
	return g.referenceFor(fqn, false)
}

// BuildFunction returns the top-level function named name, creating it
// on first reference.
func (g *Graph) BuildFunction(name string) *model.Callable {
	g.mu.Lock()
	defer g.mu.Unlock()
	if fn, ok := g.functions[name]; ok {
		return fn
	}
	fn := &model.Callable{Name: name, Kind: model.KindFunction}
	g.functions[name] = fn
	return fn
}

// BuildMethod returns a fresh Callable for a method declaration. Methods
// are scoped to the type body that declares them, so they carry no
// cross-file identity to intern against.
func (g *Graph) BuildMethod(name string) *model.Callable {
	return &model.Callable{Name: name, Kind: model.KindMethod}
}

// BuildClosure returns a fresh, anonymous Callable.
func (g *Graph) BuildClosure() *model.Callable {
	return &model.Callable{Kind: model.KindClosure}
}

// BuildProperty returns a fresh Property for a member variable
// declaration.
func (g *Graph) BuildProperty(name string) *model.Property {
	return &model.Property{Name: name}
}

// BuildParameter returns a fresh Parameter.
func (g *Graph) BuildParameter(name string) *model.Parameter {
	return &model.Parameter{Name: name}
}

// BuildTypeConstant returns a fresh Constant.
func (g *Graph) BuildTypeConstant(name string) *model.Constant {
	return &model.Constant{Name: name}
}

// BuildPackage returns the Package named fqn, creating it on first
// reference.
func (g *Graph) BuildPackage(fqn string) *model.Package {
	g.mu.Lock()
	defer g.mu.Unlock()
	if pkg, ok := g.packages[fqn]; ok {
		return pkg
	}
	pkg := &model.Package{QualifiedName: fqn}
	g.packages[fqn] = pkg
	return pkg
}

// AllPackages returns every package registered so far.
func (g *Graph) AllPackages() []*model.Package {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*model.Package, 0, len(g.packages))
	for _, pkg := range g.packages {
		out = append(out, pkg)
	}
	return out
}

// FindType looks up a previously built class or interface by qualified
// name.
func (g *Graph) FindType(fqn string) (*model.Type, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	t, ok := g.types[fqn]
	return t, ok
}

// ResolveReferences walks every reference the Graph has handed out, and
// every reference held by every known type and top-level function, and
// sets Resolved to the matching Type, if one has since been
// declared. Call this once all files in a batch have been parsed so
// references created before their target's declaration was seen are
// unified with it.
func (g *Graph) ResolveReferences() {
	g.mu.Lock()
	defer g.mu.Unlock()

	resolve := func(ref *model.TypeReference) {
		if ref == nil || ref.Resolved != nil {
			return
		}
		if t, ok := g.types[ref.QualifiedName]; ok {
			ref.Resolved = t
		}
	}

	resolveCallable := func(c *model.Callable) {
		if c == nil {
			return
		}
		for _, dep := range c.Dependencies {
			resolve(dep)
		}
		for _, exc := range c.Exceptions {
			resolve(exc)
		}
		resolve(c.ReturnType)
		for _, param := range c.Parameters {
			resolve(param.TypeRef)
		}
	}

	for _, t := range g.types {
		resolve(t.Parent)
		for _, ref := range t.Interfaces {
			resolve(ref)
		}
		for _, prop := range t.Properties {
			resolve(prop.TypeRef)
		}
		for _, m := range t.Methods {
			resolveCallable(m)
		}
	}
	for _, fn := range g.functions {
		resolveCallable(fn)
	}
	for _, ref := range g.refs {
		resolve(ref)
	}
}
