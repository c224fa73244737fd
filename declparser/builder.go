package declparser

import "github.com/dhamidi/declscan/model"

// Builder is the externally supplied factory the parser calls to
// materialise declarations and references. Every build_* operation is
// idempotent by qualified/given name: repeated calls for the same name
// return the same logical node, so a reference created before its
// declaration is encountered is unified with that later declaration.
//
// The parser never constructs model nodes itself; it only asks a
// Builder for one and mutates the attributes the grammar populates.
type Builder interface {
	BuildClass(fqn string) *model.Type
	BuildInterface(fqn string) *model.Type
	BuildClassReference(fqn string) *model.TypeReference
	BuildInterfaceReference(fqn string) *model.TypeReference
	BuildClassOrInterfaceReference(fqn string) *model.TypeReference
	BuildFunction(name string) *model.Callable
	BuildMethod(name string) *model.Callable
	BuildClosure() *model.Callable
	BuildProperty(name string) *model.Property
	BuildParameter(name string) *model.Parameter
	BuildTypeConstant(name string) *model.Constant
	BuildPackage(fqn string) *model.Package
}
