// Package model defines the declaration nodes the declaration parser
// populates through the builder contract: packages, types, callables,
// parameters, properties, constants and default values.
//
// These nodes are opaque to the parser in the sense that the parser never
// constructs them directly — it asks a declparser.Builder for one and then
// mutates the attributes listed here. The struct shapes below are the
// concrete type the reference builder (package builder) returns, grounded
// on the teacher's java.ClassModel/MethodModel family adapted from Java's
// class-file attributes to declaration-parser attributes.
package model

import "github.com/dhamidi/declscan/token"

// Modifier is a bitset over the access/scope flags a declaration carries.
type Modifier uint

const (
	Public Modifier = 1 << iota
	Protected
	Private
	Static
	Abstract
	ExplicitAbstract
	Final
)

func (m Modifier) Has(flag Modifier) bool { return m&flag != 0 }

// Set raises flag, clearing Public whenever Private or Protected is raised.
func (m Modifier) Set(flag Modifier) Modifier {
	m |= flag
	if flag == Private || flag == Protected {
		m &^= Public
	}
	return m
}

// DefaultPackage is the fallback package name used when no @package
// annotation and no namespace declaration is in effect.
const DefaultPackage = "+global"

// PackageSeparator joins legacy @package/@subpackage fragments.
const PackageSeparator = "::"

// NamespaceSeparator joins namespace fragments.
const NamespaceSeparator = "\\"

// Type is a class or interface declaration.
type Type struct {
	QualifiedName   string
	SourceFile      string
	StartLine       int
	EndLine         int
	Modifiers       Modifier
	DocComment      string
	IsInterface     bool
	UserDefined     bool
	Parent          *TypeReference
	Interfaces      []*TypeReference
	Methods         []*Callable
	Properties      []*Property
	Constants       []*Constant
	Span            token.Span
}

// TypeReference is a lazily-resolved pointer to a Type, created by the
// builder and possibly unified later with a declaration of the same
// qualified name parsed in another file.
type TypeReference struct {
	QualifiedName   string
	IsInterfaceOnly bool
	Resolved        *Type
}

// CallableKind distinguishes function, method and closure declarations.
type CallableKind int

const (
	KindFunction CallableKind = iota
	KindMethod
	KindClosure
)

// Callable is a function, method, or closure declaration.
type Callable struct {
	Kind               CallableKind
	Name               string // empty for closures
	DocComment         string
	StartLine          int
	EndLine            int
	SourceFile         string
	Modifiers          Modifier // methods only
	Parameters         []*Parameter
	ReturnsByReference bool
	Dependencies       []*TypeReference // class/interface refs from the body
	Exceptions         []*TypeReference // from @throws and catch()
	ReturnType         *TypeReference   // from @return
	BoundVariables     []BoundVariable  // closures only
	Span               token.Span
}

// BoundVariable is one entry of a closure's use(...) list.
type BoundVariable struct {
	Name      string
	ByRef     bool
}

// Parameter is one entry of a callable's parameter list.
type Parameter struct {
	Name       string
	Position   int
	ByRef      bool
	ArrayHint  bool
	TypeRef    *TypeReference
	Default    *Value
	Optional   bool
}

// Property is a class member variable declaration.
type Property struct {
	Name       string
	DocComment string
	Modifiers  Modifier
	StartLine  int
	EndLine    int
	SourceFile string
	TypeRef    *TypeReference // from @var
}

// Constant is a class constant declaration.
type Constant struct {
	Name       string
	DocComment string
	StartLine  int
	EndLine    int
	SourceFile string
	Value      *Value
}

// ValueKind tags the payload a Value carries.
type ValueKind int

const (
	ValueNull ValueKind = iota
	ValueBool
	ValueInt
	ValueDouble
	ValueString
	ValueArray
	ValueUnresolved
)

// Value is a default-value holder for parameters and constants.
type Value struct {
	Available bool
	Kind      ValueKind
	Bool      bool
	Int       int64
	Double    float64
	String    string
}

// Package collects the top-level functions and types declared under one
// qualified package/namespace name.
type Package struct {
	QualifiedName string
	Functions     []*Callable
	Types         []*Type
}
