// Package format renders a parsed codebase for human or machine
// consumption. JSONEncoder here replaces the teacher's java.Class-
// specific encoder: it walks model.Package/model.Type/model.Callable
// instead of a single class file, since this parser's unit of output
// is a whole scanned tree, not one compiled class.
package format

import (
	"encoding/json"
	"io"

	"github.com/dhamidi/declscan/model"
)

// JSONEncoder renders the packages a codebase scan produced as
// indented JSON.
type JSONEncoder struct {
	w io.Writer
}

// NewJSONEncoder returns an encoder writing to w.
func NewJSONEncoder(w io.Writer) *JSONEncoder {
	return &JSONEncoder{w: w}
}

// Encode writes packages to the encoder's writer.
func (e *JSONEncoder) Encode(packages []*model.Package) error {
	text, err := e.MarshalPackages(packages)
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

// MarshalPackages renders packages as indented JSON without writing
// anything.
func (e *JSONEncoder) MarshalPackages(packages []*model.Package) ([]byte, error) {
	data := make([]jsonPackage, len(packages))
	for i, pkg := range packages {
		data[i] = buildPackageData(pkg)
	}
	return json.MarshalIndent(data, "", "  ")
}

type jsonPackage struct {
	Name      string         `json:"name"`
	Types     []jsonType     `json:"types,omitempty"`
	Functions []jsonCallable `json:"functions,omitempty"`
}

type jsonType struct {
	Name        string         `json:"name"`
	Kind        string         `json:"kind"`
	SourceFile  string         `json:"sourceFile"`
	StartLine   int            `json:"startLine"`
	EndLine     int            `json:"endLine"`
	Modifiers   []string       `json:"modifiers,omitempty"`
	Parent      string         `json:"parent,omitempty"`
	Interfaces  []string       `json:"interfaces,omitempty"`
	Properties  []jsonProperty `json:"properties,omitempty"`
	Constants   []jsonConstant `json:"constants,omitempty"`
	Methods     []jsonCallable `json:"methods,omitempty"`
}

type jsonProperty struct {
	Name      string   `json:"name"`
	Type      string   `json:"type,omitempty"`
	Modifiers []string `json:"modifiers,omitempty"`
	StartLine int      `json:"startLine"`
	EndLine   int       `json:"endLine"`
}

type jsonConstant struct {
	Name      string `json:"name"`
	StartLine int    `json:"startLine"`
	EndLine   int    `json:"endLine"`
}

type jsonCallable struct {
	Name        string          `json:"name,omitempty"`
	StartLine   int             `json:"startLine"`
	EndLine     int             `json:"endLine"`
	Modifiers   []string        `json:"modifiers,omitempty"`
	Parameters  []jsonParameter `json:"parameters,omitempty"`
	ReturnType  string          `json:"returnType,omitempty"`
	Dependencies []string       `json:"dependencies,omitempty"`
	Exceptions  []string        `json:"exceptions,omitempty"`
}

type jsonParameter struct {
	Name     string `json:"name"`
	Type     string `json:"type,omitempty"`
	ByRef    bool   `json:"byRef,omitempty"`
	Optional bool   `json:"optional,omitempty"`
}

func buildPackageData(pkg *model.Package) jsonPackage {
	data := jsonPackage{Name: pkg.QualifiedName}
	for _, t := range pkg.Types {
		data.Types = append(data.Types, buildTypeData(t))
	}
	for _, fn := range pkg.Functions {
		data.Functions = append(data.Functions, buildCallableData(fn))
	}
	return data
}

func buildTypeData(t *model.Type) jsonType {
	kind := "class"
	if t.IsInterface {
		kind = "interface"
	}
	data := jsonType{
		Name:       t.QualifiedName,
		Kind:       kind,
		SourceFile: t.SourceFile,
		StartLine:  t.StartLine,
		EndLine:    t.EndLine,
		Modifiers:  typeModifiers(t),
	}
	if t.Parent != nil {
		data.Parent = t.Parent.QualifiedName
	}
	for _, ref := range t.Interfaces {
		data.Interfaces = append(data.Interfaces, ref.QualifiedName)
	}
	for _, p := range t.Properties {
		data.Properties = append(data.Properties, buildPropertyData(p))
	}
	for _, c := range t.Constants {
		data.Constants = append(data.Constants, jsonConstant{
			Name: c.Name, StartLine: c.StartLine, EndLine: c.EndLine,
		})
	}
	for _, m := range t.Methods {
		data.Methods = append(data.Methods, buildCallableData(m))
	}
	return data
}

func typeModifiers(t *model.Type) []string {
	var mods []string
	if t.Modifiers.Has(model.Abstract) || t.Modifiers.Has(model.ExplicitAbstract) {
		mods = append(mods, "abstract")
	}
	if t.Modifiers.Has(model.Final) {
		mods = append(mods, "final")
	}
	return mods
}

func buildPropertyData(p *model.Property) jsonProperty {
	data := jsonProperty{
		Name:      p.Name,
		Modifiers: memberModifiers(p.Modifiers),
		StartLine: p.StartLine,
		EndLine:   p.EndLine,
	}
	if p.TypeRef != nil {
		data.Type = p.TypeRef.QualifiedName
	}
	return data
}

func buildCallableData(c *model.Callable) jsonCallable {
	data := jsonCallable{
		Name:      c.Name,
		StartLine: c.StartLine,
		EndLine:   c.EndLine,
		Modifiers: memberModifiers(c.Modifiers),
	}
	if c.ReturnType != nil {
		data.ReturnType = c.ReturnType.QualifiedName
	}
	for _, p := range c.Parameters {
		data.Parameters = append(data.Parameters, jsonParameter{
			Name:     p.Name,
			Type:     paramType(p),
			ByRef:    p.ByRef,
			Optional: p.Optional,
		})
	}
	for _, ref := range c.Dependencies {
		data.Dependencies = append(data.Dependencies, ref.QualifiedName)
	}
	for _, ref := range c.Exceptions {
		data.Exceptions = append(data.Exceptions, ref.QualifiedName)
	}
	return data
}

func paramType(p *model.Parameter) string {
	if p.TypeRef != nil {
		return p.TypeRef.QualifiedName
	}
	if p.ArrayHint {
		return "array"
	}
	return ""
}

func memberModifiers(m model.Modifier) []string {
	var mods []string
	if m.Has(model.Public) {
		mods = append(mods, "public")
	}
	if m.Has(model.Protected) {
		mods = append(mods, "protected")
	}
	if m.Has(model.Private) {
		mods = append(mods, "private")
	}
	if m.Has(model.Static) {
		mods = append(mods, "static")
	}
	if m.Has(model.Abstract) || m.Has(model.ExplicitAbstract) {
		mods = append(mods, "abstract")
	}
	if m.Has(model.Final) {
		mods = append(mods, "final")
	}
	return mods
}
