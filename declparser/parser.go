// Package declparser implements the recursive-descent declaration parser:
// given a token.Tokenizer and a Builder, it walks a source file's token
// stream and materialises packages, types, callables, properties,
// constants and their cross-references.
//
// The parser is strictly single-threaded and non-reentrant: one Parse
// call fully consumes one file's tokens and returns synchronously. All
// three error kinds it can return are non-recoverable — they abort the
// current file; there is no local retry.
package declparser

import (
	"strings"

	"github.com/dhamidi/declscan/model"
	"github.com/dhamidi/declscan/token"
)

// Option configures a Parser at construction time.
type Option func(*Parser)

// WithIgnoreAnnotations suppresses all doc-comment-derived reference
// extraction (§4.7): @throws/@return on callables, @var on properties,
// and inline @var references inside callable bodies.
func WithIgnoreAnnotations() Option {
	return func(p *Parser) { p.ignoreAnnotations = true }
}

// Parser is the recursive-descent declaration parser described by C1-C7.
type Parser struct {
	c       *cursor
	builder Builder
	symtab  *symbolTable
	state   *parserState
	annot   *annotationReader

	ignoreAnnotations bool
}

// New constructs a Parser reading from tz and materialising declarations
// through b.
func New(tz token.Tokenizer, b Builder, opts ...Option) *Parser {
	p := &Parser{
		c:       newCursor(tz),
		builder: b,
		symtab:  newSymbolTable(),
		state:   newParserState(),
		annot:   newAnnotationReader(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SetIgnoreAnnotations implements the single exposed configuration
// mutator (§6): enables or disables annotation suppression after
// construction.
func (p *Parser) SetIgnoreAnnotations(ignore bool) {
	p.ignoreAnnotations = ignore
}

// Parse consumes the whole token stream, dispatching at the top level
// until EOF, per §4.5's dispatch table.
func (p *Parser) Parse() error {
	p.symtab.pushScope()
	defer p.symtab.popScope()

	for p.c.peek() != token.EOF {
		if err := p.parseTopLevel(); err != nil {
			return err
		}
	}
	return nil
}

func (p *Parser) parseTopLevel() error {
	switch p.c.peek() {
	case token.Comment:
		p.c.next()
		return nil
	case token.DocComment:
		precededByOpenTag := p.c.prev() == token.OpenTag
		tok := p.c.next()
		p.state.docComment = tok.Image
		p.state.packageName = p.annot.packageName(tok.Image, model.DefaultPackage)
		if precededByOpenTag && !p.introducesDeclaration() {
			p.state.globalPackageName = p.state.packageName
		}
		return nil
	case token.Interface:
		return p.parseInterfaceDeclaration()
	case token.Class, token.Final, token.Abstract:
		return p.parseClassDeclaration()
	case token.Function:
		_, err := p.parseFunctionOrClosure(false)
		return err
	case token.Use:
		return p.parseUseDeclarations()
	case token.Namespace:
		return p.parseNamespaceDeclaration()
	default:
		p.c.next()
		p.state.reset(0)
		return nil
	}
}

// introducesDeclaration reports whether the upcoming token is one of the
// declaration-introducing keywords that would make the just-consumed doc
// comment a declaration's own comment rather than a file comment.
func (p *Parser) introducesDeclaration() bool {
	switch p.c.peek() {
	case token.Class, token.Interface, token.Final, token.Abstract, token.Function:
		return true
	}
	return false
}

// parseInterfaceDeclaration parses `interface Name (extends Q1, Q2, ...)? { body }`.
func (p *Parser) parseInterfaceDeclaration() error {
	startLine := 0
	if tok, err := p.c.consume(token.Interface, nil); err != nil {
		return err
	} else {
		startLine = tok.StartLine
	}

	local, err := p.expectName()
	if err != nil {
		return err
	}
	fqn := p.createQualifiedTypeName(local)

	typ := p.builder.BuildInterface(fqn)
	typ.IsInterface = true
	typ.UserDefined = true
	typ.SourceFile = p.c.sourceFile()
	typ.StartLine = startLine
	typ.DocComment = p.state.takeDocComment()
	typ.Modifiers = p.state.modifiers

	if p.c.peek() == token.Extends {
		p.c.next()
		refs, err := p.parseQualifiedNameList()
		if err != nil {
			return err
		}
		for _, ref := range refs {
			typ.Interfaces = append(typ.Interfaces, p.builder.BuildInterfaceReference(ref))
		}
	}

	if err := p.parseTypeBody(typ); err != nil {
		return err
	}
	pkg := p.builder.BuildPackage(p.state.effectivePackage())
	pkg.Types = append(pkg.Types, typ)
	p.state.reset(0)
	return nil
}

// parseClassDeclaration parses optional abstract/final modifiers then
// `class Name (extends Q)? (implements Q1, Q2, ...)? { body }`.
func (p *Parser) parseClassDeclaration() error {
	startLine := 0
	modifiers := model.Modifier(0)

	if tok := p.c.peek(); tok == token.Abstract || tok == token.Final {
		t := p.c.next()
		startLine = t.StartLine
		if tok == token.Abstract {
			modifiers = modifiers.Set(model.ExplicitAbstract)
		} else {
			modifiers = modifiers.Set(model.Final)
		}
	}

	tok, err := p.c.consume(token.Class, nil)
	if err != nil {
		return err
	}
	if startLine == 0 {
		startLine = tok.StartLine
	}

	local, err := p.expectName()
	if err != nil {
		return err
	}
	fqn := p.createQualifiedTypeName(local)

	typ := p.builder.BuildClass(fqn)
	typ.UserDefined = true
	typ.SourceFile = p.c.sourceFile()
	typ.StartLine = startLine
	typ.DocComment = p.state.takeDocComment()
	typ.Modifiers = modifiers

	if p.c.peek() == token.Extends {
		p.c.next()
		parent, err := p.parseQualifiedName()
		if err != nil {
			return err
		}
		typ.Parent = p.builder.BuildClassReference(parent)
	}

	if p.c.peek() == token.Implements {
		p.c.next()
		refs, err := p.parseQualifiedNameList()
		if err != nil {
			return err
		}
		for _, ref := range refs {
			typ.Interfaces = append(typ.Interfaces, p.builder.BuildInterfaceReference(ref))
		}
	}

	if err := p.parseTypeBody(typ); err != nil {
		return err
	}
	pkg := p.builder.BuildPackage(p.state.effectivePackage())
	pkg.Types = append(pkg.Types, typ)
	p.state.reset(0)
	return nil
}

// parseQualifiedNameList parses a comma-separated list of qualified names
// terminated by `{`, used for extends/implements lists.
func (p *Parser) parseQualifiedNameList() ([]string, error) {
	var names []string
	for {
		name, err := p.parseQualifiedName()
		if err != nil {
			return nil, err
		}
		names = append(names, name)
		if p.c.peek() != token.Comma {
			break
		}
		p.c.next()
	}
	return names, nil
}

// expectName consumes a single `String` token used as a declaration's
// local name.
func (p *Parser) expectName() (string, error) {
	tok, err := p.c.consume(token.String, nil)
	if err != nil {
		return "", err
	}
	return tok.Image, nil
}

// parseTypeBody parses `{ member* }`, defaulting modifiers to Public
// (plus Abstract for interfaces) at entry and after every method.
func (p *Parser) parseTypeBody(typ *model.Type) error {
	if _, err := p.c.consume(token.CurlyOpen, nil); err != nil {
		return err
	}

	defaultMods := model.Modifier(0).Set(model.Public)
	if typ.IsInterface {
		defaultMods |= model.Abstract
	}
	p.state.modifiers = defaultMods

	for {
		switch p.c.peek() {
		case token.EOF:
			return &TokenStreamEndError{File: p.c.sourceFile(), What: "type body"}
		case token.CurlyClose:
			tok := p.c.next()
			typ.EndLine = tok.StartLine
			return nil
		case token.Function:
			callable, err := p.parseFunctionOrClosure(true)
			if err != nil {
				return err
			}
			typ.Methods = append(typ.Methods, callable)
			p.state.modifiers = defaultMods
		case token.Variable:
			if err := p.parseProperty(typ); err != nil {
				return err
			}
			p.state.modifiers = defaultMods
		case token.Const:
			if err := p.parseConstant(typ); err != nil {
				return err
			}
		case token.Public:
			p.c.next()
			p.state.modifiers = p.state.modifiers.Set(model.Public)
		case token.Protected:
			p.c.next()
			p.state.modifiers = p.state.modifiers.Set(model.Protected)
		case token.Private:
			p.c.next()
			p.state.modifiers = p.state.modifiers.Set(model.Private)
		case token.Static:
			p.c.next()
			p.state.modifiers = p.state.modifiers.Set(model.Static)
		case token.Abstract:
			p.c.next()
			p.state.modifiers = p.state.modifiers.Set(model.Abstract)
		case token.Final:
			p.c.next()
			p.state.modifiers = p.state.modifiers.Set(model.Final)
		case token.DocComment:
			tok := p.c.next()
			p.state.docComment = tok.Image
		case token.Comment:
			p.c.next()
		default:
			p.c.next()
			p.state.modifiers = defaultMods
		}
	}
}

// parseProperty parses a `$name` member variable declaration.
func (p *Parser) parseProperty(typ *model.Type) error {
	tok, err := p.c.consume(token.Variable, nil)
	if err != nil {
		return err
	}
	name := tok.Image

	prop := p.builder.BuildProperty(name)
	prop.DocComment = p.state.takeDocComment()
	prop.Modifiers = p.state.modifiers
	prop.StartLine = tok.StartLine
	prop.EndLine = tok.StartLine
	prop.SourceFile = p.c.sourceFile()

	p.prepareProperty(prop)

	typ.Properties = append(typ.Properties, prop)

	if p.c.peek() == token.Equal {
		p.c.next()
		if _, err := p.parseDefaultValue(); err != nil {
			return err
		}
	}
	if p.c.peek() == token.Comma || p.c.peek() == token.Semicolon {
		p.c.next()
	}
	return nil
}

// prepareProperty runs the §4.7 annotation post-processing for a
// property: parse @var and, if non-scalar, attach a class-or-interface
// reference.
func (p *Parser) prepareProperty(prop *model.Property) {
	if p.ignoreAnnotations {
		return
	}
	if typ, ok := p.annot.varType(prop.DocComment); ok {
		prop.TypeRef = p.builder.BuildClassOrInterfaceReference(typ)
	}
}

// parseConstant parses `const NAME = <default-value> (, NAME = <default-value>)*`.
func (p *Parser) parseConstant(typ *model.Type) error {
	if _, err := p.c.consume(token.Const, nil); err != nil {
		return err
	}

	for {
		tok, err := p.c.consume(token.String, nil)
		if err != nil {
			return err
		}

		c := p.builder.BuildTypeConstant(tok.Image)
		c.DocComment = p.state.takeDocComment()
		c.StartLine = tok.StartLine
		c.EndLine = tok.StartLine
		c.SourceFile = p.c.sourceFile()

		if _, err := p.c.consume(token.Equal, nil); err != nil {
			return err
		}
		val, err := p.parseDefaultValue()
		if err != nil {
			return err
		}
		c.Value = val
		typ.Constants = append(typ.Constants, c)

		if p.c.peek() != token.Comma {
			break
		}
		p.c.next()
	}
	if _, err := p.c.consume(token.Semicolon, nil); err != nil {
		return err
	}
	return nil
}

// parseUseDeclarations parses `use Qualified (as Short)? (, ...)* ;`.
func (p *Parser) parseUseDeclarations() error {
	if _, err := p.c.consume(token.Use, nil); err != nil {
		return err
	}
	for {
		// A use-declaration names a fully qualified name: neither an
		// earlier alias nor the current namespace is applied to it.
		fragments, err := p.parseQualifiedNameRaw()
		if err != nil {
			return err
		}
		if fragments[0] == "\\" {
			fragments = fragments[1:]
		}
		fq := strings.Join(fragments, "")
		short := lastFragment(fq)
		if p.c.peek() == token.As {
			p.c.next()
			tok, err := p.c.consume(token.String, nil)
			if err != nil {
				return err
			}
			short = tok.Image
		}
		p.symtab.add(short, fq)

		if p.c.peek() != token.Comma {
			break
		}
		p.c.next()
	}
	if _, err := p.c.consume(token.Semicolon, nil); err != nil {
		return err
	}
	p.state.reset(0)
	return nil
}

func lastFragment(qualified string) string {
	idx := -1
	for i := 0; i < len(qualified); i++ {
		if qualified[i] == '\\' {
			idx = i
		}
	}
	if idx == -1 {
		return qualified
	}
	return qualified[idx+1:]
}

// parseNamespaceDeclaration parses the three namespace shapes of §4.5.
func (p *Parser) parseNamespaceDeclaration() error {
	if _, err := p.c.consume(token.Namespace, nil); err != nil {
		return err
	}

	if p.c.peek() == token.Backslash {
		// namespace\... inline reference, not a declaration: consume the
		// fragments that follow without touching current_namespace.
		for p.c.peek() == token.Backslash {
			p.c.next()
			if _, err := p.c.consume(token.String, nil); err != nil {
				return err
			}
		}
		return nil
	}

	if p.c.peek() == token.CurlyOpen {
		// namespace { ... } — empty namespace.
		p.state.hasNamespace = true
		p.state.namespaceName = ""
		p.builder.BuildPackage("")
		return p.parseNamespaceBlockOrSemicolon()
	}

	name, err := p.parseQualifiedName()
	if err != nil {
		return err
	}
	p.state.hasNamespace = true
	p.state.namespaceName = name
	p.builder.BuildPackage(name)
	return p.parseNamespaceBlockOrSemicolon()
}

func (p *Parser) parseNamespaceBlockOrSemicolon() error {
	if p.c.peek() == token.CurlyOpen {
		p.c.next()
		for p.c.peek() != token.CurlyClose {
			if p.c.peek() == token.EOF {
				return &TokenStreamEndError{File: p.c.sourceFile(), What: "namespace block"}
			}
			if err := p.parseTopLevel(); err != nil {
				return err
			}
		}
		p.c.next()
		p.state.reset(0)
		return nil
	}
	if _, err := p.c.consume(token.Semicolon, nil); err != nil {
		return err
	}
	p.state.reset(0)
	return nil
}
