package declparser

import (
	"github.com/dhamidi/declscan/model"
	"github.com/dhamidi/declscan/token"
)

// parseFunctionOrClosure parses `function`-introduced declarations. When
// isMethod is true the result is attached to the enclosing type's
// modifiers/doc-comment and never added to a package; otherwise it is a
// named top-level function (or a nested named function, which is still
// attributed to the enclosing package per §9's design note) or, when no
// name follows, an anonymous closure.
func (p *Parser) parseFunctionOrClosure(isMethod bool) (*model.Callable, error) {
	startTok, err := p.c.consume(token.Function, nil)
	if err != nil {
		return nil, err
	}
	p.c.consumeComments(nil)

	if p.c.peek() == token.ParenOpen {
		return p.parseClosure(startTok)
	}
	return p.parseNamedFunction(startTok, isMethod)
}

func (p *Parser) parseNamedFunction(startTok token.Token, isMethod bool) (*model.Callable, error) {
	byRef := false
	if p.c.peek() == token.BitwiseAnd {
		p.c.next()
		byRef = true
	}

	nameTok, err := p.c.consume(token.String, nil)
	if err != nil {
		return nil, err
	}

	var fn *model.Callable
	if isMethod {
		fn = p.builder.BuildMethod(nameTok.Image)
		fn.Kind = model.KindMethod
		fn.Modifiers = p.state.modifiers
	} else {
		fn = p.builder.BuildFunction(nameTok.Image)
		fn.Kind = model.KindFunction
	}
	fn.Name = nameTok.Image
	fn.DocComment = p.state.takeDocComment()
	fn.SourceFile = p.c.sourceFile()
	fn.StartLine = startTok.StartLine
	fn.ReturnsByReference = byRef

	params, err := p.parseParameterList()
	if err != nil {
		return nil, err
	}
	fn.Parameters = params

	if err := p.parseBodyOrSemicolon(fn); err != nil {
		return nil, err
	}

	if !isMethod {
		pkg := p.builder.BuildPackage(p.state.effectivePackage())
		pkg.Functions = append(pkg.Functions, fn)
	}

	p.prepareCallable(fn)
	return fn, nil
}

func (p *Parser) parseClosure(startTok token.Token) (*model.Callable, error) {
	fn := p.builder.BuildClosure()
	fn.Kind = model.KindClosure
	fn.DocComment = p.state.takeDocComment()
	fn.SourceFile = p.c.sourceFile()
	fn.StartLine = startTok.StartLine

	params, err := p.parseParameterList()
	if err != nil {
		return nil, err
	}
	fn.Parameters = params

	if p.c.peek() == token.Use {
		bound, err := p.parseBoundVariables()
		if err != nil {
			return nil, err
		}
		fn.BoundVariables = bound
	}

	if err := p.parseCallableBody(fn); err != nil {
		return nil, err
	}

	p.prepareCallable(fn)
	return fn, nil
}

// parseBoundVariables parses a closure's `use ( (&?)$var (, (&?)$var)* )`.
func (p *Parser) parseBoundVariables() ([]model.BoundVariable, error) {
	if _, err := p.c.consume(token.Use, nil); err != nil {
		return nil, err
	}
	if _, err := p.c.consume(token.ParenOpen, nil); err != nil {
		return nil, err
	}
	var bound []model.BoundVariable
	for p.c.peek() != token.ParenClose {
		byRef := false
		if p.c.peek() == token.BitwiseAnd {
			p.c.next()
			byRef = true
		}
		tok, err := p.c.consume(token.Variable, nil)
		if err != nil {
			return nil, err
		}
		bound = append(bound, model.BoundVariable{Name: tok.Image, ByRef: byRef})
		if p.c.peek() != token.Comma {
			break
		}
		p.c.next()
	}
	if _, err := p.c.consume(token.ParenClose, nil); err != nil {
		return nil, err
	}
	return bound, nil
}

// parseBodyOrSemicolon handles abstract/interface method declarations
// (terminated by `;`) and concrete bodies.
func (p *Parser) parseBodyOrSemicolon(fn *model.Callable) error {
	if p.c.peek() == token.Semicolon {
		tok := p.c.next()
		fn.EndLine = tok.StartLine
		return nil
	}
	return p.parseCallableBody(fn)
}

// parseParameterList parses `( param(, param)* )` and computes each
// parameter's trailing-optional flag per §4.5.
func (p *Parser) parseParameterList() ([]*model.Parameter, error) {
	if _, err := p.c.consume(token.ParenOpen, nil); err != nil {
		return nil, err
	}

	var params []*model.Parameter
	pos := 0
	for p.c.peek() != token.ParenClose {
		if p.c.peek() == token.EOF {
			return nil, &TokenStreamEndError{File: p.c.sourceFile(), What: "parameter list"}
		}

		var typeRef *model.TypeReference
		arrayHint := false
		switch p.c.peek() {
		case token.Array:
			p.c.next()
			arrayHint = true
		case token.String, token.Backslash, token.Namespace:
			name, err := p.parseQualifiedName()
			if err != nil {
				return nil, err
			}
			typeRef = p.builder.BuildClassOrInterfaceReference(name)
		}

		byRef := false
		if p.c.peek() == token.BitwiseAnd {
			p.c.next()
			byRef = true
		}

		varTok, err := p.c.consume(token.Variable, nil)
		if err != nil {
			return nil, err
		}

		param := p.builder.BuildParameter(varTok.Image)
		param.Name = varTok.Image
		param.Position = pos
		param.ByRef = byRef
		param.ArrayHint = arrayHint
		param.TypeRef = typeRef

		if p.c.peek() == token.Equal {
			p.c.next()
			val, err := p.parseDefaultValue()
			if err != nil {
				return nil, err
			}
			param.Default = val
		}

		params = append(params, param)
		pos++

		if p.c.peek() != token.Comma {
			break
		}
		p.c.next()
	}

	if _, err := p.c.consume(token.ParenClose, nil); err != nil {
		return nil, err
	}

	optional := true
	for i := len(params) - 1; i >= 0; i-- {
		if params[i].Default == nil {
			optional = false
		}
		params[i].Optional = optional
	}

	return params, nil
}

// parseCallableBody walks a callable's `{ ... }` body extracting
// dependency references per §4.5's "Callable body" rules.
func (p *Parser) parseCallableBody(fn *model.Callable) error {
	if _, err := p.c.consume(token.CurlyOpen, nil); err != nil {
		return err
	}
	p.symtab.pushScope()
	defer p.symtab.popScope()

	depth := 1
	for {
		switch p.c.peek() {
		case token.EOF:
			return &TokenStreamEndError{File: p.c.sourceFile(), What: "callable body"}

		case token.Catch:
			p.c.next()
			if _, err := p.c.consume(token.ParenOpen, nil); err != nil {
				return err
			}
			name, err := p.parseQualifiedName()
			if err != nil {
				return err
			}
			fn.Exceptions = append(fn.Exceptions, p.builder.BuildClassOrInterfaceReference(name))

		case token.New:
			p.c.next()
			switch p.c.peek() {
			case token.String, token.Backslash, token.Namespace:
				name, err := p.parseQualifiedName()
				if err != nil {
					return err
				}
				fn.Dependencies = append(fn.Dependencies, p.builder.BuildClassReference(name))
			}

		case token.Instanceof:
			p.c.next()
			switch p.c.peek() {
			case token.String, token.Backslash, token.Namespace:
				name, err := p.parseQualifiedName()
				if err != nil {
					return err
				}
				fn.Dependencies = append(fn.Dependencies, p.builder.BuildClassOrInterfaceReference(name))
			}

		case token.String, token.Backslash, token.Namespace:
			name, err := p.parseQualifiedName()
			if err != nil {
				return err
			}
			if p.c.peek() == token.DoubleColon {
				p.c.next()
				if p.c.peek() == token.String || p.c.peek() == token.Variable {
					p.c.next()
					fn.Dependencies = append(fn.Dependencies, p.builder.BuildClassOrInterfaceReference(name))
				}
			}

		case token.CurlyOpen:
			p.c.next()
			depth++

		case token.CurlyClose:
			tok := p.c.next()
			depth--
			if depth == 0 {
				fn.EndLine = tok.StartLine
				return nil
			}

		case token.DoubleQuote:
			p.skipDelimited(token.DoubleQuote)

		case token.Backtick:
			p.skipDelimited(token.Backtick)

		case token.Function:
			if _, err := p.parseFunctionOrClosure(false); err != nil {
				return err
			}

		case token.Comment:
			tok := p.c.next()
			if !p.ignoreAnnotations {
				if typ, ok := p.annot.inlineVar(tok.Image); ok {
					fn.Dependencies = append(fn.Dependencies, p.builder.BuildClassOrInterfaceReference(typ))
				}
			}

		default:
			p.c.next()
		}
	}
}

// skipDelimited consumes kind, then everything up to and including the
// next token of the same kind. The lexer is assumed to balance nested
// occurrences, so nesting is not tracked here.
func (p *Parser) skipDelimited(kind token.Kind) {
	p.c.next()
	for p.c.peek() != kind && p.c.peek() != token.EOF {
		p.c.next()
	}
	if p.c.peek() == kind {
		p.c.next()
	}
}

// prepareCallable runs the §4.7 annotation post-processing for a
// callable: @throws adds exception references, @return sets the return
// reference when non-scalar.
func (p *Parser) prepareCallable(fn *model.Callable) {
	if p.ignoreAnnotations {
		return
	}
	for _, exc := range p.annot.throwsTypes(fn.DocComment) {
		fn.Exceptions = append(fn.Exceptions, p.builder.BuildClassOrInterfaceReference(exc))
	}
	if ret, ok := p.annot.returnType(fn.DocComment); ok {
		fn.ReturnType = p.builder.BuildClassOrInterfaceReference(ret)
	}
}
