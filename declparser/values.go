package declparser

import (
	"strconv"

	"github.com/dhamidi/declscan/model"
	"github.com/dhamidi/declscan/token"
)

// parseDefaultValue parses the default-value mini-grammar of §4.5: null,
// true, false, numeric and string literals, array(...) (tokenized but
// not evaluated), sign prefixes, and ::-qualified identifiers/magic
// constants (recorded as present but unresolved). It stops at Comma,
// Semicolon, or ParenClose without consuming the terminator.
func (p *Parser) parseDefaultValue() (*model.Value, error) {
	val := &model.Value{}
	negative := false

	for {
		switch p.c.peek() {
		case token.Comma, token.Semicolon, token.ParenClose:
			if !val.Available {
				return nil, &MissingValueError{File: p.c.sourceFile()}
			}
			return val, nil

		case token.EOF:
			return nil, &TokenStreamEndError{File: p.c.sourceFile(), What: "default value"}

		case token.Null:
			p.c.next()
			val.Available, val.Kind = true, model.ValueNull

		case token.True:
			p.c.next()
			val.Available, val.Kind, val.Bool = true, model.ValueBool, true

		case token.False:
			p.c.next()
			val.Available, val.Kind, val.Bool = true, model.ValueBool, false

		case token.LNumber:
			tok := p.c.next()
			n, _ := strconv.ParseInt(tok.Image, 10, 64)
			if negative {
				n = -n
			}
			val.Available, val.Kind, val.Int = true, model.ValueInt, n
			negative = false

		case token.DNumber:
			tok := p.c.next()
			f, _ := strconv.ParseFloat(tok.Image, 64)
			if negative {
				f = -f
			}
			val.Available, val.Kind, val.Double = true, model.ValueDouble, f
			negative = false

		case token.ConstantEncapsedString:
			tok := p.c.next()
			val.Available, val.Kind, val.String = true, model.ValueString, stripQuotes(tok.Image)

		case token.Plus:
			p.c.next()
			negative = false

		case token.Minus:
			p.c.next()
			negative = true

		case token.Array:
			p.c.next()
			if p.c.peek() == token.ParenOpen {
				if err := p.skipBalancedParens(); err != nil {
					return nil, err
				}
			}
			val.Available, val.Kind = true, model.ValueArray

		case token.Dir, token.File, token.Line, token.Self, token.NsC, token.FuncC, token.ClassC, token.MethodC:
			p.c.next()
			val.Available, val.Kind = true, model.ValueUnresolved

		case token.String, token.Backslash, token.Namespace:
			if _, err := p.parseQualifiedName(); err != nil {
				return nil, err
			}
			if p.c.peek() == token.DoubleColon {
				p.c.next()
				switch p.c.peek() {
				case token.String, token.Variable, token.ClassC:
					p.c.next()
				}
			}
			val.Available, val.Kind = true, model.ValueUnresolved

		default:
			p.c.next()
		}
	}
}

// skipBalancedParens consumes a parenthesised token run, tracking nesting
// depth so array(array(1,2), 3) consumes the entire construct.
func (p *Parser) skipBalancedParens() error {
	if _, err := p.c.consume(token.ParenOpen, nil); err != nil {
		return err
	}
	depth := 1
	for depth > 0 {
		switch p.c.peek() {
		case token.EOF:
			return &TokenStreamEndError{File: p.c.sourceFile(), What: "array literal"}
		case token.ParenOpen:
			p.c.next()
			depth++
		case token.ParenClose:
			p.c.next()
			depth--
		default:
			p.c.next()
		}
	}
	return nil
}

func stripQuotes(s string) string {
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}
