package declparser

import (
	"strings"

	"github.com/dhamidi/declscan/token"
)

// parseQualifiedNameRaw collects the raw fragment sequence of a qualified
// name starting at the cursor's current position, per §4.4.1. The first
// fragment is either a literal identifier, the sentinel "\\" (leading
// separator — fully qualified), or the current namespace substituted for
// a bare `namespace` keyword. Subsequent Backslash/String pairs are
// appended as separate entries.
func (p *Parser) parseQualifiedNameRaw() ([]string, error) {
	var fragments []string

	// namespacePrefixReplaced is a per-name signal: only the name we are
	// about to parse should skip the current-namespace prepend, not every
	// name that follows it until the next reset() boundary.
	p.state.namespacePrefixReplaced = false

	switch p.c.peek() {
	case token.Backslash:
		p.c.next()
		fragments = append(fragments, "\\")
		tok, err := p.c.consume(token.String, nil)
		if err != nil {
			return nil, err
		}
		fragments = append(fragments, tok.Image)
	case token.Namespace:
		p.c.next()
		fragments = append(fragments, p.state.namespaceName)
		p.state.namespacePrefixReplaced = true
	case token.String:
		tok := p.c.next()
		fragments = append(fragments, tok.Image)
	default:
		tok := p.c.next()
		return nil, &UnexpectedTokenError{
			Expected: token.String,
			Got:      tok.Kind,
			Image:    tok.Image,
			File:     p.c.sourceFile(),
			Line:     tok.StartLine,
		}
	}

	for p.c.peek() == token.Backslash {
		p.c.next()
		fragments = append(fragments, "\\")
		tok, err := p.c.consume(token.String, nil)
		if err != nil {
			return nil, err
		}
		fragments = append(fragments, tok.Image)
	}

	return fragments, nil
}

// parseQualifiedName resolves the raw fragment sequence into an absolute
// qualified name per §4.4.2.
func (p *Parser) parseQualifiedName() (string, error) {
	fragments, err := p.parseQualifiedNameRaw()
	if err != nil {
		return "", err
	}

	if fragments[0] == "\\" {
		return strings.Join(fragments[1:], ""), nil
	}

	first := fragments[0]
	if fq, ok := p.symtab.lookup(first); ok {
		fragments[0] = fq
	} else if p.state.hasNamespace && !p.state.namespacePrefixReplaced {
		fragments[0] = p.state.namespaceName + "\\" + first
	}

	return strings.Join(fragments, ""), nil
}

// createQualifiedTypeName qualifies a declaration-site local name: when a
// namespace is active, prefix with namespace + "\\"; otherwise prefix with
// the current @package + "::".
func (p *Parser) createQualifiedTypeName(local string) string {
	if p.state.hasNamespace {
		return p.state.namespaceName + "\\" + local
	}
	return p.state.packageName + "::" + local
}
