package declparser

import "github.com/dhamidi/declscan/token"

// cursor is a thin adapter over a token.Tokenizer providing typed
// consumption with mismatch errors. It never reorders or rewinds the
// underlying stream.
type cursor struct {
	tz token.Tokenizer
}

func newCursor(tz token.Tokenizer) *cursor {
	return &cursor{tz: tz}
}

func (c *cursor) peek() token.Kind { return c.tz.Peek() }

func (c *cursor) prev() token.Kind { return c.tz.Prev() }

func (c *cursor) next() token.Token { return c.tz.Next() }

func (c *cursor) sourceFile() string { return c.tz.SourceFile() }

// consume asserts peek() == expected; on success it advances, appends the
// token to sink when sink is non-nil, and returns it. On mismatch it
// returns an *UnexpectedTokenError, or *TokenStreamEndError if the stream
// is already at EOF.
func (c *cursor) consume(expected token.Kind, sink *[]token.Token) (token.Token, error) {
	if c.peek() == token.EOF {
		return token.Token{}, &TokenStreamEndError{File: c.sourceFile(), Line: 0, What: expected.String()}
	}
	if c.peek() != expected {
		tok := c.next()
		return tok, &UnexpectedTokenError{
			Expected: expected,
			Got:      tok.Kind,
			Image:    tok.Image,
			File:     c.sourceFile(),
			Line:     tok.StartLine,
		}
	}
	tok := c.next()
	if sink != nil {
		*sink = append(*sink, tok)
	}
	return tok, nil
}

// consumeComments consumes any run of Comment/DocComment tokens, appending
// each to sink when non-nil, and returns the count consumed.
func (c *cursor) consumeComments(sink *[]token.Token) int {
	n := 0
	for c.peek() == token.Comment || c.peek() == token.DocComment {
		tok := c.next()
		if sink != nil {
			*sink = append(*sink, tok)
		}
		n++
	}
	return n
}
