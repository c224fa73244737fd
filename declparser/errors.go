package declparser

import (
	"fmt"

	"github.com/dhamidi/declscan/token"
)

// UnexpectedTokenError is raised when the cursor was asked to consume a
// specific token kind and found a different one.
type UnexpectedTokenError struct {
	Expected token.Kind
	Got      token.Kind
	Image    string
	File     string
	Line     int
}

func (e *UnexpectedTokenError) Error() string {
	return fmt.Sprintf("%s:%d: unexpected token %s (%q), expected %s", e.File, e.Line, e.Got, e.Image, e.Expected)
}

// TokenStreamEndError is raised when EOF is reached inside an open
// construct (class/interface/callable body, default-value position).
type TokenStreamEndError struct {
	File string
	Line int
	What string
}

func (e *TokenStreamEndError) Error() string {
	return fmt.Sprintf("%s:%d: unexpected end of token stream while parsing %s", e.File, e.Line, e.What)
}

// MissingValueError is raised when a default-value position reached a
// terminator without producing a value.
type MissingValueError struct {
	File string
	Line int
}

func (e *MissingValueError) Error() string {
	return fmt.Sprintf("%s:%d: missing default value", e.File, e.Line)
}
