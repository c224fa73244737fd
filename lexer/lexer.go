// Package lexer provides a concrete token.Tokenizer for the scripting
// language the declaration parser understands: classes, interfaces,
// namespaces, use-aliasing, closures and doc-comment annotations.
//
// The declaration parser (package declparser) never imports this package
// directly; it is built against token.Tokenizer. Lexer exists so the
// module is runnable end-to-end without a caller bringing their own
// tokenizer, the same role java/parser/lexer.go plays for the teacher's
// AST parser.
package lexer

import (
	"unicode"
	"unicode/utf8"

	"github.com/dhamidi/declscan/token"
)

var keywords = map[string]token.Kind{
	"class":      token.Class,
	"interface":  token.Interface,
	"function":   token.Function,
	"abstract":   token.Abstract,
	"final":      token.Final,
	"static":     token.Static,
	"public":     token.Public,
	"protected":  token.Protected,
	"private":    token.Private,
	"const":      token.Const,
	"extends":    token.Extends,
	"implements": token.Implements,
	"namespace":  token.Namespace,
	"use":        token.Use,
	"as":         token.As,
	"new":        token.New,
	"instanceof": token.Instanceof,
	"catch":      token.Catch,
	"array":      token.Array,
	"null":       token.Null,
	"true":       token.True,
	"false":      token.False,
}

var magicConstants = map[string]token.Kind{
	"__DIR__":      token.Dir,
	"__FILE__":     token.File,
	"__LINE__":     token.Line,
	"self":         token.Self,
	"__NAMESPACE__": token.NsC,
	"__FUNCTION__": token.FuncC,
	"__CLASS__":    token.ClassC,
	"__METHOD__":   token.MethodC,
}

// Lexer scans a byte-level source buffer into the token.Kind vocabulary
// the declaration parser understands.
type Lexer struct {
	input  []byte
	file   string
	pos    int
	line   int
	peeked *token.Token
	prev   token.Kind
	opened bool // whether the open tag has already been emitted
}

// New returns a Lexer scanning input, attributing every token to file.
func New(input []byte, file string) *Lexer {
	return &Lexer{input: input, file: file, line: 1}
}

func (l *Lexer) SourceFile() string { return l.file }

func (l *Lexer) Peek() token.Kind {
	if l.peeked == nil {
		tok := l.scan()
		l.peeked = &tok
	}
	return l.peeked.Kind
}

func (l *Lexer) Prev() token.Kind { return l.prev }

func (l *Lexer) Next() token.Token {
	var tok token.Token
	if l.peeked != nil {
		tok = *l.peeked
		l.peeked = nil
	} else {
		tok = l.scan()
	}
	l.prev = tok.Kind
	return tok
}

func (l *Lexer) peekByte() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *Lexer) peekByteN(n int) byte {
	if l.pos+n >= len(l.input) {
		return 0
	}
	return l.input[l.pos+n]
}

func (l *Lexer) advance() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	ch := l.input[l.pos]
	l.pos++
	if ch == '\n' {
		l.line++
	}
	return ch
}

func (l *Lexer) scan() token.Token {
	if !l.opened {
		l.opened = true
		return l.scanOpenTag()
	}

	l.skipWhitespace()
	startLine := l.line

	if l.pos >= len(l.input) {
		return token.Token{Kind: token.EOF, StartLine: startLine, EndLine: startLine}
	}

	ch := l.peekByte()

	switch {
	case ch == '/' && l.peekByteN(1) == '*' && l.peekByteN(2) == '*':
		return l.scanDocComment(startLine)
	case ch == '/' && l.peekByteN(1) == '*':
		return l.scanBlockComment(startLine, token.Comment)
	case ch == '/' && l.peekByteN(1) == '/':
		return l.scanLineComment(startLine)
	case ch == '#' && l.peekByteN(1) != '[':
		return l.scanLineComment(startLine)
	case ch == '$':
		return l.scanVariable(startLine)
	case ch == '\'':
		return l.scanSingleQuoted(startLine)
	case ch == '"':
		return l.scanToken(token.DoubleQuote, startLine)
	case ch == '`':
		return l.scanToken(token.Backtick, startLine)
	case isDigit(ch):
		return l.scanNumber(startLine)
	case isIdentStart(ch):
		return l.scanIdentifier(startLine)
	default:
		return l.scanOperator(startLine)
	}
}

func (l *Lexer) scanOpenTag() token.Token {
	startLine := l.line
	start := l.pos
	if l.pos+5 <= len(l.input) && string(l.input[l.pos:l.pos+5]) == "<?php" {
		l.pos += 5
	} else if l.pos+2 <= len(l.input) && string(l.input[l.pos:l.pos+2]) == "<?" {
		l.pos += 2
	}
	return token.Token{Kind: token.OpenTag, Image: string(l.input[start:l.pos]), StartLine: startLine, EndLine: l.line}
}

func (l *Lexer) skipWhitespace() {
	for {
		ch := l.peekByte()
		if ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' {
			l.advance()
			continue
		}
		break
	}
}

func (l *Lexer) scanDocComment(startLine int) token.Token {
	return l.scanBlockComment(startLine, token.DocComment)
}

func (l *Lexer) scanBlockComment(startLine int, kind token.Kind) token.Token {
	start := l.pos
	l.advance()
	l.advance()
	for l.pos < len(l.input) {
		if l.peekByte() == '*' && l.peekByteN(1) == '/' {
			l.advance()
			l.advance()
			break
		}
		l.advance()
	}
	return token.Token{Kind: kind, Image: string(l.input[start:l.pos]), StartLine: startLine, EndLine: l.line}
}

func (l *Lexer) scanLineComment(startLine int) token.Token {
	start := l.pos
	for l.pos < len(l.input) && l.peekByte() != '\n' {
		l.advance()
	}
	return token.Token{Kind: token.Comment, Image: string(l.input[start:l.pos]), StartLine: startLine, EndLine: l.line}
}

func (l *Lexer) scanVariable(startLine int) token.Token {
	start := l.pos
	l.advance() // $
	for isIdentPart(l.peekByte()) {
		l.advance()
	}
	return token.Token{Kind: token.Variable, Image: string(l.input[start:l.pos]), StartLine: startLine, EndLine: l.line}
}

func (l *Lexer) scanSingleQuoted(startLine int) token.Token {
	start := l.pos
	l.advance()
	for l.pos < len(l.input) && l.peekByte() != '\'' {
		if l.peekByte() == '\\' {
			l.advance()
		}
		l.advance()
	}
	if l.peekByte() == '\'' {
		l.advance()
	}
	return token.Token{Kind: token.ConstantEncapsedString, Image: string(l.input[start:l.pos]), StartLine: startLine, EndLine: l.line}
}

func (l *Lexer) scanNumber(startLine int) token.Token {
	start := l.pos
	isFloat := false
	for isDigit(l.peekByte()) {
		l.advance()
	}
	if l.peekByte() == '.' && isDigit(l.peekByteN(1)) {
		isFloat = true
		l.advance()
		for isDigit(l.peekByte()) {
			l.advance()
		}
	}
	image := string(l.input[start:l.pos])
	kind := token.LNumber
	if isFloat {
		kind = token.DNumber
	}
	return token.Token{Kind: kind, Image: image, StartLine: startLine, EndLine: l.line}
}

func (l *Lexer) scanIdentifier(startLine int) token.Token {
	start := l.pos
	for isIdentPart(l.peekByte()) {
		l.advance()
	}
	image := string(l.input[start:l.pos])

	if kind, ok := magicConstants[image]; ok {
		return token.Token{Kind: kind, Image: image, StartLine: startLine, EndLine: l.line}
	}
	// A name directly after `::` is a member name, never a keyword.
	if l.prev == token.DoubleColon {
		return token.Token{Kind: token.String, Image: image, StartLine: startLine, EndLine: l.line}
	}
	if kind, ok := keywords[toLower(image)]; ok {
		return token.Token{Kind: kind, Image: image, StartLine: startLine, EndLine: l.line}
	}
	return token.Token{Kind: token.String, Image: image, StartLine: startLine, EndLine: l.line}
}

func (l *Lexer) scanToken(kind token.Kind, startLine int) token.Token {
	start := l.pos
	l.advance()
	return token.Token{Kind: kind, Image: string(l.input[start:l.pos]), StartLine: startLine, EndLine: l.line}
}

func (l *Lexer) scanOperator(startLine int) token.Token {
	start := l.pos
	ch := l.advance()

	single := func(k token.Kind) token.Token {
		return token.Token{Kind: k, Image: string(l.input[start:l.pos]), StartLine: startLine, EndLine: l.line}
	}

	switch ch {
	case '+':
		return single(token.Plus)
	case '-':
		if l.peekByte() == '>' {
			l.advance()
		}
		return single(token.Minus)
	case '=':
		if l.peekByte() == '>' {
			l.advance()
			return token.Token{Kind: token.DoubleArrow, Image: string(l.input[start:l.pos]), StartLine: startLine, EndLine: l.line}
		}
		return single(token.Equal)
	case ',':
		return single(token.Comma)
	case ';':
		return single(token.Semicolon)
	case '(':
		return single(token.ParenOpen)
	case ')':
		return single(token.ParenClose)
	case '{':
		return single(token.CurlyOpen)
	case '}':
		return single(token.CurlyClose)
	case '\\':
		return single(token.Backslash)
	case '&':
		return single(token.BitwiseAnd)
	case ':':
		if l.peekByte() == ':' {
			l.advance()
			return token.Token{Kind: token.DoubleColon, Image: string(l.input[start:l.pos]), StartLine: startLine, EndLine: l.line}
		}
		return single(token.Other)
	default:
		return single(token.Other)
	}
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func isIdentStart(ch byte) bool {
	if ch >= 128 {
		r, _ := utf8.DecodeRune([]byte{ch})
		return unicode.IsLetter(r)
	}
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}

func toLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

