package lexer

import (
	"testing"

	"github.com/dhamidi/declscan/token"
)

func scanAll(t *testing.T, input string) []token.Kind {
	t.Helper()
	l := New([]byte(input), "test.php")
	var got []token.Kind
	for {
		tok := l.Next()
		got = append(got, tok.Kind)
		if tok.Kind == token.EOF {
			break
		}
	}
	return got
}

func TestLexer(t *testing.T) {
	tests := []struct {
		input    string
		expected []token.Kind
	}{
		{"<?php", []token.Kind{token.OpenTag, token.EOF}},
		{"<?php class Foo {}", []token.Kind{
			token.OpenTag, token.Class, token.String, token.CurlyOpen, token.CurlyClose, token.EOF,
		}},
		{"<?php $x = 1;", []token.Kind{
			token.OpenTag, token.Variable, token.Equal, token.LNumber, token.Semicolon, token.EOF,
		}},
		{"<?php namespace A\\B; use X\\Y as Z;", []token.Kind{
			token.OpenTag, token.Namespace, token.String, token.Backslash, token.String, token.Semicolon,
			token.Use, token.String, token.Backslash, token.String, token.As, token.String, token.Semicolon,
			token.EOF,
		}},
		{"<?php self::CONST", []token.Kind{
			token.OpenTag, token.Self, token.DoubleColon, token.String, token.EOF,
		}},
		{"<?php 'a' \"b\"", []token.Kind{
			token.OpenTag, token.ConstantEncapsedString, token.DoubleQuote, token.String, token.DoubleQuote, token.EOF,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := scanAll(t, tt.input)
			if len(got) != len(tt.expected) {
				t.Fatalf("got %v, want %v", got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("token %d: got %v, want %v (full: %v)", i, got[i], tt.expected[i], got)
				}
			}
		})
	}
}

func TestDocCommentKind(t *testing.T) {
	got := scanAll(t, "<?php /** @package Foo */ class C {}")
	if got[1] != token.DocComment {
		t.Fatalf("expected DocComment, got %v", got[1])
	}
}
