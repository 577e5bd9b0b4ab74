package conditions

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestLex(t *testing.T) {
	cases := []struct {
		src    string
		tokens []lexToken
		errs   int
	}{
		// spaces
		{"", nil, 0},
		{" \t \r\n ", nil, 0},
		// numbers
		{"0", []lexToken{{text: "0", kind: tokenNum, pos: 1}}, 0},
		{"9876543210", []lexToken{{text: "9876543210", kind: tokenNum, pos: 1}}, 0},
		{"1 0", []lexToken{{text: "1", kind: tokenNum, pos: 1}, {text: "0", kind: tokenNum, pos: 3}}, 0},
		{"1.0", []lexToken{{text: "1.0", kind: tokenNum, pos: 1}}, 0},
		{"-1", []lexToken{{text: "-", kind: tokenOp, pos: 1}, {text: "1", kind: tokenNum, pos: 2}}, 0},
		{"-1.5", []lexToken{{text: "-", kind: tokenOp, pos: 1}, {text: "1.5", kind: tokenNum, pos: 2}}, 0},
		{"1.", []lexToken{{pos: 1}}, 1},
		{"1.1.1", []lexToken{{pos: 1}}, 1},
		{".1", []lexToken{{pos: 1}}, 1},
		{"1a", []lexToken{{pos: 1}}, 1},
		{"1_", []lexToken{{pos: 1}}, 1},
		{"99999999999999999999", []lexToken{{pos: 1}}, 1},
		{"1+0", []lexToken{{text: "1", kind: tokenNum, pos: 1}, {text: "+", kind: tokenOp, pos: 2}, {text: "0", kind: tokenNum, pos: 3}}, 0},
		{"(1)", []lexToken{{text: "(", kind: tokenOpen, pos: 1}, {text: "1", kind: tokenNum, pos: 2}, {text: ")", kind: tokenClose, pos: 3}}, 0},
		// identifiers
		{"e", []lexToken{{text: "e", kind: tokenIdent, pos: 1}}, 0},
		{"e1", []lexToken{{text: "e1", kind: tokenIdent, pos: 1}}, 0},
		{"_1234_", []lexToken{{text: "_1234_", kind: tokenIdent, pos: 1}}, 0},
		{"e(", []lexToken{{text: "e", kind: tokenIdent, pos: 1}, {text: "(", kind: tokenOpen, pos: 2}}, 0},
		{"order", []lexToken{{text: "order", kind: tokenIdent, pos: 1}}, 0},
		{"nothing", []lexToken{{text: "nothing", kind: tokenIdent, pos: 1}}, 0},
		{"android", []lexToken{{text: "android", kind: tokenIdent, pos: 1}}, 0},
		{"AND", []lexToken{{text: "AND", kind: tokenIdent, pos: 1}}, 0},
		{"trueish", []lexToken{{text: "trueish", kind: tokenIdent, pos: 1}}, 0},
		{"π", []lexToken{{pos: 1}}, 1},
		{"aπ", []lexToken{{pos: 1}}, 1},
		// booleans
		{"true", []lexToken{{text: "true", kind: tokenBool, pos: 1}}, 0},
		{"False", []lexToken{{text: "False", kind: tokenBool, pos: 1}}, 0},
		{"TRUE", []lexToken{{text: "TRUE", kind: tokenBool, pos: 1}}, 0},
		// strings
		{`"fred"`, []lexToken{{text: `"fred"`, kind: tokenStr, pos: 1}}, 0},
		{`'fred'`, []lexToken{{text: `'fred'`, kind: tokenStr, pos: 1}}, 0},
		{`'say "hi"'`, []lexToken{{text: `'say "hi"'`, kind: tokenStr, pos: 1}}, 0},
		{`""`, []lexToken{{text: `""`, kind: tokenStr, pos: 1}}, 0},
		{`"a b" c`, []lexToken{{text: `"a b"`, kind: tokenStr, pos: 1}, {text: "c", kind: tokenIdent, pos: 7}}, 0},
		{`"fred`, []lexToken{{pos: 1}}, 1},
		{`x 'fred`, []lexToken{{text: "x", kind: tokenIdent, pos: 1}, {pos: 3}}, 1},
		// operators
		{"+", []lexToken{{text: "+", kind: tokenOp, pos: 1}}, 0},
		{"++", []lexToken{{text: "+", kind: tokenOp, pos: 1}, {text: "+", kind: tokenOp, pos: 2}}, 0},
		{"a--b", []lexToken{{text: "a", kind: tokenIdent, pos: 1}, {text: "-", kind: tokenOp, pos: 2}, {text: "-", kind: tokenOp, pos: 3}, {text: "b", kind: tokenIdent, pos: 4}}, 0},
		{">=<=", []lexToken{{text: ">=", kind: tokenOp, pos: 1}, {text: "<=", kind: tokenOp, pos: 3}}, 0},
		{"><", []lexToken{{text: ">", kind: tokenOp, pos: 1}, {text: "<", kind: tokenOp, pos: 2}}, 0},
		{"===", []lexToken{{text: "==", kind: tokenOp, pos: 1}, {text: "=", kind: tokenOp, pos: 3}}, 0},
		{"!=!", []lexToken{{text: "!=", kind: tokenOp, pos: 1}, {text: "!", kind: tokenOp, pos: 3}}, 0},
		{"&&||", []lexToken{{text: "&&", kind: tokenOp, pos: 1}, {text: "||", kind: tokenOp, pos: 3}}, 0},
		{"a and b", []lexToken{{text: "a", kind: tokenIdent, pos: 1}, {text: "and", kind: tokenOp, pos: 3}, {text: "b", kind: tokenIdent, pos: 7}}, 0},
		{"not x", []lexToken{{text: "not", kind: tokenOp, pos: 1}, {text: "x", kind: tokenIdent, pos: 5}}, 0},
		{"f(a, b)", []lexToken{
			{text: "f", kind: tokenIdent, pos: 1},
			{text: "(", kind: tokenOpen, pos: 2},
			{text: "a", kind: tokenIdent, pos: 3},
			{text: ",", kind: tokenSep, pos: 4},
			{text: "b", kind: tokenIdent, pos: 6},
			{text: ")", kind: tokenClose, pos: 7},
		}, 0},
		// erroneous symbols
		{"$", []lexToken{{pos: 1}}, 1},
		{"a$", []lexToken{{text: "a", kind: tokenIdent, pos: 1}, {pos: 2}}, 1},
		{"&", []lexToken{{pos: 1}}, 1},
		{"a | b", []lexToken{{text: "a", kind: tokenIdent, pos: 1}, {pos: 3}}, 1},
		{"[x]", []lexToken{{pos: 1}}, 1},
	}

	for _, c := range cases {
		scan := lex(strings.NewReader(c.src))
		for _, want := range c.tokens {
			got, err := scan.next("")
			if err == io.EOF {
				t.Errorf("scanning %q: expected token %v but got EOF", c.src, want)
				continue
			}
			if got != want {
				t.Errorf("scanning %q: want %v, got %v", c.src, want, got)
			}
			if err != nil {
				if c.errs > 0 {
					c.errs--
					var le *LexError
					if !errors.As(err, &le) {
						t.Errorf("scanning %q: wrong error type %T", c.src, err)
					} else if le.Pos() != want.pos {
						t.Errorf("scanning %q: error at column %d, want %d", c.src, le.Pos(), want.pos)
					}
					if !errors.Is(err, ErrLexical) {
						t.Errorf("scanning %q: %v is not a lexical error", c.src, err)
					}
					break
				}
				t.Errorf("scanning %q: unexpected error %v", c.src, err)
			}
		}
		if c.errs > 0 {
			t.Errorf("scanning %q: not enough errors", c.src)
			continue
		}
		if len(c.tokens) > 0 && c.tokens[len(c.tokens)-1].kind == tokenNone {
			// Scanning stops at the first error.
			continue
		}
		if got, err := scan.next(""); err != nil || got.kind != tokenEOF {
			t.Errorf("scanning %q: extra token %v with error: %v", c.src, got, err)
		}
	}
}

func TestLexStopOn(t *testing.T) {
	scan := lex(strings.NewReader("a\nb"))
	if tok, err := scan.next("\n"); err != nil || tok.text != "a" {
		t.Fatalf("first token: got %v, %v", tok, err)
	}
	if tok, err := scan.next("\n"); err != nil || tok.kind != tokenEOF || tok.pos != 2 {
		t.Fatalf("newline: got %v, %v", tok, err)
	}
	if _, err := scan.next("\n"); err != io.EOF {
		t.Errorf("after EOF: want io.EOF, got %v", err)
	}
}
