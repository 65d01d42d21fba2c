package stackcalc

import (
	"errors"
	"reflect"
	"testing"
)

func TestLex(t *testing.T) {
	cases := []struct {
		src    string
		tokens []Token
		err    bool
	}{
		// spaces
		{"", nil, false},
		{" \t \r\n ", nil, false},
		// numbers
		{"0", []Token{{Kind: TokenInt, Text: "0", Pos: 1}}, false},
		{"9876543210", []Token{{Kind: TokenInt, Text: "9876543210", Pos: 1}}, false},
		{"1 0", []Token{{Kind: TokenInt, Text: "1", Pos: 1}, {Kind: TokenInt, Text: "0", Pos: 3}}, false},
		{"1.0", []Token{{Kind: TokenDecimal, Text: "1.0", Pos: 1}}, false},
		{".1", []Token{{Kind: TokenDecimal, Text: ".1", Pos: 1}}, false},
		{"-1", []Token{{Kind: TokenOp, Text: "-", Pos: 1}, {Kind: TokenInt, Text: "1", Pos: 2}}, false},
		{"1e1", []Token{{Kind: TokenFloat, Text: "1e1", Pos: 1}}, false},
		{"1e+1", []Token{{Kind: TokenFloat, Text: "1e+1", Pos: 1}}, false},
		{"1.0e-1", []Token{{Kind: TokenFloat, Text: "1.0e-1", Pos: 1}}, false},
		{"1+0", []Token{{Kind: TokenInt, Text: "1", Pos: 1}, {Kind: TokenOp, Text: "+", Pos: 2}, {Kind: TokenInt, Text: "0", Pos: 3}}, false},
		{"1e", nil, true},
		{"1.1.1", nil, true},
		{".", nil, true},
		{"1a", nil, true},
		// identifiers
		{"e", []Token{{Kind: TokenIdent, Text: "e", Pos: 1}}, false},
		{"e1", []Token{{Kind: TokenIdent, Text: "e1", Pos: 1}}, false},
		{"π", []Token{{Kind: TokenIdent, Text: "π", Pos: 1}}, false},
		{"_1234_", []Token{{Kind: TokenIdent, Text: "_1234_", Pos: 1}}, false},
		{"f'", []Token{{Kind: TokenIdent, Text: "f'", Pos: 1}}, false},
		{"f''(x)", []Token{
			{Kind: TokenIdent, Text: "f''", Pos: 1},
			{Kind: TokenOp, Text: "(", Pos: 4},
			{Kind: TokenIdent, Text: "x", Pos: 5},
			{Kind: TokenOp, Text: ")", Pos: 6},
		}, false},
		{"f~", []Token{{Kind: TokenIdent, Text: "f~", Pos: 1}}, false},
		{"f'~", nil, true},
		{"inf", []Token{{Kind: TokenFloat, Text: "inf", Pos: 1}}, false},
		{"∞", []Token{{Kind: TokenFloat, Text: "∞", Pos: 1}}, false},
		// operators
		{"++", []Token{{Kind: TokenOp, Text: "+", Pos: 1}, {Kind: TokenOp, Text: "+", Pos: 2}}, false},
		{"a<=b", []Token{{Kind: TokenIdent, Text: "a", Pos: 1}, {Kind: TokenOp, Text: "<=", Pos: 2}, {Kind: TokenIdent, Text: "b", Pos: 4}}, false},
		{"<>", []Token{{Kind: TokenOp, Text: IncrementOp, Pos: 1}}, false},
		{"<-1", []Token{{Kind: TokenOp, Text: "<", Pos: 1}, {Kind: TokenOp, Text: "-", Pos: 2}, {Kind: TokenInt, Text: "1", Pos: 3}}, false},
		{"a!=b", []Token{{Kind: TokenIdent, Text: "a", Pos: 1}, {Kind: TokenOp, Text: "!=", Pos: 2}, {Kind: TokenIdent, Text: "b", Pos: 4}}, false},
		{"3!", []Token{{Kind: TokenInt, Text: "3", Pos: 1}, {Kind: TokenOp, Text: "!", Pos: 2}}, false},
		// sequences
		{"{1, 2.5, -3}", []Token{{Kind: TokenSeq, Text: "1, 2.5, -3", Pos: 1}}, false},
		{"{}", []Token{{Kind: TokenSeq, Text: "", Pos: 1}}, false},
		{"{1, 2", nil, true},
		{"{a}", nil, true},
		// erroneous symbols
		{"$", nil, true},
		{"a$", nil, true},
	}
	for _, c := range cases {
		got, err := TokenizeString(c.src)
		if c.err {
			var le *LexError
			if !errors.As(err, &le) {
				t.Errorf("scanning %q: want LexError, got %v", c.src, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("scanning %q: unexpected error %v", c.src, err)
			continue
		}
		if !reflect.DeepEqual(got, c.tokens) {
			t.Errorf("scanning %q: want %v, got %v", c.src, c.tokens, got)
		}
	}
}

func TestLexErrorPos(t *testing.T) {
	_, err := TokenizeString("1 + $")
	var ie InputError
	if !errors.As(err, &ie) {
		t.Fatalf("want InputError, got %v", err)
	}
	if ie.Pos() != 5 {
		t.Errorf("wrong position: want 5, got %d", ie.Pos())
	}
}
