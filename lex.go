package stackcalc

import (
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

// Token is a lexical token consumed by the evaluation engine.
type Token struct {
	Kind TokenKind
	Text string
	// Pos is the 1-based rune column of the start of the token.
	Pos int
}

func (t Token) String() string {
	return t.Kind.String() + ":" + t.Text + "@" + strconv.Itoa(t.Pos)
}

// TokenKind is the lexical class of a token.
type TokenKind int8

const (
	TokenNone TokenKind = iota
	// TokenIdent is a variable, function, or keyword name.
	TokenIdent
	// TokenOp is an operator or bracket.
	TokenOp
	// TokenInt is an integer literal.
	TokenInt
	// TokenFloat is a literal with an exponent, or an infinity.
	TokenFloat
	// TokenDecimal is a literal with a fractional part and no exponent.
	TokenDecimal
	// TokenSeq is a brace-delimited sequence of numeric literals. Its text
	// is the content between the braces.
	TokenSeq
)

func (k TokenKind) String() string {
	switch k {
	case TokenNone:
		return "None"
	case TokenIdent:
		return "Ident"
	case TokenOp:
		return "Op"
	case TokenInt:
		return "Int"
	case TokenFloat:
		return "Float"
	case TokenDecimal:
		return "Decimal"
	case TokenSeq:
		return "Seq"
	default:
		return "TokenKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Operators contains the runes which begin operator tokens.
const Operators = "+-*/^×÷%!=<>()[],"

// IncrementOp is the reserved operator separating an array descriptor's
// bounds from its increment.
const IncrementOp = "<>"

type lexer struct {
	src  io.RuneScanner
	buf  strings.Builder
	rune int
}

// Tokenize scans all tokens from src.
func Tokenize(src io.RuneScanner) ([]Token, error) {
	l := &lexer{src: src}
	var toks []Token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		if tok.Kind == TokenNone {
			return toks, nil
		}
		toks = append(toks, tok)
	}
}

// TokenizeString is a shortcut to tokenize a string.
func TokenizeString(src string) ([]Token, error) {
	return Tokenize(strings.NewReader(src))
}

// readRune reads a rune from the src and updates the lexer's position info.
func (l *lexer) readRune() (r rune, err error) {
	r, sz, err := l.src.ReadRune()
	if sz > 0 {
		l.rune++
	}
	return r, err
}

// unreadRune unreads a rune from the src and updates the lexer's position
// info. Panics if unreading returns an error.
func (l *lexer) unreadRune() {
	if err := l.src.UnreadRune(); err != nil {
		panic(err)
	}
	l.rune--
}

// next scans the next token from the input. At the end of the input, the
// result is a token of kind TokenNone with a nil error.
func (l *lexer) next() (Token, error) {
	defer l.buf.Reset()
	for {
		r, err := l.readRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return Token{}, nil
			}
			return Token{}, errors.Wrap(err, "reading input")
		}
		tok := Token{Pos: l.rune}
		switch {
		case unicode.IsSpace(r):
			continue
		case '0' <= r && r <= '9', r == '.':
			l.unreadRune()
			k, err := l.scanNum()
			if err != nil {
				return tok, err
			}
			tok.Text = l.buf.String()
			tok.Kind = k
			return tok, nil
		case r == '_', unicode.IsLetter(r):
			l.unreadRune()
			if err := l.scanIdent(); err != nil {
				return tok, err
			}
			tok.Text = l.buf.String()
			// inf looks like an identifier, so check for it here.
			switch tok.Text {
			case "inf", "Inf":
				tok.Kind = TokenFloat
			default:
				tok.Kind = TokenIdent
			}
			return tok, nil
		case r == '∞':
			tok.Text = "∞"
			tok.Kind = TokenFloat
			return tok, nil
		case r == '{':
			if err := l.scanSeq(); err != nil {
				return tok, err
			}
			tok.Text = l.buf.String()
			tok.Kind = TokenSeq
			return tok, nil
		case strings.ContainsRune(Operators, r):
			l.buf.WriteRune(r)
			l.scanOp(r)
			tok.Text = l.buf.String()
			tok.Kind = TokenOp
			return tok, nil
		default:
			// Write the rune so that it shows up in the error message.
			l.buf.WriteRune(r)
			return tok, l.error("")
		}
	}
}

// scanOp extends a single-rune operator to a two-rune one where possible.
func (l *lexer) scanOp(first rune) {
	r, err := l.readRune()
	if err != nil {
		return
	}
	switch {
	case first == '<' && (r == '=' || r == '>'),
		first == '>' && r == '=',
		first == '=' && r == '=',
		first == '!' && r == '=':
		l.buf.WriteRune(r)
	default:
		l.unreadRune()
	}
}

func (l *lexer) scanNum() (TokenKind, error) {
	var dig, dot, e, le, ed bool
	for {
		r, err := l.readRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return TokenNone, errors.Wrap(err, "reading input")
		}
		if r == '+' || r == '-' {
			// + or - anywhere other than immediately following an exponent
			// marker means a new token, as it is an operator.
			if !le {
				l.unreadRune()
				break
			}
			le = false
			l.buf.WriteRune(r)
			continue
		}
		if r != '.' && r != 'e' && r != 'E' && !('0' <= r && r <= '9') {
			if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
				l.buf.WriteRune(r)
				return TokenNone, l.error("number")
			}
			l.unreadRune()
			break
		}
		l.buf.WriteRune(r)
		switch r {
		case '.':
			if dot || e {
				return TokenNone, l.error("number")
			}
			dot = true
			le = false
		case 'e', 'E':
			if !dig || e {
				return TokenNone, l.error("number")
			}
			e = true
			le = true
		default:
			if e {
				ed = true
			} else {
				dig = true
			}
			le = false
		}
	}
	if (!dig && !ed) || (e && !ed) {
		return TokenNone, l.error("number")
	}
	switch {
	case e:
		return TokenFloat, nil
	case dot:
		return TokenDecimal, nil
	default:
		return TokenInt, nil
	}
}

// scanIdent scans a name. Names may end with any number of primes, which
// name derivatives, or a single tilde, which names an antiderivative.
func (l *lexer) scanIdent() error {
	primes := false
	for {
		r, err := l.readRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				// next unreads the rune that decides ident scanning before
				// calling scanIdent, so we have scanned at least one rune.
				return nil
			}
			return errors.Wrap(err, "reading input")
		}
		switch {
		case r == '\'':
			primes = true
			l.buf.WriteRune(r)
		case r == '~':
			if primes {
				l.buf.WriteRune(r)
				return l.error("identifier")
			}
			l.buf.WriteRune(r)
			return nil
		case !primes && (r == '_' || r == '.' || unicode.IsLetter(r) || unicode.IsDigit(r)):
			l.buf.WriteRune(r)
		default:
			l.unreadRune()
			return nil
		}
	}
}

// scanSeq scans the content of a sequence literal after its opening brace.
func (l *lexer) scanSeq() error {
	for {
		r, err := l.readRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return l.error("sequence")
			}
			return errors.Wrap(err, "reading input")
		}
		switch {
		case r == '}':
			return nil
		case r == ',', r == '.', r == '+', r == '-', r == 'e', r == 'E',
			'0' <= r && r <= '9', unicode.IsSpace(r):
			l.buf.WriteRune(r)
		default:
			l.buf.WriteRune(r)
			return l.error("sequence")
		}
	}
}

func (l *lexer) error(kind string) error {
	return &LexError{
		Text: l.buf.String(),
		Kind: kind,
		Col:  l.rune,
	}
}

// LexError indicates an invalid token. It implements InputError.
type LexError struct {
	// Text is the token the lexer was scanning when the invalid rune was
	// encountered, plus the invalid rune.
	Text string
	// Kind is the type of token the lexer was scanning. This may be "number",
	// "identifier", "sequence", or the empty string (if a token kind hadn't
	// been decided).
	Kind string
	// Col is the total number of runes scanned by the lexer up to and
	// including this error.
	Col int
}

func (err *LexError) Error() string {
	pos := "column " + strconv.Itoa(err.Col)
	if err.Kind == "" {
		return "invalid token at " + pos + ": " + err.Text
	}
	return "invalid " + err.Kind + " token at " + pos + ": " + err.Text
}

func (err *LexError) Pos() int {
	return err.Col
}
