package stackcalc

import (
	"strconv"

	"github.com/pkg/errors"
)

// Kind classifies evaluation errors.
type Kind int8

const (
	kindNone Kind = iota
	// KindSyntax is a structural error in a statement, an array descriptor,
	// or a subroutine profile.
	KindSyntax
	// KindSymbol is an unknown operator, a symbol of the wrong kind, or a
	// use of an undefined name.
	KindSymbol
	// KindStack is a stack-consistency error: underflow, leftover values, or
	// unbalanced groups. It is never recovered locally.
	KindStack
	// KindDomain is an evaluation-time error, e.g. an argument outside the
	// domain of a function or a derivative of a non-transform function.
	KindDomain
	// KindTermination is intentional control flow rather than failure. Error
	// suppression boundaries always re-raise it.
	KindTermination
)

func (k Kind) String() string {
	switch k {
	case KindSyntax:
		return "syntax"
	case KindSymbol:
		return "symbol"
	case KindStack:
		return "stack"
	case KindDomain:
		return "domain"
	case KindTermination:
		return "termination"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Error is an error raised during evaluation. It implements InputError.
type Error struct {
	// Kind is the class of the error.
	Kind Kind
	// Msg describes the error.
	Msg string
	// Name is the symbol, operator, or function involved, if any.
	Name string
	// Col is the position of the token being evaluated, or 0 if the error
	// did not arise from a particular token.
	Col int
	// Value is the formatted value carried by a termination.
	Value string
	// Err is the cause, if any.
	Err error
}

func (err *Error) Error() string {
	s := err.Msg
	if err.Name != "" {
		s += " " + strconv.Quote(err.Name)
	}
	if err.Value != "" {
		s += ": " + err.Value
	}
	if err.Err != nil {
		s += ": " + err.Err.Error()
	}
	if err.Col > 0 {
		s = errpos(err.Col, s)
	}
	return s
}

func (err *Error) Pos() int {
	return err.Col
}

// Unwrap returns the cause of the error.
func (err *Error) Unwrap() error {
	return err.Err
}

// Cause returns the cause of the error, for errors.Cause.
func (err *Error) Cause() error {
	return err.Err
}

// at attaches a token position to err if it is an *Error without one.
func at(err error, col int) error {
	var e *Error
	if errors.As(err, &e) && e.Col == 0 {
		e.Col = col
	}
	return err
}

// KindOf returns the kind of an error. Errors which did not originate in
// evaluation, such as those from a type manager, are domain errors.
func KindOf(err error) Kind {
	if err == nil {
		return kindNone
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindDomain
}

// Suppressible returns whether a local error boundary, like a single array
// element or a suppressed subroutine, may replace err with a placeholder.
// Stack-consistency errors and terminations always propagate.
func Suppressible(err error) bool {
	switch KindOf(err) {
	case kindNone, KindStack, KindTermination:
		return false
	default:
		return true
	}
}

func syntaxError(msg, name string) *Error {
	return &Error{Kind: KindSyntax, Msg: msg, Name: name}
}

func symbolError(msg, name string) *Error {
	return &Error{Kind: KindSymbol, Msg: msg, Name: name}
}

func stackError(msg, name string) *Error {
	return &Error{Kind: KindStack, Msg: msg, Name: name}
}

// domainError is an error for an argument x outside the domain of fn.
func domainError(fn, x string) *Error {
	return &Error{Kind: KindDomain, Msg: x + " outside domain of", Name: fn}
}

// errpos is a shortcut to create an error message with a position.
func errpos(pos int, msg string) string {
	return strconv.Itoa(pos) + ": " + msg
}

// InputError is an error with position information. Every error resulting from
// invalid input implements InputError.
type InputError interface {
	error
	// Pos returns the position of the error as the number of runes up to and
	// including the start of the token that caused the error.
	Pos() int
}

var (
	_ InputError = (*Error)(nil)
	_ InputError = (*LexError)(nil)
)
