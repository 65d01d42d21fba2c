package stackcalc

import "strconv"

// valueStack holds operands and intermediate results.
type valueStack[T any] []Value[T]

func (s *valueStack[T]) push(v Value[T]) {
	*s = append(*s, v)
}

// pop removes the top from the stack and returns it. Popping an empty stack
// is a stack-consistency error.
func (s *valueStack[T]) pop() (Value[T], error) {
	if len(*s) == 0 {
		return Value[T]{}, stackError("value stack underflow", "")
	}
	r := (*s)[len(*s)-1]
	(*s)[len(*s)-1] = Value[T]{}
	*s = (*s)[:len(*s)-1]
	return r, nil
}

// top is a shortcut to get the top element of the stack. The stack must not
// be empty.
func (s valueStack[T]) top() Value[T] {
	return s[len(s)-1]
}

// opEntry is an operator waiting on the operator stack.
type opEntry[T any] struct {
	// op is the operator, or nil for the terminator.
	op *Operation[T]
	// prec is the precedence in effect, which may differ from op.Prec when a
	// binary operator is reinterpreted as unary.
	prec  Prec
	right bool
	// marker is set for group and array openers. depth is the height of the
	// value stack when the marker was pushed, and items counts separators
	// seen in the group.
	marker bool
	depth  int
	items  int
	// index is set for an array opener which indexes the value before it.
	index bool
	pos   int
}

// opStack holds pending operators above a terminator of minimal precedence.
type opStack[T any] []opEntry[T]

func newOpStack[T any]() opStack[T] {
	return opStack[T]{{prec: PrecTerminator}}
}

func (s *opStack[T]) push(e opEntry[T]) {
	*s = append(*s, e)
}

// pop removes the top operator. Popping the terminator is a fatal
// stack-consistency error.
func (s *opStack[T]) pop() (opEntry[T], error) {
	if len(*s) <= 1 {
		return opEntry[T]{}, stackError("operator stack underflow", "")
	}
	r := (*s)[len(*s)-1]
	*s = (*s)[:len(*s)-1]
	return r, nil
}

// top returns the top operator, which is the terminator if none are pending.
func (s opStack[T]) top() *opEntry[T] {
	return &s[len(s)-1]
}

// terminated returns whether only the terminator remains.
func (s opStack[T]) terminated() bool {
	return len(s) == 1 && s[0].op == nil && !s[0].marker
}

func (e opEntry[T]) String() string {
	if e.op == nil {
		return "⊥"
	}
	return e.op.Name + "@" + strconv.Itoa(e.pos)
}
