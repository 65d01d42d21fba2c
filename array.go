package stackcalc

import (
	"math"
	"strings"
)

// maxElements bounds the length of a generated array.
const maxElements = 1 << 20

// ArrayDescriptor describes a range-generated array: the element expression
// evaluated with a bound variable stepping from Lo to Hi by Delta. Strict
// bounds are normalized to inclusive ones when the descriptor is built.
//
// A generated array carries its descriptor as metadata, which titles it and
// allows it to be regenerated over a narrower interval.
type ArrayDescriptor[T any] struct {
	Lo, Hi, Delta T
	Var           string
	Expr          []Token

	desc  string
	scope *SymbolTable[T]
}

// isDescriptor returns whether the tokens inside an array opener describe a
// range rather than list literal elements. A top-level comma always means a
// literal.
func isDescriptor(inner []Token) bool {
	depth := 0
	rng := false
	for _, tok := range inner {
		if tok.Kind != TokenOp {
			continue
		}
		switch tok.Text {
		case "(", "[":
			depth++
		case ")", "]":
			depth--
		case ",":
			if depth == 0 {
				return false
			}
		case "<", "<=", IncrementOp:
			if depth == 0 {
				rng = true
			}
		}
	}
	return rng
}

// descriptor builds a descriptor from the tokens inside the brackets and the
// element expression tokens.
func (e *Engine[T]) descriptor(inner, expr []Token) (*ArrayDescriptor[T], error) {
	var (
		parts [][]Token
		seps  []string
	)
	depth, start := 0, 0
	for i, tok := range inner {
		if tok.Kind != TokenOp {
			continue
		}
		switch tok.Text {
		case "(", "[":
			depth++
		case ")", "]":
			depth--
		case "<", "<=", IncrementOp:
			if depth == 0 {
				parts = append(parts, inner[start:i])
				seps = append(seps, tok.Text)
				start = i + 1
			}
		}
	}
	parts = append(parts, inner[start:])
	if len(seps) < 2 || len(seps) > 3 || seps[0] == IncrementOp || seps[1] == IncrementOp || len(seps) == 3 && seps[2] != IncrementOp {
		return nil, syntaxError("want [lo <= name <= hi <> step] for array", "")
	}
	if len(parts[1]) != 1 || parts[1][0].Kind != TokenIdent {
		return nil, syntaxError("invalid array variable", joinTokens(parts[1]))
	}
	if len(expr) == 0 {
		return nil, syntaxError("empty array element expression", "")
	}
	a := e.arith
	lo, err := e.scalar(parts[0], "array lower bound")
	if err != nil {
		return nil, err
	}
	hi, err := e.scalar(parts[2], "array upper bound")
	if err != nil {
		return nil, err
	}
	delta := a.One()
	if len(seps) == 3 {
		delta, err = e.scalar(parts[3], "array step")
		if err != nil {
			return nil, err
		}
	}
	if !a.Less(a.Zero(), delta) {
		return nil, syntaxError("array step must be positive, not", a.Format(delta))
	}
	v := parts[1][0].Text
	d := ArrayDescriptor[T]{
		Lo:    lo,
		Hi:    hi,
		Delta: delta,
		Var:   v,
		Expr:  expr,
		desc:  "[" + a.Format(lo) + " " + seps[0] + " " + v + " " + seps[1] + " " + a.Format(hi) + " <> " + a.Format(delta) + "]",
		scope: e.table,
	}
	if seps[0] == "<" {
		d.Lo = a.Add(d.Lo, delta)
	}
	if seps[1] == "<" {
		d.Hi = a.Sub(d.Hi, delta)
	}
	return &d, nil
}

// Generate evaluates the array's elements. Each element is evaluated as a
// suppressed one-parameter subroutine, so an element which fails becomes an
// infinite placeholder while the array keeps its full length. A termination
// aborts the whole generation.
//
// If every element is an array of the same length N > 1, the result is a list
// of N arrays, one per component, rather than an array of arrays.
func (d *ArrayDescriptor[T]) Generate(e *Engine[T]) (Value[T], error) {
	a := e.arith
	m := &Subroutine[T]{
		Name:     d.Var,
		Params:   []string{d.Var},
		Body:     d.Expr,
		Suppress: true,
		scope:    d.scope,
	}
	inf := a.FromFloat64(math.Inf(1))
	var rs []Value[T]
	for i := 0; ; i++ {
		x := a.Add(d.Lo, a.Mul(a.FromFloat64(float64(i)), d.Delta))
		if a.Less(d.Hi, x) {
			break
		}
		if i >= maxElements {
			return Value[T]{}, &Error{Kind: KindDomain, Msg: "too many elements in array", Name: d.desc}
		}
		r, err := m.Run(e, Scalar(x))
		if err != nil {
			return Value[T]{}, err
		}
		r = consolidate(r).Bare()
		if r.Kind == ValueUndefined {
			r = Scalar(inf)
		}
		rs = append(rs, r)
	}
	return shape(rs).WithMeta(d), nil
}

// shape assembles generated elements.
func shape[T any](rs []Value[T]) Value[T] {
	if len(rs) == 0 {
		return Array[T](nil)
	}
	width := -1
	for _, r := range rs {
		switch {
		case r.Kind == ValueDiscrete && (width == -1 || width == 1):
			width = 1
		case r.Kind == ValueDimensioned && len(r.Dims) > 1 && (width == -1 || width == len(r.Dims)):
			width = len(r.Dims)
		default:
			return Tuple(rs...)
		}
	}
	if width == 1 {
		xs := make([]T, len(rs))
		for i, r := range rs {
			xs[i] = r.Num
		}
		return Array(xs)
	}
	curves := make([]Value[T], width)
	for j := range curves {
		xs := make([]T, len(rs))
		for i, r := range rs {
			xs[i] = r.Dims[j]
		}
		curves[j] = Array(xs)
	}
	return Tuple(curves...)
}

// Narrow derives a descriptor over [lo, hi], which must lie within d's
// bounds. name describes the derivation.
func (d *ArrayDescriptor[T]) Narrow(a Arith[T], lo, hi T, name string) (*ArrayDescriptor[T], error) {
	if a.Less(lo, d.Lo) || a.Less(d.Hi, hi) {
		return nil, domainError(name, "["+a.Format(lo)+", "+a.Format(hi)+"]")
	}
	n := *d
	n.Lo, n.Hi = lo, hi
	n.desc = name + " [" + a.Format(lo) + ", " + a.Format(hi) + "] of " + d.desc
	return &n, nil
}

// Clone derives a descriptor with the same bounds for the result of the
// operation op.
func (d *ArrayDescriptor[T]) Clone(op string) *ArrayDescriptor[T] {
	n := *d
	n.desc = op + " of " + d.desc
	return &n
}

// Describe returns the descriptor's title.
func (d *ArrayDescriptor[T]) Describe(a Arith[T]) string {
	return d.desc
}

func (*ArrayDescriptor[T]) metadata() {}

func joinTokens(toks []Token) string {
	s := make([]string, len(toks))
	for i, tok := range toks {
		s[i] = tok.Text
	}
	return strings.Join(s, " ")
}
