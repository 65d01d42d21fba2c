package stackcalc

import (
	"strings"
)

// conventionName splits a name using the derivative convention, f' or f'', or
// the antiderivative convention, f~. order is the number of primes, or -1 for
// an antiderivative.
func conventionName(name string) (base string, order int, ok bool) {
	if strings.HasSuffix(name, "~") {
		base = name[:len(name)-1]
		return base, -1, base != ""
	}
	base = strings.TrimRight(name, "'")
	order = len(name) - len(base)
	return base, order, base != "" && order > 0
}

// derivedName is the inverse of conventionName.
func derivedName(base string, order int) string {
	if order < 0 {
		return base + "~"
	}
	return base + strings.Repeat("'", order)
}

// symbolic returns the entry for the derivative of the given order, or the
// antiderivative if order is negative, of the transform named base. A
// constructed transform is registered in the current table, so each is
// built at most once per table.
func (e *Engine[T]) symbolic(base string, order int) (*Entry[T], error) {
	name := derivedName(base, order)
	if ent, ok := e.table.Lookup(name); ok && ent.Kind == EntryTransform {
		return ent, nil
	}
	var (
		src *Entry[T]
		err error
	)
	if order > 1 {
		src, err = e.symbolic(base, order-1)
		if err != nil {
			return nil, err
		}
	} else {
		var ok bool
		src, ok = e.table.Lookup(base)
		if !ok {
			return nil, symbolError("undefined", base)
		}
	}
	if src.Kind != EntryTransform {
		return nil, &Error{Kind: KindDomain, Msg: "exact calculus requires a transform function, not " + src.Kind.String(), Name: base}
	}
	var fn Transform[T]
	if order < 0 {
		fn, err = src.Fn.Antiderivative(e.arith)
	} else {
		fn, err = src.Fn.Derivative(e.arith)
	}
	if err != nil {
		return nil, err
	}
	ent := transformEntry(name, fn)
	e.table.Add(ent)
	if e.env.trace != nil {
		e.env.trace.Printf("%*sconstructed %s = %s", 2*e.depth, "", name, fn.Describe(e.arith))
	}
	return ent, nil
}

// transformEntry creates the entry for a transform function.
func transformEntry[T any](name string, fn Transform[T]) *Entry[T] {
	op := &Operation[T]{
		Name:      name,
		Kind:      OpCall,
		Prec:      PrecCall,
		Calculus:  true,
		Transform: fn,
		Call: func(e *Engine[T], x Value[T]) (Value[T], error) {
			return lift1(consolidate(x), func(v T) (T, error) { return fn.Eval(e.arith, v) })
		},
	}
	return &Entry[T]{Name: name, Kind: EntryTransform, Op: op, Fn: fn}
}

// declare handles poly name = coefficients and cheb name = coefficients.
func (e *Engine[T]) declare(op *Operation[T]) error {
	toks := e.toks[e.next:]
	e.next = len(e.toks)
	e.expect = 0
	if len(toks) < 3 || toks[0].Kind != TokenIdent || toks[1].Text != "=" {
		return syntaxError("want name = (coefficients) after", op.Name)
	}
	name := toks[0].Text
	if _, _, ok := conventionName(name); ok {
		return syntaxError("transform name cannot end with ' or ~:", name)
	}
	if ent, ok := e.table.Lookup(name); ok && ent.Kind == EntryOperation {
		return symbolError("cannot redefine operation", name)
	}
	v, err := e.sub(toks[2:])
	if err != nil {
		return err
	}
	var coef []T
	switch v = consolidate(v); v.Kind {
	case ValueDiscrete:
		coef = []T{v.Num}
	case ValueDimensioned:
		coef = v.Dims
	default:
		return syntaxError("coefficients must be scalars for", name)
	}
	fn, err := op.Declare(e.arith, coef)
	if err != nil {
		return err
	}
	// Derived transforms of a previous definition are stale.
	for _, suffix := range []string{"'", "''", "~"} {
		e.table.Remove(name + suffix)
	}
	e.table.Add(transformEntry(name, fn))
	e.result = Value[T]{}
	return nil
}

// dispatch performs the calculus requested by the metadata on the argument
// to op. x is the argument with the request removed.
func (e *Engine[T]) dispatch(op *Operation[T], x Value[T], req CalculusRequest[T]) (Value[T], error) {
	a := e.arith
	f := func(v T) (T, error) {
		r, err := op.Call(e, Scalar(v))
		if err != nil {
			return v, err
		}
		r = consolidate(r)
		if r.Kind != ValueDiscrete {
			if err := operand(r); err != nil {
				return v, err
			}
			return v, &Error{Kind: KindDomain, Msg: "calculus requires a scalar function, not", Name: op.Name}
		}
		return r.Num, nil
	}
	switch r := req.(type) {
	case Derivative[T]:
		if r.Approx {
			return lift1(x, func(v T) (T, error) { return centralDifference(a, f, v, r.Step, r.Order) })
		}
		ent, err := e.exact(op, r.Order)
		if err != nil {
			return Value[T]{}, err
		}
		return ent.Op.Call(e, x)
	case Antiderivative[T]:
		ent, err := e.exact(op, -1)
		if err != nil {
			return Value[T]{}, err
		}
		return ent.Op.Call(e, x)
	case Interval[T]:
		ent, err := e.exact(op, -1)
		if err != nil {
			return Value[T]{}, err
		}
		s, err := definite(a, ent.Fn, r.Lo, r.Hi)
		if err != nil {
			return Value[T]{}, err
		}
		return Scalar(s), nil
	case Quadrature[T]:
		var (
			s   T
			err error
		)
		switch r.Kind {
		case Trapezoid:
			n := a.Float64(r.Param)
			if n < 1 || n >= maxIndex {
				return Value[T]{}, domainError("trap", a.Format(r.Param))
			}
			s, err = trapezoid(a, f, r.Lo, r.Hi, int(n))
		case AdaptiveTrapezoid:
			s, err = adaptiveTrapezoid(a, f, r.Lo, r.Hi, r.Param)
		case ClenshawCurtis:
			s, err = clenshawCurtis(a, op.Transform, r.Lo, r.Hi)
		default:
			return Value[T]{}, symbolError("unknown quadrature for", op.Name)
		}
		if err != nil {
			return Value[T]{}, err
		}
		return Scalar(s), nil
	case Root[T]:
		s, err := bisect(a, f, r.Lo, r.Hi, r.Tol)
		if err != nil {
			return Value[T]{}, err
		}
		return Scalar(s), nil
	default:
		return Value[T]{}, symbolError("unknown calculus request for", op.Name)
	}
}

// exact finds or constructs the exact derivative or antiderivative of op.
func (e *Engine[T]) exact(op *Operation[T], order int) (*Entry[T], error) {
	if op.Transform == nil {
		return nil, &Error{Kind: KindDomain, Msg: "exact calculus requires a transform function, not", Name: op.Name}
	}
	return e.symbolic(op.Name, order)
}
