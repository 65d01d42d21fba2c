package stackcalc

import (
	"math"
	"strconv"
)

// OpKind is the variant of an Operation.
type OpKind int8

const (
	OpNone OpKind = iota
	// OpUnary is a prefix operator of one operand.
	OpUnary
	// OpBinary is an infix operator. When there is no left operand, it
	// applies to a synthetic zero instead.
	OpBinary
	// OpPostfix is an operator which follows its operand.
	OpPostfix
	// OpCall is a parameterized function call. Multiple arguments arrive as
	// a single list value.
	OpCall
	// OpAssignStart begins an assignment; the next name is its target.
	OpAssignStart
	// OpStore stores a value to the assignment target, possibly at an index.
	OpStore
	// OpGroupOpen and OpGroupClose delimit a parenthesized group.
	OpGroupOpen
	OpGroupClose
	// OpArrayOpen and OpArrayClose delimit an array literal, an array
	// descriptor, or an index.
	OpArrayOpen
	OpArrayClose
	// OpContinue separates the items of a group.
	OpContinue
	// OpDefine defines a subroutine.
	OpDefine
	// OpDeclare defines a transform from a list of coefficients.
	OpDeclare
	// OpConditional evaluates one of two branches.
	OpConditional
)

func (k OpKind) String() string {
	switch k {
	case OpUnary:
		return "unary operator"
	case OpBinary:
		return "binary operator"
	case OpPostfix:
		return "postfix operator"
	case OpCall:
		return "function"
	case OpAssignStart:
		return "assignment"
	case OpStore:
		return "storage"
	case OpGroupOpen, OpGroupClose, OpArrayOpen, OpArrayClose, OpContinue:
		return "grouping"
	case OpDefine, OpDeclare:
		return "declaration"
	case OpConditional:
		return "conditional"
	default:
		return "OpKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Prec is an operator precedence level. Higher levels bind more tightly.
type Prec int8

const (
	PrecTerminator Prec = iota
	PrecAssign
	PrecStore
	PrecGroup
	PrecRelational
	PrecAdditive
	PrecMultiplicative
	PrecUnary
	PrecPower
	PrecPostfix
	PrecCall
)

// Operation is a named, precedence-bearing callable. Builtins and
// user-defined functions satisfy the same contract.
type Operation[T any] struct {
	Name string
	Kind OpKind
	Prec Prec
	// Right indicates right-associativity.
	Right bool
	// Calculus indicates that a CalculusRequest on the argument to a call
	// dispatches to calculus rather than to Call.
	Calculus bool
	// Call implements unary, postfix, and call operations.
	Call func(e *Engine[T], x Value[T]) (Value[T], error)
	// Binary implements binary operations.
	Binary func(e *Engine[T], x, y Value[T]) (Value[T], error)
	// Declare constructs the transform for a declaration.
	Declare func(a Arith[T], coef []T) (Transform[T], error)
	// Transform is the transform evaluated by a transform operation.
	Transform Transform[T]
}

func (op *Operation[T]) String() string {
	return op.Name
}

// monadic creates a function of one variable applied element-wise.
func monadic[T any](name string, f func(a Arith[T], x T) (T, error)) *Operation[T] {
	return &Operation[T]{
		Name:     name,
		Kind:     OpCall,
		Prec:     PrecCall,
		Calculus: true,
		Call: func(e *Engine[T], x Value[T]) (Value[T], error) {
			return lift1(consolidate(x), func(v T) (T, error) { return f(e.arith, v) })
		},
	}
}

// viaFloat creates a function of one variable computed in float64.
func viaFloat[T any](name string, f func(float64) float64) *Operation[T] {
	return monadic(name, func(a Arith[T], x T) (T, error) {
		r := f(a.Float64(x))
		if math.IsNaN(r) {
			return x, domainError(name, a.Format(x))
		}
		return a.FromFloat64(r), nil
	})
}

func binary[T any](name string, prec Prec, right bool, f func(a Arith[T], x, y T) (T, error)) *Operation[T] {
	return &Operation[T]{
		Name:  name,
		Kind:  OpBinary,
		Prec:  prec,
		Right: right,
		Binary: func(e *Engine[T], x, y Value[T]) (Value[T], error) {
			return lift2(x, y, func(l, r T) (T, error) { return f(e.arith, l, r) })
		},
	}
}

func relational[T any](name string, f func(a Arith[T], x, y T) bool) *Operation[T] {
	return binary(name, PrecRelational, false, func(a Arith[T], x, y T) (T, error) {
		if f(a, x, y) {
			return a.One(), nil
		}
		return a.Zero(), nil
	})
}

func structural[T any](name string, kind OpKind, prec Prec) *Operation[T] {
	return &Operation[T]{Name: name, Kind: kind, Prec: prec}
}

// elementary returns a's native elementary functions, or float64
// approximations if it has none.
func elementary[T any](a Arith[T]) Elementary[T] {
	if el, ok := a.(Elementary[T]); ok {
		return el
	}
	return floatElementary[T]{a}
}

type floatElementary[T any] struct {
	a Arith[T]
}

func (f floatElementary[T]) Exp(x T) (T, error) {
	return f.a.FromFloat64(math.Exp(f.a.Float64(x))), nil
}

func (f floatElementary[T]) Log(x T) (T, error) {
	if f.a.Less(x, f.a.Zero()) {
		return x, domainError("ln", f.a.Format(x))
	}
	return f.a.FromFloat64(math.Log(f.a.Float64(x))), nil
}

func (f floatElementary[T]) Sqrt(x T) (T, error) {
	if f.a.Less(x, f.a.Zero()) {
		return x, domainError("sqrt", f.a.Format(x))
	}
	return f.a.FromFloat64(math.Sqrt(f.a.Float64(x))), nil
}

func (f floatElementary[T]) Pow(x, y T) (T, error) {
	r := math.Pow(f.a.Float64(x), f.a.Float64(y))
	if math.IsNaN(r) {
		return x, domainError("^", f.a.Format(x))
	}
	return f.a.FromFloat64(r), nil
}

func (f floatElementary[T]) Pi() T {
	return f.a.FromFloat64(math.Pi)
}

// builtins creates the operations and constants every environment starts
// with.
func builtins[T any](a Arith[T]) []*Entry[T] {
	el := elementary(a)
	ops := []*Operation[T]{
		structural[T]("let", OpAssignStart, PrecAssign),
		structural[T]("=", OpStore, PrecStore),
		structural[T]("(", OpGroupOpen, PrecGroup),
		structural[T](")", OpGroupClose, PrecGroup),
		structural[T]("[", OpArrayOpen, PrecGroup),
		structural[T]("]", OpArrayClose, PrecGroup),
		structural[T](",", OpContinue, PrecGroup),
		structural[T]("def", OpDefine, PrecAssign),
		structural[T]("if", OpConditional, PrecCall),
		{Name: "poly", Kind: OpDeclare, Prec: PrecAssign, Declare: newPolynomial[T]},
		{Name: "cheb", Kind: OpDeclare, Prec: PrecAssign, Declare: newCosineSeries[T]},

		binary("+", PrecAdditive, false, func(a Arith[T], x, y T) (T, error) { return a.Add(x, y), nil }),
		binary("-", PrecAdditive, false, func(a Arith[T], x, y T) (T, error) { return a.Sub(x, y), nil }),
		binary("*", PrecMultiplicative, false, func(a Arith[T], x, y T) (T, error) { return a.Mul(x, y), nil }),
		binary("×", PrecMultiplicative, false, func(a Arith[T], x, y T) (T, error) { return a.Mul(x, y), nil }),
		binary("/", PrecMultiplicative, false, func(a Arith[T], x, y T) (T, error) { return a.Quo(x, y) }),
		binary("÷", PrecMultiplicative, false, func(a Arith[T], x, y T) (T, error) { return a.Quo(x, y) }),
		binary("%", PrecMultiplicative, false, func(a Arith[T], x, y T) (T, error) {
			r := math.Mod(a.Float64(x), a.Float64(y))
			if math.IsNaN(r) {
				return x, domainError("%", a.Format(y))
			}
			return a.FromFloat64(r), nil
		}),
		binary("^", PrecPower, true, func(a Arith[T], x, y T) (T, error) { return el.Pow(x, y) }),

		{
			Name:     "neg",
			Kind:     OpUnary,
			Prec:     PrecUnary,
			Right:    true,
			Calculus: true,
			Call: func(e *Engine[T], x Value[T]) (Value[T], error) {
				return lift1(consolidate(x), func(v T) (T, error) { return e.arith.Neg(v), nil })
			},
		},

		relational("<", func(a Arith[T], x, y T) bool { return a.Less(x, y) }),
		relational(">", func(a Arith[T], x, y T) bool { return a.Less(y, x) }),
		relational("<=", func(a Arith[T], x, y T) bool { return !a.Less(y, x) }),
		relational(">=", func(a Arith[T], x, y T) bool { return !a.Less(x, y) }),
		relational("==", func(a Arith[T], x, y T) bool { return !a.Less(x, y) && !a.Less(y, x) }),
		relational("!=", func(a Arith[T], x, y T) bool { return a.Less(x, y) || a.Less(y, x) }),

		{
			Name: "!",
			Kind: OpPostfix,
			Prec: PrecPostfix,
			Call: func(e *Engine[T], x Value[T]) (Value[T], error) {
				return lift1(x, func(v T) (T, error) {
					f := e.arith.Float64(v)
					if f < 0 && f == math.Trunc(f) {
						return v, domainError("!", e.arith.Format(v))
					}
					return e.arith.FromFloat64(math.Gamma(f + 1)), nil
				})
			},
		},

		monadic("sqrt", func(a Arith[T], x T) (T, error) { return el.Sqrt(x) }),
		monadic("exp", func(a Arith[T], x T) (T, error) { return el.Exp(x) }),
		monadic("ln", func(a Arith[T], x T) (T, error) { return el.Log(x) }),
		monadic("log", func(a Arith[T], x T) (T, error) {
			r, err := el.Log(x)
			if err != nil {
				return r, err
			}
			ten, err := el.Log(a.FromFloat64(10))
			if err != nil {
				return r, err
			}
			return a.Quo(r, ten)
		}),
		monadic("abs", func(a Arith[T], x T) (T, error) {
			if a.Less(x, a.Zero()) {
				return a.Neg(x), nil
			}
			return x, nil
		}),
		viaFloat[T]("sin", math.Sin),
		viaFloat[T]("cos", math.Cos),
		viaFloat[T]("tan", math.Tan),
		viaFloat[T]("atan", math.Atan),
		viaFloat[T]("floor", math.Floor),

		{Name: "sum", Kind: OpCall, Prec: PrecCall, Call: sum[T]},
		{Name: "len", Kind: OpCall, Prec: PrecCall, Call: length[T]},
		{Name: "window", Kind: OpCall, Prec: PrecCall, Call: window[T]},
		{Name: "stop", Kind: OpCall, Prec: PrecCall, Call: stop[T]},

		tagger[T]("d1", 0, func(p []T) CalculusRequest[T] { return Derivative[T]{Order: 1} }),
		tagger[T]("d2", 0, func(p []T) CalculusRequest[T] { return Derivative[T]{Order: 2} }),
		tagger[T]("fd1", 1, func(p []T) CalculusRequest[T] { return Derivative[T]{Order: 1, Approx: true, Step: p[0]} }),
		tagger[T]("fd2", 1, func(p []T) CalculusRequest[T] { return Derivative[T]{Order: 2, Approx: true, Step: p[0]} }),
		tagger[T]("antid", 0, func(p []T) CalculusRequest[T] { return Antiderivative[T]{} }),
		bounds[T]("interval", 2, func(p []T) CalculusRequest[T] { return Interval[T]{Lo: p[0], Hi: p[1]} }),
		bounds[T]("trap", 3, func(p []T) CalculusRequest[T] {
			return Quadrature[T]{Kind: Trapezoid, Lo: p[0], Hi: p[1], Param: p[2]}
		}),
		bounds[T]("atrap", 3, func(p []T) CalculusRequest[T] {
			return Quadrature[T]{Kind: AdaptiveTrapezoid, Lo: p[0], Hi: p[1], Param: p[2]}
		}),
		bounds[T]("ccq", 2, func(p []T) CalculusRequest[T] {
			return Quadrature[T]{Kind: ClenshawCurtis, Lo: p[0], Hi: p[1]}
		}),
		bounds[T]("root", 3, func(p []T) CalculusRequest[T] { return Root[T]{Lo: p[0], Hi: p[1], Tol: p[2]} }),
	}
	r := make([]*Entry[T], 0, len(ops)+2)
	for _, op := range ops {
		r = append(r, &Entry[T]{Name: op.Name, Kind: EntryOperation, Op: op})
	}
	r = append(r, &Entry[T]{Name: "pi", Kind: EntryVariable, Value: Scalar(el.Pi())})
	if e, err := el.Exp(a.One()); err == nil {
		r = append(r, &Entry[T]{Name: "e", Kind: EntryVariable, Value: Scalar(e)})
	}
	return r
}

// tagger creates an operation which tags its first argument with a calculus
// request built from the remaining n scalar arguments.
func tagger[T any](name string, n int, req func(p []T) CalculusRequest[T]) *Operation[T] {
	return &Operation[T]{
		Name: name,
		Kind: OpCall,
		Prec: PrecCall,
		Call: func(e *Engine[T], x Value[T]) (Value[T], error) {
			v := x
			var p []T
			if n > 0 {
				if x.Kind != ValueList || len(x.Items) != n+1 {
					return Value[T]{}, arityError(name, n+1, x)
				}
				v = x.Items[0]
				ps, err := scalars(name, Tuple(x.Items[1:]...), n)
				if err != nil {
					return Value[T]{}, err
				}
				p = ps
			}
			v = consolidate(v)
			if err := operand(v); err != nil {
				return Value[T]{}, err
			}
			return v.Bare().WithMeta(req(p)), nil
		},
	}
}

// bounds creates an operation which builds a calculus request from n scalar
// arguments. The tagged value is the list of arguments.
func bounds[T any](name string, n int, req func(p []T) CalculusRequest[T]) *Operation[T] {
	return &Operation[T]{
		Name: name,
		Kind: OpCall,
		Prec: PrecCall,
		Call: func(e *Engine[T], x Value[T]) (Value[T], error) {
			p, err := scalars(name, x, n)
			if err != nil {
				return Value[T]{}, err
			}
			return x.Bare().WithMeta(req(p)), nil
		},
	}
}

// scalars extracts exactly n discrete arguments from x.
func scalars[T any](name string, x Value[T], n int) ([]T, error) {
	x = consolidate(x)
	switch {
	case n == 1 && x.Kind == ValueDiscrete:
		return []T{x.Num}, nil
	case x.Kind == ValueDimensioned && len(x.Dims) == n:
		return x.Dims, nil
	default:
		return nil, arityError(name, n, x)
	}
}

func arityError[T any](name string, n int, x Value[T]) error {
	return &Error{
		Kind: KindSymbol,
		Msg:  "wrong arguments (want " + strconv.Itoa(n) + " scalars, have " + strconv.Itoa(x.Len()) + " " + x.Kind.String() + ") for",
		Name: name,
	}
}

func sum[T any](e *Engine[T], x Value[T]) (Value[T], error) {
	x = consolidate(x)
	if err := operand(x); err != nil {
		return Value[T]{}, err
	}
	if x.Kind == ValueDiscrete {
		return x.Bare(), nil
	}
	r := e.arith.Zero()
	for _, v := range x.Dims {
		r = e.arith.Add(r, v)
	}
	return Scalar(r), nil
}

func length[T any](e *Engine[T], x Value[T]) (Value[T], error) {
	return Scalar(e.arith.FromFloat64(float64(consolidate(x).Len()))), nil
}

// window regenerates a range-generated array over a narrower interval.
func window[T any](e *Engine[T], x Value[T]) (Value[T], error) {
	if x.Kind != ValueList || len(x.Items) != 3 {
		return Value[T]{}, arityError("window", 3, x)
	}
	d, ok := x.Items[0].Meta.(*ArrayDescriptor[T])
	if !ok {
		return Value[T]{}, symbolError("not a range-generated array in", "window")
	}
	p, err := scalars("window", Tuple(x.Items[1:]...), 2)
	if err != nil {
		return Value[T]{}, err
	}
	n, err := d.Narrow(e.arith, p[0], p[1], "window")
	if err != nil {
		return Value[T]{}, err
	}
	return n.Generate(e)
}

// stop raises a termination carrying its argument.
func stop[T any](e *Engine[T], x Value[T]) (Value[T], error) {
	return Value[T]{}, &Error{Kind: KindTermination, Msg: "stopped", Value: x.Format(e.arith)}
}
