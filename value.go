package stackcalc

import (
	"strconv"
	"strings"
)

// ValueKind is the variant of a Value.
type ValueKind int8

const (
	// ValueNone is the result of statements which produce no value, like
	// definitions.
	ValueNone ValueKind = iota
	// ValueDiscrete is a single element.
	ValueDiscrete
	// ValueDimensioned is an ordered list of elements.
	ValueDimensioned
	// ValueList is an ordered list of values, e.g. function arguments or
	// multiple results.
	ValueList
	// ValueUndefined is a placeholder for a name with no binding.
	ValueUndefined

	// valueTarget is the name captured by a pending assignment.
	valueTarget
	// valueIndex is an index waiting beneath an assignment target.
	valueIndex
)

func (k ValueKind) String() string {
	switch k {
	case ValueNone:
		return "none"
	case ValueDiscrete:
		return "discrete"
	case ValueDimensioned:
		return "dimensioned"
	case ValueList:
		return "list"
	case ValueUndefined:
		return "undefined"
	case valueTarget:
		return "target"
	case valueIndex:
		return "index"
	default:
		return "ValueKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is an evaluation result. Which fields are meaningful depends on Kind.
// Values are treated as immutable; operations which change a value's
// elements copy them first.
type Value[T any] struct {
	Kind ValueKind
	// Num is the element of a discrete value or an index.
	Num T
	// Dims holds the elements of a dimensioned value.
	Dims []T
	// Items holds the values of a list.
	Items []Value[T]
	// Name is the name of an undefined value or an assignment target.
	Name string
	// Meta is an optional tag altering how the next operator treats the
	// value.
	Meta Metadata[T]
}

// Scalar creates a discrete value.
func Scalar[T any](x T) Value[T] {
	return Value[T]{Kind: ValueDiscrete, Num: x}
}

// Array creates a dimensioned value. The value takes ownership of xs.
func Array[T any](xs []T) Value[T] {
	return Value[T]{Kind: ValueDimensioned, Dims: xs}
}

// Tuple creates a list value.
func Tuple[T any](items ...Value[T]) Value[T] {
	return Value[T]{Kind: ValueList, Items: items}
}

// Undef creates an undefined placeholder for name.
func Undef[T any](name string) Value[T] {
	return Value[T]{Kind: ValueUndefined, Name: name}
}

// WithMeta returns a copy of v carrying m.
func (v Value[T]) WithMeta(m Metadata[T]) Value[T] {
	v.Meta = m
	return v
}

// Bare returns a copy of v without metadata.
func (v Value[T]) Bare() Value[T] {
	v.Meta = nil
	return v
}

// Len returns the number of elements or items in v, or 1 for a discrete
// value.
func (v Value[T]) Len() int {
	switch v.Kind {
	case ValueDiscrete:
		return 1
	case ValueDimensioned:
		return len(v.Dims)
	case ValueList:
		return len(v.Items)
	default:
		return 0
	}
}

// Format formats v using a's element formatting.
func (v Value[T]) Format(a Arith[T]) string {
	var b strings.Builder
	v.format(&b, a)
	return b.String()
}

func (v Value[T]) format(b *strings.Builder, a Arith[T]) {
	switch v.Kind {
	case ValueNone:
	case ValueDiscrete:
		b.WriteString(a.Format(v.Num))
	case ValueDimensioned:
		b.WriteByte('{')
		for i, x := range v.Dims {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(a.Format(x))
		}
		b.WriteByte('}')
	case ValueList:
		b.WriteByte('(')
		for i, x := range v.Items {
			if i > 0 {
				b.WriteString(", ")
			}
			x.format(b, a)
		}
		b.WriteByte(')')
	case ValueUndefined:
		b.WriteString("undefined " + v.Name)
	case valueTarget:
		b.WriteString("=" + v.Name)
	case valueIndex:
		b.WriteString("[" + a.Format(v.Num) + "]")
	}
}

// consolidate collapses single-element arrays and lists to their element and
// flattens a list of discrete values into an array. Other values are
// unchanged. Metadata on v is kept.
func consolidate[T any](v Value[T]) Value[T] {
	switch v.Kind {
	case ValueDimensioned:
		if len(v.Dims) == 1 {
			return Scalar(v.Dims[0]).WithMeta(v.Meta)
		}
	case ValueList:
		if len(v.Items) == 1 {
			r := consolidate(v.Items[0])
			if r.Meta == nil {
				r.Meta = v.Meta
			}
			return r
		}
		if len(v.Items) == 0 {
			return v
		}
		xs := make([]T, 0, len(v.Items))
		for _, it := range v.Items {
			if it.Kind != ValueDiscrete {
				return v
			}
			xs = append(xs, it.Num)
		}
		return Array(xs).WithMeta(v.Meta)
	}
	return v
}

// operand checks that v can take part in arithmetic.
func operand[T any](v Value[T]) error {
	switch v.Kind {
	case ValueDiscrete, ValueDimensioned:
		return nil
	case ValueUndefined:
		return symbolError("undefined", v.Name)
	case ValueList:
		return symbolError("cannot use a list as an operand", "")
	case valueTarget, valueIndex:
		return symbolError("invalid assignment target", v.Name)
	default:
		return symbolError("missing operand", "")
	}
}

// lift1 applies f to each element of v.
func lift1[T any](v Value[T], f func(T) (T, error)) (Value[T], error) {
	if err := operand(v); err != nil {
		return Value[T]{}, err
	}
	if v.Kind == ValueDiscrete {
		r, err := f(v.Num)
		if err != nil {
			return Value[T]{}, err
		}
		return Scalar(r), nil
	}
	xs := make([]T, len(v.Dims))
	for i, x := range v.Dims {
		r, err := f(x)
		if err != nil {
			return Value[T]{}, err
		}
		xs[i] = r
	}
	return Array(xs), nil
}

// lift2 applies f to corresponding elements of x and y. A discrete operand
// is broadcast against an array; two arrays must have the same length.
func lift2[T any](x, y Value[T], f func(T, T) (T, error)) (Value[T], error) {
	if err := operand(x); err != nil {
		return Value[T]{}, err
	}
	if err := operand(y); err != nil {
		return Value[T]{}, err
	}
	switch {
	case x.Kind == ValueDiscrete && y.Kind == ValueDiscrete:
		r, err := f(x.Num, y.Num)
		if err != nil {
			return Value[T]{}, err
		}
		return Scalar(r), nil
	case x.Kind == ValueDiscrete:
		return lift1(y, func(e T) (T, error) { return f(x.Num, e) })
	case y.Kind == ValueDiscrete:
		return lift1(x, func(e T) (T, error) { return f(e, y.Num) })
	}
	if len(x.Dims) != len(y.Dims) {
		return Value[T]{}, &Error{
			Kind: KindDomain,
			Msg:  "array lengths differ: " + strconv.Itoa(len(x.Dims)) + " and " + strconv.Itoa(len(y.Dims)),
		}
	}
	xs := make([]T, len(x.Dims))
	for i := range x.Dims {
		r, err := f(x.Dims[i], y.Dims[i])
		if err != nil {
			return Value[T]{}, err
		}
		xs[i] = r
	}
	return Array(xs), nil
}
