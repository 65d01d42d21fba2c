package stackcalc

import (
	"math"
)

// maxIndex bounds array indices so that indexed assignment cannot allocate
// without limit.
const maxIndex = 1 << 24

// store executes a pending assignment. An index waiting beneath the target
// selects indexed assignment.
func (e *Engine[T]) store() error {
	v, err := e.values.pop()
	if err != nil {
		return err
	}
	tgt, err := e.values.pop()
	if err != nil {
		return err
	}
	if tgt.Kind != valueTarget {
		return symbolError("invalid assignment target", tgt.Format(e.arith))
	}
	if len(e.values) > 0 && e.values.top().Kind == valueIndex {
		idx, _ := e.values.pop()
		return e.assignIndexed(tgt.Name, idx.Num, v)
	}
	return e.assignPlain(tgt.Name, v)
}

// assignPlain binds v to name in the current table, replacing any previous
// binding there. Array descriptors stay with the value; calculus requests do
// not.
func (e *Engine[T]) assignPlain(name string, v Value[T]) error {
	v = consolidate(v)
	if _, ok := v.Meta.(CalculusRequest[T]); ok {
		v = v.Bare()
	}
	switch v.Kind {
	case ValueDiscrete, ValueDimensioned, ValueList:
	case ValueUndefined:
		return symbolError("undefined", v.Name)
	default:
		return symbolError("nothing to assign to", name)
	}
	e.table.Add(&Entry[T]{Name: name, Kind: EntryVariable, Value: v})
	e.result = v
	return nil
}

// assignIndexed sets element idx of the array bound to name, growing it with
// the fill value as needed. An undefined name becomes a new array.
func (e *Engine[T]) assignIndexed(name string, idx T, v Value[T]) error {
	i, err := e.index(idx)
	if err != nil {
		return err
	}
	v = consolidate(v)
	if v.Kind != ValueDiscrete {
		if err := operand(v); err != nil {
			return err
		}
		return &Error{Kind: KindDomain, Msg: "array element must be a scalar, not", Name: v.Format(e.arith)}
	}
	var xs []T
	if ent, ok := e.table.Lookup(name); ok {
		switch ent.Value.Kind {
		case ValueDimensioned:
			xs = make([]T, len(ent.Value.Dims), max(len(ent.Value.Dims), i+1))
			copy(xs, ent.Value.Dims)
		case ValueUndefined:
		default:
			return symbolError("cannot index "+ent.Value.Kind.String()+" value", name)
		}
	}
	fill := e.arith.FromFloat64(e.env.fill)
	for len(xs) <= i {
		xs = append(xs, fill)
	}
	xs[i] = v.Num
	r := Array(xs)
	e.table.Add(&Entry[T]{Name: name, Kind: EntryVariable, Value: r})
	e.result = r
	return nil
}

// index converts an element to an array index.
func (e *Engine[T]) index(x T) (int, error) {
	f := e.arith.Float64(x)
	if f < 0 || f != math.Trunc(f) || f >= maxIndex {
		return 0, domainError("index", e.arith.Format(x))
	}
	return int(f), nil
}

// element reads one element or item of base.
func (e *Engine[T]) element(base, idx Value[T]) (Value[T], error) {
	idx = consolidate(idx)
	if idx.Kind != ValueDiscrete {
		if err := operand(idx); err != nil {
			return Value[T]{}, err
		}
		return Value[T]{}, domainError("index", idx.Format(e.arith))
	}
	i, err := e.index(idx.Num)
	if err != nil {
		return Value[T]{}, err
	}
	switch base.Kind {
	case ValueDimensioned:
		if i >= len(base.Dims) {
			return Value[T]{}, domainError("index", idx.Format(e.arith))
		}
		return Scalar(base.Dims[i]), nil
	case ValueList:
		if i >= len(base.Items) {
			return Value[T]{}, domainError("index", idx.Format(e.arith))
		}
		return base.Items[i], nil
	case ValueUndefined:
		return Value[T]{}, symbolError("undefined", base.Name)
	default:
		return Value[T]{}, symbolError("cannot index "+base.Kind.String()+" value", base.Name)
	}
}
