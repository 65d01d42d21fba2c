package stackcalc_test

import (
	"testing"

	"github.com/zephyrtronium/stackcalc"
)

func TestAssign(t *testing.T) {
	env := stackcalc.NewEnv[float64](stackcalc.Float64{})
	r, err := env.EvalString("let x = 2 + 3")
	if err != nil {
		t.Fatal(err)
	}
	if r.Kind != stackcalc.ValueDiscrete || r.Num != 5 {
		t.Errorf("assignment should produce its value, got %v", r.Format(env.Arith()))
	}
	if v, ok := env.Lookup("x"); !ok || v.Num != 5 {
		t.Errorf("wrong value for x: %v %v", v.Format(env.Arith()), ok)
	}
	if _, err := env.EvalString("let x = 7"); err != nil {
		t.Fatal(err)
	}
	v, ok := env.Lookup("x")
	if !ok || v.Kind != stackcalc.ValueDiscrete || v.Num != 7 {
		t.Errorf("reassignment should overwrite: got %v", v.Format(env.Arith()))
	}
	r, err = env.EvalString("x * 2")
	if err != nil {
		t.Fatal(err)
	}
	if r.Num != 14 {
		t.Errorf("wrong result using x: %v", r.Format(env.Arith()))
	}
}

func TestAssignConsolidate(t *testing.T) {
	cases := []struct {
		src  string
		kind stackcalc.ValueKind
		n    int
	}{
		{"let a = [5]", stackcalc.ValueDiscrete, 1},
		{"let a = (1, 2, 3)", stackcalc.ValueDimensioned, 3},
		{"let a = ((4))", stackcalc.ValueDiscrete, 1},
		{"let a = (1, [2, 3])", stackcalc.ValueList, 2},
	}
	for _, c := range cases {
		env := stackcalc.NewEnv[float64](stackcalc.Float64{})
		if _, err := env.EvalString(c.src); err != nil {
			t.Errorf("evaluating %q: %v", c.src, err)
			continue
		}
		v, _ := env.Lookup("a")
		if v.Kind != c.kind || v.Len() != c.n {
			t.Errorf("evaluating %q: want %v of %d, got %v", c.src, c.kind, c.n, v.Format(env.Arith()))
		}
	}
}

func TestAssignIndexed(t *testing.T) {
	cases := []struct {
		name  string
		opts  []stackcalc.Option
		stmts []string
		want  []float64
	}{
		{"grow-undefined", nil, []string{"let a[5] = 1"}, []float64{0, 0, 0, 0, 0, 1}},
		{"fill", []stackcalc.Option{stackcalc.Fill(-1)}, []string{"let a[2] = 3"}, []float64{-1, -1, 3}},
		{"overwrite", nil, []string{"let a = [1, 2, 3]", "let a[1] = 9"}, []float64{1, 9, 3}},
		{"extend", nil, []string{"let a = [1, 2]", "let a[3] = 4"}, []float64{1, 2, 0, 4}},
		{"index-expr", nil, []string{"let i = 1", "let a[i + 1] = 2 * 3"}, []float64{0, 0, 6}},
		{"used-undefined", nil, []string{"b + 1", "let b[0] = 1"}, []float64{1}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			env := stackcalc.NewEnv[float64](stackcalc.Float64{}, c.opts...)
			var err error
			for _, s := range c.stmts {
				_, err = env.EvalString(s)
			}
			if err != nil {
				t.Fatal(err)
			}
			name := "a"
			if c.name == "used-undefined" {
				name = "b"
			}
			v, ok := env.Lookup(name)
			if !ok || v.Kind != stackcalc.ValueDimensioned {
				t.Fatalf("want array, got %v", v.Format(env.Arith()))
			}
			if len(v.Dims) != len(c.want) {
				t.Fatalf("want %v, got %v", c.want, v.Dims)
			}
			for i := range c.want {
				if v.Dims[i] != c.want[i] {
					t.Errorf("element %d: want %g, got %g", i, c.want[i], v.Dims[i])
				}
			}
		})
	}
}

func TestAssignIndexedCopies(t *testing.T) {
	env := stackcalc.NewEnv[float64](stackcalc.Float64{})
	for _, s := range []string{"let a = [1, 2, 3]", "let b = a", "let b[0] = 5"} {
		if _, err := env.EvalString(s); err != nil {
			t.Fatal(err)
		}
	}
	a, _ := env.Lookup("a")
	if a.Dims[0] != 1 {
		t.Errorf("indexed assignment to b modified a: %v", a.Format(env.Arith()))
	}
}

func TestAssignErrors(t *testing.T) {
	cases := []struct {
		name string
		src  []string
		kind stackcalc.Kind
	}{
		{"index-scalar", []string{"let x = 1", "let x[0] = 2"}, stackcalc.KindSymbol},
		{"index-neg", []string{"let a[-1] = 2"}, stackcalc.KindDomain},
		{"index-frac", []string{"let a[1.5] = 2"}, stackcalc.KindDomain},
		{"element-array", []string{"let a[0] = [1, 2]"}, stackcalc.KindDomain},
		{"undefined-rhs", []string{"let x = y"}, stackcalc.KindSymbol},
		{"no-target", []string{"let"}, stackcalc.KindSyntax},
		{"number-target", []string{"let 1 = 2"}, stackcalc.KindSymbol},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			env := stackcalc.NewEnv[float64](stackcalc.Float64{})
			var err error
			for _, s := range c.src {
				_, err = env.EvalString(s)
			}
			if k := stackcalc.KindOf(err); k != c.kind {
				t.Errorf("want %v error, got %v", c.kind, err)
			}
		})
	}
}
