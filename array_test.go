package stackcalc_test

import (
	"math"
	"strings"
	"testing"

	"github.com/zephyrtronium/stackcalc"
)

func TestArrayDescriptor(t *testing.T) {
	cases := []struct {
		name string
		src  string
		r    []float64
	}{
		{"inclusive", "[0 <= x <= 1 <> 0.25] (x)", []float64{0, 0.25, 0.5, 0.75, 1}},
		{"strict-hi", "[0 <= x < 1 <> 0.25] (x)", []float64{0, 0.25, 0.5, 0.75}},
		{"strict-lo", "[0 < x <= 1 <> 0.25] (x)", []float64{0.25, 0.5, 0.75, 1}},
		{"strict-both", "[0 < x < 1 <> 0.25] (x)", []float64{0.25, 0.5, 0.75}},
		{"default-step", "[1 <= n <= 4] (n^2)", []float64{1, 4, 9, 16}},
		{"expr-bounds", "[2-2 <= x <= 2*1 <> 1/2] (2 x)", []float64{0, 1, 2, 3, 4}},
		{"neg-lo", "[-1 <= x <= 1] (x)", []float64{-1, 0, 1}},
		{"empty", "[1 <= x <= 0] (x)", nil},
		{"operand", "[0 <= x <= 2] (x) + 1", []float64{1, 2, 3}},
		{"call", "sum [1 <= x <= 4] (x)", []float64{10}},
		{"suppressed", "[-1 <= x <= 1] (x/x)", []float64{1, math.Inf(1), 1}},
		{"undefined", "[0 <= x <= 1] (x q)", []float64{math.Inf(1), math.Inf(1)}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r, err := stackcalc.EvalString(c.src)
			if err != nil {
				t.Fatalf("evaluating %q: %v", c.src, err)
			}
			var got []float64
			switch r.Kind {
			case stackcalc.ValueDiscrete:
				got = []float64{r.Num}
			case stackcalc.ValueDimensioned:
				got = r.Dims
			default:
				t.Fatalf("evaluating %q: want array, got %v", c.src, r.Format(stackcalc.Float64{}))
			}
			if len(got) != len(c.r) {
				t.Fatalf("evaluating %q: want %v, got %v", c.src, c.r, got)
			}
			for i := range c.r {
				if !near(got[i], c.r[i]) {
					t.Errorf("evaluating %q: element %d: want %g, got %g", c.src, i, c.r[i], got[i])
				}
			}
		})
	}
}

func TestArrayTranspose(t *testing.T) {
	r, err := stackcalc.EvalString("[0 <= x <= 2] ([x, x^2])")
	if err != nil {
		t.Fatal(err)
	}
	if r.Kind != stackcalc.ValueList || len(r.Items) != 2 {
		t.Fatalf("want two curves, got %v", r.Format(stackcalc.Float64{}))
	}
	want := [][]float64{{0, 1, 2}, {0, 1, 4}}
	for i, curve := range r.Items {
		if curve.Kind != stackcalc.ValueDimensioned || len(curve.Dims) != 3 {
			t.Fatalf("curve %d: want 3 elements, got %v", i, curve.Format(stackcalc.Float64{}))
		}
		for j, x := range curve.Dims {
			if x != want[i][j] {
				t.Errorf("curve %d element %d: want %g, got %g", i, j, want[i][j], x)
			}
		}
	}
}

func TestArrayTermination(t *testing.T) {
	_, err := stackcalc.EvalString("[0 <= x <= 3] (if(x == 2, stop(x), x))")
	if stackcalc.KindOf(err) != stackcalc.KindTermination {
		t.Fatalf("want termination, got %v", err)
	}
	if !strings.Contains(err.Error(), "2") {
		t.Errorf("termination %q doesn't carry its value", err)
	}
}

func TestArrayDescriptorErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		kind stackcalc.Kind
	}{
		{"zero-step", "[0 <= x <= 1 <> 0] (x)", stackcalc.KindSyntax},
		{"neg-step", "[0 <= x <= 1 <> -1] (x)", stackcalc.KindSyntax},
		{"no-expr", "[0 <= x <= 1]", stackcalc.KindSyntax},
		{"bad-var", "[0 <= 2 <= 1] (x)", stackcalc.KindSyntax},
		{"one-bound", "[0 <= x] (x)", stackcalc.KindSyntax},
		{"array-bound", "[[1, 2] <= x <= 3] (x)", stackcalc.KindSyntax},
		{"unclosed-expr", "[0 <= x <= 1] (x", stackcalc.KindStack},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := stackcalc.EvalString(c.src)
			if k := stackcalc.KindOf(err); k != c.kind {
				t.Errorf("evaluating %q: want %v error, got %v", c.src, c.kind, err)
			}
		})
	}
}

func TestArrayMeta(t *testing.T) {
	env := stackcalc.NewEnv[float64](stackcalc.Float64{})
	if _, err := env.EvalString("let a = [0 <= x <= 4] (x^2)"); err != nil {
		t.Fatal(err)
	}
	a, ok := env.Lookup("a")
	if !ok {
		t.Fatal("a not assigned")
	}
	if _, ok := a.Meta.(*stackcalc.ArrayDescriptor[float64]); !ok {
		t.Fatalf("assigned array lost its descriptor: %v", a.Meta)
	}
	if s := env.Format(a); !strings.Contains(s, "x") || !strings.HasSuffix(s, "{0, 1, 4, 9, 16}") {
		t.Errorf("wrong formatting %q", s)
	}

	w, err := env.EvalString("window(a, 1, 2)")
	if err != nil {
		t.Fatal(err)
	}
	if w.Kind != stackcalc.ValueDimensioned || len(w.Dims) != 2 || w.Dims[0] != 1 || w.Dims[1] != 4 {
		t.Errorf("wrong window: %v", w.Format(env.Arith()))
	}
	if !strings.HasPrefix(env.Format(w), "window") {
		t.Errorf("window isn't titled: %q", env.Format(w))
	}
	if _, err := env.EvalString("window(a, 1, 5)"); stackcalc.KindOf(err) != stackcalc.KindDomain {
		t.Errorf("window outside bounds: want domain error, got %v", err)
	}

	s, err := env.EvalString("sqrt a")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(env.Format(s), "sqrt of") {
		t.Errorf("derived array isn't titled: %q", env.Format(s))
	}
}
