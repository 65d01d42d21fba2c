package stackcalc_test

import (
	"testing"

	"github.com/zephyrtronium/stackcalc"
)

// run evaluates each statement in env and returns the result of the last.
func run(t *testing.T, env *stackcalc.Env[float64], stmts ...string) (stackcalc.Value[float64], error) {
	t.Helper()
	var (
		r   stackcalc.Value[float64]
		err error
	)
	for i, s := range stmts {
		r, err = env.EvalString(s)
		if err != nil && i < len(stmts)-1 {
			t.Fatalf("evaluating %q: %v", s, err)
		}
	}
	return r, err
}

func TestSubroutine(t *testing.T) {
	cases := []struct {
		name  string
		stmts []string
		r     float64
	}{
		{"square", []string{"def f(x) = x^2 + 1", "f(3)"}, 10},
		{"two-params", []string{"def h(x, y) = x - y", "h(5, 2)"}, 3},
		{"no-params", []string{"def k() = 42", "k()"}, 42},
		{"in-expr", []string{"def f(x) = 2 x", "1 + f(3) * 2"}, 13},
		{"recursion", []string{"def fact(n) = if(n <= 1, 1, n * fact(n - 1))", "fact(5)"}, 120},
		{"calls-other", []string{"def g(x) = x", "def f(x) = x + g(x * 10)", "f(1)"}, 11},
		{"sees-global", []string{"let c = 7", "def f(x) = x + c", "f(1)"}, 8},
		{"late-global", []string{"def f(x) = x + c", "let c = 2", "f(1)"}, 3},
		{"expr-arg", []string{"def f(x) = x * x", "f(1 + 2)"}, 9},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			env := stackcalc.NewEnv[float64](stackcalc.Float64{})
			r, err := run(t, env, c.stmts...)
			if err != nil {
				t.Fatal(err)
			}
			if got := scalar(t, r); !near(got, c.r) {
				t.Errorf("want %g, got %g", c.r, got)
			}
		})
	}
}

func TestSubroutineIsolation(t *testing.T) {
	env := stackcalc.NewEnv[float64](stackcalc.Float64{})
	r, err := run(t, env, "def g(x) = x", "def f(x) = x + g(x * 10)", "f(1)")
	if err != nil {
		t.Fatal(err)
	}
	if got := scalar(t, r); got != 11 {
		t.Errorf("want 11, got %g", got)
	}
	if v, ok := env.Lookup("x"); ok {
		t.Errorf("parameter leaked into global scope: %v", v.Format(env.Arith()))
	}
	if _, err := env.EvalString("x"); stackcalc.KindOf(err) != stackcalc.KindSymbol {
		t.Errorf("want undefined x, got %v", err)
	}
}

func TestSubroutineLocalAssign(t *testing.T) {
	env := stackcalc.NewEnv[float64](stackcalc.Float64{})
	r, err := run(t, env, "let y = 1", "def f(x) = let y = x * 2", "f(5)")
	if err != nil {
		t.Fatal(err)
	}
	if got := scalar(t, r); got != 10 {
		t.Errorf("want 10, got %g", got)
	}
	y, _ := env.Lookup("y")
	if y.Num != 1 {
		t.Errorf("assignment in subroutine changed global y to %v", y.Format(env.Arith()))
	}
}

func TestScopePolicies(t *testing.T) {
	policies := []stackcalc.ScopePolicy{stackcalc.ScopeChain, stackcalc.ScopeFilter, stackcalc.ScopeCopy}
	for _, p := range policies {
		t.Run(p.String(), func(t *testing.T) {
			env := stackcalc.NewEnv[float64](stackcalc.Float64{}, stackcalc.Scope(p))
			r, err := run(t, env,
				"let c = 3",
				"def g(x) = c x",
				"def f(x) = x + g(x)",
				"f(2)",
			)
			if err != nil {
				t.Fatal(err)
			}
			if got := scalar(t, r); got != 8 {
				t.Errorf("want 8, got %g", got)
			}
			r, err = run(t, env, "def fib(n) = if(n < 2, n, fib(n - 1) + fib(n - 2))", "fib(10)")
			if err != nil {
				t.Fatal(err)
			}
			if got := scalar(t, r); got != 55 {
				t.Errorf("want 55, got %g", got)
			}
		})
	}
}

func TestParseScope(t *testing.T) {
	cases := []struct {
		in   string
		want stackcalc.ScopePolicy
		ok   bool
	}{
		{"", stackcalc.ScopeChain, true},
		{"chain", stackcalc.ScopeChain, true},
		{"filter", stackcalc.ScopeFilter, true},
		{"copy", stackcalc.ScopeCopy, true},
		{"lexical", 0, false},
	}
	for _, c := range cases {
		p, err := stackcalc.ParseScope(c.in)
		if (err == nil) != c.ok {
			t.Errorf("%q: want ok=%t, got %v", c.in, c.ok, err)
			continue
		}
		if c.ok && p != c.want {
			t.Errorf("%q: want %v, got %v", c.in, c.want, p)
		}
	}
}

func TestSubroutineErrors(t *testing.T) {
	cases := []struct {
		name  string
		opts  []stackcalc.Option
		stmts []string
		kind  stackcalc.Kind
	}{
		{"depth", []stackcalc.Option{stackcalc.MaxDepth(16)}, []string{"def f(n) = f(n + 1)", "f(0)"}, stackcalc.KindDomain},
		{"too-few", nil, []string{"def f(x, y) = x + y", "f(1)"}, stackcalc.KindSymbol},
		{"too-many", nil, []string{"def f(x) = x", "f(1, 2)"}, stackcalc.KindSymbol},
		{"redefine-builtin", nil, []string{"def sin(x) = x"}, stackcalc.KindSymbol},
		{"dup-param", nil, []string{"def f(x, x) = x"}, stackcalc.KindSyntax},
		{"empty-body", nil, []string{"def f(x) ="}, stackcalc.KindSyntax},
		{"no-parens", nil, []string{"def f = 1"}, stackcalc.KindSyntax},
		{"bad-param", nil, []string{"def f(1) = 1"}, stackcalc.KindSyntax},
		{"body-error", nil, []string{"def f(x) = sqrt(x)", "f(-1)"}, stackcalc.KindDomain},
		{"body-stop", nil, []string{"def f(x) = stop(x)", "f(3)"}, stackcalc.KindTermination},
		{"body-undefined", nil, []string{"def f(x) = q", "f(3)"}, stackcalc.KindSymbol},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			env := stackcalc.NewEnv[float64](stackcalc.Float64{}, c.opts...)
			_, err := run(t, env, c.stmts...)
			if k := stackcalc.KindOf(err); k != c.kind {
				t.Errorf("want %v error, got %v", c.kind, err)
			}
		})
	}
}

func TestSubroutineRedefine(t *testing.T) {
	env := stackcalc.NewEnv[float64](stackcalc.Float64{})
	r, err := run(t, env, "def f(x) = x + 1", "def f(x) = x + 2", "f(1)")
	if err != nil {
		t.Fatal(err)
	}
	if got := scalar(t, r); got != 3 {
		t.Errorf("want 3 from redefinition, got %g", got)
	}
}

func TestProfile(t *testing.T) {
	env := stackcalc.NewEnv[float64](stackcalc.Float64{})
	if _, err := env.EvalString("def f(x, y) = x^2 + y"); err != nil {
		t.Fatal(err)
	}
	ents := env.Symbols(stackcalc.EntrySubroutine)
	if len(ents) != 1 {
		t.Fatalf("want one subroutine, got %d", len(ents))
	}
	want := "f(x, y) = x ^ 2 + y"
	if got := ents[0].Sub.Profile(); got != want {
		t.Errorf("want profile %q, got %q", want, got)
	}
}
