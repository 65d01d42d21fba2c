package stackcalc_test

import (
	"fmt"

	"github.com/zephyrtronium/stackcalc"
)

func Example() {
	env := stackcalc.NewEnv[float64](stackcalc.Float64{})
	for _, stmt := range []string{
		"let r = 2",
		"pi r^2",
		"def area(r) = pi r^2",
		"area(1) / pi",
		"sum [1 <= k <= 4] (k^2)",
		"poly p = (1, 0, 3)",
		"p'(2)",
	} {
		v, err := env.EvalString(stmt)
		if err != nil {
			fmt.Println(err)
			continue
		}
		if v.Kind == stackcalc.ValueNone {
			continue
		}
		fmt.Println(env.Format(v))
	}
	// Output:
	// 2
	// 12.566370614359172
	// 1
	// 30
	// 12
}

func ExampleEvalString() {
	v, err := stackcalc.EvalString("x^2 + y", stackcalc.SetVars(map[string]float64{"x": 3, "y": 1}))
	if err != nil {
		panic(err)
	}
	fmt.Println(v.Num)
	// Output: 10
}
