package stackcalc

import (
	"strings"
)

// Transform is a function which supports exact calculus. Approximation-only
// functions, such as subroutines and builtins, are not transforms.
type Transform[T any] interface {
	// Eval evaluates the function at x.
	Eval(a Arith[T], x T) (T, error)
	// Derivative returns the exact derivative.
	Derivative(a Arith[T]) (Transform[T], error)
	// Antiderivative returns the exact antiderivative which is zero at zero.
	Antiderivative(a Arith[T]) (Transform[T], error)
	Describe(a Arith[T]) string
}

// Polynomial is the power series c0 + c1 x + c2 x^2 + ....
type Polynomial[T any] struct {
	Coef []T
}

func newPolynomial[T any](a Arith[T], coef []T) (Transform[T], error) {
	if len(coef) == 0 {
		return nil, syntaxError("no coefficients for", "poly")
	}
	return &Polynomial[T]{Coef: append([]T(nil), coef...)}, nil
}

func (p *Polynomial[T]) Eval(a Arith[T], x T) (T, error) {
	r := a.Zero()
	for i := len(p.Coef) - 1; i >= 0; i-- {
		r = a.Add(a.Mul(r, x), p.Coef[i])
	}
	return r, nil
}

func (p *Polynomial[T]) Derivative(a Arith[T]) (Transform[T], error) {
	if len(p.Coef) <= 1 {
		return &Polynomial[T]{Coef: []T{a.Zero()}}, nil
	}
	d := make([]T, len(p.Coef)-1)
	for k := range d {
		d[k] = a.Mul(a.FromFloat64(float64(k+1)), p.Coef[k+1])
	}
	return &Polynomial[T]{Coef: d}, nil
}

func (p *Polynomial[T]) Antiderivative(a Arith[T]) (Transform[T], error) {
	c := make([]T, len(p.Coef)+1)
	c[0] = a.Zero()
	for k, x := range p.Coef {
		q, err := a.Quo(x, a.FromFloat64(float64(k+1)))
		if err != nil {
			return nil, err
		}
		c[k+1] = q
	}
	return &Polynomial[T]{Coef: c}, nil
}

func (p *Polynomial[T]) Describe(a Arith[T]) string {
	return "poly" + coefficients(a, p.Coef)
}

// CosineSeries is the Chebyshev series c0 T0(x) + c1 T1(x) + ..., where
// Tk(cos t) = cos(k t). It is the cosine transform of a function on [-1, 1].
type CosineSeries[T any] struct {
	Coef []T
}

func newCosineSeries[T any](a Arith[T], coef []T) (Transform[T], error) {
	if len(coef) == 0 {
		return nil, syntaxError("no coefficients for", "cheb")
	}
	return &CosineSeries[T]{Coef: append([]T(nil), coef...)}, nil
}

// Eval evaluates the series by Clenshaw's recurrence.
func (c *CosineSeries[T]) Eval(a Arith[T], x T) (T, error) {
	var (
		b1 = a.Zero()
		b2 = a.Zero()
	)
	x2 := a.Add(x, x)
	for k := len(c.Coef) - 1; k >= 1; k-- {
		b1, b2 = a.Sub(a.Add(c.Coef[k], a.Mul(x2, b1)), b2), b1
	}
	return a.Sub(a.Add(c.Coef[0], a.Mul(x, b1)), b2), nil
}

func (c *CosineSeries[T]) Derivative(a Arith[T]) (Transform[T], error) {
	n := len(c.Coef)
	if n <= 1 {
		return &CosineSeries[T]{Coef: []T{a.Zero()}}, nil
	}
	// d[k] = d[k+2] + 2(k+1) c[k+1], with d[0] halved.
	d := make([]T, n+1)
	d[n], d[n-1] = a.Zero(), a.Zero()
	for k := n - 2; k >= 0; k-- {
		d[k] = a.Add(d[k+2], a.Mul(a.FromFloat64(float64(2*(k+1))), c.Coef[k+1]))
	}
	h, err := a.Quo(d[0], a.FromFloat64(2))
	if err != nil {
		return nil, err
	}
	d[0] = h
	return &CosineSeries[T]{Coef: d[:n-1]}, nil
}

func (c *CosineSeries[T]) Antiderivative(a Arith[T]) (Transform[T], error) {
	n := len(c.Coef)
	at := func(k int) T {
		if k < n {
			return c.Coef[k]
		}
		return a.Zero()
	}
	r := make([]T, n+1)
	r[0] = a.Zero()
	half, err := a.Quo(at(2), a.FromFloat64(2))
	if err != nil {
		return nil, err
	}
	r[1] = a.Sub(at(0), half)
	for k := 2; k <= n; k++ {
		q, err := a.Quo(a.Sub(at(k-1), at(k+1)), a.FromFloat64(float64(2*k)))
		if err != nil {
			return nil, err
		}
		r[k] = q
	}
	// Choose the constant term so that the antiderivative is zero at zero,
	// where T2j(0) = (-1)^j and odd terms vanish.
	c0 := a.Zero()
	for k := 2; k <= n; k += 2 {
		if k%4 == 0 {
			c0 = a.Sub(c0, r[k])
		} else {
			c0 = a.Add(c0, r[k])
		}
	}
	r[0] = c0
	return &CosineSeries[T]{Coef: r}, nil
}

func (c *CosineSeries[T]) Describe(a Arith[T]) string {
	return "cheb" + coefficients(a, c.Coef)
}

func coefficients[T any](a Arith[T], coef []T) string {
	s := make([]string, len(coef))
	for i, x := range coef {
		s[i] = a.Format(x)
	}
	return "(" + strings.Join(s, ", ") + ")"
}

var (
	_ Transform[float64] = (*Polynomial[float64])(nil)
	_ Transform[float64] = (*CosineSeries[float64])(nil)
)
