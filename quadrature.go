package stackcalc

const (
	// maxRefinements bounds adaptive trapezoid halving.
	maxRefinements = 24
	// maxBisections bounds root search.
	maxBisections = 200
)

func abs[T any](a Arith[T], x T) T {
	if a.Less(x, a.Zero()) {
		return a.Neg(x)
	}
	return x
}

func sign[T any](a Arith[T], x T) int {
	switch {
	case a.Less(x, a.Zero()):
		return -1
	case a.Less(a.Zero(), x):
		return 1
	default:
		return 0
	}
}

// centralDifference approximates the first or second derivative of f at x
// with step h.
func centralDifference[T any](a Arith[T], f func(T) (T, error), x, h T, order int) (T, error) {
	if !a.Less(a.Zero(), h) {
		return x, domainError("finite difference step", a.Format(h))
	}
	fp, err := f(a.Add(x, h))
	if err != nil {
		return x, err
	}
	fm, err := f(a.Sub(x, h))
	if err != nil {
		return x, err
	}
	two := a.FromFloat64(2)
	if order == 1 {
		return a.Quo(a.Sub(fp, fm), a.Mul(two, h))
	}
	f0, err := f(x)
	if err != nil {
		return x, err
	}
	return a.Quo(a.Add(a.Sub(fp, a.Mul(two, f0)), fm), a.Mul(h, h))
}

// definite evaluates F(hi) - F(lo).
func definite[T any](a Arith[T], F Transform[T], lo, hi T) (T, error) {
	u, err := F.Eval(a, hi)
	if err != nil {
		return u, err
	}
	l, err := F.Eval(a, lo)
	if err != nil {
		return l, err
	}
	return a.Sub(u, l), nil
}

// trapezoid integrates f over [lo, hi] with n equal steps.
func trapezoid[T any](a Arith[T], f func(T) (T, error), lo, hi T, n int) (T, error) {
	h, err := a.Quo(a.Sub(hi, lo), a.FromFloat64(float64(n)))
	if err != nil {
		return h, err
	}
	flo, err := f(lo)
	if err != nil {
		return flo, err
	}
	fhi, err := f(hi)
	if err != nil {
		return fhi, err
	}
	s, err := a.Quo(a.Add(flo, fhi), a.FromFloat64(2))
	if err != nil {
		return s, err
	}
	for i := 1; i < n; i++ {
		y, err := f(a.Add(lo, a.Mul(a.FromFloat64(float64(i)), h)))
		if err != nil {
			return y, err
		}
		s = a.Add(s, y)
	}
	return a.Mul(s, h), nil
}

// adaptiveTrapezoid integrates f over [lo, hi], halving the step until two
// successive estimates differ by less than tol.
func adaptiveTrapezoid[T any](a Arith[T], f func(T) (T, error), lo, hi, tol T) (T, error) {
	if !a.Less(a.Zero(), tol) {
		return tol, domainError("atrap tolerance", a.Format(tol))
	}
	prev, err := trapezoid(a, f, lo, hi, 1)
	if err != nil {
		return prev, err
	}
	two := a.FromFloat64(2)
	h := a.Sub(hi, lo)
	n := 1
	for level := 0; level < maxRefinements; level++ {
		// Halve the step and add the new midpoints.
		if h, err = a.Quo(h, two); err != nil {
			return h, err
		}
		mid := a.Zero()
		for i := 0; i < n; i++ {
			y, err := f(a.Add(lo, a.Mul(a.FromFloat64(float64(2*i+1)), h)))
			if err != nil {
				return y, err
			}
			mid = a.Add(mid, y)
		}
		half, err := a.Quo(prev, two)
		if err != nil {
			return half, err
		}
		s := a.Add(half, a.Mul(h, mid))
		n *= 2
		if a.Less(abs(a, a.Sub(s, prev)), tol) {
			return s, nil
		}
		prev = s
	}
	return prev, &Error{Kind: KindDomain, Msg: "integral did not converge to tolerance " + a.Format(tol) + " in", Name: "atrap"}
}

// clenshawCurtis integrates a cosine series term by term over [lo, hi], which
// must lie within [-1, 1].
func clenshawCurtis[T any](a Arith[T], fn Transform[T], lo, hi T) (T, error) {
	c, ok := fn.(*CosineSeries[T])
	if !ok {
		return lo, &Error{Kind: KindDomain, Msg: "Clenshaw-Curtis quadrature requires a cosine series", Name: "ccq"}
	}
	one := a.One()
	if a.Less(lo, a.Neg(one)) || a.Less(one, hi) {
		return lo, domainError("ccq", "["+a.Format(lo)+", "+a.Format(hi)+"]")
	}
	F, err := c.Antiderivative(a)
	if err != nil {
		return lo, err
	}
	return definite(a, F, lo, hi)
}

// bisect finds a zero of f in [lo, hi] to within tol. f(lo) and f(hi) must
// not have the same sign.
func bisect[T any](a Arith[T], f func(T) (T, error), lo, hi, tol T) (T, error) {
	if !a.Less(a.Zero(), tol) {
		return tol, domainError("root tolerance", a.Format(tol))
	}
	flo, err := f(lo)
	if err != nil {
		return flo, err
	}
	fhi, err := f(hi)
	if err != nil {
		return fhi, err
	}
	switch {
	case sign(a, flo) == 0:
		return lo, nil
	case sign(a, fhi) == 0:
		return hi, nil
	case sign(a, flo) == sign(a, fhi):
		return lo, &Error{Kind: KindDomain, Msg: "no sign change in [" + a.Format(lo) + ", " + a.Format(hi) + "] for", Name: "root"}
	}
	two := a.FromFloat64(2)
	mid := lo
	for i := 0; i < maxBisections; i++ {
		if mid, err = a.Quo(a.Add(lo, hi), two); err != nil {
			return mid, err
		}
		if a.Less(abs(a, a.Sub(hi, lo)), tol) {
			return mid, nil
		}
		fm, err := f(mid)
		if err != nil {
			return fm, err
		}
		switch sign(a, fm) {
		case 0:
			return mid, nil
		case sign(a, flo):
			lo, flo = mid, fm
		default:
			hi = mid
		}
	}
	return mid, nil
}
