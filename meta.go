package stackcalc

// Metadata is a tag carried alongside a value which alters how the next
// operator treats it. The implementations are *ArrayDescriptor and the
// CalculusRequest variants.
type Metadata[T any] interface {
	// Describe returns a human-readable description of the tag, suitable for
	// titling a displayed value.
	Describe(a Arith[T]) string
	metadata()
}

// CalculusRequest is metadata which makes a parameterized function call
// perform calculus instead of an ordinary evaluation. The variants are
// Derivative, Antiderivative, Interval, Quadrature, and Root.
type CalculusRequest[T any] interface {
	Metadata[T]
	calculus()
}

// Derivative requests the first or second derivative of a function at the
// argument. If Approx is false, the derivative is the exact symbolic one;
// otherwise it is a central finite difference with step Step.
type Derivative[T any] struct {
	Order  int
	Approx bool
	Step   T
}

// Antiderivative requests the exact antiderivative of a function at the
// argument.
type Antiderivative[T any] struct{}

// Interval requests F(Hi) - F(Lo), where F is the exact antiderivative of the
// function.
type Interval[T any] struct {
	Lo, Hi T
}

// QuadratureKind selects a numeric integration strategy.
type QuadratureKind int8

const (
	// Trapezoid is the fixed-step trapezoidal rule. Param is the number of
	// steps.
	Trapezoid QuadratureKind = iota + 1
	// AdaptiveTrapezoid halves the trapezoidal step until successive
	// estimates differ by less than Param.
	AdaptiveTrapezoid
	// ClenshawCurtis integrates a cosine transform term by term. Param is
	// unused.
	ClenshawCurtis
)

func (k QuadratureKind) String() string {
	switch k {
	case Trapezoid:
		return "trapezoid"
	case AdaptiveTrapezoid:
		return "adaptive trapezoid"
	case ClenshawCurtis:
		return "Clenshaw-Curtis"
	default:
		return "quadrature"
	}
}

// Quadrature requests a numeric definite integral of a function over
// [Lo, Hi].
type Quadrature[T any] struct {
	Kind   QuadratureKind
	Lo, Hi T
	Param  T
}

// Root requests a zero of a function in [Lo, Hi] by bisection, to within Tol.
type Root[T any] struct {
	Lo, Hi, Tol T
}

func (Derivative[T]) metadata()     {}
func (Antiderivative[T]) metadata() {}
func (Interval[T]) metadata()       {}
func (Quadrature[T]) metadata()     {}
func (Root[T]) metadata()           {}

func (Derivative[T]) calculus()     {}
func (Antiderivative[T]) calculus() {}
func (Interval[T]) calculus()       {}
func (Quadrature[T]) calculus()     {}
func (Root[T]) calculus()           {}

func (r Derivative[T]) Describe(a Arith[T]) string {
	s := "derivative"
	if r.Order == 2 {
		s = "second derivative"
	}
	if r.Approx {
		s += " (step " + a.Format(r.Step) + ")"
	}
	return s
}

func (Antiderivative[T]) Describe(a Arith[T]) string {
	return "antiderivative"
}

func (r Interval[T]) Describe(a Arith[T]) string {
	return "integral over [" + a.Format(r.Lo) + ", " + a.Format(r.Hi) + "]"
}

func (r Quadrature[T]) Describe(a Arith[T]) string {
	return r.Kind.String() + " integral over [" + a.Format(r.Lo) + ", " + a.Format(r.Hi) + "]"
}

func (r Root[T]) Describe(a Arith[T]) string {
	return "root in [" + a.Format(r.Lo) + ", " + a.Format(r.Hi) + "]"
}

var (
	_ CalculusRequest[float64] = Derivative[float64]{}
	_ CalculusRequest[float64] = Antiderivative[float64]{}
	_ CalculusRequest[float64] = Interval[float64]{}
	_ CalculusRequest[float64] = Quadrature[float64]{}
	_ CalculusRequest[float64] = Root[float64]{}
	_ Metadata[float64]        = (*ArrayDescriptor[float64])(nil)
)
