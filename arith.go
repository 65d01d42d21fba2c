package stackcalc

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/zephyrtronium/bigfloat"
)

// Arith is the type manager for the element type T. The evaluation core
// performs no arithmetic of its own; every sum, comparison, and literal
// conversion goes through an Arith.
//
// Implementations must not modify their arguments. Operations which have no
// defined result, such as subtracting infinities of the same sign, may panic
// with big.ErrNaN; evaluation recovers such panics as domain errors.
type Arith[T any] interface {
	Zero() T
	One() T
	Add(x, y T) T
	Sub(x, y T) T
	Mul(x, y T) T
	// Quo returns x/y, or an error if the quotient is undefined, i.e. 0/0 or
	// inf/inf.
	Quo(x, y T) (T, error)
	Neg(x T) T
	Less(x, y T) bool
	// Parse converts the text of a numeric literal token.
	Parse(text string) (T, error)
	Float64(x T) float64
	FromFloat64(f float64) T
	Format(x T) string
}

// Elementary is implemented by type managers which can compute elementary
// functions natively. Type managers which don't are evaluated through
// float64 conversions.
type Elementary[T any] interface {
	Exp(x T) (T, error)
	Log(x T) (T, error)
	Sqrt(x T) (T, error)
	Pow(x, y T) (T, error)
	Pi() T
}

// Float64 is the type manager for float64 values.
type Float64 struct{}

func (Float64) Zero() float64 { return 0 }
func (Float64) One() float64 { return 1 }
func (Float64) Add(x, y float64) float64 { return x + y }
func (Float64) Sub(x, y float64) float64 { return x - y }
func (Float64) Mul(x, y float64) float64 { return x * y }
func (Float64) Neg(x float64) float64 { return -x }
func (Float64) Less(x, y float64) bool { return x < y }
func (Float64) Float64(x float64) float64 { return x }
func (Float64) FromFloat64(f float64) float64 { return f }

func (Float64) Quo(x, y float64) (float64, error) {
	// Guard against invalid divisions, 0/0 or inf/inf.
	if x == 0 && y == 0 || math.IsInf(x, 0) && math.IsInf(y, 0) {
		return 0, domainError("/", strconv.FormatFloat(y, 'g', -1, 64))
	}
	return x / y, nil
}

func (Float64) Parse(text string) (float64, error) {
	if text == "∞" {
		text = "inf"
	}
	r, err := strconv.ParseFloat(text, 64)
	if err != nil {
		var ne *strconv.NumError
		if errors.As(err, &ne) && ne.Err == strconv.ErrRange {
			// Overflow to inf and underflow to zero are both fine.
			return r, nil
		}
		return 0, errors.Wrap(err, "invalid number "+strconv.Quote(text))
	}
	return r, nil
}

func (Float64) Format(x float64) string {
	return strconv.FormatFloat(x, 'g', -1, 64)
}

func (Float64) Exp(x float64) (float64, error) { return math.Exp(x), nil }

func (Float64) Log(x float64) (float64, error) {
	if x < 0 {
		return 0, domainError("ln", strconv.FormatFloat(x, 'g', -1, 64))
	}
	return math.Log(x), nil
}

func (Float64) Sqrt(x float64) (float64, error) {
	if x < 0 {
		return 0, domainError("sqrt", strconv.FormatFloat(x, 'g', -1, 64))
	}
	return math.Sqrt(x), nil
}

func (Float64) Pow(x, y float64) (float64, error) {
	r := math.Pow(x, y)
	if math.IsNaN(r) {
		return 0, domainError("^", strconv.FormatFloat(x, 'g', -1, 64))
	}
	return r, nil
}

func (Float64) Pi() float64 { return math.Pi }

// BigFloat is the type manager for arbitrary-precision *big.Float values.
// Results are computed to Prec bits, or 64 if Prec is zero.
type BigFloat struct {
	Prec uint
}

func (b BigFloat) prec() uint {
	if b.Prec == 0 {
		return 64
	}
	return b.Prec
}

func (b BigFloat) new() *big.Float {
	return new(big.Float).SetPrec(b.prec())
}

func (b BigFloat) Zero() *big.Float { return b.new() }
func (b BigFloat) One() *big.Float { return b.new().SetInt64(1) }

func (b BigFloat) Add(x, y *big.Float) *big.Float { return b.new().Add(x, y) }
func (b BigFloat) Sub(x, y *big.Float) *big.Float { return b.new().Sub(x, y) }
func (b BigFloat) Mul(x, y *big.Float) *big.Float { return b.new().Mul(x, y) }
func (b BigFloat) Neg(x *big.Float) *big.Float { return b.new().Neg(x) }

func (b BigFloat) Quo(x, y *big.Float) (*big.Float, error) {
	if x.Sign() == 0 && y.Sign() == 0 || x.IsInf() && y.IsInf() {
		return nil, domainError("/", y.String())
	}
	return b.new().Quo(x, y), nil
}

func (b BigFloat) Less(x, y *big.Float) bool { return x.Cmp(y) < 0 }

func (b BigFloat) Parse(text string) (*big.Float, error) {
	if text == "∞" {
		text = "inf"
	}
	r, _, err := b.new().Parse(text, 0)
	switch {
	case err == nil:
		return r, nil
	case err.Error() == "exponent overflow",
		strings.HasSuffix(err.Error(), ": value out of range"):
		// There isn't realistically any better way to detect this error.
		// N.B. text is non-empty, otherwise we couldn't overflow.
		return b.new().SetInf(text[0] == '-'), nil
	default:
		return nil, errors.Wrap(err, "invalid number "+strconv.Quote(text))
	}
}

func (b BigFloat) Float64(x *big.Float) float64 {
	f, _ := x.Float64()
	return f
}

func (b BigFloat) FromFloat64(f float64) *big.Float {
	if math.IsNaN(f) {
		panic(big.ErrNaN{})
	}
	return b.new().SetFloat64(f)
}

func (b BigFloat) Format(x *big.Float) string {
	return x.Text('g', -1)
}

func (b BigFloat) Exp(x *big.Float) (*big.Float, error) {
	return bigfloat.Exp(b.new(), x), nil
}

func (b BigFloat) Log(x *big.Float) (*big.Float, error) {
	if x.Signbit() {
		return nil, domainError("ln", x.String())
	}
	if x.Sign() == 0 {
		return b.new().SetInf(true), nil
	}
	return bigfloat.Log(b.new(), x), nil
}

func (b BigFloat) Sqrt(x *big.Float) (*big.Float, error) {
	if x.Signbit() {
		return nil, domainError("sqrt", x.String())
	}
	return b.new().Sqrt(x), nil
}

func (b BigFloat) Pow(x, y *big.Float) (*big.Float, error) {
	// A negative base is only valid with an integer exponent.
	if x.Signbit() && x.Sign() != 0 {
		if !y.IsInt() {
			return nil, domainError("^", x.String())
		}
		r := bigfloat.Pow(b.new(), b.new().Abs(x), y)
		if n, _ := y.Int(nil); n.Bit(0) == 1 {
			r.Neg(r)
		}
		return r, nil
	}
	return bigfloat.Pow(b.new(), x, y), nil
}

func (b BigFloat) Pi() *big.Float {
	return bigfloat.Pi(b.new())
}

var (
	_ Arith[float64]         = Float64{}
	_ Elementary[float64]    = Float64{}
	_ Arith[*big.Float]      = BigFloat{}
	_ Elementary[*big.Float] = BigFloat{}
)
