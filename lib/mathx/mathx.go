/*package mathx contains the precision-generic math primitives shared by the
kernel packages. Everything downstream of the pair loop is generic over the
working precision, so the handful of scalar functions the kernels need are
collected here with float32 and float64 implementations selected at
instantiation time.*/
package mathx

import (
	"math"

	"github.com/chewxy/math32"
)

// Real is the working floating-point precision of a kernel instantiation.
type Real interface {
	~float32 | ~float64
}

// Eps returns the machine epsilon of T.
func Eps[T Real]() T {
	var x T
	switch any(x).(type) {
	case float32:
		return T(math32.Nextafter(1, 2) - 1)
	default:
		return T(math.Nextafter(1, 2) - 1)
	}
}

// Sqrt returns the square root of x in the precision of T.
func Sqrt[T Real](x T) T {
	switch v := any(x).(type) {
	case float32:
		return T(math32.Sqrt(v))
	default:
		return T(math.Sqrt(any(x).(float64)))
	}
}

// InvSqrt returns 1/sqrt(x). On every platform this module targets, sqrt
// lowers to a single hardware instruction that is already accurate to the
// working precision, so no Newton-Raphson refinement is applied afterwards.
func InvSqrt[T Real](x T) T {
	return 1 / Sqrt(x)
}

// Exp returns e**x in the precision of T.
func Exp[T Real](x T) T {
	switch v := any(x).(type) {
	case float32:
		return T(math32.Exp(v))
	default:
		return T(math.Exp(any(x).(float64)))
	}
}

// Erf returns the error function of x in the precision of T.
func Erf[T Real](x T) T {
	switch v := any(x).(type) {
	case float32:
		return T(math32.Erf(v))
	default:
		return T(math.Erf(any(x).(float64)))
	}
}

// Erfc returns the complementary error function of x in the precision of T.
func Erfc[T Real](x T) T {
	switch v := any(x).(type) {
	case float32:
		return T(math32.Erfc(v))
	default:
		return T(math.Erfc(any(x).(float64)))
	}
}

// Abs returns |x|.
func Abs[T Real](x T) T {
	if x < 0 {
		return -x
	}
	return x
}

// Floor returns the largest integer value <= x.
func Floor[T Real](x T) T {
	switch v := any(x).(type) {
	case float32:
		return T(math32.Floor(v))
	default:
		return T(math.Floor(any(x).(float64)))
	}
}

// Ceil returns the smallest integer value >= x.
func Ceil[T Real](x T) T {
	switch v := any(x).(type) {
	case float32:
		return T(math32.Ceil(v))
	default:
		return T(math.Ceil(any(x).(float64)))
	}
}

// WithinTol returns true if a and b are equal to within tol, measured
// relative to the mean magnitude of the two values. A tolerance of zero
// accepts only exact equality.
func WithinTol[T Real](a, b, tol T) bool {
	return Abs(a-b) <= tol*T(0.5)*(Abs(a)+Abs(b))
}
