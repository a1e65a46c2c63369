package mathx

import (
	"math"
	"testing"
)

func TestPrecisionSelection(t *testing.T) {
	// The float64 instantiations must match the standard library exactly.
	xs := []float64{0.1, 0.5, 1.0, 2.5, 9.0}
	for i, x := range xs {
		if Sqrt(x) != math.Sqrt(x) {
			t.Errorf("%d) Sqrt(%g) does not match math.Sqrt.", i, x)
		}
		if Erf(x) != math.Erf(x) {
			t.Errorf("%d) Erf(%g) does not match math.Erf.", i, x)
		}
		if Erfc(x) != math.Erfc(x) {
			t.Errorf("%d) Erfc(%g) does not match math.Erfc.", i, x)
		}
		if Exp(-x) != math.Exp(-x) {
			t.Errorf("%d) Exp(%g) does not match math.Exp.", i, -x)
		}
	}

	// The float32 instantiations must stay within single precision of the
	// double-precision values.
	for i, x := range xs {
		if got, want := float64(Sqrt(float32(x))), math.Sqrt(x); math.Abs(got-want) > 1e-6*want {
			t.Errorf("%d) float32 Sqrt(%g) = %g, want ~%g.", i, x, got, want)
		}
		if got, want := float64(Erf(float32(x))), math.Erf(x); math.Abs(got-want) > 1e-5 {
			t.Errorf("%d) float32 Erf(%g) = %g, want ~%g.", i, x, got, want)
		}
	}
}

func TestInvSqrt(t *testing.T) {
	for i, x := range []float64{1e-6, 0.25, 1, 4, 1e8} {
		if got, want := InvSqrt(x), 1/math.Sqrt(x); got != want {
			t.Errorf("%d) InvSqrt(%g) = %g, want %g.", i, x, got, want)
		}
	}
}

func TestEps(t *testing.T) {
	if Eps[float64]() >= 1e-15 || Eps[float64]() <= 0 {
		t.Errorf("float64 epsilon is %g.", Eps[float64]())
	}
	if Eps[float32]() >= 1e-6 || Eps[float32]() <= 0 {
		t.Errorf("float32 epsilon is %g.", Eps[float32]())
	}
}

func TestWithinTol(t *testing.T) {
	tests := []struct {
		a, b, tol float64
		want      bool
	}{
		{1, 1, 0, true},
		{1, 1 + 1e-12, 1e-10, true},
		{1, 1 + 1e-12, 1e-14, false},
		{0, 0, 0, true},
		{-1, 1, 0.5, false},
		{100, 100.4, 1e-2, true},
	}
	for i := range tests {
		got := WithinTol(tests[i].a, tests[i].b, tests[i].tol)
		if got != tests[i].want {
			t.Errorf("%d) WithinTol(%g, %g, %g) = %v, want %v.",
				i, tests[i].a, tests[i].b, tests[i].tol, got, tests[i].want)
		}
	}
}
