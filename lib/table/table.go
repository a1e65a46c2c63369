/*package table contains the tabulated Ewald real-space correction used by
the tabulated Coulomb kernels, along with the analytic forms of the same
correction. The table layout is the flat "FDV0" format the kernels index
directly: four values per bin, (force, force delta to the next bin,
potential, zero padding), uniformly spaced in distance.*/
package table

import (
	"fmt"

	"github.com/phil-mansfield/nbkern/lib/mathx"
)

// twoOverSqrtPi is 2/sqrt(pi), the r -> 0 limit of erf(beta*r)/(beta*r).
const twoOverSqrtPi = 1.1283791670955126

// FDV0 is a uniformly spaced Ewald correction table. Bin i corresponds to
// the distance i/Scale, and Data[4*i:4*i+4] holds (F, D, V, 0) where F is
// the correction force, D = F[i+1] - F[i] is the linear-interpolation slope,
// and V is the correction potential. The trailing zero keeps bins aligned to
// four values so a single scaled index reaches every field.
type FDV0[T mathx.Real] struct {
	// Scale is the inverse bin spacing.
	Scale T
	// NumBins is the number of (F, D, V, 0) bins.
	NumBins int
	// Data has length 4*NumBins.
	Data []T
}

// Covers returns true if a lookup at distance r stays inside the table,
// including the i+1 bin that linear interpolation reads through D.
func (t *FDV0[T]) Covers(r T) bool {
	return int(r*t.Scale)+1 < t.NumBins
}

// CorrectionForce returns the analytic value tabulated in the F field:
// (erf(beta*r)/r - 2*beta/sqrt(pi) * exp(-beta^2*r^2)) / r. The kernels
// subtract this from the bare 1/r^3 Coulomb term to leave the Ewald
// real-space force.
func CorrectionForce[T mathx.Real](beta, r T) T {
	if r == 0 {
		return 0
	}
	br := beta * r
	return (mathx.Erf(br)/r - T(twoOverSqrtPi)*beta*mathx.Exp(-br*br)) / r
}

// CorrectionPotential returns the analytic value tabulated in the V field:
// erf(beta*r)/r, the potential of the long-range Gaussian charge that the
// mesh part of an Ewald sum accounts for.
func CorrectionPotential[T mathx.Real](beta, r T) T {
	if r == 0 {
		return T(twoOverSqrtPi) * beta
	}
	return mathx.Erf(beta*r) / r
}

// NewEwaldFDV0 tabulates the Ewald correction for the splitting parameter
// beta on numBins bins with the given inverse spacing.
func NewEwaldFDV0[T mathx.Real](beta, scale T, numBins int) (*FDV0[T], error) {
	if beta <= 0 {
		return nil, fmt.Errorf(
			"The Ewald splitting parameter, %g, is not positive.", float64(beta),
		)
	}
	if scale <= 0 {
		return nil, fmt.Errorf(
			"The table scale, %g, is not positive.", float64(scale),
		)
	}
	if numBins < 2 {
		return nil, fmt.Errorf(
			"A table needs at least two bins, but %d were requested.", numBins,
		)
	}

	f := make([]T, numBins+1)
	for i := range f {
		f[i] = CorrectionForce(beta, T(i)/scale)
	}

	t := &FDV0[T]{Scale: scale, NumBins: numBins, Data: make([]T, 4*numBins)}
	for i := 0; i < numBins; i++ {
		t.Data[4*i] = f[i]
		t.Data[4*i+1] = f[i+1] - f[i]
		t.Data[4*i+2] = CorrectionPotential(beta, T(i)/scale)
		// Data[4*i+3] stays zero.
	}
	return t, nil
}

// EwaldBeta returns the splitting parameter for which the real-space sum
// truncated at the cutoff has the requested relative tolerance, i.e. the
// beta solving erfc(beta*cutoff) = rtol.
func EwaldBeta[T mathx.Real](cutoff, rtol T) (T, error) {
	if cutoff <= 0 {
		return 0, fmt.Errorf("The cutoff, %g, is not positive.", float64(cutoff))
	}
	if rtol <= 0 || rtol >= 1 {
		return 0, fmt.Errorf(
			"The Ewald tolerance, %g, is not in (0, 1).", float64(rtol),
		)
	}

	// erfc(beta*rc) decreases monotonically in beta: double until the
	// bracket contains the root, then bisect to working precision.
	lo, hi := T(0), T(1)/cutoff
	for mathx.Erfc(hi*cutoff) > rtol {
		hi *= 2
	}
	for i := 0; i < 100; i++ {
		mid := (lo + hi) / 2
		if mid == lo || mid == hi {
			break
		}
		if mathx.Erfc(mid*cutoff) > rtol {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2, nil
}
