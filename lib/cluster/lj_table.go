package cluster

/* This file builds the Lennard-Jones pair-parameter table. The kernels index
it exactly the way they read it, so the layout is fixed: NBFP[2*k] is the
dispersion coefficient and NBFP[2*k+1] the repulsion coefficient of the type
pair k = NumTypes*ti + tj. The stored values are 6*C6 and 12*C12, which lets
the force loop use them without any per-pair rescaling; energies divide the
normalization back out. */

import (
	"fmt"

	"github.com/phil-mansfield/nbkern/lib/mathx"
)

// CombinationRule selects how per-type sigma/epsilon values are combined
// into pair parameters.
type CombinationRule int

const (
	// Geometric combines sigma geometrically: sigma_ij^6 = (s_i*s_j)^3.
	Geometric CombinationRule = iota
	// LorentzBerthelot averages sigmas: sigma_ij = (s_i + s_j)/2.
	LorentzBerthelot
)

func (r CombinationRule) String() string {
	switch r {
	case Geometric:
		return "geometric"
	case LorentzBerthelot:
		return "Lorentz-Berthelot"
	}
	return fmt.Sprintf("CombinationRule(%d)", int(r))
}

// LJTable holds combined pair parameters for every type pair, including one
// trailing "filler" type with all-zero parameters that padding slots use.
type LJTable[T mathx.Real] struct {
	// NumTypes includes the filler type.
	NumTypes int
	// NBFP holds (6*C6, 12*C12) pairs; see the file comment for the layout.
	NBFP []T
}

// NumUserTypes returns the number of caller-defined types, excluding the
// filler type.
func (t *LJTable[T]) NumUserTypes() int { return t.NumTypes - 1 }

// FillerType returns the type index used by padding slots.
func (t *LJTable[T]) FillerType() int { return t.NumTypes - 1 }

// C6C12 returns the raw (unscaled) C6 and C12 coefficients of a type pair.
func (t *LJTable[T]) C6C12(ti, tj int) (T, T) {
	k := 2 * (t.NumTypes*ti + tj)
	return t.NBFP[k] / 6, t.NBFP[k+1] / 12
}

// CombineLJ combines two sigma/epsilon pairs into raw C6 and C12
// coefficients under the given combination rule.
func CombineLJ[T mathx.Real](
	sigma0, epsilon0, sigma1, epsilon1 T, rule CombinationRule,
) (c6, c12 T) {
	var sigma6 T
	if rule == Geometric {
		s2 := sigma0 * sigma1
		sigma6 = s2 * s2 * s2
	} else {
		s := (sigma0 + sigma1) / 2
		s2 := s * s
		sigma6 = s2 * s2 * s2
	}
	c6 = 4 * mathx.Sqrt(epsilon0*epsilon1) * sigma6
	c12 = c6 * sigma6
	return c6, c12
}

// NewLJTable builds a pair-parameter table from per-type sigma and epsilon
// values. A type with epsilon == 0 gets zero parameters against every
// partner, which is how atoms without VdW interactions are expressed.
func NewLJTable[T mathx.Real](sigma, epsilon []T, rule CombinationRule) (*LJTable[T], error) {
	if len(sigma) != len(epsilon) {
		return nil, fmt.Errorf(
			"There are %d sigma values but %d epsilon values.",
			len(sigma), len(epsilon),
		)
	}
	if len(sigma) == 0 {
		return nil, fmt.Errorf("The LJ parameter table needs at least one type.")
	}
	for i := range epsilon {
		if epsilon[i] < 0 {
			return nil, fmt.Errorf(
				"Type %d has a negative epsilon, %g.", i, float64(epsilon[i]),
			)
		}
	}

	nt := len(sigma) + 1
	t := &LJTable[T]{NumTypes: nt, NBFP: make([]T, 2*nt*nt)}
	for i := 0; i < len(sigma); i++ {
		for j := 0; j < len(sigma); j++ {
			c6, c12 := CombineLJ(sigma[i], epsilon[i], sigma[j], epsilon[j], rule)
			k := 2 * (nt*i + j)
			t.NBFP[k] = 6 * c6
			t.NBFP[k+1] = 12 * c12
		}
	}
	// The filler row and column are already zero.
	return t, nil
}
