package kernel

/* Exclusion corrections evaluated outside the pair loop. A kernel built
with SkipExclusionForces never touches excluded pairs, which leaves the
long-range electrostatic correction of every excluded pair inside the cutoff
unaccounted for. This helper walks the exclusion lists directly and
accumulates exactly those corrections, so the sum of a skipping kernel and
this helper matches a kernel that evaluates the corrections inline. */

import (
	"fmt"

	"github.com/phil-mansfield/nbkern/lib/cluster"
	"github.com/phil-mansfield/nbkern/lib/mathx"
)

// ExclusionCorrections accumulates the electrostatic corrections of every
// excluded pair within the cutoff into out. shiftVecs must be the same
// shift vectors the pair list was built with. The corrections obey the same
// conventions as the pair loops: coincident pairs are skipped, forces go to
// both atoms and to the shift-force slot of the i-side image, and energies
// land in the accumulator selected by setup.Energy.
func ExclusionCorrections[T mathx.Real](
	setup Setup, ic *InteractionConst[T], ad *cluster.AtomData[T],
	excl cluster.Exclusions, shiftVecs []T, out *Output[T],
) error {
	if setup.Coulomb == CoulombNone {
		return nil
	}

	var coul coulStrategy[T]
	switch setup.Coulomb {
	case CoulombReactionField:
		coul = coulRF[T]{krf: ic.KRF, krf2: ic.KRF2, crf: ic.CRF}
	case CoulombTable:
		coul = coulTable[T]{
			scale: ic.Table.Scale, halfsp: T(0.5) / ic.Table.Scale,
			fdv0: ic.Table.Data, shEwald: ic.ShEwald,
		}
	case CoulombEwald:
		coul = coulEwald[T]{
			beta: ic.Beta, twoBetaOverSqrtPi: ic.TwoBetaOverSqrtPi,
			shEwald: ic.ShEwald,
		}
	default:
		return fmt.Errorf("Unknown Coulomb kind %d.", int(setup.Coulomb))
	}

	ngrp := ad.NumEnergyGroups
	if ngrp < 1 {
		ngrp = 1
	}

	for ai := 0; ai < ad.NumAtoms && ai < len(excl); ai++ {
		for _, k := range excl[ai] {
			aj := int(k)
			if aj <= ai || aj >= ad.NumAtoms {
				continue
			}

			// Evaluate the pair at its minimum image, tracking which shift
			// produced it so the shift-force bookkeeping stays consistent
			// with the pair loops.
			var dx, dy, dz, rsq T
			sh := -1
			for s := 0; s < cluster.NumShifts; s++ {
				sx := ad.X[3*ai] + shiftVecs[3*s] - ad.X[3*aj]
				sy := ad.X[3*ai+1] + shiftVecs[3*s+1] - ad.X[3*aj+1]
				sz := ad.X[3*ai+2] + shiftVecs[3*s+2] - ad.X[3*aj+2]
				srsq := sx*sx + sy*sy + sz*sz
				if sh == -1 || srsq < rsq {
					sh, dx, dy, dz, rsq = s, sx, sy, sz, srsq
				}
			}
			if rsq >= ic.RCoulomb2 || rsq < minDistanceSq {
				continue
			}

			rinv := mathx.InvSqrt(rsq)
			rinvsq := rinv * rinv
			qq := ic.Epsfac * ad.Q[ai] * ad.Q[aj]

			var fcoul T
			if setup.Energy == NoEnergies {
				fcoul = coul.evalF(qq, rsq, rinv, rinvsq, 0)
			} else {
				var vcoul T
				fcoul, vcoul = coul.evalFE(qq, rsq, rinv, rinvsq, 0)
				egp := 0
				if setup.Energy == GroupEnergies {
					gi := ad.EnergyGroup(ai/cluster.ClusterSize, ai%cluster.ClusterSize)
					gj := ad.EnergyGroup(aj/cluster.ClusterSize, aj%cluster.ClusterSize)
					egp = gi*ngrp + gj
				}
				out.VCoul[egp] += vcoul
			}

			fx, fy, fz := fcoul*dx, fcoul*dy, fcoul*dz
			out.F[3*ai] += fx
			out.F[3*ai+1] += fy
			out.F[3*ai+2] += fz
			out.F[3*aj] -= fx
			out.F[3*aj+1] -= fy
			out.F[3*aj+2] -= fz
			out.FShift[3*sh] += fx
			out.FShift[3*sh+1] += fy
			out.FShift[3*sh+2] += fz
		}
	}
	return nil
}
