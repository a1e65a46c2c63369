package kernel

/* The three pair-loop flavors: forces only, forces plus total energies, and
forces plus per-group-pair energies. The bodies are deliberately written out
three times rather than unified behind flags, so each flavor's inner loop
contains only the work it needs.

Shared conventions:

  - The i-cluster's positions are preloaded with the entry's periodic shift
    applied, so the inner loop computes plain differences.
  - i-side charges are preloaded multiplied by the Coulomb prefactor.
  - interact is 1 for a real pair and 0 for an excluded one. When the kernel
    evaluates exclusion corrections, excluded pairs run through the full
    arithmetic with interact = 0, which removes the bare terms and leaves
    only the corrections; pairs closer than minDistance are skipped so
    coincident excluded atoms don't divide by zero.
  - Accumulated i-forces are flushed to both the force array and the entry's
    shift-force slot, which makes the virial recoverable from shift sums.
*/

import (
	"github.com/phil-mansfield/nbkern/lib/cluster"
	"github.com/phil-mansfield/nbkern/lib/mathx"
)

// minDistanceSq is the squared distance below which an excluded pair is
// treated as coincident and skipped.
const minDistanceSq = 1e-12

func loopF[T mathx.Real, C coulStrategy[T], V vdwStrategy[T]](
	coul C, vdw V, setup Setup, ic *InteractionConst[T],
	ad *cluster.AtomData[T], list *cluster.PairList[T], out *Output[T],
) {
	exclForces := setup.Coulomb != CoulombNone && !setup.SkipExclusionForces
	halfLJ := setup.HalfLJ
	twin := ic.TwinRange
	rcut2, rvdw2 := ic.RCoulomb2, ic.RVdw2
	nbfp := ad.Params.NBFP
	ntype2 := 2 * ad.Params.NumTypes

	var xi, fi [3 * cluster.ClusterSize]T
	var qi [cluster.ClusterSize]T
	var typeOff [cluster.ClusterSize]int

	for _, ce := range list.CI {
		ci := int(ce.CI)
		sh := int(ce.Shift)
		ciSh := -1
		if sh == cluster.CentralShift {
			ciSh = ci
		}

		for i := 0; i < cluster.ClusterSize; i++ {
			ai := ci*cluster.ClusterSize + i
			xi[3*i] = ad.X[3*ai] + list.ShiftVecs[3*sh]
			xi[3*i+1] = ad.X[3*ai+1] + list.ShiftVecs[3*sh+1]
			xi[3*i+2] = ad.X[3*ai+2] + list.ShiftVecs[3*sh+2]
			qi[i] = ic.Epsfac * ad.Q[ai]
			typeOff[i] = int(ad.Type[ai]) * ntype2
			fi[3*i], fi[3*i+1], fi[3*i+2] = 0, 0, 0
		}

		for cjind := ce.CJStart; cjind < ce.CJEnd; cjind++ {
			cj := int(list.CJ[cjind].CJ)
			excl := list.CJ[cjind].Excl

			for i := 0; i < cluster.ClusterSize; i++ {
				withLJI := !halfLJ || i < cluster.ClusterSize/2
				for j := 0; j < cluster.ClusterSize; j++ {
					interactBit := (excl >> uint(i*cluster.ClusterSize+j)) & 1
					if !exclForces && interactBit == 0 {
						continue
					}
					if exclForces && cj == ciSh && j <= i {
						continue
					}

					aj := cj*cluster.ClusterSize + j
					dx := xi[3*i] - ad.X[3*aj]
					dy := xi[3*i+1] - ad.X[3*aj+1]
					dz := xi[3*i+2] - ad.X[3*aj+2]
					rsq := dx*dx + dy*dy + dz*dz
					if rsq >= rcut2 {
						continue
					}
					if exclForces && rsq < minDistanceSq {
						continue
					}

					interact := T(interactBit)
					rinv := mathx.InvSqrt(rsq)
					rinvsq := rinv * rinv

					var frLJ T
					if withLJI && (!twin || rsq < rvdw2) {
						rinvsix := interact * rinvsq * rinvsq * rinvsq
						k := typeOff[i] + 2*int(ad.Type[aj])
						frLJ = vdw.evalF(
							nbfp[k], nbfp[k+1], rsq, rinv, rinvsix, interact,
						)
					}

					qq := qi[i] * ad.Q[aj]
					fcoul := coul.evalF(qq, rsq, rinv, rinvsq, interact)
					fscal := frLJ*rinvsq + fcoul

					fx, fy, fz := fscal*dx, fscal*dy, fscal*dz
					fi[3*i] += fx
					fi[3*i+1] += fy
					fi[3*i+2] += fz
					out.F[3*aj] -= fx
					out.F[3*aj+1] -= fy
					out.F[3*aj+2] -= fz
				}
			}
		}

		for i := 0; i < cluster.ClusterSize; i++ {
			ai := ci*cluster.ClusterSize + i
			out.F[3*ai] += fi[3*i]
			out.F[3*ai+1] += fi[3*i+1]
			out.F[3*ai+2] += fi[3*i+2]
			out.FShift[3*sh] += fi[3*i]
			out.FShift[3*sh+1] += fi[3*i+1]
			out.FShift[3*sh+2] += fi[3*i+2]
		}
	}
}

func loopFE[T mathx.Real, C coulStrategy[T], V vdwStrategy[T]](
	coul C, vdw V, setup Setup, ic *InteractionConst[T],
	ad *cluster.AtomData[T], list *cluster.PairList[T], out *Output[T],
) {
	exclForces := setup.Coulomb != CoulombNone && !setup.SkipExclusionForces
	halfLJ := setup.HalfLJ
	twin := ic.TwinRange
	rcut2, rvdw2 := ic.RCoulomb2, ic.RVdw2
	nbfp := ad.Params.NBFP
	ntype2 := 2 * ad.Params.NumTypes

	var xi, fi [3 * cluster.ClusterSize]T
	var qi [cluster.ClusterSize]T
	var typeOff [cluster.ClusterSize]int

	for _, ce := range list.CI {
		ci := int(ce.CI)
		sh := int(ce.Shift)
		ciSh := -1
		if sh == cluster.CentralShift {
			ciSh = ci
		}

		for i := 0; i < cluster.ClusterSize; i++ {
			ai := ci*cluster.ClusterSize + i
			xi[3*i] = ad.X[3*ai] + list.ShiftVecs[3*sh]
			xi[3*i+1] = ad.X[3*ai+1] + list.ShiftVecs[3*sh+1]
			xi[3*i+2] = ad.X[3*ai+2] + list.ShiftVecs[3*sh+2]
			qi[i] = ic.Epsfac * ad.Q[ai]
			typeOff[i] = int(ad.Type[ai]) * ntype2
			fi[3*i], fi[3*i+1], fi[3*i+2] = 0, 0, 0
		}
		var vVdwCI, vCoulCI T

		for cjind := ce.CJStart; cjind < ce.CJEnd; cjind++ {
			cj := int(list.CJ[cjind].CJ)
			excl := list.CJ[cjind].Excl

			for i := 0; i < cluster.ClusterSize; i++ {
				withLJI := !halfLJ || i < cluster.ClusterSize/2
				for j := 0; j < cluster.ClusterSize; j++ {
					interactBit := (excl >> uint(i*cluster.ClusterSize+j)) & 1
					if !exclForces && interactBit == 0 {
						continue
					}
					if exclForces && cj == ciSh && j <= i {
						continue
					}

					aj := cj*cluster.ClusterSize + j
					dx := xi[3*i] - ad.X[3*aj]
					dy := xi[3*i+1] - ad.X[3*aj+1]
					dz := xi[3*i+2] - ad.X[3*aj+2]
					rsq := dx*dx + dy*dy + dz*dz
					if rsq >= rcut2 {
						continue
					}
					if exclForces && rsq < minDistanceSq {
						continue
					}

					interact := T(interactBit)
					rinv := mathx.InvSqrt(rsq)
					rinvsq := rinv * rinv

					var frLJ T
					if withLJI && (!twin || rsq < rvdw2) {
						rinvsix := interact * rinvsq * rinvsq * rinvsq
						k := typeOff[i] + 2*int(ad.Type[aj])
						var vLJ T
						frLJ, vLJ = vdw.evalFE(
							nbfp[k], nbfp[k+1], rsq, rinv, rinvsix, interact,
						)
						vVdwCI += vLJ
					}

					qq := qi[i] * ad.Q[aj]
					fcoul, vcoul := coul.evalFE(qq, rsq, rinv, rinvsq, interact)
					vCoulCI += vcoul
					fscal := frLJ*rinvsq + fcoul

					fx, fy, fz := fscal*dx, fscal*dy, fscal*dz
					fi[3*i] += fx
					fi[3*i+1] += fy
					fi[3*i+2] += fz
					out.F[3*aj] -= fx
					out.F[3*aj+1] -= fy
					out.F[3*aj+2] -= fz
				}
			}
		}

		for i := 0; i < cluster.ClusterSize; i++ {
			ai := ci*cluster.ClusterSize + i
			out.F[3*ai] += fi[3*i]
			out.F[3*ai+1] += fi[3*i+1]
			out.F[3*ai+2] += fi[3*i+2]
			out.FShift[3*sh] += fi[3*i]
			out.FShift[3*sh+1] += fi[3*i+1]
			out.FShift[3*sh+2] += fi[3*i+2]
		}
		out.VVdw[0] += vVdwCI
		out.VCoul[0] += vCoulCI
	}
}

func loopFEGroups[T mathx.Real, C coulStrategy[T], V vdwStrategy[T]](
	coul C, vdw V, setup Setup, ic *InteractionConst[T],
	ad *cluster.AtomData[T], list *cluster.PairList[T], out *Output[T],
) {
	exclForces := setup.Coulomb != CoulombNone && !setup.SkipExclusionForces
	halfLJ := setup.HalfLJ
	twin := ic.TwinRange
	rcut2, rvdw2 := ic.RCoulomb2, ic.RVdw2
	nbfp := ad.Params.NBFP
	ntype2 := 2 * ad.Params.NumTypes
	ngrp := ad.NumEnergyGroups
	if ngrp < 1 {
		ngrp = 1
	}

	var xi, fi [3 * cluster.ClusterSize]T
	var qi [cluster.ClusterSize]T
	var typeOff, egpI [cluster.ClusterSize]int

	for _, ce := range list.CI {
		ci := int(ce.CI)
		sh := int(ce.Shift)
		ciSh := -1
		if sh == cluster.CentralShift {
			ciSh = ci
		}

		for i := 0; i < cluster.ClusterSize; i++ {
			ai := ci*cluster.ClusterSize + i
			xi[3*i] = ad.X[3*ai] + list.ShiftVecs[3*sh]
			xi[3*i+1] = ad.X[3*ai+1] + list.ShiftVecs[3*sh+1]
			xi[3*i+2] = ad.X[3*ai+2] + list.ShiftVecs[3*sh+2]
			qi[i] = ic.Epsfac * ad.Q[ai]
			typeOff[i] = int(ad.Type[ai]) * ntype2
			egpI[i] = ad.EnergyGroup(ci, i) * ngrp
			fi[3*i], fi[3*i+1], fi[3*i+2] = 0, 0, 0
		}

		for cjind := ce.CJStart; cjind < ce.CJEnd; cjind++ {
			cj := int(list.CJ[cjind].CJ)
			excl := list.CJ[cjind].Excl

			for i := 0; i < cluster.ClusterSize; i++ {
				withLJI := !halfLJ || i < cluster.ClusterSize/2
				for j := 0; j < cluster.ClusterSize; j++ {
					interactBit := (excl >> uint(i*cluster.ClusterSize+j)) & 1
					if !exclForces && interactBit == 0 {
						continue
					}
					if exclForces && cj == ciSh && j <= i {
						continue
					}

					aj := cj*cluster.ClusterSize + j
					dx := xi[3*i] - ad.X[3*aj]
					dy := xi[3*i+1] - ad.X[3*aj+1]
					dz := xi[3*i+2] - ad.X[3*aj+2]
					rsq := dx*dx + dy*dy + dz*dz
					if rsq >= rcut2 {
						continue
					}
					if exclForces && rsq < minDistanceSq {
						continue
					}

					interact := T(interactBit)
					rinv := mathx.InvSqrt(rsq)
					rinvsq := rinv * rinv
					egp := egpI[i] + ad.EnergyGroup(cj, j)

					var frLJ T
					if withLJI && (!twin || rsq < rvdw2) {
						rinvsix := interact * rinvsq * rinvsq * rinvsq
						k := typeOff[i] + 2*int(ad.Type[aj])
						var vLJ T
						frLJ, vLJ = vdw.evalFE(
							nbfp[k], nbfp[k+1], rsq, rinv, rinvsix, interact,
						)
						out.VVdw[egp] += vLJ
					}

					qq := qi[i] * ad.Q[aj]
					fcoul, vcoul := coul.evalFE(qq, rsq, rinv, rinvsq, interact)
					out.VCoul[egp] += vcoul
					fscal := frLJ*rinvsq + fcoul

					fx, fy, fz := fscal*dx, fscal*dy, fscal*dz
					fi[3*i] += fx
					fi[3*i+1] += fy
					fi[3*i+2] += fz
					out.F[3*aj] -= fx
					out.F[3*aj+1] -= fy
					out.F[3*aj+2] -= fz
				}
			}
		}

		for i := 0; i < cluster.ClusterSize; i++ {
			ai := ci*cluster.ClusterSize + i
			out.F[3*ai] += fi[3*i]
			out.F[3*ai+1] += fi[3*i+1]
			out.F[3*ai+2] += fi[3*i+2]
			out.FShift[3*sh] += fi[3*i]
			out.FShift[3*sh+1] += fi[3*i+1]
			out.FShift[3*sh+2] += fi[3*i+2]
		}
	}
}
