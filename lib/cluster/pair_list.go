package cluster

/* This file contains the cluster-pair list format and a reference builder.
The builder is quadratic in the number of clusters: it exists so tests and
small driver runs don't need a neighbor-search grid, which is a separate
subsystem. The list format itself is what the kernels consume, and its bit
conventions must not change:

  - CjEntry.Excl bit (i*ClusterSize + j) is 1 when slot i of the i-cluster
    and slot j of the j-cluster form a real (non-excluded) pair.
  - For the entry pairing a cluster with itself under the central shift, the
    builder clears every bit with j <= i, so only the strict upper triangle
    of the block is ever marked interacting.
*/

import (
	"fmt"
	"sort"

	"github.com/phil-mansfield/nbkern/lib/mathx"
)

// CiEntry describes one i-cluster and the range of j-cluster entries it
// interacts with under a single periodic shift.
type CiEntry struct {
	// CI is the i-cluster index.
	CI int32
	// Shift indexes the pair list's shift vectors; the i-cluster is
	// displaced by that vector before distances are computed.
	Shift int32
	// CJStart and CJEnd bound this entry's half-open range in the CJ array.
	CJStart, CJEnd int32
}

// CjEntry describes one j-cluster and its exclusion mask.
type CjEntry struct {
	CJ   int32
	Excl uint32
}

// PairList is a flattened cluster-pair list plus the shift vectors its
// entries reference. The kernels iterate CI in order and, within each entry,
// CJ in order, which fixes the floating-point summation order.
type PairList[T mathx.Real] struct {
	CI []CiEntry
	CJ []CjEntry
	// ShiftVecs holds NumShifts vectors with stride 3.
	ShiftVecs []T
}

// SelfMask returns the exclusion mask of a cluster paired with itself under
// the central shift before topology exclusions are applied: only the strict
// upper triangle is set.
func SelfMask() uint32 {
	var m uint32
	for i := 0; i < ClusterSize; i++ {
		for j := i + 1; j < ClusterSize; j++ {
			m |= 1 << uint(i*ClusterSize+j)
		}
	}
	return m
}

// MakeShiftVecs returns the 27 periodic shift vectors of an orthorhombic box
// in the fixed (-1,0,+1)^3 order; index CentralShift is the zero vector.
func MakeShiftVecs[T mathx.Real](box [3]T) []T {
	sv := make([]T, 3*NumShifts)
	s := 0
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			for dz := -1; dz <= 1; dz++ {
				sv[3*s] = T(dx) * box[0]
				sv[3*s+1] = T(dy) * box[1]
				sv[3*s+2] = T(dz) * box[2]
				s++
			}
		}
	}
	return sv
}

// Exclusions lists, for each atom, the atoms it must not interact with
// through the nonbonded potential. Lists need not be sorted and need not
// contain the atom itself; the pair list builder handles both.
type Exclusions [][]int32

// Excluded returns true if the pair (i, j) is excluded.
func (e Exclusions) Excluded(i, j int) bool {
	if i >= len(e) {
		return false
	}
	for _, k := range e[i] {
		if int(k) == j {
			return true
		}
	}
	return false
}

// NewSimpleList builds a cluster-pair list by direct minimum-image search
// over all cluster pairs. An entry is emitted for every cluster pair and
// shift with at least one atom pair inside the cutoff, excluded pairs
// included, since excluded pairs in range still need their electrostatic
// corrections evaluated. The cutoff must not exceed half the smallest box
// edge, and a cluster is never paired against its own periodic images.
func NewSimpleList[T mathx.Real](
	ad *AtomData[T], excl Exclusions, box [3]T, rCut T,
) (*PairList[T], error) {
	if rCut <= 0 {
		return nil, fmt.Errorf("The cutoff, %g, is not positive.", float64(rCut))
	}
	for d := 0; d < 3; d++ {
		if box[d] < 2*rCut {
			return nil, fmt.Errorf(
				"The cutoff, %g, is more than half the box edge %g along "+
					"dimension %d.", float64(rCut), float64(box[d]), d,
			)
		}
	}

	sv := MakeShiftVecs(box)
	rCut2 := rCut * rCut
	nc := ad.NumClusters

	list := &PairList[T]{ShiftVecs: sv}

	// Per i-cluster, collect the j clusters in range of each shift, then
	// flatten grouped by (ci, shift) so each CiEntry covers one shift.
	type cjKey struct {
		shift int
		cj    int
	}
	for ci := 0; ci < nc; ci++ {
		masks := map[cjKey]uint32{}
		for cj := ci; cj < nc; cj++ {
			for s := 0; s < NumShifts; s++ {
				if cj == ci && s != CentralShift {
					// A cluster against its own image needs a cutoff larger
					// than half the box, which was rejected above.
					continue
				}
				mask, inRange := clusterPairMask(ad, excl, sv, rCut2, ci, cj, s)
				if inRange {
					masks[cjKey{s, cj}] = mask
				}
			}
		}

		keys := make([]cjKey, 0, len(masks))
		for k := range masks {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(a, b int) bool {
			if keys[a].shift != keys[b].shift {
				return keys[a].shift < keys[b].shift
			}
			return keys[a].cj < keys[b].cj
		})

		for i := 0; i < len(keys); {
			j := i
			start := int32(len(list.CJ))
			for ; j < len(keys) && keys[j].shift == keys[i].shift; j++ {
				list.CJ = append(list.CJ, CjEntry{
					CJ: int32(keys[j].cj), Excl: masks[keys[j]],
				})
			}
			list.CI = append(list.CI, CiEntry{
				CI: int32(ci), Shift: int32(keys[i].shift),
				CJStart: start, CJEnd: int32(len(list.CJ)),
			})
			i = j
		}
	}

	return list, nil
}

// clusterPairMask computes the exclusion mask of the pair (ci, cj) under
// shift s and reports whether any real atom pair is inside the cutoff under
// that shift's minimum image.
func clusterPairMask[T mathx.Real](
	ad *AtomData[T], excl Exclusions, sv []T, rCut2 T, ci, cj, s int,
) (mask uint32, inRange bool) {
	diag := ci == cj && s == CentralShift
	for i := 0; i < ClusterSize; i++ {
		ai := ci*ClusterSize + i
		for j := 0; j < ClusterSize; j++ {
			aj := cj*ClusterSize + j
			if diag && j <= i {
				continue
			}
			if ai >= ad.NumAtoms || aj >= ad.NumAtoms {
				continue
			}

			dx := ad.X[3*ai] + sv[3*s] - ad.X[3*aj]
			dy := ad.X[3*ai+1] + sv[3*s+1] - ad.X[3*aj+1]
			dz := ad.X[3*ai+2] + sv[3*s+2] - ad.X[3*aj+2]
			rsq := dx*dx + dy*dy + dz*dz

			if rsq < rCut2 && s == minImageShift(ad, sv, ai, aj) {
				inRange = true
				if !excl.Excluded(ai, aj) {
					mask |= 1 << uint(i*ClusterSize+j)
				}
			}
		}
	}
	return mask, inRange
}

// minImageShift returns the shift index under which atoms ai and aj are
// closest, so each atom pair lands in exactly one list entry.
func minImageShift[T mathx.Real](ad *AtomData[T], sv []T, ai, aj int) int {
	best, bestRsq := CentralShift, T(0)
	first := true
	for s := 0; s < NumShifts; s++ {
		dx := ad.X[3*ai] + sv[3*s] - ad.X[3*aj]
		dy := ad.X[3*ai+1] + sv[3*s+1] - ad.X[3*aj+1]
		dz := ad.X[3*ai+2] + sv[3*s+2] - ad.X[3*aj+2]
		rsq := dx*dx + dy*dy + dz*dz
		if first || rsq < bestRsq {
			first, best, bestRsq = false, s, rsq
		}
	}
	return best
}
