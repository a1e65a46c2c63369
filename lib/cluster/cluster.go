/*package cluster contains the data layout consumed by the nonbonded kernels:
structure-of-arrays atom buffers padded to a fixed cluster size, the
Lennard-Jones parameter table, and cluster-pair lists with per-pair exclusion
masks. The layout invariants here are load-bearing for the kernels, so they
are documented on the types rather than rederived in the kernel package.*/
package cluster

import (
	"fmt"

	"github.com/phil-mansfield/nbkern/lib/mathx"
)

const (
	// ClusterSize is the number of atom slots in a cluster, in both the i
	// and j dimensions of a cluster pair. Exclusion masks and energy-group
	// words are packed against this value.
	ClusterSize = 4

	// NumShifts is the number of periodic shift vectors: the 3x3x3 block of
	// images offset by -1, 0, +1 cells along each axis.
	NumShifts = 27
	// CentralShift is the index of the zero shift vector within that block.
	CentralShift = 13
)

// AtomData is the structure-of-arrays atom buffer read by the kernels. All
// arrays are padded to a multiple of ClusterSize: padding slots repeat the
// position of the last real atom, carry zero charge, and use the parameter
// table's filler type, so they contribute nothing to any interaction.
type AtomData[T mathx.Real] struct {
	// NumAtoms is the number of real atoms, before padding.
	NumAtoms int
	// NumClusters is the padded atom count divided by ClusterSize.
	NumClusters int

	// X holds positions with stride 3: atom a is X[3*a : 3*a+3].
	X []T
	// Type holds LJ type indices into the parameter table.
	Type []int32
	// Q holds partial charges.
	Q []T

	// EnergyGroups holds one packed word per cluster. Slot j of cluster c
	// stores its group index in bits [8*j, 8*j+8) of EnergyGroups[c]. Nil
	// when NumEnergyGroups < 2.
	EnergyGroups []uint32
	// NumEnergyGroups is the number of energy groups; 0 and 1 both mean
	// "single accumulator".
	NumEnergyGroups int

	// Params is the shared LJ parameter table; the kernels index its NBFP
	// array as Params.NBFP[2*NumTypes*ti + 2*tj].
	Params *LJTable[T]
}

// PaddedLen returns the padded atom count.
func (ad *AtomData[T]) PaddedLen() int { return ad.NumClusters * ClusterSize }

// EnergyGroup returns the energy group of slot j in cluster c. It returns 0
// when energy groups are disabled.
func (ad *AtomData[T]) EnergyGroup(c, j int) int {
	if ad.EnergyGroups == nil {
		return 0
	}
	return int((ad.EnergyGroups[c] >> (8 * uint(j))) & 255)
}

// NewAtomData validates and lays out an atom buffer. x, types, charges, and
// groups must have equal lengths; types must index into params; group tags
// must be smaller than numEnergyGroups. groups may be nil when
// numEnergyGroups < 2.
func NewAtomData[T mathx.Real](
	x [][3]T, types []int32, charges []T,
	groups []int32, numEnergyGroups int,
	params *LJTable[T],
) (*AtomData[T], error) {
	n := len(x)
	if n == 0 {
		return nil, fmt.Errorf("The atom buffer is empty.")
	}
	if len(types) != n || len(charges) != n {
		return nil, fmt.Errorf(
			"There are %d positions, but %d types and %d charges.",
			n, len(types), len(charges),
		)
	}
	if numEnergyGroups > 256 {
		return nil, fmt.Errorf(
			"%d energy groups were requested, but the packed group words "+
				"only fit indices up to 255.", numEnergyGroups,
		)
	}
	if numEnergyGroups >= 2 && len(groups) != n {
		return nil, fmt.Errorf(
			"%d energy groups are in use, so a group tag is needed for "+
				"each of the %d atoms, but %d were given.",
			numEnergyGroups, n, len(groups),
		)
	}

	nClusters := (n + ClusterSize - 1) / ClusterSize
	padded := nClusters * ClusterSize

	ad := &AtomData[T]{
		NumAtoms: n, NumClusters: nClusters,
		X: make([]T, 3*padded), Type: make([]int32, padded),
		Q:               make([]T, padded),
		NumEnergyGroups: numEnergyGroups,
		Params:          params,
	}

	for a := 0; a < n; a++ {
		if types[a] < 0 || int(types[a]) >= params.NumUserTypes() {
			return nil, fmt.Errorf(
				"Atom %d has LJ type %d, but the parameter table only "+
					"holds types 0 to %d.", a, types[a], params.NumUserTypes()-1,
			)
		}
		ad.X[3*a], ad.X[3*a+1], ad.X[3*a+2] = x[a][0], x[a][1], x[a][2]
		ad.Type[a] = types[a]
		ad.Q[a] = charges[a]
	}
	// Padding slots: repeat the last real position so distances stay finite,
	// and use the filler type so C6 = C12 = 0.
	for a := n; a < padded; a++ {
		ad.X[3*a], ad.X[3*a+1], ad.X[3*a+2] =
			ad.X[3*(n-1)], ad.X[3*(n-1)+1], ad.X[3*(n-1)+2]
		ad.Type[a] = int32(params.FillerType())
	}

	if numEnergyGroups >= 2 {
		ad.EnergyGroups = make([]uint32, nClusters)
		for a := 0; a < n; a++ {
			if groups[a] < 0 || int(groups[a]) >= numEnergyGroups {
				return nil, fmt.Errorf(
					"Atom %d has energy group %d, but only groups 0 to %d "+
						"are in use.", a, groups[a], numEnergyGroups-1,
				)
			}
			c, j := a/ClusterSize, a%ClusterSize
			ad.EnergyGroups[c] |= uint32(groups[a]) << (8 * uint(j))
		}
	}

	return ad, nil
}
