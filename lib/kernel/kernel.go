/*package kernel contains the short-ranged nonbonded pair kernels. A kernel
walks a cluster-pair list over a structure-of-arrays atom buffer and
accumulates forces, shift forces, and optionally energies into an Output
buffer. The electrostatic method, Lennard-Jones cutoff modifier, and energy
handling are fixed when the kernel is built, so the pair loops carry no
per-pair branching beyond the cutoff and exclusion checks.*/
package kernel

import (
	"fmt"

	"github.com/phil-mansfield/nbkern/lib/cluster"
	"github.com/phil-mansfield/nbkern/lib/mathx"
)

// CoulombKind selects the electrostatic method.
type CoulombKind int

const (
	// CoulombNone computes Lennard-Jones interactions only.
	CoulombNone CoulombKind = iota
	// CoulombReactionField uses a reaction-field potential shifted to zero
	// at the cutoff.
	CoulombReactionField
	// CoulombTable uses the real-space part of an Ewald sum with the
	// correction read from a table.
	CoulombTable
	// CoulombEwald uses the real-space part of an Ewald sum with the
	// correction evaluated analytically.
	CoulombEwald
)

func (k CoulombKind) String() string {
	switch k {
	case CoulombNone:
		return "none"
	case CoulombReactionField:
		return "reaction-field"
	case CoulombTable:
		return "ewald-table"
	case CoulombEwald:
		return "ewald"
	}
	return fmt.Sprintf("CoulombKind(%d)", int(k))
}

// VdwModifier selects how the Lennard-Jones potential is treated at its
// cutoff.
type VdwModifier int

const (
	// VdwPotShift shifts the potential to zero at the cutoff.
	VdwPotShift VdwModifier = iota
	// VdwForceSwitch switches the force smoothly to zero between the switch
	// radius and the cutoff.
	VdwForceSwitch
	// VdwPotSwitch multiplies the potential by a smooth switching function
	// between the switch radius and the cutoff.
	VdwPotSwitch
	// VdwLJEwald is the long-range Lennard-Jones Ewald treatment. It is
	// recognized so configurations requesting it fail cleanly, but no kernel
	// implements it.
	VdwLJEwald
)

func (m VdwModifier) String() string {
	switch m {
	case VdwPotShift:
		return "potential-shift"
	case VdwForceSwitch:
		return "force-switch"
	case VdwPotSwitch:
		return "potential-switch"
	case VdwLJEwald:
		return "lj-ewald"
	}
	return fmt.Sprintf("VdwModifier(%d)", int(m))
}

// EnergyMode selects what a kernel accumulates beyond forces.
type EnergyMode int

const (
	// NoEnergies accumulates forces and shift forces only.
	NoEnergies EnergyMode = iota
	// Energies also accumulates total Lennard-Jones and Coulomb energies.
	Energies
	// GroupEnergies accumulates one energy per ordered pair of energy
	// groups instead of a single total.
	GroupEnergies
)

func (m EnergyMode) String() string {
	switch m {
	case NoEnergies:
		return "forces"
	case Energies:
		return "energies"
	case GroupEnergies:
		return "group-energies"
	}
	return fmt.Sprintf("EnergyMode(%d)", int(m))
}

// Setup fixes the discrete axes of a kernel instantiation.
type Setup struct {
	Coulomb CoulombKind
	Vdw     VdwModifier
	Energy  EnergyMode

	// HalfLJ restricts Lennard-Jones interactions to the first half of each
	// i-cluster's slots, for buffers laid out so atoms without LJ parameters
	// fill the second half.
	HalfLJ bool

	// SkipExclusionForces makes the kernel skip excluded pairs outright
	// instead of evaluating the electrostatic exclusion correction for them.
	// Totals from such a kernel need ExclusionCorrections added to match a
	// kernel that evaluates the corrections in the pair loop.
	SkipExclusionForces bool
}

// Kernel evaluates one pair list over one atom buffer, accumulating into
// out without zeroing it first.
type Kernel[T mathx.Real] func(
	ad *cluster.AtomData[T], list *cluster.PairList[T], out *Output[T],
)

// Output is a kernel accumulation buffer. Kernels add into it; call Zero
// between independent evaluations.
type Output[T mathx.Real] struct {
	// F holds forces with stride 3, over the padded atom count.
	F []T
	// FShift holds one force sum per shift vector, with stride 3.
	FShift []T
	// VVdw and VCoul hold energies: one element each under Energies, and
	// NumEnergyGroups^2 elements indexed by groupI*NumEnergyGroups+groupJ
	// under GroupEnergies.
	VVdw, VCoul []T
}

// NewOutput returns a zeroed accumulation buffer sized for ad.
func NewOutput[T mathx.Real](ad *cluster.AtomData[T]) *Output[T] {
	ngrp := ad.NumEnergyGroups
	if ngrp < 1 {
		ngrp = 1
	}
	return &Output[T]{
		F:      make([]T, 3*ad.PaddedLen()),
		FShift: make([]T, 3*cluster.NumShifts),
		VVdw:   make([]T, ngrp*ngrp),
		VCoul:  make([]T, ngrp*ngrp),
	}
}

// Zero clears every accumulator.
func (o *Output[T]) Zero() {
	clear(o.F)
	clear(o.FShift)
	clear(o.VVdw)
	clear(o.VCoul)
}

// VVdwTotal returns the summed Lennard-Jones energy across all group pairs.
func (o *Output[T]) VVdwTotal() T {
	var v T
	for _, x := range o.VVdw {
		v += x
	}
	return v
}

// VCoulTotal returns the summed Coulomb energy across all group pairs.
func (o *Output[T]) VCoulTotal() T {
	var v T
	for _, x := range o.VCoul {
		v += x
	}
	return v
}

// New builds the kernel selected by setup over the constants in ic. It
// returns an error for configurations no kernel implements.
func New[T mathx.Real](setup Setup, ic *InteractionConst[T]) (Kernel[T], error) {
	switch setup.Vdw {
	case VdwPotShift:
		v := vdwCut[T]{
			dispShift: ic.DispersionShift, repShift: ic.RepulsionShift,
		}
		return newWithVdw(setup, ic, v)
	case VdwForceSwitch:
		v := vdwForceSwitch[T]{
			rs: ic.RVdwSwitch, disp: ic.DispersionSwitch, rep: ic.RepulsionSwitch,
		}
		return newWithVdw(setup, ic, v)
	case VdwPotSwitch:
		v := vdwPotSwitch[T]{
			rs: ic.RVdwSwitch,
			v3: ic.PotSwV3, v4: ic.PotSwV4, v5: ic.PotSwV5,
			f2: ic.PotSwF2, f3: ic.PotSwF3, f4: ic.PotSwF4,
		}
		return newWithVdw(setup, ic, v)
	case VdwLJEwald:
		return nil, fmt.Errorf(
			"No kernel implements the %s Lennard-Jones treatment.", setup.Vdw,
		)
	}
	return nil, fmt.Errorf("Unknown VdW modifier %d.", int(setup.Vdw))
}

func newWithVdw[T mathx.Real, V vdwStrategy[T]](
	setup Setup, ic *InteractionConst[T], vdw V,
) (Kernel[T], error) {
	switch setup.Coulomb {
	case CoulombNone:
		return newWithStrategies(setup, ic, coulNone[T]{}, vdw)
	case CoulombReactionField:
		c := coulRF[T]{krf: ic.KRF, krf2: ic.KRF2, crf: ic.CRF}
		return newWithStrategies(setup, ic, c, vdw)
	case CoulombTable:
		c := coulTable[T]{
			scale: ic.Table.Scale, halfsp: T(0.5) / ic.Table.Scale,
			fdv0: ic.Table.Data, shEwald: ic.ShEwald,
		}
		return newWithStrategies(setup, ic, c, vdw)
	case CoulombEwald:
		c := coulEwald[T]{
			beta: ic.Beta, twoBetaOverSqrtPi: ic.TwoBetaOverSqrtPi,
			shEwald: ic.ShEwald,
		}
		return newWithStrategies(setup, ic, c, vdw)
	}
	return nil, fmt.Errorf("Unknown Coulomb kind %d.", int(setup.Coulomb))
}

func newWithStrategies[T mathx.Real, C coulStrategy[T], V vdwStrategy[T]](
	setup Setup, ic *InteractionConst[T], coul C, vdw V,
) (Kernel[T], error) {
	switch setup.Energy {
	case NoEnergies:
		return func(
			ad *cluster.AtomData[T], list *cluster.PairList[T], out *Output[T],
		) {
			loopF(coul, vdw, setup, ic, ad, list, out)
		}, nil
	case Energies:
		return func(
			ad *cluster.AtomData[T], list *cluster.PairList[T], out *Output[T],
		) {
			loopFE(coul, vdw, setup, ic, ad, list, out)
		}, nil
	case GroupEnergies:
		return func(
			ad *cluster.AtomData[T], list *cluster.PairList[T], out *Output[T],
		) {
			loopFEGroups(coul, vdw, setup, ic, ad, list, out)
		}, nil
	}
	return nil, fmt.Errorf("Unknown energy mode %d.", int(setup.Energy))
}
