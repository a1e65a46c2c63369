package kernel

/* This file precomputes every numeric constant the pair loops read. The
loops themselves only multiply and add, so all cutoff-, modifier-, and
method-dependent algebra is folded into InteractionConst here. */

import (
	"fmt"

	"github.com/phil-mansfield/nbkern/lib/mathx"
	"github.com/phil-mansfield/nbkern/lib/table"
)

// DefaultEpsfac is the Coulomb prefactor 1/(4 pi eps0) in the module's
// standard units, kJ mol^-1 nm e^-2.
const DefaultEpsfac = 138.935458

// SwitchConstants holds the force-switch polynomial constants of one
// Lennard-Jones term, prescaled so the loops can apply them to the 6*C6 and
// 12*C12 coefficients read from the parameter table.
type SwitchConstants[T mathx.Real] struct {
	// F2 and F3 multiply rsw^2 and rsw^3 in the force polynomial.
	F2, F3 T
	// V3 and V4 multiply rsw^3 and rsw^4 in the potential polynomial, and
	// VC is the constant that zeroes the potential at the cutoff.
	V3, V4, VC T
}

// InteractionConst holds every precomputed constant the pair loops need.
// Only the fields relevant to the Setup used to build it are filled in.
type InteractionConst[T mathx.Real] struct {
	// Epsfac converts charge products into energies.
	Epsfac T

	// RCoulomb is the outer (electrostatic) cutoff; RVdw the Lennard-Jones
	// cutoff. They are equal unless TwinRange is set.
	RCoulomb, RCoulomb2 T
	RVdw, RVdw2         T
	TwinRange           bool

	// Reaction-field constants: the force uses KRF2 = 2*KRF, the potential
	// uses KRF and the shift CRF that zeroes it at the cutoff.
	KRF, KRF2, CRF T

	// Ewald constants. ShEwald = erfc(Beta*RCoulomb)/RCoulomb shifts the
	// potential to zero at the cutoff.
	Beta, TwoBetaOverSqrtPi, ShEwald T
	Table                            *table.FDV0[T]

	// RVdwSwitch is where the switch modifiers start acting.
	RVdwSwitch T

	// Potential-shift constants, -RVdw^-6 and -RVdw^-12.
	DispersionShift, RepulsionShift T

	// Force-switch constants for the two Lennard-Jones terms.
	DispersionSwitch, RepulsionSwitch SwitchConstants[T]

	// Potential-switch polynomial constants.
	PotSwV3, PotSwV4, PotSwV5 T
	PotSwF2, PotSwF3, PotSwF4 T
}

// Params collects the physical inputs NewInteractionConst turns into loop
// constants. Fields irrelevant to the chosen Setup may be left zero.
type Params[T mathx.Real] struct {
	// Epsfac is the Coulomb prefactor; zero selects DefaultEpsfac.
	Epsfac T
	// RCoulomb is the electrostatic cutoff.
	RCoulomb T
	// RVdw is the Lennard-Jones cutoff; zero means equal to RCoulomb.
	RVdw T
	// RVdwSwitch is where the force or potential switch starts.
	RVdwSwitch T
	// EpsilonRF is the reaction-field dielectric; zero means the conducting
	// boundary limit.
	EpsilonRF T
	// EwaldBeta is the Ewald splitting parameter.
	EwaldBeta T
	// Table is the correction table for CoulombTable kernels.
	Table *table.FDV0[T]
}

// NewInteractionConst validates the physical inputs against the setup and
// folds them into loop constants.
func NewInteractionConst[T mathx.Real](
	setup Setup, p Params[T],
) (*InteractionConst[T], error) {
	if p.RCoulomb <= 0 {
		return nil, fmt.Errorf(
			"The electrostatic cutoff, %g, is not positive.", float64(p.RCoulomb),
		)
	}
	rvdw := p.RVdw
	if rvdw == 0 {
		rvdw = p.RCoulomb
	}
	if rvdw <= 0 || rvdw > p.RCoulomb {
		return nil, fmt.Errorf(
			"The Lennard-Jones cutoff, %g, must be positive and no larger "+
				"than the electrostatic cutoff, %g.",
			float64(rvdw), float64(p.RCoulomb),
		)
	}

	ic := &InteractionConst[T]{
		Epsfac:    p.Epsfac,
		RCoulomb:  p.RCoulomb,
		RCoulomb2: p.RCoulomb * p.RCoulomb,
		RVdw:      rvdw,
		RVdw2:     rvdw * rvdw,
		TwinRange: rvdw < p.RCoulomb,
	}
	if ic.Epsfac == 0 {
		ic.Epsfac = DefaultEpsfac
	}

	switch setup.Coulomb {
	case CoulombNone:
	case CoulombReactionField:
		rc := p.RCoulomb
		if p.EpsilonRF < 0 {
			return nil, fmt.Errorf(
				"The reaction-field dielectric, %g, is negative.",
				float64(p.EpsilonRF),
			)
		}
		if p.EpsilonRF == 0 {
			// Conducting boundary: the eps_rf -> infinity limit.
			ic.KRF = 1 / (2 * rc * rc * rc)
		} else {
			ic.KRF = (p.EpsilonRF - 1) / (2*p.EpsilonRF + 1) / (rc * rc * rc)
		}
		ic.KRF2 = 2 * ic.KRF
		ic.CRF = 1/rc + ic.KRF*rc*rc
	case CoulombTable, CoulombEwald:
		if p.EwaldBeta <= 0 {
			return nil, fmt.Errorf(
				"The Ewald splitting parameter, %g, is not positive.",
				float64(p.EwaldBeta),
			)
		}
		ic.Beta = p.EwaldBeta
		ic.TwoBetaOverSqrtPi = T(1.1283791670955126) * ic.Beta
		ic.ShEwald = mathx.Erfc(ic.Beta*p.RCoulomb) / p.RCoulomb
		if setup.Coulomb == CoulombTable {
			if p.Table == nil {
				return nil, fmt.Errorf(
					"A tabulated Coulomb kernel was requested without a table.",
				)
			}
			if !p.Table.Covers(p.RCoulomb) {
				return nil, fmt.Errorf(
					"The Coulomb table ends at %g, inside the cutoff %g.",
					float64(T(p.Table.NumBins-1)/p.Table.Scale),
					float64(p.RCoulomb),
				)
			}
			ic.Table = p.Table
		}
	default:
		return nil, fmt.Errorf("Unknown Coulomb kind %d.", int(setup.Coulomb))
	}

	switch setup.Vdw {
	case VdwPotShift:
		rinv6 := powInt(1/rvdw, 6)
		ic.DispersionShift = -rinv6
		ic.RepulsionShift = -rinv6 * rinv6
	case VdwLJEwald:
		// No constants: kernel construction rejects this modifier with a
		// descriptive error, which matters more than failing here.
	case VdwForceSwitch, VdwPotSwitch:
		rs := p.RVdwSwitch
		if rs <= 0 || rs >= rvdw {
			return nil, fmt.Errorf(
				"The switch radius, %g, must lie strictly between zero and "+
					"the Lennard-Jones cutoff, %g.", float64(rs), float64(rvdw),
			)
		}
		ic.RVdwSwitch = rs
		if setup.Vdw == VdwForceSwitch {
			ic.DispersionSwitch = forceSwitchConstants[T](6, rs, rvdw)
			ic.RepulsionSwitch = forceSwitchConstants[T](12, rs, rvdw)
		} else {
			d := rvdw - rs
			d3 := d * d * d
			ic.PotSwV3 = -10 / d3
			ic.PotSwV4 = 15 / (d3 * d)
			ic.PotSwV5 = -6 / (d3 * d * d)
			ic.PotSwF2 = -30 / d3
			ic.PotSwF3 = 60 / (d3 * d)
			ic.PotSwF4 = -30 / (d3 * d * d)
		}
	default:
		return nil, fmt.Errorf("Unknown VdW modifier %d.", int(setup.Vdw))
	}

	return ic, nil
}

// forceSwitchConstants computes the switch polynomial for one r^-p term.
// The polynomial is the standard cubic force switch: the force picks up
// A*rsw^2 + B*rsw^3 beyond the switch radius, with A and B chosen so force
// and its derivative vanish at the cutoff, and the potential picks up the
// matching integral plus a constant that zeroes it at the cutoff.
func forceSwitchConstants[T mathx.Real](p int, rs, rc T) SwitchConstants[T] {
	pf := T(p)
	d := rc - rs
	a := -pf * ((pf+4)*rc - (pf+1)*rs) / (powInt(rc, p+2) * d * d)
	b := pf * ((pf+3)*rc - (pf+1)*rs) / (powInt(rc, p+2) * d * d * d)
	g := -powInt(1/rc, p) - a/3*d*d*d - b/4*d*d*d*d

	// Scaled by 1/p so the loops can multiply by the prescaled p*Cp
	// coefficients from the parameter table.
	return SwitchConstants[T]{
		F2: a / pf, F3: b / pf,
		V3: a / (3 * pf), V4: b / (4 * pf), VC: g / pf,
	}
}

// powInt returns x^n for small positive n.
func powInt[T mathx.Real](x T, n int) T {
	r := T(1)
	for i := 0; i < n; i++ {
		r *= x
	}
	return r
}
