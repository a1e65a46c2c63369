package kernel

/* Lennard-Jones cutoff-modifier strategies. Each strategy gets the
prescaled coefficients c6s = 6*C6 and c12s = 12*C12 straight from the
parameter table, rinvsix already multiplied by the interaction factor, and
the interaction factor itself for the terms that don't pass through rinvsix.
evalF returns F*r; evalFE also returns the potential. */

import "github.com/phil-mansfield/nbkern/lib/mathx"

type vdwStrategy[T mathx.Real] interface {
	evalF(c6s, c12s, rsq, rinv, rinvsix, interact T) T
	evalFE(c6s, c12s, rsq, rinv, rinvsix, interact T) (frLJ, vLJ T)
}

// vdwCut is plain truncation with the potential shifted to zero at the
// cutoff.
type vdwCut[T mathx.Real] struct {
	dispShift, repShift T
}

func (v vdwCut[T]) evalF(c6s, c12s, rsq, rinv, rinvsix, interact T) T {
	return c12s*rinvsix*rinvsix - c6s*rinvsix
}

func (v vdwCut[T]) evalFE(c6s, c12s, rsq, rinv, rinvsix, interact T) (T, T) {
	vvdw6 := c6s * rinvsix
	vvdw12 := c12s * rinvsix * rinvsix
	frLJ := vvdw12 - vvdw6
	vLJ := (vvdw12+interact*c12s*v.repShift)/12 -
		(vvdw6+interact*c6s*v.dispShift)/6
	return frLJ, vLJ
}

// vdwForceSwitch switches the force of each r^-p term to zero between rs and
// the cutoff with a cubic polynomial, and integrates the same polynomial
// into the potential.
type vdwForceSwitch[T mathx.Real] struct {
	rs        T
	disp, rep SwitchConstants[T]
}

func (v vdwForceSwitch[T]) evalF(c6s, c12s, rsq, rinv, rinvsix, interact T) T {
	frLJ := c12s*rinvsix*rinvsix - c6s*rinvsix
	r := rsq * rinv
	if rsw := r - v.rs; rsw > 0 {
		frLJ += interact * rsw * rsw * r *
			(c12s*(v.rep.F2+v.rep.F3*rsw) - c6s*(v.disp.F2+v.disp.F3*rsw))
	}
	return frLJ
}

func (v vdwForceSwitch[T]) evalFE(
	c6s, c12s, rsq, rinv, rinvsix, interact T,
) (T, T) {
	vvdw6 := c6s * rinvsix
	vvdw12 := c12s * rinvsix * rinvsix
	frLJ := vvdw12 - vvdw6
	vLJ := vvdw12/12 - vvdw6/6 +
		interact*(c12s*v.rep.VC-c6s*v.disp.VC)
	r := rsq * rinv
	if rsw := r - v.rs; rsw > 0 {
		rsw3 := rsw * rsw * rsw
		frLJ += interact * rsw * rsw * r *
			(c12s*(v.rep.F2+v.rep.F3*rsw) - c6s*(v.disp.F2+v.disp.F3*rsw))
		vLJ += interact * rsw3 *
			(c12s*(v.rep.V3+v.rep.V4*rsw) - c6s*(v.disp.V3+v.disp.V4*rsw))
	}
	return frLJ, vLJ
}

// vdwPotSwitch multiplies the unshifted potential by a fifth-order switching
// function between rs and the cutoff; the force picks up the product-rule
// term from the switching function's derivative.
type vdwPotSwitch[T mathx.Real] struct {
	rs         T
	v3, v4, v5 T
	f2, f3, f4 T
}

func (v vdwPotSwitch[T]) evalF(c6s, c12s, rsq, rinv, rinvsix, interact T) T {
	vvdw6 := c6s * rinvsix
	vvdw12 := c12s * rinvsix * rinvsix
	frLJ := vvdw12 - vvdw6
	r := rsq * rinv
	if rsw := r - v.rs; rsw > 0 {
		vLJ := vvdw12/12 - vvdw6/6
		sw := 1 + rsw*rsw*rsw*(v.v3+rsw*(v.v4+rsw*v.v5))
		dsw := rsw * rsw * (v.f2 + rsw*(v.f3+rsw*v.f4))
		frLJ = frLJ*sw - r*vLJ*dsw
	}
	return frLJ
}

func (v vdwPotSwitch[T]) evalFE(
	c6s, c12s, rsq, rinv, rinvsix, interact T,
) (T, T) {
	vvdw6 := c6s * rinvsix
	vvdw12 := c12s * rinvsix * rinvsix
	frLJ := vvdw12 - vvdw6
	vLJ := vvdw12/12 - vvdw6/6
	r := rsq * rinv
	if rsw := r - v.rs; rsw > 0 {
		sw := 1 + rsw*rsw*rsw*(v.v3+rsw*(v.v4+rsw*v.v5))
		dsw := rsw * rsw * (v.f2 + rsw*(v.f3+rsw*v.f4))
		frLJ = frLJ*sw - r*vLJ*dsw
		vLJ *= sw
	}
	return frLJ, vLJ
}
