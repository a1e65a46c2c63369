package kernel

/* Coulomb strategies. Each strategy evaluates one pair given the scaled
charge product qq (already multiplied by the Coulomb prefactor), the squared
distance, 1/r, 1/r^2, and the interaction factor: 1 for a real pair, 0 for
an excluded pair whose long-range correction still has to be removed. evalF
returns the scalar force (F/r); evalFE also returns the potential.

The interaction factor enters exactly where the bare 1/r term appears, so an
excluded pair evaluates to minus its correction and nothing else. */

import "github.com/phil-mansfield/nbkern/lib/mathx"

type coulStrategy[T mathx.Real] interface {
	evalF(qq, rsq, rinv, rinvsq, interact T) T
	evalFE(qq, rsq, rinv, rinvsq, interact T) (fcoul, vcoul T)
}

// coulNone is the Lennard-Jones-only strategy.
type coulNone[T mathx.Real] struct{}

func (coulNone[T]) evalF(qq, rsq, rinv, rinvsq, interact T) T { return 0 }

func (coulNone[T]) evalFE(qq, rsq, rinv, rinvsq, interact T) (T, T) {
	return 0, 0
}

// coulRF is the reaction-field strategy. The crf shift is applied regardless
// of the interaction factor, matching the potential's defined form; it
// cancels pairwise when comparing against a kernel that skips exclusions.
type coulRF[T mathx.Real] struct {
	krf, krf2, crf T
}

func (c coulRF[T]) evalF(qq, rsq, rinv, rinvsq, interact T) T {
	return qq * (interact*rinv*rinvsq - c.krf2)
}

func (c coulRF[T]) evalFE(qq, rsq, rinv, rinvsq, interact T) (T, T) {
	fcoul := qq * (interact*rinv*rinvsq - c.krf2)
	vcoul := qq * (interact*rinv + c.krf*rsq - c.crf)
	return fcoul, vcoul
}

// coulTable is the tabulated Ewald strategy: the correction force is read
// by linear interpolation from the FDV0 table, and the correction potential
// is rebuilt from the potential sample and a trapezoid term so it stays the
// exact integral of the interpolated force.
type coulTable[T mathx.Real] struct {
	scale, halfsp T
	fdv0          []T
	shEwald       T
}

func (c coulTable[T]) evalF(qq, rsq, rinv, rinvsq, interact T) T {
	rs := rsq * rinv * c.scale
	ri := int32(rs)
	frac := rs - T(ri)
	fexcl := c.fdv0[ri*4] + frac*c.fdv0[ri*4+1]
	return qq * rinv * (interact*rinvsq - fexcl)
}

func (c coulTable[T]) evalFE(qq, rsq, rinv, rinvsq, interact T) (T, T) {
	rs := rsq * rinv * c.scale
	ri := int32(rs)
	frac := rs - T(ri)
	fexcl := c.fdv0[ri*4] + frac*c.fdv0[ri*4+1]
	fcoul := qq * rinv * (interact*rinvsq - fexcl)
	vexcl := c.fdv0[ri*4+2] - c.halfsp*frac*(c.fdv0[ri*4]+fexcl)
	vcoul := qq * (interact*(rinv-c.shEwald) - vexcl)
	return fcoul, vcoul
}

// coulEwald is the analytic Ewald strategy, evaluating erf and exp per pair
// instead of reading a table.
type coulEwald[T mathx.Real] struct {
	beta, twoBetaOverSqrtPi, shEwald T
}

func (c coulEwald[T]) evalF(qq, rsq, rinv, rinvsq, interact T) T {
	r := rsq * rinv
	brsq := c.beta * c.beta * rsq
	pot := mathx.Erf(c.beta*r) * rinv
	fexcl := (pot - c.twoBetaOverSqrtPi*mathx.Exp(-brsq)) * rinv
	return qq * rinv * (interact*rinvsq - fexcl)
}

func (c coulEwald[T]) evalFE(qq, rsq, rinv, rinvsq, interact T) (T, T) {
	r := rsq * rinv
	brsq := c.beta * c.beta * rsq
	pot := mathx.Erf(c.beta*r) * rinv
	fexcl := (pot - c.twoBetaOverSqrtPi*mathx.Exp(-brsq)) * rinv
	fcoul := qq * rinv * (interact*rinvsq - fexcl)
	vcoul := qq * (interact*(rinv-c.shEwald) - pot)
	return fcoul, vcoul
}
