package kernel

import (
	"math"
	"testing"

	"github.com/phil-mansfield/nbkern/lib/cluster"
	"github.com/phil-mansfield/nbkern/lib/eq"
	"github.com/phil-mansfield/nbkern/lib/table"
)

/* Most tests run over a 3x3x3 grid of rigid three-site water molecules in a
periodic box, since that system exercises every code path at once: charged
and Lennard-Jones sites, intramolecular exclusions, periodic images, and
cluster padding (81 atoms is not a multiple of the cluster size). Expected
values come from either closed forms on two-atom systems or a brute-force
double loop over atom pairs. */

const (
	sigmaO, epsO = 0.316557, 0.650194
	sigmaH, epsH = 0.04, 0.192464
	chargeO      = -0.8476
	chargeH      = 0.4238

	waterBoxL = 1.86
	waterRCut = 0.9
)

// waterSystem builds the test box. negp < 2 disables energy groups;
// otherwise molecules get round-robin group tags.
func waterSystem(
	t testing.TB, negp int,
) (*cluster.AtomData[float64], cluster.Exclusions, [3]float64) {
	t.Helper()

	params, err := cluster.NewLJTable(
		[]float64{sigmaO, sigmaH}, []float64{epsO, epsH}, cluster.Geometric,
	)
	if err != nil {
		t.Fatalf("Could not build the LJ table: %s", err.Error())
	}

	x := [][3]float64{}
	types := []int32{}
	q := []float64{}
	groups := []int32{}
	excl := cluster.Exclusions{}

	spacing := waterBoxL / 3
	mol := 0
	for ix := 0; ix < 3; ix++ {
		for iy := 0; iy < 3; iy++ {
			for iz := 0; iz < 3; iz++ {
				ox := spacing * (0.5 + float64(ix))
				oy := spacing * (0.5 + float64(iy))
				oz := spacing * (0.5 + float64(iz))

				a0 := int32(len(x))
				x = append(x,
					[3]float64{ox, oy, oz},
					[3]float64{ox + 0.1, oy, oz},
					[3]float64{ox - 0.033, oy + 0.094, oz},
				)
				types = append(types, 0, 1, 1)
				q = append(q, chargeO, chargeH, chargeH)
				g := int32(mol % 3)
				groups = append(groups, g, g, g)
				for k := int32(0); k < 3; k++ {
					excl = append(excl, []int32{a0, a0 + 1, a0 + 2})
				}
				mol++
			}
		}
	}

	var tags []int32
	if negp >= 2 {
		tags = groups
	}
	ad, err := cluster.NewAtomData(x, types, q, tags, negp, params)
	if err != nil {
		t.Fatalf("Could not build atom data: %s", err.Error())
	}
	return ad, excl, [3]float64{waterBoxL, waterBoxL, waterBoxL}
}

func waterList(
	t testing.TB, ad *cluster.AtomData[float64], excl cluster.Exclusions,
	box [3]float64,
) *cluster.PairList[float64] {
	t.Helper()
	list, err := cluster.NewSimpleList(ad, excl, box, waterRCut)
	if err != nil {
		t.Fatalf("Could not build the pair list: %s", err.Error())
	}
	return list
}

func runKernel(
	t testing.TB, setup Setup, p Params[float64],
	ad *cluster.AtomData[float64], excl cluster.Exclusions, box [3]float64,
) *Output[float64] {
	t.Helper()

	ic, err := NewInteractionConst(setup, p)
	if err != nil {
		t.Fatalf("Could not build interaction constants: %s", err.Error())
	}
	kern, err := New(setup, ic)
	if err != nil {
		t.Fatalf("Could not build the kernel: %s", err.Error())
	}

	list := waterList(t, ad, excl, box)
	out := NewOutput(ad)
	kern(ad, list, out)
	if setup.SkipExclusionForces {
		err = ExclusionCorrections(setup, ic, ad, excl, list.ShiftVecs, out)
		if err != nil {
			t.Fatalf("Could not apply exclusion corrections: %s", err.Error())
		}
	}
	return out
}

// bruteForceRF evaluates the reaction-field + potential-shift system with a
// direct minimum-image double loop over atom pairs.
func bruteForceRF(
	ad *cluster.AtomData[float64], excl cluster.Exclusions, box [3]float64,
	ic *InteractionConst[float64],
) (f []float64, vVdw, vCoul float64) {
	sv := cluster.MakeShiftVecs(box)
	f = make([]float64, 3*ad.NumAtoms)
	rc6 := math.Pow(ic.RVdw, -6)

	for ai := 0; ai < ad.NumAtoms; ai++ {
		for aj := ai + 1; aj < ad.NumAtoms; aj++ {
			dx, dy, dz := 0.0, 0.0, 0.0
			rsq := math.Inf(1)
			for s := 0; s < cluster.NumShifts; s++ {
				sx := ad.X[3*ai] + sv[3*s] - ad.X[3*aj]
				sy := ad.X[3*ai+1] + sv[3*s+1] - ad.X[3*aj+1]
				sz := ad.X[3*ai+2] + sv[3*s+2] - ad.X[3*aj+2]
				if srsq := sx*sx + sy*sy + sz*sz; srsq < rsq {
					dx, dy, dz, rsq = sx, sy, sz, srsq
				}
			}
			if rsq >= ic.RCoulomb2 || rsq < minDistanceSq {
				continue
			}

			qq := ic.Epsfac * ad.Q[ai] * ad.Q[aj]
			rinv := 1 / math.Sqrt(rsq)
			rinvsq := rinv * rinv
			excluded := excl.Excluded(ai, aj)

			var fscal float64
			if excluded {
				fscal = -qq * ic.KRF2
				vCoul += qq * (ic.KRF*rsq - ic.CRF)
			} else {
				c6, c12 := ad.Params.C6C12(int(ad.Type[ai]), int(ad.Type[aj]))
				rinv6 := rinvsq * rinvsq * rinvsq
				frLJ := 12*c12*rinv6*rinv6 - 6*c6*rinv6
				vVdw += c12*(rinv6*rinv6-rc6*rc6) - c6*(rinv6-rc6)
				fscal = frLJ*rinvsq + qq*(rinv*rinvsq-ic.KRF2)
				vCoul += qq * (rinv + ic.KRF*rsq - ic.CRF)
			}

			f[3*ai] += fscal * dx
			f[3*ai+1] += fscal * dy
			f[3*ai+2] += fscal * dz
			f[3*aj] -= fscal * dx
			f[3*aj+1] -= fscal * dy
			f[3*aj+2] -= fscal * dz
		}
	}
	return f, vVdw, vCoul
}

func TestReactionFieldMatchesBruteForce(t *testing.T) {
	ad, excl, box := waterSystem(t, 0)
	setup := Setup{Coulomb: CoulombReactionField, Vdw: VdwPotShift, Energy: Energies}
	p := Params[float64]{RCoulomb: waterRCut}

	out := runKernel(t, setup, p, ad, excl, box)
	ic, err := NewInteractionConst(setup, p)
	if err != nil {
		t.Fatalf("Could not build interaction constants: %s", err.Error())
	}
	f, vVdw, vCoul := bruteForceRF(ad, excl, box, ic)

	if !closeRel(out.VVdw[0], vVdw, 1e-9) {
		t.Errorf("Expected V_vdw = %g, got %g.", vVdw, out.VVdw[0])
	}
	if !closeRel(out.VCoul[0], vCoul, 1e-9) {
		t.Errorf("Expected V_coul = %g, got %g.", vCoul, out.VCoul[0])
	}
	if !forcesClose(out.F[:3*ad.NumAtoms], f, 1e-10) {
		t.Errorf("The kernel forces do not match the brute-force reference.")
	}
}

func TestNewtonThirdLaw(t *testing.T) {
	ad, excl, box := waterSystem(t, 0)
	tests := []Setup{
		{Coulomb: CoulombNone, Vdw: VdwPotShift},
		{Coulomb: CoulombReactionField, Vdw: VdwPotShift},
		{Coulomb: CoulombEwald, Vdw: VdwForceSwitch},
		{Coulomb: CoulombEwald, Vdw: VdwPotSwitch, Energy: Energies},
		{Coulomb: CoulombTable, Vdw: VdwPotShift, Energy: Energies},
	}

	for i := range tests {
		p := Params[float64]{RCoulomb: waterRCut, RVdwSwitch: 0.6}
		if tests[i].Coulomb == CoulombEwald || tests[i].Coulomb == CoulombTable {
			p.EwaldBeta = ewaldBeta(t)
			p.Table = ewaldTable(t, p.EwaldBeta)
		}
		out := runKernel(t, tests[i], p, ad, excl, box)

		var sx, sy, sz, scale float64
		for a := 0; a < ad.PaddedLen(); a++ {
			sx += out.F[3*a]
			sy += out.F[3*a+1]
			sz += out.F[3*a+2]
			scale += math.Abs(out.F[3*a])
		}
		if math.Abs(sx)+math.Abs(sy)+math.Abs(sz) > 1e-9*(1+scale) {
			t.Errorf("%d) Forces sum to (%g, %g, %g) rather than zero.",
				i, sx, sy, sz)
		}
	}
}

func ewaldBeta(t *testing.T) float64 {
	t.Helper()
	beta, err := table.EwaldBeta(waterRCut, 1e-5)
	if err != nil {
		t.Fatalf("Could not solve for beta: %s", err.Error())
	}
	return beta
}

func ewaldTable(t *testing.T, beta float64) *table.FDV0[float64] {
	t.Helper()
	scale := 2000.0
	tab, err := table.NewEwaldFDV0(beta, scale, int(waterRCut*scale)+3)
	if err != nil {
		t.Fatalf("Could not build the Ewald table: %s", err.Error())
	}
	return tab
}

// TestSkipExclusionForces checks that a kernel that skips excluded pairs,
// plus the standalone corrections, matches a kernel that evaluates the
// corrections in its pair loop.
func TestSkipExclusionForces(t *testing.T) {
	ad, excl, box := waterSystem(t, 0)
	kinds := []CoulombKind{CoulombReactionField, CoulombEwald}

	for i, kind := range kinds {
		p := Params[float64]{RCoulomb: waterRCut}
		if kind == CoulombEwald {
			p.EwaldBeta = ewaldBeta(t)
		}
		inline := Setup{Coulomb: kind, Vdw: VdwPotShift, Energy: Energies}
		skip := inline
		skip.SkipExclusionForces = true

		a := runKernel(t, inline, p, ad, excl, box)
		b := runKernel(t, skip, p, ad, excl, box)

		if !closeRel(a.VCoul[0], b.VCoul[0], 1e-9) {
			t.Errorf("%d) Expected V_coul = %g, got %g.", i, a.VCoul[0], b.VCoul[0])
		}
		if !closeRel(a.VVdw[0], b.VVdw[0], 1e-9) {
			t.Errorf("%d) Expected V_vdw = %g, got %g.", i, a.VVdw[0], b.VVdw[0])
		}
		if !forcesClose(a.F, b.F, 1e-10) {
			t.Errorf("%d) The two exclusion strategies disagree on forces.", i)
		}
	}
}

func TestGroupEnergiesMatchTotals(t *testing.T) {
	adPlain, excl, box := waterSystem(t, 0)
	adGroups, _, _ := waterSystem(t, 3)

	p := Params[float64]{RCoulomb: waterRCut}
	totals := runKernel(t,
		Setup{Coulomb: CoulombReactionField, Vdw: VdwPotShift, Energy: Energies},
		p, adPlain, excl, box)
	grouped := runKernel(t,
		Setup{Coulomb: CoulombReactionField, Vdw: VdwPotShift, Energy: GroupEnergies},
		p, adGroups, excl, box)

	if len(grouped.VVdw) != 9 {
		t.Fatalf("Expected 9 group-pair accumulators, got %d.", len(grouped.VVdw))
	}
	if !closeRel(grouped.VVdwTotal(), totals.VVdw[0], 1e-12) {
		t.Errorf("Expected summed group V_vdw = %g, got %g.",
			totals.VVdw[0], grouped.VVdwTotal())
	}
	if !closeRel(grouped.VCoulTotal(), totals.VCoul[0], 1e-12) {
		t.Errorf("Expected summed group V_coul = %g, got %g.",
			totals.VCoul[0], grouped.VCoulTotal())
	}
	if !eq.Reals(grouped.F, totals.F) {
		t.Errorf("Group accumulation changed the forces.")
	}

	// Cross-group energies must be symmetric under group exchange, since
	// both orderings see the same pairs from opposite sides.
	for gi := 0; gi < 3; gi++ {
		for gj := gi + 1; gj < 3; gj++ {
			sum0 := grouped.VCoul[gi*3+gj] + grouped.VCoul[gj*3+gi]
			if sum0 == 0 && totals.VCoul[0] != 0 {
				t.Errorf("Group pair (%d, %d) accumulated no Coulomb energy.",
					gi, gj)
			}
		}
	}
}

func TestTableMatchesAnalyticEwald(t *testing.T) {
	ad, excl, box := waterSystem(t, 0)
	beta := ewaldBeta(t)
	p := Params[float64]{RCoulomb: waterRCut, EwaldBeta: beta}
	pTab := p
	pTab.Table = ewaldTable(t, beta)

	analytic := runKernel(t,
		Setup{Coulomb: CoulombEwald, Vdw: VdwPotShift, Energy: Energies},
		p, ad, excl, box)
	tabulated := runKernel(t,
		Setup{Coulomb: CoulombTable, Vdw: VdwPotShift, Energy: Energies},
		pTab, ad, excl, box)

	if !closeRel(analytic.VCoul[0], tabulated.VCoul[0], 1e-5) {
		t.Errorf("Expected V_coul = %g from the table, got %g.",
			analytic.VCoul[0], tabulated.VCoul[0])
	}
	if !forcesClose(analytic.F, tabulated.F, 1e-5) {
		t.Errorf("Tabulated and analytic Ewald forces disagree.")
	}
}

// twoAtomSystem puts two charges without Lennard-Jones parameters at
// distance d along x in a large box.
func twoAtomSystem(
	t *testing.T, d float64,
) (*cluster.AtomData[float64], cluster.Exclusions, [3]float64) {
	t.Helper()
	params, err := cluster.NewLJTable(
		[]float64{sigmaO, sigmaO}, []float64{epsO, 0}, cluster.Geometric,
	)
	if err != nil {
		t.Fatalf("Could not build the LJ table: %s", err.Error())
	}
	x := [][3]float64{{1, 1, 1}, {1 + d, 1, 1}}
	ad, err := cluster.NewAtomData(
		x, []int32{1, 1}, []float64{1, -1}, nil, 0, params,
	)
	if err != nil {
		t.Fatalf("Could not build atom data: %s", err.Error())
	}
	return ad, cluster.Exclusions{nil, nil}, [3]float64{4, 4, 4}
}

func TestReactionFieldSinglePair(t *testing.T) {
	d := 0.5
	ad, excl, box := twoAtomSystem(t, d)
	setup := Setup{Coulomb: CoulombReactionField, Vdw: VdwPotShift, Energy: Energies}
	p := Params[float64]{RCoulomb: waterRCut}
	out := runKernel(t, setup, p, ad, excl, box)

	rc := waterRCut
	krf := 1 / (2 * rc * rc * rc)
	crf := 1/rc + krf*rc*rc
	qq := -DefaultEpsfac
	wantV := qq * (1/d + krf*d*d - crf)
	wantF := qq * (1/(d*d) - 2*krf*d)

	if !closeRel(out.VCoul[0], wantV, 1e-12) {
		t.Errorf("Expected V_coul = %g, got %g.", wantV, out.VCoul[0])
	}
	// Atom 0 sits at lower x and the charges attract, so its force points
	// in +x with magnitude |wantF|.
	if !closeRel(out.F[0], -wantF, 1e-12) {
		t.Errorf("Expected F_x = %g on atom 0, got %g.", -wantF, out.F[0])
	}
	if out.VVdw[0] != 0 {
		t.Errorf("Expected zero V_vdw for atoms without LJ, got %g.", out.VVdw[0])
	}
}

func TestEwaldSinglePair(t *testing.T) {
	d := 0.5
	ad, excl, box := twoAtomSystem(t, d)
	beta := ewaldBeta(t)
	setup := Setup{Coulomb: CoulombEwald, Vdw: VdwPotShift, Energy: Energies}
	p := Params[float64]{RCoulomb: waterRCut, EwaldBeta: beta}
	out := runKernel(t, setup, p, ad, excl, box)

	qq := -DefaultEpsfac
	shEwald := math.Erfc(beta*waterRCut) / waterRCut
	wantV := qq * (math.Erfc(beta*d)/d - shEwald)

	if !closeRel(out.VCoul[0], wantV, 1e-12) {
		t.Errorf("Expected V_coul = %g, got %g.", wantV, out.VCoul[0])
	}
}

// TestHalfLJ checks that restricting Lennard-Jones to the first half of each
// i-cluster is exact when the second half has no LJ parameters anyway.
func TestHalfLJ(t *testing.T) {
	params, err := cluster.NewLJTable(
		[]float64{sigmaO, sigmaO}, []float64{epsO, 0}, cluster.Geometric,
	)
	if err != nil {
		t.Fatalf("Could not build the LJ table: %s", err.Error())
	}

	// Two clusters; slots 0 and 1 of each have LJ, slots 2 and 3 don't.
	x := [][3]float64{}
	types := []int32{}
	q := []float64{}
	for c := 0; c < 2; c++ {
		for s := 0; s < 4; s++ {
			x = append(x, [3]float64{
				1 + 0.3*float64(c), 1 + 0.21*float64(s), 1,
			})
			if s < 2 {
				types = append(types, 0)
			} else {
				types = append(types, 1)
			}
			q = append(q, 0.1*float64(1+s)*float64(1-2*c))
		}
	}
	ad, err := cluster.NewAtomData(x, types, q, nil, 0, params)
	if err != nil {
		t.Fatalf("Could not build atom data: %s", err.Error())
	}
	excl := make(cluster.Exclusions, 8)
	box := [3]float64{4, 4, 4}

	p := Params[float64]{RCoulomb: waterRCut}
	full := Setup{Coulomb: CoulombReactionField, Vdw: VdwPotShift, Energy: Energies}
	half := full
	half.HalfLJ = true

	a := runKernel(t, full, p, ad, excl, box)
	b := runKernel(t, half, p, ad, excl, box)

	if a.VVdw[0] != b.VVdw[0] || a.VCoul[0] != b.VCoul[0] {
		t.Errorf("Expected energies (%g, %g), got (%g, %g).",
			a.VVdw[0], a.VCoul[0], b.VVdw[0], b.VCoul[0])
	}
	if !eq.Reals(a.F, b.F) {
		t.Errorf("The half-LJ kernel changed the forces.")
	}
	if a.VVdw[0] == 0 {
		t.Errorf("The test system has no VdW energy, so it checks nothing.")
	}
}

func TestTwinRangeVdwCutoff(t *testing.T) {
	ad, excl, box := waterSystem(t, 0)

	twin := runKernel(t,
		Setup{Coulomb: CoulombReactionField, Vdw: VdwPotShift, Energy: Energies},
		Params[float64]{RCoulomb: waterRCut, RVdw: 0.7}, ad, excl, box)

	// A Lennard-Jones-only run with its cutoff at rvdw sees the same pairs
	// contribute, so the VdW energies must agree.
	ljOnly := func() *Output[float64] {
		setup := Setup{Coulomb: CoulombNone, Vdw: VdwPotShift, Energy: Energies}
		ic, err := NewInteractionConst(setup, Params[float64]{RCoulomb: 0.7})
		if err != nil {
			t.Fatalf("Could not build interaction constants: %s", err.Error())
		}
		kern, err := New(setup, ic)
		if err != nil {
			t.Fatalf("Could not build the kernel: %s", err.Error())
		}
		list, err := cluster.NewSimpleList(ad, excl, box, 0.7)
		if err != nil {
			t.Fatalf("Could not build the pair list: %s", err.Error())
		}
		out := NewOutput(ad)
		kern(ad, list, out)
		return out
	}()

	if !closeRel(twin.VVdw[0], ljOnly.VVdw[0], 1e-9) {
		t.Errorf("Expected V_vdw = %g inside the twin-range cutoff, got %g.",
			ljOnly.VVdw[0], twin.VVdw[0])
	}
}

// TestSwitchModifiersVanishAtCutoff puts a single Lennard-Jones pair just
// inside the cutoff, where both switch modifiers must have driven their
// switched quantity to nearly zero.
func TestSwitchModifiersVanishAtCutoff(t *testing.T) {
	params, err := cluster.NewLJTable(
		[]float64{sigmaO}, []float64{epsO}, cluster.Geometric,
	)
	if err != nil {
		t.Fatalf("Could not build the LJ table: %s", err.Error())
	}
	d := waterRCut - 1e-5
	x := [][3]float64{{1, 1, 1}, {1 + d, 1, 1}}
	ad, err := cluster.NewAtomData(
		x, []int32{0, 0}, []float64{0, 0}, nil, 0, params,
	)
	if err != nil {
		t.Fatalf("Could not build atom data: %s", err.Error())
	}
	excl := cluster.Exclusions{nil, nil}
	box := [3]float64{4, 4, 4}
	p := Params[float64]{RCoulomb: waterRCut, RVdwSwitch: 0.6}

	fswitch := runKernel(t,
		Setup{Coulomb: CoulombNone, Vdw: VdwForceSwitch, Energy: Energies},
		p, ad, excl, box)
	pswitch := runKernel(t,
		Setup{Coulomb: CoulombNone, Vdw: VdwPotSwitch, Energy: Energies},
		p, ad, excl, box)

	// Reference scale: the unswitched pair well inside the cutoff.
	c6, c12 := params.C6C12(0, 0)
	ref := math.Abs(12*c12*math.Pow(d, -13) - 6*c6*math.Pow(d, -7))

	if math.Abs(fswitch.F[0]) > 1e-6*ref {
		t.Errorf("Force-switch force at the cutoff is %g, expected ~0.",
			fswitch.F[0])
	}
	if math.Abs(fswitch.VVdw[0]) > 1e-9 {
		t.Errorf("Force-switch potential at the cutoff is %g, expected ~0.",
			fswitch.VVdw[0])
	}
	if math.Abs(pswitch.VVdw[0]) > 1e-9 {
		t.Errorf("Potential-switch potential at the cutoff is %g, "+
			"expected ~0.", pswitch.VVdw[0])
	}
	if math.Abs(pswitch.F[0]) > 1e-6*ref {
		t.Errorf("Potential-switch force at the cutoff is %g, expected ~0.",
			pswitch.F[0])
	}
}

func TestUnsupportedSetups(t *testing.T) {
	p := Params[float64]{RCoulomb: waterRCut}

	setup := Setup{Coulomb: CoulombNone, Vdw: VdwLJEwald}
	if ic, err := NewInteractionConst(setup, p); err == nil {
		if _, err := New(setup, ic); err == nil {
			t.Errorf("Expected an error for the LJ-Ewald modifier.")
		}
	}

	bad := []struct {
		setup Setup
		p     Params[float64]
	}{
		// Table kernel without a table.
		{Setup{Coulomb: CoulombTable}, Params[float64]{RCoulomb: 0.9, EwaldBeta: 3}},
		// Ewald without beta.
		{Setup{Coulomb: CoulombEwald}, Params[float64]{RCoulomb: 0.9}},
		// Non-positive cutoff.
		{Setup{Coulomb: CoulombNone}, Params[float64]{RCoulomb: 0}},
		// VdW cutoff beyond the electrostatic cutoff.
		{Setup{Coulomb: CoulombNone}, Params[float64]{RCoulomb: 0.9, RVdw: 1.0}},
		// Switch radius outside (0, rvdw).
		{Setup{Coulomb: CoulombNone, Vdw: VdwForceSwitch},
			Params[float64]{RCoulomb: 0.9, RVdwSwitch: 0.9}},
	}
	for i := range bad {
		if _, err := NewInteractionConst(bad[i].setup, bad[i].p); err == nil {
			t.Errorf("%d) Expected a setup error, got none.", i)
		}
	}
}

func TestExclusionCorrectionsWithoutCoulomb(t *testing.T) {
	ad, excl, box := waterSystem(t, 0)
	setup := Setup{Coulomb: CoulombNone, Vdw: VdwPotShift}
	ic, err := NewInteractionConst(setup, Params[float64]{RCoulomb: waterRCut})
	if err != nil {
		t.Fatalf("Could not build interaction constants: %s", err.Error())
	}

	out := NewOutput(ad)
	sv := cluster.MakeShiftVecs(box)
	if err := ExclusionCorrections(setup, ic, ad, excl, sv, out); err != nil {
		t.Fatalf("Got error: %s", err.Error())
	}
	for i := range out.F {
		if out.F[i] != 0 {
			t.Fatalf("Expected no corrections without electrostatics.")
		}
	}
}

func TestFloat32Kernel(t *testing.T) {
	params, err := cluster.NewLJTable(
		[]float32{sigmaO, sigmaH}, []float32{epsO, epsH}, cluster.Geometric,
	)
	if err != nil {
		t.Fatalf("Could not build the LJ table: %s", err.Error())
	}
	x := [][3]float32{
		{0.5, 0.5, 0.5}, {0.6, 0.5, 0.5}, {0.5, 0.6, 0.5},
		{1.1, 0.5, 0.5}, {1.2, 0.5, 0.5}, {1.1, 0.6, 0.5},
	}
	types := []int32{0, 1, 1, 0, 1, 1}
	q := []float32{chargeO, chargeH, chargeH, chargeO, chargeH, chargeH}
	ad, err := cluster.NewAtomData(x, types, q, nil, 0, params)
	if err != nil {
		t.Fatalf("Could not build atom data: %s", err.Error())
	}
	excl := cluster.Exclusions{{0, 1, 2}, {0, 1, 2}, {0, 1, 2},
		{3, 4, 5}, {3, 4, 5}, {3, 4, 5}}
	box := [3]float32{1.86, 1.86, 1.86}

	setup := Setup{Coulomb: CoulombReactionField, Vdw: VdwPotShift, Energy: Energies}
	ic, err := NewInteractionConst(setup, Params[float32]{RCoulomb: waterRCut})
	if err != nil {
		t.Fatalf("Could not build interaction constants: %s", err.Error())
	}
	kern, err := New(setup, ic)
	if err != nil {
		t.Fatalf("Could not build the kernel: %s", err.Error())
	}
	list, err := cluster.NewSimpleList(ad, excl, box, waterRCut)
	if err != nil {
		t.Fatalf("Could not build the pair list: %s", err.Error())
	}

	out := NewOutput(ad)
	kern(ad, list, out)

	var sx, sy, sz float32
	for a := 0; a < ad.PaddedLen(); a++ {
		sx += out.F[3*a]
		sy += out.F[3*a+1]
		sz += out.F[3*a+2]
	}
	if abs32(sx)+abs32(sy)+abs32(sz) > 0.05 {
		t.Errorf("Forces sum to (%g, %g, %g) rather than zero.", sx, sy, sz)
	}
	if out.VCoul[0] == 0 {
		t.Errorf("Expected a nonzero Coulomb energy.")
	}
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

func closeRel(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol*(1+math.Abs(a)+math.Abs(b))
}

// forcesClose compares force arrays against the largest force magnitude, so
// components that happen to nearly cancel don't demand impossible relative
// precision.
func forcesClose(a, b []float64, tol float64) bool {
	if len(a) != len(b) {
		return false
	}
	scale := 1.0
	for i := range a {
		if math.Abs(a[i]) > scale {
			scale = math.Abs(a[i])
		}
	}
	for i := range a {
		if math.Abs(a[i]-b[i]) > tol*scale {
			return false
		}
	}
	return true
}
