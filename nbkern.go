/*nbkern evaluates short-ranged nonbonded forces and energies over a system
snapshot, driven by a YAML config file.*/
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phil-mansfield/nbkern/lib/cluster"
	"github.com/phil-mansfield/nbkern/lib/config"
	nb_error "github.com/phil-mansfield/nbkern/lib/error"
	"github.com/phil-mansfield/nbkern/lib/kernel"
	"github.com/phil-mansfield/nbkern/lib/mathx"
	"github.com/phil-mansfield/nbkern/lib/sched"
	"github.com/phil-mansfield/nbkern/lib/snapio"
)

const version = "0.1.0"

func main() {
	root := &cobra.Command{
		Use:   "nbkern",
		Short: "Short-ranged nonbonded force and energy evaluation",
	}

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the nbkern version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("nbkern", version)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "check <config file>",
		Short: "Check a config file and its snapshot for errors",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			Check(args[0])
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "forces <config file>",
		Short: "Evaluate forces and energies over a snapshot",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			Forces(args[0])
		},
	})

	if err := root.Execute(); err != nil {
		nb_error.External("%s", err.Error())
	}
}

// Check runs nbkern's "check" mode, which tests for errors in the config
// file and the snapshot it points at without evaluating anything.
func Check(configFile string) {
	cfg, err := config.Load(configFile)
	if err != nil {
		nb_error.External("%s", err.Error())
	}
	if cfg.Snapshot == "" {
		nb_error.External(
			"The config file '%s' does not set the 'snapshot' field.",
			configFile,
		)
	}
	if _, err := snapio.ReadSystem(cfg.Snapshot); err != nil {
		nb_error.External("%s", err.Error())
	}
	// Constants catch cutoff/modifier combinations Validate can't see alone.
	if _, err := config.InteractionConst[float64](cfg); err != nil {
		nb_error.External("%s", err.Error())
	}
	fmt.Println("No errors detected.")
}

// Forces runs nbkern's "forces" mode: it loads the snapshot, evaluates the
// configured kernel over it, prints the energies, and writes a result dump
// if one was requested.
func Forces(configFile string) {
	cfg, err := config.Load(configFile)
	if err != nil {
		nb_error.External("%s", err.Error())
	}
	if cfg.Snapshot == "" {
		nb_error.External(
			"The config file '%s' does not set the 'snapshot' field.",
			configFile,
		)
	}
	sys, err := snapio.ReadSystem(cfg.Snapshot)
	if err != nil {
		nb_error.External("%s", err.Error())
	}

	var dump *snapio.Dump
	if cfg.Precision == "double" {
		dump, err = runForces[float64](cfg, sys)
	} else {
		dump, err = runForces[float32](cfg, sys)
	}
	if err != nil {
		nb_error.External("%s", err.Error())
	}

	fmt.Printf("V_vdw   = %16.8g kJ/mol\n", total(dump.VVdw))
	fmt.Printf("V_coul  = %16.8g kJ/mol\n", total(dump.VCoul))
	if cfg.Output != "" {
		if err := snapio.WriteDump(cfg.Output, dump); err != nil {
			nb_error.External("%s", err.Error())
		}
	}
}

// runForces is the precision-generic evaluation driver.
func runForces[T mathx.Real](
	cfg *config.Config, sys *snapio.System,
) (*snapio.Dump, error) {
	ad, excl, box, err := systemAtomData[T](cfg, sys)
	if err != nil {
		return nil, err
	}

	setup, err := cfg.KernelSetup()
	if err != nil {
		return nil, err
	}
	ic, err := config.InteractionConst[T](cfg)
	if err != nil {
		return nil, err
	}
	kern, err := kernel.New(setup, ic)
	if err != nil {
		return nil, err
	}

	list, err := cluster.NewSimpleList(ad, excl, box, ic.RCoulomb)
	if err != nil {
		return nil, err
	}
	workers, err := sched.NumWorkers(cfg.Threads)
	if err != nil {
		return nil, err
	}

	out := kernel.NewOutput(ad)
	sched.Run(kern, ad, list, workers, out)
	if setup.SkipExclusionForces {
		err = kernel.ExclusionCorrections(setup, ic, ad, excl, list.ShiftVecs, out)
		if err != nil {
			return nil, err
		}
	}

	dump := &snapio.Dump{
		VVdw:  make([]float64, len(out.VVdw)),
		VCoul: make([]float64, len(out.VCoul)),
		F:     make([][3]float64, ad.NumAtoms),
	}
	for i := range out.VVdw {
		dump.VVdw[i] = float64(out.VVdw[i])
		dump.VCoul[i] = float64(out.VCoul[i])
	}
	for a := 0; a < ad.NumAtoms; a++ {
		dump.F[a][0] = float64(out.F[3*a])
		dump.F[a][1] = float64(out.F[3*a+1])
		dump.F[a][2] = float64(out.F[3*a+2])
	}
	return dump, nil
}

// systemAtomData lays a snapshot out in the cluster format at precision T.
func systemAtomData[T mathx.Real](
	cfg *config.Config, sys *snapio.System,
) (*cluster.AtomData[T], cluster.Exclusions, [3]T, error) {
	rule := cluster.Geometric
	if sys.CombinationRule == 1 {
		rule = cluster.LorentzBerthelot
	}

	sigma := make([]T, len(sys.Sigma))
	epsilon := make([]T, len(sys.Epsilon))
	for i := range sigma {
		sigma[i] = T(sys.Sigma[i])
		epsilon[i] = T(sys.Epsilon[i])
	}
	params, err := cluster.NewLJTable(sigma, epsilon, rule)
	if err != nil {
		return nil, nil, [3]T{}, err
	}

	x := make([][3]T, len(sys.X))
	q := make([]T, len(sys.Q))
	for a := range x {
		x[a][0], x[a][1], x[a][2] = T(sys.X[a][0]), T(sys.X[a][1]), T(sys.X[a][2])
		q[a] = T(sys.Q[a])
	}

	negp := cfg.EnergyGroups
	if negp < sys.NumEnergyGroups() {
		negp = sys.NumEnergyGroups()
	}
	ad, err := cluster.NewAtomData(x, sys.Type, q, sys.Group, negp, params)
	if err != nil {
		return nil, nil, [3]T{}, err
	}

	box := [3]T{T(sys.Box[0]), T(sys.Box[1]), T(sys.Box[2])}
	return ad, cluster.Exclusions(sys.Excl), box, nil
}

// total sums an energy accumulator across group pairs.
func total(v []float64) float64 {
	t := 0.0
	for _, x := range v {
		t += x
	}
	return t
}
