/*package config loads and validates the YAML run configuration and turns it
into kernel setups and interaction constants. Validation is split the same
way the rest of the module splits errors: anything a user can fix by editing
the file is reported with the offending value and the accepted ones.*/
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/phil-mansfield/nbkern/lib/kernel"
	"github.com/phil-mansfield/nbkern/lib/mathx"
	"github.com/phil-mansfield/nbkern/lib/table"
)

// Config holds all run parameters.
type Config struct {
	// Precision is "single" or "double".
	Precision string `yaml:"precision"`

	// Coulomb is "none", "reaction-field", "ewald-table", or "ewald".
	Coulomb string `yaml:"coulomb"`
	// VdwModifier is "potential-shift", "force-switch", "potential-switch",
	// or "lj-ewald" (recognized but unsupported).
	VdwModifier string `yaml:"vdw_modifier"`

	// Cutoff is the electrostatic cutoff in nm.
	Cutoff float64 `yaml:"cutoff"`
	// VdwCutoff is the Lennard-Jones cutoff; 0 means equal to Cutoff.
	VdwCutoff float64 `yaml:"vdw_cutoff"`
	// VdwSwitch is where the switch modifiers start acting.
	VdwSwitch float64 `yaml:"vdw_switch"`

	// EpsilonRF is the reaction-field dielectric; 0 means conducting.
	EpsilonRF float64 `yaml:"epsilon_rf"`
	// EwaldRTol sets the Ewald splitting parameter through
	// erfc(beta*cutoff) = EwaldRTol.
	EwaldRTol float64 `yaml:"ewald_rtol"`
	// TableScale is the Coulomb table resolution in points per nm.
	TableScale float64 `yaml:"table_scale"`

	// EnergyGroups enables per-group-pair energy accumulation when > 1.
	EnergyGroups int `yaml:"energy_groups"`
	// Energies requests energy accumulation.
	Energies bool `yaml:"energies"`
	// HalfLJ restricts Lennard-Jones to the first half of each i-cluster.
	HalfLJ bool `yaml:"half_lj"`
	// SkipExclusionForces skips excluded pairs instead of evaluating their
	// electrostatic corrections in the pair loop.
	SkipExclusionForces bool `yaml:"skip_exclusion_forces"`

	// Threads is the worker count; -1 means one per CPU.
	Threads int `yaml:"threads"`

	// Snapshot is the input system file and Output the force dump target.
	Snapshot string `yaml:"snapshot"`
	Output   string `yaml:"output"`
}

// Default returns the configuration used when a field is not set.
func Default() *Config {
	return &Config{
		Precision:   "single",
		Coulomb:     "reaction-field",
		VdwModifier: "potential-shift",
		Cutoff:      1.0,
		EwaldRTol:   1e-5,
		TableScale:  1000,
		Threads:     -1,
	}
}

// Load reads a YAML configuration file over the defaults. Unknown fields are
// an error, since a misspelled field silently keeping its default is the
// least debuggable failure a config file can have.
func Load(fileName string) (*Config, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return nil, fmt.Errorf(
			"The config file '%s' could not be read: %w", fileName, err,
		)
	}

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf(
			"The config file '%s' could not be parsed: %w", fileName, err,
		)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field combination that Setup and constant
// construction would reject later, so errors point at the config file.
func (c *Config) Validate() error {
	if c.Precision != "single" && c.Precision != "double" {
		return fmt.Errorf(
			"The precision '%s' is not supported. The options are 'single' "+
				"and 'double'.", c.Precision,
		)
	}
	if _, err := c.CoulombKind(); err != nil {
		return err
	}
	if _, err := c.VdwKind(); err != nil {
		return err
	}
	if c.Cutoff <= 0 {
		return fmt.Errorf("The cutoff, %g, is not positive.", c.Cutoff)
	}
	if c.VdwCutoff < 0 || c.VdwCutoff > c.Cutoff {
		return fmt.Errorf(
			"The Lennard-Jones cutoff, %g, must lie in (0, %g], or be 0 to "+
				"match the electrostatic cutoff.", c.VdwCutoff, c.Cutoff,
		)
	}
	vdw, _ := c.VdwKind()
	if vdw == kernel.VdwForceSwitch || vdw == kernel.VdwPotSwitch {
		rvdw := c.VdwCutoff
		if rvdw == 0 {
			rvdw = c.Cutoff
		}
		if c.VdwSwitch <= 0 || c.VdwSwitch >= rvdw {
			return fmt.Errorf(
				"The switch radius, %g, must lie strictly between zero and "+
					"the Lennard-Jones cutoff, %g.", c.VdwSwitch, rvdw,
			)
		}
	}
	if c.EpsilonRF < 0 {
		return fmt.Errorf(
			"The reaction-field dielectric, %g, is negative.", c.EpsilonRF,
		)
	}
	if c.EwaldRTol <= 0 || c.EwaldRTol >= 1 {
		return fmt.Errorf(
			"The Ewald tolerance, %g, is not in (0, 1).", c.EwaldRTol,
		)
	}
	if c.TableScale <= 0 {
		return fmt.Errorf(
			"The table scale, %g, is not positive.", c.TableScale,
		)
	}
	if c.EnergyGroups < 0 || c.EnergyGroups > 256 {
		return fmt.Errorf(
			"%d energy groups were requested, but the group words only fit "+
				"0 to 256.", c.EnergyGroups,
		)
	}
	return nil
}

// CoulombKind maps the coulomb field onto its kernel enum.
func (c *Config) CoulombKind() (kernel.CoulombKind, error) {
	switch c.Coulomb {
	case "none":
		return kernel.CoulombNone, nil
	case "reaction-field":
		return kernel.CoulombReactionField, nil
	case "ewald-table":
		return kernel.CoulombTable, nil
	case "ewald":
		return kernel.CoulombEwald, nil
	}
	return 0, fmt.Errorf(
		"The Coulomb method '%s' is not supported. The options are 'none', "+
			"'reaction-field', 'ewald-table', and 'ewald'.", c.Coulomb,
	)
}

// VdwKind maps the vdw_modifier field onto its kernel enum.
func (c *Config) VdwKind() (kernel.VdwModifier, error) {
	switch c.VdwModifier {
	case "potential-shift":
		return kernel.VdwPotShift, nil
	case "force-switch":
		return kernel.VdwForceSwitch, nil
	case "potential-switch":
		return kernel.VdwPotSwitch, nil
	case "lj-ewald":
		return kernel.VdwLJEwald, nil
	}
	return 0, fmt.Errorf(
		"The VdW modifier '%s' is not supported. The options are "+
			"'potential-shift', 'force-switch', 'potential-switch', and "+
			"'lj-ewald'.", c.VdwModifier,
	)
}

// KernelSetup maps the configuration onto the kernel's discrete axes.
func (c *Config) KernelSetup() (kernel.Setup, error) {
	coulomb, err := c.CoulombKind()
	if err != nil {
		return kernel.Setup{}, err
	}
	vdw, err := c.VdwKind()
	if err != nil {
		return kernel.Setup{}, err
	}

	energy := kernel.NoEnergies
	if c.Energies {
		energy = kernel.Energies
		if c.EnergyGroups > 1 {
			energy = kernel.GroupEnergies
		}
	}

	return kernel.Setup{
		Coulomb: coulomb, Vdw: vdw, Energy: energy,
		HalfLJ:              c.HalfLJ,
		SkipExclusionForces: c.SkipExclusionForces,
	}, nil
}

// InteractionConst builds the loop constants of the configuration in the
// working precision T, generating the Ewald table when the setup needs one.
func InteractionConst[T mathx.Real](c *Config) (*kernel.InteractionConst[T], error) {
	setup, err := c.KernelSetup()
	if err != nil {
		return nil, err
	}

	p := kernel.Params[T]{
		RCoulomb:   T(c.Cutoff),
		RVdw:       T(c.VdwCutoff),
		RVdwSwitch: T(c.VdwSwitch),
		EpsilonRF:  T(c.EpsilonRF),
	}

	if setup.Coulomb == kernel.CoulombTable ||
		setup.Coulomb == kernel.CoulombEwald {
		beta, err := table.EwaldBeta(T(c.Cutoff), T(c.EwaldRTol))
		if err != nil {
			return nil, err
		}
		p.EwaldBeta = beta
		if setup.Coulomb == kernel.CoulombTable {
			numBins := int(T(c.Cutoff)*T(c.TableScale)) + 3
			p.Table, err = table.NewEwaldFDV0(beta, T(c.TableScale), numBins)
			if err != nil {
				return nil, err
			}
		}
	}

	return kernel.NewInteractionConst(setup, p)
}
