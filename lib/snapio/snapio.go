/*package snapio contains functions for reading and writing the module's
system snapshots and result dumps. A snapshot holds everything needed to
evaluate nonbonded interactions once: the box, per-type Lennard-Jones
parameters, per-atom positions, charges, types, group tags, and the
exclusion lists. Dumps hold the forces and energies of one evaluation and
are zstd-compressed, since force arrays compress well and runs can emit
many of them.*/
package snapio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
)

const (
	// MagicNumber is an arbitrary number at the start of all snapshot files
	// which should help identify when the code is run on something else by
	// accident.
	MagicNumber = 0x6e626b31
	// ReverseMagicNumber is the magic number if read on a machine with
	// flipped endianness.
	ReverseMagicNumber = 0x316b626e

	// Version is incremented whenever the file layout changes.
	Version = 1
)

// System is the on-disk description of one evaluation's inputs. Positions
// and box lengths are in nm, charges in e, epsilons in kJ/mol.
type System struct {
	Box [3]float64

	// Sigma and Epsilon hold one Lennard-Jones parameter pair per type.
	Sigma, Epsilon []float64
	// CombinationRule is 0 for geometric sigma combination and 1 for
	// Lorentz-Berthelot.
	CombinationRule int32

	X     [][3]float64
	Q     []float64
	Type  []int32
	Group []int32

	// Excl holds each atom's exclusion list.
	Excl [][]int32
}

type systemHeader struct {
	Magic, Version  uint32
	NumAtoms        int64
	NumTypes        int64
	CombinationRule int32
	NumEnergyGroups int32
	Box             [3]float64
}

// NumEnergyGroups returns one more than the largest group tag, or 1 when no
// tags are set.
func (s *System) NumEnergyGroups() int {
	n := 1
	for _, g := range s.Group {
		if int(g)+1 > n {
			n = int(g) + 1
		}
	}
	return n
}

// validate checks the internal consistency of a System, whether it came
// from a file or from the caller.
func (s *System) validate() error {
	n := len(s.X)
	if n == 0 {
		return fmt.Errorf("The system contains no atoms.")
	}
	if len(s.Q) != n || len(s.Type) != n || len(s.Group) != n ||
		len(s.Excl) != n {
		return fmt.Errorf(
			"The system has %d positions, but %d charges, %d types, %d "+
				"group tags, and %d exclusion lists.",
			n, len(s.Q), len(s.Type), len(s.Group), len(s.Excl),
		)
	}
	if len(s.Sigma) != len(s.Epsilon) || len(s.Sigma) == 0 {
		return fmt.Errorf(
			"The system has %d sigma values but %d epsilon values.",
			len(s.Sigma), len(s.Epsilon),
		)
	}
	for d := 0; d < 3; d++ {
		if s.Box[d] <= 0 {
			return fmt.Errorf(
				"The box edge along dimension %d is %g.", d, s.Box[d],
			)
		}
	}
	for a := 0; a < n; a++ {
		if s.Type[a] < 0 || int(s.Type[a]) >= len(s.Sigma) {
			return fmt.Errorf(
				"Atom %d has type %d, but the system only defines types "+
					"0 to %d.", a, s.Type[a], len(s.Sigma)-1,
			)
		}
		for _, k := range s.Excl[a] {
			if k < 0 || int(k) >= n {
				return fmt.Errorf(
					"Atom %d excludes atom %d, but the system only has %d "+
						"atoms.", a, k, n,
				)
			}
		}
	}
	return nil
}

// WriteSystem writes a snapshot with the given byte order.
func WriteSystem(fileName string, order binary.ByteOrder, s *System) error {
	if err := s.validate(); err != nil {
		return err
	}

	n := len(s.X)
	hd := systemHeader{
		Magic: MagicNumber, Version: Version,
		NumAtoms: int64(n), NumTypes: int64(len(s.Sigma)),
		CombinationRule: s.CombinationRule,
		NumEnergyGroups: int32(s.NumEnergyGroups()),
		Box:             s.Box,
	}

	buf := &bytes.Buffer{}
	exclCounts := make([]int32, n)
	flatExcl := []int32{}
	for a := range s.Excl {
		exclCounts[a] = int32(len(s.Excl[a]))
		flatExcl = append(flatExcl, s.Excl[a]...)
	}

	blocks := []interface{}{
		hd, s.Sigma, s.Epsilon, s.X, s.Q, s.Type, s.Group,
		exclCounts, int64(len(flatExcl)), flatExcl,
	}
	for _, block := range blocks {
		if err := binary.Write(buf, order, block); err != nil {
			return fmt.Errorf(
				"The snapshot '%s' could not be encoded: %w", fileName, err,
			)
		}
	}

	return os.WriteFile(fileName, buf.Bytes(), 0644)
}

// ReadSystem reads a snapshot, detecting its byte order from the magic
// number.
func ReadSystem(fileName string) (*System, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return nil, fmt.Errorf(
			"The snapshot '%s' does not exist or cannot be accessed.", fileName,
		)
	}
	r := bytes.NewReader(data)

	var order binary.ByteOrder = binary.LittleEndian
	var magic uint32
	if err := binary.Read(r, order, &magic); err != nil {
		return nil, fmt.Errorf("The snapshot '%s' is truncated.", fileName)
	}
	switch magic {
	case MagicNumber:
	case ReverseMagicNumber:
		order = binary.BigEndian
	default:
		return nil, fmt.Errorf(
			"The file '%s' is not a snapshot: its first four bytes are "+
				"0x%08x, not the magic number 0x%08x.", fileName,
			magic, uint32(MagicNumber),
		)
	}

	r = bytes.NewReader(data)
	hd := &systemHeader{}
	if err := binary.Read(r, order, hd); err != nil {
		return nil, fmt.Errorf("The snapshot '%s' is truncated.", fileName)
	}
	if hd.Version != Version {
		return nil, fmt.Errorf(
			"The snapshot '%s' has version %d, but this build reads "+
				"version %d.", fileName, hd.Version, Version,
		)
	}
	if hd.NumAtoms <= 0 || hd.NumTypes <= 0 {
		return nil, fmt.Errorf(
			"The snapshot '%s' claims %d atoms and %d types.",
			fileName, hd.NumAtoms, hd.NumTypes,
		)
	}

	n, nt := int(hd.NumAtoms), int(hd.NumTypes)
	s := &System{
		Box:             hd.Box,
		CombinationRule: hd.CombinationRule,
		Sigma:           make([]float64, nt),
		Epsilon:         make([]float64, nt),
		X:               make([][3]float64, n),
		Q:               make([]float64, n),
		Type:            make([]int32, n),
		Group:           make([]int32, n),
	}
	exclCounts := make([]int32, n)
	var flatLen int64

	blocks := []interface{}{
		s.Sigma, s.Epsilon, s.X, s.Q, s.Type, s.Group,
		exclCounts, &flatLen,
	}
	for _, block := range blocks {
		if err := binary.Read(r, order, block); err != nil {
			return nil, fmt.Errorf("The snapshot '%s' is truncated.", fileName)
		}
	}

	var total int64
	for _, c := range exclCounts {
		if c < 0 {
			return nil, fmt.Errorf(
				"The snapshot '%s' contains a negative exclusion count.",
				fileName,
			)
		}
		total += int64(c)
	}
	if total != flatLen {
		return nil, fmt.Errorf(
			"The snapshot '%s' claims %d total exclusions, but its "+
				"per-atom counts sum to %d.", fileName, flatLen, total,
		)
	}
	flatExcl := make([]int32, flatLen)
	if err := binary.Read(r, order, flatExcl); err != nil {
		return nil, fmt.Errorf("The snapshot '%s' is truncated.", fileName)
	}
	s.Excl = make([][]int32, n)
	off := 0
	for a := 0; a < n; a++ {
		s.Excl[a] = flatExcl[off : off+int(exclCounts[a])]
		off += int(exclCounts[a])
	}

	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("The snapshot '%s' is invalid: %w", fileName, err)
	}
	return s, nil
}
