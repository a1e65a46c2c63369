package snapio

/* Result dumps. The arrays are written through a zstd stream: forces are
smooth and repetitive enough that the dumps shrink by a sizable factor, and
decompression is far faster than the evaluation that produced them. Dumps
are always little-endian; unlike snapshots they are produced and consumed
by this module alone. */

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/DataDog/zstd"
)

// Dump holds the results of one evaluation. VVdw and VCoul have one element
// per ordered energy-group pair, or a single element when group energies
// were not accumulated.
type Dump struct {
	VVdw, VCoul []float64
	F           [][3]float64
}

type dumpHeader struct {
	Magic, Version uint32
	NumAtoms       int64
	NumEnergies    int64
}

// WriteDump writes a compressed result dump.
func WriteDump(fileName string, d *Dump) error {
	if len(d.VVdw) != len(d.VCoul) {
		return fmt.Errorf(
			"The dump has %d VdW energies but %d Coulomb energies.",
			len(d.VVdw), len(d.VCoul),
		)
	}

	f, err := os.Create(fileName)
	if err != nil {
		return fmt.Errorf("The dump '%s' cannot be created: %w", fileName, err)
	}
	defer f.Close()

	w := zstd.NewWriter(f)
	hd := dumpHeader{
		Magic: MagicNumber, Version: Version,
		NumAtoms: int64(len(d.F)), NumEnergies: int64(len(d.VVdw)),
	}
	blocks := []interface{}{hd, d.VVdw, d.VCoul, d.F}
	for _, block := range blocks {
		if err := binary.Write(w, binary.LittleEndian, block); err != nil {
			w.Close()
			return fmt.Errorf(
				"The dump '%s' could not be written: %w", fileName, err,
			)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("The dump '%s' could not be written: %w", fileName, err)
	}
	return nil
}

// ReadDump reads a compressed result dump.
func ReadDump(fileName string) (*Dump, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, fmt.Errorf(
			"The dump '%s' does not exist or cannot be accessed.", fileName,
		)
	}
	defer f.Close()

	r := zstd.NewReader(f)
	defer r.Close()
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf(
			"The dump '%s' could not be decompressed: %w", fileName, err,
		)
	}
	br := bytes.NewReader(raw)

	hd := &dumpHeader{}
	if err := binary.Read(br, binary.LittleEndian, hd); err != nil {
		return nil, fmt.Errorf("The dump '%s' is truncated.", fileName)
	}
	if hd.Magic != MagicNumber {
		return nil, fmt.Errorf(
			"The file '%s' is not a dump: its first four bytes are 0x%08x, "+
				"not the magic number 0x%08x.", fileName, hd.Magic,
			uint32(MagicNumber),
		)
	}
	if hd.Version != Version {
		return nil, fmt.Errorf(
			"The dump '%s' has version %d, but this build reads version %d.",
			fileName, hd.Version, Version,
		)
	}
	if hd.NumAtoms < 0 || hd.NumEnergies < 0 {
		return nil, fmt.Errorf(
			"The dump '%s' claims %d atoms and %d energies.",
			fileName, hd.NumAtoms, hd.NumEnergies,
		)
	}

	d := &Dump{
		VVdw:  make([]float64, hd.NumEnergies),
		VCoul: make([]float64, hd.NumEnergies),
		F:     make([][3]float64, hd.NumAtoms),
	}
	blocks := []interface{}{d.VVdw, d.VCoul, d.F}
	for _, block := range blocks {
		if err := binary.Read(br, binary.LittleEndian, block); err != nil {
			return nil, fmt.Errorf("The dump '%s' is truncated.", fileName)
		}
	}
	return d, nil
}
