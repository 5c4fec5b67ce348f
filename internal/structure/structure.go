// Package structure holds the minimal owned representation of a molecular
// structure that is handed to a geometry engine. Parsing of structure file
// formats is out of scope; callers assemble structures atom by atom.
package structure

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bmcnally/sasadiff/internal/sasa"
)

// Atom is a single atom record. ResNumber is the raw residue-number field
// and may carry a trailing insertion code ("42A").
type Atom struct {
	Name      string
	Residue   string
	ResNumber string
	Chain     byte
	X, Y, Z   float64
}

// Structure is an ordered collection of atoms under a name.
type Structure struct {
	name  string
	atoms []Atom
}

func New(name string) *Structure {
	if name == "" {
		name = "unnamed"
	}
	return &Structure{name: name}
}

// AddAtom validates and appends one atom. Validation applies the same rules
// as identity construction, so a structure that builds cleanly also converts
// cleanly into an owned tree later.
func (s *Structure) AddAtom(atomName, resName, resNumber string, chain byte, x, y, z float64) error {
	if strings.TrimSpace(atomName) == "" {
		return errors.New("empty atom name")
	}
	if strings.TrimSpace(resName) == "" {
		return errors.New("empty residue name")
	}
	if _, err := sasa.ChainUID(string(chain)); err != nil {
		return err
	}
	if _, _, err := sasa.ParseResidueField(resNumber); err != nil {
		return fmt.Errorf("atom %s: %w", atomName, err)
	}
	s.atoms = append(s.atoms, Atom{
		Name:      strings.TrimSpace(atomName),
		Residue:   strings.TrimSpace(resName),
		ResNumber: strings.TrimSpace(resNumber),
		Chain:     chain,
		X:         x, Y: y, Z: z,
	})
	return nil
}

func (s *Structure) Name() string { return s.name }

// Atoms returns the atoms in insertion order. The slice is shared; callers
// must not modify it.
func (s *Structure) Atoms() []Atom { return s.atoms }

func (s *Structure) AtomCount() int { return len(s.atoms) }

// Chains returns the distinct chain labels in first-seen order.
func (s *Structure) Chains() string {
	var b strings.Builder
	seen := make(map[byte]bool)
	for _, a := range s.atoms {
		if !seen[a.Chain] {
			seen[a.Chain] = true
			b.WriteByte(a.Chain)
		}
	}
	return b.String()
}
