package engine

import (
	"fmt"
	"math"

	"github.com/bmcnally/sasadiff/internal/sasa"
	"github.com/bmcnally/sasadiff/internal/structure"
)

// Stub is a deterministic, geometry-free Engine. It assigns each atom an
// area from a pluggable function (by default scaled from the atomic radius)
// and aggregates the values up the hierarchy, producing native trees with
// the same shape and traversal behavior as the real engine. It is NOT a
// solvent-accessibility model; it exists for tests and development mode.
type Stub struct {
	// AtomArea overrides the per-atom area assignment. Nil selects the
	// radius-derived default.
	AtomArea func(a structure.Atom) sasa.Area

	// Classifier is reported on the result node. Empty means "stub".
	Classifier string
}

var _ Engine = (*Stub)(nil)

func (e *Stub) classifier() string {
	if e.Classifier == "" {
		return "stub"
	}
	return e.Classifier
}

func (e *Stub) atomArea(a structure.Atom) sasa.Area {
	if e.AtomArea != nil {
		return e.AtomArea(a)
	}
	r := atomRadius(a.Name)
	return SplitArea(4*math.Pi*r*r, a.Name)
}

// Compute returns the flat per-atom result in structure atom order.
func (e *Stub) Compute(s *structure.Structure, _ Params) (*Result, error) {
	if s == nil {
		return nil, ErrNilInput
	}
	res := &Result{Atoms: make([]float64, 0, s.AtomCount())}
	for _, a := range s.Atoms() {
		t := e.atomArea(a).Total
		res.Atoms = append(res.Atoms, t)
		res.Total += t
	}
	return res, nil
}

// ComputeTree computes a native result tree for the structure.
func (e *Stub) ComputeTree(s *structure.Structure, _ Params, label string) (*Tree, error) {
	if s == nil {
		return nil, ErrNilInput
	}
	return e.buildTree(s, label, func(_ int, a structure.Atom) sasa.Area {
		return e.atomArea(a)
	})
}

// InitTree materializes a native tree from a flat result, assigning each
// atom its precomputed area in structure order.
func (e *Stub) InitTree(res *Result, s *structure.Structure, label string) (*Tree, error) {
	if res == nil || s == nil {
		return nil, ErrNilInput
	}
	if len(res.Atoms) != s.AtomCount() {
		return nil, fmt.Errorf("result has %d atom areas, structure has %d atoms", len(res.Atoms), s.AtomCount())
	}
	return e.buildTree(s, label, func(i int, a structure.Atom) sasa.Area {
		return SplitArea(res.Atoms[i], a.Name)
	})
}

func (e *Stub) buildTree(s *structure.Structure, label string, areaOf func(int, structure.Atom) sasa.Area) (*Tree, error) {
	if s.AtomCount() == 0 {
		return nil, fmt.Errorf("%w: structure %q has no atoms", ErrNullRoot, s.Name())
	}
	if label == "" {
		label = s.Name()
	}

	rs := &releaseState{}
	root := &memNode{kind: sasa.KindRoot, rs: rs}
	result := &memNode{kind: sasa.KindResult, classifiedBy: e.classifier(), parent: root, rs: rs}
	root.firstChild = result

	chains := s.Chains()
	st := &memNode{
		kind:        sasa.KindStructure,
		name:        label,
		model:       1,
		atomCount:   s.AtomCount(),
		chainCount:  len(chains),
		chainLabels: chains,
		area:        &sasa.Area{},
		parent:      result,
		rs:          rs,
	}
	result.firstChild = st

	// Atoms are grouped by identity (chain label, then residue field), not
	// by adjacency: interleaved chains or residues land in one node each.
	chainNodes := make(map[byte]*memNode)
	resNodes := make(map[byte]map[string]*memNode)
	for i, a := range s.Atoms() {
		chain := chainNodes[a.Chain]
		if chain == nil {
			chain = &memNode{
				kind:   sasa.KindChain,
				name:   string(a.Chain),
				area:   &sasa.Area{},
				parent: st,
				rs:     rs,
			}
			chainNodes[a.Chain] = chain
			resNodes[a.Chain] = make(map[string]*memNode)
			appendChild(st, chain)
		}
		residue := resNodes[a.Chain][a.ResNumber]
		if residue == nil {
			residue = &memNode{
				kind:      sasa.KindResidue,
				name:      a.Residue,
				resNumber: a.ResNumber,
				area:      &sasa.Area{},
				parent:    chain,
				rs:        rs,
			}
			resNodes[a.Chain][a.ResNumber] = residue
			appendChild(chain, residue)
			chain.residueCount++
		}

		area := areaOf(i, a)
		atom := &memNode{
			kind:      sasa.KindAtom,
			name:      a.Name,
			area:      &area,
			radius:    atomRadius(a.Name),
			polar:     isPolarAtom(a.Name),
			mainChain: isMainChainAtom(a.Name),
			parent:    residue,
			rs:        rs,
		}
		appendChild(residue, atom)
		residue.atomCount++

		*residue.area = residue.area.Add(area)
		*chain.area = chain.area.Add(area)
		*st.area = st.area.Add(area)
	}

	return newMemTree(root, rs), nil
}

func appendChild(parent, child *memNode) {
	if parent.firstChild == nil {
		parent.firstChild = child
		return
	}
	last := parent.firstChild
	for last.nextSibling != nil {
		last = last.nextSibling
	}
	last.nextSibling = child
}

// SplitArea decomposes a scalar area into the six-field aggregate using the
// default atom-name classification.
func SplitArea(total float64, atomName string) sasa.Area {
	a := sasa.Area{Total: total}
	if isMainChainAtom(atomName) {
		a.MainChain = total
	} else {
		a.SideChain = total
	}
	if isPolarAtom(atomName) {
		a.Polar = total
	} else {
		a.Apolar = total
	}
	return a
}

func isMainChainAtom(name string) bool {
	switch name {
	case "N", "CA", "C", "O", "OXT":
		return true
	}
	return false
}

func isPolarAtom(name string) bool {
	if name == "" {
		return false
	}
	switch name[0] {
	case 'N', 'O', 'S':
		return true
	}
	return false
}

func atomRadius(name string) float64 {
	if name == "" {
		return 1.80
	}
	switch name[0] {
	case 'C':
		return 1.70
	case 'N':
		return 1.55
	case 'O':
		return 1.52
	case 'S':
		return 1.80
	case 'H':
		return 1.20
	case 'P':
		return 1.80
	default:
		return 1.80
	}
}
