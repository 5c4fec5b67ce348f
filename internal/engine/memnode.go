package engine

import "github.com/bmcnally/sasadiff/internal/sasa"

// memNode is an in-memory native node mirroring the layout of the engine's
// C result trees: first-child / next-sibling links plus kind-specific fields.
// All nodes of one tree share a releaseState; accessors go dead once the
// owning tree is released, which lets tests catch use-after-release.
type memNode struct {
	kind sasa.Kind

	name      string // atom/residue name, chain label or structure name
	resNumber string // raw residue-number field, e.g. "42A"
	area      *sasa.Area

	model        int
	atomCount    int
	residueCount int
	chainCount   int
	chainLabels  string

	radius    float64
	polar     bool
	mainChain bool
	pdbLine   string

	classifiedBy string

	parent      *memNode
	firstChild  *memNode
	nextSibling *memNode

	rs *releaseState
}

// releaseState tracks whether a node graph has been freed. A donor graph
// merged into a primary by a join follows the primary's state from then on.
type releaseState struct {
	released   bool
	releases   int
	mergedInto *releaseState
}

func (s *releaseState) dead() bool {
	if s == nil {
		return false
	}
	if s.released {
		return true
	}
	return s.mergedInto != nil && s.mergedInto.dead()
}

func (s *releaseState) release() {
	s.released = true
	s.releases++
}

func (n *memNode) Kind() sasa.Kind { return n.kind }

func (n *memNode) FirstChild() Node {
	if n.rs.dead() || n.firstChild == nil {
		return nil
	}
	return n.firstChild
}

func (n *memNode) NextSibling() Node {
	if n.rs.dead() || n.nextSibling == nil {
		return nil
	}
	return n.nextSibling
}

func (n *memNode) Parent() Node {
	if n.rs.dead() || n.parent == nil {
		return nil
	}
	return n.parent
}

func (n *memNode) Name() (string, bool) {
	if n.rs.dead() || n.name == "" {
		return "", false
	}
	switch n.kind {
	case sasa.KindAtom, sasa.KindResidue, sasa.KindChain, sasa.KindStructure:
		return n.name, true
	}
	return "", false
}

func (n *memNode) ResidueNumber() (string, bool) {
	if n.rs.dead() || n.kind != sasa.KindResidue || n.resNumber == "" {
		return "", false
	}
	return n.resNumber, true
}

func (n *memNode) Area() (sasa.Area, bool) {
	if n.rs.dead() || n.area == nil {
		return sasa.Area{}, false
	}
	return *n.area, true
}

func (n *memNode) Model() (int, bool) {
	if n.rs.dead() || n.kind != sasa.KindStructure {
		return 0, false
	}
	return n.model, true
}

func (n *memNode) AtomCount() (int, bool) {
	if n.rs.dead() {
		return 0, false
	}
	switch n.kind {
	case sasa.KindStructure, sasa.KindResidue:
		return n.atomCount, true
	}
	return 0, false
}

func (n *memNode) ResidueCount() (int, bool) {
	if n.rs.dead() || n.kind != sasa.KindChain {
		return 0, false
	}
	return n.residueCount, true
}

func (n *memNode) ChainCount() (int, bool) {
	if n.rs.dead() || n.kind != sasa.KindStructure {
		return 0, false
	}
	return n.chainCount, true
}

func (n *memNode) ChainLabels() (string, bool) {
	if n.rs.dead() || n.kind != sasa.KindStructure || n.chainLabels == "" {
		return "", false
	}
	return n.chainLabels, true
}

func (n *memNode) Radius() (float64, bool) {
	if n.rs.dead() || n.kind != sasa.KindAtom {
		return 0, false
	}
	return n.radius, true
}

func (n *memNode) IsPolar() (bool, bool) {
	if n.rs.dead() || n.kind != sasa.KindAtom {
		return false, false
	}
	return n.polar, true
}

func (n *memNode) IsMainChain() (bool, bool) {
	if n.rs.dead() || n.kind != sasa.KindAtom {
		return false, false
	}
	return n.mainChain, true
}

func (n *memNode) PDBLine() (string, bool) {
	if n.rs.dead() || n.kind != sasa.KindAtom || n.pdbLine == "" {
		return "", false
	}
	return n.pdbLine, true
}

func (n *memNode) ClassifiedBy() (string, bool) {
	if n.rs.dead() || n.kind != sasa.KindResult || n.classifiedBy == "" {
		return "", false
	}
	return n.classifiedBy, true
}

// newMemTree wraps a root memNode in an owning handle with release tracking
// and sibling-appending join semantics: the donor's structure nodes become
// additional children of the primary's result node.
func newMemTree(root *memNode, rs *releaseState) *Tree {
	join := func(donorRoot Node) Status {
		d, ok := donorRoot.(*memNode)
		if !ok || d == nil || d.kind != sasa.KindRoot {
			return StatusError
		}
		if root.kind != sasa.KindRoot {
			return StatusError
		}
		pRes := root.firstChild
		dRes := d.firstChild
		if pRes == nil || pRes.kind != sasa.KindResult || dRes == nil || dRes.kind != sasa.KindResult {
			return StatusError
		}
		st := StatusSuccess
		if dRes.classifiedBy != pRes.classifiedBy {
			// Mixed classifiers are legal but suspicious.
			st = StatusWarning
		}
		for c := dRes.firstChild; c != nil; c = c.nextSibling {
			c.parent = pRes
		}
		if pRes.firstChild == nil {
			pRes.firstChild = dRes.firstChild
		} else {
			last := pRes.firstChild
			for last.nextSibling != nil {
				last = last.nextSibling
			}
			last.nextSibling = dRes.firstChild
		}
		d.rs.mergedInto = rs
		return st
	}
	return NewTree(root, rs.release, join)
}
