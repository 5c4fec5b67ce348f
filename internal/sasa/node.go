package sasa

// Properties carries the kind-specific descriptive fields of a node.
// The set is closed: one implementation per Kind that has any.
type Properties interface{ isProperties() }

// AtomProps describes an atom node.
type AtomProps struct {
	Polar     bool    // classified as polar
	MainChain bool    // backbone atom
	Radius    float64 // atomic radius used by the engine
	PDBLine   string  // source PDB line, empty when unavailable
}

// ResidueProps describes a residue node.
type ResidueProps struct {
	Name  string // residue name, e.g. "ASN"
	Atoms int
}

// ChainProps describes a chain node.
type ChainProps struct {
	Residues int
}

// StructureProps describes a structure node.
type StructureProps struct {
	Name   string
	Model  int
	Atoms  int
	Chains string // concatenated chain labels
}

// ResultProps describes the result-metadata node wrapping a structure.
type ResultProps struct {
	ClassifiedBy string
}

func (AtomProps) isProperties()      {}
func (ResidueProps) isProperties()   {}
func (ChainProps) isProperties()     {}
func (StructureProps) isProperties() {}
func (ResultProps) isProperties()    {}

// Node is one owned node of a SASA hierarchy. UID is nil for root, result
// and structure nodes (a structure is addressed as the tree root, not by
// key); Area is nil only for root and result nodes.
type Node struct {
	Kind  Kind
	UID   *UID
	Area  *Area
	Props Properties
}
