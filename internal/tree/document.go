package tree

import (
	"encoding/json"
	"fmt"

	"github.com/bmcnally/sasadiff/internal/sasa"
)

// docNode is the persisted rendering of one tree level: kind and descriptive
// fields plus the area components inlined, children keyed by the textual UID
// ("A", "A:10B", "A:10B:CA") one level deeper.
type docNode struct {
	Kind     string  `json:"kind"`
	Name     string  `json:"name,omitempty"`
	Model    int     `json:"model,omitempty"`
	Chains   string  `json:"chains,omitempty"`
	Atoms    int     `json:"n_atoms,omitempty"`
	Residues int     `json:"n_residues,omitempty"`
	Radius   float64 `json:"radius,omitempty"`
	IsPolar  *bool   `json:"is_polar,omitempty"`
	Backbone *bool   `json:"is_backbone,omitempty"`
	PDBLine  string  `json:"pdb_line,omitempty"`

	Total     float64 `json:"total"`
	MainChain float64 `json:"main_chain"`
	SideChain float64 `json:"side_chain"`
	Polar     float64 `json:"polar"`
	Apolar    float64 `json:"apolar"`
	Unknown   float64 `json:"unknown"`

	Children map[string]*docNode `json:"children,omitempty"`
}

// Encode serializes an owned tree to its nested key-value JSON document.
func Encode(t *Tree) ([]byte, error) {
	if t == nil {
		return nil, fmt.Errorf("nil tree")
	}
	return json.Marshal(encodeNode(t))
}

func encodeNode(t *Tree) *docNode {
	d := &docNode{Kind: t.Node.Kind.String()}
	if a := t.Node.Area; a != nil {
		d.Total = a.Total
		d.MainChain = a.MainChain
		d.SideChain = a.SideChain
		d.Polar = a.Polar
		d.Apolar = a.Apolar
		d.Unknown = a.Unknown
	}
	switch p := t.Node.Props.(type) {
	case sasa.StructureProps:
		d.Name = p.Name
		d.Model = p.Model
		d.Chains = p.Chains
		d.Atoms = p.Atoms
	case sasa.ChainProps:
		d.Residues = p.Residues
	case sasa.ResidueProps:
		d.Name = p.Name
		d.Atoms = p.Atoms
	case sasa.AtomProps:
		d.Radius = p.Radius
		polar, backbone := p.Polar, p.MainChain
		d.IsPolar = &polar
		d.Backbone = &backbone
		d.PDBLine = p.PDBLine
	}
	if len(t.Children) > 0 {
		d.Children = make(map[string]*docNode, len(t.Children))
		for uid, child := range t.Children {
			d.Children[uid.String()] = encodeNode(child)
		}
	}
	return d
}

// Decode reconstructs an owned tree from its serialized document. The root
// must be a structure node; child keys must parse as UIDs consistent with
// their nesting.
func Decode(data []byte) (*Tree, error) {
	var d docNode
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decode tree document: %w", err)
	}
	if d.Kind != sasa.KindStructure.String() {
		return nil, fmt.Errorf("tree document root must be a structure, got %q", d.Kind)
	}
	area := docArea(&d)
	t := &Tree{
		Node: sasa.Node{
			Kind: sasa.KindStructure,
			Area: &area,
			Props: sasa.StructureProps{
				Name:   d.Name,
				Model:  d.Model,
				Chains: d.Chains,
				Atoms:  d.Atoms,
			},
		},
		Children: make(map[sasa.UID]*Tree),
	}
	for key, child := range d.Children {
		if err := decodeChild(t, nil, key, child); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func decodeChild(parent *Tree, parentUID *sasa.UID, key string, d *docNode) error {
	uid, err := sasa.ParseUID(key)
	if err != nil {
		return fmt.Errorf("tree document key %q: %w", key, err)
	}
	kind, err := sasa.ParseKind(d.Kind)
	if err != nil {
		return fmt.Errorf("tree document key %q: %w", key, err)
	}
	if kind != uid.Kind() {
		return fmt.Errorf("tree document key %q claims kind %s", key, d.Kind)
	}
	if parentUID != nil {
		p, ok := uid.Parent()
		if !ok || p != *parentUID {
			return fmt.Errorf("tree document key %q is not a child of %s", key, parentUID)
		}
	} else if kind != sasa.KindChain {
		return fmt.Errorf("tree document key %q: structure children must be chains", key)
	}

	area := docArea(d)
	node := sasa.Node{Kind: kind, UID: &uid, Area: &area}
	switch kind {
	case sasa.KindChain:
		node.Props = sasa.ChainProps{Residues: d.Residues}
	case sasa.KindResidue:
		node.Props = sasa.ResidueProps{Name: d.Name, Atoms: d.Atoms}
	case sasa.KindAtom:
		props := sasa.AtomProps{Radius: d.Radius, PDBLine: d.PDBLine}
		if d.IsPolar != nil {
			props.Polar = *d.IsPolar
		}
		if d.Backbone != nil {
			props.MainChain = *d.Backbone
		}
		node.Props = props
	}

	child := &Tree{Node: node, Children: make(map[sasa.UID]*Tree)}
	parent.Children[uid] = child
	for k, c := range d.Children {
		if err := decodeChild(child, &uid, k, c); err != nil {
			return err
		}
	}
	return nil
}

func docArea(d *docNode) sasa.Area {
	return sasa.Area{
		Total:     d.Total,
		MainChain: d.MainChain,
		SideChain: d.SideChain,
		Polar:     d.Polar,
		Apolar:    d.Apolar,
		Unknown:   d.Unknown,
	}
}
