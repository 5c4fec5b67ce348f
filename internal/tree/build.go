package tree

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bmcnally/sasadiff/internal/engine"
	"github.com/bmcnally/sasadiff/internal/sasa"
	"github.com/bmcnally/sasadiff/internal/structure"
)

const (
	// maxSiblings bounds traversal of a single sibling chain. Native trees
	// are externally supplied linked structures, so termination is not
	// trusted unconditionally.
	maxSiblings = 1 << 20

	// maxDepth bounds recursion; the real hierarchy is four levels deep.
	maxDepth = 8
)

// Builder converts a native result tree into an owned Tree. The zero value
// materializes down to atoms and logs through slog.Default.
type Builder struct {
	// Stop is the deepest kind materialized as a leaf; deeper native nodes
	// are never visited. KindNone means KindAtom.
	Stop sasa.Kind

	Log *slog.Logger
}

// Build converts and consumes a native tree with the given stop kind.
func Build(native *engine.Tree, stop sasa.Kind) (*Tree, error) {
	return Builder{Stop: stop}.Build(native)
}

// BuildFromResult materializes a native tree from a flat result plus its
// structure via the engine, then converts it.
func BuildFromResult(eng engine.Engine, res *engine.Result, s *structure.Structure, stop sasa.Kind) (*Tree, error) {
	if eng == nil {
		return nil, errors.New("nil engine")
	}
	if res == nil || s == nil {
		return nil, engine.ErrNilInput
	}
	native, err := eng.InitTree(res, s, s.Name())
	if err != nil {
		return nil, fmt.Errorf("init native tree: %w", err)
	}
	return Build(native, stop)
}

// Build converts a native tree into an owned Tree rooted at its first
// structure node, merging any further structure models (joined trees carry
// them as siblings) by identity. The native tree is released exactly once on
// every exit path, success or failure; the returned Tree holds no native
// references.
func (b Builder) Build(native *engine.Tree) (*Tree, error) {
	if native == nil || native.Released() {
		return nil, engine.ErrReleased
	}
	defer native.Release()

	stop := b.stop()
	switch stop {
	case sasa.KindStructure, sasa.KindChain, sasa.KindResidue, sasa.KindAtom:
	default:
		return nil, fmt.Errorf("invalid stop kind %s", stop)
	}

	root := native.Root()
	if root == nil {
		return nil, engine.ErrNullRoot
	}
	first, err := b.findStructure(root)
	if err != nil {
		return nil, err
	}

	owned, err := b.modelTree(first, stop)
	if err != nil {
		return nil, err
	}

	// A joined native tree carries further models as structure siblings;
	// fold each one in, keyed by identity.
	models := 1
	for s := first.NextSibling(); s != nil; s = s.NextSibling() {
		models++
		if models > maxSiblings {
			return nil, fmt.Errorf("structure sibling chain exceeds %d nodes", maxSiblings)
		}
		if s.Kind() != sasa.KindStructure {
			return nil, fmt.Errorf("unexpected %s node among structure models", s.Kind())
		}
		model, err := b.modelTree(s, stop)
		if err != nil {
			return nil, err
		}
		b.mergeModel(owned, model)
	}
	if models > 1 {
		b.logger().Info("merged structure models", "models", models)
	}
	return owned, nil
}

// modelTree converts one structure node and its subtree.
func (b Builder) modelTree(st engine.Node, stop sasa.Kind) (*Tree, error) {
	node, err := b.structureNode(st)
	if err != nil {
		return nil, err
	}
	owned := &Tree{Node: node, Children: make(map[sasa.UID]*Tree)}
	if stop != sasa.KindStructure {
		if err := b.addChildren(owned, st, nil, 1); err != nil {
			return nil, err
		}
	}
	return owned, nil
}

// mergeModel folds src into dst: nodes sharing an identity have their areas
// summed and their children merged recursively; new identities are inserted
// as-is. Summary counts are refreshed to describe the merged children.
func (b Builder) mergeModel(dst, src *Tree) {
	if dst.Node.Area != nil && src.Node.Area != nil {
		sum := dst.Node.Area.Add(*src.Node.Area)
		dst.Node.Area = &sum
	}
	for uid, child := range src.Children {
		if existing, ok := dst.Children[uid]; ok {
			b.mergeModel(existing, child)
		} else {
			dst.Children[uid] = child
		}
	}
	switch p := dst.Node.Props.(type) {
	case sasa.StructureProps:
		if sp, ok := src.Node.Props.(sasa.StructureProps); ok {
			p.Atoms += sp.Atoms
			for i := 0; i < len(sp.Chains); i++ {
				if !strings.ContainsRune(p.Chains, rune(sp.Chains[i])) {
					p.Chains += string(sp.Chains[i])
				}
			}
			dst.Node.Props = p
		}
	case sasa.ChainProps:
		if len(dst.Children) > 0 {
			p.Residues = len(dst.Children)
			dst.Node.Props = p
		}
	case sasa.ResidueProps:
		if len(dst.Children) > 0 {
			p.Atoms = len(dst.Children)
			dst.Node.Props = p
		}
	}
}

func (b Builder) stop() sasa.Kind {
	if b.Stop == sasa.KindNone {
		return sasa.KindAtom
	}
	return b.Stop
}

func (b Builder) logger() *slog.Logger {
	if b.Log != nil {
		return b.Log
	}
	return slog.Default()
}

// findStructure skips result-metadata wrappers down to the first structure
// node. A joined tree carries further models as that node's siblings; Build
// folds those in afterwards.
func (b Builder) findStructure(n engine.Node) (engine.Node, error) {
	for n != nil {
		switch n.Kind() {
		case sasa.KindRoot, sasa.KindResult:
			n = n.FirstChild()
		case sasa.KindStructure:
			return n, nil
		default:
			return nil, fmt.Errorf("unexpected %s node above structure level", n.Kind())
		}
	}
	return nil, fmt.Errorf("%w: no structure node found", engine.ErrNullRoot)
}

func (b Builder) addChildren(parent *Tree, n engine.Node, parentUID *sasa.UID, depth int) error {
	if depth > maxDepth {
		return fmt.Errorf("native tree deeper than %d levels", maxDepth)
	}
	stop := b.stop()
	count := 0
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		count++
		if count > maxSiblings {
			return fmt.Errorf("sibling chain exceeds %d nodes (possible cycle)", maxSiblings)
		}
		node, err := b.nodeFrom(c, parentUID)
		if err != nil {
			return err
		}
		uid := *node.UID
		if _, dup := parent.Children[uid]; dup {
			b.logger().Warn("duplicate sibling identity, keeping first",
				"uid", uid.String(), "kind", node.Kind.String())
			continue
		}
		child := &Tree{Node: node, Children: make(map[sasa.UID]*Tree)}
		parent.Children[uid] = child
		if node.Kind != stop {
			if err := b.addChildren(child, c, node.UID, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b Builder) structureNode(n engine.Node) (sasa.Node, error) {
	area, ok := n.Area()
	if !ok {
		return sasa.Node{}, fmt.Errorf("%w: structure area", engine.ErrNullField)
	}
	props := sasa.StructureProps{}
	if name, ok := n.Name(); ok {
		props.Name = name
	} else {
		b.logger().Warn("structure node has no name")
	}
	if m, ok := n.Model(); ok {
		props.Model = m
	}
	if c, ok := n.AtomCount(); ok {
		props.Atoms = c
	}
	if labels, ok := n.ChainLabels(); ok {
		props.Chains = labels
	}
	return sasa.Node{Kind: sasa.KindStructure, Area: &area, Props: props}, nil
}

// nodeFrom converts one native node. Required identity fields (chain label,
// residue number, atom name) and areas abort with a typed error; auxiliary
// descriptive fields degrade with a log line.
func (b Builder) nodeFrom(n engine.Node, parentUID *sasa.UID) (sasa.Node, error) {
	area, ok := n.Area()
	if !ok {
		return sasa.Node{}, fmt.Errorf("%w: %s area", engine.ErrNullField, n.Kind())
	}

	switch kind := n.Kind(); kind {
	case sasa.KindChain:
		label, ok := n.Name()
		if !ok {
			return sasa.Node{}, fmt.Errorf("%w: chain label", engine.ErrNullField)
		}
		uid, err := sasa.ChainUID(label)
		if err != nil {
			return sasa.Node{}, err
		}
		props := sasa.ChainProps{}
		if c, ok := n.ResidueCount(); ok {
			props.Residues = c
		}
		return sasa.Node{Kind: kind, UID: &uid, Area: &area, Props: props}, nil

	case sasa.KindResidue:
		if parentUID == nil || parentUID.Kind() != sasa.KindChain {
			return sasa.Node{}, fmt.Errorf("residue node without chain parent")
		}
		field, ok := n.ResidueNumber()
		if !ok {
			return sasa.Node{}, fmt.Errorf("%w: residue number", engine.ErrNullField)
		}
		uid, err := parentUID.Residue(field)
		if err != nil {
			return sasa.Node{}, err
		}
		props := sasa.ResidueProps{}
		if name, ok := n.Name(); ok {
			props.Name = name
		} else {
			b.logger().Warn("residue has no name", "uid", uid.String())
		}
		if c, ok := n.AtomCount(); ok {
			props.Atoms = c
		}
		return sasa.Node{Kind: kind, UID: &uid, Area: &area, Props: props}, nil

	case sasa.KindAtom:
		if parentUID == nil || parentUID.Kind() != sasa.KindResidue {
			return sasa.Node{}, fmt.Errorf("atom node without residue parent")
		}
		name, ok := n.Name()
		if !ok {
			return sasa.Node{}, fmt.Errorf("%w: atom name", engine.ErrNullField)
		}
		uid, err := parentUID.Atom(name)
		if err != nil {
			return sasa.Node{}, err
		}
		props := sasa.AtomProps{}
		if r, ok := n.Radius(); ok {
			props.Radius = r
		}
		if p, ok := n.IsPolar(); ok {
			props.Polar = p
		}
		if m, ok := n.IsMainChain(); ok {
			props.MainChain = m
		}
		if line, ok := n.PDBLine(); ok {
			props.PDBLine = line
		}
		return sasa.Node{Kind: kind, UID: &uid, Area: &area, Props: props}, nil

	default:
		return sasa.Node{}, fmt.Errorf("unexpected %s node below structure level", n.Kind())
	}
}
