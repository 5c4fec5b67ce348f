// Package tree converts native engine result trees into owned,
// identity-keyed trees and compares two such trees to find nodes whose
// areas differ.
package tree

import (
	"sort"

	"github.com/bmcnally/sasadiff/internal/sasa"
)

// Tree is an owned SASA hierarchy: one node plus its children keyed by
// identity. It holds no references into the native tree it was built from,
// so it outlives the engine handle and is safe for concurrent reads once
// constructed.
type Tree struct {
	Node     sasa.Node
	Children map[sasa.UID]*Tree
}

// Child returns the immediate child with the given identity, or nil.
func (t *Tree) Child(uid sasa.UID) *Tree {
	if t == nil {
		return nil
	}
	return t.Children[uid]
}

// Get resolves an identity at any depth by descending through its ancestor
// chain (chain → residue → atom). Returns nil when absent.
func (t *Tree) Get(uid sasa.UID) *Tree {
	if parent, ok := uid.Parent(); ok {
		p := t.Get(parent)
		if p == nil {
			return nil
		}
		return p.Children[uid]
	}
	return t.Child(uid)
}

// Walk visits every node in the tree, parents before children. Child order
// is deterministic (sorted by UID).
func (t *Tree) Walk(fn func(*Tree)) {
	if t == nil {
		return
	}
	fn(t)
	uids := make([]sasa.UID, 0, len(t.Children))
	for uid := range t.Children {
		uids = append(uids, uid)
	}
	sort.Slice(uids, func(i, j int) bool { return uids[i].Less(uids[j]) })
	for _, uid := range uids {
		t.Children[uid].Walk(fn)
	}
}

// NodesOfKind returns copies of all nodes of the given kind, sorted by UID.
func (t *Tree) NodesOfKind(kind sasa.Kind) []sasa.Node {
	var nodes []sasa.Node
	t.Walk(func(n *Tree) {
		if n.Node.Kind == kind {
			nodes = append(nodes, n.Node)
		}
	})
	return nodes
}

// CountKind returns the number of nodes of the given kind.
func (t *Tree) CountKind(kind sasa.Kind) int {
	count := 0
	t.Walk(func(n *Tree) {
		if n.Node.Kind == kind {
			count++
		}
	})
	return count
}
