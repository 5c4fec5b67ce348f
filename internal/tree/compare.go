package tree

import (
	"sort"

	"github.com/bmcnally/sasadiff/internal/sasa"
)

// Op combines the areas of two identity-matched nodes; base comes from the
// first tree, variant from the second. The usual delta is variant minus base.
type Op func(base, variant sasa.Area) sasa.Area

// Keep filters combined areas; only nodes whose combined area passes are
// reported. Area equality is exact, so predicates bring their own tolerance.
type Keep func(sasa.Area) bool

// Delta is the typical Op: the variant's area minus the base's.
func Delta(base, variant sasa.Area) sasa.Area { return variant.Sub(base) }

// Compare aligns nodes of the given kind across two trees by identity,
// combines their areas with op and returns the nodes whose combined area
// satisfies keep. Matching never depends on sibling order or on equal child
// counts: a node absent from the variant has no counterpart and is skipped,
// as are nodes without an area. Runs in O(m+n); results are sorted by UID
// and carry the combined area alongside the base node's properties.
func Compare(base, variant *Tree, kind sasa.Kind, op Op, keep Keep) []sasa.Node {
	if base == nil || variant == nil {
		return nil
	}

	counterparts := make(map[sasa.UID]sasa.Node)
	variant.Walk(func(t *Tree) {
		n := t.Node
		if n.Kind == kind && n.UID != nil && n.Area != nil {
			counterparts[*n.UID] = n
		}
	})

	var out []sasa.Node
	base.Walk(func(t *Tree) {
		n := t.Node
		if n.Kind != kind || n.UID == nil || n.Area == nil {
			return
		}
		other, ok := counterparts[*n.UID]
		if !ok {
			return
		}
		combined := op(*n.Area, *other.Area)
		if !keep(combined) {
			return
		}
		out = append(out, sasa.Node{
			Kind:  kind,
			UID:   n.UID,
			Area:  &combined,
			Props: n.Props,
		})
	})

	sort.Slice(out, func(i, j int) bool { return out[i].UID.Less(*out[j].UID) })
	return out
}
