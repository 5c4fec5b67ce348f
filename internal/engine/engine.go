// Package engine defines the contract to the external SASA geometry engine:
// the traversal protocol over its native result trees, the owning handle that
// guarantees exactly-once release, and the flat per-atom result. A
// geometry-free in-memory engine (Stub) implements the contract for tests
// and development.
package engine

import (
	"errors"

	"github.com/bmcnally/sasadiff/internal/sasa"
	"github.com/bmcnally/sasadiff/internal/structure"
)

var (
	// ErrNullField indicates a required native accessor returned a null
	// or invalid sentinel.
	ErrNullField = errors.New("native field is null")

	// ErrNullRoot indicates the engine returned a null tree root.
	ErrNullRoot = errors.New("native tree construction failed")

	// ErrJoinFailed indicates the native join reported an error; the donor
	// tree is left intact and still owned by the caller.
	ErrJoinFailed = errors.New("native tree join failed")

	// ErrReleased indicates a handle was used after release or after its
	// contents were transferred away by a join.
	ErrReleased = errors.New("native tree already released")

	// ErrNilInput indicates a nil structure or result was passed where the
	// engine requires both.
	ErrNilInput = errors.New("structure or result is nil")
)

// Node is the read-only traversal protocol over a native result tree.
// Traversal methods return nil for absent links. Typed accessors return
// ok == false when the engine did not populate the field for this node
// kind, or when the underlying tree has been released.
type Node interface {
	Kind() sasa.Kind
	FirstChild() Node
	NextSibling() Node
	Parent() Node

	// Name is the node label: atom name, residue name, chain label or
	// structure name depending on the kind.
	Name() (string, bool)
	// ResidueNumber is the raw residue-number field, insertion code included.
	ResidueNumber() (string, bool)
	Area() (sasa.Area, bool)
	Model() (int, bool)
	AtomCount() (int, bool)
	ResidueCount() (int, bool)
	ChainCount() (int, bool)
	ChainLabels() (string, bool)
	Radius() (float64, bool)
	IsPolar() (bool, bool)
	IsMainChain() (bool, bool)
	PDBLine() (string, bool)
	ClassifiedBy() (string, bool)
}

// Status is the outcome of a native join.
type Status int

const (
	StatusSuccess Status = iota
	StatusWarning
	StatusError
)

// Result is the engine's flat output: the total area plus one value per atom,
// in structure atom order.
type Result struct {
	Total float64
	Atoms []float64
}

// Get returns the area of the atom at index i.
func (r *Result) Get(i int) (float64, bool) {
	if r == nil || i < 0 || i >= len(r.Atoms) {
		return 0, false
	}
	return r.Atoms[i], true
}

// Params configures a computation. Engines that do no real geometry
// (such as Stub) ignore them.
type Params struct {
	ProbeRadius float64 // solvent probe radius in Å
	TestPoints  int     // sampling density hint
}

// DefaultParams mirrors the engine's built-in defaults.
var DefaultParams = Params{ProbeRadius: 1.4, TestPoints: 100}

// Engine is the external geometry engine. All calls are synchronous and run
// to completion or fail atomically.
type Engine interface {
	// Compute returns the flat per-atom result for a structure.
	Compute(s *structure.Structure, p Params) (*Result, error)

	// ComputeTree computes and returns a native result tree. The caller owns
	// the returned handle and must release it exactly once (building an
	// owned tree from it counts as the release).
	ComputeTree(s *structure.Structure, p Params, label string) (*Tree, error)

	// InitTree materializes a native tree from an already-computed flat
	// result and its structure. Returns ErrNilInput if either is nil.
	InitTree(res *Result, s *structure.Structure, label string) (*Tree, error)
}
