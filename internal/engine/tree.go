package engine

// Tree is the owning handle of a native result tree. The native nodes are
// only valid until Release is called; Release is idempotent so that a handle
// whose contents were transferred away by Join can still be dropped safely,
// but the underlying resources are freed exactly once.
type Tree struct {
	root      Node
	released  bool
	releaseFn func()
	joinFn    func(donor Node) Status
}

// NewTree wraps a native root. release frees the native resources and is
// called at most once. join merges a donor root into this tree and is
// engine-specific; nil means the engine does not support joining.
func NewTree(root Node, release func(), join func(donor Node) Status) *Tree {
	return &Tree{root: root, releaseFn: release, joinFn: join}
}

// Root returns the native root node, or nil once the tree is released.
func (t *Tree) Root() Node {
	if t == nil || t.released {
		return nil
	}
	return t.root
}

// Released reports whether the handle no longer owns native resources.
func (t *Tree) Released() bool { return t == nil || t.released }

// Release frees the native tree. Safe to call more than once; only the first
// call releases anything. A no-op on handles whose nodes were transferred
// away by Join.
func (t *Tree) Release() {
	if t == nil || t.released {
		return
	}
	t.released = true
	t.root = nil
	if t.releaseFn != nil {
		t.releaseFn()
	}
}

// Join merges the donor's subtrees into t. On success (or a native warning,
// which callers should log but treat as success) ownership of the donor's
// nodes transfers to t and the donor handle is immediately invalidated, so a
// later Release of the donor is a no-op. On a native error the donor is left
// intact and the caller remains responsible for releasing it.
func (t *Tree) Join(donor *Tree) (Status, error) {
	if t == nil || t.released || donor == nil || donor.released {
		return StatusError, ErrReleased
	}
	if t.joinFn == nil {
		return StatusError, ErrJoinFailed
	}
	st := t.joinFn(donor.root)
	if st == StatusError {
		return st, ErrJoinFailed
	}
	// Ownership transferred: neutralize the donor handle without running
	// its release function.
	donor.released = true
	donor.root = nil
	donor.releaseFn = nil
	return st, nil
}
