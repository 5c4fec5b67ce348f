package sasa

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrInvalidChainLabel is returned when a chain label is not exactly
	// one printable ASCII character.
	ErrInvalidChainLabel = errors.New("invalid chain label")

	// ErrInvalidResidueNumber is returned when a residue-number field does
	// not parse as an integer with an optional trailing insertion code.
	ErrInvalidResidueNumber = errors.New("invalid residue number")
)

// UID is the stable biological identity of a chain, residue or atom.
// Equality is structural, so the same residue carries the same UID in two
// trees built from different variants of a molecule. An atom UID always
// embeds a complete residue UID, which always embeds a complete chain UID;
// the constructors enforce this by requiring the validated parent.
//
// UID is comparable and can be used directly as a map key.
type UID struct {
	kind    Kind
	chain   byte
	number  int32
	insCode byte // 0 when absent
	atom    string
}

// ChainUID validates a chain label and returns a chain-level UID.
func ChainUID(label string) (UID, error) {
	c, err := parseChainLabel(label)
	if err != nil {
		return UID{}, err
	}
	return UID{kind: KindChain, chain: c}, nil
}

// Residue derives a residue UID from a chain UID and a raw residue-number
// field (e.g. "42" or "42A" with an insertion code).
func (u UID) Residue(field string) (UID, error) {
	if u.kind != KindChain {
		return UID{}, fmt.Errorf("residue uid requires a chain uid, got %s", u.kind)
	}
	num, ins, err := ParseResidueField(field)
	if err != nil {
		return UID{}, err
	}
	return UID{kind: KindResidue, chain: u.chain, number: num, insCode: ins}, nil
}

// Atom derives an atom UID from a residue UID and an atom name such as "CA".
func (u UID) Atom(name string) (UID, error) {
	if u.kind != KindResidue {
		return UID{}, fmt.Errorf("atom uid requires a residue uid, got %s", u.kind)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return UID{}, errors.New("empty atom name")
	}
	return UID{kind: KindAtom, chain: u.chain, number: u.number, insCode: u.insCode, atom: name}, nil
}

// ParseResidueField parses a trimmed residue-number field. The last character
// is treated as an insertion code iff it is non-numeric; the remainder must
// parse as a signed integer.
func ParseResidueField(raw string) (int32, byte, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, 0, fmt.Errorf("%w: empty field", ErrInvalidResidueNumber)
	}
	var ins byte
	last := s[len(s)-1]
	if last < '0' || last > '9' {
		ins = last
		s = s[:len(s)-1]
	}
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidResidueNumber, raw)
	}
	return int32(n), ins, nil
}

func parseChainLabel(raw string) (byte, error) {
	s := strings.TrimSpace(raw)
	if len(s) != 1 || s[0] <= ' ' || s[0] > '~' {
		return 0, fmt.Errorf("%w: %q (must be one printable character)", ErrInvalidChainLabel, raw)
	}
	return s[0], nil
}

// Kind reports the level of the identity (chain, residue or atom).
func (u UID) Kind() Kind { return u.kind }

// Chain returns the chain label.
func (u UID) Chain() byte { return u.chain }

// Number returns the residue number; ok is false for chain-level UIDs.
func (u UID) Number() (int32, bool) { return u.number, u.kind != KindChain }

// InsCode returns the insertion code; ok is false when absent.
func (u UID) InsCode() (byte, bool) {
	return u.insCode, u.kind != KindChain && u.insCode != 0
}

// AtomName returns the atom name; ok is false for non-atom UIDs.
func (u UID) AtomName() (string, bool) { return u.atom, u.kind == KindAtom }

// Parent returns the enclosing identity: residue for an atom, chain for a
// residue. ok is false for a chain UID.
func (u UID) Parent() (UID, bool) {
	switch u.kind {
	case KindAtom:
		return UID{kind: KindResidue, chain: u.chain, number: u.number, insCode: u.insCode}, true
	case KindResidue:
		return UID{kind: KindChain, chain: u.chain}, true
	default:
		return UID{}, false
	}
}

// Less orders UIDs lexicographically over (chain, residue number, insertion
// code, atom name). Used for deterministic iteration and printing only;
// matching is always by equality.
func (u UID) Less(v UID) bool {
	if u.chain != v.chain {
		return u.chain < v.chain
	}
	if u.number != v.number {
		return u.number < v.number
	}
	if u.insCode != v.insCode {
		return u.insCode < v.insCode
	}
	if u.atom != v.atom {
		return u.atom < v.atom
	}
	return u.kind < v.kind
}

// String renders the identity as "A", "A:10", "A:10B" or "A:10B:CA".
func (u UID) String() string {
	var b strings.Builder
	b.WriteByte(u.chain)
	if u.kind == KindChain {
		return b.String()
	}
	b.WriteByte(':')
	b.WriteString(strconv.FormatInt(int64(u.number), 10))
	if u.insCode != 0 {
		b.WriteByte(u.insCode)
	}
	if u.kind == KindAtom {
		b.WriteByte(':')
		b.WriteString(u.atom)
	}
	return b.String()
}

// ParseUID is the inverse of String. It accepts the textual renderings used
// as keys in serialized tree documents.
func ParseUID(s string) (UID, error) {
	parts := strings.SplitN(s, ":", 3)
	uid, err := ChainUID(parts[0])
	if err != nil {
		return UID{}, err
	}
	if len(parts) == 1 {
		return uid, nil
	}
	uid, err = uid.Residue(parts[1])
	if err != nil {
		return UID{}, err
	}
	if len(parts) == 2 {
		return uid, nil
	}
	return uid.Atom(parts[2])
}
