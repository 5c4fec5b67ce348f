package sasa

import "fmt"

// Kind identifies the level of a node in a SASA result hierarchy.
// The hierarchy is fixed: root → result → structure → chain → residue → atom.
type Kind int

const (
	KindNone Kind = iota
	KindAtom
	KindResidue
	KindChain
	KindStructure
	KindResult
	KindRoot
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindAtom:
		return "atom"
	case KindResidue:
		return "residue"
	case KindChain:
		return "chain"
	case KindStructure:
		return "structure"
	case KindResult:
		return "result"
	case KindRoot:
		return "root"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind converts a textual kind (as used in API requests and
// serialized documents) back to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "none":
		return KindNone, nil
	case "atom":
		return KindAtom, nil
	case "residue":
		return KindResidue, nil
	case "chain":
		return KindChain, nil
	case "structure":
		return KindStructure, nil
	case "result":
		return KindResult, nil
	case "root":
		return KindRoot, nil
	default:
		return KindNone, fmt.Errorf("unknown node kind: %q", s)
	}
}
