package sasa

import (
	"errors"
	"testing"
)

func TestChainUID(t *testing.T) {
	uid, err := ChainUID("A")
	if err != nil {
		t.Fatalf("ChainUID(A) failed: %v", err)
	}
	if uid.Kind() != KindChain {
		t.Errorf("expected chain kind, got %s", uid.Kind())
	}
	if uid.Chain() != 'A' {
		t.Errorf("expected chain 'A', got %q", uid.Chain())
	}

	// Surrounding whitespace is trimmed, inner content validated.
	if _, err := ChainUID(" B "); err != nil {
		t.Errorf("ChainUID with surrounding spaces should trim: %v", err)
	}

	for _, bad := range []string{"", "AB", " ", "\t"} {
		if _, err := ChainUID(bad); !errors.Is(err, ErrInvalidChainLabel) {
			t.Errorf("ChainUID(%q) = %v, want ErrInvalidChainLabel", bad, err)
		}
	}
}

func TestParseResidueField(t *testing.T) {
	tests := []struct {
		raw     string
		num     int32
		ins     byte
		wantErr bool
	}{
		{"42", 42, 0, false},
		{"42A", 42, 'A', false},
		{" 42A ", 42, 'A', false},
		{"-5", -5, 0, false},
		{"-5B", -5, 'B', false},
		{"0", 0, 0, false},
		{"", 0, 0, true},
		{"A", 0, 0, true},    // insertion code with no number
		{"4 2", 0, 0, true},  // inner space
		{"42AB", 0, 0, true}, // only one trailing code allowed
	}
	for _, tt := range tests {
		num, ins, err := ParseResidueField(tt.raw)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidResidueNumber) {
				t.Errorf("ParseResidueField(%q) = %v, want ErrInvalidResidueNumber", tt.raw, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseResidueField(%q) failed: %v", tt.raw, err)
			continue
		}
		if num != tt.num || ins != tt.ins {
			t.Errorf("ParseResidueField(%q) = (%d, %q), want (%d, %q)", tt.raw, num, ins, tt.num, tt.ins)
		}
	}
}

func TestUIDNesting(t *testing.T) {
	chain, err := ChainUID("A")
	if err != nil {
		t.Fatal(err)
	}
	res, err := chain.Residue("10B")
	if err != nil {
		t.Fatalf("Residue(10B) failed: %v", err)
	}
	atom, err := res.Atom("CA")
	if err != nil {
		t.Fatalf("Atom(CA) failed: %v", err)
	}

	if got := atom.String(); got != "A:10B:CA" {
		t.Errorf("atom UID string = %q, want A:10B:CA", got)
	}
	if got := res.String(); got != "A:10B" {
		t.Errorf("residue UID string = %q, want A:10B", got)
	}
	if got := chain.String(); got != "A" {
		t.Errorf("chain UID string = %q, want A", got)
	}

	// Parent chain walks atom → residue → chain.
	p, ok := atom.Parent()
	if !ok || p != res {
		t.Errorf("atom parent = %v, want %v", p, res)
	}
	p, ok = p.Parent()
	if !ok || p != chain {
		t.Errorf("residue parent = %v, want %v", p, chain)
	}
	if _, ok := chain.Parent(); ok {
		t.Error("chain UID should have no parent")
	}

	// Derivation requires the right level.
	if _, err := res.Residue("11"); err == nil {
		t.Error("Residue on a residue UID should fail")
	}
	if _, err := chain.Atom("CA"); err == nil {
		t.Error("Atom on a chain UID should fail")
	}
	if _, err := res.Atom("  "); err == nil {
		t.Error("blank atom name should fail")
	}
}

func TestUIDInsertionCodeDistinct(t *testing.T) {
	chain, _ := ChainUID("A")
	plain, err := chain.Residue("10")
	if err != nil {
		t.Fatal(err)
	}
	inserted, err := chain.Residue("10A")
	if err != nil {
		t.Fatal(err)
	}
	if plain == inserted {
		t.Error("residues 10 and 10A must have distinct identities")
	}

	// Same identity from two parses compares equal, usable as map key.
	again, _ := chain.Residue("10A")
	if inserted != again {
		t.Error("identical residue fields must produce equal UIDs")
	}
	m := map[UID]int{inserted: 1}
	if m[again] != 1 {
		t.Error("UID map lookup by equal identity failed")
	}
}

func TestUIDLess(t *testing.T) {
	mk := func(chain, resField, atom string) UID {
		c, err := ChainUID(chain)
		if err != nil {
			t.Fatal(err)
		}
		r, err := c.Residue(resField)
		if err != nil {
			t.Fatal(err)
		}
		if atom == "" {
			return r
		}
		a, err := r.Atom(atom)
		if err != nil {
			t.Fatal(err)
		}
		return a
	}

	ordered := []UID{
		mk("A", "5", ""),
		mk("A", "10", ""),
		mk("A", "10", "C"),
		mk("A", "10", "CA"),
		mk("A", "10A", ""),
		mk("B", "1", ""),
	}
	for i := 0; i < len(ordered)-1; i++ {
		if !ordered[i].Less(ordered[i+1]) {
			t.Errorf("expected %s < %s", ordered[i], ordered[i+1])
		}
		if ordered[i+1].Less(ordered[i]) {
			t.Errorf("ordering not antisymmetric for %s and %s", ordered[i], ordered[i+1])
		}
	}
}

func TestParseUIDRoundTrip(t *testing.T) {
	for _, s := range []string{"A", "A:10", "A:10B", "A:10B:CA", "B:-3", "C:7:OXT"} {
		uid, err := ParseUID(s)
		if err != nil {
			t.Errorf("ParseUID(%q) failed: %v", s, err)
			continue
		}
		if got := uid.String(); got != s {
			t.Errorf("round trip %q -> %q", s, got)
		}
	}

	for _, bad := range []string{"", "AB", "A:", "A:x", "A:10:"} {
		if _, err := ParseUID(bad); err == nil {
			t.Errorf("ParseUID(%q) should fail", bad)
		}
	}
}
