package core

import "testing"

func TestNewRunID(t *testing.T) {
	a := NewRunID()
	b := NewRunID()

	if ID(a).IsEmpty() || ID(b).IsEmpty() {
		t.Fatal("run IDs must not be empty")
	}
	if a == b {
		t.Fatal("consecutive run IDs must differ")
	}
	if len(a.String()) != 36 {
		t.Errorf("expected canonical UUID length, got %d", len(a.String()))
	}
}

func TestParseColumnKey(t *testing.T) {
	key, err := ParseColumnKey("pct_fsm")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if key.String() != "pct_fsm" {
		t.Errorf("unexpected key %q", key)
	}

	if _, err := ParseColumnKey("   "); err == nil {
		t.Fatal("expected error for blank key")
	}
}
