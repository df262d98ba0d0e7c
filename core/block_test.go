package core

import "testing"

func TestHashString(t *testing.T) {
	if got := HashString(2, 7); got != "2/7" {
		t.Errorf("HashString = %q, want %q", got, "2/7")
	}
}

func TestIsParentOf(t *testing.T) {
	parent := NewBlock(1, 3, 0, 1000, 1.0, nil)
	child := NewBlock(2, 5, 3, 1000, 2.0, nil)
	if !parent.IsParentOf(child) {
		t.Error("expected parent.IsParentOf(child)")
	}
	other := NewBlock(2, 5, 9, 1000, 2.0, nil)
	if parent.IsParentOf(other) {
		t.Error("did not expect parent.IsParentOf(other) with mismatched parentMinerId")
	}
}

func TestGenesis(t *testing.T) {
	g := Genesis()
	if !g.IsGenesis() {
		t.Error("Genesis() should satisfy IsGenesis()")
	}
}
