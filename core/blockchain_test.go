package core

import "testing"

// TestGenesisInvariant checks spec invariant 5: totalBlocks >= 1 (genesis).
func TestGenesisInvariant(t *testing.T) {
	bc := NewBlockchain()
	if bc.TotalBlocks() < 1 {
		t.Fatal("fresh blockchain must count the genesis block")
	}
	if !bc.Has(0, 0) {
		t.Fatal("genesis (0,0) must always be present")
	}
}

// TestAddFillsSkippedHeights exercises adding a block beyond the current top height.
func TestAddFillsSkippedHeights(t *testing.T) {
	bc := NewBlockchain()
	b := NewBlock(3, 1, 0, 1000, 1.0, nil)
	bc.Add(b)
	if bc.MaxHeight() != 3 {
		t.Fatalf("MaxHeight = %d, want 3", bc.MaxHeight())
	}
	if len(bc.BlocksAtHeight(1)) != 0 || len(bc.BlocksAtHeight(2)) != 0 {
		t.Fatal("skipped heights should exist as empty rows")
	}
}

// TestCurrentTopFirstSeenWins verifies the first-seen tie-break (spec §4.1).
func TestCurrentTopFirstSeenWins(t *testing.T) {
	bc := NewBlockchain()
	first := NewBlock(1, 5, 0, 1000, 1.0, nil)
	second := NewBlock(1, 6, 0, 1000, 1.1, nil)
	bc.Add(first)
	bc.Add(second)
	top := bc.CurrentTop()
	if top.MinerID != 5 {
		t.Fatalf("CurrentTop().MinerID = %d, want 5 (first-seen)", top.MinerID)
	}
	longest, inForks := bc.ForkStats()
	if longest != 1 || inForks != 1 {
		t.Fatalf("ForkStats = (%d,%d), want (1,1)", longest, inForks)
	}
}

func TestHasAndIsOrphanMutuallyExclusive(t *testing.T) {
	bc := NewBlockchain()
	b := NewBlock(5, 9, 1, 1000, 1.0, nil) // parent (4,1) unknown -> orphan
	bc.AddOrphan(b)
	if bc.Has(5, 9) {
		t.Fatal("orphan block must not be reported as Has()")
	}
	if !bc.IsOrphan(5, 9) {
		t.Fatal("expected IsOrphan true")
	}
	bc.RemoveOrphan(b)
	bc.Add(b)
	if bc.IsOrphan(5, 9) {
		t.Fatal("block moved into blocks must no longer be an orphan")
	}
	if !bc.Has(5, 9) {
		t.Fatal("expected Has true after Add")
	}
}

func TestParentChildLookup(t *testing.T) {
	bc := NewBlockchain()
	b1 := NewBlock(1, 1, 0, 1000, 1.0, nil)
	bc.Add(b1)
	b2 := NewBlock(2, 2, 1, 1000, 2.0, nil)
	bc.Add(b2)
	parent := bc.Parent(b2)
	if parent == nil || parent.MinerID != 1 {
		t.Fatal("expected Parent(b2) to be b1")
	}
	children := bc.Children(b1)
	if len(children) != 1 || children[0].MinerID != 2 {
		t.Fatal("expected Children(b1) == [b2]")
	}
}

func TestReturnBlockScansOrphansToo(t *testing.T) {
	bc := NewBlockchain()
	o := NewBlock(9, 3, 1, 1000, 1.0, nil)
	bc.AddOrphan(o)
	if got := bc.ReturnBlock(9, 3); got == nil {
		t.Fatal("ReturnBlock should find orphan blocks")
	}
	if got := bc.ReturnBlock(100, 100); got != nil {
		t.Fatal("ReturnBlock should return nil for absent blocks")
	}
}
