package stats

import (
	"testing"

	"github.com/blocksim-go/blocksim/protocol"
)

func TestRunningMean(t *testing.T) {
	var r runningMean
	r.update(2)
	r.update(4)
	r.update(6)
	if r.mean != 4 {
		t.Fatalf("mean = %v, want 4", r.mean)
	}
}

func TestAccumulatorSnapshot(t *testing.T) {
	a := NewAccumulator(1, NodeCommitter, false, 0)
	a.RecordSent(protocol.KindInv, 64)
	a.RecordReceived(protocol.KindBlock, 2000)
	a.AddLatency(1.5)
	a.AddLatency(2.5)
	a.IncTotalBlocks()

	snap := a.Snapshot()
	if snap.InvSentBytes != 64 {
		t.Errorf("InvSentBytes = %d, want 64", snap.InvSentBytes)
	}
	if snap.BlockReceivedBytes != 2000 {
		t.Errorf("BlockReceivedBytes = %d, want 2000", snap.BlockReceivedBytes)
	}
	if snap.MeanLatency != 2.0 {
		t.Errorf("MeanLatency = %v, want 2.0", snap.MeanLatency)
	}
	if snap.TotalBlocks != 1 {
		t.Errorf("TotalBlocks = %d, want 1", snap.TotalBlocks)
	}
}
