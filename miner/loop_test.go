package miner

import (
	"math/rand"
	"testing"

	_ "github.com/blocksim-go/blocksim/endorsement/policies/fixed"

	"github.com/blocksim-go/blocksim/endorsement"
	"github.com/blocksim-go/blocksim/events"
	"github.com/blocksim-go/blocksim/peerlink"
	"github.com/blocksim-go/blocksim/scheduler"
	"github.com/blocksim-go/blocksim/simnode"
	"github.com/blocksim-go/blocksim/stats"
)

func newTestNode(sched *scheduler.HeapScheduler, transport *peerlink.LocalTransport, cfg simnode.Config) *simnode.Node {
	acc := stats.NewAccumulator(cfg.NodeID, stats.NodeCommitter, cfg.Miner, 1)
	link := peerlink.NewManager(cfg.Address, 1e9, 1e9, sched, transport, acc, nil)
	transport.Register(cfg.Address, link)
	return simnode.New(cfg, sched, link, acc, events.NewEmitter(), endorsement.NewExecutor("fixed"), rand.New(rand.NewSource(2)))
}

// TestSingleMinerFixedIntervalGeneratesExpectedBlocks models spec scenario
// S1: fixed 2s interval, 20s simulated, expect >= 9 blocks generated. The
// miner is then stopped and in-flight deliveries drained, so the block mined
// at t=20 reaches the committers before heights are compared.
func TestSingleMinerFixedIntervalGeneratesExpectedBlocks(t *testing.T) {
	sched := scheduler.NewHeapScheduler()
	transport := peerlink.NewLocalTransport()

	m := newTestNode(sched, transport, simnode.Config{NodeID: 1, Address: "m", Role: simnode.RoleCommitter, Miner: true})
	c1 := newTestNode(sched, transport, simnode.Config{NodeID: 2, Address: "c1", Role: simnode.RoleCommitter})
	c2 := newTestNode(sched, transport, simnode.Config{NodeID: 3, Address: "c2", Role: simnode.RoleCommitter})

	m.AddPeer("c1", 1e9, 1e9)
	m.AddPeer("c2", 1e9, 1e9)
	c1.AddPeer("m", 1e9, 1e9)
	c2.AddPeer("m", 1e9, 1e9)

	m.Start(0)
	c1.Start(0)
	c2.Start(0)

	loop := New(m, Config{FixedIntervalSeconds: 2, FixedBlockSizeBytes: 1000}, rand.New(rand.NewSource(3)))
	loop.Start()

	sched.RunUntil(20)
	loop.Stop()
	sched.Run()

	if m.Accumulator().Snapshot().MinerGeneratedBlocks < 9 {
		t.Fatalf("expected >= 9 generated blocks, got %d", m.Accumulator().Snapshot().MinerGeneratedBlocks)
	}
	if c1.Chain().MaxHeight() != m.Chain().MaxHeight() || c2.Chain().MaxHeight() != m.Chain().MaxHeight() {
		t.Fatalf("committers should converge to the miner's height: m=%d c1=%d c2=%d",
			m.Chain().MaxHeight(), c1.Chain().MaxHeight(), c2.Chain().MaxHeight())
	}
	if longest, inForks := c1.Chain().ForkStats(); longest != 0 || inForks != 0 {
		t.Fatalf("expected no forks, got longest=%d inForks=%d", longest, inForks)
	}
}

// TestTwoCompetingMinersProduceAFork models spec scenario S2.
func TestTwoCompetingMinersProduceAFork(t *testing.T) {
	sched := scheduler.NewHeapScheduler()
	transport := peerlink.NewLocalTransport()

	m1 := newTestNode(sched, transport, simnode.Config{NodeID: 1, Address: "m1", Role: simnode.RoleCommitter, Miner: true})
	m2 := newTestNode(sched, transport, simnode.Config{NodeID: 2, Address: "m2", Role: simnode.RoleCommitter, Miner: true})
	m1.AddPeer("m2", 1e9, 1e9)
	m2.AddPeer("m1", 1e9, 1e9)
	m1.Start(0)
	m2.Start(0)

	l1 := New(m1, Config{FixedIntervalSeconds: 2, FixedBlockSizeBytes: 1000}, rand.New(rand.NewSource(11)))
	l2 := New(m2, Config{FixedIntervalSeconds: 2, FixedBlockSizeBytes: 1000}, rand.New(rand.NewSource(12)))
	l1.Start()
	l2.Start()

	sched.RunUntil(40)

	g1 := m1.Accumulator().Snapshot().MinerGeneratedBlocks
	g2 := m2.Accumulator().Snapshot().MinerGeneratedBlocks
	if g1 == 0 || g2 == 0 {
		t.Fatalf("both miners should have generated blocks: g1=%d g2=%d", g1, g2)
	}
	if m1.Chain().MaxHeight() != m2.Chain().MaxHeight() {
		t.Fatalf("both miners should converge to the same top height: m1=%d m2=%d", m1.Chain().MaxHeight(), m2.Chain().MaxHeight())
	}
	if _, inForks := m1.Chain().ForkStats(); inForks < 1 {
		t.Fatalf("expected at least one fork at m1, got blocksInForks=%d", inForks)
	}
}
