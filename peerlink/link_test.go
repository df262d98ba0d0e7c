package peerlink

import (
	"testing"

	"github.com/blocksim-go/blocksim/core"
	"github.com/blocksim-go/blocksim/protocol"
	"github.com/blocksim-go/blocksim/scheduler"
)

// TestBandwidthAccounting exercises spec scenario S6: 2 nodes, one uplink
// 1 MB/s, one 10 MB/s. A 1 MB block must arrive at now + 1.0s (1MB/min(1,10)).
func TestBandwidthAccounting(t *testing.T) {
	const MB = 1 << 20
	sched := scheduler.NewHeapScheduler()
	transport := NewLocalTransport()

	var arrivedAt float64
	slow := NewManager("slow", 1*MB, 1*MB, sched, transport, nil, nil)
	fast := NewManager("fast", 10*MB, 10*MB, sched, transport, nil, func(from string, msg protocol.Message) {
		if msg.Type == protocol.KindBlock {
			arrivedAt = sched.Now()
		}
	})
	transport.Register("slow", slow)
	transport.Register("fast", fast)
	slow.AddPeer(PeerInfo{Address: "fast", UploadSpeed: 10 * MB, DownloadSpeed: 10 * MB})

	block := core.NewBlock(1, 1, 0, MB, 0, nil)
	slow.Send("fast", protocol.Message{Type: protocol.KindBlock, Block: block})

	sched.Run()

	if diff := arrivedAt - 1.0; diff > 1e-3 || diff < -1e-3 {
		t.Fatalf("arrival time = %.4f, want 1.0 +/- 1ms", arrivedAt)
	}
}

// TestControlMessagesDeliverImmediately verifies no arrival delay is modeled
// for small control messages (spec §4.3).
func TestControlMessagesDeliverImmediately(t *testing.T) {
	sched := scheduler.NewHeapScheduler()
	transport := NewLocalTransport()
	var delivered bool
	a := NewManager("a", 1000, 1000, sched, transport, nil, nil)
	b := NewManager("b", 1000, 1000, sched, transport, nil, func(from string, msg protocol.Message) {
		delivered = true
	})
	transport.Register("a", a)
	transport.Register("b", b)
	a.Send("b", protocol.Message{Type: protocol.KindInv})
	if !delivered {
		t.Fatal("control message should deliver synchronously with no scheduled delay")
	}
	if sched.Pending() != 0 {
		t.Fatal("control message must not schedule any event")
	}
}
