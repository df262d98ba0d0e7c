package inventory

import (
	"math/rand"
	"testing"

	"github.com/blocksim-go/blocksim/scheduler"
)

func TestAdvertiseFirstTimeRequestsImmediately(t *testing.T) {
	sched := scheduler.NewHeapScheduler()
	var requested []string
	c := New(sched, 10, rand.New(rand.NewSource(1)), func(hash, peer string) {
		requested = append(requested, peer)
	}, func(hash string) {})
	c.Advertise("1/1", "peerA")
	if len(requested) != 1 || requested[0] != "peerA" {
		t.Fatalf("expected immediate request to peerA, got %v", requested)
	}
	c.Advertise("1/1", "peerB")
	if len(requested) != 1 {
		t.Fatal("second advertisement should only extend the retry list, not re-request")
	}
}

func TestTimeoutRetriesAlternatePeer(t *testing.T) {
	sched := scheduler.NewHeapScheduler()
	var requested []string
	var timeouts int
	c := New(sched, 5, rand.New(rand.NewSource(1)), func(hash, peer string) {
		requested = append(requested, peer)
	}, func(hash string) { timeouts++ })
	c.Advertise("2/1", "peerA")
	c.Advertise("2/1", "peerB")
	sched.RunUntil(5)
	if timeouts != 1 {
		t.Fatalf("expected 1 timeout, got %d", timeouts)
	}
	if len(requested) != 2 || requested[1] != "peerB" {
		t.Fatalf("expected retry against peerB, got %v", requested)
	}
}

func TestResolveCancelsTimeout(t *testing.T) {
	sched := scheduler.NewHeapScheduler()
	timeouts := 0
	c := New(sched, 5, rand.New(rand.NewSource(1)), func(hash, peer string) {}, func(hash string) { timeouts++ })
	c.Advertise("3/1", "peerA")
	c.Resolve("3/1")
	sched.Run()
	if timeouts != 0 {
		t.Fatal("resolved entry must not fire a timeout")
	}
	if c.Len() != 0 {
		t.Fatal("resolved entry must be removed from the queue")
	}
}

func TestLastPeerExhaustedDeletesEntry(t *testing.T) {
	sched := scheduler.NewHeapScheduler()
	c := New(sched, 1, rand.New(rand.NewSource(1)), func(hash, peer string) {}, func(hash string) {})
	c.Advertise("4/1", "onlyPeer")
	sched.RunUntil(1)
	if c.Len() != 0 {
		t.Fatal("exhausting the only peer should delete the entry")
	}
}
