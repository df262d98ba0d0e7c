package indexer

import (
	"testing"

	"github.com/blocksim-go/blocksim/events"
)

func TestIndexerTracksTipAndForks(t *testing.T) {
	emitter := events.NewEmitter()
	idx := New(emitter)

	emitter.Emit(events.Event{Type: events.TypeBlockValidated, Height: 1, MinerID: 1})
	emitter.Emit(events.Event{Type: events.TypeBlockValidated, Height: 2, MinerID: 1})
	emitter.Emit(events.Event{Type: events.TypeBlockValidated, Height: 2, MinerID: 2})

	h, m := idx.Tip()
	if h != 2 || m != 1 {
		t.Fatalf("expected tip (2,1), got (%d,%d)", h, m)
	}

	forks := idx.Forks()
	if len(forks) != 1 || forks[0].Height != 2 {
		t.Fatalf("expected one fork at height 2, got %+v", forks)
	}
}
