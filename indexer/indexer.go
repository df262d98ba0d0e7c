// Package indexer subscribes to block-validation events and maintains a
// simple fork index over every node publishing to the emitter (events are
// not separated by NodeID): which heights have ever carried more than one
// block, and which miner id owns the current tip. Adapted from the
// teacher's events-driven secondary-index pattern, repurposed from
// asset/session ownership lookups to fork bookkeeping.
package indexer

import (
	"sync"

	"github.com/blocksim-go/blocksim/events"
)

// ForkEntry records a height at which more than one block has been seen.
type ForkEntry struct {
	Height     int64
	MinerIDs   []int
}

// Indexer tracks, across all nodes feeding its emitter, the set of heights
// that became forks and the first-validated (height, minerId) at the highest
// height seen.
type Indexer struct {
	mu sync.Mutex

	forks      map[int64]map[int]struct{}
	tipHeight  int64
	tipMinerID int
}

// New creates an Indexer subscribed to emitter's block-validated events.
func New(emitter *events.Emitter) *Indexer {
	idx := &Indexer{forks: make(map[int64]map[int]struct{})}
	emitter.Subscribe(events.TypeBlockValidated, idx.onBlockValidated)
	emitter.Subscribe(events.TypeFork, idx.onFork)
	return idx
}

func (idx *Indexer) onBlockValidated(ev events.Event) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if ev.Height > idx.tipHeight {
		idx.tipHeight = ev.Height
		idx.tipMinerID = ev.MinerID
	}
	miners, ok := idx.forks[ev.Height]
	if !ok {
		miners = make(map[int]struct{})
		idx.forks[ev.Height] = miners
	}
	miners[ev.MinerID] = struct{}{}
}

func (idx *Indexer) onFork(ev events.Event) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	miners, ok := idx.forks[ev.Height]
	if !ok {
		miners = make(map[int]struct{})
		idx.forks[ev.Height] = miners
	}
	miners[ev.MinerID] = struct{}{}
}

// Tip returns the highest validated (height, minerId) seen so far.
func (idx *Indexer) Tip() (height int64, minerID int) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.tipHeight, idx.tipMinerID
}

// Forks returns every height that has carried more than one block, along
// with the distinct miner ids seen at that height.
func (idx *Indexer) Forks() []ForkEntry {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	var out []ForkEntry
	for h, miners := range idx.forks {
		if len(miners) <= 1 {
			continue
		}
		entry := ForkEntry{Height: h}
		for m := range miners {
			entry.MinerIDs = append(entry.MinerIDs, m)
		}
		out = append(out, entry)
	}
	return out
}
