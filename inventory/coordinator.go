// Package inventory implements the per-node INV coordinator: outstanding
// block requests, their timeouts, and the alternative-peer retry list
// (spec §4.8).
package inventory

import (
	"math/rand"

	"github.com/blocksim-go/blocksim/scheduler"
)

// Coordinator tracks, for every advertised-but-unowned block hash, the
// ordered list of peers who advertised it and a scheduled timeout.
type Coordinator struct {
	sched   scheduler.Scheduler
	timeout float64 // invTimeoutMinutes, expressed in seconds
	rng     *rand.Rand

	queue    map[string][]string          // hash -> FIFO of candidate peer addresses
	timeouts map[string]scheduler.EventID // hash -> scheduled timeout handle

	onRequest func(hash string, peer string) // called to (re)send GET_HEADERS+GET_DATA
	onTimeout func(hash string)              // called to bump blockTimeouts
}

// New creates a Coordinator. timeoutSeconds is the per-block INV timeout;
// rng drives the "shuffle the first slot" retry randomization (spec §4.8),
// and should be a node-owned PRNG per spec §9.
func New(sched scheduler.Scheduler, timeoutSeconds float64, rng *rand.Rand, onRequest func(hash, peer string), onTimeout func(hash string)) *Coordinator {
	return &Coordinator{
		sched:     sched,
		timeout:   timeoutSeconds,
		rng:       rng,
		queue:     make(map[string][]string),
		timeouts:  make(map[string]scheduler.EventID),
		onRequest: onRequest,
		onTimeout: onTimeout,
	}
}

// Advertise records that peer advertised hash. If this is the first time
// hash has been heard about, it is requested from peer immediately and a
// timeout is scheduled; subsequent advertisements only extend the retry
// list (spec §4.8).
func (c *Coordinator) Advertise(hash, peer string) {
	if existing, ok := c.queue[hash]; ok {
		c.queue[hash] = append(existing, peer)
		return
	}
	c.queue[hash] = []string{peer}
	c.scheduleTimeout(hash)
	c.onRequest(hash, peer)
}

func (c *Coordinator) scheduleTimeout(hash string) {
	id := c.sched.Schedule(c.timeout, func() { c.fire(hash) })
	c.timeouts[hash] = id
}

// fire handles a timeout expiring: increments blockTimeouts, pops the first
// peer, shuffles a new first candidate into place, and retries — or deletes
// the entry if no peers remain.
func (c *Coordinator) fire(hash string) {
	peers, ok := c.queue[hash]
	if !ok || len(peers) == 0 {
		delete(c.queue, hash)
		delete(c.timeouts, hash)
		return
	}
	c.onTimeout(hash)
	peers = peers[1:]
	if len(peers) == 0 {
		delete(c.queue, hash)
		delete(c.timeouts, hash)
		return
	}
	if len(peers) > 1 {
		j := c.rng.Intn(len(peers))
		peers[0], peers[j] = peers[j], peers[0]
	}
	c.queue[hash] = peers
	next := peers[0]
	c.scheduleTimeout(hash)
	c.onRequest(hash, next)
}

// Resolve cancels the timeout and clears the entry for hash: the block was
// received and validated (or discarded as unreachable).
func (c *Coordinator) Resolve(hash string) {
	if id, ok := c.timeouts[hash]; ok {
		c.sched.Cancel(id)
		delete(c.timeouts, hash)
	}
	delete(c.queue, hash)
}

// Pending reports whether hash currently has an outstanding request.
func (c *Coordinator) Pending(hash string) bool {
	_, ok := c.queue[hash]
	return ok
}

// Len returns the number of currently-outstanding block hashes (used to
// check spec invariant 3: one scheduled timeout per outstanding entry).
func (c *Coordinator) Len() int {
	return len(c.queue)
}
