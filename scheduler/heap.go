package scheduler

import "container/heap"

// HeapScheduler is a reference, single-threaded Scheduler backed by a
// container/heap priority queue, grounded on the event-list approach in
// LarryRuane-minesim (same data structure: lowest-timestamp-first heap of
// pending events, sequence-numbered to break timestamp ties in FIFO order).
// Intended for local driver runs and deterministic tests; production
// deployments plug in the real ns-3-equivalent scheduling kernel instead.
type HeapScheduler struct {
	now    float64
	nextID EventID
	seq    uint64
	pq     eventHeap
}

type scheduledEvent struct {
	id       EventID
	when     float64
	seq      uint64
	fn       Func
	canceled bool
}

type eventHeap []*scheduledEvent

func (h eventHeap) Len() int { return len(h) }
func (h eventHeap) Less(i, j int) bool {
	if h[i].when != h[j].when {
		return h[i].when < h[j].when
	}
	return h[i].seq < h[j].seq
}
func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *eventHeap) Push(x interface{}) {
	*h = append(*h, x.(*scheduledEvent))
}
func (h *eventHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// NewHeapScheduler returns a scheduler starting at virtual time 0.
func NewHeapScheduler() *HeapScheduler {
	return &HeapScheduler{}
}

func (s *HeapScheduler) Now() float64 { return s.now }

func (s *HeapScheduler) Schedule(delay float64, fn Func) EventID {
	s.nextID++
	s.seq++
	ev := &scheduledEvent{id: s.nextID, when: s.now + delay, seq: s.seq, fn: fn}
	heap.Push(&s.pq, ev)
	return ev.id
}

func (s *HeapScheduler) Cancel(id EventID) {
	for _, ev := range s.pq {
		if ev.id == id {
			ev.canceled = true
			return
		}
	}
}

// Run pops events in timestamp order until the queue is empty, advancing the
// virtual clock to each event's timestamp before invoking it.
func (s *HeapScheduler) Run() {
	for s.pq.Len() > 0 {
		s.Step()
	}
}

// RunUntil drains events with when <= deadline, in order, then stops without
// advancing the clock past deadline.
func (s *HeapScheduler) RunUntil(deadline float64) {
	for s.pq.Len() > 0 {
		if s.pq[0].canceled {
			heap.Pop(&s.pq)
			continue
		}
		if s.pq[0].when > deadline {
			break
		}
		s.Step()
	}
	if s.now < deadline {
		s.now = deadline
	}
}

// Step pops and runs exactly one event, reporting whether one was run.
func (s *HeapScheduler) Step() bool {
	if s.pq.Len() == 0 {
		return false
	}
	ev := heap.Pop(&s.pq).(*scheduledEvent)
	if ev.canceled {
		return s.Step()
	}
	s.now = ev.when
	ev.fn()
	return true
}

// Pending returns the number of not-yet-fired (and not-canceled) events.
func (s *HeapScheduler) Pending() int {
	n := 0
	for _, ev := range s.pq {
		if !ev.canceled {
			n++
		}
	}
	return n
}
