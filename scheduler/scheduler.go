// Package scheduler defines the discrete-event clock contract the simulator
// core runs on. The real network-simulation kernel (virtual time, TCP-like
// byte streams) is an external collaborator per spec §1 — this package
// defines only the interface plus a reference in-process implementation
// (HeapScheduler) used for tests and the local cmd/blocksim driver.
package scheduler

// EventID is an opaque, cancellation-safe handle. Cancelling twice, or
// cancelling an already-fired event, is always safe and idempotent.
type EventID uint64

// Func is the callback invoked when a scheduled event fires.
type Func func()

// Scheduler is the virtual-clock contract every node handler reads `Now()`
// from and schedules future work against. Nodes never share mutable state
// directly with each other; all cross-node communication is mediated by
// events scheduled here (spec §5).
type Scheduler interface {
	// Now returns the current virtual simulation time, in seconds.
	Now() float64
	// Schedule runs fn at time Now()+delay and returns a handle that can be
	// passed to Cancel.
	Schedule(delay float64, fn Func) EventID
	// Cancel cancels a previously scheduled event. Safe to call multiple
	// times or after the event has already fired.
	Cancel(id EventID)
}
