// Package endorsement simulates the per-transaction execution an endorser
// performs on REQUEST_TRANS before replying REPLY_TRANS. Adapted from the
// teacher's vm.Executor/vm.Registry plugin architecture: instead of
// executing smart-contract transaction types, a registered ExecutionPolicy
// samples a simulated execution latency, contributing to meanEndorsementTime.
package endorsement

import "github.com/blocksim-go/blocksim/core"

// ExecutionPolicy computes the simulated time an endorser spends executing
// a transaction before replying.
type ExecutionPolicy interface {
	Name() string
	ExecutionTime(tx *core.Transaction) float64
}

// Executor runs the configured policy for an endorser node.
type Executor struct {
	policy ExecutionPolicy
}

// NewExecutor builds an Executor using the named policy from the registry.
// Falls back to "fixed" if name is unknown or empty.
func NewExecutor(name string) *Executor {
	p, ok := Lookup(name)
	if !ok {
		p, _ = Lookup("fixed")
	}
	return &Executor{policy: p}
}

// Execute returns the simulated execution time for tx under the configured
// policy.
func (e *Executor) Execute(tx *core.Transaction) float64 {
	return e.policy.ExecutionTime(tx)
}
