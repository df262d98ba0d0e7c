// Package fixed registers the "fixed" endorsement execution policy: every
// transaction takes the same, configured amount of time to execute.
package fixed

import (
	"github.com/blocksim-go/blocksim/core"
	"github.com/blocksim-go/blocksim/endorsement"
)

// DefaultExecutionSeconds is used when no override is configured.
const DefaultExecutionSeconds = 0.01

type policy struct {
	seconds float64
}

func (p policy) Name() string { return "fixed" }

func (p policy) ExecutionTime(_ *core.Transaction) float64 { return p.seconds }

func init() {
	endorsement.Register(policy{seconds: DefaultExecutionSeconds})
}
