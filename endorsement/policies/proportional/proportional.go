// Package proportional registers the "proportional" endorsement execution
// policy: execution time scales with transaction size, modeling an endorser
// whose simulated VM cost grows with payload.
package proportional

import (
	"github.com/blocksim-go/blocksim/core"
	"github.com/blocksim-go/blocksim/endorsement"
)

// SecondsPerByte is the simulated per-byte execution cost.
const SecondsPerByte = 0.0001

type policy struct {
	secondsPerByte float64
}

func (p policy) Name() string { return "proportional" }

func (p policy) ExecutionTime(tx *core.Transaction) float64 {
	return float64(tx.SizeBytes) * p.secondsPerByte
}

func init() {
	endorsement.Register(policy{secondsPerByte: SecondsPerByte})
}
