// Package random registers the "random" endorsement execution policy:
// execution time is sampled uniformly from a configured range, modeling
// endorsers with variable, data-dependent execution cost.
package random

import (
	"math/rand"

	"github.com/blocksim-go/blocksim/core"
	"github.com/blocksim-go/blocksim/endorsement"
)

// MinSeconds and MaxSeconds bound the uniform sample.
const (
	MinSeconds = 0.005
	MaxSeconds = 0.05
)

type policy struct {
	min, max float64
	rng      *rand.Rand
}

func (p policy) Name() string { return "random" }

func (p policy) ExecutionTime(_ *core.Transaction) float64 {
	return p.min + p.rng.Float64()*(p.max-p.min)
}

func init() {
	endorsement.Register(policy{min: MinSeconds, max: MaxSeconds, rng: rand.New(rand.NewSource(1))})
}
