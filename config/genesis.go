package config

import "github.com/blocksim-go/blocksim/core"

// NewGenesisChain returns a fresh Blockchain seeded with the canonical
// (0,0) genesis block every node starts from (spec §3 invariant: genesis is
// always present).
func NewGenesisChain() *core.Blockchain {
	return core.NewBlockchain()
}
