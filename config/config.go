// Package config parses the simulator's command-line flags (spec §6) and an
// optional TOML experiment file carrying the less-common tuning parameters
// that don't merit their own flag.
package config

import (
	"flag"
	"fmt"
)

// Flags mirrors the CLI surface from spec §6. Defaults match the spec
// exactly; -1 means "auto" for the connection bounds and inventory timeout.
type Flags struct {
	BlockSize             int     // --blockSize, -1 = unset (sampled)
	NoBlocks              int     // --noBlocks
	Nodes                 int     // --nodes
	Miners                int     // --miners
	MinConnections        int     // --minConnections, -1 = auto
	MaxConnections        int     // --maxConnections, -1 = auto
	BlockIntervalSeconds  float64 // --blockIntervalSeconds
	InvTimeoutMins        float64 // --invTimeoutMins, -1 = derived
	Endorsers             int     // --endorsers
	Clients               int     // --clients
	CreatingTime          float64 // --creatingTime
	Test                  bool    // --test
	NullMsg               bool    // --nullmsg
	ExperimentFile        string  // --experiment, optional TOML overrides

	// minerInvTimeoutMins / otherInvTimeoutMins hold the derived per-role
	// inventory timeouts when InvTimeoutMins is left at -1 (spec §6).
	minerInvTimeoutMins float64
	otherInvTimeoutMins float64
}

// DefaultFlags returns the spec §6 defaults.
func DefaultFlags() *Flags {
	return &Flags{
		BlockSize:            -1,
		NoBlocks:             100,
		Nodes:                16,
		Miners:               1,
		MinConnections:       -1,
		MaxConnections:       -1,
		BlockIntervalSeconds: 15,
		InvTimeoutMins:       -1,
		Endorsers:            6,
		Clients:              10,
		CreatingTime:         20,
	}
}

// ParseFlags parses args (excluding the program name) into a Flags value,
// validates it, and resolves InvTimeoutMins if still -1.
func ParseFlags(args []string) (*Flags, error) {
	f := DefaultFlags()
	fs := flag.NewFlagSet("blocksim", flag.ContinueOnError)
	fs.IntVar(&f.BlockSize, "blockSize", f.BlockSize, "fixed block size in bytes, -1 = sampled")
	fs.IntVar(&f.NoBlocks, "noBlocks", f.NoBlocks, "number of blocks to simulate")
	fs.IntVar(&f.Nodes, "nodes", f.Nodes, "total node count")
	fs.IntVar(&f.Miners, "miners", f.Miners, "number of miner nodes")
	fs.IntVar(&f.MinConnections, "minConnections", f.MinConnections, "minimum peer connections, -1 = auto")
	fs.IntVar(&f.MaxConnections, "maxConnections", f.MaxConnections, "maximum peer connections, -1 = auto")
	fs.Float64Var(&f.BlockIntervalSeconds, "blockIntervalSeconds", f.BlockIntervalSeconds, "block interval in seconds, used to derive the default inventory timeouts (mining intervals come from the experiment file)")
	fs.Float64Var(&f.InvTimeoutMins, "invTimeoutMins", f.InvTimeoutMins, "inventory timeout in minutes, -1 = derived")
	fs.IntVar(&f.Endorsers, "endorsers", f.Endorsers, "number of endorser nodes")
	fs.IntVar(&f.Clients, "clients", f.Clients, "number of client nodes")
	fs.Float64Var(&f.CreatingTime, "creatingTime", f.CreatingTime, "max client transaction-creation interval")
	fs.BoolVar(&f.Test, "test", f.Test, "run in scalability test mode")
	fs.BoolVar(&f.NullMsg, "nullmsg", f.NullMsg, "enable MPI null-message synchronization")
	fs.StringVar(&f.ExperimentFile, "experiment", f.ExperimentFile, "optional TOML file with experiment overrides")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	f.resolveInvTimeout()
	return f, nil
}

// Validate checks structural constraints on the flags.
func (f *Flags) Validate() error {
	if f.Nodes <= 0 {
		return fmt.Errorf("nodes must be positive, got %d", f.Nodes)
	}
	if f.Miners < 0 || f.Miners > f.Nodes {
		return fmt.Errorf("miners must be in [0, nodes], got %d", f.Miners)
	}
	if f.Endorsers < 0 || f.Clients < 0 {
		return fmt.Errorf("endorsers and clients must be non-negative")
	}
	if f.Endorsers+f.Clients > f.Nodes {
		return fmt.Errorf("endorsers + clients (%d) exceeds nodes (%d)", f.Endorsers+f.Clients, f.Nodes)
	}
	if f.BlockIntervalSeconds <= 0 {
		return fmt.Errorf("blockIntervalSeconds must be positive")
	}
	if f.CreatingTime <= 0 {
		return fmt.Errorf("creatingTime must be positive")
	}
	return nil
}

// resolveInvTimeout implements spec §6's "-1 ⇒ 2×blockIntervalMin for
// miners, 4× for others" rule. Since the rule is role-dependent, this
// resolves the two derived defaults callers pick between.
func (f *Flags) resolveInvTimeout() {
	if f.InvTimeoutMins >= 0 {
		return
	}
	blockIntervalMin := f.BlockIntervalSeconds / 60
	f.minerInvTimeoutMins = 2 * blockIntervalMin
	f.otherInvTimeoutMins = 4 * blockIntervalMin
}

// InvTimeoutFor returns the inventory timeout, in seconds, appropriate for
// a node that is (or is not) a miner.
func (f *Flags) InvTimeoutFor(isMiner bool) float64 {
	if f.InvTimeoutMins >= 0 {
		return f.InvTimeoutMins * 60
	}
	if isMiner {
		return f.minerInvTimeoutMins * 60
	}
	return f.otherInvTimeoutMins * 60
}
