// Command blocksim runs the discrete-event blockchain network simulator: it
// wires together the scheduler, peer links, protocol state machines, miners,
// and statistics collection described across the package tree, then prints
// (and optionally archives and serves over RPC) the resulting per-node
// statistics records.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/blocksim-go/blocksim/config"
	"github.com/blocksim-go/blocksim/core"
	"github.com/blocksim-go/blocksim/endorsement"
	"github.com/blocksim-go/blocksim/events"
	"github.com/blocksim-go/blocksim/indexer"
	"github.com/blocksim-go/blocksim/miner"
	"github.com/blocksim-go/blocksim/peerlink"
	"github.com/blocksim-go/blocksim/resultsdb"
	"github.com/blocksim-go/blocksim/rpc"
	"github.com/blocksim-go/blocksim/scheduler"
	"github.com/blocksim-go/blocksim/simnode"
	"github.com/blocksim-go/blocksim/stats"
	"github.com/blocksim-go/blocksim/topology"

	// Import endorsement execution policies to trigger their init()
	// self-registration.
	_ "github.com/blocksim-go/blocksim/endorsement/policies/fixed"
	_ "github.com/blocksim-go/blocksim/endorsement/policies/proportional"
	_ "github.com/blocksim-go/blocksim/endorsement/policies/random"
)

// defaultUploadSpeed / defaultDownloadSpeed are the per-node bandwidth
// given to every node (spec §4.3's peer link speeds come from the
// out-of-scope topology generator; the topology file format carries no
// speeds, so this driver uses the same value whether or not a topology file
// is given).
const (
	defaultUploadSpeed   = 1 << 20  // 1 MB/s
	defaultDownloadSpeed = 10 << 20 // 10 MB/s
	defaultPeerDelay     = 0.05
)

func main() {
	flags, err := config.ParseFlags(os.Args[1:])
	if err != nil {
		if err == flag.ErrHelp {
			return
		}
		log.Fatalf("flags: %v", err)
	}

	exp, err := config.LoadExperiment(flags.ExperimentFile)
	if err != nil {
		log.Fatalf("experiment: %v", err)
	}
	if exp.Mining.RealAvgBlockIntervalMinutes <= 0 {
		exp.Mining.RealAvgBlockIntervalMinutes = exp.Mining.TargetAvgBlockIntervalMinutes
	}

	seed := exp.Driver.Seed
	if seed == 0 {
		seed = scheduler.WallSeed()
	}
	rng := rand.New(rand.NewSource(seed))

	top, err := loadOrGenerateTopology(flags, exp)
	if err != nil {
		log.Fatalf("topology: %v", err)
	}

	sim := newSimulation(flags, exp, top, rng)
	sim.run(flags, exp)

	records := sim.snapshot()
	printSummary(records, sim.indexer)

	if exp.Driver.ResultsDir != "" {
		if err := archiveRun(exp.Driver.ResultsDir, records); err != nil {
			log.Printf("[blocksim] results archive: %v", err)
		}
	}

	if exp.Driver.RPCAddr != "" {
		serveRPC(exp, sim)
	}
}

// simulation bundles every collaborator the driver owns for the lifetime of
// one run.
type simulation struct {
	sched    *scheduler.HeapScheduler
	emitter  *events.Emitter
	indexer  *indexer.Indexer
	nodes    []*simnode.Node
	miners   []*miner.Loop
}

func newSimulation(flags *config.Flags, exp *config.Experiment, top *topology.Topology, rng *rand.Rand) *simulation {
	sched := scheduler.NewHeapScheduler()
	transport := peerlink.NewLocalTransport()
	emitter := events.NewEmitter()
	idx := indexer.New(emitter)
	exec := endorsement.NewExecutor(exp.Endorsement.Policy)

	sim := &simulation{sched: sched, emitter: emitter, indexer: idx}

	nodesByName := make(map[string]*simnode.Node, len(top.Nodes))
	speedsByName := make(map[string][2]float64, len(top.Nodes))

	for i, spec := range top.Nodes {
		addr := spec.Name
		role, isMiner := roleFor(i, flags)
		nodeType := nodeTypeFor(role)

		hashRate := spec.HashRate
		if isMiner && hashRate <= 0 {
			hashRate = 1
		}

		acc := stats.NewAccumulator(i, nodeType, isMiner, hashRate)
		mgr := peerlink.NewManager(addr, defaultUploadSpeed, defaultDownloadSpeed, sched, transport, acc, nil)
		transport.Register(addr, mgr)

		cfg := simnode.Config{
			NodeID:            i,
			Address:           addr,
			Role:              role,
			Miner:             isMiner,
			UploadSpeed:       defaultUploadSpeed,
			DownloadSpeed:     defaultDownloadSpeed,
			InvTimeoutSeconds: flags.InvTimeoutFor(isMiner),
			EndorserThreshold: simnode.DefaultEndorserThreshold,
		}
		node := simnode.New(cfg, sched, mgr, acc, emitter, exec, rng)

		nodesByName[addr] = node
		speedsByName[addr] = [2]float64{defaultUploadSpeed, defaultDownloadSpeed}
		sim.nodes = append(sim.nodes, node)

		if isMiner {
			loop := miner.New(node, miner.Config{
				HashRate:                      hashRate,
				BlockGenParameter:             exp.Mining.BlockGenParameter,
				BlockGenBinSizeMinutes:        exp.Mining.BlockGenBinSizeMinutes,
				TargetAvgBlockIntervalMinutes: exp.Mining.TargetAvgBlockIntervalMinutes,
				RealAvgBlockIntervalMinutes:   exp.Mining.RealAvgBlockIntervalMinutes,
				FixedBlockSizeBytes:           flags.BlockSize,
				AverageTransactionSizeBytes:   exp.Mining.AverageTransactionSizeBytes,
				HeadersSizeBytes:              exp.Mining.HeadersSizeBytes,
			}, rng)
			sim.miners = append(sim.miners, loop)
		}
	}

	// Wire peer links now that every node exists (peer speeds come from the
	// peer's own advertised upload/download, as recorded above).
	for _, spec := range top.Nodes {
		node, ok := nodesByName[spec.Name]
		if !ok {
			continue
		}
		for _, p := range spec.Peers {
			speeds, ok := speedsByName[p.Name]
			if !ok {
				log.Printf("[blocksim] node %s references unknown peer %s, skipping", spec.Name, p.Name)
				continue
			}
			node.AddPeer(p.Name, speeds[0], speeds[1])
		}
	}

	return sim
}

// roleFor assigns (role, isMiner) by position: the first Miners nodes are
// miner committers, the next Endorsers are endorsers, the next Clients are
// clients, and the remainder are plain (non-mining) committers.
func roleFor(index int, flags *config.Flags) (simnode.Role, bool) {
	switch {
	case index < flags.Miners:
		return simnode.RoleCommitter, true
	case index < flags.Miners+flags.Endorsers:
		return simnode.RoleEndorser, false
	case index < flags.Miners+flags.Endorsers+flags.Clients:
		return simnode.RoleClient, false
	default:
		return simnode.RoleCommitter, false
	}
}

func nodeTypeFor(role simnode.Role) stats.NodeType {
	switch role {
	case simnode.RoleEndorser:
		return stats.NodeEndorser
	case simnode.RoleClient:
		return stats.NodeClient
	default:
		return stats.NodeCommitter
	}
}

// run starts every node (and miner loop), drives the scheduler until
// flags.NoBlocks have been mined somewhere or the experiment's duration cap
// is hit, then stops everything cleanly.
func (s *simulation) run(flags *config.Flags, exp *config.Experiment) {
	for _, n := range s.nodes {
		n.Start(flags.CreatingTime)
	}
	for _, l := range s.miners {
		l.Start()
	}

	target := int64(flags.NoBlocks)
	deadline := exp.Driver.DurationSeconds
	for s.sched.Pending() > 0 {
		if deadline > 0 && s.sched.Now() >= deadline {
			break
		}
		if s.reachedTarget(target) {
			break
		}
		if !s.sched.Step() {
			break
		}
	}

	for _, l := range s.miners {
		l.Stop()
	}
	for _, n := range s.nodes {
		n.Stop()
	}
}

func (s *simulation) reachedTarget(target int64) bool {
	if target <= 0 {
		return false
	}
	for _, n := range s.nodes {
		if n.Chain().MaxHeight() >= target {
			return true
		}
	}
	return false
}

func (s *simulation) snapshot() []stats.Record {
	records := make([]stats.Record, 0, len(s.nodes))
	for _, n := range s.nodes {
		longest, inForks := n.Chain().ForkStats()
		n.Accumulator().SetForkStats(longest, inForks)
		records = append(records, n.Accumulator().Snapshot())
	}
	return records
}

func loadOrGenerateTopology(flags *config.Flags, exp *config.Experiment) (*topology.Topology, error) {
	if exp.Driver.TopologyFile != "" {
		return topology.ParseFile(exp.Driver.TopologyFile)
	}
	return generateFullMesh(flags), nil
}

// generateFullMesh is the reference topology used absent an explicit
// topology file: every node connects to every other node, miners get
// hash rate 1, everyone else 0.
func generateFullMesh(flags *config.Flags) *topology.Topology {
	t := &topology.Topology{}
	names := make([]string, flags.Nodes)
	for i := range names {
		names[i] = fmt.Sprintf("node%d", i)
	}
	for i, name := range names {
		hashRate := 0.0
		if i < flags.Miners {
			hashRate = 1
		}
		spec := topology.NodeSpec{Name: name, HashRate: hashRate}
		for j, peer := range names {
			if j == i {
				continue
			}
			spec.Peers = append(spec.Peers, topology.PeerLink{Name: peer, Delay: defaultPeerDelay})
		}
		t.Nodes = append(t.Nodes, spec)
	}
	return t
}

func printSummary(records []stats.Record, idx *indexer.Indexer) {
	bold := color.New(color.Bold)
	bold.Println("=== blocksim run summary ===")
	for _, r := range records {
		line := fmt.Sprintf("node %-3d type=%d miner=%-5v blocks=%-4d generated=%-4d forks(longest=%d,in=%d) timeouts=%d",
			r.NodeID, r.NodeType, r.Miner, r.TotalBlocks, r.MinerGeneratedBlocks, r.LongestFork, r.BlocksInForks, r.BlockTimeouts)
		if r.LongestFork > 0 {
			color.Red("%s", line)
		} else {
			fmt.Println(line)
		}
	}
	height, minerID := idx.Tip()
	color.Green("tip: height=%d minerId=%d", height, minerID)
	if forks := idx.Forks(); len(forks) > 0 {
		color.Yellow("forked heights: %d", len(forks))
	}
	bold.Println("--- miner summary ---")
	fmt.Print(stats.Summary(records))
}

func archiveRun(dir string, records []stats.Record) error {
	store, err := resultsdb.Open(dir)
	if err != nil {
		return err
	}
	defer store.Close()
	run := resultsdb.Run{
		ID:        resultsdb.NewRunID(),
		StartedAt: time.Now().Unix(),
		Records:   records,
	}
	return store.Save(run)
}

// simAdapter exposes the just-finished simulation over rpc.Sim, for
// post-run introspection.
type simAdapter struct {
	sim     *simulation
	records map[int]stats.Record
}

func newSimAdapter(sim *simulation, records []stats.Record) *simAdapter {
	byID := make(map[int]stats.Record, len(records))
	for _, r := range records {
		byID[r.NodeID] = r
	}
	return &simAdapter{sim: sim, records: byID}
}

func (a *simAdapter) Now() float64 { return a.sim.sched.Now() }

func (a *simAdapter) Stats(nodeID int) (stats.Record, bool) {
	r, ok := a.records[nodeID]
	return r, ok
}

func (a *simAdapter) AllStats() []stats.Record {
	out := make([]stats.Record, 0, len(a.records))
	for _, r := range a.records {
		out = append(out, r)
	}
	return out
}

func (a *simAdapter) Block(nodeID int, height int64, minerID int) (*core.Block, bool) {
	if nodeID < 0 || nodeID >= len(a.sim.nodes) {
		return nil, false
	}
	b := a.sim.nodes[nodeID].Chain().ReturnBlock(height, minerID)
	if b == nil {
		return nil, false
	}
	return b, true
}

func serveRPC(exp *config.Experiment, sim *simulation) {
	records := sim.snapshot()
	adapter := newSimAdapter(sim, records)
	handler := rpc.NewHandler(adapter)
	srv := rpc.NewServer(exp.Driver.RPCAddr, handler, []byte(exp.Driver.RPCJWTSecret))
	if err := srv.Start(); err != nil {
		log.Fatalf("rpc start: %v", err)
	}
	defer srv.Stop()
	log.Printf("[blocksim] RPC serving finished-run introspection on %s", exp.Driver.RPCAddr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Println("[blocksim] shutting down")
}
