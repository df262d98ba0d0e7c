// Package simnode is the central component: the per-node protocol state
// machine (spec §4.4-§4.6). It owns a node's view of the blockchain, its
// in-flight transaction sets, and the inventory/bandwidth collaborators,
// and translates inbound protocol.Message traffic into state transitions
// and outbound traffic.
package simnode

import (
	"math/rand"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/blocksim-go/blocksim/config"
	"github.com/blocksim-go/blocksim/core"
	"github.com/blocksim-go/blocksim/endorsement"
	"github.com/blocksim-go/blocksim/events"
	"github.com/blocksim-go/blocksim/inventory"
	"github.com/blocksim-go/blocksim/peerlink"
	"github.com/blocksim-go/blocksim/protocol"
	"github.com/blocksim-go/blocksim/scheduler"
	"github.com/blocksim-go/blocksim/stats"
)

// DefaultEndorserThreshold is how many distinct endorser executions a
// client waits for before broadcasting MSG_TRANS (spec §4.4, REPLY_TRANS row).
const DefaultEndorserThreshold = 10

// Config configures a single node at construction time. Peers are attached
// afterward via AddPeer, since their speeds are assigned by the topology
// generator (out of scope, spec §1).
type Config struct {
	NodeID            int
	Address           string
	Role              Role
	Miner             bool
	UploadSpeed       float64
	DownloadSpeed     float64
	InvTimeoutSeconds float64
	EndorserThreshold int
}

// Node is one simulated participant: a protocol state machine driven
// entirely by messages delivered through its peerlink.Manager and by timers
// scheduled against the shared scheduler.Scheduler. Per spec §5, a Node's
// state is mutated only by its own handlers; there is no concurrent access
// from other nodes.
type Node struct {
	id      int
	addr    string
	role    Role
	miner   bool
	peers   []string

	sched    scheduler.Scheduler
	link     *peerlink.Manager
	acc      *stats.Accumulator
	emitter  *events.Emitter
	executor *endorsement.Executor
	rng      *rand.Rand

	chain *core.Blockchain

	// transactions is the set of every transaction this node has ever
	// observed in any role, keyed by (nodeId, transId) (spec §3).
	transactions map[core.TransactionID]*core.Transaction

	// notValidated is the miner-only queue of transactions awaiting
	// inclusion in the next mined block.
	notValidated *core.PendingQueue

	// replyTransactions dedupes forwarded REPLY_TRANS messages. Keyed by
	// "nodeId/transId/execution" rather than plain TransactionID: distinct
	// endorsers' replies for the same transaction are distinct messages
	// that must each still reach the client, only identical (tx,
	// execution) re-deliveries get dropped.
	replyTransactions  mapset.Set[string]
	msgTransactions    mapset.Set[core.TransactionID]
	resultTransactions mapset.Set[core.TransactionID]

	// waitingEndorsers is client-only: per transaction, the set of distinct
	// endorser ids whose REPLY_TRANS has been observed.
	waitingEndorsers  map[core.TransactionID]mapset.Set[int]
	endorserThreshold int

	receivedNotValidated map[string]*core.Block
	onlyHeadersReceived  map[string]protocol.Header
	pendingHeaders       map[string]protocol.Header // hash -> header needed to (re)issue GET_HEADERS/GET_DATA

	inv *inventory.Coordinator

	seq         int
	nextTransID int

	creatingTransactionTime float64
	txTimerID               scheduler.EventID
	hasTxTimer              bool

	onHigherBlock func(block *core.Block)
}

// New constructs a Node. link must already be registered with the transport
// under cfg.Address; New installs itself as the link's delivery callback.
func New(cfg Config, sched scheduler.Scheduler, link *peerlink.Manager, acc *stats.Accumulator, emitter *events.Emitter, exec *endorsement.Executor, rng *rand.Rand) *Node {
	threshold := cfg.EndorserThreshold
	if threshold <= 0 {
		threshold = DefaultEndorserThreshold
	}
	n := &Node{
		id:                   cfg.NodeID,
		addr:                 cfg.Address,
		role:                 cfg.Role,
		miner:                cfg.Miner,
		sched:                sched,
		link:                 link,
		acc:                  acc,
		emitter:              emitter,
		executor:             exec,
		rng:                  rng,
		chain:                config.NewGenesisChain(),
		transactions:         make(map[core.TransactionID]*core.Transaction),
		notValidated:         core.NewPendingQueue(),
		replyTransactions:    mapset.NewThreadUnsafeSet[string](),
		msgTransactions:      mapset.NewThreadUnsafeSet[core.TransactionID](),
		resultTransactions:   mapset.NewThreadUnsafeSet[core.TransactionID](),
		waitingEndorsers:     make(map[core.TransactionID]mapset.Set[int]),
		endorserThreshold:    threshold,
		receivedNotValidated: make(map[string]*core.Block),
		onlyHeadersReceived:  make(map[string]protocol.Header),
		pendingHeaders:       make(map[string]protocol.Header),
	}
	n.inv = inventory.New(sched, cfg.InvTimeoutSeconds, rng, n.requestBlock, func(string) { acc.IncBlockTimeouts() })
	link.SetOnDeliver(n.onDeliver)
	return n
}

// AddPeer registers a peer address with its known bandwidth and adds it to
// this node's broadcast list.
func (n *Node) AddPeer(addr string, uploadSpeed, downloadSpeed float64) {
	n.peers = append(n.peers, addr)
	n.link.AddPeer(peerlink.PeerInfo{Address: addr, UploadSpeed: uploadSpeed, DownloadSpeed: downloadSpeed})
}

// SetHigherBlockHook installs the callback fired when AfterValidation sees a
// block extending past the current top (spec §4.5 step 2). miner.Loop uses
// this to cancel and reschedule its pending mining event.
func (n *Node) SetHigherBlockHook(fn func(block *core.Block)) {
	n.onHigherBlock = fn
}

// Start opens the node for business (spec §4.4 "on start"): statistics
// counters are already live via the Accumulator; if this node is a client,
// its first create_transaction call is scheduled immediately.
func (n *Node) Start(creatingTransactionTime float64) {
	n.acc.SetConnections(len(n.peers))
	if n.role == RoleClient {
		n.creatingTransactionTime = creatingTransactionTime
		n.txTimerID = n.sched.Schedule(0, n.createTransaction)
		n.hasTxTimer = true
	}
}

// Stop cancels all outstanding inventory timeouts and the client
// transaction timer (spec §4.4 "on stop"; the mining timer is owned and
// cancelled by miner.Loop).
func (n *Node) Stop() {
	if n.hasTxTimer {
		n.sched.Cancel(n.txTimerID)
		n.hasTxTimer = false
	}
	for hash := range n.pendingHeaders {
		n.inv.Resolve(hash)
	}
}

// ID, Address, NodeRole, IsMiner, Chain, PendingQueue, Peers, Accumulator,
// Scheduler and RNG expose the collaborators miner.Loop needs without
// opening up the rest of the node's internal state.
func (n *Node) ID() int                        { return n.id }
func (n *Node) Address() string                { return n.addr }
func (n *Node) NodeRole() Role                 { return n.role }
func (n *Node) IsMiner() bool                  { return n.miner }
func (n *Node) Chain() *core.Blockchain        { return n.chain }
func (n *Node) PendingQueue() *core.PendingQueue { return n.notValidated }
func (n *Node) Peers() []string {
	out := make([]string, len(n.peers))
	copy(out, n.peers)
	return out
}
func (n *Node) Accumulator() *stats.Accumulator { return n.acc }
func (n *Node) Scheduler() scheduler.Scheduler  { return n.sched }
func (n *Node) RNG() *rand.Rand                { return n.rng }

// InjectBlock hand-delivers a block directly to block-arrival handling,
// bypassing bandwidth scheduling. Used to seed out-of-order blocks in tests
// (spec §8 scenario S5); inbound BLOCK messages reach block arrival through
// handleBlock instead.
func (n *Node) InjectBlock(from string, block *core.Block) {
	n.blockArrival(from, block)
}

func (n *Node) broadcast(msg protocol.Message, except string) {
	for _, p := range n.peers {
		if p == except {
			continue
		}
		n.send(p, msg)
	}
}

func (n *Node) send(to string, msg protocol.Message) {
	n.seq++
	msg.Seq = n.seq
	msg.FromNodeID = n.id
	n.link.Send(to, msg)
}

// AdvertiseNewBlock sends an INV for block to every peer except except
// (spec §4.5 step 6 and §4.7 step 5 both funnel through here).
func (n *Node) AdvertiseNewBlock(block *core.Block, except string) {
	h := protocol.Header{Height: block.Height, MinerID: block.MinerID, ParentMinerID: block.ParentMinerID}
	n.broadcast(protocol.Message{Type: protocol.KindInv, Hashes: []protocol.Header{h}}, except)
}

func (n *Node) requestBlock(hash string, peer string) {
	h, ok := n.pendingHeaders[hash]
	if !ok {
		return
	}
	n.send(peer, protocol.Message{Type: protocol.KindGetHeaders, Hashes: []protocol.Header{h}})
	n.send(peer, protocol.Message{Type: protocol.KindGetData, Hashes: []protocol.Header{h}})
}
