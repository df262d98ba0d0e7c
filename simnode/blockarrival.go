package simnode

import (
	"github.com/blocksim-go/blocksim/core"
	"github.com/blocksim-go/blocksim/events"
	"github.com/blocksim-go/blocksim/protocol"
)

// validationSizeDivisor and validationTimeFactor implement the validation
// delay formula from spec §4.5: 0.174 * size_bytes / 238263 seconds.
const (
	validationTimeFactor  = 0.174
	validationSizeDivisor = 238263
)

// blockArrival implements spec §4.5 step 1-3: parse (already done by the
// caller), check whether the parent is known anywhere a node might know it,
// and either discard or hand off to Validate.
func (n *Node) blockArrival(from string, block *core.Block) {
	block.TimeReceived = n.sched.Now()
	block.ReceivedFrom = from
	hash := block.HashString()

	if block.Height > 0 && !n.parentKnownAnywhere(block.Height-1, block.ParentMinerID) {
		n.inv.Resolve(hash)
		delete(n.pendingHeaders, hash)
		return
	}

	n.receivedNotValidated[hash] = block
	n.inv.Resolve(hash)
	n.validate(block)
}

func (n *Node) parentKnownAnywhere(height int64, minerID int) bool {
	if n.chain.Has(height, minerID) || n.chain.IsOrphan(height, minerID) {
		return true
	}
	hash := core.HashString(height, minerID)
	if _, ok := n.receivedNotValidated[hash]; ok {
		return true
	}
	_, ok := n.onlyHeadersReceived[hash]
	return ok
}

// validate is spec §4.5's Validate: orphan the block if its parent is not
// yet in blocks, else run ValidateTransaction synchronously and schedule
// AfterValidation after the simulated validation delay.
func (n *Node) validate(block *core.Block) {
	if block.Height > 0 && !n.chain.Has(block.Height-1, block.ParentMinerID) {
		n.chain.AddOrphan(block)
		return
	}
	n.validateTransactions(block)
	validationTime := validationTimeFactor * float64(block.SizeBytes) / validationSizeDivisor
	n.sched.Schedule(validationTime, func() {
		n.afterValidation(block)
	})
}

// validateTransactions is ValidateTransaction from spec §4.5: mark every
// locally-known, not-yet-validated transaction in block as validated and
// notify the network; transactions with no local copy are stored
// pre-validated without notification.
func (n *Node) validateTransactions(block *core.Block) {
	for i := range block.Transactions {
		t := &block.Transactions[i]
		id := t.ID()
		local, ok := n.transactions[id]
		if !ok {
			cp := *t
			cp.Validated = true
			n.transactions[id] = &cp
			continue
		}
		if local.Validated {
			continue
		}
		local.Validated = true
		t.Validated = true
		n.acc.AddValidationTime(n.sched.Now() - local.Timestamp)
		n.notifyTransaction(local)
	}
}

func (n *Node) notifyTransaction(t *core.Transaction) {
	n.broadcast(protocol.Message{Type: protocol.KindResultTrans, Trans: t}, "")
}

// afterValidation is spec §4.5's AfterValidation: remove from the pending
// map, notify the miner hook on a new top, clear orphan status, update
// statistics, commit to the chain, advertise, and recurse into any orphan
// children now unblocked.
func (n *Node) afterValidation(block *core.Block) {
	hash := block.HashString()
	delete(n.receivedNotValidated, hash)

	if top := n.chain.CurrentTop(); top != nil && block.Height > top.Height && n.onHigherBlock != nil {
		n.onHigherBlock(block)
	}

	if n.chain.IsOrphan(block.Height, block.MinerID) {
		n.chain.RemoveOrphan(block)
	}

	n.acc.AddBlockReceiveTime(n.sched.Now() - block.Timestamp)
	n.acc.AddBlockPropagationTime(block.TimeReceived - block.Timestamp)
	n.acc.AddBlockSize(float64(block.SizeBytes))
	n.acc.IncTotalBlocks()

	n.chain.Add(block)
	longest, inForks := n.chain.ForkStats()
	n.acc.SetForkStats(longest, inForks)

	n.AdvertiseNewBlock(block, block.ReceivedFrom)

	if n.emitter != nil {
		n.emitter.Emit(events.Event{Type: events.TypeBlockValidated, NodeID: n.id, Height: block.Height, MinerID: block.MinerID})
	}

	for _, child := range n.chain.OrphanChildren(block) {
		n.validate(child)
	}
}
