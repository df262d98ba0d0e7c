package simnode

import (
	"github.com/blocksim-go/blocksim/core"
	"github.com/blocksim-go/blocksim/protocol"
)

// createTransaction implements spec §4.6: assign a fresh transId, timestamp
// with now, store locally, broadcast REQUEST_TRANS, and reschedule at a
// uniformly random interval in [1, creatingTransactionTime] seconds.
func (n *Node) createTransaction() {
	n.nextTransID++
	tx := core.NewTransaction(n.id, n.nextTransID, n.sched.Now())
	n.transactions[tx.ID()] = tx
	n.acc.IncNodeGeneratedTransaction()
	n.broadcast(protocol.Message{Type: protocol.KindRequestTrans, Trans: tx}, "")

	delay := n.creatingTransactionTime
	if n.creatingTransactionTime > 1 {
		delay = 1 + n.rng.Float64()*(n.creatingTransactionTime-1)
	}
	n.txTimerID = n.sched.Schedule(delay, n.createTransaction)
	n.hasTxTimer = true
}
