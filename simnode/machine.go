package simnode

import (
	"fmt"
	"log"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/blocksim-go/blocksim/core"
	"github.com/blocksim-go/blocksim/protocol"
)

// onDeliver is the peerlink.Manager delivery callback: it routes a
// reassembled inbound message to the handler for its kind, gated on role
// per the table in spec §4.4.
func (n *Node) onDeliver(from string, msg protocol.Message) {
	switch msg.Type {
	case protocol.KindInv:
		n.handleInv(from, msg)
	case protocol.KindGetHeaders:
		n.handleGetHeaders(from, msg)
	case protocol.KindHeaders:
		n.handleHeaders(from, msg)
	case protocol.KindGetData:
		n.handleGetData(from, msg)
	case protocol.KindBlock:
		n.handleBlock(from, msg)
	case protocol.KindRequestTrans:
		n.handleRequestTrans(from, msg)
	case protocol.KindReplyTrans:
		n.handleReplyTrans(from, msg)
	case protocol.KindMsgTrans:
		n.handleMsgTrans(from, msg)
	case protocol.KindResultTrans:
		n.handleResultTrans(from, msg)
	case protocol.KindNoMessage:
		// no-op
	default:
		log.Printf("[simnode] node %d: unknown message type %q from %s", n.id, msg.Type, from)
	}
}

// handleInv: for each advertised hash not already known/orphan, record the
// advertising peer and (on first sighting) request it.
func (n *Node) handleInv(from string, msg protocol.Message) {
	if n.role == RoleClient {
		return
	}
	for _, h := range msg.Hashes {
		if n.chain.Has(h.Height, h.MinerID) || n.chain.IsOrphan(h.Height, h.MinerID) {
			continue
		}
		hash := core.HashString(h.Height, h.MinerID)
		n.pendingHeaders[hash] = h
		n.inv.Advertise(hash, from)
	}
}

// handleGetHeaders replies HEADERS with known headers for the requested
// hashes, drawn from blocks or receivedNotValidated.
func (n *Node) handleGetHeaders(from string, msg protocol.Message) {
	if n.role == RoleClient {
		return
	}
	var headers []protocol.Header
	for _, h := range msg.Hashes {
		if b := n.chain.ReturnBlock(h.Height, h.MinerID); b != nil {
			headers = append(headers, protocol.Header{Height: b.Height, MinerID: b.MinerID, ParentMinerID: b.ParentMinerID})
			continue
		}
		if b, ok := n.receivedNotValidated[core.HashString(h.Height, h.MinerID)]; ok {
			headers = append(headers, protocol.Header{Height: b.Height, MinerID: b.MinerID, ParentMinerID: b.ParentMinerID})
		}
	}
	if len(headers) == 0 {
		return
	}
	n.send(from, protocol.Message{Type: protocol.KindHeaders, Headers: headers})
}

// handleHeaders registers each header; if a header's parent is unknown, it
// requests the parent from the sender (orphan header chain, spec §4.4).
func (n *Node) handleHeaders(from string, msg protocol.Message) {
	if n.role == RoleClient {
		return
	}
	for _, h := range msg.Headers {
		hash := core.HashString(h.Height, h.MinerID)
		n.onlyHeadersReceived[hash] = h
		if h.Height == 0 {
			continue
		}
		if n.chain.Has(h.Height-1, h.ParentMinerID) {
			continue
		}
		parentHash := core.HashString(h.Height-1, h.ParentMinerID)
		if _, known := n.onlyHeadersReceived[parentHash]; known {
			continue
		}
		parentHeader := protocol.Header{Height: h.Height - 1, MinerID: h.ParentMinerID}
		n.pendingHeaders[parentHash] = parentHeader
		n.send(from, protocol.Message{Type: protocol.KindGetHeaders, Hashes: []protocol.Header{parentHeader}})
		n.send(from, protocol.Message{Type: protocol.KindGetData, Hashes: []protocol.Header{parentHeader}})
	}
}

// handleGetData replies BLOCK with the full body for each requested hash
// present in blocks; delivery bandwidth accounting happens in peerlink.
func (n *Node) handleGetData(from string, msg protocol.Message) {
	if n.role == RoleClient {
		return
	}
	for _, h := range msg.Hashes {
		if !n.chain.Has(h.Height, h.MinerID) {
			continue
		}
		b := n.chain.ReturnBlock(h.Height, h.MinerID)
		if b == nil {
			continue
		}
		n.send(from, protocol.Message{Type: protocol.KindBlock, Block: b})
	}
}

// handleBlock hands off to block-arrival processing (spec §4.5); by the
// time onDeliver fires, peerlink has already modeled the arrival delay.
func (n *Node) handleBlock(from string, msg protocol.Message) {
	if n.role == RoleClient {
		return
	}
	n.blockArrival(from, msg.Block)
}

// handleRequestTrans: record if unseen; endorsers execute and reply after a
// simulated execution delay, everyone else forwards except to the sender.
func (n *Node) handleRequestTrans(from string, msg protocol.Message) {
	if n.role == RoleClient {
		return
	}
	tx := msg.Trans
	id := tx.ID()
	if _, seen := n.transactions[id]; seen {
		return
	}
	cp := *tx
	n.transactions[id] = &cp

	if n.role == RoleEndorser {
		cp.Execution = n.id
		execTime := n.executor.Execute(&cp)
		n.acc.AddEndorsementTime(execTime)
		n.sched.Schedule(execTime, func() {
			n.send(from, protocol.Message{Type: protocol.KindReplyTrans, Trans: &cp})
		})
		return
	}
	n.broadcast(protocol.Message{Type: protocol.KindRequestTrans, Trans: tx}, from)
}

// handleReplyTrans: clients accumulate distinct endorser replies per
// transaction and broadcast MSG_TRANS once the threshold is reached;
// everyone else just forwards the reply toward its originator.
func (n *Node) handleReplyTrans(from string, msg protocol.Message) {
	tx := msg.Trans
	if n.role != RoleClient {
		replyKey := fmt.Sprintf("%s/%d", tx.ID(), tx.Execution)
		if n.replyTransactions.Contains(replyKey) {
			return
		}
		n.replyTransactions.Add(replyKey)
		n.broadcast(protocol.Message{Type: protocol.KindReplyTrans, Trans: tx}, from)
		return
	}
	id := tx.ID()
	set, ok := n.waitingEndorsers[id]
	if !ok {
		set = mapset.NewThreadUnsafeSet[int]()
		n.waitingEndorsers[id] = set
	}
	set.Add(tx.Execution)
	if set.Cardinality() >= n.endorserThreshold {
		n.broadcast(protocol.Message{Type: protocol.KindMsgTrans, Trans: tx}, "")
		delete(n.waitingEndorsers, id)
	}
}

// handleMsgTrans: record if unseen; miners push onto their mining queue,
// everyone else forwards except to the sender.
func (n *Node) handleMsgTrans(from string, msg protocol.Message) {
	if n.role == RoleClient {
		return
	}
	tx := msg.Trans
	id := tx.ID()
	if n.msgTransactions.Contains(id) {
		return
	}
	n.msgTransactions.Add(id)
	if n.miner {
		n.notValidated.Push(*tx)
		return
	}
	n.broadcast(protocol.Message{Type: protocol.KindMsgTrans, Trans: tx}, from)
}

// handleResultTrans: forward toward the originator unless this node is the
// originator, in which case update latency statistics.
func (n *Node) handleResultTrans(from string, msg protocol.Message) {
	tx := msg.Trans
	id := tx.ID()
	if n.resultTransactions.Contains(id) {
		return
	}
	n.resultTransactions.Add(id)
	if n.id != tx.NodeID {
		n.broadcast(protocol.Message{Type: protocol.KindResultTrans, Trans: tx}, from)
		return
	}
	n.acc.AddLatency(n.sched.Now() - tx.Timestamp)
}
