// Package core implements the chain-local data model: transactions, blocks,
// and the fork-aware block store each node keeps in memory.
package core

import "fmt"

// Transaction is the atomic unit endorsed, ordered, validated, and finally
// included in a block. Identity is (NodeID, TransID); once Validated becomes
// true it never reverts.
type Transaction struct {
	NodeID    int     `json:"node_id"`
	TransID   int     `json:"trans_id"`
	SizeBytes int     `json:"size_bytes"`
	Timestamp float64 `json:"timestamp"`
	Validated bool    `json:"validated"`
	// Execution holds the id of the endorser that executed it, 0 = unexecuted.
	Execution int `json:"execution"`
}

// DefaultTransactionSize is used when a transaction is created without an
// explicit size.
const DefaultTransactionSize = 100

// NewTransaction builds an unexecuted, unvalidated transaction. All fields
// are explicitly initialized (the original ns-3 model left them undefined
// when default-constructed; this always sets every field).
func NewTransaction(nodeID, transID int, timestamp float64) *Transaction {
	return &Transaction{
		NodeID:    nodeID,
		TransID:   transID,
		SizeBytes: DefaultTransactionSize,
		Timestamp: timestamp,
		Validated: false,
		Execution: 0,
	}
}

// ID returns the (nodeID, transID) identity as a map key.
func (t *Transaction) ID() TransactionID {
	return TransactionID{NodeID: t.NodeID, TransID: t.TransID}
}

// TransactionID is the identity key (nodeId, transId).
type TransactionID struct {
	NodeID  int
	TransID int
}

func (id TransactionID) String() string {
	return fmt.Sprintf("%d/%d", id.NodeID, id.TransID)
}
