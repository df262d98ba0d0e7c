package core

import "fmt"

// Block is the unit gossiped between nodes. Identity is (Height, MinerID).
// Block "hashes" are not real cryptographic hashes: per the simulator's
// design, a block hash is the textual "{height}/{minerId}" string (see
// HashString).
type Block struct {
	Height        int64         `json:"height"`
	MinerID       int           `json:"miner_id"`
	Nonce         int64         `json:"nonce"`
	ParentMinerID int           `json:"parent_miner_id"`
	SizeBytes     int           `json:"size_bytes"`
	Timestamp     float64       `json:"timestamp"`
	TimeReceived  float64       `json:"time_received"`
	ReceivedFrom  string        `json:"received_from"`
	Transactions  []Transaction `json:"transactions"`
}

// NewBlock constructs a block with the given parameters. Transactions are
// copied by value so that later mutation of the caller's slice cannot
// retroactively change an already-gossiped block.
func NewBlock(height int64, minerID, parentMinerID int, sizeBytes int, timestamp float64, txs []Transaction) *Block {
	cp := make([]Transaction, len(txs))
	copy(cp, txs)
	return &Block{
		Height:        height,
		MinerID:       minerID,
		ParentMinerID: parentMinerID,
		SizeBytes:     sizeBytes,
		Timestamp:     timestamp,
		Transactions:  cp,
	}
}

// HashString returns the block-hash-string identity "{height}/{minerId}".
func (b *Block) HashString() string {
	return HashString(b.Height, b.MinerID)
}

// HashString builds the textual block-hash-string for a given (height, minerId).
func HashString(height int64, minerID int) string {
	return fmt.Sprintf("%d/%d", height, minerID)
}

// IsParentOf reports whether b is the parent of c: b.Height = c.Height-1 and
// b.MinerID = c.ParentMinerID.
func (b *Block) IsParentOf(c *Block) bool {
	return b.Height == c.Height-1 && b.MinerID == c.ParentMinerID
}

// IsGenesis reports whether this is the (0, 0) genesis block.
func (b *Block) IsGenesis() bool {
	return b.Height == 0 && b.MinerID == 0
}

// Genesis returns the canonical genesis block, always present at height 0.
func Genesis() *Block {
	return &Block{Height: 0, MinerID: 0, ParentMinerID: -1}
}
