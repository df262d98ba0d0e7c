// Package protocol defines the ten wire message kinds exchanged between
// nodes and the self-delimited framing used to send them over a peer's byte
// stream (spec §4.2).
package protocol

import "github.com/blocksim-go/blocksim/core"

// Kind identifies a protocol message type.
type Kind string

const (
	KindInv          Kind = "INV"
	KindRequestTrans  Kind = "REQUEST_TRANS"
	KindGetHeaders    Kind = "GET_HEADERS"
	KindHeaders       Kind = "HEADERS"
	KindGetData       Kind = "GET_DATA"
	KindBlock         Kind = "BLOCK"
	KindNoMessage     Kind = "NO_MESSAGE"
	KindReplyTrans    Kind = "REPLY_TRANS"
	KindMsgTrans      Kind = "MSG_TRANS"
	KindResultTrans   Kind = "RESULT_TRANS"
)

// Header is the fixed metadata present on every block advertised/requested
// over the wire: its block-hash-string pair plus enough parentage to let a
// HEADERS recipient detect an orphaned header chain without fetching the
// full body.
type Header struct {
	Height        int64 `json:"height"`
	MinerID       int   `json:"miner_id"`
	ParentMinerID int   `json:"parent_miner_id"`
}

// Message is the envelope for all protocol traffic. Every message carries
// at minimum Type and a monotonically increasing Seq ("message" in spec
// §4.2); the remaining fields are populated depending on Type.
type Message struct {
	Type Kind `json:"type"`
	Seq  int  `json:"message"`

	// INV / GET_HEADERS / GET_DATA: the advertised/requested block hashes.
	Hashes []Header `json:"hashes,omitempty"`

	// HEADERS: the header records being returned.
	Headers []Header `json:"headers,omitempty"`

	// BLOCK: the full block body.
	Block *core.Block `json:"block,omitempty"`

	// REQUEST_TRANS / REPLY_TRANS / MSG_TRANS / RESULT_TRANS: the transaction
	// in question. Execution is filled by the endorser on REPLY_TRANS.
	Trans *core.Transaction `json:"trans,omitempty"`

	// FromNodeID identifies the logical sender (used for statistics and for
	// excluding the sender address when forwarding).
	FromNodeID int `json:"from_node_id"`
}

// EstimateSize returns an approximate wire size in bytes, used for bandwidth
// accounting (spec §4.3). Control messages are cheap; BLOCK messages scale
// with the embedded block's declared size.
func (m Message) EstimateSize() int {
	const headerBytes = 64
	switch m.Type {
	case KindBlock:
		if m.Block != nil {
			return headerBytes + m.Block.SizeBytes
		}
		return headerBytes
	case KindInv, KindGetHeaders, KindHeaders, KindGetData:
		return headerBytes + len(m.Hashes)*16 + len(m.Headers)*16
	default:
		return headerBytes
	}
}
