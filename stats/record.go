// Package stats accumulates the per-node running averages and counters
// exported at node teardown (spec §6).
package stats

// NodeType mirrors the wire-visible node-type enum used in REPLY_TRANS
// aggregation (spec §6).
type NodeType int

const (
	NodeCommitter NodeType = 0
	NodeEndorser  NodeType = 1
	NodeClient    NodeType = 2
	NodeOrder     NodeType = 3
)

// Record is the 31-field per-node statistics record produced at stop.
type Record struct {
	NodeID int `json:"node_id"`

	MeanBlockReceiveTime     float64 `json:"mean_block_receive_time"`
	MeanBlockPropagationTime float64 `json:"mean_block_propagation_time"`
	MeanBlockSize            float64 `json:"mean_block_size"`
	TotalBlocks              int     `json:"total_blocks"`

	Miner                      bool    `json:"miner"`
	MinerGeneratedBlocks       int     `json:"miner_generated_blocks"`
	MinerAverageBlockGenInterval float64 `json:"miner_average_block_gen_interval"`
	MinerAverageBlockSize      float64 `json:"miner_average_block_size"`
	HashRate                   float64 `json:"hash_rate"`

	InvReceivedBytes       int64 `json:"inv_received_bytes"`
	InvSentBytes           int64 `json:"inv_sent_bytes"`
	GetHeadersReceivedBytes int64 `json:"get_headers_received_bytes"`
	GetHeadersSentBytes    int64 `json:"get_headers_sent_bytes"`
	HeadersReceivedBytes   int64 `json:"headers_received_bytes"`
	HeadersSentBytes       int64 `json:"headers_sent_bytes"`
	GetDataReceivedBytes   int64 `json:"get_data_received_bytes"`
	GetDataSentBytes       int64 `json:"get_data_sent_bytes"`
	BlockReceivedBytes     int64 `json:"block_received_bytes"`
	BlockSentBytes         int64 `json:"block_sent_bytes"`

	LongestFork     int `json:"longest_fork"`
	BlocksInForks   int `json:"blocks_in_forks"`
	Connections     int `json:"connections"`
	BlockTimeouts   int `json:"block_timeouts"`

	NodeGeneratedTransaction int `json:"node_generated_transaction"`
	MeanEndorsementTime      float64 `json:"mean_endorsement_time"`
	MeanOrderingTime         float64 `json:"mean_ordering_time"`
	MeanValidationTime       float64 `json:"mean_validation_time"`
	MeanLatency              float64 `json:"mean_latency"`
	NodeType                 NodeType `json:"node_type"`
	MeanNumberOfTransactions float64 `json:"mean_number_of_transactions"`
}
