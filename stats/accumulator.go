package stats

import (
	"sync"

	"github.com/blocksim-go/blocksim/protocol"
)

// runningMean tracks an incremental mean: count and current mean.
type runningMean struct {
	n    int
	mean float64
}

func (r *runningMean) update(sample float64) float64 {
	r.n++
	r.mean += (sample - r.mean) / float64(r.n)
	return r.mean
}

// Accumulator is the thread-safe per-node statistics accumulator; one
// instance lives for the lifetime of a node and is finalized via Snapshot
// at stop.
type Accumulator struct {
	mu sync.Mutex

	nodeID   int
	nodeType NodeType
	miner    bool
	hashRate float64

	blockReceiveTime     runningMean
	blockPropagationTime runningMean
	blockSize            runningMean
	minerBlockGenInterval runningMean
	minerBlockSize        runningMean
	endorsementTime       runningMean
	orderingTime          runningMean
	validationTime        runningMean
	latency               runningMean
	numberOfTransactions  runningMean

	totalBlocks              int
	minerGeneratedBlocks     int
	longestFork              int
	blocksInForks            int
	connections              int
	blockTimeouts            int
	nodeGeneratedTransaction int

	bytes map[protocol.Kind][2]int64 // [0]=received [1]=sent
}

// NewAccumulator creates an Accumulator for a node.
func NewAccumulator(nodeID int, nodeType NodeType, miner bool, hashRate float64) *Accumulator {
	return &Accumulator{
		nodeID:   nodeID,
		nodeType: nodeType,
		miner:    miner,
		hashRate: hashRate,
		bytes:    make(map[protocol.Kind][2]int64),
	}
}

// RecordSent implements peerlink.StatsSink.
func (a *Accumulator) RecordSent(kind protocol.Kind, bytes int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	e := a.bytes[kind]
	e[1] += int64(bytes)
	a.bytes[kind] = e
}

// RecordReceived implements peerlink.StatsSink.
func (a *Accumulator) RecordReceived(kind protocol.Kind, bytes int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	e := a.bytes[kind]
	e[0] += int64(bytes)
	a.bytes[kind] = e
}

func (a *Accumulator) AddBlockReceiveTime(v float64)     { a.mu.Lock(); a.blockReceiveTime.update(v); a.mu.Unlock() }
func (a *Accumulator) AddBlockPropagationTime(v float64) { a.mu.Lock(); a.blockPropagationTime.update(v); a.mu.Unlock() }
func (a *Accumulator) AddBlockSize(v float64)            { a.mu.Lock(); a.blockSize.update(v); a.mu.Unlock() }
func (a *Accumulator) AddMinerBlockGenInterval(v float64) {
	a.mu.Lock()
	a.minerBlockGenInterval.update(v)
	a.mu.Unlock()
}
func (a *Accumulator) AddMinerBlockSize(v float64) { a.mu.Lock(); a.minerBlockSize.update(v); a.mu.Unlock() }
func (a *Accumulator) AddEndorsementTime(v float64) { a.mu.Lock(); a.endorsementTime.update(v); a.mu.Unlock() }
func (a *Accumulator) AddOrderingTime(v float64)    { a.mu.Lock(); a.orderingTime.update(v); a.mu.Unlock() }
func (a *Accumulator) AddValidationTime(v float64)  { a.mu.Lock(); a.validationTime.update(v); a.mu.Unlock() }
func (a *Accumulator) AddLatency(v float64)         { a.mu.Lock(); a.latency.update(v); a.mu.Unlock() }
func (a *Accumulator) AddNumberOfTransactions(v float64) {
	a.mu.Lock()
	a.numberOfTransactions.update(v)
	a.mu.Unlock()
}

func (a *Accumulator) IncTotalBlocks()              { a.mu.Lock(); a.totalBlocks++; a.mu.Unlock() }
func (a *Accumulator) IncMinerGeneratedBlocks()     { a.mu.Lock(); a.minerGeneratedBlocks++; a.mu.Unlock() }
func (a *Accumulator) IncBlockTimeouts()            { a.mu.Lock(); a.blockTimeouts++; a.mu.Unlock() }
func (a *Accumulator) IncNodeGeneratedTransaction()  { a.mu.Lock(); a.nodeGeneratedTransaction++; a.mu.Unlock() }
func (a *Accumulator) SetConnections(n int)         { a.mu.Lock(); a.connections = n; a.mu.Unlock() }
func (a *Accumulator) SetForkStats(longest, in int) {
	a.mu.Lock()
	a.longestFork = longest
	a.blocksInForks = in
	a.mu.Unlock()
}

// Snapshot returns the finalized Record (spec §6).
func (a *Accumulator) Snapshot() Record {
	a.mu.Lock()
	defer a.mu.Unlock()
	inv := a.bytes[protocol.KindInv]
	getHeaders := a.bytes[protocol.KindGetHeaders]
	headers := a.bytes[protocol.KindHeaders]
	getData := a.bytes[protocol.KindGetData]
	block := a.bytes[protocol.KindBlock]
	return Record{
		NodeID:                       a.nodeID,
		MeanBlockReceiveTime:         a.blockReceiveTime.mean,
		MeanBlockPropagationTime:     a.blockPropagationTime.mean,
		MeanBlockSize:                a.blockSize.mean,
		TotalBlocks:                  a.totalBlocks,
		Miner:                        a.miner,
		MinerGeneratedBlocks:         a.minerGeneratedBlocks,
		MinerAverageBlockGenInterval: a.minerBlockGenInterval.mean,
		MinerAverageBlockSize:        a.minerBlockSize.mean,
		HashRate:                     a.hashRate,
		InvReceivedBytes:             inv[0],
		InvSentBytes:                 inv[1],
		GetHeadersReceivedBytes:      getHeaders[0],
		GetHeadersSentBytes:          getHeaders[1],
		HeadersReceivedBytes:         headers[0],
		HeadersSentBytes:             headers[1],
		GetDataReceivedBytes:         getData[0],
		GetDataSentBytes:             getData[1],
		BlockReceivedBytes:           block[0],
		BlockSentBytes:               block[1],
		LongestFork:                  a.longestFork,
		BlocksInForks:                a.blocksInForks,
		Connections:                  a.connections,
		BlockTimeouts:                a.blockTimeouts,
		NodeGeneratedTransaction:     a.nodeGeneratedTransaction,
		MeanEndorsementTime:          a.endorsementTime.mean,
		MeanOrderingTime:             a.orderingTime.mean,
		MeanValidationTime:           a.validationTime.mean,
		MeanLatency:                  a.latency.mean,
		NodeType:                     a.nodeType,
		MeanNumberOfTransactions:     a.numberOfTransactions.mean,
	}
}
