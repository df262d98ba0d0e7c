// Package peerlink models bandwidth-constrained message delivery between
// peers (spec §4.3): control messages are delivered immediately (bandwidth
// counters still increment), while BLOCK messages are scheduled to arrive
// at a time determined by the slower of the sender's upload and the
// receiver's download speed, serialized against other concurrent transfers
// via a per-node FIFO of projected completion times.
package peerlink

import (
	"log"

	"github.com/blocksim-go/blocksim/protocol"
	"github.com/blocksim-go/blocksim/scheduler"
)

// Transport delivers framed bytes between addresses. The real network
// simulation kernel (TCP-like reliable byte streams between endpoints) is an
// external collaborator per spec §1; this interface is all the peerlink
// package depends on. LocalTransport below is the in-process reference
// implementation used by tests and cmd/blocksim.
type Transport interface {
	DeliverRaw(from, to string, data []byte)
}

// StatsSink records bandwidth usage; see stats.Accumulator for the
// production implementation.
type StatsSink interface {
	RecordSent(kind protocol.Kind, bytes int)
	RecordReceived(kind protocol.Kind, bytes int)
}

// PeerInfo is what a node knows locally about one of its peers: its address
// and advertised upload/download speed in bytes/second (spec §3's
// "per-peer download/upload speeds").
type PeerInfo struct {
	Address       string
	UploadSpeed   float64
	DownloadSpeed float64
}

// Manager is one node's view of all its peer links: it tracks the node's
// own upload/download capacity, the per-peer speeds it has learned, and the
// send/receive FIFOs used to serialize bandwidth accounting (spec §3's
// sendBlockTimes / receiveBlockTimes).
type Manager struct {
	selfAddr          string
	uploadSpeed       float64
	downloadSpeed     float64
	peers             map[string]PeerInfo
	framers           map[string]*protocol.Framer
	sendBlockTimes    []float64
	receiveBlockTimes []float64

	sched    scheduler.Scheduler
	transport Transport
	sink     StatsSink
	onDeliver func(fromAddr string, msg protocol.Message)
}

// NewManager creates a Manager for selfAddr with the given own upload and
// download speed (bytes/second).
func NewManager(selfAddr string, uploadSpeed, downloadSpeed float64, sched scheduler.Scheduler, transport Transport, sink StatsSink, onDeliver func(string, protocol.Message)) *Manager {
	return &Manager{
		selfAddr:      selfAddr,
		uploadSpeed:   uploadSpeed,
		downloadSpeed: downloadSpeed,
		peers:         make(map[string]PeerInfo),
		framers:       make(map[string]*protocol.Framer),
		sched:         sched,
		transport:     transport,
		sink:          sink,
		onDeliver:     onDeliver,
	}
}

// AddPeer registers (or updates) a peer's known address and speeds.
func (m *Manager) AddPeer(info PeerInfo) {
	m.peers[info.Address] = info
}

// SetOnDeliver installs the callback invoked for every reassembled inbound
// message. Exists so a Manager can be constructed before the node object
// that owns its message-handling logic.
func (m *Manager) SetOnDeliver(fn func(fromAddr string, msg protocol.Message)) {
	m.onDeliver = fn
}

// Peers returns the addresses of all known peers, in no particular order.
func (m *Manager) Peers() []string {
	out := make([]string, 0, len(m.peers))
	for addr := range m.peers {
		out = append(out, addr)
	}
	return out
}

// Send delivers msg to the peer at `to`. Control messages (everything
// except BLOCK) are delivered immediately at the current virtual time,
// bandwidth counters incremented but no arrival delay modeled (spec §4.3).
// BLOCK messages are scheduled per the bandwidth model below.
func (m *Manager) Send(to string, msg protocol.Message) {
	data, err := protocol.Encode(msg)
	if err != nil {
		log.Printf("[peerlink] encode failed for %s: %v", msg.Type, err)
		return
	}
	size := msg.EstimateSize()
	if m.sink != nil {
		m.sink.RecordSent(msg.Type, size)
	}
	if msg.Type != protocol.KindBlock {
		m.transport.DeliverRaw(m.selfAddr, to, data)
		return
	}

	peer, ok := m.peers[to]
	if !ok {
		// Lazy-create: treat an unknown peer as symmetric with our own speed
		// (spec §7: "send to not-yet-connected peer" is not fatal).
		peer = PeerInfo{Address: to, UploadSpeed: m.uploadSpeed, DownloadSpeed: m.downloadSpeed}
		m.peers[to] = peer
	}

	rate := min(m.uploadSpeed, peer.DownloadSpeed)
	xferTime := float64(size) / rate

	base := m.sched.Now()
	if n := len(m.sendBlockTimes); n > 0 && m.sendBlockTimes[n-1] > base {
		base = m.sendBlockTimes[n-1]
	}
	completion := base + xferTime
	m.sendBlockTimes = append(m.sendBlockTimes, completion)

	delay := completion - m.sched.Now()
	m.sched.Schedule(delay, func() {
		m.transport.DeliverRaw(m.selfAddr, to, data)
	})
}

// Receive is called by the transport when bytes arrive from `from`. It
// reassembles framed messages and, for each one, records receive-side
// bandwidth bookkeeping and invokes onDeliver.
func (m *Manager) Receive(from string, data []byte) {
	f, ok := m.framers[from]
	if !ok {
		f = protocol.NewFramer()
		m.framers[from] = f
	}
	for _, msg := range f.Feed(data) {
		size := msg.EstimateSize()
		if m.sink != nil {
			m.sink.RecordReceived(msg.Type, size)
		}
		if msg.Type == protocol.KindBlock {
			now := m.sched.Now()
			base := now
			if n := len(m.receiveBlockTimes); n > 0 && m.receiveBlockTimes[n-1] > base {
				base = m.receiveBlockTimes[n-1]
			}
			xferTime := float64(size) / m.downloadSpeed
			m.receiveBlockTimes = append(m.receiveBlockTimes, base+xferTime)
		}
		if m.onDeliver != nil {
			m.onDeliver(from, msg)
		}
	}
}
