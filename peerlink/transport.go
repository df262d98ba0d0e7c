package peerlink

import "sync"

// LocalTransport is the reference, in-process Transport: it delivers bytes
// directly to the destination Manager's Receive method. It stands in for
// the real network-simulation kernel (spec §1), which is assumed to provide
// reliable, FIFO, exactly-once delivery between any two endpoints.
type LocalTransport struct {
	mu       sync.RWMutex
	managers map[string]*Manager
}

// NewLocalTransport returns an empty LocalTransport.
func NewLocalTransport() *LocalTransport {
	return &LocalTransport{managers: make(map[string]*Manager)}
}

// Register associates addr with the Manager that should receive traffic
// sent to it.
func (t *LocalTransport) Register(addr string, m *Manager) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.managers[addr] = m
}

// DeliverRaw hands data to the registered Manager for `to`, if any.
func (t *LocalTransport) DeliverRaw(from, to string, data []byte) {
	t.mu.RLock()
	m, ok := t.managers[to]
	t.mu.RUnlock()
	if !ok {
		return
	}
	m.Receive(from, data)
}
