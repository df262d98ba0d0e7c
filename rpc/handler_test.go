package rpc

import (
	"encoding/json"
	"testing"

	"github.com/blocksim-go/blocksim/core"
	"github.com/blocksim-go/blocksim/stats"
)

type fakeSim struct {
	now     float64
	records map[int]stats.Record
}

func (f *fakeSim) Now() float64 { return f.now }
func (f *fakeSim) Stats(nodeID int) (stats.Record, bool) {
	r, ok := f.records[nodeID]
	return r, ok
}
func (f *fakeSim) AllStats() []stats.Record {
	out := make([]stats.Record, 0, len(f.records))
	for _, r := range f.records {
		out = append(out, r)
	}
	return out
}
func (f *fakeSim) Block(nodeID int, height int64, minerID int) (*core.Block, bool) {
	if height == 0 && minerID == 0 {
		return core.Genesis(), true
	}
	return nil, false
}

func TestDispatchSimNow(t *testing.T) {
	h := NewHandler(&fakeSim{now: 42})
	resp := h.Dispatch(Request{JSONRPC: "2.0", ID: 1, Method: "sim_now"})
	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}
	if resp.Result.(float64) != 42 {
		t.Fatalf("expected 42, got %v", resp.Result)
	}
}

func TestDispatchNodeGetStatsUnknownNode(t *testing.T) {
	h := NewHandler(&fakeSim{records: map[int]stats.Record{}})
	params, _ := json.Marshal(map[string]int{"node_id": 7})
	resp := h.Dispatch(Request{JSONRPC: "2.0", ID: 1, Method: "node_getStats", Params: params})
	if resp.Error == nil {
		t.Fatal("expected error for unknown node")
	}
}

func TestDispatchUnknownMethod(t *testing.T) {
	h := NewHandler(&fakeSim{})
	resp := h.Dispatch(Request{JSONRPC: "2.0", ID: 1, Method: "nonexistent"})
	if resp.Error == nil || resp.Error.Code != CodeMethodNotFound {
		t.Fatalf("expected CodeMethodNotFound, got %+v", resp.Error)
	}
}
