package rpc

import (
	"encoding/json"
	"fmt"

	"github.com/blocksim-go/blocksim/core"
	"github.com/blocksim-go/blocksim/stats"
)

// Sim is the read-only view into a running (or just-finished) simulation
// that the RPC layer exposes for introspection. cmd/blocksim's driver
// implements this over its live node set.
type Sim interface {
	Now() float64
	Stats(nodeID int) (stats.Record, bool)
	AllStats() []stats.Record
	Block(nodeID int, height int64, minerID int) (*core.Block, bool)
}

// Handler holds the dependencies needed to serve RPC methods.
type Handler struct {
	sim Sim
}

// NewHandler creates an RPC Handler over sim.
func NewHandler(sim Sim) *Handler {
	return &Handler{sim: sim}
}

// Dispatch routes an RPC request to the correct method.
func (h *Handler) Dispatch(req Request) Response {
	switch req.Method {
	case "sim_now":
		return okResponse(req.ID, h.sim.Now())
	case "node_getStats":
		return h.nodeGetStats(req)
	case "node_getAllStats":
		return okResponse(req.ID, h.sim.AllStats())
	case "chain_getBlock":
		return h.chainGetBlock(req)
	default:
		return errResponse(req.ID, CodeMethodNotFound, fmt.Sprintf("method %q not found", req.Method))
	}
}

func (h *Handler) nodeGetStats(req Request) Response {
	var params struct {
		NodeID int `json:"node_id"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errResponse(req.ID, CodeInvalidParams, "params: "+err.Error())
	}
	rec, ok := h.sim.Stats(params.NodeID)
	if !ok {
		return errResponse(req.ID, CodeNotFound, fmt.Sprintf("no such node %d", params.NodeID))
	}
	return okResponse(req.ID, rec)
}

func (h *Handler) chainGetBlock(req Request) Response {
	var params struct {
		NodeID  int   `json:"node_id"`
		Height  int64 `json:"height"`
		MinerID int   `json:"miner_id"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errResponse(req.ID, CodeInvalidParams, "params: "+err.Error())
	}
	block, ok := h.sim.Block(params.NodeID, params.Height, params.MinerID)
	if !ok {
		return errResponse(req.ID, CodeNotFound, "no such block")
	}
	return okResponse(req.ID, block)
}
