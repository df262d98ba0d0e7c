package stats

import (
	"fmt"
	"strings"
)

// Summary formats a final per-miner block-count table, the Go equivalent of
// the original ns-3 source's per-miner destructor printout (generated
// blocks against wall time). It supplements, rather than replaces, the
// full per-node Record already returned by Snapshot.
func Summary(records []Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-6s %-9s %7s %9s\n", "node", "miner", "blocks", "generated")
	for _, r := range records {
		if !r.Miner {
			continue
		}
		fmt.Fprintf(&b, "%-6d %-9v %7d %9d\n", r.NodeID, r.Miner, r.TotalBlocks, r.MinerGeneratedBlocks)
	}
	return b.String()
}
