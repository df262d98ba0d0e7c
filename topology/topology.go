// Package topology defines the interface the out-of-scope topology
// generator (spec §1) is expected to satisfy, plus a reference line-format
// loader grounded on LarryRuane-minesim's network file parser: one line per
// node, listing its hash rate and a flat list of (peer name, link delay)
// pairs.
package topology

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// PeerLink names an outbound connection and its one-way delay in seconds.
// The delay is parsed and stored but nothing in the simulator reads it:
// control messages arrive with no delay and BLOCK arrival timing is governed
// by peerlink's bandwidth model.
type PeerLink struct {
	Name  string
	Delay float64
}

// NodeSpec is one line of topology: a node's name, hash rate (0 for
// non-miners), and outbound peer links.
type NodeSpec struct {
	Name     string
	HashRate float64
	Peers    []PeerLink
}

// Topology is the full parsed node set, preserving file order.
type Topology struct {
	Nodes []NodeSpec
}

// ParseFile reads a topology file from path. See ParseReader for the format.
func ParseFile(path string) (*Topology, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("topology: open %s: %w", path, err)
	}
	defer f.Close()
	return ParseReader(f)
}

// ParseReader parses the line-oriented format: each line is
// "name hashrate peer1 delay1 peer2 delay2 ...". Blank lines and lines
// starting with '#' are skipped.
func ParseReader(r io.Reader) (*Topology, error) {
	t := &Topology{}
	scan := bufio.NewScanner(r)
	lineNo := 0
	for scan.Scan() {
		lineNo++
		line := strings.TrimSpace(scan.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, fmt.Errorf("topology: line %d: need at least name and hashrate", lineNo)
		}
		hr, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("topology: line %d: bad hashrate %q: %w", lineNo, fields[1], err)
		}
		spec := NodeSpec{Name: fields[0], HashRate: hr}
		rest := fields[2:]
		if len(rest)%2 != 0 {
			return nil, fmt.Errorf("topology: line %d: peer/delay fields must come in pairs", lineNo)
		}
		for i := 0; i < len(rest); i += 2 {
			delay, err := strconv.ParseFloat(rest[i+1], 64)
			if err != nil {
				return nil, fmt.Errorf("topology: line %d: bad delay for peer %q: %w", lineNo, rest[i], err)
			}
			spec.Peers = append(spec.Peers, PeerLink{Name: rest[i], Delay: delay})
		}
		t.Nodes = append(t.Nodes, spec)
	}
	if err := scan.Err(); err != nil {
		return nil, fmt.Errorf("topology: scan: %w", err)
	}
	return t, nil
}
