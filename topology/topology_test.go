package topology

import (
	"strings"
	"testing"
)

func TestParseReaderBasic(t *testing.T) {
	input := "# comment\nminer1 10 miner2 0.1 committer1 0.2\ncommitter1 0 miner1 0.2\n\n"
	top, err := ParseReader(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if len(top.Nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(top.Nodes))
	}
	if top.Nodes[0].Name != "miner1" || top.Nodes[0].HashRate != 10 {
		t.Fatalf("unexpected first node: %+v", top.Nodes[0])
	}
	if len(top.Nodes[0].Peers) != 2 || top.Nodes[0].Peers[1].Name != "committer1" {
		t.Fatalf("unexpected peers: %+v", top.Nodes[0].Peers)
	}
}

func TestParseReaderRejectsOddPeerFields(t *testing.T) {
	_, err := ParseReader(strings.NewReader("m1 5 peerOnly\n"))
	if err == nil {
		t.Fatal("expected error for unpaired peer/delay field")
	}
}
