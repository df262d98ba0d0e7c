package protocol

import "testing"

func TestEncodeDecodeRoundTrip(t *testing.T) {
	msg := Message{Type: KindInv, Seq: 1, Hashes: []Header{{Height: 2, MinerID: 3}}}
	data, err := Encode(msg)
	if err != nil {
		t.Fatal(err)
	}
	f := NewFramer()
	got := f.Feed(data)
	if len(got) != 1 {
		t.Fatalf("got %d messages, want 1", len(got))
	}
	if got[0].Type != KindInv || got[0].Hashes[0].Height != 2 {
		t.Fatalf("round-trip mismatch: %+v", got[0])
	}
}

func TestFramerSplitsConcatenatedMessages(t *testing.T) {
	a, _ := Encode(Message{Type: KindInv, Seq: 1})
	b, _ := Encode(Message{Type: KindHeaders, Seq: 2})
	f := NewFramer()
	got := f.Feed(append(a, b...))
	if len(got) != 2 || got[0].Type != KindInv || got[1].Type != KindHeaders {
		t.Fatalf("expected two split messages, got %+v", got)
	}
}

func TestFramerHandlesPartialFeeds(t *testing.T) {
	data, _ := Encode(Message{Type: KindGetData, Seq: 7})
	f := NewFramer()
	if msgs := f.Feed(data[:len(data)-3]); len(msgs) != 0 {
		t.Fatalf("partial feed should yield no messages, got %d", len(msgs))
	}
	if msgs := f.Feed(data[len(data)-3:]); len(msgs) != 1 {
		t.Fatalf("completing the frame should yield exactly one message, got %d", len(msgs))
	}
}

func TestFramerDiscardsMalformedSegmentAndContinues(t *testing.T) {
	good, _ := Encode(Message{Type: KindInv, Seq: 1})
	bad := append([]byte("{not json"), Delim)
	f := NewFramer()
	got := f.Feed(append(bad, good...))
	if len(got) != 1 || got[0].Type != KindInv {
		t.Fatalf("expected the malformed segment to be skipped, got %+v", got)
	}
}
