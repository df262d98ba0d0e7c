package protocol

import (
	"encoding/json"
	"log"

	lru "github.com/hashicorp/golang-lru/v2"
)

// malformedLogCap bounds how many distinct malformed-segment error strings
// a Framer remembers when suppressing repeats of the same error, so a peer
// stuck sending garbage can't flood the simulator's log output. An error
// evicted from that cache is logged again as if new.
const malformedLogCap = 32

// Delim is the single-byte frame terminator (spec §4.2): ASCII '#' (0x23).
const Delim = '#'

// Encode serializes msg as JSON and appends the frame delimiter. Multiple
// encoded messages may be concatenated before being handed to the transport,
// since each is self-delimited.
func Encode(msg Message) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	return append(data, Delim), nil
}

// Framer accumulates bytes received from one peer and yields complete,
// delimiter-terminated messages. One Framer is kept per sender address
// (the node's bufferedData map, spec §3).
type Framer struct {
	buf      []byte
	seenBad  *lru.Cache[string, int]
}

// NewFramer returns an empty Framer.
func NewFramer() *Framer {
	cache, _ := lru.New[string, int](malformedLogCap)
	return &Framer{seenBad: cache}
}

// Feed appends newly-arrived bytes and returns every complete message found.
// Malformed segments are logged and discarded; the framer continues with
// the next segment (spec §4.2, §7).
func (f *Framer) Feed(data []byte) []Message {
	f.buf = append(f.buf, data...)
	var out []Message
	for {
		idx := indexByte(f.buf, Delim)
		if idx < 0 {
			break
		}
		segment := f.buf[:idx]
		f.buf = f.buf[idx+1:]
		if len(segment) == 0 {
			continue
		}
		var msg Message
		if err := json.Unmarshal(segment, &msg); err != nil {
			f.logMalformed(err)
			continue
		}
		out = append(out, msg)
	}
	return out
}

// logMalformed logs err's first few occurrences, then silently counts the
// rest so a peer sending a steady stream of garbage can't flood the log.
func (f *Framer) logMalformed(err error) {
	key := err.Error()
	n, _ := f.seenBad.Get(key)
	n++
	f.seenBad.Add(key, n)
	if n <= 3 {
		log.Printf("[protocol] malformed message segment discarded: %v", err)
	} else if n == 4 {
		log.Printf("[protocol] malformed message segment discarded: %v (further repeats suppressed)", err)
	}
}

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}
