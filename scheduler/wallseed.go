package scheduler

import "time"

// WallSeed returns a PRNG seed derived from wall-clock time. The original
// ns-3 source's get_wall_time helper had a code path that fell off the end
// without returning a value; this restores a well-defined result so callers
// that want a different random stream on every run (rather than a fixed,
// reproducible one) have a real seed to start from.
func WallSeed() int64 {
	return time.Now().UnixNano()
}
