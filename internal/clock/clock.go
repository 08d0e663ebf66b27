// Package clock provides the node-local logical timestamp source used to
// stamp versions for cross-writer conflict resolution.
//
// Timestamps are hybrid: they track the wall clock at nanosecond
// resolution but are guaranteed strictly increasing on a single node,
// even when the wall clock stalls or steps backward. Ordering between
// writers is therefore causal-ish rather than exact, which is all the
// registration path needs - the timestamp is advisory there.
package clock

import (
	"sync/atomic"
	"time"
)

// Timestamp is a logical clock value: nanoseconds since the Unix epoch,
// strictly increasing per node. The zero value means "no timestamp".
type Timestamp int64

// Time converts the timestamp back to wall-clock time.
func (t Timestamp) Time() time.Time {
	return time.Unix(0, int64(t)).UTC()
}

// IsZero reports whether the timestamp is unset.
func (t Timestamp) IsZero() bool {
	return t == 0
}

func (t Timestamp) String() string {
	return t.Time().Format(time.RFC3339Nano)
}

// Source mints timestamps. Satisfied by *Clock; tests substitute a
// deterministic implementation.
type Source interface {
	Now() Timestamp
}

// Clock is a monotonic hybrid clock.
//
// Thread-safety: safe for concurrent use (atomic compare-and-swap).
// Every call to Now returns a unique, strictly increasing value.
type Clock struct {
	last atomic.Int64
}

// New creates a clock. The first Now() reflects the current wall time.
func New() *Clock {
	return &Clock{}
}

// Now returns the next timestamp: the current wall time, bumped past the
// previously issued value if the wall clock has not advanced.
func (c *Clock) Now() Timestamp {
	for {
		now := time.Now().UnixNano()
		last := c.last.Load()
		if now <= last {
			now = last + 1
		}
		if c.last.CompareAndSwap(last, now) {
			return Timestamp(now)
		}
	}
}

// Last returns the most recently issued timestamp without minting a new
// one. Zero if the clock has never been read.
func (c *Clock) Last() Timestamp {
	return Timestamp(c.last.Load())
}
