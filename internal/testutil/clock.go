// Package testutil provides test doubles shared across packages.
package testutil

import (
	"sync"

	"github.com/siltlabs/silt/internal/clock"
)

// StepClock is a deterministic clock.Source for tests: it starts at a
// fixed timestamp and advances by a fixed step on every read, so tests
// can assert exact timestamp values.
//
// Thread-safety: all methods are safe for concurrent use via internal
// mutex.
type StepClock struct {
	mu   sync.Mutex
	next clock.Timestamp
	step int64
}

// NewStepClock creates a clock whose first Now() returns start and whose
// subsequent reads advance by step nanoseconds.
func NewStepClock(start clock.Timestamp, step int64) *StepClock {
	return &StepClock{next: start, step: step}
}

// Now returns the next timestamp in the sequence.
func (c *StepClock) Now() clock.Timestamp {
	c.mu.Lock()
	defer c.mu.Unlock()
	ts := c.next
	c.next += clock.Timestamp(c.step)
	return ts
}

// Peek returns the timestamp the next Now() will produce, without
// advancing.
func (c *StepClock) Peek() clock.Timestamp {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.next
}
