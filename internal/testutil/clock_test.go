package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/siltlabs/silt/internal/clock"
)

func TestStepClock_Sequence(t *testing.T) {
	c := NewStepClock(clock.Timestamp(100), 10)

	assert.Equal(t, clock.Timestamp(100), c.Now())
	assert.Equal(t, clock.Timestamp(110), c.Now())
	assert.Equal(t, clock.Timestamp(120), c.Now())
}

func TestStepClock_PeekDoesNotAdvance(t *testing.T) {
	c := NewStepClock(clock.Timestamp(5), 1)

	assert.Equal(t, clock.Timestamp(5), c.Peek())
	assert.Equal(t, clock.Timestamp(5), c.Peek())
	assert.Equal(t, clock.Timestamp(5), c.Now())
	assert.Equal(t, clock.Timestamp(6), c.Peek())
}

func TestStepClock_ConcurrentUnique(t *testing.T) {
	c := NewStepClock(clock.Timestamp(0), 1)

	const n = 100
	var mu sync.Mutex
	seen := make(map[clock.Timestamp]bool, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ts := c.Now()
			mu.Lock()
			seen[ts] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, n)
}
