package clock

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClock_StrictlyIncreasing(t *testing.T) {
	c := New()

	prev := c.Now()
	for i := 0; i < 1000; i++ {
		next := c.Now()
		require.Greater(t, next, prev)
		prev = next
	}
}

func TestClock_TracksWallClock(t *testing.T) {
	c := New()

	before := time.Now().Add(-time.Second)
	ts := c.Now()
	after := time.Now().Add(time.Second)

	assert.True(t, ts.Time().After(before))
	assert.True(t, ts.Time().Before(after))
}

func TestClock_ConcurrentUnique(t *testing.T) {
	c := New()

	const goroutines = 8
	const perGoroutine = 500

	var mu sync.Mutex
	seen := make(map[Timestamp]bool, goroutines*perGoroutine)

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				ts := c.Now()
				mu.Lock()
				seen[ts] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, goroutines*perGoroutine)
}

func TestClock_Last(t *testing.T) {
	c := New()
	assert.True(t, c.Last().IsZero())

	ts := c.Now()
	assert.Equal(t, ts, c.Last())
}

func TestTimestamp_Zero(t *testing.T) {
	var ts Timestamp
	assert.True(t, ts.IsZero())
	assert.False(t, Timestamp(1).IsZero())
}
