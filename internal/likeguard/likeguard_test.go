package likeguard

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAddFirstWriterWins(t *testing.T) {
	g := New(nil)

	assert.True(t, g.Add("message_like:1:abc", time.Hour))
	assert.False(t, g.Add("message_like:1:abc", time.Hour))

	// Different message or different identity is a different key.
	assert.True(t, g.Add("message_like:2:abc", time.Hour))
	assert.True(t, g.Add("message_like:1:def", time.Hour))
}

func TestAddExpiredEntryCountsAsAbsent(t *testing.T) {
	now := time.Date(2026, 2, 15, 12, 0, 0, 0, time.UTC)
	g := New(func() time.Time { return now })

	assert.True(t, g.Add("k", 24*time.Hour))
	assert.False(t, g.Add("k", 24*time.Hour))

	now = now.Add(24*time.Hour + time.Second)
	assert.True(t, g.Add("k", 24*time.Hour))
}

func TestAddConcurrent(t *testing.T) {
	g := New(nil)

	const attempts = 64
	var wg sync.WaitGroup
	results := make(chan bool, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- g.Add("contended", time.Hour)
		}()
	}
	wg.Wait()
	close(results)

	wins := 0
	for ok := range results {
		if ok {
			wins++
		}
	}
	assert.Equal(t, 1, wins)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "message_like:7:deadbeef", Key(7, "deadbeef"))
}

func TestEvictExpired(t *testing.T) {
	now := time.Date(2026, 2, 15, 12, 0, 0, 0, time.UTC)
	g := New(func() time.Time { return now })

	g.Add("old", time.Minute)
	g.Add("fresh", time.Hour)
	now = now.Add(30 * time.Minute)

	g.evictExpired()
	assert.Equal(t, 1, g.Len())
	assert.False(t, g.Add("fresh", time.Hour))
	assert.True(t, g.Add("old", time.Hour))
}
