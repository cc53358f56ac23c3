// Package likeguard enforces at most one like per (message, identity) pair
// within a time window. Entries live in process memory only; a restart
// forgets them, which matches their 24-hour advisory nature.
package likeguard

import (
	"fmt"
	"sync"
	"time"
)

// Guard is a TTL key set with an atomic add-if-absent operation. The single
// mutex makes Add linearizable: of two concurrent adds for the same key,
// exactly one returns true.
type Guard struct {
	mu      sync.Mutex
	entries map[string]time.Time // key -> expiry
	now     func() time.Time
}

// New returns an empty Guard. now may be nil, in which case time.Now is used.
func New(now func() time.Time) *Guard {
	if now == nil {
		now = time.Now
	}
	return &Guard{
		entries: make(map[string]time.Time),
		now:     now,
	}
}

// Key builds the guard key for a message and a hashed submitter identity.
func Key(messageID uint, ipHash string) string {
	return fmt.Sprintf("message_like:%d:%s", messageID, ipHash)
}

// Add records key with the given TTL if no live entry exists. It returns
// true if the entry was created (first writer wins) and false if a live
// entry was already present. An expired entry counts as absent.
func (g *Guard) Add(key string, ttl time.Duration) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if exp, ok := g.entries[key]; ok && exp.After(now) {
		return false
	}
	g.entries[key] = now.Add(ttl)
	return true
}

// Len reports the number of entries currently held, live or not.
func (g *Guard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.entries)
}

// StartJanitor evicts expired entries every interval until stop is closed.
func (g *Guard) StartJanitor(interval time.Duration, stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				g.evictExpired()
			case <-stop:
				return
			}
		}
	}()
}

func (g *Guard) evictExpired() {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	for key, exp := range g.entries {
		if !exp.After(now) {
			delete(g.entries, key)
		}
	}
}
