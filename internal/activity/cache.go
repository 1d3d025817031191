// Package activity keeps the in-process map of live chat sessions. Entries
// are ephemeral: refreshed on every session event, evicted by the cleanup
// worker once stale. Nothing here is persisted.
package activity

import (
	"sync"
	"time"
)

// Record is the last known activity metadata for one session.
type Record struct {
	SessionID    string
	UserID       string
	AgentID      int
	TeamID       int
	StartTime    time.Time
	MessageCount int
	LastActivity time.Time
}

// Cache is a mutex-guarded session map. It is mutated by the session
// worker and by the collector's session path, which may run on different
// goroutines.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Record
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]Record)}
}

// Touch records activity for a session, last-write-wins. The start time of
// an existing entry is preserved.
func (c *Cache) Touch(rec Record) {
	now := time.Now()
	if rec.LastActivity.IsZero() {
		rec.LastActivity = now
	}
	if rec.StartTime.IsZero() {
		rec.StartTime = now
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.entries[rec.SessionID]; ok {
		rec.StartTime = existing.StartTime
	}
	c.entries[rec.SessionID] = rec
}

// Evict removes every entry whose last activity is older than cutoff and
// returns how many were removed.
func (c *Cache) Evict(cutoff time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for id, rec := range c.entries {
		if rec.LastActivity.Before(cutoff) {
			delete(c.entries, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked sessions.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// ActiveUsers returns the number of distinct users across tracked sessions.
func (c *Cache) ActiveUsers() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	users := make(map[string]struct{}, len(c.entries))
	for _, rec := range c.entries {
		if rec.UserID != "" {
			users[rec.UserID] = struct{}{}
		}
	}
	return len(users)
}

// Get returns the record for a session id, if tracked.
func (c *Cache) Get(sessionID string) (Record, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rec, ok := c.entries[sessionID]
	return rec, ok
}
