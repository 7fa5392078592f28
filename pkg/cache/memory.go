package cache

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Memory is the process-local cache layer: a bounded LRU with a read-time TTL
// check. Expired entries are not deleted on read; they stay resident (until
// capacity evicts them) so GetStale can serve them after a pipeline failure.
// The LRU is internally synchronized; Memory needs no extra locking and no
// cross-process coherence.
type Memory struct {
	lru *lru.Cache[string, Entry]
	ttl time.Duration
}

// DefaultMemoryTTL bounds how long a local entry counts as fresh.
const DefaultMemoryTTL = 5 * time.Minute

// DefaultMemoryCapacity bounds the number of resident entries. The key space
// is small (segment combinations × limits × windows), so this is generous.
const DefaultMemoryCapacity = 1024

// NewMemory creates a process-local layer. Non-positive capacity or TTL fall
// back to the defaults.
func NewMemory(capacity int, ttl time.Duration) *Memory {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	if ttl <= 0 {
		ttl = DefaultMemoryTTL
	}
	c, err := lru.New[string, Entry](capacity)
	if err != nil {
		// lru.New only fails on non-positive size, which is handled above.
		panic(err)
	}
	return &Memory{lru: c, ttl: ttl}
}

// Get returns the entry for key if it is still within the layer TTL.
func (m *Memory) Get(key string) (Entry, bool) {
	e, ok := m.lru.Get(key)
	if !ok {
		return Entry{}, false
	}
	if time.Since(e.StoredAt) > m.ttl {
		return Entry{}, false
	}
	return e, true
}

// GetStale returns the entry for key regardless of TTL.
func (m *Memory) GetStale(key string) (Entry, bool) {
	return m.lru.Get(key)
}

// Set stores an entry under key.
func (m *Memory) Set(key string, e Entry) {
	m.lru.Add(key, e)
}

// Len returns the number of resident entries (fresh and expired).
func (m *Memory) Len() int {
	return m.lru.Len()
}
