// internal/service/geocode/cache.go

package geocode

import (
	"strings"
	"sync"
	"time"
)

// Entry is one resolved geocoding result. Entries are immutable once
// inserted.
type Entry struct {
	NormalizedQuery string
	Lat             float64
	Lng             float64
	Address         string
	ResolvedAt      time.Time
}

// Cache maps normalized query text to resolved coordinates for the
// lifetime of a creation session. Entries never expire and are never
// evicted; the cache is bounded by the session, not by policy. Reusing an
// instance across sessions would need an eviction strategy.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewCache creates an empty session cache.
func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]Entry),
	}
}

// Normalize lower-cases and trims query text so lookups are
// case-insensitive and whitespace-insensitive.
func Normalize(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// Lookup returns the cached entry for a query, if any.
func (c *Cache) Lookup(query string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[Normalize(query)]
	return entry, ok
}

// Insert stores a resolved entry under the normalized query.
func (c *Cache) Insert(query string, entry Entry) {
	key := Normalize(query)
	entry.NormalizedQuery = key

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}
