// internal/service/geocode/cache_test.go

package geocode

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCacheLookupIsCaseAndWhitespaceInsensitive(t *testing.T) {
	cache := NewCache()
	cache.Insert("  Flinders Street Station  ", Entry{
		Lat:        -37.8183,
		Lng:        144.9671,
		Address:    "Flinders Street Station, Melbourne",
		ResolvedAt: time.Now(),
	})

	for _, query := range []string{
		"flinders street station",
		"FLINDERS STREET STATION",
		"  Flinders Street Station",
	} {
		entry, ok := cache.Lookup(query)
		assert.True(t, ok, "expected hit for %q", query)
		assert.Equal(t, -37.8183, entry.Lat)
		assert.Equal(t, "flinders street station", entry.NormalizedQuery)
	}
}

func TestCacheMissForUnknownQuery(t *testing.T) {
	cache := NewCache()

	_, ok := cache.Lookup("nowhere in particular")
	assert.False(t, ok)
	assert.Equal(t, 0, cache.Len())
}

func TestCacheInsertDoesNotMutateExistingEntries(t *testing.T) {
	cache := NewCache()
	cache.Insert("coffee", Entry{Lat: 1, Lng: 2, Address: "first"})

	first, _ := cache.Lookup("coffee")

	// A second insert replaces the value; the first read stays intact.
	cache.Insert("coffee", Entry{Lat: 3, Lng: 4, Address: "second"})

	assert.Equal(t, "first", first.Address)
	second, _ := cache.Lookup("coffee")
	assert.Equal(t, "second", second.Address)
}
