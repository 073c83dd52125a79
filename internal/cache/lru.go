// Package cache provides the optional LRU cache adapter the engine invokes
// on committed-intent writes and deletes. The engine never reads from the
// cache itself — it exists purely as an external hook, mirroring
// original_source/server/caching/caching_strategy.py's LRUCache.
package cache

import (
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"
)

// LRU adapts hashicorp/golang-lru to the engine.Cache interface.
type LRU struct {
	cache *lru.Cache[string, string]
}

// New returns an LRU cache with room for capacity entries. capacity must be
// positive.
func New(capacity int) (*LRU, error) {
	c, err := lru.New[string, string](capacity)
	if err != nil {
		return nil, err
	}
	return &LRU{cache: c}, nil
}

// Add records key/value as most-recently-used, evicting the least recently
// used entry if the cache is at capacity.
func (l *LRU) Add(key, value string) {
	l.cache.Add(key, value)
	slog.Debug("cache add", "key", key)
}

// Remove discards key from the cache. A no-op if key is absent.
func (l *LRU) Remove(key string) {
	l.cache.Remove(key)
	slog.Debug("cache remove", "key", key)
}

// Get is exposed for tests and CLI introspection; the engine itself never
// calls it.
func (l *LRU) Get(key string) (string, bool) {
	return l.cache.Get(key)
}

// Len reports the current number of cached entries.
func (l *LRU) Len() int {
	return l.cache.Len()
}
