package engine

import "time"

// BodiesCache provides an abstraction for caching the loaded body list
// This allows swapping between in-memory, Redis, or other caching implementations
type BodiesCache interface {
	// Get retrieves cached bodies, returns nil if cache miss or expired
	Get() []*CachedBody

	// Set stores bodies in cache
	Set(bodies []*CachedBody)

	// Invalidate clears the cache, forcing a refresh on next Get
	Invalidate()

	// IsValid returns true if cache has valid data
	IsValid() bool
}

// CachedBody is the listing projection kept in cache: enough for the
// discovery endpoints without re-reading full documents from the store.
type CachedBody struct {
	ID   string
	Name string
}

// CacheConfig holds configuration for cache behavior
type CacheConfig struct {
	// TTL is the time-to-live for cached entries
	// Set to 0 for no expiration (manual invalidation only)
	TTL time.Duration
}

// DefaultCacheConfig returns sensible defaults for body caching
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		TTL: 0, // No TTL - only invalidate on mutations
	}
}
