package engine

import (
	"sync"
	"time"
)

// InMemoryBodiesCache is a simple in-memory implementation of BodiesCache
// Thread-safe for concurrent access
type InMemoryBodiesCache struct {
	bodies   []*CachedBody
	cachedAt time.Time
	config   CacheConfig
	mu       sync.RWMutex
	isValid  bool
}

// NewInMemoryBodiesCache creates a new in-memory bodies cache
func NewInMemoryBodiesCache(config CacheConfig) *InMemoryBodiesCache {
	return &InMemoryBodiesCache{
		config:  config,
		isValid: false,
	}
}

// Get retrieves cached bodies
// Returns nil if cache is invalid or expired
func (c *InMemoryBodiesCache) Get() []*CachedBody {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.isValid {
		return nil
	}

	if c.config.TTL > 0 {
		if time.Since(c.cachedAt) > c.config.TTL {
			return nil
		}
	}

	// Return copy to prevent external modifications
	bodiesCopy := make([]*CachedBody, len(c.bodies))
	copy(bodiesCopy, c.bodies)
	return bodiesCopy
}

// Set stores bodies in cache
func (c *InMemoryBodiesCache) Set(bodies []*CachedBody) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Store copy to prevent external modifications
	c.bodies = make([]*CachedBody, len(bodies))
	copy(c.bodies, bodies)
	c.cachedAt = time.Now()
	c.isValid = true
}

// Invalidate clears the cache
func (c *InMemoryBodiesCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.isValid = false
	c.bodies = nil
}

// IsValid returns true if cache contains valid data
func (c *InMemoryBodiesCache) IsValid() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.isValid {
		return false
	}

	if c.config.TTL > 0 {
		return time.Since(c.cachedAt) <= c.config.TTL
	}

	return true
}
