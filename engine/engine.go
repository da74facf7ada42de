package engine

import (
	"fmt"

	"github.com/liamcoop/quorum/body"
)

// Engine serves body lookup and rule evaluation on top of a BodyStore.
// Thread-safe for concurrent reads; evaluation itself is pure over
// immutable bodies, so concurrent calls share no mutable state beyond
// the store and cache.
type Engine struct {
	store BodyStore
	cache BodiesCache
}

// NewEngine creates an engine over the given store
func NewEngine(store BodyStore) *Engine {
	return &Engine{
		store: store,
		cache: NewInMemoryBodiesCache(DefaultCacheConfig()),
	}
}

// Body returns the body with the given id
func (en *Engine) Body(id string) (*body.GoverningBody, error) {
	return en.store.Get(id)
}

// ListBodies returns the listing projection of all stored bodies.
// Uses the cache to avoid re-reading full documents on every request.
func (en *Engine) ListBodies() ([]*CachedBody, error) {
	if cached := en.cache.Get(); cached != nil {
		return cached, nil
	}

	bodies, err := en.store.List()
	if err != nil {
		return nil, err
	}

	listing := make([]*CachedBody, 0, len(bodies))
	for _, b := range bodies {
		listing = append(listing, &CachedBody{ID: b.ID, Name: b.Name})
	}
	en.cache.Set(listing)
	return listing, nil
}

// AddBody validates and stores a new body
func (en *Engine) AddBody(b *body.GoverningBody) error {
	if err := b.Validate(); err != nil {
		return fmt.Errorf("body validation failed: %w", err)
	}

	if err := en.store.Add(b); err != nil {
		return err
	}

	en.cache.Invalidate()
	return nil
}

// UpdateBody validates and replaces an existing body
func (en *Engine) UpdateBody(b *body.GoverningBody) error {
	if err := b.Validate(); err != nil {
		return fmt.Errorf("body validation failed: %w", err)
	}

	if err := en.store.Update(b); err != nil {
		return err
	}

	en.cache.Invalidate()
	return nil
}

// DeleteBody removes a body
func (en *Engine) DeleteBody(id string) error {
	if err := en.store.Delete(id); err != nil {
		return err
	}

	en.cache.Invalidate()
	return nil
}

// EvaluateAll evaluates every rule of a stored body against a selection
// of group ids, in declared rule order
func (en *Engine) EvaluateAll(bodyID string, selectedIDs []string) ([]RuleResult, error) {
	b, err := en.store.Get(bodyID)
	if err != nil {
		return nil, err
	}
	return EvaluateAll(b, selectedIDs), nil
}
