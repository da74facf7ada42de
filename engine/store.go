package engine

import (
	"fmt"
	"sync"

	"github.com/liamcoop/quorum/body"
)

// BodyStore manages governing-body persistence and retrieval
type BodyStore interface {
	// Add a new body
	Add(b *body.GoverningBody) error

	// Get a body by ID
	Get(id string) (*body.GoverningBody, error)

	// List all bodies
	List() ([]*body.GoverningBody, error)

	// Update an existing body
	Update(b *body.GoverningBody) error

	// Delete a body
	Delete(id string) error
}

// InMemoryBodyStore implements BodyStore using an in-memory map.
// Thread-safe with RWMutex. Insertion order is preserved so List is
// deterministic, matching the order documents were discovered in.
type InMemoryBodyStore struct {
	bodies map[string]*body.GoverningBody
	order  []string
	mu     sync.RWMutex
}

// NewInMemoryBodyStore creates a new in-memory body store
func NewInMemoryBodyStore() *InMemoryBodyStore {
	return &InMemoryBodyStore{
		bodies: make(map[string]*body.GoverningBody),
	}
}

// Add adds a new body to the store, enforcing unique ids
func (s *InMemoryBodyStore) Add(b *body.GoverningBody) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.bodies[b.ID]; exists {
		return fmt.Errorf("body with ID %s already exists", b.ID)
	}

	s.bodies[b.ID] = b
	s.order = append(s.order, b.ID)
	return nil
}

// Get retrieves a body by ID
func (s *InMemoryBodyStore) Get(id string) (*body.GoverningBody, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, exists := s.bodies[id]
	if !exists {
		return nil, fmt.Errorf("body with ID %s not found", id)
	}
	return b, nil
}

// List returns all bodies in insertion order
func (s *InMemoryBodyStore) List() ([]*body.GoverningBody, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bodies := make([]*body.GoverningBody, 0, len(s.order))
	for _, id := range s.order {
		bodies = append(bodies, s.bodies[id])
	}
	return bodies, nil
}

// Update replaces an existing body
func (s *InMemoryBodyStore) Update(b *body.GoverningBody) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.bodies[b.ID]; !exists {
		return fmt.Errorf("body with ID %s not found", b.ID)
	}

	s.bodies[b.ID] = b
	return nil
}

// Delete removes a body from the store
func (s *InMemoryBodyStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.bodies[id]; !exists {
		return fmt.Errorf("body with ID %s not found", id)
	}

	delete(s.bodies, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}
