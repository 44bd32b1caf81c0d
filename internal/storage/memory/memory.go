// Package memory provides an in-process entity document store.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cory-johannsen/wastehunter/internal/game/character"
	"github.com/cory-johannsen/wastehunter/internal/storage"
)

// Store keeps entity documents in a map. Documents are deep-copied on the
// way in and out so callers never share state with the store.
type Store struct {
	mu       sync.RWMutex
	entities map[string]*character.Entity
}

// NewStore returns an empty Store seeded with entities.
//
// Precondition: every seed passes Validate and ids are unique.
func NewStore(seed ...*character.Entity) (*Store, error) {
	s := &Store{entities: make(map[string]*character.Entity, len(seed))}
	for _, e := range seed {
		if err := s.Create(context.Background(), e); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Load returns a copy of the entity with the given id.
//
// Postcondition: returns an error wrapping storage.ErrEntityNotFound when id
// is unknown.
func (s *Store) Load(_ context.Context, id string) (*character.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entities[id]
	if !ok {
		return nil, storage.NotFound(id)
	}
	return e.Clone(), nil
}

// Update applies patch to the stored entity atomically.
//
// Postcondition: on error the stored entity is unchanged.
func (s *Store) Update(_ context.Context, id string, patch character.Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entities[id]
	if !ok {
		return storage.NotFound(id)
	}
	next := e.Clone()
	if err := next.Apply(patch); err != nil {
		return fmt.Errorf("applying patch to %q: %w", id, err)
	}
	s.entities[id] = next
	return nil
}

// Create stores a copy of e.
//
// Precondition: e passes Validate.
// Postcondition: returns an error wrapping storage.ErrEntityExists if the id
// is already stored.
func (s *Store) Create(_ context.Context, e *character.Entity) error {
	if err := e.Validate(); err != nil {
		return fmt.Errorf("validating entity: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entities[e.ID]; ok {
		return storage.Exists(e.ID)
	}
	s.entities[e.ID] = e.Clone()
	return nil
}

// List returns copies of every stored entity ordered by id.
func (s *Store) List(_ context.Context) ([]*character.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*character.Entity, 0, len(s.entities))
	for _, e := range s.entities {
		out = append(out, e.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

var _ storage.Store = (*Store)(nil)
