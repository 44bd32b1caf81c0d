// Package storage defines the document store contract shared by the
// memory, postgres and redis backends.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/cory-johannsen/wastehunter/internal/game/character"
)

// ErrEntityNotFound is returned when an entity id does not resolve.
var ErrEntityNotFound = errors.New("entity not found")

// ErrEntityExists is returned when creating an entity whose id is taken.
var ErrEntityExists = errors.New("entity already exists")

// ErrConflict is returned when a concurrent writer changed the document
// between read and write. Callers decide whether to retry.
var ErrConflict = errors.New("concurrent update conflict")

// Store persists entity documents.
type Store interface {
	Load(ctx context.Context, id string) (*character.Entity, error)
	Update(ctx context.Context, id string, patch character.Patch) error
	Create(ctx context.Context, e *character.Entity) error
	List(ctx context.Context) ([]*character.Entity, error)
}

// NotFound wraps ErrEntityNotFound with the id that failed to resolve.
func NotFound(id string) error {
	return fmt.Errorf("%w: %q", ErrEntityNotFound, id)
}

// Exists wraps ErrEntityExists with the conflicting id.
func Exists(id string) error {
	return fmt.Errorf("%w: %q", ErrEntityExists, id)
}
