package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/wastehunter/internal/game/character"
	"github.com/cory-johannsen/wastehunter/internal/storage"
)

// EntityRepository stores entity documents as JSONB rows in the entities
// table.
type EntityRepository struct {
	db *pgxpool.Pool
}

// NewEntityRepository creates an EntityRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewEntityRepository(db *pgxpool.Pool) *EntityRepository {
	return &EntityRepository{db: db}
}

// Create inserts a new entity document.
//
// Precondition: e passes Validate.
// Postcondition: returns an error wrapping storage.ErrEntityExists on a
// duplicate id.
func (r *EntityRepository) Create(ctx context.Context, e *character.Entity) error {
	if err := e.Validate(); err != nil {
		return fmt.Errorf("validating entity: %w", err)
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO entities (id, name, kind, document)
		VALUES ($1, $2, $3, $4)`,
		e.ID, e.Name, string(e.Kind), e,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.Exists(e.ID)
		}
		return fmt.Errorf("inserting entity: %w", err)
	}
	return nil
}

// Load retrieves the entity document with the given id.
//
// Postcondition: returns the entity or an error wrapping
// storage.ErrEntityNotFound.
func (r *EntityRepository) Load(ctx context.Context, id string) (*character.Entity, error) {
	var e character.Entity
	err := r.db.QueryRow(ctx, `SELECT document FROM entities WHERE id = $1`, id).Scan(&e)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.NotFound(id)
		}
		return nil, fmt.Errorf("querying entity: %w", err)
	}
	return &e, nil
}

// Update locks the row, applies patch to the stored document and writes it
// back in one transaction.
//
// Postcondition: on any error the transaction is rolled back and the stored
// document is unchanged.
func (r *EntityRepository) Update(ctx context.Context, id string, patch character.Patch) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var e character.Entity
	err = tx.QueryRow(ctx, `SELECT document FROM entities WHERE id = $1 FOR UPDATE`, id).Scan(&e)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return storage.NotFound(id)
		}
		return fmt.Errorf("locking entity: %w", err)
	}
	if err := e.Apply(patch); err != nil {
		return fmt.Errorf("applying patch to %q: %w", id, err)
	}
	if _, err := tx.Exec(ctx, `
		UPDATE entities SET document = $2, name = $3, updated_at = NOW()
		WHERE id = $1`,
		id, &e, e.Name,
	); err != nil {
		return fmt.Errorf("writing entity: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing entity update: %w", err)
	}
	return nil
}

// List returns every entity document ordered by id.
//
// Postcondition: returns a slice (may be empty) or a non-nil error.
func (r *EntityRepository) List(ctx context.Context) ([]*character.Entity, error) {
	rows, err := r.db.Query(ctx, `SELECT document FROM entities ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing entities: %w", err)
	}
	defer rows.Close()

	out := make([]*character.Entity, 0)
	for rows.Next() {
		var e character.Entity
		if err := rows.Scan(&e); err != nil {
			return nil, fmt.Errorf("scanning entity row: %w", err)
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	// SQLSTATE 23505 is unique_violation.
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}

var _ storage.Store = (*EntityRepository)(nil)
