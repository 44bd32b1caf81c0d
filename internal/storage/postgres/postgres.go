// Package postgres provides the PostgreSQL entity document store using pgx v5.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/wastehunter/internal/config"
)

// ApplicationName is reported to the server for every connection.
const ApplicationName = "wastehunter"

// Pool owns the pgx connection pool behind the entity store.
type Pool struct {
	db *pgxpool.Pool
}

// NewPool connects to the database described by cfg and verifies it answers
// within connectTimeout. A zero connectTimeout waits for ctx alone.
//
// Precondition: cfg passes database validation.
// Postcondition: Returns a connected Pool or a non-nil error; nothing is left
// open on error.
func NewPool(ctx context.Context, cfg config.DatabaseConfig, connectTimeout time.Duration) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.ConnConfig.RuntimeParams["application_name"] = ApplicationName

	db, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	pingCtx := ctx
	if connectTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, connectTimeout)
		defer cancel()
	}
	if err := db.Ping(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database %s:%d: %w", cfg.Host, cfg.Port, err)
	}
	return &Pool{db: db}, nil
}

// Entities returns the entity repository backed by this pool.
func (p *Pool) Entities() *EntityRepository {
	return NewEntityRepository(p.db)
}

// Close releases all pool resources.
//
// Postcondition: repositories obtained from the pool are no longer usable.
func (p *Pool) Close() {
	p.db.Close()
}
