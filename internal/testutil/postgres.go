// Package testutil provides test helpers: a PostgreSQL container with the
// entity schema applied, and entity fixtures.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/cory-johannsen/wastehunter/internal/config"
	"github.com/cory-johannsen/wastehunter/internal/storage/postgres"
)

// PostgresImage is the server image used by container tests.
const PostgresImage = "postgres:16-alpine"

// StartPostgres runs a PostgreSQL container for the life of the test and
// returns settings that reach it.
//
// Precondition: Docker must be available.
// Postcondition: the container is terminated by t.Cleanup.
func StartPostgres(t *testing.T) config.DatabaseConfig {
	t.Helper()
	ctx := context.Background()
	start := time.Now()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        PostgresImage,
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "hunter",
				"POSTGRES_PASSWORD": "hunter",
				"POSTGRES_DB":       "wastehunter_test",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(45 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("starting postgres container: %v [%s]", err, time.Since(start))
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("getting container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("getting mapped port: %v", err)
	}
	t.Logf("postgres container started [%s]", time.Since(start))

	return config.DatabaseConfig{
		Host:            host,
		Port:            port.Int(),
		User:            "hunter",
		Password:        "hunter",
		Name:            "wastehunter_test",
		SSLMode:         "disable",
		MaxConns:        8,
		MinConns:        1,
		MaxConnLifetime: 5 * time.Minute,
	}
}

// NewDatabase starts a container and applies every up migration from the
// repository's migrations directory. The test is skipped under -short.
//
// Postcondition: the entities table exists and is empty.
func NewDatabase(t *testing.T) config.DatabaseConfig {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping PostgreSQL container test in short mode")
	}
	cfg := StartPostgres(t)
	ctx := context.Background()

	db, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		t.Fatalf("connecting to test postgres: %v", err)
	}
	defer db.Close()

	for _, path := range upMigrations(t) {
		sql, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("reading migration: %v", err)
		}
		if _, err := db.Exec(ctx, string(sql)); err != nil {
			t.Fatalf("applying %s: %v", filepath.Base(path), err)
		}
	}
	return cfg
}

// NewPool opens the store's Pool on a fresh migrated database.
//
// Postcondition: the pool is closed by t.Cleanup.
func NewPool(t *testing.T) *postgres.Pool {
	t.Helper()
	cfg := NewDatabase(t)
	pool, err := postgres.NewPool(context.Background(), cfg, 30*time.Second)
	if err != nil {
		t.Fatalf("opening store pool: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

// upMigrations locates migrations/*.up.sql by walking up from the working
// directory to the module root.
func upMigrations(t *testing.T) []string {
	t.Helper()
	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("getting working directory: %v", err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatalf("module root not found")
		}
		dir = parent
	}
	paths, err := filepath.Glob(filepath.Join(dir, "migrations", "*.up.sql"))
	if err != nil || len(paths) == 0 {
		t.Fatalf("no up migrations found under %s", dir)
	}
	sort.Strings(paths)
	return paths
}
