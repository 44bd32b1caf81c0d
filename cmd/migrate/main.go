// Package main provides the database migration runner for the PostgreSQL
// entity store.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"

	"github.com/cory-johannsen/wastehunter/internal/config"
	"github.com/cory-johannsen/wastehunter/internal/observability"
)

type options struct {
	direction string
	steps     int
	source    string
}

func main() {
	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	var opts options
	flag.StringVar(&opts.direction, "direction", "up", "migration direction: up or down")
	flag.IntVar(&opts.steps, "steps", 0, "number of steps (0 = all)")
	flag.StringVar(&opts.source, "source", "file://migrations", "migration source URL")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	if cfg.Store.Backend != config.BackendPostgres {
		logger.Warn("store backend is not postgres; migrating the database section anyway",
			zap.String("backend", cfg.Store.Backend))
	}
	if err := run(cfg.Database, opts, logger); err != nil {
		logger.Error("migration failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(db config.DatabaseConfig, opts options, logger *zap.Logger) error {
	start := time.Now()
	m, err := migrate.New(opts.source, db.DSN())
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()

	switch {
	case opts.direction == "up" && opts.steps > 0:
		err = m.Steps(opts.steps)
	case opts.direction == "up":
		err = m.Up()
	case opts.direction == "down" && opts.steps > 0:
		err = m.Steps(-opts.steps)
	case opts.direction == "down":
		err = m.Down()
	default:
		return fmt.Errorf("invalid direction %q: must be 'up' or 'down'", opts.direction)
	}
	noChange := errors.Is(err, migrate.ErrNoChange)
	if err != nil && !noChange {
		return err
	}

	version, dirty, verr := m.Version()
	if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
		return fmt.Errorf("reading schema version: %w", verr)
	}
	logger.Info("migration finished",
		zap.String("direction", opts.direction),
		zap.Bool("changed", !noChange),
		zap.Uint("version", version),
		zap.Bool("dirty", dirty),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}
