// Package app assembles the configured store, rules engine and sheet service
// for the command-line binaries.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/wastehunter/internal/config"
	"github.com/cory-johannsen/wastehunter/internal/game/action"
	"github.com/cory-johannsen/wastehunter/internal/game/dice"
	"github.com/cory-johannsen/wastehunter/internal/game/formula"
	"github.com/cory-johannsen/wastehunter/internal/game/inventory"
	"github.com/cory-johannsen/wastehunter/internal/importer"
	"github.com/cory-johannsen/wastehunter/internal/observability"
	"github.com/cory-johannsen/wastehunter/internal/scripting"
	"github.com/cory-johannsen/wastehunter/internal/sheet"
	"github.com/cory-johannsen/wastehunter/internal/storage"
	"github.com/cory-johannsen/wastehunter/internal/storage/memory"
	"github.com/cory-johannsen/wastehunter/internal/storage/postgres"
	redisstore "github.com/cory-johannsen/wastehunter/internal/storage/redis"
)

// ConnectTimeout bounds the initial reachability check of a remote store.
const ConnectTimeout = 10 * time.Second

// App holds the wired components. Close releases them.
type App struct {
	Config     config.Config
	Logger     *zap.Logger
	Store      storage.Store
	Dispatcher *action.Dispatcher
	Scripts    *scripting.Manager
	Service    *sheet.Service

	closers []func()
}

// New wires every component from cfg. src seeds the dice roller; nil uses a
// crypto source.
//
// Precondition: cfg passes Validate; logger is non-nil.
// Postcondition: on error everything opened so far is closed.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger, src dice.Source) (*App, error) {
	a := &App{Config: cfg, Logger: logger}

	store, closeStore, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.Store = store
	a.closers = append(a.closers, closeStore)

	opts, scripts, err := DispatcherOptions(cfg.Rules, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	if scripts != nil {
		a.Scripts = scripts
		a.closers = append(a.closers, scripts.Close)
	}
	a.Dispatcher = action.NewDispatcher(opts)

	if src == nil {
		src = dice.NewCryptoSource()
	}
	roller := dice.NewLoggedRoller(src, logger)
	a.Service = sheet.NewService(store, a.Dispatcher, roller, observability.NewLogNotifier(logger), logger)
	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// DispatcherOptions builds dispatcher options from the rules section. When a
// script directory is configured the returned manager has loaded it and is
// also set as the circumstance source.
//
// Postcondition: on error no scripts are left open.
func DispatcherOptions(rules config.RulesConfig, logger *zap.Logger) (action.Options, *scripting.Manager, error) {
	table := action.DefaultTable()
	if rules.ActionsFile != "" {
		t, err := action.LoadTable(rules.ActionsFile)
		if err != nil {
			return action.Options{}, nil, fmt.Errorf("loading action table: %w", err)
		}
		table = t
	}
	opts := action.Options{
		Ledger:          rules.Ledger(),
		Builder:         formula.NewBuilder(rules.Policy()),
		Table:           table,
		FiredCost:       rules.Autofire.FiredCost,
		RearmCost:       rules.Autofire.RearmCost,
		ReloadSurcharge: rules.ReloadSurcharge,
	}
	if rules.ScriptDir == "" {
		return opts, nil, nil
	}
	mgr := scripting.NewManager(logger, rules.InstructionLimit)
	if err := mgr.Load(rules.ScriptDir); err != nil {
		mgr.Close()
		return action.Options{}, nil, fmt.Errorf("loading scripts: %w", err)
	}
	logger.Info("circumstance scripts loaded", zap.Strings("scripts", mgr.Scripts()))
	opts.Circumstance = mgr
	return opts, mgr, nil
}

// LoadCatalog loads the item catalog from dir; an empty dir yields an empty
// catalog.
func LoadCatalog(dir string) (*inventory.Registry, error) {
	if dir == "" {
		return inventory.NewRegistry(), nil
	}
	r, err := inventory.LoadRegistry(dir)
	if err != nil {
		return nil, fmt.Errorf("loading item catalog: %w", err)
	}
	return r, nil
}

// OpenStore opens the configured backend. The memory backend is seeded from
// cfg.Store.SeedDir when set.
//
// Postcondition: the returned close func is non-nil on success.
func OpenStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (storage.Store, func(), error) {
	start := time.Now()
	switch cfg.Store.Backend {
	case config.BackendPostgres:
		pool, err := postgres.NewPool(ctx, cfg.Database, ConnectTimeout)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to database: %w", err)
		}
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Duration("elapsed", time.Since(start)),
		)
		return pool.Entities(), pool.Close, nil

	case config.BackendRedis:
		pingCtx, cancel := context.WithTimeout(ctx, ConnectTimeout)
		defer cancel()
		client, err := redisstore.NewClient(pingCtx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("redis connected",
			zap.String("addr", cfg.Redis.Addr),
			zap.Duration("elapsed", time.Since(start)),
		)
		return redisstore.NewStore(client, cfg.Redis.KeyPrefix), func() { _ = client.Close() }, nil

	case config.BackendMemory:
		store, err := memory.NewStore()
		if err != nil {
			return nil, nil, err
		}
		if cfg.Store.SeedDir != "" {
			catalog, err := LoadCatalog(cfg.Rules.CatalogDir)
			if err != nil {
				return nil, nil, err
			}
			imp := importer.New(importer.NewSheetSource(), catalog, store, logger, 1)
			if _, err := imp.Run(ctx, cfg.Store.SeedDir); err != nil {
				return nil, nil, fmt.Errorf("seeding memory store: %w", err)
			}
		}
		return store, func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
