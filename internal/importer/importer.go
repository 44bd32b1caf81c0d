// Package importer loads entity sheets, resolves catalog item references and
// writes the result into an entity store.
package importer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cory-johannsen/wastehunter/internal/game/character"
	"github.com/cory-johannsen/wastehunter/internal/game/inventory"
	"github.com/cory-johannsen/wastehunter/internal/storage"
)

// DefaultConcurrency bounds the number of concurrent store writes.
const DefaultConcurrency = 4

// Creator is the part of a store the importer writes through.
type Creator interface {
	Create(ctx context.Context, e *character.Entity) error
}

// Summary counts what one Run did.
type Summary struct {
	Created  int
	Skipped  int
	Resolved int
}

// Importer orchestrates sheet import from a Source into a store.
type Importer struct {
	source      Source
	catalog     *inventory.Registry
	store       Creator
	logger      *zap.Logger
	concurrency int
	newID       func() string
}

// New constructs an Importer. A nil catalog leaves def_id references
// unresolved and fails on the first one.
//
// Precondition: source, store and logger must be non-nil; concurrency < 1
// uses DefaultConcurrency.
// Postcondition: returns a non-nil Importer.
func New(source Source, catalog *inventory.Registry, store Creator, logger *zap.Logger, concurrency int) *Importer {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	if catalog == nil {
		catalog = inventory.NewRegistry()
	}
	return &Importer{
		source:      source,
		catalog:     catalog,
		store:       store,
		logger:      logger,
		concurrency: concurrency,
		newID:       uuid.NewString,
	}
}

// Run loads sheets from dir, prepares each and creates it in the store.
// Entities whose id already exists are skipped.
//
// Postcondition: on error some entities may already have been created; the
// Summary reflects what completed.
func (imp *Importer) Run(ctx context.Context, dir string) (Summary, error) {
	start := time.Now()
	var sum Summary

	entities, err := imp.source.Load(dir)
	if err != nil {
		return sum, fmt.Errorf("loading source: %w", err)
	}
	for _, e := range entities {
		n, err := imp.Prepare(e)
		if err != nil {
			return sum, fmt.Errorf("preparing %q: %w", e.Name, err)
		}
		sum.Resolved += n
	}

	created := make([]bool, len(entities))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(imp.concurrency)
	for i, e := range entities {
		g.Go(func() error {
			err := imp.store.Create(gctx, e)
			if errors.Is(err, storage.ErrEntityExists) {
				imp.logger.Info("entity already imported", zap.String("entity", e.ID), zap.String("name", e.Name))
				return nil
			}
			if err != nil {
				return fmt.Errorf("creating %q: %w", e.ID, err)
			}
			created[i] = true
			return nil
		})
	}
	err = g.Wait()
	for _, ok := range created {
		if ok {
			sum.Created++
		}
	}
	sum.Skipped = len(entities) - sum.Created
	if err != nil {
		return sum, err
	}

	imp.logger.Info("import complete",
		zap.Int("created", sum.Created),
		zap.Int("skipped", sum.Skipped),
		zap.Int("resolved_items", sum.Resolved),
		zap.Duration("elapsed", time.Since(start)),
	)
	return sum, nil
}

// Prepare assigns ids to e and its items where empty and replaces every item
// carrying a def_id with a catalog instance. Sheet values for quantity and
// charges override the template when set.
//
// Postcondition: returns the number of items resolved from the catalog; on
// success e passes Validate.
func (imp *Importer) Prepare(e *character.Entity) (int, error) {
	if e.ID == "" {
		e.ID = imp.newID()
	}
	resolved := 0
	for i, it := range e.Items {
		if it == nil {
			return resolved, fmt.Errorf("importer: entity %q: item[%d] is empty", e.ID, i)
		}
		if it.ID == "" {
			it.ID = imp.newID()
		}
		if it.DefID == "" {
			continue
		}
		inst, err := imp.catalog.Instantiate(CatalogKey(it.DefID), it.ID)
		if err != nil {
			return resolved, err
		}
		if it.Name != "" {
			inst.Name = it.Name
		}
		if it.Quantity != 0 {
			inst.Quantity = it.Quantity
		}
		if it.Charges.Max != 0 {
			inst.Charges = it.Charges
		}
		e.Items[i] = inst
		resolved++
	}
	if err := e.Validate(); err != nil {
		return resolved, err
	}
	return resolved, nil
}
