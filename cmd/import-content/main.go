// Package main provides the content importer: it loads YAML entity sheets,
// resolves catalog item references and writes them into the configured store.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/wastehunter/internal/app"
	"github.com/cory-johannsen/wastehunter/internal/config"
	"github.com/cory-johannsen/wastehunter/internal/importer"
	"github.com/cory-johannsen/wastehunter/internal/observability"
)

func main() {
	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	sheetsDir := flag.String("sheets", "", "path to entity sheet directory")
	catalogDir := flag.String("catalog", "", "item catalog directory (default: rules.catalog_dir)")
	concurrency := flag.Int("concurrency", importer.DefaultConcurrency, "concurrent store writes")
	flag.Parse()

	if *sheetsDir == "" {
		fmt.Fprintln(os.Stderr, "usage: import-content -config <file> -sheets <dir> [-catalog <dir>] [-concurrency n]")
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	dir := cfg.Rules.CatalogDir
	if *catalogDir != "" {
		dir = *catalogDir
	}
	catalog, err := app.LoadCatalog(dir)
	if err != nil {
		logger.Fatal("loading catalog", zap.Error(err))
	}

	ctx := context.Background()
	store, closeStore, err := app.OpenStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("opening store", zap.Error(err))
	}
	defer closeStore()

	start := time.Now()
	imp := importer.New(importer.NewSheetSource(), catalog, store, logger, *concurrency)
	sum, err := imp.Run(ctx, *sheetsDir)
	if err != nil {
		logger.Error("import failed", zap.Error(err), zap.Int("created", sum.Created))
		os.Exit(1)
	}
	fmt.Printf("imported %d, skipped %d, resolved %d item(s) in %s\n",
		sum.Created, sum.Skipped, sum.Resolved, time.Since(start).Round(time.Millisecond))
}
