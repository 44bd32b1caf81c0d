// Package main provides the wastehunter CLI: it runs one sheet interaction
// against the configured entity store and prints the result.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/wastehunter/internal/app"
	"github.com/cory-johannsen/wastehunter/internal/config"
	"github.com/cory-johannsen/wastehunter/internal/game/action"
	"github.com/cory-johannsen/wastehunter/internal/game/character"
	"github.com/cory-johannsen/wastehunter/internal/observability"
	"github.com/cory-johannsen/wastehunter/internal/sheet"
)

func usage(fs *flag.FlagSet, w io.Writer) func() {
	return func() {
		kinds := make([]string, 0, len(action.Kinds()))
		for _, k := range action.Kinds() {
			kinds = append(kinds, string(k))
		}
		fmt.Fprintf(w, "usage: wastehunter [-config file] -entity <id> [-item <id>] [-label text] <kind> [action | formula]\n\n")
		fmt.Fprintf(w, "kinds: %s\n\n", strings.Join(kinds, ", "))
		fs.PrintDefaults()
	}
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run handles one command and returns the process exit code. Every deferred
// cleanup has run by the time it returns.
func run(args []string, stdout, stderr io.Writer) int {
	start := time.Now()

	fs := flag.NewFlagSet("wastehunter", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "configs/dev.yaml", "path to configuration file")
	entityID := fs.String("entity", "", "entity id")
	itemID := fs.String("item", "", "item id for item commands")
	label := fs.String("label", "", "caption for formula_roll")
	listActions := fs.Bool("actions", false, "list the action table and exit")
	fs.Usage = usage(fs, stderr)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "loading config: %v\n", err)
		return 1
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(stderr, "initializing logger: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	a, err := app.New(ctx, cfg, logger, nil)
	if err != nil {
		logger.Error("initializing", zap.Error(err))
		return 1
	}
	defer a.Close()

	if *listActions {
		for _, def := range a.Dispatcher.Table().Actions() {
			fmt.Fprintf(stdout, "%-16s %s\n", def.ID, def.Name)
		}
		return 0
	}

	if *entityID == "" || fs.NArg() < 1 {
		fs.Usage()
		return 2
	}
	kind, err := action.ParseKind(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	cmd := action.Command{Kind: kind, EntityID: *entityID, ItemID: *itemID, Label: *label}
	switch kind {
	case action.KindAction:
		cmd.Action = strings.Join(fs.Args()[1:], " ")
	case action.KindFormulaRoll:
		cmd.Formula = strings.Join(fs.Args()[1:], "")
	}

	report, err := a.Service.Handle(ctx, cmd)
	if err != nil {
		fmt.Fprintf(stderr, "%s\n", sheet.UserMessage(err))
		logger.Debug("command failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return 1
	}

	for _, n := range report.Outcome.Notifications() {
		fmt.Fprintf(stdout, "[%s] %s\n", n.Level, n.Message)
	}
	for _, r := range report.Rolls {
		fmt.Fprintf(stdout, "%s: %s\n", r.Label, r.Result)
	}
	if report.Persisted {
		for _, name := range []string{character.ResourceAP, character.ResourceMana} {
			if r, err := report.Outcome.Entity.Resource(name); err == nil {
				fmt.Fprintf(stdout, "%s %d/%d\n", strings.ToUpper(name), r.Current, r.Max)
			}
		}
	}
	logger.Debug("command handled", zap.Duration("elapsed", time.Since(start)))
	return 0
}
