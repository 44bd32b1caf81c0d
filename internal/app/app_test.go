package app_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/wastehunter/internal/app"
	"github.com/cory-johannsen/wastehunter/internal/config"
	"github.com/cory-johannsen/wastehunter/internal/game/action"
	"github.com/cory-johannsen/wastehunter/internal/game/character"
	"github.com/cory-johannsen/wastehunter/internal/game/dice"
)

const rookSheet = `
id: rook
name: Rook
abilities: {QCK: 7, STR: 8}
skills:
  palming: {value: 2, mod: 1}
resources:
  ap: {current: 5, max: 10}
items:
  - def_id: Glock 22
    id: glock
`

const catalog = `
items:
  - id: glock_22
    name: Glock 22
    category: weapon
    ap_cost: 3
    ammo_type: glock
    weight: 2
    charges: {current: 15, max: 15}
`

func write(t *testing.T, dir, name, body string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	root := t.TempDir()
	write(t, filepath.Join(root, "sheets"), "rook.yaml", rookSheet)
	write(t, filepath.Join(root, "items"), "guns.yaml", catalog)

	cfg, err := config.LoadFromViper(config.Defaults())
	require.NoError(t, err)
	cfg.Store.Backend = config.BackendMemory
	cfg.Store.SeedDir = filepath.Join(root, "sheets")
	cfg.Rules.CatalogDir = filepath.Join(root, "items")
	cfg.Rules.ScriptDir = ""
	cfg.Rules.ActionsFile = ""
	require.NoError(t, cfg.Validate())
	return cfg
}

func newApp(t *testing.T, cfg config.Config) (*app.App, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	a, err := app.New(context.Background(), cfg, zap.New(core), dice.NewSeededSource(7))
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a, logs
}

func disarm(t *testing.T, a *app.App) int {
	t.Helper()
	rep, err := a.Service.Handle(context.Background(), action.Command{Kind: action.KindAction, EntityID: "rook", Action: "disarm"})
	require.NoError(t, err)
	require.Len(t, rep.Rolls, 1)
	assert.True(t, rep.Persisted)
	rolls := rep.Outcome.Rolls()
	require.Len(t, rolls, 1)
	return rolls[0].Spec.PoolSize
}

func TestNew_MemoryBackendSeedsAndHandles(t *testing.T) {
	a, logs := newApp(t, testConfig(t))
	assert.Nil(t, a.Scripts)

	e, err := a.Store.Load(context.Background(), "rook")
	require.NoError(t, err)
	require.Len(t, e.Items, 1)
	assert.Equal(t, "Glock 22", e.Items[0].Name)
	assert.Equal(t, "glock_22", e.Items[0].DefID)

	disarm(t, a)
	e, err = a.Store.Load(context.Background(), "rook")
	require.NoError(t, err)
	assert.Equal(t, 2, e.Resources[character.ResourceAP].Current)
	assert.Positive(t, logs.FilterMessage("import complete").Len())
}

func TestNew_ScriptsAddCircumstanceDice(t *testing.T) {
	plain, _ := newApp(t, testConfig(t))
	base := disarm(t, plain)

	cfg := testConfig(t)
	cfg.Rules.ScriptDir = filepath.Dir(write(t, filepath.Join(t.TempDir(), "scripts"), "cover.lua",
		`function circumstance(e) return 2 end`))
	scripted, logs := newApp(t, cfg)
	require.NotNil(t, scripted.Scripts)
	assert.Equal(t, []string{"cover.lua"}, scripted.Scripts.Scripts())
	assert.Equal(t, base+2, disarm(t, scripted))
	assert.Equal(t, 1, logs.FilterMessage("circumstance scripts loaded").Len())
}

func TestNew_ActionsFileOverridesCost(t *testing.T) {
	cfg := testConfig(t)
	cfg.Rules.ActionsFile = write(t, t.TempDir(), "actions.yaml", `
actions:
  - id: disarm
    name: Disarm
    cost: {fixed: 5}
    roll:
      label: Disarm
      skill: palming
      component: mod
      terms: [{ability: QCK}]
`)
	a, _ := newApp(t, cfg)
	disarm(t, a)
	e, err := a.Store.Load(context.Background(), "rook")
	require.NoError(t, err)
	assert.Equal(t, 0, e.Resources[character.ResourceAP].Current)
}

func TestDispatcherOptions_Errors(t *testing.T) {
	cfg := testConfig(t)
	rules := cfg.Rules
	rules.ActionsFile = filepath.Join(t.TempDir(), "missing.yaml")
	_, _, err := app.DispatcherOptions(rules, zap.NewNop())
	assert.ErrorContains(t, err, "loading action table")

	rules = cfg.Rules
	rules.ScriptDir = filepath.Join(t.TempDir(), "missing")
	_, mgr, err := app.DispatcherOptions(rules, zap.NewNop())
	assert.ErrorContains(t, err, "loading scripts")
	assert.Nil(t, mgr)
}

func TestOpenStore_SeedErrors(t *testing.T) {
	cfg := testConfig(t)
	cfg.Rules.CatalogDir = filepath.Join(t.TempDir(), "missing")
	_, _, err := app.OpenStore(context.Background(), cfg, zap.NewNop())
	assert.ErrorContains(t, err, "item catalog")

	cfg = testConfig(t)
	cfg.Rules.CatalogDir = ""
	_, _, err = app.OpenStore(context.Background(), cfg, zap.NewNop())
	assert.ErrorContains(t, err, "seeding memory store")
}

func TestLoadCatalog_EmptyDir(t *testing.T) {
	r, err := app.LoadCatalog("")
	require.NoError(t, err)
	assert.Empty(t, r.All())
}

func TestShippedContent(t *testing.T) {
	cfg, err := config.Load(filepath.Join("..", "..", "configs", "dev.yaml"))
	require.NoError(t, err)
	root := filepath.Join("..", "..")
	cfg.Store.SeedDir = filepath.Join(root, "content", "sheets")
	cfg.Rules.CatalogDir = filepath.Join(root, "content", "items")
	cfg.Rules.ActionsFile = filepath.Join(root, "content", "actions.yaml")
	cfg.Rules.ScriptDir = filepath.Join(root, "content", "scripts")
	a, _ := newApp(t, cfg)
	ctx := context.Background()

	list, err := a.Store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "rook", list[0].ID)
	assert.Equal(t, character.KindNPC, list[1].Kind)
	assert.Equal(t, []string{"exhaustion.lua", "intoxication.lua"}, a.Scripts.Scripts())

	_, err = a.Service.Handle(ctx, action.Command{Kind: action.KindMagazineDrop, EntityID: "rook", ItemID: "glock"})
	require.NoError(t, err)
	rook, err := a.Store.Load(ctx, "rook")
	require.NoError(t, err)
	assert.Equal(t, 5, rook.Resources[character.ResourceAP].Current)
	assert.Equal(t, 1, rook.Resources["smallcarry"].Current)
	mag, err := rook.Item("glock_mag")
	require.NoError(t, err)
	assert.Equal(t, 1, mag.Quantity)

	rep, err := a.Service.Handle(ctx, action.Command{Kind: action.KindAction, EntityID: "rook", Action: "loot"})
	require.NoError(t, err)
	assert.False(t, rep.Persisted)
	require.Len(t, rep.Outcome.Rolls(), 1)
	assert.Equal(t, 8, rep.Outcome.Rolls()[0].Spec.PoolSize)

	_, err = a.Service.Handle(ctx, action.Command{Kind: action.KindManaSpend, EntityID: "rook", ItemID: "bolt"})
	require.NoError(t, err)
	rook, err = a.Store.Load(ctx, "rook")
	require.NoError(t, err)
	assert.Equal(t, 3, rook.Resources[character.ResourceMana].Current)

	rep, err = a.Service.Handle(ctx, action.Command{Kind: action.KindFormulaRoll, EntityID: "rook", Formula: "3d6x6cs>3", Label: "Scrounge"})
	require.NoError(t, err)
	require.Len(t, rep.Rolls, 1)
	assert.Equal(t, "Scrounge", rep.Rolls[0].Label)
}
