package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	content, err := filepath.Abs(filepath.Join("..", "..", "content"))
	require.NoError(t, err)
	cfg := fmt.Sprintf(`
logging:
  level: error
  format: json
store:
  backend: memory
  seed_dir: %s
rules:
  actions_file: %s
  catalog_dir: %s
  script_dir: %s
`, filepath.Join(content, "sheets"), filepath.Join(content, "actions.yaml"),
		filepath.Join(content, "items"), filepath.Join(content, "scripts"))
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0644))
	return path
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_MagazineDrop(t *testing.T) {
	code, out, _ := runCLI(t, "-config", writeConfig(t), "-entity", "rook", "-item", "glock", "magazine_drop")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "AP 5/10")
	assert.Contains(t, out, "MANA 6/6")
}

func TestRun_FormulaRoll(t *testing.T) {
	code, out, _ := runCLI(t, "-config", writeConfig(t), "-entity", "rook", "-label", "Scrounge", "formula_roll", "3d6x6cs>3")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "Scrounge: 3d6x6cs>3")
}

func TestRun_FailureReturnsOne(t *testing.T) {
	code, out, errOut := runCLI(t, "-config", writeConfig(t), "-entity", "rook", "-item", "ghost", "item_ap")
	assert.Equal(t, 1, code)
	assert.Empty(t, out)
	assert.Contains(t, errOut, `unknown item "ghost"`)
}

func TestRun_UsageErrors(t *testing.T) {
	cfg := writeConfig(t)

	code, _, errOut := runCLI(t, "-config", cfg, "rest")
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "usage: wastehunter")

	code, _, errOut = runCLI(t, "-config", cfg, "-entity", "rook", "teleport")
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, `unknown command kind "teleport"`)

	code, _, errOut = runCLI(t, "-config", filepath.Join(t.TempDir(), "missing.yaml"), "-entity", "rook", "rest")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "loading config")
}

func TestRun_ListActions(t *testing.T) {
	code, out, _ := runCLI(t, "-config", writeConfig(t), "-actions")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "disarm")
	assert.Contains(t, out, "scavenge")
}
