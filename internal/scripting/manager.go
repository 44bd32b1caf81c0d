package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/wastehunter/internal/game/character"
)

// CircumstanceHook is the Lua global every circumstance script may define.
// It receives the entity table and returns a number of dice to add (or
// subtract, when negative).
const CircumstanceHook = "circumstance"

type script struct {
	name string
	sb   *Sandbox
}

// Manager owns one Sandbox per loaded script.
//
// Manager is safe for concurrent use; calls into the VMs are serialized.
type Manager struct {
	mu        sync.Mutex
	scripts   []script
	instLimit int
	logger    *zap.Logger
}

// NewManager creates a Manager with no scripts loaded.
//
// Precondition: logger must be non-nil; instLimit >= 0 (0 uses DefaultInstructionLimit).
func NewManager(logger *zap.Logger, instLimit int) *Manager {
	return &Manager{instLimit: instLimit, logger: logger}
}

// Load replaces the loaded scripts with every *.lua file in scriptDir, each
// executed in its own VM in lexicographic order.
//
// Precondition: scriptDir must be a readable directory.
// Postcondition: on error the previously loaded scripts stay in place.
func (m *Manager) Load(scriptDir string) error {
	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		return fmt.Errorf("scripting: reading script dir %q: %w", scriptDir, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	loaded := make([]script, 0, len(luaFiles))
	closeAll := func() {
		for _, s := range loaded {
			s.sb.Close()
		}
	}
	for _, path := range luaFiles {
		sb := NewSandbox(m.instLimit)
		m.RegisterModules(sb.L, filepath.Base(path))
		if err := sb.L.DoFile(path); err != nil {
			sb.Close()
			closeAll()
			return fmt.Errorf("scripting: loading %q: %w", path, err)
		}
		loaded = append(loaded, script{name: filepath.Base(path), sb: sb})
	}

	m.mu.Lock()
	old := m.scripts
	m.scripts = loaded
	m.mu.Unlock()
	for _, s := range old {
		s.sb.Close()
	}
	m.logger.Info("scripting: loaded circumstance scripts",
		zap.String("dir", scriptDir),
		zap.Int("count", len(loaded)),
	)
	return nil
}

// Scripts returns the names of the loaded scripts.
func (m *Manager) Scripts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.scripts))
	for i, s := range m.scripts {
		out[i] = s.name
	}
	return out
}

// Circumstance sums the circumstance hook of every loaded script for e.
// A script without the hook, a runtime error, an exhausted instruction
// budget, or a non-numeric result contributes 0; failures are logged at Warn.
//
// Postcondition: e is not modified.
func (m *Manager) Circumstance(e *character.Entity) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	total := 0
	for _, s := range m.scripts {
		total += m.call(s, e)
	}
	return total
}

func (m *Manager) call(s script, e *character.Entity) int {
	L := s.sb.L
	fn := L.GetGlobal(CircumstanceHook)
	if fn.Type() != lua.LTFunction {
		return 0
	}

	cancel := s.sb.Arm()
	defer cancel()

	if err := L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, entityTable(L, e)); err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("script", s.name),
			zap.String("entity", e.ID),
			zap.Error(err),
		)
		return 0
	}

	ret := L.Get(-1)
	L.Pop(1)
	n, ok := ret.(lua.LNumber)
	if !ok {
		if ret != lua.LNil {
			m.logger.Warn("scripting: circumstance hook returned a non-number",
				zap.String("script", s.name),
				zap.String("type", ret.Type().String()),
			)
		}
		return 0
	}
	return int(n)
}

// Close releases every loaded VM.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.scripts {
		s.sb.Close()
	}
	m.scripts = nil
}
