// Package scripting runs sandboxed GopherLua scripts that contribute
// situational circumstance dice to an entity's rolls.
package scripting

import (
	"context"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
)

// DefaultInstructionLimit caps the opcodes a single hook call may execute
// when no limit is configured.
const DefaultInstructionLimit = 100_000

// blockedGlobals are base-library functions that can reach the filesystem,
// compile arbitrary chunks, or tamper with the collector.
var blockedGlobals = []string{"dofile", "loadfile", "load", "loadstring", "collectgarbage", "require"}

// opcodeBudget is a context whose Done is polled by the VM once per opcode.
// The first poll past the budget cancels it.
type opcodeBudget struct {
	context.Context
	cancel context.CancelFunc
	left   atomic.Int64
}

func (b *opcodeBudget) Done() <-chan struct{} {
	if b.left.Add(-1) < 0 {
		b.cancel()
	}
	return b.Context.Done()
}

// Sandbox is one isolated Lua VM with a per-call opcode budget.
//
// A Sandbox is not safe for concurrent use.
type Sandbox struct {
	L     *lua.LState
	limit int64
}

// NewSandbox opens a VM with only the base, table, string and math
// libraries, strips blockedGlobals, and arms the first budget.
//
// Precondition: limit >= 0; 0 selects DefaultInstructionLimit.
// Postcondition: the caller must Close the returned Sandbox.
func NewSandbox(limit int) *Sandbox {
	if limit <= 0 {
		limit = DefaultInstructionLimit
	}
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, open := range []lua.LGFunction{lua.OpenBase, lua.OpenTable, lua.OpenString, lua.OpenMath} {
		open(L)
	}
	for _, name := range blockedGlobals {
		L.SetGlobal(name, lua.LNil)
	}
	s := &Sandbox{L: L, limit: int64(limit)}
	s.Arm()
	return s
}

// Arm replaces the VM's budget with a fresh one of the configured size.
// The returned func releases the budget early.
func (s *Sandbox) Arm() context.CancelFunc {
	ctx, cancel := context.WithCancel(context.Background())
	b := &opcodeBudget{Context: ctx, cancel: cancel}
	b.left.Store(s.limit)
	s.L.SetContext(b)
	return cancel
}

// Close releases the VM.
func (s *Sandbox) Close() {
	s.L.Close()
}
