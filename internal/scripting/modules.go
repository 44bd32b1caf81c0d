package scripting

import (
	"sort"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/wastehunter/internal/game/character"
	"github.com/cory-johannsen/wastehunter/internal/game/formula"
)

// RegisterModules registers the engine table into L:
//
//	engine.half(v)  floor(v/2), the rule used for attribute contributions
//	engine.log(msg) writes msg to the debug log
//
// Precondition: L must belong to a Sandbox.
// Postcondition: engine global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState, scriptName string) {
	engine := L.NewTable()
	L.SetField(engine, "half", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(formula.Half(L.CheckInt(1))))
		return 1
	}))
	L.SetField(engine, "log", L.NewFunction(func(L *lua.LState) int {
		m.logger.Debug("scripting: lua log",
			zap.String("script", scriptName),
			zap.String("msg", L.CheckString(1)),
		)
		return 0
	}))
	L.SetGlobal("engine", engine)
}

// entityTable converts e into the read-only view handed to scripts.
func entityTable(L *lua.LState, e *character.Entity) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("id", lua.LString(e.ID))
	t.RawSetString("name", lua.LString(e.Name))
	t.RawSetString("kind", lua.LString(e.Kind))
	t.RawSetString("combat_mode", lua.LBool(e.CombatMode))
	t.RawSetString("circumstance_dice", lua.LNumber(e.CircumstanceDice))
	t.RawSetString("load", lua.LNumber(e.CurrentLoad()))

	abilities := L.NewTable()
	mods := L.NewTable()
	for _, code := range sortedKeys(e.Abilities) {
		abilities.RawSetString(code, lua.LNumber(e.Abilities[code]))
		mod, _ := e.AbilityMod(code)
		mods.RawSetString(code, lua.LNumber(mod))
	}
	t.RawSetString("abilities", abilities)
	t.RawSetString("mods", mods)

	skills := L.NewTable()
	for name, s := range e.Skills {
		st := L.NewTable()
		st.RawSetString("value", lua.LNumber(s.Value))
		st.RawSetString("mod", lua.LNumber(s.Mod))
		skills.RawSetString(name, st)
	}
	t.RawSetString("skills", skills)

	resources := L.NewTable()
	for name, r := range e.Resources {
		rt := L.NewTable()
		rt.RawSetString("current", lua.LNumber(r.Current))
		rt.RawSetString("max", lua.LNumber(r.Max))
		resources.RawSetString(name, rt)
	}
	t.RawSetString("resources", resources)

	items := L.NewTable()
	for _, it := range e.Items {
		if it == nil {
			continue
		}
		itt := L.NewTable()
		itt.RawSetString("id", lua.LString(it.ID))
		itt.RawSetString("name", lua.LString(it.Name))
		itt.RawSetString("category", lua.LString(it.Category))
		itt.RawSetString("quantity", lua.LNumber(it.Quantity))
		itt.RawSetString("weight", lua.LNumber(it.Weight))
		itt.RawSetString("charges", lua.LNumber(it.Charges.Current))
		items.Append(itt)
	}
	t.RawSetString("items", items)
	return t
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
