package action

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/wastehunter/internal/game/formula"
)

// Cost is the action point price of a table entry:
// Fixed + floor(ap.Max * Numerator / Denominator), or the whole pool when Drain is set.
type Cost struct {
	Fixed       int  `yaml:"fixed"`
	Numerator   int  `yaml:"numerator"`
	Denominator int  `yaml:"denominator"`
	Drain       bool `yaml:"drain"`
}

// Amount returns the AP to spend for a pool with the given maximum.
// It is meaningless when Drain is set.
func (c Cost) Amount(apMax int) int {
	n := c.Fixed
	if c.Denominator > 0 {
		n += floorDiv(apMax*c.Numerator, c.Denominator)
	}
	return n
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// ActionDef is one skill roll or maneuver.
type ActionDef struct {
	ID      string   `yaml:"id"`
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases"`
	Cost    Cost     `yaml:"cost"`
	// CombatGated entries only spend AP while combat mode is on.
	CombatGated bool             `yaml:"combat_gated"`
	Roll        *formula.RollDef `yaml:"roll"`
}

// Validate checks that the definition is internally consistent.
//
// Postcondition: returns nil iff ID and Name are set, the cost is well formed
// and the roll, when present, is valid.
func (a ActionDef) Validate() error {
	var errs []error
	if a.ID == "" {
		errs = append(errs, errors.New("ID must not be empty"))
	}
	if a.Name == "" {
		errs = append(errs, errors.New("Name must not be empty"))
	}
	if a.Cost.Denominator < 0 {
		errs = append(errs, errors.New("cost denominator must be >= 0"))
	}
	if a.Cost.Denominator == 0 && a.Cost.Numerator != 0 {
		errs = append(errs, errors.New("cost numerator requires a denominator"))
	}
	if a.Cost.Drain && (a.Cost.Fixed != 0 || a.Cost.Numerator != 0) {
		errs = append(errs, errors.New("a draining cost cannot also be fixed or proportional"))
	}
	if a.Roll != nil {
		if err := a.Roll.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("action %q validation failed: %v", a.ID, errs)
	}
	return nil
}

// Table maps action IDs and aliases to definitions.
type Table struct {
	actions map[string]*ActionDef // id → action
	aliases map[string]string     // alias → id
}

// NewTable builds a Table from defs.
//
// Precondition: no two definitions share an ID or alias.
// Postcondition: returns a Table or an error on invalid definitions or collisions.
func NewTable(defs []ActionDef) (*Table, error) {
	t := &Table{
		actions: make(map[string]*ActionDef, len(defs)),
		aliases: make(map[string]string),
	}
	for i := range defs {
		def := &defs[i]
		if err := def.Validate(); err != nil {
			return nil, err
		}
		id := normalize(def.ID)
		if _, exists := t.actions[id]; exists {
			return nil, fmt.Errorf("duplicate action id: %q", def.ID)
		}
		if _, exists := t.aliases[id]; exists {
			return nil, fmt.Errorf("action id %q conflicts with an existing alias", def.ID)
		}
		t.actions[id] = def
		for _, alias := range def.Aliases {
			a := normalize(alias)
			if _, exists := t.actions[a]; exists {
				return nil, fmt.Errorf("alias %q conflicts with action id %q", alias, a)
			}
			if existing, exists := t.aliases[a]; exists {
				return nil, fmt.Errorf("duplicate alias %q: used by %q and %q", alias, existing, def.ID)
			}
			t.aliases[a] = id
		}
	}
	return t, nil
}

// DefaultTable returns a Table of the built-in actions.
//
// Postcondition: never nil; panics only if the built-in table is inconsistent.
func DefaultTable() *Table {
	t, err := NewTable(BuiltinActions())
	if err != nil {
		panic(fmt.Sprintf("action: building default table: %v", err))
	}
	return t
}

// LoadTable reads a YAML action file and merges it over the built-in actions.
// Entries whose ID matches a built-in replace it; others are added.
//
// Precondition: path names a readable YAML file with a top-level `actions` list.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading action table %q: %w", path, err)
	}
	var file struct {
		Actions []ActionDef `yaml:"actions"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing action table %q: %w", path, err)
	}
	t, err := NewTable(Merge(BuiltinActions(), file.Actions))
	if err != nil {
		return nil, fmt.Errorf("action table %q: %w", path, err)
	}
	return t, nil
}

// Merge returns base with every entry of overrides applied by ID.
func Merge(base, overrides []ActionDef) []ActionDef {
	out := make([]ActionDef, len(base))
	copy(out, base)
	index := make(map[string]int, len(out))
	for i, def := range out {
		index[normalize(def.ID)] = i
	}
	for _, def := range overrides {
		if i, ok := index[normalize(def.ID)]; ok {
			out[i] = def
			continue
		}
		index[normalize(def.ID)] = len(out)
		out = append(out, def)
	}
	return out
}

// Resolve looks up an action by ID or alias, ignoring case and treating
// spaces and hyphens as underscores.
//
// Postcondition: returns (def, true) if found, or (nil, false).
func (t *Table) Resolve(name string) (*ActionDef, bool) {
	key := normalize(name)
	if def, ok := t.actions[key]; ok {
		return def, true
	}
	if id, ok := t.aliases[key]; ok {
		return t.actions[id], true
	}
	return nil, false
}

// Actions returns every definition sorted by ID.
func (t *Table) Actions() []*ActionDef {
	out := make([]*ActionDef, 0, len(t.actions))
	for _, def := range t.actions {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "_", "-", "_", "'", "").Replace(s)
}
