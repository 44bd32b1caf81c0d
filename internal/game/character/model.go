// Package character defines the entity snapshot (characters and NPCs), its
// derived values, and the partial-update patch exchanged with document stores.
package character

import (
	"errors"
	"fmt"
	"sort"

	"github.com/cory-johannsen/wastehunter/internal/game/formula"
	"github.com/cory-johannsen/wastehunter/internal/game/inventory"
	"github.com/cory-johannsen/wastehunter/internal/game/ledger"
)

// Kind distinguishes player characters from NPCs.
type Kind string

const (
	KindCharacter Kind = "character"
	KindNPC       Kind = "npc"
)

// Resource names used by the rules.
const (
	ResourceAP           = "ap"
	ResourceStamina      = "stamina"
	ResourceVitality     = "vitality"
	ResourceWill         = "will"
	ResourceShield       = "shield"
	ResourceLuck         = "luck"
	ResourceMana         = "mana"
	ResourceExhaustion   = "exhaustion"
	ResourceBloodToxin   = "bloodtoxin"
	ResourceIntoxication = "intoxication"
	ResourceLoad         = "load"
)

// AbilityModBase is subtracted from a raw ability value to give its modifier.
const AbilityModBase = 6

// Skill is a trained skill: a value plus a modifier.
type Skill struct {
	Value int `json:"value" yaml:"value"`
	Mod   int `json:"mod" yaml:"mod"`
}

// Entity is a snapshot of a character or NPC document.
type Entity struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	Kind Kind   `json:"kind" yaml:"kind"`

	// Abilities holds raw ability values keyed by code (STR, QCK, TEC, ...).
	Abilities map[string]int             `json:"abilities" yaml:"abilities"`
	Skills    map[string]Skill           `json:"skills" yaml:"skills"`
	Resources map[string]ledger.Resource `json:"resources" yaml:"resources"`

	// CombatMode gates whether some actions consume action points.
	CombatMode       bool `json:"combat_mode" yaml:"combat_mode"`
	CircumstanceDice int  `json:"circumstance_dice" yaml:"circumstance_dice"`
	Ascension        int  `json:"ascension,omitempty" yaml:"ascension,omitempty"`
	ChallengeRating  int  `json:"challenge_rating,omitempty" yaml:"challenge_rating,omitempty"`

	Items []*inventory.Item `json:"items" yaml:"items"`
}

// AbilityValue returns the raw value of the ability code.
func (e *Entity) AbilityValue(code string) (int, bool) {
	v, ok := e.Abilities[code]
	return v, ok
}

// AbilityMod returns the ability modifier, always derived as raw − 6.
func (e *Entity) AbilityMod(code string) (int, bool) {
	v, ok := e.Abilities[code]
	if !ok {
		return 0, false
	}
	return v - AbilityModBase, true
}

// SkillScore returns the skill field selected by component.
func (e *Entity) SkillScore(skill string, component formula.Component) (int, bool) {
	s, ok := e.Skills[skill]
	if !ok {
		return 0, false
	}
	switch component {
	case formula.ComponentValue:
		return s.Value, true
	case formula.ComponentMod:
		return s.Mod, true
	default:
		return 0, true
	}
}

// Resource returns the named resource snapshot.
//
// Postcondition: an unknown name yields a *ledger.InvalidReferenceError.
func (e *Entity) Resource(name string) (ledger.Resource, error) {
	r, ok := e.Resources[name]
	if !ok {
		return ledger.Resource{}, &ledger.InvalidReferenceError{Kind: "resource", ID: name}
	}
	return r, nil
}

// SetResource replaces the named resource snapshot.
func (e *Entity) SetResource(name string, r ledger.Resource) {
	if e.Resources == nil {
		e.Resources = make(map[string]ledger.Resource)
	}
	e.Resources[name] = r
}

// Item returns the owned item with the given ID.
//
// Postcondition: an unknown id yields a *ledger.InvalidReferenceError.
func (e *Entity) Item(id string) (*inventory.Item, error) {
	for _, it := range e.Items {
		if it != nil && it.ID == id {
			return it, nil
		}
	}
	return nil, &ledger.InvalidReferenceError{Kind: "item", ID: id}
}

// Companion returns the magazine that supplies ammoType, preferring one with
// a positive quantity. It returns nil when the entity carries none.
func (e *Entity) Companion(ammoType string) *inventory.Item {
	var fallback *inventory.Item
	for _, it := range e.Items {
		if it == nil || it.Category != inventory.CategoryMagazine || it.AmmoType != ammoType {
			continue
		}
		if it.Quantity > 0 {
			return it
		}
		if fallback == nil {
			fallback = it
		}
	}
	return fallback
}

// Clone returns a deep copy of e.
func (e *Entity) Clone() *Entity {
	cp := *e
	if e.Abilities != nil {
		cp.Abilities = make(map[string]int, len(e.Abilities))
		for k, v := range e.Abilities {
			cp.Abilities[k] = v
		}
	}
	if e.Skills != nil {
		cp.Skills = make(map[string]Skill, len(e.Skills))
		for k, v := range e.Skills {
			cp.Skills[k] = v
		}
	}
	if e.Resources != nil {
		cp.Resources = make(map[string]ledger.Resource, len(e.Resources))
		for k, v := range e.Resources {
			cp.Resources[k] = v
		}
	}
	if e.Items != nil {
		cp.Items = make([]*inventory.Item, len(e.Items))
		for i, it := range e.Items {
			cp.Items[i] = it.Clone()
		}
	}
	return &cp
}

// Validate checks the entity's structural invariants.
//
// Postcondition: returns nil iff ID and Name are set, Kind is known, every
// resource has a non-negative max, and items are non-nil, valid and uniquely
// identified.
func (e *Entity) Validate() error {
	var errs []error
	if e.ID == "" {
		errs = append(errs, errors.New("ID must not be empty"))
	}
	if e.Name == "" {
		errs = append(errs, errors.New("Name must not be empty"))
	}
	if e.Kind != KindCharacter && e.Kind != KindNPC {
		errs = append(errs, fmt.Errorf("Kind must be character or npc, got %q", e.Kind))
	}
	names := make([]string, 0, len(e.Resources))
	for name := range e.Resources {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if e.Resources[name].Max < 0 {
			errs = append(errs, fmt.Errorf("resource %q max must be >= 0", name))
		}
	}
	seen := make(map[string]bool, len(e.Items))
	for i, it := range e.Items {
		if it == nil {
			errs = append(errs, fmt.Errorf("item[%d] must not be nil", i))
			continue
		}
		if seen[it.ID] {
			errs = append(errs, fmt.Errorf("duplicate item ID %q", it.ID))
		}
		seen[it.ID] = true
		if err := it.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("entity %q validation failed: %v", e.ID, errs)
	}
	return nil
}
