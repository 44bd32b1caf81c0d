package formula

import (
	"fmt"

	"github.com/cory-johannsen/wastehunter/internal/game/dice"
	"github.com/cory-johannsen/wastehunter/internal/game/ledger"
)

// Component selects which skill field feeds the pool.
type Component string

const (
	// ComponentNone rolls without a skill score.
	ComponentNone Component = ""
	// ComponentValue reads the skill's trained value.
	ComponentValue Component = "value"
	// ComponentMod reads the skill's modifier.
	ComponentMod Component = "mod"
)

// Term is one attribute contribution to a pool.
type Term struct {
	Ability string `yaml:"ability"`
	// Halved contributions use Half(raw); others use the raw ability value.
	Halved bool `yaml:"halved"`
}

// RollDef is the configuration record behind every skill roll and maneuver.
type RollDef struct {
	Label     string    `yaml:"label"`
	Skill     string    `yaml:"skill"`
	Component Component `yaml:"component"`
	Terms     []Term    `yaml:"terms"`
}

// Sheet is the read-only view of an entity a RollDef needs.
type Sheet interface {
	AbilityValue(code string) (int, bool)
	SkillScore(skill string, component Component) (int, bool)
}

// Validate checks that the definition is internally consistent.
func (d RollDef) Validate() error {
	switch d.Component {
	case ComponentNone:
		if d.Skill != "" {
			return fmt.Errorf("roll %q: skill %q needs a component (value or mod)", d.Label, d.Skill)
		}
	case ComponentValue, ComponentMod:
		if d.Skill == "" {
			return fmt.Errorf("roll %q: component %q without a skill", d.Label, d.Component)
		}
	default:
		return fmt.Errorf("roll %q: unknown component %q", d.Label, d.Component)
	}
	for _, t := range d.Terms {
		if t.Ability == "" {
			return fmt.Errorf("roll %q: term without an ability", d.Label)
		}
	}
	return nil
}

// Contributions resolves each term against s, halving where configured.
//
// Postcondition: len(result) == len(d.Terms) on success; an unknown ability
// yields a *ledger.InvalidReferenceError.
func (d RollDef) Contributions(s Sheet) ([]int, error) {
	out := make([]int, 0, len(d.Terms))
	for _, t := range d.Terms {
		v, ok := s.AbilityValue(t.Ability)
		if !ok {
			return nil, &ledger.InvalidReferenceError{Kind: "ability", ID: t.Ability}
		}
		if t.Halved {
			v = Half(v)
		}
		out = append(out, v)
	}
	return out, nil
}

// SkillValue returns the skill score the definition reads, or 0 for ComponentNone.
func (d RollDef) SkillValue(s Sheet) (int, error) {
	if d.Component == ComponentNone {
		return 0, nil
	}
	v, ok := s.SkillScore(d.Skill, d.Component)
	if !ok {
		return 0, &ledger.InvalidReferenceError{Kind: "skill", ID: d.Skill}
	}
	return v, nil
}

// BuildFor resolves d against s and builds the pool with circumstance dice added.
func (b Builder) BuildFor(d RollDef, s Sheet, circumstance int) (dice.FormulaSpec, error) {
	skill, err := d.SkillValue(s)
	if err != nil {
		return dice.FormulaSpec{}, err
	}
	contributions, err := d.Contributions(s)
	if err != nil {
		return dice.FormulaSpec{}, err
	}
	return b.Build(skill, contributions, circumstance), nil
}
