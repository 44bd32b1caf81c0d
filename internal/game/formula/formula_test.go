package formula_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/wastehunter/internal/game/formula"
	"github.com/cory-johannsen/wastehunter/internal/game/ledger"
)

type fakeSheet struct {
	abilities map[string]int
	skills    map[string][2]int // value, mod
}

func (f fakeSheet) AbilityValue(code string) (int, bool) {
	v, ok := f.abilities[code]
	return v, ok
}

func (f fakeSheet) SkillScore(skill string, c formula.Component) (int, bool) {
	s, ok := f.skills[skill]
	if !ok {
		return 0, false
	}
	if c == formula.ComponentValue {
		return s[0], true
	}
	return s[1], true
}

func TestBuild_SumsParts(t *testing.T) {
	spec := formula.NewBuilder(formula.PolicyZero).Build(2, []int{1, 1}, 1)
	assert.Equal(t, 5, spec.PoolSize)
	assert.Equal(t, 6, spec.Sides)
	assert.Equal(t, 6, spec.ExplodeOn)
	assert.Equal(t, 4, spec.SuccessThreshold)
	assert.Equal(t, "5d6x6cs>3", spec.String())
}

func TestBuild_NonPositivePool(t *testing.T) {
	zero := formula.NewBuilder(formula.PolicyZero).Build(-2, []int{0, 1}, 0)
	assert.Equal(t, 0, zero.PoolSize)

	one := formula.NewBuilder(formula.PolicyMinOne).Build(-2, []int{0, 1}, 0)
	assert.Equal(t, 1, one.PoolSize)

	exact := formula.NewBuilder(formula.PolicyMinOne).Build(0, nil, 0)
	assert.Equal(t, 1, exact.PoolSize)
}

func TestProperty_Build_PoolSize(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		skill := rapid.IntRange(-5, 10).Draw(rt, "skill")
		contribs := rapid.SliceOfN(rapid.IntRange(-3, 8), 0, 3).Draw(rt, "contributions")
		circ := rapid.IntRange(-3, 5).Draw(rt, "circumstance")
		policy := rapid.SampledFrom([]formula.PoolPolicy{formula.PolicyZero, formula.PolicyMinOne}).Draw(rt, "policy")

		raw := formula.PoolSize(skill, contribs, circ)
		spec := formula.NewBuilder(policy).Build(skill, contribs, circ)
		switch {
		case raw > 0:
			assert.Equal(rt, raw, spec.PoolSize)
		case policy == formula.PolicyMinOne:
			assert.Equal(rt, 1, spec.PoolSize)
		default:
			assert.Equal(rt, 0, spec.PoolSize)
		}
	})
}

func TestProperty_Half_IsFloor(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		v := rapid.IntRange(-1000, 1000).Draw(rt, "v")
		assert.Equal(rt, int(math.Floor(0.5*float64(v))), formula.Half(v))
	})
}

func TestParsePolicy(t *testing.T) {
	p, err := formula.ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, formula.PolicyZero, p)
	p, err = formula.ParsePolicy("min_one")
	require.NoError(t, err)
	assert.Equal(t, formula.PolicyMinOne, p)
	_, err = formula.ParsePolicy("max")
	assert.Error(t, err)
}

func TestRollDef_BuildFor_HalvesConfiguredTerms(t *testing.T) {
	sheet := fakeSheet{
		abilities: map[string]int{"STR": 7, "CLN": 5},
		skills:    map[string][2]int{"intimidation": {0, 2}},
	}
	def := formula.RollDef{
		Label:     "Intimidation",
		Skill:     "intimidation",
		Component: formula.ComponentMod,
		Terms:     []formula.Term{{Ability: "STR", Halved: true}, {Ability: "CLN"}},
	}
	require.NoError(t, def.Validate())

	contribs, err := def.Contributions(sheet)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 5}, contribs)

	spec, err := formula.NewBuilder(formula.PolicyZero).BuildFor(def, sheet, 1)
	require.NoError(t, err)
	assert.Equal(t, 2+3+5+1, spec.PoolSize)
}

func TestRollDef_NoSkillComponent(t *testing.T) {
	sheet := fakeSheet{abilities: map[string]int{"SPI": 4, "CLN": 6}}
	def := formula.RollDef{
		Label: "Resist Insanity",
		Terms: []formula.Term{{Ability: "SPI", Halved: true}, {Ability: "CLN", Halved: true}},
	}
	spec, err := formula.NewBuilder(formula.PolicyZero).BuildFor(def, sheet, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, spec.PoolSize)
}

func TestRollDef_UnknownAbility(t *testing.T) {
	def := formula.RollDef{Label: "x", Terms: []formula.Term{{Ability: "ZZZ"}}}
	_, err := formula.NewBuilder(formula.PolicyZero).BuildFor(def, fakeSheet{}, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ledger.ErrInvalidReference))
}

func TestRollDef_UnknownSkill(t *testing.T) {
	def := formula.RollDef{Label: "x", Skill: "driving", Component: formula.ComponentValue}
	_, err := formula.NewBuilder(formula.PolicyZero).BuildFor(def, fakeSheet{}, 0)
	var ref *ledger.InvalidReferenceError
	require.True(t, errors.As(err, &ref))
	assert.Equal(t, "skill", ref.Kind)
}

func TestRollDef_Validate(t *testing.T) {
	assert.Error(t, formula.RollDef{Label: "a", Skill: "driving"}.Validate())
	assert.Error(t, formula.RollDef{Label: "a", Component: formula.ComponentMod}.Validate())
	assert.Error(t, formula.RollDef{Label: "a", Skill: "x", Component: "bogus"}.Validate())
	assert.Error(t, formula.RollDef{Label: "a", Terms: []formula.Term{{}}}.Validate())
	assert.NoError(t, formula.RollDef{Label: "a", Skill: "x", Component: formula.ComponentValue}.Validate())
}
