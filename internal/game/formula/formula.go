// Package formula assembles dice-pool formulas from a skill score, halved
// attribute contributions and circumstance dice.
package formula

import (
	"fmt"

	"github.com/cory-johannsen/wastehunter/internal/game/dice"
)

// PoolPolicy decides what a non-positive pool size becomes.
type PoolPolicy string

const (
	// PolicyZero rolls no dice for a non-positive pool; the roll auto-fails.
	PolicyZero PoolPolicy = "zero"
	// PolicyMinOne clamps a non-positive pool to a single die.
	PolicyMinOne PoolPolicy = "min_one"
)

// ParsePolicy validates s as a PoolPolicy. The empty string selects PolicyZero.
func ParsePolicy(s string) (PoolPolicy, error) {
	switch PoolPolicy(s) {
	case "", PolicyZero:
		return PolicyZero, nil
	case PolicyMinOne:
		return PolicyMinOne, nil
	default:
		return "", fmt.Errorf("formula: unknown pool policy %q", s)
	}
}

// Half returns floor(v/2), rounding toward negative infinity.
//
// Postcondition: Half(v) == floor(0.5 * v) for all v.
func Half(v int) int {
	if v < 0 && v%2 != 0 {
		return v/2 - 1
	}
	return v / 2
}

// Builder builds standard exploding, success-counting pools.
type Builder struct {
	Policy PoolPolicy
}

// NewBuilder returns a Builder applying policy to non-positive pools.
func NewBuilder(policy PoolPolicy) Builder {
	return Builder{Policy: policy}
}

// PoolSize returns skillValue + sum(contributions) + circumstance without
// applying the pool policy.
func PoolSize(skillValue int, contributions []int, circumstance int) int {
	n := skillValue + circumstance
	for _, c := range contributions {
		n += c
	}
	return n
}

// Build returns the standard pool for the given parts.
// Contributions are used as given; callers halve them where the rules require.
//
// Postcondition: result.Sides == 6, result.ExplodeOn == 6,
// result.SuccessThreshold == 4, result.PoolSize >= 0.
func (b Builder) Build(skillValue int, contributions []int, circumstance int) dice.FormulaSpec {
	n := PoolSize(skillValue, contributions, circumstance)
	if n <= 0 {
		switch b.Policy {
		case PolicyMinOne:
			n = 1
		default:
			n = 0
		}
	}
	return dice.Standard(n)
}
