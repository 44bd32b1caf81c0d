// Package dice provides the randomness abstraction, the dice-pool formula
// type and its evaluator for the wastehunter rules.
package dice

import (
	"fmt"
	"strings"
)

// Standard pool parameters: six-sided dice, exploding on a six, success on 4+.
const (
	StandardSides     = 6
	StandardExplodeOn = 6
	StandardThreshold = 4
)

// FormulaSpec describes a dice pool independent of any rendering.
//
// ExplodeOn == 0 disables explosions. SuccessThreshold == 0 disables success
// counting, in which case the pool total is the face sum.
type FormulaSpec struct {
	PoolSize         int `json:"pool_size"`
	Sides            int `json:"sides"`
	ExplodeOn        int `json:"explode_on"`
	SuccessThreshold int `json:"success_threshold"`
}

// Standard returns the exploding, success-counting d6 pool of size n.
func Standard(n int) FormulaSpec {
	return FormulaSpec{
		PoolSize:         n,
		Sides:            StandardSides,
		ExplodeOn:        StandardExplodeOn,
		SuccessThreshold: StandardThreshold,
	}
}

// Exploding reports whether dice showing ExplodeOn or more add another die.
func (f FormulaSpec) Exploding() bool { return f.ExplodeOn > 0 }

// Counting reports whether the pool counts successes rather than summing faces.
func (f FormulaSpec) Counting() bool { return f.SuccessThreshold > 0 }

// String renders the formula in pool notation, e.g. "5d6x6cs>3".
// The success suffix uses a strict comparison, so threshold 4 renders as ">3".
func (f FormulaSpec) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%dd%d", f.PoolSize, f.Sides)
	if f.Exploding() {
		fmt.Fprintf(&b, "x%d", f.ExplodeOn)
	}
	if f.Counting() {
		fmt.Fprintf(&b, "cs>%d", f.SuccessThreshold-1)
	}
	return b.String()
}

// Validate checks the formula for impossible dice.
//
// Postcondition: returns nil iff PoolSize >= 0, Sides >= 2,
// ExplodeOn is 0 or in [2, Sides], and SuccessThreshold is in [0, Sides].
func (f FormulaSpec) Validate() error {
	var errs []string
	if f.PoolSize < 0 {
		errs = append(errs, fmt.Sprintf("pool size must be >= 0, got %d", f.PoolSize))
	}
	if f.Sides < 2 {
		errs = append(errs, fmt.Sprintf("sides must be >= 2, got %d", f.Sides))
	}
	if f.ExplodeOn != 0 && (f.ExplodeOn < 2 || f.ExplodeOn > f.Sides) {
		errs = append(errs, fmt.Sprintf("explode value must be in [2, %d], got %d", f.Sides, f.ExplodeOn))
	}
	if f.SuccessThreshold < 0 || f.SuccessThreshold > f.Sides {
		errs = append(errs, fmt.Sprintf("success threshold must be in [0, %d], got %d", f.Sides, f.SuccessThreshold))
	}
	if len(errs) > 0 {
		return fmt.Errorf("dice: invalid formula %q: %s", f.String(), strings.Join(errs, "; "))
	}
	return nil
}

// PoolResult holds the full audit trail for one pool evaluation.
//
// Postcondition: Successes == count of Dice >= Spec.SuccessThreshold when counting.
type PoolResult struct {
	Spec      FormulaSpec
	Dice      []int // every die rolled, explosions included, in roll order
	Successes int
}

// Total returns the number of successes for a counting pool, otherwise the face sum.
func (r PoolResult) Total() int {
	if r.Spec.Counting() {
		return r.Successes
	}
	total := 0
	for _, d := range r.Dice {
		total += d
	}
	return total
}

// String returns a human-readable audit string:
//
//	"3d6x6cs>3 → [6 2 4 5] = 3"
func (r PoolResult) String() string {
	return fmt.Sprintf("%s → %v = %d", r.Spec.String(), r.Dice, r.Total())
}

// Source is the randomness provider for dice rolls.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}
