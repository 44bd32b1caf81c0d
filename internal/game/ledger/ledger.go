// Package ledger provides pure operations over bounded numeric resources such
// as action points, charges, stamina and carried ammunition.
//
// No function in this package mutates its input. Callers persist the returned
// snapshot and surface the returned warnings.
package ledger

import "fmt"

// Resource is a snapshot of a bounded numeric pool.
//
// Current may be negative (overspend) and may exceed Max after an action point
// reset grants banked bonus points.
type Resource struct {
	Current int `json:"current" yaml:"current"`
	Max     int `json:"max" yaml:"max"`
}

// WarningKind classifies a non-fatal ledger signal.
type WarningKind string

const (
	// WarningNegativeResource is raised when a spend leaves the pool below zero.
	WarningNegativeResource WarningKind = "negative_resource"
	// WarningChargeDepletion is raised when a decrement lands on a configured threshold.
	WarningChargeDepletion WarningKind = "charge_depletion"
)

// Warning is a recoverable, user-facing signal produced by a ledger operation.
type Warning struct {
	Kind      WarningKind
	Resource  string
	Remaining int
	Message   string
}

// Result is the outcome of an operation that may warn.
type Result struct {
	Resource Resource
	Warnings []Warning
}

// Threshold maps a remaining value to the message shown when a decrement lands on it.
type Threshold struct {
	Remaining int    `mapstructure:"remaining" yaml:"remaining"`
	Message   string `mapstructure:"message" yaml:"message"`
}

// DefaultThresholds are the charge depletion warnings used when none are configured.
var DefaultThresholds = []Threshold{
	{Remaining: 1, Message: "1 Charge Remaining"},
	{Remaining: 0, Message: "No Charges Remaining"},
}

// Ledger carries the configurable parts of the resource rules.
type Ledger struct {
	Thresholds []Threshold
}

// New returns a Ledger warning at the given thresholds.
// With no thresholds, DefaultThresholds are used.
func New(thresholds ...Threshold) Ledger {
	if len(thresholds) == 0 {
		thresholds = DefaultThresholds
	}
	out := make([]Threshold, len(thresholds))
	copy(out, thresholds)
	return Ledger{Thresholds: out}
}

// Spend deducts amount from r.
//
// Postcondition: result.Resource.Current == r.Current - amount; exactly one
// WarningNegativeResource is present iff the new value is negative.
func Spend(name string, r Resource, amount int) Result {
	next := Resource{Current: r.Current - amount, Max: r.Max}
	res := Result{Resource: next}
	if next.Current < 0 {
		res.Warnings = append(res.Warnings, Warning{
			Kind:      WarningNegativeResource,
			Resource:  name,
			Remaining: next.Current,
			Message:   fmt.Sprintf("Negative %s Detected: Alis may now eat your dice.", displayName(name)),
		})
	}
	return res
}

// Drain spends everything left in r, leaving it at zero.
//
// Postcondition: result.Resource.Current == 0.
func Drain(name string, r Resource) Result {
	return Spend(name, r, r.Current)
}

// RestoreToMax refills r.
//
// Postcondition: result.Current == r.Max.
func RestoreToMax(r Resource) Resource {
	return Resource{Current: r.Max, Max: r.Max}
}

// RestoreHalfOverflow resets r to its maximum plus half of any banked points,
// rounded up. An overspent pool is reset to its maximum only.
//
// Postcondition: r.Current >= 0 → result.Current == r.Max + ceil(r.Current/2);
// r.Current < 0 → result.Current == r.Max.
func RestoreHalfOverflow(r Resource) Resource {
	if r.Current < 0 {
		return RestoreToMax(r)
	}
	return Resource{Current: r.Max + (r.Current+1)/2, Max: r.Max}
}

// Restore adds by to r without crossing r.Max. A value already above Max is
// left unchanged.
//
// Precondition: by >= 0.
func Restore(r Resource, by int) Resource {
	if r.Current >= r.Max {
		return r
	}
	next := r.Current + by
	if next > r.Max {
		next = r.Max
	}
	return Resource{Current: next, Max: r.Max}
}

// ClampNonNegative raises a negative Current to zero.
//
// Postcondition: result.Current >= 0; ClampNonNegative(ClampNonNegative(r)) == ClampNonNegative(r).
func ClampNonNegative(r Resource) Resource {
	if r.Current < 0 {
		return Resource{Current: 0, Max: r.Max}
	}
	return r
}

// Decrement lowers r by `by`, never below floorAt, and emits a
// WarningChargeDepletion for every configured threshold the new value equals.
// No warning is emitted when the value did not change.
//
// Postcondition: result.Resource.Current == max(r.Current-by, floorAt) when
// r.Current >= floorAt.
func (l Ledger) Decrement(name string, r Resource, by, floorAt int) Result {
	next := r.Current - by
	if next < floorAt {
		next = floorAt
	}
	if r.Current < floorAt {
		next = r.Current
	}
	res := Result{Resource: Resource{Current: next, Max: r.Max}}
	if next == r.Current {
		return res
	}
	for _, t := range l.Thresholds {
		if t.Remaining == next {
			res.Warnings = append(res.Warnings, Warning{
				Kind:      WarningChargeDepletion,
				Resource:  name,
				Remaining: next,
				Message:   t.Message,
			})
		}
	}
	return res
}

// Lower decrements r by `by`, never below floorAt, without warnings.
// Used for condition counters such as exhaustion and intoxication.
func Lower(r Resource, by, floorAt int) Resource {
	return Ledger{}.Decrement("", r, by, floorAt).Resource
}

func displayName(name string) string {
	switch name {
	case "ap":
		return "AP"
	case "":
		return "Resource"
	default:
		return name
	}
}
