package ledger

import (
	"errors"
	"fmt"
)

// ErrMissingCompanion is matched by every MissingCompanionError.
var ErrMissingCompanion = errors.New("missing companion resource")

// ErrInvalidReference is matched by every InvalidReferenceError.
var ErrInvalidReference = errors.New("invalid resource reference")

// MissingCompanionError reports that a composite operation needed a companion
// consumable (e.g. a magazine) that is absent or depleted. The operation that
// returns it has mutated nothing.
type MissingCompanionError struct {
	Entity   string
	Resource string
}

func (e *MissingCompanionError) Error() string {
	return fmt.Sprintf("%s does not have enough %s remaining.", e.Entity, e.Resource)
}

// Is reports whether target is ErrMissingCompanion.
func (e *MissingCompanionError) Is(target error) bool {
	return target == ErrMissingCompanion
}

// InvalidReferenceError reports an identifier that does not resolve.
type InvalidReferenceError struct {
	// Kind is what was looked up: "entity", "item", "resource", "ability", "action", ...
	Kind string
	ID   string
	// Err is why the identifier failed to resolve, when known.
	Err error
}

func (e *InvalidReferenceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s %q: %v", e.Kind, e.ID, e.Err)
	}
	return fmt.Sprintf("unknown %s %q", e.Kind, e.ID)
}

// Unwrap returns the underlying cause, if any.
func (e *InvalidReferenceError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrInvalidReference.
func (e *InvalidReferenceError) Is(target error) bool {
	return target == ErrInvalidReference
}
