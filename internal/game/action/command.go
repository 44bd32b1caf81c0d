// Package action dispatches sheet interactions against an entity snapshot.
//
// Every handler works on a clone of the snapshot it is given and reports what
// the host must do next as a list of effects: roll requests, notifications and
// at most one persist request. A handler that fails returns no effects.
package action

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/wastehunter/internal/game/character"
	"github.com/cory-johannsen/wastehunter/internal/game/dice"
	"github.com/cory-johannsen/wastehunter/internal/game/ledger"
)

// Kind names a command handler.
type Kind string

// Kinds understood by the Dispatcher.
const (
	KindItemAP          Kind = "item_ap"
	KindSpellAP         Kind = "spell_ap"
	KindItemRoll        Kind = "item_roll"
	KindUseCharge       Kind = "use_charge"
	KindReload          Kind = "reload"
	KindAutofireRearm   Kind = "autofire_rearm"
	KindMagazineDrop    Kind = "magazine_drop"
	KindAPReset         Kind = "ap_reset"
	KindRest            Kind = "rest"
	KindRecover         Kind = "recover"
	KindStaminaReset    Kind = "stamina_reset"
	KindVitalityRecover Kind = "vitality_recover"
	KindWillRecover     Kind = "will_recover"
	KindUpdateLoad      Kind = "update_load"
	KindCombatMode      Kind = "combat_mode"
	KindAction          Kind = "action"
	KindManaSpend       Kind = "mana_spend"
	KindFormulaRoll     Kind = "formula_roll"
)

var allKinds = []Kind{
	KindItemAP, KindSpellAP, KindItemRoll, KindUseCharge, KindReload,
	KindAutofireRearm, KindMagazineDrop, KindAPReset, KindRest, KindRecover,
	KindStaminaReset, KindVitalityRecover, KindWillRecover, KindUpdateLoad,
	KindCombatMode, KindAction, KindManaSpend, KindFormulaRoll,
}

// Kinds returns every command kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, len(allKinds))
	copy(out, allKinds)
	return out
}

// ParseKind resolves a command kind name, accepting hyphens for underscores.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	for _, known := range allKinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown command kind %q", s)
}

// Command is one user interaction.
type Command struct {
	Kind     Kind   `json:"kind"`
	EntityID string `json:"entity_id"`
	// ItemID is required by the item kinds and ignored otherwise.
	ItemID string `json:"item_id,omitempty"`
	// Action names a table entry for KindAction.
	Action string `json:"action,omitempty"`
	// Formula is the pool notation rolled by KindFormulaRoll, e.g. "3d6x6cs>3".
	Formula string `json:"formula,omitempty"`
	// Label captions a formula roll; the formula itself is used when empty.
	Label string `json:"label,omitempty"`
}

// Effect is something the host must carry out after a command was handled.
type Effect interface {
	isEffect()
}

// RollRequest asks the host to evaluate a dice pool.
type RollRequest struct {
	Label string
	Spec  dice.FormulaSpec
}

// Level is the severity of a Notification.
type Level string

const (
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Notification is a user-facing message.
type Notification struct {
	Level   Level
	Message string
	// Warning is set when the notification surfaces a ledger warning.
	Warning *ledger.Warning
}

// PersistRequest asks the host to write Patch to the entity document.
type PersistRequest struct {
	EntityID string
	Patch    character.Patch
}

func (RollRequest) isEffect()    {}
func (Notification) isEffect()   {}
func (PersistRequest) isEffect() {}

// Outcome is the result of a handled command.
type Outcome struct {
	// Entity is the updated snapshot.
	Entity  *character.Entity
	Effects []Effect
}

// Persist returns the persist request, if any.
func (o Outcome) Persist() (PersistRequest, bool) {
	for _, e := range o.Effects {
		if p, ok := e.(PersistRequest); ok {
			return p, true
		}
	}
	return PersistRequest{}, false
}

// Rolls returns the roll requests in the order they were issued.
func (o Outcome) Rolls() []RollRequest {
	var out []RollRequest
	for _, e := range o.Effects {
		if r, ok := e.(RollRequest); ok {
			out = append(out, r)
		}
	}
	return out
}

// Notifications returns the notifications in the order they were issued.
func (o Outcome) Notifications() []Notification {
	var out []Notification
	for _, e := range o.Effects {
		if n, ok := e.(Notification); ok {
			out = append(out, n)
		}
	}
	return out
}
