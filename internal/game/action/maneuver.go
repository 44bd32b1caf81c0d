package action

import (
	"github.com/cory-johannsen/wastehunter/internal/game/character"
	"github.com/cory-johannsen/wastehunter/internal/game/dice"
	"github.com/cory-johannsen/wastehunter/internal/game/ledger"
)

// handleAction runs a table entry: the AP cost is charged (always, unless
// the entry is combat gated and combat mode is off) and then the roll, if
// any, is requested. The cost stands whatever the roll turns out to be.
func handleAction(d *Dispatcher, t *turn) error {
	def, ok := d.opts.Table.Resolve(t.cmd.Action)
	if !ok {
		return &ledger.InvalidReferenceError{Kind: "action", ID: t.cmd.Action}
	}
	if def.CombatGated && !t.entity.CombatMode {
		return d.rollAction(t, def)
	}
	if def.Cost.Drain {
		if err := t.drain(character.ResourceAP); err != nil {
			return err
		}
	} else if def.Cost != (Cost{}) {
		ap, err := t.entity.Resource(character.ResourceAP)
		if err != nil {
			return err
		}
		if err := t.spend(character.ResourceAP, def.Cost.Amount(ap.Max)); err != nil {
			return err
		}
	}
	return d.rollAction(t, def)
}

func (d *Dispatcher) rollAction(t *turn, def *ActionDef) error {
	if def.Roll == nil {
		return nil
	}
	return d.roll(t, *def.Roll, def.Name)
}

// handleFormulaRoll requests a roll of a sheet-supplied pool formula as is.
// Circumstance dice are not added; the formula is taken to include them.
func handleFormulaRoll(_ *Dispatcher, t *turn) error {
	spec, err := dice.Parse(t.cmd.Formula)
	if err != nil {
		return &ledger.InvalidReferenceError{Kind: "formula", ID: t.cmd.Formula, Err: err}
	}
	label := t.cmd.Label
	if label == "" {
		label = spec.String()
	}
	t.effects = append(t.effects, RollRequest{Label: label, Spec: spec})
	return nil
}
