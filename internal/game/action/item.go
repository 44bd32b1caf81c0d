package action

import (
	"fmt"

	"github.com/cory-johannsen/wastehunter/internal/game/character"
	"github.com/cory-johannsen/wastehunter/internal/game/inventory"
	"github.com/cory-johannsen/wastehunter/internal/game/ledger"
)

// handleItemAP spends the item's AP cost whether or not combat mode is on.
// Firing an automatic weapon drops its cost to the fired cost.
func handleItemAP(d *Dispatcher, t *turn) error {
	it, err := t.item()
	if err != nil {
		return err
	}
	if err := t.spend(character.ResourceAP, it.APCost); err != nil {
		return err
	}
	d.fired(it)
	return nil
}

func handleSpellAP(_ *Dispatcher, t *turn) error {
	it, err := t.item()
	if err != nil {
		return err
	}
	if !t.entity.CombatMode {
		return nil
	}
	return t.spend(character.ResourceAP, it.APCost)
}

// handleManaSpend deducts the item's mana cost. Overspending is allowed and
// warns like any other spend.
func handleManaSpend(_ *Dispatcher, t *turn) error {
	it, err := t.item()
	if err != nil {
		return err
	}
	return t.spend(character.ResourceMana, it.ManaCost)
}

// handleItemRoll charges AP in combat and then rolls the item's pool.
func handleItemRoll(d *Dispatcher, t *turn) error {
	it, err := t.item()
	if err != nil {
		return err
	}
	if it.Roll == nil {
		return &ledger.InvalidReferenceError{Kind: "roll", ID: it.ID}
	}
	if t.entity.CombatMode {
		if err := t.spend(character.ResourceAP, it.APCost); err != nil {
			return err
		}
		d.fired(it)
	}
	return d.roll(t, *it.Roll, it.Name)
}

func (d *Dispatcher) fired(it *inventory.Item) {
	if it.Category == inventory.CategoryWeapon && it.Automatic {
		it.APCost = d.opts.FiredCost
	}
}

// handleUseCharge consumes one charge from a ranged weapon or a charged feature.
func handleUseCharge(d *Dispatcher, t *turn) error {
	it, err := t.item()
	if err != nil {
		return err
	}
	if !it.TakesCharges() {
		return nil
	}
	res := d.opts.Ledger.Decrement("charges", it.Charges, 1, 0)
	it.Charges = res.Resource
	t.warn(res.Warnings)
	return nil
}

// handleReload refills charges. Reloading a ranged weapon in combat costs every remaining AP.
func handleReload(_ *Dispatcher, t *turn) error {
	it, err := t.item()
	if err != nil {
		return err
	}
	if !it.Reloadable() {
		return nil
	}
	it.Charges = ledger.RestoreToMax(it.Charges)
	if it.IsRangedWeapon() && t.entity.CombatMode {
		return t.drain(character.ResourceAP)
	}
	return nil
}

func handleAutofireRearm(d *Dispatcher, t *turn) error {
	it, err := t.item()
	if err != nil {
		return err
	}
	if it.Automatic {
		it.APCost = d.opts.RearmCost
	}
	return nil
}

// handleMagazineDrop swaps in a fresh magazine: the companion magazine and
// its carry slot go down by one, the weapon is refilled and AP is charged
// the weapon's cost plus the reload surcharge. Either all of it happens or
// nothing does.
func handleMagazineDrop(d *Dispatcher, t *turn) error {
	it, err := t.item()
	if err != nil {
		return err
	}
	if it.AmmoType == "" {
		return &ledger.InvalidReferenceError{Kind: "ammo_type", ID: it.ID}
	}
	mag := t.entity.Companion(it.AmmoType)
	if mag == nil || mag.Quantity < 1 {
		resource := fmt.Sprintf("%s magazines", it.AmmoType)
		if mag != nil {
			resource = mag.Name
		}
		return &ledger.MissingCompanionError{Entity: t.entity.Name, Resource: resource}
	}

	mag.Quantity--
	if mag.CarrySlot != "" {
		err := t.update(mag.CarrySlot, func(r ledger.Resource) ledger.Resource {
			return ledger.ClampNonNegative(ledger.Resource{Current: r.Current - 1, Max: r.Max})
		})
		if err != nil {
			return err
		}
	}
	if !it.IsRangedWeapon() {
		return nil
	}
	it.Charges = ledger.RestoreToMax(it.Charges)
	return t.spend(character.ResourceAP, it.APCost+d.opts.ReloadSurcharge)
}
