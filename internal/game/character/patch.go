package character

import (
	"github.com/cory-johannsen/wastehunter/internal/game/ledger"
)

// ItemPatch carries the item fields a rule may change.
type ItemPatch struct {
	APCost   *int             `json:"ap_cost,omitempty"`
	Charges  *ledger.Resource `json:"charges,omitempty"`
	Quantity *int             `json:"quantity,omitempty"`
}

func (p ItemPatch) empty() bool {
	return p.APCost == nil && p.Charges == nil && p.Quantity == nil
}

// Patch is a partial update of named fields of one entity document.
type Patch struct {
	Resources  map[string]ledger.Resource `json:"resources,omitempty"`
	Items      map[string]ItemPatch       `json:"items,omitempty"`
	CombatMode *bool                      `json:"combat_mode,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return len(p.Resources) == 0 && len(p.Items) == 0 && p.CombatMode == nil
}

// Diff returns the patch that turns before into after for the fields rules
// may change. Items present only in after are ignored.
func Diff(before, after *Entity) Patch {
	var p Patch
	for name, r := range after.Resources {
		if old, ok := before.Resources[name]; !ok || old != r {
			if p.Resources == nil {
				p.Resources = make(map[string]ledger.Resource)
			}
			p.Resources[name] = r
		}
	}
	for _, it := range after.Items {
		if it == nil {
			continue
		}
		old, err := before.Item(it.ID)
		if err != nil {
			continue
		}
		var ip ItemPatch
		if old.APCost != it.APCost {
			v := it.APCost
			ip.APCost = &v
		}
		if old.Charges != it.Charges {
			c := it.Charges
			ip.Charges = &c
		}
		if old.Quantity != it.Quantity {
			q := it.Quantity
			ip.Quantity = &q
		}
		if !ip.empty() {
			if p.Items == nil {
				p.Items = make(map[string]ItemPatch)
			}
			p.Items[it.ID] = ip
		}
	}
	if before.CombatMode != after.CombatMode {
		v := after.CombatMode
		p.CombatMode = &v
	}
	return p
}

// Apply writes p into e. It validates every item reference before mutating
// anything, so a failed Apply leaves e unchanged.
//
// Postcondition: on error e is unmodified; on success Diff(old, e) == p for
// the patched fields.
func (e *Entity) Apply(p Patch) error {
	for id := range p.Items {
		if _, err := e.Item(id); err != nil {
			return err
		}
	}
	for name, r := range p.Resources {
		e.SetResource(name, r)
	}
	for id, ip := range p.Items {
		it, _ := e.Item(id)
		if ip.APCost != nil {
			it.APCost = *ip.APCost
		}
		if ip.Charges != nil {
			it.Charges = *ip.Charges
		}
		if ip.Quantity != nil {
			it.Quantity = *ip.Quantity
		}
	}
	if p.CombatMode != nil {
		e.CombatMode = *p.CombatMode
	}
	return nil
}
