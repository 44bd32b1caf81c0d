package testutil

import (
	"github.com/cory-johannsen/wastehunter/internal/game/character"
	"github.com/cory-johannsen/wastehunter/internal/game/inventory"
	"github.com/cory-johannsen/wastehunter/internal/game/ledger"
)

// NewEntity returns a small valid character document for store tests.
//
// Postcondition: the result passes Validate and shares no state with
// previous calls.
func NewEntity(id string) *character.Entity {
	return &character.Entity{
		ID:        id,
		Name:      "Rook " + id,
		Kind:      character.KindCharacter,
		Abilities: map[string]int{"STR": 8, "QCK": 5, "TEC": 6},
		Skills:    map[string]character.Skill{"driving": {Value: 2, Mod: 1}},
		Resources: map[string]ledger.Resource{
			character.ResourceAP:      {Current: 6, Max: 8},
			character.ResourceStamina: {Current: 5, Max: 10},
		},
		Items: []*inventory.Item{
			{ID: "w1", Name: "Glock 22", Category: inventory.CategoryWeapon, APCost: 3, AmmoType: "glock", Weight: 2, Charges: ledger.Resource{Current: 10, Max: 15}},
			{ID: "m1", Name: "Glock Magazine", Category: inventory.CategoryMagazine, AmmoType: "glock", Weight: 1, Quantity: 2},
		},
	}
}

// SamplePatch returns a patch touching a resource, an item and combat mode
// of an entity built by NewEntity.
func SamplePatch() character.Patch {
	qty := 1
	on := true
	return character.Patch{
		Resources: map[string]ledger.Resource{character.ResourceAP: {Current: 3, Max: 8}},
		Items: map[string]character.ItemPatch{
			"w1": {Charges: &ledger.Resource{Current: 15, Max: 15}},
			"m1": {Quantity: &qty},
		},
		CombatMode: &on,
	}
}
