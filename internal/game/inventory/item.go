// Package inventory defines owned items (weapons, features, consumables,
// magazines) and the YAML item catalog they are instantiated from.
package inventory

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/wastehunter/internal/game/formula"
	"github.com/cory-johannsen/wastehunter/internal/game/ledger"
)

// Category classifies an item.
type Category string

// Category constants for Item.Category.
const (
	CategoryWeapon     Category = "weapon"
	CategoryFeature    Category = "feature"
	CategoryConsumable Category = "consumable"
	CategoryMagazine   Category = "magazine"
	CategoryGear       Category = "gear"
	CategorySpell      Category = "spell"
)

// validCategories is the set of valid item categories.
var validCategories = map[Category]bool{
	CategoryWeapon:     true,
	CategoryFeature:    true,
	CategoryConsumable: true,
	CategoryMagazine:   true,
	CategoryGear:       true,
	CategorySpell:      true,
}

// Item is one item record owned by an entity. The same type serves as a
// catalog template, in which case ID is the template ID.
type Item struct {
	ID       string   `json:"id" yaml:"id"`
	DefID    string   `json:"def_id,omitempty" yaml:"def_id,omitempty"`
	Name     string   `json:"name" yaml:"name"`
	Category Category `json:"category" yaml:"category"`
	// APCost is the action points one use of the item costs.
	APCost int `json:"ap_cost" yaml:"ap_cost"`
	// ManaCost is the mana one cast of the item costs.
	ManaCost  int             `json:"mana_cost,omitempty" yaml:"mana_cost,omitempty"`
	Charges   ledger.Resource `json:"charges" yaml:"charges"`
	Automatic bool            `json:"automatic" yaml:"automatic"`
	Melee     bool            `json:"melee" yaml:"melee"`
	Weight    int             `json:"weight" yaml:"weight"`
	Quantity  int             `json:"quantity" yaml:"quantity"`
	// AmmoType on a weapon names the magazines it loads; on a magazine it
	// names the type supplied.
	AmmoType string `json:"ammo_type,omitempty" yaml:"ammo_type,omitempty"`
	// CarrySlot names the entity carry counter a magazine occupies.
	CarrySlot string           `json:"carry_slot,omitempty" yaml:"carry_slot,omitempty"`
	Roll      *formula.RollDef `json:"roll,omitempty" yaml:"roll,omitempty"`
}

// IsRangedWeapon reports whether the item is a non-melee weapon.
func (i *Item) IsRangedWeapon() bool {
	return i.Category == CategoryWeapon && !i.Melee
}

// TakesCharges reports whether using the item consumes a charge: ranged
// weapons always do, features only when they have a charge pool.
func (i *Item) TakesCharges() bool {
	switch i.Category {
	case CategoryWeapon:
		return !i.Melee
	case CategoryFeature:
		return i.Charges.Max > 0
	default:
		return false
	}
}

// Reloadable reports whether the item's charges can be refilled by a reload.
func (i *Item) Reloadable() bool {
	return i.IsRangedWeapon() || i.Category == CategoryFeature
}

// Clone returns a deep copy of i.
func (i *Item) Clone() *Item {
	if i == nil {
		return nil
	}
	cp := *i
	if i.Roll != nil {
		r := *i.Roll
		r.Terms = append([]formula.Term(nil), i.Roll.Terms...)
		cp.Roll = &r
	}
	return &cp
}

// Validate checks that the Item satisfies its invariants.
//
// Precondition: i is non-nil.
// Postcondition: returns nil iff all fields are valid.
func (i *Item) Validate() error {
	var errs []error
	if i.ID == "" {
		errs = append(errs, errors.New("ID must not be empty"))
	}
	if i.Name == "" {
		errs = append(errs, errors.New("Name must not be empty"))
	}
	if !validCategories[i.Category] {
		errs = append(errs, fmt.Errorf("Category must be one of weapon, feature, consumable, magazine, gear, spell; got %q", i.Category))
	}
	if i.Weight < 0 {
		errs = append(errs, errors.New("Weight must be >= 0"))
	}
	if i.Quantity < 0 {
		errs = append(errs, errors.New("Quantity must be >= 0"))
	}
	if i.ManaCost < 0 {
		errs = append(errs, errors.New("ManaCost must be >= 0"))
	}
	if i.Charges.Max < 0 {
		errs = append(errs, errors.New("Charges.Max must be >= 0"))
	}
	if i.Charges.Current > i.Charges.Max {
		errs = append(errs, errors.New("Charges.Current must not exceed Charges.Max"))
	}
	if i.Category == CategoryMagazine && i.AmmoType == "" {
		errs = append(errs, errors.New("AmmoType is required when Category is magazine"))
	}
	if i.Automatic && i.Category != CategoryWeapon {
		errs = append(errs, errors.New("only weapons may be automatic"))
	}
	if i.Roll != nil {
		if err := i.Roll.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("item %q validation failed: %v", i.ID, errs)
	}
	return nil
}

// LoadItems reads all *.yaml and *.yml files from dir, parses each as a list
// of Item templates, validates them, and returns the collected slice.
//
// Precondition: dir is a readable directory path.
// Postcondition: returns all valid templates or the first encountered error.
func LoadItems(dir string) ([]*Item, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("LoadItems: cannot read directory %q: %w", dir, err)
	}

	var items []*Item
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("LoadItems: cannot read file %q: %w", path, err)
		}
		var file struct {
			Items []*Item `yaml:"items"`
		}
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("LoadItems: cannot parse file %q: %w", path, err)
		}
		for _, it := range file.Items {
			if err := it.Validate(); err != nil {
				return nil, fmt.Errorf("LoadItems: invalid item in %q: %w", path, err)
			}
			items = append(items, it)
		}
	}
	return items, nil
}
