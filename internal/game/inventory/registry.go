package inventory

import (
	"fmt"
	"sort"
)

// Registry holds item templates indexed by ID.
type Registry struct {
	items map[string]*Item
}

// NewRegistry returns an empty Registry.
//
// Postcondition: the internal map is initialised.
func NewRegistry() *Registry {
	return &Registry{items: make(map[string]*Item)}
}

// LoadRegistry loads every template in dir into a new Registry.
func LoadRegistry(dir string) (*Registry, error) {
	items, err := LoadItems(dir)
	if err != nil {
		return nil, err
	}
	r := NewRegistry()
	for _, it := range items {
		if err := r.Register(it); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds t to the registry.
//
// Precondition:  t must not be nil.
// Postcondition: Template(t.ID) returns (t, true); returns error if t.ID already registered.
func (r *Registry) Register(t *Item) error {
	if _, exists := r.items[t.ID]; exists {
		return fmt.Errorf("inventory: Registry.Register: item ID %q already registered", t.ID)
	}
	r.items[t.ID] = t
	return nil
}

// Template returns the template for the given id and whether it was found.
//
// Postcondition: ok is true iff the id is registered.
func (r *Registry) Template(id string) (*Item, bool) {
	t, ok := r.items[id]
	return t, ok
}

// Instantiate copies the template defID into a new owned item with the given instance ID.
//
// Postcondition: result.DefID == defID, result.ID == instanceID; the template is not modified.
func (r *Registry) Instantiate(defID, instanceID string) (*Item, error) {
	t, ok := r.items[defID]
	if !ok {
		return nil, fmt.Errorf("inventory: unknown item template %q", defID)
	}
	it := t.Clone()
	it.DefID = defID
	it.ID = instanceID
	return it, nil
}

// All returns every template sorted by ID.
func (r *Registry) All() []*Item {
	out := make([]*Item, 0, len(r.items))
	for _, t := range r.items {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
