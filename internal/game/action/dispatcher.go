package action

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/wastehunter/internal/game/character"
	"github.com/cory-johannsen/wastehunter/internal/game/formula"
	"github.com/cory-johannsen/wastehunter/internal/game/inventory"
	"github.com/cory-johannsen/wastehunter/internal/game/ledger"
)

// Default rule constants.
const (
	DefaultFiredCost       = 2
	DefaultRearmCost       = 4
	DefaultReloadSurcharge = 2
)

// CircumstanceSource contributes situational circumstance dice for an entity.
type CircumstanceSource interface {
	Circumstance(e *character.Entity) int
}

// Options configures a Dispatcher. Zero values fall back to the defaults,
// so a cost field can never be configured as 0.
type Options struct {
	Ledger  ledger.Ledger
	Builder formula.Builder
	Table   *Table
	// FiredCost is the AP cost an automatic weapon drops to after firing.
	// Zero selects DefaultFiredCost.
	FiredCost int
	// RearmCost is the AP cost restored when automatic fire is re-armed.
	// Zero selects DefaultRearmCost.
	RearmCost int
	// ReloadSurcharge is added to the weapon's AP cost on a magazine drop.
	// Zero selects DefaultReloadSurcharge.
	ReloadSurcharge int
	Circumstance    CircumstanceSource
}

type handlerFunc func(d *Dispatcher, t *turn) error

// Dispatcher routes commands to their handlers.
type Dispatcher struct {
	opts     Options
	handlers map[Kind]handlerFunc
}

// NewDispatcher returns a Dispatcher configured by opts.
//
// Postcondition: every Kind constant has a handler.
func NewDispatcher(opts Options) *Dispatcher {
	if len(opts.Ledger.Thresholds) == 0 {
		opts.Ledger = ledger.New()
	}
	if opts.Builder.Policy == "" {
		opts.Builder = formula.NewBuilder(formula.PolicyZero)
	}
	if opts.Table == nil {
		opts.Table = DefaultTable()
	}
	if opts.FiredCost == 0 {
		opts.FiredCost = DefaultFiredCost
	}
	if opts.RearmCost == 0 {
		opts.RearmCost = DefaultRearmCost
	}
	if opts.ReloadSurcharge == 0 {
		opts.ReloadSurcharge = DefaultReloadSurcharge
	}
	return &Dispatcher{
		opts: opts,
		handlers: map[Kind]handlerFunc{
			KindItemAP:          handleItemAP,
			KindSpellAP:         handleSpellAP,
			KindItemRoll:        handleItemRoll,
			KindUseCharge:       handleUseCharge,
			KindReload:          handleReload,
			KindAutofireRearm:   handleAutofireRearm,
			KindMagazineDrop:    handleMagazineDrop,
			KindAPReset:         handleAPReset,
			KindRest:            handleRest,
			KindRecover:         handleRecover,
			KindStaminaReset:    handleStaminaReset,
			KindVitalityRecover: handleRecoverOne(character.ResourceVitality),
			KindWillRecover:     handleRecoverOne(character.ResourceWill),
			KindUpdateLoad:      handleUpdateLoad,
			KindCombatMode:      handleCombatMode,
			KindAction:          handleAction,
			KindManaSpend:       handleManaSpend,
			KindFormulaRoll:     handleFormulaRoll,
		},
	}
}

// Table returns the action table in use.
func (d *Dispatcher) Table() *Table {
	return d.opts.Table
}

// Handle applies cmd to a clone of snapshot.
//
// Precondition: snapshot is non-nil and its ID matches cmd.EntityID when the latter is set.
// Postcondition: snapshot is never modified. On error the Outcome is empty;
// otherwise Outcome.Entity is the new snapshot and Effects holds one
// PersistRequest first when anything changed.
func (d *Dispatcher) Handle(cmd Command, snapshot *character.Entity) (Outcome, error) {
	if snapshot == nil {
		return Outcome{}, errors.New("action: nil snapshot")
	}
	if cmd.EntityID != "" && cmd.EntityID != snapshot.ID {
		return Outcome{}, fmt.Errorf("action: command for entity %q applied to %q", cmd.EntityID, snapshot.ID)
	}
	h, ok := d.handlers[cmd.Kind]
	if !ok {
		return Outcome{}, fmt.Errorf("action: unknown command kind %q", cmd.Kind)
	}

	t := &turn{cmd: cmd, entity: snapshot.Clone()}
	if err := h(d, t); err != nil {
		return Outcome{}, fmt.Errorf("%s: %w", cmd.Kind, err)
	}

	effects := make([]Effect, 0, len(t.effects)+1)
	if patch := character.Diff(snapshot, t.entity); !patch.Empty() {
		effects = append(effects, PersistRequest{EntityID: snapshot.ID, Patch: patch})
	}
	effects = append(effects, t.effects...)
	return Outcome{Entity: t.entity, Effects: effects}, nil
}

// circumstance returns the entity's circumstance dice plus any situational dice.
func (d *Dispatcher) circumstance(e *character.Entity) int {
	n := e.CircumstanceDice
	if d.opts.Circumstance != nil {
		n += d.opts.Circumstance.Circumstance(e)
	}
	return n
}

// roll resolves def against the entity and queues the roll request.
func (d *Dispatcher) roll(t *turn, def formula.RollDef, label string) error {
	spec, err := d.opts.Builder.BuildFor(def, t.entity, d.circumstance(t.entity))
	if err != nil {
		return err
	}
	if def.Label != "" {
		label = def.Label
	}
	t.effects = append(t.effects, RollRequest{Label: label, Spec: spec})
	return nil
}

// turn is the working state of one Handle call.
type turn struct {
	cmd     Command
	entity  *character.Entity
	effects []Effect
}

func (t *turn) item() (*inventory.Item, error) {
	if t.cmd.ItemID == "" {
		return nil, &ledger.InvalidReferenceError{Kind: "item", ID: ""}
	}
	return t.entity.Item(t.cmd.ItemID)
}

func (t *turn) notify(level Level, msg string) {
	t.effects = append(t.effects, Notification{Level: level, Message: msg})
}

func (t *turn) warn(ws []ledger.Warning) {
	for i := range ws {
		w := ws[i]
		t.effects = append(t.effects, Notification{Level: LevelWarn, Message: w.Message, Warning: &w})
	}
}

// spend deducts amount from the named resource, surfacing any warnings.
func (t *turn) spend(name string, amount int) error {
	r, err := t.entity.Resource(name)
	if err != nil {
		return err
	}
	res := ledger.Spend(name, r, amount)
	t.entity.SetResource(name, res.Resource)
	t.warn(res.Warnings)
	return nil
}

func (t *turn) drain(name string) error {
	r, err := t.entity.Resource(name)
	if err != nil {
		return err
	}
	res := ledger.Drain(name, r)
	t.entity.SetResource(name, res.Resource)
	t.warn(res.Warnings)
	return nil
}

// update applies fn to the named resource.
func (t *turn) update(name string, fn func(ledger.Resource) ledger.Resource) error {
	r, err := t.entity.Resource(name)
	if err != nil {
		return err
	}
	t.entity.SetResource(name, fn(r))
	return nil
}

// updateIfPresent applies fn to the named resource when the entity tracks it.
func (t *turn) updateIfPresent(name string, fn func(ledger.Resource) ledger.Resource) {
	if r, ok := t.entity.Resources[name]; ok {
		t.entity.SetResource(name, fn(r))
	}
}
