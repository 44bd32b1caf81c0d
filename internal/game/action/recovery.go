package action

import (
	"github.com/cory-johannsen/wastehunter/internal/game/character"
	"github.com/cory-johannsen/wastehunter/internal/game/ledger"
)

func handleAPReset(_ *Dispatcher, t *turn) error {
	return t.update(character.ResourceAP, ledger.RestoreHalfOverflow)
}

// handleRest refills stamina and eases exhaustion, blood toxin and
// intoxication. Condition counters the entity does not track are skipped.
func handleRest(_ *Dispatcher, t *turn) error {
	if err := t.update(character.ResourceStamina, ledger.RestoreToMax); err != nil {
		return err
	}
	t.updateIfPresent(character.ResourceExhaustion, lower(1))
	t.updateIfPresent(character.ResourceBloodToxin, lower(1))
	t.updateIfPresent(character.ResourceIntoxication, lower(2))
	return nil
}

// handleRecover is a long rest: stamina and mana refill, exhaustion and
// intoxication clear, blood toxin drops by three.
func handleRecover(_ *Dispatcher, t *turn) error {
	if err := t.update(character.ResourceStamina, ledger.RestoreToMax); err != nil {
		return err
	}
	t.updateIfPresent(character.ResourceMana, ledger.RestoreToMax)
	t.updateIfPresent(character.ResourceExhaustion, zero)
	t.updateIfPresent(character.ResourceIntoxication, zero)
	t.updateIfPresent(character.ResourceBloodToxin, lower(3))
	return nil
}

func handleStaminaReset(_ *Dispatcher, t *turn) error {
	return t.update(character.ResourceStamina, ledger.RestoreToMax)
}

func handleRecoverOne(name string) handlerFunc {
	return func(_ *Dispatcher, t *turn) error {
		return t.update(name, func(r ledger.Resource) ledger.Resource {
			return ledger.Restore(r, 1)
		})
	}
}

func handleUpdateLoad(_ *Dispatcher, t *turn) error {
	load := t.entity.Resources[character.ResourceLoad]
	load.Current = t.entity.CurrentLoad()
	t.entity.SetResource(character.ResourceLoad, load)
	return nil
}

func handleCombatMode(_ *Dispatcher, t *turn) error {
	t.entity.CombatMode = !t.entity.CombatMode
	if t.entity.CombatMode {
		t.notify(LevelInfo, "Combat mode enabled")
	} else {
		t.notify(LevelInfo, "Combat mode disabled")
	}
	return nil
}

func lower(by int) func(ledger.Resource) ledger.Resource {
	return func(r ledger.Resource) ledger.Resource {
		return ledger.Lower(r, by, 0)
	}
}

func zero(r ledger.Resource) ledger.Resource {
	return ledger.Resource{Current: 0, Max: r.Max}
}
