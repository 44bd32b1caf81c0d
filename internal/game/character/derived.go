package character

import "github.com/cory-johannsen/wastehunter/internal/game/ledger"

// TotalHealth sums the shield, stamina, luck and vitality pools.
// Missing pools count as zero.
func (e *Entity) TotalHealth() ledger.Resource {
	var total ledger.Resource
	for _, name := range []string{ResourceShield, ResourceStamina, ResourceLuck, ResourceVitality} {
		r := e.Resources[name]
		total.Current += r.Current
		total.Max += r.Max
	}
	return total
}

// PerkBonus is 2 plus one for every five ascension levels beyond the first.
func (e *Entity) PerkBonus() int {
	return 2 + e.AscensionIncrement()
}

// AscensionIncrement is floor((ascension − 1) / 5).
func (e *Entity) AscensionIncrement() int {
	n := e.Ascension - 1
	if n < 0 {
		return (n - 4) / 5
	}
	return n / 5
}

// XP is the experience an NPC is worth: cr² × 100. Characters are worth 0.
func (e *Entity) XP() int {
	if e.Kind != KindNPC {
		return 0
	}
	return e.ChallengeRating * e.ChallengeRating * 100
}

// CurrentLoad is the sum of the weights of every owned item record.
func (e *Entity) CurrentLoad() int {
	total := 0
	for _, it := range e.Items {
		if it != nil {
			total += it.Weight
		}
	}
	return total
}
