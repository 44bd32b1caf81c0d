package action

import "github.com/cory-johannsen/wastehunter/internal/game/formula"

func halved(codes ...string) []formula.Term {
	out := make([]formula.Term, len(codes))
	for i, c := range codes {
		out[i] = formula.Term{Ability: c, Halved: true}
	}
	return out
}

// BuiltinActions returns the skill rolls and maneuvers available without an
// action file.
func BuiltinActions() []ActionDef {
	return []ActionDef{
		// Skill rolls
		{ID: "driving", Name: "Driving", Roll: &formula.RollDef{Label: "Driving", Skill: "driving", Component: formula.ComponentValue, Terms: halved("TEC", "REA")}},
		{ID: "healing", Name: "Healing", Roll: &formula.RollDef{Label: "Healing", Skill: "healing", Component: formula.ComponentMod, Terms: halved("TEC", "INT")}},
		{ID: "trickery", Name: "Trickery", Roll: &formula.RollDef{Label: "Trickery", Skill: "trickery", Component: formula.ComponentMod, Terms: halved("TEC", "QCK")}},
		{ID: "bushcraft", Name: "Bushcraft", Roll: &formula.RollDef{Label: "Bushcraft", Skill: "bushcraft", Component: formula.ComponentMod, Terms: halved("TEC", "SPI")}},
		{ID: "psychiatry", Name: "Psychiatry", Roll: &formula.RollDef{Label: "Psychiatry", Skill: "psychiatry", Component: formula.ComponentMod, Terms: halved("INT", "CLN")}},
		{ID: "resist_insanity", Name: "Resist Insanity", Aliases: []string{"insanity"}, Roll: &formula.RollDef{Label: "Resist Insanity", Terms: halved("SPI", "CLN")}},
		{ID: "intimidation", Name: "Intimidation", Aliases: []string{"intimidate"}, Roll: &formula.RollDef{
			Label: "Intimidation", Skill: "intimidation", Component: formula.ComponentMod,
			Terms: []formula.Term{{Ability: "STR", Halved: true}, {Ability: "CLN"}},
		}},

		// Combat maneuvers
		{ID: "disarm", Name: "Disarm", Cost: Cost{Fixed: 3}, Roll: &formula.RollDef{Label: "Disarm", Skill: "palming", Component: formula.ComponentMod, Terms: []formula.Term{{Ability: "QCK"}}}},
		{ID: "feint", Name: "Feint", Cost: Cost{Fixed: 1}, Roll: &formula.RollDef{Label: "Gymnastics", Skill: "gymnastics", Component: formula.ComponentMod, Terms: []formula.Term{{Ability: "QCK"}}}},
		{ID: "grapple", Name: "Grapple", Cost: Cost{Fixed: 3}, Roll: &formula.RollDef{Label: "Grapple", Skill: "force", Component: formula.ComponentMod, Terms: []formula.Term{{Ability: "STR"}}}},
		{ID: "shove", Name: "Shove", Cost: Cost{Fixed: 2}, Roll: &formula.RollDef{Label: "Shove", Skill: "force", Component: formula.ComponentMod, Terms: []formula.Term{{Ability: "STR"}}}},
		{ID: "sneak", Name: "Sneak", Cost: Cost{Numerator: 1, Denominator: 2}, Roll: &formula.RollDef{Label: "Sneak", Skill: "stealth", Component: formula.ComponentMod, Terms: halved("QCK", "PER")}},
		{ID: "coup_detat", Name: "Coup d'Etat", Aliases: []string{"coup"}, Cost: Cost{Drain: true}},

		// Movement and object interaction
		{ID: "move", Name: "Move", Cost: Cost{Numerator: 1, Denominator: 2}},
		{ID: "sprint", Name: "Sprint", Cost: Cost{Numerator: 3, Denominator: 4}},
		{ID: "reposition", Name: "Reposition", Cost: Cost{Fixed: 1}},
		{ID: "wristwatch", Name: "Wristwatch", Cost: Cost{Fixed: 4}},
		{ID: "simple_object", Name: "Simple Object", Aliases: []string{"simple"}, Cost: Cost{Fixed: 2}},
		{ID: "complex_object", Name: "Complex Object", Aliases: []string{"complex"}, Cost: Cost{Drain: true}},
	}
}
