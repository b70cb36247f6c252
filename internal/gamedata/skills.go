package gamedata

import (
	"github.com/samdwyer/bandbattle/internal/effect"
)

// =============================================================================
// SKILL SYSTEM DESIGN
// =============================================================================
//
// Overview:
// ---------
// A skill is a named, targeted bundle of effect descriptors. Descriptors live
// in effects.dsl, one line each, and skills/items reference them by numeric ID.
// A skill whose effects do not all parse as valid is dropped at load time, so
// nothing invalid ever reaches the turn buffer.
//
// Effect DSL (effects.dsl):
// -------------------------
//   id,keyword,duration,ignore_attack,ignore_defense,user_symbol,base,variance,target_symbol,chance
//
//   1,DAMAGE,,,,,AMOUNT.20,AMOUNT.5,,95
//   500,INFLICT,3.5,,,POISON,PC.6,,,80
//
// JSON Schema (skills.json):
// --------------------------
// {
//   "id": "flame_lance",
//   "name": "Flame Lance",
//   "description": "Thermal damage that may burn",
//   "targetType": "single_enemy",
//   "cost": 6,          // QTDR spent on use
//   "cooldown": 1,      // turns before the same actor may use it again
//   "effects": [3, 501]
// }
//
// Turn Order:
// -----------
// Every living, eligible actor submits one action per turn; the turn buffer
// orders them by momentum (MMNT) before execution.
//
// Telemetry:
// ----------
// - battle.start: party_size, foe_count, battle_id
// - battle.action: actor, action, targets, turn
// - battle.end: outcome, turns_taken

// TargetType represents who a skill or item can target.
type TargetType string

const (
	TargetSelf           TargetType = "self"
	TargetSingleEnemy    TargetType = "single_enemy"
	TargetAllEnemies     TargetType = "all_enemies"
	TargetSingleAlly     TargetType = "single_ally"
	TargetAllAllies      TargetType = "all_allies"
	TargetSingleDeadAlly TargetType = "single_dead_ally"
)

// TargetTypes returns every targeting scope.
func TargetTypes() []TargetType {
	return []TargetType{
		TargetSelf, TargetSingleEnemy, TargetAllEnemies,
		TargetSingleAlly, TargetAllAllies, TargetSingleDeadAlly,
	}
}

// NeedsTarget returns true if the scope requires target selection.
func (t TargetType) NeedsTarget() bool {
	return t == TargetSingleEnemy || t == TargetSingleAlly || t == TargetSingleDeadAlly
}

// IsOffensive returns true if the scope targets the opposing side.
func (t TargetType) IsOffensive() bool {
	return t == TargetSingleEnemy || t == TargetAllEnemies
}

// TargetsFallen returns true if the scope picks among fallen allies.
func (t TargetType) TargetsFallen() bool {
	return t == TargetSingleDeadAlly
}

// Skill defines a skill loaded from JSON, with its effects resolved.
type Skill struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	TargetType  TargetType `json:"targetType"`
	Cost        int        `json:"cost"`
	Cooldown    int        `json:"cooldown"`
	EffectIDs   []int      `json:"effects"`

	// Effects holds the parsed descriptors in EffectIDs order. Shared, read-only.
	Effects []*effect.Descriptor `json:"-"`
}

// NeedsTarget returns true if the skill requires target selection.
func (s *Skill) NeedsTarget() bool {
	return s.TargetType.NeedsTarget()
}

// IsOffensive returns true if the skill targets enemies.
func (s *Skill) IsOffensive() bool {
	return s.TargetType.IsOffensive()
}

// IsValid reports whether the skill carries at least one effect and every
// effect is a valid descriptor.
func (s *Skill) IsValid() bool {
	return effectsValid(s.Effects)
}

// SkillsFile represents the structure of skills.json.
type SkillsFile struct {
	Skills []Skill `json:"skills"`
}

// LoadSkills loads skill definitions from the embedded skills.json file.
// Effects are not resolved; use LoadCatalog for ready-to-use skills.
func LoadSkills() ([]Skill, error) {
	file, err := Load[SkillsFile]("skills.json")
	if err != nil {
		return nil, err
	}
	return file.Skills, nil
}

func effectsValid(effects []*effect.Descriptor) bool {
	if len(effects) == 0 {
		return false
	}
	for _, d := range effects {
		if d == nil || !d.Valid {
			return false
		}
	}
	return true
}
