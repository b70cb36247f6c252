package entity

import (
	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/bandbattle/internal/combat"
	"github.com/samdwyer/bandbattle/internal/gamedata"
)

// Enemy represents a hostile creature driven by the AI.
type Enemy struct {
	Sheet

	Def    *gamedata.EnemyDef // Reference to the enemy definition
	Name   string             // Enemy name (e.g., "Goblin")
	Symbol rune               // Display symbol
}

// NewEnemyFromDef creates a new enemy from a data-driven definition.
func NewEnemyFromDef(def *gamedata.EnemyDef) (*Enemy, error) {
	stats, err := def.Attributes()
	if err != nil {
		return nil, err
	}
	return &Enemy{
		Sheet:  NewSheet(stats),
		Def:    def,
		Name:   def.Name,
		Symbol: def.GlyphRune(),
	}, nil
}

// Color returns the tcell color for this enemy.
func (e *Enemy) Color() tcell.Color {
	if e.Def != nil {
		return e.Def.TCellColor()
	}
	return tcell.ColorPurple
}

// ID returns the enemy's unique type identifier.
func (e *Enemy) ID() string {
	if e.Def != nil {
		return e.Def.ID
	}
	return ""
}

// Personality returns the AI strategy, defaulting to aggressive.
func (e *Enemy) Personality() gamedata.Personality {
	if e.Def == nil || e.Def.Personality == "" {
		return gamedata.PersonalityAggressive
	}
	return e.Def.Personality
}

// GetName returns the enemy's name.
func (e *Enemy) GetName() string { return e.Name }

// GetSymbol returns the enemy's display glyph.
func (e *Enemy) GetSymbol() rune { return e.Symbol }

// IsPlayerControlled returns false; enemies are driven by the AI.
func (e *Enemy) IsPlayerControlled() bool { return false }

// GetSkillIDs returns the skills the AI may choose from.
func (e *Enemy) GetSkillIDs() []string {
	if e.Def == nil {
		return nil
	}
	return e.Def.Skills
}

var _ combat.Actor = (*Enemy)(nil)
