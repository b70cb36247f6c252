package gamedata

import (
	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/bandbattle/internal/effect"
)

// Personality names an AI selection strategy.
type Personality string

const (
	PersonalityAggressive Personality = "aggressive"
	PersonalitySupport    Personality = "support"
	PersonalityRandom     Personality = "random"
)

// EnemyDef defines an enemy type loaded from JSON.
type EnemyDef struct {
	ID          string         `json:"id"`          // Unique identifier (e.g., "goblin")
	Name        string         `json:"name"`        // Display name (e.g., "Goblin")
	Glyph       string         `json:"glyph"`       // Single character for rendering (e.g., "g")
	Color       string         `json:"color"`       // Hex color code (e.g., "#00FF00")
	Stats       map[string]int `json:"stats"`       // Base attributes keyed by DSL symbol
	Skills      []string       `json:"skills"`      // Skill IDs the AI may choose from
	Personality Personality    `json:"personality"` // AI strategy
	SpawnWeight int            `json:"spawnWeight"` // Relative spawn frequency (higher = more common)
}

// GlyphRune returns the glyph as a rune for rendering.
func (e *EnemyDef) GlyphRune() rune {
	if len(e.Glyph) == 0 {
		return '?'
	}
	return rune(e.Glyph[0])
}

// TCellColor returns the color as a tcell.Color.
func (e *EnemyDef) TCellColor() tcell.Color {
	color, err := ParseColor(e.Color)
	if err != nil {
		return tcell.ColorWhite // fallback
	}
	return color
}

// Attributes converts the stat map into attribute keys.
func (e *EnemyDef) Attributes() (map[effect.Attribute]int, error) {
	return ParseStats(e.Stats)
}

// EnemiesFile represents the structure of enemies.json.
type EnemiesFile struct {
	Enemies []EnemyDef `json:"enemies"`
}

// LoadEnemies loads enemy definitions from the embedded enemies.json file.
func LoadEnemies() ([]EnemyDef, error) {
	file, err := Load[EnemiesFile]("enemies.json")
	if err != nil {
		return nil, err
	}
	return file.Enemies, nil
}

// MustLoadEnemies loads enemy definitions, panicking on error.
func MustLoadEnemies() []EnemyDef {
	return MustLoad[EnemiesFile]("enemies.json").Enemies
}
