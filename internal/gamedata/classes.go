package gamedata

import (
	"fmt"

	"github.com/samdwyer/bandbattle/internal/effect"
)

// ClassDef defines a playable class loaded from JSON.
type ClassDef struct {
	ID     string         `json:"id"`     // Unique identifier matching entity.Class (e.g., "warrior")
	Name   string         `json:"name"`   // Display name (e.g., "Warrior")
	Symbol string         `json:"symbol"` // Single character for rendering (e.g., "W")
	Stats  map[string]int `json:"stats"`  // Base attributes keyed by DSL symbol (e.g., "VITA")
	Skills []string       `json:"skills"` // List of skill IDs this class can use
}

// SymbolRune returns the symbol as a rune for rendering.
func (c *ClassDef) SymbolRune() rune {
	if len(c.Symbol) == 0 {
		return '?'
	}
	return rune(c.Symbol[0])
}

// Attributes converts the stat map into attribute keys.
func (c *ClassDef) Attributes() (map[effect.Attribute]int, error) {
	return ParseStats(c.Stats)
}

// ClassesFile represents the structure of classes.json.
type ClassesFile struct {
	Classes []ClassDef `json:"classes"`
}

// LoadClasses loads class definitions from the embedded classes.json file.
func LoadClasses() ([]ClassDef, error) {
	file, err := Load[ClassesFile]("classes.json")
	if err != nil {
		return nil, err
	}
	return file.Classes, nil
}

// MustLoadClasses loads class definitions, panicking on error.
func MustLoadClasses() []ClassDef {
	return MustLoad[ClassesFile]("classes.json").Classes
}

// ParseStats converts a symbol-keyed stat map into attribute keys.
func ParseStats(raw map[string]int) (map[effect.Attribute]int, error) {
	stats := make(map[effect.Attribute]int, len(raw))
	for sym, v := range raw {
		attr, ok := effect.ParseAttribute(sym)
		if !ok || attr == effect.AttrNone {
			return nil, fmt.Errorf("unknown attribute %q", sym)
		}
		stats[attr] = v
	}
	return stats, nil
}
