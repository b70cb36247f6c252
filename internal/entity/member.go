// Package entity provides the battle participants: party members, enemies,
// and the items they carry.
package entity

import (
	"github.com/samdwyer/bandbattle/internal/combat"
	"github.com/samdwyer/bandbattle/internal/effect"
	"github.com/samdwyer/bandbattle/internal/gamedata"
)

// Class represents an adventurer's class.
type Class int

const (
	ClassWarrior Class = iota
	ClassRogue
	ClassWizard
	ClassCleric
)

// String returns the class name.
func (c Class) String() string {
	switch c {
	case ClassWarrior:
		return "Warrior"
	case ClassRogue:
		return "Rogue"
	case ClassWizard:
		return "Wizard"
	case ClassCleric:
		return "Cleric"
	default:
		return "Unknown"
	}
}

// ID returns the class identifier for data lookup.
func (c Class) ID() string {
	switch c {
	case ClassWarrior:
		return "warrior"
	case ClassRogue:
		return "rogue"
	case ClassWizard:
		return "wizard"
	case ClassCleric:
		return "cleric"
	default:
		return "unknown"
	}
}

// Symbol returns the default display symbol for a class.
func (c Class) Symbol() rune {
	switch c {
	case ClassWarrior:
		return 'W'
	case ClassRogue:
		return 'R'
	case ClassWizard:
		return 'Z'
	case ClassCleric:
		return 'C'
	default:
		return '?'
	}
}

// Member represents an individual party member. Members are always
// player-controlled.
type Member struct {
	Sheet

	Name     string // Character name
	Class    Class  // Character class
	Symbol   rune   // Display symbol (defaults to class symbol)
	SkillIDs []string
}

// NewMember creates a new party member with the given name and class.
// Stats are set to default values; use InitFromClassDef to load from data.
func NewMember(name string, class Class) *Member {
	return &Member{
		Sheet: NewSheet(map[effect.Attribute]int{
			effect.AttrVITA: 50,
			effect.AttrQTDR: 10,
			effect.AttrPHAG: 6,
			effect.AttrPHFD: 4,
			effect.AttrMMNT: 8,
		}),
		Name:     name,
		Class:    class,
		Symbol:   class.Symbol(),
		SkillIDs: []string{"strike"},
	}
}

// InitFromClassDef initializes member stats and skills from a class definition.
func (m *Member) InitFromClassDef(def *gamedata.ClassDef) error {
	if def == nil {
		return nil
	}
	stats, err := def.Attributes()
	if err != nil {
		return err
	}
	m.Sheet = NewSheet(stats)
	m.SkillIDs = make([]string, len(def.Skills))
	copy(m.SkillIDs, def.Skills)
	if def.Symbol != "" {
		m.Symbol = def.SymbolRune()
	}
	return nil
}

// GetName returns the member's name.
func (m *Member) GetName() string { return m.Name }

// GetSymbol returns the member's display symbol.
func (m *Member) GetSymbol() rune { return m.Symbol }

// IsPlayerControlled returns true; members are driven through the menu.
func (m *Member) IsPlayerControlled() bool { return true }

// GetSkillIDs returns the list of skill IDs this member can use.
func (m *Member) GetSkillIDs() []string { return m.SkillIDs }

// Ensure Member implements combat.Actor
var _ combat.Actor = (*Member)(nil)
