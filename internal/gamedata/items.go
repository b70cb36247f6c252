package gamedata

import "github.com/samdwyer/bandbattle/internal/effect"

// ItemDef defines a consumable item loaded from JSON.
type ItemDef struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	TargetType  TargetType `json:"targetType"`
	EffectIDs   []int      `json:"effects"`

	Effects []*effect.Descriptor `json:"-"`
}

// IsValid reports whether every effect of the item is a valid descriptor.
func (i *ItemDef) IsValid() bool {
	return effectsValid(i.Effects)
}

// ItemsFile represents the structure of items.json.
type ItemsFile struct {
	Items []ItemDef `json:"items"`
}

// LoadItems loads item definitions from the embedded items.json file.
func LoadItems() ([]ItemDef, error) {
	file, err := Load[ItemsFile]("items.json")
	if err != nil {
		return nil, err
	}
	return file.Items, nil
}
