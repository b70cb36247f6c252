package entity

import (
	"github.com/samdwyer/bandbattle/internal/effect"
	"github.com/samdwyer/bandbattle/internal/gamedata"
)

// Item is a stack of consumables. Queued item actions hold a Clone so the
// inventory stack can change while the action waits its turn.
type Item struct {
	ID          string
	Name        string
	Description string
	Target      gamedata.TargetType
	Effects     []*effect.Descriptor
	Count       int
}

// NewItemFromDef creates a stack of count items from a definition.
func NewItemFromDef(def *gamedata.ItemDef, count int) *Item {
	return &Item{
		ID:          def.ID,
		Name:        def.Name,
		Description: def.Description,
		Target:      def.TargetType,
		Effects:     def.Effects,
		Count:       count,
	}
}

// Clone returns a deep copy, descriptors included.
func (i *Item) Clone() *Item {
	if i == nil {
		return nil
	}
	cp := *i
	cp.Effects = make([]*effect.Descriptor, len(i.Effects))
	for n, d := range i.Effects {
		if d == nil {
			continue
		}
		dc := *d
		dc.Diagnostics = append([]string(nil), d.Diagnostics...)
		cp.Effects[n] = &dc
	}
	return &cp
}

// IsValid reports whether the item carries at least one effect and every
// effect is a valid descriptor.
func (i *Item) IsValid() bool {
	if i == nil || len(i.Effects) == 0 {
		return false
	}
	for _, d := range i.Effects {
		if d == nil || !d.Valid {
			return false
		}
	}
	return true
}
