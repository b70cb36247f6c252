package entity

// Inventory holds item stacks in acquisition order.
type Inventory struct {
	stacks []*Item
}

// NewInventory creates an empty inventory.
func NewInventory() *Inventory {
	return &Inventory{}
}

// Add merges an item into the stack with the same ID, or appends a new one.
func (inv *Inventory) Add(item *Item) {
	if item == nil || item.Count <= 0 {
		return
	}
	if stack := inv.Get(item.ID); stack != nil {
		stack.Count += item.Count
		return
	}
	inv.stacks = append(inv.stacks, item)
}

// Get returns the stack for an ID, or nil.
func (inv *Inventory) Get(id string) *Item {
	for _, s := range inv.stacks {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// Count returns how many of an item remain.
func (inv *Inventory) Count(id string) int {
	if s := inv.Get(id); s != nil {
		return s.Count
	}
	return 0
}

// Consume removes one item; false if none remain. Empty stacks are dropped.
func (inv *Inventory) Consume(id string) bool {
	for i, s := range inv.stacks {
		if s.ID != id || s.Count <= 0 {
			continue
		}
		s.Count--
		if s.Count == 0 {
			inv.stacks = append(inv.stacks[:i], inv.stacks[i+1:]...)
		}
		return true
	}
	return false
}

// Items returns the non-empty stacks.
func (inv *Inventory) Items() []*Item {
	out := make([]*Item, 0, len(inv.stacks))
	for _, s := range inv.stacks {
		if s.Count > 0 {
			out = append(out, s)
		}
	}
	return out
}
