package entity

// Party represents the player's party of adventurers and their shared
// inventory.
type Party struct {
	Members   []*Member
	Inventory *Inventory
}

// NewParty creates a party with an empty inventory.
func NewParty(members ...*Member) *Party {
	return &Party{
		Members:   members,
		Inventory: NewInventory(),
	}
}

// Add appends a member.
func (p *Party) Add(m *Member) {
	p.Members = append(p.Members, m)
}

// Living returns members with VITA remaining.
func (p *Party) Living() []*Member {
	var out []*Member
	for _, m := range p.Members {
		if m.IsAlive() {
			out = append(out, m)
		}
	}
	return out
}

// Wiped reports whether every member has fallen.
func (p *Party) Wiped() bool {
	return len(p.Living()) == 0
}
