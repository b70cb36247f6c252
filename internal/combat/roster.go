package combat

// ActorID is an arena handle into a Roster. Queued actions hold handles, never
// actor pointers, so a removed actor cannot be reached through a stale entry.
type ActorID int

// NoActor is the zero handle; it never resolves.
const NoActor ActorID = 0

// Side identifies which team an actor fights for.
type Side int

const (
	SideParty Side = iota
	SideFoes
)

// String returns a human-readable side name.
func (s Side) String() string {
	switch s {
	case SideParty:
		return "party"
	case SideFoes:
		return "foes"
	default:
		return "unknown"
	}
}

// Opposing returns the other side.
func (s Side) Opposing() Side {
	if s == SideParty {
		return SideFoes
	}
	return SideParty
}

// Lookup resolves handles to live actors.
type Lookup interface {
	Get(id ActorID) (Actor, bool)
}

type rosterSlot struct {
	actor   Actor
	side    Side
	removed bool
}

// Roster is the arena owning every actor of one battle. Slot order is the
// fixed order used for personal upkeep.
type Roster struct {
	slots []rosterSlot
}

// NewRoster creates an empty roster.
func NewRoster() *Roster {
	return &Roster{}
}

// Add registers an actor and returns its handle.
func (r *Roster) Add(actor Actor, side Side) ActorID {
	r.slots = append(r.slots, rosterSlot{actor: actor, side: side})
	return ActorID(len(r.slots))
}

// Get returns the actor for a handle, or false if the handle is unknown or
// the actor was removed.
func (r *Roster) Get(id ActorID) (Actor, bool) {
	slot := r.slot(id)
	if slot == nil || slot.removed {
		return nil, false
	}
	return slot.actor, true
}

// SideOf returns the side of a registered actor.
func (r *Roster) SideOf(id ActorID) (Side, bool) {
	slot := r.slot(id)
	if slot == nil || slot.removed {
		return 0, false
	}
	return slot.side, true
}

// Remove detaches an actor from the battle (fled, dismissed). Its handle
// stops resolving; the slot is never reused.
func (r *Roster) Remove(id ActorID) {
	if slot := r.slot(id); slot != nil {
		slot.removed = true
		slot.actor = nil
	}
}

// IDs returns every present actor's handle in slot order.
func (r *Roster) IDs() []ActorID {
	ids := make([]ActorID, 0, len(r.slots))
	for i := range r.slots {
		if !r.slots[i].removed {
			ids = append(ids, ActorID(i+1))
		}
	}
	return ids
}

// Side returns the handles of every present actor on a side, alive or not.
func (r *Roster) Side(side Side) []ActorID {
	var ids []ActorID
	for i := range r.slots {
		if !r.slots[i].removed && r.slots[i].side == side {
			ids = append(ids, ActorID(i+1))
		}
	}
	return ids
}

// Living returns the handles of living actors on a side.
func (r *Roster) Living(side Side) []ActorID {
	var ids []ActorID
	for _, id := range r.Side(side) {
		if r.slots[id-1].actor.IsAlive() {
			ids = append(ids, id)
		}
	}
	return ids
}

// Fallen returns the handles of dead actors on a side.
func (r *Roster) Fallen(side Side) []ActorID {
	var ids []ActorID
	for _, id := range r.Side(side) {
		if !r.slots[id-1].actor.IsAlive() {
			ids = append(ids, id)
		}
	}
	return ids
}

// Eliminated reports whether no living actor remains on a side.
func (r *Roster) Eliminated(side Side) bool {
	return len(r.Living(side)) == 0
}

// Name returns the actor's name, or "" for an unresolvable handle.
func (r *Roster) Name(id ActorID) string {
	if a, ok := r.Get(id); ok {
		return a.GetName()
	}
	return ""
}

func (r *Roster) slot(id ActorID) *rosterSlot {
	if id <= NoActor || int(id) > len(r.slots) {
		return nil
	}
	return &r.slots[id-1]
}

// Ensure Roster implements Lookup
var _ Lookup = (*Roster)(nil)
