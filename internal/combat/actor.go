// Package combat provides the actor capability surface the battle core consumes
// and the resolver that executes effect descriptors against actors.
package combat

import (
	"github.com/samdwyer/bandbattle/internal/effect"
)

// Actor is the interface for any entity that can participate in a battle.
// Both party members and enemies implement this interface.
type Actor interface {
	// Identity
	GetName() string
	IsAlive() bool
	IsPlayerControlled() bool

	// Selection
	GetMomentum() int
	CanSelect() bool // false while an ailment prevents choosing an action

	// Stats
	GetStat(attr effect.Attribute) int
	GetMaxStat(attr effect.Attribute) int
	SetStat(attr effect.Attribute, value int) int // Returns the stored (clamped) value

	// Ailments
	HasAilment(ailment effect.Ailment) bool
	GetAilments() []AilmentState
	Inflict(state AilmentState)
	Relieve(ailment effect.Ailment) bool // Returns false if the ailment was not present
	TickAilments() []AilmentTick         // Process turn-start ailments, returns what happened
	ClearAilments()
}

// AilmentState represents an active ailment on an actor.
type AilmentState struct {
	Ailment        effect.Ailment
	RemainingTurns int
	Power          int // For damage-over-time ailments: VITA lost per turn
}

// AilmentTick represents what happened when an ailment was processed.
type AilmentTick struct {
	Ailment effect.Ailment
	Amount  int  // VITA lost this tick (negative when regenerating)
	Ended   bool // True if the ailment expired
	Killed  bool // True if the tick left the actor at zero VITA
}
