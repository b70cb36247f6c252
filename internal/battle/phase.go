// Package battle drives one battle: the turn-phase state machine, the player
// menu bridge and the incremental AI driver.
package battle

// Phase represents the current phase of a battle.
type Phase int

const (
	// PhaseGeneralUpkeep - ailment ticks, cooldowns, stance reset
	PhaseGeneralUpkeep Phase = iota
	// PhasePersonalUpkeep - every eligible actor submits one action
	PhasePersonalUpkeep
	// PhaseOrderActions - the buffer is sorted into execution order
	PhaseOrderActions
	// PhasePerformAction - the entry under the cursor executes
	PhasePerformAction
	// PhaseActionOutcome - elimination check, then next entry or next turn
	PhaseActionOutcome
	// PhaseBattleWon - every foe is down
	PhaseBattleWon
	// PhaseBattleLost - every party member is down
	PhaseBattleLost
	// PhaseFled - the party escaped
	PhaseFled
	// PhaseStopped - aborted from outside
	PhaseStopped
)

// String returns a human-readable phase name.
func (p Phase) String() string {
	switch p {
	case PhaseGeneralUpkeep:
		return "general_upkeep"
	case PhasePersonalUpkeep:
		return "personal_upkeep"
	case PhaseOrderActions:
		return "order_actions"
	case PhasePerformAction:
		return "perform_action"
	case PhaseActionOutcome:
		return "action_outcome"
	case PhaseBattleWon:
		return "victory"
	case PhaseBattleLost:
		return "defeat"
	case PhaseFled:
		return "fled"
	case PhaseStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether the battle is over.
func (p Phase) IsTerminal() bool {
	return p >= PhaseBattleWon
}
