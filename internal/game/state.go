// Package game provides the main game loop and state management.
package game

// State represents the current game state.
type State int

const (
	// StateBattle is the running battle; keys go to the selection menu.
	StateBattle State = iota
	// StateAftermath shows the outcome until any key is pressed.
	StateAftermath
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateBattle:
		return "battle"
	case StateAftermath:
		return "aftermath"
	default:
		return "unknown"
	}
}
