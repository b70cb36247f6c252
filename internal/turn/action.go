// Package turn implements the per-turn action queue: submission, cooldown
// bookkeeping, per-turn cleanup, and the execution order of a turn.
package turn

import (
	"github.com/samdwyer/bandbattle/internal/combat"
	"github.com/samdwyer/bandbattle/internal/entity"
	"github.com/samdwyer/bandbattle/internal/gamedata"
)

// ActionKind tags the payload of a queued action.
type ActionKind int

const (
	// ActionNone is reported by cursor reads on an empty or exhausted buffer.
	ActionNone ActionKind = iota
	ActionDefend
	ActionGuard
	ActionImplode
	ActionItem
	ActionSkill
	ActionPass
)

// String returns a human-readable kind name.
func (k ActionKind) String() string {
	switch k {
	case ActionDefend:
		return "defend"
	case ActionGuard:
		return "guard"
	case ActionImplode:
		return "implode"
	case ActionItem:
		return "item"
	case ActionSkill:
		return "skill"
	case ActionPass:
		return "pass"
	default:
		return "none"
	}
}

// precedence is the kind rank used by OrderByKindThenSpeed.
func (k ActionKind) precedence() int {
	switch k {
	case ActionDefend:
		return 0
	case ActionGuard:
		return 1
	case ActionItem:
		return 2
	case ActionSkill:
		return 3
	default:
		return 4
	}
}

// Payload is the variant part of a queued action.
type Payload interface {
	Kind() ActionKind
}

// Defend halves incoming damage for the rest of the turn.
type Defend struct{}

// Guard redirects single-target damage aimed at Target onto the guard.
type Guard struct {
	Target combat.ActorID
}

// Implode sacrifices the user's VITA to damage every opponent.
type Implode struct{}

// ItemUse applies a private copy of an item to its targets.
type ItemUse struct {
	Item    *entity.Item
	Targets []combat.ActorID
}

// SkillUse applies a skill's effects to its targets.
type SkillUse struct {
	Skill   *gamedata.Skill
	Targets []combat.ActorID
}

// Pass does nothing.
type Pass struct{}

func (Defend) Kind() ActionKind   { return ActionDefend }
func (Guard) Kind() ActionKind    { return ActionGuard }
func (Implode) Kind() ActionKind  { return ActionImplode }
func (ItemUse) Kind() ActionKind  { return ActionItem }
func (SkillUse) Kind() ActionKind { return ActionSkill }
func (Pass) Kind() ActionKind     { return ActionPass }

// QueuedAction is one entry in the buffer.
type QueuedAction struct {
	Source        combat.ActorID
	Payload       Payload
	SubmittedTurn int
	Cooldown      int // Never negative
	Started       bool
	Processed     bool

	seq int // submission order, breaks ties between one actor's entries
}

// Kind returns the payload kind, or ActionNone without a payload.
func (q *QueuedAction) Kind() ActionKind {
	if q == nil || q.Payload == nil {
		return ActionNone
	}
	return q.Payload.Kind()
}

// Targets returns the actors the action is aimed at. Defend, Implode and Pass
// have none; Guard reports its ward.
func (q *QueuedAction) Targets() []combat.ActorID {
	switch p := q.Payload.(type) {
	case Guard:
		return []combat.ActorID{p.Target}
	case ItemUse:
		return p.Targets
	case SkillUse:
		return p.Targets
	default:
		return nil
	}
}
