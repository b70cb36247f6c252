package battle

import (
	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/bandbattle/internal/combat"
	"github.com/samdwyer/bandbattle/internal/effect"
	"github.com/samdwyer/bandbattle/internal/gamedata"
	"github.com/samdwyer/bandbattle/internal/turn"
)

// EventKind tags a presentation event.
type EventKind int

const (
	EventBattleStarted EventKind = iota
	EventTurnStarted
	EventAilmentTick
	EventMenuOpened
	EventActionStarted
	EventEffectResolved
	EventActionFailed
	EventFleeFailed
	EventActorRemoved
	EventBattleEnded
)

// String returns a human-readable event name.
func (k EventKind) String() string {
	switch k {
	case EventBattleStarted:
		return "battle_started"
	case EventTurnStarted:
		return "turn_started"
	case EventAilmentTick:
		return "ailment_tick"
	case EventMenuOpened:
		return "menu_opened"
	case EventActionStarted:
		return "action_started"
	case EventEffectResolved:
		return "effect_resolved"
	case EventActionFailed:
		return "action_failed"
	case EventFleeFailed:
		return "flee_failed"
	case EventActorRemoved:
		return "actor_removed"
	case EventBattleEnded:
		return "battle_ended"
	default:
		return "unknown"
	}
}

// Event is one thing worth showing. Only the fields relevant to Kind are set.
type Event struct {
	Kind    EventKind
	Turn    int
	Phase   Phase
	Actor   combat.ActorID
	Target  combat.ActorID
	Action  turn.ActionKind
	Ailment effect.Ailment
	Result  *combat.EffectResult
	Message string
}

// Presenter receives events for display. Presentation never feeds back into
// battle logic.
type Presenter interface {
	Present(ev Event)
}

// PresenterFunc adapts a function to Presenter.
type PresenterFunc func(ev Event)

// Present calls f.
func (f PresenterFunc) Present(ev Event) { f(ev) }

// DisplayProvider maps battle symbols to glyphs, styles and labels.
type DisplayProvider interface {
	AilmentGlyph(a effect.Ailment) (rune, tcell.Style)
	ElementStyle(e effect.Element) tcell.Style
	ScopeLabel(t gamedata.TargetType) string
}

// plainDisplay is the DisplayProvider used when none is configured.
type plainDisplay struct{}

func (plainDisplay) AilmentGlyph(a effect.Ailment) (rune, tcell.Style) {
	s := a.String()
	if s == "" {
		return ' ', tcell.StyleDefault
	}
	return rune(s[0]), tcell.StyleDefault
}

func (plainDisplay) ElementStyle(effect.Element) tcell.Style { return tcell.StyleDefault }

func (plainDisplay) ScopeLabel(t gamedata.TargetType) string {
	switch t {
	case gamedata.TargetSelf:
		return "self"
	case gamedata.TargetSingleEnemy:
		return "one foe"
	case gamedata.TargetAllEnemies:
		return "all foes"
	case gamedata.TargetSingleAlly:
		return "one ally"
	case gamedata.TargetAllAllies:
		return "all allies"
	case gamedata.TargetSingleDeadAlly:
		return "fallen ally"
	default:
		return string(t)
	}
}
