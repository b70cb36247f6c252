package entity

import (
	"github.com/samdwyer/bandbattle/internal/combat"
	"github.com/samdwyer/bandbattle/internal/effect"
)

// StatCap bounds every attribute other than VITA and QTDR, which are bounded
// by their own maximum.
const StatCap = 9999

// Sheet holds the attributes and ailments shared by members and enemies.
// Embedding it provides the stat and ailment half of combat.Actor.
type Sheet struct {
	stats    map[effect.Attribute]int
	max      map[effect.Attribute]int
	ailments []combat.AilmentState
}

// NewSheet creates a sheet at full strength from base attributes.
func NewSheet(base map[effect.Attribute]int) Sheet {
	s := Sheet{
		stats: make(map[effect.Attribute]int, len(base)),
		max:   make(map[effect.Attribute]int, len(base)),
	}
	for attr, v := range base {
		v = clamp(v, 0, StatCap)
		s.stats[attr] = v
		s.max[attr] = v
	}
	return s
}

// GetStat returns the current value of an attribute.
func (s *Sheet) GetStat(attr effect.Attribute) int { return s.stats[attr] }

// GetMaxStat returns the base (maximum) value of an attribute.
func (s *Sheet) GetMaxStat(attr effect.Attribute) int { return s.max[attr] }

// SetStat stores a value and returns it after clamping. VITA and QTDR clamp to
// [0, max]; everything else clamps to [0, StatCap].
func (s *Sheet) SetStat(attr effect.Attribute, value int) int {
	if s.stats == nil {
		s.stats = make(map[effect.Attribute]int)
	}
	hi := StatCap
	if attr == effect.AttrVITA || attr == effect.AttrQTDR {
		hi = s.max[attr]
	}
	value = clamp(value, 0, hi)
	s.stats[attr] = value
	return value
}

// IsAlive returns true if VITA remains.
func (s *Sheet) IsAlive() bool { return s.stats[effect.AttrVITA] > 0 }

// GetMomentum returns MMNT, the turn-order stat.
func (s *Sheet) GetMomentum() int { return s.stats[effect.AttrMMNT] }

// CanSelect returns false for fallen actors and while an ailment pins the
// actor in place.
func (s *Sheet) CanSelect() bool {
	if !s.IsAlive() {
		return false
	}
	for _, a := range s.ailments {
		if a.Ailment.PreventsSelection() {
			return false
		}
	}
	return true
}

// HasAilment reports whether the ailment is active.
func (s *Sheet) HasAilment(ailment effect.Ailment) bool {
	for _, a := range s.ailments {
		if a.Ailment == ailment {
			return true
		}
	}
	return false
}

// GetAilments returns a copy of the active ailments.
func (s *Sheet) GetAilments() []combat.AilmentState {
	out := make([]combat.AilmentState, len(s.ailments))
	copy(out, s.ailments)
	return out
}

// Inflict adds an ailment, replacing an existing one of the same kind.
func (s *Sheet) Inflict(state combat.AilmentState) {
	for i := range s.ailments {
		if s.ailments[i].Ailment == state.Ailment {
			s.ailments[i] = state
			return
		}
	}
	s.ailments = append(s.ailments, state)
}

// Relieve removes an ailment; false if it was not present.
func (s *Sheet) Relieve(ailment effect.Ailment) bool {
	for i := range s.ailments {
		if s.ailments[i].Ailment == ailment {
			s.ailments = append(s.ailments[:i], s.ailments[i+1:]...)
			return true
		}
	}
	return false
}

// TickAilments processes one turn of every active ailment. Damage-over-time
// ailments drain VITA, HIBERNATION restores it, and DEATH_TIMER drops VITA to
// zero when it runs out.
func (s *Sheet) TickAilments() []combat.AilmentTick {
	var ticks []combat.AilmentTick
	remaining := s.ailments[:0]

	for _, a := range s.ailments {
		tick := combat.AilmentTick{Ailment: a.Ailment}
		before := s.GetStat(effect.AttrVITA)

		switch a.Ailment {
		case effect.AilmentPoison, effect.AilmentBurn, effect.AilmentScald, effect.AilmentFrostbite:
			tick.Amount = before - s.SetStat(effect.AttrVITA, before-a.Power)
		case effect.AilmentHibernation:
			tick.Amount = before - s.SetStat(effect.AttrVITA, before+a.Power)
		}

		a.RemainingTurns--
		if a.RemainingTurns <= 0 {
			tick.Ended = true
			if a.Ailment == effect.AilmentDeathTimer {
				tick.Amount = s.GetStat(effect.AttrVITA)
				s.SetStat(effect.AttrVITA, 0)
			}
		} else {
			remaining = append(remaining, a)
		}

		tick.Killed = before > 0 && !s.IsAlive()
		ticks = append(ticks, tick)
	}

	s.ailments = remaining
	return ticks
}

// ClearAilments drops every ailment (revival, end of battle).
func (s *Sheet) ClearAilments() {
	s.ailments = nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
