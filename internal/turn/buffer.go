package turn

import (
	"go.uber.org/zap"

	"github.com/samdwyer/bandbattle/internal/combat"
	"github.com/samdwyer/bandbattle/internal/entity"
	"github.com/samdwyer/bandbattle/internal/gamedata"
)

// Option configures a Buffer.
type Option func(*Buffer)

// WithPolicy sets the Reorder policy.
func WithPolicy(p OrderPolicy) Option {
	return func(b *Buffer) { b.policy = p }
}

// WithLogger sets the diagnostics logger.
func WithLogger(l *zap.Logger) Option {
	return func(b *Buffer) {
		if l != nil {
			b.logger = l
		}
	}
}

// Buffer queues the actions submitted for the current turn, plus skill
// entries kept alive by a pending cooldown. It is not safe for concurrent use;
// the battle loop owns it.
type Buffer struct {
	roster  combat.Lookup
	entries []*QueuedAction
	cursor  int
	turn    int
	seq     int
	policy  OrderPolicy
	logger  *zap.Logger
}

// New creates an empty buffer reading actor momentum through roster.
func New(roster combat.Lookup, opts ...Option) *Buffer {
	b := &Buffer{
		roster: roster,
		policy: OrderBySpeed,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// SetTurn sets the turn stamped on entries whose adder takes no turn.
func (b *Buffer) SetTurn(turn int) { b.turn = turn }

// Turn returns the current stamping turn.
func (b *Buffer) Turn() int { return b.turn }

// Policy returns the active order policy.
func (b *Buffer) Policy() OrderPolicy { return b.policy }

// ===== Submission =====

func (b *Buffer) push(actor combat.ActorID, payload Payload, turn, cooldown int) bool {
	if actor == combat.NoActor {
		b.logger.Warn("refusing action without a source", zap.Stringer("kind", payload.Kind()))
		return false
	}
	if cooldown < 0 {
		cooldown = 0
	}
	b.seq++
	b.entries = append(b.entries, &QueuedAction{
		Source:        actor,
		Payload:       payload,
		SubmittedTurn: turn,
		Cooldown:      cooldown,
		seq:           b.seq,
	})
	b.logger.Debug("action queued",
		zap.Int("actor", int(actor)),
		zap.Stringer("kind", payload.Kind()),
		zap.Int("turn", turn),
		zap.Int("cooldown", cooldown),
	)
	return true
}

// AddDefend queues a Defend for the current turn.
func (b *Buffer) AddDefend(actor combat.ActorID) bool {
	return b.push(actor, Defend{}, b.turn, 0)
}

// AddGuard queues a Guard over target for the current turn.
func (b *Buffer) AddGuard(actor, target combat.ActorID) bool {
	return b.push(actor, Guard{Target: target}, b.turn, 0)
}

// AddImplode queues an Implode for the current turn.
func (b *Buffer) AddImplode(actor combat.ActorID) bool {
	return b.push(actor, Implode{}, b.turn, 0)
}

// AddPass queues a Pass for turn.
func (b *Buffer) AddPass(actor combat.ActorID, turn int) bool {
	return b.push(actor, Pass{}, turn, 0)
}

// AddItem queues an item use. The entry owns a deep copy of item.
func (b *Buffer) AddItem(actor combat.ActorID, item *entity.Item, targets []combat.ActorID) bool {
	if !item.IsValid() {
		b.logger.Warn("refusing unusable item", zap.Int("actor", int(actor)))
		return false
	}
	return b.push(actor, ItemUse{Item: item.Clone(), Targets: cloneTargets(targets)}, b.turn, 0)
}

// AddSkill queues a skill use. A negative cooldown is stored as zero. Nil
// skills and skills holding an invalid descriptor are refused.
func (b *Buffer) AddSkill(actor combat.ActorID, skill *gamedata.Skill, targets []combat.ActorID, cooldown, submittedTurn int) bool {
	if skill == nil || !skill.IsValid() {
		b.logger.Warn("refusing unusable skill", zap.Int("actor", int(actor)))
		return false
	}
	return b.push(actor, SkillUse{Skill: skill, Targets: cloneTargets(targets)}, submittedTurn, cooldown)
}

// ===== Cleanup =====

// Clear empties the buffer and resets the cursor.
func (b *Buffer) Clear() {
	b.entries = nil
	b.cursor = 0
}

// ClearForTurn removes entries submitted for turn whose cooldown is below 1,
// and every item entry regardless of turn. The cursor resets.
func (b *Buffer) ClearForTurn(turn int) {
	b.filter(func(e *QueuedAction) bool {
		if e.Kind() == ActionItem {
			return false
		}
		return !(e.SubmittedTurn == turn && e.Cooldown < 1)
	})
	b.cursor = 0
}

// ClearExpired removes processed entries from turns before turn whose
// cooldown has run out. These are the leftovers ClearForTurn keeps while a
// cooldown is pending.
func (b *Buffer) ClearExpired(turn int) {
	b.filter(func(e *QueuedAction) bool {
		return !(e.Processed && e.SubmittedTurn < turn && e.Cooldown == 0)
	})
	b.clampCursor()
}

// RemoveAllBy removes every entry submitted by actor. The cursor keeps
// pointing at the same surviving entry, or is clamped into range.
func (b *Buffer) RemoveAllBy(actor combat.ActorID) {
	before := 0
	kept := b.entries[:0]
	for i, e := range b.entries {
		if e.Source == actor {
			if i < b.cursor {
				before++
			}
			continue
		}
		kept = append(kept, e)
	}
	clearTail(b.entries, len(kept))
	b.entries = kept
	b.cursor -= before
	b.clampCursor()
}

// UpdateCooldowns decrements every nonzero cooldown by one.
func (b *Buffer) UpdateCooldowns() {
	for _, e := range b.entries {
		if e.Cooldown > 0 {
			e.Cooldown--
		}
	}
}

func (b *Buffer) filter(keep func(*QueuedAction) bool) {
	kept := b.entries[:0]
	for _, e := range b.entries {
		if keep(e) {
			kept = append(kept, e)
		}
	}
	clearTail(b.entries, len(kept))
	b.entries = kept
}

func (b *Buffer) clampCursor() {
	if b.cursor >= len(b.entries) {
		b.cursor = len(b.entries) - 1
	}
	if b.cursor < 0 {
		b.cursor = 0
	}
}

// ===== Queries =====

// HasPendingSkill reports whether actor has any skill entry, whatever its
// cooldown.
func (b *Buffer) HasPendingSkill(actor combat.ActorID) bool {
	for _, e := range b.entries {
		if e.Source == actor && e.Kind() == ActionSkill {
			return true
		}
	}
	return false
}

// IsCooling reports whether actor's use of skillID still carries a cooldown.
func (b *Buffer) IsCooling(actor combat.ActorID, skillID string) bool {
	for _, e := range b.entries {
		if e.Source != actor || e.Cooldown <= 0 {
			continue
		}
		if p, ok := e.Payload.(SkillUse); ok && p.Skill.ID == skillID {
			return true
		}
	}
	return false
}

// HasSubmitted reports whether actor has an entry submitted for turn.
func (b *Buffer) HasSubmitted(actor combat.ActorID, turn int) bool {
	for _, e := range b.entries {
		if e.Source == actor && e.SubmittedTurn == turn {
			return true
		}
	}
	return false
}

// Len returns the number of entries.
func (b *Buffer) Len() int { return len(b.entries) }

// Cursor returns the read position.
func (b *Buffer) Cursor() int { return b.cursor }

// Entries returns copies of every entry in current order.
func (b *Buffer) Entries() []QueuedAction {
	out := make([]QueuedAction, len(b.entries))
	for i, e := range b.entries {
		out[i] = *e
	}
	return out
}

// ===== Cursor reads =====

// Current returns the entry under the cursor.
func (b *Buffer) Current() (*QueuedAction, bool) {
	if b.cursor < 0 || b.cursor >= len(b.entries) {
		return nil, false
	}
	return b.entries[b.cursor], true
}

// ActionType returns the kind under the cursor, or ActionNone.
func (b *Buffer) ActionType() ActionKind {
	e, ok := b.Current()
	if !ok {
		return ActionNone
	}
	return e.Kind()
}

// Cooldown returns the cooldown under the cursor.
func (b *Buffer) Cooldown() (int, bool) {
	e, ok := b.Current()
	if !ok {
		return 0, false
	}
	return e.Cooldown, true
}

// User returns the source actor under the cursor.
func (b *Buffer) User() (combat.ActorID, bool) {
	e, ok := b.Current()
	if !ok {
		return combat.NoActor, false
	}
	return e.Source, true
}

// Skill returns the skill under the cursor, if the entry is a skill use.
func (b *Buffer) Skill() (*gamedata.Skill, bool) {
	e, ok := b.Current()
	if !ok {
		return nil, false
	}
	p, ok := e.Payload.(SkillUse)
	if !ok {
		return nil, false
	}
	return p.Skill, true
}

// Item returns the item copy under the cursor, if the entry is an item use.
func (b *Buffer) Item() (*entity.Item, bool) {
	e, ok := b.Current()
	if !ok {
		return nil, false
	}
	p, ok := e.Payload.(ItemUse)
	if !ok {
		return nil, false
	}
	return p.Item, true
}

// InitialTurn returns the submission turn under the cursor.
func (b *Buffer) InitialTurn() (int, bool) {
	e, ok := b.Current()
	if !ok {
		return 0, false
	}
	return e.SubmittedTurn, true
}

// Targets returns the targets under the cursor.
func (b *Buffer) Targets() ([]combat.ActorID, bool) {
	e, ok := b.Current()
	if !ok {
		return nil, false
	}
	return cloneTargets(e.Targets()), true
}

// SetNext advances the cursor and reports whether it rests on an entry.
func (b *Buffer) SetNext() bool {
	if b.cursor < len(b.entries) {
		b.cursor++
	}
	return b.cursor < len(b.entries)
}

// SetStarted marks the entry under the cursor as started.
func (b *Buffer) SetStarted() {
	if e, ok := b.Current(); ok {
		e.Started = true
	}
}

// SetProcessed marks the entry under the cursor as processed (and started).
func (b *Buffer) SetProcessed() {
	if e, ok := b.Current(); ok {
		e.Started = true
		e.Processed = true
	}
}

func cloneTargets(targets []combat.ActorID) []combat.ActorID {
	if targets == nil {
		return nil
	}
	out := make([]combat.ActorID, len(targets))
	copy(out, targets)
	return out
}

// clearTail drops references past n so filtered entries can be collected.
func clearTail(entries []*QueuedAction, n int) {
	for i := n; i < len(entries); i++ {
		entries[i] = nil
	}
}
