package battle

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/samdwyer/bandbattle/internal/combat"
	"github.com/samdwyer/bandbattle/internal/effect"
	"github.com/samdwyer/bandbattle/internal/gamedata"
	"github.com/samdwyer/bandbattle/internal/telemetry"
	"github.com/samdwyer/bandbattle/internal/turn"
)

// =============================================================================
// Submission
// =============================================================================

// submit queues a decision for actor. A decision the buffer refuses becomes
// a Pass so the actor still counts as having chosen.
func (b *Battle) submit(actor combat.ActorID, d Decision) {
	if d.Flee {
		b.flee(actor)
		return
	}

	var ok bool
	switch d.Kind {
	case turn.ActionDefend:
		ok = b.buffer.AddDefend(actor)
	case turn.ActionGuard:
		if len(d.Targets) > 0 {
			ok = b.buffer.AddGuard(actor, d.Targets[0])
		}
	case turn.ActionImplode:
		ok = b.buffer.AddImplode(actor)
	case turn.ActionItem:
		if d.Item != nil && b.itemsInStock(d.Item.ID) > 0 {
			ok = b.buffer.AddItem(actor, d.Item, d.Targets)
		}
	case turn.ActionSkill:
		cooldown := 0
		if d.Skill != nil {
			cooldown = d.Skill.Cooldown
		}
		ok = b.buffer.AddSkill(actor, d.Skill, d.Targets, cooldown, b.turn)
	case turn.ActionPass:
		ok = b.buffer.AddPass(actor, b.turn)
	}
	if ok {
		return
	}

	b.logger.Warn("selection rejected, passing",
		zap.String("actor", b.roster.Name(actor)),
		zap.Stringer("action", d.Kind),
	)
	b.buffer.AddPass(actor, b.turn)
}

// itemsInStock counts an item's inventory stack minus this turn's queued,
// not yet executed uses of it.
func (b *Battle) itemsInStock(id string) int {
	if b.inventory == nil {
		return 0
	}
	n := b.inventory.Count(id)
	for _, e := range b.buffer.Entries() {
		if e.Processed || e.SubmittedTurn != b.turn {
			continue
		}
		if use, ok := e.Payload.(turn.ItemUse); ok && use.Item != nil && use.Item.ID == id {
			n--
		}
	}
	return max(n, 0)
}

// flee rolls the party's escape. Success ends the battle at once.
func (b *Battle) flee(actor combat.ActorID) {
	if b.rng.Float64()*100 < b.fleeChance {
		for _, id := range b.roster.Side(combat.SideParty) {
			b.buffer.RemoveAllBy(id)
		}
		b.finish(PhaseFled, "The party escapes!")
		return
	}

	b.present(Event{Kind: EventFleeFailed, Actor: actor, Message: "Couldn't escape!"})
	b.buffer.AddPass(actor, b.turn)
}

// =============================================================================
// Execution
// =============================================================================

// performAction executes the entry under the cursor.
func (b *Battle) performAction(ctx context.Context) {
	b.phase = PhaseActionOutcome

	entry, ok := b.buffer.Current()
	if !ok || entry.Processed {
		return
	}
	actor, present := b.roster.Get(entry.Source)
	if !present || !actor.IsAlive() {
		b.logger.Debug("skipping action of absent actor", zap.Int("actor", int(entry.Source)))
		b.buffer.SetProcessed()
		return
	}

	b.buffer.SetStarted()
	if b.turnSpan != nil {
		ctx = trace.ContextWithSpan(ctx, b.turnSpan)
	}
	_, span := b.tracer.Start(ctx, "battle.action")
	span.SetAttributes(
		telemetry.AttrBattleID.String(b.id),
		telemetry.AttrTurn.Int(b.turn),
		telemetry.AttrActor.String(actor.GetName()),
		telemetry.AttrAction.String(entry.Kind().String()),
		attribute.Int("targets", len(entry.Targets())),
	)
	defer span.End()

	b.execute(entry, actor)
	b.buffer.SetProcessed()
	b.wait = b.actionDelay
}

func (b *Battle) execute(entry *turn.QueuedAction, actor combat.Actor) {
	src := entry.Source
	name := actor.GetName()
	ev := Event{Kind: EventActionStarted, Actor: src, Action: entry.Kind()}

	switch p := entry.Payload.(type) {
	case turn.Defend:
		b.defending[src] = true
		ev.Message = name + " defends."
		b.present(ev)

	case turn.Guard:
		ward, ok := b.roster.Get(p.Target)
		if !ok || !ward.IsAlive() {
			b.fail(src, entry.Kind(), name+" has no one to guard.")
			return
		}
		b.guards[p.Target] = src
		ev.Target = p.Target
		ev.Message = name + " guards " + ward.GetName() + "."
		b.present(ev)

	case turn.Implode:
		ev.Message = name + " implodes!"
		b.present(ev)
		b.implode(src, actor)

	case turn.ItemUse:
		if b.inventory == nil || !b.inventory.Consume(p.Item.ID) {
			b.fail(src, entry.Kind(), "No "+p.Item.Name+" left!")
			return
		}
		ev.Message = name + " uses " + p.Item.Name + "."
		b.present(ev)
		b.applyEffects(src, actor, p.Item.Effects, p.Item.Target, p.Targets)

	case turn.SkillUse:
		if actor.HasAilment(effect.AilmentSilence) {
			b.fail(src, entry.Kind(), name+" is silenced!")
			return
		}
		qtdr := actor.GetStat(effect.AttrQTDR)
		if qtdr < p.Skill.Cost {
			b.fail(src, entry.Kind(), name+" lacks the QTDR for "+p.Skill.Name+".")
			return
		}
		actor.SetStat(effect.AttrQTDR, qtdr-p.Skill.Cost)
		ev.Message = name + " uses " + p.Skill.Name + "!"
		b.present(ev)
		b.applyEffects(src, actor, p.Skill.Effects, p.Skill.TargetType, p.Targets)

	default:
		ev.Message = name + " waits."
		b.present(ev)
	}
}

// applyEffects resolves every descriptor against every target, in order.
// Whole-side scopes are re-read from the roster at execution time.
func (b *Battle) applyEffects(src combat.ActorID, user combat.Actor, effects []*effect.Descriptor, scope gamedata.TargetType, targets []combat.ActorID) {
	if !scope.NeedsTarget() {
		targets = b.candidates(src, scope)
	}
	if len(targets) == 0 {
		b.logger.Warn("action has no targets", zap.String("actor", user.GetName()))
		b.fail(src, turn.ActionNone, "But there was no target.")
		return
	}

	for _, tid := range targets {
		for _, d := range effects {
			id := tid
			if d.Kind == effect.KindDamage && scope.NeedsTarget() {
				id = b.redirect(src, tid)
			}
			target, ok := b.roster.Get(id)
			if !ok {
				b.logger.Debug("effect target left the battle", zap.Int("target", int(id)))
				continue
			}
			res := b.resolver.Resolve(d, user, target, combat.Modifiers{Defending: b.defending[id]})
			b.present(Event{
				Kind:    EventEffectResolved,
				Actor:   src,
				Target:  id,
				Result:  &res,
				Message: res.Message,
			})
		}
	}
}

// redirect returns the living guard standing in for target against an
// attack from src, or target itself.
func (b *Battle) redirect(src, target combat.ActorID) combat.ActorID {
	guard, ok := b.guards[target]
	if !ok || guard == src {
		return target
	}
	g, present := b.roster.Get(guard)
	if !present || !g.IsAlive() {
		return target
	}
	b.present(Event{
		Kind:    EventActionStarted,
		Actor:   guard,
		Target:  target,
		Action:  turn.ActionGuard,
		Message: g.GetName() + " steps in front of " + b.roster.Name(target) + "!",
	})
	return guard
}

// implode trades all of the user's VITA for damage to every living opponent.
func (b *Battle) implode(src combat.ActorID, actor combat.Actor) {
	side, _ := b.roster.SideOf(src)
	damage := int(float64(actor.GetStat(effect.AttrVITA)) * b.implodeFactor)

	for _, id := range b.roster.Living(side.Opposing()) {
		target, _ := b.roster.Get(id)
		before := target.GetStat(effect.AttrVITA)
		after := target.SetStat(effect.AttrVITA, before-damage)
		res := combat.EffectResult{
			Success:   true,
			Damage:    before - after,
			Attribute: effect.AttrVITA,
			Delta:     after - before,
			Killed:    !target.IsAlive(),
			Message:   fmt.Sprintf("%s takes %d damage!", target.GetName(), before-after),
		}
		b.present(Event{Kind: EventEffectResolved, Actor: src, Target: id, Result: &res, Message: res.Message})
	}
	actor.SetStat(effect.AttrVITA, 0)
}

func (b *Battle) fail(src combat.ActorID, kind turn.ActionKind, message string) {
	b.logger.Debug("action failed", zap.String("actor", b.roster.Name(src)), zap.String("reason", message))
	b.present(Event{Kind: EventActionFailed, Actor: src, Action: kind, Message: message})
}

// =============================================================================
// Selection helpers
// =============================================================================

// eligible reports whether an actor still has to choose this turn.
func (b *Battle) eligible(id combat.ActorID) bool {
	actor, ok := b.roster.Get(id)
	if !ok || !actor.IsAlive() || !actor.CanSelect() {
		return false
	}
	return !b.buffer.HasSubmitted(id, b.turn)
}

// candidates lists the actors a scope can reach from id's side.
func (b *Battle) candidates(id combat.ActorID, scope gamedata.TargetType) []combat.ActorID {
	side, ok := b.roster.SideOf(id)
	if !ok {
		return nil
	}
	switch scope {
	case gamedata.TargetSelf:
		return []combat.ActorID{id}
	case gamedata.TargetSingleEnemy, gamedata.TargetAllEnemies:
		return b.roster.Living(side.Opposing())
	case gamedata.TargetSingleAlly, gamedata.TargetAllAllies:
		return b.roster.Living(side)
	case gamedata.TargetSingleDeadAlly:
		return b.roster.Fallen(side)
	default:
		return nil
	}
}

// guardCandidates lists the living allies id could guard.
func (b *Battle) guardCandidates(id combat.ActorID) []combat.ActorID {
	var out []combat.ActorID
	for _, ally := range b.candidates(id, gamedata.TargetSingleAlly) {
		if ally != id {
			out = append(out, ally)
		}
	}
	return out
}

// skillsOf resolves the skills an actor knows.
func (b *Battle) skillsOf(id combat.ActorID) []*gamedata.Skill {
	actor, ok := b.roster.Get(id)
	if !ok {
		return nil
	}
	known, ok := actor.(interface{ GetSkillIDs() []string })
	if !ok {
		return nil
	}
	return b.skills.GetMultiple(known.GetSkillIDs())
}

// canUseSkill reports whether a skill is affordable, off cooldown, not
// silenced and has someone to land on.
func (b *Battle) canUseSkill(id combat.ActorID, s *gamedata.Skill) bool {
	actor, ok := b.roster.Get(id)
	if !ok || s == nil || !s.IsValid() {
		return false
	}
	if actor.HasAilment(effect.AilmentSilence) || actor.GetStat(effect.AttrQTDR) < s.Cost {
		return false
	}
	if b.buffer.IsCooling(id, s.ID) {
		return false
	}
	return len(b.candidates(id, s.TargetType)) > 0
}

// weakest returns the living actor with the least VITA; ties keep roster order.
func (b *Battle) weakest(ids []combat.ActorID) combat.ActorID {
	best, bestVita := combat.NoActor, 0
	for _, id := range ids {
		a, ok := b.roster.Get(id)
		if !ok || !a.IsAlive() {
			continue
		}
		if v := a.GetStat(effect.AttrVITA); best == combat.NoActor || v < bestVita {
			best, bestVita = id, v
		}
	}
	return best
}

func tickMessage(name string, tick combat.AilmentTick) string {
	switch {
	case tick.Killed:
		return fmt.Sprintf("%s succumbs to %s!", name, tick.Ailment)
	case tick.Amount > 0:
		return fmt.Sprintf("%s takes %d %s damage.", name, tick.Amount, tick.Ailment)
	case tick.Amount < 0:
		return fmt.Sprintf("%s recovers %d VITA.", name, -tick.Amount)
	case tick.Ended:
		return fmt.Sprintf("%s is no longer affected by %s.", name, tick.Ailment)
	default:
		return ""
	}
}
