package battle

import (
	"go.uber.org/zap"

	"github.com/samdwyer/bandbattle/internal/combat"
	"github.com/samdwyer/bandbattle/internal/effect"
	"github.com/samdwyer/bandbattle/internal/gamedata"
	"github.com/samdwyer/bandbattle/internal/turn"
)

// =============================================================================
// AI selection
// =============================================================================
//
// AI actors choose incrementally: the driver advances one step per Update so
// no single frame pays for every actor's search. A module builds its
// candidate list in its first step and scores one candidate per step after
// that. The driver caps the steps an actor may take; at the cap it submits
// the best candidate scored so far, or Pass when nothing was scored.

// AIModule is an in-progress selection for one actor.
type AIModule interface {
	// Step advances the selection; done is true once the decision is final.
	Step() (d Decision, done bool)
}

// partialModule is a module that can settle early on its best answer so far.
type partialModule interface {
	BestSoFar() (Decision, bool)
}

// AIDriver serves AI actors one at a time during personal upkeep.
type AIDriver struct {
	b      *Battle
	order  []combat.ActorID
	next   int // index into order of the next module actor
	budget int

	current combat.ActorID
	module  AIModule
	steps   int
}

func newAIDriver(b *Battle, budget int) *AIDriver {
	return &AIDriver{b: b, budget: budget}
}

// Begin queues actors for this turn's selection.
func (d *AIDriver) Begin(order []combat.ActorID) {
	d.order = append(d.order[:0], order...)
	d.next = 0
	d.current = combat.NoActor
	d.module = nil
	d.steps = 0
}

// Done reports whether every queued actor has been served.
func (d *AIDriver) Done() bool {
	return d.current == combat.NoActor && d.next >= len(d.order)
}

// Current returns the actor whose module is running, or NoActor.
func (d *AIDriver) Current() combat.ActorID { return d.current }

// Next returns the next queued actor, or NoActor.
func (d *AIDriver) Next() combat.ActorID {
	if d.next < len(d.order) {
		return d.order[d.next]
	}
	return combat.NoActor
}

// Step performs one unit of AI work.
func (d *AIDriver) Step() {
	if d.current == combat.NoActor {
		d.pick()
		return
	}

	d.steps++
	if d.steps > d.budget {
		if pm, ok := d.module.(partialModule); ok {
			if decision, ok := pm.BestSoFar(); ok {
				d.b.logger.Warn("ai step budget exhausted, using best so far",
					zap.String("actor", d.b.roster.Name(d.current)),
					zap.Int("budget", d.budget),
				)
				d.b.submit(d.current, decision)
				d.release()
				return
			}
		}
		d.b.logger.Warn("ai step budget exhausted, passing",
			zap.String("actor", d.b.roster.Name(d.current)),
			zap.Int("budget", d.budget),
		)
		d.b.submit(d.current, Decision{Kind: turn.ActionPass})
		d.release()
		return
	}

	decision, done := d.module.Step()
	if done {
		d.b.submit(d.current, decision)
		d.release()
	}
}

// Forget drops a removed actor's selection.
func (d *AIDriver) Forget(id combat.ActorID) {
	if d.current == id {
		d.release()
	}
}

// Stop discards all pending selections.
func (d *AIDriver) Stop() {
	d.order = d.order[:0]
	d.next = 0
	d.release()
}

func (d *AIDriver) pick() {
	for d.next < len(d.order) {
		id := d.order[d.next]
		d.next++
		if d.b.eligible(id) {
			d.current = id
			d.module = d.b.moduleFor(id)
			d.steps = 0
			return
		}
	}
}

func (d *AIDriver) release() {
	d.current = combat.NoActor
	d.module = nil
	d.steps = 0
}

// moduleFor picks the module matching the actor's state and personality.
func (b *Battle) moduleFor(id combat.ActorID) AIModule {
	actor, _ := b.roster.Get(id)
	if actor != nil && actor.HasAilment(effect.AilmentBerserk) {
		return &berserkModule{b: b, actor: id}
	}
	p := gamedata.PersonalityAggressive
	if pa, ok := actor.(interface{ Personality() gamedata.Personality }); ok {
		p = pa.Personality()
	}
	return &scoringModule{b: b, actor: id, personality: p}
}

// berserkModule always uses the basic attack on the weakest opponent.
type berserkModule struct {
	b     *Battle
	actor combat.ActorID
}

func (m *berserkModule) Step() (Decision, bool) {
	skill := m.b.skills.GetByID(m.b.basicAttack)
	target := m.b.weakest(m.b.candidates(m.actor, gamedata.TargetSingleEnemy))
	if skill == nil || target == combat.NoActor {
		return Decision{Kind: turn.ActionPass}, true
	}
	return Decision{Kind: turn.ActionSkill, Skill: skill, Targets: []combat.ActorID{target}}, true
}

// scoringModule enumerates usable skills and targets and keeps the best.
type scoringModule struct {
	b           *Battle
	actor       combat.ActorID
	personality gamedata.Personality

	built      bool
	candidates []Decision
	index      int
	best       int
	bestScore  float64
}

func (m *scoringModule) Step() (Decision, bool) {
	if !m.built {
		m.build()
		m.built = true
		return Decision{}, false
	}
	if m.index >= len(m.candidates) {
		if len(m.candidates) == 0 {
			return Decision{Kind: turn.ActionPass}, true
		}
		return m.candidates[m.best], true
	}

	score := m.score(m.candidates[m.index])
	if m.index == 0 || score > m.bestScore {
		m.best = m.index
		m.bestScore = score
	}
	m.index++
	if m.index == len(m.candidates) {
		return m.candidates[m.best], true
	}
	return Decision{}, false
}

// BestSoFar returns the top candidate among those scored, if any.
func (m *scoringModule) BestSoFar() (Decision, bool) {
	if m.index == 0 {
		return Decision{}, false
	}
	return m.candidates[m.best], true
}

func (m *scoringModule) build() {
	for _, s := range m.b.skillsOf(m.actor) {
		if !m.b.canUseSkill(m.actor, s) {
			continue
		}
		targets := m.b.candidates(m.actor, s.TargetType)
		if s.NeedsTarget() {
			for _, t := range targets {
				m.candidates = append(m.candidates, Decision{
					Kind: turn.ActionSkill, Skill: s, Targets: []combat.ActorID{t},
				})
			}
			continue
		}
		m.candidates = append(m.candidates, Decision{Kind: turn.ActionSkill, Skill: s, Targets: targets})
	}
	m.candidates = append(m.candidates, Decision{Kind: turn.ActionDefend})
}

var _ partialModule = (*scoringModule)(nil)

func (m *scoringModule) score(d Decision) float64 {
	if m.personality == gamedata.PersonalityRandom {
		return m.b.rng.Float64()
	}
	if d.Kind == turn.ActionDefend {
		return 1
	}

	damageWeight, healWeight := 1.0, 0.5
	if m.personality == gamedata.PersonalitySupport {
		damageWeight, healWeight = 0.5, 1.5
	}

	user, ok := m.b.roster.Get(m.actor)
	if !ok {
		return 0
	}
	var total float64
	for _, id := range d.Targets {
		target, ok := m.b.roster.Get(id)
		if !ok {
			continue
		}
		vita := target.GetStat(effect.AttrVITA)
		maxVita := max(1, target.GetMaxStat(effect.AttrVITA))
		missing := maxVita - vita

		for _, desc := range d.Skill.Effects {
			switch desc.Kind {
			case effect.KindDamage:
				dmg := m.b.resolver.EstimateDamage(desc, user, target)
				total += damageWeight * float64(min(dmg, vita))
				if dmg >= vita {
					total += damageWeight * 20
				}
				// Prefer the weaker of two equal hits.
				total += float64(missing) / float64(maxVita)
			case effect.KindAlter:
				if heal := m.b.resolver.EstimateHealing(desc, user, target); heal > 0 {
					total += healWeight * float64(min(heal, missing))
				} else {
					total += 2
				}
			case effect.KindRevive:
				if !target.IsAlive() {
					total += healWeight * 60
				}
			case effect.KindInflict:
				if !target.HasAilment(desc.Ailment) {
					total += 4
				}
			case effect.KindRelieve:
				if target.HasAilment(desc.Ailment) {
					total += healWeight * 10
				}
			case effect.KindAssign:
				total += 2
			}
		}
	}
	return total
}
