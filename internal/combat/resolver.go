package combat

import (
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/samdwyer/bandbattle/internal/effect"
)

// Balance holds the tunable multipliers used by effect resolution.
type Balance struct {
	// Aggression and Fortitude weight each category's attacker and defender
	// attribute in the damage formula. Missing categories weigh zero.
	Aggression map[effect.Element]float64
	Fortitude  map[effect.Element]float64

	DefendFactor float64 // Damage multiplier while the target defends
	MinDamage    int     // Floor for a landed damage effect
	TickDivisor  int     // Default damage-over-time power is max VITA / TickDivisor
}

// DefaultBalance returns physical-leaning multipliers with every elemental
// category at half weight.
func DefaultBalance() Balance {
	b := Balance{
		Aggression:   make(map[effect.Element]float64),
		Fortitude:    make(map[effect.Element]float64),
		DefendFactor: 0.5,
		MinDamage:    1,
		TickDivisor:  16,
	}
	for _, e := range effect.Elements() {
		b.Aggression[e] = 0.5
		b.Fortitude[e] = 0.5
	}
	b.Aggression[effect.ElementPhysical] = 1.0
	b.Fortitude[effect.ElementPhysical] = 1.0
	b.Aggression[effect.ElementLuck] = 0.25
	b.Fortitude[effect.ElementLuck] = 0.25
	return b
}

// Modifiers carries turn-transient stances that affect one resolution.
type Modifiers struct {
	Defending bool
}

// EffectResult contains the outcome of resolving one descriptor against one target.
type EffectResult struct {
	Success       bool
	Missed        bool             // Chance roll failed
	Damage        int              // For damage effects
	Healing       int              // VITA restored by alter/assign/revive
	Attribute     effect.Attribute // Attribute that changed, if any
	Delta         int              // Signed change applied to Attribute
	StatusAdded   effect.Ailment
	StatusRemoved effect.Ailment
	Killed        bool
	Revived       bool
	Message       string // Human-readable description
}

// EffectResolver calculates and applies effect descriptors.
type EffectResolver struct {
	balance Balance
	rng     *rand.Rand
	logger  *zap.Logger
}

// NewEffectResolver creates a new effect resolver. The rng drives chance rolls,
// variance and ailment durations, so a seeded rng gives reproducible battles.
func NewEffectResolver(balance Balance, rng *rand.Rand, logger *zap.Logger) *EffectResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if balance.TickDivisor <= 0 {
		balance.TickDivisor = 1
	}
	return &EffectResolver{
		balance: balance,
		rng:     rng,
		logger:  logger,
	}
}

// Resolve applies one descriptor from user to target. Flip swaps the two roles
// before anything else. Failures are no-ops reported through the result.
func (r *EffectResolver) Resolve(d *effect.Descriptor, user, target Actor, mods Modifiers) EffectResult {
	if d == nil || !d.Valid {
		r.logger.Warn("refusing to resolve invalid effect")
		return EffectResult{Message: "Invalid effect"}
	}
	if user == nil || target == nil {
		r.logger.Warn("effect has no user or target", zap.Int("effect_id", d.ID))
		return EffectResult{Message: "Nothing happens"}
	}
	if d.Flip {
		user, target = target, user
	}

	if d.Kind == effect.KindRevive {
		if target.IsAlive() {
			return EffectResult{Message: target.GetName() + " is not down"}
		}
	} else if !target.IsAlive() {
		r.logger.Debug("effect target already down",
			zap.Int("effect_id", d.ID),
			zap.String("target", target.GetName()),
		)
		return EffectResult{Message: target.GetName() + " is already down"}
	}

	if r.rng.Float64()*100 >= d.Chance {
		return EffectResult{Missed: true, Message: "It misses " + target.GetName() + "!"}
	}

	switch d.Kind {
	case effect.KindDamage:
		return r.resolveDamage(d, user, target, mods)
	case effect.KindAlter:
		return r.resolveAlter(d, user, target)
	case effect.KindAssign:
		return r.resolveAssign(d, user, target)
	case effect.KindInflict:
		return r.resolveInflict(d, target)
	case effect.KindRelieve:
		return r.resolveRelieve(d, target)
	case effect.KindRevive:
		return r.resolveRevive(d, user, target)
	default:
		return EffectResult{Message: "Unknown effect kind"}
	}
}

// resolveDamage handles damage effects.
func (r *EffectResolver) resolveDamage(d *effect.Descriptor, user, target Actor, mods Modifiers) EffectResult {
	attr := d.TargetAttribute
	if attr == effect.AttrNone {
		attr = effect.AttrVITA
	}

	damage := r.roll(d, r.reference(d, user, target, attr)) + r.formulaBonus(d, user, target)
	if damage < r.balance.MinDamage {
		damage = r.balance.MinDamage
	}
	if mods.Defending {
		damage = int(float64(damage) * r.balance.DefendFactor)
		if damage < r.balance.MinDamage {
			damage = r.balance.MinDamage
		}
	}

	before := target.GetStat(attr)
	after := target.SetStat(attr, before-damage)
	actual := before - after

	return EffectResult{
		Success:   true,
		Damage:    actual,
		Attribute: attr,
		Delta:     -actual,
		Killed:    attr == effect.AttrVITA && !target.IsAlive(),
		Message:   fmt.Sprintf("%s takes %d %s damage!", target.GetName(), actual, attr),
	}
}

// resolveAlter handles relative stat changes.
func (r *EffectResolver) resolveAlter(d *effect.Descriptor, user, target Actor) EffectResult {
	attr := alteredAttribute(d)
	delta := r.roll(d, r.reference(d, user, target, attr))

	before := target.GetStat(attr)
	after := target.SetStat(attr, before+delta)
	return r.statResult(target, attr, before, after)
}

// resolveAssign sets a stat to a value.
func (r *EffectResolver) resolveAssign(d *effect.Descriptor, user, target Actor) EffectResult {
	attr := alteredAttribute(d)
	value := r.roll(d, r.reference(d, user, target, attr))

	before := target.GetStat(attr)
	after := target.SetStat(attr, value)
	return r.statResult(target, attr, before, after)
}

// resolveInflict applies an ailment for a random duration within bounds.
func (r *EffectResolver) resolveInflict(d *effect.Descriptor, target Actor) EffectResult {
	turns := d.MinDuration
	if span := d.MaxDuration - d.MinDuration; span > 0 {
		turns += r.rng.Intn(span + 1)
	}
	power := d.Base.Of(target.GetMaxStat(effect.AttrVITA))
	if power <= 0 {
		power = target.GetMaxStat(effect.AttrVITA) / r.balance.TickDivisor
		if power < 1 {
			power = 1
		}
	}

	target.Inflict(AilmentState{
		Ailment:        d.Ailment,
		RemainingTurns: turns,
		Power:          power,
	})
	return EffectResult{
		Success:     true,
		StatusAdded: d.Ailment,
		Message:     fmt.Sprintf("%s is afflicted with %s!", target.GetName(), d.Ailment),
	}
}

// resolveRelieve removes an ailment.
func (r *EffectResolver) resolveRelieve(d *effect.Descriptor, target Actor) EffectResult {
	if !target.Relieve(d.Ailment) {
		return EffectResult{Message: target.GetName() + " has no " + d.Ailment.String()}
	}
	return EffectResult{
		Success:       true,
		StatusRemoved: d.Ailment,
		Message:       fmt.Sprintf("%s is cured of %s!", target.GetName(), d.Ailment),
	}
}

// resolveRevive brings a fallen target back with some VITA.
func (r *EffectResolver) resolveRevive(d *effect.Descriptor, user, target Actor) EffectResult {
	value := r.roll(d, r.reference(d, user, target, effect.AttrVITA))
	if value < 1 {
		value = 1
	}
	// Ailments stop ticking on the fallen, so they must not survive revival.
	target.ClearAilments()
	restored := target.SetStat(effect.AttrVITA, value)
	return EffectResult{
		Success:   true,
		Revived:   true,
		Healing:   restored,
		Attribute: effect.AttrVITA,
		Delta:     restored,
		Message:   fmt.Sprintf("%s is revived with %d VITA!", target.GetName(), restored),
	}
}

// EstimateDamage calculates damage without variance or chance (for AI/preview).
func (r *EffectResolver) EstimateDamage(d *effect.Descriptor, user, target Actor) int {
	if d == nil || !d.Valid || d.Kind != effect.KindDamage {
		return 0
	}
	if d.Flip {
		user, target = target, user
	}
	attr := d.TargetAttribute
	if attr == effect.AttrNone {
		attr = effect.AttrVITA
	}
	damage := d.Base.Of(r.reference(d, user, target, attr)) + r.formulaBonus(d, user, target)
	if damage < r.balance.MinDamage {
		damage = r.balance.MinDamage
	}
	return damage
}

// EstimateHealing calculates VITA restored by an alter/assign/revive effect
// without variance (for AI/preview).
func (r *EffectResolver) EstimateHealing(d *effect.Descriptor, user, target Actor) int {
	if d == nil || !d.Valid {
		return 0
	}
	if d.Flip {
		user, target = target, user
	}
	switch d.Kind {
	case effect.KindAlter:
		if alteredAttribute(d) != effect.AttrVITA {
			return 0
		}
		return max(0, d.Base.Of(r.reference(d, user, target, effect.AttrVITA)))
	case effect.KindRevive:
		return max(1, d.Base.Of(target.GetMaxStat(effect.AttrVITA)))
	default:
		return 0
	}
}

// formulaBonus sums weighted aggression minus weighted fortitude over every
// category not excluded by the descriptor's ignore sets.
func (r *EffectResolver) formulaBonus(d *effect.Descriptor, user, target Actor) int {
	var attack, defense float64
	for _, e := range effect.Elements() {
		if !d.IgnoreAttack.Has(e) {
			attack += float64(user.GetStat(e.Aggression())) * r.balance.Aggression[e]
		}
		if !d.IgnoreDefense.Has(e) {
			defense += float64(target.GetStat(e.Fortitude())) * r.balance.Fortitude[e]
		}
	}
	return int(attack - defense)
}

// reference picks the stat a percentage base is taken of: the user's declared
// attribute when there is one, otherwise the target's maximum of attr.
func (r *EffectResolver) reference(d *effect.Descriptor, user, target Actor, attr effect.Attribute) int {
	if d.UserAttribute != effect.AttrNone {
		return user.GetStat(d.UserAttribute)
	}
	return target.GetMaxStat(attr)
}

// roll resolves base against ref and adds a uniform spread of ±variance.
// Percent variance is taken of the resolved base.
func (r *EffectResolver) roll(d *effect.Descriptor, ref int) int {
	base := d.Base.Of(ref)
	spread := d.Variance.Value
	if d.Variance.Percent {
		spread = abs(base) * d.Variance.Value / 100
	}
	if spread > 0 {
		base += r.rng.Intn(2*spread+1) - spread
	}
	return base
}

func (r *EffectResolver) statResult(target Actor, attr effect.Attribute, before, after int) EffectResult {
	result := EffectResult{
		Success:   true,
		Attribute: attr,
		Delta:     after - before,
	}
	switch {
	case attr == effect.AttrVITA && after > before:
		result.Healing = after - before
		result.Message = fmt.Sprintf("%s recovers %d VITA!", target.GetName(), result.Healing)
	case attr == effect.AttrVITA && after < before:
		result.Damage = before - after
		result.Killed = !target.IsAlive()
		result.Message = fmt.Sprintf("%s loses %d VITA!", target.GetName(), result.Damage)
	case after == before:
		result.Message = fmt.Sprintf("%s's %s is unchanged.", target.GetName(), attr)
	default:
		result.Message = fmt.Sprintf("%s's %s changes by %+d.", target.GetName(), attr, after-before)
	}
	return result
}

// alteredAttribute is the stat an alter/assign effect writes: the target
// symbol when present, else the user symbol, else VITA.
func alteredAttribute(d *effect.Descriptor) effect.Attribute {
	switch {
	case d.TargetAttribute != effect.AttrNone:
		return d.TargetAttribute
	case d.UserAttribute != effect.AttrNone:
		return d.UserAttribute
	default:
		return effect.AttrVITA
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
