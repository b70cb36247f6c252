package battle

import (
	"context"
	"math/rand"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/samdwyer/bandbattle/internal/combat"
	"github.com/samdwyer/bandbattle/internal/effect"
	"github.com/samdwyer/bandbattle/internal/entity"
	"github.com/samdwyer/bandbattle/internal/gamedata"
	"github.com/samdwyer/bandbattle/internal/telemetry"
	"github.com/samdwyer/bandbattle/internal/turn"
)

// DefaultBasicAttack is the skill a berserk actor is forced to use.
const DefaultBasicAttack = "strike"

// DefaultAIStepBudget caps the AI steps one actor may take per selection.
const DefaultAIStepBudget = 32

// DefaultImplodeFactor scales the user's VITA into implode damage.
const DefaultImplodeFactor = 1.5

// Setup is the cast and equipment of one battle.
type Setup struct {
	Roster      *combat.Roster
	Skills      *gamedata.SkillRegistry
	Inventory   *entity.Inventory // Shared by the party; may be nil
	BasicAttack string            // Defaults to DefaultBasicAttack
}

// Options tunes a battle. Zero values fall back to defaults, except
// FleeChance where zero means fleeing always fails.
type Options struct {
	Balance       combat.Balance
	ImplodeFactor float64
	FleeChance    float64 // Percent
	AIStepBudget  int
	Policy        turn.OrderPolicy

	Rng    *rand.Rand
	Logger *zap.Logger
	Tracer trace.Tracer

	Presenter Presenter
	Display   DisplayProvider

	// ActionDelay holds ActionOutcome back after each action so the
	// presenter can show it. Consumed through Update's dt.
	ActionDelay time.Duration
}

// Battle is the turn-phase state machine for one encounter.
type Battle struct {
	id          string
	roster      *combat.Roster
	skills      *gamedata.SkillRegistry
	inventory   *entity.Inventory
	basicAttack string

	buffer   *turn.Buffer
	resolver *combat.EffectResolver
	menu     *Menu
	ai       *AIDriver

	implodeFactor float64
	fleeChance    float64
	actionDelay   time.Duration

	rng       *rand.Rand
	logger    *zap.Logger
	tracer    trace.Tracer
	presenter Presenter
	display   DisplayProvider

	phase   Phase
	turn    int
	started bool
	wait    time.Duration

	players   []combat.ActorID // player actors still to be served this turn
	defending map[combat.ActorID]bool
	guards    map[combat.ActorID]combat.ActorID // ward -> guard

	turnSpan trace.Span
}

// New creates a battle ready for its first Update.
func New(setup Setup, opts Options) *Battle {
	if setup.Roster == nil {
		setup.Roster = combat.NewRoster()
	}
	if setup.Skills == nil {
		setup.Skills = gamedata.NewSkillRegistry(nil)
	}
	if setup.BasicAttack == "" {
		setup.BasicAttack = DefaultBasicAttack
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Tracer == nil {
		opts.Tracer = telemetry.Tracer("battle")
	}
	if opts.Rng == nil {
		opts.Rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.Display == nil {
		opts.Display = plainDisplay{}
	}
	if opts.Balance.Aggression == nil && opts.Balance.Fortitude == nil {
		opts.Balance = combat.DefaultBalance()
	}
	if opts.AIStepBudget <= 0 {
		opts.AIStepBudget = DefaultAIStepBudget
	}
	if opts.ImplodeFactor <= 0 {
		opts.ImplodeFactor = DefaultImplodeFactor
	}

	id := uuid.NewString()
	logger := opts.Logger.With(zap.String("battle_id", id))

	b := &Battle{
		id:            id,
		roster:        setup.Roster,
		skills:        setup.Skills,
		inventory:     setup.Inventory,
		basicAttack:   setup.BasicAttack,
		implodeFactor: opts.ImplodeFactor,
		fleeChance:    opts.FleeChance,
		actionDelay:   opts.ActionDelay,
		rng:           opts.Rng,
		logger:        logger,
		tracer:        opts.Tracer,
		presenter:     opts.Presenter,
		display:       opts.Display,
		phase:         PhaseGeneralUpkeep,
		turn:          1,
		defending:     make(map[combat.ActorID]bool),
		guards:        make(map[combat.ActorID]combat.ActorID),
	}
	b.buffer = turn.New(setup.Roster, turn.WithPolicy(opts.Policy), turn.WithLogger(logger))
	b.resolver = combat.NewEffectResolver(opts.Balance, opts.Rng, logger)
	b.menu = newMenu(b)
	b.ai = newAIDriver(b, opts.AIStepBudget)
	return b
}

// ===== Accessors =====

// ID returns the battle's unique id.
func (b *Battle) ID() string { return b.id }

// Phase returns the current phase.
func (b *Battle) Phase() Phase { return b.phase }

// Turn returns the current turn ordinal, starting at 1.
func (b *Battle) Turn() int { return b.turn }

// Roster returns the battle's actors.
func (b *Battle) Roster() *combat.Roster { return b.roster }

// Menu returns the player selection menu.
func (b *Battle) Menu() *Menu { return b.menu }

// AI returns the AI selection driver.
func (b *Battle) AI() *AIDriver { return b.ai }

// Buffer returns the action queue.
func (b *Battle) Buffer() *turn.Buffer { return b.buffer }

// Inventory returns the party inventory, possibly nil.
func (b *Battle) Inventory() *entity.Inventory { return b.inventory }

// Display returns the display provider.
func (b *Battle) Display() DisplayProvider { return b.display }

// IsDefending reports whether an actor defends this turn.
func (b *Battle) IsDefending(id combat.ActorID) bool { return b.defending[id] }

// GuardOf returns who guards an actor this turn.
func (b *Battle) GuardOf(id combat.ActorID) (combat.ActorID, bool) {
	g, ok := b.guards[id]
	return g, ok
}

// =============================================================================
// Update loop
// =============================================================================

// Update advances the battle by at most one phase step. It never blocks:
// when input or AI work is pending it returns and waits for the next call.
func (b *Battle) Update(ctx context.Context, dt time.Duration) {
	if b.phase.IsTerminal() {
		return
	}
	if !b.started {
		b.start(ctx)
	}
	if b.wait > 0 {
		b.wait -= dt
		if b.wait > 0 {
			return
		}
		b.wait = 0
	}

	switch b.phase {
	case PhaseGeneralUpkeep:
		b.generalUpkeep(ctx)
	case PhasePersonalUpkeep:
		b.personalUpkeep()
	case PhaseOrderActions:
		b.buffer.Reorder()
		b.phase = PhasePerformAction
	case PhasePerformAction:
		b.performAction(ctx)
	case PhaseActionOutcome:
		b.actionOutcome()
	}
}

func (b *Battle) start(ctx context.Context) {
	b.started = true

	party := len(b.roster.Side(combat.SideParty))
	foes := len(b.roster.Side(combat.SideFoes))
	_, span := b.tracer.Start(ctx, "battle.start")
	span.SetAttributes(
		telemetry.AttrBattleID.String(b.id),
		attribute.Int("party_size", party),
		attribute.Int("foe_count", foes),
	)
	span.End()

	b.logger.Info("battle started", zap.Int("party_size", party), zap.Int("foe_count", foes))
	b.present(Event{Kind: EventBattleStarted, Message: "Battle begins!"})
}

// generalUpkeep runs turn-start effects, then opens personal upkeep.
func (b *Battle) generalUpkeep(ctx context.Context) {
	_, b.turnSpan = b.tracer.Start(ctx, "battle.turn")
	b.turnSpan.SetAttributes(
		telemetry.AttrBattleID.String(b.id),
		telemetry.AttrTurn.Int(b.turn),
	)
	b.buffer.SetTurn(b.turn)
	b.present(Event{Kind: EventTurnStarted})

	for _, id := range b.roster.IDs() {
		actor, _ := b.roster.Get(id)
		if !actor.IsAlive() {
			continue
		}
		for _, tick := range actor.TickAilments() {
			b.present(Event{
				Kind:    EventAilmentTick,
				Actor:   id,
				Ailment: tick.Ailment,
				Message: tickMessage(actor.GetName(), tick),
			})
		}
	}

	b.buffer.UpdateCooldowns()
	b.buffer.ClearExpired(b.turn)
	clear(b.defending)
	clear(b.guards)

	if b.checkOutcome() {
		return
	}
	b.beginSelection()
	b.phase = PhasePersonalUpkeep
}

// beginSelection splits this turn's eligible actors between the menu and
// the AI driver, in roster order.
func (b *Battle) beginSelection() {
	b.players = b.players[:0]
	var automated []combat.ActorID
	for _, id := range b.roster.IDs() {
		if !b.eligible(id) {
			continue
		}
		actor, _ := b.roster.Get(id)
		if actor.IsPlayerControlled() && !actor.HasAilment(effect.AilmentBerserk) {
			b.players = append(b.players, id)
		} else {
			automated = append(automated, id)
		}
	}
	b.ai.Begin(automated)
}

func (b *Battle) personalUpkeep() {
	if !b.menu.Active() {
		b.openNextMenu()
	}
	if !b.ai.Done() {
		b.ai.Step()
	}
	if b.phase == PhasePersonalUpkeep && !b.menu.Active() && len(b.players) == 0 && b.ai.Done() {
		b.phase = PhaseOrderActions
	}
}

func (b *Battle) openNextMenu() {
	for len(b.players) > 0 {
		id := b.players[0]
		b.players = b.players[1:]
		if b.eligible(id) {
			b.menu.Open(id)
			b.present(Event{Kind: EventMenuOpened, Actor: id})
			return
		}
	}
}

func (b *Battle) actionOutcome() {
	if b.checkOutcome() {
		return
	}
	if entry, ok := b.buffer.Current(); ok && !entry.Processed {
		b.phase = PhasePerformAction
		return
	}
	if b.buffer.SetNext() {
		b.phase = PhasePerformAction
		return
	}

	b.buffer.ClearForTurn(b.turn)
	b.endTurnSpan()
	b.turn++
	b.phase = PhaseGeneralUpkeep
}

// checkOutcome moves to a terminal phase when a side is eliminated. A party
// wipe is a loss even when the last foe fell in the same action.
func (b *Battle) checkOutcome() bool {
	switch {
	case b.roster.Eliminated(combat.SideParty):
		b.finish(PhaseBattleLost, "Your party has been defeated!")
		return true
	case b.roster.Eliminated(combat.SideFoes):
		b.finish(PhaseBattleWon, "Victory! All enemies defeated!")
		return true
	}
	return false
}

// =============================================================================
// Input and teardown
// =============================================================================

// HandleKeyEvent routes a key to the selection menu. It returns true when
// the battle should end: a terminal phase was reached, or the player quit.
func (b *Battle) HandleKeyEvent(ev *tcell.EventKey) bool {
	if ev == nil {
		return b.phase.IsTerminal()
	}
	if ev.Key() == tcell.KeyCtrlC || (ev.Key() == tcell.KeyRune && (ev.Rune() == 'q' || ev.Rune() == 'Q')) {
		b.Stop()
		return true
	}
	if b.phase.IsTerminal() {
		return true
	}
	if b.phase != PhasePersonalUpkeep || !b.menu.Active() {
		return false
	}

	d, done := b.menu.HandleKey(ev)
	if !done {
		return false
	}
	actor := b.menu.Actor()
	b.menu.Close()
	b.submit(actor, d)
	return b.phase.IsTerminal()
}

// Stop aborts the battle from any phase. Queued actions, the menu and AI
// cursors are discarded.
func (b *Battle) Stop() {
	if b.phase.IsTerminal() {
		return
	}
	b.buffer.Clear()
	b.finish(PhaseStopped, "Battle aborted.")
}

// RemoveActor takes an actor out of the battle mid-turn. Its queued actions
// go with it; the buffer cursor stays valid.
func (b *Battle) RemoveActor(id combat.ActorID) {
	if _, ok := b.roster.Get(id); !ok {
		return
	}
	b.present(Event{Kind: EventActorRemoved, Actor: id, Message: b.roster.Name(id) + " leaves the battle."})

	b.buffer.RemoveAllBy(id)
	b.ai.Forget(id)
	if b.menu.Actor() == id {
		b.menu.Close()
	}
	for i, p := range b.players {
		if p == id {
			b.players = append(b.players[:i], b.players[i+1:]...)
			break
		}
	}
	delete(b.defending, id)
	delete(b.guards, id)
	for ward, guard := range b.guards {
		if guard == id {
			delete(b.guards, ward)
		}
	}
	b.roster.Remove(id)
}

func (b *Battle) finish(phase Phase, message string) {
	b.phase = phase
	b.menu.Close()
	b.ai.Stop()
	b.players = nil
	b.wait = 0

	_, span := b.tracer.Start(b.spanContext(), "battle.end")
	span.SetAttributes(
		telemetry.AttrBattleID.String(b.id),
		telemetry.AttrOutcome.String(phase.String()),
		attribute.Int("turns_taken", b.turn),
		attribute.Int("party_vita_remaining", b.sideVita(combat.SideParty)),
	)
	span.End()
	b.endTurnSpan()

	b.logger.Info("battle ended", zap.Stringer("outcome", phase), zap.Int("turns", b.turn))
	b.present(Event{Kind: EventBattleEnded, Message: message})
}

// spanContext parents spans opened outside Update under the current turn.
func (b *Battle) spanContext() context.Context {
	if b.turnSpan == nil {
		return context.Background()
	}
	return trace.ContextWithSpan(context.Background(), b.turnSpan)
}

func (b *Battle) endTurnSpan() {
	if b.turnSpan != nil {
		b.turnSpan.End()
		b.turnSpan = nil
	}
}

func (b *Battle) sideVita(side combat.Side) int {
	total := 0
	for _, id := range b.roster.Side(side) {
		if a, ok := b.roster.Get(id); ok {
			total += a.GetStat(effect.AttrVITA)
		}
	}
	return total
}

// present forwards an event to the presenter. Presenter failures never
// reach battle logic.
func (b *Battle) present(ev Event) {
	if b.presenter == nil {
		return
	}
	ev.Turn = b.turn
	ev.Phase = b.phase
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("presenter panicked",
				zap.Any("panic", r),
				zap.Stringer("event", ev.Kind),
			)
		}
	}()
	b.presenter.Present(ev)
}
