package battle

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/samdwyer/bandbattle/internal/combat"
	"github.com/samdwyer/bandbattle/internal/effect"
	"github.com/samdwyer/bandbattle/internal/entity"
	"github.com/samdwyer/bandbattle/internal/gamedata"
	"github.com/samdwyer/bandbattle/internal/telemetry"
	"github.com/samdwyer/bandbattle/internal/turn"
)

// ===== Fixtures =====

func testSkill(t *testing.T, id string, scope gamedata.TargetType, cost, cooldown int, lines ...string) gamedata.Skill {
	t.Helper()
	s := gamedata.Skill{ID: id, Name: id, TargetType: scope, Cost: cost, Cooldown: cooldown}
	for _, line := range lines {
		d := effect.Parse(line, effect.DefaultParseOptions())
		require.True(t, d.Valid, "effect %q: %v", line, d.Diagnostics)
		s.Effects = append(s.Effects, d)
		s.EffectIDs = append(s.EffectIDs, d.ID)
	}
	return s
}

// testSkills has a flat 10-damage hit that ignores every stat, and a few
// companions for menu tests.
func testSkills(t *testing.T) *gamedata.SkillRegistry {
	return gamedata.NewSkillRegistry([]gamedata.Skill{
		testSkill(t, "strike", gamedata.TargetSingleEnemy, 0, 0, "1,DAMAGE,,ALL,ALL,,AMOUNT.10,,,100"),
		testSkill(t, "blast", gamedata.TargetAllEnemies, 5, 2, "2,DAMAGE,,ALL,ALL,,AMOUNT.5,,,100"),
		testSkill(t, "mend", gamedata.TargetSingleAlly, 3, 0, "3,ALTER,,,,,AMOUNT.20,,VITA,100"),
	})
}

func testFoe(t *testing.T, name string, vita, mmnt int, skills ...string) *entity.Enemy {
	t.Helper()
	if len(skills) == 0 {
		skills = []string{"strike"}
	}
	e, err := entity.NewEnemyFromDef(&gamedata.EnemyDef{
		ID:     name,
		Name:   name,
		Glyph:  "e",
		Stats:  map[string]int{"VITA": vita, "QTDR": 20, "MMNT": mmnt},
		Skills: skills,
	})
	require.NoError(t, err)
	return e
}

func testMember(name string, vita, mmnt int) *entity.Member {
	m := entity.NewMember(name, entity.ClassWarrior)
	m.SetStat(effect.AttrVITA, vita)
	m.SetStat(effect.AttrMMNT, mmnt)
	m.SkillIDs = []string{"strike", "blast", "mend"}
	return m
}

type recorder struct {
	events []Event
}

func (r *recorder) Present(ev Event) { r.events = append(r.events, ev) }

func (r *recorder) kinds(kind EventKind) []Event {
	var out []Event
	for _, ev := range r.events {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

func newTestBattle(t *testing.T, roster *combat.Roster, opts Options) *Battle {
	t.Helper()
	if opts.Rng == nil {
		opts.Rng = rand.New(rand.NewSource(7))
	}
	if opts.Tracer == nil {
		opts.Tracer = telemetry.NoopTracer()
	}
	inv := entity.NewInventory()
	potion := testSkill(t, "potion", gamedata.TargetSingleAlly, 0, 0, "201,ALTER,,,,,AMOUNT.40,,VITA,100")
	inv.Add(&entity.Item{ID: "potion", Name: "Potion", Target: gamedata.TargetSingleAlly, Effects: potion.Effects, Count: 2})
	return New(Setup{Roster: roster, Skills: testSkills(t), Inventory: inv}, opts)
}

func run(b *Battle, limit int) int {
	for i := 0; i < limit; i++ {
		if b.Phase().IsTerminal() {
			return i
		}
		b.Update(context.Background(), 16*time.Millisecond)
	}
	return limit
}

// runUntil updates until cond holds or limit updates pass.
func runUntil(b *Battle, limit int, cond func() bool) bool {
	for i := 0; i < limit; i++ {
		if cond() {
			return true
		}
		b.Update(context.Background(), 16*time.Millisecond)
	}
	return cond()
}

func key(k tcell.Key) *tcell.EventKey { return tcell.NewEventKey(k, 0, tcell.ModNone) }

func runeKey(r rune) *tcell.EventKey { return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone) }

// ===== State machine =====

func TestPhaseTerminal(t *testing.T) {
	for _, p := range []Phase{PhaseGeneralUpkeep, PhasePersonalUpkeep, PhaseOrderActions, PhasePerformAction, PhaseActionOutcome} {
		assert.False(t, p.IsTerminal(), p.String())
	}
	for _, p := range []Phase{PhaseBattleWon, PhaseBattleLost, PhaseFled, PhaseStopped} {
		assert.True(t, p.IsTerminal(), p.String())
	}
}

func TestAIOnlyBattleIsWon(t *testing.T) {
	roster := combat.NewRoster()
	hero := roster.Add(testFoe(t, "Hero", 30, 20), combat.SideParty)
	weak := roster.Add(testFoe(t, "Weakling", 10, 1), combat.SideFoes)

	b := newTestBattle(t, roster, Options{})
	n := run(b, 200)

	require.Less(t, n, 200, "battle never finished")
	assert.Equal(t, PhaseBattleWon, b.Phase())
	w, _ := roster.Get(weak)
	assert.False(t, w.IsAlive())
	h, _ := roster.Get(hero)
	assert.Equal(t, 30, h.GetStat(effect.AttrVITA), "the faster hero acts first")
	assert.Equal(t, 1, b.Turn())
}

func TestAIOnlyBattleAlwaysEnds(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		roster := combat.NewRoster()
		roster.Add(testFoe(t, "A", 60, 10), combat.SideParty)
		roster.Add(testFoe(t, "B", 60, 9), combat.SideParty)
		roster.Add(testFoe(t, "C", 70, 11), combat.SideFoes)
		roster.Add(testFoe(t, "D", 40, 12), combat.SideFoes)

		b := newTestBattle(t, roster, Options{Rng: rand.New(rand.NewSource(seed))})
		n := run(b, 5000)
		require.Less(t, n, 5000, "seed %d stalled in %s", seed, b.Phase())
		assert.Contains(t, []Phase{PhaseBattleWon, PhaseBattleLost}, b.Phase())
	}
}

func TestBattleLostWhenPartyFalls(t *testing.T) {
	roster := combat.NewRoster()
	roster.Add(testFoe(t, "Frail", 10, 1), combat.SideParty)
	roster.Add(testFoe(t, "Brute", 100, 20), combat.SideFoes)

	b := newTestBattle(t, roster, Options{})
	run(b, 200)
	assert.Equal(t, PhaseBattleLost, b.Phase())
}

func TestExecutionOrderBySpeed(t *testing.T) {
	roster := combat.NewRoster()
	roster.Add(testFoe(t, "A", 50, 10), combat.SideParty)
	roster.Add(testFoe(t, "B", 50, 20), combat.SideParty)
	roster.Add(testFoe(t, "C", 50, 15), combat.SideParty)
	roster.Add(testFoe(t, "Wall", 1000, 1), combat.SideFoes)

	rec := &recorder{}
	b := newTestBattle(t, roster, Options{Presenter: rec})
	require.True(t, runUntil(b, 200, func() bool { return b.Turn() == 2 }))

	var order []string
	for _, ev := range rec.kinds(EventActionStarted) {
		if ev.Turn == 1 {
			order = append(order, roster.Name(ev.Actor))
		}
	}
	assert.Equal(t, []string{"B", "C", "A", "Wall"}, order)
}

// choose moves the menu cursor to label and selects it.
func choose(t *testing.T, b *Battle, label string) {
	t.Helper()
	for i := 0; i < len(b.Menu().Options()); i++ {
		if b.Menu().Options()[b.Menu().Cursor()].Label == label {
			b.HandleKeyEvent(key(tcell.KeyEnter))
			return
		}
		b.HandleKeyEvent(key(tcell.KeyDown))
	}
	t.Fatalf("menu has no %q option", label)
}

func TestEqualMomentumOrderIgnoresAnswerTiming(t *testing.T) {
	turnOneOrder := func(answerAfterAI bool) []combat.ActorID {
		roster := combat.NewRoster()
		roster.Add(testMember("P", 100, 10), combat.SideParty)
		roster.Add(testFoe(t, "F", 1000, 10), combat.SideFoes)

		rec := &recorder{}
		b := newTestBattle(t, roster, Options{Presenter: rec})
		require.True(t, runUntil(b, 10, b.Menu().Active))
		if answerAfterAI {
			require.True(t, runUntil(b, 100, b.AI().Done))
		} else {
			require.False(t, b.AI().Done())
		}
		choose(t, b, "Defend")
		require.True(t, runUntil(b, 200, func() bool { return b.Turn() == 2 }))

		var order []combat.ActorID
		for _, ev := range rec.kinds(EventActionStarted) {
			if ev.Turn == 1 {
				order = append(order, ev.Actor)
			}
		}
		return order
	}

	early := turnOneOrder(false)
	late := turnOneOrder(true)
	require.Len(t, early, 2)
	assert.Equal(t, early, late)
	assert.Equal(t, []combat.ActorID{1, 2}, early, "ties follow roster slots")
}

func TestAIStepsAreIncremental(t *testing.T) {
	roster := combat.NewRoster()
	a := roster.Add(testFoe(t, "A", 50, 10), combat.SideParty)
	roster.Add(testFoe(t, "Wall", 1000, 1), combat.SideFoes)

	b := newTestBattle(t, roster, Options{})
	b.Update(context.Background(), 0) // general upkeep
	require.Equal(t, PhasePersonalUpkeep, b.Phase())

	b.Update(context.Background(), 0) // picks A
	assert.Equal(t, a, b.AI().Current())
	assert.False(t, b.Buffer().HasSubmitted(a, 1))

	b.Update(context.Background(), 0) // builds candidates
	assert.False(t, b.Buffer().HasSubmitted(a, 1))
	assert.Equal(t, PhasePersonalUpkeep, b.Phase())
}

func TestAIStepBudgetForcesPass(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	roster := combat.NewRoster()
	a := roster.Add(testFoe(t, "A", 50, 10), combat.SideParty)
	roster.Add(testFoe(t, "Wall", 1000, 1), combat.SideFoes)

	b := newTestBattle(t, roster, Options{AIStepBudget: 1, Logger: zap.New(core)})
	require.True(t, runUntil(b, 50, func() bool { return b.Phase() == PhaseOrderActions }))

	entries := b.Buffer().Entries()
	var kind turn.ActionKind
	for _, e := range entries {
		if e.Source == a {
			kind = e.Kind()
		}
	}
	assert.Equal(t, turn.ActionPass, kind)
	assert.Equal(t, 2, logs.FilterMessage("ai step budget exhausted, passing").Len())
}

func TestAIStepBudgetKeepsBestScored(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	roster := combat.NewRoster()
	a := roster.Add(testFoe(t, "A", 50, 10), combat.SideParty)
	wall := roster.Add(testFoe(t, "Wall", 1000, 1), combat.SideFoes)

	// Build plus one scored candidate (strike on Wall), then the cap hits
	// before Defend is scored.
	b := newTestBattle(t, roster, Options{AIStepBudget: 2, Logger: zap.New(core)})
	require.True(t, runUntil(b, 50, func() bool { return b.Phase() == PhaseOrderActions }))

	var entry turn.QueuedAction
	for _, e := range b.Buffer().Entries() {
		if e.Source == a {
			entry = e
		}
	}
	require.Equal(t, turn.ActionSkill, entry.Kind())
	use, ok := entry.Payload.(turn.SkillUse)
	require.True(t, ok)
	assert.Equal(t, "strike", use.Skill.ID)
	assert.Equal(t, []combat.ActorID{wall}, use.Targets)
	assert.Equal(t, 2, logs.FilterMessage("ai step budget exhausted, using best so far").Len())
	assert.Zero(t, logs.FilterMessage("ai step budget exhausted, passing").Len())
}

func TestBerserkActorUsesBasicAttackOnWeakest(t *testing.T) {
	roster := combat.NewRoster()
	m := testMember("Mad", 50, 10)
	m.Inflict(combat.AilmentState{Ailment: effect.AilmentBerserk, RemainingTurns: 5})
	id := roster.Add(m, combat.SideParty)
	roster.Add(testFoe(t, "Big", 200, 1), combat.SideFoes)
	small := roster.Add(testFoe(t, "Small", 100, 1), combat.SideFoes)

	b := newTestBattle(t, roster, Options{})
	require.True(t, runUntil(b, 50, func() bool { return b.Phase() == PhaseOrderActions }))
	assert.False(t, b.Menu().Active(), "berserk members bypass the menu")

	for _, e := range b.Buffer().Entries() {
		if e.Source == id {
			p, ok := e.Payload.(turn.SkillUse)
			require.True(t, ok)
			assert.Equal(t, "strike", p.Skill.ID)
			assert.Equal(t, []combat.ActorID{small}, p.Targets)
		}
	}
}

func TestParalysedActorSkipsSelection(t *testing.T) {
	roster := combat.NewRoster()
	stuck := testFoe(t, "Stuck", 50, 10)
	stuck.Inflict(combat.AilmentState{Ailment: effect.AilmentParalysis, RemainingTurns: 3})
	id := roster.Add(stuck, combat.SideParty)
	roster.Add(testFoe(t, "Wall", 1000, 1), combat.SideFoes)

	b := newTestBattle(t, roster, Options{})
	require.True(t, runUntil(b, 50, func() bool { return b.Phase() == PhaseOrderActions }))
	assert.False(t, b.Buffer().HasSubmitted(id, 1))
}

func TestAilmentTickPresentsAndDamages(t *testing.T) {
	roster := combat.NewRoster()
	sick := testFoe(t, "Sick", 50, 10)
	sick.Inflict(combat.AilmentState{Ailment: effect.AilmentPoison, RemainingTurns: 2, Power: 5})
	id := roster.Add(sick, combat.SideParty)
	roster.Add(testFoe(t, "Wall", 1000, 1), combat.SideFoes)

	rec := &recorder{}
	b := newTestBattle(t, roster, Options{Presenter: rec})
	b.Update(context.Background(), 0)

	ticks := rec.kinds(EventAilmentTick)
	require.Len(t, ticks, 1)
	assert.Equal(t, id, ticks[0].Actor)
	assert.Equal(t, effect.AilmentPoison, ticks[0].Ailment)
	assert.Equal(t, 45, sick.GetStat(effect.AttrVITA))
}

// ===== Menu and input =====

func TestMenuSubmitsSkillAgainstChosenTarget(t *testing.T) {
	roster := combat.NewRoster()
	hero := roster.Add(testMember("Hero", 50, 10), combat.SideParty)
	roster.Add(testFoe(t, "Left", 1000, 1), combat.SideFoes)
	right := roster.Add(testFoe(t, "Right", 1000, 1), combat.SideFoes)

	b := newTestBattle(t, roster, Options{})
	require.True(t, runUntil(b, 10, func() bool { return b.Menu().Active() }))
	menu := b.Menu()
	assert.Equal(t, hero, menu.Actor())
	assert.Equal(t, ScreenRoot, menu.Screen())
	assert.Equal(t, "Skill", menu.Options()[menu.Cursor()].Label)

	assert.False(t, b.HandleKeyEvent(key(tcell.KeyEnter)))
	assert.Equal(t, ScreenSkills, menu.Screen())
	assert.Equal(t, "strike", menu.Options()[menu.Cursor()].Label)

	assert.False(t, b.HandleKeyEvent(key(tcell.KeyEnter)))
	require.Equal(t, ScreenTargets, menu.Screen())
	require.Len(t, menu.Options(), 2)
	assert.Contains(t, menu.Title(), "one foe")

	assert.False(t, b.HandleKeyEvent(key(tcell.KeyDown)))
	assert.False(t, b.HandleKeyEvent(key(tcell.KeyEnter)))
	assert.False(t, menu.Active())
	require.True(t, b.Buffer().HasSubmitted(hero, 1))

	require.True(t, runUntil(b, 100, func() bool { return b.Turn() == 2 }))
	r, _ := roster.Get(right)
	assert.Equal(t, 990, r.GetStat(effect.AttrVITA))
}

func TestMenuNavigationWrapsAndGoesBack(t *testing.T) {
	roster := combat.NewRoster()
	roster.Add(testMember("Hero", 50, 10), combat.SideParty)
	roster.Add(testFoe(t, "Foe", 1000, 1), combat.SideFoes)

	b := newTestBattle(t, roster, Options{})
	require.True(t, runUntil(b, 10, func() bool { return b.Menu().Active() }))
	menu := b.Menu()

	b.HandleKeyEvent(key(tcell.KeyUp))
	assert.Equal(t, "Pass", menu.Options()[menu.Cursor()].Label)
	b.HandleKeyEvent(key(tcell.KeyDown))
	assert.Equal(t, "Skill", menu.Options()[menu.Cursor()].Label)

	b.HandleKeyEvent(key(tcell.KeyEnter))
	require.Equal(t, ScreenSkills, menu.Screen())
	b.HandleKeyEvent(key(tcell.KeyEscape))
	assert.Equal(t, ScreenRoot, menu.Screen())
	b.HandleKeyEvent(key(tcell.KeyEscape))
	assert.Equal(t, ScreenRoot, menu.Screen(), "escape on the root screen stays put")
}

func TestMenuDisablesGuardWithoutAllies(t *testing.T) {
	roster := combat.NewRoster()
	roster.Add(testMember("Solo", 50, 10), combat.SideParty)
	roster.Add(testFoe(t, "Foe", 1000, 1), combat.SideFoes)

	b := newTestBattle(t, roster, Options{})
	require.True(t, runUntil(b, 10, func() bool { return b.Menu().Active() }))

	for _, opt := range b.Menu().Options() {
		if opt.Label == "Guard" {
			assert.True(t, opt.Disabled)
		}
	}

	// Selecting a disabled option does nothing.
	for b.Menu().Options()[b.Menu().Cursor()].Label != "Guard" {
		b.HandleKeyEvent(key(tcell.KeyDown))
	}
	b.HandleKeyEvent(key(tcell.KeyEnter))
	assert.Equal(t, ScreenRoot, b.Menu().Screen())
	assert.True(t, b.Menu().Active())
}

func TestMenuItemUseConsumesInventory(t *testing.T) {
	roster := combat.NewRoster()
	hero := testMember("Hero", 50, 10)
	hero.SetStat(effect.AttrVITA, 10)
	roster.Add(hero, combat.SideParty)
	roster.Add(testFoe(t, "Foe", 1000, 1), combat.SideFoes)

	b := newTestBattle(t, roster, Options{})
	require.True(t, runUntil(b, 10, func() bool { return b.Menu().Active() }))

	b.HandleKeyEvent(key(tcell.KeyDown)) // Item
	b.HandleKeyEvent(key(tcell.KeyEnter))
	require.Equal(t, ScreenItems, b.Menu().Screen())
	b.HandleKeyEvent(key(tcell.KeyEnter))
	require.Equal(t, ScreenTargets, b.Menu().Screen())
	b.HandleKeyEvent(key(tcell.KeyEnter))

	assert.Equal(t, 2, b.Inventory().Count("potion"), "consumed on execution, not on selection")
	require.True(t, runUntil(b, 100, func() bool { return b.Turn() == 2 }))
	assert.Equal(t, 1, b.Inventory().Count("potion"))
	assert.Greater(t, hero.GetStat(effect.AttrVITA), 10)
}

func TestMenuReservesQueuedItems(t *testing.T) {
	roster := combat.NewRoster()
	first := roster.Add(testMember("First", 50, 10), combat.SideParty)
	second := roster.Add(testMember("Second", 50, 10), combat.SideParty)
	third := roster.Add(testMember("Third", 50, 10), combat.SideParty)
	roster.Add(testFoe(t, "Foe", 1000, 1), combat.SideFoes)

	b := newTestBattle(t, roster, Options{})
	usePotion := func(id combat.ActorID, wantLabel string) {
		t.Helper()
		require.True(t, runUntil(b, 10, func() bool { return b.Menu().Active() && b.Menu().Actor() == id }))
		choose(t, b, "Item")
		require.Equal(t, ScreenItems, b.Menu().Screen())
		assert.Equal(t, wantLabel, b.Menu().Options()[0].Label)
		b.HandleKeyEvent(key(tcell.KeyEnter))
		b.HandleKeyEvent(key(tcell.KeyEnter))
	}
	usePotion(first, "Potion x2")
	usePotion(second, "Potion x1")

	require.True(t, runUntil(b, 10, func() bool { return b.Menu().Active() && b.Menu().Actor() == third }))
	root := b.Menu().Options()
	require.Equal(t, "Item", root[1].Label)
	assert.True(t, root[1].Disabled, "both potions are spoken for")
	assert.Equal(t, 2, b.Inventory().Count("potion"))

	choose(t, b, "Defend")
	require.True(t, runUntil(b, 100, func() bool { return b.Turn() == 2 }))
	assert.Equal(t, 0, b.Inventory().Count("potion"))
}

func TestItemSubmitWithoutStockPasses(t *testing.T) {
	roster := combat.NewRoster()
	hero := roster.Add(testMember("Hero", 50, 10), combat.SideParty)
	roster.Add(testFoe(t, "Foe", 1000, 1), combat.SideFoes)

	b := newTestBattle(t, roster, Options{})
	potion := b.Inventory().Get("potion")
	require.True(t, b.Inventory().Consume("potion"))
	require.True(t, b.Inventory().Consume("potion"))

	b.submit(hero, Decision{Kind: turn.ActionItem, Item: potion, Targets: []combat.ActorID{hero}})
	entries := b.Buffer().Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, turn.ActionPass, entries[0].Kind())
}

func TestQuitKeyStopsBattle(t *testing.T) {
	roster := combat.NewRoster()
	roster.Add(testMember("Hero", 50, 10), combat.SideParty)
	roster.Add(testFoe(t, "Foe", 1000, 1), combat.SideFoes)

	b := newTestBattle(t, roster, Options{})
	require.True(t, runUntil(b, 10, func() bool { return b.Menu().Active() }))

	assert.True(t, b.HandleKeyEvent(runeKey('q')))
	assert.Equal(t, PhaseStopped, b.Phase())
	assert.False(t, b.Menu().Active())
	assert.Equal(t, 0, b.Buffer().Len())
	assert.True(t, b.AI().Done())

	// Terminal battles ignore further updates and report the end.
	b.Update(context.Background(), time.Second)
	assert.Equal(t, PhaseStopped, b.Phase())
	assert.True(t, b.HandleKeyEvent(key(tcell.KeyEnter)))
}

func TestKeysOutsideSelectionAreIgnored(t *testing.T) {
	roster := combat.NewRoster()
	roster.Add(testMember("Hero", 50, 10), combat.SideParty)
	roster.Add(testFoe(t, "Foe", 1000, 1), combat.SideFoes)

	b := newTestBattle(t, roster, Options{})
	assert.False(t, b.HandleKeyEvent(key(tcell.KeyEnter)))
	assert.False(t, b.HandleKeyEvent(nil))
	assert.Equal(t, PhaseGeneralUpkeep, b.Phase())
}

func TestStopMidTurnTearsDown(t *testing.T) {
	roster := combat.NewRoster()
	roster.Add(testFoe(t, "A", 50, 10), combat.SideParty)
	roster.Add(testFoe(t, "B", 50, 9), combat.SideParty)
	roster.Add(testFoe(t, "Wall", 1000, 1), combat.SideFoes)

	b := newTestBattle(t, roster, Options{})
	require.True(t, runUntil(b, 50, func() bool { return b.Phase() == PhasePerformAction }))
	require.Greater(t, b.Buffer().Len(), 0)

	b.Stop()
	assert.Equal(t, PhaseStopped, b.Phase())
	assert.Equal(t, 0, b.Buffer().Len())
	assert.Equal(t, combat.NoActor, b.AI().Current())

	b.Stop()
	assert.Equal(t, PhaseStopped, b.Phase())
}

// ===== Flee =====

func TestFleeSucceeds(t *testing.T) {
	roster := combat.NewRoster()
	hero := roster.Add(testMember("Hero", 50, 10), combat.SideParty)
	roster.Add(testFoe(t, "Foe", 1000, 1), combat.SideFoes)

	b := newTestBattle(t, roster, Options{FleeChance: 100})
	require.True(t, runUntil(b, 10, func() bool { return b.Menu().Active() }))
	b.Buffer().AddDefend(hero)

	for b.Menu().Options()[b.Menu().Cursor()].Label != "Flee" {
		b.HandleKeyEvent(key(tcell.KeyDown))
	}
	assert.True(t, b.HandleKeyEvent(key(tcell.KeyEnter)))
	assert.Equal(t, PhaseFled, b.Phase())
	assert.False(t, b.Buffer().HasSubmitted(hero, 1), "party actions are withdrawn")
}

func TestFleeFailsIntoPass(t *testing.T) {
	roster := combat.NewRoster()
	hero := roster.Add(testMember("Hero", 50, 10), combat.SideParty)
	roster.Add(testFoe(t, "Foe", 1000, 1), combat.SideFoes)

	rec := &recorder{}
	b := newTestBattle(t, roster, Options{FleeChance: 0, Presenter: rec})
	require.True(t, runUntil(b, 10, func() bool { return b.Menu().Active() }))

	for b.Menu().Options()[b.Menu().Cursor()].Label != "Flee" {
		b.HandleKeyEvent(key(tcell.KeyDown))
	}
	assert.False(t, b.HandleKeyEvent(key(tcell.KeyEnter)))
	assert.Equal(t, PhasePersonalUpkeep, b.Phase())
	assert.Len(t, rec.kinds(EventFleeFailed), 1)

	entries := b.Buffer().Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, hero, entries[0].Source)
	assert.Equal(t, turn.ActionPass, entries[0].Kind())
}

// ===== Removal =====

func TestRemoveActorMidTraversal(t *testing.T) {
	roster := combat.NewRoster()
	roster.Add(testFoe(t, "A", 50, 30), combat.SideParty)
	b2 := roster.Add(testFoe(t, "B", 50, 20), combat.SideParty)
	roster.Add(testFoe(t, "C", 50, 10), combat.SideParty)
	roster.Add(testFoe(t, "Wall", 1000, 1), combat.SideFoes)

	rec := &recorder{}
	b := newTestBattle(t, roster, Options{Presenter: rec})
	require.True(t, runUntil(b, 100, func() bool {
		return b.Phase() == PhaseActionOutcome && b.Buffer().Cursor() == 0
	}))

	// A has acted; B is next. Removing B must leave the cursor on A.
	b.RemoveActor(b2)
	require.Equal(t, 3, b.Buffer().Len())
	cur, ok := b.Buffer().Current()
	require.True(t, ok)
	assert.Equal(t, "A", roster.Name(cur.Source))

	require.True(t, runUntil(b, 100, func() bool { return b.Turn() == 2 }))
	var order []string
	for _, ev := range rec.kinds(EventActionStarted) {
		if ev.Turn == 1 {
			order = append(order, roster.Name(ev.Actor))
		}
	}
	assert.Equal(t, []string{"A", "C", "Wall"}, order)
	assert.Len(t, rec.kinds(EventActorRemoved), 1)
}

func TestRemoveActorBeingServedClosesMenu(t *testing.T) {
	roster := combat.NewRoster()
	hero := roster.Add(testMember("Hero", 50, 10), combat.SideParty)
	roster.Add(testMember("Sidekick", 50, 9), combat.SideParty)
	roster.Add(testFoe(t, "Foe", 1000, 1), combat.SideFoes)

	b := newTestBattle(t, roster, Options{})
	require.True(t, runUntil(b, 10, func() bool { return b.Menu().Active() }))
	require.Equal(t, hero, b.Menu().Actor())

	b.RemoveActor(hero)
	b.Update(context.Background(), 0)
	assert.True(t, b.Menu().Active())
	assert.Equal(t, "Sidekick", roster.Name(b.Menu().Actor()))
}

// ===== Execution details =====

func TestDefendAndGuard(t *testing.T) {
	roster := combat.NewRoster()
	ward := roster.Add(testMember("Ward", 50, 5), combat.SideParty)
	guard := roster.Add(testMember("Guard", 50, 30), combat.SideParty)
	roster.Add(testFoe(t, "Foe", 1000, 1), combat.SideFoes)

	b := newTestBattle(t, roster, Options{})
	require.True(t, runUntil(b, 10, func() bool { return b.Menu().Active() }))

	// Drive the buffer directly; the menu would produce the same entries.
	b.Menu().Close()
	b.players = nil
	require.True(t, b.Buffer().AddDefend(ward))
	require.True(t, b.Buffer().AddGuard(guard, ward))
	require.True(t, runUntil(b, 50, func() bool { return b.Phase() == PhaseOrderActions }))

	require.True(t, runUntil(b, 50, func() bool { return b.Turn() == 2 }))
	w, _ := roster.Get(ward)
	g, _ := roster.Get(guard)
	assert.Equal(t, 50, w.GetStat(effect.AttrVITA), "the guard took the hit")
	assert.Equal(t, 40, g.GetStat(effect.AttrVITA))

	by, ok := b.GuardOf(ward)
	require.True(t, ok)
	assert.Equal(t, guard, by)
	_, ok = b.GuardOf(guard)
	assert.False(t, ok, "the guard itself is unguarded")

	b.Update(context.Background(), 0)
	_, ok = b.GuardOf(ward)
	assert.False(t, ok, "guards last one turn")
}

func TestDefendHalvesDamage(t *testing.T) {
	roster := combat.NewRoster()
	hero := roster.Add(testMember("Hero", 50, 30), combat.SideParty)
	roster.Add(testFoe(t, "Foe", 1000, 1), combat.SideFoes)

	b := newTestBattle(t, roster, Options{})
	require.True(t, runUntil(b, 10, func() bool { return b.Menu().Active() }))
	for b.Menu().Options()[b.Menu().Cursor()].Label != "Defend" {
		b.HandleKeyEvent(key(tcell.KeyDown))
	}
	b.HandleKeyEvent(key(tcell.KeyEnter))

	require.True(t, runUntil(b, 50, func() bool { return b.Turn() == 2 }))
	h, _ := roster.Get(hero)
	assert.Equal(t, 45, h.GetStat(effect.AttrVITA))
	assert.True(t, b.IsDefending(hero))
	b.Update(context.Background(), 0)
	assert.False(t, b.IsDefending(hero), "stances last one turn")
}

func TestImplode(t *testing.T) {
	roster := combat.NewRoster()
	hero := roster.Add(testMember("Hero", 40, 30), combat.SideParty)
	roster.Add(testMember("Friend", 50, 1), combat.SideParty)
	foe := roster.Add(testFoe(t, "Foe", 100, 1), combat.SideFoes)

	b := newTestBattle(t, roster, Options{ImplodeFactor: 2})
	require.True(t, runUntil(b, 10, func() bool { return b.Menu().Active() }))
	for b.Menu().Options()[b.Menu().Cursor()].Label != "Implode" {
		b.HandleKeyEvent(key(tcell.KeyDown))
	}
	b.HandleKeyEvent(key(tcell.KeyEnter))
	require.True(t, runUntil(b, 10, func() bool { return b.Menu().Active() }))
	for b.Menu().Options()[b.Menu().Cursor()].Label != "Pass" {
		b.HandleKeyEvent(key(tcell.KeyDown))
	}
	b.HandleKeyEvent(key(tcell.KeyEnter))

	require.True(t, runUntil(b, 50, func() bool { return b.Turn() == 2 || b.Phase().IsTerminal() }))
	h, _ := roster.Get(hero)
	f, _ := roster.Get(foe)
	assert.False(t, h.IsAlive())
	assert.Equal(t, 20, f.GetStat(effect.AttrVITA))
}

func TestSkillCostAndCooldown(t *testing.T) {
	roster := combat.NewRoster()
	hero := testMember("Hero", 50, 30)
	id := roster.Add(hero, combat.SideParty)
	roster.Add(testFoe(t, "Foe", 1000, 1), combat.SideFoes)

	b := newTestBattle(t, roster, Options{})
	require.True(t, runUntil(b, 10, func() bool { return b.Menu().Active() }))

	blast := b.skills.GetByID("blast")
	b.Menu().Close()
	b.players = nil
	require.True(t, b.Buffer().AddSkill(id, blast, nil, blast.Cooldown, b.Turn()))
	require.True(t, runUntil(b, 50, func() bool { return b.Turn() == 2 }))

	assert.Equal(t, 5, hero.GetStat(effect.AttrQTDR), "10 QTDR minus cost 5")
	assert.True(t, b.Buffer().IsCooling(id, "blast"))
	assert.False(t, b.canUseSkill(id, blast))
}

func TestSilencedSkillFails(t *testing.T) {
	roster := combat.NewRoster()
	hero := testMember("Hero", 50, 30)
	id := roster.Add(hero, combat.SideParty)
	foe := roster.Add(testFoe(t, "Foe", 1000, 1), combat.SideFoes)

	rec := &recorder{}
	b := newTestBattle(t, roster, Options{Presenter: rec})
	require.True(t, runUntil(b, 10, func() bool { return b.Menu().Active() }))
	b.Menu().Close()
	b.players = nil
	require.True(t, b.Buffer().AddSkill(id, b.skills.GetByID("strike"), []combat.ActorID{foe}, 0, 1))
	hero.Inflict(combat.AilmentState{Ailment: effect.AilmentSilence, RemainingTurns: 2})

	require.True(t, runUntil(b, 50, func() bool { return b.Turn() == 2 }))
	f, _ := roster.Get(foe)
	assert.Equal(t, 1000, f.GetStat(effect.AttrVITA))
	assert.NotEmpty(t, rec.kinds(EventActionFailed))
}

func TestActionDelayHoldsOutcome(t *testing.T) {
	roster := combat.NewRoster()
	roster.Add(testFoe(t, "A", 50, 10), combat.SideParty)
	roster.Add(testFoe(t, "Wall", 1000, 1), combat.SideFoes)

	b := newTestBattle(t, roster, Options{ActionDelay: 100 * time.Millisecond})
	require.True(t, runUntil(b, 50, func() bool { return b.Phase() == PhasePerformAction }))
	b.Update(context.Background(), 0)
	require.Equal(t, PhaseActionOutcome, b.Phase())
	cursor := b.Buffer().Cursor()

	b.Update(context.Background(), 50*time.Millisecond)
	assert.Equal(t, PhaseActionOutcome, b.Phase())
	assert.Equal(t, cursor, b.Buffer().Cursor())

	b.Update(context.Background(), 60*time.Millisecond)
	assert.Equal(t, PhasePerformAction, b.Phase())
}

// ===== Presentation =====

func TestPanickingPresenterIsRecovered(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	roster := combat.NewRoster()
	roster.Add(testFoe(t, "Hero", 30, 20), combat.SideParty)
	roster.Add(testFoe(t, "Weakling", 10, 1), combat.SideFoes)

	b := newTestBattle(t, roster, Options{
		Logger:    zap.New(core),
		Presenter: PresenterFunc(func(Event) { panic("boom") }),
	})
	assert.NotPanics(t, func() { run(b, 200) })
	assert.Equal(t, PhaseBattleWon, b.Phase())
	assert.Greater(t, logs.FilterMessage("presenter panicked").Len(), 0)
}

func TestPlainDisplayDefaults(t *testing.T) {
	var d DisplayProvider = plainDisplay{}
	r, _ := d.AilmentGlyph(effect.AilmentPoison)
	assert.Equal(t, 'P', r)
	assert.Equal(t, "all foes", d.ScopeLabel(gamedata.TargetAllEnemies))
	assert.Equal(t, tcell.StyleDefault, d.ElementStyle(effect.ElementThermal))
}

func TestBattleIDsAreUnique(t *testing.T) {
	a := New(Setup{}, Options{Tracer: telemetry.NoopTracer()})
	b := New(Setup{}, Options{Tracer: telemetry.NoopTracer()})
	assert.NotEmpty(t, a.ID())
	assert.NotEqual(t, a.ID(), b.ID())
}
