package game

import (
	"context"
	"math/rand"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/bandbattle/internal/battle"
	"github.com/samdwyer/bandbattle/internal/combat"
	"github.com/samdwyer/bandbattle/internal/config"
	"github.com/samdwyer/bandbattle/internal/effect"
	"github.com/samdwyer/bandbattle/internal/gamedata"
	"github.com/samdwyer/bandbattle/internal/ui"
)

func TestStateString(t *testing.T) {
	tests := []struct {
		state    State
		expected string
	}{
		{StateBattle, "battle"},
		{StateAftermath, "aftermath"},
		{State(99), "unknown"},
	}

	for _, tt := range tests {
		got := tt.state.String()
		if got != tt.expected {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.expected)
		}
	}
}

func loadCatalog(t *testing.T) *gamedata.Catalog {
	t.Helper()
	catalog, err := gamedata.LoadCatalog(effect.DefaultParseOptions(), nil)
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}
	return catalog
}

func TestNewEncounter(t *testing.T) {
	catalog := loadCatalog(t)
	settings := config.Encounter{MinFoes: 2, MaxFoes: 4, Potions: 3, Ethers: 1, PhoenixDowns: 1}

	enc, err := NewEncounter(context.Background(), catalog, settings, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("NewEncounter() error = %v", err)
	}

	if got := len(enc.Party.Members); got != 4 {
		t.Errorf("party size = %d, want 4", got)
	}
	if got := len(enc.Roster.Side(combat.SideParty)); got != 4 {
		t.Errorf("roster party side = %d, want 4", got)
	}
	if n := len(enc.Foes); n < 2 || n > 4 {
		t.Errorf("foe count = %d, want between 2 and 4", n)
	}
	if got := len(enc.Roster.Side(combat.SideFoes)); got != len(enc.Foes) {
		t.Errorf("roster foe side = %d, want %d", got, len(enc.Foes))
	}

	if enc.Party.Members[0].Name != "Brakka" {
		t.Errorf("first member = %q, want Brakka", enc.Party.Members[0].Name)
	}
	for _, m := range enc.Party.Members {
		if len(m.SkillIDs) < 2 {
			t.Errorf("%s has %d skills, want class skills loaded", m.Name, len(m.SkillIDs))
		}
	}

	counts := map[string]int{"potion": 3, "ether": 1, "phoenix_down": 1}
	for id, want := range counts {
		if got := enc.Inventory.Count(id); got != want {
			t.Errorf("Inventory.Count(%q) = %d, want %d", id, got, want)
		}
	}
	if enc.Inventory != enc.Party.Inventory {
		t.Error("encounter inventory should be the party's inventory")
	}
}

func TestNewEncounterNamesDuplicateFoes(t *testing.T) {
	catalog := loadCatalog(t)
	settings := config.Encounter{MinFoes: 8, MaxFoes: 8}

	enc, err := NewEncounter(context.Background(), catalog, settings, rand.New(rand.NewSource(5)))
	if err != nil {
		t.Fatalf("NewEncounter() error = %v", err)
	}

	seen := make(map[string]bool)
	for _, foe := range enc.Foes {
		if seen[foe.Name] {
			t.Errorf("duplicate foe name %q", foe.Name)
		}
		seen[foe.Name] = true
	}
	if got := enc.Inventory.Count("potion"); got != 0 {
		t.Errorf("Inventory.Count(potion) = %d, want 0", got)
	}
}

func TestEncounterIsReproducible(t *testing.T) {
	catalog := loadCatalog(t)
	settings := config.Encounter{MinFoes: 2, MaxFoes: 4}

	a, err := NewEncounter(context.Background(), catalog, settings, rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatalf("NewEncounter() error = %v", err)
	}
	b, err := NewEncounter(context.Background(), catalog, settings, rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatalf("NewEncounter() error = %v", err)
	}

	if len(a.Foes) != len(b.Foes) {
		t.Fatalf("foe counts differ: %d vs %d", len(a.Foes), len(b.Foes))
	}
	for i := range a.Foes {
		if a.Foes[i].Name != b.Foes[i].Name {
			t.Errorf("foe %d = %q, want %q", i, b.Foes[i].Name, a.Foes[i].Name)
		}
	}
}

func newTestGame(t *testing.T) *Game {
	t.Helper()
	ss := tcell.NewSimulationScreen("UTF-8")
	ss.SetSize(100, 30)
	screen, err := ui.NewScreenFrom(ss)
	if err != nil {
		t.Fatalf("NewScreenFrom() error = %v", err)
	}

	g, err := newGame(screen, Config{Seed: 3})
	if err != nil {
		t.Fatalf("newGame() error = %v", err)
	}
	t.Cleanup(g.Close)

	if err := g.setup(context.Background()); err != nil {
		t.Fatalf("setup() error = %v", err)
	}
	return g
}

func TestNewGameRequiresScreen(t *testing.T) {
	if _, err := newGame(nil, Config{}); err != ErrNoScreen {
		t.Errorf("newGame(nil) error = %v, want ErrNoScreen", err)
	}
}

func TestGameSetup(t *testing.T) {
	g := newTestGame(t)

	if g.State() != StateBattle {
		t.Errorf("State() = %v, want battle", g.State())
	}
	if g.Battle() == nil {
		t.Fatal("Battle() = nil after setup")
	}
	if g.Battle().Inventory() != g.encounter.Inventory {
		t.Error("battle should draw on the encounter inventory")
	}
	if g.cfg.Tick != DefaultTick {
		t.Errorf("Tick = %v, want %v", g.cfg.Tick, DefaultTick)
	}
}

func TestGameQuitKey(t *testing.T) {
	g := newTestGame(t)
	g.tick(context.Background())

	g.handleEvent(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone))

	if g.running {
		t.Error("running should be false after q")
	}
	if got := g.Battle().Phase(); got != battle.PhaseStopped {
		t.Errorf("Phase() = %v, want stopped", got)
	}
}

func TestGameAftermathWaitsForKey(t *testing.T) {
	g := newTestGame(t)
	for _, id := range g.encounter.Roster.Side(combat.SideFoes) {
		g.Battle().RemoveActor(id)
	}

	g.tick(context.Background())

	if got := g.Battle().Phase(); got != battle.PhaseBattleWon {
		t.Fatalf("Phase() = %v, want victory", got)
	}
	if g.State() != StateAftermath {
		t.Fatalf("State() = %v, want aftermath", g.State())
	}
	if !g.running {
		t.Fatal("the outcome should stay on screen until a key is pressed")
	}

	// Further ticks leave the finished battle alone.
	g.tick(context.Background())

	g.handleEvent(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone))
	if g.running {
		t.Error("any key should leave the aftermath")
	}
}

func TestGameResizeSyncs(t *testing.T) {
	g := newTestGame(t)
	g.handleEvent(tcell.NewEventResize(120, 40))
	if !g.running {
		t.Error("a resize should not end the game")
	}
}
