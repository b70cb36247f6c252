package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/samdwyer/bandbattle/internal/battle"
	"github.com/samdwyer/bandbattle/internal/gamedata"
	"github.com/samdwyer/bandbattle/internal/telemetry"
	"github.com/samdwyer/bandbattle/internal/ui"
)

// Game holds the entire game state.
type Game struct {
	screen    *ui.Screen
	renderer  *ui.Renderer
	theme     *ui.Theme
	encounter *Encounter
	battle    *battle.Battle
	state     State
	running   bool

	cfg    Config
	logger *zap.Logger
}

// New creates a new game instance on the terminal.
func New(cfg Config) (*Game, error) {
	screen, err := ui.NewScreen()
	if err != nil {
		return nil, err
	}
	g, err := newGame(screen, cfg)
	if err != nil {
		screen.Close()
		return nil, err
	}
	return g, nil
}

func newGame(screen *ui.Screen, cfg Config) (*Game, error) {
	if screen == nil {
		return nil, ErrNoScreen
	}
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}
	theme := ui.DefaultTheme()
	return &Game{
		screen:   screen,
		renderer: ui.NewRenderer(screen, theme),
		theme:    theme,
		state:    StateBattle,
		running:  true,
		cfg:      cfg,
		logger:   cfg.Logger,
	}, nil
}

// State returns the current top-level state.
func (g *Game) State() State { return g.state }

// Battle returns the battle in progress, or nil before Run.
func (g *Game) Battle() *battle.Battle { return g.battle }

// Run executes the main game loop until the player quits or dismisses the
// battle outcome.
func (g *Game) Run(ctx context.Context) error {
	defer g.Close()

	if err := g.setup(ctx); err != nil {
		return err
	}

	// PollEvent blocks, so input is read on its own goroutine. It returns nil
	// once the screen is finalized, which ends the reader.
	events := make(chan tcell.Event, 32)
	done := make(chan struct{})
	defer close(done)
	screen := g.screen
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	ticker := time.NewTicker(g.cfg.Tick)
	defer ticker.Stop()

	g.renderer.Render(g.battle)
	for g.running {
		select {
		case <-ctx.Done():
			g.battle.Stop()
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			g.handleEvent(ev)
		case <-ticker.C:
			g.tick(ctx)
		}
		if g.running {
			g.renderer.Render(g.battle)
		}
	}

	g.logger.Info("game over",
		zap.String("outcome", g.battle.Phase().String()),
		zap.Int("turns", g.battle.Turn()),
	)
	return nil
}

// setup loads the catalog, generates the encounter and creates the battle.
func (g *Game) setup(ctx context.Context) error {
	tracer := telemetry.Tracer("game")
	ctx, span := tracer.Start(ctx, "game.init")
	defer span.End()

	bal := g.cfg.Balance
	catalog, err := gamedata.LoadCatalog(bal.ParseOptions(g.logger), g.logger)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("load game data: %w", err)
	}

	rng := rand.New(rand.NewSource(g.cfg.Seed))
	enc, err := NewEncounter(ctx, catalog, bal.Encounter, rng)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("generate encounter: %w", err)
	}
	g.encounter = enc

	g.battle = battle.New(battle.Setup{
		Roster:    enc.Roster,
		Skills:    catalog.Skills,
		Inventory: enc.Inventory,
	}, battle.Options{
		Balance:       bal.CombatBalance(),
		ImplodeFactor: bal.ImplodeFactor,
		FleeChance:    bal.FleeChance,
		AIStepBudget:  bal.AIStepBudget,
		Policy:        bal.Policy(),
		Rng:           rng,
		Logger:        g.logger,
		Presenter:     g.renderer,
		Display:       g.theme,
		ActionDelay:   g.cfg.ActionDelay,
	})

	span.SetAttributes(
		attribute.Int64("seed", g.cfg.Seed),
		attribute.String("battle_id", g.battle.ID()),
		attribute.Int("party_size", len(enc.Party.Members)),
		attribute.Int("foe_count", len(enc.Foes)),
	)
	g.logger.Info("encounter ready",
		zap.String("battle_id", g.battle.ID()),
		zap.Int64("seed", g.cfg.Seed),
		zap.Int("foes", len(enc.Foes)),
	)
	return nil
}

// tick advances the battle by one frame.
func (g *Game) tick(ctx context.Context) {
	if g.state != StateBattle {
		return
	}
	g.battle.Update(ctx, g.cfg.Tick)
	g.checkEnded()
}

// handleEvent processes a single input event.
func (g *Game) handleEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		g.handleKeyEvent(ev)
	case *tcell.EventResize:
		g.screen.Sync()
	}
}

// handleKeyEvent processes keyboard input.
func (g *Game) handleKeyEvent(ev *tcell.EventKey) {
	switch g.state {
	case StateAftermath:
		// Any key dismisses the outcome.
		g.running = false
	case StateBattle:
		if g.battle.HandleKeyEvent(ev) {
			g.checkEnded()
		}
	}
}

// checkEnded moves to the aftermath once the battle is over. A stopped
// battle has no outcome to show, so the game exits directly.
func (g *Game) checkEnded() {
	phase := g.battle.Phase()
	switch {
	case phase == battle.PhaseStopped:
		g.running = false
	case phase.IsTerminal():
		g.state = StateAftermath
	}
}

// Close cleans up game resources.
func (g *Game) Close() {
	if g.screen != nil {
		g.screen.Close()
		g.screen = nil
	}
}

// ErrNoScreen is returned when a game is created without a screen.
var ErrNoScreen = errors.New("game: no screen")
