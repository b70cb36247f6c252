package game

import (
	"time"

	"go.uber.org/zap"

	"github.com/samdwyer/bandbattle/internal/config"
)

// DefaultTick is the interval between battle updates.
const DefaultTick = 50 * time.Millisecond

// DefaultActionDelay is how long each resolved action stays on screen
// before the battle moves on.
const DefaultActionDelay = 400 * time.Millisecond

// Config holds game configuration options.
type Config struct {
	// Balance tunes the battle. Nil means the embedded defaults.
	Balance *config.Balance

	// Seed for random number generation. Used for reproducible encounters.
	// A seed of 0 means a random seed will be generated. Overrides Balance.Seed
	// when nonzero.
	Seed int64

	Logger *zap.Logger

	Tick        time.Duration
	ActionDelay time.Duration
}

// withDefaults fills unset fields.
func (c Config) withDefaults() (Config, error) {
	if c.Balance == nil {
		b, err := config.Default()
		if err != nil {
			return c, err
		}
		c.Balance = b
	}
	if c.Seed == 0 {
		c.Seed = c.Balance.Seed
	}
	if c.Seed == 0 {
		c.Seed = time.Now().UnixNano()
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	if c.Tick <= 0 {
		c.Tick = DefaultTick
	}
	if c.ActionDelay < 0 {
		c.ActionDelay = 0
	}
	return c, nil
}
