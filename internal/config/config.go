// Package config loads the combat balance file and environment overrides.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/samdwyer/bandbattle/internal/combat"
	"github.com/samdwyer/bandbattle/internal/effect"
	"github.com/samdwyer/bandbattle/internal/turn"
)

//go:embed default.yaml
var defaultYAML []byte

// Environment variables read by ApplyEnv.
const (
	EnvSeed     = "BANDBATTLE_SEED"
	EnvLogLevel = "BANDBATTLE_LOG_LEVEL"
	EnvOrder    = "BANDBATTLE_ORDER"
)

// Duration is an inclusive turn range.
type Duration struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// Encounter sizes the generated battle.
type Encounter struct {
	MinFoes      int `yaml:"min_foes"`
	MaxFoes      int `yaml:"max_foes"`
	Potions      int `yaml:"potions"`
	Ethers       int `yaml:"ethers"`
	PhoenixDowns int `yaml:"phoenix_downs"`
}

// Balance holds every tunable of a battle.
type Balance struct {
	Seed        int64  `yaml:"seed"`
	LogLevel    string `yaml:"log_level"`
	OrderPolicy string `yaml:"order_policy"`

	InflictDuration Duration `yaml:"inflict_duration"`

	DefendFactor  float64 `yaml:"defend_factor"`
	ImplodeFactor float64 `yaml:"implode_factor"`
	MinDamage     int     `yaml:"min_damage"`
	TickDivisor   int     `yaml:"tick_divisor"`
	FleeChance    float64 `yaml:"flee_chance"`
	AIStepBudget  int     `yaml:"ai_step_budget"`

	Aggression map[string]float64 `yaml:"aggression"`
	Fortitude  map[string]float64 `yaml:"fortitude"`

	Encounter Encounter `yaml:"encounter"`
}

// Default returns the embedded balance.
func Default() (*Balance, error) {
	var b Balance
	if err := yaml.Unmarshal(defaultYAML, &b); err != nil {
		return nil, fmt.Errorf("failed to parse embedded default.yaml: %w", err)
	}
	return &b, nil
}

// Load reads the embedded defaults and overlays the file at path, if any.
// Keys missing from the file keep their default values.
func Load(path string) (*Balance, error) {
	b, err := Default()
	if err != nil {
		return nil, err
	}
	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read balance file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(content, b); err != nil {
			return nil, fmt.Errorf("failed to parse balance file %s: %w", path, err)
		}
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// ApplyEnv overrides seed, log level and order policy from the environment.
// lookup is usually os.LookupEnv.
func (b *Balance) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvSeed); ok && v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvSeed, v, err)
		}
		b.Seed = seed
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		b.LogLevel = v
	}
	if v, ok := lookup(EnvOrder); ok && v != "" {
		b.OrderPolicy = v
	}
	return b.Validate()
}

// Validate checks ranges and names.
func (b *Balance) Validate() error {
	if b.InflictDuration.Min < 0 || b.InflictDuration.Max < b.InflictDuration.Min {
		return fmt.Errorf("inflict_duration %d..%d is not a valid range", b.InflictDuration.Min, b.InflictDuration.Max)
	}
	if b.FleeChance < 0 || b.FleeChance > 100 {
		return fmt.Errorf("flee_chance %v must be within 0..100", b.FleeChance)
	}
	if b.AIStepBudget < 1 {
		return fmt.Errorf("ai_step_budget %d must be positive", b.AIStepBudget)
	}
	if b.TickDivisor < 1 {
		return fmt.Errorf("tick_divisor %d must be positive", b.TickDivisor)
	}
	if b.Encounter.MinFoes < 1 || b.Encounter.MaxFoes < b.Encounter.MinFoes {
		return fmt.Errorf("encounter foes %d..%d is not a valid range", b.Encounter.MinFoes, b.Encounter.MaxFoes)
	}
	if _, err := turn.ParseOrderPolicy(b.OrderPolicy); err != nil {
		return err
	}
	if _, err := zap.ParseAtomicLevel(b.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level %q: %w", b.LogLevel, err)
	}
	for _, m := range []map[string]float64{b.Aggression, b.Fortitude} {
		for name := range m {
			if _, ok := effect.ParseElement(name); !ok {
				return fmt.Errorf("unknown element %q in balance", name)
			}
		}
	}
	return nil
}

// Policy returns the parsed order policy.
func (b *Balance) Policy() turn.OrderPolicy {
	p, _ := turn.ParseOrderPolicy(b.OrderPolicy)
	return p
}

// CombatBalance converts the file's multipliers into resolver settings.
func (b *Balance) CombatBalance() combat.Balance {
	return combat.Balance{
		Aggression:   elementWeights(b.Aggression),
		Fortitude:    elementWeights(b.Fortitude),
		DefendFactor: b.DefendFactor,
		MinDamage:    b.MinDamage,
		TickDivisor:  b.TickDivisor,
	}
}

// ParseOptions returns parser options with the configured default duration.
func (b *Balance) ParseOptions(logger *zap.Logger) effect.ParseOptions {
	return effect.ParseOptions{
		DefaultMinDuration: b.InflictDuration.Min,
		DefaultMaxDuration: b.InflictDuration.Max,
		Logger:             logger,
	}
}

func elementWeights(raw map[string]float64) map[effect.Element]float64 {
	out := make(map[effect.Element]float64, len(raw))
	for name, w := range raw {
		if e, ok := effect.ParseElement(name); ok {
			out[e] = w
		}
	}
	return out
}
