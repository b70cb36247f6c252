package gamedata

import (
	"errors"

	"go.uber.org/zap"

	"github.com/samdwyer/bandbattle/internal/effect"
)

// Catalog bundles every registry a battle draws on, with skill and item
// effects resolved against the effect table.
type Catalog struct {
	Effects *EffectRegistry
	Skills  *SkillRegistry
	Items   *ItemRegistry
	Classes *ClassRegistry
	Enemies *EnemyRegistry
}

// LoadCatalog loads all embedded data. Skills and items referencing a missing
// or invalid effect are dropped with a warning.
func LoadCatalog(opts effect.ParseOptions, logger *zap.Logger) (*Catalog, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Logger == nil {
		opts.Logger = logger
	}

	effects, err := LoadEffectRegistry(opts)
	if err != nil {
		return nil, err
	}
	skills, err := LoadSkills()
	if err != nil {
		return nil, err
	}
	items, err := LoadItems()
	if err != nil {
		return nil, err
	}
	classes, err := LoadClasses()
	if err != nil {
		return nil, err
	}
	enemies, err := LoadEnemyRegistry()
	if err != nil {
		return nil, err
	}

	return BuildCatalog(effects, skills, items, classes, enemies, logger)
}

// MustLoadCatalog loads the catalog, panicking on error.
func MustLoadCatalog(opts effect.ParseOptions, logger *zap.Logger) *Catalog {
	catalog, err := LoadCatalog(opts, logger)
	if err != nil {
		panic(err)
	}
	return catalog
}

// BuildCatalog resolves skill and item effects and assembles the registries.
func BuildCatalog(effects *EffectRegistry, skills []Skill, items []ItemDef, classes []ClassDef, enemies *EnemyRegistry, logger *zap.Logger) (*Catalog, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	kept := make([]Skill, 0, len(skills))
	for _, s := range skills {
		resolved, missing := effects.Resolve(s.EffectIDs)
		s.Effects = resolved
		if len(missing) > 0 || !s.IsValid() {
			logger.Warn("dropping skill with unusable effects",
				zap.String("skill", s.ID),
				zap.Ints("missing_effects", missing),
			)
			continue
		}
		kept = append(kept, s)
	}
	if len(kept) == 0 {
		return nil, errors.New("no usable skills")
	}

	keptItems := make([]ItemDef, 0, len(items))
	for _, it := range items {
		resolved, missing := effects.Resolve(it.EffectIDs)
		it.Effects = resolved
		if len(missing) > 0 || !it.IsValid() {
			logger.Warn("dropping item with unusable effects",
				zap.String("item", it.ID),
				zap.Ints("missing_effects", missing),
			)
			continue
		}
		keptItems = append(keptItems, it)
	}

	return &Catalog{
		Effects: effects,
		Skills:  NewSkillRegistry(kept),
		Items:   NewItemRegistry(keptItems),
		Classes: NewClassRegistry(classes),
		Enemies: enemies,
	}, nil
}
