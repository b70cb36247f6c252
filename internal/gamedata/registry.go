package gamedata

import (
	"errors"
	"math/rand"
)

// EnemyRegistry holds loaded enemy definitions and provides spawning utilities.
type EnemyRegistry struct {
	enemies     []EnemyDef
	totalWeight int
}

// NewEnemyRegistry creates a registry from loaded enemy definitions.
func NewEnemyRegistry(enemies []EnemyDef) *EnemyRegistry {
	totalWeight := 0
	for _, e := range enemies {
		totalWeight += e.SpawnWeight
	}
	return &EnemyRegistry{
		enemies:     enemies,
		totalWeight: totalWeight,
	}
}

// LoadEnemyRegistry loads and creates a registry from the embedded enemies.json.
func LoadEnemyRegistry() (*EnemyRegistry, error) {
	enemies, err := LoadEnemies()
	if err != nil {
		return nil, err
	}
	if len(enemies) == 0 {
		return nil, errors.New("no enemies loaded from enemies.json")
	}
	return NewEnemyRegistry(enemies), nil
}

// SpawnRandom selects a random enemy definition using weighted probability.
// Enemies with higher spawnWeight are more likely to be selected.
func (r *EnemyRegistry) SpawnRandom(rng *rand.Rand) *EnemyDef {
	if r.totalWeight <= 0 || len(r.enemies) == 0 {
		return nil
	}

	roll := rng.Intn(r.totalWeight)

	cumulative := 0
	for i := range r.enemies {
		cumulative += r.enemies[i].SpawnWeight
		if roll < cumulative {
			return &r.enemies[i]
		}
	}

	return &r.enemies[0]
}

// SpawnGroup draws n enemy definitions.
func (r *EnemyRegistry) SpawnGroup(rng *rand.Rand, n int) []*EnemyDef {
	group := make([]*EnemyDef, 0, n)
	for i := 0; i < n; i++ {
		if def := r.SpawnRandom(rng); def != nil {
			group = append(group, def)
		}
	}
	return group
}

// GetByID returns the enemy definition with the given ID, or nil if not found.
func (r *EnemyRegistry) GetByID(id string) *EnemyDef {
	for i := range r.enemies {
		if r.enemies[i].ID == id {
			return &r.enemies[i]
		}
	}
	return nil
}

// All returns all enemy definitions.
func (r *EnemyRegistry) All() []EnemyDef {
	return r.enemies
}

// Count returns the number of enemy types in the registry.
func (r *EnemyRegistry) Count() int {
	return len(r.enemies)
}

// =============================================================================
// SkillRegistry
// =============================================================================

// SkillRegistry holds resolved skills and provides lookup utilities.
type SkillRegistry struct {
	skills map[string]*Skill
	all    []Skill
}

// NewSkillRegistry creates a registry from skill definitions.
func NewSkillRegistry(skills []Skill) *SkillRegistry {
	registry := &SkillRegistry{
		skills: make(map[string]*Skill),
		all:    skills,
	}
	for i := range skills {
		registry.skills[skills[i].ID] = &skills[i]
	}
	return registry
}

// GetByID returns the skill with the given ID, or nil if not found.
func (r *SkillRegistry) GetByID(id string) *Skill {
	return r.skills[id]
}

// GetMultiple returns skills for a list of IDs.
// Missing IDs are silently skipped.
func (r *SkillRegistry) GetMultiple(ids []string) []*Skill {
	result := make([]*Skill, 0, len(ids))
	for _, id := range ids {
		if skill := r.skills[id]; skill != nil {
			result = append(result, skill)
		}
	}
	return result
}

// All returns all skills.
func (r *SkillRegistry) All() []Skill {
	return r.all
}

// Count returns the number of skills in the registry.
func (r *SkillRegistry) Count() int {
	return len(r.all)
}

// =============================================================================
// ItemRegistry
// =============================================================================

// ItemRegistry holds resolved item definitions.
type ItemRegistry struct {
	items map[string]*ItemDef
	all   []ItemDef
}

// NewItemRegistry creates a registry from item definitions.
func NewItemRegistry(items []ItemDef) *ItemRegistry {
	registry := &ItemRegistry{
		items: make(map[string]*ItemDef),
		all:   items,
	}
	for i := range items {
		registry.items[items[i].ID] = &items[i]
	}
	return registry
}

// GetByID returns the item definition with the given ID, or nil if not found.
func (r *ItemRegistry) GetByID(id string) *ItemDef {
	return r.items[id]
}

// All returns all item definitions.
func (r *ItemRegistry) All() []ItemDef {
	return r.all
}

// Count returns the number of items in the registry.
func (r *ItemRegistry) Count() int {
	return len(r.all)
}

// =============================================================================
// ClassRegistry
// =============================================================================

// ClassRegistry holds playable class definitions.
type ClassRegistry struct {
	classes map[string]*ClassDef
	all     []ClassDef
}

// NewClassRegistry creates a registry from class definitions.
func NewClassRegistry(classes []ClassDef) *ClassRegistry {
	registry := &ClassRegistry{
		classes: make(map[string]*ClassDef),
		all:     classes,
	}
	for i := range classes {
		registry.classes[classes[i].ID] = &classes[i]
	}
	return registry
}

// GetByID returns the class definition with the given ID, or nil if not found.
func (r *ClassRegistry) GetByID(id string) *ClassDef {
	return r.classes[id]
}

// All returns all class definitions.
func (r *ClassRegistry) All() []ClassDef {
	return r.all
}
