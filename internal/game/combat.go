package game

import (
	"context"
	"fmt"
	"math/rand"

	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/bandbattle/internal/combat"
	"github.com/samdwyer/bandbattle/internal/config"
	"github.com/samdwyer/bandbattle/internal/entity"
	"github.com/samdwyer/bandbattle/internal/gamedata"
	"github.com/samdwyer/bandbattle/internal/telemetry"
)

// partyNames gives each class's adventurer a name.
var partyNames = map[string]string{
	"warrior": "Brakka",
	"rogue":   "Vesper",
	"wizard":  "Quill",
	"cleric":  "Oswin",
}

// Encounter is a generated battle: the party, the foes and the party's packs.
type Encounter struct {
	Roster    *combat.Roster
	Party     *entity.Party
	Foes      []*entity.Enemy
	Inventory *entity.Inventory
}

// NewEncounter builds the party from every class in the catalog and spawns
// a weighted group of foes sized by the encounter settings.
func NewEncounter(ctx context.Context, catalog *gamedata.Catalog, settings config.Encounter, rng *rand.Rand) (*Encounter, error) {
	tracer := telemetry.Tracer("game")
	_, span := tracer.Start(ctx, "encounter.generate")
	defer span.End()

	party := entity.NewParty()
	enc := &Encounter{
		Roster:    combat.NewRoster(),
		Party:     party,
		Inventory: party.Inventory,
	}

	for _, def := range catalog.Classes.All() {
		name, ok := partyNames[def.ID]
		if !ok {
			name = def.Name
		}
		m := entity.NewMember(name, classFor(def.ID))
		if err := m.InitFromClassDef(catalog.Classes.GetByID(def.ID)); err != nil {
			return nil, fmt.Errorf("class %s: %w", def.ID, err)
		}
		enc.Party.Add(m)
		enc.Roster.Add(m, combat.SideParty)
	}
	if len(enc.Party.Members) == 0 {
		return nil, fmt.Errorf("no classes to build a party from")
	}

	n := settings.MinFoes
	if spread := settings.MaxFoes - settings.MinFoes; spread > 0 {
		n += rng.Intn(spread + 1)
	}
	counts := make(map[string]int)
	for _, def := range catalog.Enemies.SpawnGroup(rng, n) {
		foe, err := entity.NewEnemyFromDef(def)
		if err != nil {
			return nil, fmt.Errorf("enemy %s: %w", def.ID, err)
		}
		counts[def.ID]++
		if counts[def.ID] > 1 {
			foe.Name = fmt.Sprintf("%s %c", def.Name, 'A'+counts[def.ID]-1)
		}
		enc.Foes = append(enc.Foes, foe)
		enc.Roster.Add(foe, combat.SideFoes)
	}
	if len(enc.Foes) == 0 {
		return nil, fmt.Errorf("no enemies could be spawned")
	}

	for _, pack := range []struct {
		id    string
		count int
	}{
		{"potion", settings.Potions},
		{"ether", settings.Ethers},
		{"phoenix_down", settings.PhoenixDowns},
	} {
		def := catalog.Items.GetByID(pack.id)
		if def == nil || pack.count <= 0 {
			continue
		}
		enc.Inventory.Add(entity.NewItemFromDef(def, pack.count))
	}

	span.SetAttributes(
		attribute.Int("party_size", len(enc.Party.Members)),
		attribute.Int("foe_count", len(enc.Foes)),
		attribute.Int("item_stacks", len(enc.Inventory.Items())),
	)
	return enc, nil
}

// classFor maps a class id onto the built-in class enum.
func classFor(id string) entity.Class {
	for _, c := range []entity.Class{entity.ClassWarrior, entity.ClassRogue, entity.ClassWizard, entity.ClassCleric} {
		if c.ID() == id {
			return c
		}
	}
	return entity.ClassWarrior
}
