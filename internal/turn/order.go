package turn

import (
	"fmt"
	"sort"
	"strings"
)

// OrderPolicy selects how Reorder ranks a turn's actions.
type OrderPolicy int

const (
	// OrderBySpeed ranks by descending momentum; equal momentum falls back
	// to roster slot order, then submission order.
	OrderBySpeed OrderPolicy = iota
	// OrderByKindThenSpeed ranks Defend < Guard < Item < Skill < others first,
	// then by descending momentum, then by roster slot and submission order.
	OrderByKindThenSpeed
)

// String returns the configuration name of the policy.
func (p OrderPolicy) String() string {
	switch p {
	case OrderBySpeed:
		return "speed"
	case OrderByKindThenSpeed:
		return "kind_then_speed"
	default:
		return "unknown"
	}
}

// ParseOrderPolicy resolves a configuration name.
func ParseOrderPolicy(s string) (OrderPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "speed":
		return OrderBySpeed, nil
	case "kind_then_speed":
		return OrderByKindThenSpeed, nil
	default:
		return OrderBySpeed, fmt.Errorf("unknown order policy %q", s)
	}
}

// Reorder sorts the buffer into execution order with one stable sort and
// resets the cursor. Actors missing from the roster sort last; equal momentum
// breaks on roster slot, never on when another actor's action was queued.
func (b *Buffer) Reorder() {
	type key struct {
		present  bool
		momentum int
	}
	keys := make(map[*QueuedAction]key, len(b.entries))
	for _, e := range b.entries {
		if a, ok := b.roster.Get(e.Source); ok {
			keys[e] = key{present: true, momentum: a.GetMomentum()}
		}
	}

	sort.SliceStable(b.entries, func(i, j int) bool {
		ei, ej := b.entries[i], b.entries[j]
		ki, kj := keys[ei], keys[ej]
		if ki.present != kj.present {
			return ki.present
		}
		if b.policy == OrderByKindThenSpeed {
			if pi, pj := ei.Kind().precedence(), ej.Kind().precedence(); pi != pj {
				return pi < pj
			}
		}
		if ki.momentum != kj.momentum {
			return ki.momentum > kj.momentum
		}
		if ei.Source != ej.Source {
			return ei.Source < ej.Source
		}
		return ei.seq < ej.seq
	})
	b.cursor = 0
}
