package gamedata

import (
	"bytes"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/samdwyer/bandbattle/internal/effect"
)

// EffectsFile is the embedded effect DSL table.
const EffectsFile = "effects.dsl"

// EffectRegistry holds valid parsed effect descriptors keyed by ID.
type EffectRegistry struct {
	byID     map[int]*effect.Descriptor
	order    []int
	rejected []*effect.Descriptor
}

// NewEffectRegistry builds a registry from parsed descriptors. Invalid
// descriptors and duplicate IDs are kept aside as rejected; the first
// occurrence of an ID wins.
func NewEffectRegistry(descriptors []*effect.Descriptor, logger *zap.Logger) *EffectRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &EffectRegistry{byID: make(map[int]*effect.Descriptor)}
	for _, d := range descriptors {
		if d == nil {
			continue
		}
		if !d.Valid {
			r.rejected = append(r.rejected, d)
			continue
		}
		if _, dup := r.byID[d.ID]; dup {
			logger.Warn("duplicate effect id", zap.Int("effect_id", d.ID))
			r.rejected = append(r.rejected, d)
			continue
		}
		r.byID[d.ID] = d
		r.order = append(r.order, d.ID)
	}
	return r
}

// ReadEffectRegistry parses DSL lines from r into a registry.
func ReadEffectRegistry(src io.Reader, opts effect.ParseOptions) (*EffectRegistry, error) {
	descriptors, err := effect.ParseAll(src, opts)
	if err != nil {
		return nil, err
	}
	return NewEffectRegistry(descriptors, opts.Logger), nil
}

// LoadEffectRegistry parses the embedded effects.dsl.
func LoadEffectRegistry(opts effect.ParseOptions) (*EffectRegistry, error) {
	content, err := dataFS.ReadFile(EffectsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded file %s: %w", EffectsFile, err)
	}
	return ReadEffectRegistry(bytes.NewReader(content), opts)
}

// GetByID returns the descriptor with the given ID, or nil if not found.
func (r *EffectRegistry) GetByID(id int) *effect.Descriptor {
	return r.byID[id]
}

// Resolve maps IDs to descriptors. The second return lists IDs that did not
// resolve.
func (r *EffectRegistry) Resolve(ids []int) ([]*effect.Descriptor, []int) {
	var missing []int
	out := make([]*effect.Descriptor, 0, len(ids))
	for _, id := range ids {
		d := r.byID[id]
		if d == nil {
			missing = append(missing, id)
			continue
		}
		out = append(out, d)
	}
	return out, missing
}

// All returns the valid descriptors in file order.
func (r *EffectRegistry) All() []*effect.Descriptor {
	out := make([]*effect.Descriptor, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// Rejected returns descriptors that were invalid or duplicated.
func (r *EffectRegistry) Rejected() []*effect.Descriptor {
	return r.rejected
}

// Count returns the number of valid descriptors.
func (r *EffectRegistry) Count() int {
	return len(r.order)
}
