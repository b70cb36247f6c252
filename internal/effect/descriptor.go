package effect

import (
	"strconv"
	"strings"
)

// Magnitude is a base or variance value, either an absolute amount or a
// percentage of some reference stat.
type Magnitude struct {
	Value   int
	Percent bool
}

// Amount returns an absolute magnitude.
func Amount(v int) Magnitude { return Magnitude{Value: v} }

// Percent returns a percentage magnitude.
func Percent(v int) Magnitude { return Magnitude{Value: v, Percent: true} }

// IsZero reports whether the magnitude is a zero amount.
func (m Magnitude) IsZero() bool {
	return m.Value == 0 && !m.Percent
}

// Of resolves the magnitude against a reference value: amounts are returned
// as-is, percentages are taken of ref.
func (m Magnitude) Of(ref int) int {
	if !m.Percent {
		return m.Value
	}
	return ref * m.Value / 100
}

// String renders the DSL form (AMOUNT.n or PC.n). A zero amount renders blank.
func (m Magnitude) String() string {
	if m.IsZero() {
		return ""
	}
	if m.Percent {
		return "PC." + strconv.Itoa(m.Value)
	}
	return "AMOUNT." + strconv.Itoa(m.Value)
}

// Descriptor is one parsed, validated combat effect. Descriptors are built
// once from static data and shared read-only afterwards.
type Descriptor struct {
	ID   int
	Kind Kind
	// Flip swaps the user and target roles at execution time.
	Flip bool

	UserAttribute   Attribute
	TargetAttribute Attribute
	Ailment         Ailment

	Base     Magnitude
	Variance Magnitude

	MinDuration int
	MaxDuration int

	IgnoreAttack  ElementSet
	IgnoreDefense ElementSet

	Chance float64

	Valid       bool
	Diagnostics []string
}

// Keyword returns the DSL keyword including any -FLIP suffix.
func (d *Descriptor) Keyword() string {
	if d.Flip {
		return d.Kind.String() + "-FLIP"
	}
	return d.Kind.String()
}

// String renders the descriptor back into a DSL line. This is best effort:
// fields that were blank in the source may come back with their defaults,
// and symbols a kind does not consult are dropped.
func (d *Descriptor) String() string {
	fields := make([]string, 10)
	fields[0] = strconv.Itoa(d.ID)
	fields[1] = d.Keyword()

	if d.Kind.UsesAilment() {
		fields[2] = strconv.Itoa(d.MinDuration) + "." + strconv.Itoa(d.MaxDuration)
	}
	if d.Kind == KindDamage {
		fields[3] = d.IgnoreAttack.String()
		fields[4] = d.IgnoreDefense.String()
	}

	switch {
	case d.Kind.UsesAilment():
		fields[5] = d.Ailment.String()
	case d.Kind.UsesAttributes():
		fields[5] = d.UserAttribute.String()
		fields[8] = d.TargetAttribute.String()
	}

	fields[6] = d.Base.String()
	fields[7] = d.Variance.String()
	fields[9] = strconv.FormatFloat(d.Chance, 'f', -1, 64)

	return strings.Join(fields, ",")
}
