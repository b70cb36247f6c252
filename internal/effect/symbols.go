// Package effect implements the combat effect DSL: one comma-delimited line per
// atomic effect (damage, stat alteration, ailment infliction/relief, revival).
package effect

import "strings"

// Kind is what an effect does when executed.
type Kind int

const (
	KindNone Kind = iota
	KindDamage
	KindAlter
	KindInflict
	KindRelieve
	KindAssign
	KindRevive
)

var kindKeywords = map[Kind]string{
	KindDamage:  "DAMAGE",
	KindAlter:   "ALTER",
	KindInflict: "INFLICT",
	KindRelieve: "RELIEVE",
	KindAssign:  "ASSIGN",
	KindRevive:  "REVIVE",
}

// String returns the DSL keyword for the kind.
func (k Kind) String() string {
	if s, ok := kindKeywords[k]; ok {
		return s
	}
	return "NONE"
}

// CanFlip reports whether the DSL accepts a -FLIP suffix for this kind.
func (k Kind) CanFlip() bool {
	return k == KindAlter || k == KindAssign
}

// UsesAttributes reports whether the user/target symbol fields hold attributes.
func (k Kind) UsesAttributes() bool {
	switch k {
	case KindDamage, KindAlter, KindAssign, KindRevive:
		return true
	default:
		return false
	}
}

// UsesAilment reports whether the user symbol field holds an ailment.
func (k Kind) UsesAilment() bool {
	return k == KindInflict || k == KindRelieve
}

// =============================================================================
// Attributes
// =============================================================================

// Attribute is a stat symbol an effect reads or writes.
type Attribute int

const (
	AttrNone Attribute = iota
	AttrVITA           // vitality (hit points)
	AttrQTDR           // quantum drive (skill resource)
	AttrPHAG           // physical aggression
	AttrPHFD           // physical fortitude
	AttrTHAG           // thermal aggression
	AttrTHFD           // thermal fortitude
	AttrPOAG           // polar aggression
	AttrPOFD           // polar fortitude
	AttrPRAG           // primal aggression
	AttrPRFD           // primal fortitude
	AttrCHAG           // charged aggression
	AttrCHFD           // charged fortitude
	AttrCYAG           // cybernetic aggression
	AttrCYFD           // cybernetic fortitude
	AttrNIAG           // nihil aggression
	AttrNIFD           // nihil fortitude
	AttrMMNT           // momentum (speed)
	AttrLIMB           // limbertude (evasion)
	AttrUNBR           // unbearability (critical power)

	attrCount
)

var attrSymbols = [...]string{
	AttrNone: "",
	AttrVITA: "VITA",
	AttrQTDR: "QTDR",
	AttrPHAG: "PHAG",
	AttrPHFD: "PHFD",
	AttrTHAG: "THAG",
	AttrTHFD: "THFD",
	AttrPOAG: "POAG",
	AttrPOFD: "POFD",
	AttrPRAG: "PRAG",
	AttrPRFD: "PRFD",
	AttrCHAG: "CHAG",
	AttrCHFD: "CHFD",
	AttrCYAG: "CYAG",
	AttrCYFD: "CYFD",
	AttrNIAG: "NIAG",
	AttrNIFD: "NIFD",
	AttrMMNT: "MMNT",
	AttrLIMB: "LIMB",
	AttrUNBR: "UNBR",
}

// String returns the DSL symbol, or "" for AttrNone.
func (a Attribute) String() string {
	if a < 0 || a >= attrCount {
		return ""
	}
	return attrSymbols[a]
}

// Attributes returns every real attribute in declaration order.
func Attributes() []Attribute {
	out := make([]Attribute, 0, attrCount-1)
	for a := AttrVITA; a < attrCount; a++ {
		out = append(out, a)
	}
	return out
}

// ParseAttribute resolves a DSL symbol. The empty string resolves to AttrNone.
func ParseAttribute(s string) (Attribute, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return AttrNone, true
	}
	for a := AttrVITA; a < attrCount; a++ {
		if attrSymbols[a] == s {
			return a, true
		}
	}
	return AttrNone, false
}

// =============================================================================
// Ailments
// =============================================================================

// Ailment is a named status condition with a turn duration.
type Ailment int

const (
	AilmentNone Ailment = iota
	AilmentPoison
	AilmentBurn
	AilmentScald
	AilmentFrostbite
	AilmentParalysis
	AilmentBlindness
	AilmentSilence
	AilmentConfuse
	AilmentBerserk
	AilmentHibernation
	AilmentBubble
	AilmentDeathTimer
	AilmentStasis

	ailmentCount
)

var ailmentSymbols = [...]string{
	AilmentNone:        "",
	AilmentPoison:      "POISON",
	AilmentBurn:        "BURN",
	AilmentScald:       "SCALD",
	AilmentFrostbite:   "FROSTBITE",
	AilmentParalysis:   "PARALYSIS",
	AilmentBlindness:   "BLINDNESS",
	AilmentSilence:     "SILENCE",
	AilmentConfuse:     "CONFUSE",
	AilmentBerserk:     "BERSERK",
	AilmentHibernation: "HIBERNATION",
	AilmentBubble:      "BUBBLE",
	AilmentDeathTimer:  "DEATH_TIMER",
	AilmentStasis:      "STASIS",
}

func (a Ailment) String() string {
	if a < 0 || a >= ailmentCount {
		return ""
	}
	return ailmentSymbols[a]
}

// Ailments returns every real ailment in declaration order.
func Ailments() []Ailment {
	out := make([]Ailment, 0, ailmentCount-1)
	for a := AilmentPoison; a < ailmentCount; a++ {
		out = append(out, a)
	}
	return out
}

// PreventsSelection reports whether an actor carrying the ailment skips its
// personal upkeep selection.
func (a Ailment) PreventsSelection() bool {
	switch a {
	case AilmentParalysis, AilmentHibernation, AilmentStasis:
		return true
	default:
		return false
	}
}

// ParseAilment resolves a DSL ailment symbol. Blank input does not resolve.
func ParseAilment(s string) (Ailment, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return AilmentNone, false
	}
	for a := AilmentPoison; a < ailmentCount; a++ {
		if ailmentSymbols[a] == s {
			return a, true
		}
	}
	return AilmentNone, false
}
