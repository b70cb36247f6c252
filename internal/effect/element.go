package effect

import "strings"

// Element is a physical or elemental damage category.
type Element uint8

const (
	ElementPhysical Element = iota
	ElementThermal
	ElementPolar
	ElementPrimal
	ElementCharged
	ElementCybernetic
	ElementNihil
	ElementLuck

	elementCount
)

var elementSymbols = [...]string{
	ElementPhysical:   "PHYSICAL",
	ElementThermal:    "THERMAL",
	ElementPolar:      "POLAR",
	ElementPrimal:     "PRIMAL",
	ElementCharged:    "CHARGED",
	ElementCybernetic: "CYBERNETIC",
	ElementNihil:      "NIHIL",
	ElementLuck:       "LUCK",
}

func (e Element) String() string {
	if e >= elementCount {
		return ""
	}
	return elementSymbols[e]
}

// Elements returns every category in declaration order.
func Elements() []Element {
	out := make([]Element, 0, elementCount)
	for e := Element(0); e < elementCount; e++ {
		out = append(out, e)
	}
	return out
}

// Aggression returns the attacker-side attribute for the category.
func (e Element) Aggression() Attribute {
	switch e {
	case ElementPhysical:
		return AttrPHAG
	case ElementThermal:
		return AttrTHAG
	case ElementPolar:
		return AttrPOAG
	case ElementPrimal:
		return AttrPRAG
	case ElementCharged:
		return AttrCHAG
	case ElementCybernetic:
		return AttrCYAG
	case ElementNihil:
		return AttrNIAG
	case ElementLuck:
		return AttrUNBR
	default:
		return AttrNone
	}
}

// Fortitude returns the defender-side attribute for the category.
func (e Element) Fortitude() Attribute {
	switch e {
	case ElementPhysical:
		return AttrPHFD
	case ElementThermal:
		return AttrTHFD
	case ElementPolar:
		return AttrPOFD
	case ElementPrimal:
		return AttrPRFD
	case ElementCharged:
		return AttrCHFD
	case ElementCybernetic:
		return AttrCYFD
	case ElementNihil:
		return AttrNIFD
	case ElementLuck:
		return AttrLIMB
	default:
		return AttrNone
	}
}

// ElementSet is a bit set of categories excluded from damage lookups.
type ElementSet uint16

const (
	// IgnoreElemental covers every category except physical and luck.
	IgnoreElemental = ElementSet(1<<ElementThermal | 1<<ElementPolar | 1<<ElementPrimal |
		1<<ElementCharged | 1<<ElementCybernetic | 1<<ElementNihil)
	// IgnoreAll covers physical plus every elemental category.
	IgnoreAll = IgnoreElemental | ElementSet(1<<ElementPhysical)
)

// With returns the set with e added.
func (s ElementSet) With(e Element) ElementSet {
	return s | 1<<e
}

// Has reports whether e is in the set.
func (s ElementSet) Has(e Element) bool {
	return s&(1<<e) != 0
}

// IsEmpty reports whether no category is set.
func (s ElementSet) IsEmpty() bool {
	return s == 0
}

// IgnoresAll reports whether physical and every elemental category are set.
func (s ElementSet) IgnoresAll() bool {
	return s&IgnoreAll == IgnoreAll
}

// IgnoresElemental reports whether every elemental category is set.
func (s ElementSet) IgnoresElemental() bool {
	return s&IgnoreElemental == IgnoreElemental
}

// Members returns the categories in the set in declaration order.
func (s ElementSet) Members() []Element {
	var out []Element
	for e := Element(0); e < elementCount; e++ {
		if s.Has(e) {
			out = append(out, e)
		}
	}
	return out
}

// String renders the set as period-delimited DSL tokens, using the ALL and
// ELEMENTAL shorthands where they fit exactly.
func (s ElementSet) String() string {
	switch s {
	case 0:
		return ""
	case IgnoreAll:
		return "ALL"
	case IgnoreElemental:
		return "ELEMENTAL"
	}
	members := s.Members()
	tokens := make([]string, len(members))
	for i, e := range members {
		tokens[i] = e.String()
	}
	return strings.Join(tokens, ".")
}

// parseElementToken resolves one ignore-list token into the flags it sets.
func parseElementToken(tok string) (ElementSet, bool) {
	switch tok {
	case "ALL":
		return IgnoreAll, true
	case "ELEMENTAL":
		return IgnoreElemental, true
	}
	if e, ok := ParseElement(tok); ok {
		return ElementSet(0).With(e), true
	}
	return 0, false
}

// ParseElement resolves a single category name, case-insensitively.
func ParseElement(s string) (Element, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for e := Element(0); e < elementCount; e++ {
		if elementSymbols[e] == s {
			return e, true
		}
	}
	return 0, false
}
