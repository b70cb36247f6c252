package ui

import (
	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/bandbattle/internal/battle"
	"github.com/samdwyer/bandbattle/internal/effect"
	"github.com/samdwyer/bandbattle/internal/gamedata"
)

// Theme maps battle symbols to terminal glyphs and colors.
type Theme struct {
	Base     tcell.Style
	Title    tcell.Style
	Selected tcell.Style
	Disabled tcell.Style
	Fallen   tcell.Style
	Party    tcell.Style
}

// DefaultTheme returns the standard dark theme.
func DefaultTheme() *Theme {
	base := tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite)
	return &Theme{
		Base:     base,
		Title:    base.Foreground(tcell.ColorYellow).Bold(true),
		Selected: base.Reverse(true),
		Disabled: base.Foreground(tcell.ColorDarkGray),
		Fallen:   base.Foreground(tcell.ColorDarkGray).Dim(true),
		Party:    base.Foreground(tcell.ColorYellow).Bold(true),
	}
}

var ailmentGlyphs = map[effect.Ailment]struct {
	glyph rune
	color tcell.Color
}{
	effect.AilmentPoison:      {'P', tcell.ColorGreen},
	effect.AilmentBurn:        {'B', tcell.ColorOrangeRed},
	effect.AilmentScald:       {'S', tcell.ColorOrange},
	effect.AilmentFrostbite:   {'F', tcell.ColorLightBlue},
	effect.AilmentParalysis:   {'Z', tcell.ColorYellow},
	effect.AilmentBlindness:   {'K', tcell.ColorGray},
	effect.AilmentSilence:     {'M', tcell.ColorPurple},
	effect.AilmentConfuse:     {'?', tcell.ColorFuchsia},
	effect.AilmentBerserk:     {'!', tcell.ColorRed},
	effect.AilmentHibernation: {'H', tcell.ColorTeal},
	effect.AilmentBubble:      {'O', tcell.ColorAqua},
	effect.AilmentDeathTimer:  {'D', tcell.ColorMaroon},
	effect.AilmentStasis:      {'T', tcell.ColorSilver},
}

var elementColors = map[effect.Element]tcell.Color{
	effect.ElementPhysical:   tcell.ColorWhite,
	effect.ElementThermal:    tcell.ColorOrangeRed,
	effect.ElementPolar:      tcell.ColorLightCyan,
	effect.ElementPrimal:     tcell.ColorGreenYellow,
	effect.ElementCharged:    tcell.ColorYellow,
	effect.ElementCybernetic: tcell.ColorDodgerBlue,
	effect.ElementNihil:      tcell.ColorMediumPurple,
	effect.ElementLuck:       tcell.ColorGold,
}

// AilmentGlyph returns the status marker for an ailment.
func (t *Theme) AilmentGlyph(a effect.Ailment) (rune, tcell.Style) {
	g, ok := ailmentGlyphs[a]
	if !ok {
		return ' ', t.Base
	}
	return g.glyph, t.Base.Foreground(g.color).Bold(true)
}

// ElementStyle returns the text style for an element's damage.
func (t *Theme) ElementStyle(e effect.Element) tcell.Style {
	if c, ok := elementColors[e]; ok {
		return t.Base.Foreground(c)
	}
	return t.Base
}

// ScopeLabel returns the menu label for a targeting scope.
func (t *Theme) ScopeLabel(scope gamedata.TargetType) string {
	switch scope {
	case gamedata.TargetSelf:
		return "self"
	case gamedata.TargetSingleEnemy:
		return "one foe"
	case gamedata.TargetAllEnemies:
		return "all foes"
	case gamedata.TargetSingleAlly:
		return "one ally"
	case gamedata.TargetAllAllies:
		return "all allies"
	case gamedata.TargetSingleDeadAlly:
		return "fallen ally"
	default:
		return string(scope)
	}
}

// VitaStyle colors a VITA readout by how much is left.
func (t *Theme) VitaStyle(vita, maxVita int) tcell.Style {
	switch {
	case vita <= 0:
		return t.Fallen
	case vita*4 <= maxVita:
		return t.Base.Foreground(tcell.ColorRed)
	case vita*2 <= maxVita:
		return t.Base.Foreground(tcell.ColorYellow)
	default:
		return t.Base.Foreground(tcell.ColorGreen)
	}
}

// Ensure Theme implements battle.DisplayProvider
var _ battle.DisplayProvider = (*Theme)(nil)
