package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/bandbattle/internal/battle"
	"github.com/samdwyer/bandbattle/internal/combat"
	"github.com/samdwyer/bandbattle/internal/effect"
)

// MaxLogLines is how many battle messages the view keeps.
const MaxLogLines = 64

const (
	nameWidth   = 14
	columnWidth = 38
	menuWidth   = 34
)

// Renderer draws a battle and collects its messages. It implements
// battle.Presenter.
type Renderer struct {
	screen *Screen
	theme  *Theme
	log    []string
}

// NewRenderer creates a new renderer for the given screen.
func NewRenderer(screen *Screen, theme *Theme) *Renderer {
	if theme == nil {
		theme = DefaultTheme()
	}
	return &Renderer{screen: screen, theme: theme}
}

// Present records the message of a battle event.
func (r *Renderer) Present(ev battle.Event) {
	if ev.Message == "" {
		return
	}
	r.log = append(r.log, ev.Message)
	if len(r.log) > MaxLogLines {
		r.log = r.log[len(r.log)-MaxLogLines:]
	}
}

// Log returns the retained messages, oldest first.
func (r *Renderer) Log() []string {
	out := make([]string, len(r.log))
	copy(out, r.log)
	return out
}

// Render draws the whole battle screen.
func (r *Renderer) Render(b *battle.Battle) {
	r.screen.Clear()
	w, h := r.screen.Size()

	header := fmt.Sprintf("Turn %d  [%s]", b.Turn(), b.Phase())
	r.screen.DrawText(0, 0, w, header, r.theme.Title)

	roster := b.Roster()
	rows := r.renderSide(roster, combat.SideParty, 0, 2, b)
	if n := r.renderSide(roster, combat.SideFoes, columnWidth+2, 2, b); n > rows {
		rows = n
	}

	top := rows + 3
	r.renderMenu(b.Menu(), 0, top)
	r.renderLog(menuWidth+2, top, w-menuWidth-2, h-top)
	r.renderOutcome(b.Phase(), h-1, w)

	r.screen.Show()
}

// renderSide draws one line per actor on a side; returns the lines used.
func (r *Renderer) renderSide(roster *combat.Roster, side combat.Side, x, y int, b *battle.Battle) int {
	title := "Party"
	if side == combat.SideFoes {
		title = "Foes"
	}
	r.screen.DrawText(x, y, columnWidth, title, r.theme.Title)

	line := 1
	for _, id := range roster.Side(side) {
		actor, ok := roster.Get(id)
		if !ok {
			continue
		}
		r.renderActor(actor, x, y+line, id == b.Menu().Actor(), b.IsDefending(id))
		line++
	}
	return line
}

func (r *Renderer) renderActor(actor combat.Actor, x, y int, acting, defending bool) {
	glyph, style := r.glyphOf(actor)
	if !actor.IsAlive() {
		style = r.theme.Fallen
	}
	r.screen.SetContent(x, y, glyph, style)

	nameStyle := r.theme.Base
	switch {
	case !actor.IsAlive():
		nameStyle = r.theme.Fallen
	case acting:
		nameStyle = r.theme.Selected
	}
	col := x + 2
	col += r.screen.DrawText(col, y, nameWidth, PadRight(actor.GetName(), nameWidth), nameStyle)

	vita, maxVita := actor.GetStat(effect.AttrVITA), actor.GetMaxStat(effect.AttrVITA)
	stats := fmt.Sprintf(" %4d/%-4d", vita, maxVita)
	col += r.screen.DrawText(col, y, 10, stats, r.theme.VitaStyle(vita, maxVita))
	qtdr := fmt.Sprintf(" Q%-3d", actor.GetStat(effect.AttrQTDR))
	col += r.screen.DrawText(col, y, 5, qtdr, r.theme.Base.Foreground(tcell.ColorLightBlue))

	if defending {
		r.screen.SetContent(col, y, '#', r.theme.Base.Foreground(tcell.ColorSilver))
	}
	col += 2
	for _, st := range actor.GetAilments() {
		g, s := r.theme.AilmentGlyph(st.Ailment)
		if col >= x+columnWidth {
			break
		}
		r.screen.SetContent(col, y, g, s)
		col++
	}
}

// glyphOf returns the map symbol of a member or enemy.
func (r *Renderer) glyphOf(actor combat.Actor) (rune, tcell.Style) {
	type colored interface{ Color() tcell.Color }
	if c, ok := actor.(colored); ok {
		g := '?'
		if s, ok := actor.(interface{ GetSymbol() rune }); ok {
			g = s.GetSymbol()
		}
		return g, r.theme.Base.Foreground(c.Color())
	}
	if s, ok := actor.(interface{ GetSymbol() rune }); ok {
		return s.GetSymbol(), r.theme.Party
	}
	return '@', r.theme.Party
}

func (r *Renderer) renderMenu(menu *battle.Menu, x, y int) {
	if !menu.Active() {
		return
	}
	r.screen.DrawText(x, y, menuWidth, menu.Title(), r.theme.Title)
	for i, opt := range menu.Options() {
		style := r.theme.Base
		switch {
		case opt.Disabled:
			style = r.theme.Disabled
		case i == menu.Cursor():
			style = r.theme.Selected
		}
		text := PadRight(opt.Label, 16)
		if opt.Detail != "" {
			text += " " + opt.Detail
		}
		r.screen.DrawText(x+1, y+1+i, menuWidth-1, text, style)
	}
}

// renderLog draws the newest messages that fit, oldest at the top.
func (r *Renderer) renderLog(x, y, width, height int) {
	if width <= 0 || height <= 1 {
		return
	}
	lines := r.log
	if len(lines) > height-1 {
		lines = lines[len(lines)-(height-1):]
	}
	for i, msg := range lines {
		r.screen.DrawText(x, y+i, width, msg, r.theme.Base)
	}
}

func (r *Renderer) renderOutcome(phase battle.Phase, y, width int) {
	var msg string
	switch phase {
	case battle.PhaseBattleWon:
		msg = "Victory! Press any key."
	case battle.PhaseBattleLost:
		msg = "Defeat... Press any key."
	case battle.PhaseFled:
		msg = "Escaped! Press any key."
	default:
		msg = "Arrows: move  Enter: select  Esc: back  q: quit"
	}
	r.screen.DrawText(0, y, width, msg, r.theme.Disabled)
}

// Ensure Renderer implements battle.Presenter
var _ battle.Presenter = (*Renderer)(nil)
