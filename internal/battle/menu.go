package battle

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/bandbattle/internal/combat"
	"github.com/samdwyer/bandbattle/internal/effect"
	"github.com/samdwyer/bandbattle/internal/entity"
	"github.com/samdwyer/bandbattle/internal/gamedata"
	"github.com/samdwyer/bandbattle/internal/turn"
)

// Decision is a completed selection, from the menu or an AI module.
type Decision struct {
	Kind    turn.ActionKind
	Skill   *gamedata.Skill
	Item    *entity.Item
	Targets []combat.ActorID
	Flee    bool // Kind is ActionPass when set
}

// MenuScreen identifies which list the menu shows.
type MenuScreen int

const (
	ScreenRoot MenuScreen = iota
	ScreenSkills
	ScreenItems
	ScreenTargets
)

// String returns a human-readable screen name.
func (s MenuScreen) String() string {
	switch s {
	case ScreenRoot:
		return "root"
	case ScreenSkills:
		return "skills"
	case ScreenItems:
		return "items"
	case ScreenTargets:
		return "targets"
	default:
		return "unknown"
	}
}

type rootChoice int

const (
	choiceSkill rootChoice = iota
	choiceItem
	choiceDefend
	choiceGuard
	choiceImplode
	choiceFlee
	choicePass
)

// MenuOption is one line of the current screen.
type MenuOption struct {
	Label    string
	Detail   string
	Disabled bool

	choice rootChoice
	skill  *gamedata.Skill
	item   *entity.Item
	target combat.ActorID
}

// Menu walks one player-controlled actor through choosing an action.
type Menu struct {
	b       *Battle
	actor   combat.ActorID
	active  bool
	screen  MenuScreen
	cursor  int
	options []MenuOption

	pending    Decision
	scope      gamedata.TargetType
	candidates []combat.ActorID
}

func newMenu(b *Battle) *Menu {
	return &Menu{b: b}
}

// Active reports whether the menu is waiting for input.
func (m *Menu) Active() bool { return m.active }

// Actor returns the actor being served, or NoActor.
func (m *Menu) Actor() combat.ActorID { return m.actor }

// Screen returns the current screen.
func (m *Menu) Screen() MenuScreen { return m.screen }

// Cursor returns the highlighted option index.
func (m *Menu) Cursor() int { return m.cursor }

// Options returns the options of the current screen.
func (m *Menu) Options() []MenuOption {
	out := make([]MenuOption, len(m.options))
	copy(out, m.options)
	return out
}

// Title describes the current screen for display.
func (m *Menu) Title() string {
	name := m.b.roster.Name(m.actor)
	switch m.screen {
	case ScreenSkills:
		return name + ": Skill"
	case ScreenItems:
		return name + ": Item"
	case ScreenTargets:
		return name + ": Target (" + m.b.display.ScopeLabel(m.scope) + ")"
	default:
		return name
	}
}

// Open starts a selection for actor at the root screen.
func (m *Menu) Open(actor combat.ActorID) {
	m.actor = actor
	m.active = true
	m.pending = Decision{}
	m.show(ScreenRoot)
}

// Close abandons any selection in progress.
func (m *Menu) Close() {
	m.actor = combat.NoActor
	m.active = false
	m.screen = ScreenRoot
	m.cursor = 0
	m.options = nil
	m.pending = Decision{}
	m.candidates = nil
}

// HandleKey applies one key. It returns a Decision once the selection is
// complete; the caller submits it and closes the menu.
func (m *Menu) HandleKey(ev *tcell.EventKey) (Decision, bool) {
	if !m.active || ev == nil {
		return Decision{}, false
	}
	switch ev.Key() {
	case tcell.KeyUp:
		m.move(-1)
	case tcell.KeyDown, tcell.KeyTab:
		m.move(1)
	case tcell.KeyEscape, tcell.KeyBackspace, tcell.KeyBackspace2:
		m.back()
	case tcell.KeyEnter:
		return m.selectCurrent()
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'k', 'w':
			m.move(-1)
		case 'j', 's':
			m.move(1)
		case ' ':
			return m.selectCurrent()
		}
	}
	return Decision{}, false
}

func (m *Menu) move(delta int) {
	n := len(m.options)
	if n == 0 {
		return
	}
	m.cursor = ((m.cursor+delta)%n + n) % n
}

func (m *Menu) back() {
	switch m.screen {
	case ScreenSkills, ScreenItems:
		m.show(ScreenRoot)
	case ScreenTargets:
		switch m.pending.Kind {
		case turn.ActionSkill:
			m.show(ScreenSkills)
		case turn.ActionItem:
			m.show(ScreenItems)
		default:
			m.show(ScreenRoot)
		}
	}
}

func (m *Menu) selectCurrent() (Decision, bool) {
	if m.cursor < 0 || m.cursor >= len(m.options) {
		return Decision{}, false
	}
	opt := m.options[m.cursor]
	if opt.Disabled {
		return Decision{}, false
	}

	switch m.screen {
	case ScreenRoot:
		switch opt.choice {
		case choiceSkill:
			m.show(ScreenSkills)
		case choiceItem:
			m.show(ScreenItems)
		case choiceDefend:
			return Decision{Kind: turn.ActionDefend}, true
		case choiceGuard:
			m.pending = Decision{Kind: turn.ActionGuard}
			m.scope = gamedata.TargetSingleAlly
			m.candidates = m.b.guardCandidates(m.actor)
			m.show(ScreenTargets)
		case choiceImplode:
			return Decision{Kind: turn.ActionImplode}, true
		case choiceFlee:
			return Decision{Kind: turn.ActionPass, Flee: true}, true
		case choicePass:
			return Decision{Kind: turn.ActionPass}, true
		}
	case ScreenSkills:
		m.pending = Decision{Kind: turn.ActionSkill, Skill: opt.skill}
		return m.chooseTargets(opt.skill.TargetType)
	case ScreenItems:
		m.pending = Decision{Kind: turn.ActionItem, Item: opt.item}
		return m.chooseTargets(opt.item.Target)
	case ScreenTargets:
		d := m.pending
		d.Targets = []combat.ActorID{opt.target}
		return d, true
	}
	return Decision{}, false
}

// chooseTargets completes the selection for scopes without a choice, or
// moves to the target screen.
func (m *Menu) chooseTargets(scope gamedata.TargetType) (Decision, bool) {
	candidates := m.b.candidates(m.actor, scope)
	if !scope.NeedsTarget() {
		d := m.pending
		d.Targets = candidates
		return d, true
	}
	m.scope = scope
	m.candidates = candidates
	m.show(ScreenTargets)
	return Decision{}, false
}

func (m *Menu) show(screen MenuScreen) {
	m.screen = screen
	m.cursor = 0
	switch screen {
	case ScreenRoot:
		m.options = m.rootOptions()
	case ScreenSkills:
		m.options = m.skillOptions()
	case ScreenItems:
		m.options = m.itemOptions()
	case ScreenTargets:
		m.options = m.targetOptions()
	}
	for i, opt := range m.options {
		if !opt.Disabled {
			m.cursor = i
			break
		}
	}
}

func (m *Menu) rootOptions() []MenuOption {
	actor, _ := m.b.roster.Get(m.actor)
	skillsOK := false
	for _, opt := range m.skillOptions() {
		if !opt.Disabled {
			skillsOK = true
			break
		}
	}
	itemsOK := false
	for _, opt := range m.itemOptions() {
		if !opt.Disabled {
			itemsOK = true
			break
		}
	}
	silenced := actor != nil && actor.HasAilment(effect.AilmentSilence)
	skillDetail := ""
	if silenced {
		skillDetail = "silenced"
	}

	return []MenuOption{
		{Label: "Skill", Detail: skillDetail, Disabled: !skillsOK, choice: choiceSkill},
		{Label: "Item", Disabled: !itemsOK, choice: choiceItem},
		{Label: "Defend", choice: choiceDefend},
		{Label: "Guard", Disabled: len(m.b.guardCandidates(m.actor)) == 0, choice: choiceGuard},
		{Label: "Implode", choice: choiceImplode},
		{Label: "Flee", choice: choiceFlee},
		{Label: "Pass", choice: choicePass},
	}
}

func (m *Menu) skillOptions() []MenuOption {
	var opts []MenuOption
	for _, s := range m.b.skillsOf(m.actor) {
		opts = append(opts, MenuOption{
			Label:    s.Name,
			Detail:   fmt.Sprintf("%d QTDR, %s", s.Cost, m.b.display.ScopeLabel(s.TargetType)),
			Disabled: !m.b.canUseSkill(m.actor, s),
			skill:    s,
		})
	}
	return opts
}

func (m *Menu) itemOptions() []MenuOption {
	if m.b.inventory == nil {
		return nil
	}
	var opts []MenuOption
	for _, it := range m.b.inventory.Items() {
		stock := m.b.itemsInStock(it.ID)
		opts = append(opts, MenuOption{
			Label:    fmt.Sprintf("%s x%d", it.Name, stock),
			Detail:   m.b.display.ScopeLabel(it.Target),
			Disabled: stock == 0 || !it.IsValid() || len(m.b.candidates(m.actor, it.Target)) == 0,
			item:     it,
		})
	}
	return opts
}

func (m *Menu) targetOptions() []MenuOption {
	opts := make([]MenuOption, 0, len(m.candidates))
	for _, id := range m.candidates {
		a, ok := m.b.roster.Get(id)
		if !ok {
			continue
		}
		opts = append(opts, MenuOption{
			Label: a.GetName(),
			Detail: fmt.Sprintf("VITA %d/%d",
				a.GetStat(effect.AttrVITA), a.GetMaxStat(effect.AttrVITA)),
			target: id,
		})
	}
	return opts
}
