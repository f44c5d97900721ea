package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/math-defender/internal/core"
	"github.com/vovakirdan/math-defender/internal/game"
)

// KeyMap holds the key bindings for the category, game and game over screens.
// While playing, printable keys belong to the answer input, so only Enter,
// Esc and Ctrl+C are bound there.
type KeyMap struct {
	PrevFilter key.Binding
	NextFilter key.Binding
	PrevTier   key.Binding
	NextTier   key.Binding
	Start      key.Binding
	Submit     key.Binding
	Abort      key.Binding
	Restart    key.Binding
	Back       key.Binding
	Scoreboard key.Binding
	Quit       key.Binding
	ForceQuit  key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		PrevFilter: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "operation"),
		),
		NextFilter: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "operation"),
		),
		PrevTier: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "difficulty"),
		),
		NextTier: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "difficulty"),
		),
		Start: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "start"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "fire"),
		),
		Abort: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "menu"),
		),
		Restart: key.NewBinding(
			key.WithKeys("r", "enter"),
			key.WithHelp("r", "restart"),
		),
		Back: key.NewBinding(
			key.WithKeys("b", "esc"),
			key.WithHelp("b/esc", "menu"),
		),
		Scoreboard: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "scores"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// MapKey translates a key message to an action for the given phase.
// ActionNone while playing means the key goes to the answer input.
func (k KeyMap) MapKey(msg tea.KeyMsg, phase game.Phase) core.Action {
	if key.Matches(msg, k.ForceQuit) {
		return core.ActionQuit
	}

	switch phase {
	case game.PhasePlaying:
		switch {
		case key.Matches(msg, k.Submit):
			return core.ActionSubmit
		case key.Matches(msg, k.Abort):
			return core.ActionBack
		}

	case game.PhaseGameOver:
		switch {
		case key.Matches(msg, k.Restart):
			return core.ActionRestart
		case key.Matches(msg, k.Back):
			return core.ActionBack
		case key.Matches(msg, k.Scoreboard):
			return core.ActionScoreboard
		case key.Matches(msg, k.Quit):
			return core.ActionQuit
		}

	default:
		switch {
		case key.Matches(msg, k.PrevFilter):
			return core.ActionPrevFilter
		case key.Matches(msg, k.NextFilter):
			return core.ActionNextFilter
		case key.Matches(msg, k.PrevTier):
			return core.ActionPrevTier
		case key.Matches(msg, k.NextTier):
			return core.ActionNextTier
		case key.Matches(msg, k.Start):
			return core.ActionStart
		case key.Matches(msg, k.Scoreboard):
			return core.ActionScoreboard
		case key.Matches(msg, k.Quit):
			return core.ActionQuit
		}
	}

	return core.ActionNone
}

// phaseHelp adapts the key map to the help bubble for one phase.
type phaseHelp struct {
	keys  KeyMap
	phase game.Phase
}

// ShortHelp returns key bindings for the short help view.
func (h phaseHelp) ShortHelp() []key.Binding {
	k := h.keys
	switch h.phase {
	case game.PhasePlaying:
		return []key.Binding{k.Submit, k.Abort, k.ForceQuit}
	case game.PhaseGameOver:
		return []key.Binding{k.Restart, k.Back, k.Scoreboard, k.Quit}
	default:
		return []key.Binding{k.NextFilter, k.NextTier, k.Start, k.Scoreboard, k.Quit}
	}
}

// FullHelp returns key bindings for the full help view.
func (h phaseHelp) FullHelp() [][]key.Binding {
	k := h.keys
	if h.phase == game.PhaseIdle {
		return [][]key.Binding{
			{k.PrevFilter, k.NextFilter, k.PrevTier, k.NextTier},
			{k.Start, k.Scoreboard, k.Quit},
		}
	}
	return [][]key.Binding{h.ShortHelp()}
}
