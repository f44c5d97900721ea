package tui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/math-defender/internal/config"
	"github.com/vovakirdan/math-defender/internal/core"
	"github.com/vovakirdan/math-defender/internal/game"
	"github.com/vovakirdan/math-defender/internal/storage"
)

// Lines below the playfield: status, answer input and help.
const footerRows = 3

var (
	statusStyles = map[game.AnswerResult]lipgloss.Style{
		game.AnswerCorrect:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		game.AnswerIncorrect: lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		game.AnswerInvalid:   lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
		game.AnswerIgnored:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	}
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Model is the Bubble Tea model for one player. It owns the engine and is
// the only thing that touches it, so all engine access is serialized by the
// update loop.
type Model struct {
	engine   *game.Engine
	screen   *core.Screen
	store    *storage.Store
	logger   *log.Logger
	config   core.RuntimeConfig
	keys     KeyMap
	help     help.Model
	input    textinput.Model
	board    *ScoreboardModel
	status   string
	result   game.AnswerResult
	width    int
	height   int
	quitting bool
}

// NewModel creates a model driving engine. store may be nil, in which case
// the scoreboard reports that history is unavailable. A nil logger discards.
func NewModel(engine *game.Engine, store *storage.Store, cfg core.RuntimeConfig, logger *log.Logger) Model {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	ti := textinput.New()
	ti.Prompt = "answer ▸ "
	ti.Placeholder = "type and press enter"
	ti.CharLimit = 12
	ti.Width = 24

	h := help.New()
	h.Width = cfg.ScreenW

	return Model{
		engine: engine,
		screen: core.NewScreen(cfg.ScreenW, core.Max(cfg.ScreenH-footerRows, 1)),
		store:  store,
		logger: logger,
		config: cfg,
		keys:   DefaultKeyMap(),
		help:   h,
		input:  ti,
		width:  cfg.ScreenW,
		height: cfg.ScreenH,
	}
}

// EngineOptions returns the engine options that connect it to the shared
// high score table and, when available, the session history.
func EngineOptions(scores *game.HighScoreTable, store *storage.Store) []game.Option {
	opts := []game.Option{game.WithHighScores(scores)}
	if store != nil {
		opts = append(opts, game.WithRecorder(store))
	}
	return opts
}

// Init starts the engine clock.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(m.config.TickInterval()), textinput.Blink)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.board != nil {
			return m.updateScoreboard(msg)
		}
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case TickMsg:
		return m.handleTick()
	}

	if m.board != nil {
		return m.updateScoreboard(msg)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleKey maps keyboard input to engine commands.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+s" {
		m.saveScreenshot()
		return m, nil
	}

	phase := m.engine.Phase()
	switch m.keys.MapKey(msg, phase) {
	case core.ActionQuit:
		m.engine.AbortSession()
		m.logEvents()
		m.quitting = true
		return m, tea.Quit

	case core.ActionSubmit:
		m.result = m.engine.SubmitAnswer(m.input.Value())
		m.status = answerStatus(m.result, m.input.Value())
		m.input.Reset()
		m.logEvents()
		return m, nil

	case core.ActionBack:
		m.engine.AbortSession()
		m.logEvents()
		m.input.Reset()
		m.input.Blur()
		m.setNotice("Back at the category screen")
		return m, nil

	case core.ActionPrevFilter:
		return m.setFilter(m.engine.Category().Filter.Cycle(-1))
	case core.ActionNextFilter:
		return m.setFilter(m.engine.Category().Filter.Cycle(1))
	case core.ActionPrevTier:
		return m.setTier(m.engine.Category().Tier.Cycle(-1))
	case core.ActionNextTier:
		return m.setTier(m.engine.Category().Tier.Cycle(1))

	case core.ActionStart:
		if err := m.engine.Start(); err != nil {
			m.setNotice(err.Error())
			return m, nil
		}
		return m.beginPlaying()

	case core.ActionRestart:
		if err := m.engine.Restart(); err != nil {
			m.setNotice(err.Error())
			return m, nil
		}
		return m.beginPlaying()

	case core.ActionScoreboard:
		board := NewScoreboardModel(m.store, m.engine.Category(), m.width, m.height, m.config.TickRate)
		m.board = &board
		return m, board.Init()
	}

	if phase == game.PhasePlaying {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) beginPlaying() (tea.Model, tea.Cmd) {
	m.logEvents()
	m.input.Reset()
	m.status, m.result = "", ""
	return m, m.input.Focus()
}

func (m Model) setFilter(f game.OperationFilter) (tea.Model, tea.Cmd) {
	if err := m.engine.SetOperationFilter(f); err != nil {
		m.setNotice(err.Error())
	}
	return m, nil
}

func (m Model) setTier(t game.Tier) (tea.Model, tea.Cmd) {
	if err := m.engine.SetDifficultyTier(t); err != nil {
		m.setNotice(err.Error())
	}
	return m, nil
}

func (m *Model) setNotice(text string) {
	m.status = text
	m.result = ""
}

// updateScoreboard forwards messages to the open scoreboard.
func (m Model) updateScoreboard(msg tea.Msg) (tea.Model, tea.Cmd) {
	board, cmd := m.board.Update(msg)
	switch {
	case board.IsQuitting():
		m.engine.AbortSession()
		m.logEvents()
		m.quitting = true
		return m, tea.Quit
	case board.Closed():
		m.board = nil
		return m, nil
	}
	m.board = &board
	return m, cmd
}

// handleResize processes window resize events. The engine works in logical
// units, so a resize only changes how the next frame is drawn.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.config.ScreenW = msg.Width
	m.config.ScreenH = msg.Height
	m.screen.Resize(msg.Width, core.Max(msg.Height-footerRows, 1))
	m.help.Width = msg.Width

	if m.board != nil {
		return m.updateScoreboard(msg)
	}
	return m, nil
}

// handleTick advances the engine clock.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	before := m.engine.Phase()
	m.engine.Step()
	m.logEvents()

	if before == game.PhasePlaying && m.engine.Phase() != game.PhasePlaying {
		m.input.Reset()
		m.input.Blur()
	}

	return m, tickCmd(m.config.TickInterval())
}

// logEvents drains engine events into the logger.
func (m *Model) logEvents() {
	for _, ev := range m.engine.Events() {
		switch ev.Kind {
		case game.EventRecordFailed:
			m.logger.Warn("session not recorded", "category", ev.Category, "score", ev.Score, "err", ev.Err)
			m.setNotice("Session history is unavailable")
		case game.EventGameOver, game.EventSessionAborted, game.EventNewRecord, game.EventSessionStarted:
			m.logger.Info(string(ev.Kind), "category", ev.Category, "score", ev.Score, "tick", ev.Tick)
		default:
			m.logger.Debug(string(ev.Kind), "problem", ev.ProblemID, "score", ev.Score, "lives", ev.Lives, "tick", ev.Tick)
		}
	}
}

func answerStatus(r game.AnswerResult, raw string) string {
	switch r {
	case game.AnswerCorrect:
		return "Direct hit!"
	case game.AnswerIncorrect:
		return fmt.Sprintf("%s is not it", strings.TrimSpace(raw))
	case game.AnswerInvalid:
		return "Numbers only"
	default:
		return ""
	}
}

// saveScreenshot writes the current frame as plain text.
func (m *Model) saveScreenshot() {
	DrawSnapshot(m.screen, m.engine.Snapshot())

	dir := filepath.Join(config.UserDir(), "screenshots")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		m.logger.Warn("cannot create screenshot directory", "err", err)
		return
	}

	name := fmt.Sprintf("defender_%s.txt", time.Now().Format("20060102_150405"))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(m.screen.String()), 0o600); err != nil {
		m.logger.Warn("cannot save screenshot", "err", err)
		return
	}
	m.setNotice("Saved " + path)
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.board != nil {
		return m.board.View()
	}

	snap := m.engine.Snapshot()
	DrawSnapshot(m.screen, snap)

	var b strings.Builder
	b.WriteString(RenderScreen(m.screen))
	b.WriteString("\n")

	if style, ok := statusStyles[m.result]; ok {
		b.WriteString(style.Render(m.status))
	} else {
		b.WriteString(noticeStyle.Render(m.status))
	}
	b.WriteString("\n")

	if snap.Phase == game.PhasePlaying {
		b.WriteString(m.input.View())
	}
	b.WriteString("\n")

	b.WriteString(helpStyle.Render(m.help.View(phaseHelp{keys: m.keys, phase: snap.Phase})))
	return b.String()
}

// Run starts the Bubble Tea program for a local player.
func Run(engine *game.Engine, store *storage.Store, cfg core.RuntimeConfig, logger *log.Logger) error {
	model := NewModel(engine, store, cfg, logger)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
