package main

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/math-defender/internal/config"
	"github.com/vovakirdan/math-defender/internal/core"
	"github.com/vovakirdan/math-defender/internal/game"
	"github.com/vovakirdan/math-defender/internal/platform/tui"
	"github.com/vovakirdan/math-defender/internal/storage"
)

var (
	flagFilter  string
	flagTier    string
	flagLogFile string
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play in this terminal",
	Long: `Start a game in this terminal.

Controls (menu):
  Left/Right   - Operation filter
  Up/Down      - Difficulty tier
  Enter/Space  - Start
  Tab          - Scoreboard
  Q/Ctrl+C     - Quit

Controls (playing):
  Type digits, Enter to fire
  Esc          - Abort to menu

Controls (game over):
  R            - Restart
  B/Esc        - Back to menu

Filters: + - x / all
Tiers:   easy, medium, hard

Logs are discarded unless --log-file is given (default path
~/.defender/defender.log).

Examples:
  defender play
  defender play --filter / --tier medium
  defender play --seed 42 --log-file --log-level debug`,
	Args: cobra.NoArgs,
	Run:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagFilter, "filter", "all", "Initial operation filter: + - x / all")
	playCmd.Flags().StringVar(&flagTier, "tier", "easy", "Initial difficulty tier: easy, medium, hard")
	playCmd.Flags().StringVar(&flagLogFile, "log-file", "", "Write logs to this file")
	playCmd.Flags().Lookup("log-file").NoOptDefVal = defaultLogPath()
}

func runPlay(_ *cobra.Command, _ []string) {
	defender, _ := loadConfig()

	filter, err := game.ParseFilter(flagFilter)
	if err != nil {
		fail(err)
	}
	tier, err := game.ParseTier(flagTier)
	if err != nil {
		fail(err)
	}

	// The TUI owns the terminal, so logs go to a file or nowhere
	var logOut io.Writer = io.Discard
	if flagLogFile != "" {
		if err := os.MkdirAll(filepath.Dir(flagLogFile), 0o755); err != nil {
			fail(err)
		}
		f, err := os.OpenFile(flagLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fail(err)
		}
		defer f.Close()
		logOut = f
	}
	logger, err := newLogger(logOut)
	if err != nil {
		fail(err)
	}

	width, height := 80, 24 // Defaults
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}

	seed := flagSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	cfg := core.RuntimeConfig{
		ScreenW:  width,
		ScreenH:  height,
		TickRate: flagFPS,
		Seed:     seed,
	}

	// Session history feeds the scoreboard; the game still works without it
	store, err := storage.Open()
	if err != nil {
		logger.Warn("could not open session history", "error", err)
		store = nil
	}

	engine := game.New(defender, cfg, tui.EngineOptions(game.NewHighScoreTable(), store)...)
	// Both are valid and the engine is idle, so neither can fail
	_ = engine.SetOperationFilter(filter)
	_ = engine.SetDifficultyTier(tier)

	logger.Info("starting", "category", engine.Category(), "seed", seed, "tick_rate", cfg.TickRate)
	runErr := tui.Run(engine, store, cfg, logger)

	// Close store before potential exit
	if store != nil {
		store.Close()
	}

	if runErr != nil {
		fail(runErr)
	}
}

func defaultLogPath() string {
	dir := config.UserDir()
	if dir == "" {
		return "defender.log"
	}
	return filepath.Join(dir, "defender.log")
}
