// Package game implements the Math Defender engine: problem generation, the
// spawn and motion loop, collision with the defense line, scoring and lives,
// and the cosmetic effect registry.
//
// The engine is a single owner. Every mutation happens inside Step or one of
// the command methods, so callers driving it from several goroutines must
// serialize access themselves (the TUI does it through the Bubble Tea update
// loop, the web transport through one goroutine per connection).
package game

import (
	"errors"
	"math"
	"math/rand"
	"strconv"
	"strings"

	"github.com/vovakirdan/math-defender/internal/config"
	"github.com/vovakirdan/math-defender/internal/core"
)

var (
	// ErrSessionActive is returned by commands that are only valid between sessions.
	ErrSessionActive = errors.New("session in progress")
	// ErrNoSession is returned by Restart when there is no finished session.
	ErrNoSession = errors.New("no finished session to restart")
)

// AnswerResult tells the presentation layer what a submission did. The input
// buffer is cleared for every result.
type AnswerResult string

const (
	AnswerIgnored   AnswerResult = "ignored"   // Not playing, no active problem, or hit already pending
	AnswerInvalid   AnswerResult = "invalid"   // Not a number
	AnswerCorrect   AnswerResult = "correct"   // Laser fired at the active problem
	AnswerIncorrect AnswerResult = "incorrect" // Wrong number, shake only
)

// SessionResult describes a finished or aborted session.
type SessionResult struct {
	Category  Category
	Score     int
	Ticks     uint64 // Session length on the engine clock
	NewRecord bool
	Aborted   bool
}

// SessionRecorder receives every session once it ends.
type SessionRecorder interface {
	RecordSession(r SessionResult) error
}

// Option configures an Engine.
type Option func(*Engine)

// WithHighScores shares a high score table between engines.
func WithHighScores(t *HighScoreTable) Option {
	return func(e *Engine) {
		if t != nil {
			e.highScores = t
		}
	}
}

// WithRecorder reports finished sessions to r.
func WithRecorder(r SessionRecorder) Option {
	return func(e *Engine) {
		e.recorder = r
	}
}

// Engine owns one player's game.
type Engine struct {
	cfg        config.DefenderConfig
	rt         core.RuntimeConfig
	gen        *Generator
	fx         *rand.Rand // Cosmetic randomness, kept apart from problem generation
	highScores *HighScoreTable
	recorder   SessionRecorder

	// Derived from the config at the runtime tick rate
	delta         float64
	threshold     float64
	maxLives      int
	hitDelay      uint64
	gameOverDelay uint64
	ttl           map[EffectKind]int

	phase    Phase
	filter   OperationFilter
	tier     Tier
	score    int
	lives    int
	tick     uint64
	started  uint64 // Tick the current session started at
	nextID   uint64
	terminal bool // Lives hit zero, waiting for the game over transition

	sessionBest int // Category best when the session started
	newRecord   bool
	recorded    bool

	queue    queue
	spawner  Spawner
	moving   bool
	effects  *EffectRegistry
	timeline Timeline
	events   []Event
}

// New creates an idle engine with filter "all" and tier easy.
func New(cfg config.DefenderConfig, rt core.RuntimeConfig, opts ...Option) *Engine {
	if rt.TickRate <= 0 {
		rt.TickRate = core.DefaultConfig().TickRate
	}
	e := &Engine{
		cfg:       cfg,
		rt:        rt,
		gen:       NewGenerator(rt.Seed, cfg.Playfield.SpawnY),
		fx:        rand.New(rand.NewSource(rt.Seed + 1)),
		delta:     cfg.Motion.FallRate / float64(rt.TickRate),
		threshold: cfg.Playfield.Threshold(),
		maxLives:  core.Clamp(cfg.Gameplay.Lives, 1, config.MaxLives),
		hitDelay:  uint64(rt.Ticks(cfg.Timing.HitDelay)),
		ttl: map[EffectKind]int{
			EffectScore:     rt.Ticks(cfg.Effects.Score),
			EffectLifeLoss:  rt.Ticks(cfg.Effects.LifeLoss),
			EffectExplosion: rt.Ticks(cfg.Effects.Explosion),
			EffectLaser:     rt.Ticks(cfg.Effects.Laser),
			EffectConfetti:  rt.Ticks(cfg.Effects.Confetti),
			EffectShake:     rt.Ticks(cfg.Effects.Shake),
		},
		gameOverDelay: uint64(rt.Ticks(cfg.Timing.GameOverDelay)),
		phase:         PhaseIdle,
		filter:        FilterAll,
		tier:          TierEasy,
		spawner:       NewSpawner(rt.Ticks(cfg.Timing.SpawnInterval)),
		effects:       NewEffectRegistry(),
	}
	e.lives = e.maxLives
	for _, opt := range opts {
		opt(e)
	}
	if e.highScores == nil {
		e.highScores = NewHighScoreTable()
	}
	return e
}

// Phase returns the session phase.
func (e *Engine) Phase() Phase { return e.phase }

// Score returns the current score.
func (e *Engine) Score() int { return e.score }

// Lives returns the remaining lives.
func (e *Engine) Lives() int { return e.lives }

// Tick returns the engine clock.
func (e *Engine) Tick() uint64 { return e.tick }

// Category returns the selected filter and tier.
func (e *Engine) Category() Category {
	return Category{Filter: e.filter, Tier: e.tier}
}

// HighScores returns the table the engine writes to.
func (e *Engine) HighScores() *HighScoreTable { return e.highScores }

// SetOperationFilter selects the operation filter. Rejected while playing.
func (e *Engine) SetOperationFilter(f OperationFilter) error {
	if e.phase == PhasePlaying {
		return ErrSessionActive
	}
	if !f.Valid() {
		return ErrUnknownFilter
	}
	e.filter = f
	return nil
}

// SetDifficultyTier selects the tier. Rejected while playing.
func (e *Engine) SetDifficultyTier(t Tier) error {
	if e.phase == PhasePlaying {
		return ErrSessionActive
	}
	if !t.Valid() {
		return ErrUnknownTier
	}
	e.tier = t
	return nil
}

// Start begins a session from Idle or GameOver.
func (e *Engine) Start() error {
	if e.phase == PhasePlaying {
		return ErrSessionActive
	}
	e.beginSession()
	return nil
}

// Restart begins a new session after a game over. The high score for the
// ended session is re-checked before the score resets.
func (e *Engine) Restart() error {
	switch e.phase {
	case PhasePlaying:
		return ErrSessionActive
	case PhaseIdle:
		return ErrNoSession
	}
	e.highScores.Submit(e.Category(), e.score)
	e.beginSession()
	return nil
}

// AbortSession returns to Idle and cancels everything pending. Calling it
// again while Idle changes nothing. A session whose lives are already gone
// ends as a game over, not an abort.
func (e *Engine) AbortSession() {
	if e.phase == PhaseIdle {
		return
	}
	if e.phase == PhasePlaying && e.terminal {
		e.gameOver()
	}
	if e.phase == PhasePlaying {
		e.highScores.Submit(e.Category(), e.score)
		e.record(true)
		e.emit(EventSessionAborted, 0)
	}
	e.resetBoundary()
	e.phase = PhaseIdle
	e.score = 0
	e.newRecord = false
}

// beginSession resets per-session state and starts both periodic processes.
func (e *Engine) beginSession() {
	e.resetBoundary()
	e.phase = PhasePlaying
	e.score = 0
	e.started = e.tick
	e.sessionBest = e.highScores.Best(e.Category())
	e.newRecord = false
	e.recorded = false
	e.spawner.Start()
	e.moving = true
	e.emit(EventSessionStarted, 0)
}

// resetBoundary cancels everything that belongs to the current session.
func (e *Engine) resetBoundary() {
	e.timeline.Cancel()
	e.effects.Clear()
	e.queue.clear()
	e.spawner.Stop()
	e.moving = false
	e.terminal = false
	e.lives = e.maxLives
}

// Step advances the engine clock by one tick. Motion and collision run
// before deferred callbacks so a pending hit never removes a problem the
// collision sweep already took.
func (e *Engine) Step() {
	e.tick++

	if e.phase == PhasePlaying && !e.terminal {
		if e.moving {
			e.move()
		}
		if !e.terminal && e.spawner.Tick() {
			e.spawn()
		}
	}

	e.timeline.RunDue(e.tick)
	e.effects.Sweep(e.tick)
}

// move advances every problem and handles the defense line crossing. At most
// one life is lost per tick; every problem past the line is cleared.
func (e *Engine) move() {
	e.queue.advance(e.delta)
	if e.queue.sweep(e.threshold) > 0 {
		e.loseLife()
	}
}

func (e *Engine) spawn() {
	p := e.gen.Generate(e.filter, e.tier)
	e.nextID++
	p.ID = e.nextID
	e.queue.push(&p)
	e.emit(EventProblemSpawned, p.ID)
}

func (e *Engine) loseLife() {
	e.lives--
	e.addEffect(EffectLifeLoss, 0.5, e.threshold, 0, "-1")
	e.emit(EventLifeLost, 0)

	if e.lives > 0 {
		return
	}

	// Terminal window: freeze the field, show the rocket exploding, then
	// move to GameOver once the explosion has played.
	e.terminal = true
	e.spawner.Stop()
	e.moving = false
	e.highScores.Submit(e.Category(), e.score)
	e.addEffect(EffectExplosion, 0.5, e.cfg.Playfield.Height-e.cfg.Playfield.MarkerHeight/2, 0, "")
	e.timeline.Schedule(e.tick+e.gameOverDelay, e.gameOver)
}

// gameOver ends the session after the terminal window.
func (e *Engine) gameOver() {
	if e.phase != PhasePlaying || !e.terminal {
		return
	}
	e.terminal = false
	e.phase = PhaseGameOver
	e.queue.clear()
	e.spawner.Stop()
	e.moving = false
	e.lives = e.maxLives

	e.highScores.Submit(e.Category(), e.score)
	e.record(false)
	e.emit(EventGameOver, 0)
	if e.newRecord {
		e.celebrate()
		e.emit(EventNewRecord, 0)
	}
}

// record reports the session once to the recorder.
func (e *Engine) record(aborted bool) {
	if e.recorded {
		return
	}
	e.recorded = true
	e.newRecord = e.score > e.sessionBest
	if e.recorder == nil {
		return
	}
	err := e.recorder.RecordSession(SessionResult{
		Category:  e.Category(),
		Score:     e.score,
		Ticks:     e.tick - e.started,
		NewRecord: e.newRecord,
		Aborted:   aborted,
	})
	if err != nil {
		e.emit(EventRecordFailed, 0)
		e.events[len(e.events)-1].Err = err.Error()
	}
}

// celebrate scatters confetti across the playfield.
func (e *Engine) celebrate() {
	const pieces = 12
	for i := 0; i < pieces; i++ {
		x := 0.1 + 0.8*e.fx.Float64()
		y := e.cfg.Playfield.Height * (0.1 + 0.6*e.fx.Float64())
		e.addEffect(EffectConfetti, x, y, i, "")
	}
}

// SubmitAnswer evaluates raw player text against the active problem.
func (e *Engine) SubmitAnswer(raw string) AnswerResult {
	if e.phase != PhasePlaying || e.terminal {
		return AnswerIgnored
	}
	value, ok := parseAnswer(raw)
	if !ok {
		return AnswerInvalid
	}
	p := e.queue.active()
	if p == nil || p.Locked {
		return AnswerIgnored
	}

	if value != float64(p.Answer) {
		e.addEffect(EffectShake, 0.5, e.cfg.Playfield.Height, 0, "")
		e.emit(EventAnswerWrong, p.ID)
		return AnswerIncorrect
	}

	p.Locked = true
	e.addEffect(EffectLaser, 0.5, p.Y, 0, "")
	e.emit(EventAnswerCorrect, p.ID)
	id := p.ID
	e.timeline.Schedule(e.tick+e.hitDelay, func() { e.resolveHit(id) })
	return AnswerCorrect
}

// resolveHit removes a laser-locked problem and scores it. The problem may
// already be gone, in which case nothing happens.
func (e *Engine) resolveHit(id uint64) {
	if e.phase != PhasePlaying || e.terminal {
		return
	}
	p, ok := e.queue.remove(id)
	if !ok {
		return
	}
	e.score++
	e.highScores.Submit(e.Category(), e.score)
	e.addEffect(EffectScore, 0.5, p.Y, 0, "+1")
	e.addEffect(EffectExplosion, 0.5, p.Y, 0, "")
	e.emit(EventProblemHit, id)
}

func (e *Engine) addEffect(kind EffectKind, x, y float64, variant int, text string) {
	e.effects.Add(Effect{
		Kind:        kind,
		X:           x,
		Y:           y,
		Variant:     variant,
		Text:        text,
		CreatedTick: e.tick,
		TTL:         e.ttl[kind],
	})
}

// parseAnswer accepts any finite decimal number, surrounding space ignored.
func parseAnswer(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
