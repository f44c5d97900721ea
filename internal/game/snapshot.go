package game

// Phase is the session state.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhasePlaying  Phase = "playing"
	PhaseGameOver Phase = "game_over"
)

// Snapshot is a read-only copy of the engine state for presentation layers.
// Nothing in it aliases engine memory.
type Snapshot struct {
	Tick       uint64           `json:"tick"`
	Phase      Phase            `json:"phase"`
	Terminal   bool             `json:"terminal"` // Lives exhausted, game over pending
	Filter     OperationFilter  `json:"filter"`
	Tier       Tier             `json:"tier"`
	Score      int              `json:"score"`
	Lives      int              `json:"lives"`
	MaxLives   int              `json:"max_lives"`
	HighScore  int              `json:"high_score"` // Best for the current category
	NewRecord  bool             `json:"new_record"`
	HighScores []HighScoreEntry `json:"high_scores"`
	Problems   []Problem        `json:"problems"`
	Effects    []Effect         `json:"effects"`

	// Playfield geometry in logical units
	Height    float64 `json:"height"`
	Threshold float64 `json:"threshold"`
	SpawnY    float64 `json:"spawn_y"`
}

// Category returns the snapshot's category.
func (s Snapshot) Category() Category {
	return Category{Filter: s.Filter, Tier: s.Tier}
}

// ActiveProblem returns the answerable problem, if any.
func (s Snapshot) ActiveProblem() (Problem, bool) {
	for _, p := range s.Problems {
		if p.Active {
			return p, true
		}
	}
	return Problem{}, false
}

// Snapshot returns a deep copy of the current state.
func (e *Engine) Snapshot() Snapshot {
	return Snapshot{
		Tick:       e.tick,
		Phase:      e.phase,
		Terminal:   e.terminal,
		Filter:     e.filter,
		Tier:       e.tier,
		Score:      e.score,
		Lives:      e.lives,
		MaxLives:   e.maxLives,
		HighScore:  e.highScores.Best(e.Category()),
		NewRecord:  e.newRecord,
		HighScores: e.highScores.Entries(),
		Problems:   e.queue.copyOut(),
		Effects:    e.effects.Live(e.tick),
		Height:     e.cfg.Playfield.Height,
		Threshold:  e.threshold,
		SpawnY:     e.cfg.Playfield.SpawnY,
	}
}
