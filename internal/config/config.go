// Package config provides YAML-based tuning for the defender engine and its
// servers, and the environment settings the CLI reads.
package config

import (
	"errors"
	"fmt"
	"time"
)

// DefenderConfig contains all tunable parameters of the game.
type DefenderConfig struct {
	Playfield PlayfieldConfig `yaml:"playfield"`
	Motion    MotionConfig    `yaml:"motion"`
	Timing    TimingConfig    `yaml:"timing"`
	Effects   EffectsConfig   `yaml:"effects"`
	Gameplay  GameplayConfig  `yaml:"gameplay"`
	Web       WebConfig       `yaml:"web"`
}

// PlayfieldConfig defines the logical playfield. Positions are in logical
// units, the renderer scales them to terminal rows.
type PlayfieldConfig struct {
	Height        float64 `yaml:"height"`
	SpawnY        float64 `yaml:"spawn_y"`        // Negative spawns above the visible area
	MarkerHeight  float64 `yaml:"marker_height"`  // Defense marker at the bottom
	DefenseMargin float64 `yaml:"defense_margin"` // Gap between marker and threshold
}

// Threshold returns the vertical position at which a problem costs a life.
func (p PlayfieldConfig) Threshold() float64 {
	return p.Height - p.MarkerHeight - p.DefenseMargin
}

// MotionConfig defines how fast problems fall.
type MotionConfig struct {
	FallRate float64 `yaml:"fall_rate"` // Logical units per second
}

// TimingConfig defines the engine's clocked delays.
type TimingConfig struct {
	SpawnInterval time.Duration `yaml:"spawn_interval"`
	HitDelay      time.Duration `yaml:"hit_delay"`       // Laser travel before a hit resolves
	GameOverDelay time.Duration `yaml:"game_over_delay"` // Terminal window before GameOver
}

// EffectsConfig defines how long each kind of effect stays visible.
type EffectsConfig struct {
	Score     time.Duration `yaml:"score"`
	LifeLoss  time.Duration `yaml:"life_loss"`
	Explosion time.Duration `yaml:"explosion"`
	Laser     time.Duration `yaml:"laser"`
	Confetti  time.Duration `yaml:"confetti"`
	Shake     time.Duration `yaml:"shake"`
}

// GameplayConfig defines session rules.
type GameplayConfig struct {
	Lives int `yaml:"lives"`
}

// MaxLives is the upper bound for GameplayConfig.Lives.
const MaxLives = 5

// WebConfig defines the web socket transport.
type WebConfig struct {
	BroadcastHz  int           `yaml:"broadcast_hz"`
	PingInterval time.Duration `yaml:"ping_interval"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
}

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid config")

// Validate checks that the configuration can drive an engine.
func (c DefenderConfig) Validate() error {
	switch {
	case c.Playfield.Height <= 0:
		return fmt.Errorf("%w: playfield.height must be positive", ErrInvalidConfig)
	case c.Playfield.MarkerHeight < 0 || c.Playfield.DefenseMargin < 0:
		return fmt.Errorf("%w: playfield marker and margin must not be negative", ErrInvalidConfig)
	case c.Playfield.Threshold() <= c.Playfield.SpawnY:
		return fmt.Errorf("%w: threshold %.1f is not below spawn_y %.1f", ErrInvalidConfig, c.Playfield.Threshold(), c.Playfield.SpawnY)
	case c.Playfield.Threshold() >= c.Playfield.Height:
		return fmt.Errorf("%w: threshold must be inside the playfield", ErrInvalidConfig)
	case c.Motion.FallRate <= 0:
		return fmt.Errorf("%w: motion.fall_rate must be positive", ErrInvalidConfig)
	}

	durations := []struct {
		name string
		d    time.Duration
	}{
		{"timing.spawn_interval", c.Timing.SpawnInterval},
		{"timing.hit_delay", c.Timing.HitDelay},
		{"timing.game_over_delay", c.Timing.GameOverDelay},
		{"effects.score", c.Effects.Score},
		{"effects.life_loss", c.Effects.LifeLoss},
		{"effects.explosion", c.Effects.Explosion},
		{"effects.laser", c.Effects.Laser},
		{"effects.confetti", c.Effects.Confetti},
		{"effects.shake", c.Effects.Shake},
	}
	for _, d := range durations {
		if d.d <= 0 {
			return fmt.Errorf("%w: %s must be positive", ErrInvalidConfig, d.name)
		}
	}

	if c.Gameplay.Lives < 1 || c.Gameplay.Lives > MaxLives {
		return fmt.Errorf("%w: gameplay.lives must be in [1, %d]", ErrInvalidConfig, MaxLives)
	}
	if c.Web.BroadcastHz <= 0 {
		return fmt.Errorf("%w: web.broadcast_hz must be positive", ErrInvalidConfig)
	}
	return nil
}
