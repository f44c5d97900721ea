package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/defender.yaml
var defaultDefenderYAML []byte

// Default returns the hardcoded default configuration. It matches the
// embedded defaults/defender.yaml and is used when even that fails to parse.
func Default() DefenderConfig {
	return DefenderConfig{
		Playfield: PlayfieldConfig{
			Height:        100,
			SpawnY:        -8,
			MarkerHeight:  10,
			DefenseMargin: 4,
		},
		Motion: MotionConfig{
			FallRate: 20,
		},
		Timing: TimingConfig{
			SpawnInterval: 2 * time.Second,
			HitDelay:      300 * time.Millisecond,
			GameOverDelay: time.Second,
		},
		Effects: EffectsConfig{
			Score:     time.Second,
			LifeLoss:  time.Second,
			Explosion: time.Second,
			Laser:     300 * time.Millisecond,
			Confetti:  2 * time.Second,
			Shake:     500 * time.Millisecond,
		},
		Gameplay: GameplayConfig{
			Lives: MaxLives,
		},
		Web: WebConfig{
			BroadcastHz:  20,
			PingInterval: 25 * time.Second,
			ReadTimeout:  60 * time.Second,
		},
	}
}

// DefaultYAML returns the embedded default YAML.
func DefaultYAML() []byte {
	return defaultDefenderYAML
}
