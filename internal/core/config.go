package core

import "time"

// RuntimeConfig contains configuration passed to the engine at initialization.
// The engine uses it for its clock rate and for deterministic problem generation.
type RuntimeConfig struct {
	ScreenW  int   // Screen width in characters
	ScreenH  int   // Screen height in characters
	TickRate int   // Simulation ticks per second (default 60)
	Seed     int64 // RNG seed for deterministic gameplay
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:  80,
		ScreenH:  24,
		TickRate: 60,
		Seed:     0, // 0 means use current time in platform layer
	}
}

// Ticks converts a wall-clock duration into a whole number of ticks at the
// configured rate. Any positive duration lasts at least one tick.
func (c RuntimeConfig) Ticks(d time.Duration) int {
	rate := c.TickRate
	if rate <= 0 {
		rate = 60
	}
	if d <= 0 {
		return 0
	}
	ticks := int((d*time.Duration(rate) + time.Second/2) / time.Second)
	if ticks < 1 {
		ticks = 1
	}
	return ticks
}

// TickInterval returns the wall-clock length of one tick.
func (c RuntimeConfig) TickInterval() time.Duration {
	rate := c.TickRate
	if rate <= 0 {
		rate = 60
	}
	return time.Second / time.Duration(rate)
}
