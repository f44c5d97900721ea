package game

import "sort"

// EffectKind identifies what an effect depicts.
type EffectKind string

const (
	EffectScore     EffectKind = "score"     // "+1" pop where a problem was hit
	EffectLifeLoss  EffectKind = "life_loss" // Marker at the defense line
	EffectExplosion EffectKind = "explosion" // Burst at a destroyed problem or the rocket
	EffectConfetti  EffectKind = "confetti"  // New high score celebration
	EffectLaser     EffectKind = "laser"     // Beam from the rocket to a problem
	EffectShake     EffectKind = "shake"     // Incorrect answer
)

// Effect is a short-lived cosmetic record. It carries no gameplay authority.
type Effect struct {
	ID          uint64     `json:"id"`
	Kind        EffectKind `json:"kind"`
	X           float64    `json:"x"` // Fraction of the playfield width, 0..1
	Y           float64    `json:"y"` // Logical units
	Variant     int        `json:"variant"`
	Text        string     `json:"text,omitempty"`
	CreatedTick uint64     `json:"created_tick"`
	TTL         int        `json:"ttl"` // Lifetime in ticks
}

// ExpiresAt returns the first tick at which the effect is gone.
func (e Effect) ExpiresAt() uint64 {
	return e.CreatedTick + uint64(e.TTL)
}

// Progress returns how far through its lifetime the effect is, 0..1.
func (e Effect) Progress(tick uint64) float64 {
	if e.TTL <= 0 || tick >= e.ExpiresAt() {
		return 1
	}
	if tick <= e.CreatedTick {
		return 0
	}
	return float64(tick-e.CreatedTick) / float64(e.TTL)
}

// EffectRegistry holds live effects keyed by ID. Expiry is a single sweep
// per tick on the engine clock.
type EffectRegistry struct {
	nextID  uint64
	effects map[uint64]Effect
}

// NewEffectRegistry creates an empty registry.
func NewEffectRegistry() *EffectRegistry {
	return &EffectRegistry{effects: make(map[uint64]Effect)}
}

// Add stores the effect under a fresh ID and returns that ID.
// Effects with a non-positive TTL are dropped.
func (r *EffectRegistry) Add(e Effect) uint64 {
	if e.TTL <= 0 {
		return 0
	}
	r.nextID++
	e.ID = r.nextID
	r.effects[e.ID] = e
	return e.ID
}

// Sweep removes every effect that has expired by tick and returns how many
// were removed.
func (r *EffectRegistry) Sweep(tick uint64) int {
	removed := 0
	for id, e := range r.effects {
		if tick >= e.ExpiresAt() {
			delete(r.effects, id)
			removed++
		}
	}
	return removed
}

// Clear drops every effect.
func (r *EffectRegistry) Clear() {
	clear(r.effects)
}

// Len returns the number of live effects.
func (r *EffectRegistry) Len() int {
	return len(r.effects)
}

// Live returns the effects still visible at tick, oldest first.
func (r *EffectRegistry) Live(tick uint64) []Effect {
	out := make([]Effect, 0, len(r.effects))
	for _, e := range r.effects {
		if tick < e.ExpiresAt() {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Count returns how many live effects are of the given kind.
func (r *EffectRegistry) Count(kind EffectKind) int {
	n := 0
	for _, e := range r.effects {
		if e.Kind == kind {
			n++
		}
	}
	return n
}
