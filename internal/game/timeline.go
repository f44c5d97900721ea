package game

import "sort"

// deferred is a callback scheduled for a future tick.
type deferred struct {
	due uint64
	seq uint64
	gen uint64
	fn  func()
}

// Timeline runs callbacks at a future tick of the engine clock. Cancel
// drops everything scheduled so far, and a callback scheduled before a
// Cancel never runs even if it was already collected for the current tick.
type Timeline struct {
	gen     uint64
	seq     uint64
	pending []deferred
}

// Schedule runs fn once the clock reaches due.
func (t *Timeline) Schedule(due uint64, fn func()) {
	t.seq++
	t.pending = append(t.pending, deferred{due: due, seq: t.seq, gen: t.gen, fn: fn})
}

// Cancel drops every pending callback.
func (t *Timeline) Cancel() {
	t.gen++
	t.pending = nil
}

// Len returns the number of pending callbacks.
func (t *Timeline) Len() int {
	return len(t.pending)
}

// RunDue runs every callback due at or before tick, in due-tick then
// scheduling order. Callbacks may schedule or cancel.
func (t *Timeline) RunDue(tick uint64) int {
	var due []deferred
	kept := t.pending[:0]
	for _, d := range t.pending {
		if d.due <= tick {
			due = append(due, d)
		} else {
			kept = append(kept, d)
		}
	}
	t.pending = kept
	if len(due) == 0 {
		return 0
	}

	sort.Slice(due, func(i, j int) bool {
		if due[i].due != due[j].due {
			return due[i].due < due[j].due
		}
		return due[i].seq < due[j].seq
	})

	ran := 0
	for _, d := range due {
		if d.gen != t.gen {
			continue
		}
		d.fn()
		ran++
	}
	return ran
}
