package game

import "slices"

// queue holds the falling problems in spawn order. It is owned by the
// engine and every mutation goes through it so the active flag can be
// re-derived in one place.
type queue struct {
	items []*Problem
}

// push appends a problem and re-derives the active flag.
func (q *queue) push(p *Problem) {
	q.items = append(q.items, p)
	q.refreshActive()
}

// advance moves every unlocked problem down by delta.
func (q *queue) advance(delta float64) {
	for _, p := range q.items {
		if !p.Locked {
			p.Y += delta
		}
	}
}

// sweep removes every problem at or past the threshold and returns how many
// were removed.
func (q *queue) sweep(threshold float64) int {
	before := len(q.items)
	q.items = slices.DeleteFunc(q.items, func(p *Problem) bool {
		return p.Y >= threshold
	})
	removed := before - len(q.items)
	if removed > 0 {
		q.refreshActive()
	}
	return removed
}

// remove deletes the problem with the given ID. Returns false if it is gone.
func (q *queue) remove(id uint64) (*Problem, bool) {
	for i, p := range q.items {
		if p.ID == id {
			q.items = slices.Delete(q.items, i, i+1)
			q.refreshActive()
			return p, true
		}
	}
	return nil, false
}

// active returns the answerable problem, or nil when the queue is empty.
func (q *queue) active() *Problem {
	if len(q.items) == 0 {
		return nil
	}
	return q.items[0]
}

// refreshActive marks the oldest survivor active and every other problem
// inactive. Recomputed from scratch after each mutation.
func (q *queue) refreshActive() {
	for i, p := range q.items {
		p.Active = i == 0
	}
}

func (q *queue) clear() {
	q.items = nil
}

// copyOut returns value copies of the problems in spawn order.
func (q *queue) copyOut() []Problem {
	out := make([]Problem, len(q.items))
	for i, p := range q.items {
		out[i] = *p
	}
	return out
}
