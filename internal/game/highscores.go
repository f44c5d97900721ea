package game

import "sync"

// HighScoreTable maps each category to the best score reached in it. Scores
// never decrease. The table is safe for concurrent use so every session of
// a server can share one.
type HighScoreTable struct {
	mu   sync.RWMutex
	best map[Category]int
}

// HighScoreEntry is one row of the table.
type HighScoreEntry struct {
	Category Category `json:"category"`
	Score    int      `json:"score"`
}

// NewHighScoreTable creates an empty table.
func NewHighScoreTable() *HighScoreTable {
	return &HighScoreTable{best: make(map[Category]int)}
}

// Best returns the best score for the category, 0 if none.
func (h *HighScoreTable) Best(c Category) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.best[c]
}

// Submit records score for the category and reports whether it raised the
// stored best.
func (h *HighScoreTable) Submit(c Category, score int) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if score <= h.best[c] {
		return false
	}
	h.best[c] = score
	return true
}

// Entries returns every category with a score, in Categories() order.
func (h *HighScoreTable) Entries() []HighScoreEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var out []HighScoreEntry
	for _, c := range Categories() {
		if s, ok := h.best[c]; ok {
			out = append(out, HighScoreEntry{Category: c, Score: s})
		}
	}
	return out
}
