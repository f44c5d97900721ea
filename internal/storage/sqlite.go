// Package storage keeps the session history behind the scoreboard.
// Uses the pure-Go modernc.org/sqlite driver with an in-memory database, so
// history lives exactly as long as the process.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/math-defender/internal/game"
)

// memoryDSN opens a private in-memory database. Every pooled connection to
// ":memory:" would get its own empty database, so the pool is pinned to one.
const memoryDSN = ":memory:"

// Store manages the SQLite connection for session history.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// SessionEntry represents one finished session.
type SessionEntry struct {
	ID        int64
	Category  game.Category
	Score     int
	Ticks     uint64
	NewRecord bool
	Aborted   bool
	CreatedAt time.Time
}

// CategoryStats contains aggregated statistics for one category.
type CategoryStats struct {
	Category   game.Category
	Sessions   int
	HighScore  int
	AvgScore   float64
	TotalScore int64
	LastPlayed time.Time
}

// Open creates an empty in-memory store and runs migrations.
func Open() (*Store, error) {
	db, err := sql.Open("sqlite", memoryDSN)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db, now: time.Now}

	// Run migrations
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			filter TEXT NOT NULL,
			tier TEXT NOT NULL,
			score INTEGER NOT NULL,
			ticks INTEGER NOT NULL DEFAULT 0,
			new_record INTEGER NOT NULL DEFAULT 0,
			aborted INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_sessions_category ON sessions(filter, tier);
		CREATE INDEX IF NOT EXISTS idx_sessions_top ON sessions(filter, tier, score DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection. The history is gone afterwards.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RecordSession implements game.SessionRecorder.
func (s *Store) RecordSession(r game.SessionResult) error {
	_, err := s.SaveSession(r)
	return err
}

// Ensure Store implements SessionRecorder
var _ game.SessionRecorder = (*Store)(nil)

// SaveSession records a finished session.
// Returns the ID of the inserted record.
func (s *Store) SaveSession(r game.SessionResult) (int64, error) {
	result, err := s.db.Exec(
		`INSERT INTO sessions (filter, tier, score, ticks, new_record, aborted, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		string(r.Category.Filter), string(r.Category.Tier), r.Score,
		int64(r.Ticks), r.NewRecord, r.Aborted, s.now().UnixMilli(),
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save session: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// TopScores retrieves the top N sessions for the category.
// Results are ordered by score descending, earlier sessions first on ties.
func (s *Store) TopScores(c game.Category, limit int) ([]SessionEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT id, filter, tier, score, ticks, new_record, aborted, created_at
		 FROM sessions
		 WHERE filter = ? AND tier = ?
		 ORDER BY score DESC, id ASC
		 LIMIT ?`,
		string(c.Filter), string(c.Tier), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query scores: %w", err)
	}
	return scanSessions(rows)
}

// RecentSessions retrieves the most recent sessions across all categories.
func (s *Store) RecentSessions(limit int) ([]SessionEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, filter, tier, score, ticks, new_record, aborted, created_at
		 FROM sessions
		 ORDER BY id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query sessions: %w", err)
	}
	return scanSessions(rows)
}

func scanSessions(rows *sql.Rows) ([]SessionEntry, error) {
	defer rows.Close()

	var entries []SessionEntry
	for rows.Next() {
		var e SessionEntry
		var filter, tier string
		var ticks, createdAt int64
		if err := rows.Scan(&e.ID, &filter, &tier, &e.Score, &ticks, &e.NewRecord, &e.Aborted, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.Category = game.Category{Filter: game.OperationFilter(filter), Tier: game.Tier(tier)}
		e.Ticks = uint64(ticks)
		e.CreatedAt = time.UnixMilli(createdAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, nil
}

// ClearCategory deletes all sessions for the category.
func (s *Store) ClearCategory(c game.Category) error {
	_, err := s.db.Exec("DELETE FROM sessions WHERE filter = ? AND tier = ?", string(c.Filter), string(c.Tier))
	if err != nil {
		return fmt.Errorf("storage: cannot clear sessions: %w", err)
	}
	return nil
}

// CategoryStats retrieves aggregated statistics for one category.
func (s *Store) CategoryStats(c game.Category) (*CategoryStats, error) {
	stats := &CategoryStats{Category: c}

	// Get count, high, avg, total
	err := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(MAX(score), 0), COALESCE(AVG(score), 0), COALESCE(SUM(score), 0)
		 FROM sessions WHERE filter = ? AND tier = ?`,
		string(c.Filter), string(c.Tier),
	).Scan(&stats.Sessions, &stats.HighScore, &stats.AvgScore, &stats.TotalScore)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get category stats: %w", err)
	}

	// Get last played
	var lastPlayed int64
	err = s.db.QueryRow(
		`SELECT created_at FROM sessions WHERE filter = ? AND tier = ? ORDER BY id DESC LIMIT 1`,
		string(c.Filter), string(c.Tier),
	).Scan(&lastPlayed)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("storage: cannot get last played: %w", err)
	}
	if err == nil {
		stats.LastPlayed = time.UnixMilli(lastPlayed)
	}

	return stats, nil
}

// AllStats retrieves statistics for every category that has been played.
func (s *Store) AllStats() (map[game.Category]*CategoryStats, error) {
	rows, err := s.db.Query(
		`SELECT filter, tier, COUNT(*), MAX(score), AVG(score), SUM(score), MAX(created_at)
		 FROM sessions
		 GROUP BY filter, tier`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get all stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[game.Category]*CategoryStats)
	for rows.Next() {
		var cs CategoryStats
		var filter, tier string
		var lastPlayed int64
		if err := rows.Scan(&filter, &tier, &cs.Sessions, &cs.HighScore, &cs.AvgScore, &cs.TotalScore, &lastPlayed); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		cs.Category = game.Category{Filter: game.OperationFilter(filter), Tier: game.Tier(tier)}
		cs.LastPlayed = time.UnixMilli(lastPlayed)
		stats[cs.Category] = &cs
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return stats, nil
}
