package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/math-defender/internal/config"
	"github.com/vovakirdan/math-defender/internal/core"
	"github.com/vovakirdan/math-defender/internal/game"
	"github.com/vovakirdan/math-defender/internal/storage"
)

// ServerConfig holds configuration for the web socket server.
type ServerConfig struct {
	// Address is the host:port to listen on (e.g., ":8080").
	Address string

	// TickRate is the engine clock rate for every connection.
	TickRate int
}

// DefaultServerConfig returns a config with sensible defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Address:  ":8080",
		TickRate: core.DefaultConfig().TickRate,
	}
}

// Server serves /ws. Every connection plays on its own engine; all of them
// share one high score table and the session history.
type Server struct {
	config   ServerConfig
	defender config.DefenderConfig
	store    *storage.Store
	scores   *game.HighScoreTable
	logger   *log.Logger
	upgrader websocket.Upgrader
	http     *http.Server

	// Cancelled on shutdown so every session loop ends
	ctx    context.Context
	cancel context.CancelFunc
}

// NewServer creates a web server. store may be nil, in which case sessions
// are not recorded and /scores reports 503.
func NewServer(cfg ServerConfig, defender config.DefenderConfig, store *storage.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if cfg.TickRate <= 0 {
		cfg.TickRate = core.DefaultConfig().TickRate
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		config:   cfg,
		defender: defender,
		store:    store,
		scores:   game.NewHighScoreTable(),
		logger:   logger.WithPrefix("web"),
		upgrader: websocket.Upgrader{
			// Browsers connect from wherever the page is hosted
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		ctx:    ctx,
		cancel: cancel,
	}
	s.http = &http.Server{
		Addr:              cfg.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	mux.HandleFunc("GET /scores", s.handleScores)
	mux.HandleFunc("GET /sessions", s.handleSessions)
	mux.HandleFunc("GET /stats", s.handleStats)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	return mux
}

// handleWebSocket upgrades the request and runs one session until the
// client leaves or the server shuts down. ?codec=json|msgpack picks the
// frame encoding and ?seed= fixes the problem sequence.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	codec, err := CodecByName(r.URL.Query().Get("codec"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	seed := time.Now().UnixNano()
	if raw := r.URL.Query().Get("seed"); raw != "" {
		if seed, err = strconv.ParseInt(raw, 10, 64); err != nil {
			http.Error(w, "seed must be an integer", http.StatusBadRequest)
			return
		}
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client
		s.logger.Warn("upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	defer conn.Close()

	rt := core.RuntimeConfig{TickRate: s.config.TickRate, Seed: seed}
	opts := []game.Option{game.WithHighScores(s.scores)}
	if s.store != nil {
		opts = append(opts, game.WithRecorder(s.store))
	}
	engine := game.New(s.defender, rt, opts...)

	logger := s.logger.With("remote", r.RemoteAddr, "codec", codec.Name())
	sess := newSession(conn, codec, engine, s.defender.Web, rt, logger)

	logger.Info("client connected")
	go sess.readLoop()
	err = sess.run(s.ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Info("client disconnected", "err", err)
		return
	}
	logger.Info("client disconnected")
}

// scoreRow is one history entry in a /scores or /sessions response.
type scoreRow struct {
	Category  game.Category `json:"category"`
	Score     int           `json:"score"`
	Ticks     uint64        `json:"ticks"`
	NewRecord bool          `json:"new_record"`
	Aborted   bool          `json:"aborted"`
	CreatedAt time.Time     `json:"created_at"`
}

// statsRow is the totals of one category.
type statsRow struct {
	Category   game.Category `json:"category"`
	Sessions   int           `json:"sessions"`
	HighScore  int           `json:"high_score"`
	AvgScore   float64       `json:"avg_score"`
	TotalScore int64         `json:"total_score"`
	LastPlayed *time.Time    `json:"last_played,omitempty"`
}

type scoresResponse struct {
	Category  game.Category `json:"category"`
	HighScore int           `json:"high_score"`
	Stats     statsRow      `json:"stats"`
	Sessions  []scoreRow    `json:"sessions"`
}

func newScoreRow(e storage.SessionEntry) scoreRow {
	return scoreRow{
		Category:  e.Category,
		Score:     e.Score,
		Ticks:     e.Ticks,
		NewRecord: e.NewRecord,
		Aborted:   e.Aborted,
		CreatedAt: e.CreatedAt,
	}
}

func newStatsRow(cs *storage.CategoryStats) statsRow {
	row := statsRow{
		Category:   cs.Category,
		Sessions:   cs.Sessions,
		HighScore:  cs.HighScore,
		AvgScore:   cs.AvgScore,
		TotalScore: cs.TotalScore,
	}
	if cs.Sessions > 0 {
		last := cs.LastPlayed
		row.LastPlayed = &last
	}
	return row
}

// handleScores returns the best sessions of one category as JSON:
// /scores?filter=add&tier=easy&limit=10.
func (s *Server) handleScores(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	c := game.Category{Filter: game.FilterAll, Tier: game.TierEasy}

	var err error
	if raw := q.Get("filter"); raw != "" {
		if c.Filter, err = game.ParseFilter(raw); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	if raw := q.Get("tier"); raw != "" {
		if c.Tier, err = game.ParseTier(raw); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	limit, ok := parseLimit(w, r)
	if !ok || !s.requireStore(w) {
		return
	}

	entries, err := s.store.TopScores(c, limit)
	if err != nil {
		s.logger.Error("cannot load scores", "category", c, "err", err)
		http.Error(w, "cannot load scores", http.StatusInternalServerError)
		return
	}
	stats, err := s.store.CategoryStats(c)
	if err != nil {
		s.logger.Error("cannot load stats", "category", c, "err", err)
		http.Error(w, "cannot load scores", http.StatusInternalServerError)
		return
	}

	resp := scoresResponse{
		Category:  c,
		HighScore: s.scores.Best(c),
		Stats:     newStatsRow(stats),
		Sessions:  make([]scoreRow, 0, len(entries)),
	}
	for _, e := range entries {
		resp.Sessions = append(resp.Sessions, newScoreRow(e))
	}
	s.writeJSON(w, resp)
}

// handleSessions returns the latest sessions of every category, newest
// first: /sessions?limit=20.
func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok || !s.requireStore(w) {
		return
	}

	entries, err := s.store.RecentSessions(limit)
	if err != nil {
		s.logger.Error("cannot load sessions", "err", err)
		http.Error(w, "cannot load sessions", http.StatusInternalServerError)
		return
	}

	rows := make([]scoreRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, newScoreRow(e))
	}
	s.writeJSON(w, rows)
}

// handleStats returns the totals of every category played so far, in
// menu order.
func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	if !s.requireStore(w) {
		return
	}

	all, err := s.store.AllStats()
	if err != nil {
		s.logger.Error("cannot load stats", "err", err)
		http.Error(w, "cannot load stats", http.StatusInternalServerError)
		return
	}

	rows := make([]statsRow, 0, len(all))
	for _, c := range game.Categories() {
		if cs, ok := all[c]; ok {
			rows = append(rows, newStatsRow(cs))
		}
	}
	s.writeJSON(w, rows)
}

// parseLimit reads ?limit=, 10 when absent. It replies 400 on bad input.
func parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 10, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
		return 0, false
	}
	return limit, true
}

func (s *Server) requireStore(w http.ResponseWriter) bool {
	if s.store == nil {
		http.Error(w, "session history unavailable", http.StatusServiceUnavailable)
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("cannot write response", "err", err)
	}
}

// ListenAndServe starts the server and blocks until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.logger.Info("starting web server", "address", s.config.Address, "endpoint", "/ws")

	errCh := make(chan error, 1)
	go func() {
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			s.logger.Error("server error", "error", err)
			s.cancel()
			return err
		}
	case <-ctx.Done():
	}

	s.logger.Info("shutting down...")
	return s.Shutdown()
}

// Shutdown ends every session and stops the HTTP server.
func (s *Server) Shutdown() error {
	s.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.http.Shutdown(ctx)
}

// HighScores returns the table shared by every connection.
func (s *Server) HighScores() *game.HighScoreTable {
	return s.scores
}
