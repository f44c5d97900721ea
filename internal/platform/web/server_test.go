package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vovakirdan/math-defender/internal/config"
	"github.com/vovakirdan/math-defender/internal/game"
	"github.com/vovakirdan/math-defender/internal/storage"
)

func newTestServer(t *testing.T, withStore bool) (*Server, *httptest.Server, *storage.Store) {
	t.Helper()

	var store *storage.Store
	if withStore {
		var err error
		store, err = storage.Open()
		if err != nil {
			t.Fatalf("storage.Open() failed: %v", err)
		}
		t.Cleanup(func() { store.Close() })
	}

	srv := NewServer(DefaultServerConfig(), config.Default(), store, nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		_ = srv.Shutdown()
		ts.Close()
	})
	return srv, ts, store
}

func dial(t *testing.T, ts *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendMsg(t *testing.T, conn *websocket.Conn, codec Codec, msg ClientMessage) {
	t.Helper()
	data, err := codec.Marshal(msg)
	if err != nil {
		t.Fatalf("encode %+v: %v", msg, err)
	}
	if err := conn.WriteMessage(codec.MessageType(), data); err != nil {
		t.Fatalf("write %+v: %v", msg, err)
	}
}

// readUntil reads frames until match accepts one.
func readUntil(t *testing.T, conn *websocket.Conn, codec Codec, match func(ServerMessage) bool) ServerMessage {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	_ = conn.SetReadDeadline(deadline)

	for time.Now().Before(deadline) {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if kind != codec.MessageType() {
			t.Fatalf("frame type %d, expected %d", kind, codec.MessageType())
		}
		var msg ServerMessage
		if err := codec.Unmarshal(data, &msg); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if match(msg) {
			return msg
		}
	}
	t.Fatal("no matching frame before the deadline")
	return ServerMessage{}
}

func resultFor(command string) func(ServerMessage) bool {
	return func(m ServerMessage) bool {
		return m.Type == MsgResult && m.Result != nil && m.Result.Command == command
	}
}

func TestCodecByName(t *testing.T) {
	tests := []struct {
		name     string
		expected string
		wantErr  bool
	}{
		{"", "json", false},
		{"json", "json", false},
		{"MsgPack", "msgpack", false},
		{"xml", "", true},
	}
	for _, tc := range tests {
		codec, err := CodecByName(tc.name)
		if (err != nil) != tc.wantErr {
			t.Errorf("CodecByName(%q) error = %v", tc.name, err)
			continue
		}
		if err == nil && codec.Name() != tc.expected {
			t.Errorf("CodecByName(%q) = %s, expected %s", tc.name, codec.Name(), tc.expected)
		}
	}
}

func TestCodecsHideAnswers(t *testing.T) {
	snap := game.Snapshot{
		Phase:    game.PhasePlaying,
		Problems: []game.Problem{{ID: 1, Expression: "6 * 7", Answer: 42, Op: game.OpMul, Left: 6, Right: 7, Active: true}},
	}

	for _, name := range []string{"json", "msgpack"} {
		codec, _ := CodecByName(name)
		data, err := codec.Marshal(ServerMessage{Type: MsgSnapshot, Snapshot: &snap})
		if err != nil {
			t.Fatalf("%s: Marshal failed: %v", name, err)
		}
		if strings.Contains(string(data), "answer") || strings.Contains(string(data), "Answer") {
			t.Errorf("%s frame leaks the answer field", name)
		}

		var back ServerMessage
		if err := codec.Unmarshal(data, &back); err != nil {
			t.Fatalf("%s: Unmarshal failed: %v", name, err)
		}
		p, ok := back.Snapshot.ActiveProblem()
		if !ok || p.Expression != "6 * 7" || p.Answer != 0 || p.Left != 6 {
			t.Errorf("%s: decoded problem %+v", name, p)
		}
	}
}

func TestBroadcastEvery(t *testing.T) {
	tests := []struct {
		tickRate, hz int
		expected     uint64
	}{
		{60, 20, 3},
		{60, 60, 1},
		{60, 120, 1},
		{60, 0, 1},
		{60, 7, 8},
	}
	for _, tc := range tests {
		if got := broadcastEvery(tc.tickRate, tc.hz); got != tc.expected {
			t.Errorf("broadcastEvery(%d, %d) = %d, expected %d", tc.tickRate, tc.hz, got, tc.expected)
		}
	}
}

func TestWebSocketSession(t *testing.T) {
	_, ts, store := newTestServer(t, true)
	codec, _ := CodecByName("json")
	conn := dial(t, ts, "codec=json&seed=3")

	first := readUntil(t, conn, codec, func(m ServerMessage) bool { return m.Type == MsgSnapshot })
	if first.Snapshot.Phase != game.PhaseIdle {
		t.Fatalf("first snapshot phase %s, expected idle", first.Snapshot.Phase)
	}

	sendMsg(t, conn, codec, ClientMessage{Type: MsgFilter, Value: "%"})
	if r := readUntil(t, conn, codec, resultFor(MsgFilter)).Result; r.OK || r.Error == "" {
		t.Errorf("unknown filter should be rejected, got %+v", r)
	}

	sendMsg(t, conn, codec, ClientMessage{Type: MsgFilter, Value: "add"})
	readUntil(t, conn, codec, resultFor(MsgFilter))
	sendMsg(t, conn, codec, ClientMessage{Type: MsgTier, Value: "medium"})
	if r := readUntil(t, conn, codec, resultFor(MsgTier)).Result; !r.OK {
		t.Fatalf("tier should be accepted, got %+v", r)
	}

	sendMsg(t, conn, codec, ClientMessage{Type: MsgStart})
	if r := readUntil(t, conn, codec, resultFor(MsgStart)).Result; !r.OK {
		t.Fatalf("start failed: %+v", r)
	}
	sendMsg(t, conn, codec, ClientMessage{Type: MsgStart})
	if r := readUntil(t, conn, codec, resultFor(MsgStart)).Result; r.OK {
		t.Error("second start should be rejected while playing")
	}

	var target game.Problem
	readUntil(t, conn, codec, func(m ServerMessage) bool {
		if m.Type != MsgSnapshot {
			return false
		}
		p, ok := m.Snapshot.ActiveProblem()
		target = p
		return ok
	})
	if target.Op != game.OpAdd {
		t.Errorf("filter + should produce additions, got %q", target.Expression)
	}

	answer := strconv.Itoa(target.Op.Apply(target.Left, target.Right))
	sendMsg(t, conn, codec, ClientMessage{Type: MsgAnswer, Value: answer})
	if r := readUntil(t, conn, codec, resultFor(MsgAnswer)).Result; r.Answer != game.AnswerCorrect {
		t.Fatalf("answer %s for %q gave %+v", answer, target.Expression, r)
	}

	hit := readUntil(t, conn, codec, func(m ServerMessage) bool {
		return m.Type == MsgSnapshot && m.Snapshot.Score == 1
	})
	if hit.Snapshot.Category() != (game.Category{Filter: game.FilterAdd, Tier: game.TierMedium}) {
		t.Errorf("snapshot category %s", hit.Snapshot.Category())
	}

	sendMsg(t, conn, codec, ClientMessage{Type: MsgAbort})
	readUntil(t, conn, codec, resultFor(MsgAbort))

	recent, err := store.RecentSessions(1)
	if err != nil || len(recent) != 1 {
		t.Fatalf("abort should record the session, got %v, %v", recent, err)
	}
	if !recent[0].Aborted || recent[0].Score != 1 {
		t.Errorf("recorded session %+v", recent[0])
	}
}

func TestWebSocketMsgpack(t *testing.T) {
	_, ts, _ := newTestServer(t, false)
	codec, _ := CodecByName("msgpack")
	conn := dial(t, ts, "codec=msgpack")

	readUntil(t, conn, codec, func(m ServerMessage) bool { return m.Type == MsgSnapshot })

	sendMsg(t, conn, codec, ClientMessage{Type: MsgStart})
	if r := readUntil(t, conn, codec, resultFor(MsgStart)).Result; !r.OK {
		t.Fatalf("start failed: %+v", r)
	}

	msg := readUntil(t, conn, codec, func(m ServerMessage) bool {
		return m.Type == MsgSnapshot && len(m.Snapshot.Problems) > 0
	})
	if msg.Snapshot.Phase != game.PhasePlaying {
		t.Errorf("phase %s, expected playing", msg.Snapshot.Phase)
	}
}

func TestWebSocketEventsInSnapshots(t *testing.T) {
	_, ts, _ := newTestServer(t, false)
	codec, _ := CodecByName("json")
	conn := dial(t, ts, "")

	sendMsg(t, conn, codec, ClientMessage{Type: MsgStart})
	msg := readUntil(t, conn, codec, func(m ServerMessage) bool {
		for _, ev := range m.Events {
			if ev.Kind == game.EventSessionStarted {
				return true
			}
		}
		return false
	})
	if msg.Type != MsgSnapshot {
		t.Errorf("events should ride on snapshot frames, got %s", msg.Type)
	}
}

func TestWebSocketMalformedMessage(t *testing.T) {
	_, ts, _ := newTestServer(t, false)
	codec, _ := CodecByName("json")
	conn := dial(t, ts, "codec=json")

	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatalf("write: %v", err)
	}
	msg := readUntil(t, conn, codec, func(m ServerMessage) bool { return m.Type == MsgResult })
	if msg.Result.OK || !strings.Contains(msg.Result.Error, "malformed") {
		t.Errorf("malformed message should be reported, got %+v", msg.Result)
	}

	sendMsg(t, conn, codec, ClientMessage{Type: "launch"})
	if r := readUntil(t, conn, codec, resultFor("launch")).Result; r.OK {
		t.Error("unknown message type should be rejected")
	}
}

func TestWebSocketRejectsUnknownCodec(t *testing.T) {
	_, ts, _ := newTestServer(t, false)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?codec=xml"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("dial should fail for an unknown codec")
	}
	if resp == nil || resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %+v", resp)
	}
}

func TestShutdownClosesSessions(t *testing.T) {
	srv, ts, _ := newTestServer(t, false)
	codec, _ := CodecByName("json")
	conn := dial(t, ts, "")
	readUntil(t, conn, codec, func(m ServerMessage) bool { return m.Type == MsgSnapshot })

	if err := srv.Shutdown(); err != nil {
		t.Fatalf("Shutdown() failed: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseGoingAway) {
				t.Errorf("expected a going away close, got %v", err)
			}
			return
		}
	}
}

func TestScoresEndpoint(t *testing.T) {
	srv, ts, store := newTestServer(t, true)
	c := game.Category{Filter: game.FilterAdd, Tier: game.TierEasy}
	for _, score := range []int{3, 8, 5} {
		_ = store.RecordSession(game.SessionResult{Category: c, Score: score})
	}
	srv.HighScores().Submit(c, 8)

	resp, err := http.Get(ts.URL + "/scores?filter=add&tier=easy&limit=2")
	if err != nil {
		t.Fatalf("GET /scores: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var body scoresResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Category != c || body.HighScore != 8 {
		t.Errorf("response header %+v", body)
	}
	if len(body.Sessions) != 2 || body.Sessions[0].Score != 8 || body.Sessions[1].Score != 5 {
		t.Errorf("sessions %+v, expected 8 then 5", body.Sessions)
	}
	if st := body.Stats; st.Sessions != 3 || st.HighScore != 8 || st.TotalScore != 16 || st.LastPlayed == nil {
		t.Errorf("stats %+v, expected 3 sessions totalling 16", st)
	}

	bad, err := http.Get(ts.URL + "/scores?tier=insane")
	if err != nil {
		t.Fatalf("GET /scores: %v", err)
	}
	bad.Body.Close()
	if bad.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown tier status %d, expected 400", bad.StatusCode)
	}
}

func getJSON(t *testing.T, url string, v any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s: status %d", url, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("GET %s: decode: %v", url, err)
	}
}

func TestSessionsAndStatsEndpoints(t *testing.T) {
	_, ts, store := newTestServer(t, true)
	addEasy := game.Category{Filter: game.FilterAdd, Tier: game.TierEasy}
	divHard := game.Category{Filter: game.FilterDiv, Tier: game.TierHard}
	for _, r := range []game.SessionResult{
		{Category: divHard, Score: 2},
		{Category: addEasy, Score: 6},
		{Category: addEasy, Score: 4, Aborted: true},
	} {
		if err := store.RecordSession(r); err != nil {
			t.Fatalf("RecordSession() failed: %v", err)
		}
	}

	var recent []scoreRow
	getJSON(t, ts.URL+"/sessions?limit=2", &recent)
	if len(recent) != 2 || recent[0].Score != 4 || !recent[0].Aborted || recent[1].Category != addEasy {
		t.Errorf("recent sessions %+v, expected the two addition sessions newest first", recent)
	}

	var stats []statsRow
	getJSON(t, ts.URL+"/stats", &stats)
	if len(stats) != 2 {
		t.Fatalf("stats %+v, expected two played categories", stats)
	}
	// Menu order puts addition before division
	if stats[0].Category != addEasy || stats[0].Sessions != 2 || stats[0].AvgScore != 5 {
		t.Errorf("addition stats %+v", stats[0])
	}
	if stats[1].Category != divHard || stats[1].HighScore != 2 {
		t.Errorf("division stats %+v", stats[1])
	}
}

func TestHistoryEndpointsWithoutStore(t *testing.T) {
	_, ts, _ := newTestServer(t, false)

	tests := []struct {
		path     string
		expected int
	}{
		{"/scores", http.StatusServiceUnavailable},
		{"/sessions", http.StatusServiceUnavailable},
		{"/stats", http.StatusServiceUnavailable},
		{"/sessions?limit=-1", http.StatusBadRequest},
	}
	for _, tc := range tests {
		resp, err := http.Get(ts.URL + tc.path)
		if err != nil {
			t.Fatalf("GET %s: %v", tc.path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != tc.expected {
			t.Errorf("GET %s status %d, expected %d", tc.path, resp.StatusCode, tc.expected)
		}
	}
}

func TestHealthz(t *testing.T) {
	_, ts, _ := newTestServer(t, false)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status %d, expected 200", resp.StatusCode)
	}

	post, err := http.Post(ts.URL+"/healthz", "text/plain", nil)
	if err != nil {
		t.Fatalf("POST /healthz: %v", err)
	}
	post.Body.Close()
	if post.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("POST status %d, expected 405", post.StatusCode)
	}
}
