package web

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/math-defender/internal/config"
	"github.com/vovakirdan/math-defender/internal/core"
	"github.com/vovakirdan/math-defender/internal/game"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 4096 // Client messages are tiny
	inboxSize      = 64
	maxEvents      = 256 // Events buffered between two snapshots
)

// inbound is one decoded client message, or the reason it could not be decoded.
type inbound struct {
	msg ClientMessage
	err error
}

// session drives one engine for one connection. run owns the engine and is
// the only writer on the socket; readLoop only decodes and forwards.
type session struct {
	conn   *websocket.Conn
	codec  Codec
	engine *game.Engine
	web    config.WebConfig
	rt     core.RuntimeConfig
	logger *log.Logger
	inbox  chan inbound
	done   chan struct{} // Closed when run returns
	events []game.Event
}

func newSession(conn *websocket.Conn, codec Codec, engine *game.Engine, web config.WebConfig, rt core.RuntimeConfig, logger *log.Logger) *session {
	return &session{
		conn:   conn,
		codec:  codec,
		engine: engine,
		web:    web,
		rt:     rt,
		logger: logger,
		inbox:  make(chan inbound, inboxSize),
		done:   make(chan struct{}),
	}
}

// readLoop decodes client messages into the inbox until the connection
// fails or the read deadline passes. It closes the inbox on exit.
func (s *session) readLoop() {
	defer close(s.inbox)

	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(s.web.ReadTimeout))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(s.web.ReadTimeout))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("read failed", "err", err)
			}
			return
		}
		_ = s.conn.SetReadDeadline(time.Now().Add(s.web.ReadTimeout))

		var msg ClientMessage
		err = s.codec.Unmarshal(data, &msg)
		select {
		case s.inbox <- inbound{msg: msg, err: err}:
		case <-s.done:
			return
		}
	}
}

// run is the session loop: engine ticks, client commands, snapshots and
// pings all go through one select so the engine has a single owner.
func (s *session) run(ctx context.Context) error {
	defer close(s.done)

	tick := time.NewTicker(s.rt.TickInterval())
	defer tick.Stop()
	ping := time.NewTicker(s.web.PingInterval)
	defer ping.Stop()

	// Whatever ends the loop, an unfinished session is recorded as aborted
	defer func() {
		s.engine.AbortSession()
		s.collectEvents()
	}()

	every := broadcastEvery(s.rt.TickRate, s.web.BroadcastHz)
	if err := s.sendSnapshot(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			_ = s.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(writeWait))
			return ctx.Err()

		case in, ok := <-s.inbox:
			if !ok {
				return nil
			}
			result := s.handle(in)
			s.collectEvents()
			if err := s.send(ServerMessage{Type: MsgResult, Result: &result}); err != nil {
				return err
			}
			if err := s.sendSnapshot(); err != nil {
				return err
			}

		case <-tick.C:
			s.engine.Step()
			s.collectEvents()
			if s.engine.Tick()%every == 0 {
				if err := s.sendSnapshot(); err != nil {
					return err
				}
			}

		case <-ping.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return fmt.Errorf("ping: %w", err)
			}
		}
	}
}

// handle applies one client command to the engine.
func (s *session) handle(in inbound) Result {
	if in.err != nil {
		return Result{Error: "malformed message: " + in.err.Error()}
	}

	msg := in.msg
	result := Result{Command: msg.Type}
	var err error

	switch msg.Type {
	case MsgFilter:
		var f game.OperationFilter
		if f, err = game.ParseFilter(msg.Value); err == nil {
			err = s.engine.SetOperationFilter(f)
		}
	case MsgTier:
		var t game.Tier
		if t, err = game.ParseTier(msg.Value); err == nil {
			err = s.engine.SetDifficultyTier(t)
		}
	case MsgStart:
		err = s.engine.Start()
	case MsgRestart:
		err = s.engine.Restart()
	case MsgAbort:
		s.engine.AbortSession()
	case MsgAnswer:
		result.Answer = s.engine.SubmitAnswer(msg.Value)
		result.OK = result.Answer == game.AnswerCorrect || result.Answer == game.AnswerIncorrect
		return result
	default:
		err = fmt.Errorf("unknown message type %q", msg.Type)
	}

	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.OK = true
	return result
}

// collectEvents moves engine events into the next snapshot frame.
func (s *session) collectEvents() {
	for _, ev := range s.engine.Events() {
		switch ev.Kind {
		case game.EventRecordFailed:
			s.logger.Warn("session not recorded", "category", ev.Category, "err", ev.Err)
		case game.EventGameOver, game.EventSessionAborted, game.EventSessionStarted:
			s.logger.Info(string(ev.Kind), "category", ev.Category, "score", ev.Score)
		default:
			s.logger.Debug(string(ev.Kind), "problem", ev.ProblemID, "score", ev.Score, "lives", ev.Lives)
		}

		if len(s.events) >= maxEvents {
			s.events = s.events[1:]
		}
		s.events = append(s.events, ev)
	}
}

func (s *session) sendSnapshot() error {
	snap := s.engine.Snapshot()
	msg := ServerMessage{Type: MsgSnapshot, Snapshot: &snap, Events: s.events}
	s.events = nil
	return s.send(msg)
}

func (s *session) send(msg ServerMessage) error {
	data, err := s.codec.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode %s: %w", msg.Type, err)
	}
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := s.conn.WriteMessage(s.codec.MessageType(), data); err != nil {
		return fmt.Errorf("write %s: %w", msg.Type, err)
	}
	return nil
}

// broadcastEvery returns how many ticks pass between two snapshots.
func broadcastEvery(tickRate, hz int) uint64 {
	if hz <= 0 || tickRate <= hz {
		return 1
	}
	return uint64(tickRate / hz)
}
