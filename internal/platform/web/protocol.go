// Package web serves the game over a web socket. Each connection gets its own
// engine, driven by one goroutine that owns both the engine and the socket's
// write side.
package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/vovakirdan/math-defender/internal/game"
)

// Client message types.
const (
	MsgFilter  = "filter"
	MsgTier    = "tier"
	MsgStart   = "start"
	MsgRestart = "restart"
	MsgAnswer  = "answer"
	MsgAbort   = "abort"
)

// Server message types.
const (
	MsgSnapshot = "snapshot"
	MsgResult   = "result"
)

// ClientMessage is a command from the browser. Value carries the filter,
// tier or answer text.
type ClientMessage struct {
	Type  string `json:"type"`
	Value string `json:"value,omitempty"`
}

// ServerMessage is one frame sent to the browser.
type ServerMessage struct {
	Type     string         `json:"type"`
	Snapshot *game.Snapshot `json:"snapshot,omitempty"`
	Events   []game.Event   `json:"events,omitempty"` // Engine events since the previous snapshot
	Result   *Result        `json:"result,omitempty"`
}

// Result reports what a client command did.
type Result struct {
	Command string            `json:"command"`
	OK      bool              `json:"ok"`
	Answer  game.AnswerResult `json:"answer,omitempty"`
	Error   string            `json:"error,omitempty"`
}

// Codec encodes frames for one connection. Both codecs use the json struct
// tags, so fields hidden from JSON (like a problem's answer) stay hidden in
// msgpack too.
type Codec interface {
	Name() string
	MessageType() int
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// CodecByName returns the codec for a ?codec= query value. Empty means JSON.
func CodecByName(name string) (Codec, error) {
	switch strings.ToLower(name) {
	case "", "json":
		return jsonCodec{}, nil
	case "msgpack":
		return msgpackCodec{}, nil
	default:
		return nil, fmt.Errorf("unknown codec %q", name)
	}
}

type jsonCodec struct{}

func (jsonCodec) Name() string                       { return "json" }
func (jsonCodec) MessageType() int                   { return websocket.TextMessage }
func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

type msgpackCodec struct{}

func (msgpackCodec) Name() string     { return "msgpack" }
func (msgpackCodec) MessageType() int { return websocket.BinaryMessage }

func (msgpackCodec) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (msgpackCodec) Unmarshal(data []byte, v any) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	return dec.Decode(v)
}
