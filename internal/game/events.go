package game

// EventKind identifies a state machine transition.
type EventKind string

const (
	EventSessionStarted EventKind = "session_started"
	EventProblemSpawned EventKind = "problem_spawned"
	EventAnswerCorrect  EventKind = "answer_correct"   // Laser fired, hit pending
	EventAnswerWrong    EventKind = "answer_incorrect" // Shake only
	EventProblemHit     EventKind = "problem_hit"      // Score incremented
	EventLifeLost       EventKind = "life_lost"
	EventGameOver       EventKind = "game_over"
	EventNewRecord      EventKind = "new_record"
	EventSessionAborted EventKind = "session_aborted"
	EventRecordFailed   EventKind = "record_failed" // SessionRecorder returned an error
)

// maxPendingEvents bounds the event buffer when nobody drains it.
const maxPendingEvents = 256

// Event reports something that happened inside the engine. Presentation
// layers drain them with Engine.Events to log or animate transitions.
type Event struct {
	Kind      EventKind `json:"kind"`
	Tick      uint64    `json:"tick"`
	Category  Category  `json:"category"`
	ProblemID uint64    `json:"problem_id,omitempty"`
	Score     int       `json:"score"`
	Lives     int       `json:"lives"`
	Err       string    `json:"err,omitempty"`
}

func (e *Engine) emit(kind EventKind, problemID uint64) {
	if len(e.events) >= maxPendingEvents {
		e.events = e.events[1:]
	}
	e.events = append(e.events, Event{
		Kind:      kind,
		Tick:      e.tick,
		Category:  e.Category(),
		ProblemID: problemID,
		Score:     e.score,
		Lives:     e.lives,
	})
}

// Events returns and clears the events emitted since the last call.
func (e *Engine) Events() []Event {
	out := e.events
	e.events = nil
	return out
}
