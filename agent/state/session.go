package state

import (
	"errors"
	"fmt"
	"time"
)

// Stage is the dialogue state machine's current node. It constrains which
// slots count as resolved for the session.
type Stage string

const (
	StageInitial           Stage = "initial"
	StageLocationConfirmed Stage = "location_confirmed"
	StageOutletConfirmed   Stage = "outlet_confirmed"
)

// Turn is one processed interaction. History is append-only and insertion
// order is significant.
type Turn struct {
	Utterance string    `json:"utterance"`
	Reply     string    `json:"reply"`
	Intent    string    `json:"intent"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is the per-session source-of-truth for dialogue control.
// Invariants (checked by Validate):
//   - StageOutletConfirmed requires both Outlet and Location.
//   - StageLocationConfirmed requires Location.
//   - Confidence stays within [0,1]; it is a heuristic signal, not a
//     probability.
type Session struct {
	SessionID  string    `json:"session_id"`
	Location   string    `json:"location,omitempty"`
	Outlet     string    `json:"outlet,omitempty"`
	Stage      Stage     `json:"stage"`
	History    []Turn    `json:"history,omitempty"`
	Confidence float64   `json:"confidence"`
	UpdatedAt  time.Time `json:"updated_at"`
}

var (
	ErrStateNotFound   = errors.New("session state not found")
	ErrNilSessionState = errors.New("session state is nil")
	ErrInvalidSession  = errors.New("session id is empty")
	ErrInvalidState    = errors.New("invalid session state")
)

func NewSession(sessionID string, now time.Time) *Session {
	return &Session{
		SessionID: sessionID,
		Stage:     StageInitial,
		UpdatedAt: now.UTC(),
	}
}

func (s *Session) Touch(now time.Time) {
	s.UpdatedAt = now.UTC()
}

// Reset zeroes every resolved slot and drops the history. The session id is
// kept so the caller's handle stays valid.
func (s *Session) Reset(now time.Time) {
	s.Location = ""
	s.Outlet = ""
	s.Stage = StageInitial
	s.History = nil
	s.Confidence = 0
	s.Touch(now)
}

// AddTurn appends one processed turn to the history.
func (s *Session) AddTurn(utterance, reply, intent string, now time.Time) {
	s.History = append(s.History, Turn{
		Utterance: utterance,
		Reply:     reply,
		Intent:    intent,
		Timestamp: now.UTC(),
	})
}

// Clone returns a deep copy. Stores hand out clones so that a turn's
// mutations never leak into the stored snapshot before the turn commits.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	if s.History != nil {
		out.History = make([]Turn, len(s.History))
		copy(out.History, s.History)
	}
	return &out
}

func (s *Session) Validate() error {
	if s == nil {
		return ErrNilSessionState
	}
	switch s.Stage {
	case StageInitial, StageLocationConfirmed, StageOutletConfirmed:
	default:
		return fmt.Errorf("%w: unknown stage %q", ErrInvalidState, s.Stage)
	}
	if s.Stage == StageLocationConfirmed && s.Location == "" {
		return fmt.Errorf("%w: stage %s requires a location", ErrInvalidState, s.Stage)
	}
	if s.Stage == StageOutletConfirmed && (s.Outlet == "" || s.Location == "") {
		return fmt.Errorf("%w: stage %s requires an outlet and a location", ErrInvalidState, s.Stage)
	}
	if s.Confidence < 0 || s.Confidence > 1 {
		return fmt.Errorf("%w: confidence %v out of range", ErrInvalidState, s.Confidence)
	}
	return nil
}
