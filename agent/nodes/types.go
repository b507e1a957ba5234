package nodes

import (
	"strings"
	"time"

	contractx "github.com/weiheng-lim/kopibot/agent/contract"
	statex "github.com/weiheng-lim/kopibot/agent/state"
)

var ErrInvalidSession = statex.ErrInvalidSession

// ReplyEmptyUtterance is returned for a blank turn. The turn is intercepted
// before classification: state is untouched and no history is recorded.
const ReplyEmptyUtterance = "I didn't catch that. Could you please repeat your question?"

type GraphInput struct {
	SessionID string
	Text      string
}

// GraphOutput carries the reply together with a snapshot of the session as it
// stands after the turn.
type GraphOutput struct {
	Reply string
	State statex.Session
}

// GraphState is the working set threaded through the turn pipeline. Nodes
// mutate it in place and pass it along.
type GraphState struct {
	SessionID string
	Text      string
	Empty     bool
	Now       time.Time

	Session  *statex.Session
	Entities contractx.Entities
	Intent   contractx.Intent

	Reply  string
	Update contractx.StateUpdate
}

// ValidateRequest normalizes the raw input. A blank utterance is not an
// error: it flags the state so the graph can branch to the fixed reply.
func ValidateRequest(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		return nil, ErrInvalidSession
	}

	text := strings.TrimSpace(in.Text)

	return &GraphState{
		SessionID: sessionID,
		Text:      text,
		Empty:     text == "",
		Now:       nowFn().UTC(),
	}, nil
}
