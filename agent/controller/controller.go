package controller

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog/log"

	dispatchx "github.com/weiheng-lim/kopibot/agent/dispatch"
	entityx "github.com/weiheng-lim/kopibot/agent/entity"
	intentx "github.com/weiheng-lim/kopibot/agent/intent"
	nodex "github.com/weiheng-lim/kopibot/agent/nodes"
	statex "github.com/weiheng-lim/kopibot/agent/state"
)

var ErrInvalidSession = nodex.ErrInvalidSession

// ReplyInternalError is the catch-all turn outcome. An internal fault never
// surfaces as an error to the conversation, only as this reply.
const ReplyInternalError = "I'm experiencing some technical difficulties. Please try again in a moment."

// Result is one completed turn: the reply plus a snapshot of the session as
// persisted (or as it stood, when the turn did not commit).
type Result struct {
	Reply string
	State statex.Session
}

// Controller owns the turn pipeline. Turns for the same session are
// serialized; distinct sessions proceed concurrently.
type Controller struct {
	store      statex.Store
	extractor  *entityx.Extractor
	classifier *intentx.Classifier
	dispatcher *dispatchx.Dispatcher

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	now func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(
	store statex.Store,
	extractor *entityx.Extractor,
	classifier *intentx.Classifier,
	dispatcher *dispatchx.Dispatcher,
) (*Controller, error) {
	if store == nil {
		return nil, errors.New("state store is required")
	}
	if extractor == nil {
		return nil, errors.New("entity extractor is required")
	}
	if classifier == nil {
		return nil, errors.New("intent classifier is required")
	}
	if dispatcher == nil {
		return nil, errors.New("tool dispatcher is required")
	}

	c := &Controller{
		store:      store,
		extractor:  extractor,
		classifier: classifier,
		dispatcher: dispatcher,
		now:        time.Now,
		locks:      make(map[string]*sync.Mutex),
	}

	graphRunner, err := c.compileHandleTurnGraph(context.Background())
	if err != nil {
		return nil, err
	}
	c.graphRunner = graphRunner

	return c, nil
}

// Handle runs one turn. It always produces a reply: internal faults are
// logged and mapped to ReplyInternalError with the stored state untouched.
// The only error returned is ErrInvalidSession for a blank session id.
func (c *Controller) Handle(ctx context.Context, sessionID string, text string) (Result, error) {
	id := strings.TrimSpace(sessionID)
	if id == "" {
		return Result{}, ErrInvalidSession
	}

	lock := c.sessionLock(id)
	lock.Lock()
	defer lock.Unlock()

	out, err := c.graphRunner.Invoke(ctx, nodex.GraphInput{
		SessionID: id,
		Text:      text,
	})
	if err != nil {
		if errors.Is(err, ErrInvalidSession) {
			return Result{}, err
		}
		log.Error().Err(err).Str("session_id", id).Msg("turn failed")
		return Result{
			Reply: ReplyInternalError,
			State: c.snapshot(ctx, id),
		}, nil
	}

	return Result{Reply: out.Reply, State: out.State}, nil
}

// Reset discards the session's resolved slots and history and persists the
// fresh state.
func (c *Controller) Reset(ctx context.Context, sessionID string) (Result, error) {
	id := strings.TrimSpace(sessionID)
	if id == "" {
		return Result{}, ErrInvalidSession
	}

	lock := c.sessionLock(id)
	lock.Lock()
	defer lock.Unlock()

	st := statex.NewSession(id, c.now())
	if err := c.store.Save(ctx, st); err != nil {
		return Result{}, err
	}
	return Result{State: *st.Clone()}, nil
}

func (c *Controller) sessionLock(sessionID string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()

	lock, ok := c.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[sessionID] = lock
	}
	return lock
}

// snapshot is best effort: the last committed state if any, otherwise a
// fresh one. Used only on the internal-error path.
func (c *Controller) snapshot(ctx context.Context, sessionID string) statex.Session {
	st, err := c.store.Load(ctx, sessionID)
	if err != nil {
		return *statex.NewSession(sessionID, c.now())
	}
	return *st
}
