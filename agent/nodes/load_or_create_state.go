package nodes

import (
	"context"
	"errors"
	"fmt"
	"time"

	contractx "github.com/weiheng-lim/kopibot/agent/contract"
	statex "github.com/weiheng-lim/kopibot/agent/state"
)

func LoadOrCreateState(ctx context.Context, in *GraphState, store statex.Store) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	st, err := loadOrCreateState(ctx, store, in.SessionID, in.Now)
	if err != nil {
		return nil, err
	}
	in.Session = st
	return in, nil
}

func loadOrCreateState(ctx context.Context, store statex.Store, sessionID string, now time.Time) (*statex.Session, error) {
	st, err := store.Load(ctx, sessionID)
	if err == nil {
		return st, nil
	}
	if !errors.Is(err, statex.ErrStateNotFound) {
		return nil, err
	}

	return statex.NewSession(sessionID, now), nil
}
