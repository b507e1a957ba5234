package nodes

import (
	"context"
	"fmt"

	contractx "github.com/weiheng-lim/kopibot/agent/contract"
	dispatchx "github.com/weiheng-lim/kopibot/agent/dispatch"
)

func DispatchTool(ctx context.Context, in *GraphState, dispatcher *dispatchx.Dispatcher) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph state is incomplete", contractx.ErrValidation)
	}

	result, err := dispatcher.Dispatch(ctx, dispatchx.Request{
		Intent:   in.Intent,
		Text:     in.Text,
		Entities: in.Entities,
		Session:  in.Session,
	})
	if err != nil {
		return nil, err
	}

	in.Reply = result.Reply
	in.Update = result.Update
	return in, nil
}
