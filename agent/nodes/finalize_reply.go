package nodes

import (
	"fmt"
	"strings"

	contractx "github.com/weiheng-lim/kopibot/agent/contract"
)

func FinalizeReply(in *GraphState) (GraphOutput, error) {
	if in == nil || in.Session == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is incomplete", contractx.ErrValidation)
	}

	reply := strings.TrimSpace(in.Reply)
	if reply == "" {
		return GraphOutput{}, fmt.Errorf("%w: dispatcher returned empty reply", contractx.ErrValidation)
	}
	return GraphOutput{
		Reply: reply,
		State: *in.Session.Clone(),
	}, nil
}

// ReplyEmpty terminates the blank-utterance branch: fixed reply, current
// state snapshot, nothing saved.
func ReplyEmpty(in *GraphState) (GraphOutput, error) {
	if in == nil || in.Session == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is incomplete", contractx.ErrValidation)
	}

	return GraphOutput{
		Reply: ReplyEmptyUtterance,
		State: *in.Session.Clone(),
	}, nil
}
