package nodes

import (
	"fmt"
	"time"

	contractx "github.com/weiheng-lim/kopibot/agent/contract"
	statex "github.com/weiheng-lim/kopibot/agent/state"
)

// ApplyStateUpdates folds the dispatcher's proposed update into the working
// copy and records the turn. Nothing here touches the store; if a later node
// fails, the stored state is untouched.
func ApplyStateUpdates(in *GraphState) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph state is incomplete", contractx.ErrValidation)
	}

	if err := applyStateUpdate(in.Session, in.Update, in.Now); err != nil {
		return nil, err
	}
	in.Session.AddTurn(in.Text, in.Reply, string(in.Intent), in.Now)
	return in, nil
}

func applyStateUpdate(st *statex.Session, update contractx.StateUpdate, now time.Time) error {
	if st == nil {
		return fmt.Errorf("%w: nil state", contractx.ErrValidation)
	}

	if update.Location != "" {
		st.Location = update.Location
	}
	if update.ClearOutlet {
		st.Outlet = ""
	}
	if update.Outlet != "" {
		st.Outlet = update.Outlet
	}
	if update.Stage != "" {
		st.Stage = update.Stage
	}
	if update.Confidence > 0 {
		st.Confidence = update.Confidence
	}

	st.Touch(now)
	return st.Validate()
}
