package nodes

import (
	"context"
	"errors"
	"testing"
	"time"

	contractx "github.com/weiheng-lim/kopibot/agent/contract"
	statex "github.com/weiheng-lim/kopibot/agent/state"
)

func fixedNow() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func TestValidateRequest(t *testing.T) {
	t.Parallel()

	_, err := ValidateRequest(GraphInput{SessionID: "  ", Text: "hello"}, fixedNow)
	if !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession, got %v", err)
	}

	gs, err := ValidateRequest(GraphInput{SessionID: " s1 ", Text: "  hello  "}, fixedNow)
	if err != nil {
		t.Fatalf("ValidateRequest() error = %v", err)
	}
	if gs.SessionID != "s1" || gs.Text != "hello" || gs.Empty {
		t.Fatalf("unexpected graph state: %+v", gs)
	}

	gs, err = ValidateRequest(GraphInput{SessionID: "s1", Text: "   "}, fixedNow)
	if err != nil {
		t.Fatalf("ValidateRequest() error = %v", err)
	}
	if !gs.Empty {
		t.Fatal("blank text must flag the empty branch")
	}
}

func TestLoadOrCreateStateCreatesOnMiss(t *testing.T) {
	t.Parallel()

	store := statex.NewMemoryStore()
	gs := &GraphState{SessionID: "s1", Text: "hello", Now: fixedNow()}

	gs, err := LoadOrCreateState(context.Background(), gs, store)
	if err != nil {
		t.Fatalf("LoadOrCreateState() error = %v", err)
	}
	if gs.Session == nil || gs.Session.Stage != statex.StageInitial {
		t.Fatalf("unexpected session: %+v", gs.Session)
	}
}

func TestApplyStateUpdateAllOrNothing(t *testing.T) {
	t.Parallel()

	st := statex.NewSession("s1", fixedNow())

	// An update that violates the stage invariant is rejected outright.
	err := applyStateUpdate(st, contractx.StateUpdate{Stage: statex.StageOutletConfirmed}, fixedNow())
	if !errors.Is(err, statex.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestApplyStateUpdateMergesNonZeroFields(t *testing.T) {
	t.Parallel()

	st := statex.NewSession("s1", fixedNow())
	st.Location = "petaling jaya"
	st.Stage = statex.StageLocationConfirmed
	st.Confidence = 0.8

	err := applyStateUpdate(st, contractx.StateUpdate{
		Outlet:     "ss 2",
		Stage:      statex.StageOutletConfirmed,
		Confidence: 0.9,
	}, fixedNow())
	if err != nil {
		t.Fatalf("applyStateUpdate() error = %v", err)
	}
	if st.Location != "petaling jaya" {
		t.Fatalf("zero-valued field overwrote location: %q", st.Location)
	}
	if st.Outlet != "ss 2" || st.Stage != statex.StageOutletConfirmed || st.Confidence != 0.9 {
		t.Fatalf("update not applied: %+v", st)
	}

	// The zero update is a no-op on slots.
	err = applyStateUpdate(st, contractx.StateUpdate{}, fixedNow())
	if err != nil {
		t.Fatalf("applyStateUpdate() error = %v", err)
	}
	if st.Outlet != "ss 2" || st.Confidence != 0.9 {
		t.Fatalf("zero update changed slots: %+v", st)
	}
}

func TestApplyStateUpdateClearsOutlet(t *testing.T) {
	t.Parallel()

	st := statex.NewSession("s1", fixedNow())
	st.Location = "kuala lumpur"
	st.Outlet = "klcc"
	st.Stage = statex.StageOutletConfirmed
	st.Confidence = 0.9

	err := applyStateUpdate(st, contractx.StateUpdate{
		Location:    "petaling jaya",
		Stage:       statex.StageLocationConfirmed,
		Confidence:  0.8,
		ClearOutlet: true,
	}, fixedNow())
	if err != nil {
		t.Fatalf("applyStateUpdate() error = %v", err)
	}
	if st.Outlet != "" {
		t.Fatalf("outlet not cleared: %q", st.Outlet)
	}
	if st.Location != "petaling jaya" || st.Stage != statex.StageLocationConfirmed {
		t.Fatalf("update not applied: %+v", st)
	}
}

func TestFinalizeReplyRejectsEmpty(t *testing.T) {
	t.Parallel()

	gs := &GraphState{Session: statex.NewSession("s1", fixedNow()), Reply: "   "}
	if _, err := FinalizeReply(gs); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestReplyEmptySnapshotsWithoutSaving(t *testing.T) {
	t.Parallel()

	st := statex.NewSession("s1", fixedNow())
	st.Location = "petaling jaya"
	st.Stage = statex.StageLocationConfirmed

	out, err := ReplyEmpty(&GraphState{Session: st})
	if err != nil {
		t.Fatalf("ReplyEmpty() error = %v", err)
	}
	if out.Reply != ReplyEmptyUtterance {
		t.Fatalf("unexpected reply: %q", out.Reply)
	}
	if out.State.Location != "petaling jaya" || len(out.State.History) != 0 {
		t.Fatalf("unexpected snapshot: %+v", out.State)
	}
}
