package intent

import (
	"testing"
	"time"

	contractx "github.com/weiheng-lim/kopibot/agent/contract"
	entityx "github.com/weiheng-lim/kopibot/agent/entity"
	statex "github.com/weiheng-lim/kopibot/agent/state"
)

func newTestClassifier() (*Classifier, *entityx.Extractor) {
	gaz := entityx.DefaultGazetteer()
	return New(gaz), entityx.New(gaz)
}

func classify(t *testing.T, c *Classifier, x *entityx.Extractor, text string, session *statex.Session) contractx.Intent {
	t.Helper()
	if session == nil {
		session = statex.NewSession("s1", time.Now())
	}
	return c.Classify(Input{
		Text:     text,
		Entities: x.Extract(text),
		Session:  session,
	})
}

func TestClassifyRuleOrder(t *testing.T) {
	t.Parallel()

	c, x := newTestClassifier()

	cases := []struct {
		text string
		want contractx.Intent
	}{
		{"What is 15 plus 27?", contractx.IntentCalculation},
		{"hello", contractx.IntentGreeting},
		{"Good morning!", contractx.IntentGreeting},
		{"Is there an outlet in Petaling Jaya?", contractx.IntentOutletInquiry},
		{"outlets in pj", contractx.IntentOutletInquiry},
		{"I want to buy a coffee cup", contractx.IntentProductSearch},
		{"show me your tumblers", contractx.IntentProductSearch},
		{"tell me a joke", contractx.IntentUnknown},
	}

	for _, tc := range cases {
		if got := classify(t, c, x, tc.text, nil); got != tc.want {
			t.Fatalf("Classify(%q) = %q, want %q", tc.text, got, tc.want)
		}
	}
}

func TestClassifyGreetingYieldsToStrongerSignal(t *testing.T) {
	t.Parallel()

	c, x := newTestClassifier()

	got := classify(t, c, x, "hello, what time does ss 2 open?", nil)
	if got != contractx.IntentTimeInquiry {
		t.Fatalf("Classify() = %q, want %q", got, contractx.IntentTimeInquiry)
	}

	got = classify(t, c, x, "hi, what is 2 plus 2?", nil)
	if got != contractx.IntentCalculation {
		t.Fatalf("Classify() = %q, want %q", got, contractx.IntentCalculation)
	}
}

func TestClassifyTimeInquiryNeedsAnOutlet(t *testing.T) {
	t.Parallel()

	c, x := newTestClassifier()

	// No outlet in the utterance and none in state: not a time inquiry.
	got := classify(t, c, x, "what are the opening hours?", nil)
	if got == contractx.IntentTimeInquiry {
		t.Fatal("time inquiry classified without an outlet")
	}

	// Outlet remembered from an earlier turn.
	session := statex.NewSession("s1", time.Now())
	session.Location = "petaling jaya"
	session.Outlet = "ss 2"
	session.Stage = statex.StageOutletConfirmed

	got = classify(t, c, x, "what time do you close?", session)
	if got != contractx.IntentTimeInquiry {
		t.Fatalf("Classify() = %q, want %q", got, contractx.IntentTimeInquiry)
	}
}

func TestClassifyBareOutletFollowUp(t *testing.T) {
	t.Parallel()

	c, _ := newTestClassifier()

	confirmed := statex.NewSession("s1", time.Now())
	confirmed.Location = "petaling jaya"
	confirmed.Stage = statex.StageLocationConfirmed

	// A bare plausible outlet phrase only counts mid-conversation.
	got := c.Classify(Input{Text: "ss2", Session: confirmed})
	if got != contractx.IntentOutletInquiry {
		t.Fatalf("Classify() = %q, want %q", got, contractx.IntentOutletInquiry)
	}

	initial := statex.NewSession("s2", time.Now())
	got = c.Classify(Input{Text: "ss2", Session: initial})
	if got == contractx.IntentOutletInquiry {
		t.Fatal("bare phrase classified as outlet inquiry at the initial stage")
	}

	// A verb disqualifies the bare-phrase heuristic.
	got = c.Classify(Input{Text: "where is ss2", Session: confirmed})
	if got == contractx.IntentOutletInquiry {
		t.Fatal("verb-bearing phrase classified as bare outlet follow-up")
	}
}

func TestClassifyExactlyOneIntent(t *testing.T) {
	t.Parallel()

	c, x := newTestClassifier()

	// Calculation and product words in one utterance: the earlier rule wins.
	got := classify(t, c, x, "calculate the price of 2 plus 3 cups", nil)
	if got != contractx.IntentCalculation {
		t.Fatalf("Classify() = %q, want %q", got, contractx.IntentCalculation)
	}
}
