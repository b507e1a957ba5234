package intent

import (
	"strings"

	contractx "github.com/weiheng-lim/kopibot/agent/contract"
	entityx "github.com/weiheng-lim/kopibot/agent/entity"
	statex "github.com/weiheng-lim/kopibot/agent/state"
)

// Input is everything one classification reads: the trimmed utterance, its
// extracted entities, and the prior session state. State is read-only here;
// it lets a bare "SS 2" after "which outlet?" route to an outlet inquiry.
type Input struct {
	Text     string
	Entities contractx.Entities
	Session  *statex.Session
}

type rule struct {
	name   string
	intent contractx.Intent
	match  func(in Input) bool
}

// Classifier maps one turn to exactly one intent by walking an ordered rule
// table top to bottom. The order is the contract: the first matching rule
// wins.
type Classifier struct {
	gaz   entityx.Gazetteer
	rules []rule
}

var greetingWords = []string{"hello", "hi", "hey", "good morning", "good afternoon", "good evening"}

var productWords = []string{
	"cup", "cups", "mug", "mugs", "tumbler", "tumblers", "bottle", "bottles",
	"drinkware", "buy", "product", "products", "price", "coffee", "show me",
}

// bareVerbWords marks tokens that disqualify a short utterance from being a
// bare outlet name ("SS 2" qualifies, "where is SS 2" does not).
var bareVerbWords = map[string]struct{}{
	"is": {}, "are": {}, "was": {}, "were": {}, "do": {}, "does": {}, "did": {},
	"what": {}, "what's": {}, "whats": {}, "which": {}, "where": {}, "when": {},
	"how": {}, "can": {}, "could": {}, "will": {}, "would": {}, "show": {},
	"tell": {}, "find": {}, "search": {}, "want": {}, "need": {}, "buy": {},
	"get": {}, "give": {}, "have": {}, "has": {}, "open": {}, "close": {},
}

func New(gaz entityx.Gazetteer) *Classifier {
	c := &Classifier{gaz: gaz}
	c.rules = []rule{
		{
			name:   "calculation",
			intent: contractx.IntentCalculation,
			match: func(in Input) bool {
				return len(in.Entities.Numbers) >= 2 && in.Entities.HasOperator()
			},
		},
		{
			name:   "greeting",
			intent: contractx.IntentGreeting,
			match:  matchGreeting,
		},
		{
			name:   "time_inquiry",
			intent: contractx.IntentTimeInquiry,
			match: func(in Input) bool {
				if !in.Entities.TimeReference {
					return false
				}
				return in.Entities.OutletName != "" || (in.Session != nil && in.Session.Outlet != "")
			},
		},
		{
			name:   "outlet_inquiry",
			intent: contractx.IntentOutletInquiry,
			match:  c.matchOutletInquiry,
		},
		{
			name:   "product_search",
			intent: contractx.IntentProductSearch,
			match:  matchProductSearch,
		},
	}
	return c
}

// Classify returns the first matching rule's intent, or IntentUnknown.
func (c *Classifier) Classify(in Input) contractx.Intent {
	for _, r := range c.rules {
		if r.match(in) {
			return r.intent
		}
	}
	return contractx.IntentUnknown
}

func matchGreeting(in Input) bool {
	lower := strings.ToLower(in.Text)
	greeted := false
	for _, w := range greetingWords {
		if containsWord(lower, w) {
			greeted = true
			break
		}
	}
	if !greeted {
		return false
	}
	// A greeting with a stronger signal attached belongs to that signal.
	if in.Entities.TimeReference || in.Entities.Location != "" || in.Entities.OutletName != "" {
		return false
	}
	if len(in.Entities.Numbers) >= 2 && in.Entities.HasOperator() {
		return false
	}
	return true
}

func (c *Classifier) matchOutletInquiry(in Input) bool {
	if in.Entities.Location != "" || in.Entities.OutletName != "" {
		return true
	}
	if in.Session == nil || in.Session.Stage == statex.StageInitial {
		return false
	}
	return c.barePhraseNamesOutlet(in.Text)
}

// barePhraseNamesOutlet is the follow-up heuristic: a short utterance with no
// verb that plausibly names a known outlet.
func (c *Classifier) barePhraseNamesOutlet(text string) bool {
	tokens := strings.Fields(strings.ToLower(text))
	if len(tokens) == 0 || len(tokens) > 4 {
		return false
	}
	for _, tok := range tokens {
		if _, verb := bareVerbWords[strings.Trim(tok, ".,!?")]; verb {
			return false
		}
	}
	return c.gaz.OutletPlausible(text)
}

func matchProductSearch(in Input) bool {
	lower := strings.ToLower(in.Text)
	for _, w := range productWords {
		if containsWord(lower, w) {
			return true
		}
	}
	return false
}

// containsWord is boundary-checked substring matching, so "hi" does not fire
// inside "this".
func containsWord(text, word string) bool {
	for from := 0; ; {
		idx := strings.Index(text[from:], word)
		if idx < 0 {
			return false
		}
		start := from + idx
		end := start + len(word)
		if wordBoundary(text, start-1) && wordBoundary(text, end) {
			return true
		}
		from = start + 1
	}
}

func wordBoundary(text string, i int) bool {
	if i < 0 || i >= len(text) {
		return true
	}
	c := text[i]
	return !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9')
}
