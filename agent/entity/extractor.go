package entity

import (
	"regexp"
	"strconv"
	"strings"

	contractx "github.com/weiheng-lim/kopibot/agent/contract"
)

var numberPattern = regexp.MustCompile(`[-+]?\d*\.?\d+`)

// operatorSynonyms maps operator words and symbols onto the evaluator
// vocabulary. When several appear in one utterance, the one occurring first
// in the text wins, so multi-word synonyms are listed before their prefixes
// ("divided by" before "divide" is irrelevant for position but keeps the
// matched span sensible).
var operatorSynonyms = []struct {
	phrase string
	op     contractx.Operator
}{
	{"plus", contractx.OperatorAdd},
	{"add", contractx.OperatorAdd},
	{"sum", contractx.OperatorAdd},
	{"minus", contractx.OperatorSub},
	{"subtract", contractx.OperatorSub},
	{"multiplied by", contractx.OperatorMul},
	{"multiply", contractx.OperatorMul},
	{"times", contractx.OperatorMul},
	{"divided by", contractx.OperatorDiv},
	{"divided", contractx.OperatorDiv},
	{"divide", contractx.OperatorDiv},
	{"over", contractx.OperatorDiv},
}

var operatorSymbols = []struct {
	symbol byte
	op     contractx.Operator
}{
	{'+', contractx.OperatorAdd},
	{'-', contractx.OperatorSub},
	{'*', contractx.OperatorMul},
	{'/', contractx.OperatorDiv},
}

var timeKeywords = []string{"open", "opening", "close", "closing", "hours", "time"}

// locationFallback captures the trailing noun phrase of "in <X>" / "near <X>"
// when the gazetteer has no entry for it.
var locationFallback = regexp.MustCompile(`\b(?:in|near)\s+(?:the\s+)?([a-z][a-z0-9' ]*)`)

var locationFillerWords = map[string]struct{}{
	"outlet": {}, "outlets": {}, "branch": {}, "branches": {},
	"store": {}, "stores": {}, "area": {}, "please": {},
}

// Extractor pulls typed slots out of raw utterance text. It never fails on
// malformed input; unrecognized patterns simply leave slots absent.
type Extractor struct {
	gaz Gazetteer
}

func New(gaz Gazetteer) *Extractor {
	return &Extractor{gaz: gaz}
}

func (x *Extractor) Extract(text string) contractx.Entities {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return contractx.Entities{}
	}

	ents := contractx.Entities{
		Numbers:  extractNumbers(lower),
		Operator: extractOperator(lower),
	}

	if loc, ok := x.gaz.MatchLocation(lower); ok {
		ents.Location = loc
	} else if loc, ok := fallbackLocation(lower); ok {
		// An outlet name after "in"/"near" is an outlet slot, not a location.
		if _, isOutlet := x.gaz.MatchOutlet(loc); !isOutlet {
			ents.Location = loc
		}
	}

	if outlet, ok := x.gaz.MatchOutlet(lower); ok {
		ents.OutletName = outlet
	}

	for _, kw := range timeKeywords {
		if containsPhrase(lower, kw) {
			ents.TimeReference = true
			break
		}
	}

	return ents
}

func extractNumbers(lower string) []float64 {
	matches := numberPattern.FindAllString(lower, -1)
	if len(matches) == 0 {
		return nil
	}
	nums := make([]float64, 0, len(matches))
	for _, m := range matches {
		v, err := strconv.ParseFloat(m, 64)
		if err != nil {
			continue
		}
		nums = append(nums, v)
	}
	if len(nums) == 0 {
		return nil
	}
	return nums
}

// extractOperator picks the operator whose synonym occurs earliest in the
// text. Symbols only count when adjacent to a digit, so hyphens in ordinary
// prose do not read as subtraction.
func extractOperator(lower string) contractx.Operator {
	best := -1
	var bestOp contractx.Operator

	for _, syn := range operatorSynonyms {
		if idx := phraseIndex(lower, syn.phrase); idx >= 0 && (best < 0 || idx < best) {
			best = idx
			bestOp = syn.op
		}
	}
	for _, sym := range operatorSymbols {
		if idx := symbolIndex(lower, sym.symbol); idx >= 0 && (best < 0 || idx < best) {
			best = idx
			bestOp = sym.op
		}
	}
	return bestOp
}

func phraseIndex(text, phrase string) int {
	for from := 0; ; {
		idx := strings.Index(text[from:], phrase)
		if idx < 0 {
			return -1
		}
		start := from + idx
		if boundaryAt(text, start-1) && boundaryAt(text, start+len(phrase)) {
			return start
		}
		from = start + 1
	}
}

func symbolIndex(text string, symbol byte) int {
	for i := 0; i < len(text); i++ {
		if text[i] != symbol {
			continue
		}
		if digitAdjacent(text, i-1, -1) || digitAdjacent(text, i+1, 1) {
			return i
		}
	}
	return -1
}

func digitAdjacent(text string, i, step int) bool {
	for ; i >= 0 && i < len(text); i += step {
		switch {
		case text[i] == ' ':
			continue
		case text[i] >= '0' && text[i] <= '9':
			return true
		default:
			return false
		}
	}
	return false
}

func fallbackLocation(lower string) (string, bool) {
	m := locationFallback.FindStringSubmatch(lower)
	if len(m) < 2 {
		return "", false
	}

	words := strings.Fields(strings.TrimSpace(m[1]))
	for len(words) > 0 {
		last := words[len(words)-1]
		if _, ok := locationFillerWords[last]; !ok {
			break
		}
		words = words[:len(words)-1]
	}
	if len(words) == 0 {
		return "", false
	}
	return strings.Join(words, " "), true
}
