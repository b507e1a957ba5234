package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	contractx "github.com/weiheng-lim/kopibot/agent/contract"
	statex "github.com/weiheng-lim/kopibot/agent/state"
)

const defaultToolTimeout = 10 * time.Second

// Confidence constants per resolution kind. Heuristic signals, not
// probabilities.
const (
	confidenceLocationConfirmed = 0.8
	confidenceOutletConfirmed   = 0.9
	confidenceAnsweredFromState = 0.95
)

const (
	ReplyGreeting = "Hello! I'm your AI assistant. I can help you with outlet information, calculations, and product searches. How can I help you today?"
	ReplyUnknown  = "I'm not sure how to help with that. I can assist with outlet information, calculations, and product searches. What would you like to know?"

	ReplyCalcNeedNumbers     = "I need two numbers to calculate. Try something like 'What is 4 plus 5?'"
	ReplyCalcNeedOperation   = "I couldn't understand the operation. Try 'add', 'subtract', 'multiply', or 'divide'."
	ReplyCalcUndefined       = "Dividing by zero is undefined, so I can't calculate that one."
	ReplyCalcUnavailable     = "The calculator service is currently unavailable. Please try again later."
	ReplyProductsNoMatch     = "Sorry, I couldn't find any products matching your query. Please try different keywords."
	ReplyProductsUnavailable = "Sorry, I'm having trouble searching for products right now. Please try again later."
	ReplyOutletsUnavailable  = "I'm having trouble accessing outlet information right now. Please try again later."
	ReplyAskOutlet           = "Which outlet are you asking about? Please specify the outlet name."
	ReplyAskLocation         = "Which area are you interested in? We have outlets in Petaling Jaya, Kuala Lumpur, Subang, and Puchong."
)

// Config tunes dispatcher behavior.
type Config struct {
	// ToolTimeout bounds each collaborator call. A timeout is treated the
	// same as a collaborator fault: fixed fallback reply, state unchanged.
	ToolTimeout time.Duration
}

// Request is one dispatch: the classified intent, the raw turn text, the
// extracted entities, and the session state as read at the start of the turn.
type Request struct {
	Intent   contractx.Intent
	Text     string
	Entities contractx.Entities
	Session  *statex.Session
}

// Result pairs the user-facing reply with the proposed state update. The
// update is applied by the controller only after the whole turn succeeds.
type Result struct {
	Reply  string
	Update contractx.StateUpdate
}

// Dispatcher routes an intent to the matching tool, invokes it within the
// configured timeout, and maps success / empty / error outcomes to replies.
// Collaborator faults never escape: every path yields a reply.
type Dispatcher struct {
	calc     contractx.Calculator
	products contractx.ProductSearcher
	outlets  contractx.OutletLookup
	timeout  time.Duration
}

var titleCaser = cases.Title(language.English)

func New(calc contractx.Calculator, products contractx.ProductSearcher, outlets contractx.OutletLookup, cfg Config) (*Dispatcher, error) {
	if calc == nil {
		return nil, errors.New("calculator is required")
	}
	if products == nil {
		return nil, errors.New("product searcher is required")
	}
	if outlets == nil {
		return nil, errors.New("outlet lookup is required")
	}

	timeout := cfg.ToolTimeout
	if timeout <= 0 {
		timeout = defaultToolTimeout
	}

	return &Dispatcher{
		calc:     calc,
		products: products,
		outlets:  outlets,
		timeout:  timeout,
	}, nil
}

func (d *Dispatcher) Dispatch(ctx context.Context, in Request) (Result, error) {
	if in.Session == nil {
		return Result{}, fmt.Errorf("%w: session is nil", contractx.ErrValidation)
	}

	switch in.Intent {
	case contractx.IntentCalculation:
		return d.handleCalculation(ctx, in), nil
	case contractx.IntentProductSearch:
		return d.handleProductSearch(ctx, in), nil
	case contractx.IntentOutletInquiry:
		return d.handleOutletInquiry(ctx, in), nil
	case contractx.IntentTimeInquiry:
		return d.handleTimeInquiry(ctx, in), nil
	case contractx.IntentGreeting:
		return Result{Reply: ReplyGreeting}, nil
	case contractx.IntentUnknown:
		return Result{Reply: ReplyUnknown}, nil
	default:
		return Result{}, fmt.Errorf("%w: unsupported intent %q", contractx.ErrValidation, in.Intent)
	}
}

func (d *Dispatcher) handleCalculation(ctx context.Context, in Request) Result {
	if len(in.Entities.Numbers) < 2 {
		return Result{Reply: ReplyCalcNeedNumbers}
	}
	if !in.Entities.HasOperator() {
		return Result{Reply: ReplyCalcNeedOperation}
	}

	a, b := in.Entities.Numbers[0], in.Entities.Numbers[1]

	toolCtx, cancel := d.toolContext(ctx)
	defer cancel()

	value, err := d.calc.Evaluate(toolCtx, a, b, in.Entities.Operator)
	if err != nil {
		if errors.Is(err, contractx.ErrDivisionByZero) {
			return Result{Reply: ReplyCalcUndefined}
		}
		log.Error().Err(err).Str("tool", "calculator").Msg("calculator call failed")
		return Result{Reply: ReplyCalcUnavailable}
	}

	return Result{Reply: fmt.Sprintf("The answer is %s.", formatNumber(value))}
}

func (d *Dispatcher) handleProductSearch(ctx context.Context, in Request) Result {
	toolCtx, cancel := d.toolContext(ctx)
	defer cancel()

	answer, err := d.products.Search(toolCtx, in.Text)
	if err != nil || !answer.Success {
		if err != nil {
			log.Error().Err(err).Str("tool", "products").Msg("product search failed")
		} else {
			log.Warn().Str("tool", "products").Msg("product search reported failure")
		}
		return Result{Reply: ReplyProductsUnavailable}
	}
	if strings.TrimSpace(answer.Answer) == "" {
		return Result{Reply: ReplyProductsNoMatch}
	}
	return Result{Reply: answer.Answer}
}

func (d *Dispatcher) handleOutletInquiry(ctx context.Context, in Request) Result {
	st := in.Session
	loc := in.Entities.Location

	if loc != "" {
		// "ss 2 in pj" with pj already confirmed is outlet resolution, not a
		// fresh location inquiry.
		if in.Entities.OutletName != "" && loc == st.Location && st.Stage != statex.StageInitial {
			return d.resolveOutletInLocation(ctx, loc, in.Entities.OutletName)
		}
		return d.inquireLocation(ctx, loc)
	}

	if st.Stage != statex.StageInitial && st.Location != "" {
		candidate := in.Entities.OutletName
		if candidate == "" {
			candidate = strings.ToLower(strings.TrimSpace(in.Text))
		}
		return d.resolveOutletInLocation(ctx, st.Location, candidate)
	}

	if in.Entities.OutletName != "" {
		return d.inquireOutletDirect(ctx, in.Entities.OutletName)
	}

	return Result{Reply: ReplyAskLocation}
}

// inquireLocation queries the collaborator for a fresh location. One match
// confirms the outlet directly, several confirm the location and list the
// choices, zero changes nothing.
func (d *Dispatcher) inquireLocation(ctx context.Context, loc string) Result {
	records, err := d.lookupOutlets(ctx, "outlets in "+loc)
	if err != nil {
		return Result{Reply: ReplyOutletsUnavailable}
	}

	switch len(records) {
	case 0:
		return Result{
			Reply: fmt.Sprintf("I don't have information about outlets in %s. Please try another location.", titleCaser.String(loc)),
		}
	case 1:
		rec := records[0]
		return Result{
			Reply: fmt.Sprintf("We have one outlet in %s: %s. You can ask me about its opening hours.", titleCaser.String(loc), rec.Name),
			Update: contractx.StateUpdate{
				Location:   loc,
				Outlet:     strings.ToLower(rec.Name),
				Stage:      statex.StageOutletConfirmed,
				Confidence: confidenceOutletConfirmed,
			},
		}
	default:
		names := make([]string, 0, len(records))
		for _, rec := range records {
			names = append(names, rec.Name)
		}
		return Result{
			Reply: fmt.Sprintf("Yes! We have outlets in %s: %s. Which one are you interested in?", titleCaser.String(loc), strings.Join(names, ", ")),
			Update: contractx.StateUpdate{
				Location:    loc,
				Stage:       statex.StageLocationConfirmed,
				Confidence:  confidenceLocationConfirmed,
				ClearOutlet: true,
			},
		}
	}
}

// resolveOutletInLocation matches a follow-up phrase against the outlets of
// the already-confirmed location.
func (d *Dispatcher) resolveOutletInLocation(ctx context.Context, loc, candidate string) Result {
	records, err := d.lookupOutlets(ctx, "outlets in "+loc)
	if err != nil {
		return Result{Reply: ReplyOutletsUnavailable}
	}

	if rec, ok := matchOutletRecord(records, candidate); ok {
		return Result{
			Reply: fmt.Sprintf("Great, %s it is. You can ask me about its opening hours.", rec.Name),
			Update: contractx.StateUpdate{
				Location:   loc,
				Outlet:     strings.ToLower(candidate),
				Stage:      statex.StageOutletConfirmed,
				Confidence: confidenceOutletConfirmed,
			},
		}
	}

	names := make([]string, 0, len(records))
	for _, rec := range records {
		names = append(names, rec.Name)
	}
	if len(names) == 0 {
		return Result{
			Reply: fmt.Sprintf("I don't have information about outlets in %s. Please try another location.", titleCaser.String(loc)),
		}
	}
	return Result{
		Reply: fmt.Sprintf("I couldn't find a %s outlet in %s. We have: %s.", candidate, titleCaser.String(loc), strings.Join(names, ", ")),
	}
}

// inquireOutletDirect resolves a full outlet name given with no prior
// location, jumping straight to outlet-confirmed when the record is found.
func (d *Dispatcher) inquireOutletDirect(ctx context.Context, outlet string) Result {
	records, err := d.lookupOutlets(ctx, "outlets matching "+outlet)
	if err != nil {
		return Result{Reply: ReplyOutletsUnavailable}
	}

	rec, ok := matchOutletRecord(records, outlet)
	if !ok {
		return Result{
			Reply: fmt.Sprintf("I don't have information about the %s outlet. Please specify a valid outlet.", outlet),
		}
	}

	reply := fmt.Sprintf("Found it: %s in %s. You can ask me about its opening hours.", rec.Name, rec.Location)

	loc := strings.ToLower(strings.TrimSpace(rec.Location))
	if loc == "" {
		// A record without a location cannot satisfy the confirmed-outlet
		// stage, so only the reply is produced.
		return Result{Reply: reply}
	}

	return Result{
		Reply: reply,
		Update: contractx.StateUpdate{
			Location:   loc,
			Outlet:     outlet,
			Stage:      statex.StageOutletConfirmed,
			Confidence: confidenceOutletConfirmed,
		},
	}
}

func (d *Dispatcher) handleTimeInquiry(ctx context.Context, in Request) Result {
	st := in.Session

	outlet := in.Entities.OutletName
	fromState := false
	if outlet == "" {
		outlet = st.Outlet
		fromState = true
	}
	if outlet == "" {
		return Result{Reply: ReplyAskOutlet}
	}

	records, err := d.lookupOutlets(ctx, "opening hours for "+outlet+" outlet")
	if err != nil {
		return Result{Reply: ReplyOutletsUnavailable}
	}

	rec, ok := matchOutletRecord(records, outlet)
	if !ok {
		if len(records) == 0 {
			return Result{
				Reply: fmt.Sprintf("I don't have information about the %s outlet. Please specify a valid outlet.", outlet),
			}
		}
		rec = records[0]
	}

	// The stored hours string covers both opening and closing questions and
	// is reported as-is.
	reply := fmt.Sprintf("The %s outlet opening hours: %s.", rec.Name, rec.Hours)

	if fromState {
		return Result{
			Reply:  reply,
			Update: contractx.StateUpdate{Confidence: confidenceAnsweredFromState},
		}
	}

	loc := st.Location
	if loc == "" {
		loc = strings.ToLower(strings.TrimSpace(rec.Location))
	}
	if loc == "" {
		return Result{Reply: reply}
	}
	return Result{
		Reply: reply,
		Update: contractx.StateUpdate{
			Location:   loc,
			Outlet:     outlet,
			Stage:      statex.StageOutletConfirmed,
			Confidence: confidenceOutletConfirmed,
		},
	}
}

func (d *Dispatcher) lookupOutlets(ctx context.Context, query string) ([]contractx.OutletRecord, error) {
	toolCtx, cancel := d.toolContext(ctx)
	defer cancel()

	records, err := d.outlets.Lookup(toolCtx, query)
	if err != nil {
		log.Error().Err(err).Str("tool", "outlets").Str("query", query).Msg("outlet lookup failed")
		return nil, err
	}
	return records, nil
}

func (d *Dispatcher) toolContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, d.timeout)
}

// matchOutletRecord finds the record whose name loosely contains the
// candidate phrase: case-insensitive and space-insensitive in both
// directions, so "SS 2" matches "ZUS Coffee SS2".
func matchOutletRecord(records []contractx.OutletRecord, candidate string) (contractx.OutletRecord, bool) {
	cand := squashName(candidate)
	if cand == "" {
		return contractx.OutletRecord{}, false
	}
	for _, rec := range records {
		name := squashName(rec.Name)
		if name == "" {
			continue
		}
		if strings.Contains(name, cand) || strings.Contains(cand, name) {
			return rec, true
		}
	}
	return contractx.OutletRecord{}, false
}

func squashName(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
