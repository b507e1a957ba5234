package contract

import (
	statex "github.com/weiheng-lim/kopibot/agent/state"
)

// Intent is the classified purpose of one user turn. Exactly one intent is
// assigned per turn.
type Intent string

const (
	IntentCalculation   Intent = "calculation"
	IntentProductSearch Intent = "product_search"
	IntentOutletInquiry Intent = "outlet_inquiry"
	IntentTimeInquiry   Intent = "time_inquiry"
	IntentGreeting      Intent = "greeting"
	IntentUnknown       Intent = "unknown"
)

// Operator is the arithmetic operator vocabulary accepted by the evaluator.
type Operator string

const (
	OperatorAdd Operator = "add"
	OperatorSub Operator = "sub"
	OperatorMul Operator = "mul"
	OperatorDiv Operator = "div"
)

// Entities holds the typed slots extracted from one utterance. Absent slots
// keep their zero value; there are no false defaults.
type Entities struct {
	// Numbers preserves the left-to-right order of appearance in the text.
	Numbers []float64 `json:"numbers,omitempty"`
	// Operator is empty when no operator word or symbol was recognized.
	Operator Operator `json:"operator,omitempty"`
	// Location is the lower-cased location phrase, canonicalized through the
	// gazetteer when it matched there.
	Location string `json:"location,omitempty"`
	// OutletName is the lower-cased outlet phrase.
	OutletName string `json:"outlet_name,omitempty"`
	// TimeReference reports whether the utterance asks about hours or
	// opening/closing times.
	TimeReference bool `json:"time_reference,omitempty"`
}

func (e Entities) HasOperator() bool {
	return e.Operator != ""
}

// ProductAnswer is the product-search collaborator outcome. Success=false
// means the collaborator itself failed; Success=true with an empty Answer is
// a valid zero-match result.
type ProductAnswer struct {
	Answer  string `json:"answer"`
	Success bool   `json:"success"`
}

// OutletRecord is one outlet row returned by the outlet-lookup collaborator.
type OutletRecord struct {
	Name     string  `json:"name"`
	Location string  `json:"location"`
	Address  string  `json:"address"`
	Hours    string  `json:"opening_hours"`
	Phone    string  `json:"phone"`
	Services string  `json:"services"`
	Lat      float64 `json:"latitude"`
	Lon      float64 `json:"longitude"`
}

// StateUpdate is the dispatcher's proposed mutation for the current session.
// Zero-valued fields leave the corresponding session field unchanged, so the
// zero StateUpdate is a no-op.
type StateUpdate struct {
	Location   string       `json:"location,omitempty"`
	Outlet     string       `json:"outlet,omitempty"`
	Stage      statex.Stage `json:"stage,omitempty"`
	Confidence float64      `json:"confidence,omitempty"`
	// ClearOutlet drops the resolved outlet, e.g. when a new location is
	// confirmed and the old outlet no longer applies.
	ClearOutlet bool `json:"clear_outlet,omitempty"`
}

func (u StateUpdate) IsZero() bool {
	return u.Location == "" && u.Outlet == "" && u.Stage == "" && u.Confidence == 0 && !u.ClearOutlet
}
