// Package reasoning implements the lead reasoning engine: structured signal
// extraction with per-field confidence, readiness scoring, strategy selection
// with rejected alternatives, and the always-succeed fallback policy around
// the completion service.
package reasoning

import (
	"encoding/json"
	"math"
	"strconv"
)

// Sentinel values for enumerated fields when nothing was extracted.
const (
	ValueUnknown = "unknown"

	// Intent values
	IntentBuy    = "buy"
	IntentSell   = "sell"
	IntentInvest = "invest"
	IntentRent   = "rent"
	IntentBrowse = "browse"

	// Urgency values
	UrgencyImmediate = "immediate"
	UrgencyHigh      = "high"
	UrgencyMedium    = "medium"
	UrgencyLow       = "low"

	// Lead types
	LeadTypeBuyer    = "buyer"
	LeadTypeSeller   = "seller"
	LeadTypeInvestor = "investor"
	LeadTypeRenter   = "renter"
)

// Field is a single extracted attribute: a value (nil when absent), a
// confidence in [0,1], and optional uncertainty markers (hedging phrases
// detected in the source text). Markers are advisory for the audit trail
// only; confidence is never recomputed from them.
type Field struct {
	Value              *string  `json:"value"`
	Confidence         float64  `json:"confidence"`
	UncertaintyMarkers []string `json:"uncertainty_markers"`
}

// NewField creates a field with a present value.
func NewField(value string, confidence float64) Field {
	v := value
	return Field{Value: &v, Confidence: ClampUnit(confidence), UncertaintyMarkers: []string{}}
}

// AbsentField creates a field with no value at the given confidence.
func AbsentField(confidence float64) Field {
	return Field{Value: nil, Confidence: ClampUnit(confidence), UncertaintyMarkers: []string{}}
}

// HasValue reports whether the field carries a usable value. Sentinel
// "unknown" strings count as absent.
func (f Field) HasValue() bool {
	return f.Value != nil && *f.Value != "" && *f.Value != ValueUnknown
}

// Text returns the field value or the sentinel when absent.
func (f Field) Text() string {
	if f.Value == nil {
		return ValueUnknown
	}
	return *f.Value
}

// UnmarshalJSON accepts string, numeric, boolean or null values for the
// field's value, coercing everything to a string. The completion service is
// not trusted to keep value types stable.
func (f *Field) UnmarshalJSON(data []byte) error {
	var raw struct {
		Value              interface{} `json:"value"`
		Confidence         float64     `json:"confidence"`
		UncertaintyMarkers []string    `json:"uncertainty_markers"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	f.Confidence = raw.Confidence
	f.UncertaintyMarkers = raw.UncertaintyMarkers
	if f.UncertaintyMarkers == nil {
		f.UncertaintyMarkers = []string{}
	}

	switch v := raw.Value.(type) {
	case nil:
		f.Value = nil
	case string:
		if v == "" {
			f.Value = nil
		} else {
			f.Value = &v
		}
	case float64:
		s := strconv.FormatFloat(v, 'f', -1, 64)
		f.Value = &s
	case bool:
		s := strconv.FormatBool(v)
		f.Value = &s
	default:
		f.Value = nil
	}

	return nil
}

// Extraction is the fixed set of confidence-tagged fields produced by one
// reasoning pass. It is immutable after creation: a new turn produces a new
// Extraction, and merging with prior lead state is the caller's concern.
type Extraction struct {
	Intent             Field `json:"intent"`
	Budget             Field `json:"budget"`
	Urgency            Field `json:"urgency"`
	Location           Field `json:"location"`
	Timeline           Field `json:"timeline"`
	Motivation         Field `json:"motivation"`
	LeadType           Field `json:"lead_type"`
	PropertyType       Field `json:"property_type"`
	FinancingDiscussed bool  `json:"financing_discussed"`
}

// Normalize enforces the producer contract: every field present (absent
// fields carry a nil value, enumerated fields a sentinel) and every
// confidence clamped into [0,1]. Downstream scoring assumes this holds.
func (e Extraction) Normalize() Extraction {
	e.Intent = normalizeEnum(e.Intent)
	e.Urgency = normalizeEnum(e.Urgency)
	e.LeadType = normalizeEnum(e.LeadType)
	e.Budget = normalizeFree(e.Budget)
	e.Location = normalizeFree(e.Location)
	e.Timeline = normalizeFree(e.Timeline)
	e.Motivation = normalizeFree(e.Motivation)
	e.PropertyType = normalizeFree(e.PropertyType)
	return e
}

func normalizeEnum(f Field) Field {
	f.Confidence = ClampUnit(f.Confidence)
	if f.Value == nil || *f.Value == "" {
		sentinel := ValueUnknown
		f.Value = &sentinel
	}
	if f.UncertaintyMarkers == nil {
		f.UncertaintyMarkers = []string{}
	}
	return f
}

func normalizeFree(f Field) Field {
	f.Confidence = ClampUnit(f.Confidence)
	if f.Value != nil && *f.Value == "" {
		f.Value = nil
	}
	if f.UncertaintyMarkers == nil {
		f.UncertaintyMarkers = []string{}
	}
	return f
}

// ClampUnit clamps a confidence into [0,1]. Idempotent.
func ClampUnit(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ClampScore rounds a raw score to the nearest integer and clamps it into
// [0,100]. Idempotent.
func ClampScore(v float64) int {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(math.Round(v))
}
