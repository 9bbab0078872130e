package reasoning

import (
	"encoding/json"
	"fmt"
)

// Result is the full output of one reasoning turn. The JSON field names and
// enums are a stable contract with storage and transport; renaming or adding
// fields requires versioning, not a silent shape change.
type Result struct {
	Extracted            Extraction    `json:"extracted"`
	Reasoning            string        `json:"reasoning"`
	Strategy             Strategy      `json:"strategy"`
	AlternativesRejected []Alternative `json:"alternatives_rejected"`
	ReadinessScore       int           `json:"readiness_score"`
	NextAction           string        `json:"next_action"`
	Confidence           float64       `json:"confidence"`
	ResponseToUser       string        `json:"response_to_user"`
}

const fallbackResponse = "I want to make sure I help you properly. Could you tell me a bit more about what you're looking for?"

// Fallback builds the deterministic degraded result used whenever the
// completion service fails. It is the only recovery path: every extraction
// field is present at confidence 0, lead_type defaults to "buyer" as a safe
// assumption, and the strategy is clarify so the conversation can recover by
// asking the caller to restate their need.
func Fallback(cause string) Result {
	return Result{
		Extracted: Extraction{
			Intent:       AbsentField(0).withSentinel(),
			Budget:       AbsentField(0),
			Urgency:      AbsentField(0).withSentinel(),
			Location:     AbsentField(0),
			Timeline:     AbsentField(0),
			Motivation:   AbsentField(0),
			LeadType:     NewField(LeadTypeBuyer, 0.5),
			PropertyType: AbsentField(0),
		},
		Reasoning: "Analysis failed: " + cause + ". Falling back to clarification to keep the conversation recoverable.",
		Strategy:  StrategyClarify,
		AlternativesRejected: []Alternative{
			{StrategyQualify, "cannot act without successful analysis"},
			{StrategyBookNow, "cannot act without successful analysis"},
		},
		ReadinessScore: 0,
		NextAction:     "Re-engage the lead and retry analysis on their next message.",
		Confidence:     0,
		ResponseToUser: fallbackResponse,
	}
}

func (f Field) withSentinel() Field {
	s := ValueUnknown
	f.Value = &s
	return f
}

// rawResult mirrors Result with loose numeric types for decoding service
// output, which is not trusted to respect bounds or integer-ness.
type rawResult struct {
	Extracted            Extraction    `json:"extracted"`
	Reasoning            string        `json:"reasoning"`
	Strategy             string        `json:"strategy"`
	AlternativesRejected []Alternative `json:"alternatives_rejected"`
	ReadinessScore       float64       `json:"readiness_score"`
	NextAction           string        `json:"next_action"`
	Confidence           float64       `json:"confidence"`
	ResponseToUser       string        `json:"response_to_user"`
}

var requiredKeys = []string{"extracted", "reasoning", "strategy", "readiness_score", "next_action", "confidence", "response_to_user"}

// parseResult validates service output against the result schema: required
// keys present, strategy within the closed enum. Any violation is a service
// failure, not a partial success.
func parseResult(content string) (Result, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &keys); err != nil {
		return Result{}, fmt.Errorf("malformed response: %w", err)
	}
	for _, k := range requiredKeys {
		if _, ok := keys[k]; !ok {
			return Result{}, fmt.Errorf("response missing required key %q", k)
		}
	}

	var raw rawResult
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return Result{}, fmt.Errorf("response does not match result schema: %w", err)
	}

	strategy, ok := ParseStrategy(raw.Strategy)
	if !ok {
		return Result{}, fmt.Errorf("strategy %q outside the closed enum", raw.Strategy)
	}

	r := Result{
		Extracted:            raw.Extracted.Normalize(),
		Reasoning:            raw.Reasoning,
		Strategy:             strategy,
		AlternativesRejected: raw.AlternativesRejected,
		ReadinessScore:       ClampScore(raw.ReadinessScore),
		NextAction:           raw.NextAction,
		Confidence:           ClampUnit(raw.Confidence),
		ResponseToUser:       raw.ResponseToUser,
	}
	if r.AlternativesRejected == nil {
		r.AlternativesRejected = []Alternative{}
	}
	return r, nil
}
