package reasoning

import (
	"context"
	"time"

	"leadpilot_backend/platform/ai/groq"
	"leadpilot_backend/platform/logger"
)

// Completer is the narrow boundary to the completion service. The engine
// invokes it exactly once per turn; retries are the caller's concern. Tests
// inject a deterministic stub.
type Completer interface {
	Complete(ctx context.Context, req groq.Request) (string, error)
}

// Engine runs reasoning turns. It is stateless and safe for concurrent use:
// every turn is a pure function of its inputs plus one completion call.
type Engine struct {
	completer Completer
	log       *logger.Logger
}

func NewEngine(completer Completer, log *logger.Logger) *Engine {
	return &Engine{completer: completer, log: log}
}

// Reason analyzes one utterance and returns a complete Result. It never
// returns an error: any service failure (transport, empty content, malformed
// or out-of-schema JSON) degrades to the deterministic fallback so callers
// need no recovery branch.
//
// The strategy rules are authoritative here. The service is asked to propose
// a strategy following the same rules, but its proposal only feeds the
// judgments that need the raw utterance (handoff, provide_info, nurture);
// when the proposal diverges from the selected strategy it is recorded as a
// rejected alternative, never followed.
func (e *Engine) Reason(ctx context.Context, userInput string, convCtx Context) Result {
	start := time.Now()

	content, err := e.completer.Complete(ctx, groq.Request{
		System:       systemPrompt,
		User:         buildUserPrompt(userInput, convCtx),
		JSONResponse: true,
		Temperature:  0.3,
		MaxTokens:    2000,
	})
	if err != nil {
		return e.finish(Fallback("completion service error: "+err.Error()), true, start)
	}

	parsed, err := parseResult(content)
	if err != nil {
		return e.finish(Fallback(err.Error()), true, start)
	}

	decision := Decide(parsed.Extracted, ReadinessScore(parsed.Extracted), SignalsFromService(parsed.Strategy))

	result := Result{
		Extracted:            parsed.Extracted,
		Reasoning:            parsed.Reasoning,
		Strategy:             decision.Strategy,
		AlternativesRejected: mergeAlternatives(decision, parsed),
		ReadinessScore:       ReadinessScore(parsed.Extracted),
		NextAction:           parsed.NextAction,
		Confidence:           parsed.Confidence,
		ResponseToUser:       parsed.ResponseToUser,
	}
	if result.Reasoning == "" {
		result.Reasoning = decision.Reasoning
	}
	if result.NextAction == "" {
		result.NextAction = decision.NextAction
	}
	if result.ResponseToUser == "" {
		result.ResponseToUser = fallbackResponse
	}

	return e.finish(result, false, start)
}

func (e *Engine) finish(r Result, fallback bool, start time.Time) Result {
	if e.log != nil {
		e.log.ReasoningTurn(string(r.Strategy), r.ReadinessScore, fallback, float64(time.Since(start).Milliseconds()))
	}
	return r
}

// mergeAlternatives combines the selector's rejected alternatives with any
// extra ones the service offered, deduplicated by strategy. A divergent
// service proposal is itself recorded as rejected.
func mergeAlternatives(decision Decision, parsed Result) []Alternative {
	seen := map[Strategy]bool{decision.Strategy: true}
	out := make([]Alternative, 0, len(decision.Alternatives)+len(parsed.AlternativesRejected)+1)

	for _, a := range decision.Alternatives {
		if !seen[a.Strategy] {
			seen[a.Strategy] = true
			out = append(out, a)
		}
	}
	if parsed.Strategy != decision.Strategy && !seen[parsed.Strategy] {
		seen[parsed.Strategy] = true
		out = append(out, Alternative{
			Strategy: parsed.Strategy,
			Reason:   "service-proposed strategy diverged from the selection rules",
		})
	}
	for _, a := range parsed.AlternativesRejected {
		if !seen[a.Strategy] {
			seen[a.Strategy] = true
			out = append(out, a)
		}
	}
	return out
}
