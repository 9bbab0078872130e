package reasoning

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadpilot_backend/platform/ai/groq"
)

type stubCompleter struct {
	content string
	err     error
	lastReq groq.Request
	calls   int
}

func (s *stubCompleter) Complete(_ context.Context, req groq.Request) (string, error) {
	s.lastReq = req
	s.calls++
	return s.content, s.err
}

func serviceJSON(t *testing.T, mutate func(map[string]any)) string {
	t.Helper()
	payload := map[string]any{
		"extracted": map[string]any{
			"intent":              map[string]any{"value": "buy", "confidence": 0.9, "uncertainty_markers": []string{}},
			"budget":              map[string]any{"value": "$500K-$600K", "confidence": 0.8, "uncertainty_markers": []string{}},
			"urgency":             map[string]any{"value": "high", "confidence": 0.9, "uncertainty_markers": []string{}},
			"location":            map[string]any{"value": "Austin", "confidence": 0.8, "uncertainty_markers": []string{}},
			"timeline":            map[string]any{"value": "3 months", "confidence": 0.8, "uncertainty_markers": []string{}},
			"motivation":          map[string]any{"value": "relocation", "confidence": 0.7, "uncertainty_markers": []string{}},
			"lead_type":           map[string]any{"value": "buyer", "confidence": 0.9, "uncertainty_markers": []string{}},
			"property_type":       map[string]any{"value": "single-family", "confidence": 0.8, "uncertainty_markers": []string{}},
			"financing_discussed": true,
		},
		"reasoning":             "Buyer with clear budget, urgency and location.",
		"strategy":              "book_now",
		"alternatives_rejected": []map[string]any{{"strategy": "nurture", "reason": "lead is too hot to park"}},
		"readiness_score":       83,
		"next_action":           "Offer two showing slots.",
		"confidence":            0.85,
		"response_to_user":      "Great, let's find a time to view homes in Austin this week.",
	}
	if mutate != nil {
		mutate(payload)
	}
	b, err := json.Marshal(payload)
	require.NoError(t, err)
	return string(b)
}

func TestReasonSuccess(t *testing.T) {
	stub := &stubCompleter{content: serviceJSON(t, nil)}
	engine := NewEngine(stub, nil)

	res := engine.Reason(context.Background(), "I want to buy in Austin, budget around 550k, need to move in 3 months", Context{LeadID: "lead-1"})

	assert.Equal(t, StrategyBookNow, res.Strategy)
	assert.Equal(t, 83, res.ReadinessScore)
	assert.Equal(t, 0.85, res.Confidence)
	assert.Equal(t, "buy", res.Extracted.Intent.Text())
	assert.True(t, res.Extracted.FinancingDiscussed)
	assert.NotEmpty(t, res.ResponseToUser)

	assert.Equal(t, 1, stub.calls, "exactly one completion per turn, no retries")
	assert.True(t, stub.lastReq.JSONResponse)
	assert.Contains(t, stub.lastReq.User, "lead-1")
}

func TestReasonFallbackTotality(t *testing.T) {
	failures := map[string]*stubCompleter{
		"transport error":  {err: errors.New("connection refused")},
		"timeout":          {err: context.DeadlineExceeded},
		"empty content":    {content: ""},
		"malformed json":   {content: "{not json"},
		"missing keys":     {content: `{"reasoning": "ok"}`},
		"strategy anomaly": {content: serviceJSON(t, func(m map[string]any) { m["strategy"] = "escalate" })},
	}

	for name, stub := range failures {
		t.Run(name, func(t *testing.T) {
			engine := NewEngine(stub, nil)
			res := engine.Reason(context.Background(), "hello", Context{})

			assert.Equal(t, StrategyClarify, res.Strategy)
			assert.Equal(t, 0, res.ReadinessScore)
			assert.Equal(t, 0.0, res.Confidence)
			assert.NotEmpty(t, res.Reasoning)
			assert.NotEmpty(t, res.ResponseToUser)

			require.NotNil(t, res.Extracted.LeadType.Value)
			assert.Equal(t, "buyer", *res.Extracted.LeadType.Value)
			assert.Equal(t, 0.5, res.Extracted.LeadType.Confidence)
			assert.Equal(t, 0.0, res.Extracted.Intent.Confidence)

			require.Len(t, res.AlternativesRejected, 2)
			for _, alt := range res.AlternativesRejected {
				assert.Equal(t, "cannot act without successful analysis", alt.Reason)
			}
		})
	}
}

func TestReasonClampsServiceValues(t *testing.T) {
	stub := &stubCompleter{content: serviceJSON(t, func(m map[string]any) {
		m["readiness_score"] = 420
		m["confidence"] = 3.5
		extracted := m["extracted"].(map[string]any)
		extracted["intent"].(map[string]any)["confidence"] = 1.7
	})}
	engine := NewEngine(stub, nil)

	res := engine.Reason(context.Background(), "buying asap", Context{})

	assert.LessOrEqual(t, res.ReadinessScore, 100)
	assert.Equal(t, 1.0, res.Confidence)
	assert.Equal(t, 1.0, res.Extracted.Intent.Confidence)
}

func TestReasonScoreRecomputedFromExtraction(t *testing.T) {
	stub := &stubCompleter{content: serviceJSON(t, func(m map[string]any) {
		m["readiness_score"] = 12
	})}
	engine := NewEngine(stub, nil)

	res := engine.Reason(context.Background(), "ready to buy", Context{})
	assert.Equal(t, 83, res.ReadinessScore, "score comes from the weighted confidences, not the service's claim")
}

func TestReasonRecordsDivergentServiceStrategy(t *testing.T) {
	stub := &stubCompleter{content: serviceJSON(t, func(m map[string]any) {
		m["strategy"] = "nurture"
		delete(m, "alternatives_rejected")
	})}
	engine := NewEngine(stub, nil)

	res := engine.Reason(context.Background(), "ready to buy", Context{})

	assert.Equal(t, StrategyBookNow, res.Strategy)
	var found bool
	for _, alt := range res.AlternativesRejected {
		if alt.Strategy == StrategyNurture {
			found = true
			assert.Contains(t, alt.Reason, "diverged")
		}
	}
	assert.True(t, found, "divergent service proposal must appear as a rejected alternative")
}

func TestReasonBrowsingLeadGetsNurtured(t *testing.T) {
	stub := &stubCompleter{content: serviceJSON(t, func(m map[string]any) {
		extracted := m["extracted"].(map[string]any)
		extracted["intent"] = map[string]any{"value": "browse", "confidence": 0.9, "uncertainty_markers": []string{}}
		extracted["urgency"] = map[string]any{"value": "low", "confidence": 0.8, "uncertainty_markers": []string{}}
		m["strategy"] = "nurture"
	})}
	engine := NewEngine(stub, nil)

	res := engine.Reason(context.Background(), "just looking around for now", Context{})
	assert.Equal(t, StrategyNurture, res.Strategy)
}

func TestReasonServiceProvideInfoSignal(t *testing.T) {
	stub := &stubCompleter{content: serviceJSON(t, func(m map[string]any) {
		extracted := m["extracted"].(map[string]any)
		extracted["urgency"] = map[string]any{"value": "low", "confidence": 0.8, "uncertainty_markers": []string{}}
		m["strategy"] = "provide_info"
	})}
	engine := NewEngine(stub, nil)

	res := engine.Reason(context.Background(), "what are mortgage rates like in Austin right now", Context{})
	assert.Equal(t, StrategyProvideInfo, res.Strategy)
}

func TestReasonServiceHandoffSignal(t *testing.T) {
	stub := &stubCompleter{content: serviceJSON(t, func(m map[string]any) {
		m["strategy"] = "handoff"
	})}
	engine := NewEngine(stub, nil)

	res := engine.Reason(context.Background(), "I need legal advice on the title dispute", Context{})
	assert.Equal(t, StrategyHandoff, res.Strategy)
}

func TestReasonSubstitutesEmptyResponse(t *testing.T) {
	stub := &stubCompleter{content: serviceJSON(t, func(m map[string]any) {
		m["response_to_user"] = ""
	})}
	engine := NewEngine(stub, nil)

	res := engine.Reason(context.Background(), "hi", Context{})
	assert.NotEmpty(t, res.ResponseToUser)
}

func TestReasonConcurrentTurns(t *testing.T) {
	// one stub per goroutine, the stub itself is not synchronized
	payload := serviceJSON(t, nil)
	done := make(chan Result, 8)
	for i := 0; i < 8; i++ {
		go func(i int) {
			engine := NewEngine(&stubCompleter{content: payload}, nil)
			done <- engine.Reason(context.Background(), fmt.Sprintf("turn %d", i), Context{})
		}(i)
	}
	for i := 0; i < 8; i++ {
		res := <-done
		assert.Equal(t, StrategyBookNow, res.Strategy)
	}
}

func TestSummarizeCallFallback(t *testing.T) {
	engine := NewEngine(&stubCompleter{err: errors.New("boom")}, nil)

	insights := engine.SummarizeCall(context.Background(), "transcript", map[string]any{"name": "Ann"})
	assert.Equal(t, "Failed to generate summary.", insights.Summary)
	require.Len(t, insights.RiskFlags, 1)
	assert.Contains(t, insights.RiskFlags[0], "review transcript manually")
	assert.NotNil(t, insights.Objections)
	assert.NotNil(t, insights.ActionItems)
}

func TestSummarizeCallSuccess(t *testing.T) {
	stub := &stubCompleter{content: `{"summary":"Lead wants a condo downtown.","objections":["price"],"competitor_mentions":[],"risk_flags":[],"action_items":["send listings"]}`}
	engine := NewEngine(stub, nil)

	insights := engine.SummarizeCall(context.Background(), "transcript", nil)
	assert.Equal(t, "Lead wants a condo downtown.", insights.Summary)
	assert.Equal(t, []string{"price"}, insights.Objections)
	assert.True(t, stub.lastReq.JSONResponse)
}

func TestSummarizeForManagerFallback(t *testing.T) {
	engine := NewEngine(&stubCompleter{err: errors.New("boom")}, nil)
	out := engine.SummarizeForManager(context.Background(), map[string]any{}, nil, nil)
	assert.Equal(t, "Manager summary generation failed. Please review lead data manually.", out)
}

func TestSummarizeForManagerSuccess(t *testing.T) {
	stub := &stubCompleter{content: "# Ann: Summary Report"}
	engine := NewEngine(stub, nil)
	out := engine.SummarizeForManager(context.Background(), map[string]any{"name": "Ann"}, []string{}, []string{})
	assert.Equal(t, "# Ann: Summary Report", out)
	assert.False(t, stub.lastReq.JSONResponse, "manager summary is free-form markdown")
}
