package reasoning

import (
	"context"
	"encoding/json"

	"leadpilot_backend/platform/ai/groq"
)

// CallInsights is the structured analysis of a completed call transcript.
type CallInsights struct {
	Summary            string   `json:"summary"`
	Objections         []string `json:"objections"`
	CompetitorMentions []string `json:"competitor_mentions"`
	RiskFlags          []string `json:"risk_flags"`
	ActionItems        []string `json:"action_items"`
}

// SummarizeCall analyzes a full call transcript. Same failure policy as
// Reason: never an error, a labeled placeholder instead, with a risk flag so
// a human knows to review the call manually.
func (e *Engine) SummarizeCall(ctx context.Context, transcript string, leadData any) CallInsights {
	placeholder := CallInsights{
		Summary:            "Failed to generate summary.",
		Objections:         []string{},
		CompetitorMentions: []string{},
		RiskFlags:          []string{"summary generation failed, review transcript manually"},
		ActionItems:        []string{},
	}

	lead, err := json.Marshal(leadData)
	if err != nil {
		lead = []byte("{}")
	}

	content, err := e.completer.Complete(ctx, groq.Request{
		System:       callSummaryPrompt,
		User:         "Call transcript:\n" + transcript + "\n\nLead data:\n" + string(lead),
		JSONResponse: true,
		Temperature:  0.3,
		MaxTokens:    1000,
	})
	if err != nil {
		return placeholder
	}

	var insights CallInsights
	if err := json.Unmarshal([]byte(content), &insights); err != nil || insights.Summary == "" {
		return placeholder
	}
	if insights.Objections == nil {
		insights.Objections = []string{}
	}
	if insights.CompetitorMentions == nil {
		insights.CompetitorMentions = []string{}
	}
	if insights.RiskFlags == nil {
		insights.RiskFlags = []string{}
	}
	if insights.ActionItems == nil {
		insights.ActionItems = []string{}
	}
	return insights
}

const managerSummaryFailed = "Manager summary generation failed. Please review lead data manually."

// SummarizeForManager produces a free-form Markdown briefing from the full
// lead history. Inputs are passed as any JSON-serializable values so the
// engine stays decoupled from storage types.
func (e *Engine) SummarizeForManager(ctx context.Context, leadData, reasoningLogs, calls any) string {
	lead := marshalIndentOr(leadData, "{}")
	logs := marshalIndentOr(reasoningLogs, "[]")
	history := marshalIndentOr(calls, "[]")

	content, err := e.completer.Complete(ctx, groq.Request{
		System:      managerSummaryPrompt,
		User:        "Lead data:\n" + lead + "\n\nReasoning history:\n" + logs + "\n\nCall history:\n" + history,
		Temperature: 0.4,
		MaxTokens:   1500,
	})
	if err != nil || content == "" {
		return managerSummaryFailed
	}
	return content
}

func marshalIndentOr(v any, fallback string) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fallback
	}
	return string(b)
}
