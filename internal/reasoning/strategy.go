package reasoning

import "fmt"

// Strategy is the conversational action class for the current turn. It is
// re-evaluated on every turn; there is no persistent state machine behind it.
type Strategy string

const (
	StrategyClarify     Strategy = "clarify"
	StrategyQualify     Strategy = "qualify"
	StrategyBookNow     Strategy = "book_now"
	StrategyNurture     Strategy = "nurture"
	StrategyHandoff     Strategy = "handoff"
	StrategyProvideInfo Strategy = "provide_info"
)

// ParseStrategy validates a raw strategy string against the closed enum.
func ParseStrategy(s string) (Strategy, bool) {
	switch Strategy(s) {
	case StrategyClarify, StrategyQualify, StrategyBookNow, StrategyNurture, StrategyHandoff, StrategyProvideInfo:
		return Strategy(s), true
	}
	return "", false
}

// Alternative is a strategy that was considered and rejected, with the reason.
type Alternative struct {
	Strategy Strategy `json:"strategy"`
	Reason   string   `json:"reason"`
}

// Signals carries judgments only the completion service can make from the raw
// utterance: whether the caller asked a legal/financial question beyond scope
// or requested a human (handoff), whether the input was a plain factual
// question (provide_info), and whether the conversation reads as passive
// browsing (nurture). The selector consumes them as inputs to the handoff,
// provide_info and nurture rules; everything else is decided from the
// extraction alone.
type Signals struct {
	WantsHuman      bool
	FactualQuestion bool
	Nurture         bool
}

// SignalsFromService derives selector signals from the strategy the
// completion service itself proposed. The service sees the raw utterance and
// is the only component positioned to make these judgments.
func SignalsFromService(proposed Strategy) Signals {
	return Signals{
		WantsHuman:      proposed == StrategyHandoff,
		FactualQuestion: proposed == StrategyProvideInfo,
		Nurture:         proposed == StrategyNurture,
	}
}

// Decision is the selector output: the chosen strategy, the plausible
// alternatives that were rejected with reasons, a reasoning string that
// references the confidence values that drove the choice, and a concrete
// next action.
type Decision struct {
	Strategy     Strategy
	Alternatives []Alternative
	Reasoning    string
	NextAction   string
}

const (
	confidenceFloor   = 0.7
	lowReadinessScore = 40
)

// Decide selects a strategy for the turn. Rules are evaluated in strict
// precedence order; the first match wins. Rule 1 (clarify on any
// low-confidence critical field) beats everything: the system never acts on
// intent, budget, or timeline it is not sure about. Past rule 1 the critical
// fields are known to be confident, so the utterance-level signals and the
// booking rule get their chance before qualify closes out as the default.
func Decide(e Extraction, score int, sig Signals) Decision {
	critical := lowCriticalFields(e)

	if len(critical) > 0 {
		d := Decision{
			Strategy: StrategyClarify,
			Reasoning: fmt.Sprintf("Critical field confidence below %.1f: %s. Cannot act on uncertain critical fields regardless of readiness score (%d).",
				confidenceFloor, formatLowFields(critical), score),
			NextAction: "Ask a targeted question to pin down " + critical[0].name + " before qualifying further.",
		}
		d.Alternatives = append(d.Alternatives,
			Alternative{StrategyQualify, fmt.Sprintf("rejected: %s confidence %.2f is below the %.1f threshold", critical[0].name, critical[0].confidence, confidenceFloor)},
			Alternative{StrategyBookNow, "rejected: cannot book on low-confidence critical fields"},
		)
		return d
	}

	if sig.WantsHuman {
		return Decision{
			Strategy:   StrategyHandoff,
			Reasoning:  fmt.Sprintf("Input requires a human agent (legal/financial scope or explicit request). Critical fields are confident (intent %.2f, budget %.2f, timeline %.2f) but the question is out of scope.", e.Intent.Confidence, e.Budget.Confidence, e.Timeline.Confidence),
			NextAction: "Route the conversation to a licensed agent and share the qualification context.",
			Alternatives: []Alternative{
				{StrategyProvideInfo, "rejected: question is outside safe general-knowledge scope"},
				{StrategyQualify, "rejected: continuing qualification would ignore the explicit handoff signal"},
			},
		}
	}

	if score > 80 && isUrgent(e.Urgency) && e.Budget.HasValue() && e.Location.HasValue() {
		return Decision{
			Strategy: StrategyBookNow,
			Reasoning: fmt.Sprintf("Readiness %d exceeds 80 with %s urgency (%.2f), budget %q (%.2f) and location %q (%.2f) known. Lead is ready to commit to a concrete step.",
				score, e.Urgency.Text(), e.Urgency.Confidence, e.Budget.Text(), e.Budget.Confidence, e.Location.Text(), e.Location.Confidence),
			NextAction: "Propose two concrete appointment slots and confirm one on this turn.",
			Alternatives: []Alternative{
				{StrategyQualify, fmt.Sprintf("rejected: lead is already qualified at readiness %d, further questions add friction", score)},
				{StrategyNurture, "rejected: urgency is too high to defer to follow-up"},
			},
		}
	}

	if sig.FactualQuestion {
		return Decision{
			Strategy:   StrategyProvideInfo,
			Reasoning:  fmt.Sprintf("Input is a factual question answerable from general market knowledge; readiness %d does not support booking.", score),
			NextAction: "Answer the question briefly, then pivot back to one qualification question.",
			Alternatives: []Alternative{
				{StrategyQualify, "rejected: answering the question first builds the trust needed to qualify"},
			},
		}
	}

	if e.Intent.Text() == IntentBrowse || (sig.Nurture && score < lowReadinessScore) {
		return Decision{
			Strategy: StrategyNurture,
			Reasoning: fmt.Sprintf("Intent is %s (%.2f) with readiness %d; lead is not ready for active qualification.",
				e.Intent.Text(), e.Intent.Confidence, score),
			NextAction: "Add the lead to the nurture sequence and schedule a follow-up touch.",
			Alternatives: []Alternative{
				{StrategyQualify, fmt.Sprintf("rejected: readiness %d is too low to press for qualification", score)},
				{StrategyBookNow, "rejected: no urgency or commitment signals present"},
			},
		}
	}

	d := Decision{
		Strategy: StrategyQualify,
		Reasoning: fmt.Sprintf("Intent (%.2f), budget (%.2f) and timeline (%.2f) are all confident; readiness %d does not yet support booking.",
			e.Intent.Confidence, e.Budget.Confidence, e.Timeline.Confidence, score),
		NextAction: "Deepen qualification: confirm motivation and financing before proposing a showing.",
	}
	d.Alternatives = append(d.Alternatives, Alternative{StrategyBookNow, bookNowRejection(e, score)})
	if sig.Nurture {
		d.Alternatives = append(d.Alternatives, Alternative{StrategyNurture, fmt.Sprintf("rejected: readiness %d is high enough to keep qualifying actively", score)})
	}
	return d
}

type lowField struct {
	name       string
	confidence float64
}

func lowCriticalFields(e Extraction) []lowField {
	var out []lowField
	if e.Intent.Confidence < confidenceFloor {
		out = append(out, lowField{"intent", e.Intent.Confidence})
	}
	if e.Budget.Confidence < confidenceFloor {
		out = append(out, lowField{"budget", e.Budget.Confidence})
	}
	if e.Timeline.Confidence < confidenceFloor {
		out = append(out, lowField{"timeline", e.Timeline.Confidence})
	}
	return out
}

func formatLowFields(fields []lowField) string {
	s := ""
	for i, f := range fields {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%s at %.2f", f.name, f.confidence)
	}
	return s
}

func isUrgent(urgency Field) bool {
	return urgency.Text() == UrgencyHigh || urgency.Text() == UrgencyImmediate
}

func bookNowRejection(e Extraction, score int) string {
	switch {
	case score <= 80:
		return fmt.Sprintf("rejected: readiness %d does not exceed the booking threshold of 80", score)
	case !isUrgent(e.Urgency):
		return fmt.Sprintf("rejected: urgency %q does not justify booking yet", e.Urgency.Text())
	case !e.Budget.HasValue():
		return "rejected: budget is unknown, booking needs a concrete range"
	default:
		return "rejected: location is unknown, booking needs a target area"
	}
}
