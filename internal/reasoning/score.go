package reasoning

// Readiness weights. They sum to 1.0 so a fully confident extraction scores
// exactly 100; changing one weight requires rebalancing the others.
const (
	weightIntent     = 0.25
	weightUrgency    = 0.20
	weightBudget     = 0.20
	weightTimeline   = 0.15
	weightMotivation = 0.10
	weightLocation   = 0.10
)

// Weights returns the readiness weight per field, for diagnostics and tests.
func Weights() map[string]float64 {
	return map[string]float64{
		"intent":     weightIntent,
		"urgency":    weightUrgency,
		"budget":     weightBudget,
		"timeline":   weightTimeline,
		"motivation": weightMotivation,
		"location":   weightLocation,
	}
}

// ReadinessScore computes the 0-100 readiness score from field confidences
// alone. Field values never enter the computation: a confident "low" urgency
// contributes as much as a confident "immediate" one. Value-level judgment
// belongs to the strategy selector, not the scorer.
func ReadinessScore(e Extraction) int {
	raw := 100 * (weightIntent*ClampUnit(e.Intent.Confidence) +
		weightUrgency*ClampUnit(e.Urgency.Confidence) +
		weightBudget*ClampUnit(e.Budget.Confidence) +
		weightTimeline*ClampUnit(e.Timeline.Confidence) +
		weightMotivation*ClampUnit(e.Motivation.Confidence) +
		weightLocation*ClampUnit(e.Location.Confidence))
	return ClampScore(raw)
}
