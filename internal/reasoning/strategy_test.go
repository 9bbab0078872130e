package reasoning

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClarifyPrecedence(t *testing.T) {
	tests := []struct {
		name string
		mut  func(*Extraction)
	}{
		{"low intent", func(e *Extraction) { e.Intent.Confidence = 0.3 }},
		{"low budget", func(e *Extraction) { e.Budget.Confidence = 0.4 }},
		{"low timeline", func(e *Extraction) { e.Timeline.Confidence = 0.69 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := confidentExtraction()
			tt.mut(&e)
			// Clarify wins regardless of the computed score or any service signal.
			d := Decide(e, ReadinessScore(e), Signals{WantsHuman: true, FactualQuestion: true, Nurture: true})
			assert.Equal(t, StrategyClarify, d.Strategy)
			assert.NotEmpty(t, d.Reasoning)
			assert.NotEmpty(t, d.NextAction)

			rejected := make([]Strategy, 0, len(d.Alternatives))
			for _, a := range d.Alternatives {
				rejected = append(rejected, a.Strategy)
			}
			assert.Contains(t, rejected, StrategyQualify)
			assert.Contains(t, rejected, StrategyBookNow)
		})
	}
}

func TestBookNowScenario(t *testing.T) {
	e := confidentExtraction()
	score := ReadinessScore(e)
	require.Equal(t, 83, score)

	d := Decide(e, score, Signals{})
	assert.Equal(t, StrategyBookNow, d.Strategy)
	assert.Contains(t, d.Reasoning, "83")
}

func TestBookNowRequiresAllConditions(t *testing.T) {
	t.Run("score at threshold", func(t *testing.T) {
		e := confidentExtraction()
		d := Decide(e, 80, Signals{})
		assert.Equal(t, StrategyQualify, d.Strategy)
	})

	t.Run("medium urgency", func(t *testing.T) {
		e := confidentExtraction()
		e.Urgency = field("medium", 0.9)
		d := Decide(e, ReadinessScore(e), Signals{})
		assert.Equal(t, StrategyQualify, d.Strategy)
	})

	t.Run("missing location", func(t *testing.T) {
		e := confidentExtraction()
		e.Location = Field{Confidence: 0.8}
		d := Decide(e, 85, Signals{})
		assert.Equal(t, StrategyQualify, d.Strategy)

		var reasons []string
		for _, a := range d.Alternatives {
			if a.Strategy == StrategyBookNow {
				reasons = append(reasons, a.Reason)
			}
		}
		require.Len(t, reasons, 1)
		assert.Contains(t, reasons[0], "location")
	})
}

func TestHandoffBeatsBooking(t *testing.T) {
	e := confidentExtraction()
	d := Decide(e, ReadinessScore(e), Signals{WantsHuman: true})
	assert.Equal(t, StrategyHandoff, d.Strategy)
}

func TestProvideInfoOnFactualQuestion(t *testing.T) {
	e := confidentExtraction()
	e.Intent = field("browse", 0.9)
	e.Urgency = field("low", 0.8)

	d := Decide(e, 35, Signals{FactualQuestion: true})
	assert.Equal(t, StrategyProvideInfo, d.Strategy)
	assert.NotEmpty(t, d.NextAction)
}

func TestNurtureOnBrowseIntent(t *testing.T) {
	e := confidentExtraction()
	e.Intent = field("browse", 0.9)
	e.Urgency = field("low", 0.8)

	d := Decide(e, ReadinessScore(e), Signals{})
	assert.Equal(t, StrategyNurture, d.Strategy)
	assert.Contains(t, d.Reasoning, "browse")
}

func TestNurtureOnLowReadinessSignal(t *testing.T) {
	e := confidentExtraction()
	e.Urgency = field("low", 0.8)

	d := Decide(e, 35, Signals{Nurture: true})
	assert.Equal(t, StrategyNurture, d.Strategy)
	assert.Contains(t, d.Reasoning, "35")

	t.Run("readiness too high to park", func(t *testing.T) {
		d := Decide(e, 55, Signals{Nurture: true})
		assert.Equal(t, StrategyQualify, d.Strategy)

		var rejected []Strategy
		for _, a := range d.Alternatives {
			rejected = append(rejected, a.Strategy)
		}
		assert.Contains(t, rejected, StrategyNurture)
	})
}

func TestQualifyIsDefaultWithoutSignals(t *testing.T) {
	e := confidentExtraction()
	e.Urgency = field("low", 0.8)

	d := Decide(e, 55, Signals{})
	assert.Equal(t, StrategyQualify, d.Strategy)
}

// Sweeps the decision inputs and checks that every strategy in the enum is
// selected by at least one combination.
func TestEveryStrategySelectable(t *testing.T) {
	confidences := []float64{0.3, 0.9}
	urgencies := []string{UrgencyLow, UrgencyImmediate}
	scores := []int{20, 85}
	bools := []bool{false, true}

	seen := map[Strategy]bool{}
	for _, ic := range confidences {
		for _, bc := range confidences {
			for _, tc := range confidences {
				for _, urgency := range urgencies {
					for _, score := range scores {
						for _, human := range bools {
							for _, factual := range bools {
								for _, nurture := range bools {
									e := confidentExtraction()
									e.Intent.Confidence = ic
									e.Budget.Confidence = bc
									e.Timeline.Confidence = tc
									e.Urgency = field(urgency, 0.9)
									d := Decide(e, score, Signals{WantsHuman: human, FactualQuestion: factual, Nurture: nurture})
									seen[d.Strategy] = true
								}
							}
						}
					}
				}
			}
		}
	}

	for _, s := range []Strategy{StrategyClarify, StrategyQualify, StrategyBookNow, StrategyNurture, StrategyHandoff, StrategyProvideInfo} {
		assert.True(t, seen[s], "strategy %s never selected", s)
	}
}

func TestDecisionReferencesConfidences(t *testing.T) {
	e := confidentExtraction()
	e.Budget.Confidence = 0.4
	d := Decide(e, ReadinessScore(e), Signals{})
	assert.Contains(t, d.Reasoning, "0.40")
}

func TestParseStrategy(t *testing.T) {
	for _, s := range []string{"clarify", "qualify", "book_now", "nurture", "handoff", "provide_info"} {
		got, ok := ParseStrategy(s)
		require.True(t, ok)
		assert.Equal(t, Strategy(s), got)
	}
	_, ok := ParseStrategy("escalate")
	assert.False(t, ok)
}
