package reasoning

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func field(value string, confidence float64) Field {
	return NewField(value, confidence)
}

func confidentExtraction() Extraction {
	return Extraction{
		Intent:       field("buy", 0.9),
		Budget:       field("$500K-$600K", 0.8),
		Urgency:      field("high", 0.9),
		Location:     field("Austin", 0.8),
		Timeline:     field("3 months", 0.8),
		Motivation:   field("relocation", 0.7),
		LeadType:     field("buyer", 0.9),
		PropertyType: field("single-family", 0.8),
	}
}

func TestWeightsSumToOne(t *testing.T) {
	sum := 0.0
	for _, w := range Weights() {
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestReadinessScoreScenario(t *testing.T) {
	// 100*(0.25*0.9 + 0.20*0.9 + 0.20*0.8 + 0.15*0.8 + 0.10*0.7 + 0.10*0.8) = 82.5
	assert.Equal(t, 83, ReadinessScore(confidentExtraction()))
}

func TestReadinessScoreBounds(t *testing.T) {
	zero := Extraction{}.Normalize()
	assert.Equal(t, 0, ReadinessScore(zero))

	full := Extraction{
		Intent:   field("buy", 1),
		Budget:   field("$1M", 1),
		Urgency:  field("immediate", 1),
		Location: field("Austin", 1),
		Timeline: field("now", 1),

		Motivation: field("job", 1),
		LeadType:   field("buyer", 1),
	}
	assert.Equal(t, 100, ReadinessScore(full))

	overflow := full
	overflow.Intent.Confidence = 5
	overflow.Budget.Confidence = 12
	assert.Equal(t, 100, ReadinessScore(overflow), "confidences above 1 must clamp, never overflow the score")
}

func TestReadinessScoreMonotonic(t *testing.T) {
	e := confidentExtraction()
	base := ReadinessScore(e)

	for name, bump := range map[string]func(*Extraction){
		"intent":     func(x *Extraction) { x.Intent.Confidence = 1 },
		"urgency":    func(x *Extraction) { x.Urgency.Confidence = 1 },
		"budget":     func(x *Extraction) { x.Budget.Confidence = 1 },
		"timeline":   func(x *Extraction) { x.Timeline.Confidence = 1 },
		"motivation": func(x *Extraction) { x.Motivation.Confidence = 1 },
		"location":   func(x *Extraction) { x.Location.Confidence = 1 },
	} {
		bumped := confidentExtraction()
		bump(&bumped)
		require.GreaterOrEqual(t, ReadinessScore(bumped), base, "raising %s confidence must not lower the score", name)
	}
}

func TestClampIdempotent(t *testing.T) {
	for _, v := range []float64{-3, 0, 0.42, 1, 7} {
		once := ClampUnit(v)
		assert.Equal(t, once, ClampUnit(once))
	}
	for _, v := range []float64{-10, 0, 42.4, 42.5, 100, 250} {
		once := ClampScore(v)
		assert.Equal(t, once, ClampScore(float64(once)))
		assert.GreaterOrEqual(t, once, 0)
		assert.LessOrEqual(t, once, 100)
	}
}

func TestNormalizeFillsSentinels(t *testing.T) {
	e := Extraction{
		Intent: Field{Confidence: -0.5},
		Budget: Field{Confidence: 1.8},
	}.Normalize()

	require.NotNil(t, e.Intent.Value)
	assert.Equal(t, ValueUnknown, *e.Intent.Value)
	assert.Equal(t, 0.0, e.Intent.Confidence)
	assert.Nil(t, e.Budget.Value)
	assert.Equal(t, 1.0, e.Budget.Confidence)
	assert.NotNil(t, e.Budget.UncertaintyMarkers)
}
