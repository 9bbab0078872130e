package reasoning

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldUnmarshalCoercion(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    *string
	}{
		{"string", `{"value":"Austin","confidence":0.8}`, ptr("Austin")},
		{"null", `{"value":null,"confidence":0}`, nil},
		{"empty string", `{"value":"","confidence":0.2}`, nil},
		{"number", `{"value":550000,"confidence":0.9}`, ptr("550000")},
		{"bool", `{"value":true,"confidence":0.6}`, ptr("true")},
		{"object", `{"value":{"min":500},"confidence":0.5}`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f Field
			require.NoError(t, json.Unmarshal([]byte(tt.payload), &f))
			if tt.want == nil {
				assert.Nil(t, f.Value)
			} else {
				require.NotNil(t, f.Value)
				assert.Equal(t, *tt.want, *f.Value)
			}
			assert.NotNil(t, f.UncertaintyMarkers)
		})
	}
}

func ptr(s string) *string { return &s }

func TestParseResultRejectsMissingKeys(t *testing.T) {
	for _, key := range requiredKeys {
		payload := map[string]json.RawMessage{}
		require.NoError(t, json.Unmarshal([]byte(serviceJSON(t, nil)), &payload))
		delete(payload, key)
		b, err := json.Marshal(payload)
		require.NoError(t, err)

		_, err = parseResult(string(b))
		assert.Error(t, err, "dropping %q must fail validation", key)
	}
}

func TestParseResultRoundsScore(t *testing.T) {
	res, err := parseResult(serviceJSON(t, func(m map[string]any) {
		m["readiness_score"] = 82.5
	}))
	require.NoError(t, err)
	assert.Equal(t, 83, res.ReadinessScore)
}

func TestFallbackShapeIsStable(t *testing.T) {
	a := Fallback("completion service error: timeout")
	b := Fallback("completion service error: timeout")
	assert.Equal(t, a, b)

	assert.Contains(t, a.Reasoning, "timeout")
	assert.Equal(t, StrategyClarify, a.Strategy)
	assert.False(t, a.Extracted.FinancingDiscussed)
	assert.Equal(t, ValueUnknown, a.Extracted.Intent.Text())
	assert.Nil(t, a.Extracted.Budget.Value)

	// the fallback serializes with every schema key present
	raw, err := json.Marshal(a)
	require.NoError(t, err)
	var keys map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &keys))
	for _, k := range requiredKeys {
		assert.Contains(t, keys, k)
	}
}
