package explain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMethods(t *testing.T) {
	methods, err := ParseMethods("shap")
	require.NoError(t, err)
	assert.Equal(t, []Method{MethodSHAP}, methods)

	methods, err = ParseMethods("LIME")
	require.NoError(t, err)
	assert.Equal(t, []Method{MethodLIME}, methods)

	methods, err = ParseMethods("all")
	require.NoError(t, err)
	assert.Equal(t, []Method{MethodSHAP, MethodLIME}, methods)

	_, err = ParseMethods("saliency")
	assert.Error(t, err)
}

func TestResultsMarshalPreservesOrder(t *testing.T) {
	results := NewResults()
	for _, idx := range []int{0, 1, 2, 10} {
		results.Add(idx, Record{
			Sentence:     "s",
			Tokens:       []string{"s"},
			Attributions: []float64{0.5},
			Label:        1,
		})
	}

	data, err := json.Marshal(results)
	require.NoError(t, err)
	// Numeric insertion order, not lexicographic key order.
	assert.Regexp(t, `^\{"0":.*"1":.*"2":.*"10":`, string(data))
}

func TestResultsRoundTrip(t *testing.T) {
	results := NewResults()
	base := 0.25
	results.Add(0, Record{
		Sentence:     "fine film",
		Tokens:       []string{"fine", "film"},
		Attributions: []float64{1.5, -0.5},
		Label:        1,
		BaseValue:    &base,
	})

	data, err := json.Marshal(results)
	require.NoError(t, err)

	var decoded Results
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, 1, decoded.Len())
	rec, ok := decoded.Get(0)
	require.True(t, ok)
	assert.Equal(t, []string{"fine", "film"}, rec.Tokens)
	require.NotNil(t, rec.BaseValue)
	assert.InDelta(t, 0.25, *rec.BaseValue, 1e-9)
}

func TestResultsAddOverwrites(t *testing.T) {
	results := NewResults()
	results.Add(3, Record{Sentence: "first"})
	results.Add(3, Record{Sentence: "second"})
	assert.Equal(t, 1, results.Len())
	rec, _ := results.Get(3)
	assert.Equal(t, "second", rec.Sentence)
}
