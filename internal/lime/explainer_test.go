package lime

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func containsWord(text, word string) bool {
	for _, w := range wordPattern.FindAllString(text, -1) {
		if w == word {
			return true
		}
	}
	return false
}

// linearScorer returns a probability driven by which words survive.
func linearScorer(weights map[string]float64, bias float64) ScoreFunc {
	return func(_ context.Context, texts []string) ([]float64, error) {
		out := make([]float64, len(texts))
		for i, text := range texts {
			score := bias
			for w, v := range weights {
				if containsWord(text, w) {
					score += v
				}
			}
			out[i] = score
		}
		return out, nil
	}
}

func TestExplainRecoversSigns(t *testing.T) {
	score := linearScorer(map[string]float64{"great": 0.4, "terrible": -0.35}, 0.5)
	e := New(score, Config{NumSamples: 200, Seed: 3})

	exp, err := e.Explain(context.Background(), "a great film with a terrible ending")
	require.NoError(t, err)
	require.NotEmpty(t, exp.Words)

	byWord := make(map[string]float64)
	for i, w := range exp.Words {
		byWord[w] = exp.Weights[i]
	}
	assert.Greater(t, byWord["great"], 0.0)
	assert.Less(t, byWord["terrible"], 0.0)
	// The influential words outrank the filler.
	assert.Contains(t, []string{"great", "terrible"}, exp.Words[0])
	assert.Contains(t, []string{"great", "terrible"}, exp.Words[1])
}

func TestExplainOrderedByMagnitude(t *testing.T) {
	score := linearScorer(map[string]float64{"big": 0.6, "small": 0.1}, 0.2)
	e := New(score, Config{NumSamples: 200, Seed: 5})

	exp, err := e.Explain(context.Background(), "big change small change")
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(exp.Words), 2)
	assert.Equal(t, "big", exp.Words[0])
	for i := 1; i < len(exp.Weights); i++ {
		assert.GreaterOrEqual(t,
			abs(exp.Weights[i-1]), abs(exp.Weights[i]),
			"weights must be sorted by magnitude")
	}
}

func TestExplainNumFeaturesCap(t *testing.T) {
	score := func(_ context.Context, texts []string) ([]float64, error) {
		out := make([]float64, len(texts))
		for i, text := range texts {
			out[i] = float64(len(strings.Fields(text)))
		}
		return out, nil
	}
	e := New(score, Config{NumSamples: 100, NumFeatures: 3, Seed: 9})

	exp, err := e.Explain(context.Background(), "one two three four five six seven")
	require.NoError(t, err)
	assert.Len(t, exp.Words, 3)
}

func TestExplainEmptyText(t *testing.T) {
	e := New(linearScorer(nil, 0), Config{})
	exp, err := e.Explain(context.Background(), "...")
	require.NoError(t, err)
	assert.Empty(t, exp.Words)
}

func TestIndexTextBagOfWords(t *testing.T) {
	it := indexText("the cat and the dog")
	assert.Equal(t, []string{"the", "cat", "and", "dog"}, it.words)

	// Removing a feature removes every occurrence of the word.
	got := it.withRemoved(map[int]bool{0: true})
	assert.NotContains(t, got, "the")
	assert.Contains(t, got, "cat")
	assert.Contains(t, got, "dog")
}

func TestWeightedRidge(t *testing.T) {
	// y = 2*x0 - 1*x1 + 0.5, exactly linear, uniform weights.
	x := [][]float64{{1, 1}, {1, 0}, {0, 1}, {0, 0}}
	y := []float64{1.5, 2.5, -0.5, 0.5}
	w := []float64{1, 1, 1, 1}

	coefs, intercept, err := weightedRidge(x, y, w, []int{0, 1}, 1e-9)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, coefs[0], 1e-3)
	assert.InDelta(t, -1.0, coefs[1], 1e-3)
	assert.InDelta(t, 0.5, intercept, 1e-3)
}

func TestSolveLinearSystemSingular(t *testing.T) {
	_, err := solveLinearSystem([][]float64{{1, 1}, {1, 1}}, []float64{1, 2})
	assert.Error(t, err)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
