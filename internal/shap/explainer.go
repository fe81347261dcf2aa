// Package shap estimates per-token Shapley values for a text scoring
// function. A coalition is a set of token positions kept in the sentence;
// masked positions are replaced by the model's mask token, or dropped when
// the vocabulary has none.
package shap

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"glassbox/explainer/internal/model"
)

// ScoreFunc scores a batch of sentences, one scalar per sentence. For a
// classifier this is the logit of the class being explained.
type ScoreFunc func(ctx context.Context, texts []string) ([]float64, error)

// TokenizeFunc splits a sentence into model tokens with byte spans.
type TokenizeFunc func(text string) ([]model.Token, error)

// Config controls the estimator.
type Config struct {
	// Permutations is the number of antithetic permutation pairs.
	Permutations int
	// BatchSize bounds how many masked sentences go to the model at once.
	BatchSize int
	// MaskToken replaces masked token spans. Empty drops the span.
	MaskToken string
	// Seed fixes the permutation sampler for reproducible artifacts.
	Seed int64
}

// Explanation is the attribution of one sentence.
type Explanation struct {
	// Tokens are the original-text substrings covered by each model token.
	Tokens []string
	// Values align with Tokens. BaseValue + sum(Values) equals the score
	// of the unmasked sentence.
	Values    []float64
	BaseValue float64
}

// Explainer estimates Shapley values by walking random token permutations
// forward and backward, accumulating the marginal score deltas of each
// token. Every antithetic pair preserves additivity exactly.
type Explainer struct {
	score    ScoreFunc
	tokenize TokenizeFunc
	cfg      Config
	rng      *rand.Rand
}

// New builds an Explainer. Zero config fields fall back to defaults.
func New(score ScoreFunc, tokenize TokenizeFunc, cfg Config) *Explainer {
	if cfg.Permutations <= 0 {
		cfg.Permutations = 4
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 16
	}
	if cfg.Seed == 0 {
		cfg.Seed = 1
	}
	return &Explainer{
		score:    score,
		tokenize: tokenize,
		cfg:      cfg,
		rng:      rand.New(rand.NewSource(cfg.Seed)),
	}
}

// Explain attributes the score of text across its tokens.
func (e *Explainer) Explain(ctx context.Context, text string) (*Explanation, error) {
	tokens, err := e.tokenize(text)
	if err != nil {
		return nil, fmt.Errorf("tokenize: %w", err)
	}
	n := len(tokens)
	if n == 0 {
		scores, err := e.evaluate(ctx, []string{text})
		if err != nil {
			return nil, err
		}
		return &Explanation{BaseValue: scores[text]}, nil
	}

	perms := make([][]int, e.cfg.Permutations)
	for p := range perms {
		perms[p] = e.rng.Perm(n)
	}

	// Render every coalition the walks will need, deduplicated by the
	// rendered sentence. Forward and backward walks share endpoints.
	rendered := make(map[string]string) // coalition key -> sentence
	sentences := make([]string, 0, 2*e.cfg.Permutations*n)
	need := func(keep []bool) string {
		key := keepKey(keep)
		if _, ok := rendered[key]; !ok {
			s := renderMasked(text, tokens, keep, e.cfg.MaskToken)
			rendered[key] = s
			sentences = append(sentences, s)
		}
		return key
	}

	type walk struct {
		order []int
		keys  []string // n+1 coalition keys along the walk
	}
	walks := make([]walk, 0, 2*len(perms))
	for _, perm := range perms {
		for _, order := range [][]int{perm, reversed(perm)} {
			keep := make([]bool, n)
			keys := make([]string, 0, n+1)
			keys = append(keys, need(keep))
			for _, idx := range order {
				keep[idx] = true
				keys = append(keys, need(keep))
			}
			walks = append(walks, walk{order: order, keys: keys})
		}
	}

	values, err := e.evaluate(ctx, uniqueStrings(sentences))
	if err != nil {
		return nil, err
	}

	attr := make([]float64, n)
	for _, w := range walks {
		for step, idx := range w.order {
			prev := values[rendered[w.keys[step]]]
			next := values[rendered[w.keys[step+1]]]
			attr[idx] += next - prev
		}
	}
	total := float64(2 * len(perms))
	for i := range attr {
		attr[i] /= total
	}

	texts := make([]string, n)
	for i, tok := range tokens {
		texts[i] = tok.Text
	}
	emptyKey := keepKey(make([]bool, n))
	return &Explanation{
		Tokens:    texts,
		Values:    attr,
		BaseValue: values[rendered[emptyKey]],
	}, nil
}

// evaluate scores sentences in batches and returns a sentence->score map.
func (e *Explainer) evaluate(ctx context.Context, sentences []string) (map[string]float64, error) {
	out := make(map[string]float64, len(sentences))
	for start := 0; start < len(sentences); start += e.cfg.BatchSize {
		end := start + e.cfg.BatchSize
		if end > len(sentences) {
			end = len(sentences)
		}
		batch := sentences[start:end]
		scores, err := e.score(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("score batch: %w", err)
		}
		if len(scores) != len(batch) {
			return nil, fmt.Errorf("score returned %d values for %d texts", len(scores), len(batch))
		}
		for i, s := range batch {
			out[s] = scores[i]
		}
	}
	return out, nil
}

// renderMasked rebuilds the sentence keeping the spans of kept tokens and
// substituting (or dropping) the rest. Text between token spans survives.
func renderMasked(text string, tokens []model.Token, keep []bool, maskToken string) string {
	var b strings.Builder
	prev := 0
	for i, tok := range tokens {
		start, end := tok.Start, tok.End
		if start < prev {
			start = prev
		}
		if end > len(text) {
			end = len(text)
		}
		if start > end {
			continue
		}
		b.WriteString(text[prev:start])
		if keep[i] {
			b.WriteString(text[start:end])
		} else {
			b.WriteString(maskToken)
		}
		prev = end
	}
	if prev < len(text) {
		b.WriteString(text[prev:])
	}
	return strings.TrimSpace(b.String())
}

func keepKey(keep []bool) string {
	var b strings.Builder
	b.Grow(len(keep))
	for _, k := range keep {
		if k {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

func reversed(perm []int) []int {
	out := make([]int, len(perm))
	for i, v := range perm {
		out[len(perm)-1-i] = v
	}
	return out
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := in[:0]
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
