// Package lime fits a local linear surrogate around one sentence: words are
// removed at random, the model is queried on each perturbed sentence, and a
// weighted ridge regression over the presence indicators yields per-word
// attributions.
package lime

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"regexp"
	"sort"
	"strings"
)

// ScoreFunc scores a batch of sentences with the probability of the class
// being explained.
type ScoreFunc func(ctx context.Context, texts []string) ([]float64, error)

// Config controls perturbation sampling and the surrogate fit.
type Config struct {
	// NumSamples is the perturbation count, unperturbed sample included.
	NumSamples int
	// NumFeatures caps how many words appear in the explanation.
	NumFeatures int
	// KernelWidth scales the exponential distance kernel.
	KernelWidth float64
	// BatchSize bounds how many perturbed sentences go to the model at once.
	BatchSize int
	// Seed fixes the sampler for reproducible artifacts.
	Seed int64
}

// Explanation lists the selected words with their surrogate weights, ordered
// by descending absolute weight.
type Explanation struct {
	Words   []string
	Weights []float64
}

// Explainer produces LIME explanations for single sentences.
type Explainer struct {
	score ScoreFunc
	cfg   Config
	rng   *rand.Rand
}

// New builds an Explainer. Zero config fields fall back to the classic LIME
// text defaults (500 samples, 20 features, kernel width 25).
func New(score ScoreFunc, cfg Config) *Explainer {
	if cfg.NumSamples <= 0 {
		cfg.NumSamples = 500
	}
	if cfg.NumFeatures <= 0 {
		cfg.NumFeatures = 20
	}
	if cfg.KernelWidth <= 0 {
		cfg.KernelWidth = 25
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 16
	}
	if cfg.Seed == 0 {
		cfg.Seed = 1
	}
	return &Explainer{score: score, cfg: cfg, rng: rand.New(rand.NewSource(cfg.Seed))}
}

var wordPattern = regexp.MustCompile(`\w+`)

// indexedText is the bag-of-words view of a sentence: every surface form is
// one feature, and removing a feature removes all of its occurrences.
type indexedText struct {
	raw   string
	words []string // feature index -> surface form
	spans [][]int  // occurrence spans in raw, ordered
	feats []int    // occurrence -> feature index
}

func indexText(text string) indexedText {
	it := indexedText{raw: text}
	byWord := make(map[string]int)
	for _, span := range wordPattern.FindAllStringIndex(text, -1) {
		word := text[span[0]:span[1]]
		feat, ok := byWord[word]
		if !ok {
			feat = len(it.words)
			byWord[word] = feat
			it.words = append(it.words, word)
		}
		it.spans = append(it.spans, span)
		it.feats = append(it.feats, feat)
	}
	return it
}

// withRemoved rebuilds the sentence with every occurrence of the removed
// features dropped. Separator characters survive.
func (it indexedText) withRemoved(removed map[int]bool) string {
	if len(removed) == 0 {
		return it.raw
	}
	var b strings.Builder
	prev := 0
	for i, span := range it.spans {
		b.WriteString(it.raw[prev:span[0]])
		if !removed[it.feats[i]] {
			b.WriteString(it.raw[span[0]:span[1]])
		}
		prev = span[1]
	}
	b.WriteString(it.raw[prev:])
	return b.String()
}

// Explain fits the local surrogate for one sentence.
func (e *Explainer) Explain(ctx context.Context, text string) (*Explanation, error) {
	it := indexText(text)
	numWords := len(it.words)
	if numWords == 0 {
		return &Explanation{}, nil
	}

	numSamples := e.cfg.NumSamples
	design := make([][]float64, numSamples)
	sentences := make([]string, numSamples)
	for i := range design {
		row := make([]float64, numWords)
		for j := range row {
			row[j] = 1
		}
		if i == 0 {
			design[i] = row
			sentences[i] = it.raw
			continue
		}
		removeCount := 1 + e.rng.Intn(numWords)
		removed := make(map[int]bool, removeCount)
		for _, feat := range e.rng.Perm(numWords)[:removeCount] {
			removed[feat] = true
			row[feat] = 0
		}
		design[i] = row
		sentences[i] = it.withRemoved(removed)
	}

	labels, err := e.evaluate(ctx, sentences)
	if err != nil {
		return nil, err
	}

	weights := make([]float64, numSamples)
	for i, row := range design {
		var ones float64
		for _, v := range row {
			ones += v
		}
		// Cosine distance to the all-ones vector, scaled to percent;
		// classic LIME text kernel.
		d := 100 * (1 - math.Sqrt(ones/float64(numWords)))
		weights[i] = math.Sqrt(math.Exp(-(d * d) / (e.cfg.KernelWidth * e.cfg.KernelWidth)))
	}

	all := make([]int, numWords)
	for j := range all {
		all[j] = j
	}
	coefs, _, err := weightedRidge(design, labels, weights, all, 1.0)
	if err != nil {
		return nil, fmt.Errorf("fit surrogate: %w", err)
	}

	selected := topFeatures(coefs, all, e.cfg.NumFeatures)
	if len(selected) < numWords {
		if coefs, _, err = weightedRidge(design, labels, weights, selected, 1.0); err != nil {
			return nil, fmt.Errorf("refit surrogate: %w", err)
		}
	}

	order := make([]int, len(selected))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return math.Abs(coefs[order[a]]) > math.Abs(coefs[order[b]])
	})

	exp := &Explanation{
		Words:   make([]string, len(order)),
		Weights: make([]float64, len(order)),
	}
	for rank, i := range order {
		exp.Words[rank] = it.words[selected[i]]
		exp.Weights[rank] = coefs[i]
	}
	return exp, nil
}

func (e *Explainer) evaluate(ctx context.Context, sentences []string) ([]float64, error) {
	out := make([]float64, 0, len(sentences))
	for start := 0; start < len(sentences); start += e.cfg.BatchSize {
		end := start + e.cfg.BatchSize
		if end > len(sentences) {
			end = len(sentences)
		}
		scores, err := e.score(ctx, sentences[start:end])
		if err != nil {
			return nil, fmt.Errorf("score batch: %w", err)
		}
		if len(scores) != end-start {
			return nil, fmt.Errorf("score returned %d values for %d texts", len(scores), end-start)
		}
		out = append(out, scores...)
	}
	return out, nil
}

// topFeatures picks the columns with the largest absolute coefficients.
func topFeatures(coefs []float64, cols []int, k int) []int {
	if len(cols) <= k {
		return cols
	}
	ranked := make([]int, len(cols))
	copy(ranked, cols)
	sort.SliceStable(ranked, func(a, b int) bool {
		return math.Abs(coefs[ranked[a]]) > math.Abs(coefs[ranked[b]])
	})
	ranked = ranked[:k]
	sort.Ints(ranked)
	return ranked
}
