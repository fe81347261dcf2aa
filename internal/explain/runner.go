package explain

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"glassbox/explainer/internal/glue"
	"glassbox/explainer/internal/lime"
	"glassbox/explainer/internal/model"
	"glassbox/explainer/internal/shap"
)

// Config tunes both explanation techniques.
type Config struct {
	// TargetClass is the class whose score is attributed. Negative values
	// select the default class 1, the positive class of binary GLUE tasks;
	// 0 attributes class 0.
	TargetClass int
	// Permutations is the SHAP permutation-pair count.
	Permutations int
	// NumSamples and NumFeatures are the LIME sampling defaults.
	NumSamples  int
	NumFeatures int
	// BatchSize bounds perturbation batches through the model.
	BatchSize int
	// Seed fixes both samplers.
	Seed int64
	// OutputDir is the root for result files.
	OutputDir string
}

// ApplyDefaults populates zero values with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.TargetClass < 0 {
		c.TargetClass = 1
	}
	if c.Permutations <= 0 {
		c.Permutations = 4
	}
	if c.NumSamples <= 0 {
		c.NumSamples = 500
	}
	if c.NumFeatures <= 0 {
		c.NumFeatures = 20
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 16
	}
	if c.Seed == 0 {
		c.Seed = 1
	}
	if c.OutputDir == "" {
		c.OutputDir = "explanation_results"
	}
}

// Runner walks a validation split through the requested techniques and
// persists one JSON artifact per technique.
type Runner struct {
	predictor model.Predictor
	task      glue.Task
	info      ModelInfo
	cfg       Config
	logger    *log.Logger
}

// NewRunner constructs a runner around an initialized predictor.
func NewRunner(predictor model.Predictor, task glue.Task, info ModelInfo, cfg Config, logger *log.Logger) *Runner {
	cfg.ApplyDefaults()
	return &Runner{
		predictor: predictor,
		task:      task,
		info:      info,
		cfg:       cfg,
		logger:    logger,
	}
}

// Run executes each requested method over the examples and writes its JSON
// file. It returns the written paths.
func (r *Runner) Run(ctx context.Context, methods []Method, examples []glue.Example) ([]string, error) {
	var written []string
	for _, method := range methods {
		var (
			results *Results
			err     error
		)
		switch method {
		case MethodSHAP:
			results, err = r.RunSHAP(ctx, examples)
		case MethodLIME:
			results, err = r.RunLIME(ctx, examples)
		default:
			return written, fmt.Errorf("unknown method %q", method)
		}
		if err != nil {
			return written, fmt.Errorf("run %s: %w", method, err)
		}
		path := r.OutputPath(method)
		if err := WriteResults(path, results); err != nil {
			return written, fmt.Errorf("write %s results: %w", method, err)
		}
		r.logf("%s results for %d of %d examples written to %s",
			method, results.Len(), len(examples), path)
		written = append(written, path)
	}
	return written, nil
}

// RunSHAP explains every example with Shapley value estimation against the
// target-class logit.
func (r *Runner) RunSHAP(ctx context.Context, examples []glue.Example) (*Results, error) {
	target := r.cfg.TargetClass
	score := func(ctx context.Context, texts []string) ([]float64, error) {
		scores, err := r.predictor.Scores(ctx, texts)
		if err != nil {
			return nil, err
		}
		return model.TargetLogits(scores, target), nil
	}
	explainer := shap.New(score, r.predictor.Tokenize, shap.Config{
		Permutations: r.cfg.Permutations,
		BatchSize:    r.cfg.BatchSize,
		MaskToken:    r.predictor.MaskToken(),
		Seed:         r.cfg.Seed,
	})

	results := NewResults()
	for _, ex := range examples {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r.logf("shap [%d/%d] %s", ex.Index+1, len(examples), preview(ex.Sentence))
		exp, err := explainer.Explain(ctx, ex.Sentence)
		if err != nil {
			r.logf("shap example %d failed: %v", ex.Index, err)
			continue
		}
		base := exp.BaseValue
		results.Add(ex.Index, Record{
			Sentence:     ex.Sentence,
			Tokens:       exp.Tokens,
			Attributions: exp.Values,
			Label:        r.labelValue(ex.Label),
			BaseValue:    &base,
		})
	}
	return results, nil
}

// RunLIME explains every example with a local surrogate against the
// target-class probability.
func (r *Runner) RunLIME(ctx context.Context, examples []glue.Example) (*Results, error) {
	target := r.cfg.TargetClass
	score := func(ctx context.Context, texts []string) ([]float64, error) {
		scores, err := r.predictor.Scores(ctx, texts)
		if err != nil {
			return nil, err
		}
		return model.TargetProbs(scores, target), nil
	}
	explainer := lime.New(score, lime.Config{
		NumSamples:  r.cfg.NumSamples,
		NumFeatures: r.cfg.NumFeatures,
		BatchSize:   r.cfg.BatchSize,
		Seed:        r.cfg.Seed,
	})

	results := NewResults()
	for _, ex := range examples {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r.logf("lime [%d/%d] %s", ex.Index+1, len(examples), preview(ex.Sentence))
		exp, err := explainer.Explain(ctx, ex.Sentence)
		if err != nil {
			r.logf("lime example %d failed: %v", ex.Index, err)
			continue
		}
		results.Add(ex.Index, Record{
			Sentence:     ex.Sentence,
			Tokens:       exp.Words,
			Attributions: exp.Weights,
			Label:        r.labelValue(ex.Label),
		})
	}
	return results, nil
}

// OutputPath returns where one method's artifact lands:
// <outputDir>/<modelType>/<modelType>_<task>_<method>.json.
func (r *Runner) OutputPath(method Method) string {
	name := fmt.Sprintf("%s_%s_%s.json", r.info.Type, r.task.Name, method)
	return filepath.Join(r.cfg.OutputDir, r.info.Type, name)
}

func (r *Runner) labelValue(label float64) any {
	if r.task.Regression {
		return label
	}
	return int(label)
}

func (r *Runner) logf(format string, args ...any) {
	if r.logger != nil {
		r.logger.Printf(format, args...)
	}
}

func preview(text string) string {
	runes := []rune(text)
	if len(runes) > 60 {
		return string(runes[:60]) + "…"
	}
	return text
}

// WriteResults persists a result set as indented JSON via a temp file and
// rename, so readers never observe a partial artifact.
func WriteResults(path string, results *Results) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create results dir: %w", err)
	}
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp results: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename results: %w", err)
	}
	return nil
}
