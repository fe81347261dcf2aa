package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"glassbox/explainer/internal/appconfig"
	"glassbox/explainer/internal/explain"
	"glassbox/explainer/internal/glue"
	"glassbox/explainer/internal/logging"
	"glassbox/explainer/internal/model"
)

// runExplain wires the classifier, dataset and runner together and executes
// the requested techniques.
func runExplain(cmd *cobra.Command, cfg *appconfig.Config) error {
	if strings.TrimSpace(cfg.ModelPath) == "" {
		return errors.New("model path is required (--model-path or modelPath in config)")
	}
	if strings.TrimSpace(cfg.TokenizerPath) == "" {
		return errors.New("tokenizer path is required (--tokenizer-path or tokenizerPath in config)")
	}

	if err := logging.Init(cfg.LogFile); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer logging.Close()
	logger := log.Default()

	methods, err := explain.ParseMethods(cfg.MethodName())
	if err != nil {
		return err
	}

	task, info, err := resolveRunTask(cfg)
	if err != nil {
		return err
	}

	logger.Printf("loading model %s (type %s, task %s)", cfg.ModelPath, info.Type, task.Name)
	classifier, err := model.NewClassifier(model.Config{
		OrtDLL:        cfg.OrtDLL,
		ModelPath:     cfg.ModelPath,
		TokenizerPath: cfg.TokenizerPath,
		MaxSeqLen:     cfg.MaxSeqLenOrDefault(),
		CacheDir:      cfg.CacheDir,
		NumLabels:     numLabelsFor(task, cfg),
	})
	if err != nil {
		return fmt.Errorf("init classifier: %w", err)
	}
	defer classifier.Close()

	logger.Printf("loading validation data for task %s", task.Name)
	examples, err := glue.LoadValidation(cfg.DataDirPath(), task, glue.LoadOptions{
		Limit:  cfg.DebugLimit(),
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("load validation data: %w", err)
	}
	logger.Printf("validation data size: %d", len(examples))

	runner := explain.NewRunner(classifier, task, info, explain.Config{
		TargetClass:  cfg.TargetClass,
		Permutations: cfg.Permutations,
		NumSamples:   cfg.NumSamples,
		NumFeatures:  cfg.NumFeatures,
		BatchSize:    cfg.BatchSize,
		Seed:         cfg.Seed,
		OutputDir:    cfg.OutputDirPath(),
	}, logger)

	written, err := runner.Run(context.Background(), methods, examples)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	green := color.New(color.FgGreen)
	for _, path := range written {
		green.Fprintf(out, "wrote %s\n", path)
	}
	return nil
}

// resolveRunTask derives the task from the model path naming convention.
// The configured task is only a fallback for paths that encode none.
func resolveRunTask(cfg *appconfig.Config) (glue.Task, explain.ModelInfo, error) {
	info := explain.ResolveModelInfo(cfg.ModelPath, cfg.TaskName())
	task, ok := glue.Lookup(info.Task)
	if !ok {
		return glue.Task{}, info, fmt.Errorf("unsupported task %q (supported: %s)",
			info.Task, strings.Join(glue.Names(), ", "))
	}
	return task, info, nil
}

// numLabelsFor gives the classifier a label count for models whose output
// shape declares a dynamic last dimension.
func numLabelsFor(task glue.Task, cfg *appconfig.Config) int {
	if cfg.NumLabels > 0 {
		return cfg.NumLabels
	}
	return task.NumLabels
}
