// Package appconfig manages loading and interpreting application configuration.
package appconfig

import (
	"strings"
)

// DefaultConfigPath is the default path to the application's configuration file.
const DefaultConfigPath = "config/config.json"

// Config represents the top-level application configuration. Flags override
// file values; zero values fall back through the accessor methods.
type Config struct {
	// Model wiring.
	OrtDLL        string `json:"ortDll,omitempty"`
	ModelPath     string `json:"modelPath"`
	TokenizerPath string `json:"tokenizerPath"`
	MaxSeqLen     int    `json:"maxSeqLen,omitempty"`
	NumLabels     int    `json:"numLabels,omitempty"`
	CacheDir      string `json:"cacheDir,omitempty"`

	// Dataset selection.
	Task    string `json:"task,omitempty"`
	DataDir string `json:"dataDir,omitempty"`

	// Explanation settings.
	Method       string `json:"method,omitempty"`
	TargetClass  int    `json:"targetClass,omitempty"`
	NumSamples   int    `json:"numSamples,omitempty"`
	NumFeatures  int    `json:"numFeatures,omitempty"`
	Permutations int    `json:"permutations,omitempty"`
	BatchSize    int    `json:"batchSize,omitempty"`
	Seed         int64  `json:"seed,omitempty"`

	// Run behaviour.
	OutputDir string `json:"outputDir,omitempty"`
	LogFile   string `json:"logFile,omitempty"`
	Debug     bool   `json:"debug"`

	ConfigPath string `json:"-"`
}

// TaskName returns the configured task, defaulting to sst2 like the
// original research setup.
func (c Config) TaskName() string {
	if t := strings.TrimSpace(c.Task); t != "" {
		return t
	}
	return "sst2"
}

// MethodName returns the configured method, defaulting to shap.
func (c Config) MethodName() string {
	if m := strings.TrimSpace(c.Method); m != "" {
		return m
	}
	return "shap"
}

// DataDirPath returns the dataset root, defaulting to data/glue.
func (c Config) DataDirPath() string {
	if d := strings.TrimSpace(c.DataDir); d != "" {
		return d
	}
	return "data/glue"
}

// OutputDirPath returns the artifact root, defaulting to explanation_results.
func (c Config) OutputDirPath() string {
	if d := strings.TrimSpace(c.OutputDir); d != "" {
		return d
	}
	return "explanation_results"
}

// MaxSeqLenOrDefault caps tokenized sequences, defaulting to 512.
func (c Config) MaxSeqLenOrDefault() int {
	if c.MaxSeqLen > 0 {
		return c.MaxSeqLen
	}
	return 512
}

// DebugLimit returns how many validation examples a debug run keeps.
func (c Config) DebugLimit() int {
	if c.Debug {
		return 4
	}
	return 0
}
