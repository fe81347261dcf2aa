package appconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	var cfg Config
	assert.Equal(t, "sst2", cfg.TaskName())
	assert.Equal(t, "shap", cfg.MethodName())
	assert.Equal(t, "data/glue", cfg.DataDirPath())
	assert.Equal(t, "explanation_results", cfg.OutputDirPath())
	assert.Equal(t, 512, cfg.MaxSeqLenOrDefault())
	assert.Equal(t, 0, cfg.DebugLimit())
}

func TestExplicitValues(t *testing.T) {
	cfg := Config{
		Task:      "  mrpc ",
		Method:    "all",
		DataDir:   "/srv/glue",
		OutputDir: "out",
		MaxSeqLen: 128,
		Debug:     true,
	}
	assert.Equal(t, "mrpc", cfg.TaskName())
	assert.Equal(t, "all", cfg.MethodName())
	assert.Equal(t, "/srv/glue", cfg.DataDirPath())
	assert.Equal(t, "out", cfg.OutputDirPath())
	assert.Equal(t, 128, cfg.MaxSeqLenOrDefault())
	assert.Equal(t, 4, cfg.DebugLimit())
}
