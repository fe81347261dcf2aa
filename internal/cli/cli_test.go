package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glassbox/explainer/internal/appconfig"
	"glassbox/explainer/internal/explain"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestTasksCommand(t *testing.T) {
	out, err := execute(t, "tasks")
	require.NoError(t, err)
	assert.Contains(t, out, "sst2")
	assert.Contains(t, out, "mnli")
	assert.Contains(t, out, "score")
}

func TestValidateCommand(t *testing.T) {
	results := explain.NewResults()
	results.Add(0, explain.Record{
		Sentence:     "fine",
		Tokens:       []string{"fine"},
		Attributions: []float64{0.5},
		Label:        1,
	})
	data, err := json.Marshal(results)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "results.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	out, err := execute(t, "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "valid explanation artifact")
}

func TestValidateCommandRejectsBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"0":{"sentence":1}}`), 0o644))

	_, err := execute(t, "validate", path)
	assert.Error(t, err)
}

func TestResolveRunTaskPrefersModelPath(t *testing.T) {
	// A task encoded in the model file name wins over the configured one.
	cfg := &appconfig.Config{
		ModelPath: "checkpoints/teacher_bert-base-uncased_mrpc.onnx",
		Task:      "sst2",
	}
	task, info, err := resolveRunTask(cfg)
	require.NoError(t, err)
	assert.Equal(t, "mrpc", task.Name)
	assert.Equal(t, "bert-base-uncased", info.Type)

	// The configured task only covers paths that encode none.
	cfg = &appconfig.Config{ModelPath: "models/classifier.onnx", Task: "rte"}
	task, _, err = resolveRunTask(cfg)
	require.NoError(t, err)
	assert.Equal(t, "rte", task.Name)

	cfg = &appconfig.Config{ModelPath: "student_tinybert_squad.onnx"}
	_, _, err = resolveRunTask(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported task")
}

func TestExplainCommandRequiresModel(t *testing.T) {
	_, err := execute(t, "explain")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model path is required")
}
