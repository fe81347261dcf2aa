package glue

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSplit(t *testing.T, task Task, content string) string {
	t.Helper()
	dir := t.TempDir()
	taskDir := filepath.Join(dir, task.Name)
	require.NoError(t, os.MkdirAll(taskDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(taskDir, task.DevFile), []byte(content), 0o644))
	return dir
}

func TestLoadValidationSingleSentence(t *testing.T) {
	task, _ := Lookup("sst2")
	dir := writeSplit(t, task, "sentence\tlabel\nit 's a charming film .\t1\nunwatchable\t0\n")

	examples, err := LoadValidation(dir, task, LoadOptions{})
	require.NoError(t, err)
	require.Len(t, examples, 2)
	assert.Equal(t, 0, examples[0].Index)
	assert.Equal(t, "it 's a charming film .", examples[0].Sentence)
	assert.Equal(t, 1.0, examples[0].Label)
	assert.Equal(t, 0.0, examples[1].Label)
}

func TestLoadValidationPairTask(t *testing.T) {
	task, _ := Lookup("rte")
	dir := writeSplit(t, task, "index\tsentence1\tsentence2\tlabel\n0\tA man is eating.\tSomeone eats.\tentailment\n")

	examples, err := LoadValidation(dir, task, LoadOptions{})
	require.NoError(t, err)
	require.Len(t, examples, 1)
	assert.Equal(t, "A man is eating.\nSomeone eats.", examples[0].Sentence)
	assert.Equal(t, 0.0, examples[0].Label)
}

func TestLoadValidationHashNamedColumns(t *testing.T) {
	task, _ := Lookup("mrpc")
	dir := writeSplit(t, task,
		"Quality\t#1 ID\t#2 ID\t#1 String\t#2 String\n1\t1\t2\tThe cat sat.\tA cat was sitting.\n")

	examples, err := LoadValidation(dir, task, LoadOptions{})
	require.NoError(t, err)
	require.Len(t, examples, 1)
	assert.Equal(t, "The cat sat.\nA cat was sitting.", examples[0].Sentence)
	assert.Equal(t, 1.0, examples[0].Label)
}

func TestLoadValidationHeaderless(t *testing.T) {
	task, _ := Lookup("cola")
	dir := writeSplit(t, task, "gj04\t1\t\tThe sailors rode the breeze clear of the rocks.\ngj04\t0\t*\tThe car honked down the road.\n")

	examples, err := LoadValidation(dir, task, LoadOptions{})
	require.NoError(t, err)
	require.Len(t, examples, 2)
	assert.Equal(t, "The sailors rode the breeze clear of the rocks.", examples[0].Sentence)
	assert.Equal(t, 1.0, examples[0].Label)
}

func TestLoadValidationSkipsBadRows(t *testing.T) {
	task, _ := Lookup("sst2")
	dir := writeSplit(t, task, "sentence\tlabel\nkeep me\t1\n\t1\nbad label\tmaybe\nalso kept\t0\n")

	examples, err := LoadValidation(dir, task, LoadOptions{})
	require.NoError(t, err)
	require.Len(t, examples, 2)
	// Indices are assigned over kept rows, not source rows.
	assert.Equal(t, 1, examples[1].Index)
	assert.Equal(t, "also kept", examples[1].Sentence)
}

func TestLoadValidationLimit(t *testing.T) {
	task, _ := Lookup("sst2")
	dir := writeSplit(t, task, "sentence\tlabel\na\t1\nb\t0\nc\t1\nd\t0\ne\t1\n")

	examples, err := LoadValidation(dir, task, LoadOptions{Limit: 4})
	require.NoError(t, err)
	assert.Len(t, examples, 4)
}

func TestLoadValidationMissingFile(t *testing.T) {
	task, _ := Lookup("sst2")
	_, err := LoadValidation(t.TempDir(), task, LoadOptions{})
	assert.Error(t, err)
}

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "half width", NormalizeText(" ｈａｌｆ　ｗｉｄｔｈ "))
	assert.Equal(t, "a b", NormalizeText("a\x00 b"))
}
