package glue

import (
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Example is a single validation-set entry ready for explanation.
type Example struct {
	Index    int
	Sentence string
	Label    float64
}

// LoadOptions tweaks validation-set loading.
type LoadOptions struct {
	// Limit truncates the split to the first N examples when positive.
	Limit int
	// Logger receives skip notices for malformed rows. Nil silences them.
	Logger *log.Logger
}

// LoadValidation reads the task's validation split from
// <dataDir>/<task.Name>/<task.DevFile>.
func LoadValidation(dataDir string, task Task, opts LoadOptions) ([]Example, error) {
	path := filepath.Join(dataDir, task.Name, task.DevFile)
	return LoadValidationFile(path, task, opts)
}

// LoadValidationFile reads a validation split from an explicit file path.
func LoadValidationFile(path string, task Task, opts LoadOptions) ([]Example, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.Comma = '\t'
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		reader.Comma = ','
	}
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if len(rows) == 0 {
		return nil, errors.New("empty validation file")
	}

	header := rows[0]
	for i, cell := range header {
		header[i] = cleanCell(cell)
	}
	text1, err := resolveColumn(header, task.Text1, task.HasHeader)
	if err != nil {
		return nil, fmt.Errorf("text column: %w", err)
	}
	text2 := -1
	if task.IsPair() {
		if text2, err = resolveColumn(header, task.Text2, task.HasHeader); err != nil {
			return nil, fmt.Errorf("pair column: %w", err)
		}
	}
	labelCol, err := resolveColumn(header, task.Label, task.HasHeader)
	if err != nil {
		return nil, fmt.Errorf("label column: %w", err)
	}

	start := 0
	if task.HasHeader {
		start = 1
	}
	examples := make([]Example, 0, len(rows)-start)
	for rowNum, row := range rows[start:] {
		if text1 >= len(row) || labelCol >= len(row) {
			logSkip(opts.Logger, rowNum+start, "missing columns")
			continue
		}
		sentence := NormalizeText(row[text1])
		if text2 >= 0 && text2 < len(row) {
			sentence = combineSentences(sentence, NormalizeText(row[text2]))
		}
		if sentence == "" {
			logSkip(opts.Logger, rowNum+start, "empty text")
			continue
		}
		label, err := task.ParseLabel(row[labelCol])
		if err != nil {
			logSkip(opts.Logger, rowNum+start, err.Error())
			continue
		}
		examples = append(examples, Example{
			Index:    len(examples),
			Sentence: sentence,
			Label:    label,
		})
		if opts.Limit > 0 && len(examples) >= opts.Limit {
			break
		}
	}
	if len(examples) == 0 {
		return nil, fmt.Errorf("no usable rows in %s", path)
	}
	return examples, nil
}

// resolveColumn matches a column spec against the header: "#N" selects a
// 1-based index, anything else matches a header name case-insensitively.
func resolveColumn(header []string, spec string, hasHeader bool) (int, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return -1, errors.New("no column specified")
	}
	if strings.HasPrefix(spec, "#") {
		if idx, err := strconv.Atoi(strings.TrimPrefix(spec, "#")); err == nil {
			if idx <= 0 {
				return -1, fmt.Errorf("invalid column index %q", spec)
			}
			return idx - 1, nil
		}
		// Header names like "#1 String" (mrpc) fall through to name match.
	}
	if !hasHeader {
		return -1, fmt.Errorf("column %q needs a header row", spec)
	}
	for i, col := range header {
		if strings.EqualFold(col, spec) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("column %q not found", spec)
}

func combineSentences(first, second string) string {
	var parts []string
	if first != "" {
		parts = append(parts, first)
	}
	if second != "" && second != first {
		parts = append(parts, second)
	}
	return strings.Join(parts, "\n")
}

func cleanCell(v string) string {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(v, "\uFEFF")
	return v
}

func logSkip(logger *log.Logger, row int, reason string) {
	if logger != nil {
		logger.Printf("skipping row %d: %s", row+1, reason)
	}
}
