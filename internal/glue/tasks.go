package glue

import (
	"fmt"
	"sort"
	"strings"
)

// Task describes how one GLUE task's validation split is read and scored.
type Task struct {
	Name string
	// DevFile is the validation file name inside the task's data directory.
	DevFile string
	// Text1 and Text2 select the sentence columns, by header name or "#N"
	// (1-based). Text2 is empty for single-sentence tasks.
	Text1 string
	Text2 string
	// Label selects the label column.
	Label string
	// HasHeader is false for tasks distributed without a header row (cola).
	HasHeader bool
	// NumLabels is 3 for mnli variants, 1 for stsb, otherwise 2.
	NumLabels int
	// Regression marks tasks whose labels are real-valued scores.
	Regression bool
	// LabelValues maps string labels to class ids for tasks whose dev files
	// carry textual labels (mnli, qnli, rte).
	LabelValues map[string]int
}

var entailmentLabels = map[string]int{
	"entailment":     0,
	"not_entailment": 1,
}

var registry = map[string]Task{
	"cola": {
		Name:      "cola",
		DevFile:   "dev.tsv",
		Text1:     "#4",
		Label:     "#2",
		NumLabels: 2,
	},
	"sst2": {
		Name:      "sst2",
		DevFile:   "dev.tsv",
		Text1:     "sentence",
		Label:     "label",
		HasHeader: true,
		NumLabels: 2,
	},
	"mrpc": {
		Name:      "mrpc",
		DevFile:   "dev.tsv",
		Text1:     "#1 String",
		Text2:     "#2 String",
		Label:     "Quality",
		HasHeader: true,
		NumLabels: 2,
	},
	"stsb": {
		Name:       "stsb",
		DevFile:    "dev.tsv",
		Text1:      "sentence1",
		Text2:      "sentence2",
		Label:      "score",
		HasHeader:  true,
		NumLabels:  1,
		Regression: true,
	},
	"qqp": {
		Name:      "qqp",
		DevFile:   "dev.tsv",
		Text1:     "question1",
		Text2:     "question2",
		Label:     "is_duplicate",
		HasHeader: true,
		NumLabels: 2,
	},
	"mnli": {
		Name:      "mnli",
		DevFile:   "dev_matched.tsv",
		Text1:     "sentence1",
		Text2:     "sentence2",
		Label:     "gold_label",
		HasHeader: true,
		NumLabels: 3,
		LabelValues: map[string]int{
			"entailment":    0,
			"neutral":       1,
			"contradiction": 2,
		},
	},
	"mnli-mm": {
		Name:      "mnli-mm",
		DevFile:   "dev_mismatched.tsv",
		Text1:     "sentence1",
		Text2:     "sentence2",
		Label:     "gold_label",
		HasHeader: true,
		NumLabels: 3,
		LabelValues: map[string]int{
			"entailment":    0,
			"neutral":       1,
			"contradiction": 2,
		},
	},
	"qnli": {
		Name:        "qnli",
		DevFile:     "dev.tsv",
		Text1:       "question",
		Text2:       "sentence",
		Label:       "label",
		HasHeader:   true,
		NumLabels:   2,
		LabelValues: entailmentLabels,
	},
	"rte": {
		Name:        "rte",
		DevFile:     "dev.tsv",
		Text1:       "sentence1",
		Text2:       "sentence2",
		Label:       "label",
		HasHeader:   true,
		NumLabels:   2,
		LabelValues: entailmentLabels,
	},
	"wnli": {
		Name:      "wnli",
		DevFile:   "dev.tsv",
		Text1:     "sentence1",
		Text2:     "sentence2",
		Label:     "label",
		HasHeader: true,
		NumLabels: 2,
	},
}

// Lookup resolves a task by name. Names are matched case-insensitively and
// "mnli_mm"/"mnli-mm" are treated as the same task.
func Lookup(name string) (Task, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.ReplaceAll(key, "_", "-")
	if key == "sst-2" {
		key = "sst2"
	}
	if key == "sts-b" {
		key = "stsb"
	}
	task, ok := registry[key]
	return task, ok
}

// Names returns the supported task names in sorted order.
func Names() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// ParseLabel converts a raw label cell into a numeric label for the task.
func (t Task) ParseLabel(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("empty label")
	}
	if t.LabelValues != nil {
		if id, ok := t.LabelValues[strings.ToLower(raw)]; ok {
			return float64(id), nil
		}
	}
	var v float64
	if _, err := fmt.Sscanf(raw, "%g", &v); err != nil {
		return 0, fmt.Errorf("unparsable label %q", raw)
	}
	if !t.Regression && v != float64(int(v)) {
		return 0, fmt.Errorf("non-integer label %q for classification task", raw)
	}
	return v, nil
}

// IsPair reports whether the task has two text columns.
func (t Task) IsPair() bool {
	return t.Text2 != ""
}
