package explain

import (
	"path/filepath"
	"regexp"
	"strings"
)

// ModelInfo is what the output layout needs to know about the model, parsed
// from checkpoint naming conventions like
// "checkpoints/teacher_bert-base-uncased_sst2.onnx".
type ModelInfo struct {
	// Type is the pretrained model identifier embedded in the file name,
	// falling back to the file stem.
	Type string
	// Task is the GLUE task parsed from the file name, or the fallback.
	Task string
	// IsTeacher is true for teacher checkpoints in a distillation pair.
	IsTeacher bool
}

var (
	teacherPattern = regexp.MustCompile(`teacher_(.+)_`)
	studentPattern = regexp.MustCompile(`student_(.+)_`)
	taskPattern    = regexp.MustCompile(`_([a-zA-Z0-9]+)\.(?:onnx|pt)$`)
)

// ResolveModelInfo derives the model type and task from the model path.
func ResolveModelInfo(modelPath, fallbackTask string) ModelInfo {
	info := ModelInfo{Task: fallbackTask}
	base := filepath.Base(modelPath)

	if m := taskPattern.FindStringSubmatch(base); m != nil {
		info.Task = m[1]
	}
	if m := teacherPattern.FindStringSubmatch(base); m != nil {
		info.Type = m[1]
		info.IsTeacher = true
	} else if m := studentPattern.FindStringSubmatch(base); m != nil {
		info.Type = m[1]
	} else {
		info.Type = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if info.Type == "" {
		info.Type = "unknown"
	}
	return info
}
