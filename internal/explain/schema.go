package explain

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// resultsSchema describes one explanation artifact: an object keyed by
// decimal example indices. The tokens/attributions length invariant cannot
// be expressed in JSON Schema and is checked separately.
const resultsSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "explanation results",
  "type": "object",
  "patternProperties": {
    "^[0-9]+$": {
      "type": "object",
      "required": ["sentence", "tokens", "attributions", "label"],
      "properties": {
        "sentence": {"type": "string"},
        "tokens": {"type": "array", "items": {"type": "string"}},
        "attributions": {"type": "array", "items": {"type": "number"}},
        "label": {"type": "number"},
        "base_value": {"type": "number"}
      },
      "additionalProperties": false
    }
  },
  "additionalProperties": false
}`

// ValidateResults checks raw JSON against the artifact schema and the
// token/attribution alignment invariant.
func ValidateResults(data []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(resultsSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("validate results: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return fmt.Errorf("invalid results: %s", strings.Join(msgs, "; "))
	}

	var decoded map[string]Record
	if err := json.Unmarshal(data, &decoded); err != nil {
		return fmt.Errorf("decode results: %w", err)
	}
	for key, rec := range decoded {
		if len(rec.Tokens) != len(rec.Attributions) {
			return fmt.Errorf("record %s: %d tokens but %d attributions",
				key, len(rec.Tokens), len(rec.Attributions))
		}
	}
	return nil
}

// ValidateFile validates a result file on disk.
func ValidateFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read results: %w", err)
	}
	return ValidateResults(data)
}
