package explain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Method selects an explanation technique.
type Method string

const (
	MethodSHAP Method = "shap"
	MethodLIME Method = "lime"
	// MethodAll expands to every supported technique.
	MethodAll Method = "all"
)

// ParseMethods expands a method flag value into the techniques to run.
func ParseMethods(value string) ([]Method, error) {
	switch Method(strings.ToLower(strings.TrimSpace(value))) {
	case MethodSHAP:
		return []Method{MethodSHAP}, nil
	case MethodLIME:
		return []Method{MethodLIME}, nil
	case MethodAll, "":
		return []Method{MethodSHAP, MethodLIME}, nil
	default:
		return nil, fmt.Errorf("unknown explanation method %q (want lime, shap or all)", value)
	}
}

// Record is the explanation of a single validation example.
type Record struct {
	Sentence     string    `json:"sentence"`
	Tokens       []string  `json:"tokens"`
	Attributions []float64 `json:"attributions"`
	// Label is an int for classification tasks and a float for stsb.
	Label any `json:"label"`
	// BaseValue is set for SHAP records only.
	BaseValue *float64 `json:"base_value,omitempty"`
}

// Results maps example indices to records, preserving insertion order when
// serialized so the artifact reads in dataset order.
type Results struct {
	indices []int
	records map[int]Record
}

// NewResults returns an empty result set.
func NewResults() *Results {
	return &Results{records: make(map[int]Record)}
}

// Add stores the record for an example index.
func (r *Results) Add(index int, rec Record) {
	if _, ok := r.records[index]; !ok {
		r.indices = append(r.indices, index)
	}
	r.records[index] = rec
}

// Len returns how many examples have records.
func (r *Results) Len() int {
	return len(r.indices)
}

// Get returns the record stored for an index.
func (r *Results) Get(index int) (Record, bool) {
	rec, ok := r.records[index]
	return rec, ok
}

// MarshalJSON writes the records as an object keyed by decimal index, in
// insertion order.
func (r *Results) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, idx := range r.indices {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, "%q:", fmt.Sprintf("%d", idx))
		data, err := json.Marshal(r.records[idx])
		if err != nil {
			return nil, err
		}
		buf.Write(data)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON restores a result set; key order is not preserved beyond
// numeric sorting on the next marshal.
func (r *Results) UnmarshalJSON(data []byte) error {
	var raw map[string]Record
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.indices = r.indices[:0]
	r.records = make(map[int]Record, len(raw))
	for key, rec := range raw {
		var idx int
		if _, err := fmt.Sscanf(key, "%d", &idx); err != nil {
			return fmt.Errorf("non-numeric result key %q", key)
		}
		r.Add(idx, rec)
	}
	sort.Ints(r.indices)
	return nil
}
