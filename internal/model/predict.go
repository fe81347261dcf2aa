package model

import "math"

// Softmax converts one row of logits into a probability distribution.
func Softmax(logits []float32) []float64 {
	if len(logits) == 0 {
		return nil
	}
	maxLogit := float64(logits[0])
	for _, v := range logits[1:] {
		if float64(v) > maxLogit {
			maxLogit = float64(v)
		}
	}
	out := make([]float64, len(logits))
	var sum float64
	for i, v := range logits {
		out[i] = math.Exp(float64(v) - maxLogit)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

// TargetLogits extracts the logit of one class from each score row. The
// class index is clamped into the row, so binary explainers keep working
// against single-output regression heads.
func TargetLogits(scores [][]float32, class int) []float64 {
	out := make([]float64, len(scores))
	for i, row := range scores {
		out[i] = float64(rowAt(row, class))
	}
	return out
}

// TargetProbs extracts the softmax probability of one class per score row.
func TargetProbs(scores [][]float32, class int) []float64 {
	out := make([]float64, len(scores))
	for i, row := range scores {
		probs := Softmax(row)
		idx := clampClass(len(probs), class)
		if idx < 0 {
			continue
		}
		out[i] = probs[idx]
	}
	return out
}

func rowAt(row []float32, class int) float32 {
	idx := clampClass(len(row), class)
	if idx < 0 {
		return 0
	}
	return row[idx]
}

func clampClass(n, class int) int {
	if n == 0 {
		return -1
	}
	if class < 0 {
		return 0
	}
	if class >= n {
		return n - 1
	}
	return class
}
