package grading

import "math"

// Stats summarises a list of scores. All fields are nil for an empty list.
type Stats struct {
	Avg *float64 `json:"avg"`
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

// Mean returns the arithmetic mean; ok is false for an empty list.
func Mean(values []float64) (mean float64, ok bool) {
	if len(values) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), true
}

// StandardDeviation returns the sample standard deviation; ok is false for fewer than two values.
func StandardDeviation(values []float64) (float64, bool) {
	if len(values) < 2 {
		return 0, false
	}
	mean, _ := Mean(values)
	variance := 0.0
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	return math.Sqrt(variance / float64(len(values)-1)), true
}

// FilterUnscored drops every Unscored entry and keeps the remaining order.
func FilterUnscored(values []float64) []float64 {
	filtered := make([]float64, 0, len(values))
	for _, v := range values {
		if v == Unscored {
			continue
		}
		filtered = append(filtered, v)
	}
	return filtered
}

// Summarize computes avg/min/max over values.
func Summarize(values []float64) Stats {
	if len(values) == 0 {
		return Stats{}
	}
	minimum, maximum := values[0], values[0]
	for _, v := range values[1:] {
		minimum = math.Min(minimum, v)
		maximum = math.Max(maximum, v)
	}
	mean, _ := Mean(values)
	return Stats{Avg: &mean, Min: &minimum, Max: &maximum}
}
