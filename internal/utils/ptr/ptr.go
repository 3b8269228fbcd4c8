// Package ptr builds optional values for JSON output, where nil encodes
// as null.
package ptr

import "math"

// To returns a pointer to v.
func To[T any](v T) *T {
	return &v
}

// Finite returns a pointer to v, or nil when v is NaN or infinite.
func Finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
