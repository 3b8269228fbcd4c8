// Package stats provides the NaN-aware descriptive statistics used by the
// dashboards. Missing values are represented as NaN throughout datastory and
// every function here skips them.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Missing is the value used for an absent measurement.
var Missing = math.NaN()

// IsMissing reports whether v is an absent measurement.
func IsMissing(v float64) bool {
	return math.IsNaN(v)
}

// Valid returns the non-missing values of xs in their original order.
func Valid(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		if !math.IsNaN(x) {
			out = append(out, x)
		}
	}
	return out
}

// Mean returns the arithmetic mean of the non-missing values, or NaN when
// there are none.
func Mean(xs []float64) float64 {
	v := Valid(xs)
	if len(v) == 0 {
		return math.NaN()
	}
	return stat.Mean(v, nil)
}

// Median returns the median of the non-missing values. Even-sized inputs
// average the two middle values. NaN when there are no values.
func Median(xs []float64) float64 {
	v := Valid(xs)
	if len(v) == 0 {
		return math.NaN()
	}
	sort.Float64s(v)
	mid := len(v) / 2
	if len(v)%2 == 1 {
		return v[mid]
	}
	return (v[mid-1] + v[mid]) / 2
}

// MinMax returns the smallest and largest non-missing values. ok is false
// when there are none.
func MinMax(xs []float64) (lo, hi float64, ok bool) {
	v := Valid(xs)
	if len(v) == 0 {
		return 0, 0, false
	}
	return floats.Min(v), floats.Max(v), true
}

// Pearson returns the Pearson correlation of x and y over the pairs where
// both values are present. It returns NaN when fewer than two pairs remain or
// either side has zero variance.
func Pearson(x, y []float64) float64 {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	xs := make([]float64, 0, n)
	ys := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	if len(xs) < 2 {
		return math.NaN()
	}
	if stat.Variance(xs, nil) == 0 || stat.Variance(ys, nil) == 0 {
		return math.NaN()
	}
	return stat.Correlation(xs, ys, nil)
}

// Bin is one equal-width histogram bucket covering [Lo, Hi).
// The last bucket of a histogram also includes Hi.
type Bin struct {
	Lo    float64 `json:"lo"`
	Hi    float64 `json:"hi"`
	Count int     `json:"count"`
}

// Histogram splits the non-missing values into n equal-width bins spanning
// their range. A constant input produces a single bin holding every value.
func Histogram(xs []float64, n int) []Bin {
	v := Valid(xs)
	if len(v) == 0 || n <= 0 {
		return nil
	}
	sort.Float64s(v)
	lo, hi := v[0], v[len(v)-1]
	if lo == hi {
		return []Bin{{Lo: lo, Hi: hi, Count: len(v)}}
	}

	dividers := floats.Span(make([]float64, n+1), lo, hi)
	edges := make([]float64, len(dividers))
	copy(edges, dividers)
	// gonum bins are half open, so nudge the top edge to keep the maximum.
	dividers[n] = math.Nextafter(hi, math.Inf(1))

	counts := stat.Histogram(nil, dividers, v, nil)
	bins := make([]Bin, n)
	for i := range bins {
		bins[i] = Bin{Lo: edges[i], Hi: edges[i+1], Count: int(counts[i])}
	}
	return bins
}

// Round rounds x to the given number of decimal places.
func Round(x float64, places int) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}
