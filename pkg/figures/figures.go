// Package figures holds the chart-agnostic figure model returned by the
// dashboards. A Figure carries the series, labels and styling hints a
// browser charting library needs; it never contains NaN so it always
// encodes as JSON.
package figures

import (
	"math"

	"github.com/agentstation/datastory/internal/utils/ptr"
	"github.com/agentstation/datastory/pkg/stats"
)

// Kind is the chart type a figure is meant to be drawn as.
type Kind string

// Figure kinds.
const (
	KindBar        Kind = "bar"
	KindHBar       Kind = "hbar"
	KindLine       Kind = "line"
	KindHistogram  Kind = "histogram"
	KindChoropleth Kind = "choropleth"
)

// Range is a colour or axis range.
type Range struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// Figure is one chart.
type Figure struct {
	ID     string `json:"id" yaml:"id"`
	Kind   Kind   `json:"kind" yaml:"kind"`
	Title  string `json:"title" yaml:"title"`
	XLabel string `json:"x_label,omitempty" yaml:"x_label,omitempty"`
	YLabel string `json:"y_label,omitempty" yaml:"y_label,omitempty"`
	// X holds category labels (or ISO dates for time series, country names
	// for choropleths).
	X []string  `json:"x" yaml:"x"`
	Y []float64 `json:"y" yaml:"y"`
	// Text, Hover and Colors are optional per-point annotations aligned
	// with X.
	Text       []string `json:"text,omitempty" yaml:"text,omitempty"`
	Hover      []string `json:"hover,omitempty" yaml:"hover,omitempty"`
	Colors     []string `json:"colors,omitempty" yaml:"colors,omitempty"`
	ColorRange *Range   `json:"color_range,omitempty" yaml:"color_range,omitempty"`
	// Bins is set for histograms.
	Bins    []stats.Bin `json:"bins,omitempty" yaml:"bins,omitempty"`
	Empty   bool        `json:"empty" yaml:"empty"`
	Caption string      `json:"caption,omitempty" yaml:"caption,omitempty"`
}

// New returns an empty figure of the given kind; callers append points.
func New(id string, kind Kind, title string) *Figure {
	return &Figure{ID: id, Kind: kind, Title: title, X: []string{}, Y: []float64{}}
}

// NoData returns a figure flagged empty with the given title.
func NoData(id string, kind Kind, title string) *Figure {
	f := New(id, kind, title)
	f.Empty = true
	return f
}

// Add appends a point, skipping NaN and infinite values. It reports whether
// the point was kept.
func (f *Figure) Add(x string, y float64) bool {
	if math.IsNaN(y) || math.IsInf(y, 0) {
		return false
	}
	f.X = append(f.X, x)
	f.Y = append(f.Y, y)
	return true
}

// Len returns the number of points.
func (f *Figure) Len() int {
	return len(f.X)
}

// Finish marks the figure empty (and retitles it) when it has no points.
func (f *Figure) Finish(emptyTitle string) *Figure {
	if len(f.X) == 0 && len(f.Bins) == 0 {
		f.Empty = true
		if emptyTitle != "" {
			f.Title = emptyTitle
		}
	}
	return f
}

// KPI is one headline number.
type KPI struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
	// Value is the formatted value, "N/A" when undefined.
	Value string `json:"value" yaml:"value"`
	// Raw is the unformatted value; nil when undefined.
	Raw  *float64 `json:"raw" yaml:"raw"`
	Unit string   `json:"unit,omitempty" yaml:"unit,omitempty"`
}

// NotAvailable is shown for undefined values.
const NotAvailable = "N/A"

// Number returns a pointer to v, or nil for NaN and infinities.
func Number(v float64) *float64 {
	return ptr.Finite(v)
}
