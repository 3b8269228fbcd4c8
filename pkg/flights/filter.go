// Package flights builds the flight delay dashboard: KPIs, six figures and
// their captions, computed over a filtered view of the flights table.
package flights

import (
	"fmt"
	"strings"
	"time"

	"github.com/agentstation/datastory/pkg/datasets"
	pkgerrors "github.com/agentstation/datastory/pkg/errors"
)

// Granularity selects the time series bucket.
type Granularity string

// Time series granularities.
const (
	Weekly  Granularity = "W"
	Monthly Granularity = "M"
)

// ParseGranularity accepts W/week/weekly and M/ME/month/monthly. Empty means
// Weekly.
func ParseGranularity(s string) (Granularity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "w", "week", "weekly":
		return Weekly, nil
	case "m", "me", "month", "monthly":
		return Monthly, nil
	}
	return "", pkgerrors.NewValidationError("granularity", s, "must be W or M")
}

// Filter narrows the flights a dashboard is computed over. Zero values
// disable the corresponding condition.
type Filter struct {
	Airline     string      `json:"airline,omitempty" yaml:"airline,omitempty"`
	Start       *time.Time  `json:"start_date,omitempty" yaml:"start_date,omitempty"`
	End         *time.Time  `json:"end_date,omitempty" yaml:"end_date,omitempty"`
	Granularity Granularity `json:"granularity,omitempty" yaml:"granularity,omitempty"`
}

// Validate checks that the date bounds are ordered.
func (f Filter) Validate() error {
	if f.Start != nil && f.End != nil && f.End.Before(*f.Start) {
		return pkgerrors.NewValidationError("end_date", f.End.Format("2006-01-02"),
			fmt.Sprintf("is before start_date %s", f.Start.Format("2006-01-02")))
	}
	return nil
}

// Match reports whether a flight passes the filter. Flights without a date
// never pass a date bound.
func (f Filter) Match(fl *datasets.Flight) bool {
	if f.Airline != "" && fl.AirlineName != f.Airline {
		return false
	}
	if f.Start != nil && (fl.Date.IsZero() || fl.Date.Before(*f.Start)) {
		return false
	}
	if f.End != nil && (fl.Date.IsZero() || fl.Date.After(*f.End)) {
		return false
	}
	return true
}

// Apply returns the flights that pass the filter. The result points into
// the table's rows; callers must not modify them.
func (f Filter) Apply(table *datasets.FlightTable) []*datasets.Flight {
	out := make([]*datasets.Flight, 0, len(table.Rows)/4)
	for i := range table.Rows {
		if f.Match(&table.Rows[i]) {
			out = append(out, &table.Rows[i])
		}
	}
	return out
}

// Options are the values the dashboard filter controls offer.
type Options struct {
	Airlines []string `json:"airlines" yaml:"airlines"`
	MinDate  string   `json:"min_date,omitempty" yaml:"min_date,omitempty"`
	MaxDate  string   `json:"max_date,omitempty" yaml:"max_date,omitempty"`
}

// OptionsFor lists the airline names and the date range of table.
func OptionsFor(table *datasets.FlightTable) Options {
	opts := Options{Airlines: table.AirlineNames()}
	if lo, hi, ok := table.DateRange(); ok {
		opts.MinDate = lo.Format("2006-01-02")
		opts.MaxDate = hi.Format("2006-01-02")
	}
	return opts
}
