package flights

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/agentstation/datastory/pkg/datasets"
	"github.com/agentstation/datastory/pkg/figures"
	"github.com/agentstation/datastory/pkg/stats"
)

// Figure identifiers.
const (
	FigureDays         = "day_delay"
	FigureAirlines     = "airline_delay"
	FigureTimeSeries   = "time_series"
	FigureCauses       = "causes"
	FigureDistribution = "dist_delay"
	FigureAirports     = "top_airports"
)

// Captions shown under each figure.
var Captions = map[string]string{
	FigureDays:         "Mean arrival delay by day of the week.",
	FigureAirlines:     "Airlines most affected by delays.",
	FigureTimeSeries:   "Delay trend over the year.",
	FigureCauses:       "Main causes of delay.",
	FigureDistribution: "Distribution of arrival delays over 2015.",
	FigureAirports:     "Airports with the largest mean delays.",
}

// Dashboard is the computed flights view.
type Dashboard struct {
	Filter  Filter            `json:"filter" yaml:"filter"`
	KPIs    []figures.KPI     `json:"kpis" yaml:"kpis"`
	Figures []*figures.Figure `json:"figures" yaml:"figures"`
	Summary Summary           `json:"summary" yaml:"summary"`
}

// Figure returns the figure with the given id, or nil.
func (d *Dashboard) Figure(id string) *figures.Figure {
	for _, f := range d.Figures {
		if f.ID == id {
			return f
		}
	}
	return nil
}

// Summary carries the unformatted headline numbers.
type Summary struct {
	Flights      int      `json:"flights" yaml:"flights"`
	MeanDelay    *float64 `json:"mean_delay" yaml:"mean_delay"`
	MedianDelay  *float64 `json:"median_delay" yaml:"median_delay"`
	LateShare    *float64 `json:"late_share" yaml:"late_share"`
	WorstAirline string   `json:"worst_airline,omitempty" yaml:"worst_airline,omitempty"`
	WorstDay     string   `json:"worst_day,omitempty" yaml:"worst_day,omitempty"`
	WorstAirport string   `json:"worst_airport,omitempty" yaml:"worst_airport,omitempty"`
	TopCause     string   `json:"top_cause,omitempty" yaml:"top_cause,omitempty"`
}

// LateThreshold is the arrival delay in minutes above which a flight counts
// as late when no IS_LATE_ARR flag is available.
const LateThreshold = 15.0

// Build computes the dashboard for the flights of table matching filter.
func Build(table *datasets.FlightTable, filter Filter) *Dashboard {
	if filter.Granularity == "" {
		filter.Granularity = Weekly
	}
	rows := filter.Apply(table)

	d := &Dashboard{Filter: filter}
	d.Figures = []*figures.Figure{
		dayFigure(rows),
		airlineFigure(rows, 15),
		timeSeriesFigure(rows, filter.Granularity),
		causesFigure(rows, table.CausesPresent),
		distributionFigure(rows, 80),
		airportsFigure(rows, 12),
	}
	for _, f := range d.Figures {
		f.Caption = Captions[f.ID]
	}

	d.Summary = summarize(rows, table.HasLateFlag)
	d.Summary.WorstDay = argmax(d.Figure(FigureDays))
	d.Summary.WorstAirline = first(d.Figure(FigureAirlines))
	if f := d.Figure(FigureAirports); f != nil && len(f.Hover) > 0 {
		d.Summary.WorstAirport = f.Hover[0]
	}
	if f := d.Figure(FigureCauses); f != nil && f.Len() > 0 {
		d.Summary.TopCause = f.X[f.Len()-1]
	}
	d.KPIs = kpis(d.Summary)
	return d
}

func summarize(rows []*datasets.Flight, hasFlag bool) Summary {
	delays := make([]float64, len(rows))
	for i, r := range rows {
		delays[i] = r.ArrivalDelay
	}

	s := Summary{Flights: len(rows)}
	s.MeanDelay = figures.Number(stats.Round(stats.Mean(delays), 2))
	s.MedianDelay = figures.Number(stats.Round(stats.Median(delays), 2))

	var share float64
	if hasFlag {
		flags := make([]float64, len(rows))
		for i, r := range rows {
			flags[i] = r.LateArrival
		}
		share = 100 * stats.Mean(flags)
	} else {
		late, known := 0, 0
		for _, d := range delays {
			if math.IsNaN(d) {
				continue
			}
			known++
			if d > LateThreshold {
				late++
			}
		}
		share = math.NaN()
		if known > 0 {
			share = 100 * float64(late) / float64(known)
		}
	}
	s.LateShare = figures.Number(stats.Round(share, 2))
	return s
}

var printer = message.NewPrinter(language.English)

func kpis(s Summary) []figures.KPI {
	return []figures.KPI{
		{ID: "flights", Title: "Flights analysed", Value: printer.Sprintf("%d", s.Flights), Raw: figures.Number(float64(s.Flights))},
		{ID: "mean_delay", Title: "Mean arrival delay", Value: format(s.MeanDelay, "min"), Raw: s.MeanDelay, Unit: "min"},
		{ID: "median_delay", Title: "Median arrival delay", Value: format(s.MedianDelay, "min"), Raw: s.MedianDelay, Unit: "min"},
		{ID: "late_share", Title: "Flights > 15 min late", Value: format(s.LateShare, "%"), Raw: s.LateShare, Unit: "%"},
	}
}

func format(v *float64, unit string) string {
	if v == nil {
		return figures.NotAvailable
	}
	return printer.Sprintf("%.2f %s", *v, unit)
}

func argmax(f *figures.Figure) string {
	if f == nil || f.Len() == 0 {
		return ""
	}
	best := 0
	for i, y := range f.Y {
		if y > f.Y[best] {
			best = i
		}
	}
	return f.X[best]
}

func first(f *figures.Figure) string {
	if f == nil || f.Len() == 0 {
		return ""
	}
	return f.X[0]
}
