// Package story turns the current dashboard numbers into a short narrative.
// Facts are collected from a dataset snapshot; a Narrator writes the text,
// either from a fixed template or through the Gemini API.
package story

import (
	"sort"

	"github.com/agentstation/datastory/internal/utils/ptr"
	"github.com/agentstation/datastory/pkg/datasets"
	"github.com/agentstation/datastory/pkg/flights"
	"github.com/agentstation/datastory/pkg/food"
	"github.com/agentstation/datastory/pkg/lifeexp"
	"github.com/agentstation/datastory/pkg/stats"
)

// FlightFacts are the headline flight delay numbers.
type FlightFacts struct {
	Airline      string   `json:"airline,omitempty" yaml:"airline,omitempty"`
	Flights      int      `json:"flights" yaml:"flights"`
	MeanDelay    *float64 `json:"mean_delay" yaml:"mean_delay"`
	MedianDelay  *float64 `json:"median_delay" yaml:"median_delay"`
	LateShare    *float64 `json:"late_share" yaml:"late_share"`
	WorstAirline string   `json:"worst_airline,omitempty" yaml:"worst_airline,omitempty"`
	WorstDay     string   `json:"worst_day,omitempty" yaml:"worst_day,omitempty"`
	WorstAirport string   `json:"worst_airport,omitempty" yaml:"worst_airport,omitempty"`
	TopCause     string   `json:"top_cause,omitempty" yaml:"top_cause,omitempty"`
}

// Ranked is a named value.
type Ranked struct {
	Name  string  `json:"name" yaml:"name"`
	Value float64 `json:"value" yaml:"value"`
}

// LifeFacts are the headline WHO numbers for one indicator and year.
type LifeFacts struct {
	Indicator       string   `json:"indicator" yaml:"indicator"`
	Year            int      `json:"year" yaml:"year"`
	Countries       int      `json:"countries" yaml:"countries"`
	GlobalMean      *float64 `json:"global_mean" yaml:"global_mean"`
	Highest         *Ranked  `json:"highest,omitempty" yaml:"highest,omitempty"`
	Lowest          *Ranked  `json:"lowest,omitempty" yaml:"lowest,omitempty"`
	StrongestFactor *Ranked  `json:"strongest_factor,omitempty" yaml:"strongest_factor,omitempty"`
	Sample          bool     `json:"sample" yaml:"sample"`
}

// FoodFacts are the headline FAO numbers.
type FoodFacts struct {
	Element string  `json:"element,omitempty" yaml:"element,omitempty"`
	Unit    string  `json:"unit" yaml:"unit"`
	Records int     `json:"records" yaml:"records"`
	TopArea *Ranked `json:"top_area,omitempty" yaml:"top_area,omitempty"`
}

// Facts is everything a narrative is written from.
type Facts struct {
	Flights *FlightFacts `json:"flights,omitempty" yaml:"flights,omitempty"`
	Life    *LifeFacts   `json:"life,omitempty" yaml:"life,omitempty"`
	Food    *FoodFacts   `json:"food,omitempty" yaml:"food,omitempty"`
}

// Request selects the slices of data the facts describe.
type Request struct {
	Flights   flights.Filter `json:"flights" yaml:"flights"`
	Indicator string         `json:"indicator" yaml:"indicator"`
	// Year is the WHO year; zero selects the latest year.
	Year    int    `json:"year" yaml:"year"`
	Element string `json:"element" yaml:"element"`
}

// Collect gathers Facts from snap. Datasets that are absent or empty are
// left out.
func Collect(snap *datasets.Snapshot, req Request) *Facts {
	facts := &Facts{}
	if snap.Flights != nil && len(snap.Flights.Rows) > 0 {
		d := flights.Build(snap.Flights, req.Flights)
		facts.Flights = &FlightFacts{
			Airline:      req.Flights.Airline,
			Flights:      d.Summary.Flights,
			MeanDelay:    d.Summary.MeanDelay,
			MedianDelay:  d.Summary.MedianDelay,
			LateShare:    d.Summary.LateShare,
			WorstAirline: d.Summary.WorstAirline,
			WorstDay:     d.Summary.WorstDay,
			WorstAirport: d.Summary.WorstAirport,
			TopCause:     d.Summary.TopCause,
		}
	}
	if snap.Life != nil && len(snap.Life.Rows) > 0 {
		facts.Life = collectLife(snap.Life, req)
	}
	if snap.Food != nil && len(snap.Food.Rows) > 0 {
		s := food.Summarize(snap.Food, food.Filter{Element: req.Element, Top: 1})
		facts.Food = &FoodFacts{Element: req.Element, Unit: s.Unit, Records: s.Records}
		if len(s.Areas) > 0 {
			facts.Food.TopArea = &Ranked{Name: s.Areas[0].Area, Value: stats.Round(s.Areas[0].Average, 2)}
		}
	}
	return facts
}

func collectLife(table *datasets.LifeTable, req Request) *LifeFacts {
	indicator := req.Indicator
	if indicator == "" {
		indicator = datasets.ColumnLifeExpectancy
	}
	year := req.Year
	if year == 0 {
		years := table.Years()
		year = years[len(years)-1]
	}

	lf := &LifeFacts{Indicator: indicator, Year: year, Sample: table.Fallback}
	overview := lifeexp.Overview(table, indicator, year)
	lf.Countries = overview.Len()
	if overview.Len() > 0 {
		points := make([]Ranked, overview.Len())
		for i := range overview.X {
			points[i] = Ranked{Name: overview.X[i], Value: overview.Y[i]}
		}
		sort.SliceStable(points, func(i, j int) bool { return points[i].Value > points[j].Value })
		hi, lo := points[0], points[len(points)-1]
		lf.Highest, lf.Lowest = &hi, &lo
		lf.GlobalMean = ptr.Finite(stats.Round(stats.Mean(overview.Y), 2))
	}
	if corrs, err := lifeexp.Correlations(table, indicator); err == nil {
		for _, c := range corrs {
			if c.Factor == datasets.ColumnYear {
				continue
			}
			lf.StrongestFactor = &Ranked{Name: c.Factor, Value: stats.Round(c.Value, 3)}
			break
		}
	}
	return lf
}
