// Package food builds the FAO food balance view: the average quantity per
// area and the yearly total over the selected records.
package food

import (
	"sort"
	"strconv"

	"github.com/agentstation/datastory/pkg/datasets"
	"github.com/agentstation/datastory/pkg/figures"
	"github.com/agentstation/datastory/pkg/stats"
)

// DefaultTop is the number of areas shown when no limit is requested.
const DefaultTop = 20

// Filter selects FAO records. Empty fields match everything.
type Filter struct {
	Element string `json:"element,omitempty" yaml:"element,omitempty"`
	Item    string `json:"item,omitempty" yaml:"item,omitempty"`
	Top     int    `json:"top,omitempty" yaml:"top,omitempty"`
}

func (f Filter) match(r *datasets.FoodRow) bool {
	if f.Element != "" && r.Element != f.Element {
		return false
	}
	if f.Item != "" && r.Item != f.Item {
		return false
	}
	return true
}

// Options lists the values the food controls offer.
type Options struct {
	Elements  []string `json:"elements" yaml:"elements"`
	Items     []string `json:"items" yaml:"items"`
	FirstYear int      `json:"first_year" yaml:"first_year"`
	LastYear  int      `json:"last_year" yaml:"last_year"`
}

// OptionsFor lists the elements, items and year range of table.
func OptionsFor(table *datasets.FoodTable) Options {
	return Options{
		Elements:  table.Elements(),
		Items:     table.Items(),
		FirstYear: table.FirstYear,
		LastYear:  table.LastYear,
	}
}

// AreaAverage is one area's mean quantity.
type AreaAverage struct {
	Area    string  `json:"area" yaml:"area"`
	Average float64 `json:"average" yaml:"average"`
	Records int     `json:"records" yaml:"records"`
}

// Summary is the computed food view.
type Summary struct {
	Filter  Filter          `json:"filter" yaml:"filter"`
	Unit    string          `json:"unit" yaml:"unit"`
	Records int             `json:"records" yaml:"records"`
	Areas   []AreaAverage   `json:"areas" yaml:"areas"`
	ByArea  *figures.Figure `json:"by_area" yaml:"by_area"`
	Trend   *figures.Figure `json:"trend" yaml:"trend"`
}

// Summarize averages every yearly quantity of the matching records per area
// and keeps the Top areas, largest first. The trend sums the matching
// records per year.
func Summarize(table *datasets.FoodTable, filter Filter) *Summary {
	if filter.Top <= 0 {
		filter.Top = DefaultTop
	}
	s := &Summary{Filter: filter, Areas: []AreaAverage{}}

	perArea := make(map[string][]float64)
	counts := make(map[string]int)
	totals := make(map[int]float64)
	for i := range table.Rows {
		r := &table.Rows[i]
		if !filter.match(r) {
			continue
		}
		if s.Unit == "" {
			s.Unit = r.Unit
		}
		s.Records++
		counts[r.Area]++
		for y, v := range r.Years {
			perArea[r.Area] = append(perArea[r.Area], v)
			totals[y] += v
		}
	}

	for area, vals := range perArea {
		s.Areas = append(s.Areas, AreaAverage{Area: area, Average: stats.Mean(vals), Records: counts[area]})
	}
	sort.Slice(s.Areas, func(i, j int) bool {
		if s.Areas[i].Average != s.Areas[j].Average {
			return s.Areas[i].Average > s.Areas[j].Average
		}
		return s.Areas[i].Area < s.Areas[j].Area
	})
	if len(s.Areas) > filter.Top {
		s.Areas = s.Areas[:filter.Top]
	}

	s.ByArea = figures.New("food-by-area", figures.KindBar, "Average quantity by area")
	s.ByArea.XLabel, s.ByArea.YLabel = "Area", "Average ("+s.Unit+")"
	for _, a := range s.Areas {
		s.ByArea.Add(a.Area, a.Average)
	}
	s.ByArea.Caption = "Dashboard Food Transport Page"
	s.ByArea.Finish("No data")

	years := make([]int, 0, len(totals))
	for y := range totals {
		years = append(years, y)
	}
	sort.Ints(years)
	s.Trend = figures.New("food-trend", figures.KindLine, "Total quantity by year")
	s.Trend.XLabel, s.Trend.YLabel = "Year", s.Unit
	for _, y := range years {
		s.Trend.Add(strconv.Itoa(y), totals[y])
	}
	s.Trend.Finish("No data")
	return s
}
