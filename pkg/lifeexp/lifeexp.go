// Package lifeexp builds the WHO life expectancy views: a choropleth
// overview, country or global profiles, indicator correlations, a paged data
// table and the analytics page.
//
// Two sentinels select aggregates instead of a single slice of the data:
// the year AllYears averages across every year and the country World
// averages across every country.
package lifeexp

import (
	"fmt"
	"strconv"

	"github.com/agentstation/datastory/pkg/datasets"
	pkgerrors "github.com/agentstation/datastory/pkg/errors"
	"github.com/agentstation/datastory/pkg/stats"
)

const (
	// AllYears is the year sentinel meaning "average over all years".
	AllYears = 1999

	// BaseYear anchors the choropleth colour scale so maps of different
	// years stay comparable.
	BaseYear = 2000

	// World is the country sentinel meaning "average over all countries".
	World = "World"
)

// Option is a labelled choice for a dashboard control.
type Option struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

// Options lists the choices of the WHO dashboard controls.
type Options struct {
	Indicators  []Option `json:"indicators" yaml:"indicators"`
	Years       []Option `json:"years" yaml:"years"`
	Countries   []Option `json:"countries" yaml:"countries"`
	DefaultYear int      `json:"default_year" yaml:"default_year"`
	Columns     []string `json:"columns" yaml:"columns"`
	Fallback    bool     `json:"fallback" yaml:"fallback"`
}

var indicatorLabels = []Option{
	{Label: "Life Expectancy", Value: datasets.ColumnLifeExpectancy},
	{Label: "IDH", Value: datasets.ColumnHDI},
}

// OptionsFor lists the indicators present in table, its years with the
// AllYears sentinel prepended, and its countries with World first.
func OptionsFor(table *datasets.LifeTable) Options {
	opts := Options{Fallback: table.Fallback}
	for _, ind := range indicatorLabels {
		if table.IsNumeric(ind.Value) {
			opts.Indicators = append(opts.Indicators, ind)
		}
	}

	years := table.Years()
	hasSentinel := false
	for _, y := range years {
		if y == AllYears {
			hasSentinel = true
		}
	}
	if !hasSentinel {
		years = append([]int{AllYears}, years...)
	}
	for _, y := range years {
		label := strconv.Itoa(y)
		if y == AllYears {
			label += " (All Years Average)"
		}
		opts.Years = append(opts.Years, Option{Label: label, Value: strconv.Itoa(y)})
		if y > opts.DefaultYear {
			opts.DefaultYear = y
		}
	}

	opts.Countries = append(opts.Countries, Option{Label: World + " (Global Average)", Value: World})
	for _, c := range table.Countries() {
		opts.Countries = append(opts.Countries, Option{Label: c, Value: c})
	}

	opts.Columns = append(opts.Columns, datasets.ColumnCountry, datasets.ColumnYear)
	for _, c := range table.Columns {
		opts.Columns = append(opts.Columns, c.Name)
	}
	return opts
}

// ParseYear parses a year parameter; empty selects AllYears.
func ParseYear(s string) (int, error) {
	if s == "" {
		return AllYears, nil
	}
	y, err := strconv.Atoi(s)
	if err != nil {
		return 0, pkgerrors.NewValidationError("year", s, "must be an integer year")
	}
	return y, nil
}

// selectRows applies the four country/year cases shared by the profile and
// the data table.
func selectRows(table *datasets.LifeTable, country string, year int) []*datasets.LifeRow {
	out := make([]*datasets.LifeRow, 0)
	for i := range table.Rows {
		r := &table.Rows[i]
		if country != World && r.Country != country {
			continue
		}
		if year != AllYears && r.Year != year {
			continue
		}
		out = append(out, r)
	}
	return out
}

func columnValues(rows []*datasets.LifeRow, col string) []float64 {
	vals := make([]float64, len(rows))
	for i, r := range rows {
		vals[i] = r.Value(col)
	}
	return vals
}

func formatValue(v float64) string {
	if stats.IsMissing(v) {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", v)
}
