package lifeexp

import (
	"fmt"
	"sort"

	"github.com/agentstation/datastory/pkg/datasets"
	"github.com/agentstation/datastory/pkg/figures"
	"github.com/agentstation/datastory/pkg/stats"
)

// Overview returns the choropleth of indicator by country for year, or the
// per-country average over all years when year is AllYears.
func Overview(table *datasets.LifeTable, indicator string, year int) *figures.Figure {
	if !table.IsNumeric(indicator) {
		return figures.NoData("global-graph", figures.KindChoropleth,
			fmt.Sprintf("'%s' is not a numeric column.", indicator))
	}

	title := fmt.Sprintf("%s by Country (%d)", indicator, year)
	if year == AllYears {
		title = fmt.Sprintf("%s by Country (All Years Aggregated)", indicator)
	}
	f := figures.New("global-graph", figures.KindChoropleth, title)
	f.XLabel, f.YLabel = "country", indicator
	f.ColorRange = colorRange(table, indicator)

	if year == AllYears {
		byCountry := make(map[string][]float64)
		for i := range table.Rows {
			r := &table.Rows[i]
			byCountry[r.Country] = append(byCountry[r.Country], r.Value(indicator))
		}
		countries := make([]string, 0, len(byCountry))
		for c := range byCountry {
			countries = append(countries, c)
		}
		sort.Strings(countries)
		for _, c := range countries {
			f.Add(c, stats.Mean(byCountry[c]))
		}
	} else {
		for i := range table.Rows {
			r := &table.Rows[i]
			if r.Year == year {
				f.Add(r.Country, r.Value(indicator))
			}
		}
	}
	return f.Finish("")
}

// colorRange takes the indicator's range in BaseYear, or over all rows when
// the base year has no values. No range is set when it would be empty.
func colorRange(table *datasets.LifeTable, indicator string) *figures.Range {
	var base, all []float64
	for i := range table.Rows {
		r := &table.Rows[i]
		v := r.Value(indicator)
		all = append(all, v)
		if r.Year == BaseYear {
			base = append(base, v)
		}
	}
	lo, hi, ok := stats.MinMax(base)
	if !ok {
		lo, hi, ok = stats.MinMax(all)
	}
	if !ok || lo == hi {
		return nil
	}
	return &figures.Range{Min: lo, Max: hi}
}
