package lifeexp

import (
	"sort"
	"strconv"

	"github.com/agentstation/datastory/pkg/datasets"
	"github.com/agentstation/datastory/pkg/figures"
	"github.com/agentstation/datastory/pkg/stats"
)

// Analytics is the life expectancy analytics page.
type Analytics struct {
	Trend        *figures.Figure `json:"trend" yaml:"trend"`
	Distribution *figures.Figure `json:"distribution" yaml:"distribution"`
}

// BuildAnalytics returns the yearly global mean of life expectancy and its
// distribution over every observation.
func BuildAnalytics(table *datasets.LifeTable, bins int) *Analytics {
	byYear := make(map[int][]float64)
	all := make([]float64, 0, len(table.Rows))
	for i := range table.Rows {
		r := &table.Rows[i]
		v := r.Value(datasets.ColumnLifeExpectancy)
		byYear[r.Year] = append(byYear[r.Year], v)
		all = append(all, v)
	}
	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)

	trend := figures.New("life-expectancy-trend", figures.KindLine, "Average Global Life Expectancy Trend")
	trend.XLabel, trend.YLabel = "Year", "Life expectancy"
	for _, y := range years {
		trend.Add(strconv.Itoa(y), stats.Mean(byYear[y]))
	}

	dist := figures.New("life-expectancy-distribution", figures.KindHistogram, "Distribution of Life Expectancy")
	dist.XLabel, dist.YLabel = "Life expectancy", "Count"
	dist.Bins = stats.Histogram(all, bins)

	return &Analytics{
		Trend:        trend.Finish("No data"),
		Distribution: dist.Finish("No data"),
	}
}
