package flights

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/agentstation/datastory/pkg/datasets"
	"github.com/agentstation/datastory/pkg/figures"
	"github.com/agentstation/datastory/pkg/stats"
)

// group accumulates arrival delays per key, preserving first-seen order.
type group struct {
	keys   []string
	values map[string][]float64
}

func newGroup() *group {
	return &group{values: make(map[string][]float64)}
}

func (g *group) add(key string, v float64) {
	if key == "" || stats.IsMissing(v) {
		return
	}
	if _, ok := g.values[key]; !ok {
		g.keys = append(g.keys, key)
	}
	g.values[key] = append(g.values[key], v)
}

type ranked struct {
	key  string
	mean float64
}

// ranking returns every key with its mean, sorted by mean descending then
// key ascending.
func (g *group) ranking() []ranked {
	out := make([]ranked, 0, len(g.keys))
	for _, k := range g.keys {
		out = append(out, ranked{key: k, mean: stats.Mean(g.values[k])})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].mean != out[j].mean {
			return out[i].mean > out[j].mean
		}
		return out[i].key < out[j].key
	})
	return out
}

func dayFigure(rows []*datasets.Flight) *figures.Figure {
	g := newGroup()
	for _, r := range rows {
		g.add(r.DayName, r.ArrivalDelay)
	}

	f := figures.New(FigureDays, figures.KindBar, "Mean delay by day")
	f.XLabel, f.YLabel = "Day", "Mean delay (min)"
	for _, day := range datasets.Weekdays {
		if vals, ok := g.values[day]; ok {
			f.Add(day, stats.Mean(vals))
		}
	}
	return f.Finish("No data")
}

func airlineFigure(rows []*datasets.Flight, top int) *figures.Figure {
	g := newGroup()
	for _, r := range rows {
		g.add(r.AirlineName, r.ArrivalDelay)
	}

	f := figures.New(FigureAirlines, figures.KindBar, fmt.Sprintf("Top %d airlines (mean delay)", top))
	f.XLabel, f.YLabel = "Airline", "Mean delay (min)"
	for i, r := range g.ranking() {
		if i == top {
			break
		}
		f.Add(r.key, r.mean)
	}
	return f.Finish("No data")
}

// periodEnd returns the label date of the bucket t falls in: the Sunday
// ending its week, or the last day of its month.
func periodEnd(t time.Time, g Granularity) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	if g == Monthly {
		return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC)
	}
	offset := (7 - int(day.Weekday())) % 7
	return day.AddDate(0, 0, offset)
}

func timeSeriesFigure(rows []*datasets.Flight, g Granularity) *figures.Figure {
	buckets := make(map[time.Time][]float64)
	for _, r := range rows {
		if r.Date.IsZero() || stats.IsMissing(r.ArrivalDelay) {
			continue
		}
		end := periodEnd(r.Date, g)
		buckets[end] = append(buckets[end], r.ArrivalDelay)
	}
	ends := make([]time.Time, 0, len(buckets))
	for t := range buckets {
		ends = append(ends, t)
	}
	sort.Slice(ends, func(i, j int) bool { return ends[i].Before(ends[j]) })

	title := "Weekly mean delay"
	if g == Monthly {
		title = "Monthly mean delay"
	}
	f := figures.New(FigureTimeSeries, figures.KindLine, title)
	f.XLabel, f.YLabel = "Date", "Delay (min)"
	for _, t := range ends {
		f.Add(t.Format("2006-01-02"), stats.Mean(buckets[t]))
	}
	return f.Finish("No data")
}

func causesFigure(rows []*datasets.Flight, present []datasets.Cause) *figures.Figure {
	if len(present) == 0 {
		return figures.NoData(FigureCauses, figures.KindBar, "Causes not available")
	}

	type causeMean struct {
		name string
		mean float64
	}
	means := make([]causeMean, 0, len(present))
	for _, c := range present {
		vals := make([]float64, len(rows))
		for i, r := range rows {
			vals[i] = r.Cause(c)
		}
		means = append(means, causeMean{name: c.Column(), mean: stats.Mean(vals)})
	}
	sort.SliceStable(means, func(i, j int) bool { return means[i].mean < means[j].mean })

	f := figures.New(FigureCauses, figures.KindBar, "Mean delay by cause")
	f.XLabel, f.YLabel = "Cause", "Mean delay (min)"
	for _, m := range means {
		f.Add(m.name, m.mean)
	}
	return f.Finish("No data")
}

func distributionFigure(rows []*datasets.Flight, bins int) *figures.Figure {
	delays := make([]float64, len(rows))
	for i, r := range rows {
		delays[i] = r.ArrivalDelay
	}

	f := figures.New(FigureDistribution, figures.KindHistogram, "Distribution of delays (min)")
	f.XLabel, f.YLabel = "Arrival delay (min)", "Flights"
	f.Bins = stats.Histogram(delays, bins)
	return f.Finish("No data")
}

// ShortAirportLabel drops the " Airport" and " International" words and
// truncates long names to 27 characters plus an ellipsis.
func ShortAirportLabel(name string) string {
	s := strings.ReplaceAll(name, " Airport", "")
	s = strings.ReplaceAll(s, " International", "")
	if r := []rune(s); len(r) > 30 {
		return string(r[:27]) + "..."
	}
	return s
}

func airportsFigure(rows []*datasets.Flight, top int) *figures.Figure {
	g := newGroup()
	for _, r := range rows {
		name := r.OriginName
		if name == "" {
			name = r.Origin
		}
		g.add(name, r.ArrivalDelay)
	}

	f := figures.New(FigureAirports, figures.KindBar, fmt.Sprintf("Top %d airports by mean delay", top))
	f.XLabel, f.YLabel = "Airport", "Mean delay (min)"
	for i, r := range g.ranking() {
		if i == top {
			break
		}
		if f.Add(ShortAirportLabel(r.key), r.mean) {
			f.Hover = append(f.Hover, r.key)
		}
	}
	return f.Finish("Top airports - no data")
}
