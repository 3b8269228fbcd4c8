// Package table converts datasets, dashboards and figures into rows for
// terminal tables.
package table

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/agentstation/datastory/internal/cmd/emoji"
	"github.com/agentstation/datastory/pkg/datasets"
	"github.com/agentstation/datastory/pkg/figures"
	"github.com/agentstation/datastory/pkg/food"
	"github.com/agentstation/datastory/pkg/lifeexp"
)

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault uses the default alignment.
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

// Data is a header plus rows of cells.
type Data struct {
	Title           string
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align
}

// KPIs lists the headline numbers of a dashboard.
func KPIs(kpis []figures.KPI) Data {
	d := Data{
		Headers:         []string{"Indicator", "Value"},
		ColumnAlignment: []Align{AlignLeft, AlignRight},
	}
	for _, k := range kpis {
		d.Rows = append(d.Rows, []string{k.Title, k.Value})
	}
	return d
}

// Figure lists the points of a figure. Histograms list one row per bin.
// Wide output adds the per-point labels.
func Figure(f *figures.Figure, wide bool) Data {
	d := Data{Title: f.Title}
	if f.Empty {
		d.Headers = []string{f.Title}
		return d
	}

	if f.Kind == figures.KindHistogram {
		d.Headers = []string{"From", "To", "Count"}
		d.ColumnAlignment = []Align{AlignRight, AlignRight, AlignRight}
		for _, b := range f.Bins {
			d.Rows = append(d.Rows, []string{num(b.Lo), num(b.Hi), strconv.Itoa(b.Count)})
		}
		return d
	}

	d.Headers = []string{label(f.XLabel, "Label"), label(f.YLabel, "Value")}
	d.ColumnAlignment = []Align{AlignLeft, AlignRight}
	if wide && len(f.Text) == len(f.X) {
		d.Headers = append(d.Headers, "Text")
		d.ColumnAlignment = append(d.ColumnAlignment, AlignLeft)
	}
	for i := range f.X {
		row := []string{f.X[i], num(f.Y[i])}
		if len(d.Headers) == 3 {
			row = append(row, f.Text[i])
		}
		d.Rows = append(d.Rows, row)
	}
	return d
}

// FoodAreas lists the areas of a food summary, largest first.
func FoodAreas(s *food.Summary) Data {
	d := Data{
		Title:           "Average quantity by area",
		Headers:         []string{"Area", "Average (" + label(s.Unit, "value") + ")", "Records"},
		ColumnAlignment: []Align{AlignLeft, AlignRight, AlignRight},
	}
	for _, a := range s.Areas {
		d.Rows = append(d.Rows, []string{a.Area, num(a.Average), strconv.Itoa(a.Records)})
	}
	return d
}

// Correlations lists indicator correlations, highest first.
func Correlations(corrs []lifeexp.Correlation) Data {
	d := Data{
		Headers:         []string{"Factor", "Correlation"},
		ColumnAlignment: []Align{AlignLeft, AlignRight},
	}
	for _, c := range corrs {
		d.Rows = append(d.Rows, []string{c.Factor, fmt.Sprintf("%.3f", c.Value)})
	}
	return d
}

// Profile lists the fields of a country profile.
func Profile(p *lifeexp.Profile) Data {
	d := Data{
		Title:           p.Title,
		Headers:         []string{"Field", "Value"},
		ColumnAlignment: []Align{AlignLeft, AlignRight},
	}
	for _, f := range p.Fields {
		d.Rows = append(d.Rows, []string{f.Name, f.Value})
	}
	return d
}

// Sources lists the files that went into a snapshot. Wide output adds the
// full path and modification time.
func Sources(sources []datasets.SourceInfo, wide bool) Data {
	d := Data{
		Headers:         []string{"", "Dataset", "File", "Rows", "Skipped"},
		ColumnAlignment: []Align{AlignCenter, AlignLeft, AlignLeft, AlignRight, AlignRight},
	}
	if wide {
		d.Headers = append(d.Headers, "Modified")
		d.ColumnAlignment = append(d.ColumnAlignment, AlignLeft)
	}
	for _, s := range sources {
		status := emoji.Success
		if s.Missing {
			status = emoji.Optional
		} else if s.Error != "" || s.Skipped > 0 {
			status = emoji.Warning
		}
		file := filepath.Base(s.Path)
		if wide {
			file = s.Path
		}
		row := []string{status, s.Dataset, file, strconv.Itoa(s.Rows), strconv.Itoa(s.Skipped)}
		if wide {
			modified := ""
			if !s.ModTime.IsZero() {
				modified = s.ModTime.Format("2006-01-02 15:04")
			}
			row = append(row, modified)
		}
		d.Rows = append(d.Rows, row)
	}
	return d
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func label(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
