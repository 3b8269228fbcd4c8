package lifeexp

import (
	"fmt"
	"sort"

	"github.com/agentstation/datastory/pkg/datasets"
	pkgerrors "github.com/agentstation/datastory/pkg/errors"
	"github.com/agentstation/datastory/pkg/figures"
	"github.com/agentstation/datastory/pkg/stats"
)

// Bar colours for positive and negative correlations.
const (
	PositiveColor = "#2ca02c"
	NegativeColor = "#d62728"
)

// Correlation is the Pearson coefficient of one factor with the indicator.
type Correlation struct {
	Factor string  `json:"factor" yaml:"factor"`
	Value  float64 `json:"value" yaml:"value"`
}

// Correlations returns the Pearson correlation of indicator with every other
// numeric column (year included), highest first. Factors whose correlation
// is undefined are left out.
func Correlations(table *datasets.LifeTable, indicator string) ([]Correlation, error) {
	if !table.IsNumeric(indicator) {
		return nil, pkgerrors.NewValidationError("indicator", indicator, "cannot correlate a non-numeric column")
	}

	rows := rowPointers(table)
	target := columnValues(rows, indicator)
	var out []Correlation
	for _, col := range table.NumericColumns() {
		if col == indicator {
			continue
		}
		r := stats.Pearson(target, columnValues(rows, col))
		if stats.IsMissing(r) {
			continue
		}
		out = append(out, Correlation{Factor: col, Value: r})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	return out, nil
}

// CorrelationFigure renders Correlations as a horizontal bar chart coloured
// by sign.
func CorrelationFigure(table *datasets.LifeTable, indicator string) *figures.Figure {
	corrs, err := Correlations(table, indicator)
	if err != nil {
		return figures.NoData("correlation-graph", figures.KindHBar, fmt.Sprintf("Cannot correlate non-numeric '%s'", indicator))
	}
	f := figures.New("correlation-graph", figures.KindHBar, "Correlation with "+indicator)
	f.XLabel, f.YLabel = "Correlation", "Factor"
	for _, c := range corrs {
		f.Add(c.Factor, c.Value)
		f.Text = append(f.Text, fmt.Sprintf("%.3f", c.Value))
		color := PositiveColor
		if c.Value < 0 {
			color = NegativeColor
		}
		f.Colors = append(f.Colors, color)
	}
	f.Caption = "Factor Details: " + indicator
	return f.Finish("")
}

func rowPointers(table *datasets.LifeTable) []*datasets.LifeRow {
	rows := make([]*datasets.LifeRow, len(table.Rows))
	for i := range table.Rows {
		rows[i] = &table.Rows[i]
	}
	return rows
}
