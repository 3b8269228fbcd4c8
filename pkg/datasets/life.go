package datasets

import (
	"context"
	"math"
	"sort"

	pkgerrors "github.com/agentstation/datastory/pkg/errors"
)

// Well-known WHO columns.
const (
	ColumnCountry        = "country"
	ColumnYear           = "year"
	ColumnLifeExpectancy = "life_expectancy"
	ColumnHDI            = "IDH"
)

// Column describes one WHO column besides country and year.
type Column struct {
	Name    string `json:"name" yaml:"name"`
	Numeric bool   `json:"numeric" yaml:"numeric"`
}

// LifeRow is one country-year observation.
type LifeRow struct {
	Country string
	Year    int
	// Values holds the numeric columns (NaN when absent).
	Values map[string]float64
	// Text holds the non-numeric columns verbatim.
	Text map[string]string
}

// Value returns the numeric value of col, treating "year" as a column.
func (r *LifeRow) Value(col string) float64 {
	if col == ColumnYear {
		return float64(r.Year)
	}
	if v, ok := r.Values[col]; ok {
		return v
	}
	return math.NaN()
}

// LifeTable is the cleaned WHO dataset.
type LifeTable struct {
	// Columns lists every column except country and year, in file order.
	Columns []Column
	Rows    []LifeRow
	// Fallback is true when the built-in sample replaced a missing file.
	Fallback bool
}

// Column returns the named column.
func (t *LifeTable) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// IsNumeric reports whether name is a numeric column. year is numeric.
func (t *LifeTable) IsNumeric(name string) bool {
	if name == ColumnYear {
		return true
	}
	c, ok := t.Column(name)
	return ok && c.Numeric
}

// NumericColumns returns year followed by every numeric column.
func (t *LifeTable) NumericColumns() []string {
	cols := []string{ColumnYear}
	for _, c := range t.Columns {
		if c.Numeric {
			cols = append(cols, c.Name)
		}
	}
	return cols
}

// Years returns the sorted distinct years.
func (t *LifeTable) Years() []int {
	seen := make(map[int]struct{})
	for i := range t.Rows {
		seen[t.Rows[i].Year] = struct{}{}
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// Countries returns the sorted distinct country names.
func (t *LifeTable) Countries() []string {
	seen := make(map[string]struct{})
	for i := range t.Rows {
		seen[t.Rows[i].Country] = struct{}{}
	}
	return sortedKeys(seen)
}

// LoadLife reads the WHO extract. A missing file is not an error: the
// built-in sample table is returned with Fallback set.
func (l *Loader) LoadLife(ctx context.Context) (*LifeTable, SourceInfo, error) {
	path := l.path(l.files.Life)
	info := SourceInfo{Dataset: DatasetLife, Path: path, ModTime: l.modTime(path)}

	type rawRow struct {
		country string
		year    int
		cells   []string
	}
	var (
		h    header
		raws []rawRow
	)
	err := scanCSV(l.fs, path, scanOptions{}, func(hd header, _ int, record []string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		h = hd
		year, ok := parseYear(hd.get(record, ColumnYear))
		if !ok {
			info.Skipped++
			return nil
		}
		cells := make([]string, len(hd.names))
		for i := range cells {
			cells[i] = hd.at(record, i)
		}
		raws = append(raws, rawRow{country: hd.get(record, ColumnCountry), year: year, cells: cells})
		return nil
	})
	if pkgerrors.IsNotFound(err) {
		info.Missing = true
		table := FallbackLifeTable()
		info.Rows = len(table.Rows)
		return table, info, nil
	}
	if err != nil {
		return nil, info, err
	}

	table := &LifeTable{}
	var colIdx []int
	for i, name := range h.names {
		if name == ColumnCountry || name == ColumnYear || name == "" {
			continue
		}
		if j := h.index[name]; j != i {
			continue
		}
		numeric := name == ColumnLifeExpectancy
		if !numeric {
			numeric = true
			for _, r := range raws {
				if c := r.cells[i]; !isMissingToken(c) && !isNumeric(c) {
					numeric = false
					break
				}
			}
		}
		table.Columns = append(table.Columns, Column{Name: name, Numeric: numeric})
		colIdx = append(colIdx, i)
	}

	table.Rows = make([]LifeRow, 0, len(raws))
	for _, r := range raws {
		row := LifeRow{
			Country: r.country,
			Year:    r.year,
			Values:  make(map[string]float64),
			Text:    make(map[string]string),
		}
		for k, c := range table.Columns {
			cell := r.cells[colIdx[k]]
			if c.Numeric {
				row.Values[c.Name] = parseNumber(cell)
			} else {
				row.Text[c.Name] = cell
			}
		}
		table.Rows = append(table.Rows, row)
	}
	info.Rows = len(table.Rows)
	return table, info, nil
}

// FallbackLifeTable returns the small sample used when the WHO file is
// missing, so the dashboard still renders.
func FallbackLifeTable() *LifeTable {
	type sample struct {
		country string
		year    int
		life    float64
		hdi     float64
		gdp     float64
		pop     float64
	}
	samples := []sample{
		{"USA", 2000, 76.8, 0.88, 40000, 282},
		{"USA", 2001, 77.0, 0.89, 41000, 285},
		{"Canada", 2000, 79.1, 0.89, 38000, 30},
		{"Canada", 2001, 79.4, 0.90, 39000, 31},
	}
	table := &LifeTable{
		Columns: []Column{
			{Name: ColumnLifeExpectancy, Numeric: true},
			{Name: ColumnHDI, Numeric: true},
			{Name: "GDP", Numeric: true},
			{Name: "population", Numeric: true},
		},
		Fallback: true,
	}
	for _, s := range samples {
		table.Rows = append(table.Rows, LifeRow{
			Country: s.country,
			Year:    s.year,
			Values: map[string]float64{
				ColumnLifeExpectancy: s.life,
				ColumnHDI:            s.hdi,
				"GDP":                s.gdp,
				"population":         s.pop,
			},
			Text: map[string]string{},
		})
	}
	return table
}
