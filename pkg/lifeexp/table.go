package lifeexp

import (
	"sort"
	"strconv"
	"strings"

	"github.com/agentstation/datastory/pkg/constants"
	"github.com/agentstation/datastory/pkg/datasets"
	pkgerrors "github.com/agentstation/datastory/pkg/errors"
	"github.com/agentstation/datastory/pkg/stats"
)

// TableQuery selects, sorts and pages data table rows.
type TableQuery struct {
	Country string `json:"country" yaml:"country"`
	Year    int    `json:"year" yaml:"year"`
	// Sort is a column name; empty keeps file order.
	Sort string `json:"sort,omitempty" yaml:"sort,omitempty"`
	// Desc reverses the sort.
	Desc bool `json:"desc,omitempty" yaml:"desc,omitempty"`
	// Search keeps rows whose country or text columns contain it
	// (case-insensitive).
	Search   string `json:"search,omitempty" yaml:"search,omitempty"`
	Page     int    `json:"page" yaml:"page"`
	PageSize int    `json:"page_size" yaml:"page_size"`
}

// TablePage is one page of data table records.
type TablePage struct {
	Columns  []string         `json:"columns" yaml:"columns"`
	Records  []map[string]any `json:"records" yaml:"records"`
	Total    int              `json:"total" yaml:"total"`
	Page     int              `json:"page" yaml:"page"`
	PageSize int              `json:"page_size" yaml:"page_size"`
	Pages    int              `json:"pages" yaml:"pages"`
}

// Table returns the requested page. Page numbers start at 1; page sizes
// default to constants.DefaultPageSize.
func Table(table *datasets.LifeTable, q TableQuery) (*TablePage, error) {
	if q.Country == "" {
		q.Country = World
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = constants.DefaultPageSize
	}
	if q.PageSize > constants.MaxPageSize {
		q.PageSize = constants.MaxPageSize
	}

	columns := []string{datasets.ColumnCountry, datasets.ColumnYear}
	for _, c := range table.Columns {
		columns = append(columns, c.Name)
	}
	if q.Sort != "" && !contains(columns, q.Sort) {
		return nil, pkgerrors.NewValidationError("sort", q.Sort, "unknown column")
	}

	rows := selectRows(table, q.Country, q.Year)
	if q.Search != "" {
		rows = search(rows, strings.ToLower(q.Search))
	}
	if q.Sort != "" {
		sortRows(rows, q.Sort, q.Desc, table.IsNumeric(q.Sort))
	}

	page := &TablePage{
		Columns:  columns,
		Records:  []map[string]any{},
		Total:    len(rows),
		Page:     q.Page,
		PageSize: q.PageSize,
		Pages:    (len(rows) + q.PageSize - 1) / q.PageSize,
	}
	start := (q.Page - 1) * q.PageSize
	if start >= len(rows) {
		return page, nil
	}
	end := start + q.PageSize
	if end > len(rows) {
		end = len(rows)
	}
	for _, r := range rows[start:end] {
		page.Records = append(page.Records, record(table, r))
	}
	return page, nil
}

func record(table *datasets.LifeTable, r *datasets.LifeRow) map[string]any {
	rec := map[string]any{
		datasets.ColumnCountry: r.Country,
		datasets.ColumnYear:    r.Year,
	}
	for _, c := range table.Columns {
		if !c.Numeric {
			rec[c.Name] = r.Text[c.Name]
			continue
		}
		v := r.Value(c.Name)
		if stats.IsMissing(v) {
			rec[c.Name] = nil
		} else {
			rec[c.Name] = v
		}
	}
	return rec
}

func search(rows []*datasets.LifeRow, needle string) []*datasets.LifeRow {
	out := rows[:0:0]
	for _, r := range rows {
		if strings.Contains(strings.ToLower(r.Country), needle) || strings.Contains(strconv.Itoa(r.Year), needle) {
			out = append(out, r)
			continue
		}
		for _, v := range r.Text {
			if strings.Contains(strings.ToLower(v), needle) {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

// sortRows orders rows by col. Missing values sort last in both directions.
func sortRows(rows []*datasets.LifeRow, col string, desc, numeric bool) {
	sort.SliceStable(rows, func(i, j int) bool {
		if numeric {
			a, b := rows[i].Value(col), rows[j].Value(col)
			switch {
			case stats.IsMissing(a):
				return false
			case stats.IsMissing(b):
				return true
			case desc:
				return a > b
			default:
				return a < b
			}
		}
		a, b := textValue(rows[i], col), textValue(rows[j], col)
		if desc {
			return a > b
		}
		return a < b
	})
}

func textValue(r *datasets.LifeRow, col string) string {
	if col == datasets.ColumnCountry {
		return r.Country
	}
	return r.Text[col]
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
