package datasets

import (
	"context"
	"math"
	"sort"
	"strconv"
	"strings"

	pkgerrors "github.com/agentstation/datastory/pkg/errors"
)

// FoodRow is one FAO area/item/element record with its yearly quantities.
type FoodRow struct {
	AreaAbbreviation string
	AreaCode         string
	Area             string
	ItemCode         string
	Item             string
	ElementCode      string
	Element          string
	Unit             string
	Latitude         float64
	Longitude        float64
	// Years maps a year to its quantity; absent years are not stored.
	Years map[int]float64
}

// FoodTable is the cleaned FAO dataset.
type FoodTable struct {
	Rows []FoodRow
	// FirstYear and LastYear bound the Y<year> columns found in the source.
	FirstYear int
	LastYear  int
}

// Elements returns the sorted distinct elements (for example Food, Feed).
func (t *FoodTable) Elements() []string {
	seen := make(map[string]struct{})
	for i := range t.Rows {
		if e := t.Rows[i].Element; e != "" {
			seen[e] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

// Items returns the sorted distinct items.
func (t *FoodTable) Items() []string {
	seen := make(map[string]struct{})
	for i := range t.Rows {
		if it := t.Rows[i].Item; it != "" {
			seen[it] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

// yearColumn parses headers of the form Y1961.
func yearColumn(name string) (int, bool) {
	if len(name) != 5 || name[0] != 'Y' {
		return 0, false
	}
	y, err := strconv.Atoi(name[1:])
	return y, err == nil
}

// LoadFood reads the FAO extract, falling back to latin-1 decoding when the
// file is not valid UTF-8. A missing file yields an empty table.
func (l *Loader) LoadFood(ctx context.Context) (*FoodTable, SourceInfo, error) {
	path := l.path(l.files.Food)
	info := SourceInfo{Dataset: DatasetFood, Path: path, ModTime: l.modTime(path)}
	table := &FoodTable{}

	type yearCol struct {
		idx  int
		year int
	}
	var years []yearCol
	prepared := false

	err := scanCSV(l.fs, path, scanOptions{latin1Fallback: true}, func(h header, _ int, record []string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !prepared {
			prepared = true
			for i, name := range h.names {
				if y, ok := yearColumn(name); ok {
					years = append(years, yearCol{idx: i, year: y})
				}
			}
			sort.Slice(years, func(a, b int) bool { return years[a].year < years[b].year })
			if len(years) > 0 {
				table.FirstYear = years[0].year
				table.LastYear = years[len(years)-1].year
			}
		}

		area := h.get(record, "Area")
		if area == "" {
			info.Skipped++
			return nil
		}
		row := FoodRow{
			AreaAbbreviation: h.get(record, "Area Abbreviation"),
			AreaCode:         h.get(record, "Area Code"),
			Area:             area,
			ItemCode:         h.get(record, "Item Code"),
			Item:             h.get(record, "Item"),
			ElementCode:      h.get(record, "Element Code"),
			Element:          h.get(record, "Element"),
			Unit:             strings.TrimSpace(h.get(record, "Unit")),
			Latitude:         parseNumber(h.get(record, "latitude")),
			Longitude:        parseNumber(h.get(record, "longitude")),
			Years:            make(map[int]float64, len(years)),
		}
		for _, yc := range years {
			v := parseNumber(h.at(record, yc.idx))
			if !math.IsNaN(v) {
				row.Years[yc.year] = v
			}
		}
		table.Rows = append(table.Rows, row)
		info.Rows++
		return nil
	})
	if pkgerrors.IsNotFound(err) {
		info.Missing = true
		return table, info, nil
	}
	if err != nil {
		return nil, info, err
	}
	return table, info, nil
}
