package datasets

import (
	"context"

	"github.com/spf13/afero"
)

// Lookup maps IATA codes to display names.
type Lookup map[string]string

// Name returns the display name for code, or code itself when unknown.
func (l Lookup) Name(code string) string {
	if name, ok := l[code]; ok && name != "" {
		return name
	}
	return code
}

// loadLookup reads a two-column code/name file. codeCols and nameCols are
// tried in order so both the Kaggle layout (IATA_CODE, AIRLINE/AIRPORT) and
// lower-case variants load.
func loadLookup(ctx context.Context, fs afero.Fs, path string, codeCols, nameCols []string) (Lookup, SourceInfo, error) {
	info := SourceInfo{Path: path}
	lookup := make(Lookup)

	err := scanCSV(fs, path, scanOptions{}, func(h header, _ int, record []string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		code := h.get(record, firstPresent(h, codeCols))
		name := h.get(record, firstPresent(h, nameCols))
		if code == "" {
			info.Skipped++
			return nil
		}
		lookup[code] = name
		info.Rows++
		return nil
	})
	return lookup, info, err
}

func firstPresent(h header, cols []string) string {
	for _, c := range cols {
		if h.has(c) {
			return c
		}
	}
	return ""
}
