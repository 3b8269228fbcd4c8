package datasets

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/spf13/afero"
	"golang.org/x/text/encoding/charmap"

	pkgerrors "github.com/agentstation/datastory/pkg/errors"
)

const utf8BOM = "\ufeff"

// header maps trimmed column names to record positions.
type header struct {
	names []string
	index map[string]int
}

func newHeader(record []string) header {
	h := header{names: make([]string, len(record)), index: make(map[string]int, len(record))}
	for i, name := range record {
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		name = strings.TrimSpace(name)
		h.names[i] = name
		if _, dup := h.index[name]; !dup {
			h.index[name] = i
		}
	}
	return h
}

func (h header) has(col string) bool {
	_, ok := h.index[col]
	return ok
}

// get returns the trimmed cell for col, or "" when the column is absent or
// the record is short.
func (h header) get(record []string, col string) string {
	i, ok := h.index[col]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func (h header) at(record []string, i int) string {
	if i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

type scanOptions struct {
	// latin1Fallback re-decodes the file as ISO-8859-1 when it is not
	// valid UTF-8. The whole file is read into memory in that mode.
	latin1Fallback bool
}

// scanCSV streams the records of path to fn after parsing the header row.
// A missing file is reported as a NotFoundError.
func scanCSV(fs afero.Fs, path string, opts scanOptions, fn func(h header, line int, record []string) error) error {
	f, err := fs.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return pkgerrors.NewNotFoundError("file", path)
		}
		return pkgerrors.WrapIO("open", path, err)
	}
	defer func() { _ = f.Close() }()

	var src io.Reader = bufio.NewReaderSize(f, 1<<16)
	if opts.latin1Fallback {
		data, err := io.ReadAll(f)
		if err != nil {
			return pkgerrors.WrapIO("read", path, err)
		}
		if !utf8.Valid(data) {
			data, err = charmap.ISO8859_1.NewDecoder().Bytes(data)
			if err != nil {
				return pkgerrors.WrapParse("csv", path, err)
			}
		}
		src = bytes.NewReader(data)
	}

	r := csv.NewReader(src)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.ReuseRecord = true

	first, err := r.Read()
	if err == io.EOF {
		return pkgerrors.NewParseError("csv", path, "file is empty", nil)
	}
	if err != nil {
		return csvError(path, err)
	}
	h := newHeader(first)

	line := 1
	for {
		record, err := r.Read()
		if err == io.EOF {
			return nil
		}
		line++
		if err != nil {
			return csvError(path, err)
		}
		if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
			continue
		}
		if err := fn(h, line, record); err != nil {
			return err
		}
	}
}

func csvError(path string, err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &pkgerrors.ParseError{
			Format:  "csv",
			File:    path,
			Line:    pe.Line,
			Column:  pe.Column,
			Message: pe.Err.Error(),
			Err:     err,
		}
	}
	return pkgerrors.WrapParse("csv", path, err)
}
