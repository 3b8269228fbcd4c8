package output

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/datastory/internal/cmd/table"
)

type areaRow struct {
	Area    string  `json:"area_name"`
	Average float64 `json:"average,omitempty"`
	hidden  int
	Skip    string `json:"-"`
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", "", false},
		{"JSON", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{"wide", FormatWide, false},
		{"table", FormatTable, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectFormatExplicit(t *testing.T) {
	assert.Equal(t, FormatYAML, DetectFormat("YAML"))
}

func TestNewFormatter(t *testing.T) {
	assert.IsType(t, &JSONFormatter{}, NewFormatter(FormatJSON))
	assert.IsType(t, &YAMLFormatter{}, NewFormatter(FormatYAML))
	assert.Equal(t, &TableFormatter{Wide: true}, NewFormatter(FormatWide))
	assert.Equal(t, &TableFormatter{}, NewFormatter("other"))
}

func TestJSONAndYAML(t *testing.T) {
	data := map[string]int{"rows": 6}

	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatJSON).Format(&buf, data))
	assert.JSONEq(t, `{"rows":6}`, buf.String())

	buf.Reset()
	require.NoError(t, NewFormatter(FormatYAML).Format(&buf, data))
	assert.Equal(t, "rows: 6\n", buf.String())
}

func TestTableRendersData(t *testing.T) {
	var buf bytes.Buffer
	err := NewFormatter(FormatTable).Format(&buf, table.Data{
		Title:           "Flights by airline",
		Headers:         []string{"Airline", "Flights"},
		Rows:            [][]string{{"American Airlines", "3"}},
		ColumnAlignment: []table.Align{table.AlignLeft, table.AlignRight},
	})
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "Flights by airline\n")
	assert.Contains(t, out, "3")
	assert.Contains(t, out, "American Airlines")
}

func TestTableRendersSeveral(t *testing.T) {
	var buf bytes.Buffer
	err := NewFormatter(FormatTable).Format(&buf, []table.Data{
		{Title: "First", Headers: []string{"A"}, Rows: [][]string{{"1"}}},
		{Title: "Second", Headers: []string{"B"}, Rows: [][]string{{"2"}}},
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "First")
	assert.Contains(t, buf.String(), "\n\nSecond\n")
}

func TestReflectTable(t *testing.T) {
	rows := []areaRow{{Area: "Japan", Average: 81.5}, {Area: "Chad"}}
	got, ok := reflectTable(rows)
	require.True(t, ok)
	want := table.Data{
		Headers: []string{"Area Name", "Average"},
		Rows:    [][]string{{"Japan", "81.5"}, {"Chad", "0"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("reflectTable mismatch (-want +got):\n%s", diff)
	}

	single, ok := reflectTable(&areaRow{Area: "Japan"})
	require.True(t, ok)
	assert.Equal(t, []string{"Property", "Value"}, single.Headers)
	assert.Equal(t, []string{"Area Name", "Japan"}, single.Rows[0])

	_, ok = reflectTable(42)
	assert.False(t, ok)
}

func TestTableFallsBackToJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatTable).Format(&buf, map[string]string{"a": "b"}))
	assert.JSONEq(t, `{"a":"b"}`, buf.String())
}

func TestRender(t *testing.T) {
	value := map[string]int{"flights": 6}
	tables := func(wide bool) []table.Data {
		title := "narrow"
		if wide {
			title = "wide"
		}
		return []table.Data{{Title: title, Headers: []string{"Flights"}, Rows: [][]string{{"6"}}}}
	}

	tests := []struct {
		format Format
		check  func(t *testing.T, out string)
	}{
		{FormatTable, func(t *testing.T, out string) { assert.Contains(t, out, "narrow\n") }},
		{FormatWide, func(t *testing.T, out string) { assert.Contains(t, out, "wide\n") }},
		{FormatJSON, func(t *testing.T, out string) { assert.JSONEq(t, `{"flights":6}`, out) }},
		{FormatYAML, func(t *testing.T, out string) { assert.Equal(t, "flights: 6\n", out) }},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Render(&buf, tt.format, value, tables))
			tt.check(t, buf.String())
		})
	}
}
