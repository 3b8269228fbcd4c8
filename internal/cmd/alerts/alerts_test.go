package alerts

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/datastory/internal/cmd/output"
)

func TestAlertString(t *testing.T) {
	a := NewError("flights failed").WithError(errors.New("file not found"))
	assert.Equal(t, "✗ flights failed: file not found", a.String())
	assert.Equal(t, "! skipped", NewWarning("skipped").String())
}

func TestFormatWriter(t *testing.T) {
	alert := NewWarning("who: 1 row skipped").WithDetails("row 7: invalid year")

	tests := []struct {
		name   string
		format output.Format
		check  func(t *testing.T, out string)
	}{
		{"table", output.FormatTable, func(t *testing.T, out string) {
			assert.Equal(t, "! who: 1 row skipped\n   row 7: invalid year\n", out)
		}},
		{"json", output.FormatJSON, func(t *testing.T, out string) {
			var data map[string]any
			require.NoError(t, json.Unmarshal([]byte(out), &data))
			assert.Equal(t, "warning", data["level"])
			assert.Equal(t, []any{"row 7: invalid year"}, data["details"])
		}},
		{"yaml", output.FormatYAML, func(t *testing.T, out string) {
			assert.Contains(t, out, "level: warning")
			assert.Contains(t, out, "who: 1 row skipped")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, NewFormatWriter(&buf, tt.format).WriteAlert(alert))
			tt.check(t, buf.String())
		})
	}
}
