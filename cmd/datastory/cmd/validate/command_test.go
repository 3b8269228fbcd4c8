package validate

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/datastory"
	"github.com/agentstation/datastory/internal/cmd/application"
	"github.com/agentstation/datastory/pkg/datasets"
	"github.com/agentstation/datastory/pkg/datasets/datasetstest"
	"github.com/agentstation/datastory/pkg/errors"
	"github.com/agentstation/datastory/pkg/logging"
)

func newMock(t *testing.T, files datasetstest.Files, format string) *application.Mock {
	t.Helper()
	fs := datasetstest.NewFS(t, files)
	return &application.Mock{
		ClientFunc: func(ctx context.Context) (datastory.Client, error) {
			return datastory.New(ctx,
				datastory.WithFS(fs),
				datastory.WithDataDir(datasetstest.Dir),
				datastory.WithLogger(logging.NewNopLogger()))
		},
		DataDirFunc:      func() string { return datasetstest.Dir },
		OutputFormatFunc: func() string { return format },
	}
}

func execute(t *testing.T, app application.Application) (string, error) {
	t.Helper()
	cmd := NewCommand(app)
	var buf bytes.Buffer
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(nil)
	err := cmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestValidateJSON(t *testing.T) {
	out, err := execute(t, newMock(t, datasetstest.Default(), "json"))
	require.NoError(t, err)

	var res Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.True(t, res.OK)
	assert.Equal(t, datasetstest.Dir, res.Dir)
	assert.Empty(t, res.Error)

	rows := map[string]int{}
	for _, s := range res.Sources {
		rows[s.Dataset] = s.Rows
	}
	assert.Equal(t, 6, rows[datasets.DatasetFlights])
	assert.Equal(t, 6, rows[datasets.DatasetLife])
	assert.Equal(t, 3, rows[datasets.DatasetFood])
	assert.Len(t, res.Warnings, 1)
}

func TestValidateTable(t *testing.T) {
	files := datasetstest.Default()
	delete(files, "FAO.csv")

	out, err := execute(t, newMock(t, files, "table"))
	require.NoError(t, err)
	assert.Contains(t, out, "dashboard_flights.csv")
	assert.Contains(t, out, "food file")
	assert.Contains(t, out, "/data is valid")
	assert.Contains(t, out, "food: missing")
	assert.Contains(t, out, "flights: 6 rows")
}

func TestValidateUnreadableOptionalFile(t *testing.T) {
	files := datasetstest.Default()
	files["Life Expectancy Data with IDH.csv"] = ""

	out, err := execute(t, newMock(t, files, "table"))
	require.NoError(t, err)
	assert.Contains(t, out, "could not be read")
	assert.Contains(t, out, "life_expectancy: unreadable, 4 rows")
	assert.Contains(t, out, "/data is valid")
}

func TestValidateMissingFlights(t *testing.T) {
	files := datasetstest.Default()
	delete(files, "dashboard_flights.csv")

	t.Run("table", func(t *testing.T) {
		out, err := execute(t, newMock(t, files, "table"))
		require.Error(t, err)
		assert.True(t, errors.IsNotFound(err))
		assert.Contains(t, out, "Datasets could not be loaded")
		assert.Contains(t, out, "folder: /data")
	})

	t.Run("json", func(t *testing.T) {
		out, err := execute(t, newMock(t, files, "json"))
		require.Error(t, err)

		var res Result
		require.NoError(t, json.Unmarshal([]byte(out), &res))
		assert.False(t, res.OK)
		assert.NotEmpty(t, res.Error)
		assert.Empty(t, res.Sources)
	})
}
