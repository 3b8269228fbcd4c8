package food

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/datastory/pkg/datasets"
	"github.com/agentstation/datastory/pkg/datasets/datasetstest"
	"github.com/agentstation/datastory/pkg/logging"
)

func loadTable(t *testing.T) *datasets.FoodTable {
	t.Helper()
	fs := datasetstest.NewFS(t, datasetstest.Default())
	loader := datasets.NewLoader(fs, datasetstest.Dir, datasets.Files{}, datasets.WithLogger(logging.NewNopLogger()))
	table, _, err := loader.LoadFood(context.Background())
	require.NoError(t, err)
	return table
}

func TestSummarize(t *testing.T) {
	s := Summarize(loadTable(t), Filter{})

	assert.Equal(t, DefaultTop, s.Filter.Top)
	assert.Equal(t, "1000 tonnes", s.Unit)
	assert.Equal(t, 3, s.Records)
	require.Len(t, s.Areas, 2)
	assert.Equal(t, "Afghanistan", s.Areas[0].Area)
	assert.InDelta(t, (3000+3100+3200+100+120)/5.0, s.Areas[0].Average, 1e-9)
	assert.Equal(t, 2, s.Areas[0].Records)
	assert.Equal(t, 410.0, s.Areas[1].Average)

	assert.Equal(t, []string{"Afghanistan", "Albania"}, s.ByArea.X)
	assert.Equal(t, []string{"2011", "2012", "2013"}, s.Trend.X)
	assert.Equal(t, []float64{3500, 3510, 3740}, s.Trend.Y)
}

func TestSummarizeFiltered(t *testing.T) {
	table := loadTable(t)

	s := Summarize(table, Filter{Element: "Feed"})
	require.Len(t, s.Areas, 1)
	assert.Equal(t, 110.0, s.Areas[0].Average)

	s = Summarize(table, Filter{Item: "Wheat and products", Top: 1})
	require.Len(t, s.Areas, 1)
	assert.Equal(t, "Afghanistan", s.Areas[0].Area)

	s = Summarize(table, Filter{Element: "Seed"})
	assert.Empty(t, s.Areas)
	assert.True(t, s.ByArea.Empty)
	assert.True(t, s.Trend.Empty)
}

func TestOptionsFor(t *testing.T) {
	opts := OptionsFor(loadTable(t))
	assert.Equal(t, []string{"Feed", "Food"}, opts.Elements)
	assert.Equal(t, 2011, opts.FirstYear)
	assert.Equal(t, 2013, opts.LastYear)
}
