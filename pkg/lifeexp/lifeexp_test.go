package lifeexp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/datastory/pkg/datasets"
	"github.com/agentstation/datastory/pkg/datasets/datasetstest"
	pkgerrors "github.com/agentstation/datastory/pkg/errors"
	"github.com/agentstation/datastory/pkg/logging"
)

func loadTable(t *testing.T) *datasets.LifeTable {
	t.Helper()
	fs := datasetstest.NewFS(t, datasetstest.Default())
	loader := datasets.NewLoader(fs, datasetstest.Dir, datasets.Files{}, datasets.WithLogger(logging.NewNopLogger()))
	table, _, err := loader.LoadLife(context.Background())
	require.NoError(t, err)
	return table
}

func TestOptionsFor(t *testing.T) {
	opts := OptionsFor(loadTable(t))

	require.Len(t, opts.Indicators, 2)
	assert.Equal(t, "life_expectancy", opts.Indicators[0].Value)
	assert.Equal(t, []Option{
		{Label: "1999 (All Years Average)", Value: "1999"},
		{Label: "2000", Value: "2000"},
		{Label: "2001", Value: "2001"},
	}, opts.Years)
	assert.Equal(t, 2001, opts.DefaultYear)
	assert.Equal(t, "World", opts.Countries[0].Value)
	assert.Equal(t, "World (Global Average)", opts.Countries[0].Label)
	assert.Len(t, opts.Countries, 4)
	assert.Equal(t, []string{"country", "year", "status", "life_expectancy", "IDH", "GDP"}, opts.Columns)
}

func TestOverview(t *testing.T) {
	table := loadTable(t)

	t.Run("single year", func(t *testing.T) {
		f := Overview(table, "life_expectancy", 2001)
		assert.Equal(t, "life_expectancy by Country (2001)", f.Title)
		assert.Equal(t, []string{"France", "Chad", "Japan"}, f.X)
		assert.Equal(t, []float64{79.4, 48.1, 81.5}, f.Y)
		require.NotNil(t, f.ColorRange)
		assert.Equal(t, 47.5, f.ColorRange.Min)
		assert.Equal(t, 81.2, f.ColorRange.Max)
	})

	t.Run("all years", func(t *testing.T) {
		f := Overview(table, "life_expectancy", AllYears)
		assert.Equal(t, "life_expectancy by Country (All Years Aggregated)", f.Title)
		assert.Equal(t, []string{"Chad", "France", "Japan"}, f.X)
		assert.InDelta(t, 47.8, f.Y[0], 1e-9)
		assert.InDelta(t, 81.35, f.Y[2], 1e-9)
	})

	t.Run("missing values are skipped", func(t *testing.T) {
		f := Overview(table, "IDH", 2001)
		assert.Equal(t, []string{"France", "Chad"}, f.X)
	})

	t.Run("non numeric", func(t *testing.T) {
		f := Overview(table, "status", AllYears)
		assert.True(t, f.Empty)
		assert.Equal(t, "'status' is not a numeric column.", f.Title)
	})

	t.Run("unknown year", func(t *testing.T) {
		f := Overview(table, "life_expectancy", 1980)
		assert.True(t, f.Empty)
	})
}

func TestColorRangeFallsBackToAllYears(t *testing.T) {
	table := &datasets.LifeTable{
		Columns: []datasets.Column{{Name: "life_expectancy", Numeric: true}},
		Rows: []datasets.LifeRow{
			{Country: "A", Year: 2010, Values: map[string]float64{"life_expectancy": 60}},
			{Country: "B", Year: 2011, Values: map[string]float64{"life_expectancy": 70}},
		},
	}
	f := Overview(table, "life_expectancy", 2010)
	require.NotNil(t, f.ColorRange)
	assert.Equal(t, 60.0, f.ColorRange.Min)
	assert.Equal(t, 70.0, f.ColorRange.Max)

	single := &datasets.LifeTable{
		Columns: table.Columns,
		Rows:    table.Rows[:1],
	}
	assert.Nil(t, Overview(single, "life_expectancy", 2010).ColorRange, "min equals max")
}

func TestBuildProfile(t *testing.T) {
	table := loadTable(t)

	tests := []struct {
		name    string
		country string
		year    int
		title   string
		fields  []Field
		message string
	}{
		{
			name:    "world all years",
			country: World,
			year:    AllYears,
			title:   "Global Average (All Years)",
			fields: []Field{
				{Name: "life_expectancy", Value: "69.45"},
				{Name: "IDH", Value: "0.63"},
				{Name: "GDP", Value: "20403.33"},
			},
		},
		{
			name:    "world one year",
			country: World,
			year:    2000,
			title:   "Global Average (2000)",
			fields: []Field{
				{Name: "life_expectancy", Value: "69.23"},
				{Name: "IDH", Value: "0.67"},
				{Name: "GDP", Value: "20400.00"},
			},
		},
		{
			name:    "country all years",
			country: "Chad",
			year:    AllYears,
			title:   "Chad Average (All Years)",
			fields: []Field{
				{Name: "life_expectancy", Value: "47.80"},
				{Name: "IDH", Value: "0.29"},
				{Name: "GDP", Value: "210.00"},
			},
		},
		{
			name:    "country one year",
			country: "Japan",
			year:    2001,
			title:   "Japan Profile (2001)",
			fields: []Field{
				{Name: "status", Value: "Developed"},
				{Name: "life_expectancy", Value: "81.50"},
				{Name: "IDH", Value: "N/A"},
				{Name: "GDP", Value: "38000.00"},
			},
		},
		{
			name:    "country without data",
			country: "Chad",
			year:    1990,
			title:   "Chad Profile (1990)",
			fields:  []Field{},
			message: NoDataMessage,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := BuildProfile(table, tt.country, tt.year)
			assert.Equal(t, tt.title, p.Title)
			assert.Equal(t, tt.fields, p.Fields)
			assert.Equal(t, tt.message, p.Message)
		})
	}
}

func TestCorrelations(t *testing.T) {
	table := loadTable(t)

	corrs, err := Correlations(table, "life_expectancy")
	require.NoError(t, err)
	require.Len(t, corrs, 3)
	assert.Equal(t, "IDH", corrs[0].Factor)
	assert.Equal(t, "GDP", corrs[1].Factor)
	assert.Equal(t, "year", corrs[2].Factor)
	assert.InDelta(t, 0.9992, corrs[0].Value, 1e-4)
	assert.InDelta(t, 0.9313, corrs[1].Value, 1e-4)

	f := CorrelationFigure(table, "life_expectancy")
	assert.Equal(t, "Correlation with life_expectancy", f.Title)
	assert.Equal(t, []string{"0.999", "0.931", "0.014"}, f.Text)
	assert.Equal(t, []string{PositiveColor, PositiveColor, PositiveColor}, f.Colors)

	_, err = Correlations(table, "status")
	assert.True(t, pkgerrors.IsValidationError(err))
	assert.True(t, CorrelationFigure(table, "status").Empty)
}

func TestCorrelationColors(t *testing.T) {
	table := &datasets.LifeTable{
		Columns: []datasets.Column{{Name: "a", Numeric: true}, {Name: "b", Numeric: true}},
	}
	for i, v := range []float64{1, 2, 3} {
		table.Rows = append(table.Rows, datasets.LifeRow{Year: 2000, Values: map[string]float64{"a": v, "b": float64(10 - i)}})
	}
	f := CorrelationFigure(table, "a")
	assert.Equal(t, []string{"b"}, f.X, "year has zero variance and is dropped")
	assert.Equal(t, []string{NegativeColor}, f.Colors)
}

func TestTable(t *testing.T) {
	table := loadTable(t)

	page, err := Table(table, TableQuery{Country: World, Year: 2000, Sort: "life_expectancy", Desc: true, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 2, page.Pages)
	require.Len(t, page.Records, 2)
	assert.Equal(t, "Japan", page.Records[0]["country"])
	assert.Equal(t, "France", page.Records[1]["country"])

	page, err = Table(table, TableQuery{Country: World, Year: 2000, Sort: "life_expectancy", Desc: true, PageSize: 2, Page: 2})
	require.NoError(t, err)
	require.Len(t, page.Records, 1)
	assert.Equal(t, "Chad", page.Records[0]["country"])

	page, err = Table(table, TableQuery{Country: "Japan", Year: AllYears})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, 10, page.PageSize)
	assert.Nil(t, page.Records[1]["IDH"])

	page, err = Table(table, TableQuery{Year: AllYears, Search: "developing", Sort: "country"})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)

	page, err = Table(table, TableQuery{Year: AllYears, Page: 9})
	require.NoError(t, err)
	assert.Empty(t, page.Records)

	_, err = Table(table, TableQuery{Sort: "nope"})
	assert.True(t, pkgerrors.IsValidationError(err))
}

func TestBuildAnalytics(t *testing.T) {
	a := BuildAnalytics(loadTable(t), 10)
	assert.Equal(t, []string{"2000", "2001"}, a.Trend.X)
	assert.InDelta(t, 69.2333, a.Trend.Y[0], 1e-3)
	assert.InDelta(t, 69.6667, a.Trend.Y[1], 1e-3)
	require.Len(t, a.Distribution.Bins, 10)
}

func TestParseYear(t *testing.T) {
	y, err := ParseYear("")
	require.NoError(t, err)
	assert.Equal(t, AllYears, y)
	y, err = ParseYear("2001")
	require.NoError(t, err)
	assert.Equal(t, 2001, y)
	_, err = ParseYear("two")
	assert.Error(t, err)
}
