package table

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/agentstation/datastory/internal/cmd/emoji"
	"github.com/agentstation/datastory/pkg/datasets"
	"github.com/agentstation/datastory/pkg/figures"
	"github.com/agentstation/datastory/pkg/food"
	"github.com/agentstation/datastory/pkg/lifeexp"
	"github.com/agentstation/datastory/pkg/stats"
)

func TestKPIs(t *testing.T) {
	got := KPIs([]figures.KPI{
		{ID: "flights", Title: "Flights", Value: "6"},
		{ID: "late", Title: "Late share", Value: "N/A"},
	})
	want := [][]string{{"Flights", "6"}, {"Late share", "N/A"}}
	if diff := cmp.Diff(want, got.Rows); diff != "" {
		t.Errorf("KPIs rows mismatch (-want +got):\n%s", diff)
	}
}

func TestFigure(t *testing.T) {
	bar := &figures.Figure{
		Kind:   figures.KindBar,
		Title:  "Flights by airline",
		XLabel: "Airline",
		X:      []string{"AA", "DL"},
		Y:      []float64{3, 1.5},
		Text:   []string{"3", "1.5"},
	}

	tests := []struct {
		name    string
		fig     *figures.Figure
		wide    bool
		headers []string
		rows    [][]string
	}{
		{
			name:    "bar",
			fig:     bar,
			headers: []string{"Airline", "Value"},
			rows:    [][]string{{"AA", "3"}, {"DL", "1.5"}},
		},
		{
			name:    "bar wide",
			fig:     bar,
			wide:    true,
			headers: []string{"Airline", "Value", "Text"},
			rows:    [][]string{{"AA", "3", "3"}, {"DL", "1.5", "1.5"}},
		},
		{
			name: "histogram",
			fig: &figures.Figure{
				Kind:  figures.KindHistogram,
				Title: "Life expectancy",
				Bins:  []stats.Bin{{Lo: 50, Hi: 60, Count: 2}, {Lo: 60, Hi: 70, Count: 4}},
			},
			headers: []string{"From", "To", "Count"},
			rows:    [][]string{{"50", "60", "2"}, {"60", "70", "4"}},
		},
		{
			name:    "empty",
			fig:     &figures.Figure{Kind: figures.KindLine, Title: "No data", Empty: true},
			headers: []string{"No data"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Figure(tt.fig, tt.wide)
			assert.Equal(t, tt.headers, got.Headers)
			if diff := cmp.Diff(tt.rows, got.Rows); diff != "" {
				t.Errorf("rows mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFoodAreas(t *testing.T) {
	got := FoodAreas(&food.Summary{
		Unit:  "1000 tonnes",
		Areas: []food.AreaAverage{{Area: "Afghanistan", Average: 3100, Records: 2}},
	})
	assert.Equal(t, []string{"Area", "Average (1000 tonnes)", "Records"}, got.Headers)
	assert.Equal(t, [][]string{{"Afghanistan", "3100", "2"}}, got.Rows)
}

func TestCorrelations(t *testing.T) {
	got := Correlations([]lifeexp.Correlation{{Factor: "Schooling", Value: 0.75123}})
	assert.Equal(t, [][]string{{"Schooling", "0.751"}}, got.Rows)
}

func TestProfile(t *testing.T) {
	got := Profile(&lifeexp.Profile{
		Title:  "Japan (2001)",
		Fields: []lifeexp.Field{{Name: "Life expectancy", Value: "81.2"}},
	})
	assert.Equal(t, "Japan (2001)", got.Title)
	assert.Equal(t, [][]string{{"Life expectancy", "81.2"}}, got.Rows)
}

func TestSources(t *testing.T) {
	mod := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	sources := []datasets.SourceInfo{
		{Dataset: datasets.DatasetFlights, Path: "/data/dashboard_flights.csv", Rows: 6, ModTime: mod},
		{Dataset: datasets.DatasetLife, Path: "/data/who.csv", Rows: 6, Skipped: 1, ModTime: mod},
		{Dataset: datasets.DatasetFood, Path: "/data/FAO.csv", Missing: true},
		{Dataset: datasets.DatasetAirlines, Path: "/data/airlines.csv", Error: "file is empty"},
	}

	narrow := Sources(sources, false)
	want := [][]string{
		{emoji.Success, datasets.DatasetFlights, "dashboard_flights.csv", "6", "0"},
		{emoji.Warning, datasets.DatasetLife, "who.csv", "6", "1"},
		{emoji.Optional, datasets.DatasetFood, "FAO.csv", "0", "0"},
		{emoji.Warning, datasets.DatasetAirlines, "airlines.csv", "0", "0"},
	}
	if diff := cmp.Diff(want, narrow.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}

	wide := Sources(sources, true)
	assert.Len(t, wide.Headers, 6)
	assert.Equal(t, "/data/dashboard_flights.csv", wide.Rows[0][2])
	assert.Equal(t, "2024-03-01 09:30", wide.Rows[0][5])
	assert.Empty(t, wide.Rows[2][5])
}
