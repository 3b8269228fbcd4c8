// Package summary provides the summary command, which prints the headline
// numbers of one dashboard.
package summary

import (
	"net/url"

	"github.com/spf13/cobra"

	"github.com/agentstation/datastory/internal/cmd/application"
	"github.com/agentstation/datastory/internal/cmd/output"
	"github.com/agentstation/datastory/internal/cmd/table"
	"github.com/agentstation/datastory/internal/server/filter"
	"github.com/agentstation/datastory/pkg/datasets"
	"github.com/agentstation/datastory/pkg/figures"
	"github.com/agentstation/datastory/pkg/flights"
	"github.com/agentstation/datastory/pkg/food"
	"github.com/agentstation/datastory/pkg/lifeexp"
)

// NewCommand creates the summary command.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "summary",
		Aliases: []string{"sum"},
		GroupID: "data",
		Short:   "Print the KPIs and top lists of a dashboard",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newFlightsCommand(app))
	cmd.AddCommand(newWHOCommand(app))
	cmd.AddCommand(newFoodCommand(app))
	return cmd
}

func newFlightsCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flights [DATA_FOLDER]",
		Short: "Summarize flight delays",
		Example: `  datastory summary flights
  datastory summary flights --airline "Delta Air Lines Inc." --start 2015-03-01 --end 2015-03-31
  datastory summary flights -o json`,
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{application.DataFolderArg: ""},
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := filter.Flights(flagValues(cmd, map[string]string{
				"airline":     "airline",
				"start":       "start_date",
				"end":         "end_date",
				"granularity": "granularity",
			}))
			if err != nil {
				return err
			}
			snap, err := snapshot(cmd, app)
			if err != nil {
				return err
			}
			d := flights.Build(snap.Flights, f)
			return render(cmd, app, d, func(wide bool) []table.Data {
				out := []table.Data{table.KPIs(d.KPIs)}
				for _, fig := range d.Figures {
					if !wide && (fig.ID == flights.FigureTimeSeries || fig.ID == flights.FigureDistribution) {
						continue
					}
					out = append(out, table.Figure(fig, wide))
				}
				return out
			})
		},
	}
	cmd.Flags().String("airline", "", "Airline name (as shown in the dashboard options)")
	cmd.Flags().String("start", "", "First day, ISO 8601")
	cmd.Flags().String("end", "", "Last day, ISO 8601")
	cmd.Flags().String("granularity", "W", "Time series bucket: W or M")
	return cmd
}

// WHOSummary is the machine-readable WHO summary.
type WHOSummary struct {
	Indicator    string                `json:"indicator" yaml:"indicator"`
	Fallback     bool                  `json:"fallback" yaml:"fallback"`
	Profile      *lifeexp.Profile      `json:"profile" yaml:"profile"`
	Correlations []lifeexp.Correlation `json:"correlations" yaml:"correlations"`
	Overview     *figures.Figure       `json:"overview" yaml:"overview"`
}

func newWHOCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "who [DATA_FOLDER]",
		Aliases: []string{"life"},
		Short:   "Summarize the WHO life expectancy data",
		Example: `  datastory summary who
  datastory summary who --country Japan --year 2010
  datastory summary who --indicator IDH -o wide`,
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{application.DataFolderArg: ""},
		RunE: func(cmd *cobra.Command, _ []string) error {
			q, err := filter.Life(flagValues(cmd, map[string]string{
				"indicator": "indicator",
				"country":   "country",
				"year":      "year",
			}))
			if err != nil {
				return err
			}
			snap, err := snapshot(cmd, app)
			if err != nil {
				return err
			}
			corrs, err := lifeexp.Correlations(snap.Life, q.Indicator)
			if err != nil {
				return err
			}
			s := &WHOSummary{
				Indicator:    q.Indicator,
				Fallback:     snap.Life.Fallback,
				Profile:      lifeexp.BuildProfile(snap.Life, q.Country, q.Year),
				Correlations: corrs,
				Overview:     lifeexp.Overview(snap.Life, q.Indicator, q.Year),
			}
			if s.Fallback {
				app.Logger().Warn().Msg("WHO file not found, showing sample data")
			}
			return render(cmd, app, s, func(wide bool) []table.Data {
				profile := table.Profile(s.Profile)
				if s.Profile.Message != "" {
					profile.Rows = append(profile.Rows, []string{"", s.Profile.Message})
				}
				out := []table.Data{profile, table.Correlations(s.Correlations)}
				if wide {
					out = append(out, table.Figure(s.Overview, true))
				}
				return out
			})
		},
	}
	cmd.Flags().String("indicator", datasets.ColumnLifeExpectancy, "Numeric column to map and correlate")
	cmd.Flags().String("country", lifeexp.World, "Country to profile")
	cmd.Flags().String("year", "", "Year (default: all years)")
	return cmd
}

func newFoodCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "food [DATA_FOLDER]",
		Aliases: []string{"fao"},
		Short:   "Summarize the FAO food balance data",
		Example: `  datastory summary food --element Food --top 5
  datastory summary food --item "Wheat and products" -o yaml`,
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{application.DataFolderArg: ""},
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := filter.Food(flagValues(cmd, map[string]string{
				"element": "element",
				"item":    "item",
				"top":     "top",
			}))
			if err != nil {
				return err
			}
			snap, err := snapshot(cmd, app)
			if err != nil {
				return err
			}
			s := food.Summarize(snap.Food, f)
			return render(cmd, app, s, func(wide bool) []table.Data {
				return []table.Data{table.FoodAreas(s), table.Figure(s.Trend, wide)}
			})
		},
	}
	cmd.Flags().String("element", "", "FAO element, e.g. Food or Feed")
	cmd.Flags().String("item", "", "FAO item")
	cmd.Flags().Int("top", food.DefaultTop, "Number of areas to list")
	return cmd
}

// flagValues maps changed or defaulted flags to the query keys the API
// parsers read.
func flagValues(cmd *cobra.Command, keys map[string]string) url.Values {
	q := url.Values{}
	for flag, key := range keys {
		if f := cmd.Flags().Lookup(flag); f != nil && f.Value.String() != "" {
			q.Set(key, f.Value.String())
		}
	}
	return q
}

func snapshot(cmd *cobra.Command, app application.Application) (*datasets.Snapshot, error) {
	client, err := app.Client(cmd.Context())
	if err != nil {
		return nil, err
	}
	return client.Snapshot()
}

func render(cmd *cobra.Command, app application.Application, value any, tables func(wide bool) []table.Data) error {
	return output.Render(cmd.OutOrStdout(), output.Format(app.OutputFormat()), value, tables)
}
