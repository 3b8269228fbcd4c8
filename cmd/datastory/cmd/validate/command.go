// Package validate provides the validate command, which loads every dataset
// and reports what was read.
package validate

import (
	"fmt"

	"github.com/agentstation/utc"
	"github.com/spf13/cobra"

	"github.com/agentstation/datastory/internal/cmd/alerts"
	"github.com/agentstation/datastory/internal/cmd/application"
	"github.com/agentstation/datastory/internal/cmd/output"
	"github.com/agentstation/datastory/internal/cmd/table"
	"github.com/agentstation/datastory/pkg/datasets"
)

// Result is the machine-readable outcome of a validation.
type Result struct {
	OK       bool                  `json:"ok" yaml:"ok"`
	Dir      string                `json:"dir" yaml:"dir"`
	LoadedAt utc.Time              `json:"loaded_at,omitzero" yaml:"loaded_at,omitempty"`
	Sources  []datasets.SourceInfo `json:"sources" yaml:"sources"`
	Warnings []string              `json:"warnings" yaml:"warnings"`
	Error    string                `json:"error,omitempty" yaml:"error,omitempty"`
}

// NewCommand creates the validate command.
func NewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "validate [DATA_FOLDER]",
		GroupID: "data",
		Short:   "Load every dataset and report row counts and warnings",
		Long: `Load every dataset of the data folder and report the rows read, the rows
skipped and any warnings.

The command fails when the flights file cannot be loaded. Missing WHO and
FAO files are reported as warnings.`,
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{application.DataFolderArg: ""},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, app)
		},
	}
}

func run(cmd *cobra.Command, app application.Application) error {
	format := output.Format(app.OutputFormat())
	w := cmd.OutOrStdout()
	res := &Result{Dir: app.DataDir(), Sources: []datasets.SourceInfo{}, Warnings: []string{}}

	client, err := app.Client(cmd.Context())
	if err == nil {
		var snap *datasets.Snapshot
		if snap, err = client.Snapshot(); err == nil {
			res.OK = true
			res.Dir = snap.Dir
			res.LoadedAt = utc.New(snap.LoadedAt)
			res.Sources = snap.Sources
			res.Warnings = append(res.Warnings, snap.Warnings...)
		}
	}
	if err != nil {
		res.Error = err.Error()
	}

	if !format.IsTable() {
		if ferr := output.NewFormatter(format).Format(w, res); ferr != nil {
			return ferr
		}
		return err
	}

	aw := alerts.NewFormatWriter(w, format)
	if err != nil {
		_ = aw.WriteAlert(alerts.NewError("Datasets could not be loaded").
			WithDetails("folder: " + res.Dir).
			WithError(err))
		return err
	}

	if ferr := output.NewFormatter(format).Format(w, table.Sources(res.Sources, format == output.FormatWide)); ferr != nil {
		return ferr
	}
	for _, warning := range res.Warnings {
		if werr := aw.WriteAlert(alerts.NewWarning(warning)); werr != nil {
			return werr
		}
	}
	return aw.WriteAlert(alerts.NewSuccess(fmt.Sprintf("%s is valid", res.Dir)).
		WithDetails(summary(res.Sources)...))
}

func summary(sources []datasets.SourceInfo) []string {
	out := make([]string, 0, len(sources))
	for _, s := range sources {
		if s.Missing {
			out = append(out, fmt.Sprintf("%s: missing", s.Dataset))
			continue
		}
		if s.Error != "" {
			out = append(out, fmt.Sprintf("%s: unreadable, %d rows", s.Dataset, s.Rows))
			continue
		}
		out = append(out, fmt.Sprintf("%s: %d rows", s.Dataset, s.Rows))
	}
	return out
}
