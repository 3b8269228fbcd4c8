// Package report provides the report command, which writes a markdown data
// story over the current datasets.
package report

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"

	"github.com/agentstation/utc"
	"github.com/spf13/cobra"

	"github.com/agentstation/datastory/internal/cmd/application"
	"github.com/agentstation/datastory/internal/cmd/emoji"
	"github.com/agentstation/datastory/internal/server/filter"
	"github.com/agentstation/datastory/pkg/constants"
	"github.com/agentstation/datastory/pkg/errors"
	"github.com/agentstation/datastory/pkg/story"
)

// NewCommand creates the report command.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "report [DATA_FOLDER]",
		GroupID: "data",
		Short:   "Write a markdown data story",
		Long: `Write a markdown report with the narrative, the headline numbers of each
dashboard and the files the numbers came from.

The narrative is generated by Gemini when GEMINI_API_KEY or GOOGLE_API_KEY
is set and by a built-in template otherwise.`,
		Example: `  datastory report > story.md
  datastory report ~/datasets --out story.md --airline "American Airlines Inc."`,
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{application.DataFolderArg: ""},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, app)
		},
	}
	cmd.Flags().String("out", "", "Write the report to a file instead of stdout")
	cmd.Flags().String("airline", "", "Limit the flight numbers to one airline")
	cmd.Flags().String("start", "", "First flight day, ISO 8601")
	cmd.Flags().String("end", "", "Last flight day, ISO 8601")
	cmd.Flags().String("indicator", "", "WHO indicator to describe")
	cmd.Flags().String("year", "", "WHO year (default: latest)")
	cmd.Flags().String("element", "", "FAO element to describe")
	return cmd
}

func run(cmd *cobra.Command, app application.Application) error {
	q := url.Values{}
	for flag, key := range map[string]string{
		"airline":   "airline",
		"start":     "start_date",
		"end":       "end_date",
		"indicator": "indicator",
		"year":      "year",
		"element":   "element",
	} {
		if v, _ := cmd.Flags().GetString(flag); v != "" {
			q.Set(key, v)
		}
	}
	req, err := filter.Story(q)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	client, err := app.Client(ctx)
	if err != nil {
		return err
	}
	snap, err := client.Snapshot()
	if err != nil {
		return err
	}
	narrator, err := app.Narrator(ctx)
	if err != nil {
		return err
	}

	storyCtx, cancel := context.WithTimeout(ctx, constants.NarrativeTimeout)
	defer cancel()
	st, err := story.Tell(storyCtx, narrator, story.Collect(snap, req))
	if err != nil {
		return err
	}

	out, _ := cmd.Flags().GetString("out")
	var w io.Writer = cmd.OutOrStdout()
	if out != "" {
		f, err := os.OpenFile(out, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, constants.FilePermissions)
		if err != nil {
			return errors.WrapIO("create", out, err)
		}
		defer func() { _ = f.Close() }()
		w = f
	}

	r := &Report{
		Snapshot:    snap,
		Story:       st,
		Request:     req,
		GeneratedAt: utc.Now(),
		Version:     app.Version(),
	}
	if err := r.Write(w); err != nil {
		return errors.WrapIO("write", out, err)
	}
	if out != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s Report written to %s\n", emoji.Success, out)
	}
	return nil
}
