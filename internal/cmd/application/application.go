// Package application defines what commands and the server need from the
// running CLI application.
//
// Commands accept the Application interface rather than the concrete app
// type so they can be tested with Mock:
//
//	mock := &application.Mock{
//	    ClientFunc: func(ctx context.Context) (datastory.Client, error) {
//	        return datastory.New(ctx, datastory.WithFS(fs), datastory.WithDataDir("/data"))
//	    },
//	}
//	cmd := summary.NewCommand(mock)
package application

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agentstation/datastory"
	"github.com/agentstation/datastory/pkg/story"
)

// Application provides the dependencies commands need.
//
// All methods must be safe for concurrent use.
type Application interface {
	// Client returns the dataset client, loading the data folder on first
	// use. Later calls return the same client.
	Client(ctx context.Context) (datastory.Client, error)

	// Narrator returns the configured story narrator: Gemini when an API
	// key is configured, the template narrator otherwise.
	Narrator(ctx context.Context) (story.Narrator, error)

	// DataDir returns the resolved data folder.
	DataDir() string

	// Logger returns the configured logger.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (table, json,
	// yaml, wide).
	OutputFormat() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}

// DataFolderArg marks commands whose first positional argument is the
// data folder. Set it as a key in cobra.Command.Annotations.
const DataFolderArg = "datastory.data_folder_arg"
