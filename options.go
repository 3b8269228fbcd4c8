package datastory

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/agentstation/datastory/pkg/constants"
	"github.com/agentstation/datastory/pkg/datasets"
	"github.com/agentstation/datastory/pkg/errors"
	"github.com/agentstation/datastory/pkg/logging"
)

// Option configures a Client.
type Option func(*options)

type options struct {
	fs       afero.Fs
	dir      string
	files    datasets.Files
	logger   *zerolog.Logger
	watch    bool
	debounce time.Duration
	snapshot *datasets.Snapshot
}

func defaults() *options {
	return &options{
		dir:      constants.DefaultDataFolder,
		files:    datasets.DefaultFiles(),
		logger:   logging.Default(),
		debounce: constants.WatchDebounce,
	}
}

func (o *options) apply(opts ...Option) *options {
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *options) validate() error {
	if o.dir == "" {
		return &errors.ValidationError{Field: "dir", Message: "data folder is required"}
	}
	if o.debounce < 0 {
		return &errors.ValidationError{
			Field:   "debounce",
			Value:   o.debounce,
			Message: "debounce must not be negative",
		}
	}
	return nil
}

// WithDataDir sets the data folder.
func WithDataDir(dir string) Option {
	return func(o *options) {
		o.dir = dir
	}
}

// WithFS sets the filesystem the data folder is read from.
func WithFS(fs afero.Fs) Option {
	return func(o *options) {
		o.fs = fs
	}
}

// WithFiles overrides the dataset file names. Empty names keep their
// defaults.
func WithFiles(files datasets.Files) Option {
	return func(o *options) {
		o.files = files.WithDefaults()
	}
}

// WithLogger sets the logger used by the client and its loader.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithWatch enables reloading when a dataset file changes. Bursts of file
// events closer together than debounce trigger a single reload; zero keeps
// the default.
func WithWatch(debounce time.Duration) Option {
	return func(o *options) {
		o.watch = true
		if debounce != 0 {
			o.debounce = debounce
		}
	}
}

// WithSnapshot starts the client from snap instead of loading the folder.
func WithSnapshot(snap *datasets.Snapshot) Option {
	return func(o *options) {
		o.snapshot = snap
	}
}
