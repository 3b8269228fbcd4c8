// Package app wires configuration, logging, the dataset client and the
// story narrator for the datastory CLI.
package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/datastory"
	"github.com/agentstation/datastory/internal/cmd/application"
	"github.com/agentstation/datastory/internal/cmd/output"
	"github.com/agentstation/datastory/pkg/errors"
	"github.com/agentstation/datastory/pkg/story"
)

// App holds the dependencies shared by all commands.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger

	// resolver picks the data folder on first use
	resolver *DataDirResolver

	// Lazily created, guarded by mu
	mu       sync.RWMutex
	dataDir  string
	client   datastory.Client
	narrator story.Narrator

	// clientOpts are appended to the options built from config
	clientOpts []datastory.Option
}

var _ application.Application = (*App)(nil)

// New creates an App with configuration loaded from the environment.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	a := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig()
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	a.config = config

	logger := NewLogger(config)
	a.logger = &logger

	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the configured output format, detecting one from
// stdout when none is set.
func (a *App) OutputFormat() string {
	return string(output.DetectFormat(a.config.Format))
}

// DataDir returns the data folder, resolving it on first use.
func (a *App) DataDir() string {
	a.mu.RLock()
	dir := a.dataDir
	a.mu.RUnlock()
	if dir != "" {
		return dir
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.dataDir == "" {
		if a.resolver == nil {
			a.resolver = NewDataDirResolver(a.logger)
		}
		a.dataDir = a.resolver.Resolve(a.config.DataArg, a.config.DataFolder)
	}
	return a.dataDir
}

// Client returns the dataset client, loading the data folder on first use.
func (a *App) Client(ctx context.Context) (datastory.Client, error) {
	a.mu.RLock()
	if a.client != nil {
		c := a.client
		a.mu.RUnlock()
		return c, nil
	}
	a.mu.RUnlock()

	dir := a.DataDir()

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.client != nil {
		return a.client, nil
	}

	opts := []datastory.Option{
		datastory.WithDataDir(dir),
		datastory.WithFiles(a.config.Files()),
		datastory.WithLogger(a.logger),
	}
	if a.config.Watch {
		opts = append(opts, datastory.WithWatch(a.config.WatchDebounce))
	}
	opts = append(opts, a.clientOpts...)

	c, err := datastory.New(ctx, opts...)
	if err != nil {
		return nil, err
	}
	a.client = c
	return c, nil
}

// Narrator returns Gemini when an API key is configured, falling back to
// the template narrator on upstream failures, and the template narrator
// otherwise.
func (a *App) Narrator(ctx context.Context) (story.Narrator, error) {
	a.mu.RLock()
	if a.narrator != nil {
		n := a.narrator
		a.mu.RUnlock()
		return n, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.narrator != nil {
		return a.narrator, nil
	}

	if a.config.GeminiAPIKey == "" {
		a.logger.Debug().Msg("No Gemini API key configured, using template narrator")
		a.narrator = story.TemplateNarrator{}
		return a.narrator, nil
	}

	n, err := story.NewGeminiNarrator(ctx, a.config.GeminiAPIKey,
		story.WithModel(a.config.StoryModel),
		story.WithFallback(story.TemplateNarrator{}),
		story.WithNarratorLogger(a.logger),
	)
	if err != nil {
		return nil, err
	}
	a.logger.Debug().Str("narrator", n.Name()).Msg("Using Gemini narrator")
	a.narrator = n
	return n, nil
}

// Shutdown stops background work started by the app.
func (a *App) Shutdown(_ context.Context) error {
	a.mu.RLock()
	c := a.client
	a.mu.RUnlock()

	if c != nil {
		if err := c.WatchOff(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to stop watching during shutdown")
			return err
		}
	}
	return nil
}

// Option configures an App.
type Option func(*App) error

// WithConfig replaces the loaded configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithDataDirResolver sets how the data folder is picked.
func WithDataDirResolver(r *DataDirResolver) Option {
	return func(a *App) error {
		a.resolver = r
		return nil
	}
}

// WithClientOptions appends options used when the dataset client is
// created.
func WithClientOptions(opts ...datastory.Option) Option {
	return func(a *App) error {
		a.clientOpts = append(a.clientOpts, opts...)
		return nil
	}
}
