package application

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agentstation/datastory"
	"github.com/agentstation/datastory/pkg/story"
)

// Mock implements Application with overridable functions. Unset functions
// return zero values or sensible test defaults.
type Mock struct {
	ClientFunc       func(ctx context.Context) (datastory.Client, error)
	NarratorFunc     func(ctx context.Context) (story.Narrator, error)
	DataDirFunc      func() string
	LoggerFunc       func() *zerolog.Logger
	OutputFormatFunc func() string
	VersionFunc      func() string
	CommitFunc       func() string
	DateFunc         func() string
	BuiltByFunc      func() string
}

// Client implements Application.
func (m *Mock) Client(ctx context.Context) (datastory.Client, error) {
	if m.ClientFunc != nil {
		return m.ClientFunc(ctx)
	}
	return nil, nil
}

// Narrator implements Application. It defaults to the template narrator.
func (m *Mock) Narrator(ctx context.Context) (story.Narrator, error) {
	if m.NarratorFunc != nil {
		return m.NarratorFunc(ctx)
	}
	return story.TemplateNarrator{}, nil
}

// DataDir implements Application.
func (m *Mock) DataDir() string {
	if m.DataDirFunc != nil {
		return m.DataDirFunc()
	}
	return "data"
}

// Logger implements Application.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat implements Application.
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return "table"
}

// Version implements Application.
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "dev"
}

// Commit implements Application.
func (m *Mock) Commit() string {
	if m.CommitFunc != nil {
		return m.CommitFunc()
	}
	return "unknown"
}

// Date implements Application.
func (m *Mock) Date() string {
	if m.DateFunc != nil {
		return m.DateFunc()
	}
	return "unknown"
}

// BuiltBy implements Application.
func (m *Mock) BuiltBy() string {
	if m.BuiltByFunc != nil {
		return m.BuiltByFunc()
	}
	return "test"
}

var _ Application = (*Mock)(nil)
