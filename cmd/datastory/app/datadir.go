package app

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/agentstation/datastory/pkg/constants"
)

// DataDirResolver picks the data folder. Candidates are tried in order: the
// command argument, DATA_FOLDER, an interactive prompt when stdin is a
// terminal, then the default folder. Candidates that are not existing
// directories are logged and skipped.
type DataDirResolver struct {
	FS     afero.Fs
	In     io.Reader
	Out    io.Writer
	Logger *zerolog.Logger

	// Interactive enables the prompt.
	Interactive bool

	// Default is used when no candidate is valid.
	Default string
}

// NewDataDirResolver returns a resolver over the OS filesystem that
// prompts on stdin when it is a terminal.
func NewDataDirResolver(logger *zerolog.Logger) *DataDirResolver {
	return &DataDirResolver{
		FS:          afero.NewOsFs(),
		In:          os.Stdin,
		Out:         os.Stderr,
		Logger:      logger,
		Interactive: isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()),
		Default:     constants.DefaultDataFolder,
	}
}

// Resolve returns the data folder as an absolute path when it can be made
// absolute.
func (r *DataDirResolver) Resolve(arg, env string) string {
	if dir, ok := r.candidate("argument", arg); ok {
		return dir
	}
	if dir, ok := r.candidate("DATA_FOLDER", env); ok {
		return dir
	}
	if r.Interactive && r.In != nil {
		if dir, ok := r.candidate("prompt", r.prompt()); ok {
			return dir
		}
	}

	dir := abs(r.Default)
	r.Logger.Info().Str("dir", dir).Msg("Using default data folder")
	return dir
}

func (r *DataDirResolver) candidate(source, dir string) (string, bool) {
	if dir == "" {
		return "", false
	}
	if ok, err := afero.DirExists(r.FS, dir); err != nil || !ok {
		r.Logger.Warn().Str("source", source).Str("dir", dir).Msg("Data folder not found")
		return "", false
	}
	return abs(dir), true
}

func (r *DataDirResolver) prompt() string {
	if r.Out != nil {
		fmt.Fprintf(r.Out, "Path to the data folder (enter to use %q): ", r.Default)
	}
	line, err := bufio.NewReader(r.In).ReadString('\n')
	if err != nil && line == "" {
		return ""
	}
	return strings.TrimSpace(line)
}

func abs(dir string) string {
	if a, err := filepath.Abs(dir); err == nil {
		return a
	}
	return dir
}
