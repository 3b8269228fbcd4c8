package app

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/datastory/pkg/logging"
)

func TestDataDirResolver(t *testing.T) {
	fallback, err := filepath.Abs("data")
	require.NoError(t, err)

	tests := []struct {
		name        string
		arg, env    string
		interactive bool
		input       string
		want        string
		warnings    int
	}{
		{name: "argument", arg: "/arg", env: "/env", want: "/arg"},
		{name: "missing argument falls back to env", arg: "/nope", env: "/env", want: "/env", warnings: 1},
		{name: "env", env: "/env", want: "/env"},
		{name: "prompt", interactive: true, input: "/typed\n", want: "/typed"},
		{name: "prompt without newline", interactive: true, input: "/typed", want: "/typed"},
		{name: "empty prompt uses default", interactive: true, input: "\n", want: fallback},
		{name: "invalid prompt uses default", interactive: true, input: "/nope\n", want: fallback, warnings: 1},
		{name: "no prompt when not interactive", input: "/typed\n", want: fallback},
		{name: "everything invalid", arg: "/a", env: "/b", want: fallback, warnings: 2},
		{name: "file is not a folder", arg: "/file.csv", want: fallback, warnings: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			for _, dir := range []string{"/arg", "/env", "/typed"} {
				require.NoError(t, fs.MkdirAll(dir, 0o755))
			}
			require.NoError(t, afero.WriteFile(fs, "/file.csv", []byte("x"), 0o644))

			logger := logging.NewTestLogger(t)
			var prompt bytes.Buffer
			r := &DataDirResolver{
				FS:          fs,
				In:          strings.NewReader(tt.input),
				Out:         &prompt,
				Logger:      logger.Logger,
				Interactive: tt.interactive,
				Default:     "data",
			}

			assert.Equal(t, tt.want, r.Resolve(tt.arg, tt.env))
			assert.Equal(t, tt.warnings, strings.Count(logger.Output(), "Data folder not found"))
			if tt.interactive {
				assert.Contains(t, prompt.String(), "Path to the data folder")
			} else {
				assert.Empty(t, prompt.String())
			}
		})
	}
}
