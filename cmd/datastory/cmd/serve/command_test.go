package serve

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/datastory"
	"github.com/agentstation/datastory/internal/cmd/application"
	"github.com/agentstation/datastory/pkg/datasets/datasetstest"
	"github.com/agentstation/datastory/pkg/errors"
	"github.com/agentstation/datastory/pkg/logging"
)

func newMock(t *testing.T) *application.Mock {
	t.Helper()
	fs := datasetstest.NewFS(t, datasetstest.Default())
	return &application.Mock{
		ClientFunc: func(ctx context.Context) (datastory.Client, error) {
			return datastory.New(ctx,
				datastory.WithFS(fs),
				datastory.WithDataDir(datasetstest.Dir),
				datastory.WithLogger(logging.NewNopLogger()))
		},
	}
}

func TestParseConfig(t *testing.T) {
	t.Setenv("HTTP_PORT", "")
	t.Setenv("HTTP_HOST", "")
	t.Setenv("DATASTORY_API_KEY", "")

	cmd := NewCommand(&application.Mock{})
	require.NoError(t, cmd.ParseFlags([]string{
		"--port", "9000",
		"--cors-origins", "https://a.example,https://b.example",
		"--rate-limit", "0",
		"--cache-ttl", "30s",
		"--ui=false",
	}))

	cfg := parseConfig(cmd)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, "/api/v1", cfg.PathPrefix)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, 0, cfg.RateLimit)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.False(t, cfg.UIEnabled)
	assert.True(t, cfg.MetricsEnabled)
	assert.NoError(t, cfg.Validate())
}

func TestParseConfigEnvironment(t *testing.T) {
	t.Setenv("HTTP_PORT", "7000")
	t.Setenv("HTTP_HOST", "0.0.0.0")
	t.Setenv("DATASTORY_API_KEY", "secret")

	cmd := NewCommand(&application.Mock{})
	require.NoError(t, cmd.ParseFlags([]string{"--port", "9000", "--auth"}))

	cfg := parseConfig(cmd)
	assert.Equal(t, 7000, cfg.Port)
	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, "secret", cfg.APIKey)
	assert.True(t, cfg.AuthEnabled)
}

func TestParsePort(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"8050", 8050, false},
		{"1", 1, false},
		{"65535", 65535, false},
		{"0", 0, true},
		{"65536", 0, true},
		{"http", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parsePort(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestServeRejectsInvalidConfig(t *testing.T) {
	t.Setenv("DATASTORY_API_KEY", "")
	t.Setenv("HTTP_PORT", "")

	cmd := NewCommand(newMock(t))
	cmd.SetArgs([]string{"--auth"})
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(io.Discard)
	err := cmd.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}

func TestServeRunsUntilCancelled(t *testing.T) {
	t.Setenv("HTTP_PORT", "")
	t.Setenv("HTTP_HOST", "")

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())

	cmd := NewCommand(newMock(t))
	cmd.SetArgs([]string{"--host", "127.0.0.1", "--port", strconv.Itoa(port)})
	cmd.SetOut(io.Discard)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	url := "http://127.0.0.1:" + strconv.Itoa(port) + "/health"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not stop")
	}
}
