package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/datastory"
	"github.com/agentstation/datastory/internal/cmd/application"
	"github.com/agentstation/datastory/internal/server/events"
	ws "github.com/agentstation/datastory/internal/server/websocket"
	"github.com/agentstation/datastory/pkg/datasets/datasetstest"
	"github.com/agentstation/datastory/pkg/errors"
)

func newMockApplication(t *testing.T) (*application.Mock, datastory.Client) {
	t.Helper()
	logger := zerolog.Nop()
	client, err := datastory.New(context.Background(),
		datastory.WithFS(datasetstest.NewFS(t, datasetstest.Default())),
		datastory.WithDataDir(datasetstest.Dir),
		datastory.WithLogger(&logger),
	)
	require.NoError(t, err)

	return &application.Mock{
		ClientFunc:  func(context.Context) (datastory.Client, error) { return client, nil },
		VersionFunc: func() string { return "1.2.3" },
	}, client
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.RateLimit = 0
	return cfg
}

func startServer(t *testing.T, cfg Config) (*Server, *httptest.Server, datastory.Client) {
	t.Helper()
	app, client := newMockApplication(t)
	srv, err := New(context.Background(), app, cfg)
	require.NoError(t, err)
	srv.Start()

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return srv, ts, client
}

func get(t *testing.T, url string, header http.Header) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	for k, v := range header {
		req.Header[k] = v
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

// New subscribes the transports to the broker before Run starts; it must
// not block.
func TestNewDoesNotBlock(t *testing.T) {
	app, _ := newMockApplication(t)

	done := make(chan struct{})
	var (
		srv    *Server
		newErr error
	)
	go func() {
		srv, newErr = New(context.Background(), app, testConfig())
		close(done)
	}()

	select {
	case <-done:
		require.NoError(t, newErr)
		require.NotNil(t, srv)
	case <-time.After(5 * time.Second):
		t.Fatal("server.New() deadlocked")
	}

	srv.Start()
	srv.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, srv.Shutdown(ctx))
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		valid  bool
	}{
		{"defaults", func(*Config) {}, true},
		{"port zero", func(c *Config) { c.Port = 0 }, false},
		{"port too large", func(c *Config) { c.Port = 70000 }, false},
		{"prefix without slash", func(c *Config) { c.PathPrefix = "api" }, false},
		{"empty host", func(c *Config) { c.Host = "" }, false},
		{"negative rate limit", func(c *Config) { c.RateLimit = -1 }, false},
		{"auth without key", func(c *Config) { c.AuthEnabled = true }, false},
		{"auth with key", func(c *Config) { c.AuthEnabled = true; c.APIKey = "secret" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsValidationError(err))
		})
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	app, _ := newMockApplication(t)
	cfg := testConfig()
	cfg.Port = -1
	_, err := New(context.Background(), app, cfg)
	assert.True(t, errors.IsValidationError(err))
}

func TestRoutes(t *testing.T) {
	_, ts, _ := startServer(t, testConfig())

	tests := []struct {
		name   string
		method string
		path   string
		code   int
	}{
		{"health", http.MethodGet, "/health", http.StatusOK},
		{"prefixed health", http.MethodGet, "/api/v1/health", http.StatusOK},
		{"ready", http.MethodGet, "/api/v1/ready", http.StatusOK},
		{"openapi json", http.MethodGet, "/api/v1/openapi.json", http.StatusOK},
		{"openapi yaml", http.MethodGet, "/api/v1/openapi.yaml", http.StatusOK},
		{"stats", http.MethodGet, "/api/v1/stats", http.StatusOK},
		{"reload", http.MethodPost, "/api/v1/reload", http.StatusOK},
		{"reload with GET", http.MethodGet, "/api/v1/reload", http.StatusMethodNotAllowed},
		{"flight options", http.MethodGet, "/api/v1/flights/options", http.StatusOK},
		{"flight dashboard", http.MethodGet, "/api/v1/flights/dashboard?granularity=M", http.StatusOK},
		{"bad filter", http.MethodGet, "/api/v1/flights/dashboard?granularity=Y", http.StatusBadRequest},
		{"who options", http.MethodGet, "/api/v1/who/options", http.StatusOK},
		{"who overview", http.MethodGet, "/api/v1/who/overview", http.StatusOK},
		{"who profile", http.MethodGet, "/api/v1/who/profile?country=France", http.StatusOK},
		{"who correlations", http.MethodGet, "/api/v1/who/correlations", http.StatusOK},
		{"who table", http.MethodGet, "/api/v1/who/table", http.StatusOK},
		{"who analytics", http.MethodGet, "/api/v1/who/analytics", http.StatusOK},
		{"food options", http.MethodGet, "/api/v1/food/options", http.StatusOK},
		{"food summary", http.MethodGet, "/api/v1/food/summary", http.StatusOK},
		{"story", http.MethodGet, "/api/v1/story", http.StatusOK},
		{"metrics", http.MethodGet, "/metrics", http.StatusOK},
		{"ui", http.MethodGet, "/", http.StatusOK},
		{"favicon", http.MethodGet, "/favicon.ico", http.StatusNoContent},
		{"unknown", http.MethodGet, "/api/v1/nothing", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, ts.URL+tt.path, nil)
			require.NoError(t, err)
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			_ = resp.Body.Close()
			assert.Equal(t, tt.code, resp.StatusCode)
		})
	}
}

func TestResponseEnvelope(t *testing.T) {
	_, ts, _ := startServer(t, testConfig())

	resp, body := get(t, ts.URL+"/api/v1/health", nil)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	var env struct {
		Data  map[string]any `json:"data"`
		Error any            `json:"error"`
	}
	require.NoError(t, json.Unmarshal(body, &env))
	assert.Equal(t, "1.2.3", env.Data["version"])
	assert.Nil(t, env.Error)
}

func TestMetricsEndpoint(t *testing.T) {
	_, ts, _ := startServer(t, testConfig())

	get(t, ts.URL+"/api/v1/flights/options", nil)
	_, body := get(t, ts.URL+"/metrics", nil)

	text := string(body)
	assert.Contains(t, text, `datastory_http_requests_total{code="200",method="GET",route="GET /api/v1/flights/options"} 1`)
	assert.Contains(t, text, "datastory_websocket_clients 0")
	assert.Contains(t, text, "go_goroutines")
}

func TestMetricsDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.MetricsEnabled = false
	cfg.UIEnabled = false
	_, ts, _ := startServer(t, cfg)

	resp, _ := get(t, ts.URL+"/metrics", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAuth(t *testing.T) {
	cfg := testConfig()
	cfg.AuthEnabled = true
	cfg.APIKey = "secret"
	_, ts, _ := startServer(t, cfg)

	resp, _ := get(t, ts.URL+"/api/v1/stats", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = get(t, ts.URL+"/api/v1/stats", http.Header{"X-Api-Key": {"secret"}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = get(t, ts.URL+"/api/v1/stats?api_key=secret", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	for _, path := range []string{"/health", "/api/v1/health", "/api/v1/ready", "/api/v1/openapi.json", "/"} {
		resp, _ = get(t, ts.URL+path, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = 2
	_, ts, _ := startServer(t, cfg)

	for range 2 {
		resp, _ := get(t, ts.URL+"/health", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	resp, _ := get(t, ts.URL+"/health", nil)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "60", resp.Header.Get("Retry-After"))
}

func TestReloadClearsCacheAndNotifies(t *testing.T) {
	srv, ts, client := startServer(t, testConfig())

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/api/v1/updates/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	get(t, ts.URL+"/api/v1/food/summary", nil)
	require.Equal(t, 1, srv.Cache().ItemCount())

	// Wait for the connection event so the client is registered
	waitFor(t, conn, string(events.ClientConnected))

	_, err = client.Reload(context.Background())
	require.NoError(t, err)
	assert.Zero(t, srv.Cache().ItemCount())

	msg := waitFor(t, conn, string(events.DatasetReloaded))
	data, ok := msg.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, datasetstest.Dir, data["dir"])
}

func waitFor(t *testing.T, conn *websocket.Conn, eventType string) ws.Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var msg ws.Message
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type == eventType {
			return msg
		}
	}
}
