package health_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/robalyx/igsheet/internal/health"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	startTime = time.Date(2026, 10, 13, 7, 2, 3, 0, time.UTC)
	fixedNow  = time.Date(2026, 10, 14, 9, 5, 7, 0, time.UTC)
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	h := health.NewHandler(startTime, 6, func() time.Time { return fixedNow }, zap.NewNop())
	server := httptest.NewServer(health.Routes(h))
	t.Cleanup(server.Close)

	return server
}

func TestFormatUptime(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   time.Duration
		want string
	}{
		{name: "zero", in: 0, want: "0d 0h 0m 0s"},
		{name: "seconds only", in: 59 * time.Second, want: "0d 0h 0m 59s"},
		{name: "sub-second truncated", in: 1500 * time.Millisecond, want: "0d 0h 0m 1s"},
		{name: "all units", in: 26*time.Hour + 3*time.Minute + 4*time.Second, want: "1d 2h 3m 4s"},
		{name: "negative", in: -time.Minute, want: "0d 0h 0m 0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, health.FormatUptime(tt.in))
		})
	}
}

func TestServe_StatusPage(t *testing.T) {
	t.Parallel()
	server := newServer(t)

	resp, err := server.Client().Get(server.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html"))

	var body bytes.Buffer
	_, err = body.ReadFrom(resp.Body)
	require.NoError(t, err)

	page := body.String()
	assert.Contains(t, page, "ONLINE")
	assert.Contains(t, page, "1d 2h 3m 4s")
	assert.Contains(t, page, "2026-10-14 15:05:07")
	assert.Contains(t, page, health.Version)
	assert.NotContains(t, page, "\n    ")
}

func TestServeJSON(t *testing.T) {
	t.Parallel()
	server := newServer(t)

	resp, err := server.Client().Get(server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, health.ApplicationJSON, resp.Header.Get("Content-Type"))

	var got struct {
		Status        string `json:"status"`
		UptimeSeconds int64  `json:"uptime_seconds"`
		Version       string `json:"version"`
	}
	require.NoError(t, sonic.ConfigDefault.NewDecoder(resp.Body).Decode(&got))

	assert.Equal(t, "ok", got.Status)
	assert.Equal(t, int64(93784), got.UptimeSeconds)
	assert.Equal(t, health.Version, got.Version)
}

func TestRoutes_NotFound(t *testing.T) {
	t.Parallel()
	server := newServer(t)

	resp, err := server.Client().Get(server.URL + "/missing")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
