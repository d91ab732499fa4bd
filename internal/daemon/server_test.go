package daemon

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docgen/internal/metrics"
)

func doRequest(t *testing.T, srv *httptest.Server, method, path string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequestWithContext(t.Context(), method, srv.URL+path, http.NoBody)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestServerHealth(t *testing.T) {
	srv := httptest.NewServer(NewServer(t.Context(), NewRunner(okRun(nil)), nil, nil))
	defer srv.Close()

	resp, body := doRequest(t, srv, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var health healthResponse
	require.NoError(t, json.Unmarshal([]byte(body), &health))
	assert.Equal(t, "ok", health.Status)

	resp, _ = doRequest(t, srv, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServerRunAndStatus(t *testing.T) {
	runner := NewRunner(okRun(nil))
	srv := httptest.NewServer(NewServer(context.Background(), runner, nil, nil))
	defer srv.Close()

	resp, _ := doRequest(t, srv, http.MethodPost, "/run")
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	require.Eventually(t, func() bool { return runner.Status().Runs == 1 }, 5*time.Second, 10*time.Millisecond)

	resp, body := doRequest(t, srv, http.MethodGet, "/status")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var st Status
	require.NoError(t, json.Unmarshal([]byte(body), &st))
	assert.Equal(t, 1, st.Runs)
	assert.Equal(t, "http", st.LastTrigger)
	require.NotNil(t, st.LastRun)
	assert.Equal(t, "1.0.0", st.LastRun.Version)
}

func TestServerRunConflict(t *testing.T) {
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	var count atomic.Int32
	runner := NewRunner(blockingRun(started, release, &count))
	srv := httptest.NewServer(NewServer(context.Background(), runner, nil, nil))
	defer srv.Close()

	go func() { _, _ = runner.Run(context.Background(), "first") }()
	<-started

	resp, body := doRequest(t, srv, http.MethodPost, "/run")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, body, ErrRunInProgress.Error())

	close(release)
	require.NoError(t, runner.Wait(t.Context()))
}

func TestServerMetrics(t *testing.T) {
	reg := prom.NewRegistry()
	metrics.NewPrometheusRecorder(reg).IncRunOutcome(metrics.OutcomeSuccess)
	srv := httptest.NewServer(NewServer(t.Context(), NewRunner(okRun(nil)), reg, nil))
	defer srv.Close()

	resp, body := doRequest(t, srv, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(body, "docgen_run_outcomes_total"))
}
