package ui

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"r0fit/domain/core"
	"r0fit/domain/epi"
	"r0fit/domain/posterior"
	"r0fit/domain/run"
	"r0fit/internal/testkit"
)

func storedResult() *run.Result {
	return &run.Result{
		ID:        core.RunID("0193e0a2-1111-7000-8000-000000000001"),
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Model:     "hierarchical-r0",
		Config:    run.DefaultSamplerConfig(),
		Summaries: []posterior.Summary{
			{Name: "beta_mu", Mean: 0.301, SD: 0.02, Lower: 0.26, Median: 0.30, Upper: 0.34, Rhat: 1.01, ESS: 1900},
		},
		PValue:      0.49,
		Converged:   true,
		R0:          []epi.Estimate{{Department: 1, Point: 1.71, Lower: 1.52, Upper: 1.93}},
		R0Aggregate: &epi.Estimate{Department: 0, Point: 1.70, Lower: 1.50, Upper: 1.92},
	}
}

func newTestServer(t *testing.T) (*httptest.Server, *run.Result) {
	t.Helper()
	repo := testkit.NewInMemoryRunRepository()
	result := storedResult()
	require.NoError(t, repo.Save(context.Background(), result))

	ts := httptest.NewServer(NewServer(repo, nil).Router())
	t.Cleanup(ts.Close)
	return ts, result
}

func TestServer_Health(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestServer_ListRuns(t *testing.T) {
	ts, stored := newTestServer(t)

	resp, err := http.Get(ts.URL + "/runs")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var listings []run.Listing
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listings))
	require.Len(t, listings, 1)
	assert.Equal(t, stored.ID, listings[0].ID)
	assert.Equal(t, "hierarchical-r0", listings[0].Model)
	assert.True(t, listings[0].Converged)
}

func TestServer_GetRun(t *testing.T) {
	ts, stored := newTestServer(t)

	resp, err := http.Get(ts.URL + "/runs/" + stored.ID.String())
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var got run.Result
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, stored.ID, got.ID)
	assert.InDelta(t, 0.49, got.PValue, 1e-9)
	require.NotNil(t, got.R0Aggregate)
	assert.InDelta(t, 1.70, got.R0Aggregate.Point, 1e-9)
}

func TestServer_GetRunNotFound(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/runs/0193e0a2-2222-7000-8000-00000000dead")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotEmpty(t, body["error"])
}

func TestServer_Report(t *testing.T) {
	ts, stored := newTestServer(t)

	resp, err := http.Get(ts.URL + "/runs/" + stored.ID.String() + "/report")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	html := string(body)
	assert.Contains(t, html, "<html")
	assert.Contains(t, html, stored.ID.String())
	assert.Contains(t, html, "<table>")
}
