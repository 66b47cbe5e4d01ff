package webapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mjimenezh/gaiabench/internal/models"
)

func newTestMux(store *RunStore, run RunFunc) *http.ServeMux {
	mux := http.NewServeMux()
	RegisterRoutes(mux, store, run)
	return mux
}

func doRequest(t *testing.T, mux *http.ServeMux, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	mux := newTestMux(NewRunStore(), nil)

	rec := doRequest(t, mux, http.MethodGet, "/api/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var health HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	require.Equal(t, "ok", health.Status)
}

func TestHandleTriggerRun(t *testing.T) {
	store := NewRunStore()

	var wg sync.WaitGroup
	wg.Add(1)
	run := func(_ context.Context, runID string) {
		defer wg.Done()
		err := store.Finish(runID, models.RunStateCompleted, "done",
			[]models.ResultLogEntry{{TaskID: "t1", Question: "How many?", SubmittedAnswer: "42"}}, nil)
		require.NoError(t, err)
	}
	mux := newTestMux(store, run)

	rec := doRequest(t, mux, http.MethodPost, "/api/runs")
	require.Equal(t, http.StatusAccepted, rec.Code)

	var report models.RunReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	require.NotEmpty(t, report.RunID)
	require.Equal(t, models.RunStateRunning, report.State)

	wg.Wait()

	rec = doRequest(t, mux, http.MethodGet, "/api/runs/latest")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	require.Equal(t, models.RunStateCompleted, report.State)
	require.Len(t, report.Entries, 1)
}

func TestHandleTriggerRun_ConflictWhileRunning(t *testing.T) {
	store := NewRunStore()

	release := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	run := func(_ context.Context, runID string) {
		defer wg.Done()
		<-release
		_ = store.Finish(runID, models.RunStateCompleted, "done", nil, nil)
	}
	mux := newTestMux(store, run)

	rec := doRequest(t, mux, http.MethodPost, "/api/runs")
	require.Equal(t, http.StatusAccepted, rec.Code)

	rec = doRequest(t, mux, http.MethodPost, "/api/runs")
	require.Equal(t, http.StatusConflict, rec.Code)

	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	require.Contains(t, errResp.Error, "already in progress")

	close(release)
	wg.Wait()

	// A new run is allowed once the previous one finished. The release
	// channel is already closed, so this run completes immediately.
	wg.Add(1)
	rec = doRequest(t, mux, http.MethodPost, "/api/runs")
	require.Equal(t, http.StatusAccepted, rec.Code)
	wg.Wait()
}

func TestHandleTriggerRun_NotConfigured(t *testing.T) {
	mux := newTestMux(NewRunStore(), nil)

	rec := doRequest(t, mux, http.MethodPost, "/api/runs")
	require.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestHandleLatestRun_Empty(t *testing.T) {
	mux := newTestMux(NewRunStore(), nil)

	rec := doRequest(t, mux, http.MethodGet, "/api/runs/latest")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleRunDetail(t *testing.T) {
	store := NewRunStore()
	report, err := store.Begin()
	require.NoError(t, err)
	require.NoError(t, store.Finish(report.RunID, models.RunStateFailed, "Submission Failed", nil, nil))

	mux := newTestMux(store, nil)

	rec := doRequest(t, mux, http.MethodGet, "/api/runs/"+report.RunID)
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.RunReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, report.RunID, got.RunID)
	require.Equal(t, models.RunStateFailed, got.State)

	rec = doRequest(t, mux, http.MethodGet, "/api/runs/does-not-exist")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleRuns_List(t *testing.T) {
	store := NewRunStore()

	first, err := store.Begin()
	require.NoError(t, err)
	require.NoError(t, store.Finish(first.RunID, models.RunStateCompleted, "done",
		[]models.ResultLogEntry{
			{TaskID: "t1", SubmittedAnswer: "42"},
			{TaskID: "t2", SubmittedAnswer: models.AgentErrorPrefix + "boom"},
		}, nil))

	second, err := store.Begin()
	require.NoError(t, err)
	require.NoError(t, store.Finish(second.RunID, models.RunStateCompleted, "done", nil, nil))

	mux := newTestMux(store, nil)
	rec := doRequest(t, mux, http.MethodGet, "/api/runs")
	require.Equal(t, http.StatusOK, rec.Code)

	var summaries []RunSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summaries))
	require.Len(t, summaries, 2)
	require.Equal(t, first.RunID, summaries[0].RunID)
	require.Equal(t, 2, summaries[0].Questions)
	require.Equal(t, 1, summaries[0].Answered)
	require.Equal(t, second.RunID, summaries[1].RunID)
}

func TestRunStore_Snapshots(t *testing.T) {
	store := NewRunStore()
	report, err := store.Begin()
	require.NoError(t, err)

	// Mutating the returned snapshot must not affect the store.
	report.Status = "tampered"

	stored, err := store.Get(report.RunID)
	require.NoError(t, err)
	require.Equal(t, "Run in progress...", stored.Status)
	require.WithinDuration(t, time.Now().UTC(), stored.StartedAt, 5*time.Second)
}
