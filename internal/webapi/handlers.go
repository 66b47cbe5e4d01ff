package webapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
)

// Version is set at build time or defaults to dev.
var Version = "0.1.0-dev"

// RunFunc executes a full benchmark batch for the given run ID and
// records its outcome in the store via Finish. It runs on its own
// goroutine, detached from the triggering request.
type RunFunc func(ctx context.Context, runID string)

// Handlers holds the HTTP handler methods for the web API.
type Handlers struct {
	store *RunStore
	run   RunFunc
}

// NewHandlers creates a new Handlers with the given store and run
// function. A nil run function disables the trigger endpoint.
func NewHandlers(store *RunStore, run RunFunc) *Handlers {
	return &Handlers{store: store, run: run}
}

// HandleHealth returns a simple health check response.
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: Version,
	})
}

// HandleTriggerRun starts a new benchmark run. While a run is in
// flight, further triggers are rejected with 409.
func (h *Handlers) HandleTriggerRun(w http.ResponseWriter, r *http.Request) {
	if h.run == nil {
		writeError(w, http.StatusNotImplemented, "run trigger not configured")
		return
	}

	report, err := h.store.Begin()
	if err != nil {
		if errors.Is(err, ErrRunInProgress) {
			writeError(w, http.StatusConflict, err.Error())
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	// The run outlives the HTTP request that triggered it.
	go h.run(context.WithoutCancel(r.Context()), report.RunID)

	writeJSON(w, http.StatusAccepted, report)
}

// HandleRuns returns summaries of all runs.
func (h *Handlers) HandleRuns(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.store.List())
}

// HandleLatestRun returns the most recently started run in full.
func (h *Handlers) HandleLatestRun(w http.ResponseWriter, _ *http.Request) {
	report, err := h.store.Latest()
	if err != nil {
		writeError(w, http.StatusNotFound, "no runs yet")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// HandleRunDetail returns one run in full, by ID.
func (h *Handlers) HandleRunDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "run id is required")
		return
	}

	report, err := h.store.Get(id)
	if err != nil {
		if errors.Is(err, ErrRunNotFound) {
			writeError(w, http.StatusNotFound, "run not found")
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// RegisterRoutes registers all web API routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, store *RunStore, run RunFunc) {
	h := NewHandlers(store, run)
	mux.HandleFunc("GET /api/health", h.HandleHealth)
	mux.HandleFunc("GET /api/runs", h.HandleRuns)
	mux.HandleFunc("POST /api/runs", h.HandleTriggerRun)
	mux.HandleFunc("GET /api/runs/latest", h.HandleLatestRun)
	mux.HandleFunc("GET /api/runs/{id}", h.HandleRunDetail)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, ErrorResponse{Error: msg, Code: code})
}
