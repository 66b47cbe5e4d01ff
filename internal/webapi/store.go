// Package webapi exposes the benchmark over HTTP: trigger a run, poll
// its progress, and read back results. Runs live in an in-memory store
// for the lifetime of the server process.
package webapi

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mjimenezh/gaiabench/internal/models"
)

// ErrRunNotFound is returned when a run ID does not match any stored run.
var ErrRunNotFound = errors.New("run not found")

// ErrRunInProgress is returned when a run is requested while another is
// still executing. Only one run may be in flight at a time.
var ErrRunInProgress = errors.New("a run is already in progress")

// RunStore keeps run reports in memory, newest last. All methods are
// safe for concurrent use; reports are returned by value so callers
// never share mutable state with the executing run.
type RunStore struct {
	mu     sync.Mutex
	runs   map[string]*models.RunReport
	order  []string
	active string
}

// NewRunStore creates an empty RunStore.
func NewRunStore() *RunStore {
	return &RunStore{
		runs: make(map[string]*models.RunReport),
	}
}

// Begin registers a new run in the running state and returns its
// snapshot. Fails with ErrRunInProgress while another run is active.
func (s *RunStore) Begin() (models.RunReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != "" {
		return models.RunReport{}, ErrRunInProgress
	}

	report := &models.RunReport{
		RunID:     uuid.New().String(),
		State:     models.RunStateRunning,
		Status:    "Run in progress...",
		StartedAt: time.Now().UTC(),
	}

	s.runs[report.RunID] = report
	s.order = append(s.order, report.RunID)
	s.active = report.RunID

	return *report, nil
}

// Finish records the outcome of a run and releases the in-flight slot.
func (s *RunStore) Finish(runID string, state models.RunState, status string, entries []models.ResultLogEntry, receipt *models.SubmissionReceipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	report, ok := s.runs[runID]
	if !ok {
		return ErrRunNotFound
	}

	report.State = state
	report.Status = status
	report.Entries = entries
	report.Receipt = receipt
	report.FinishedAt = time.Now().UTC()

	if s.active == runID {
		s.active = ""
	}
	return nil
}

// Get returns a snapshot of the run with the given ID.
func (s *RunStore) Get(runID string) (models.RunReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	report, ok := s.runs[runID]
	if !ok {
		return models.RunReport{}, ErrRunNotFound
	}
	return *report, nil
}

// Latest returns a snapshot of the most recently started run.
func (s *RunStore) Latest() (models.RunReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.order) == 0 {
		return models.RunReport{}, ErrRunNotFound
	}
	return *s.runs[s.order[len(s.order)-1]], nil
}

// List returns summaries of all runs, oldest first.
func (s *RunStore) List() []RunSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	summaries := make([]RunSummary, 0, len(s.order))
	for _, id := range s.order {
		summaries = append(summaries, summarize(s.runs[id]))
	}
	return summaries
}

func summarize(r *models.RunReport) RunSummary {
	summary := RunSummary{
		RunID:     r.RunID,
		State:     string(r.State),
		Status:    r.Status,
		Questions: len(r.Entries),
		Answered:  r.Answered(),
		StartedAt: r.StartedAt.Format(time.RFC3339),
	}
	if !r.FinishedAt.IsZero() {
		summary.FinishedAt = r.FinishedAt.Format(time.RFC3339)
	}
	return summary
}
