package models

import "time"

// AgentErrorPrefix marks a per-item failure in the results log. The
// entry stays in the log for reporting but the item is excluded from
// the submission payload.
const AgentErrorPrefix = "AGENT ERROR: "

// ResultLogEntry is one row of the results table: one entry per
// processed question, in processing order, success or failure.
type ResultLogEntry struct {
	TaskID          string `json:"task_id"`
	Question        string `json:"question"`
	SubmittedAnswer string `json:"submitted_answer"`
}

// IsError reports whether the entry records a per-item failure rather
// than a submitted answer.
func (e ResultLogEntry) IsError() bool {
	return len(e.SubmittedAnswer) >= len(AgentErrorPrefix) &&
		e.SubmittedAnswer[:len(AgentErrorPrefix)] == AgentErrorPrefix
}

// RunState describes where a run is in its lifecycle.
type RunState string

// Run states, in lifecycle order.
const (
	RunStateRunning   RunState = "running"
	RunStateCompleted RunState = "completed"
	RunStateFailed    RunState = "failed"
)

// RunReport is everything the reporting surface needs to display a run:
// the status line, the per-question results table, and the scoring
// receipt when submission succeeded.
type RunReport struct {
	RunID      string             `json:"run_id"`
	State      RunState           `json:"state"`
	Status     string             `json:"status"`
	Entries    []ResultLogEntry   `json:"entries"`
	Receipt    *SubmissionReceipt `json:"receipt,omitempty"`
	StartedAt  time.Time          `json:"started_at"`
	FinishedAt time.Time          `json:"finished_at,omitzero"`
}

// Answered counts entries that carry a submitted answer.
func (r *RunReport) Answered() int {
	n := 0
	for _, e := range r.Entries {
		if !e.IsError() {
			n++
		}
	}
	return n
}
