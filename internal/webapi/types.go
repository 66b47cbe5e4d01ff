package webapi

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// RunSummary is the list-view shape of a run: everything except the
// per-question entries.
type RunSummary struct {
	RunID      string `json:"run_id"`
	State      string `json:"state"`
	Status     string `json:"status"`
	Questions  int    `json:"questions"`
	Answered   int    `json:"answered"`
	StartedAt  string `json:"started_at"`
	FinishedAt string `json:"finished_at,omitempty"`
}
