// Package models contains the data types shared across the runner:
// benchmark questions, per-item results, submission payloads, and the
// run report consumed by the reporting and web layers.
package models

// QuestionItem is a single benchmark question as returned by the
// evaluation API. Items are immutable once fetched.
type QuestionItem struct {
	TaskID   string `json:"task_id"`
	Question string `json:"question"`
	// FileName is set when the question has an attached task file. It is
	// informational only; the file itself is fetched by task ID.
	FileName string `json:"file_name,omitempty"`
}

// Valid reports whether the item carries the fields required for
// processing. Invalid items are skipped by the batch runner without
// producing a log entry.
func (q QuestionItem) Valid() bool {
	return q.TaskID != "" && q.Question != ""
}
