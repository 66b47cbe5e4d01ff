package models

import "fmt"

// SubmissionReceipt is the scoring endpoint's response to a successful
// submission. Every field is optional on the wire; missing fields are
// rendered with placeholders.
type SubmissionReceipt struct {
	Username       *string  `json:"username,omitempty"`
	Score          *float64 `json:"score,omitempty"`
	CorrectCount   *int     `json:"correct_count,omitempty"`
	TotalAttempted *int     `json:"total_attempted,omitempty"`
	Message        *string  `json:"message,omitempty"`
}

// DisplayUsername returns the username or "N/A".
func (r *SubmissionReceipt) DisplayUsername() string {
	if r.Username == nil {
		return "N/A"
	}
	return *r.Username
}

// DisplayScore returns the score or "N/A".
func (r *SubmissionReceipt) DisplayScore() string {
	if r.Score == nil {
		return "N/A"
	}
	return fmt.Sprintf("%g", *r.Score)
}

// DisplayCorrectCount returns the correct count or "?".
func (r *SubmissionReceipt) DisplayCorrectCount() string {
	if r.CorrectCount == nil {
		return "?"
	}
	return fmt.Sprintf("%d", *r.CorrectCount)
}

// DisplayTotalAttempted returns the attempted count or "?".
func (r *SubmissionReceipt) DisplayTotalAttempted() string {
	if r.TotalAttempted == nil {
		return "?"
	}
	return fmt.Sprintf("%d", *r.TotalAttempted)
}

// DisplayMessage returns the server message or a default.
func (r *SubmissionReceipt) DisplayMessage() string {
	if r.Message == nil {
		return "No message received."
	}
	return *r.Message
}
