package models

// AnswerItem is one successfully answered question, ready for submission.
type AnswerItem struct {
	TaskID          string `json:"task_id"`
	SubmittedAnswer string `json:"submitted_answer"`
}

// SubmissionPayload is the body POSTed to the scoring endpoint. Only
// successfully answered items appear in Answers; failed items are
// recorded in the results log but never submitted.
type SubmissionPayload struct {
	Username  string       `json:"username"`
	AgentCode string       `json:"agent_code"`
	Answers   []AnswerItem `json:"answers"`
}
