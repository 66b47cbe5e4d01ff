// Package execution contains the agent engines that produce raw
// answers for benchmark questions. Engines are interchangeable behind
// AgentEngine: the LLM engine drives a tool-using agent, the Copilot
// engine delegates to the Copilot CLI, and the mock engine serves
// canned answers for tests and dry runs.
package execution

import (
	"context"
	"time"
)

// AgentEngine is the interface for answering benchmark questions.
type AgentEngine interface {
	// Initialize sets up the engine
	Initialize(ctx context.Context) error

	// Answer runs the agent against a single question
	Answer(ctx context.Context, req *AnswerRequest) (*AnswerResponse, error)

	// Shutdown cleans up resources
	Shutdown(ctx context.Context) error
}

// AnswerRequest carries one question to an engine.
type AnswerRequest struct {
	TaskID   string
	Question string

	// FileName is the original name of the attached task file, empty
	// when the task has none.
	FileName string
	// FilePath is where the attached file was saved locally.
	FilePath string
	// FileContent holds the file's text when it is small enough to
	// embed directly in the prompt.
	FileContent string

	// Timeout bounds the whole agent run for this question. Engines
	// fall back to a default when it is zero.
	Timeout time.Duration
}

// defaultAnswerTimeout applies when AnswerRequest.Timeout is unset.
const defaultAnswerTimeout = 5 * time.Minute

func (r *AnswerRequest) timeout() time.Duration {
	if r.Timeout > 0 {
		return r.Timeout
	}
	return defaultAnswerTimeout
}

// AnswerResponse is the raw outcome of one agent run. RawText still
// carries the FINAL ANSWER prefix; normalization happens downstream.
type AnswerResponse struct {
	RawText    string
	ModelID    string
	DurationMs int64
	Steps      int
	ToolCalls  int
	TokensUsed int
	ErrorMsg   string
	Success    bool
}
