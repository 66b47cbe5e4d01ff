package execution

import (
	"context"
	"fmt"
	"time"
)

// MockEngine is a simple engine for tests and dry runs. Answers can be
// seeded per task ID; unseeded tasks get a generic canned answer.
type MockEngine struct {
	modelID string
	answers map[string]string

	// FailTasks lists task IDs whose Answer call returns an error.
	FailTasks map[string]bool
}

// NewMockEngine creates a new mock engine.
func NewMockEngine(modelID string) *MockEngine {
	return &MockEngine{
		modelID:   modelID,
		answers:   map[string]string{},
		FailTasks: map[string]bool{},
	}
}

// SetAnswer seeds the raw answer text returned for a task.
func (m *MockEngine) SetAnswer(taskID, raw string) {
	m.answers[taskID] = raw
}

func (m *MockEngine) Initialize(ctx context.Context) error {
	return nil
}

func (m *MockEngine) Answer(ctx context.Context, req *AnswerRequest) (*AnswerResponse, error) {
	start := time.Now()

	if m.FailTasks[req.TaskID] {
		return nil, fmt.Errorf("mock failure for task %s", req.TaskID)
	}

	raw, ok := m.answers[req.TaskID]
	if !ok {
		raw = fmt.Sprintf("FINAL ANSWER: mock answer for %s", req.TaskID)
	}

	return &AnswerResponse{
		RawText:    raw,
		ModelID:    m.modelID,
		DurationMs: time.Since(start).Milliseconds(),
		Success:    true,
	}, nil
}

func (m *MockEngine) Shutdown(ctx context.Context) error {
	return nil
}
