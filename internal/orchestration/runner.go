// Package orchestration drives a full benchmark batch: it walks the
// question list, feeds each question to the agent engine, and collects
// the normalized answers alongside a per-question result log.
package orchestration

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mjimenezh/gaiabench/internal/answer"
	"github.com/mjimenezh/gaiabench/internal/execution"
	"github.com/mjimenezh/gaiabench/internal/models"
)

// FileFetcher downloads the file attached to a task. *evalapi.Client
// satisfies this.
type FileFetcher interface {
	File(ctx context.Context, taskID string) ([]byte, error)
}

// BatchRunner runs the agent over a question list, one question at a
// time. A failed question never aborts the batch: its error is
// recorded in the result log and the run moves on.
type BatchRunner struct {
	engine execution.AgentEngine
	files  FileFetcher
	logger *slog.Logger

	// itemDelay is the pause between consecutive questions, for rate
	// limited model providers. Defaults to none.
	itemDelay     time.Duration
	answerTimeout time.Duration

	// Progress tracking
	progressMu sync.Mutex
	listeners  []ProgressListener
}

// ProgressListener receives progress updates
type ProgressListener func(event ProgressEvent)

// EventType represents the type of progress event
type EventType string

// EventType constants
const (
	EventBatchStart       EventType = "batch_start"
	EventBatchComplete    EventType = "batch_complete"
	EventQuestionStart    EventType = "question_start"
	EventQuestionComplete EventType = "question_complete"
	EventQuestionSkipped  EventType = "question_skipped"
)

// ProgressEvent represents a progress update
type ProgressEvent struct {
	EventType      EventType
	TaskID         string
	QuestionNum    int
	TotalQuestions int
	Answer         string
	IsError        bool
	DurationMs     int64
}

// RunnerOption configures a BatchRunner.
type RunnerOption func(*BatchRunner)

// WithFileFetcher enables downloading of attached task files.
func WithFileFetcher(f FileFetcher) RunnerOption {
	return func(r *BatchRunner) { r.files = f }
}

// WithItemDelay sets the pause between consecutive questions.
func WithItemDelay(d time.Duration) RunnerOption {
	return func(r *BatchRunner) { r.itemDelay = d }
}

// WithAnswerTimeout sets the per-question agent timeout.
func WithAnswerTimeout(d time.Duration) RunnerOption {
	return func(r *BatchRunner) { r.answerTimeout = d }
}

// WithRunnerLogger sets the logger.
func WithRunnerLogger(l *slog.Logger) RunnerOption {
	return func(r *BatchRunner) { r.logger = l }
}

// NewBatchRunner creates a new batch runner.
func NewBatchRunner(engine execution.AgentEngine, opts ...RunnerOption) *BatchRunner {
	r := &BatchRunner{
		engine:    engine,
		logger:    slog.Default(),
		listeners: []ProgressListener{},
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// OnProgress registers a progress listener
func (r *BatchRunner) OnProgress(listener ProgressListener) {
	r.progressMu.Lock()
	defer r.progressMu.Unlock()
	r.listeners = append(r.listeners, listener)
}

func (r *BatchRunner) notifyProgress(event ProgressEvent) {
	r.progressMu.Lock()
	listeners := make([]ProgressListener, len(r.listeners))
	copy(listeners, r.listeners)
	r.progressMu.Unlock()

	for _, listener := range listeners {
		listener(event)
	}
}

// BatchResult is the outcome of a full batch. Entries covers every
// attempted question, including failures; Answers only carries the
// successful ones and is what gets submitted.
type BatchResult struct {
	Entries []models.ResultLogEntry
	Answers []models.AnswerItem
}

// RunBatch executes the agent over every valid question, sequentially
// and in order. Items without a task ID or question text are skipped.
// Context cancellation stops the batch between questions and returns
// what was collected so far along with the context error.
func (r *BatchRunner) RunBatch(ctx context.Context, questions []models.QuestionItem) (*BatchResult, error) {
	result := &BatchResult{}

	r.notifyProgress(ProgressEvent{
		EventType:      EventBatchStart,
		TotalQuestions: len(questions),
	})

	for i, item := range questions {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		if !item.Valid() {
			r.logger.Debug("skipping item with missing task_id or question", "item", item)
			r.notifyProgress(ProgressEvent{
				EventType:      EventQuestionSkipped,
				TaskID:         item.TaskID,
				QuestionNum:    i + 1,
				TotalQuestions: len(questions),
			})
			continue
		}

		if r.itemDelay > 0 && len(result.Entries) > 0 {
			select {
			case <-time.After(r.itemDelay):
			case <-ctx.Done():
				return result, ctx.Err()
			}
		}

		r.notifyProgress(ProgressEvent{
			EventType:      EventQuestionStart,
			TaskID:         item.TaskID,
			QuestionNum:    i + 1,
			TotalQuestions: len(questions),
		})

		start := time.Now()
		submitted, answerErr := r.runQuestion(ctx, item)

		entry := models.ResultLogEntry{
			TaskID:   item.TaskID,
			Question: item.Question,
		}

		if answerErr != nil {
			r.logger.Error("agent failed on task", "task_id", item.TaskID, "error", answerErr)
			entry.SubmittedAnswer = models.AgentErrorPrefix + answerErr.Error()
		} else {
			entry.SubmittedAnswer = submitted
			result.Answers = append(result.Answers, models.AnswerItem{
				TaskID:          item.TaskID,
				SubmittedAnswer: submitted,
			})
		}
		result.Entries = append(result.Entries, entry)

		r.notifyProgress(ProgressEvent{
			EventType:      EventQuestionComplete,
			TaskID:         item.TaskID,
			QuestionNum:    i + 1,
			TotalQuestions: len(questions),
			Answer:         entry.SubmittedAnswer,
			IsError:        answerErr != nil,
			DurationMs:     time.Since(start).Milliseconds(),
		})
	}

	r.notifyProgress(ProgressEvent{
		EventType:      EventBatchComplete,
		TotalQuestions: len(questions),
	})

	return result, nil
}

// runQuestion answers a single question: fetch the attached file if
// any, run the engine, normalize the output.
func (r *BatchRunner) runQuestion(ctx context.Context, item models.QuestionItem) (string, error) {
	req := &execution.AnswerRequest{
		TaskID:   item.TaskID,
		Question: item.Question,
		FileName: item.FileName,
		Timeout:  r.answerTimeout,
	}

	if item.FileName != "" && r.files != nil {
		// A missing or undownloadable file degrades the question, it
		// does not fail it: the agent still gets a shot at answering.
		if err := r.attachFile(ctx, req, item); err != nil {
			r.logger.Warn("could not download file for task", "task_id", item.TaskID, "error", err)
		}
	}

	resp, err := r.engine.Answer(ctx, req)
	if err != nil {
		return "", err
	}
	if resp.ErrorMsg != "" {
		return "", fmt.Errorf("%s", resp.ErrorMsg)
	}

	return answer.Normalize(resp.RawText), nil
}
