package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/mjimenezh/gaiabench/internal/config"
	"github.com/mjimenezh/gaiabench/internal/evalapi"
	"github.com/mjimenezh/gaiabench/internal/execution"
	"github.com/mjimenezh/gaiabench/internal/models"
	"github.com/mjimenezh/gaiabench/internal/orchestration"
	"github.com/mjimenezh/gaiabench/internal/submission"
)

// runOutcome is everything one finished run produced: the per-question
// result log, the scoring receipt when submission succeeded, and the
// user-facing status line.
type runOutcome struct {
	Entries []models.ResultLogEntry
	Receipt *models.SubmissionReceipt
	Status  string
	State   models.RunState
}

// newEngine builds the agent engine the configuration selects. It is a
// variable so tests can substitute a seeded engine.
var newEngine = func(cfg *config.RunConfig) (execution.AgentEngine, error) {
	switch cfg.Engine() {
	case config.EngineLLM:
		return execution.NewLLMEngine(cfg.Model()), nil
	case config.EngineCopilot:
		return execution.NewCopilotEngine(cfg.Model(), nil), nil
	case config.EngineMock:
		return execution.NewMockEngine(cfg.Model()), nil
	default:
		return nil, fmt.Errorf("unknown engine %q", cfg.Engine())
	}
}

// executeRun runs the whole benchmark pipeline: fetch the question
// list, answer every question, and (unless noSubmit is set) post the
// answers for scoring. Setup failures are returned as errors; a failed
// submission is reported in the outcome instead, since the run itself
// still produced results worth showing.
func executeRun(ctx context.Context, cfg *config.RunConfig, listener orchestration.ProgressListener, noSubmit bool) (*runOutcome, error) {
	engine, err := newEngine(cfg)
	if err != nil {
		return nil, err
	}
	if err := engine.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("initializing %s engine: %w", cfg.Engine(), err)
	}
	defer engine.Shutdown(context.WithoutCancel(ctx)) //nolint:errcheck

	client := evalapi.New(cfg.APIBaseURL(), evalapi.WithTimeout(cfg.RequestTimeout()))

	questions, err := client.Questions(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching questions: %w", err)
	}
	if cfg.Limit() > 0 && len(questions) > cfg.Limit() {
		questions = questions[:cfg.Limit()]
	}

	runner := orchestration.NewBatchRunner(engine,
		orchestration.WithFileFetcher(client),
		orchestration.WithItemDelay(cfg.ItemDelay()),
		orchestration.WithAnswerTimeout(cfg.AnswerTimeout()),
	)
	if listener != nil {
		runner.OnProgress(listener)
	}

	result, err := runner.RunBatch(ctx, questions)
	if err != nil {
		return nil, err
	}

	outcome := &runOutcome{Entries: result.Entries}

	payload, err := submission.Build(cfg.Username(), cfg.AgentCodeURL(), result.Answers)
	if err != nil {
		// The batch already ran; report the failure without dropping
		// the collected results.
		if errors.Is(err, submission.ErrNoAnswers) {
			outcome.Status = submission.NoAnswersStatus
		} else {
			outcome.Status = submission.FailureStatus(err)
		}
		outcome.State = models.RunStateFailed
		return outcome, nil
	}

	if noSubmit {
		outcome.Status = fmt.Sprintf("Dry run: %d answer(s) ready, submission skipped.", len(payload.Answers))
		outcome.State = models.RunStateCompleted
		return outcome, nil
	}

	receipt, err := client.Submit(ctx, payload)
	if err != nil {
		outcome.Status = submission.FailureStatus(err)
		outcome.State = models.RunStateFailed
		return outcome, nil
	}

	outcome.Receipt = receipt
	outcome.Status = submission.SuccessStatus(receipt)
	outcome.State = models.RunStateCompleted
	return outcome, nil
}
