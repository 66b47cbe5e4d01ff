// Package submission assembles the scoring payload from the batch
// runner's answers and formats the user-facing status message for
// every submission outcome.
package submission

import (
	"errors"
	"strings"

	"github.com/mjimenezh/gaiabench/internal/models"
)

// ErrNoAnswers is returned when the answer set is empty. Policy: an
// empty answer set is never submitted; the caller reports "no answers
// produced" instead.
var ErrNoAnswers = errors.New("no answers to submit")

// ErrEmptyUsername is returned when the username is empty after trimming.
var ErrEmptyUsername = errors.New("username must not be empty")

// Build assembles a SubmissionPayload. Pure assembly, no I/O. The
// username is trimmed before embedding.
func Build(username, agentCode string, answers []models.AnswerItem) (*models.SubmissionPayload, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrEmptyUsername
	}
	if len(answers) == 0 {
		return nil, ErrNoAnswers
	}

	return &models.SubmissionPayload{
		Username:  username,
		AgentCode: agentCode,
		Answers:   answers,
	}, nil
}
