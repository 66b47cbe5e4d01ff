package submission

import (
	"errors"
	"fmt"

	"github.com/mjimenezh/gaiabench/internal/evalapi"
	"github.com/mjimenezh/gaiabench/internal/models"
)

// NoAnswersStatus is reported when the agent produced nothing to submit.
const NoAnswersStatus = "Agent did not produce any answers to submit."

// SuccessStatus formats the multi-line status shown after a successful
// submission.
func SuccessStatus(receipt *models.SubmissionReceipt) string {
	return fmt.Sprintf(
		"Submission Successful!\n"+
			"User: %s\n"+
			"Overall Score: %s%% (%s/%s correct)\n"+
			"Message: %s",
		receipt.DisplayUsername(),
		receipt.DisplayScore(),
		receipt.DisplayCorrectCount(),
		receipt.DisplayTotalAttempted(),
		receipt.DisplayMessage(),
	)
}

// FailureStatus maps a submission error onto its user-facing status
// message. Each class of failure gets a distinct message; none is
// retried.
func FailureStatus(err error) string {
	var httpErr *evalapi.HTTPError
	switch {
	case errors.As(err, &httpErr):
		return fmt.Sprintf("Submission Failed: %s", httpErr.Error())
	case errors.Is(err, evalapi.ErrTimeout):
		return "Submission Failed: The request timed out."
	default:
		if isNetworkError(err) {
			return fmt.Sprintf("Submission Failed: %s", err.Error())
		}
		return fmt.Sprintf("An unexpected error occurred during submission: %s", err.Error())
	}
}

func isNetworkError(err error) bool {
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr)
}
