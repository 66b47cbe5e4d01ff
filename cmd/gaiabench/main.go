package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess          = 0 // Run completed and answers were accepted
	ExitSubmissionFailed = 1 // Run completed but nothing could be submitted
	ExitError            = 2 // Configuration or runtime error
)

// SubmissionFailureError indicates the benchmark ran, but the answers
// could not be submitted (or there was nothing to submit).
type SubmissionFailureError struct {
	Message string
}

func (e *SubmissionFailureError) Error() string {
	return e.Message
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		var submissionErr *SubmissionFailureError
		if errors.As(err, &submissionErr) {
			os.Exit(ExitSubmissionFailed)
		}

		// All other errors are configuration/runtime errors
		os.Exit(ExitError)
	}
}
