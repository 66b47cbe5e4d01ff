// Package reporting renders run results for humans and machines: a
// fixed-width results table for the terminal and a JSON report file.
package reporting

import (
	"fmt"
	"io"
	"strings"

	"github.com/mjimenezh/gaiabench/internal/models"
)

// maxCellWidth bounds how much of a question or answer is shown in the
// terminal table.
const maxCellWidth = 60

// WriteTable renders the result log as a three-column text table.
func WriteTable(w io.Writer, entries []models.ResultLogEntry) error {
	taskWidth := len("Task ID")
	for _, e := range entries {
		if len(e.TaskID) > taskWidth {
			taskWidth = len(e.TaskID)
		}
	}

	header := fmt.Sprintf("%-*s  %-*s  %s", taskWidth, "Task ID", maxCellWidth, "Question", "Submitted Answer")
	if _, err := fmt.Fprintln(w, header); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, strings.Repeat("-", len(header))); err != nil {
		return err
	}

	for _, e := range entries {
		row := fmt.Sprintf("%-*s  %-*s  %s",
			taskWidth, e.TaskID,
			maxCellWidth, truncate(e.Question, maxCellWidth),
			truncate(e.SubmittedAnswer, maxCellWidth))
		if _, err := fmt.Fprintln(w, row); err != nil {
			return err
		}
	}

	return nil
}

// truncate collapses newlines and cuts the string to width, appending
// an ellipsis when something was dropped.
func truncate(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= width {
		return s
	}
	if width <= 3 {
		return s[:width]
	}
	return s[:width-3] + "..."
}

// Summary is a one-line recap of the batch for the terminal.
func Summary(entries []models.ResultLogEntry) string {
	errored := 0
	for _, e := range entries {
		if e.IsError() {
			errored++
		}
	}
	return fmt.Sprintf("%d question(s) attempted, %d answered, %d failed",
		len(entries), len(entries)-errored, errored)
}
