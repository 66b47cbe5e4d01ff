package main

import (
	"fmt"
	"io"
	"time"

	"github.com/mjimenezh/gaiabench/internal/orchestration"
)

// progressReporter prints one line per question as the batch advances.
type progressReporter struct {
	out     io.Writer
	verbose bool
}

func newProgressReporter(out io.Writer, verbose bool) *progressReporter {
	return &progressReporter{out: out, verbose: verbose}
}

func (p *progressReporter) listen(ev orchestration.ProgressEvent) {
	switch ev.EventType {
	case orchestration.EventBatchStart:
		fmt.Fprintf(p.out, "Running %d question(s)...\n", ev.TotalQuestions)
	case orchestration.EventQuestionStart:
		if p.verbose {
			fmt.Fprintf(p.out, "[%d/%d] %s: answering...\n", ev.QuestionNum, ev.TotalQuestions, ev.TaskID)
		}
	case orchestration.EventQuestionSkipped:
		fmt.Fprintf(p.out, "[%d/%d] skipped item with missing task_id or question\n", ev.QuestionNum, ev.TotalQuestions)
	case orchestration.EventQuestionComplete:
		status := "ok"
		if ev.IsError {
			status = "FAILED"
		}
		fmt.Fprintf(p.out, "[%d/%d] %s: %s (%s)\n", ev.QuestionNum, ev.TotalQuestions, ev.TaskID, status, formatDuration(ev.DurationMs))
		if p.verbose && ev.Answer != "" {
			fmt.Fprintf(p.out, "    %s\n", ev.Answer)
		}
	}
}

// formatDuration renders a millisecond count for progress lines.
func formatDuration(ms int64) string {
	d := time.Duration(ms) * time.Millisecond
	if d < time.Second {
		return fmt.Sprintf("%dms", ms)
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}
