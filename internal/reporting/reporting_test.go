package reporting

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mjimenezh/gaiabench/internal/models"
)

func TestWriteTable(t *testing.T) {
	entries := []models.ResultLogEntry{
		{TaskID: "t1", Question: "How many albums?", SubmittedAnswer: "42"},
		{TaskID: "t2", Question: "Which city hosted the event?", SubmittedAnswer: models.AgentErrorPrefix + "model overloaded"},
	}

	var buf strings.Builder
	require.NoError(t, WriteTable(&buf, entries))
	out := buf.String()

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4) // header, separator, two rows

	require.Contains(t, lines[0], "Task ID")
	require.Contains(t, lines[0], "Question")
	require.Contains(t, lines[0], "Submitted Answer")
	require.Contains(t, lines[2], "t1")
	require.Contains(t, lines[2], "42")
	require.Contains(t, lines[3], "AGENT ERROR: model overloaded")
}

func TestWriteTable_TruncatesLongCells(t *testing.T) {
	long := strings.Repeat("very long question ", 20)
	var buf strings.Builder
	require.NoError(t, WriteTable(&buf, []models.ResultLogEntry{
		{TaskID: "t1", Question: long, SubmittedAnswer: "x"},
	}))
	require.Contains(t, buf.String(), "...")
	require.NotContains(t, buf.String(), long)
}

func TestTruncate_CollapsesNewlines(t *testing.T) {
	require.Equal(t, "a b c", truncate("a\nb\n\nc", 20))
}

func TestSummary(t *testing.T) {
	entries := []models.ResultLogEntry{
		{TaskID: "t1", SubmittedAnswer: "42"},
		{TaskID: "t2", SubmittedAnswer: models.AgentErrorPrefix + "boom"},
		{TaskID: "t3", SubmittedAnswer: "Barcelona"},
	}
	require.Equal(t, "3 question(s) attempted, 2 answered, 1 failed", Summary(entries))
}

func TestWriteAndReadReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "report.json")

	report := &models.RunReport{
		RunID: "run-1",
		State: models.RunStateCompleted,
		Entries: []models.ResultLogEntry{
			{TaskID: "t1", Question: "How many?", SubmittedAnswer: "42"},
		},
		StartedAt:  time.Now().UTC().Truncate(time.Second),
		FinishedAt: time.Now().UTC().Truncate(time.Second),
	}

	require.NoError(t, WriteReport(path, report))

	got, err := ReadReport(path)
	require.NoError(t, err)
	require.Equal(t, report.RunID, got.RunID)
	require.Equal(t, report.State, got.State)
	require.Equal(t, report.Entries, got.Entries)
}

func TestReadReport_Missing(t *testing.T) {
	_, err := ReadReport(filepath.Join(t.TempDir(), "nope.json"))
	require.ErrorContains(t, err, "reading report")
}
