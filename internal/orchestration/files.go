package orchestration

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/mjimenezh/gaiabench/internal/execution"
	"github.com/mjimenezh/gaiabench/internal/models"
)

// maxEmbeddedFileBytes bounds how large a text file may be to ride
// along inside the prompt instead of being referenced by path.
const maxEmbeddedFileBytes = 64 * 1024

// attachFile downloads the task file, saves it under the temp
// directory, and decides whether its content is small and textual
// enough to embed directly in the prompt.
func (r *BatchRunner) attachFile(ctx context.Context, req *execution.AnswerRequest, item models.QuestionItem) error {
	data, err := r.files.File(ctx, item.TaskID)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}

	path, err := saveTaskFile(item, data)
	if err != nil {
		return err
	}
	req.FilePath = path

	if isEmbeddableText(data) {
		req.FileContent = string(data)
	}

	r.logger.Debug("downloaded file for task", "task_id", item.TaskID, "path", path, "bytes", len(data))
	return nil
}

// saveTaskFile writes the downloaded file to the temp directory,
// keeping the original extension so tooling can recognize the format.
func saveTaskFile(item models.QuestionItem, data []byte) (string, error) {
	name := fmt.Sprintf("gaiabench_task_%s%s", item.TaskID, filepath.Ext(item.FileName))
	path := filepath.Join(os.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("saving task file: %w", err)
	}
	return path, nil
}

func isEmbeddableText(data []byte) bool {
	return len(data) <= maxEmbeddedFileBytes &&
		utf8.Valid(data) &&
		!bytes.ContainsRune(data, 0)
}
