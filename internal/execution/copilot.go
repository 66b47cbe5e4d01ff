package execution

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	copilot "github.com/github/copilot-sdk/go"
)

// CopilotEngine answers questions through the GitHub Copilot CLI. Each
// question runs in a fresh session whose working directory holds the
// attached task file, if any.
type CopilotEngine struct {
	defaultModelID string

	client copilotClient

	startOnce sync.Once

	workspacesMu sync.Mutex
	workspaces   []string // workspaces to clean up at Shutdown
}

// CopilotEngineOptions tweak engine construction.
type CopilotEngineOptions struct {
	NewCopilotClient func(clientOptions *copilot.ClientOptions) copilotClient
}

// NewCopilotEngine creates an engine backed by the Copilot CLI.
//   - defaultModelID - used for every session. Can be blank, which
//     means the CLI picks its own fallback model.
func NewCopilotEngine(defaultModelID string, options *CopilotEngineOptions) *CopilotEngine {
	copilotOptions := &copilot.ClientOptions{
		// workspace is set at the session level, instead of at the client.
		LogLevel:  "error",
		AutoStart: copilot.Bool(false),
	}

	var client copilotClient
	if options == nil || options.NewCopilotClient == nil {
		client = newCopilotClient(copilotOptions)
	} else {
		client = options.NewCopilotClient(copilotOptions)
	}

	return &CopilotEngine{
		defaultModelID: defaultModelID,
		client:         client,
	}
}

// Initialize sets up the Copilot client.
func (e *CopilotEngine) Initialize(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// Answer runs one question through a Copilot session.
func (e *CopilotEngine) Answer(ctx context.Context, req *AnswerRequest) (*AnswerResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("nil req was passed to CopilotEngine.Answer")
	}

	var startErr error

	e.startOnce.Do(func() {
		// NOTE: the client has an autostart feature, but it runs into
		// issues when it tries to autostart from separate goroutines.
		startErr = e.client.Start(ctx)
	})

	if startErr != nil {
		return nil, fmt.Errorf("copilot failed to start: %w", startErr)
	}

	start := time.Now()

	workspaceDir, err := e.setupWorkspace(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, req.timeout())
	defer cancel()

	session, err := e.client.CreateSession(ctx, &copilot.SessionConfig{
		Model: e.defaultModelID,

		OnPermissionRequest: allowAllTools,

		WorkingDirectory: workspaceDir,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	collector := newSessionCollector()
	unsubscribe := session.On(collector.On)
	defer unsubscribe()

	// The Copilot session has no separate system prompt slot, so the
	// answer format rules ride along in the message itself.
	_, err = session.SendAndWait(ctx, copilot.MessageOptions{
		Prompt: systemPrompt + "\n\n" + buildPrompt(req),
	})

	var errMsg string
	if err != nil {
		// errors that surface inline in the conversation also come back
		// in the returned error, so they land in ErrorMsg rather than
		// failing the whole call.
		errMsg = err.Error()
	}
	if errMsg == "" && collector.ErrorMessage() != "" {
		errMsg = collector.ErrorMessage()
	}

	rawText := strings.TrimSpace(joinParts(collector.OutputParts()))

	return &AnswerResponse{
		RawText:    rawText,
		ModelID:    e.defaultModelID,
		DurationMs: time.Since(start).Milliseconds(),
		ErrorMsg:   errMsg,
		Success:    errMsg == "" && rawText != "",
	}, nil
}

// Shutdown cleans up resources.
func (e *CopilotEngine) Shutdown(ctx context.Context) error {
	if err := e.client.Stop(); err != nil {
		// Log but continue cleanup
		slog.Info("failed to stop client", "error", err)
	}

	// remove the workspace folders, safe now that the sessions are shut
	// down and the run is complete.
	workspaces := func() []string {
		e.workspacesMu.Lock()
		defer e.workspacesMu.Unlock()
		workspaces := e.workspaces
		e.workspaces = nil
		return workspaces
	}()

	for _, ws := range workspaces {
		if ws != "" {
			if err := os.RemoveAll(ws); err != nil {
				slog.Warn("failed to cleanup stale workspace", "path", ws, "error", err)
			}
		}
	}

	return nil
}

// setupWorkspace creates a temp working directory for the session and
// copies the attached task file into it under its original name.
func (e *CopilotEngine) setupWorkspace(req *AnswerRequest) (string, error) {
	workspaceDir, err := os.MkdirTemp("", "gaiabench-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp workspace: %w", err)
	}

	e.workspacesMu.Lock()
	e.workspaces = append(e.workspaces, workspaceDir)
	e.workspacesMu.Unlock()

	if req.FilePath != "" {
		name := req.FileName
		if name == "" {
			name = filepath.Base(req.FilePath)
		}
		data, err := os.ReadFile(req.FilePath)
		if err != nil {
			return "", fmt.Errorf("failed to read task file %s: %w", req.FilePath, err)
		}
		if err := os.WriteFile(filepath.Join(workspaceDir, name), data, 0o644); err != nil {
			return "", fmt.Errorf("failed to copy task file into workspace %s: %w", workspaceDir, err)
		}
	}

	return workspaceDir, nil
}

func joinParts(parts []string) string {
	var builder strings.Builder
	for _, p := range parts {
		builder.WriteString(p)
	}
	return builder.String()
}

func allowAllTools(request copilot.PermissionRequest, invocation copilot.PermissionInvocation) (copilot.PermissionRequestResult, error) {
	// value for 'Kind' came from the permissions_test.go in the Copilot SDK.
	return copilot.PermissionRequestResult{Kind: "approved"}, nil
}
