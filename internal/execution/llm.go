package execution

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"trpc.group/trpc-go/trpc-agent-go/agent"
	"trpc.group/trpc-go/trpc-agent-go/agent/llmagent"
	"trpc.group/trpc-go/trpc-agent-go/event"
	"trpc.group/trpc-go/trpc-agent-go/model"
	"trpc.group/trpc-go/trpc-agent-go/model/openai"
	"trpc.group/trpc-go/trpc-agent-go/runner"
	"trpc.group/trpc-go/trpc-agent-go/tool"
	"trpc.group/trpc-go/trpc-agent-go/tool/wikipedia"

	"github.com/mjimenezh/gaiabench/internal/tools"
)

// agentRunner is the slice of [runner.Runner] the engine needs, kept as
// an interface so tests can feed synthetic event streams.
type agentRunner interface {
	Run(ctx context.Context, userID, sessionID string, message model.Message, opts ...agent.RunOption) (<-chan *event.Event, error)
}

// LLMEngine answers questions by driving a tool-using LLM agent. The
// agent gets web search, page fetching, video transcripts, and the
// Wikipedia toolset; the model decides which to call per question.
type LLMEngine struct {
	modelID string
	logger  *slog.Logger

	runner agentRunner
}

// LLMEngineOption configures an LLMEngine.
type LLMEngineOption func(*LLMEngine)

// WithLLMLogger sets the logger.
func WithLLMLogger(l *slog.Logger) LLMEngineOption {
	return func(e *LLMEngine) { e.logger = l }
}

// withRunner injects a prebuilt runner (tests only).
func withRunner(r agentRunner) LLMEngineOption {
	return func(e *LLMEngine) { e.runner = r }
}

// NewLLMEngine creates an engine for the given model name. The model
// endpoint and credentials come from the environment, following the
// OpenAI client conventions.
func NewLLMEngine(modelID string, opts ...LLMEngineOption) *LLMEngine {
	e := &LLMEngine{
		modelID: modelID,
		logger:  slog.Default(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Initialize builds the agent and runner.
func (e *LLMEngine) Initialize(ctx context.Context) error {
	if e.runner != nil {
		return nil
	}
	r, err := e.buildRunner()
	if err != nil {
		return err
	}
	e.runner = r
	return nil
}

func (e *LLMEngine) buildRunner() (agentRunner, error) {
	agentTools := []tool.Tool{
		tools.NewWebSearch().Tool(),
		tools.NewPageFetcher().Tool(),
		tools.NewTranscriptFetcher().Tool(),
	}

	toolSets := []tool.ToolSet{}
	wikiToolSet, err := wikipedia.NewToolSet()
	if err != nil {
		// Wikipedia is a nice-to-have; the search tools cover the gap.
		e.logger.Warn("wikipedia toolset unavailable", "error", err)
	} else {
		toolSets = append(toolSets, wikiToolSet)
	}

	maxTokens := 16384
	temperature := 0.1

	ag := llmagent.New("question-answerer",
		llmagent.WithModel(openai.New(e.modelID)),
		llmagent.WithTools(agentTools),
		llmagent.WithToolSets(toolSets),
		llmagent.WithGenerationConfig(model.GenerationConfig{
			MaxTokens:   &maxTokens,
			Temperature: &temperature,
		}),
		llmagent.WithInstruction(systemPrompt),
	)

	return runner.NewRunner("gaiabench", ag), nil
}

// Answer runs the agent against one question and returns the raw
// final text, still carrying the FINAL ANSWER prefix.
func (e *LLMEngine) Answer(ctx context.Context, req *AnswerRequest) (*AnswerResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("nil req was passed to LLMEngine.Answer")
	}
	if e.runner == nil {
		return nil, fmt.Errorf("engine not initialized")
	}

	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, req.timeout())
	defer cancel()

	userMessage := model.NewUserMessage(buildPrompt(req))

	sessionID := fmt.Sprintf("session-%s", req.TaskID)
	eventChan, err := e.runner.Run(ctx, "gaiabench-user", sessionID, userMessage,
		agent.WithRequestID(uuid.New().String()))
	if err != nil {
		return nil, fmt.Errorf("failed to run agent: %w", err)
	}

	resp := e.collectAnswer(req.TaskID, eventChan)
	resp.ModelID = e.modelID
	resp.DurationMs = time.Since(start).Milliseconds()
	return resp, nil
}

// collectAnswer drains the event stream and keeps the last assistant
// message that carries content and no tool calls. Streaming deltas are
// accumulated as a fallback for models that only emit partial chunks.
func (e *LLMEngine) collectAnswer(taskID string, events <-chan *event.Event) *AnswerResponse {
	resp := &AnswerResponse{}

	var lastAssistantContent string
	var streamed strings.Builder

	for evt := range events {
		if evt.Error != nil {
			resp.ErrorMsg = evt.Error.Message
			break
		}
		if evt.Response == nil {
			continue
		}

		if evt.Response.Usage != nil {
			resp.Steps++
			resp.TokensUsed = evt.Response.Usage.TotalTokens
		}

		if len(evt.Response.Choices) > 0 {
			choice := evt.Response.Choices[0]

			if n := len(choice.Message.ToolCalls); n > 0 {
				resp.ToolCalls += n
				for _, tc := range choice.Message.ToolCalls {
					e.logger.Debug("tool call", "task_id", taskID, "tool", tc.Function.Name)
				}
			}

			if choice.Delta.Content != "" {
				streamed.WriteString(choice.Delta.Content)
			}

			if choice.Message.Role == model.RoleAssistant && choice.Message.Content != "" && len(choice.Message.ToolCalls) == 0 {
				lastAssistantContent = choice.Message.Content
			}
		}

		if evt.IsFinalResponse() {
			break
		}
	}

	if lastAssistantContent == "" {
		lastAssistantContent = streamed.String()
	}

	resp.RawText = lastAssistantContent
	resp.Success = resp.ErrorMsg == "" && lastAssistantContent != ""
	if resp.ErrorMsg == "" && lastAssistantContent == "" {
		resp.ErrorMsg = "agent produced no answer"
	}
	return resp
}

// Shutdown releases engine resources.
func (e *LLMEngine) Shutdown(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
