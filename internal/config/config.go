// Package config resolves the run configuration from three layers:
// built-in defaults, an optional YAML run file, and environment
// variables (including a local .env file). Later layers win.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EngineKind selects which agent engine answers the questions.
type EngineKind string

const (
	// EngineLLM drives a tool-using LLM agent.
	EngineLLM EngineKind = "llm"
	// EngineCopilot delegates to the GitHub Copilot CLI.
	EngineCopilot EngineKind = "copilot"
	// EngineMock serves canned answers, for tests and dry runs.
	EngineMock EngineKind = "mock"
)

// Defaults applied by New.
const (
	DefaultAPIBaseURL     = "https://agents-course-unit4-scoring.hf.space"
	DefaultModel          = "gpt-4o-mini"
	DefaultRequestTimeout = 60 * time.Second
	DefaultAnswerTimeout  = 5 * time.Minute
)

// RunConfig is the resolved configuration for one benchmark run.
type RunConfig struct {
	apiBaseURL   string
	username     string
	agentCodeURL string
	model        string
	engine       EngineKind

	itemDelay      time.Duration
	answerTimeout  time.Duration
	requestTimeout time.Duration

	limit      int
	outputPath string
	verbose    bool
}

// Option configures a RunConfig.
type Option func(*RunConfig)

// WithAPIBaseURL sets the evaluation API base URL.
func WithAPIBaseURL(u string) Option {
	return func(c *RunConfig) { c.apiBaseURL = u }
}

// WithUsername sets the username answers are submitted under.
func WithUsername(u string) Option {
	return func(c *RunConfig) { c.username = u }
}

// WithAgentCodeURL sets the public link to the agent's code, embedded
// in the submission payload.
func WithAgentCodeURL(u string) Option {
	return func(c *RunConfig) { c.agentCodeURL = u }
}

// WithModel sets the model name for the LLM engine.
func WithModel(m string) Option {
	return func(c *RunConfig) { c.model = m }
}

// WithEngine selects the agent engine.
func WithEngine(e EngineKind) Option {
	return func(c *RunConfig) { c.engine = e }
}

// WithItemDelay sets the pause between consecutive questions.
func WithItemDelay(d time.Duration) Option {
	return func(c *RunConfig) { c.itemDelay = d }
}

// WithAnswerTimeout sets the per-question agent timeout.
func WithAnswerTimeout(d time.Duration) Option {
	return func(c *RunConfig) { c.answerTimeout = d }
}

// WithRequestTimeout sets the evaluation API request timeout.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *RunConfig) { c.requestTimeout = d }
}

// WithLimit caps how many questions are run (0 means all).
func WithLimit(n int) Option {
	return func(c *RunConfig) { c.limit = n }
}

// WithOutputPath sets where the JSON run report is written.
func WithOutputPath(p string) Option {
	return func(c *RunConfig) { c.outputPath = p }
}

// WithVerbose enables debug logging.
func WithVerbose(v bool) Option {
	return func(c *RunConfig) { c.verbose = v }
}

// New creates a RunConfig with defaults, then applies the options.
func New(opts ...Option) *RunConfig {
	c := &RunConfig{
		apiBaseURL:     DefaultAPIBaseURL,
		model:          DefaultModel,
		engine:         EngineLLM,
		answerTimeout:  DefaultAnswerTimeout,
		requestTimeout: DefaultRequestTimeout,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Accessors.

func (c *RunConfig) APIBaseURL() string            { return c.apiBaseURL }
func (c *RunConfig) Username() string              { return c.username }
func (c *RunConfig) AgentCodeURL() string          { return c.agentCodeURL }
func (c *RunConfig) Model() string                 { return c.model }
func (c *RunConfig) Engine() EngineKind            { return c.engine }
func (c *RunConfig) ItemDelay() time.Duration      { return c.itemDelay }
func (c *RunConfig) AnswerTimeout() time.Duration  { return c.answerTimeout }
func (c *RunConfig) RequestTimeout() time.Duration { return c.requestTimeout }
func (c *RunConfig) Limit() int                    { return c.limit }
func (c *RunConfig) OutputPath() string            { return c.outputPath }
func (c *RunConfig) Verbose() bool                 { return c.verbose }

// Validate reports the first configuration problem found.
func (c *RunConfig) Validate() error {
	if c.apiBaseURL == "" {
		return fmt.Errorf("api base URL must not be empty")
	}
	if strings.TrimSpace(c.username) == "" {
		return fmt.Errorf("username must not be empty")
	}
	switch c.engine {
	case EngineLLM, EngineCopilot, EngineMock:
	default:
		return fmt.Errorf("unknown engine %q (valid: llm, copilot, mock)", c.engine)
	}
	if c.engine == EngineLLM && c.model == "" {
		return fmt.Errorf("model must not be empty for the llm engine")
	}
	return nil
}

// runFile is the YAML shape of a run configuration file.
type runFile struct {
	APIBaseURL   string `yaml:"api_base_url"`
	Username     string `yaml:"username"`
	AgentCodeURL string `yaml:"agent_code_url"`
	Model        string `yaml:"model"`
	Engine       string `yaml:"engine"`

	ItemDelay      string `yaml:"item_delay"`
	AnswerTimeout  string `yaml:"answer_timeout"`
	RequestTimeout string `yaml:"request_timeout"`

	Limit      int    `yaml:"limit"`
	OutputPath string `yaml:"output"`
	Verbose    bool   `yaml:"verbose"`
}

// LoadFile reads a YAML run file and returns the options it sets.
func LoadFile(path string) ([]Option, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading run file: %w", err)
	}

	var rf runFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing run file %s: %w", path, err)
	}

	var opts []Option
	if rf.APIBaseURL != "" {
		opts = append(opts, WithAPIBaseURL(rf.APIBaseURL))
	}
	if rf.Username != "" {
		opts = append(opts, WithUsername(rf.Username))
	}
	if rf.AgentCodeURL != "" {
		opts = append(opts, WithAgentCodeURL(rf.AgentCodeURL))
	}
	if rf.Model != "" {
		opts = append(opts, WithModel(rf.Model))
	}
	if rf.Engine != "" {
		opts = append(opts, WithEngine(EngineKind(rf.Engine)))
	}
	if rf.Limit > 0 {
		opts = append(opts, WithLimit(rf.Limit))
	}
	if rf.OutputPath != "" {
		opts = append(opts, WithOutputPath(rf.OutputPath))
	}
	if rf.Verbose {
		opts = append(opts, WithVerbose(true))
	}

	for _, d := range []struct {
		value string
		opt   func(time.Duration) Option
	}{
		{rf.ItemDelay, WithItemDelay},
		{rf.AnswerTimeout, WithAnswerTimeout},
		{rf.RequestTimeout, WithRequestTimeout},
	} {
		if d.value == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.value)
		if err != nil {
			return nil, fmt.Errorf("parsing duration %q in run file %s: %w", d.value, path, err)
		}
		opts = append(opts, d.opt(parsed))
	}

	return opts, nil
}

// Environment variable names. DEFAULT_API_URL matches what the course
// materials use; the rest are namespaced to this tool.
const (
	EnvAPIBaseURL   = "DEFAULT_API_URL"
	EnvUsername     = "GAIABENCH_USERNAME"
	EnvAgentCodeURL = "GAIABENCH_AGENT_CODE"
	EnvModel        = "GAIABENCH_MODEL"
	EnvEngine       = "GAIABENCH_ENGINE"
	EnvItemDelay    = "GAIABENCH_ITEM_DELAY"
	EnvLimit        = "GAIABENCH_LIMIT"
)

// LoadEnv loads a .env file when present and returns the options the
// environment sets. A missing .env file is not an error.
func LoadEnv() ([]Option, error) {
	_ = godotenv.Load()

	var opts []Option
	if v := os.Getenv(EnvAPIBaseURL); v != "" {
		opts = append(opts, WithAPIBaseURL(v))
	}
	if v := os.Getenv(EnvUsername); v != "" {
		opts = append(opts, WithUsername(v))
	}
	if v := os.Getenv(EnvAgentCodeURL); v != "" {
		opts = append(opts, WithAgentCodeURL(v))
	}
	if v := os.Getenv(EnvModel); v != "" {
		opts = append(opts, WithModel(v))
	}
	if v := os.Getenv(EnvEngine); v != "" {
		opts = append(opts, WithEngine(EngineKind(v)))
	}
	if v := os.Getenv(EnvItemDelay); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", EnvItemDelay, err)
		}
		opts = append(opts, WithItemDelay(d))
	}
	if v := os.Getenv(EnvLimit); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", EnvLimit, err)
		}
		opts = append(opts, WithLimit(n))
	}

	return opts, nil
}
