package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNew_DefaultValues(t *testing.T) {
	cfg := New()

	require.Equal(t, DefaultAPIBaseURL, cfg.APIBaseURL())
	require.Equal(t, DefaultModel, cfg.Model())
	require.Equal(t, EngineLLM, cfg.Engine())
	require.Equal(t, DefaultAnswerTimeout, cfg.AnswerTimeout())
	require.Equal(t, DefaultRequestTimeout, cfg.RequestTimeout())
	require.Zero(t, cfg.ItemDelay())
	require.Zero(t, cfg.Limit())
	require.Empty(t, cfg.Username())
	require.False(t, cfg.Verbose())
}

func TestNew_AppliesFunctionalOptions(t *testing.T) {
	cfg := New(
		WithAPIBaseURL("https://scoring.example.com"),
		WithUsername("alice"),
		WithAgentCodeURL("https://example.com/repo"),
		WithModel("test-model"),
		WithEngine(EngineMock),
		WithItemDelay(2*time.Second),
		WithLimit(5),
		WithOutputPath("report.json"),
		WithVerbose(true),
	)

	require.Equal(t, "https://scoring.example.com", cfg.APIBaseURL())
	require.Equal(t, "alice", cfg.Username())
	require.Equal(t, "https://example.com/repo", cfg.AgentCodeURL())
	require.Equal(t, "test-model", cfg.Model())
	require.Equal(t, EngineMock, cfg.Engine())
	require.Equal(t, 2*time.Second, cfg.ItemDelay())
	require.Equal(t, 5, cfg.Limit())
	require.Equal(t, "report.json", cfg.OutputPath())
	require.True(t, cfg.Verbose())
}

func TestOptionOrder_LastOptionWins(t *testing.T) {
	cfg := New(WithUsername("first"), WithUsername("second"))
	require.Equal(t, "second", cfg.Username())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    []Option
		wantErr string
	}{
		{
			name: "valid",
			opts: []Option{WithUsername("alice")},
		},
		{
			name:    "missing username",
			opts:    nil,
			wantErr: "username",
		},
		{
			name:    "whitespace-only username",
			opts:    []Option{WithUsername("   ")},
			wantErr: "username",
		},
		{
			name:    "missing api base url",
			opts:    []Option{WithUsername("alice"), WithAPIBaseURL("")},
			wantErr: "api base URL",
		},
		{
			name:    "unknown engine",
			opts:    []Option{WithUsername("alice"), WithEngine("quantum")},
			wantErr: "unknown engine",
		},
		{
			name:    "llm engine without model",
			opts:    []Option{WithUsername("alice"), WithModel("")},
			wantErr: "model",
		},
		{
			name: "mock engine without model is fine",
			opts: []Option{WithUsername("alice"), WithModel(""), WithEngine(EngineMock)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.opts...).Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api_base_url: https://scoring.example.com
username: alice
agent_code_url: https://example.com/repo
model: test-model
engine: mock
item_delay: 35s
answer_timeout: 2m
limit: 3
output: report.json
verbose: true
`), 0o644))

	opts, err := LoadFile(path)
	require.NoError(t, err)

	cfg := New(opts...)
	require.Equal(t, "https://scoring.example.com", cfg.APIBaseURL())
	require.Equal(t, "alice", cfg.Username())
	require.Equal(t, "test-model", cfg.Model())
	require.Equal(t, EngineMock, cfg.Engine())
	require.Equal(t, 35*time.Second, cfg.ItemDelay())
	require.Equal(t, 2*time.Minute, cfg.AnswerTimeout())
	require.Equal(t, 3, cfg.Limit())
	require.Equal(t, "report.json", cfg.OutputPath())
	require.True(t, cfg.Verbose())
}

func TestLoadFile_PartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte("username: alice\n"), 0o644))

	opts, err := LoadFile(path)
	require.NoError(t, err)

	cfg := New(opts...)
	require.Equal(t, "alice", cfg.Username())
	require.Equal(t, DefaultAPIBaseURL, cfg.APIBaseURL())
	require.Equal(t, EngineLLM, cfg.Engine())
}

func TestLoadFile_BadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte("item_delay: soon\n"), 0o644))

	_, err := LoadFile(path)
	require.ErrorContains(t, err, "parsing duration")
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.ErrorContains(t, err, "reading run file")
}

func TestLoadEnv(t *testing.T) {
	t.Setenv(EnvAPIBaseURL, "https://scoring.example.com")
	t.Setenv(EnvUsername, "alice")
	t.Setenv(EnvEngine, "copilot")
	t.Setenv(EnvItemDelay, "10s")
	t.Setenv(EnvLimit, "7")

	opts, err := LoadEnv()
	require.NoError(t, err)

	cfg := New(opts...)
	require.Equal(t, "https://scoring.example.com", cfg.APIBaseURL())
	require.Equal(t, "alice", cfg.Username())
	require.Equal(t, EngineCopilot, cfg.Engine())
	require.Equal(t, 10*time.Second, cfg.ItemDelay())
	require.Equal(t, 7, cfg.Limit())
}

func TestLoadEnv_BadLimit(t *testing.T) {
	t.Setenv(EnvLimit, "many")

	_, err := LoadEnv()
	require.ErrorContains(t, err, EnvLimit)
}
