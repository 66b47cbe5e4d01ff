package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mjimenezh/gaiabench/internal/config"
	"github.com/mjimenezh/gaiabench/internal/models"
	"github.com/mjimenezh/gaiabench/internal/reporting"
)

var (
	runConfigPath    string
	runAPIURL        string
	runUsername      string
	runAgentCode     string
	runModel         string
	runEngine        string
	runLimit         int
	runItemDelay     time.Duration
	runAnswerTimeout time.Duration
	runOutputPath    string
	runNoSubmit      bool
	runVerbose       bool
)

func newRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the benchmark and submit all answers",
		Long: `Run the full benchmark: fetch the question list, answer every
question with the configured agent engine, and submit the collected
answers for scoring.

Configuration is resolved from built-in defaults, an optional YAML run
file (--config), environment variables (including a local .env file),
and command-line flags, in that order.`,
		Args: cobra.NoArgs,
		RunE: runCommandE,
	}

	cmd.Flags().StringVarP(&runConfigPath, "config", "c", "", "YAML run configuration file")
	cmd.Flags().StringVar(&runAPIURL, "api-url", "", "Evaluation API base URL")
	cmd.Flags().StringVarP(&runUsername, "username", "u", "", "Username to submit answers under")
	cmd.Flags().StringVar(&runAgentCode, "agent-code", "", "Public link to the agent's code, embedded in the submission")
	cmd.Flags().StringVarP(&runModel, "model", "m", "", "Model for the llm engine")
	cmd.Flags().StringVar(&runEngine, "engine", "", "Agent engine: llm, copilot, or mock")
	cmd.Flags().IntVar(&runLimit, "limit", 0, "Run only the first N questions (0 = all)")
	cmd.Flags().DurationVar(&runItemDelay, "item-delay", 0, "Pause between consecutive questions")
	cmd.Flags().DurationVar(&runAnswerTimeout, "answer-timeout", 0, "Per-question agent timeout")
	cmd.Flags().StringVarP(&runOutputPath, "output", "o", "", "Output JSON file for the run report")
	cmd.Flags().BoolVar(&runNoSubmit, "no-submit", false, "Answer the questions but skip submission")
	cmd.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Verbose output with per-question answers")

	return cmd
}

// resolveRunOptions layers the run configuration: YAML run file first,
// then environment, then explicitly set flags.
func resolveRunOptions(cmd *cobra.Command) ([]config.Option, error) {
	var opts []config.Option

	if runConfigPath != "" {
		fileOpts, err := config.LoadFile(runConfigPath)
		if err != nil {
			return nil, err
		}
		opts = append(opts, fileOpts...)
	}

	envOpts, err := config.LoadEnv()
	if err != nil {
		return nil, err
	}
	opts = append(opts, envOpts...)

	flags := cmd.Flags()
	if flags.Changed("api-url") {
		opts = append(opts, config.WithAPIBaseURL(runAPIURL))
	}
	if flags.Changed("username") {
		opts = append(opts, config.WithUsername(runUsername))
	}
	if flags.Changed("agent-code") {
		opts = append(opts, config.WithAgentCodeURL(runAgentCode))
	}
	if flags.Changed("model") {
		opts = append(opts, config.WithModel(runModel))
	}
	if flags.Changed("engine") {
		opts = append(opts, config.WithEngine(config.EngineKind(runEngine)))
	}
	if flags.Changed("limit") {
		opts = append(opts, config.WithLimit(runLimit))
	}
	if flags.Changed("item-delay") {
		opts = append(opts, config.WithItemDelay(runItemDelay))
	}
	if flags.Changed("answer-timeout") {
		opts = append(opts, config.WithAnswerTimeout(runAnswerTimeout))
	}
	if flags.Changed("output") {
		opts = append(opts, config.WithOutputPath(runOutputPath))
	}
	if flags.Changed("verbose") {
		opts = append(opts, config.WithVerbose(runVerbose))
	}

	return opts, nil
}

func runCommandE(cmd *cobra.Command, args []string) error {
	opts, err := resolveRunOptions(cmd)
	if err != nil {
		return err
	}

	cfg := config.New(opts...)
	if runNoSubmit && cfg.Username() == "" {
		// A dry run never submits, so no username is required.
		cfg = config.New(append(opts, config.WithUsername("dry-run"))...)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Verbose() {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	out := cmd.OutOrStdout()
	reporter := newProgressReporter(out, cfg.Verbose())

	started := time.Now()
	outcome, err := executeRun(cmd.Context(), cfg, reporter.listen, runNoSubmit)
	if err != nil {
		return err
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, outcome.Status)

	if len(outcome.Entries) > 0 {
		fmt.Fprintln(out)
		if err := reporting.WriteTable(out, outcome.Entries); err != nil {
			return err
		}
		fmt.Fprintln(out, reporting.Summary(outcome.Entries))
	}

	if cfg.OutputPath() != "" {
		report := &models.RunReport{
			RunID:      uuid.NewString(),
			State:      outcome.State,
			Status:     outcome.Status,
			Entries:    outcome.Entries,
			Receipt:    outcome.Receipt,
			StartedAt:  started,
			FinishedAt: time.Now(),
		}
		if err := reporting.WriteReport(cfg.OutputPath(), report); err != nil {
			return fmt.Errorf("failed to save run report: %w", err)
		}
		fmt.Fprintf(out, "Run report saved to: %s\n", cfg.OutputPath())
	}

	if outcome.State == models.RunStateFailed {
		return &SubmissionFailureError{Message: "run finished without a successful submission"}
	}
	return nil
}
