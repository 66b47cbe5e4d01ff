package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mjimenezh/gaiabench/internal/config"
	"github.com/mjimenezh/gaiabench/internal/models"
	"github.com/mjimenezh/gaiabench/internal/webapi"
	"github.com/mjimenezh/gaiabench/internal/webserver"
)

var (
	serveConfigPath string
	servePort       int
	serveNoBrowser  bool
)

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard for triggering and viewing runs",
		Long: `Start a local web server with a dashboard page. The dashboard has
a single button that runs the full benchmark and submits the answers,
then shows the status line and the per-question results table.

Run configuration is resolved the same way as for the run command,
except that flags other than the server's own are not available; use
--config or environment variables instead.`,
		Args: cobra.NoArgs,
		RunE: serveCommandE,
	}

	cmd.Flags().StringVarP(&serveConfigPath, "config", "c", "", "YAML run configuration file")
	cmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (default: 3000)")
	cmd.Flags().BoolVar(&serveNoBrowser, "no-browser", false, "Don't open the dashboard in a browser")

	return cmd
}

func serveCommandE(cmd *cobra.Command, args []string) error {
	var opts []config.Option

	if serveConfigPath != "" {
		fileOpts, err := config.LoadFile(serveConfigPath)
		if err != nil {
			return err
		}
		opts = append(opts, fileOpts...)
	}

	envOpts, err := config.LoadEnv()
	if err != nil {
		return err
	}
	opts = append(opts, envOpts...)

	cfg := config.New(opts...)
	logger := slog.Default()
	store := webapi.NewRunStore()

	runFn := func(ctx context.Context, runID string) {
		finish := func(state models.RunState, status string, entries []models.ResultLogEntry, receipt *models.SubmissionReceipt) {
			if err := store.Finish(runID, state, status, entries, receipt); err != nil {
				logger.Error("failed to record run result", "run_id", runID, "error", err)
			}
		}

		if err := cfg.Validate(); err != nil {
			finish(models.RunStateFailed, "Configuration error: "+err.Error(), nil, nil)
			return
		}

		outcome, err := executeRun(ctx, cfg, nil, false)
		if err != nil {
			logger.Error("benchmark run failed", "run_id", runID, "error", err)
			finish(models.RunStateFailed, "Run failed: "+err.Error(), nil, nil)
			return
		}
		finish(outcome.State, outcome.Status, outcome.Entries, outcome.Receipt)
	}

	srv, err := webserver.New(webserver.Config{
		Port:      servePort,
		NoBrowser: serveNoBrowser,
		Logger:    logger,
		Store:     store,
		Run:       runFn,
	})
	if err != nil {
		return err
	}
	return srv.ListenAndServe(cmd.Context())
}
