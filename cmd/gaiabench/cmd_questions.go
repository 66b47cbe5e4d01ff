package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mjimenezh/gaiabench/internal/config"
	"github.com/mjimenezh/gaiabench/internal/evalapi"
)

var (
	questionsAPIURL string
	questionsLimit  int
	questionsJSON   bool
)

func newQuestionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "questions",
		Short: "Fetch and list the benchmark questions",
		Long: `Fetch the question list from the evaluation API and print it,
without running the agent. Useful for checking connectivity and for
eyeballing what a run would cover.`,
		Args: cobra.NoArgs,
		RunE: questionsCommandE,
	}

	cmd.Flags().StringVar(&questionsAPIURL, "api-url", "", "Evaluation API base URL")
	cmd.Flags().IntVar(&questionsLimit, "limit", 0, "Show only the first N questions (0 = all)")
	cmd.Flags().BoolVar(&questionsJSON, "json", false, "Print the raw question list as JSON")

	return cmd
}

func questionsCommandE(cmd *cobra.Command, args []string) error {
	opts, err := config.LoadEnv()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("api-url") {
		opts = append(opts, config.WithAPIBaseURL(questionsAPIURL))
	}
	cfg := config.New(opts...)

	client := evalapi.New(cfg.APIBaseURL(), evalapi.WithTimeout(cfg.RequestTimeout()))
	questions, err := client.Questions(cmd.Context())
	if err != nil {
		return fmt.Errorf("fetching questions: %w", err)
	}

	total := len(questions)
	if questionsLimit > 0 && total > questionsLimit {
		questions = questions[:questionsLimit]
	}

	out := cmd.OutOrStdout()

	if questionsJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(questions)
	}

	fmt.Fprintf(out, "Fetched %d question(s).\n\n", total)
	for i, q := range questions {
		marker := ""
		if q.FileName != "" {
			marker = fmt.Sprintf(" [file: %s]", q.FileName)
		}
		fmt.Fprintf(out, "%3d. %s%s\n     %s\n", i+1, q.TaskID, marker, firstLine(q.Question))
	}
	return nil
}

// firstLine keeps listings one line per question.
func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " ..."
	}
	return s
}
