package cli

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"hnscrape/internal/config"
	"hnscrape/internal/domain"
	"hnscrape/internal/runner"
	"hnscrape/internal/scrape"
	"hnscrape/internal/storage"
)

func collectCmd() *cobra.Command {
	var (
		limit       int
		skipBrowser bool
		dataDir     string
	)

	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Run the scraper variants and persist their artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return fmt.Errorf("--limit must be positive, got %d", limit)
			}
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if dataDir != "" {
				cfg.DataDir = dataDir
			}

			r := runner.New(scrape.Config{
				APIBaseURL:   cfg.APIBaseURL,
				FrontPageURL: cfg.FrontPageURL,
				Timeout:      cfg.Timeout(),
				Throttle:     cfg.Throttle(),
				Workers:      cfg.APIWorkers,
			}, storage.NewStore(cfg.DataDir))

			_, summary, err := r.RunAll(cmd.Context(), limit, !skipBrowser)
			if err != nil {
				return fmt.Errorf("collection batch: %w", err)
			}
			renderSummary(summary)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of posts to collect per scraper")
	cmd.Flags().BoolVar(&skipBrowser, "skip-browser", false,
		"skip the headless-browser variant (for environments without Chrome)")
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "override the data directory")
	return cmd
}

func renderSummary(summary domain.RunSummary) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Method", "Records", "Skipped", "Outcome"})
	for _, method := range domain.Methods {
		s, ok := summary[method]
		if !ok {
			continue
		}
		outcome := "ok"
		if s.Failed {
			outcome = "failed: " + s.Err
		}
		t.AppendRow(table.Row{method, s.Records, s.Skipped, outcome})
	}
	t.Render()
}
