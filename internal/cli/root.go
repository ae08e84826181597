// Package cli implements the hnscrape command-line interface.
package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "hnscrape",
	Short: "Compare Hacker News scraping methods",
	Long: `hnscrape collects Hacker News front-page data through three
interchangeable transports (official API, HTML parsing, headless browser),
records per-request telemetry for each, and reports which method to build on.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command.
func Execute() error {
	// Load .env early so environment variables are available everywhere.
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.AddCommand(collectCmd())
	rootCmd.AddCommand(reportCmd())
}
