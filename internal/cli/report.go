package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"hnscrape/internal/config"
	"hnscrape/internal/report"
	"hnscrape/internal/storage"
)

func reportCmd() *cobra.Command {
	var (
		out     string
		dataDir string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate the method-comparison report from persisted artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if dataDir != "" {
				cfg.DataDir = dataDir
			}
			if out != "" {
				cfg.ReportPath = out
			}

			gen := report.NewGenerator(storage.NewStore(cfg.DataDir), os.Stdout)
			if err := gen.Generate(cfg.ReportPath); err != nil {
				return fmt.Errorf("generate report: %w", err)
			}
			fmt.Printf("Report saved to %s\n", cfg.ReportPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "report output path")
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "override the data directory")
	return cmd
}
