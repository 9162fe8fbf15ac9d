package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mugline/roster-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "roster-cli",
	Short: "Custody roster scraping and enrichment pipeline",
	Long:  "Walks public roster sites for detail pages, rewrites charges into plain-language summaries with severity labels, and merges the two sources into one record set.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
