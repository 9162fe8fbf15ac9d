package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mugline/roster-cli/internal/store"
)

var runsFlags struct {
	kind   string
	status string
	limit  int
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded pipeline runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		runs, err := s.ListRuns(ctx, store.RunFilter{
			Kind:   store.RunKind(runsFlags.kind),
			Status: store.RunStatus(runsFlags.status),
			Limit:  runsFlags.limit,
		})
		if err != nil {
			return err
		}

		for _, r := range runs {
			line := fmt.Sprintf("%s  %-7s %-8s %s", r.CreatedAt.Format("2006-01-02 15:04:05"), r.Kind, r.Status, r.ID)
			if r.Error != "" {
				line += "  error: " + r.Error
			}
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
		if len(runs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no runs recorded")
		}
		return nil
	},
}

func init() {
	runsCmd.Flags().StringVar(&runsFlags.kind, "kind", "", "filter by kind: scrape, enrich, merge")
	runsCmd.Flags().StringVar(&runsFlags.status, "status", "", "filter by status: running, complete, failed")
	runsCmd.Flags().IntVar(&runsFlags.limit, "limit", 20, "max runs to list")
	rootCmd.AddCommand(runsCmd)
}
