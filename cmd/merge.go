package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mugline/roster-cli/internal/csvio"
	"github.com/mugline/roster-cli/internal/linkage"
	"github.com/mugline/roster-cli/internal/store"
)

var mergeFlags struct {
	primary   string
	secondary string
	out       string
	xlsxOut   string
	mode      string
	threshold int
}

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge two roster artifacts by matching names",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		modeStr := mergeFlags.mode
		if modeStr == "" {
			modeStr = cfg.Linkage.Mode
		}
		mode, err := linkage.ParseMode(modeStr)
		if err != nil {
			return err
		}
		threshold := mergeFlags.threshold
		if threshold <= 0 {
			threshold = cfg.Linkage.Threshold
		}

		primary, err := csvio.ReadTable(mergeFlags.primary)
		if err != nil {
			return err
		}
		secondary, err := csvio.ReadTable(mergeFlags.secondary)
		if err != nil {
			return err
		}

		detail := map[string]any{
			"primary":   mergeFlags.primary,
			"secondary": mergeFlags.secondary,
			"mode":      string(mode),
			"threshold": threshold,
		}
		return recordRun(ctx, store.RunKindMerge, detail, func() (any, error) {
			merged, stats, err := linkage.Link(ctx, primary, secondary, linkage.Options{
				Mode:        mode,
				Threshold:   threshold,
				Concurrency: cfg.Linkage.Concurrency,
			})
			if err != nil {
				return nil, err
			}

			if err := csvio.WriteTable(mergeFlags.out, merged); err != nil {
				return stats, err
			}
			if mergeFlags.xlsxOut != "" {
				if err := csvio.ExportXLSX(mergeFlags.xlsxOut, "Records", merged); err != nil {
					return stats, err
				}
			}

			zap.L().Info("merge finished",
				zap.Int("primary", stats.Primary),
				zap.Int("secondary", stats.Secondary),
				zap.Int("exact", stats.ExactMatched),
				zap.Int("fuzzy", stats.FuzzyMatched),
				zap.Int("unmatched", stats.Unmatched),
				zap.Float64("match_rate", stats.MatchRate))
			return stats, nil
		})
	},
}

func init() {
	mergeCmd.Flags().StringVar(&mergeFlags.primary, "primary", "roster_enriched.csv", "primary CSV (row order preserved)")
	mergeCmd.Flags().StringVar(&mergeFlags.secondary, "secondary", "corrections.csv", "secondary CSV merged onto the primary")
	mergeCmd.Flags().StringVar(&mergeFlags.out, "out", "merged.csv", "merged output CSV path")
	mergeCmd.Flags().StringVar(&mergeFlags.xlsxOut, "xlsx", "", "also export the merged set as an XLSX workbook")
	mergeCmd.Flags().StringVar(&mergeFlags.mode, "mode", "", "join or concat (default from config)")
	mergeCmd.Flags().IntVar(&mergeFlags.threshold, "threshold", 0, "fuzzy match threshold 0-100 (default from config)")
	rootCmd.AddCommand(mergeCmd)
}
