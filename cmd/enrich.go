package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mugline/roster-cli/internal/csvio"
	"github.com/mugline/roster-cli/internal/enrich"
	"github.com/mugline/roster-cli/internal/resilience"
	"github.com/mugline/roster-cli/internal/store"
	"github.com/mugline/roster-cli/pkg/textgen"
)

var enrichFlags struct {
	input     string
	output    string
	batchSize int
	maxRows   int
	offline   bool
}

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Add plain-language summaries and severity labels to scraped records",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		records, err := csvio.ReadRawRecords(enrichFlags.input)
		if err != nil {
			return err
		}
		if enrichFlags.maxRows > 0 && enrichFlags.maxRows < len(records) {
			records = records[:enrichFlags.maxRows]
		}

		var client textgen.Client
		if enrichFlags.offline {
			client = &textgen.Stub{}
		} else {
			if cfg.Anthropic.Key == "" {
				return eris.New("anthropic key not configured (set ROSTER_ANTHROPIC_KEY)")
			}
			client = textgen.New(textgen.Options{
				APIKey:  cfg.Anthropic.Key,
				Model:   cfg.Anthropic.Model,
				Timeout: time.Duration(cfg.Anthropic.TimeoutSecs) * time.Second,
			})
		}

		batchSize := enrichFlags.batchSize
		if batchSize <= 0 {
			batchSize = cfg.Enrich.BatchSize
		}
		orch := enrich.New(client,
			resilience.Config{MaxAttempts: cfg.Enrich.MaxAttempts},
			enrich.Options{BatchSize: batchSize, InputPath: enrichFlags.input})
		ckpt := enrich.NewCheckpointer(enrichFlags.output)

		detail := map[string]any{
			"input":      enrichFlags.input,
			"output":     enrichFlags.output,
			"rows":       len(records),
			"batch_size": batchSize,
		}
		return recordRun(ctx, store.RunKindEnrich, detail, func() (any, error) {
			res, err := orch.Process(ctx, records, ckpt)
			stats := map[string]any{
				"succeeded":   res.Succeeded,
				"failed":      res.Failed,
				"skipped":     res.Skipped,
				"resumed":     res.Resumed,
				"interrupted": res.Interrupted,
			}
			if err != nil {
				// Interrupted runs keep a partial artifact next to the
				// checkpoint so progress is inspectable before resume.
				partial := enrichFlags.output + ".partial.csv"
				if werr := csvio.WriteEnriched(partial, res.Records); werr != nil {
					zap.L().Error("write partial output failed", zap.Error(werr))
				} else {
					zap.L().Warn("run interrupted, partial output written",
						zap.String("path", partial),
						zap.Int("rows", len(res.Records)))
				}
				return stats, err
			}

			if err := csvio.WriteEnriched(enrichFlags.output, res.Records); err != nil {
				return stats, err
			}
			if err := ckpt.Clear(); err != nil {
				zap.L().Warn("checkpoint cleanup failed", zap.Error(err))
			}
			zap.L().Info("enrich finished",
				zap.Int("rows", len(res.Records)),
				zap.Int("succeeded", res.Succeeded),
				zap.Int("failed", res.Failed),
				zap.Int("skipped", res.Skipped),
				zap.Int("resumed", res.Resumed))
			return stats, nil
		})
	},
}

func init() {
	enrichCmd.Flags().StringVar(&enrichFlags.input, "input", "roster.csv", "scraped CSV to enrich")
	enrichCmd.Flags().StringVar(&enrichFlags.output, "output", "roster_enriched.csv", "enriched output CSV path")
	enrichCmd.Flags().IntVar(&enrichFlags.batchSize, "batch-size", 0, "rows per checkpoint (default from config)")
	enrichCmd.Flags().IntVar(&enrichFlags.maxRows, "max-rows", 0, "cap input rows, for trial runs")
	enrichCmd.Flags().BoolVar(&enrichFlags.offline, "offline", false, "use a no-op client instead of the API")
	rootCmd.AddCommand(enrichCmd)
}
