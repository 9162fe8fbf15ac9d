package enrich

import (
	"context"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/mugline/roster-cli/internal/model"
	"github.com/mugline/roster-cli/internal/resilience"
	"github.com/mugline/roster-cli/pkg/textgen"
)

const (
	summaryMaxTokens  = 120
	summaryTemp       = 0.25
	severityMaxTokens = 10
	severityTemp      = 0.1

	defaultBatchSize = 20
)

// noChargesSummary marks rows that carry no charge descriptions; such
// rows skip the API entirely.
const noChargesSummary = "No charge descriptions listed"

// Options tune an enrichment run.
type Options struct {
	// BatchSize is how many rows are processed between checkpoint saves.
	// Default: 20.
	BatchSize int
	// InputPath is recorded in the checkpoint manifest so a resume
	// against a different input is detectable.
	InputPath string
}

// Result summarizes a run. Records always has one entry per input row,
// in input order, even when Interrupted.
type Result struct {
	Records     []model.EnrichedRecord
	Succeeded   int
	Failed      int
	Skipped     int // rows with no charges, never sent upstream
	Resumed     int // rows restored from the checkpoint
	Interrupted bool
}

// Orchestrator runs the two enrichment passes over a record set,
// sequentially so the upstream rate contract holds.
type Orchestrator struct {
	client textgen.Client
	retry  resilience.Config
	opts   Options
}

// New creates an Orchestrator.
func New(client textgen.Client, retry resilience.Config, opts Options) *Orchestrator {
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	return &Orchestrator{client: client, retry: retry, opts: opts}
}

// Process enriches every record, checkpointing after each batch. When a
// checkpoint matching the input exists, completed rows are restored and
// processing continues where it stopped. On cancellation the partial
// result is checkpointed and returned alongside the error.
func (o *Orchestrator) Process(ctx context.Context, records []model.RawRecord, ckpt *Checkpointer) (Result, error) {
	log := zap.L()
	res := Result{}
	manifest := Manifest{
		RunID:     uuid.NewString(),
		InputPath: o.opts.InputPath,
		Total:     len(records),
	}

	if ckpt != nil {
		m, rows, err := ckpt.Load()
		switch {
		case err != nil:
			log.Warn("checkpoint unusable, starting fresh", zap.Error(err))
		case m != nil && m.InputPath == o.opts.InputPath && m.Rows <= len(records):
			res.Records = rows
			res.Resumed = len(rows)
			manifest.RunID = m.RunID
			log.Info("resuming from checkpoint",
				zap.String("run_id", m.RunID),
				zap.Int("rows", m.Rows),
				zap.Int("total", len(records)))
		case m != nil:
			log.Warn("checkpoint does not match input, starting fresh",
				zap.String("checkpoint_input", m.InputPath),
				zap.Int("checkpoint_rows", m.Rows))
		}
	}

	save := func() {
		if ckpt == nil {
			return
		}
		if err := ckpt.Save(manifest, res.Records); err != nil {
			log.Error("checkpoint save failed", zap.Error(err))
		}
	}

	for i := len(res.Records); i < len(records); i++ {
		if ctx.Err() != nil {
			save()
			res.Interrupted = true
			return res, eris.Wrap(ctx.Err(), "enrich: interrupted")
		}

		rec := o.enrichRecord(ctx, records[i])
		res.Records = append(res.Records, rec)

		switch {
		case model.IsErrorMarked(rec.Summary):
			res.Failed++
		case rec.Summary == noChargesSummary:
			res.Skipped++
		default:
			res.Succeeded++
		}
		log.Info("record enriched",
			zap.Int("row", i+1),
			zap.Int("total", len(records)),
			zap.String("severity", rec.Severity))

		if (i+1)%o.opts.BatchSize == 0 {
			save()
		}
	}

	save()
	return res, nil
}

// enrichRecord runs both passes for one record. Failures mark the output
// cells; the row is always produced.
func (o *Orchestrator) enrichRecord(ctx context.Context, rec model.RawRecord) model.EnrichedRecord {
	out := model.EnrichedRecord{RawRecord: rec}

	details := chargeDetails(rec)
	if len(details) == 0 {
		out.Summary = noChargesSummary
		out.Severity = model.SeverityUnknown
		return out
	}

	summary, err := resilience.Call(ctx, o.summaryRetry(), func(ctx context.Context) (string, error) {
		return o.client.Generate(ctx, textgen.Request{
			System:      summarySystem,
			Prompt:      summaryPrompt(details),
			MaxTokens:   summaryMaxTokens,
			Temperature: summaryTemp,
		})
	})
	if err != nil {
		out.Summary = model.ErrorMarker(string(resilience.AsCallError(err).Category))
		out.Severity = model.SeverityError
		return out
	}
	out.Summary = summary
	out.Severity = o.classifySeverity(ctx, summary)
	return out
}

// classifySeverity is a pure function of the summary text: empty and
// error-marked summaries short-circuit to sentinels without a call.
func (o *Orchestrator) classifySeverity(ctx context.Context, summary string) string {
	if model.IsErrorMarked(summary) {
		return model.SeverityError
	}
	if summary == "" || summary == noChargesSummary {
		return model.SeverityUnknown
	}

	reply, err := resilience.Call(ctx, o.severityRetry(), func(ctx context.Context) (string, error) {
		return o.client.Generate(ctx, textgen.Request{
			System:      severitySystem,
			Prompt:      severityPrompt(summary),
			MaxTokens:   severityMaxTokens,
			Temperature: severityTemp,
		})
	})
	if err != nil {
		return model.SeverityError
	}
	return model.NormalizeSeverity(reply)
}

func (o *Orchestrator) summaryRetry() resilience.Config {
	cfg := o.retry
	cfg.OnRetry = resilience.RetryLogger("enrich.summary")
	return cfg
}

func (o *Orchestrator) severityRetry() resilience.Config {
	cfg := o.retry
	cfg.OnRetry = resilience.RetryLogger("enrich.severity")
	return cfg
}
