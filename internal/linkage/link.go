package linkage

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mugline/roster-cli/internal/csvio"
)

// Mode selects what the merged output contains.
type Mode string

const (
	// ModeJoin keeps one row per primary record, matched or not.
	ModeJoin Mode = "join"
	// ModeConcat is ModeJoin plus the secondary rows nothing matched,
	// appended after the primary rows.
	ModeConcat Mode = "concat"
)

// ParseMode validates a mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeJoin, ModeConcat:
		return Mode(s), nil
	}
	return "", eris.Errorf("linkage: unknown mode %q", s)
}

// Options control a Link run.
type Options struct {
	Mode Mode
	// Threshold is the minimum fuzzy Ratio for a match. Default: 85.
	Threshold int
	// NameColumn must exist in both tables. Default: "Name".
	NameColumn string
	// Concurrency bounds the fuzzy pass workers. Default: 4.
	Concurrency int
	// SecondarySuffix disambiguates colliding column names. Default: "_doc".
	SecondarySuffix string
}

func (o Options) withDefaults() Options {
	if o.Mode == "" {
		o.Mode = ModeJoin
	}
	if o.Threshold <= 0 {
		o.Threshold = 85
	}
	if o.NameColumn == "" {
		o.NameColumn = "Name"
	}
	if o.Concurrency <= 0 {
		o.Concurrency = 4
	}
	if o.SecondarySuffix == "" {
		o.SecondarySuffix = "_doc"
	}
	return o
}

// Stats summarizes a Link run.
type Stats struct {
	Primary      int
	Secondary    int
	ExactMatched int
	FuzzyMatched int
	Unmatched    int
	// MatchRate is matched primary rows as a percentage of all primary rows.
	MatchRate float64
}

// Link merges secondary onto primary by name. Exact matches on
// normalized names come first; remaining primary rows go through the
// fuzzy pass. Output row order follows the primary table regardless of
// how matches were found.
func Link(ctx context.Context, primary, secondary *csvio.Table, opts Options) (*csvio.Table, Stats, error) {
	opts = opts.withDefaults()

	pName := primary.ColumnIndex(opts.NameColumn)
	sName := secondary.ColumnIndex(opts.NameColumn)
	if pName < 0 || sName < 0 {
		return nil, Stats{}, eris.Errorf("linkage: column %q missing from input", opts.NameColumn)
	}

	stats := Stats{Primary: len(primary.Rows), Secondary: len(secondary.Rows)}

	secondaryName := func(i int) string {
		row := secondary.Rows[i]
		if sName < len(row) {
			return row[sName]
		}
		return ""
	}
	primaryName := func(i int) string {
		row := primary.Rows[i]
		if pName < len(row) {
			return row[pName]
		}
		return ""
	}

	// Exact pass: first secondary row wins a normalized name.
	exact := make(map[string]int, len(secondary.Rows))
	for i := range secondary.Rows {
		key := NormalizeName(secondaryName(i))
		if key == "" {
			continue
		}
		if _, seen := exact[key]; !seen {
			exact[key] = i
		}
	}

	matches := make([]int, len(primary.Rows))
	var unmatched []int
	for i := range primary.Rows {
		matches[i] = -1
		if key := NormalizeName(primaryName(i)); key != "" {
			if j, ok := exact[key]; ok {
				matches[i] = j
				stats.ExactMatched++
				continue
			}
		}
		unmatched = append(unmatched, i)
	}

	// Fuzzy pass over what the exact pass left. Results land in matches
	// by index, so output order never depends on scheduling.
	secondaryVariants := make([][]string, len(secondary.Rows))
	for i := range secondary.Rows {
		secondaryVariants[i] = NameVariants(secondaryName(i))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for _, i := range unmatched {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			variants := NameVariants(primaryName(i))
			if len(variants) == 0 {
				return nil
			}

			best, bestScore := -1, 0
			for j := range secondary.Rows {
				score := bestRatio(variants, secondaryVariants[j])
				if score >= opts.Threshold && score > bestScore {
					best, bestScore = j, score
				}
			}
			if best >= 0 {
				matches[i] = best
				zap.L().Info("fuzzy match",
					zap.String("primary", primaryName(i)),
					zap.String("secondary", secondaryName(best)),
					zap.Int("score", bestScore))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, stats, eris.Wrap(err, "linkage: fuzzy pass")
	}

	for _, i := range unmatched {
		if matches[i] >= 0 {
			stats.FuzzyMatched++
		} else {
			stats.Unmatched++
		}
	}
	used := make(map[int]bool, len(primary.Rows))
	for _, j := range matches {
		if j >= 0 {
			used[j] = true
		}
	}
	if stats.Primary > 0 {
		stats.MatchRate = float64(stats.ExactMatched+stats.FuzzyMatched) / float64(stats.Primary) * 100
	}

	out := buildMerged(primary, secondary, matches, used, opts)
	return out, stats, nil
}

func buildMerged(primary, secondary *csvio.Table, matches []int, used map[int]bool, opts Options) *csvio.Table {
	columns := append([]string{}, primary.Columns...)
	taken := make(map[string]bool, len(columns))
	for _, c := range columns {
		taken[c] = true
	}
	for _, c := range secondary.Columns {
		if taken[c] {
			c += opts.SecondarySuffix
		}
		columns = append(columns, c)
	}

	pad := func(row []string, width int) []string {
		out := make([]string, width)
		copy(out, row)
		return out
	}

	rows := make([][]string, 0, len(primary.Rows))
	for i, row := range primary.Rows {
		merged := pad(row, len(primary.Columns))
		if j := matches[i]; j >= 0 {
			merged = append(merged, pad(secondary.Rows[j], len(secondary.Columns))...)
		} else {
			merged = append(merged, make([]string, len(secondary.Columns))...)
		}
		rows = append(rows, merged)
	}

	if opts.Mode == ModeConcat {
		for j, row := range secondary.Rows {
			if used[j] {
				continue
			}
			merged := make([]string, len(primary.Columns))
			merged = append(merged, pad(row, len(secondary.Columns))...)
			rows = append(rows, merged)
		}
	}

	return &csvio.Table{Columns: columns, Rows: rows}
}
