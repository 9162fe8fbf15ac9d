// Package walker iterates an identifier range against a roster site,
// fetching each detail page politely and streaming extracted records to a
// sink. One request is in flight at a time and a fixed spacing separates
// attempts; both are part of the contract with the upstream site, not a
// tuning knob.
package walker

import (
	"context"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/mugline/roster-cli/internal/extract"
)

// maxBodyBytes caps how much of a detail page is read.
const maxBodyBytes = 512 * 1024

// PageExtractor turns a parsed page into one output row. Implementations
// decide validity and the column layout of the row they emit.
type PageExtractor interface {
	// Header is the column order of emitted rows.
	Header() []string
	// Extract returns the row for a valid page, or ok=false when the
	// page is not a populated record (a normal outcome, not an error).
	Extract(doc *extract.Node, id string) (row []string, ok bool)
}

// Sink receives extracted rows. Rows are appended immediately so partial
// progress survives a crash mid-range.
type Sink interface {
	Append(row []string) error
}

// Options configure a walk.
type Options struct {
	// BaseURL is the templated detail URL; the identifier is appended.
	BaseURL string
	// IDPrefix is prepended to the numeric identifier (some sources use
	// letter-prefixed keys).
	IDPrefix  string
	UserAgent string
	// Timeout bounds each fetch.
	Timeout time.Duration
	// Delay is the minimum spacing between consecutive fetch attempts,
	// successful or not.
	Delay time.Duration
	// Client overrides the HTTP client, mainly for tests.
	Client *http.Client
}

// Stats summarizes one walk.
type Stats struct {
	Attempted int
	Missing   int // non-2xx responses
	Failed    int // transport errors
	Invalid   int // fetched but not a record page
	Extracted int
}

// Walker drives one source.
type Walker struct {
	ex      PageExtractor
	opts    Options
	client  *http.Client
	limiter *rate.Limiter
}

// New creates a Walker. Delay must be positive; the limiter it feeds is
// shared across all requests the walker makes.
func New(ex PageExtractor, opts Options) *Walker {
	client := opts.Client
	if client == nil {
		client = &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{Timeout: opts.Timeout}).DialContext,
			},
		}
	}
	return &Walker{
		ex:      ex,
		opts:    opts,
		client:  client,
		limiter: rate.NewLimiter(rate.Every(opts.Delay), 1),
	}
}

// Walk fetches every identifier in [start, end] ascending, appending
// valid records to the sink as they are found. Fetch failures and absent
// records are logged and skipped; only sink errors and cancellation abort
// the range.
func (w *Walker) Walk(ctx context.Context, start, end int64, sink Sink) (Stats, error) {
	log := zap.L().With(zap.String("base_url", w.opts.BaseURL))
	var stats Stats

	for id := start; id <= end; id++ {
		if err := w.limiter.Wait(ctx); err != nil {
			return stats, eris.Wrap(err, "walker: canceled")
		}

		key := w.opts.IDPrefix + strconv.FormatInt(id, 10)
		stats.Attempted++

		body, status, err := w.fetch(ctx, key)
		if err != nil {
			if ctx.Err() != nil {
				return stats, eris.Wrap(ctx.Err(), "walker: canceled")
			}
			stats.Failed++
			log.Warn("fetch failed", zap.String("id", key), zap.Error(err))
			continue
		}
		if status != http.StatusOK {
			stats.Missing++
			log.Info("no record", zap.String("id", key), zap.Int("status", status))
			continue
		}

		row, ok := w.ex.Extract(extract.Parse(string(body)), key)
		if !ok {
			stats.Invalid++
			log.Info("not a record page", zap.String("id", key))
			continue
		}

		if err := sink.Append(row); err != nil {
			return stats, eris.Wrap(err, "walker: append record")
		}
		stats.Extracted++
		log.Info("record extracted", zap.String("id", key))
	}

	return stats, nil
}

func (w *Walker) fetch(ctx context.Context, id string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.opts.BaseURL+id, nil)
	if err != nil {
		return nil, 0, eris.Wrap(err, "walker: create request")
	}
	if w.opts.UserAgent != "" {
		req.Header.Set("User-Agent", w.opts.UserAgent)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, 0, eris.Wrap(err, "walker: fetch")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, 0, eris.Wrap(err, "walker: read body")
	}
	return body, resp.StatusCode, nil
}
