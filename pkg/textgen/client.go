// Package textgen is a thin client for the text-transformation API. It
// exposes a one-shot Generate call and classifies every failure at this
// boundary so callers never inspect provider error strings.
package textgen

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"

	"github.com/mugline/roster-cli/internal/resilience"
)

// Request is a single text-transformation call.
type Request struct {
	System      string
	Prompt      string
	MaxTokens   int64
	Temperature float64
}

// Client generates one text reply per request.
type Client interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Options configure the SDK-backed client.
type Options struct {
	APIKey string
	Model  string
	// Timeout bounds each Generate call. Default: 60s.
	Timeout time.Duration
}

type sdkClient struct {
	client  sdk.Client
	model   string
	timeout time.Duration
}

// New creates a Client backed by the provider SDK.
func New(opts Options) Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &sdkClient{
		client:  sdk.NewClient(option.WithAPIKey(opts.APIKey)),
		model:   opts.Model,
		timeout: timeout,
	}
}

func (c *sdkClient) Generate(ctx context.Context, req Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := sdk.MessageNewParams{
		Model:       sdk.Model(c.model),
		MaxTokens:   req.MaxTokens,
		Temperature: sdk.Float(req.Temperature),
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(req.Prompt)),
		},
	}
	if req.System != "" {
		params.System = []sdk.TextBlockParam{{Text: req.System}}
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", classify(err)
	}

	for _, block := range msg.Content {
		if block.Type == "text" {
			return strings.TrimSpace(block.Text), nil
		}
	}
	return "", resilience.NewCallError(resilience.CategoryBadResponse,
		eris.New("textgen: reply has no text content"))
}

// classify maps provider and transport failures onto resilience
// categories. This is the only place status codes are interpreted.
func classify(err error) *resilience.CallError {
	var apierr *sdk.Error
	if errors.As(err, &apierr) {
		switch {
		case apierr.StatusCode == 429:
			return resilience.NewCallError(resilience.CategoryRateLimited, err)
		case apierr.StatusCode == 401 || apierr.StatusCode == 403:
			return resilience.NewCallError(resilience.CategoryAuth, err)
		case apierr.StatusCode == 408 || apierr.StatusCode >= 500:
			return resilience.NewCallError(resilience.CategoryUpstream, err)
		default:
			return resilience.NewCallError(resilience.CategoryInvalidRequest, err)
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return resilience.NewCallError(resilience.CategoryTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return resilience.NewCallError(resilience.CategoryTimeout, err)
	}

	return resilience.AsCallError(err)
}
