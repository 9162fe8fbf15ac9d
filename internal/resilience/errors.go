// Package resilience wraps calls to flaky upstreams with typed failure
// classification and deterministic exponential backoff. Callers branch on
// the error's Category, never on message text.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
)

// Category names one class of upstream failure. The set is closed:
// whether a category is retryable is decided here, once.
type Category string

const (
	// CategoryRateLimited is a 429 or an explicit throttle signal.
	CategoryRateLimited Category = "rate_limited"
	// CategoryTimeout is a deadline expiring before a response arrived.
	CategoryTimeout Category = "timeout"
	// CategoryUpstream is a 5xx or other server-side fault.
	CategoryUpstream Category = "upstream"
	// CategoryNetwork is a transport-level failure (reset, refused, DNS).
	CategoryNetwork Category = "network"
	// CategoryInvalidRequest is a request the upstream rejected; retrying
	// the same request cannot succeed.
	CategoryInvalidRequest Category = "invalid_request"
	// CategoryAuth is a credential problem.
	CategoryAuth Category = "auth"
	// CategoryBadResponse is a reply that arrived but could not be used.
	CategoryBadResponse Category = "bad_response"
)

// Retryable reports whether failures in this category are worth retrying.
func (c Category) Retryable() bool {
	switch c {
	case CategoryRateLimited, CategoryTimeout, CategoryUpstream, CategoryNetwork:
		return true
	default:
		return false
	}
}

// CallError is a classified upstream failure.
type CallError struct {
	Category Category
	Err      error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("%s: %v", e.Category, e.Err)
}

func (e *CallError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the call may be attempted again.
func (e *CallError) Retryable() bool {
	return e.Category.Retryable()
}

// NewCallError classifies err under cat.
func NewCallError(cat Category, err error) *CallError {
	return &CallError{Category: cat, Err: err}
}

// AsCallError returns the CallError in err's chain, classifying
// unrecognized errors on the way: context deadlines become timeouts,
// transport faults become network errors, and anything else is a fatal
// bad response.
func AsCallError(err error) *CallError {
	var ce *CallError
	if errors.As(err, &ce) {
		return ce
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return NewCallError(CategoryTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return NewCallError(CategoryTimeout, err)
		}
		return NewCallError(CategoryNetwork, err)
	}
	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) ||
		errors.Is(err, syscall.EPIPE) {
		return NewCallError(CategoryNetwork, err)
	}

	return NewCallError(CategoryBadResponse, err)
}

// Retryable classifies err and reports whether a retry makes sense.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	return AsCallError(err).Retryable()
}
