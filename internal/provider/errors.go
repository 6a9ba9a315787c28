package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors returned by adapters and the failover chain.
var (
	ErrRateLimit     = errors.New("provider rate limited")
	ErrContextLength = errors.New("context length exceeded")
	ErrProviderDown  = errors.New("provider unavailable")
	ErrAuth          = errors.New("provider authentication failed")
	ErrAllProviders  = errors.New("all providers failed")
	ErrNoProvider    = errors.New("no provider configured")
)

// IsRetryable reports whether another provider, or a later attempt, may
// succeed where this one failed.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrRateLimit) || errors.Is(err, ErrProviderDown)
}

// IsRateLimit reports whether err is or wraps ErrRateLimit.
func IsRateLimit(err error) bool {
	return errors.Is(err, ErrRateLimit)
}

// IsCanceled reports whether err comes from the caller's context.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// StatusError maps an HTTP status returned by a model API to the matching
// sentinel, wrapping cause. name prefixes errors that have no sentinel.
// contextLength marks a 400 caused by an oversized prompt.
func StatusError(name string, status int, contextLength bool, cause error) error {
	switch {
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", ErrRateLimit, cause)
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return fmt.Errorf("%w: %w", ErrAuth, cause)
	case status == http.StatusBadRequest && contextLength:
		return fmt.Errorf("%w: %w", ErrContextLength, cause)
	case status >= http.StatusInternalServerError:
		// Includes Anthropic's 529 overloaded.
		return fmt.Errorf("%w: %w", ErrProviderDown, cause)
	default:
		return fmt.Errorf("%s: HTTP %d: %w", name, status, cause)
	}
}
