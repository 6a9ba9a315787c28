package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestSentinelErrorsAreDistinct(t *testing.T) {
	t.Parallel()

	sentinels := []error{
		ErrRateLimit,
		ErrContextLength,
		ErrProviderDown,
		ErrAuth,
		ErrAllProviders,
		ErrNoProvider,
	}

	for i, a := range sentinels {
		if a.Error() == "" {
			t.Fatalf("sentinel %d has an empty message", i)
		}
		for j, b := range sentinels {
			if i != j && errors.Is(a, b) {
				t.Fatalf("sentinel errors must be distinct: %v and %v", a, b)
			}
		}
	}
}

func TestIsRetryable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"rate limit", fmt.Errorf("x: %w", ErrRateLimit), true},
		{"down", ErrProviderDown, true},
		{"context length", ErrContextLength, false},
		{"auth", ErrAuth, false},
		{"canceled", context.Canceled, false},
		{"plain", errors.New("boom"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestIsCanceled(t *testing.T) {
	t.Parallel()

	if !IsCanceled(fmt.Errorf("call: %w", context.DeadlineExceeded)) {
		t.Error("wrapped deadline should count as canceled")
	}
	if IsCanceled(ErrProviderDown) {
		t.Error("ErrProviderDown is not a cancellation")
	}
}

func TestStatusError(t *testing.T) {
	t.Parallel()

	cause := errors.New("upstream said no")
	tests := []struct {
		name          string
		status        int
		contextLength bool
		want          error
	}{
		{"rate limit", http.StatusTooManyRequests, false, ErrRateLimit},
		{"unauthorized", http.StatusUnauthorized, false, ErrAuth},
		{"forbidden", http.StatusForbidden, false, ErrAuth},
		{"context length", http.StatusBadRequest, true, ErrContextLength},
		{"server error", http.StatusBadGateway, false, ErrProviderDown},
		{"overloaded", 529, false, ErrProviderDown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := StatusError("test", tt.status, tt.contextLength, cause)
			if !errors.Is(err, tt.want) || !errors.Is(err, cause) {
				t.Errorf("StatusError = %v, want %v wrapping cause", err, tt.want)
			}
		})
	}

	err := StatusError("test", http.StatusBadRequest, false, cause)
	if IsRetryable(err) || errors.Is(err, ErrContextLength) {
		t.Errorf("plain 400 should not classify: %v", err)
	}
	if !strings.HasPrefix(err.Error(), "test: HTTP 400") {
		t.Errorf("message = %q", err.Error())
	}
}
