package anthropic

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	sdkanthropic "github.com/anthropics/anthropic-sdk-go"

	"github.com/flemzord/sloop/internal/provider"
)

// mapError converts an SDK error into the matching provider sentinel.
// Context errors pass through unchanged so the failover chain does not
// treat a cancelled run as a provider outage.
func mapError(err error) error {
	if err == nil || provider.IsCanceled(err) {
		return err
	}

	var apiErr *sdkanthropic.Error
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("anthropic: %w", err)
	}
	return provider.StatusError("anthropic", apiErr.StatusCode, isContextLength(apiErr.RawJSON()), err)
}

// contextLengthHints are the message fragments of an oversized-prompt 400.
var contextLengthHints = []string{"context length", "too many tokens", "token limit", "prompt is too long"}

// isContextLength reports whether an error body describes an oversized
// prompt. Only invalid_request_error bodies qualify; unparsable bodies fall
// back to a substring match.
func isContextLength(raw string) bool {
	var body struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	msg := raw
	if err := json.Unmarshal([]byte(raw), &body); err == nil {
		if body.Error.Type != "invalid_request_error" {
			return false
		}
		msg = body.Error.Message
	}

	msg = strings.ToLower(msg)
	for _, hint := range contextLengthHints {
		if strings.Contains(msg, hint) {
			return true
		}
	}
	return false
}
