package openai

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	sdkopenai "github.com/openai/openai-go"

	"github.com/flemzord/sloop/internal/provider"
)

// mapError converts an SDK error into the matching provider sentinel.
// Context errors pass through unchanged.
func mapError(err error) error {
	if err == nil || provider.IsCanceled(err) {
		return err
	}

	var apiErr *sdkopenai.Error
	if errors.As(err, &apiErr) {
		contextLength := apiErr.StatusCode == http.StatusBadRequest && isContextLength(apiErr)
		return provider.StatusError("openai", apiErr.StatusCode, contextLength, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %w", provider.ErrProviderDown, err)
	}
	return fmt.Errorf("openai: %w", err)
}

func isContextLength(apiErr *sdkopenai.Error) bool {
	return apiErr.Code == "context_length_exceeded" ||
		strings.Contains(strings.ToLower(apiErr.Message), "context length")
}
