//go:build integration

package anthropic

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/flemzord/sloop/internal/provider"
	"github.com/flemzord/sloop/pkg/message"
)

// Integration tests require ANTHROPIC_API_KEY to be set.
// Run with: go test -tags=integration ./modules/provider/anthropic/...

func TestIntegration_Complete(t *testing.T) {
	key := os.Getenv("ANTHROPIC_API_KEY")
	if key == "" {
		t.Skip("ANTHROPIC_API_KEY not set")
	}
	a, err := New(Config{APIKey: key}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resp, err := a.Complete(ctx, provider.Request{
		Messages:  []message.Message{message.NewUserText("Say 'hello' and nothing else.")},
		MaxTokens: 32,
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if !strings.Contains(strings.ToLower(message.TextContent(resp.Content)), "hello") {
		t.Errorf("content = %+v", resp.Content)
	}
	if resp.Usage.Total() == 0 {
		t.Error("expected non-zero token usage")
	}
}
