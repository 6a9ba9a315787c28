//go:build integration

package openai

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/flemzord/sloop/internal/provider"
	"github.com/flemzord/sloop/pkg/message"
)

func TestIntegration_Complete(t *testing.T) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		t.Skip("OPENAI_API_KEY not set, skipping integration test")
	}
	p, err := New(Config{APIKey: apiKey, Model: "gpt-4o-mini"}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resp, err := p.Complete(ctx, provider.Request{
		Messages:  []message.Message{message.NewUserText("Reply with the single word: pong")},
		MaxTokens: 16,
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if message.TextContent(resp.Content) == "" {
		t.Error("expected text content")
	}
}
