package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/flemzord/sloop/internal/tool"
)

// Clock reports the current time, optionally in a named IANA time zone.
type Clock struct {
	now func() time.Time
}

// NewClock creates the clock tool using now as its time source.
func NewClock(now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{now: now}
}

// Name implements tool.Tool.
func (c *Clock) Name() string { return "clock" }

// Description implements tool.Tool.
func (c *Clock) Description() string {
	return "Return the current date and time in RFC 3339 format."
}

// Schema implements tool.Tool.
func (c *Clock) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"timezone": {"type": "string", "description": "IANA time zone, e.g. Europe/Paris. Defaults to UTC."}
		}
	}`)
}

type clockArgs struct {
	Timezone string `json:"timezone,omitempty"`
}

// Execute implements tool.Tool.
func (c *Clock) Execute(_ context.Context, args json.RawMessage) (string, error) {
	var a clockArgs
	if len(args) > 0 {
		if err := json.Unmarshal(args, &a); err != nil {
			return "", fmt.Errorf("%w: %v", tool.ErrInvalidArguments, err)
		}
	}

	loc := time.UTC
	if a.Timezone != "" {
		l, err := time.LoadLocation(a.Timezone)
		if err != nil {
			return "", fmt.Errorf("%w: unknown timezone %q", tool.ErrInvalidArguments, a.Timezone)
		}
		loc = l
	}
	return c.now().In(loc).Format(time.RFC3339), nil
}

// Interface guard.
var _ tool.Tool = (*Clock)(nil)
