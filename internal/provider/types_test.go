package provider

import "testing"

func TestStopReason_IsCompletion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		reason StopReason
		want   bool
	}{
		{StopReasonEndTurn, true},
		{StopReasonStopSequence, true},
		{StopReasonToolUse, false},
		{StopReasonMaxTokens, false},
		{StopReasonRefusal, false},
		{StopReason(""), false},
	}
	for _, tt := range tests {
		if got := tt.reason.IsCompletion(); got != tt.want {
			t.Errorf("%q.IsCompletion() = %v, want %v", tt.reason, got, tt.want)
		}
	}
}

func TestTokenUsage_Total(t *testing.T) {
	t.Parallel()

	u := TokenUsage{InputTokens: 12, OutputTokens: 30}
	if u.Total() != 42 {
		t.Errorf("Total() = %d, want 42", u.Total())
	}
}
