package agent

import (
	"slices"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestExtractScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  int
	}{
		{"Score: 7/10", 7},
		{"The quality of 9 reflects a strong answer.", 9},
		{"I would give this 8 out of 10.", 8},
		{"Solid work, minor issues.", DefaultScore},
		{"score: 15", MaxScore},
		{"Rating: 0", MinScore},
		{"Overall 6/10, could be tighter.", 6},
		{"", DefaultScore},
		{"Quality: 2 minor wording issues remain.\nScore: 9/10", 9},
		{"Quality: 2 minor wording issues remain.", 2},
		{"Rating is 7. Two typos.", 7},
		{"Score:\n6", 6},
		{"99999999999999999999/10", MaxScore},
		{"99999999999999999999 out of 10", MaxScore},
	}
	for _, tt := range tests {
		if got := ExtractScore(tt.input); got != tt.want {
			t.Errorf("ExtractScore(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestParsePlan(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"mixed", "1. Do X\n2. Do Y\nrandom note\n3. Do Z", []string{"Do X", "Do Y", "Do Z"}},
		{"indented crlf", "  1.  Gather data\r\n  2. Summarize  \r\n", []string{"Gather data", "Summarize"}},
		{"prose only", "I will just answer directly.", nil},
		{"decimal is not a step", "1.5 litres of water", nil},
		{"empty", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ParsePlan(tt.input); !slices.Equal(got, tt.want) {
				t.Errorf("ParsePlan(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNeedsReplan(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  bool
	}{
		{"unable to connect", true},
		{"Request FAILED with status 500", true},
		{"An Error occurred", true},
		{"this cannot be done", true},
		{"that is impossible", true},
		{"successfully completed", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := NeedsReplan(tt.input); got != tt.want {
			t.Errorf("NeedsReplan(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestTruncateRunes(t *testing.T) {
	t.Parallel()

	if got := truncateRunes("short", 10); got != "short" {
		t.Errorf("truncateRunes(short) = %q", got)
	}
	long := strings.Repeat("é", 20)
	got := truncateRunes(long, 5)
	if utf8.RuneCountInString(got) != 5 || !utf8.ValidString(got) {
		t.Errorf("truncateRunes = %q", got)
	}
}
