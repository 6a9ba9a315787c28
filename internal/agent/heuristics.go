package agent

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Score bounds for ExtractScore.
const (
	MinScore     = 1
	MaxScore     = 10
	DefaultScore = 5
)

// scoreMarker matches "score/quality/rating N". Group 2 is set when the
// number closes its phrase: a "/10" or "out of 10" scale, punctuation or
// the end of the line.
var scoreMarker = regexp.MustCompile(`(?im)\b(?:score|quality|rating)\b[:\s]*(?:(?:of|is)\s+)?(\d{1,3})(\s*(?:/\s*10\b|out\s+of\s+10\b|[^\w\s]|$))?`)

// scaleScores are tried in order after scoreMarker.
var scaleScores = []*regexp.Regexp{
	regexp.MustCompile(`(\d{1,3})\s*/\s*10\b`),
	regexp.MustCompile(`(?i)(\d{1,3})\s+out\s+of\s+10\b`),
}

// ExtractScore pulls a 1-10 quality score out of free-text critique.
// It tries an explicit "score/quality/rating ... N" marker, then "N/10",
// then "N out of 10", clamps the result to [MinScore, MaxScore] and
// returns DefaultScore when nothing matches.
func ExtractScore(text string) int {
	if n, ok := markedScore(text); ok {
		return min(max(n, MinScore), MaxScore)
	}
	for _, re := range scaleScores {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		return min(max(n, MinScore), MaxScore)
	}
	return DefaultScore
}

// markedScore returns the value of the first marker whose number closes its
// phrase ("Score: 9/10"), or of the first marker at all when none does
// ("quality of 9 reflects"). "Quality: 2 minor issues" loses to a later
// "Score: 9/10".
func markedScore(text string) (int, bool) {
	matches := scoreMarker.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return 0, false
	}
	pick := matches[0]
	for _, m := range matches {
		if m[4] >= 0 {
			pick = m
			break
		}
	}
	n, err := strconv.Atoi(text[pick[2]:pick[3]])
	return n, err == nil
}

var planLine = regexp.MustCompile(`^\s*\d+\.\s+(.+)$`)

// ParsePlan extracts numbered steps ("1. Do X") from text, in order.
// Lines that are not numbered steps are ignored.
func ParsePlan(text string) []string {
	var steps []string
	for line := range strings.Lines(text) {
		m := planLine.FindStringSubmatch(strings.TrimRight(line, "\r\n"))
		if m == nil {
			continue
		}
		if step := strings.TrimSpace(m[1]); step != "" {
			steps = append(steps, step)
		}
	}
	return steps
}

// replanKeywords mark a step result as a likely failure.
var replanKeywords = []string{"error", "failed", "unable", "cannot", "impossible"}

// NeedsReplan reports whether a step result contains a failure keyword.
// The check is lexical, not semantic: a correct answer that mentions
// "cannot" triggers it too.
func NeedsReplan(result string) bool {
	lower := strings.ToLower(result)
	for _, kw := range replanKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// truncateRunes shortens s to at most n runes.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
