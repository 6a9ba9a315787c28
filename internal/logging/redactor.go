package logging

import (
	"regexp"
	"strings"
	"sync"
)

// RedactPlaceholder is the replacement string for redacted secrets.
const RedactPlaceholder = "***REDACTED***"

// Redactor replaces secret values in strings with RedactPlaceholder. It
// matches known API key shapes by pattern and configured credentials
// literally. All methods are safe for concurrent use.
type Redactor struct {
	mu       sync.RWMutex
	patterns []*regexp.Regexp
	literals []string
}

// NewRedactor creates a Redactor with DefaultPatterns and the given literal
// secrets. Empty literals are ignored.
func NewRedactor(literals ...string) *Redactor {
	r := &Redactor{patterns: DefaultPatterns()}
	for _, l := range literals {
		r.AddLiteral(l)
	}
	return r
}

// AddLiteral adds a secret value that should be redacted on sight.
// Empty strings are ignored.
func (r *Redactor) AddLiteral(secret string) {
	if secret == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.literals = append(r.literals, secret)
}

// Redact replaces every known secret in s.
func (r *Redactor) Redact(s string) string {
	if s == "" {
		return s
	}

	r.mu.RLock()
	patterns := r.patterns
	literals := r.literals
	r.mu.RUnlock()

	// Literals first: a configured key may be longer than what a pattern matches.
	for _, lit := range literals {
		s = strings.ReplaceAll(s, lit, RedactPlaceholder)
	}
	for _, p := range patterns {
		s = p.ReplaceAllString(s, RedactPlaceholder)
	}
	return s
}

// DefaultPatterns returns compiled regex patterns for the model provider
// key formats and bearer credentials.
func DefaultPatterns() []*regexp.Regexp {
	return []*regexp.Regexp{
		// Anthropic: sk-ant-...
		regexp.MustCompile(`sk-ant-[a-zA-Z0-9\-_]{20,}`),
		// OpenAI: sk-... and sk-proj-...
		regexp.MustCompile(`sk-(?:proj-)?[a-zA-Z0-9\-_]{20,}`),
		// Authorization header values.
		regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9\-._~+/]{16,}=*`),
	}
}
