// Package observability provides structured logging with credential
// redaction. Bots carry raw provider API keys, so anything that might echo
// user input or request headers goes through the redactor first.
package observability

import "regexp"

// Redactor masks credential material in log output.
type Redactor struct {
	patterns []redactPattern
}

type redactPattern struct {
	regex       *regexp.Regexp
	replacement string
}

// NewRedactor creates a redactor with patterns for the provider key
// formats this system handles.
func NewRedactor() *Redactor {
	r := &Redactor{}
	r.AddPattern(`sk-ant-[a-zA-Z0-9\-_]{20,}`, "[REDACTED_ANTHROPIC_KEY]")
	r.AddPattern(`sk-or-[a-zA-Z0-9\-_]{20,}`, "[REDACTED_OPENROUTER_KEY]")
	r.AddPattern(`sk-[a-zA-Z0-9\-_]{20,}`, "[REDACTED_OPENAI_KEY]")
	r.AddPattern(`r8_[a-zA-Z0-9]{20,}`, "[REDACTED_REPLICATE_KEY]")
	r.AddPattern(`Bearer\s+[a-zA-Z0-9\-_\.]+`, "Bearer [REDACTED]")
	r.AddPattern(`x-api-key:\s*[^\s]+`, "x-api-key: [REDACTED]")
	return r
}

// AddPattern adds a redaction pattern. Invalid patterns are ignored.
func (r *Redactor) AddPattern(pattern, replacement string) {
	regex, err := regexp.Compile(pattern)
	if err != nil {
		return
	}
	r.patterns = append(r.patterns, redactPattern{regex: regex, replacement: replacement})
}

// Redact masks all matched credential material in s.
func (r *Redactor) Redact(s string) string {
	for _, p := range r.patterns {
		s = p.regex.ReplaceAllString(s, p.replacement)
	}
	return s
}
