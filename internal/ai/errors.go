package ai

import (
	"fmt"
	"strconv"
)

const maxMessageLen = 300

// LLMError is the single error shape leaving the classifier. The underlying
// client raises heterogeneous error types; they are flattened into this record
// so callers never inspect provider-specific hierarchies. Every field except
// ExcClass and Message is optional — absence is expected, not an error.
type LLMError struct {
	ExcClass   string
	Message    string
	StatusCode int // 0 when the provider supplied none
	ErrorCode  string
	RequestID  string
}

func (e *LLMError) Error() string {
	return "llm: " + e.Detail()
}

// Detail renders the error the way it is surfaced over HTTP:
// "<class> (<status|n/a>) - <message>".
func (e *LLMError) Detail() string {
	status := "n/a"
	if e.StatusCode != 0 {
		status = strconv.Itoa(e.StatusCode)
	}
	return fmt.Sprintf("%s (%s) - %s", e.ExcClass, status, e.Message)
}

// ParseError marks a completion that arrived but could not be coerced to the
// two-field schema. It is retried once on the same model, never on the
// fallback.
type ParseError struct {
	Reason string
	Raw    string
}

func (e *ParseError) Error() string {
	return "structured output parse failure: " + e.Reason
}

func truncate(s string) string {
	if len(s) <= maxMessageLen {
		return s
	}
	return s[:maxMessageLen] + "..."
}
