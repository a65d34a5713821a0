package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseErrorKind classifies why a model response was rejected.
type ParseErrorKind int

const (
	EmptyResponse ParseErrorKind = iota + 1
	MalformedJSON
	SchemaViolation
)

func (k ParseErrorKind) String() string {
	switch k {
	case EmptyResponse:
		return "empty response"
	case MalformedJSON:
		return "malformed JSON"
	case SchemaViolation:
		return "schema violation"
	default:
		return "unknown"
	}
}

// ParseError is returned when a model response cannot be turned into the
// requested type.
type ParseError struct {
	Kind   ParseErrorKind
	Detail string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Detail == "" {
		return "parsing model response: " + e.Kind.String()
	}
	return fmt.Sprintf("parsing model response: %s: %s", e.Kind, e.Detail)
}

func (e *ParseError) Unwrap() error { return e.Err }

func violation(format string, args ...any) error {
	return &ParseError{Kind: SchemaViolation, Detail: fmt.Sprintf(format, args...)}
}

// Result is the outcome of a gateway operation. Value is always usable: on
// failure it holds the operation's safe default and Err says why.
type Result[T any] struct {
	Value T
	Err   error
}

// Degraded reports whether Value is a fallback rather than a model answer.
func (r Result[T]) Degraded() bool { return r.Err != nil }

// Decode parses raw as JSON into T and runs check on the result. Markdown
// code fences around the JSON are tolerated.
func Decode[T any](raw string, check func(*T) error) (T, error) {
	var v T

	text := stripFence(raw)
	if text == "" || text == "null" {
		return v, &ParseError{Kind: EmptyResponse}
	}

	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return v, &ParseError{Kind: MalformedJSON, Detail: err.Error(), Err: err}
	}

	if check != nil {
		if err := check(&v); err != nil {
			var zero T
			return zero, err
		}
	}
	return v, nil
}

func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
