// Package ai shapes prompts and response schemas for the generative model,
// calls it with a timeout and retries, and parses what comes back into
// typed values with safe defaults.
package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

// InlinePart is a binary payload sent alongside the prompt.
type InlinePart struct {
	MimeType string
	Data     []byte
}

// Request is a single generation call.
type Request struct {
	Prompt string
	Parts  []InlinePart
	// Schema, when set, asks the provider for JSON matching it.
	Schema *Schema
	// SchemaName labels the schema for providers that require a name.
	SchemaName string
}

// Generator is a text-in, text-out model provider. Implementations return
// the raw response text; JSON responses are parsed by the caller.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// ErrNoProvider is reported when no API key is configured.
var ErrNoProvider = errors.New("no AI provider configured")

// ErrUnsupportedMedia is returned by providers that cannot accept a part.
var ErrUnsupportedMedia = errors.New("unsupported media type for provider")

// StatusError is an HTTP-level failure from a provider.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.Code, e.Message)
}

// retryableStatus reports whether an HTTP status is worth retrying.
func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

// isTransient reports whether err is worth retrying: network failures,
// rate limiting and server errors. Cancellation by the caller, client
// errors and unsupported input are not.
func isTransient(parent context.Context, err error) bool {
	if parent.Err() != nil {
		return false
	}
	if errors.Is(err, ErrNoProvider) || errors.Is(err, ErrUnsupportedMedia) {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return retryableStatus(statusErr.Code)
	}
	var oaiErr *openai.APIError
	if errors.As(err, &oaiErr) {
		return retryableStatus(oaiErr.HTTPStatusCode)
	}
	var oaiReqErr *openai.RequestError
	if errors.As(err, &oaiReqErr) {
		return retryableStatus(oaiReqErr.HTTPStatusCode)
	}
	var genaiErr genai.APIError
	if errors.As(err, &genaiErr) {
		return retryableStatus(genaiErr.Code)
	}

	// Per-attempt timeouts and network errors.
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
